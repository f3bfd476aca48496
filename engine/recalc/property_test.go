// Copyright 2026 The kigali-sim-sub006 Authors
// This file is part of the kigali-sim-sub006 library.
//
// The kigali-sim-sub006 library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The kigali-sim-sub006 library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the kigali-sim-sub006 library. If not, see <http://www.gnu.org/licenses/>.

package recalc

import (
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/SchmidtDSE/kigali-sim-sub006/engine/qty"
)

// TestRetireStrategyConservesPopulation fuzzes (priorEquipment, retirement
// rate) pairs and checks the two invariants RetireStrategy must hold for
// every input: priorEquipment never goes negative, and the retired count
// never exceeds what was standing at the start of the year.
func TestRetireStrategyConservesPopulation(t *testing.T) {
	f := fuzz.New().NilChance(0).NumElements(1, 1)
	for i := 0; i < 200; i++ {
		var startUnits uint32
		var rateBasisPoints uint16 // 0..10000 -> 0%..100%
		f.Fuzz(&startUnits)
		f.Fuzz(&rateBasisPoints)
		rate := decimal.NewFromInt(int64(rateBasisPoints % 10001)).Div(decimal.New(100, 0))

		kit, k := newKit()
		sc := scope("HFC-134a")
		rec := k.EnsureSubstance(sc)
		rec.PriorEquipment = qty.New(decimal.NewFromInt(int64(startUnits)), qty.Units)
		rec.RetirementRate = qty.New(rate, qty.PercentYear)

		require.NoError(t, RetireStrategy(kit, sc))

		require.Falsef(t, rec.PriorEquipment.Value.IsNegative(),
			"priorEquipment went negative for start=%d rate=%s", startUnits, rate)
		require.Falsef(t, rec.RetiredThisYear.Value.GreaterThan(decimal.NewFromInt(int64(startUnits))),
			"retired more than stood at year start for start=%d rate=%s", startUnits, rate)
	}
}

// TestApplyCapNeverIncreasesSourceStream fuzzes the cap limit itself and
// checks ApplyCap (with no displacement partner) never leaves the source
// stream above whichever of (original, limit) is larger was actually
// intended as the ceiling.
func TestApplyCapNeverIncreasesSourceStream(t *testing.T) {
	f := fuzz.New().NilChance(0).NumElements(1, 1)
	for i := 0; i < 200; i++ {
		var startKg, limitKg uint32
		f.Fuzz(&startKg)
		f.Fuzz(&limitKg)

		kit, k := newKit()
		sc := scope("HFC-134a")
		require.NoError(t, k.MarkStreamAsEnabled(sc, "domestic"))
		rec := k.EnsureSubstance(sc)
		rec.Domestic = qty.New(decimal.NewFromInt(int64(startKg)), qty.Kilogram)

		err := ApplyCap(kit, sc, "domestic", qty.New(decimal.NewFromInt(int64(limitKg)), qty.Kilogram), "")
		require.NoError(t, err)

		after, err := k.GetStream(sc, "domestic")
		require.NoError(t, err)
		require.Falsef(t, after.Value.GreaterThan(decimal.NewFromInt(int64(startKg))),
			"cap increased the stream beyond its starting value (start=%d limit=%d)", startKg, limitKg)
	}
}
