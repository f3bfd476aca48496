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

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SchmidtDSE/kigali-sim-sub006/engine/keeper"
	"github.com/SchmidtDSE/kigali-sim-sub006/engine/qty"
	"github.com/SchmidtDSE/kigali-sim-sub006/engine/simerr"
)

func newKit() (*Kit, *keeper.Keeper) {
	k := keeper.New()
	return &Kit{Keeper: k, Converter: qty.NewConverter()}, k
}

func scope(sub string) simerr.Scope {
	return simerr.Scope{Stanza: "default", Application: "Domestic Refrigeration", Substance: sub}
}

func TestRetireStrategyReducesPriorEquipmentAndRecordsRetired(t *testing.T) {
	kit, k := newKit()
	sc := scope("HFC-134a")
	rec := k.EnsureSubstance(sc)
	rec.PriorEquipment = qty.New(decimal.NewFromInt(10000), qty.Units)
	rec.RetirementRate = qty.New(decimal.NewFromInt(5), qty.PercentYear)

	require.NoError(t, RetireStrategy(kit, sc))

	assert.True(t, decimal.NewFromInt(9500).Equal(rec.PriorEquipment.Value))
	assert.True(t, decimal.NewFromInt(500).Equal(rec.RetiredThisYear.Value))
}

func TestSalesStrategySplitsVirginByDistribution(t *testing.T) {
	kit, k := newKit()
	sc := scope("HFC-134a")
	rec := k.EnsureSubstance(sc)
	require.NoError(t, k.MarkStreamAsEnabled(sc, keeper.Domestic))
	require.NoError(t, k.MarkStreamAsEnabled(sc, keeper.Import))
	require.NoError(t, k.SetInitialCharge(sc, keeper.Domestic, qty.New(decimal.NewFromInt(1), qty.KgPerUnit)))
	rec.Domestic = qty.New(decimal.NewFromInt(300), qty.Kilogram)
	rec.Import = qty.New(decimal.NewFromInt(700), qty.Kilogram)

	require.NoError(t, k.SetSalesIntent(sc, qty.New(decimal.NewFromInt(1000), qty.Kilogram), false))

	require.NoError(t, SalesStrategy(kit, sc))

	dom, err := k.GetStream(sc, keeper.Domestic)
	require.NoError(t, err)
	imp, err := k.GetStream(sc, keeper.Import)
	require.NoError(t, err)
	total := dom.Value.Add(imp.Value)
	assert.True(t, decimal.NewFromInt(1000).Equal(total))
	// distribution should remain close to the pre-existing 30/70 split.
	ratio := dom.Value.Div(total)
	assert.True(t, ratio.Sub(decimal.NewFromFloat(0.3)).Abs().LessThan(decimal.NewFromFloat(0.01)))
}

// TestSalesStrategyUnitFamilyIntentBecomesWholePopulationChange pins the
// worked S1 scenario's absolute figures: 10000 prior units plus a 1000-unit
// domestic intent must deploy 1000 whole new units (population 11000), not
// have the recharge volume subtracted out of the unit-denominated intent.
func TestSalesStrategyUnitFamilyIntentBecomesWholePopulationChange(t *testing.T) {
	kit, k := newKit()
	sc := scope("HFC-134a")
	require.NoError(t, k.MarkStreamAsEnabled(sc, keeper.Domestic))
	require.NoError(t, k.SetInitialCharge(sc, keeper.Domestic, qty.New(decimal.NewFromInt(1), qty.KgPerUnit)))
	rec := k.EnsureSubstance(sc)
	rec.PriorEquipment = qty.New(decimal.NewFromInt(10000), qty.Units)
	rec.RechargePopulationRate = qty.New(decimal.NewFromInt(5), qty.PercentYear)
	rec.RechargeIntensity = qty.New(decimal.NewFromInt(1), qty.KgPerUnit)

	require.NoError(t, k.SetSalesIntent(sc, qty.New(decimal.NewFromInt(1000), qty.Kilogram), true))

	require.NoError(t, SalesStrategy(kit, sc))

	assert.True(t, decimal.NewFromInt(1000).Equal(rec.Equipment.Value), "equipment = %s", rec.Equipment.Value)
	population := rec.Equipment.Value.Add(rec.PriorEquipment.Value)
	assert.True(t, decimal.NewFromInt(11000).Equal(population), "population = %s", population)
}

func TestRecycleStrategyZeroRecoveryProducesNoRecycledMaterial(t *testing.T) {
	kit, k := newKit()
	sc := scope("HFC-134a")
	rec := k.EnsureSubstance(sc)
	rec.PriorEquipment = qty.New(decimal.NewFromInt(10000), qty.Units)
	rec.RechargePopulationRate = qty.New(decimal.NewFromInt(10), qty.PercentYear)
	rec.RechargeIntensity = qty.New(decimal.NewFromFloat(0.85), qty.KgPerUnit)
	rec.RecoveryRate = qty.Zero(qty.Percent)
	rec.RetiredThisYear = qty.New(decimal.NewFromInt(500), qty.Units)

	require.NoError(t, RecycleStrategy(kit, sc))

	assert.True(t, rec.RecycleRecharge.IsZero())
	assert.True(t, rec.RecycleEol.IsZero())
}

func TestRecycleStrategyRechargeStageComputesRecycledVolume(t *testing.T) {
	kit, k := newKit()
	sc := scope("HFC-134a")
	rec := k.EnsureSubstance(sc)
	rec.RecyclingStage = keeper.StageRecharge
	rec.PriorEquipment = qty.New(decimal.NewFromInt(10000), qty.Units)
	rec.RechargePopulationRate = qty.New(decimal.NewFromInt(10), qty.PercentYear)
	rec.RechargeIntensity = qty.New(decimal.NewFromInt(1), qty.KgPerUnit)
	rec.RecoveryRate = qty.New(decimal.NewFromInt(20), qty.Percent)
	rec.YieldRate = qty.New(decimal.NewFromInt(90), qty.Percent)

	require.NoError(t, RecycleStrategy(kit, sc))

	// rechargeVolume = 10000*0.10*1 = 1000; recycled = 1000*0.20*0.90 = 180
	assert.True(t, decimal.NewFromInt(180).Equal(rec.RecycleRecharge.Value))
	assert.True(t, rec.RecycleEol.IsZero())
}

func TestConsumptionAndEnergyStrategies(t *testing.T) {
	kit, k := newKit()
	sc := scope("HFC-134a")
	rec := k.EnsureSubstance(sc)
	rec.Domestic = qty.New(decimal.NewFromInt(100), qty.Kilogram)
	rec.Import = qty.New(decimal.NewFromInt(50), qty.Kilogram)
	rec.RecycleRecharge = qty.New(decimal.NewFromInt(25), qty.Kilogram)
	rec.GhgIntensity = qty.New(decimal.NewFromInt(5), qty.TCO2ePerKg)
	rec.Equipment = qty.New(decimal.NewFromInt(1000), qty.Units)
	rec.PriorEquipment = qty.New(decimal.NewFromInt(9000), qty.Units)
	rec.EnergyIntensity = qty.New(decimal.NewFromFloat(0.5), qty.KwhPerUnit)

	require.NoError(t, ConsumptionStrategy(kit, sc))
	require.NoError(t, EnergyStrategy(kit, sc))

	assert.True(t, decimal.NewFromInt(875).Equal(rec.Consumption.Value)) // (150+25)*5
	assert.True(t, decimal.NewFromInt(750).Equal(rec.ConsumptionNoRecycle.Value)) // 150*5
	assert.True(t, decimal.NewFromInt(5000).Equal(rec.Energy.Value)) // 10000*0.5
}

func TestApplyReplaceMovesUnitEquivalentVolume(t *testing.T) {
	kit, k := newKit()
	source := scope("HFC-134a")
	dest := scope("R-600a")
	k.EnsureSubstance(source)
	k.EnsureSubstance(dest)
	require.NoError(t, k.SetInitialCharge(source, keeper.Domestic, qty.New(decimal.NewFromInt(10), qty.KgPerUnit)))
	require.NoError(t, k.SetInitialCharge(dest, keeper.Domestic, qty.New(decimal.NewFromInt(20), qty.KgPerUnit)))
	require.NoError(t, k.MarkStreamAsEnabled(source, keeper.Domestic))
	require.NoError(t, k.MarkStreamAsEnabled(dest, keeper.Domestic))
	srcRec := k.EnsureSubstance(source)
	srcRec.Domestic = qty.New(decimal.NewFromInt(50), qty.Kilogram)

	require.NoError(t, ApplyReplace(kit, source, keeper.Domestic, qty.New(decimal.NewFromInt(2), qty.Units), "R-600a"))

	srcAfter, err := k.GetStream(source, keeper.Domestic)
	require.NoError(t, err)
	destAfter, err := k.GetStream(dest, keeper.Domestic)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(30).Equal(srcAfter.Value))
	assert.True(t, decimal.NewFromInt(40).Equal(destAfter.Value))
}

func TestApplyReplaceRejectsSelfReplacement(t *testing.T) {
	kit, k := newKit()
	sc := scope("HFC-134a")
	k.EnsureSubstance(sc)
	err := ApplyReplace(kit, sc, keeper.Domestic, qty.New(decimal.NewFromInt(1), qty.Units), "HFC-134a")
	var selfErr *simerr.SelfReplacementError
	assert.ErrorAs(t, err, &selfErr)
}

func TestApplyCapDisplacesToPartnerSubstance(t *testing.T) {
	kit, k := newKit()
	source := scope("HFC-134a")
	partner := scope("R-600a")
	require.NoError(t, k.MarkStreamAsEnabled(source, keeper.Domestic))
	require.NoError(t, k.MarkStreamAsEnabled(partner, keeper.Domestic))
	require.NoError(t, k.SetInitialCharge(source, keeper.Domestic, qty.New(decimal.NewFromInt(1), qty.KgPerUnit)))
	require.NoError(t, k.SetInitialCharge(partner, keeper.Domestic, qty.New(decimal.NewFromInt(1), qty.KgPerUnit)))
	k.EnsureSubstance(partner)
	srcRec := k.EnsureSubstance(source)
	srcRec.Domestic = qty.New(decimal.NewFromInt(1000), qty.Kilogram)

	require.NoError(t, ApplyCap(kit, source, keeper.Domestic, qty.New(decimal.NewFromInt(800), qty.Kilogram), "R-600a"))

	srcAfter, err := k.GetStream(source, keeper.Domestic)
	require.NoError(t, err)
	partnerAfter, err := k.GetStream(partner, keeper.Domestic)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(800).Equal(srcAfter.Value))
	assert.True(t, decimal.NewFromInt(200).Equal(partnerAfter.Value))
}

// TestRecycleZeroMatchesBAU asserts the blocking regression named in the
// corpus: configuring recover at 0% recovery must reproduce the exact
// domestic/import/consumption figures of a substance with no recycling
// configured at all, for both kg-family and unit-family sales intents.
func TestRecycleZeroMatchesBAU(t *testing.T) {
	for _, unitFamily := range []bool{false, true} {
		bauKit, bauKeeper := newKit()
		recycledKit, recycledKeeper := newKit()
		bauScope := scope("HFC-134a")
		recycledScope := scope("HFC-134a")

		setup := func(k *keeper.Keeper, sc simerr.Scope) {
			require.NoError(t, k.MarkStreamAsEnabled(sc, keeper.Domestic))
			require.NoError(t, k.MarkStreamAsEnabled(sc, keeper.Import))
			require.NoError(t, k.SetInitialCharge(sc, keeper.Domestic, qty.New(decimal.NewFromInt(2), qty.KgPerUnit)))
			rec := k.EnsureSubstance(sc)
			rec.PriorEquipment = qty.New(decimal.NewFromInt(10000), qty.Units)
			rec.RechargePopulationRate = qty.New(decimal.NewFromInt(10), qty.PercentYear)
			rec.RechargeIntensity = qty.New(decimal.NewFromInt(2), qty.KgPerUnit)
			rec.GhgIntensity = qty.New(decimal.NewFromInt(5), qty.TCO2ePerKg)
			require.NoError(t, k.SetSalesIntent(sc, qty.New(decimal.NewFromInt(5000), qty.Kilogram), unitFamily))
		}

		setup(bauKeeper, bauScope)
		setup(recycledKeeper, recycledScope)

		// recycledScope additionally configures recover at 0%, which must be a
		// no-op: recoveredVirgin = recoveryRate * rechargeVolume = 0 regardless
		// of yieldRate or which stage is configured.
		recycledRec := recycledKeeper.EnsureSubstance(recycledScope)
		recycledRec.RecoveryRate = qty.Zero(qty.Percent)
		recycledRec.YieldRate = qty.New(decimal.NewFromInt(80), qty.Percent)
		recycledRec.RecyclingStage = keeper.StageRecharge

		_, err := WriteChain.Run(bauKit, bauScope)
		require.NoError(t, err)
		_, err = WriteChain.Run(recycledKit, recycledScope)
		require.NoError(t, err)

		bauDom, err := bauKeeper.GetStream(bauScope, keeper.Domestic)
		require.NoError(t, err)
		recycledDom, err := recycledKeeper.GetStream(recycledScope, keeper.Domestic)
		require.NoError(t, err)
		assert.True(t, bauDom.Value.Sub(recycledDom.Value).Abs().LessThan(decimal.NewFromFloat(0.0001)),
			"unitFamily=%v domestic mismatch: bau=%s recycled=%s", unitFamily, bauDom.Value, recycledDom.Value)

		bauRec := bauKeeper.EnsureSubstance(bauScope)
		recycledRecAfter := recycledKeeper.EnsureSubstance(recycledScope)
		assert.True(t, bauRec.Consumption.Value.Sub(recycledRecAfter.Consumption.Value).Abs().LessThan(decimal.NewFromFloat(0.0001)),
			"unitFamily=%v consumption mismatch", unitFamily)
	}
}

func TestApplyCapDisplacingBareStreamIsUnsupported(t *testing.T) {
	kit, k := newKit()
	sc := scope("HFC-134a")
	require.NoError(t, k.MarkStreamAsEnabled(sc, keeper.Domestic))
	rec := k.EnsureSubstance(sc)
	rec.Domestic = qty.New(decimal.NewFromInt(1000), qty.Kilogram)

	err := ApplyCap(kit, sc, keeper.Domestic, qty.New(decimal.NewFromInt(800), qty.Kilogram), keeper.Import)
	assert.ErrorIs(t, err, simerr.ErrUnsupportedDisplacement)
}
