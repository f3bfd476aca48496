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

package keeper

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SchmidtDSE/kigali-sim-sub006/engine/qty"
	"github.com/SchmidtDSE/kigali-sim-sub006/engine/simerr"
)

func testScope() simerr.Scope {
	return simerr.Scope{Stanza: "default", Application: "Domestic Refrigeration", Substance: "HFC-134a"}
}

func TestSetStreamRequiresEnablementForNonZeroTradeWrite(t *testing.T) {
	k := New()
	scope := testScope()
	k.EnsureSubstance(scope)

	err := k.SetStream(scope, Domestic, qty.New(decimal.NewFromInt(10), qty.Kilogram))
	var enablementErr *simerr.EnablementError
	require.ErrorAs(t, err, &enablementErr)

	// zero writes are always allowed, even when disabled.
	require.NoError(t, k.SetStream(scope, Domestic, qty.Zero(qty.Kilogram)))

	require.NoError(t, k.MarkStreamAsEnabled(scope, Domestic))
	require.NoError(t, k.SetStream(scope, Domestic, qty.New(decimal.NewFromInt(10), qty.Kilogram)))
}

func TestSetStreamRejectsDirectSalesWrite(t *testing.T) {
	k := New()
	scope := testScope()
	k.EnsureSubstance(scope)
	err := k.SetStream(scope, Sales, qty.New(decimal.NewFromInt(1), qty.Kilogram))
	var domainErr *simerr.DomainError
	assert.ErrorAs(t, err, &domainErr)
}

func TestLastSpecifiedValueExcludesPercentages(t *testing.T) {
	k := New()
	scope := testScope()
	k.EnsureSubstance(scope)

	require.NoError(t, k.SetLastSpecifiedValue(scope, Domestic, qty.New(decimal.NewFromInt(5), qty.Percent)))
	assert.False(t, k.HasLastSpecifiedValue(scope, Domestic))

	require.NoError(t, k.SetLastSpecifiedValue(scope, Domestic, qty.New(decimal.NewFromInt(1000), qty.Kilogram)))
	assert.True(t, k.HasLastSpecifiedValue(scope, Domestic))
}

func TestSalesIntentFreshFlagSetThenResetByConsumer(t *testing.T) {
	k := New()
	scope := testScope()
	k.EnsureSubstance(scope)

	assert.False(t, k.IsSalesIntentFreshlySet(scope))

	require.NoError(t, k.SetLastSpecifiedValue(scope, Domestic, qty.New(decimal.NewFromInt(1000), qty.Kilogram)))
	assert.True(t, k.IsSalesIntentFreshlySet(scope))

	k.ResetSalesIntentFlag(scope)
	assert.False(t, k.IsSalesIntentFreshlySet(scope))
}

func TestDistributionFallsBackToEnablementWhenSalesIsZero(t *testing.T) {
	k := New()
	scope := testScope()
	k.EnsureSubstance(scope)
	require.NoError(t, k.MarkStreamAsEnabled(scope, Domestic))

	pctDom, pctImp := k.GetDistribution(scope)
	assert.True(t, decimal.New(100, 0).Equal(pctDom))
	assert.True(t, decimal.Zero.Equal(pctImp))
}

func TestIncrementYearRollsEquipmentAndClearsBins(t *testing.T) {
	k := New()
	scope := testScope()
	rec := k.EnsureSubstance(scope)
	rec.PriorEquipment = qty.New(decimal.NewFromInt(9500), qty.Units)
	rec.Equipment = qty.New(decimal.NewFromInt(1000), qty.Units)
	rec.RecycleRecharge = qty.New(decimal.NewFromInt(50), qty.Kilogram)
	rec.RecycleEol = qty.New(decimal.NewFromInt(25), qty.Kilogram)
	rec.ImplicitRecharge = qty.New(decimal.NewFromInt(5), qty.Kilogram)

	require.NoError(t, k.IncrementYear(scope))

	assert.True(t, decimal.NewFromInt(10500).Equal(rec.PriorEquipment.Value))
	assert.True(t, rec.Equipment.IsZero())
	assert.True(t, rec.RecycleRecharge.IsZero())
	assert.True(t, rec.RecycleEol.IsZero())
	assert.True(t, rec.ImplicitRecharge.IsZero())
}

func TestGetStreamUnknownSubstance(t *testing.T) {
	k := New()
	_, err := k.GetStream(testScope(), Domestic)
	var scopeErr *simerr.ScopeError
	assert.ErrorAs(t, err, &scopeErr)
}
