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

// Package recalc implements the named routines that propagate a single
// user write across the dependent streams of one substance record. Each
// strategy is a pure function over a Kit and a scope; a Chain composes an
// ordered list of strategies and runs them in sequence, recording a trace
// of which steps ran so the chain stays easy to dump in tests — the same
// tagged-dispatch idiom core/vm/gas_table.go uses for opcode gas
// calculators, generalized from a fixed opcode index to a named chain.
package recalc

import (
	"github.com/shopspring/decimal"

	"github.com/SchmidtDSE/kigali-sim-sub006/engine/keeper"
	"github.com/SchmidtDSE/kigali-sim-sub006/engine/qty"
	"github.com/SchmidtDSE/kigali-sim-sub006/engine/simerr"
)

var hundred = decimal.New(100, 0)

// Kit bundles the shared collaborators every strategy needs.
type Kit struct {
	Keeper       *keeper.Keeper
	Converter    *qty.Converter
	YearsElapsed decimal.Decimal
}

// Strategy mutates the record at scope.
type Strategy func(kit *Kit, scope simerr.Scope) error

// ChainStep names a strategy for tracing purposes.
type ChainStep struct {
	Name string
	Run  Strategy
}

// Chain is an ordered, composed sequence of strategies.
type Chain struct {
	Steps []ChainStep
}

// Run executes every step in order, stopping at the first error. It always
// returns the trace of step names that completed, even on failure, so
// callers (and tests) can see exactly how far the chain got.
func (c Chain) Run(kit *Kit, scope simerr.Scope) ([]string, error) {
	trace := make([]string, 0, len(c.Steps))
	for _, step := range c.Steps {
		if err := step.Run(kit, scope); err != nil {
			return trace, err
		}
		trace = append(trace, step.Name)
	}
	return trace, nil
}

// WriteChain runs after `set domestic|import|export` and after `recover`.
var WriteChain = Chain{Steps: []ChainStep{
	{"Sales", SalesStrategy},
	{"Recycle", RecycleStrategy},
	{"Consumption", ConsumptionStrategy},
	{"Energy", EnergyStrategy},
}}

// ParamChangeChain runs after initialCharge/recharge/retire parameter
// changes, and again (unchanged) at year increment.
var ParamChangeChain = Chain{Steps: []ChainStep{
	{"Retire", RetireStrategy},
	{"Sales", SalesStrategy},
	{"Recycle", RecycleStrategy},
	{"Consumption", ConsumptionStrategy},
	{"Energy", EnergyStrategy},
}}

// RetireStrategy retires a fraction of priorEquipment, feeding the
// Recycle strategy's EOL stage via RetiredThisYear.
func RetireStrategy(kit *Kit, scope simerr.Scope) error {
	rec := kit.Keeper.EnsureSubstance(scope)
	rate := rec.RetirementRate.Value.Div(hundred)
	retired := rec.PriorEquipment.Value.Mul(rate)
	rec.RetiredThisYear = qty.New(retired, qty.Units)
	remaining := rec.PriorEquipment.Value.Sub(retired)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	rec.PriorEquipment = qty.New(remaining, qty.Units)
	return nil
}

// SalesStrategy is the hot path described in spec §4.6: it resolves the
// recharge demand, nets out recovered/displaced recycled material, derives
// the new-equipment deployment from the user's most recent sales intent,
// and splits the remaining virgin demand across domestic/import by the
// current distribution.
func SalesStrategy(kit *Kit, scope simerr.Scope) error {
	k := kit.Keeper
	rec := k.EnsureSubstance(scope)

	rechargePopRate := rec.RechargePopulationRate.Value.Div(hundred)
	rechargePopulation := rec.PriorEquipment.Value.Mul(rechargePopRate)
	rechargeVolume := rechargePopulation.Mul(rec.RechargeIntensity.Value)

	recoveryRate := rec.RecoveryRate.Value.Div(hundred)
	yieldRate := rec.YieldRate.Value.Div(hundred)
	displacementRate := rec.DisplacementRate.Value.Div(hundred)
	recoveredVirgin := recoveryRate.Mul(rechargeVolume)
	recycledKg := yieldRate.Mul(recoveredVirgin)
	recycledDisplacedKg := recycledKg.Mul(displacementRate)

	charge := rec.ChargeForSales()
	salesIntentKg, unitFamily := k.GetSalesIntent(scope)

	implicitRecharge := decimal.Zero
	if unitFamily && !charge.IsZero() {
		implicitRecharge = rechargeVolume
	}
	rec.ImplicitRecharge = qty.New(implicitRecharge, qty.Kilogram)

	// A unit-family intent (e.g. "set domestic to 1000 units") already
	// names pure new-equipment volume: recordIntent converted it via
	// units*charge with no recharge folded in, so it becomes
	// populationChange whole. A kg-family intent names total demand
	// including recharge, so recharge must still be netted out of it.
	newEquipmentVolume := salesIntentKg.Value
	if !unitFamily {
		newEquipmentVolume = newEquipmentVolume.Sub(rechargeVolume)
	}
	if newEquipmentVolume.IsNegative() {
		newEquipmentVolume = decimal.Zero
	}
	populationChange := decimal.Zero
	if !charge.IsZero() {
		populationChange = newEquipmentVolume.Div(charge)
	}

	totalDemand := rechargeVolume.Add(newEquipmentVolume)
	requiredVirgin := totalDemand.Sub(implicitRecharge).Sub(recycledDisplacedKg)
	if requiredVirgin.IsNegative() {
		requiredVirgin = decimal.Zero
	}

	pctDom, pctImp := k.GetDistribution(scope)
	domesticKg := requiredVirgin.Mul(pctDom).Div(hundred)
	importKg := requiredVirgin.Mul(pctImp).Div(hundred)

	if unitFamily && !implicitRecharge.IsZero() {
		if charge.IsZero() {
			return &simerr.UnitConversionError{Scope: scope, FromUnit: "kg", ToUnit: "units", Reason: "initial charge is zero"}
		}
		if err := k.SetStream(scope, keeper.Domestic, qty.New(domesticKg.Div(charge), qty.Units)); err != nil {
			return err
		}
		if err := k.SetStream(scope, keeper.Import, qty.New(importKg.Div(charge), qty.Units)); err != nil {
			return err
		}
	} else {
		if err := k.SetStream(scope, keeper.Domestic, qty.New(domesticKg, qty.Kilogram)); err != nil {
			return err
		}
		if err := k.SetStream(scope, keeper.Import, qty.New(importKg, qty.Kilogram)); err != nil {
			return err
		}
	}

	rec.Equipment = qty.New(populationChange, qty.Units).ClampNonNegative()
	return nil
}

// RecycleStrategy computes the recharge-stage and EOL-stage recycled kg
// bins; exactly one is populated per the substance's configured stage.
func RecycleStrategy(kit *Kit, scope simerr.Scope) error {
	rec := kit.Keeper.EnsureSubstance(scope)
	recoveryRate := rec.RecoveryRate.Value.Div(hundred)
	yieldRate := rec.YieldRate.Value.Div(hundred)

	rechargePopRate := rec.RechargePopulationRate.Value.Div(hundred)
	rechargePopulation := rec.PriorEquipment.Value.Mul(rechargePopRate)
	rechargeVolume := rechargePopulation.Mul(rec.RechargeIntensity.Value)
	rechargeRecycled := rechargeVolume.Mul(recoveryRate).Mul(yieldRate)

	charge := rec.ChargeForSales()
	eolRecycled := rec.RetiredThisYear.Value.Mul(charge).Mul(recoveryRate).Mul(yieldRate)

	switch rec.RecyclingStage {
	case keeper.StageEol:
		rec.RecycleEol = qty.New(eolRecycled, qty.Kilogram).ClampNonNegative()
		rec.RecycleRecharge = qty.Zero(qty.Kilogram)
	default:
		rec.RecycleRecharge = qty.New(rechargeRecycled, qty.Kilogram).ClampNonNegative()
		rec.RecycleEol = qty.Zero(qty.Kilogram)
	}
	return nil
}

// ConsumptionStrategy derives consumption (including recycled material)
// and consumptionNoRecycle (virgin only) from the current sales split.
func ConsumptionStrategy(kit *Kit, scope simerr.Scope) error {
	rec := kit.Keeper.EnsureSubstance(scope)
	virginKg := rec.Domestic.Value.Add(rec.Import.Value)
	totalKg := virginKg.Add(rec.RecycleTotal().Value)
	rec.Consumption = qty.New(totalKg.Mul(rec.GhgIntensity.Value), qty.TCO2e)
	rec.ConsumptionNoRecycle = qty.New(virginKg.Mul(rec.GhgIntensity.Value), qty.TCO2e)
	return nil
}

// EnergyStrategy derives energy use from the current equipment population.
func EnergyStrategy(kit *Kit, scope simerr.Scope) error {
	rec := kit.Keeper.EnsureSubstance(scope)
	population := rec.Equipment.Value.Add(rec.PriorEquipment.Value)
	rec.Energy = qty.New(population.Mul(rec.EnergyIntensity.Value), qty.Kwh)
	return nil
}
