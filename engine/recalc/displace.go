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
	"github.com/shopspring/decimal"

	"github.com/SchmidtDSE/kigali-sim-sub006/engine/keeper"
	"github.com/SchmidtDSE/kigali-sim-sub006/engine/qty"
	"github.com/SchmidtDSE/kigali-sim-sub006/engine/simerr"
)

var knownStreams = map[string]bool{
	keeper.Domestic: true, keeper.Import: true, keeper.Export: true,
	keeper.Sales: true, keeper.Equipment: true, keeper.PriorEquipment: true,
}

// ApplyCap clamps stream to at most limit, optionally routing the clamped
// delta to a displacement partner (spec §4.6's Cap/Floor semantics).
func ApplyCap(kit *Kit, scope simerr.Scope, stream string, limit qty.Quantity, displacing string) error {
	return applyLimit(kit, scope, stream, limit, displacing, true)
}

// ApplyFloor clamps stream to at least limit, optionally drawing the
// shortfall from a displacement partner.
func ApplyFloor(kit *Kit, scope simerr.Scope, stream string, limit qty.Quantity, displacing string) error {
	return applyLimit(kit, scope, stream, limit, displacing, false)
}

func applyLimit(kit *Kit, scope simerr.Scope, stream string, limit qty.Quantity, displacing string, isCap bool) error {
	k := kit.Keeper
	rec := k.EnsureSubstance(scope)
	current, err := k.GetStream(scope, stream)
	if err != nil {
		return err
	}

	limitKg, err := resolveLimitKg(kit, scope, rec, current, limit)
	if err != nil {
		return err
	}

	var delta decimal.Decimal
	if isCap {
		if current.Value.LessThanOrEqual(limitKg) {
			return nil
		}
		delta = current.Value.Sub(limitKg)
	} else {
		if current.Value.GreaterThanOrEqual(limitKg) {
			return nil
		}
		delta = limitKg.Sub(current.Value)
	}

	if err := k.SetStream(scope, stream, qty.New(limitKg, current.Unit)); err != nil {
		return err
	}
	if displacing == "" {
		return nil
	}
	return displaceDelta(kit, scope, displacing, stream, delta, isCap)
}

// resolveLimitKg converts limit into the unit family of current: % is
// read relative to current's own value; units convert through the
// record's sales charge; anything else goes through the full converter.
func resolveLimitKg(kit *Kit, scope simerr.Scope, rec *keeper.Record, current, limit qty.Quantity) (decimal.Decimal, error) {
	switch limit.Unit.Stem() {
	case qty.Percent:
		return current.Value.Mul(limit.Value).Div(hundred), nil
	case qty.Units:
		return limit.Value.Mul(rec.ChargeForSales()), nil
	case qty.Kilogram, qty.MetricTon, qty.Gram:
		conv, err := kit.Converter.Convert(limit, qty.Kilogram, rec.StateView(kit.YearsElapsed), scope)
		if err != nil {
			return decimal.Zero, err
		}
		return conv.Value, nil
	default:
		conv, err := kit.Converter.Convert(limit, current.Unit, rec.StateView(kit.YearsElapsed), scope)
		if err != nil {
			return decimal.Zero, err
		}
		return conv.Value, nil
	}
}

// displaceDelta routes a clamped kg delta to a displacement target: either
// another substance in the same application (the only supported form,
// per the corpus's own authoritative test — see simerr.ErrUnsupportedDisplacement)
// or, when target names a bare stream, an explicit refusal.
func displaceDelta(kit *Kit, scope simerr.Scope, target, sourceStream string, deltaKg decimal.Decimal, isCap bool) error {
	if target == sourceStream {
		return &simerr.SelfDisplacementError{Scope: scope, Stream: sourceStream}
	}
	if knownStreams[target] {
		return simerr.ErrUnsupportedDisplacement
	}
	if target == scope.Substance {
		return &simerr.SelfDisplacementError{Scope: scope, Stream: target}
	}

	targetScope := simerr.Scope{Stanza: scope.Stanza, Application: scope.Application, Substance: target}
	if !kit.Keeper.HasSubstance(targetScope) {
		return &simerr.UnknownSubstanceError{Scope: scope, Substance: target}
	}

	sourceRec := kit.Keeper.EnsureSubstance(scope)
	units := decimal.Zero
	sourceCharge := sourceRec.ChargeForSales()
	if !sourceCharge.IsZero() {
		units = deltaKg.Div(sourceCharge)
	}
	targetRec := kit.Keeper.EnsureSubstance(targetScope)
	partnerDeltaKg := units.Mul(targetRec.ChargeForSales())

	pctDom, pctImp := kit.Keeper.GetDistribution(targetScope)
	domDelta := partnerDeltaKg.Mul(pctDom).Div(hundred)
	impDelta := partnerDeltaKg.Mul(pctImp).Div(hundred)

	if err := adjustStream(kit.Keeper, targetScope, keeper.Domestic, domDelta, isCap); err != nil {
		return err
	}
	return adjustStream(kit.Keeper, targetScope, keeper.Import, impDelta, isCap)
}

func adjustStream(k *keeper.Keeper, scope simerr.Scope, stream string, delta decimal.Decimal, add bool) error {
	cur, err := k.GetStream(scope, stream)
	if err != nil {
		return err
	}
	newVal := cur.Value
	if add {
		newVal = newVal.Add(delta)
	} else {
		newVal = newVal.Sub(delta)
	}
	return k.SetStream(scope, stream, qty.New(newVal, qty.Kilogram))
}

// ApplyReplace moves unitCount-equivalent volume from stream (source
// substance) to the destination substance's sales streams, converting
// through each substance's own initial charge (spec §4.6's Replace
// semantics; see S6 in spec.md §8 for the worked numeric example).
func ApplyReplace(kit *Kit, scope simerr.Scope, stream string, value qty.Quantity, destSubstance string) error {
	if destSubstance == scope.Substance {
		return &simerr.SelfReplacementError{Scope: scope, Substance: destSubstance}
	}
	k := kit.Keeper
	rec := k.EnsureSubstance(scope)
	sourceCharge := rec.ChargeForSales()

	var unitCount decimal.Decimal
	switch value.Unit.Stem() {
	case qty.Units:
		unitCount = value.Value
	default:
		conv, err := kit.Converter.Convert(value, qty.Kilogram, rec.StateView(kit.YearsElapsed), scope)
		if err != nil {
			return err
		}
		if sourceCharge.IsZero() {
			return &simerr.UnitConversionError{Scope: scope, FromUnit: string(value.Unit), ToUnit: "units", Reason: "initial charge is zero"}
		}
		unitCount = conv.Value.Div(sourceCharge)
	}

	sourceDeltaKg := unitCount.Mul(sourceCharge)
	current, err := k.GetStream(scope, stream)
	if err != nil {
		return err
	}
	newVal := current.Value.Sub(sourceDeltaKg)
	if newVal.IsNegative() {
		newVal = decimal.Zero
	}
	if err := k.SetStream(scope, stream, qty.New(newVal, qty.Kilogram)); err != nil {
		return err
	}

	destScope := simerr.Scope{Stanza: scope.Stanza, Application: scope.Application, Substance: destSubstance}
	if !k.HasSubstance(destScope) {
		return &simerr.UnknownSubstanceError{Scope: scope, Substance: destSubstance}
	}
	destRec := k.EnsureSubstance(destScope)
	destDeltaKg := unitCount.Mul(destRec.ChargeForSales())

	pctDom, pctImp := k.GetDistribution(destScope)
	domAdd := destDeltaKg.Mul(pctDom).Div(hundred)
	impAdd := destDeltaKg.Mul(pctImp).Div(hundred)
	if err := adjustStream(k, destScope, keeper.Domestic, domAdd, true); err != nil {
		return err
	}
	return adjustStream(k, destScope, keeper.Import, impAdd, true)
}
