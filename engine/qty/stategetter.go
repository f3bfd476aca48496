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

package qty

import "github.com/shopspring/decimal"

// StateGetter exposes the state a Converter consults when a conversion's
// rate depends on the current scope (spec §4.1). Implemented by
// engine/keeper against one substance record (a scope, not a stream).
type StateGetter interface {
	Population() decimal.Decimal
	AmortizedUnitVolume() decimal.Decimal // kg/unit, i.e. the record's sales initial charge
	Volume() decimal.Decimal
	GhgIntensity() decimal.Decimal // normalized to tCO2e/kg
	EnergyIntensity() decimal.Decimal
	YearsElapsed() decimal.Decimal
}

// override holds a single pinned slot; nil fields fall through to the base.
type override struct {
	population          *decimal.Decimal
	volume              *decimal.Decimal
	amortizedUnitVolume *decimal.Decimal
}

// OverridingStateGetter wraps a base StateGetter so callers can temporarily
// pin population/volume/amortizedUnitVolume during one conversion. Pins are
// stack-structured: Push returns a Pop func that must be called to restore
// the previous frame, implementing the "set → convert → clear" pattern from
// spec §4.1 in a nest-safe way (mirrors the teacher's call-depth and
// deepmind.Context.callIndexStack nesting discipline).
type OverridingStateGetter struct {
	base  StateGetter
	stack []override
}

func NewOverridingStateGetter(base StateGetter) *OverridingStateGetter {
	return &OverridingStateGetter{base: base, stack: []override{{}}}
}

func (o *OverridingStateGetter) top() override { return o.stack[len(o.stack)-1] }

// Pin names the slots Push pins; a nil field leaves that slot unpinned.
type Pin struct {
	Population          *decimal.Decimal
	Volume              *decimal.Decimal
	AmortizedUnitVolume *decimal.Decimal
}

// Push pins zero or more slots for the duration of one conversion and
// returns a Pop function. Pop MUST be called exactly once, typically via
// `defer`, and pushes/pops must nest strictly (LIFO) within a single call.
func (o *OverridingStateGetter) Push(pin Pin) (pop func()) {
	cur := o.top()
	next := cur
	if pin.Population != nil {
		next.population = pin.Population
	}
	if pin.Volume != nil {
		next.volume = pin.Volume
	}
	if pin.AmortizedUnitVolume != nil {
		next.amortizedUnitVolume = pin.AmortizedUnitVolume
	}
	o.stack = append(o.stack, next)
	depth := len(o.stack)
	return func() {
		if len(o.stack) != depth {
			panic("qty: OverridingStateGetter.Pop called out of order")
		}
		o.stack = o.stack[:depth-1]
	}
}

func (o *OverridingStateGetter) Population() decimal.Decimal {
	if v := o.top().population; v != nil {
		return *v
	}
	return o.base.Population()
}

func (o *OverridingStateGetter) Volume() decimal.Decimal {
	if v := o.top().volume; v != nil {
		return *v
	}
	return o.base.Volume()
}

func (o *OverridingStateGetter) AmortizedUnitVolume() decimal.Decimal {
	if v := o.top().amortizedUnitVolume; v != nil {
		return *v
	}
	return o.base.AmortizedUnitVolume()
}

func (o *OverridingStateGetter) GhgIntensity() decimal.Decimal    { return o.base.GhgIntensity() }
func (o *OverridingStateGetter) EnergyIntensity() decimal.Decimal { return o.base.EnergyIntensity() }
func (o *OverridingStateGetter) YearsElapsed() decimal.Decimal   { return o.base.YearsElapsed() }
