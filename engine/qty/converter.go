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

import (
	"github.com/shopspring/decimal"

	"github.com/SchmidtDSE/kigali-sim-sub006/engine/simerr"
)

var (
	thousand = decimal.New(1000, 0)
	hundred  = decimal.New(100, 0)
)

// Converter performs the state-dependent unit conversions listed in spec
// §4.1. It is stateless itself; all state comes from the StateGetter passed
// to Convert, so a single Converter can be shared across scopes.
type Converter struct{}

func NewConverter() *Converter { return &Converter{} }

// Convert converts q to target, consulting getter for any state-dependent
// rate. scope is attached to errors only.
func (c *Converter) Convert(q Quantity, target Unit, getter StateGetter, scope simerr.Scope) (Quantity, error) {
	from := q.Unit.Stem()
	to := target.Stem()

	if from == to {
		return New(q.Value, target), nil
	}

	switch {
	case from == Kilogram && to == MetricTon:
		return New(q.Value.Div(thousand), target), nil
	case from == MetricTon && to == Kilogram:
		return New(q.Value.Mul(thousand), target), nil
	case from == Kilogram && to == Gram:
		return New(q.Value.Mul(thousand), target), nil
	case from == Gram && to == Kilogram:
		return New(q.Value.Div(thousand), target), nil
	case from == MetricTon && to == Gram:
		return New(q.Value.Mul(thousand).Mul(thousand), target), nil
	case from == Gram && to == MetricTon:
		return New(q.Value.Div(thousand).Div(thousand), target), nil

	case from == Units && to == Kilogram:
		charge := getter.AmortizedUnitVolume()
		return New(q.Value.Mul(charge), target), nil
	case from == Kilogram && to == Units:
		charge := getter.AmortizedUnitVolume()
		if charge.IsZero() {
			return Quantity{}, &simerr.UnitConversionError{
				Scope: scope, FromUnit: string(q.Unit), ToUnit: string(target),
				Reason: "initial charge is zero",
			}
		}
		return New(q.Value.Div(charge), target), nil
	case from == Units && to == MetricTon:
		kg, err := c.Convert(q, Kilogram, getter, scope)
		if err != nil {
			return Quantity{}, err
		}
		return c.Convert(kg, target, getter, scope)
	case from == MetricTon && to == Units:
		kg, err := c.Convert(q, Kilogram, getter, scope)
		if err != nil {
			return Quantity{}, err
		}
		return c.Convert(kg, target, getter, scope)

	case from == Percent && to == Kilogram:
		base := getter.Volume()
		return New(q.Value.Div(hundred).Mul(base), target), nil
	case from == Kilogram && to == Percent:
		base := getter.Volume()
		if base.IsZero() {
			return Quantity{}, &simerr.UnitConversionError{
				Scope: scope, FromUnit: string(q.Unit), ToUnit: string(target),
				Reason: "volume base is zero",
			}
		}
		return New(q.Value.Div(base).Mul(hundred), target), nil

	case from == Kilogram && to == TCO2e:
		return New(q.Value.Mul(getter.GhgIntensity()), target), nil
	case from == TCO2e && to == Kilogram:
		intensity := getter.GhgIntensity()
		if intensity.IsZero() {
			return Quantity{}, &simerr.UnitConversionError{
				Scope: scope, FromUnit: string(q.Unit), ToUnit: string(target),
				Reason: "ghg intensity is zero",
			}
		}
		return New(q.Value.Div(intensity), target), nil
	case from == Kilogram && to == KgCO2e:
		return New(q.Value.Mul(getter.GhgIntensity()).Mul(thousand), target), nil
	case from == TCO2e && to == KgCO2e:
		return New(q.Value.Mul(thousand), target), nil
	case from == KgCO2e && to == TCO2e:
		return New(q.Value.Div(thousand), target), nil

	case from == Units && to == Kwh:
		return New(q.Value.Mul(getter.EnergyIntensity()), target), nil
	case from == Kilogram && to == Kwh:
		charge := getter.AmortizedUnitVolume()
		if charge.IsZero() {
			return Quantity{}, &simerr.UnitConversionError{
				Scope: scope, FromUnit: string(q.Unit), ToUnit: string(target),
				Reason: "initial charge is zero",
			}
		}
		units := q.Value.Div(charge)
		return New(units.Mul(getter.EnergyIntensity()), target), nil

	case from == Years:
		return New(q.Value, target), nil
	}

	return Quantity{}, &simerr.UnitConversionError{
		Scope: scope, FromUnit: string(q.Unit), ToUnit: string(target),
		Reason: "no conversion rule between these units",
	}
}
