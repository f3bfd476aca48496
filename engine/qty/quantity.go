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
	"fmt"

	"github.com/shopspring/decimal"
)

// Quantity is a decimal value tagged with a Unit, plus the original literal
// text from source (kept only so generated/echoed code can reproduce the
// user's exact spelling, per spec §4.1).
type Quantity struct {
	Value   decimal.Decimal
	Unit    Unit
	Literal string
}

func New(value decimal.Decimal, unit Unit) Quantity {
	return Quantity{Value: value, Unit: unit}
}

func NewWithLiteral(value decimal.Decimal, unit Unit, literal string) Quantity {
	return Quantity{Value: value, Unit: unit, Literal: literal}
}

func Zero(unit Unit) Quantity { return New(decimal.Zero, unit) }

func (q Quantity) IsZero() bool { return q.Value.IsZero() }

func (q Quantity) Sign() int { return q.Value.Sign() }

func (q Quantity) Neg() Quantity { return New(q.Value.Neg(), q.Unit) }

// sameFamily reports whether a and b can be added/subtracted directly,
// treating a "/year" rate as identical to its stem (spec §4.1).
func sameFamily(a, b Unit) bool { return a.Stem() == b.Stem() }

func (q Quantity) Add(other Quantity) (Quantity, error) {
	if !sameFamily(q.Unit, other.Unit) {
		return Quantity{}, fmt.Errorf("cannot add %s to %s", other.Unit, q.Unit)
	}
	return New(q.Value.Add(other.Value), q.Unit), nil
}

func (q Quantity) Sub(other Quantity) (Quantity, error) {
	if !sameFamily(q.Unit, other.Unit) {
		return Quantity{}, fmt.Errorf("cannot subtract %s from %s", other.Unit, q.Unit)
	}
	return New(q.Value.Sub(other.Value), q.Unit), nil
}

// MulScalar scales the value by a dimensionless decimal (e.g. a rate
// fraction already extracted from a % quantity).
func (q Quantity) MulScalar(scalar decimal.Decimal) Quantity {
	return New(q.Value.Mul(scalar), q.Unit)
}

func (q Quantity) DivScalar(scalar decimal.Decimal) Quantity {
	return New(q.Value.Div(scalar), q.Unit)
}

// ClampNonNegative returns max(q, 0), preserving unit. Used throughout
// engine/recalc wherever spec §3 invariant 2 ("domestic, import ≥ 0")
// requires clamping.
func (q Quantity) ClampNonNegative() Quantity {
	if q.Value.IsNegative() {
		return New(decimal.Zero, q.Unit)
	}
	return q
}

func (q Quantity) String() string {
	return fmt.Sprintf("%s %s", q.Value.String(), q.Unit)
}

// Cmp compares values of quantities in the same family; callers must
// convert to a common unit first if the families differ.
func (q Quantity) Cmp(other Quantity) int { return q.Value.Cmp(other.Value) }
