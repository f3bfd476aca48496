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

// Precision is the number of digits after the decimal point that a
// non-terminating division keeps (decimal.DivisionPrecision); it counts
// decimal places, not significant digits.
const Precision = 40

func init() {
	decimal.DivisionPrecision = Precision
}

var (
	half = decimal.New(5, -1)
	one  = decimal.New(1, 0)
)

// RoundHalfUp rounds d to the given number of decimal places using plain
// half-up rounding (ties move away from zero), never banker's rounding, per
// spec §4.1 ("banker's-rounding disallowed; use plain half-up").
func RoundHalfUp(d decimal.Decimal, places int32) decimal.Decimal {
	scale := decimal.New(1, places)
	scaled := d.Mul(scale)
	truncated := scaled.Truncate(0)
	remainder := scaled.Sub(truncated)

	switch {
	case remainder.GreaterThanOrEqual(half):
		truncated = truncated.Add(one)
	case remainder.LessThanOrEqual(half.Neg()):
		truncated = truncated.Sub(one)
	}
	return truncated.Div(scale)
}
