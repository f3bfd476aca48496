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

// Package safemath provides overflow-checked uint64 arithmetic. No other
// package in this module calls it; engine/qty's quantity arithmetic is
// decimal-backed.
package safemath

import "math"

const MaxUint64 = math.MaxUint64

// SafeAdd returns x+y and reports whether the addition overflowed uint64.
func SafeAdd(x, y uint64) (uint64, bool) {
	return x + y, y > MaxUint64-x
}

// SafeSub returns x-y and reports whether the subtraction underflowed.
func SafeSub(x, y uint64) (uint64, bool) {
	return x - y, y > x
}

// SafeMul returns x*y and reports whether the multiplication overflowed.
func SafeMul(x, y uint64) (uint64, bool) {
	if x == 0 || y == 0 {
		return 0, false
	}
	result := x * y
	return result, result/y != x
}
