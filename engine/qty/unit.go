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
	"strings"
)

// Unit is one of the recognized QubecTalk units (spec §4.1). It is a plain
// string type, the same small-value-type idiom the teacher uses for
// common.Address and similar tags.
type Unit string

const (
	Kilogram    Unit = "kg"
	MetricTon   Unit = "mt"
	Gram        Unit = "g"
	TCO2e       Unit = "tCO2e"
	KgCO2e      Unit = "kgCO2e"
	Kwh         Unit = "kwh"
	Units       Unit = "units"
	Percent     Unit = "%"
	Years       Unit = "years"
	KgPerUnit   Unit = "kg/unit"
	TCO2ePerKg  Unit = "tCO2e/kg"
	TCO2ePerMt  Unit = "tCO2e/mt"
	KgCO2ePerKg Unit = "kgCO2e/kg"
	KgCO2ePerMt Unit = "kgCO2e/mt"
	KwhPerKg    Unit = "kwh/kg"
	KwhPerMt    Unit = "kwh/mt"
	KwhPerUnit  Unit = "kwh/unit"
	PercentYear Unit = "%/year"
	UnitsYear   Unit = "units/year"
	KgYear      Unit = "kg/year"
	MtYear      Unit = "mt/year"
)

var recognized = map[Unit]bool{
	Kilogram: true, MetricTon: true, Gram: true, TCO2e: true, KgCO2e: true,
	Kwh: true, Units: true, Percent: true, Years: true, KgPerUnit: true,
	TCO2ePerKg: true, TCO2ePerMt: true, KgCO2ePerKg: true, KgCO2ePerMt: true,
	KwhPerKg: true, KwhPerMt: true, KwhPerUnit: true, PercentYear: true,
	UnitsYear: true, KgYear: true, MtYear: true,
}

// ParseUnit normalizes textual unit spellings from source (singular/plural
// forms of unit, year and units/year, and kg/units) into a canonical Unit.
func ParseUnit(raw string) (Unit, error) {
	s := strings.TrimSpace(raw)
	switch s {
	case "unit":
		s = "units"
	case "year":
		s = "years"
	case "kg/units":
		s = "kg/unit"
	case "unit/year", "units/years", "unit/years":
		s = "units/year"
	}
	u := Unit(s)
	if !recognized[u] {
		return "", fmt.Errorf("unrecognized unit %q", raw)
	}
	return u, nil
}

// IsRate reports whether u carries a "/year" suffix.
func (u Unit) IsRate() bool { return strings.HasSuffix(string(u), "/year") }

// Stem strips a "/year" suffix. Per spec §4.1, a rate is numerically
// identical to its stem in an annual-step world, so arithmetic and
// conversion both operate on the stem.
func (u Unit) Stem() Unit {
	if u.IsRate() {
		return Unit(strings.TrimSuffix(string(u), "/year"))
	}
	return u
}

func (u Unit) String() string { return string(u) }
