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

package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func withEnabled(t *testing.T, enabled bool, fn func()) {
	t.Helper()
	prev := Enabled
	Enabled = enabled
	defer func() { Enabled = prev }()
	fn()
}

func TestCounterDisabledIsNil(t *testing.T) {
	withEnabled(t, false, func() {
		c := NewCounter()
		c.Inc(5)
		assert.Equal(t, int64(0), c.Count())
	})
}

func TestCounterEnabledAccumulates(t *testing.T) {
	withEnabled(t, true, func() {
		c := NewCounter()
		c.Inc(3)
		c.Inc(4)
		assert.Equal(t, int64(7), c.Count())
	})
}

func TestHistogramDisabledIsNil(t *testing.T) {
	withEnabled(t, false, func() {
		h := NewHistogram()
		h.Update(100)
		assert.Empty(t, h.Values())
	})
}

func TestHistogramEnabledRecordsUpToReservoir(t *testing.T) {
	withEnabled(t, true, func() {
		h := NewHistogram()
		for i := 0; i < 10; i++ {
			h.Update(int64(i))
		}
		assert.Len(t, h.Values(), 10)
	})
}

func TestRegistryGetOrRegisterIsIdempotent(t *testing.T) {
	withEnabled(t, true, func() {
		reg := NewRegistry()
		a := reg.GetOrRegisterCounter("recalc.paramChange")
		b := reg.GetOrRegisterCounter("recalc.paramChange")
		a.Inc(1)
		assert.Equal(t, int64(1), b.Count())
	})
}

func TestRegistryEachVisitsCountersAndHistograms(t *testing.T) {
	withEnabled(t, true, func() {
		reg := NewRegistry()
		reg.GetOrRegisterCounter("commands.total").Inc(2)
		reg.GetOrRegisterHistogram("scenario.durationNs").Update(1000)

		var sawCounter, sawHistogram bool
		reg.Each(func(name string, c Counter, h Histogram) {
			switch name {
			case "commands.total":
				sawCounter = c != nil
			case "scenario.durationNs":
				sawHistogram = h != nil
			}
		})
		assert.True(t, sawCounter)
		assert.True(t, sawHistogram)
	})
}
