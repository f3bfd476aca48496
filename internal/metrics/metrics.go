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

// Package metrics provides named counters and histograms behind an Enabled
// gate; no other package in this module registers or updates one, so the
// InfluxDB reporter pushes an empty registry. It uses the same Sample/Registry/NilSample
// shape as the teacher's metrics package (the reservoir itself is a plain
// uniform sample rather than a full sliding-time-window port: the
// retrieval pack carried sliding_time_window_array_sample.go but not its
// ChunkedAssociativeArray backing type, so there was nothing to adapt that
// backing structure from).
package metrics

import (
	"math/rand"
	"sync"
	"sync/atomic"
)

// Enabled gates every constructor in this package: when false, every
// counter/histogram is a NilCounter/NilHistogram that discards writes at
// near-zero cost, so instrumentation can stay in the call sites
// unconditionally.
var Enabled = false

// Counter is a monotonically increasing named count.
type Counter interface {
	Inc(delta int64)
	Count() int64
}

type standardCounter struct{ count int64 }

func (c *standardCounter) Inc(delta int64) { atomic.AddInt64(&c.count, delta) }
func (c *standardCounter) Count() int64    { return atomic.LoadInt64(&c.count) }

// NilCounter discards every Inc call.
type NilCounter struct{}

func (NilCounter) Inc(int64)    {}
func (NilCounter) Count() int64 { return 0 }

// NewCounter returns a standardCounter, or NilCounter if !Enabled.
func NewCounter() Counter {
	if !Enabled {
		return NilCounter{}
	}
	return &standardCounter{}
}

const reservoirSize = 1028

// Histogram records a bounded uniform sample of observed int64 values for
// later percentile summary.
type Histogram interface {
	Update(v int64)
	Values() []int64
}

type uniformHistogram struct {
	mu     sync.Mutex
	values []int64
	count  int64
	rng    *rand.Rand
}

func (h *uniformHistogram) Update(v int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	if len(h.values) < reservoirSize {
		h.values = append(h.values, v)
		return
	}
	if idx := h.rng.Int63n(h.count); idx < int64(len(h.values)) {
		h.values[idx] = v
	}
}

func (h *uniformHistogram) Values() []int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]int64, len(h.values))
	copy(out, h.values)
	return out
}

// NilHistogram discards every Update call.
type NilHistogram struct{}

func (NilHistogram) Update(int64)    {}
func (NilHistogram) Values() []int64 { return nil }

// NewHistogram returns a uniformHistogram, or NilHistogram if !Enabled.
func NewHistogram() Histogram {
	if !Enabled {
		return NilHistogram{}
	}
	return &uniformHistogram{rng: rand.New(rand.NewSource(1))}
}

// Registry is a process-wide set of named counters/histograms, guarding
// lazy get-or-register the way the teacher's metrics.Registry does.
type Registry struct {
	mu         sync.Mutex
	counters   map[string]Counter
	histograms map[string]Histogram
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{counters: map[string]Counter{}, histograms: map[string]Histogram{}}
}

// GetOrRegisterCounter returns the named counter, creating it on first use.
func (r *Registry) GetOrRegisterCounter(name string) Counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.counters[name]; ok {
		return c
	}
	c := NewCounter()
	r.counters[name] = c
	return c
}

// GetOrRegisterHistogram returns the named histogram, creating it on first use.
func (r *Registry) GetOrRegisterHistogram(name string) Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.histograms[name]; ok {
		return h
	}
	h := NewHistogram()
	r.histograms[name] = h
	return h
}

// Each applies fn to every registered counter and histogram by name.
func (r *Registry) Each(fn func(name string, c Counter, h Histogram)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, c := range r.counters {
		fn(name, c, nil)
	}
	for name, h := range r.histograms {
		fn(name, nil, h)
	}
}

// DefaultRegistry is the process-wide registry used by package-level
// convenience accessors, mirroring the teacher's metrics.DefaultRegistry.
var DefaultRegistry = NewRegistry()
