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

// Package machine is the tree-walking evaluator that drives an Engine from
// a parsed ast.Program: a scope chain of variables, a machine-owned seeded
// RNG for Monte Carlo sampling, and command dispatch modeled on
// core/vm/evm.go's depth-tracked Call/CallCode/DelegateCall/StaticCall
// family — here the "depth stack" is the variable scope chain instead of
// call frames.
package machine

import (
	"hash/fnv"
	"math/rand/v2"

	"github.com/SchmidtDSE/kigali-sim-sub006/engine"
	"github.com/SchmidtDSE/kigali-sim-sub006/engine/lang/ast"
	"github.com/SchmidtDSE/kigali-sim-sub006/engine/qty"
	"github.com/SchmidtDSE/kigali-sim-sub006/engine/simerr"
)

var protectedNames = map[string]bool{"yearAbsolute": true, "yearsElapsed": true}

// Seed derives a deterministic 64-bit RNG seed from a scenario name and
// trial index (spec.md §9 "Monte Carlo seeding"), so re-running the same
// scenario/trial pair always draws the same samples.
func Seed(scenarioName string, trialIndex int) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(scenarioName))
	_, _ = h.Write([]byte{byte(trialIndex), byte(trialIndex >> 8), byte(trialIndex >> 16), byte(trialIndex >> 24)})
	return h.Sum64()
}

// Machine walks an ast.Program against one Engine, evaluating expressions
// with an explicit pushdown value stack and dispatching commands into the
// engine's public operation surface.
type Machine struct {
	Engine        *engine.Engine
	Deterministic bool

	rng    *rand.Rand
	stack  []qty.Quantity
	scopes []map[string]qty.Quantity // [0]=variables stanza, [1]=current default/policy stanza, [2:]=substance-local frames
}

// New constructs a Machine bound to eng, seeded for one (scenario, trial)
// pair. Deterministic runs (trials == 1, no Monte Carlo) should set
// deterministic=true so samplers return their mean/midpoint instead of
// drawing from the RNG.
func New(eng *engine.Engine, scenarioName string, trialIndex int, deterministic bool) *Machine {
	seed := Seed(scenarioName, trialIndex)
	src := rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)
	return &Machine{
		Engine:        eng,
		Deterministic: deterministic,
		rng:           rand.New(src),
		scopes:        []map[string]qty.Quantity{{}, {}},
	}
}

// EnterStanza resets the stanza-level scope (index 1) for a new
// default/policy stanza; variable-level scope (index 0) persists across
// stanzas per spec.md §4.4.
func (m *Machine) EnterStanza() { m.scopes[1] = map[string]qty.Quantity{} }

// EnterSubstance pushes a fresh substance-local scope frame.
func (m *Machine) EnterSubstance() { m.scopes = append(m.scopes, map[string]qty.Quantity{}) }

// ExitSubstance pops the innermost substance-local scope frame.
func (m *Machine) ExitSubstance() {
	if len(m.scopes) > 2 {
		m.scopes = m.scopes[:len(m.scopes)-1]
	}
}

// Define binds name to value in the innermost scope frame.
func (m *Machine) Define(name string, value qty.Quantity) error {
	if protectedNames[name] {
		return &simerr.ProtectedVariableError{Name: name}
	}
	m.scopes[len(m.scopes)-1][name] = value
	return nil
}

// Lookup searches scope frames from innermost to outermost.
func (m *Machine) Lookup(name string) (qty.Quantity, bool) {
	for i := len(m.scopes) - 1; i >= 0; i-- {
		if v, ok := m.scopes[i][name]; ok {
			return v, true
		}
	}
	return qty.Quantity{}, false
}

// push/pop/GetResult implement the explicit value stack spec.md §4.4 names.
func (m *Machine) push(v qty.Quantity) { m.stack = append(m.stack, v) }

func (m *Machine) pop() qty.Quantity {
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v
}

// GetResult returns the most recently pushed value without popping it,
// for callers (tests, tracing) that want to inspect the machine's current
// top-of-stack after an Eval call.
func (m *Machine) GetResult() (qty.Quantity, bool) {
	if len(m.stack) == 0 {
		return qty.Quantity{}, false
	}
	return m.stack[len(m.stack)-1], true
}

// RunApplications executes every application/substance body in apps
// against stanzaName, in source order.
func (m *Machine) RunApplications(stanzaName string, apps []*ast.ApplicationDef) error {
	m.Engine.SetStanza(stanzaName)
	for _, app := range apps {
		m.Engine.SetApplication(app.Name)
		for _, sub := range app.Substances {
			if err := m.runSubstance(sub); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Machine) runSubstance(def *ast.SubstanceDef) error {
	if err := m.Engine.SetSubstance(def.Name, false); err != nil {
		return err
	}
	m.EnterSubstance()
	defer m.ExitSubstance()
	for _, cmd := range def.Commands {
		if err := m.Exec(cmd); err != nil {
			return err
		}
	}
	return nil
}

// LoadVariables evaluates every `define` in an optional `variables` stanza
// into the machine's outermost (module-level) scope frame.
func (m *Machine) LoadVariables(stanza *ast.VariablesStanza) error {
	if stanza == nil {
		return nil
	}
	for _, def := range stanza.Defines {
		v, err := m.Eval(def.Value)
		if err != nil {
			return err
		}
		prev := m.scopes
		m.scopes = m.scopes[:1] // defines at module level regardless of later nesting
		err = m.Define(def.Name, v)
		m.scopes = prev
		if err != nil {
			return err
		}
	}
	return nil
}

// resolveWindow converts an ast.DuringWindow (whose endpoints may be the
// keywords "beginning"/"onwards") into an engine.Window of absolute years.
func (m *Machine) resolveWindow(dw *ast.DuringWindow) *engine.Window {
	if dw == nil {
		return nil
	}
	return engine.NewWindow(m.resolveYearRef(dw.Start), m.resolveYearRef(dw.End))
}

func (m *Machine) resolveYearRef(yr *ast.YearRef) *int {
	if yr == nil {
		return nil
	}
	var y int
	switch {
	case yr.Beginning:
		y = m.Engine.StartYear
	case yr.Onwards:
		y = m.Engine.EndYear
	default:
		y = yr.Year
	}
	return &y
}
