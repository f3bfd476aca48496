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

// Package runner drives a parsed program's declared scenarios to completion,
// one engine/machine pair per scenario-trial, the way core/blockchain.go's
// insertChain walks a batch of blocks through processBlock and collects a
// blockProcessingResult per unit of work. Scenario-trials share no mutable
// state, so cross-scenario and cross-trial fan-out uses
// golang.org/x/sync/errgroup the same way the teacher's go.mod already
// depends on it for bounded concurrent fan-out elsewhere in the corpus.
package runner

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/SchmidtDSE/kigali-sim-sub006/engine"
	"github.com/SchmidtDSE/kigali-sim-sub006/engine/lang/ast"
	"github.com/SchmidtDSE/kigali-sim-sub006/engine/machine"
	"github.com/SchmidtDSE/kigali-sim-sub006/engine/results"
)

// TrialError reports that one scenario-trial aborted; its siblings still
// run to completion (spec's "a failed trial marks only that trial as
// failed; remaining trials continue").
type TrialError struct {
	Scenario string
	Trial    int
	Err      error
}

func (e *TrialError) Error() string {
	return fmt.Sprintf("scenario %q trial %d: %v", e.Scenario, e.Trial, e.Err)
}

func (e *TrialError) Unwrap() error { return e.Err }

// Runner executes every `simulate` block in a parsed program.
type Runner struct {
	// Horizon resolves a scenario's "to onwards" end year when the grammar
	// leaves it unbounded (the language has no outer document-level year
	// range to fall back on). Zero means every "onwards" scenario fails
	// with a TrialError rather than silently picking an arbitrary horizon.
	Horizon int

	// OnYearStart/OnYearEnd, when set, are attached to every trial's Engine
	// as progress-reporting hooks (spec's "the scenario runner is the only
	// component allowed to block for progress reporting").
	OnYearStart func(scenario string, trial, year int)
	OnYearEnd   func(scenario string, trial, year int)

	// MaxConcurrency caps how many scenario-trials run at once. Zero means
	// errgroup's default of unbounded concurrency.
	MaxConcurrency int
}

// Run executes every scenario named in prog.Simulations, each trial on its
// own Engine instance, and returns every produced row plus one TrialError
// per trial that aborted. A nil Simulations stanza produces no rows and no
// errors.
func (r *Runner) Run(prog *ast.Program) ([]results.Record, []*TrialError) {
	if prog.Simulations == nil {
		return nil, nil
	}

	type outcome struct {
		rows []results.Record
		err  *TrialError
	}

	var scenarioTrials [][]outcome
	var g errgroup.Group
	if r.MaxConcurrency > 0 {
		g.SetLimit(r.MaxConcurrency)
	}
	for _, sc := range prog.Simulations.Scenarios {
		sc := sc
		trials := sc.Trials
		if trials <= 0 {
			trials = 1
		}
		slot := make([]outcome, trials)
		scenarioTrials = append(scenarioTrials, slot)
		for t := 0; t < trials; t++ {
			t := t
			g.Go(func() error {
				rows, err := r.runTrial(prog, sc, t)
				if err != nil {
					slot[t] = outcome{err: &TrialError{Scenario: sc.Name, Trial: t, Err: err}}
					return nil // never cancel sibling trials
				}
				slot[t] = outcome{rows: rows}
				return nil
			})
		}
	}
	_ = g.Wait() // every Go func above always returns nil; failures travel via slot[t].err

	var rows []results.Record
	var errs []*TrialError
	for _, slot := range scenarioTrials {
		for _, o := range slot {
			if o.err != nil {
				errs = append(errs, o.err)
				continue
			}
			rows = append(rows, o.rows...)
		}
	}
	return rows, errs
}

// Validate resolves every scenario's policy chain and end year and executes
// a single year (the default stanza then each named policy, once) without
// advancing the year loop, matching the CLI's `validate` mode: "parses and
// interprets without running years". It returns one TrialError per scenario
// whose first trial failed to construct or execute; a scenario that passes
// contributes no entry.
func (r *Runner) Validate(prog *ast.Program) []*TrialError {
	if prog.Simulations == nil {
		return nil
	}

	var errs []*TrialError
	for _, sc := range prog.Simulations.Scenarios {
		if _, err := r.validateScenario(prog, sc); err != nil {
			errs = append(errs, &TrialError{Scenario: sc.Name, Trial: 0, Err: err})
		}
	}
	return errs
}

func (r *Runner) validateScenario(prog *ast.Program, sc *ast.ScenarioDef) ([]results.Record, error) {
	policies := make([]*ast.PolicyStanza, 0, len(sc.Policies))
	for _, name := range sc.Policies {
		p := findPolicy(prog.Policies, name)
		if p == nil {
			return nil, fmt.Errorf("scenario %q: unknown policy %q", sc.Name, name)
		}
		policies = append(policies, p)
	}

	end := sc.End
	if sc.EndOnwards {
		end = sc.Start // validate never advances years, so onwards needs no horizon
	}

	eng := engine.New(sc.Start, end)
	m := machine.New(eng, sc.Name, 0, true)
	if err := m.LoadVariables(prog.Variables); err != nil {
		return nil, err
	}

	if prog.Default != nil {
		m.EnterStanza()
		if err := m.RunApplications("default", prog.Default.Applications); err != nil {
			return nil, err
		}
	}
	for _, p := range policies {
		m.EnterStanza()
		if err := m.RunApplications(p.Name, p.Applications); err != nil {
			return nil, err
		}
	}

	return results.SnapshotAll(sc.Name, 0, sc.Start, eng.Keeper), nil
}

func findPolicy(policies []*ast.PolicyStanza, name string) *ast.PolicyStanza {
	for _, p := range policies {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// runTrial executes one (scenario, trial) pair to completion per spec.md
// §4.8: instantiate a fresh engine, then for every simulated year execute
// the default stanza followed by each named policy in declared order,
// snapshotting results before advancing to the next year.
func (r *Runner) runTrial(prog *ast.Program, sc *ast.ScenarioDef, trial int) ([]results.Record, error) {
	end := sc.End
	if sc.EndOnwards {
		if r.Horizon <= 0 {
			return nil, fmt.Errorf("scenario %q ends \"onwards\" but no horizon is configured", sc.Name)
		}
		end = r.Horizon
	}
	if end < sc.Start {
		return nil, fmt.Errorf("scenario %q: resolved end year %d precedes start year %d", sc.Name, end, sc.Start)
	}

	policies := make([]*ast.PolicyStanza, 0, len(sc.Policies))
	for _, name := range sc.Policies {
		p := findPolicy(prog.Policies, name)
		if p == nil {
			return nil, fmt.Errorf("scenario %q: unknown policy %q", sc.Name, name)
		}
		policies = append(policies, p)
	}

	eng := engine.New(sc.Start, end)
	eng.Hooks = engine.Hooks{
		OnYearStart: func(year int) {
			if r.OnYearStart != nil {
				r.OnYearStart(sc.Name, trial, year)
			}
		},
		OnYearEnd: func(year int) {
			if r.OnYearEnd != nil {
				r.OnYearEnd(sc.Name, trial, year)
			}
		},
	}

	deterministic := sc.Trials <= 1
	m := machine.New(eng, sc.Name, trial, deterministic)
	if err := m.LoadVariables(prog.Variables); err != nil {
		return nil, err
	}

	var rows []results.Record
	for year := sc.Start; year <= end; year++ {
		if prog.Default != nil {
			m.EnterStanza()
			if err := m.RunApplications("default", prog.Default.Applications); err != nil {
				return nil, err
			}
		}
		for _, p := range policies {
			m.EnterStanza()
			if err := m.RunApplications(p.Name, p.Applications); err != nil {
				return nil, err
			}
		}

		rows = append(rows, results.SnapshotAll(sc.Name, trial, year, eng.Keeper)...)

		if year != end {
			if err := eng.IncrementYear(); err != nil {
				return nil, err
			}
		}
	}
	return rows, nil
}
