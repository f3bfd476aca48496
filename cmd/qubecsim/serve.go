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

package main

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/urfave/cli/v2"

	"github.com/SchmidtDSE/kigali-sim-sub006/engine/lang/ast"
	"github.com/SchmidtDSE/kigali-sim-sub006/engine/lang/parser"
	"github.com/SchmidtDSE/kigali-sim-sub006/engine/runner"
	"github.com/SchmidtDSE/kigali-sim-sub006/internal/csvout"
	"github.com/SchmidtDSE/kigali-sim-sub006/internal/httpsrv"
	"github.com/SchmidtDSE/kigali-sim-sub006/log"
)

var addrFlag = &cli.StringFlag{
	Name:  "addr",
	Usage: "Listen address for the optional HTTP surface",
	Value: "127.0.0.1:8090",
}

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Serve the optional GET ?script=&simulation= HTTP surface",
	Flags:  append([]cli.Flag{addrFlag, horizonFlag, maxConcurrencyFlag}, globalFlags...),
	Action: serveAction,
}

func serveAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err, exitFailure)
	}
	setupLogging(c, cfg)
	newRunID()
	if reporter, cancel := setupMetrics(c); reporter != nil {
		defer cancel()
		defer reporter.Close()
	}

	horizon := c.Int(horizonFlag.Name)
	if horizon == 0 {
		horizon = cfg.MonteCarlo.Horizon
	}
	maxConcurrency := c.Int(maxConcurrencyFlag.Name)
	if maxConcurrency == 0 {
		maxConcurrency = cfg.MonteCarlo.MaxConcurrency
	}

	handler := httpsrv.Handler(newHTTPRunner(horizon, maxConcurrency))
	addr := c.String(addrFlag.Name)
	log.Info("serving", "addr", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		return cli.Exit(err, exitFailure)
	}
	return nil
}

// newHTTPRunner closes the seam internal/httpsrv.Runner leaves open, so that
// package never needs to import engine/runner directly. A missing
// simulation name returns a header-only CSV (spec.md §6); a name that
// doesn't match any declared scenario is httpsrv.ErrUnknownSimulation.
func newHTTPRunner(horizon, maxConcurrency int) httpsrv.Runner {
	return func(src, simulation string) ([]byte, error) {
		prog, errList := parser.Parse(src)
		if errList.HasErrors() {
			return nil, errList
		}

		var buf bytes.Buffer
		if simulation == "" {
			if err := csvout.Write(&buf, nil); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		}

		scenario := findScenario(prog, simulation)
		if scenario == nil {
			return nil, httpsrv.ErrUnknownSimulation
		}

		filtered := &ast.Program{
			Variables: prog.Variables,
			Default:   prog.Default,
			Policies:  prog.Policies,
			Simulations: &ast.SimulationsStanza{
				Scenarios: []*ast.ScenarioDef{scenario},
			},
		}

		r := &runner.Runner{Horizon: horizon, MaxConcurrency: maxConcurrency}
		rows, trialErrs := r.Run(filtered)
		if len(trialErrs) > 0 {
			return nil, fmt.Errorf("simulation %q: %w", simulation, trialErrs[0])
		}

		if err := csvout.Write(&buf, rows); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
}

func findScenario(prog *ast.Program, name string) *ast.ScenarioDef {
	if prog.Simulations == nil {
		return nil
	}
	for _, sc := range prog.Simulations.Scenarios {
		if sc.Name == name {
			return sc
		}
	}
	return nil
}
