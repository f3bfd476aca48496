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
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/SchmidtDSE/kigali-sim-sub006/engine/lang/parser"
	"github.com/SchmidtDSE/kigali-sim-sub006/engine/runner"
	"github.com/SchmidtDSE/kigali-sim-sub006/internal/csvout"
	"github.com/SchmidtDSE/kigali-sim-sub006/log"
)

// exitFileNotFound, exitFailure mirror spec.md §6's CLI exit codes: 0
// success, 1 file not found, 2 validation or runtime failure.
const (
	exitFileNotFound = 1
	exitFailure      = 2
)

var outputFlag = &cli.StringFlag{
	Name:     "output",
	Aliases:  []string{"o"},
	Usage:    "CSV output path (.csv.gz compresses)",
	Required: true,
}

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "Execute every declared scenario and write result rows to CSV",
	ArgsUsage: "<script.qta>",
	Flags:     append([]cli.Flag{outputFlag, gzipFlag, horizonFlag, maxConcurrencyFlag}, globalFlags...),
	Action:    runAction,
}

func runAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err, exitFailure)
	}
	setupLogging(c, cfg)
	runID := newRunID()
	if reporter, cancel := setupMetrics(c); reporter != nil {
		defer cancel()
		defer reporter.Close()
	}

	scriptPath := c.Args().First()
	if scriptPath == "" {
		return cli.Exit("missing <script.qta> argument", exitFailure)
	}
	src, err := os.ReadFile(scriptPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cli.Exit(fmt.Sprintf("script not found: %s", scriptPath), exitFileNotFound)
		}
		return cli.Exit(err, exitFailure)
	}

	prog, errList := parser.Parse(string(src))
	if errList.HasErrors() {
		return cli.Exit(color.RedString("parse error: %s", errList.Error()), exitFailure)
	}

	horizon := c.Int(horizonFlag.Name)
	if horizon == 0 {
		horizon = cfg.MonteCarlo.Horizon
	}
	maxConcurrency := c.Int(maxConcurrencyFlag.Name)
	if maxConcurrency == 0 {
		maxConcurrency = cfg.MonteCarlo.MaxConcurrency
	}

	r := &runner.Runner{
		Horizon:        horizon,
		MaxConcurrency: maxConcurrency,
		OnYearEnd: func(scenario string, trial, year int) {
			log.Debug("year complete", "scenario", scenario, "trial", trial, "year", year)
		},
	}
	rows, trialErrs := r.Run(prog)
	for _, te := range trialErrs {
		log.Warn("trial failed", "scenario", te.Scenario, "trial", te.Trial, "error", te.Err)
	}

	outPath := c.String(outputFlag.Name)
	gzipOut := c.Bool(gzipFlag.Name) || cfg.Output.Gzip || strings.HasSuffix(outPath, ".gz")

	out, err := os.Create(outPath)
	if err != nil {
		return cli.Exit(err, exitFailure)
	}
	defer out.Close()

	if gzipOut {
		err = csvout.WriteGzip(out, rows)
	} else {
		err = csvout.Write(out, rows)
	}
	if err != nil {
		return cli.Exit(err, exitFailure)
	}

	log.Info("run complete", "runID", runID, "rows", len(rows), "failedTrials", len(trialErrs), "output", outPath)
	if len(trialErrs) > 0 {
		return cli.Exit(color.YellowString("%d trial(s) failed", len(trialErrs)), exitFailure)
	}
	color.Green("wrote %d rows to %s", len(rows), outPath)
	return nil
}
