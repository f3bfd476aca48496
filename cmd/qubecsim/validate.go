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

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/SchmidtDSE/kigali-sim-sub006/engine/lang/parser"
	"github.com/SchmidtDSE/kigali-sim-sub006/engine/runner"
)

var validateCommand = &cli.Command{
	Name:      "validate",
	Usage:     "Parse and interpret a script without running any years",
	ArgsUsage: "<script.qta>",
	Flags:     globalFlags,
	Action:    validateAction,
}

func validateAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err, exitFailure)
	}
	setupLogging(c, cfg)
	newRunID()

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

	r := &runner.Runner{}
	if trialErrs := r.Validate(prog); len(trialErrs) > 0 {
		for _, te := range trialErrs {
			color.Red("scenario %q: %v", te.Scenario, te.Err)
		}
		return cli.Exit(fmt.Sprintf("%d scenario(s) failed validation", len(trialErrs)), exitFailure)
	}

	color.Green("%s is valid", scriptPath)
	return nil
}
