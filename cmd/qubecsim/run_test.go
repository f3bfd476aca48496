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
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

const testScript = `
start default
define application "Domestic Refrigeration"
uses substance "HFC-134a"
enable domestic
initial charge with 1 kg for domestic
set priorEquipment to 10000 units during year beginning
recharge 5 % with 1 kg
set domestic to 1000 units during year beginning
end substance
end application
end default

start simulations
simulate "Baseline" from years 2025 to 2026
end simulations
`

func newTestContext(t *testing.T, cmd *cli.Command, args []string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range cmd.Flags {
		require.NoError(t, f.Apply(set))
	}
	require.NoError(t, set.Parse(args))
	return cli.NewContext(newApp(), set, nil)
}

func writeScript(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "script.qta")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestRunActionWritesCSV(t *testing.T) {
	scriptPath := writeScript(t, testScript)
	outPath := filepath.Join(t.TempDir(), "out.csv")

	ctx := newTestContext(t, runCommand, []string{"--output", outPath, scriptPath})
	err := runAction(ctx)
	require.NoError(t, err)

	body, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(body), "scenario,trial,year")
	assert.Contains(t, string(body), "Baseline")
}

func TestRunActionMissingScriptFileExitsWithFileNotFound(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "out.csv")
	ctx := newTestContext(t, runCommand, []string{"--output", outPath, "/no/such/script.qta"})

	err := runAction(ctx)
	require.Error(t, err)
	coder, ok := err.(cli.ExitCoder)
	require.True(t, ok)
	assert.Equal(t, exitFileNotFound, coder.ExitCode())
}

func TestRunActionGzipSuffixCompressesOutput(t *testing.T) {
	scriptPath := writeScript(t, testScript)
	outPath := filepath.Join(t.TempDir(), "out.csv.gz")

	ctx := newTestContext(t, runCommand, []string{"--output", outPath, scriptPath})
	require.NoError(t, runAction(ctx))

	info, err := os.Stat(outPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
