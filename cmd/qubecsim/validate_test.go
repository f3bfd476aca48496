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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestValidateActionAcceptsValidScript(t *testing.T) {
	scriptPath := writeScript(t, testScript)
	ctx := newTestContext(t, validateCommand, []string{scriptPath})
	assert.NoError(t, validateAction(ctx))
}

func TestValidateActionRejectsSyntaxError(t *testing.T) {
	scriptPath := writeScript(t, `start default
this is not valid qubectalk
end default
`)
	ctx := newTestContext(t, validateCommand, []string{scriptPath})

	err := validateAction(ctx)
	require.Error(t, err)
	coder, ok := err.(cli.ExitCoder)
	require.True(t, ok)
	assert.Equal(t, exitFailure, coder.ExitCode())
}

func TestValidateActionRejectsUnknownPolicy(t *testing.T) {
	scriptPath := writeScript(t, `
start default
define application "Domestic Refrigeration"
uses substance "HFC-134a"
enable domestic
initial charge with 1 kg for domestic
set domestic to 1000 units during year beginning
end substance
end application
end default

start simulations
simulate "Baseline" using "NoSuchPolicy" from years 2025 to 2026
end simulations
`)
	ctx := newTestContext(t, validateCommand, []string{scriptPath})

	err := validateAction(ctx)
	require.Error(t, err)
	coder, ok := err.(cli.ExitCoder)
	require.True(t, ok)
	assert.Equal(t, exitFailure, coder.ExitCode())
}

func TestValidateActionMissingScriptFileExitsWithFileNotFound(t *testing.T) {
	ctx := newTestContext(t, validateCommand, []string{"/no/such/script.qta"})

	err := validateAction(ctx)
	require.Error(t, err)
	coder, ok := err.(cli.ExitCoder)
	require.True(t, ok)
	assert.Equal(t, exitFileNotFound, coder.ExitCode())
}
