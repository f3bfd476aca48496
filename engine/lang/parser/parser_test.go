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

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SchmidtDSE/kigali-sim-sub006/engine/lang/ast"
)

const s1Source = `
start default
define application "Domestic Refrigeration"
uses substance "HFC-134a"
initial charge with 1 kg for domestic
set priorEquipment to 10000 units during year beginning
recharge 5 % with 1 kg
set domestic to 1000 units during year beginning
end substance
end application
end default

start simulations
simulate "Baseline" from years 1 to 2
end simulations
`

func TestParseBaselineScenario(t *testing.T) {
	prog, errs := Parse(s1Source)
	require.False(t, errs.HasErrors(), errs.Error())
	require.NotNil(t, prog.Default)
	require.Len(t, prog.Default.Applications, 1)

	app := prog.Default.Applications[0]
	assert.Equal(t, "Domestic Refrigeration", app.Name)
	require.Len(t, app.Substances, 1)

	sub := app.Substances[0]
	assert.Equal(t, "HFC-134a", sub.Name)
	require.Len(t, sub.Commands, 4)

	_, ok := sub.Commands[0].(*ast.InitialChargeCmd)
	assert.True(t, ok)
	setCmd, ok := sub.Commands[1].(*ast.SetCmd)
	require.True(t, ok)
	assert.Equal(t, "priorEquipment", setCmd.Stream)
	assert.NotNil(t, setCmd.During)
	assert.True(t, setCmd.During.Start.Beginning)
	// "during year beginning" has no "to" bound: it must resolve to a
	// single-year window (Start == End), not an open-ended one.
	require.NotNil(t, setCmd.During.End)
	assert.True(t, setCmd.During.End.Beginning)

	rechargeCmd, ok := sub.Commands[2].(*ast.RechargeCmd)
	require.True(t, ok)
	lit, ok := rechargeCmd.Population.(*ast.Literal)
	require.True(t, ok)
	assert.Equal(t, "%", lit.Unit)

	require.NotNil(t, prog.Simulations)
	require.Len(t, prog.Simulations.Scenarios, 1)
	sc := prog.Simulations.Scenarios[0]
	assert.Equal(t, "Baseline", sc.Name)
	assert.Equal(t, 1, sc.Start)
	assert.Equal(t, 2, sc.End)
	assert.Equal(t, 1, sc.Trials)
}

func TestParseDuringWithoutToBoundIsSingleYear(t *testing.T) {
	src := `
start policy "OneYear"
define application "A"
uses substance "HFC-134a"
set domestic to 500 units during year 5
end substance
end application
end policy
`
	prog, errs := Parse(src)
	require.False(t, errs.HasErrors(), errs.Error())
	cmd := prog.Policies[0].Applications[0].Substances[0].Commands[0].(*ast.SetCmd)
	require.NotNil(t, cmd.During)
	require.NotNil(t, cmd.During.End)
	assert.Equal(t, 5, cmd.During.Start.Year)
	assert.Equal(t, 5, cmd.During.End.Year)
}

func TestParseCapWithDisplacingAndDuringRange(t *testing.T) {
	src := `
start policy "Displace"
define application "A"
uses substance "HFC-134a"
cap sales to 80 % displacing "R-600a" during years 3 to 10
end substance
end application
end policy
`
	prog, errs := Parse(src)
	require.False(t, errs.HasErrors(), errs.Error())
	require.Len(t, prog.Policies, 1)
	cmd := prog.Policies[0].Applications[0].Substances[0].Commands[0].(*ast.CapCmd)
	assert.Equal(t, "sales", cmd.Stream)
	assert.Equal(t, "R-600a", cmd.Displacing)
	require.NotNil(t, cmd.During)
	assert.Equal(t, 3, cmd.During.Start.Year)
	assert.Equal(t, 10, cmd.During.End.Year)
}

func TestParseScenarioWithPolicyStackAndTrials(t *testing.T) {
	src := `
start simulations
simulate "MC" using "Displace" then "Recycle" from years 1 to onwards across 100 trials
end simulations
`
	prog, errs := Parse(src)
	require.False(t, errs.HasErrors(), errs.Error())
	sc := prog.Simulations.Scenarios[0]
	assert.Equal(t, []string{"Displace", "Recycle"}, sc.Policies)
	assert.True(t, sc.EndOnwards)
	assert.Equal(t, 100, sc.Trials)
}

func TestParseTernaryAndArithmeticPrecedence(t *testing.T) {
	src := `
start variables
define "x" as 1 + 2 * 3 if yearsElapsed > 5 else 0 endif
end variables
`
	prog, errs := Parse(src)
	require.False(t, errs.HasErrors(), errs.Error())
	require.Len(t, prog.Variables.Defines, 1)
	cond, ok := prog.Variables.Defines[0].Value.(*ast.Conditional)
	require.True(t, ok)
	add, ok := cond.Then.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, "+", add.Op)
	mul, ok := add.Right.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, "*", mul.Op)
}

func TestParseRecoverWithStageAndDisplacing(t *testing.T) {
	src := `
start policy "Recycle"
define application "A"
uses substance "HFC-134a"
recover 20 % with 90 % reuse at eol displacing import
end substance
end application
end policy
`
	prog, errs := Parse(src)
	require.False(t, errs.HasErrors(), errs.Error())
	cmd := prog.Policies[0].Applications[0].Substances[0].Commands[0].(*ast.RecoverCmd)
	assert.Equal(t, "eol", cmd.Stage)
	assert.Equal(t, "import", cmd.Displacing)
}

func TestParseLimitExpression(t *testing.T) {
	src := `
start variables
define "x" as limit yearsElapsed to [0, 10]
end variables
`
	prog, errs := Parse(src)
	require.False(t, errs.HasErrors(), errs.Error())
	lim, ok := prog.Variables.Defines[0].Value.(*ast.Limit)
	require.True(t, ok)
	require.NotNil(t, lim.Lo)
	require.NotNil(t, lim.Hi)
}

func TestParseUnknownCommandRecordsErrorButContinues(t *testing.T) {
	src := `
start default
define application "A"
uses substance "S"
bogus 5
enable domestic
end substance
end application
end default
`
	prog, errs := Parse(src)
	require.True(t, errs.HasErrors())
	sub := prog.Default.Applications[0].Substances[0]
	require.Len(t, sub.Commands, 1)
	_, ok := sub.Commands[0].(*ast.EnableCmd)
	assert.True(t, ok)
}
