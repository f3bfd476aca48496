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

// Package ast defines the QubecTalk syntax tree as a tagged union: one
// interface (Node) implemented by every concrete node type, dispatched with
// type switches rather than a visitor hierarchy. This mirrors the flat,
// struct-per-opcode shape the machine package expects to switch over.
package ast

import "github.com/SchmidtDSE/kigali-sim-sub006/engine/simerr"

// Node is implemented by every AST node.
type Node interface {
	Pos() simerr.Pos
}

type base struct{ P simerr.Pos }

func (b base) Pos() simerr.Pos { return b.P }

// ---- Expressions -----------------------------------------------------

// Expr is implemented by every node that evaluates to a value.
type Expr interface {
	Node
	exprNode()
}

type exprBase struct{ base }

func (exprBase) exprNode() {}

// Literal is a bare number, optionally unit-tagged (spec §6: "5 kg", "10 %").
type Literal struct {
	exprBase
	Value string // normalized decimal text, as produced by the lexer
	Unit  string // empty when unitless
}

// VarRef reads a previously `define`d variable. The implicit loop variables
// (yearsElapsed, yearAbsolute) parse as ProtectedVar instead.
type VarRef struct {
	exprBase
	Name string
}

// StreamRead reads a stream of the substance currently in scope, e.g.
// `domestic` or `import` used as a value inside an expression.
type StreamRead struct {
	exprBase
	Stream string
}

// ProtectedVar reads one of the named, non-assignable state slots (spec
// §4.1): population, volume, amortizedUnitVolume, ghgIntensity,
// energyIntensity, yearsElapsed, yearAbsolute.
type ProtectedVar struct {
	exprBase
	Name string
}

// BinaryOp covers arithmetic (+ - * / ^), comparison (== != < <= > >=) and
// logical (and or xor) infix operators; the parser assigns precedence, this
// node only records the already-resolved operand tree.
type BinaryOp struct {
	exprBase
	Op          string
	Left, Right Expr
}

// UnaryNeg is a leading `-` applied to an expression.
type UnaryNeg struct {
	exprBase
	Operand Expr
}

// Limit implements the `limit <expr> to [<lo>, <hi>]` clamp form (spec
// §4.6's cap/floor machinery reuses this at the expression level too).
type Limit struct {
	exprBase
	Operand  Expr
	Lo, Hi   Expr // either may be nil for an open-ended bound
}

// Conditional is the postfix ternary `<then> if <cond> else <else> endif`.
type Conditional struct {
	exprBase
	Then, Cond, Else Expr
}

// SampleNormal is `sample normal mean <m> std <s>`.
type SampleNormal struct {
	exprBase
	Mean, Std Expr
}

// SampleUniform is `sample uniform from <lo> to <hi>`.
type SampleUniform struct {
	exprBase
	Lo, Hi Expr
}

// ---- During windows ---------------------------------------------------

// YearRef is one endpoint of a during window: an absolute year, "beginning"
// (the simulation's first year) or "onwards" (open-ended).
type YearRef struct {
	Year      int
	Beginning bool
	Onwards   bool
}

// DuringWindow qualifies a command with `during <start> to <end>` (spec
// §4.3); a nil *DuringWindow means the command applies to every year.
type DuringWindow struct {
	Start, End *YearRef
}

// ---- Commands -----------------------------------------------------------

// Command is implemented by every statement inside a substance body.
type Command interface {
	Node
	cmdNode()
}

type cmdBase struct {
	base
	During *DuringWindow
}

func (cmdBase) cmdNode() {}

// EnableCmd is `enable <stream>`.
type EnableCmd struct {
	cmdBase
	Stream string
}

// InitialChargeCmd is `initial charge with <expr> for <stream>`.
type InitialChargeCmd struct {
	cmdBase
	Stream string
	Value  Expr
}

// EqualsCmd is `equals <expr>` (sets the energy intensity when the value's
// unit is in the kwh family, otherwise the GHG intensity).
type EqualsCmd struct {
	cmdBase
	Value Expr
}

// SetCmd is `set <stream> to <expr>`.
type SetCmd struct {
	cmdBase
	Stream string
	Value  Expr
}

// ChangeCmd is `change <stream> by <expr>` (a relative delta, spec §4.3).
type ChangeCmd struct {
	cmdBase
	Stream string
	Value  Expr
}

// RetireCmd is `retire <expr>` (a percent of the equipment population).
type RetireCmd struct {
	cmdBase
	Value Expr
}

// RechargeCmd is `recharge <expr> with <expr>` (percent of equipment
// serviced, per-unit recharge volume).
type RechargeCmd struct {
	cmdBase
	Population Expr
	Volume     Expr
}

// RecoverCmd is `recover <expr> with <expr> reuse [at recharge|eol]
// [displacing ...]` (recycling: percent recovered, percent of that reused).
type RecoverCmd struct {
	cmdBase
	Percent    Expr
	Reuse      Expr
	Stage      string // "recharge" or "eol", which pool the recovery draws from
	Displacing string // substance or stream name, "" when absent
}

// CapCmd is `cap <stream> to <expr> displacing <target>`.
type CapCmd struct {
	cmdBase
	Stream     string
	Value      Expr
	Displacing string // substance or stream name, "" when absent
}

// FloorCmd is `floor <stream> to <expr> displacing <target>`.
type FloorCmd struct {
	cmdBase
	Stream     string
	Value      Expr
	Displacing string
}

// ReplaceCmd is `replace <expr> of <stream> with "<substance>"`.
type ReplaceCmd struct {
	cmdBase
	Stream    string
	Value     Expr
	Substance string
}

// DefineVariableCmd is `define "<name>" as <expr>` inside a variables
// stanza (not part of spec.md's grammar listing; added because the
// distillation names `define`-able variables in prose without giving the
// statement its own production).
type DefineVariableCmd struct {
	cmdBase
	Name  string
	Value Expr
}

// ---- Containers -----------------------------------------------------------

// SubstanceDef is one `substance "<name>" ... end substance` block.
type SubstanceDef struct {
	base
	Name     string
	Commands []Command
}

// ApplicationDef is one `application "<name>" ... end application` block.
type ApplicationDef struct {
	base
	Name       string
	Substances []*SubstanceDef
}

// DefaultStanza is the top-level `default ... end default` block: the
// business-as-usual trajectory.
type DefaultStanza struct {
	base
	Applications []*ApplicationDef
}

// PolicyStanza is one named `policy "<name>" ... end policy` block: a set of
// command overrides layered onto the default trajectory.
type PolicyStanza struct {
	base
	Name         string
	Applications []*ApplicationDef
}

// ScenarioDef is one `simulate` line inside the simulations stanza: a name,
// an ordered policy stack, a year range, and a trial count for Monte Carlo
// replication.
type ScenarioDef struct {
	base
	Name       string
	Policies   []string
	Trials     int
	Start      int
	End        int
	EndOnwards bool
}

// SimulationsStanza is the top-level `simulations ... end simulations`
// block enumerating every scenario to run.
type SimulationsStanza struct {
	base
	Scenarios []*ScenarioDef
}

// VariablesStanza is an optional `variables ... end variables` block of
// module-level named constants available to every expression.
type VariablesStanza struct {
	base
	Defines []*DefineVariableCmd
}

// AboutStanza is the optional free-text `about ... end about` block. Its
// contents are documentation only and are not evaluated; the parser records
// the raw text so it can be echoed back by tooling.
type AboutStanza struct {
	base
	Text string
}

// Program is the root of a parsed QubecTalk document.
type Program struct {
	base
	About       *AboutStanza
	Variables   *VariablesStanza
	Default     *DefaultStanza
	Policies    []*PolicyStanza
	Simulations *SimulationsStanza
}
