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

// Package parser implements a hand-written recursive-descent parser over
// the token stream produced by engine/lang/lexer, building the tagged-union
// tree defined in engine/lang/ast. A generated parser was considered (the
// corpus carries antlr4-go/antlr as a sibling dependency) but rejected: it
// needs a grammar file run through an external code generator, which cannot
// happen in this environment, so the grammar lives directly in Go instead.
package parser

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/SchmidtDSE/kigali-sim-sub006/engine/lang/ast"
	"github.com/SchmidtDSE/kigali-sim-sub006/engine/lang/lexer"
	"github.com/SchmidtDSE/kigali-sim-sub006/engine/simerr"
)

var streamNames = map[string]bool{
	"domestic": true, "import": true, "export": true,
	"sales": true, "equipment": true, "priorEquipment": true,
}

var protectedNames = map[string]bool{
	"population": true, "volume": true, "amortizedUnitVolume": true,
	"ghgIntensity": true, "energyIntensity": true, "yearsElapsed": true,
	"yearAbsolute": true,
}

var unitWords = map[string]bool{
	"kg": true, "mt": true, "g": true, "tCO2e": true, "kgCO2e": true,
	"kwh": true, "unit": true, "units": true, "year": true, "years": true,
}

// Parser consumes a flat token slice and produces a Program, recording
// recoverable syntax problems into Errors rather than stopping at the
// first one (spec §4.2 / §7's SyntaxError policy: the parser reports, the
// caller decides whether to abort).
type Parser struct {
	toks   []lexer.Token
	pos    int
	Errors simerr.ErrorList
}

// Parse tokenizes and parses src in one call.
func Parse(src string) (*ast.Program, *simerr.ErrorList) {
	l := lexer.New(src)
	toks := l.Tokenize()
	p := &Parser{toks: toks}
	p.Errors = l.Errors
	prog := p.parseProgram()
	return prog, &p.Errors
}

func (p *Parser) cur() lexer.Token { return p.toks[p.pos] }

func (p *Parser) atEOF() bool { return p.cur().Kind == lexer.EOF }

func (p *Parser) atKeyword(kw string) bool {
	return p.cur().Kind == lexer.Ident && p.cur().Text == kw
}

func (p *Parser) atSymbol(s string) bool {
	return p.cur().Kind == lexer.Symbol && p.cur().Text == s
}

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) errorHere(msg string) {
	t := p.cur()
	p.Errors.Add(t.Pos, t.Text, msg)
}

func (p *Parser) expectKeyword(kw string) lexer.Token {
	if p.atKeyword(kw) {
		return p.advance()
	}
	p.errorHere("expected '" + kw + "'")
	return p.cur()
}

func (p *Parser) expectSymbol(s string) lexer.Token {
	if p.atSymbol(s) {
		return p.advance()
	}
	p.errorHere("expected '" + s + "'")
	return p.cur()
}

func (p *Parser) expectString() string {
	if p.cur().Kind == lexer.String {
		return p.advance().Text
	}
	p.errorHere("expected a quoted identifier")
	return ""
}

func (p *Parser) expectStreamIdent() string {
	if p.cur().Kind == lexer.Ident {
		return p.advance().Text
	}
	p.errorHere("expected a stream name")
	return ""
}

func (p *Parser) expectInt() int {
	if p.cur().Kind == lexer.Number {
		txt := p.advance().Text
		d, err := decimal.NewFromString(txt)
		if err != nil {
			p.errorHere("malformed number")
			return 0
		}
		return int(d.IntPart())
	}
	p.errorHere("expected a number")
	return 0
}

// guardProgress forces at least one token of progress across a parse-loop
// iteration, so a malformed construct that consumes nothing cannot spin the
// parser forever; it always leaves an error behind to explain the skip.
func (p *Parser) guardProgress(before int) {
	if p.pos == before && !p.atEOF() {
		p.errorHere("unexpected token, skipping")
		p.advance()
	}
}

// ---- Top level ------------------------------------------------------

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.atEOF() {
		before := p.pos
		if !p.atKeyword("start") {
			p.errorHere("expected a stanza starting with 'start'")
			p.advance()
			continue
		}
		switch p.peekStanzaKind() {
		case "about":
			prog.About = p.parseAboutStanza()
		case "variables":
			prog.Variables = p.parseVariablesStanza()
		case "default":
			prog.Default = p.parseDefaultStanza()
		case "policy":
			prog.Policies = append(prog.Policies, p.parsePolicyStanza())
		case "simulations":
			prog.Simulations = p.parseSimulationsStanza()
		default:
			p.errorHere("unknown stanza kind")
			p.advance()
		}
		p.guardProgress(before)
	}
	return prog
}

// peekStanzaKind looks one token past "start" without consuming anything.
func (p *Parser) peekStanzaKind() string {
	if p.pos+1 >= len(p.toks) {
		return ""
	}
	return p.toks[p.pos+1].Text
}

func (p *Parser) parseAboutStanza() *ast.AboutStanza {
	p.expectKeyword("start")
	p.expectKeyword("about")
	var sb strings.Builder
	for !(p.atKeyword("end") && p.peekIs(1, "about")) && !p.atEOF() {
		sb.WriteString(p.advance().Text)
		sb.WriteString(" ")
	}
	p.expectKeyword("end")
	p.expectKeyword("about")
	return &ast.AboutStanza{Text: strings.TrimSpace(sb.String())}
}

func (p *Parser) peekIs(offset int, text string) bool {
	i := p.pos + offset
	if i >= len(p.toks) {
		return false
	}
	return p.toks[i].Text == text
}

func (p *Parser) parseVariablesStanza() *ast.VariablesStanza {
	p.expectKeyword("start")
	p.expectKeyword("variables")
	v := &ast.VariablesStanza{}
	for !(p.atKeyword("end") && p.peekIs(1, "variables")) && !p.atEOF() {
		before := p.pos
		v.Defines = append(v.Defines, p.parseDefineStatement())
		p.guardProgress(before)
	}
	p.expectKeyword("end")
	p.expectKeyword("variables")
	return v
}

func (p *Parser) parseDefineStatement() *ast.DefineVariableCmd {
	pos := p.cur().Pos
	p.expectKeyword("define")
	name := p.expectString()
	p.expectKeyword("as")
	value := p.parseExpr()
	during := p.parseDuringOpt()
	cmd := &ast.DefineVariableCmd{Name: name, Value: value}
	cmd.P = pos
	cmd.During = during
	return cmd
}

func (p *Parser) parseDefaultStanza() *ast.DefaultStanza {
	p.expectKeyword("start")
	p.expectKeyword("default")
	d := &ast.DefaultStanza{}
	for p.atKeyword("define") && !p.atEOF() {
		before := p.pos
		d.Applications = append(d.Applications, p.parseApplicationDef())
		p.guardProgress(before)
	}
	p.expectKeyword("end")
	p.expectKeyword("default")
	return d
}

func (p *Parser) parsePolicyStanza() *ast.PolicyStanza {
	p.expectKeyword("start")
	p.expectKeyword("policy")
	name := p.expectString()
	pol := &ast.PolicyStanza{Name: name}
	for p.atKeyword("define") && !p.atEOF() {
		before := p.pos
		pol.Applications = append(pol.Applications, p.parseApplicationDef())
		p.guardProgress(before)
	}
	p.expectKeyword("end")
	p.expectKeyword("policy")
	return pol
}

func (p *Parser) parseSimulationsStanza() *ast.SimulationsStanza {
	p.expectKeyword("start")
	p.expectKeyword("simulations")
	s := &ast.SimulationsStanza{}
	for p.atKeyword("simulate") && !p.atEOF() {
		before := p.pos
		s.Scenarios = append(s.Scenarios, p.parseScenarioDef())
		p.guardProgress(before)
	}
	p.expectKeyword("end")
	p.expectKeyword("simulations")
	return s
}

func (p *Parser) parseScenarioDef() *ast.ScenarioDef {
	pos := p.cur().Pos
	p.expectKeyword("simulate")
	name := p.expectString()
	sc := &ast.ScenarioDef{Name: name, Trials: 1}
	sc.P = pos
	if p.atKeyword("using") {
		p.advance()
		sc.Policies = append(sc.Policies, p.expectString())
		for p.atKeyword("then") {
			p.advance()
			sc.Policies = append(sc.Policies, p.expectString())
		}
	}
	p.expectKeyword("from")
	p.expectKeyword("years")
	sc.Start = p.expectInt()
	p.expectKeyword("to")
	if p.atKeyword("onwards") {
		p.advance()
		sc.EndOnwards = true
	} else {
		sc.End = p.expectInt()
	}
	if p.atKeyword("across") {
		p.advance()
		sc.Trials = p.expectInt()
		p.expectKeyword("trials")
	}
	return sc
}

func (p *Parser) parseApplicationDef() *ast.ApplicationDef {
	p.expectKeyword("define")
	p.expectKeyword("application")
	name := p.expectString()
	a := &ast.ApplicationDef{Name: name}
	for p.atKeyword("uses") && !p.atEOF() {
		before := p.pos
		a.Substances = append(a.Substances, p.parseSubstanceDef())
		p.guardProgress(before)
	}
	p.expectKeyword("end")
	p.expectKeyword("application")
	return a
}

func (p *Parser) parseSubstanceDef() *ast.SubstanceDef {
	p.expectKeyword("uses")
	p.expectKeyword("substance")
	name := p.expectString()
	s := &ast.SubstanceDef{Name: name}
	for !(p.atKeyword("end") && p.peekIs(1, "substance")) && !p.atEOF() {
		before := p.pos
		if cmd := p.parseCommand(); cmd != nil {
			s.Commands = append(s.Commands, cmd)
		}
		p.guardProgress(before)
	}
	p.expectKeyword("end")
	p.expectKeyword("substance")
	return s
}

// ---- Commands ---------------------------------------------------------

func (p *Parser) parseCommand() ast.Command {
	pos := p.cur().Pos
	switch {
	case p.atKeyword("enable"):
		p.advance()
		stream := p.expectStreamIdent()
		cmd := &ast.EnableCmd{Stream: stream}
		cmd.P, cmd.During = pos, p.parseDuringOpt()
		return cmd

	case p.atKeyword("initial"):
		p.advance()
		p.expectKeyword("charge")
		p.expectKeyword("with")
		value := p.parseExpr()
		p.expectKeyword("for")
		stream := p.expectStreamIdent()
		cmd := &ast.InitialChargeCmd{Stream: stream, Value: value}
		cmd.P, cmd.During = pos, p.parseDuringOpt()
		return cmd

	case p.atKeyword("equals"):
		p.advance()
		value := p.parseExpr()
		cmd := &ast.EqualsCmd{Value: value}
		cmd.P, cmd.During = pos, p.parseDuringOpt()
		return cmd

	case p.atKeyword("set"):
		p.advance()
		stream := p.expectStreamIdent()
		p.expectKeyword("to")
		value := p.parseExpr()
		cmd := &ast.SetCmd{Stream: stream, Value: value}
		cmd.P, cmd.During = pos, p.parseDuringOpt()
		return cmd

	case p.atKeyword("change"):
		p.advance()
		stream := p.expectStreamIdent()
		p.expectKeyword("by")
		value := p.parseExpr()
		cmd := &ast.ChangeCmd{Stream: stream, Value: value}
		cmd.P, cmd.During = pos, p.parseDuringOpt()
		return cmd

	case p.atKeyword("retire"):
		p.advance()
		value := p.parseExpr()
		cmd := &ast.RetireCmd{Value: value}
		cmd.P, cmd.During = pos, p.parseDuringOpt()
		return cmd

	case p.atKeyword("recharge"):
		p.advance()
		population := p.parseExpr()
		p.expectKeyword("with")
		volume := p.parseExpr()
		cmd := &ast.RechargeCmd{Population: population, Volume: volume}
		cmd.P, cmd.During = pos, p.parseDuringOpt()
		return cmd

	case p.atKeyword("cap"):
		p.advance()
		stream := p.expectStreamIdent()
		p.expectKeyword("to")
		value := p.parseExpr()
		displacing := p.parseDisplacingOpt()
		cmd := &ast.CapCmd{Stream: stream, Value: value, Displacing: displacing}
		cmd.P, cmd.During = pos, p.parseDuringOpt()
		return cmd

	case p.atKeyword("floor"):
		p.advance()
		stream := p.expectStreamIdent()
		p.expectKeyword("to")
		value := p.parseExpr()
		displacing := p.parseDisplacingOpt()
		cmd := &ast.FloorCmd{Stream: stream, Value: value, Displacing: displacing}
		cmd.P, cmd.During = pos, p.parseDuringOpt()
		return cmd

	case p.atKeyword("replace"):
		p.advance()
		value := p.parseExpr()
		p.expectKeyword("of")
		stream := p.expectStreamIdent()
		p.expectKeyword("with")
		substance := p.expectString()
		cmd := &ast.ReplaceCmd{Stream: stream, Value: value, Substance: substance}
		cmd.P, cmd.During = pos, p.parseDuringOpt()
		return cmd

	case p.atKeyword("recover"):
		p.advance()
		percent := p.parseExpr()
		p.expectKeyword("with")
		reuse := p.parseExpr()
		p.expectKeyword("reuse")
		stage := "recharge"
		if p.atKeyword("at") {
			p.advance()
			stage = p.advance().Text
		}
		displacing := p.parseDisplacingOpt()
		cmd := &ast.RecoverCmd{Percent: percent, Reuse: reuse, Stage: stage, Displacing: displacing}
		cmd.P, cmd.During = pos, p.parseDuringOpt()
		return cmd

	default:
		p.errorHere("unknown command")
		p.advance()
		return nil
	}
}

func (p *Parser) parseDisplacingOpt() string {
	if !p.atKeyword("displacing") {
		return ""
	}
	p.advance()
	if p.cur().Kind == lexer.String {
		return p.advance().Text
	}
	return p.expectStreamIdent()
}

func (p *Parser) parseDuringOpt() *ast.DuringWindow {
	if !p.atKeyword("during") {
		return nil
	}
	p.advance()
	if p.atKeyword("year") || p.atKeyword("years") {
		p.advance()
	}
	start := p.parseYearRef()
	win := &ast.DuringWindow{Start: &start}
	if p.atKeyword("to") {
		p.advance()
		end := p.parseYearRef()
		win.End = &end
	} else {
		// No "to" bound means a single-year window, not an open upper
		// bound: "during year beginning" must fire only in that year.
		end := start
		win.End = &end
	}
	return win
}

func (p *Parser) parseYearRef() ast.YearRef {
	switch {
	case p.atKeyword("beginning"):
		p.advance()
		return ast.YearRef{Beginning: true}
	case p.atKeyword("onwards"):
		p.advance()
		return ast.YearRef{Onwards: true}
	default:
		return ast.YearRef{Year: p.expectInt()}
	}
}

// ---- Expressions --------------------------------------------------------

func (p *Parser) parseExpr() ast.Expr { return p.parseTernary() }

func (p *Parser) parseTernary() ast.Expr {
	then := p.parseOr()
	if !p.atKeyword("if") {
		return then
	}
	pos := then.Pos()
	p.advance()
	cond := p.parseOr()
	p.expectKeyword("else")
	elseExpr := p.parseTernary()
	p.expectKeyword("endif")
	c := &ast.Conditional{Then: then, Cond: cond, Else: elseExpr}
	c.P = pos
	return c
}

func (p *Parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for p.atKeyword("or") || p.atKeyword("xor") {
		op := p.advance().Text
		right := p.parseAnd()
		left = binOp(left, op, right)
	}
	return left
}

func (p *Parser) parseAnd() ast.Expr {
	left := p.parseEquality()
	for p.atKeyword("and") {
		p.advance()
		right := p.parseEquality()
		left = binOp(left, "and", right)
	}
	return left
}

func (p *Parser) parseEquality() ast.Expr {
	left := p.parseRelational()
	for p.atSymbol("==") || p.atSymbol("!=") {
		op := p.advance().Text
		right := p.parseRelational()
		left = binOp(left, op, right)
	}
	return left
}

func (p *Parser) parseRelational() ast.Expr {
	left := p.parseAdditive()
	for p.atSymbol("<") || p.atSymbol("<=") || p.atSymbol(">") || p.atSymbol(">=") {
		op := p.advance().Text
		right := p.parseAdditive()
		left = binOp(left, op, right)
	}
	return left
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for p.atSymbol("+") || p.atSymbol("-") {
		op := p.advance().Text
		right := p.parseMultiplicative()
		left = binOp(left, op, right)
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parsePower()
	for p.atSymbol("*") || p.atSymbol("/") {
		op := p.advance().Text
		right := p.parsePower()
		left = binOp(left, op, right)
	}
	return left
}

func (p *Parser) parsePower() ast.Expr {
	left := p.parseUnary()
	if p.atSymbol("^") {
		p.advance()
		right := p.parsePower()
		return binOp(left, "^", right)
	}
	return left
}

func binOp(left ast.Expr, op string, right ast.Expr) ast.Expr {
	b := &ast.BinaryOp{Op: op, Left: left, Right: right}
	b.P = left.Pos()
	return b
}

func (p *Parser) parseUnary() ast.Expr {
	if p.atSymbol("-") {
		pos := p.cur().Pos
		p.advance()
		operand := p.parseUnary()
		n := &ast.UnaryNeg{Operand: operand}
		n.P = pos
		return n
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() ast.Expr {
	pos := p.cur().Pos
	switch {
	case p.cur().Kind == lexer.Number:
		txt := p.advance().Text
		unit := p.parseUnitSuffix()
		lit := &ast.Literal{Value: txt, Unit: unit}
		lit.P = pos
		return lit

	case p.atSymbol("("):
		p.advance()
		e := p.parseExpr()
		p.expectSymbol(")")
		return e

	case p.atKeyword("limit"):
		p.advance()
		operand := p.parseOr()
		p.expectKeyword("to")
		p.expectSymbol("[")
		var lo, hi ast.Expr
		if !p.atSymbol(",") {
			lo = p.parseExpr()
		}
		p.expectSymbol(",")
		if !p.atSymbol("]") {
			hi = p.parseExpr()
		}
		p.expectSymbol("]")
		lim := &ast.Limit{Operand: operand, Lo: lo, Hi: hi}
		lim.P = pos
		return lim

	case p.atKeyword("sample"):
		p.advance()
		switch {
		case p.atKeyword("normal"):
			p.advance()
			p.expectKeyword("mean")
			mean := p.parseAdditive()
			p.expectKeyword("std")
			std := p.parseAdditive()
			s := &ast.SampleNormal{Mean: mean, Std: std}
			s.P = pos
			return s
		case p.atKeyword("uniform"):
			p.advance()
			p.expectKeyword("from")
			lo := p.parseAdditive()
			p.expectKeyword("to")
			hi := p.parseAdditive()
			s := &ast.SampleUniform{Lo: lo, Hi: hi}
			s.P = pos
			return s
		default:
			p.errorHere("expected 'normal' or 'uniform' after 'sample'")
			lit := &ast.Literal{Value: "0"}
			lit.P = pos
			return lit
		}

	case p.cur().Kind == lexer.Ident:
		name := p.advance().Text
		switch {
		case streamNames[name]:
			sr := &ast.StreamRead{Stream: name}
			sr.P = pos
			return sr
		case protectedNames[name]:
			pv := &ast.ProtectedVar{Name: name}
			pv.P = pos
			return pv
		default:
			vr := &ast.VarRef{Name: name}
			vr.P = pos
			return vr
		}

	default:
		p.errorHere("expected an expression")
		p.advance()
		lit := &ast.Literal{Value: "0"}
		lit.P = pos
		return lit
	}
}

// parseUnitSuffix greedily consumes a trailing unit phrase after a number
// literal: a bare unit word or `%`, optionally followed by `/` and a second
// unit word (e.g. "kg", "%", "kg/unit", "units/year").
func (p *Parser) parseUnitSuffix() string {
	var first string
	switch {
	case p.atSymbol("%"):
		first = p.advance().Text
	case p.cur().Kind == lexer.Ident && unitWords[p.cur().Text]:
		first = p.advance().Text
	default:
		return ""
	}
	if !p.atSymbol("/") {
		return first
	}
	p.advance()
	if p.cur().Kind == lexer.Ident && unitWords[p.cur().Text] {
		second := p.advance().Text
		return first + "/" + second
	}
	p.errorHere("expected a unit after '/'")
	return first + "/"
}
