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

// Package simerr defines the error kinds raised across the parser, machine,
// keeper and recalc strategies (spec §7). Every kind carries enough context
// (scope, year, source position) for the scenario runner to report a
// failure without the caller having to re-derive it from a generic error
// string.
package simerr

import "fmt"

// Pos is a source location, set when the error originates from AST
// evaluation and left zero when it originates from pure state-machine
// logic (e.g. a recalc strategy with no direct source node).
type Pos struct {
	Line, Col int
}

func (p Pos) String() string {
	if p.Line == 0 {
		return "<unknown>"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Scope identifies the stanza/application/substance an error occurred in.
// Kept as plain strings (not a reference to keeper.UseKey) so this package
// has no dependency on the keeper package.
type Scope struct {
	Stanza      string
	Application string
	Substance   string
}

func (s Scope) String() string {
	if s.Application == "" && s.Substance == "" {
		return s.Stanza
	}
	return fmt.Sprintf("%s/%s/%s", s.Stanza, s.Application, s.Substance)
}

// SyntaxError is produced by the parser; line/col/token identify the
// offending input. Multiple SyntaxErrors accumulate into an ErrorList.
type SyntaxError struct {
	Pos     Pos
	Token   string
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %s: %s (near %q)", e.Pos, e.Message, e.Token)
}

// ErrorList collects every SyntaxError produced during a single parse.
type ErrorList struct {
	Errors []*SyntaxError
}

func (l *ErrorList) Add(pos Pos, token, message string) {
	l.Errors = append(l.Errors, &SyntaxError{Pos: pos, Token: token, Message: message})
}

func (l *ErrorList) HasErrors() bool { return len(l.Errors) > 0 }

// Error renders the first error in detail and summarizes the rest, matching
// spec §4.2 ("a detailed error message for the first error is always
// produced").
func (l *ErrorList) Error() string {
	if len(l.Errors) == 0 {
		return "no errors"
	}
	if len(l.Errors) == 1 {
		return l.Errors[0].Error()
	}
	return fmt.Sprintf("%s (and %d more error(s))", l.Errors[0].Error(), len(l.Errors)-1)
}

// ScopeError: write attempted before setApplication+setSubstance.
type ScopeError struct {
	Op string
}

func (e *ScopeError) Error() string {
	return fmt.Sprintf("%s: no active application/substance scope", e.Op)
}

// EnablementError: non-zero write to a trade stream outside the
// enablement set.
type EnablementError struct {
	Scope  Scope
	Stream string
}

func (e *EnablementError) Error() string {
	return fmt.Sprintf("%s: stream %q is not enabled", e.Scope, e.Stream)
}

// UnknownSubstanceError: a displacement/replacement target substance that
// was never declared.
type UnknownSubstanceError struct {
	Scope     Scope
	Substance string
}

func (e *UnknownSubstanceError) Error() string {
	return fmt.Sprintf("%s: unknown substance %q", e.Scope, e.Substance)
}

// UnknownStreamError: a named stream outside the recognized set.
type UnknownStreamError struct {
	Scope  Scope
	Stream string
}

func (e *UnknownStreamError) Error() string {
	return fmt.Sprintf("%s: unknown stream %q", e.Scope, e.Stream)
}

// SelfDisplacementError: a cap/floor displacement target equal to source.
type SelfDisplacementError struct {
	Scope  Scope
	Stream string
}

func (e *SelfDisplacementError) Error() string {
	return fmt.Sprintf("%s: stream %q cannot displace itself", e.Scope, e.Stream)
}

// SelfReplacementError: replace targets the source substance itself.
type SelfReplacementError struct {
	Scope     Scope
	Substance string
}

func (e *SelfReplacementError) Error() string {
	return fmt.Sprintf("%s: substance %q cannot replace itself", e.Scope, e.Substance)
}

// UnitConversionError: dimension mismatch, or zero initial charge when
// converting kg to units.
type UnitConversionError struct {
	Scope    Scope
	FromUnit string
	ToUnit   string
	Reason   string
}

func (e *UnitConversionError) Error() string {
	return fmt.Sprintf("%s: cannot convert %s to %s: %s", e.Scope, e.FromUnit, e.ToUnit, e.Reason)
}

// ProtectedVariableError: attempt to define or assign yearAbsolute/yearsElapsed.
type ProtectedVariableError struct {
	Name string
}

func (e *ProtectedVariableError) Error() string {
	return fmt.Sprintf("%q is a protected variable and cannot be assigned", e.Name)
}

// DomainError: arithmetic underflow/invalid input where clamping is not
// permitted, e.g. a negative retirement rate.
type DomainError struct {
	Scope   Scope
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Scope, e.Message)
}

// EvaluationError wraps a failure raised while the pushdown machine walks
// the AST: division by zero, undefined variable/substance, type mismatch.
type EvaluationError struct {
	Pos     Pos
	Message string
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation error at %s: %s", e.Pos, e.Message)
}

// ErrUnsupportedDisplacement is raised when a cap or floor command names an
// explicit stream (rather than a quoted substance) as its displacement
// target; a recover command's displacement target is not checked.
// Spec §9 Open Questions records this as the authoritative,
// currently-unsupported form.
var ErrUnsupportedDisplacement = &UnsupportedOperationError{
	Message: "displacing an explicit stream (rather than a substance) is not supported",
}

// UnsupportedOperationError mirrors the corpus's UnsupportedOperationException
// boundary named explicitly in spec §9.
type UnsupportedOperationError struct {
	Message string
}

func (e *UnsupportedOperationError) Error() string { return e.Message }
