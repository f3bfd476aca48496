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

// Package lexer tokenizes QubecTalk source (spec §6). It performs no
// semantic validation; that is the parser's and machine's job.
package lexer

import "github.com/SchmidtDSE/kigali-sim-sub006/engine/simerr"

type Kind int

const (
	EOF Kind = iota
	Ident
	String
	Number
	Symbol
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Ident:
		return "Ident"
	case String:
		return "String"
	case Number:
		return "Number"
	case Symbol:
		return "Symbol"
	default:
		return "Unknown"
	}
}

// Token is a single lexical unit. Text holds the literal source slice
// (identifiers verbatim, strings without quotes, numbers normalized to plain
// decimal text with thousands separators stripped, symbols verbatim).
type Token struct {
	Kind Kind
	Text string
	Pos  simerr.Pos
}

func (t Token) Is(kind Kind, text string) bool {
	return t.Kind == kind && t.Text == text
}
