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

package log

import (
	"io"
	"regexp"
)

var uncolor = regexp.MustCompile("\x1b\\[([0-9]+;)*[0-9]+m")

// Uncolor strips ANSI color escape sequences from text.
func Uncolor(text string) string {
	return uncolor.ReplaceAllString(text, "")
}

// uncolorWriter strips ANSI escapes before forwarding to inner, so rotated
// log files never carry color codes that leaked in from a message built
// with fatih/color (cmd/qubecsim colors its stdout summary, which can end
// up echoed into a log line via args).
type uncolorWriter struct {
	inner io.Writer
}

func (w *uncolorWriter) Write(p []byte) (int, error) {
	if _, err := w.inner.Write([]byte(Uncolor(string(p)))); err != nil {
		return 0, err
	}
	return len(p), nil
}
