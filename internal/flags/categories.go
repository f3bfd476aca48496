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

// Package flags holds the urfave/cli flag category labels shared across
// cmd/qubecsim's subcommands, the same grouping idiom internal/debug/flags.go
// reaches for via its own internal/flags import (LoggingCategory,
// FirehoseCategory) when it wants `--help` to print flags under a heading
// rather than one flat list.
package flags

// Categories grouping cmd/qubecsim's flags under `--help`.
const (
	LoggingCategory    = "LOGGING AND DEBUGGING"
	OutputCategory     = "OUTPUT"
	MonteCarloCategory = "MONTE CARLO"
	MetricsCategory    = "METRICS"
)
