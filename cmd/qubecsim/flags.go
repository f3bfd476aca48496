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
	"github.com/urfave/cli/v2"

	"github.com/SchmidtDSE/kigali-sim-sub006/internal/flags"
)

var (
	verbosityFlag = &cli.IntFlag{
		Name:     "verbosity",
		Usage:    "Logging verbosity: 0=error, 1=warn, 2=info, 3=debug",
		Value:    2,
		Category: flags.LoggingCategory,
	}
	logJSONFlag = &cli.BoolFlag{
		Name:     "log.json",
		Usage:    "Format logs as JSON instead of colorized text",
		Category: flags.LoggingCategory,
	}
	logFileFlag = &cli.StringFlag{
		Name:     "log.file",
		Usage:    "Write logs to this path instead of stderr, rotated via lumberjack",
		Category: flags.LoggingCategory,
	}
	configFlag = &cli.StringFlag{
		Name:     "config",
		Usage:    "TOML configuration file (see internal/config.Config)",
		Category: flags.LoggingCategory,
	}
	gzipFlag = &cli.BoolFlag{
		Name:     "gzip",
		Usage:    "Compress CSV output with gzip",
		Category: flags.OutputCategory,
	}
	horizonFlag = &cli.IntFlag{
		Name:     "horizon",
		Usage:    "Resolved end year for scenarios declared \"to onwards\"",
		Category: flags.MonteCarloCategory,
	}
	maxConcurrencyFlag = &cli.IntFlag{
		Name:     "max-concurrency",
		Usage:    "Cap on concurrently executing scenario-trials (0 = unbounded)",
		Category: flags.MonteCarloCategory,
	}
	influxEndpointFlag = &cli.StringFlag{
		Name:     "metrics.influxdb.endpoint",
		Usage:    "InfluxDB v2 endpoint for periodic counter/histogram reporting",
		Category: flags.MetricsCategory,
	}
	influxTokenFlag = &cli.StringFlag{
		Name:     "metrics.influxdb.token",
		Usage:    "InfluxDB v2 auth token",
		Category: flags.MetricsCategory,
	}
	influxOrgFlag = &cli.StringFlag{
		Name:     "metrics.influxdb.org",
		Usage:    "InfluxDB v2 organization",
		Category: flags.MetricsCategory,
	}
	influxBucketFlag = &cli.StringFlag{
		Name:     "metrics.influxdb.bucket",
		Usage:    "InfluxDB v2 bucket",
		Category: flags.MetricsCategory,
	}
)

var globalFlags = []cli.Flag{
	verbosityFlag,
	logJSONFlag,
	logFileFlag,
	configFlag,
	influxEndpointFlag,
	influxTokenFlag,
	influxOrgFlag,
	influxBucketFlag,
}
