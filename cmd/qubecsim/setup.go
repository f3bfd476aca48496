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
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/SchmidtDSE/kigali-sim-sub006/internal/config"
	"github.com/SchmidtDSE/kigali-sim-sub006/internal/metrics"
	"github.com/SchmidtDSE/kigali-sim-sub006/log"
)

const metricsReportInterval = 10 * time.Second

// verbosityToLevel maps the CLI's --verbosity (higher is noisier, matching
// the teacher's own --verbosity convention) onto slog's inverted severity
// scale.
func verbosityToLevel(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelError
	case v == 1:
		return slog.LevelWarn
	case v == 2:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// loadConfig reads --config if set, falling back to a zero-value Config so
// every flag below can still override it individually.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String(configFlag.Name); path != "" {
		return config.Load(path)
	}
	return &config.Config{}, nil
}

// setupLogging initializes the package-level default logger from the merged
// CLI flags and config file, mirroring internal/debug/flags.go's Setup.
func setupLogging(c *cli.Context, cfg *config.Config) {
	level := verbosityToLevel(c.Int(verbosityFlag.Name))
	if cfg.Logging.Level != "" {
		var parsed slog.Level
		if err := parsed.UnmarshalText([]byte(cfg.Logging.Level)); err == nil {
			level = parsed
		}
	}

	filePath := c.String(logFileFlag.Name)
	if filePath == "" {
		filePath = cfg.Logging.File
	}

	log.SetDefault(log.New(log.Config{
		Level:     level,
		JSON:      c.Bool(logJSONFlag.Name) || cfg.Logging.JSON,
		FilePath:  filePath,
		MaxSizeMB: cfg.Logging.MaxSize,
	}))
}

// setupMetrics wires an InfluxDB reporter onto metrics.DefaultRegistry when
// an endpoint is configured, enabling the registry as a side effect (metrics
// are a near-zero-cost no-op otherwise). The returned cancel func stops the
// reporter's background loop; callers should defer both it and Close.
func setupMetrics(c *cli.Context) (*metrics.InfluxDBReporter, context.CancelFunc) {
	endpoint := c.String(influxEndpointFlag.Name)
	if endpoint == "" {
		return nil, func() {}
	}
	metrics.Enabled = true
	reporter := metrics.NewInfluxDBReporter(
		endpoint,
		c.String(influxTokenFlag.Name),
		c.String(influxOrgFlag.Name),
		c.String(influxBucketFlag.Name),
		map[string]string{"app": "qubecsim"},
	)
	ctx, cancel := context.WithCancel(context.Background())
	go reporter.Run(ctx, metrics.DefaultRegistry, metricsReportInterval)
	return reporter, cancel
}

// newRunID tags the default logger with a fresh run identifier, namespacing
// a single invocation's log lines (and, were CPU/block profiling wired in
// later, their output files) the way a request ID threads through a server.
func newRunID() string {
	id := uuid.New().String()
	log.SetDefault(log.Default().With("runID", id))
	return id
}
