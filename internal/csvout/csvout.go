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

// Package csvout serializes result rows to CSV, the same io.Writer-based
// batch-export shape as core/blockchain.go's Export/ExportN (periodic
// progress logging included) adapted from chain-export-by-block-number to
// result-export-by-row.
package csvout

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/SchmidtDSE/kigali-sim-sub006/engine/results"
	"github.com/SchmidtDSE/kigali-sim-sub006/log"
)

// Header is the fixed CSV column order.
var Header = []string{
	"scenario", "trial", "year", "application", "substance",
	"domestic", "import", "export", "recycle",
	"consumption", "consumptionNoRecycle",
	"population", "populationNew", "energy", "importInitialChargeValue",
}

const statsReportInterval = 2 * time.Second

// Write streams rows to w as CSV, logging progress every statsReportInterval
// for large Monte Carlo batches.
func Write(w io.Writer, rows []results.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}

	start := time.Now()
	reported := start
	for i, row := range rows {
		if err := cw.Write(record(row)); err != nil {
			return err
		}
		if time.Since(reported) >= statsReportInterval {
			log.Info("writing result rows", "written", i+1, "total", len(rows), "elapsed", time.Since(start))
			reported = time.Now()
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteGzip writes rows as gzip-compressed CSV, for `--output out.csv.gz`.
func WriteGzip(w io.Writer, rows []results.Record) error {
	gw := gzip.NewWriter(w)
	if err := Write(gw, rows); err != nil {
		gw.Close()
		return err
	}
	return gw.Close()
}

func record(r results.Record) []string {
	return []string{
		r.Scenario,
		strconv.Itoa(r.Trial),
		strconv.Itoa(r.Year),
		r.Application,
		r.Substance,
		r.Domestic.String(),
		r.Import.String(),
		r.Export.String(),
		r.Recycle.String(),
		r.Consumption.String(),
		r.ConsumptionNoRecycle.String(),
		r.Population.String(),
		r.PopulationNew.String(),
		r.Energy.String(),
		r.TradeSupplement.ImportInitialChargeValue.String(),
	}
}
