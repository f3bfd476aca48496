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

package metrics

import (
	"context"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
)

// InfluxDBReporter periodically pushes a Registry's counters/histogram
// counts to an InfluxDB bucket, mirroring the teacher's metrics/influxdb
// reporter but built on the v2 client/line-protocol library the teacher
// go.mod already depends on.
type InfluxDBReporter struct {
	client influxdb2.Client
	org    string
	bucket string
	tags   map[string]string
}

// NewInfluxDBReporter builds a reporter writing to url/org/bucket.
func NewInfluxDBReporter(url, token, org, bucket string, tags map[string]string) *InfluxDBReporter {
	return &InfluxDBReporter{
		client: influxdb2.NewClient(url, token),
		org:    org,
		bucket: bucket,
		tags:   tags,
	}
}

// Close releases the underlying HTTP client.
func (r *InfluxDBReporter) Close() { r.client.Close() }

// Run pushes reg's current counters/histogram sample counts every interval
// until ctx is cancelled.
func (r *InfluxDBReporter) Run(ctx context.Context, reg *Registry, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.reportOnce(ctx, reg)
		}
	}
}

func (r *InfluxDBReporter) reportOnce(ctx context.Context, reg *Registry) {
	writeAPI := r.client.WriteAPIBlocking(r.org, r.bucket)
	reg.Each(func(name string, c Counter, h Histogram) {
		fields := map[string]interface{}{}
		switch {
		case c != nil:
			fields["count"] = c.Count()
		case h != nil:
			fields["samples"] = len(h.Values())
		}
		p := influxdb2.NewPoint(name, r.tags, fields, time.Now())
		_ = writeAPI.WritePoint(ctx, p)
	})
}
