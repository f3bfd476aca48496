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

// Package httpsrv exposes a single `?script=&simulation=` query endpoint
// returning CSV, the same named-simulate-request/structured-result shape
// as ethpandaops-erigone's xatu_simulateBlockGas RPC method, minus its
// chain-state plumbing: here the "chain state" is just a parsed QubecTalk
// program, and there is no dual original/simulated execution to compare.
package httpsrv

import (
	"errors"
	"net/http"

	"github.com/rs/cors"

	"github.com/SchmidtDSE/kigali-sim-sub006/engine/simerr"
	"github.com/SchmidtDSE/kigali-sim-sub006/log"
)

// ErrUnknownSimulation is returned by a Runner when simulation names a
// scenario the script never declares.
var ErrUnknownSimulation = errors.New("unknown simulation")

// Runner parses src and executes only the named simulation, returning CSV
// bytes; an empty simulation yields a header-only CSV. This
// is the seam cmd/qubecsim's parser+runner+csvout pipeline sits behind, so
// this package never imports engine/runner directly and stays testable
// against a stub.
type Runner func(src, simulation string) ([]byte, error)

// Handler builds the `?script=&simulation=` endpoint, wrapped in the
// browser-facing CORS policy every deployed copy of this endpoint needs
// since the script is supplied by a web page's query string, not a server
// form post.
func Handler(run Runner) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		script := r.URL.Query().Get("script")
		if script == "" {
			http.Error(w, "missing script parameter", http.StatusBadRequest)
			return
		}
		simulation := r.URL.Query().Get("simulation")

		body, err := run(script, simulation)
		if err != nil {
			status := http.StatusInternalServerError
			var errList *simerr.ErrorList
			if errors.As(err, &errList) {
				status = http.StatusUnprocessableEntity
			}
			log.Error("simulation request failed", "error", err, "status", status)
			http.Error(w, err.Error(), status)
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write(body)
	})

	return cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet},
	}).Handler(mux)
}
