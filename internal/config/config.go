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

// Package config loads and dumps the simulator's optional TOML config file,
// the same `--config`/`dumpconfig` convention geth's cmd/geth/config.go
// builds on top of naoina/toml.
package config

import (
	"io"
	"os"
	"reflect"

	"github.com/naoina/toml"
)

// Output controls where and in what shape run results are written.
type Output struct {
	Path string `toml:",omitempty"`
	Gzip bool   `toml:",omitempty"`
}

// Logging controls the log package's output.
type Logging struct {
	Level   string `toml:",omitempty"`
	JSON    bool   `toml:",omitempty"`
	File    string `toml:",omitempty"`
	MaxSize int    `toml:",omitempty"`
}

// Monte Carlo bounds a Monte Carlo run beyond what the script itself
// declares: a global horizon for scenarios ending "onwards", and a
// concurrency cap so a large trial count doesn't overcommit the host.
type MonteCarlo struct {
	Horizon        int `toml:",omitempty"`
	MaxConcurrency int `toml:",omitempty"`
}

// Config is the root of the simulator's TOML configuration file.
type Config struct {
	Output     Output
	Logging    Logging
	MonteCarlo MonteCarlo
}

var tomlSettings = toml.Config{
	NormFieldName: func(typ reflect.Type, key string) string { return key },
	FieldToKey:    func(typ reflect.Type, field string) string { return field },
	MissingField: func(typ reflect.Type, field string) error {
		return nil
	},
}

// Load reads and parses a TOML config file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a TOML config document from r.
func Decode(r io.Reader) (*Config, error) {
	var cfg Config
	if err := tomlSettings.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Dump renders cfg back out as TOML, for `qubecsim run --dumpconfig`.
func Dump(cfg *Config, w io.Writer) error {
	return tomlSettings.NewEncoder(w).Encode(cfg)
}
