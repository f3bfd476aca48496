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

// Package results serializes a frozen per-(scenario, trial, year,
// application, substance) snapshot out of keeper state, the same copy-out
// shape core/blockchain.go's blockProcessingResult gives callers instead of
// letting them hold a reference into live chain state.
package results

import (
	"github.com/shopspring/decimal"

	"github.com/SchmidtDSE/kigali-sim-sub006/engine/keeper"
	"github.com/SchmidtDSE/kigali-sim-sub006/engine/simerr"
)

// TradeSupplement carries reporting-only reconciliation figures that do not
// fit the primary stream columns.
type TradeSupplement struct {
	// ImportInitialChargeValue (kg) is the import stream's volume restated
	// using the import side's own declared per-unit initial charge, rather
	// than the blended charge (Record.ChargeForSales, domestic-priority)
	// used to derive equipment growth elsewhere. It reconciles invariant 5's
	// charge-attribution bit for tooling that wants the import-only view.
	ImportInitialChargeValue decimal.Decimal
}

// Record is one frozen row: no pointers into keeper.Record, so callers can
// hold and compare rows after the scenario/trial that produced them has
// moved on to its next year.
type Record struct {
	Scenario    string
	Trial       int
	Year        int
	Application string
	Substance   string

	Population    decimal.Decimal // units
	PopulationNew decimal.Decimal // units

	Domestic decimal.Decimal // kg
	Import   decimal.Decimal // kg
	Export   decimal.Decimal // kg

	RecycleRecharge decimal.Decimal // kg
	RecycleEol      decimal.Decimal // kg
	Recycle         decimal.Decimal // kg

	Consumption          decimal.Decimal // tCO2e
	ConsumptionNoRecycle decimal.Decimal // tCO2e
	Energy               decimal.Decimal // kwh

	TradeSupplement TradeSupplement
}

// Snapshot freezes the current state of scope within k into a Record. scope
// must already be registered (the scenario runner only snapshots scopes it
// has itself driven commands into).
func Snapshot(scenario string, trial, year int, scope simerr.Scope, k *keeper.Keeper) Record {
	rec := k.EnsureSubstance(scope)

	importUnits := decimal.Zero
	if blended := rec.ChargeForSales(); !blended.IsZero() {
		importUnits = rec.Import.Value.Div(blended)
	}
	importInitialChargeValue := importUnits.Mul(k.GetInitialCharge(scope, keeper.Import).Value)

	return Record{
		Scenario:    scenario,
		Trial:       trial,
		Year:        year,
		Application: scope.Application,
		Substance:   scope.Substance,

		Population:    rec.Equipment.Value.Add(rec.PriorEquipment.Value),
		PopulationNew: rec.Equipment.Value,

		Domestic: rec.Domestic.Value,
		Import:   rec.Import.Value,
		Export:   rec.Export.Value,

		RecycleRecharge: rec.RecycleRecharge.Value,
		RecycleEol:      rec.RecycleEol.Value,
		Recycle:         rec.RecycleTotal().Value,

		Consumption:          rec.Consumption.Value,
		ConsumptionNoRecycle: rec.ConsumptionNoRecycle.Value,
		Energy:               rec.Energy.Value,

		TradeSupplement: TradeSupplement{ImportInitialChargeValue: importInitialChargeValue},
	}
}

// SnapshotAll snapshots every substance currently registered in k.
func SnapshotAll(scenario string, trial, year int, k *keeper.Keeper) []Record {
	scopes := k.RegisteredSubstances()
	out := make([]Record, 0, len(scopes))
	for _, sc := range scopes {
		out = append(out, Snapshot(scenario, trial, year, sc, k))
	}
	return out
}
