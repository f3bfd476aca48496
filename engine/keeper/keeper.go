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

// Package keeper holds the stateful, per-(stanza, application, substance)
// record of stream quantities, parameterization and enablement that the
// recalc strategies read and write. Its wide get/set surface mirrors how
// go-ethereum's core/state.StateDB exposes balance/nonce/code/storage
// accessors rather than a single generic key-value map: every quantity the
// domain cares about gets a named, typed accessor.
package keeper

import (
	"github.com/shopspring/decimal"

	"github.com/SchmidtDSE/kigali-sim-sub006/engine/qty"
	"github.com/SchmidtDSE/kigali-sim-sub006/engine/simerr"
)

// Stream names. Sales is derived (domestic + import + recycle) and can
// never be the target of SetStream.
const (
	Domestic             = "domestic"
	Import               = "import"
	Export               = "export"
	Sales                = "sales"
	RecycleRecharge      = "recycleRecharge"
	RecycleEol           = "recycleEol"
	Recycle              = "recycle"
	Equipment            = "equipment"
	PriorEquipment       = "priorEquipment"
	Consumption          = "consumption"
	ConsumptionNoRecycle = "consumptionNoRecycle"
	Energy               = "energy"
	ImplicitRecharge     = "implicitRecharge"
)

const (
	StageRecharge = "recharge"
	StageEol      = "eol"
)

var tradeStreams = map[string]bool{Domestic: true, Import: true, Export: true}

// Record is the complete per-scope substance state (spec §3).
type Record struct {
	Domestic, Import, Export                     qty.Quantity
	RecycleRecharge, RecycleEol                  qty.Quantity
	Equipment, PriorEquipment                     qty.Quantity
	Consumption, ConsumptionNoRecycle, Energy     qty.Quantity
	ImplicitRecharge                              qty.Quantity

	GhgIntensity           qty.Quantity
	EnergyIntensity        qty.Quantity
	InitialCharge          map[string]qty.Quantity
	RetirementRate         qty.Quantity
	RechargePopulationRate qty.Quantity
	RechargeIntensity      qty.Quantity
	RecoveryRate           qty.Quantity
	YieldRate              qty.Quantity
	DisplacementRate       qty.Quantity
	RecyclingStage         string

	Enabled map[string]bool

	LastSpecifiedValue map[string]qty.Quantity
	SalesIntentFresh   bool

	// SalesIntentKg/SalesIntentUnitFamily record the most recent user
	// sales write, converted to kg plus whether the original unit was
	// unit-family (spec §4.6 step 9: the Sales strategy writes back in
	// units when the triggering intent was itself unit-based).
	SalesIntentKg         qty.Quantity
	SalesIntentUnitFamily bool

	// RetiredThisYear is the equipment count retired by the most recent
	// Retire strategy run, consumed by the Recycle strategy's EOL stage.
	RetiredThisYear qty.Quantity
}

// ChargeForSales returns the initial charge (kg/unit) used to translate
// sales volume into equipment counts: the domestic charge if set, else the
// import charge, else zero.
func (r *Record) ChargeForSales() decimal.Decimal {
	if v, ok := r.InitialCharge[Domestic]; ok && !v.Value.IsZero() {
		return v.Value
	}
	if v, ok := r.InitialCharge[Import]; ok {
		return v.Value
	}
	return decimal.Zero
}

type recordStateView struct {
	rec   *Record
	years decimal.Decimal
}

func (s recordStateView) Population() decimal.Decimal {
	return s.rec.Equipment.Value.Add(s.rec.PriorEquipment.Value)
}
func (s recordStateView) AmortizedUnitVolume() decimal.Decimal { return s.rec.ChargeForSales() }
func (s recordStateView) Volume() decimal.Decimal              { return s.rec.SalesTotal().Value }
func (s recordStateView) GhgIntensity() decimal.Decimal        { return s.rec.GhgIntensity.Value }
func (s recordStateView) EnergyIntensity() decimal.Decimal     { return s.rec.EnergyIntensity.Value }
func (s recordStateView) YearsElapsed() decimal.Decimal        { return s.years }

// StateView adapts this record into a qty.StateGetter for use with the
// converter, given the number of years elapsed in the enclosing scenario.
func (r *Record) StateView(yearsElapsed decimal.Decimal) qty.StateGetter {
	return recordStateView{rec: r, years: yearsElapsed}
}

func newRecord() *Record {
	return &Record{
		Domestic:             qty.Zero(qty.Kilogram),
		Import:               qty.Zero(qty.Kilogram),
		Export:               qty.Zero(qty.Kilogram),
		RecycleRecharge:      qty.Zero(qty.Kilogram),
		RecycleEol:           qty.Zero(qty.Kilogram),
		Equipment:            qty.Zero(qty.Units),
		PriorEquipment:       qty.Zero(qty.Units),
		Consumption:          qty.Zero(qty.TCO2e),
		ConsumptionNoRecycle: qty.Zero(qty.TCO2e),
		Energy:               qty.Zero(qty.Kwh),
		ImplicitRecharge:     qty.Zero(qty.Kilogram),
		GhgIntensity:         qty.Zero(qty.TCO2ePerKg),
		EnergyIntensity:      qty.Zero(qty.KwhPerUnit),
		InitialCharge:        map[string]qty.Quantity{},
		RetirementRate:       qty.Zero(qty.PercentYear),
		RechargePopulationRate: qty.Zero(qty.PercentYear),
		RechargeIntensity:    qty.Zero(qty.KgPerUnit),
		RecoveryRate:         qty.Zero(qty.Percent),
		YieldRate:            qty.Zero(qty.Percent),
		DisplacementRate:     qty.Zero(qty.Percent),
		RecyclingStage:       StageRecharge,
		Enabled:              map[string]bool{},
		LastSpecifiedValue:   map[string]qty.Quantity{},
		SalesIntentKg:        qty.Zero(qty.Kilogram),
		RetiredThisYear:      qty.Zero(qty.Units),
	}
}

// RecycleTotal returns recycleRecharge + recycleEol; errors never occur
// since both streams are always the kg family.
func (r *Record) RecycleTotal() qty.Quantity {
	sum, _ := r.RecycleRecharge.Add(r.RecycleEol)
	return sum
}

// SalesTotal returns the derived sales view: domestic + import + recycle.
func (r *Record) SalesTotal() qty.Quantity {
	sum, _ := r.Domestic.Add(r.Import)
	sum, _ = sum.Add(r.RecycleTotal())
	return sum
}

// Keeper owns every substance Record for the lifetime of one scenario run.
type Keeper struct {
	records map[simerr.Scope]*Record
	order   []simerr.Scope
}

func New() *Keeper {
	return &Keeper{records: map[simerr.Scope]*Record{}}
}

// EnsureSubstance creates a defaulted record on first reference and returns
// the (possibly pre-existing) record for scope.
func (k *Keeper) EnsureSubstance(scope simerr.Scope) *Record {
	rec, ok := k.records[scope]
	if !ok {
		rec = newRecord()
		k.records[scope] = rec
		k.order = append(k.order, scope)
	}
	return rec
}

func (k *Keeper) HasSubstance(scope simerr.Scope) bool {
	_, ok := k.records[scope]
	return ok
}

// RegisteredSubstances returns every scope in first-registration order.
func (k *Keeper) RegisteredSubstances() []simerr.Scope {
	out := make([]simerr.Scope, len(k.order))
	copy(out, k.order)
	return out
}

func (k *Keeper) mustGet(scope simerr.Scope) (*Record, error) {
	rec, ok := k.records[scope]
	if !ok {
		return nil, &simerr.ScopeError{Op: "scope " + scope.String() + " has not been declared"}
	}
	return rec, nil
}

// GetStream reads a named stream. Sales is computed on the fly.
func (k *Keeper) GetStream(scope simerr.Scope, name string) (qty.Quantity, error) {
	rec, err := k.mustGet(scope)
	if err != nil {
		return qty.Quantity{}, err
	}
	switch name {
	case Domestic:
		return rec.Domestic, nil
	case Import:
		return rec.Import, nil
	case Export:
		return rec.Export, nil
	case Sales:
		return rec.SalesTotal(), nil
	case RecycleRecharge:
		return rec.RecycleRecharge, nil
	case RecycleEol:
		return rec.RecycleEol, nil
	case Recycle:
		return rec.RecycleTotal(), nil
	case Equipment:
		return rec.Equipment, nil
	case PriorEquipment:
		return rec.PriorEquipment, nil
	case Consumption:
		return rec.Consumption, nil
	case ConsumptionNoRecycle:
		return rec.ConsumptionNoRecycle, nil
	case Energy:
		return rec.Energy, nil
	case ImplicitRecharge:
		return rec.ImplicitRecharge, nil
	default:
		return qty.Quantity{}, &simerr.UnknownStreamError{Scope: scope, Stream: name}
	}
}

// SetStream performs a raw write after asserting enablement (for trade
// streams) and rejecting writes to the derived sales view.
func (k *Keeper) SetStream(scope simerr.Scope, name string, value qty.Quantity) error {
	rec, err := k.mustGet(scope)
	if err != nil {
		return err
	}
	if name == Sales {
		return &simerr.DomainError{Scope: scope, Message: "sales is a derived stream and cannot be set directly"}
	}
	if tradeStreams[name] && !value.IsZero() && !rec.Enabled[name] {
		return &simerr.EnablementError{Scope: scope, Stream: name}
	}
	switch name {
	case Domestic:
		rec.Domestic = value.ClampNonNegative()
	case Import:
		rec.Import = value.ClampNonNegative()
	case Export:
		rec.Export = value.ClampNonNegative()
	case RecycleRecharge:
		rec.RecycleRecharge = value.ClampNonNegative()
	case RecycleEol:
		rec.RecycleEol = value.ClampNonNegative()
	case Equipment:
		rec.Equipment = value.ClampNonNegative()
	case PriorEquipment:
		rec.PriorEquipment = value.ClampNonNegative()
	case Consumption:
		rec.Consumption = value.ClampNonNegative()
	case ConsumptionNoRecycle:
		rec.ConsumptionNoRecycle = value.ClampNonNegative()
	case Energy:
		rec.Energy = value.ClampNonNegative()
	case ImplicitRecharge:
		rec.ImplicitRecharge = value.ClampNonNegative()
	default:
		return &simerr.UnknownStreamError{Scope: scope, Stream: name}
	}
	return nil
}

// SetSalesStream writes one trade stream (domestic or import) applying
// recycling displacement: distribution is that stream's share of the
// current distribution (see GetDistribution), subtractRecycling controls
// whether the current recycle total is netted out of the write.
func (k *Keeper) SetSalesStream(scope simerr.Scope, stream string, value qty.Quantity, distribution decimal.Decimal, subtractRecycling bool) error {
	rec, err := k.mustGet(scope)
	if err != nil {
		return err
	}
	net := value.Value
	if subtractRecycling {
		recycle := rec.RecycleTotal()
		share := recycle.Value.Mul(distribution).Div(decimal.New(100, 0))
		net = net.Sub(share)
	}
	if net.IsNegative() {
		net = decimal.Zero
	}
	return k.SetStream(scope, stream, qty.New(net, value.Unit))
}

// SetBothSalesStreams atomically writes domestic and import, preserving the
// distribution split and applying recycling displacement to each share.
func (k *Keeper) SetBothSalesStreams(scope simerr.Scope, domesticValue, importValue qty.Quantity, pctDomestic, pctImport decimal.Decimal, subtractRecycling bool) error {
	if err := k.SetSalesStream(scope, Domestic, domesticValue, pctDomestic, subtractRecycling); err != nil {
		return err
	}
	return k.SetSalesStream(scope, Import, importValue, pctImport, subtractRecycling)
}

// GetDistribution returns (percentDomestic, percentImport) derived from the
// current non-recycled sales split; falls back to the enablement set when
// both virgin streams are currently zero.
func (k *Keeper) GetDistribution(scope simerr.Scope) (decimal.Decimal, decimal.Decimal) {
	rec, err := k.mustGet(scope)
	if err != nil {
		return decimal.Zero, decimal.Zero
	}
	total := rec.Domestic.Value.Add(rec.Import.Value)
	if total.IsZero() {
		domEnabled, impEnabled := rec.Enabled[Domestic], rec.Enabled[Import]
		switch {
		case domEnabled && !impEnabled:
			return decimal.New(100, 0), decimal.Zero
		case impEnabled && !domEnabled:
			return decimal.Zero, decimal.New(100, 0)
		default:
			return decimal.New(50, 0), decimal.New(50, 0)
		}
	}
	hundred := decimal.New(100, 0)
	pctDom := rec.Domestic.Value.Div(total).Mul(hundred)
	pctImp := hundred.Sub(pctDom)
	return pctDom, pctImp
}

func (k *Keeper) MarkStreamAsEnabled(scope simerr.Scope, stream string) error {
	rec, err := k.mustGet(scope)
	if err != nil {
		return err
	}
	rec.Enabled[stream] = true
	return nil
}

func (k *Keeper) IsStreamEnabled(scope simerr.Scope, stream string) bool {
	rec, err := k.mustGet(scope)
	if err != nil {
		return false
	}
	return rec.Enabled[stream]
}

// SetLastSpecifiedValue ignores percentage-unit writes, per invariant 4.
func (k *Keeper) SetLastSpecifiedValue(scope simerr.Scope, stream string, value qty.Quantity) error {
	rec, err := k.mustGet(scope)
	if err != nil {
		return err
	}
	if value.Unit.Stem() == qty.Percent {
		return nil
	}
	rec.LastSpecifiedValue[stream] = value
	rec.SalesIntentFresh = true
	return nil
}

func (k *Keeper) GetLastSpecifiedValue(scope simerr.Scope, stream string) (qty.Quantity, bool) {
	rec, err := k.mustGet(scope)
	if err != nil {
		return qty.Quantity{}, false
	}
	v, ok := rec.LastSpecifiedValue[stream]
	return v, ok
}

func (k *Keeper) HasLastSpecifiedValue(scope simerr.Scope, stream string) bool {
	_, ok := k.GetLastSpecifiedValue(scope, stream)
	return ok
}

// SetSalesIntent records the user's most recent sales-family write,
// already expressed in kg, plus whether its original unit was unit-family.
// The Sales strategy reads this back to decide the write-back unit (spec
// §4.6 step 9).
func (k *Keeper) SetSalesIntent(scope simerr.Scope, kgValue qty.Quantity, unitFamily bool) error {
	rec, err := k.mustGet(scope)
	if err != nil {
		return err
	}
	rec.SalesIntentKg = kgValue
	rec.SalesIntentUnitFamily = unitFamily
	return nil
}

func (k *Keeper) GetSalesIntent(scope simerr.Scope) (qty.Quantity, bool) {
	rec, err := k.mustGet(scope)
	if err != nil {
		return qty.Zero(qty.Kilogram), false
	}
	return rec.SalesIntentKg, rec.SalesIntentUnitFamily
}

func (k *Keeper) IsSalesIntentFreshlySet(scope simerr.Scope) bool {
	rec, err := k.mustGet(scope)
	if err != nil {
		return false
	}
	return rec.SalesIntentFresh
}

func (k *Keeper) ResetSalesIntentFlag(scope simerr.Scope) {
	if rec, err := k.mustGet(scope); err == nil {
		rec.SalesIntentFresh = false
	}
}

// GetInitialCharge returns the initial charge (kg/unit) attributed to the
// given trade stream, defaulting to zero when unset.
func (k *Keeper) GetInitialCharge(scope simerr.Scope, stream string) qty.Quantity {
	rec, err := k.mustGet(scope)
	if err != nil {
		return qty.Zero(qty.KgPerUnit)
	}
	if v, ok := rec.InitialCharge[stream]; ok {
		return v
	}
	return qty.Zero(qty.KgPerUnit)
}

func (k *Keeper) SetInitialCharge(scope simerr.Scope, stream string, value qty.Quantity) error {
	rec, err := k.mustGet(scope)
	if err != nil {
		return err
	}
	rec.InitialCharge[stream] = value
	return nil
}

// IncrementYear rolls equipment into priorEquipment, zeroes the current
// year's new-equipment and implicit-recharge bookkeeping, and clears the
// two recycling bins. Retirement must already have been subtracted from
// priorEquipment by the Retire strategy earlier in the same chain (spec
// §4.6's "Year increment" row runs Retire before this call happens).
func (k *Keeper) IncrementYear(scope simerr.Scope) error {
	rec, err := k.mustGet(scope)
	if err != nil {
		return err
	}
	rolled, addErr := rec.PriorEquipment.Add(rec.Equipment)
	if addErr != nil {
		return addErr
	}
	rec.PriorEquipment = rolled.ClampNonNegative()
	rec.Equipment = qty.Zero(qty.Units)
	rec.ImplicitRecharge = qty.Zero(qty.Kilogram)
	rec.RecycleRecharge = qty.Zero(qty.Kilogram)
	rec.RecycleEol = qty.Zero(qty.Kilogram)
	return nil
}
