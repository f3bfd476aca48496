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

// Package engine bundles the keeper, converter and recalc chains behind the
// public operation surface spec.md §4.7 names, the same way core/vm.EVM
// bundles state, context and config behind a Call-family surface. Every
// mutation funnels through a common path: enablement/scope assertion, a
// year-window check, a LastSpecifiedValue/SalesIntent update, then
// dispatch of the recalc chain appropriate to the mutation kind.
package engine

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/SchmidtDSE/kigali-sim-sub006/engine/keeper"
	"github.com/SchmidtDSE/kigali-sim-sub006/engine/qty"
	"github.com/SchmidtDSE/kigali-sim-sub006/engine/recalc"
	"github.com/SchmidtDSE/kigali-sim-sub006/engine/simerr"
)

// Hooks is a struct of optional, nil-checked callback fields used for
// progress reporting, mirrored on the teacher's core/tracing.Hooks pattern
// rather than a required-interface listener.
type Hooks struct {
	OnYearStart func(year int)
	OnCommand   func(scope simerr.Scope, command string)
	OnYearEnd   func(year int)
}

// Engine is the single-threaded, single-scenario execution context: one
// Keeper, one Converter, the currently selected scope, and the active
// year window. A scenario trial owns exactly one Engine; cross-trial
// parallelism (engine/runner) gives every goroutine its own instance.
type Engine struct {
	Keeper    *keeper.Keeper
	Converter *qty.Converter
	Hooks     Hooks

	StartYear, EndYear int
	CurrentYear        int

	stanza      string
	application string
	substance   string

	yearsElapsed decimal.Decimal
}

// New constructs an Engine covering [startYear, endYear] inclusive.
func New(startYear, endYear int) *Engine {
	return &Engine{
		Keeper:      keeper.New(),
		Converter:   qty.NewConverter(),
		StartYear:   startYear,
		EndYear:     endYear,
		CurrentYear: startYear,
	}
}

func (e *Engine) scope() simerr.Scope {
	return simerr.Scope{Stanza: e.stanza, Application: e.application, Substance: e.substance}
}

func (e *Engine) kit() *recalc.Kit {
	return &recalc.Kit{Keeper: e.Keeper, Converter: e.Converter, YearsElapsed: e.yearsElapsed}
}

// SetStanza selects the enclosing stanza name ("default" or a policy name),
// used only to qualify the scope attached to errors and results.
func (e *Engine) SetStanza(name string) { e.stanza = name }

// SetApplication selects the application currently being configured.
func (e *Engine) SetApplication(name string) { e.application = name }

// SetSubstance selects the substance currently being configured, creating
// its record on first reference unless strict is true and it does not yet
// exist (strict mode is used by policy stanzas overriding a substance the
// default stanza must already have declared).
func (e *Engine) SetSubstance(name string, strict bool) error {
	e.substance = name
	scope := e.scope()
	if strict && !e.Keeper.HasSubstance(scope) {
		return &simerr.ScopeError{Op: "setSubstance " + scope.String() + " (strict)"}
	}
	e.Keeper.EnsureSubstance(scope)
	return nil
}

func (e *Engine) fireCommand(name string) {
	if e.Hooks.OnCommand != nil {
		e.Hooks.OnCommand(e.scope(), name)
	}
}

// inWindow reports whether the engine's current year is inside window
// (a nil window always applies).
func (e *Engine) inWindow(window *Window) bool {
	if window == nil {
		return true
	}
	if window.Start != nil && e.CurrentYear < *window.Start {
		return false
	}
	if window.End != nil && e.CurrentYear > *window.End {
		return false
	}
	return true
}

// Window is the engine-level (resolved-to-int) counterpart of
// ast.DuringWindow; engine/machine resolves "beginning"/"onwards" against
// the engine's configured start/end year before calling into this package,
// so this package never has to know about the AST. A nil *Window matches
// every year.
type Window struct {
	Start, End *int
}

// Enable marks stream as enabled for the current scope, subject to window.
func (e *Engine) Enable(stream string, window *Window) error {
	if !e.inWindow(window) {
		return nil
	}
	e.fireCommand("enable")
	return e.Keeper.MarkStreamAsEnabled(e.scope(), stream)
}

// SetInitialCharge records the per-unit charge used to translate sales
// volume into equipment counts, then reruns the parameter-change chain.
func (e *Engine) SetInitialCharge(stream string, value qty.Quantity, window *Window) error {
	if !e.inWindow(window) {
		return nil
	}
	e.fireCommand("initialCharge")
	if err := e.Keeper.SetInitialCharge(e.scope(), stream, value); err != nil {
		return err
	}
	_, err := recalc.ParamChangeChain.Run(e.kit(), e.scope())
	return errors.Wrap(err, "initialCharge")
}

// Equals parameterizes ghgIntensity (default stanza convention: the bare
// `equals` command sets whichever intensity the enclosing substance body
// is currently accumulating for — ghg unless the value's unit stem is a
// kwh family, in which case it sets energy intensity).
func (e *Engine) Equals(value qty.Quantity, window *Window) error {
	if !e.inWindow(window) {
		return nil
	}
	e.fireCommand("equals")
	rec := e.Keeper.EnsureSubstance(e.scope())
	switch value.Unit.Stem() {
	case qty.KwhPerUnit, qty.KwhPerKg, qty.KwhPerMt:
		rec.EnergyIntensity = value
	default:
		rec.GhgIntensity = value
	}
	_, err := recalc.WriteChain.Run(e.kit(), e.scope())
	return errors.Wrap(err, "equals")
}

// recordIntent updates LastSpecifiedValue/SalesIntent bookkeeping
// ahead of a sales-family write, per spec.md §4.7 step (c).
func (e *Engine) recordIntent(stream string, value qty.Quantity) {
	scope := e.scope()
	_ = e.Keeper.SetLastSpecifiedValue(scope, stream, value)
	if stream == keeper.Domestic || stream == keeper.Import || stream == keeper.Export {
		kg := value
		if value.Unit.Stem() == qty.Units {
			rec := e.Keeper.EnsureSubstance(scope)
			kg = qty.New(value.Value.Mul(rec.ChargeForSales()), qty.Kilogram)
		}
		_ = e.Keeper.SetSalesIntent(scope, kg, value.Unit.Stem() == qty.Units)
	}
}

// SetStream implements `set <stream> to <value>`. Direct writes to
// equipment translate to an equivalent sales delta or a retirement,
// per spec §4.6's "set equipment" row, rather than writing the stream
// in place.
func (e *Engine) SetStream(stream string, value qty.Quantity, window *Window) error {
	if !e.inWindow(window) {
		return nil
	}
	e.fireCommand("set")
	scope := e.scope()
	if stream == keeper.Equipment {
		return e.setEquipment(value)
	}
	e.recordIntent(stream, value)
	if err := e.Keeper.SetStream(scope, stream, value); err != nil {
		return err
	}
	_, err := recalc.WriteChain.Run(e.kit(), scope)
	if err == nil && e.Keeper.IsSalesIntentFreshlySet(scope) {
		e.Keeper.ResetSalesIntentFlag(scope)
	}
	return errors.Wrap(err, "set")
}

// ChangeStream implements `change <stream> by <delta>`: reads the current
// value, adds delta (same family), and routes through SetStream so the
// usual intent-recording and recalc dispatch still apply.
func (e *Engine) ChangeStream(stream string, delta qty.Quantity, window *Window) error {
	if !e.inWindow(window) {
		return nil
	}
	scope := e.scope()
	current, err := e.Keeper.GetStream(scope, stream)
	if err != nil {
		return err
	}
	sum, err := current.Add(delta)
	if err != nil {
		return &simerr.UnitConversionError{Scope: scope, FromUnit: string(delta.Unit), ToUnit: string(current.Unit), Reason: err.Error()}
	}
	return e.SetStream(stream, sum, nil)
}

// setEquipment translates a direct equipment write into a sales delta
// (growth) or a retirement bump (shrinkage), per spec §4.6.
func (e *Engine) setEquipment(value qty.Quantity) error {
	scope := e.scope()
	rec := e.Keeper.EnsureSubstance(scope)
	current := rec.Equipment.Value.Add(rec.PriorEquipment.Value)
	target := value.Value
	if value.Unit.Stem() != qty.Units {
		return &simerr.DomainError{Scope: scope, Message: "equipment must be expressed in units"}
	}
	if target.GreaterThanOrEqual(current) {
		deltaUnits := target.Sub(current)
		charge := rec.ChargeForSales()
		deltaKg := deltaUnits.Mul(charge)
		e.recordIntent(keeper.Domestic, qty.New(deltaUnits, qty.Units))
		pctDom, pctImp := e.Keeper.GetDistribution(scope)
		hundred := decimal.New(100, 0)
		if err := e.Keeper.SetSalesStream(scope, keeper.Domestic, qty.New(rec.Domestic.Value.Add(deltaKg.Mul(pctDom).Div(hundred)), qty.Kilogram), pctDom, false); err != nil {
			return err
		}
		if err := e.Keeper.SetSalesStream(scope, keeper.Import, qty.New(rec.Import.Value.Add(deltaKg.Mul(pctImp).Div(hundred)), qty.Kilogram), pctImp, false); err != nil {
			return err
		}
		_, err := recalc.WriteChain.Run(e.kit(), scope)
		if err == nil && e.Keeper.IsSalesIntentFreshlySet(scope) {
			e.Keeper.ResetSalesIntentFlag(scope)
		}
		return errors.Wrap(err, "setEquipment (growth)")
	}

	deficitUnits := current.Sub(target)
	if !current.IsZero() {
		rate := deficitUnits.Div(current).Mul(decimal.New(100, 0))
		rec.RetirementRate = qty.New(rec.RetirementRate.Value.Add(rate), qty.PercentYear)
	}
	_, err := recalc.ParamChangeChain.Run(e.kit(), scope)
	return errors.Wrap(err, "setEquipment (retirement)")
}

// Cap implements `cap <stream> to <value> [displacing <target>]`.
func (e *Engine) Cap(stream string, value qty.Quantity, displacing string, window *Window) error {
	if !e.inWindow(window) {
		return nil
	}
	e.fireCommand("cap")
	if err := recalc.ApplyCap(e.kit(), e.scope(), stream, value, displacing); err != nil {
		return err
	}
	_, err := recalc.WriteChain.Run(e.kit(), e.scope())
	return errors.Wrap(err, "cap")
}

// Floor implements `floor <stream> to <value> [displacing <target>]`.
func (e *Engine) Floor(stream string, value qty.Quantity, displacing string, window *Window) error {
	if !e.inWindow(window) {
		return nil
	}
	e.fireCommand("floor")
	if err := recalc.ApplyFloor(e.kit(), e.scope(), stream, value, displacing); err != nil {
		return err
	}
	_, err := recalc.WriteChain.Run(e.kit(), e.scope())
	return errors.Wrap(err, "floor")
}

// Retire implements `retire <rate>`.
func (e *Engine) Retire(rate qty.Quantity, window *Window) error {
	if !e.inWindow(window) {
		return nil
	}
	e.fireCommand("retire")
	rec := e.Keeper.EnsureSubstance(e.scope())
	rec.RetirementRate = qty.New(rate.Value, qty.PercentYear)
	_, err := recalc.ParamChangeChain.Run(e.kit(), e.scope())
	return errors.Wrap(err, "retire")
}

// Recharge implements `recharge <populationRate> with <intensity>`.
func (e *Engine) Recharge(populationRate, intensity qty.Quantity, window *Window) error {
	if !e.inWindow(window) {
		return nil
	}
	e.fireCommand("recharge")
	rec := e.Keeper.EnsureSubstance(e.scope())
	rec.RechargePopulationRate = qty.New(populationRate.Value, qty.PercentYear)
	rec.RechargeIntensity = qty.New(intensity.Value, qty.KgPerUnit)
	_, err := recalc.ParamChangeChain.Run(e.kit(), e.scope())
	return errors.Wrap(err, "recharge")
}

// Recycle implements `recover <recoveryRate> with <yieldRate> reuse
// [at recharge|eol] [displacing <target>]`.
func (e *Engine) Recycle(recoveryRate, yieldRate qty.Quantity, stage, displacing string, window *Window) error {
	if !e.inWindow(window) {
		return nil
	}
	e.fireCommand("recover")
	scope := e.scope()
	rec := e.Keeper.EnsureSubstance(scope)
	rec.RecoveryRate = qty.New(recoveryRate.Value, qty.Percent)
	rec.YieldRate = qty.New(yieldRate.Value, qty.Percent)
	if stage != "" {
		rec.RecyclingStage = stage
	}
	if displacing != "" {
		rec.DisplacementRate = qty.New(decimal.New(100, 0), qty.Percent)
	}
	_, err := recalc.WriteChain.Run(e.kit(), scope)
	return errors.Wrap(err, "recover")
}

// Replace implements `replace <value> of <stream> with "<destSubstance>"`.
func (e *Engine) Replace(value qty.Quantity, stream, destSubstance string, window *Window) error {
	if !e.inWindow(window) {
		return nil
	}
	e.fireCommand("replace")
	if err := recalc.ApplyReplace(e.kit(), e.scope(), stream, value, destSubstance); err != nil {
		return err
	}
	_, err := recalc.WriteChain.Run(e.kit(), e.scope())
	return errors.Wrap(err, "replace")
}

// IncrementYear advances the engine by one year across every registered
// substance: the parameter-change chain (whose first step is Retire), then
// the keeper's own year roll (spec §4.6's Equipment state machine, POST-YEAR).
func (e *Engine) IncrementYear() error {
	if e.Hooks.OnYearEnd != nil {
		e.Hooks.OnYearEnd(e.CurrentYear)
	}
	for _, scope := range e.Keeper.RegisteredSubstances() {
		if _, err := recalc.ParamChangeChain.Run(e.kit(), scope); err != nil {
			return errors.Wrapf(err, "incrementYear %s", scope)
		}
		if err := e.Keeper.IncrementYear(scope); err != nil {
			return errors.Wrapf(err, "incrementYear %s", scope)
		}
	}
	e.CurrentYear++
	e.yearsElapsed = e.yearsElapsed.Add(decimal.New(1, 0))
	if e.Hooks.OnYearStart != nil {
		e.Hooks.OnYearStart(e.CurrentYear)
	}
	return nil
}

// GetVariable/SetVariable are implemented by engine/machine's scope chain,
// not by Engine: variables are a pure-evaluation concept with no stream
// bookkeeping, so they never need to reach the keeper. Protected variables
// (yearAbsolute, yearsElapsed, population, volume, ...) are read here since
// they derive from engine/keeper state.
func (e *Engine) GetProtectedVariable(name string) (decimal.Decimal, error) {
	switch name {
	case "yearAbsolute":
		return decimal.New(int64(e.CurrentYear), 0), nil
	case "yearsElapsed":
		return e.yearsElapsed, nil
	}
	rec := e.Keeper.EnsureSubstance(e.scope())
	view := rec.StateView(e.yearsElapsed)
	switch name {
	case "population":
		return view.Population(), nil
	case "volume":
		return view.Volume(), nil
	case "amortizedUnitVolume":
		return view.AmortizedUnitVolume(), nil
	case "ghgIntensity":
		return view.GhgIntensity(), nil
	case "energyIntensity":
		return view.EnergyIntensity(), nil
	default:
		return decimal.Zero, &simerr.ProtectedVariableError{Name: name}
	}
}

// GetStream exposes the keeper's stream read for the current scope, used
// by engine/machine when evaluating a StreamRead expression node.
func (e *Engine) GetStream(stream string) (qty.Quantity, error) {
	return e.Keeper.GetStream(e.scope(), stream)
}

// Scope returns the engine's current (stanza, application, substance).
func (e *Engine) Scope() simerr.Scope { return e.scope() }

// NewWindow constructs a Window from resolved absolute year bounds;
// engine/machine resolves ast.DuringWindow's beginning/onwards keywords
// against the engine's start/end year before calling this.
func NewWindow(start, end *int) *Window {
	return &Window{Start: start, End: end}
}
