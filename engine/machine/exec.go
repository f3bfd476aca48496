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

package machine

import (
	"fmt"

	"github.com/SchmidtDSE/kigali-sim-sub006/engine/lang/ast"
	"github.com/SchmidtDSE/kigali-sim-sub006/engine/simerr"
)

// Exec dispatches one substance-body statement into the bound engine,
// evaluating its expression operands first. Order matches spec.md §4.3's
// command listing.
func (m *Machine) Exec(cmd ast.Command) error {
	switch c := cmd.(type) {
	case *ast.EnableCmd:
		return m.Engine.Enable(c.Stream, m.resolveWindow(c.During))

	case *ast.InitialChargeCmd:
		v, err := m.Eval(c.Value)
		if err != nil {
			return err
		}
		return m.Engine.SetInitialCharge(c.Stream, v, m.resolveWindow(c.During))

	case *ast.EqualsCmd:
		v, err := m.Eval(c.Value)
		if err != nil {
			return err
		}
		return m.Engine.Equals(v, m.resolveWindow(c.During))

	case *ast.SetCmd:
		v, err := m.Eval(c.Value)
		if err != nil {
			return err
		}
		return m.Engine.SetStream(c.Stream, v, m.resolveWindow(c.During))

	case *ast.ChangeCmd:
		v, err := m.Eval(c.Value)
		if err != nil {
			return err
		}
		return m.Engine.ChangeStream(c.Stream, v, m.resolveWindow(c.During))

	case *ast.RetireCmd:
		v, err := m.Eval(c.Value)
		if err != nil {
			return err
		}
		return m.Engine.Retire(v, m.resolveWindow(c.During))

	case *ast.RechargeCmd:
		pop, err := m.Eval(c.Population)
		if err != nil {
			return err
		}
		vol, err := m.Eval(c.Volume)
		if err != nil {
			return err
		}
		return m.Engine.Recharge(pop, vol, m.resolveWindow(c.During))

	case *ast.RecoverCmd:
		pct, err := m.Eval(c.Percent)
		if err != nil {
			return err
		}
		reuse, err := m.Eval(c.Reuse)
		if err != nil {
			return err
		}
		return m.Engine.Recycle(pct, reuse, c.Stage, c.Displacing, m.resolveWindow(c.During))

	case *ast.CapCmd:
		v, err := m.Eval(c.Value)
		if err != nil {
			return err
		}
		return m.Engine.Cap(c.Stream, v, c.Displacing, m.resolveWindow(c.During))

	case *ast.FloorCmd:
		v, err := m.Eval(c.Value)
		if err != nil {
			return err
		}
		return m.Engine.Floor(c.Stream, v, c.Displacing, m.resolveWindow(c.During))

	case *ast.ReplaceCmd:
		v, err := m.Eval(c.Value)
		if err != nil {
			return err
		}
		return m.Engine.Replace(v, c.Stream, c.Substance, m.resolveWindow(c.During))

	case *ast.DefineVariableCmd:
		v, err := m.Eval(c.Value)
		if err != nil {
			return err
		}
		return m.Define(c.Name, v)

	default:
		return &simerr.EvaluationError{Pos: cmd.Pos(), Message: fmt.Sprintf("unsupported command %T", cmd)}
	}
}
