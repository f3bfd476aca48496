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

	"github.com/shopspring/decimal"

	"github.com/SchmidtDSE/kigali-sim-sub006/engine/lang/ast"
	"github.com/SchmidtDSE/kigali-sim-sub006/engine/qty"
	"github.com/SchmidtDSE/kigali-sim-sub006/engine/simerr"
)

// protectedUnits gives each read-only state slot the unit its value is
// naturally expressed in, so arithmetic over a ProtectedVar read behaves
// the way arithmetic over any other Quantity does.
var protectedUnits = map[string]qty.Unit{
	"population":         qty.Units,
	"volume":             qty.Kilogram,
	"amortizedUnitVolume": qty.KgPerUnit,
	"ghgIntensity":        qty.TCO2ePerKg,
	"energyIntensity":     qty.KwhPerUnit,
	"yearsElapsed":        qty.Years,
	"yearAbsolute":        qty.Years,
}

// Eval evaluates expr, pushes the resulting Quantity onto the machine's
// value stack and returns it.
func (m *Machine) Eval(expr ast.Expr) (qty.Quantity, error) {
	v, err := m.eval(expr)
	if err != nil {
		return qty.Quantity{}, err
	}
	m.push(v)
	return v, nil
}

func (m *Machine) eval(expr ast.Expr) (qty.Quantity, error) {
	switch n := expr.(type) {
	case *ast.Literal:
		return m.evalLiteral(n)
	case *ast.VarRef:
		return m.evalVarRef(n)
	case *ast.StreamRead:
		return m.Engine.GetStream(n.Stream)
	case *ast.ProtectedVar:
		return m.evalProtectedVar(n)
	case *ast.BinaryOp:
		return m.evalBinaryOp(n)
	case *ast.UnaryNeg:
		operand, err := m.eval(n.Operand)
		if err != nil {
			return qty.Quantity{}, err
		}
		return operand.Neg(), nil
	case *ast.Limit:
		return m.evalLimit(n)
	case *ast.Conditional:
		return m.evalConditional(n)
	case *ast.SampleNormal:
		return m.evalSampleNormal(n)
	case *ast.SampleUniform:
		return m.evalSampleUniform(n)
	default:
		return qty.Quantity{}, &simerr.EvaluationError{Pos: expr.Pos(), Message: fmt.Sprintf("unsupported expression %T", expr)}
	}
}

func (m *Machine) evalLiteral(n *ast.Literal) (qty.Quantity, error) {
	value, err := decimal.NewFromString(n.Value)
	if err != nil {
		return qty.Quantity{}, &simerr.EvaluationError{Pos: n.Pos(), Message: "malformed numeric literal " + n.Value}
	}
	unit := qty.Unit(n.Unit)
	if n.Unit != "" {
		parsed, err := qty.ParseUnit(n.Unit)
		if err != nil {
			return qty.Quantity{}, &simerr.EvaluationError{Pos: n.Pos(), Message: err.Error()}
		}
		unit = parsed
	}
	return qty.NewWithLiteral(value, unit, n.Value), nil
}

func (m *Machine) evalVarRef(n *ast.VarRef) (qty.Quantity, error) {
	if v, ok := m.Lookup(n.Name); ok {
		return v, nil
	}
	return qty.Quantity{}, &simerr.EvaluationError{Pos: n.Pos(), Message: "undefined variable " + n.Name}
}

func (m *Machine) evalProtectedVar(n *ast.ProtectedVar) (qty.Quantity, error) {
	value, err := m.Engine.GetProtectedVariable(n.Name)
	if err != nil {
		return qty.Quantity{}, err
	}
	unit, ok := protectedUnits[n.Name]
	if !ok {
		unit = ""
	}
	return qty.New(value, unit), nil
}

func (m *Machine) evalBinaryOp(n *ast.BinaryOp) (qty.Quantity, error) {
	left, err := m.eval(n.Left)
	if err != nil {
		return qty.Quantity{}, err
	}
	right, err := m.eval(n.Right)
	if err != nil {
		return qty.Quantity{}, err
	}

	switch n.Op {
	case "+":
		sum, err := left.Add(right)
		if err != nil {
			return qty.Quantity{}, &simerr.EvaluationError{Pos: n.Pos(), Message: err.Error()}
		}
		return sum, nil
	case "-":
		diff, err := left.Sub(right)
		if err != nil {
			return qty.Quantity{}, &simerr.EvaluationError{Pos: n.Pos(), Message: err.Error()}
		}
		return diff, nil
	case "*":
		return qty.New(left.Value.Mul(right.Value), resultUnit(left, right)), nil
	case "/":
		if right.Value.IsZero() {
			return qty.Quantity{}, &simerr.EvaluationError{Pos: n.Pos(), Message: "division by zero"}
		}
		return qty.New(left.Value.Div(right.Value), resultUnit(left, right)), nil
	case "^":
		return qty.New(left.Value.Pow(right.Value), left.Unit), nil
	case "==":
		return boolQuantity(left.Value.Equal(right.Value)), nil
	case "!=":
		return boolQuantity(!left.Value.Equal(right.Value)), nil
	case "<":
		return boolQuantity(left.Value.LessThan(right.Value)), nil
	case "<=":
		return boolQuantity(left.Value.LessThanOrEqual(right.Value)), nil
	case ">":
		return boolQuantity(left.Value.GreaterThan(right.Value)), nil
	case ">=":
		return boolQuantity(left.Value.GreaterThanOrEqual(right.Value)), nil
	case "and":
		return boolQuantity(truthy(left) && truthy(right)), nil
	case "or":
		return boolQuantity(truthy(left) || truthy(right)), nil
	case "xor":
		return boolQuantity(truthy(left) != truthy(right)), nil
	default:
		return qty.Quantity{}, &simerr.EvaluationError{Pos: n.Pos(), Message: "unsupported operator " + n.Op}
	}
}

// resultUnit picks the non-dimensionless side's unit for a `*`/`/`
// combination; QubecTalk rates routinely multiply a dimensionless
// fraction into a quantity, and the fraction side carries no unit.
func resultUnit(left, right qty.Quantity) qty.Unit {
	if left.Unit == "" {
		return right.Unit
	}
	return left.Unit
}

func truthy(q qty.Quantity) bool { return !q.Value.IsZero() }

func boolQuantity(b bool) qty.Quantity {
	if b {
		return qty.New(decimal.New(1, 0), "")
	}
	return qty.New(decimal.Zero, "")
}

func (m *Machine) evalLimit(n *ast.Limit) (qty.Quantity, error) {
	operand, err := m.eval(n.Operand)
	if err != nil {
		return qty.Quantity{}, err
	}
	if n.Lo != nil {
		lo, err := m.eval(n.Lo)
		if err != nil {
			return qty.Quantity{}, err
		}
		if operand.Value.LessThan(lo.Value) {
			operand.Value = lo.Value
		}
	}
	if n.Hi != nil {
		hi, err := m.eval(n.Hi)
		if err != nil {
			return qty.Quantity{}, err
		}
		if operand.Value.GreaterThan(hi.Value) {
			operand.Value = hi.Value
		}
	}
	return operand, nil
}

func (m *Machine) evalConditional(n *ast.Conditional) (qty.Quantity, error) {
	cond, err := m.eval(n.Cond)
	if err != nil {
		return qty.Quantity{}, err
	}
	if truthy(cond) {
		return m.eval(n.Then)
	}
	return m.eval(n.Else)
}

func (m *Machine) evalSampleNormal(n *ast.SampleNormal) (qty.Quantity, error) {
	mean, err := m.eval(n.Mean)
	if err != nil {
		return qty.Quantity{}, err
	}
	std, err := m.eval(n.Std)
	if err != nil {
		return qty.Quantity{}, err
	}
	if m.Deterministic {
		return mean, nil
	}
	draw := mean.Value.Add(decimal.NewFromFloat(m.rng.NormFloat64()).Mul(std.Value))
	return qty.New(draw, mean.Unit), nil
}

func (m *Machine) evalSampleUniform(n *ast.SampleUniform) (qty.Quantity, error) {
	lo, err := m.eval(n.Lo)
	if err != nil {
		return qty.Quantity{}, err
	}
	hi, err := m.eval(n.Hi)
	if err != nil {
		return qty.Quantity{}, err
	}
	span := hi.Value.Sub(lo.Value)
	if m.Deterministic {
		return qty.New(lo.Value.Add(span.Div(decimal.New(2, 0))), lo.Unit), nil
	}
	draw := lo.Value.Add(decimal.NewFromFloat(m.rng.Float64()).Mul(span))
	return qty.New(draw, lo.Unit), nil
}
