// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package circuit

import (
	"fmt"
	"strings"

	"github.com/consensys/go-zkwasm/pkg/util"
	"github.com/consensys/go-zkwasm/pkg/util/field"
	"github.com/holiman/uint256"
)

// Expr represents an arithmetic expression over the cells of an assignment,
// where cells are identified relative to the row on which the expression is
// evaluated.  Expressions are immutable once constructed and may be shared
// freely between constraints.
type Expr interface {
	util.Bounded
	fmt.Stringer
	// EvalAt evaluates this expression on a given row of an assignment.  An
	// error is returned if the expression reads a cell outside the assignment.
	EvalAt(row int, asg *Assignment) (field.Element, error)
	// Degree returns the polynomial degree of this expression, where every
	// column access has degree one.
	Degree() uint
}

// ============================================================================
// Constructors
// ============================================================================

// Const constructs a constant expression from a uint64.
func Const(val uint64) Expr {
	return &Constant{field.Uint64(val)}
}

// ConstElement constructs a constant expression from a field element.
func ConstElement(val field.Element) Expr {
	return &Constant{val}
}

// ConstUint256 constructs a constant expression from a 256bit integer, reduced
// modulo the field order.
func ConstUint256(val *uint256.Int) Expr {
	return &Constant{field.Uint256(val)}
}

// TwoPowN constructs the constant expression 2^n.
func TwoPowN(n uint) Expr {
	return &Constant{field.TwoPowN(n)}
}

// Sum zero or more expressions together.
func Sum(terms ...Expr) Expr {
	var args []Expr
	//
	for _, t := range terms {
		switch e := t.(type) {
		case *Add:
			args = append(args, e.Args...)
		case *Constant:
			if !e.Value.IsZero() {
				args = append(args, e)
			}
		default:
			args = append(args, t)
		}
	}
	//
	switch len(args) {
	case 0:
		return Const(0)
	case 1:
		return args[0]
	default:
		return &Add{args}
	}
}

// Product multiplies zero or more expressions together.
func Product(terms ...Expr) Expr {
	var args []Expr
	//
	for _, t := range terms {
		switch e := t.(type) {
		case *Mul:
			args = append(args, e.Args...)
		case *Constant:
			if e.Value.IsZero() {
				return Const(0)
			} else if !e.Value.IsOne() {
				args = append(args, e)
			}
		default:
			args = append(args, t)
		}
	}
	//
	switch len(args) {
	case 0:
		return Const(1)
	case 1:
		return args[0]
	default:
		return &Mul{args}
	}
}

// Neg negates a given expression.
func Neg(arg Expr) Expr {
	if c, ok := arg.(*Constant); ok {
		var val field.Element
		//
		val.Neg(&c.Value)
		//
		return &Constant{val}
	}
	//
	return &Negate{arg}
}

// Sub computes lhs - rhs.
func Sub(lhs Expr, rhs Expr) Expr {
	return Sum(lhs, Neg(rhs))
}

// Scale multiplies an expression by a constant.
func Scale(arg Expr, factor uint64) Expr {
	return Product(Const(factor), arg)
}

// ShiftLeft multiplies an expression by 2^n.
func ShiftLeft(arg Expr, n uint) Expr {
	return Product(TwoPowN(n), arg)
}

// ============================================================================
// Constant
// ============================================================================

// Constant represents a fixed field element.
type Constant struct{ Value field.Element }

// Bounds implementation for Bounded interface.
func (p *Constant) Bounds() util.Bounds { return util.NoBounds }

// Degree implementation for Expr interface.
func (p *Constant) Degree() uint { return 0 }

// EvalAt implementation for Expr interface.
func (p *Constant) EvalAt(int, *Assignment) (field.Element, error) {
	return p.Value, nil
}

func (p *Constant) String() string {
	return p.Value.String()
}

// ============================================================================
// Column Access
// ============================================================================

// ColumnAccess represents reading the value held in a given column at a row
// relative to the current row.  Suppose we are evaluating a constraint on row
// k=5 which contains the accesses "eid(0)" and "eid(16)".  Then eid(0) reads
// row 5 whilst eid(16) reads row 21.
type ColumnAccess struct {
	Column   Column
	Rotation int
}

// Bounds implementation for Bounded interface.
func (p *ColumnAccess) Bounds() util.Bounds {
	return util.RotationBounds(p.Rotation)
}

// Degree implementation for Expr interface.
func (p *ColumnAccess) Degree() uint { return 1 }

// EvalAt implementation for Expr interface.
func (p *ColumnAccess) EvalAt(row int, asg *Assignment) (field.Element, error) {
	return asg.Get(p.Column, row+p.Rotation)
}

func (p *ColumnAccess) String() string {
	if p.Rotation == 0 {
		return p.Column.Name
	}
	//
	return fmt.Sprintf("(shift %s %d)", p.Column.Name, p.Rotation)
}

// ============================================================================
// Add
// ============================================================================

// Add represents the addition of zero or more expressions.
type Add struct{ Args []Expr }

// Bounds implementation for Bounded interface.
func (p *Add) Bounds() util.Bounds { return util.JoinBounds(p.Args) }

// Degree implementation for Expr interface.
func (p *Add) Degree() uint {
	var degree uint
	//
	for _, arg := range p.Args {
		degree = max(degree, arg.Degree())
	}
	//
	return degree
}

// EvalAt implementation for Expr interface.
func (p *Add) EvalAt(row int, asg *Assignment) (field.Element, error) {
	var val field.Element
	//
	for _, arg := range p.Args {
		ith, err := arg.EvalAt(row, asg)
		if err != nil {
			return val, err
		}
		//
		val.Add(&val, &ith)
	}
	//
	return val, nil
}

func (p *Add) String() string {
	return lispOfTerms("+", p.Args)
}

// ============================================================================
// Mul
// ============================================================================

// Mul represents the product of zero or more expressions.
type Mul struct{ Args []Expr }

// Bounds implementation for Bounded interface.
func (p *Mul) Bounds() util.Bounds { return util.JoinBounds(p.Args) }

// Degree implementation for Expr interface.
func (p *Mul) Degree() uint {
	var degree uint
	//
	for _, arg := range p.Args {
		degree += arg.Degree()
	}
	//
	return degree
}

// EvalAt implementation for Expr interface.
func (p *Mul) EvalAt(row int, asg *Assignment) (field.Element, error) {
	var val = field.One()
	//
	for _, arg := range p.Args {
		ith, err := arg.EvalAt(row, asg)
		if err != nil {
			return val, err
		}
		//
		val.Mul(&val, &ith)
	}
	//
	return val, nil
}

func (p *Mul) String() string {
	return lispOfTerms("*", p.Args)
}

// ============================================================================
// Negate
// ============================================================================

// Negate represents the additive inverse of an expression.
type Negate struct{ Arg Expr }

// Bounds implementation for Bounded interface.
func (p *Negate) Bounds() util.Bounds { return p.Arg.Bounds() }

// Degree implementation for Expr interface.
func (p *Negate) Degree() uint { return p.Arg.Degree() }

// EvalAt implementation for Expr interface.
func (p *Negate) EvalAt(row int, asg *Assignment) (field.Element, error) {
	val, err := p.Arg.EvalAt(row, asg)
	//
	val.Neg(&val)
	//
	return val, err
}

func (p *Negate) String() string {
	return fmt.Sprintf("(- %s)", p.Arg.String())
}

func lispOfTerms(op string, args []Expr) string {
	var builder strings.Builder
	//
	builder.WriteString("(")
	builder.WriteString(op)
	//
	for _, arg := range args {
		builder.WriteString(" ")
		builder.WriteString(arg.String())
	}
	//
	builder.WriteString(")")
	//
	return builder.String()
}
