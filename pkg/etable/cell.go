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
package etable

import (
	"fmt"

	"github.com/consensys/go-zkwasm/pkg/circuit"
	"github.com/consensys/go-zkwasm/pkg/util/field"
	"github.com/holiman/uint256"
)

// Context identifies the step currently being assigned.
type Context struct {
	Assignment *circuit.Assignment
	// First row of the current step.
	Offset int
}

// NewContext constructs a context positioned at the given step.
func NewContext(asg *circuit.Assignment, step int) *Context {
	return &Context{asg, step * StepSize}
}

func (p *Context) assign(label string, col circuit.Column, rot int, val field.Element) error {
	if err := p.Assignment.AssignAdvice(col, p.Offset+rot, val); err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	//
	return nil
}

// ============================================================================
// Plain cells
// ============================================================================

// Cell is a single field element at a given rotation of a given column,
// relative to the first row of a step.  Cells impose no range discipline of
// their own.
type Cell struct {
	col circuit.Column
	rot int
}

// Column returns the column holding this cell.
func (p Cell) Column() circuit.Column { return p.col }

// Rotation returns the rotation of this cell within its step.
func (p Cell) Rotation() int { return p.rot }

// Assign a value to this cell within the current step.
func (p Cell) Assign(ctx *Context, val field.Element) error {
	return ctx.assign("cell", p.col, p.rot, val)
}

// AssignUint64 assigns a uint64 value to this cell within the current step.
func (p Cell) AssignUint64(ctx *Context, val uint64) error {
	return ctx.assign("cell", p.col, p.rot, field.Uint64(val))
}

// Expr returns an expression reading this cell on the current step.
func (p Cell) Expr() circuit.Expr {
	return p.col.Query(p.rot)
}

// NextExpr returns an expression reading this cell on the following step.
func (p Cell) NextExpr() circuit.Expr {
	return p.col.Query(p.rot + StepSize)
}

// ============================================================================
// Typed cells
// ============================================================================

// Encoding determines how values of a given kind are written into a cell.
// Encodings do not enforce any range discipline themselves; that is the
// responsibility of the gates registered for the region a cell belongs to.
type Encoding[V any] interface {
	// Label identifies the kind of cell in error messages.
	Label() string
	// Encode a value as a field element.
	Encode(V) field.Element
}

// TypedCell is a cell whose values are of a given kind.
type TypedCell[V any, E Encoding[V]] struct {
	cell Cell
}

// Cell returns the underlying plain cell.
func (p TypedCell[V, E]) Cell() Cell { return p.cell }

// Assign a value to this cell within the current step.
func (p TypedCell[V, E]) Assign(ctx *Context, val V) error {
	var encoding E
	//
	return ctx.assign(encoding.Label(), p.cell.col, p.cell.rot, encoding.Encode(val))
}

// Expr returns an expression reading this cell on the current step.
func (p TypedCell[V, E]) Expr() circuit.Expr {
	return p.cell.Expr()
}

type bitEncoding struct{}

func (bitEncoding) Label() string               { return "bit cell" }
func (bitEncoding) Encode(v bool) field.Element { return field.Bool(v) }

type commonRangeEncoding struct{}

func (commonRangeEncoding) Label() string                 { return "common range cell" }
func (commonRangeEncoding) Encode(v uint16) field.Element { return field.Uint64(uint64(v)) }

type u64Encoding struct{}

func (u64Encoding) Label() string                 { return "u64 cell" }
func (u64Encoding) Encode(v uint64) field.Element { return field.Uint64(v) }

type memoryLookupEncoding struct{}

func (memoryLookupEncoding) Label() string                       { return "mtable lookup cell" }
func (memoryLookupEncoding) Encode(v *uint256.Int) field.Element { return field.Uint256(v) }

type jumpLookupEncoding struct{}

func (jumpLookupEncoding) Label() string                       { return "jtable lookup cell" }
func (jumpLookupEncoding) Encode(v *uint256.Int) field.Element { return field.Uint256(v) }

// BitCell holds either 0 or 1.  Booleanness is enforced by a common gate over
// the shared bits column.
type BitCell = TypedCell[bool, bitEncoding]

// CommonRangeCell holds a value in [0..2^16), enforced by a common range check
// over the state column.
type CommonRangeCell = TypedCell[uint16, commonRangeEncoding]

// MemoryTableLookupCell holds an encoded memory table lookup key.
type MemoryTableLookupCell = TypedCell[*uint256.Int, memoryLookupEncoding]

// JumpTableLookupCell holds an encoded jump table lookup key.
type JumpTableLookupCell = TypedCell[*uint256.Int, jumpLookupEncoding]

// ============================================================================
// U64 cells
// ============================================================================

// U64Cell holds a 64bit value in one value cell, along with its sixteen
// nibbles (least significant first) over the rows of the step in a dedicated
// nibble column.  A common gate enforces that the value equals the weighted sum
// of its nibbles, whilst every nibble is range checked.
type U64Cell struct {
	value TypedCell[uint64, u64Encoding]
	u4    circuit.Column
}

// Assign a value to this cell within the current step, decomposing it into
// nibbles.
func (p U64Cell) Assign(ctx *Context, val uint64) error {
	if err := p.value.Assign(ctx, val); err != nil {
		return err
	}
	//
	for i := range StepSize {
		if err := ctx.assign("u4 cell", p.u4, i, field.Uint64(val&0xf)); err != nil {
			return err
		}
		//
		val >>= 4
	}
	//
	return nil
}

// Expr returns an expression reading the value of this cell.
func (p U64Cell) Expr() circuit.Expr {
	return p.value.Expr()
}

// Nibble returns an expression reading the i-th nibble of this cell.
func (p U64Cell) Nibble(i int) circuit.Expr {
	if i < 0 || i >= StepSize {
		panic(fmt.Sprintf("invalid nibble %d", i))
	}
	//
	return p.u4.Query(i)
}

// Byte returns an expression reading the i-th byte of this cell.
func (p U64Cell) Byte(i int) circuit.Expr {
	return circuit.Sum(p.Nibble(2*i), circuit.Scale(p.Nibble(2*i+1), 16))
}

// HighNibblesZero returns an expression which vanishes only when every nibble
// from the given index onwards is zero (i.e. the value fits in 4*from bits).
func (p U64Cell) HighNibblesZero(from int) circuit.Expr {
	var nibbles []circuit.Expr
	// Nibbles are range checked, hence their sum vanishes only when each does.
	for i := from; i < StepSize; i++ {
		nibbles = append(nibbles, p.Nibble(i))
	}
	//
	return circuit.Sum(nibbles...)
}
