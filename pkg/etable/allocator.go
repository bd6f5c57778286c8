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
)

// Usage summarises how many cells of each kind have been allocated.
type Usage struct {
	Bits         int
	CommonRange  int
	Unlimited    int
	U64          int
	MemoryLookup int
	JumpLookup   int
}

// Capacity returns the number of cells available in each region of a step.
func Capacity() Usage {
	return Usage{StepSize - BitMax, StepSize - StateMax, StepSize - AuxSharedStart, U4Columns, MTableLookupSlots, 1}
}

func (p Usage) String() string {
	c := Capacity()
	//
	return fmt.Sprintf("bits=%d/%d, common=%d/%d, unlimited=%d/%d, u64=%d/%d, mtable=%d/%d, jtable=%d/%d",
		p.Bits, c.Bits, p.CommonRange, c.CommonRange, p.Unlimited, c.Unlimited, p.U64, c.U64, p.MemoryLookup,
		c.MemoryLookup, p.JumpLookup, c.JumpLookup)
}

// CellAllocator hands out cells from the shared regions of a step.  Each region
// has a fixed capacity and a monotonically increasing cursor, hence cells
// returned by one allocator never overlap.  Exceeding the capacity of a region
// indicates a misconfigured opcode and is a fatal error.  Opcode
// configurations each receive their own clone of a base allocator, and hence
// reuse the same cells.
type CellAllocator struct {
	common *CommonConfig
	usage  Usage
}

// NewCellAllocator constructs a fresh allocator over the regions of a given
// common configuration.
func NewCellAllocator(common *CommonConfig) *CellAllocator {
	return &CellAllocator{common: common}
}

// Clone this allocator.  The clone allocates independently of the original.
func (p *CellAllocator) Clone() *CellAllocator {
	return &CellAllocator{p.common, p.usage}
}

// Usage returns the number of cells allocated so far in each region.
func (p *CellAllocator) Usage() Usage {
	return p.usage
}

func (p *CellAllocator) next(region string, cursor *int, start int, capacity int) int {
	if *cursor >= capacity {
		panic(fmt.Sprintf("%s region exhausted (capacity %d)", region, capacity))
	}
	//
	rot := start + *cursor
	*cursor++
	//
	return rot
}

// AllocBitCell allocates a cell constrained to hold either 0 or 1.
func (p *CellAllocator) AllocBitCell() BitCell {
	rot := p.next("bit", &p.usage.Bits, BitMax, StepSize-BitMax)
	return BitCell{Cell{p.common.SharedBits, rot}}
}

// AllocCommonRangeCell allocates a cell constrained to hold a value below 2^16.
func (p *CellAllocator) AllocCommonRangeCell() CommonRangeCell {
	rot := p.next("common range", &p.usage.CommonRange, StateMax, StepSize-StateMax)
	return CommonRangeCell{Cell{p.common.State, rot}}
}

// AllocUnlimitedCell allocates an unconstrained cell.
func (p *CellAllocator) AllocUnlimitedCell() Cell {
	rot := p.next("unlimited", &p.usage.Unlimited, AuxSharedStart, StepSize-AuxSharedStart)
	return Cell{p.common.Aux, rot}
}

// AllocU64Cell allocates a 64bit cell together with its nibble decomposition.
func (p *CellAllocator) AllocU64Cell() U64Cell {
	index := p.usage.U64
	rot := p.next("u64", &p.usage.U64, AuxU64Start, U4Columns)
	//
	return U64Cell{TypedCell[uint64, u64Encoding]{Cell{p.common.Aux, rot}}, p.common.U4Shared[index]}
}

// AllocMemoryTableLookupCell allocates one of the memory table lookup slots.
func (p *CellAllocator) AllocMemoryTableLookupCell() MemoryTableLookupCell {
	rot := p.next("mtable lookup", &p.usage.MemoryLookup, AuxMTableLookupStart, MTableLookupSlots)
	return MemoryTableLookupCell{Cell{p.common.Aux, rot}}
}

// AllocJumpTableLookupCell allocates the jump table lookup slot.
func (p *CellAllocator) AllocJumpTableLookupCell() JumpTableLookupCell {
	rot := p.next("jtable lookup", &p.usage.JumpLookup, AuxJTableLookup, 1)
	return JumpTableLookupCell{Cell{p.common.Aux, rot}}
}

// AllocMemoryTableLookupReadCell allocates the cells needed to read a value
// from memory, and registers the constraints tying them together with the
// given builder.  The lookup is enabled only when enable is non-zero, in which
// case the value must be live at the current execution id.
func (p *CellAllocator) AllocMemoryTableLookupReadCell(cb *ConstraintBuilder, name string, ltype, offset,
	isI32, value, enable circuit.Expr) MemoryTableLookupReadCell {
	var (
		cell = MemoryTableLookupReadCell{
			startEid:  p.AllocUnlimitedCell(),
			endEid:    p.AllocUnlimitedCell(),
			startDiff: p.AllocCommonRangeCell(),
			endDiff:   p.AllocCommonRangeCell(),
			encode:    p.AllocMemoryTableLookupCell(),
		}
		eid = p.common.Eid()
		one = circuit.Const(1)
	)
	//
	cb.Push(name+" encode", circuit.Sub(cell.encode.Expr(),
		circuit.Product(enable, EncodeMemoryLookup(cell.startEid.Expr(), cell.endEid.Expr(), ltype, offset,
			isI32, value))))
	// start < eid
	cb.Push(name+" start", circuit.Product(enable,
		circuit.Sub(eid, circuit.Sum(cell.startEid.Expr(), one, cell.startDiff.Expr()))))
	// eid <= end
	cb.Push(name+" end", circuit.Product(enable,
		circuit.Sub(cell.endEid.Expr(), circuit.Sum(eid, cell.endDiff.Expr()))))
	//
	return cell
}

// AllocMemoryTableLookupWriteCell allocates the cells needed to write a value
// to memory, and registers the constraints tying them together with the given
// builder.  The value written is live from the current execution id up to (but
// excluding) the end execution id.
func (p *CellAllocator) AllocMemoryTableLookupWriteCell(cb *ConstraintBuilder, name string, ltype, offset,
	isI32, value, enable circuit.Expr) MemoryTableLookupWriteCell {
	var (
		cell = MemoryTableLookupWriteCell{
			endEid:  p.AllocUnlimitedCell(),
			endDiff: p.AllocCommonRangeCell(),
			encode:  p.AllocMemoryTableLookupCell(),
		}
		eid = p.common.Eid()
	)
	//
	cb.Push(name+" encode", circuit.Sub(cell.encode.Expr(),
		circuit.Product(enable, EncodeMemoryLookup(eid, cell.endEid.Expr(), ltype, offset, isI32, value))))
	// eid < end
	cb.Push(name+" end", circuit.Product(enable,
		circuit.Sub(cell.endEid.Expr(), circuit.Sum(eid, circuit.Const(1), cell.endDiff.Expr()))))
	//
	return cell
}
