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
package op

import (
	"fmt"
	"math"

	"github.com/consensys/go-zkwasm/pkg/circuit"
	"github.com/consensys/go-zkwasm/pkg/etable"
	"github.com/consensys/go-zkwasm/pkg/specs"
	"github.com/consensys/go-zkwasm/pkg/util"
	"github.com/consensys/go-zkwasm/pkg/util/field"
)

// BrIfConfigBuilder configures the conditional branch instruction.
type BrIfConfigBuilder struct{}

// BrIfConfig is the configuration of the conditional branch instruction.  When
// the (i32) condition is non-zero, control transfers to dstPc and the kept
// value (if any) is moved down the stack over the dropped values.
type BrIfConfig struct {
	etable.BaseConfig
	taken      etable.BitCell
	keep       etable.BitCell
	keepIsI32  etable.BitCell
	cond       etable.U64Cell
	keepValue  etable.U64Cell
	condInv    etable.Cell
	drop       etable.CommonRangeCell
	dstPc      etable.CommonRangeCell
	readCond   etable.MemoryTableLookupReadCell
	readKeep   etable.MemoryTableLookupReadCell
	writeKeep  etable.MemoryTableLookupWriteCell
	movesValue circuit.Expr
}

// Configure implementation for etable.OpcodeConfigBuilder interface.
func (BrIfConfigBuilder) Configure(cs *circuit.ConstraintSystem, common *etable.CommonConfig,
	allocator *etable.CellAllocator, enable circuit.Expr) etable.OpcodeConfig {
	var (
		cb    = etable.NewConstraintBuilder()
		one   = circuit.Const(1)
		stack = etable.LocationType(specs.Stack)
		p     = &BrIfConfig{}
	)
	//
	p.taken = allocator.AllocBitCell()
	p.keep = allocator.AllocBitCell()
	p.keepIsI32 = allocator.AllocBitCell()
	p.cond = allocator.AllocU64Cell()
	p.keepValue = allocator.AllocU64Cell()
	p.condInv = allocator.AllocUnlimitedCell()
	p.drop = allocator.AllocCommonRangeCell()
	p.dstPc = allocator.AllocCommonRangeCell()
	p.movesValue = circuit.Product(p.taken.Expr(), p.keep.Expr())
	//
	p.readCond = allocator.AllocMemoryTableLookupReadCell(cb, "br_if read cond", stack,
		circuit.Sum(common.Sp(), one), one, p.cond.Expr(), one)
	p.readKeep = allocator.AllocMemoryTableLookupReadCell(cb, "br_if read keep", stack,
		circuit.Sum(common.Sp(), circuit.Const(2)), p.keepIsI32.Expr(), p.keepValue.Expr(), p.movesValue)
	p.writeKeep = allocator.AllocMemoryTableLookupWriteCell(cb, "br_if write keep", stack,
		circuit.Sum(common.Sp(), circuit.Const(2), p.drop.Expr()), p.keepIsI32.Expr(), p.keepValue.Expr(),
		p.movesValue)
	//
	cb.Push("br_if i32", p.cond.HighNibblesZero(8), i32Only(p.keepIsI32, p.keepValue))
	cb.Push("br_if taken",
		circuit.Product(p.cond.Expr(), circuit.Sub(one, p.taken.Expr())),
		circuit.Product(p.taken.Expr(), circuit.Sub(one, circuit.Product(p.cond.Expr(), p.condInv.Expr()))))
	cb.Finalize(cs, enable)
	//
	return p
}

// Opcode implementation for etable.OpcodeConfig interface.
func (p *BrIfConfig) Opcode(*etable.CommonConfig) circuit.Expr {
	return etable.EncodeOpcode(p.OpcodeClass(), p.drop.Expr(), p.keep.Expr(), p.dstPc.Expr())
}

// OpcodeClass implementation for etable.OpcodeConfig interface.
func (p *BrIfConfig) OpcodeClass() specs.OpcodeClassPlain {
	return specs.PlainClass(specs.BrIfClass)
}

// Assign implementation for etable.OpcodeConfig interface.
func (p *BrIfConfig) Assign(ctx *etable.Context, _ *etable.StepStatus,
	entry *specs.EventTableEntryWithMemoryInfo) error {
	var (
		step      = etable.Expect[*specs.BrIf](entry)
		eid       = entry.Entry.Eid
		moves     = step.Taken() && len(step.Keep) > 0
		accesses  []specs.MemoryRWEntry
		keepValue uint64
		keepIsI32 bool
		inv       field.Element
	)
	//
	if len(step.Keep) > 1 || len(step.Keep) != len(step.KeepValues) {
		panic(fmt.Sprintf("br_if (eid %d) keeps %d values", eid, len(step.Keep)))
	} else if step.Condition > math.MaxUint32 {
		panic(fmt.Sprintf("br_if (eid %d) condition %d is not an i32", eid, step.Condition))
	}
	//
	if moves {
		accesses = etable.ExpectAccesses(entry, 3)
	} else {
		accesses = etable.ExpectAccesses(entry, 1)
	}
	//
	if len(step.Keep) > 0 {
		keepValue, keepIsI32 = step.KeepValues[0], step.Keep[0].IsI32()
	}
	//
	if step.Taken() {
		cond := field.Uint64(step.Condition)
		inv.Inverse(&cond)
	}
	//
	err := etable.AssignAll(
		func() error { return p.taken.Assign(ctx, step.Taken()) },
		func() error { return p.keep.Assign(ctx, len(step.Keep) > 0) },
		func() error { return p.keepIsI32.Assign(ctx, keepIsI32) },
		func() error { return p.cond.Assign(ctx, step.Condition) },
		func() error { return p.keepValue.Assign(ctx, keepValue) },
		func() error { return p.condInv.Assign(ctx, inv) },
		func() error { return p.drop.Assign(ctx, step.Drop) },
		func() error { return p.dstPc.Assign(ctx, step.DstPc) },
		func() error { return p.readCond.Assign(ctx, eid, accesses[0]) },
	)
	//
	if err != nil || !moves {
		return err
	}
	//
	return etable.AssignAll(
		func() error { return p.readKeep.Assign(ctx, eid, accesses[1]) },
		func() error { return p.writeKeep.Assign(ctx, eid, accesses[2]) },
	)
}

// SpDiff implementation for etable.OpcodeConfig interface.
func (p *BrIfConfig) SpDiff() util.Option[circuit.Expr] {
	return util.Some(circuit.Sum(circuit.Const(1), circuit.Product(p.taken.Expr(), p.drop.Expr())))
}

// Mops implementation for etable.OpcodeConfig interface.
func (p *BrIfConfig) Mops() util.Option[circuit.Expr] {
	return util.Some(p.movesValue)
}

// MemoryWritingOps implementation for etable.OpcodeConfig interface.
func (p *BrIfConfig) MemoryWritingOps(entry *specs.EventTableEntry) uint32 {
	if step, ok := entry.StepInfo.(*specs.BrIf); ok && step.Taken() && len(step.Keep) > 0 {
		return 1
	}
	//
	return 0
}

// NextIid implementation for etable.OpcodeConfig interface.
func (p *BrIfConfig) NextIid(common *etable.CommonConfig) util.Option[circuit.Expr] {
	var (
		taken = p.taken.Expr()
		next  = circuit.Sum(common.Iid(), circuit.Const(1))
	)
	//
	return util.Some(circuit.Sum(circuit.Product(taken, p.dstPc.Expr()),
		circuit.Product(circuit.Sub(circuit.Const(1), taken), next)))
}

// MTableLookup implementation for etable.OpcodeConfig interface.
func (p *BrIfConfig) MTableLookup(item int) util.Option[circuit.Expr] {
	return lookupSlot(item, p.readCond, p.readKeep, p.writeKeep)
}
