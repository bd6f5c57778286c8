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

	"github.com/consensys/go-zkwasm/pkg/circuit"
	"github.com/consensys/go-zkwasm/pkg/etable"
	"github.com/consensys/go-zkwasm/pkg/specs"
	"github.com/consensys/go-zkwasm/pkg/util"
)

// ReturnConfigBuilder configures the return instruction.
type ReturnConfigBuilder struct{}

// ReturnConfig is the configuration of the return instruction.  The caller's
// frame is recovered from the jump table entry recorded when the current frame
// was entered, whilst the kept value (if any) is moved down the stack over the
// dropped values.
type ReturnConfig struct {
	etable.BaseConfig
	keep        etable.BitCell
	keepIsI32   etable.BitCell
	keepValue   etable.U64Cell
	drop        etable.CommonRangeCell
	lastJumpEid etable.Cell
	fid         etable.Cell
	iid         etable.Cell
	readKeep    etable.MemoryTableLookupReadCell
	writeKeep   etable.MemoryTableLookupWriteCell
	jump        etable.JumpTableLookupCell
}

// Configure implementation for etable.OpcodeConfigBuilder interface.
func (ReturnConfigBuilder) Configure(cs *circuit.ConstraintSystem, common *etable.CommonConfig,
	allocator *etable.CellAllocator, enable circuit.Expr) etable.OpcodeConfig {
	var (
		cb    = etable.NewConstraintBuilder()
		one   = circuit.Const(1)
		stack = etable.LocationType(specs.Stack)
		p     = &ReturnConfig{}
	)
	//
	p.keep = allocator.AllocBitCell()
	p.keepIsI32 = allocator.AllocBitCell()
	p.keepValue = allocator.AllocU64Cell()
	p.drop = allocator.AllocCommonRangeCell()
	p.lastJumpEid = allocator.AllocUnlimitedCell()
	p.fid = allocator.AllocUnlimitedCell()
	p.iid = allocator.AllocUnlimitedCell()
	p.jump = allocator.AllocJumpTableLookupCell()
	p.readKeep = allocator.AllocMemoryTableLookupReadCell(cb, "return read keep", stack,
		circuit.Sum(common.Sp(), one), p.keepIsI32.Expr(), p.keepValue.Expr(), p.keep.Expr())
	p.writeKeep = allocator.AllocMemoryTableLookupWriteCell(cb, "return write keep", stack,
		circuit.Sum(common.Sp(), one, p.drop.Expr()), p.keepIsI32.Expr(), p.keepValue.Expr(), p.keep.Expr())
	//
	cb.Push("return i32", i32Only(p.keepIsI32, p.keepValue))
	cb.Push("return frame", circuit.Sub(p.jump.Expr(),
		etable.EncodeJump(common.LastJumpEid(), p.lastJumpEid.Expr(), p.fid.Expr(), p.iid.Expr())))
	cb.Finalize(cs, enable)
	//
	return p
}

// Opcode implementation for etable.OpcodeConfig interface.
func (p *ReturnConfig) Opcode(*etable.CommonConfig) circuit.Expr {
	vtype := circuit.Product(p.keep.Expr(), etable.VarType(p.keepIsI32.Expr()))
	//
	return etable.EncodeOpcode(p.OpcodeClass(), p.drop.Expr(), p.keep.Expr(), vtype)
}

// OpcodeClass implementation for etable.OpcodeConfig interface.
func (p *ReturnConfig) OpcodeClass() specs.OpcodeClassPlain {
	return specs.PlainClass(specs.ReturnClass)
}

// Assign implementation for etable.OpcodeConfig interface.
func (p *ReturnConfig) Assign(ctx *etable.Context, _ *etable.StepStatus,
	entry *specs.EventTableEntryWithMemoryInfo) error {
	var (
		step = etable.Expect[*specs.Return](entry)
		eid  = entry.Entry.Eid
		jump = specs.JumpTableEntry{Eid: entry.Entry.LastJumpEid, LastJumpEid: step.ReturnLastJumpEid,
			Fid: step.ReturnFid, Iid: step.ReturnIid}
	)
	//
	if len(step.Keep) > 1 || len(step.Keep) != len(step.KeepValues) {
		panic(fmt.Sprintf("return (eid %d) keeps %d values", eid, len(step.Keep)))
	}
	//
	err := etable.AssignAll(
		func() error { return p.keep.Assign(ctx, len(step.Keep) > 0) },
		func() error { return p.drop.Assign(ctx, step.Drop) },
		func() error { return p.lastJumpEid.AssignUint64(ctx, uint64(step.ReturnLastJumpEid)) },
		func() error { return p.fid.AssignUint64(ctx, uint64(step.ReturnFid)) },
		func() error { return p.iid.AssignUint64(ctx, uint64(step.ReturnIid)) },
		func() error { return p.jump.Assign(ctx, jump.Encode()) },
	)
	//
	if err != nil {
		return err
	} else if len(step.Keep) == 0 {
		etable.ExpectAccesses(entry, 0)
		return nil
	}
	//
	accesses := etable.ExpectAccesses(entry, 2)
	//
	return etable.AssignAll(
		func() error { return p.keepIsI32.Assign(ctx, step.Keep[0].IsI32()) },
		func() error { return p.keepValue.Assign(ctx, step.KeepValues[0]) },
		func() error { return p.readKeep.Assign(ctx, eid, accesses[0]) },
		func() error { return p.writeKeep.Assign(ctx, eid, accesses[1]) },
	)
}

// SpDiff implementation for etable.OpcodeConfig interface.
func (p *ReturnConfig) SpDiff() util.Option[circuit.Expr] {
	return util.Some(p.drop.Expr())
}

// Jops implementation for etable.OpcodeConfig interface.
func (p *ReturnConfig) Jops() util.Option[circuit.Expr] {
	return util.Some(circuit.Const(1))
}

// Mops implementation for etable.OpcodeConfig interface.
func (p *ReturnConfig) Mops() util.Option[circuit.Expr] {
	return util.Some(p.keep.Expr())
}

// MemoryWritingOps implementation for etable.OpcodeConfig interface.
func (p *ReturnConfig) MemoryWritingOps(entry *specs.EventTableEntry) uint32 {
	if step, ok := entry.StepInfo.(*specs.Return); ok && len(step.Keep) > 0 {
		return 1
	}
	//
	return 0
}

// JumpOps implementation for etable.OpcodeConfig interface.
func (p *ReturnConfig) JumpOps(*specs.EventTableEntry) uint32 { return 1 }

// NextLastJumpEid implementation for etable.OpcodeConfig interface.
func (p *ReturnConfig) NextLastJumpEid(*etable.CommonConfig) util.Option[circuit.Expr] {
	return util.Some(p.lastJumpEid.Expr())
}

// NextFid implementation for etable.OpcodeConfig interface.
func (p *ReturnConfig) NextFid(*etable.CommonConfig) util.Option[circuit.Expr] {
	return util.Some(p.fid.Expr())
}

// NextIid implementation for etable.OpcodeConfig interface.
func (p *ReturnConfig) NextIid(*etable.CommonConfig) util.Option[circuit.Expr] {
	return util.Some(p.iid.Expr())
}

// MTableLookup implementation for etable.OpcodeConfig interface.
func (p *ReturnConfig) MTableLookup(item int) util.Option[circuit.Expr] {
	return lookupSlot(item, p.readKeep, p.writeKeep)
}

// JTableLookup implementation for etable.OpcodeConfig interface.
func (p *ReturnConfig) JTableLookup() util.Option[circuit.Expr] {
	return util.Some(p.jump.Expr())
}
