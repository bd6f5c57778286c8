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
)

type localKind uint8

const (
	localGet localKind = iota
	localSet
	localTee
)

// LocalGetConfigBuilder configures the local.get instruction.
type LocalGetConfigBuilder struct{}

// Configure implementation for etable.OpcodeConfigBuilder interface.
func (LocalGetConfigBuilder) Configure(cs *circuit.ConstraintSystem, common *etable.CommonConfig,
	allocator *etable.CellAllocator, enable circuit.Expr) etable.OpcodeConfig {
	return configureLocal(localGet, cs, common, allocator, enable)
}

// LocalSetConfigBuilder configures the local.set instruction.
type LocalSetConfigBuilder struct{}

// Configure implementation for etable.OpcodeConfigBuilder interface.
func (LocalSetConfigBuilder) Configure(cs *circuit.ConstraintSystem, common *etable.CommonConfig,
	allocator *etable.CellAllocator, enable circuit.Expr) etable.OpcodeConfig {
	return configureLocal(localSet, cs, common, allocator, enable)
}

// LocalTeeConfigBuilder configures the local.tee instruction.
type LocalTeeConfigBuilder struct{}

// Configure implementation for etable.OpcodeConfigBuilder interface.
func (LocalTeeConfigBuilder) Configure(cs *circuit.ConstraintSystem, common *etable.CommonConfig,
	allocator *etable.CellAllocator, enable circuit.Expr) etable.OpcodeConfig {
	return configureLocal(localTee, cs, common, allocator, enable)
}

// LocalConfig is the configuration of the local.get, local.set and local.tee
// instructions.  Each moves a value between the top of stack and a local at a
// given depth below the stack pointer.
type LocalConfig struct {
	etable.BaseConfig
	kind  localKind
	isI32 etable.BitCell
	value etable.U64Cell
	depth etable.CommonRangeCell
	read  etable.MemoryTableLookupReadCell
	write etable.MemoryTableLookupWriteCell
}

func configureLocal(kind localKind, cs *circuit.ConstraintSystem, common *etable.CommonConfig,
	allocator *etable.CellAllocator, enable circuit.Expr) *LocalConfig {
	var (
		cb     = etable.NewConstraintBuilder()
		one    = circuit.Const(1)
		stack  = etable.LocationType(specs.Stack)
		config = &LocalConfig{
			kind:  kind,
			isI32: allocator.AllocBitCell(),
			value: allocator.AllocU64Cell(),
			depth: allocator.AllocCommonRangeCell(),
		}
		from, to circuit.Expr
		name     = config.OpcodeClass().String()
	)
	//
	switch kind {
	case localGet:
		from, to = circuit.Sum(common.Sp(), config.depth.Expr()), common.Sp()
	case localSet:
		from, to = circuit.Sum(common.Sp(), one), circuit.Sum(common.Sp(), one, config.depth.Expr())
	default:
		from, to = circuit.Sum(common.Sp(), one), circuit.Sum(common.Sp(), config.depth.Expr())
	}
	//
	config.read = allocator.AllocMemoryTableLookupReadCell(cb, name+" read", stack, from, config.isI32.Expr(),
		config.value.Expr(), one)
	config.write = allocator.AllocMemoryTableLookupWriteCell(cb, name+" write", stack, to, config.isI32.Expr(),
		config.value.Expr(), one)
	//
	cb.Push(name+" i32", i32Only(config.isI32, config.value))
	cb.Finalize(cs, enable)
	//
	return config
}

// Opcode implementation for etable.OpcodeConfig interface.
func (p *LocalConfig) Opcode(*etable.CommonConfig) circuit.Expr {
	return etable.EncodeOpcode(p.OpcodeClass(), etable.VarType(p.isI32.Expr()), circuit.Const(0), p.depth.Expr())
}

// OpcodeClass implementation for etable.OpcodeConfig interface.
func (p *LocalConfig) OpcodeClass() specs.OpcodeClassPlain {
	switch p.kind {
	case localGet:
		return specs.PlainClass(specs.LocalGetClass)
	case localSet:
		return specs.PlainClass(specs.LocalSetClass)
	default:
		return specs.PlainClass(specs.LocalTeeClass)
	}
}

// Assign implementation for etable.OpcodeConfig interface.
func (p *LocalConfig) Assign(ctx *etable.Context, _ *etable.StepStatus,
	entry *specs.EventTableEntryWithMemoryInfo) error {
	var (
		vtype    specs.VarType
		depth    uint32
		value    uint64
		accesses = etable.ExpectAccesses(entry, 2)
	)
	//
	switch p.kind {
	case localGet:
		step := etable.Expect[*specs.LocalGet](entry)
		vtype, depth, value = step.Vtype, step.Depth, step.Value
	case localSet:
		step := etable.Expect[*specs.LocalSet](entry)
		vtype, depth, value = step.Vtype, step.Depth, step.Value
	default:
		step := etable.Expect[*specs.LocalTee](entry)
		vtype, depth, value = step.Vtype, step.Depth, step.Value
	}
	//
	if depth > math.MaxUint16 {
		return fmt.Errorf("local depth %d exceeds common range", depth)
	} else if err := p.isI32.Assign(ctx, vtype.IsI32()); err != nil {
		return err
	} else if err := p.value.Assign(ctx, value); err != nil {
		return err
	} else if err := p.depth.Assign(ctx, uint16(depth)); err != nil {
		return err
	} else if err := p.read.Assign(ctx, entry.Entry.Eid, accesses[0]); err != nil {
		return err
	}
	//
	return p.write.Assign(ctx, entry.Entry.Eid, accesses[1])
}

// SpDiff implementation for etable.OpcodeConfig interface.
func (p *LocalConfig) SpDiff() util.Option[circuit.Expr] {
	switch p.kind {
	case localGet:
		return util.Some(circuit.Neg(circuit.Const(1)))
	case localSet:
		return util.Some(circuit.Const(1))
	default:
		return util.None[circuit.Expr]()
	}
}

// Mops implementation for etable.OpcodeConfig interface.
func (p *LocalConfig) Mops() util.Option[circuit.Expr] {
	return util.Some(circuit.Const(1))
}

// MemoryWritingOps implementation for etable.OpcodeConfig interface.
func (p *LocalConfig) MemoryWritingOps(*specs.EventTableEntry) uint32 { return 1 }

// MTableLookup implementation for etable.OpcodeConfig interface.
func (p *LocalConfig) MTableLookup(item int) util.Option[circuit.Expr] {
	return lookupSlot(item, p.read, p.write)
}
