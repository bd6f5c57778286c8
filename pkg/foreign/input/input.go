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
// Package input provides the host function through which a guest reads its
// inputs.  An input is either public, in which case it is looked up in the
// public input table at the current input index, or private (i.e. supplied by
// the prover without further constraint).
package input

import (
	"fmt"

	"github.com/consensys/go-zkwasm/pkg/circuit"
	"github.com/consensys/go-zkwasm/pkg/etable"
	"github.com/consensys/go-zkwasm/pkg/specs"
	"github.com/consensys/go-zkwasm/pkg/util"
	"github.com/consensys/go-zkwasm/pkg/util/field"
)

// ConfigBuilder configures the input host function of the plugin with a given
// index.
type ConfigBuilder struct {
	// Index of the plugin amongst all host plugins.
	Index uint
}

// NewConfigBuilder constructs a builder for the plugin with the given index.
func NewConfigBuilder(index uint) *ConfigBuilder {
	return &ConfigBuilder{index}
}

// Config is the configuration of the input host function.  The function pops
// an i32 flag and pushes the i64 input.  Any non-zero flag, not only 1, marks
// the read as public.
type Config struct {
	etable.BaseConfig
	index    uint
	isPublic etable.BitCell
	value    etable.U64Cell
	arg      etable.Cell
	argInv   etable.Cell
	readArg  etable.MemoryTableLookupReadCell
	write    etable.MemoryTableLookupWriteCell
}

// Configure implementation for etable.OpcodeConfigBuilder interface.
func (p *ConfigBuilder) Configure(cs *circuit.ConstraintSystem, common *etable.CommonConfig,
	allocator *etable.CellAllocator, enable circuit.Expr) etable.OpcodeConfig {
	var (
		cb     = etable.NewConstraintBuilder()
		one    = circuit.Const(1)
		top    = circuit.Sum(common.Sp(), one)
		stack  = etable.LocationType(specs.Stack)
		config = &Config{
			index:    p.Index,
			isPublic: allocator.AllocBitCell(),
			value:    allocator.AllocU64Cell(),
			arg:      allocator.AllocUnlimitedCell(),
			argInv:   allocator.AllocUnlimitedCell(),
		}
	)
	//
	cs.DeclareTable(TableKey, "inputs")
	//
	config.readArg = allocator.AllocMemoryTableLookupReadCell(cb, "input read arg", stack, top, one,
		config.arg.Expr(), one)
	config.write = allocator.AllocMemoryTableLookupWriteCell(cb, "input write", stack, top, circuit.Const(0),
		config.value.Expr(), one)
	// is_public = 1 iff arg != 0
	cb.Push("input is public",
		circuit.Product(config.arg.Expr(), circuit.Sub(one, config.isPublic.Expr())),
		circuit.Product(config.isPublic.Expr(),
			circuit.Sub(one, circuit.Product(config.arg.Expr(), config.argInv.Expr()))))
	cb.Lookup(TableKey, "public input",
		circuit.Product(config.isPublic.Expr(), EncodeExpr(common.InputIndex(), config.value.Expr())))
	cb.Finalize(cs, enable)
	//
	return config
}

// Opcode implementation for etable.OpcodeConfig interface.
func (p *Config) Opcode(*etable.CommonConfig) circuit.Expr {
	return circuit.ShiftLeft(circuit.Const(uint64(p.OpcodeClass())), specs.OpcodeClassShift)
}

// OpcodeClass implementation for etable.OpcodeConfig interface.
func (p *Config) OpcodeClass() specs.OpcodeClassPlain {
	return specs.ForeignClass(p.index)
}

// Assign implementation for etable.OpcodeConfig interface.
func (p *Config) Assign(ctx *etable.Context, _ *etable.StepStatus,
	entry *specs.EventTableEntryWithMemoryInfo) error {
	var (
		step     = etable.Expect[*specs.CallHost](entry)
		accesses = etable.ExpectAccesses(entry, 2)
		eid      = entry.Entry.Eid
		sig      = step.Signature
		inv      field.Element
	)
	//
	if len(step.Args) != 1 || len(sig.Params) != 1 || sig.Params[0] != specs.I32 {
		panic(fmt.Sprintf("host input (eid %d) expects a single i32 argument", eid))
	} else if sig.ReturnType == nil || *sig.ReturnType != specs.I64 || step.RetVal == nil {
		panic(fmt.Sprintf("host input (eid %d) expects an i64 return value", eid))
	}
	//
	if arg := field.Uint64(step.Args[0]); !arg.IsZero() {
		inv.Inverse(&arg)
	}
	//
	if err := p.isPublic.Assign(ctx, step.Args[0] != 0); err != nil {
		return err
	} else if err := p.value.Assign(ctx, *step.RetVal); err != nil {
		return err
	} else if err := p.arg.AssignUint64(ctx, step.Args[0]); err != nil {
		return err
	} else if err := p.argInv.Assign(ctx, inv); err != nil {
		return err
	} else if err := p.readArg.Assign(ctx, eid, accesses[0]); err != nil {
		return err
	}
	//
	return p.write.Assign(ctx, eid, accesses[1])
}

// Mops implementation for etable.OpcodeConfig interface.
func (p *Config) Mops() util.Option[circuit.Expr] {
	return util.Some(circuit.Const(1))
}

// InputIndexIncrease implementation for etable.OpcodeConfig interface.
func (p *Config) InputIndexIncrease() util.Option[circuit.Expr] {
	return util.Some(p.isPublic.Expr())
}

// MemoryWritingOps implementation for etable.OpcodeConfig interface.
func (p *Config) MemoryWritingOps(*specs.EventTableEntry) uint32 { return 1 }

// IsHostPublicInput implementation for etable.OpcodeConfig interface.
func (p *Config) IsHostPublicInput(entry *specs.EventTableEntry) bool {
	step, ok := entry.StepInfo.(*specs.CallHost)
	//
	return ok && len(step.Args) == 1 && step.Args[0] != 0
}

// MTableLookup implementation for etable.OpcodeConfig interface.
func (p *Config) MTableLookup(item int) util.Option[circuit.Expr] {
	switch item {
	case 0:
		return util.Some(p.readArg.Expr())
	case 1:
		return util.Some(p.write.Expr())
	default:
		return util.None[circuit.Expr]()
	}
}
