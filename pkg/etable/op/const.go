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
	"github.com/consensys/go-zkwasm/pkg/circuit"
	"github.com/consensys/go-zkwasm/pkg/etable"
	"github.com/consensys/go-zkwasm/pkg/specs"
	"github.com/consensys/go-zkwasm/pkg/util"
)

// ConstConfigBuilder configures the const instruction, which pushes an
// immediate value.
type ConstConfigBuilder struct{}

// ConstConfig is the configuration of the const instruction.
type ConstConfig struct {
	etable.BaseConfig
	isI32 etable.BitCell
	value etable.U64Cell
	write etable.MemoryTableLookupWriteCell
}

// Configure implementation for etable.OpcodeConfigBuilder interface.
func (ConstConfigBuilder) Configure(cs *circuit.ConstraintSystem, common *etable.CommonConfig,
	allocator *etable.CellAllocator, enable circuit.Expr) etable.OpcodeConfig {
	var (
		cb     = etable.NewConstraintBuilder()
		config = &ConstConfig{
			isI32: allocator.AllocBitCell(),
			value: allocator.AllocU64Cell(),
		}
	)
	//
	config.write = allocator.AllocMemoryTableLookupWriteCell(cb, "const write", etable.LocationType(specs.Stack),
		common.Sp(), config.isI32.Expr(), config.value.Expr(), circuit.Const(1))
	//
	cb.Push("const i32", i32Only(config.isI32, config.value))
	cb.Finalize(cs, enable)
	//
	return config
}

// Opcode implementation for etable.OpcodeConfig interface.
func (p *ConstConfig) Opcode(*etable.CommonConfig) circuit.Expr {
	return etable.EncodeOpcode(specs.PlainClass(specs.ConstClass), etable.VarType(p.isI32.Expr()),
		circuit.Const(0), p.value.Expr())
}

// OpcodeClass implementation for etable.OpcodeConfig interface.
func (p *ConstConfig) OpcodeClass() specs.OpcodeClassPlain {
	return specs.PlainClass(specs.ConstClass)
}

// Assign implementation for etable.OpcodeConfig interface.
func (p *ConstConfig) Assign(ctx *etable.Context, _ *etable.StepStatus,
	entry *specs.EventTableEntryWithMemoryInfo) error {
	var (
		step     = etable.Expect[*specs.Const](entry)
		accesses = etable.ExpectAccesses(entry, 1)
	)
	//
	if err := p.isI32.Assign(ctx, step.Vtype.IsI32()); err != nil {
		return err
	} else if err := p.value.Assign(ctx, step.Value); err != nil {
		return err
	}
	//
	return p.write.Assign(ctx, entry.Entry.Eid, accesses[0])
}

// SpDiff implementation for etable.OpcodeConfig interface.
func (p *ConstConfig) SpDiff() util.Option[circuit.Expr] {
	return util.Some(circuit.Neg(circuit.Const(1)))
}

// Mops implementation for etable.OpcodeConfig interface.
func (p *ConstConfig) Mops() util.Option[circuit.Expr] {
	return util.Some(circuit.Const(1))
}

// MemoryWritingOps implementation for etable.OpcodeConfig interface.
func (p *ConstConfig) MemoryWritingOps(*specs.EventTableEntry) uint32 { return 1 }

// MTableLookup implementation for etable.OpcodeConfig interface.
func (p *ConstConfig) MTableLookup(item int) util.Option[circuit.Expr] {
	return lookupSlot(item, p.write)
}
