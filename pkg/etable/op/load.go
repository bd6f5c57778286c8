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

// Permitted access sizes (in bytes), in order of the size bits.
var loadSizes = [4]uint{1, 2, 4, 8}

// LoadConfigBuilder configures the unsigned load instructions.
type LoadConfigBuilder struct{}

// LoadConfig is the configuration of the unsigned load instructions.  Linear
// memory is accessed through the memory table as 8-byte blocks, hence the
// effective address is split into a block index and an inner offset selected
// by one-hot bits.  The loaded value is assembled from the bytes of the block.
type LoadConfig struct {
	etable.BaseConfig
	isI32      etable.BitCell
	sizeBits   [len(loadSizes)]etable.BitCell
	innerBits  [8]etable.BitCell
	rawAddress etable.U64Cell
	blockValue etable.U64Cell
	value      etable.U64Cell
	block      etable.Cell
	readAddr   etable.MemoryTableLookupReadCell
	readBlock  etable.MemoryTableLookupReadCell
	write      etable.MemoryTableLookupWriteCell
}

// Configure implementation for etable.OpcodeConfigBuilder interface.
func (LoadConfigBuilder) Configure(cs *circuit.ConstraintSystem, common *etable.CommonConfig,
	allocator *etable.CellAllocator, enable circuit.Expr) etable.OpcodeConfig {
	var (
		cb    = etable.NewConstraintBuilder()
		one   = circuit.Const(1)
		top   = circuit.Sum(common.Sp(), one)
		stack = etable.LocationType(specs.Stack)
		p     = &LoadConfig{}
	)
	//
	p.isI32 = allocator.AllocBitCell()
	for i := range p.sizeBits {
		p.sizeBits[i] = allocator.AllocBitCell()
	}
	//
	for i := range p.innerBits {
		p.innerBits[i] = allocator.AllocBitCell()
	}
	//
	p.rawAddress = allocator.AllocU64Cell()
	p.blockValue = allocator.AllocU64Cell()
	p.value = allocator.AllocU64Cell()
	p.block = allocator.AllocUnlimitedCell()
	p.readAddr = allocator.AllocMemoryTableLookupReadCell(cb, "load read address", stack, top, one,
		p.rawAddress.Expr(), one)
	p.readBlock = allocator.AllocMemoryTableLookupReadCell(cb, "load read block", etable.LocationType(specs.Heap),
		p.block.Expr(), circuit.Const(0), p.blockValue.Expr(), one)
	p.write = allocator.AllocMemoryTableLookupWriteCell(cb, "load write", stack, top, p.isI32.Expr(),
		p.value.Expr(), one)
	//
	var (
		crossing []circuit.Expr
		assembly []circuit.Expr
	)
	//
	for o, inner := range p.innerBits {
		for s, size := range p.sizeBits {
			selected := circuit.Product(inner.Expr(), size.Expr())
			//
			if uint(o)+loadSizes[s] > 8 {
				crossing = append(crossing, selected)
				continue
			}
			//
			bytes := make([]circuit.Expr, loadSizes[s])
			for j := range bytes {
				bytes[j] = circuit.ShiftLeft(p.blockValue.Byte(o+j), uint(8*j))
			}
			//
			assembly = append(assembly, circuit.Product(selected, circuit.Sum(bytes...)))
		}
	}
	//
	cb.Push("load size select", oneHot(p.sizeBits[:]...))
	cb.Push("load offset select", oneHot(p.innerBits[:]...))
	cb.Push("load i32",
		p.rawAddress.HighNibblesZero(8),
		i32Only(p.isI32, p.value),
		circuit.Product(p.isI32.Expr(), p.sizeBits[len(loadSizes)-1].Expr()))
	cb.Push("load within block", circuit.Sum(crossing...))
	cb.Push("load value", circuit.Sub(p.value.Expr(), circuit.Sum(assembly...)))
	cb.Finalize(cs, enable)
	//
	return p
}

// effective address expressed as 8*block + inner
func (p *LoadConfig) effectiveAddress() circuit.Expr {
	return circuit.Sum(circuit.Scale(p.block.Expr(), 8), selector(p.innerBits[:]...))
}

// Opcode implementation for etable.OpcodeConfig interface.
func (p *LoadConfig) Opcode(*etable.CommonConfig) circuit.Expr {
	var sizes = make([]circuit.Expr, len(loadSizes))
	//
	for i, size := range p.sizeBits {
		sizes[i] = circuit.Scale(size.Expr(), uint64(loadSizes[i]))
	}
	//
	offset := circuit.Sub(p.effectiveAddress(), p.rawAddress.Expr())
	//
	return etable.EncodeOpcode(p.OpcodeClass(), circuit.Sum(sizes...), etable.VarType(p.isI32.Expr()), offset)
}

// OpcodeClass implementation for etable.OpcodeConfig interface.
func (p *LoadConfig) OpcodeClass() specs.OpcodeClassPlain {
	return specs.PlainClass(specs.LoadClass)
}

// Assign implementation for etable.OpcodeConfig interface.
func (p *LoadConfig) Assign(ctx *etable.Context, _ *etable.StepStatus,
	entry *specs.EventTableEntryWithMemoryInfo) error {
	var (
		step     = etable.Expect[*specs.Load](entry)
		accesses = etable.ExpectAccesses(entry, 3)
		eid      = entry.Entry.Eid
		inner    = uint(step.InnerOffset())
		size     = -1
	)
	//
	for i, s := range loadSizes {
		if s == uint(step.Size) {
			size = i
		}
	}
	//
	switch {
	case size < 0:
		panic(fmt.Sprintf("load (eid %d) has invalid size %d", eid, step.Size))
	case inner+uint(step.Size) > 8:
		panic(fmt.Sprintf("load (eid %d) of %d bytes at offset %d crosses block boundary", eid, step.Size, inner))
	case step.Vtype.IsI32() && step.Size == 8:
		panic(fmt.Sprintf("load (eid %d) of 8 bytes into i32", eid))
	case step.EffectiveAddress() > math.MaxUint32:
		return fmt.Errorf("load address %d out of bounds", step.EffectiveAddress())
	}
	//
	return etable.AssignAll(
		func() error { return p.isI32.Assign(ctx, step.Vtype.IsI32()) },
		func() error { return p.sizeBits[size].Assign(ctx, true) },
		func() error { return p.innerBits[inner].Assign(ctx, true) },
		func() error { return p.rawAddress.Assign(ctx, uint64(step.RawAddress)) },
		func() error { return p.blockValue.Assign(ctx, step.BlockValue) },
		func() error { return p.value.Assign(ctx, step.Value) },
		func() error { return p.block.AssignUint64(ctx, uint64(step.Block())) },
		func() error { return p.readAddr.Assign(ctx, eid, accesses[0]) },
		func() error { return p.readBlock.Assign(ctx, eid, accesses[1]) },
		func() error { return p.write.Assign(ctx, eid, accesses[2]) },
	)
}

// Mops implementation for etable.OpcodeConfig interface.
func (p *LoadConfig) Mops() util.Option[circuit.Expr] {
	return util.Some(circuit.Const(1))
}

// MemoryWritingOps implementation for etable.OpcodeConfig interface.
func (p *LoadConfig) MemoryWritingOps(*specs.EventTableEntry) uint32 { return 1 }

// MTableLookup implementation for etable.OpcodeConfig interface.
func (p *LoadConfig) MTableLookup(item int) util.Option[circuit.Expr] {
	return lookupSlot(item, p.readAddr, p.readBlock, p.write)
}
