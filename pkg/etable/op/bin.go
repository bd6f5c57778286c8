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
	"math/bits"

	"github.com/consensys/go-zkwasm/pkg/circuit"
	"github.com/consensys/go-zkwasm/pkg/etable"
	"github.com/consensys/go-zkwasm/pkg/specs"
	"github.com/consensys/go-zkwasm/pkg/util"
)

// BinConfigBuilder configures the unsigned binary arithmetic instructions.
type BinConfigBuilder struct{}

// BinConfig is the configuration of the binary arithmetic instructions.  The
// result is related to the operands as follows, where m is 2^32 or 2^64:
//
//	add:   lhs + rhs = res + overflow*m
//	sub:   rhs + res = lhs + overflow*m
//	mul:   lhs * rhs = res + aux1*m
//	div_u: lhs = rhs * res + aux1, rhs = aux1 + aux2 + 1
//	rem_u: lhs = rhs * aux1 + res, rhs = res + aux2 + 1
type BinConfig struct {
	etable.BaseConfig
	isI32    etable.BitCell
	isAdd    etable.BitCell
	isSub    etable.BitCell
	isMul    etable.BitCell
	isDivU   etable.BitCell
	isRemU   etable.BitCell
	overflow etable.BitCell
	lhs      etable.U64Cell
	rhs      etable.U64Cell
	res      etable.U64Cell
	aux1     etable.U64Cell
	aux2     etable.U64Cell
	readRhs  etable.MemoryTableLookupReadCell
	readLhs  etable.MemoryTableLookupReadCell
	write    etable.MemoryTableLookupWriteCell
}

// Configure implementation for etable.OpcodeConfigBuilder interface.
func (BinConfigBuilder) Configure(cs *circuit.ConstraintSystem, common *etable.CommonConfig,
	allocator *etable.CellAllocator, enable circuit.Expr) etable.OpcodeConfig {
	var (
		cb     = etable.NewConstraintBuilder()
		one    = circuit.Const(1)
		stack  = etable.LocationType(specs.Stack)
		p      = &BinConfig{}
		top    = circuit.Sum(common.Sp(), one)
		second = circuit.Sum(common.Sp(), circuit.Const(2))
	)
	//
	p.isI32 = allocator.AllocBitCell()
	p.isAdd = allocator.AllocBitCell()
	p.isSub = allocator.AllocBitCell()
	p.isMul = allocator.AllocBitCell()
	p.isDivU = allocator.AllocBitCell()
	p.isRemU = allocator.AllocBitCell()
	p.overflow = allocator.AllocBitCell()
	p.lhs = allocator.AllocU64Cell()
	p.rhs = allocator.AllocU64Cell()
	p.res = allocator.AllocU64Cell()
	p.aux1 = allocator.AllocU64Cell()
	p.aux2 = allocator.AllocU64Cell()
	p.readRhs = allocator.AllocMemoryTableLookupReadCell(cb, "bin read rhs", stack, top, p.isI32.Expr(),
		p.rhs.Expr(), one)
	p.readLhs = allocator.AllocMemoryTableLookupReadCell(cb, "bin read lhs", stack, second, p.isI32.Expr(),
		p.lhs.Expr(), one)
	p.write = allocator.AllocMemoryTableLookupWriteCell(cb, "bin write", stack, second, p.isI32.Expr(),
		p.res.Expr(), one)
	//
	var (
		lhs, rhs, res = p.lhs.Expr(), p.rhs.Expr(), p.res.Expr()
		aux1, aux2    = p.aux1.Expr(), p.aux2.Expr()
		m             = modulus(p.isI32)
	)
	//
	cb.Push("bin op select", oneHot(p.isAdd, p.isSub, p.isMul, p.isDivU, p.isRemU))
	cb.Push("bin i32",
		i32Only(p.isI32, p.lhs),
		i32Only(p.isI32, p.rhs),
		i32Only(p.isI32, p.res))
	cb.Push("bin add", circuit.Product(p.isAdd.Expr(),
		circuit.Sub(circuit.Sum(lhs, rhs), circuit.Sum(res, circuit.Product(p.overflow.Expr(), m)))))
	cb.Push("bin sub", circuit.Product(p.isSub.Expr(),
		circuit.Sub(circuit.Sum(rhs, res), circuit.Sum(lhs, circuit.Product(p.overflow.Expr(), m)))))
	cb.Push("bin mul", circuit.Product(p.isMul.Expr(),
		circuit.Sub(circuit.Product(lhs, rhs), circuit.Sum(res, circuit.Product(aux1, m)))))
	cb.Push("bin div_u",
		circuit.Product(p.isDivU.Expr(), circuit.Sub(lhs, circuit.Sum(circuit.Product(rhs, res), aux1))),
		circuit.Product(p.isDivU.Expr(), circuit.Sub(rhs, circuit.Sum(aux1, aux2, one))))
	cb.Push("bin rem_u",
		circuit.Product(p.isRemU.Expr(), circuit.Sub(lhs, circuit.Sum(circuit.Product(rhs, aux1), res))),
		circuit.Product(p.isRemU.Expr(), circuit.Sub(rhs, circuit.Sum(res, aux2, one))))
	cb.Finalize(cs, enable)
	//
	return p
}

// Opcode implementation for etable.OpcodeConfig interface.
func (p *BinConfig) Opcode(*etable.CommonConfig) circuit.Expr {
	op := selector(p.isAdd, p.isSub, p.isMul, p.isDivU, p.isRemU)
	//
	return etable.EncodeOpcode(p.OpcodeClass(), op, etable.VarType(p.isI32.Expr()), circuit.Const(0))
}

// OpcodeClass implementation for etable.OpcodeConfig interface.
func (p *BinConfig) OpcodeClass() specs.OpcodeClassPlain {
	return specs.PlainClass(specs.BinClass)
}

// Assign implementation for etable.OpcodeConfig interface.
func (p *BinConfig) Assign(ctx *etable.Context, _ *etable.StepStatus,
	entry *specs.EventTableEntryWithMemoryInfo) error {
	var (
		step       = etable.Expect[*specs.Bin](entry)
		accesses   = etable.ExpectAccesses(entry, 3)
		eid        = entry.Entry.Eid
		lhs, rhs   = step.Left, step.Right
		aux1, aux2 uint64
		overflow   bool
		opbits     = []etable.BitCell{p.isAdd, p.isSub, p.isMul, p.isDivU, p.isRemU}
	)
	//
	if int(step.Op) >= len(opbits) {
		panic(fmt.Sprintf("unknown binary operator %s", step.Op))
	}
	//
	switch step.Op {
	case specs.Add:
		if step.Vtype.IsI32() {
			overflow = lhs+rhs >= 1<<32
		} else {
			_, carry := bits.Add64(lhs, rhs, 0)
			overflow = carry != 0
		}
	case specs.Sub:
		overflow = lhs < rhs
	case specs.Mul:
		if step.Vtype.IsI32() {
			aux1 = (lhs * rhs) >> 32
		} else {
			aux1, _ = bits.Mul64(lhs, rhs)
		}
	case specs.DivU, specs.RemU:
		if rhs == 0 {
			return fmt.Errorf("%s by zero", step.Op)
		}
		//
		aux1, aux2 = lhs%rhs, rhs-lhs%rhs-1
		//
		if step.Op == specs.RemU {
			aux1 = lhs / rhs
		}
	}
	//
	return etable.AssignAll(
		func() error { return p.isI32.Assign(ctx, step.Vtype.IsI32()) },
		func() error { return opbits[step.Op].Assign(ctx, true) },
		func() error { return p.overflow.Assign(ctx, overflow) },
		func() error { return p.lhs.Assign(ctx, lhs) },
		func() error { return p.rhs.Assign(ctx, rhs) },
		func() error { return p.res.Assign(ctx, step.Value) },
		func() error { return p.aux1.Assign(ctx, aux1) },
		func() error { return p.aux2.Assign(ctx, aux2) },
		func() error { return p.readRhs.Assign(ctx, eid, accesses[0]) },
		func() error { return p.readLhs.Assign(ctx, eid, accesses[1]) },
		func() error { return p.write.Assign(ctx, eid, accesses[2]) },
	)
}

// SpDiff implementation for etable.OpcodeConfig interface.
func (p *BinConfig) SpDiff() util.Option[circuit.Expr] {
	return util.Some(circuit.Const(1))
}

// Mops implementation for etable.OpcodeConfig interface.
func (p *BinConfig) Mops() util.Option[circuit.Expr] {
	return util.Some(circuit.Const(1))
}

// MemoryWritingOps implementation for etable.OpcodeConfig interface.
func (p *BinConfig) MemoryWritingOps(*specs.EventTableEntry) uint32 { return 1 }

// MTableLookup implementation for etable.OpcodeConfig interface.
func (p *BinConfig) MTableLookup(item int) util.Option[circuit.Expr] {
	return lookupSlot(item, p.readRhs, p.readLhs, p.write)
}
