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
	"github.com/consensys/go-zkwasm/pkg/util/field"
)

// RelConfigBuilder configures the unsigned comparison instructions.
type RelConfigBuilder struct{}

// RelConfig is the configuration of the comparison instructions.  The operands
// are ordered by a "less than" bit lt, together with their difference diff:
//
//	lt = 1: rhs - lhs - 1 = diff
//	lt = 0: lhs - rhs = diff
//
// The "equal" bit eq holds only when lt is unset and diff is zero.
type RelConfig struct {
	etable.BaseConfig
	isI32   etable.BitCell
	opbits  [6]etable.BitCell
	lt      etable.BitCell
	eq      etable.BitCell
	res     etable.BitCell
	lhs     etable.U64Cell
	rhs     etable.U64Cell
	diff    etable.U64Cell
	diffInv etable.Cell
	readRhs etable.MemoryTableLookupReadCell
	readLhs etable.MemoryTableLookupReadCell
	write   etable.MemoryTableLookupWriteCell
}

// Configure implementation for etable.OpcodeConfigBuilder interface.
func (RelConfigBuilder) Configure(cs *circuit.ConstraintSystem, common *etable.CommonConfig,
	allocator *etable.CellAllocator, enable circuit.Expr) etable.OpcodeConfig {
	var (
		cb    = etable.NewConstraintBuilder()
		one   = circuit.Const(1)
		stack = etable.LocationType(specs.Stack)
		p     = &RelConfig{}
	)
	//
	p.isI32 = allocator.AllocBitCell()
	for i := range p.opbits {
		p.opbits[i] = allocator.AllocBitCell()
	}
	//
	p.lt = allocator.AllocBitCell()
	p.eq = allocator.AllocBitCell()
	p.res = allocator.AllocBitCell()
	p.lhs = allocator.AllocU64Cell()
	p.rhs = allocator.AllocU64Cell()
	p.diff = allocator.AllocU64Cell()
	p.diffInv = allocator.AllocUnlimitedCell()
	p.readRhs = allocator.AllocMemoryTableLookupReadCell(cb, "rel read rhs", stack, circuit.Sum(common.Sp(), one),
		p.isI32.Expr(), p.rhs.Expr(), one)
	p.readLhs = allocator.AllocMemoryTableLookupReadCell(cb, "rel read lhs", stack,
		circuit.Sum(common.Sp(), circuit.Const(2)), p.isI32.Expr(), p.lhs.Expr(), one)
	p.write = allocator.AllocMemoryTableLookupWriteCell(cb, "rel write", stack,
		circuit.Sum(common.Sp(), circuit.Const(2)), one, p.res.Expr(), one)
	//
	var (
		lhs, rhs, diff = p.lhs.Expr(), p.rhs.Expr(), p.diff.Expr()
		lt, eq         = p.lt.Expr(), p.eq.Expr()
		gt             = circuit.Sub(one, circuit.Sum(lt, eq))
		// result of each operator, in order of specs.RelOp
		results = []circuit.Expr{eq, circuit.Sub(one, eq), lt, gt, circuit.Sum(lt, eq), circuit.Sub(one, lt)}
		res     []circuit.Expr
	)
	//
	for i, r := range results {
		res = append(res, circuit.Product(p.opbits[i].Expr(), r))
	}
	//
	cb.Push("rel op select", oneHot(p.opbits[:]...))
	cb.Push("rel i32", i32Only(p.isI32, p.lhs), i32Only(p.isI32, p.rhs))
	cb.Push("rel compare",
		circuit.Product(lt, circuit.Sub(circuit.Sub(rhs, lhs), circuit.Sum(diff, one))),
		circuit.Product(circuit.Sub(one, lt), circuit.Sub(circuit.Sub(lhs, rhs), diff)))
	cb.Push("rel equal",
		circuit.Product(eq, lt),
		circuit.Product(eq, diff),
		circuit.Product(circuit.Sub(one, lt),
			circuit.Sub(circuit.Sub(one, eq), circuit.Product(diff, p.diffInv.Expr()))))
	cb.Push("rel result", circuit.Sub(p.res.Expr(), circuit.Sum(res...)))
	cb.Finalize(cs, enable)
	//
	return p
}

// Opcode implementation for etable.OpcodeConfig interface.
func (p *RelConfig) Opcode(*etable.CommonConfig) circuit.Expr {
	return etable.EncodeOpcode(p.OpcodeClass(), selector(p.opbits[:]...), etable.VarType(p.isI32.Expr()),
		circuit.Const(0))
}

// OpcodeClass implementation for etable.OpcodeConfig interface.
func (p *RelConfig) OpcodeClass() specs.OpcodeClassPlain {
	return specs.PlainClass(specs.RelClass)
}

// Assign implementation for etable.OpcodeConfig interface.
func (p *RelConfig) Assign(ctx *etable.Context, _ *etable.StepStatus,
	entry *specs.EventTableEntryWithMemoryInfo) error {
	var (
		step     = etable.Expect[*specs.Rel](entry)
		accesses = etable.ExpectAccesses(entry, 3)
		eid      = entry.Entry.Eid
		lhs, rhs = step.Left, step.Right
		lt       = lhs < rhs
		diff     = lhs - rhs
		inv      field.Element
	)
	//
	if int(step.Op) >= len(p.opbits) {
		panic(fmt.Sprintf("unknown relational operator %s", step.Op))
	}
	//
	if lt {
		diff = rhs - lhs - 1
	} else if diff != 0 {
		d := field.Uint64(diff)
		inv.Inverse(&d)
	}
	//
	return etable.AssignAll(
		func() error { return p.isI32.Assign(ctx, step.Vtype.IsI32()) },
		func() error { return p.opbits[step.Op].Assign(ctx, true) },
		func() error { return p.lt.Assign(ctx, lt) },
		func() error { return p.eq.Assign(ctx, lhs == rhs) },
		func() error { return p.res.Assign(ctx, step.Value) },
		func() error { return p.lhs.Assign(ctx, lhs) },
		func() error { return p.rhs.Assign(ctx, rhs) },
		func() error { return p.diff.Assign(ctx, diff) },
		func() error { return p.diffInv.Assign(ctx, inv) },
		func() error { return p.readRhs.Assign(ctx, eid, accesses[0]) },
		func() error { return p.readLhs.Assign(ctx, eid, accesses[1]) },
		func() error { return p.write.Assign(ctx, eid, accesses[2]) },
	)
}

// SpDiff implementation for etable.OpcodeConfig interface.
func (p *RelConfig) SpDiff() util.Option[circuit.Expr] {
	return util.Some(circuit.Const(1))
}

// Mops implementation for etable.OpcodeConfig interface.
func (p *RelConfig) Mops() util.Option[circuit.Expr] {
	return util.Some(circuit.Const(1))
}

// MemoryWritingOps implementation for etable.OpcodeConfig interface.
func (p *RelConfig) MemoryWritingOps(*specs.EventTableEntry) uint32 { return 1 }

// MTableLookup implementation for etable.OpcodeConfig interface.
func (p *RelConfig) MTableLookup(item int) util.Option[circuit.Expr] {
	return lookupSlot(item, p.readRhs, p.readLhs, p.write)
}
