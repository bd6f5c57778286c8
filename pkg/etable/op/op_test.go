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
package op_test

import (
	"fmt"
	"testing"

	"github.com/consensys/go-zkwasm/pkg/circuit"
	"github.com/consensys/go-zkwasm/pkg/etable"
	"github.com/consensys/go-zkwasm/pkg/etable/op"
	"github.com/consensys/go-zkwasm/pkg/specs"
	"github.com/consensys/go-zkwasm/pkg/zkwasm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const block = uint64(0x1122334455667788)

var (
	i32 = specs.I32
	i64 = specs.I64
)

// straight constructs a trace of straight-line code starting from a stack
// pointer of 100.
func straight(steps ...specs.StepInfo) *specs.Trace {
	var (
		trace = &specs.Trace{}
		sp    = uint32(100)
	)
	//
	for i, step := range steps {
		trace.Entries = append(trace.Entries, specs.EventTableEntry{
			Eid: uint32(i + 1), Fid: 1, Iid: uint16(i), Sp: sp, StepInfo: step})
		//
		switch step.(type) {
		case *specs.Const, *specs.LocalGet:
			sp--
		case *specs.Bin, *specs.Rel, *specs.Drop, *specs.LocalSet:
			sp++
		}
	}
	//
	return trace
}

// check a trace against the default circuit, returning the handles of all
// failing constraints.
func check(t *testing.T, trace *specs.Trace) []string {
	c := zkwasm.NewCircuit(zkwasm.Params{MaxSteps: 8, Parallelism: 2}, zkwasm.DefaultOpcodes())
	asg, err := c.Assign(trace)
	require.NoError(t, err)
	//
	var handles []string
	//
	for _, f := range c.Check(asg) {
		switch f := f.(type) {
		case *circuit.GateFailure:
			handles = append(handles, f.Handle)
		case *circuit.RangeFailure:
			handles = append(handles, f.Handle)
		case *circuit.LookupFailure:
			handles = append(handles, f.Handle)
		}
	}
	//
	return handles
}

// assignSingle assigns a single entry directly through its configuration.
func assignSingle(builder etable.OpcodeConfigBuilder, entry specs.EventTableEntry,
	accesses ...specs.MemoryRWEntry) error {
	cs := circuit.NewConstraintSystem()
	table := etable.Configure(cs, 1, []etable.OpcodeConfigBuilder{builder})
	asg := circuit.NewAssignment(cs, table.Height())
	row := &specs.EventTableEntryWithMemoryInfo{Entry: entry, MemoryRWEntries: accesses}
	status := &etable.StepStatus{Current: row}
	//
	return table.Configs()[0].Assign(etable.NewContext(asg, 0), status, row)
}

func binary(vtype specs.VarType, lhs, rhs uint64, step specs.StepInfo) *specs.Trace {
	return straight(&specs.Const{Vtype: vtype, Value: lhs}, &specs.Const{Vtype: vtype, Value: rhs}, step)
}

func TestBin(t *testing.T) {
	tests := []struct {
		op       specs.BinOp
		vtype    specs.VarType
		lhs, rhs uint64
		res      uint64
	}{
		{specs.Add, i64, 7, 5, 12},
		{specs.Add, i64, 1<<64 - 1, 1, 0},
		{specs.Add, i32, 0xffffffff, 2, 1},
		{specs.Sub, i64, 7, 5, 2},
		{specs.Sub, i64, 3, 5, 1<<64 - 2},
		{specs.Sub, i32, 3, 5, 1<<32 - 2},
		{specs.Mul, i64, 6, 7, 42},
		{specs.Mul, i64, 1 << 63, 4, 0},
		{specs.Mul, i32, 0x10000, 0x10001, 0x10000},
		{specs.DivU, i64, 17, 5, 3},
		{specs.DivU, i32, 0xffffffff, 2, 0x7fffffff},
		{specs.DivU, i64, 4, 5, 0},
		{specs.RemU, i64, 17, 5, 2},
		{specs.RemU, i32, 10, 10, 0},
	}
	//
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_%s_%d_%d", tt.vtype, tt.op, tt.lhs, tt.rhs), func(t *testing.T) {
			step := &specs.Bin{Op: tt.op, Vtype: tt.vtype, Left: tt.lhs, Right: tt.rhs, Value: tt.res}
			assert.Empty(t, check(t, binary(tt.vtype, tt.lhs, tt.rhs, step)))
			// An incorrect result is rejected.
			step.Value = tt.res + 1
			assert.Contains(t, check(t, binary(tt.vtype, tt.lhs, tt.rhs, step)), "bin "+tt.op.String())
		})
	}
}

func TestBin_I32Overflow(t *testing.T) {
	// 64bit result for an i32 operation
	step := &specs.Bin{Op: specs.Sub, Vtype: i32, Left: 3, Right: 5, Value: 1<<64 - 2}
	//
	assert.Contains(t, check(t, binary(i32, 3, 5, step)), "bin i32")
}

func TestRel(t *testing.T) {
	tests := []struct {
		op       specs.RelOp
		lhs, rhs uint64
		res      bool
	}{
		{specs.Eq, 5, 5, true},
		{specs.Eq, 5, 6, false},
		{specs.Ne, 5, 5, false},
		{specs.Ne, 6, 5, true},
		{specs.LtU, 3, 5, true},
		{specs.LtU, 5, 5, false},
		{specs.GtU, 3, 5, false},
		{specs.GtU, 1<<64 - 1, 0, true},
		{specs.LeU, 5, 5, true},
		{specs.LeU, 6, 5, false},
		{specs.GeU, 3, 5, false},
		{specs.GeU, 5, 5, true},
	}
	//
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_%d_%d", tt.op, tt.lhs, tt.rhs), func(t *testing.T) {
			step := &specs.Rel{Op: tt.op, Vtype: i64, Left: tt.lhs, Right: tt.rhs, Value: tt.res}
			assert.Empty(t, check(t, binary(i64, tt.lhs, tt.rhs, step)))
			// The opposite result is rejected.
			step.Value = !tt.res
			assert.Contains(t, check(t, binary(i64, tt.lhs, tt.rhs, step)), "rel result")
		})
	}
}

func TestConst_I32Range(t *testing.T) {
	assert.Equal(t, []string{"const i32"}, check(t, straight(&specs.Const{Vtype: i32, Value: 1 << 32})))
}

func TestLocals(t *testing.T) {
	trace := straight(
		&specs.Const{Vtype: i32, Value: 3},
		&specs.Const{Vtype: i32, Value: 4},
		&specs.LocalGet{Vtype: i32, Depth: 2, Value: 3},
		&specs.LocalTee{Vtype: i32, Depth: 2, Value: 3},
		&specs.LocalSet{Vtype: i32, Depth: 1, Value: 3},
		&specs.Drop{},
	)
	//
	assert.Empty(t, check(t, trace))
}

func TestLoad(t *testing.T) {
	tests := []struct {
		vtype       specs.VarType
		size        uint8
		raw, offset uint32
		value       uint64
	}{
		{i64, 1, 16, 0, 0x88},
		{i64, 1, 16, 7, 0x11},
		{i64, 2, 18, 3, 0x2233},
		{i64, 4, 20, 0, 0x11223344},
		{i64, 8, 10, 6, block},
		{i32, 4, 17, 1, 0x33445566},
		{i32, 2, 22, 0, 0x1122},
	}
	//
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_%d_%d_%d", tt.vtype, tt.size, tt.raw, tt.offset), func(t *testing.T) {
			step := &specs.Load{Vtype: tt.vtype, Size: tt.size, Offset: tt.offset, RawAddress: tt.raw,
				Value: tt.value, BlockValue: block}
			trace := straight(&specs.Const{Vtype: i32, Value: uint64(tt.raw)}, step)
			trace.MemoryInit = []specs.MemoryTableEntry{
				{Offset: 2, Ltype: specs.Heap, Atype: specs.Init, Vtype: i64, Value: block},
			}
			//
			assert.Empty(t, check(t, trace))
			// An incorrect value is rejected.
			step.Value ^= 1
			assert.Contains(t, check(t, trace), "load value")
		})
	}
}

func TestLoad_CrossingBlock(t *testing.T) {
	var (
		step  = &specs.Load{Vtype: i64, Size: 4, Offset: 0, RawAddress: 22, Value: 0, BlockValue: block}
		entry = specs.EventTableEntry{Eid: 1, Sp: 100, StepInfo: step}
	)
	//
	assert.Panics(t, func() {
		_ = assignSingle(op.LoadConfigBuilder{}, entry, make([]specs.MemoryRWEntry, 3)...)
	})
}

func TestShapeMismatch(t *testing.T) {
	var (
		drop   = specs.EventTableEntry{Eid: 1, Sp: 100, StepInfo: &specs.Drop{}}
		brIf   = &specs.BrIf{Keep: []specs.VarType{i32, i32}, KeepValues: []uint64{1, 2}}
		brIfs  = specs.EventTableEntry{Eid: 1, Sp: 100, StepInfo: brIf}
		access = specs.MemoryRWEntry{}
	)
	// wrong step kind
	assert.Panics(t, func() { _ = assignSingle(op.ConstConfigBuilder{}, drop, access) })
	// wrong number of memory accesses
	assert.Panics(t, func() { _ = assignSingle(op.DropConfigBuilder{}, drop, access) })
	// too many kept values
	assert.Panics(t, func() { _ = assignSingle(op.BrIfConfigBuilder{}, brIfs, access) })
	// well-formed drop
	assert.NoError(t, assignSingle(op.DropConfigBuilder{}, drop))
}

func TestUsage(t *testing.T) {
	c := zkwasm.NewCircuit(zkwasm.Params{MaxSteps: 1, Parallelism: 1}, zkwasm.DefaultOpcodes())
	//
	for i, config := range c.EventTable().Configs() {
		usage := c.EventTable().Usage()[i]
		//
		assert.LessOrEqual(t, usage.Bits, etable.StepSize-etable.BitMax, "%s", config.OpcodeClass())
		assert.LessOrEqual(t, usage.MemoryLookup, etable.MTableLookupSlots, "%s", config.OpcodeClass())
	}
}
