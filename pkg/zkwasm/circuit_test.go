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
package zkwasm

import (
	"os"
	"path"
	"testing"

	"github.com/consensys/go-zkwasm/pkg/circuit"
	"github.com/consensys/go-zkwasm/pkg/etable"
	"github.com/consensys/go-zkwasm/pkg/specs"
	"github.com/consensys/go-zkwasm/pkg/util/field"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	i32 = specs.I32
	i64 = specs.I64
)

func testParams() Params {
	return Params{MaxSteps: 16, Parallelism: 4}
}

// straight constructs a trace of straight-line code within a single function,
// starting from a stack pointer of 100.
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

func hostInput(arg uint64, ret uint64) *specs.CallHost {
	return &specs.CallHost{Plugin: specs.HostInput, Function: "wasm_input",
		Signature: specs.Signature{Params: []specs.VarType{i32}, ReturnType: &i64}, Args: []uint64{arg},
		RetVal: &ret}
}

func failedHandles(failures []circuit.Failure) []string {
	var handles []string
	//
	for _, f := range failures {
		switch f := f.(type) {
		case *circuit.GateFailure:
			handles = append(handles, f.Handle)
		case *circuit.RangeFailure:
			handles = append(handles, f.Handle)
		case *circuit.LookupFailure:
			handles = append(handles, f.Handle)
		case *circuit.InternalFailure:
			handles = append(handles, f.Handle)
		}
	}
	//
	return handles
}

func check(t *testing.T, trace *specs.Trace) []string {
	c := NewCircuit(testParams(), DefaultOpcodes())
	asg, err := c.Assign(trace)
	require.NoError(t, err)
	//
	return failedHandles(c.Check(asg))
}

func TestCircuit_Arithmetic(t *testing.T) {
	trace := straight(
		&specs.Const{Vtype: i64, Value: 7},
		&specs.Const{Vtype: i64, Value: 5},
		&specs.Bin{Op: specs.Add, Vtype: i64, Left: 7, Right: 5, Value: 12},
		&specs.Const{Vtype: i64, Value: 3},
		&specs.Rel{Op: specs.LtU, Vtype: i64, Left: 12, Right: 3, Value: false},
		&specs.Drop{},
	)
	//
	assert.Empty(t, check(t, trace))
}

func TestCircuit_WrongResult(t *testing.T) {
	trace := straight(
		&specs.Const{Vtype: i64, Value: 7},
		&specs.Const{Vtype: i64, Value: 5},
		&specs.Bin{Op: specs.Add, Vtype: i64, Left: 7, Right: 5, Value: 13},
	)
	//
	assert.Equal(t, []string{"bin add"}, check(t, trace))
}

func TestCircuit_WrongOperand(t *testing.T) {
	trace := straight(
		&specs.Const{Vtype: i64, Value: 7},
		&specs.Const{Vtype: i64, Value: 5},
		&specs.Bin{Op: specs.Add, Vtype: i64, Left: 7, Right: 5, Value: 12},
	)
	// The memory table records a different value pushed by the second step.
	trace.Entries[1].StepInfo = &specs.Const{Vtype: i64, Value: 6}
	c := NewCircuit(testParams(), DefaultOpcodes())
	asg, err := c.Assign(trace)
	require.NoError(t, err)
	//
	assert.Equal(t, []string{"mtable lookup 0"}, failedHandles(c.Check(asg)))
}

func TestCircuit_PublicInput(t *testing.T) {
	trace := straight(
		&specs.Const{Vtype: i32, Value: 5},
		hostInput(5, 42),
		&specs.Drop{},
		&specs.Const{Vtype: i32, Value: 0},
		hostInput(0, 99),
		&specs.Drop{},
	)
	trace.PublicInputs = []uint64{42}
	//
	c := NewCircuit(testParams(), DefaultOpcodes())
	asg, err := c.Assign(trace)
	require.NoError(t, err)
	assert.Empty(t, c.Check(asg))
	// The input index advances only after the public read.
	state := c.EventTable().Common().State
	//
	for step, want := range []uint64{0, 0, 1, 1, 1, 1} {
		got, err := asg.Get(state, step*etable.StepSize+etable.StateInputIndex)
		require.NoError(t, err)
		assert.Equal(t, field.Uint64(want), got, "step %d", step)
	}
}

func TestCircuit_PublicInputMismatch(t *testing.T) {
	trace := straight(
		&specs.Const{Vtype: i32, Value: 5},
		hostInput(5, 42),
	)
	trace.PublicInputs = []uint64{43}
	//
	assert.Equal(t, []string{"public input"}, check(t, trace))
}

func TestCircuit_PrivateInput(t *testing.T) {
	trace := straight(
		&specs.Const{Vtype: i32, Value: 0},
		hostInput(0, 42),
	)
	// Private inputs are not looked up.
	assert.Empty(t, check(t, trace))
}

func TestCircuit_ControlFlow(t *testing.T) {
	var (
		block = uint64(0x1122334455667788)
		trace = &specs.Trace{
			MemoryInit: []specs.MemoryTableEntry{
				{Offset: 101, Ltype: specs.Stack, Atype: specs.Init, Vtype: i64, Value: 10},
				{Offset: 102, Ltype: specs.Stack, Atype: specs.Init, Vtype: i32, Value: 18},
				{Offset: 2, Ltype: specs.Heap, Atype: specs.Init, Vtype: i64, Value: block},
			},
			JumpTable: []specs.JumpTableEntry{{Eid: 0, LastJumpEid: 0, Fid: 2, Iid: 9}},
		}
		steps = []struct {
			fid, iid uint16
			sp       uint32
			step     specs.StepInfo
		}{
			{1, 0, 100, &specs.LocalGet{Vtype: i64, Depth: 1, Value: 10}},
			{1, 1, 99, &specs.LocalTee{Vtype: i64, Depth: 2, Value: 10}},
			{1, 2, 99, &specs.LocalSet{Vtype: i64, Depth: 1, Value: 10}},
			{1, 3, 100, &specs.LocalGet{Vtype: i32, Depth: 2, Value: 18}},
			{1, 4, 99, &specs.Load{Vtype: i64, Size: 2, Offset: 3, RawAddress: 18, Value: 0x2233, BlockValue: block}},
			{1, 5, 99, &specs.Const{Vtype: i32, Value: 1}},
			{1, 6, 98, &specs.BrIf{Condition: 1, DstPc: 20, Drop: 1, Keep: []specs.VarType{i64},
				KeepValues: []uint64{0x2233}}},
			{1, 20, 100, &specs.Return{Keep: []specs.VarType{i64}, KeepValues: []uint64{0x2233},
				ReturnFid: 2, ReturnIid: 9}},
			{2, 9, 100, &specs.Drop{}},
			{2, 10, 101, &specs.Const{Vtype: i32, Value: 0}},
			{2, 11, 100, &specs.BrIf{Condition: 0, DstPc: 50}},
			{2, 12, 101, &specs.Drop{}},
		}
	)
	//
	for i, s := range steps {
		trace.Entries = append(trace.Entries, specs.EventTableEntry{Eid: uint32(i + 1), Fid: s.fid, Iid: s.iid,
			Sp: s.sp, StepInfo: s.step})
	}
	//
	assert.Empty(t, check(t, trace))
	// Returning to the wrong instruction is caught by the jump table.
	trace.Entries[8].Iid = 8
	trace.Entries[9].Iid = 9
	trace.Entries[10].Iid = 10
	trace.Entries[11].Iid = 11
	trace.Entries[7].StepInfo.(*specs.Return).ReturnIid = 8
	assert.Equal(t, []string{"jtable lookup"}, check(t, trace))
}

func TestCircuit_AssignErrors(t *testing.T) {
	c := NewCircuit(Params{MaxSteps: 2, Parallelism: 1}, DefaultOpcodes())
	// uninitialised read
	_, err := c.Assign(straight(&specs.Drop{}, &specs.LocalGet{Vtype: i64, Depth: 3, Value: 1}))
	assert.Error(t, err)
	// capacity exceeded
	_, err = c.Assign(straight(&specs.Drop{}, &specs.Drop{}, &specs.Drop{}))
	assert.Error(t, err)
	// division by zero
	c = NewCircuit(testParams(), DefaultOpcodes())
	_, err = c.Assign(straight(
		&specs.Const{Vtype: i64, Value: 7},
		&specs.Const{Vtype: i64, Value: 0},
		&specs.Bin{Op: specs.DivU, Vtype: i64, Left: 7, Right: 0},
	))
	assert.Error(t, err)
}

func TestCircuit_UnsupportedOpcode(t *testing.T) {
	c := NewCircuit(testParams(), DefaultOpcodes()[:3])
	_, err := c.Assign(straight(&specs.Drop{}))
	//
	assert.ErrorIs(t, err, etable.ErrUnsupportedOpcode)
}

func TestDefaultOpcodes(t *testing.T) {
	var (
		classes  = make(map[specs.OpcodeClassPlain]bool)
		builders = DefaultOpcodes()
		c        = NewCircuit(testParams(), builders)
	)
	//
	require.LessOrEqual(t, len(builders), etable.MaxOpcodes)
	//
	for _, config := range c.EventTable().Configs() {
		assert.False(t, classes[config.OpcodeClass()], "duplicate class %s", config.OpcodeClass())
		classes[config.OpcodeClass()] = true
	}
	//
	assert.True(t, classes[specs.ForeignClass(0)])
	assert.Len(t, c.EventTable().Usage(), len(builders))
}

func TestDefaultParams(t *testing.T) {
	params := DefaultParams()
	assert.Positive(t, params.MaxSteps)
	assert.Positive(t, params.Parallelism)
}

// TestDir determines the (relative) location of the test directory.
const TestDir = "../../testdata/zkwasm"

func TestCircuit_TraceFiles(t *testing.T) {
	for _, name := range []string{"add_input", "load"} {
		t.Run(name, func(t *testing.T) {
			bytes, err := os.ReadFile(path.Join(TestDir, name+".json"))
			require.NoError(t, err)
			//
			trace, err := specs.ReadTrace(bytes)
			require.NoError(t, err)
			//
			assert.Empty(t, check(t, trace))
		})
	}
}
