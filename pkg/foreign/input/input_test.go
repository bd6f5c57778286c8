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
package input_test

import (
	"testing"

	"github.com/consensys/go-zkwasm/pkg/circuit"
	"github.com/consensys/go-zkwasm/pkg/etable"
	"github.com/consensys/go-zkwasm/pkg/etable/op"
	"github.com/consensys/go-zkwasm/pkg/foreign/input"
	"github.com/consensys/go-zkwasm/pkg/specs"
	"github.com/consensys/go-zkwasm/pkg/util/field"
	"github.com/consensys/go-zkwasm/pkg/zkwasm"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	i32 = specs.I32
	i64 = specs.I64
)

func TestEncode(t *testing.T) {
	assert.Equal(t, uint256.NewInt(7), input.Encode(0, 7))
	assert.Equal(t, "0x2000000000000002a", input.Encode(2, 42).Hex())
	assert.Equal(t, "0x1ffffffffffffffff", input.Encode(1, 1<<64-1).Hex())
}

func TestTable(t *testing.T) {
	table := input.Table([]uint64{5, 6})
	//
	require.Len(t, table, 2)
	assert.Equal(t, field.Uint64(5), table[0])
	assert.Equal(t, field.Uint256(input.Encode(1, 6)), table[1])
	assert.Empty(t, input.Table(nil))
}

// read constructs a trace which pushes the flag, calls the input function and
// then drops its result.
func read(flags ...uint64) *specs.Trace {
	var (
		trace = &specs.Trace{}
		sp    = uint32(100)
	)
	//
	for i, flag := range flags {
		ret := uint64(i + 10)
		steps := []specs.StepInfo{
			&specs.Const{Vtype: i32, Value: flag},
			&specs.CallHost{Plugin: specs.HostInput, Function: "wasm_input",
				Signature: specs.Signature{Params: []specs.VarType{i32}, ReturnType: &i64},
				Args:      []uint64{flag}, RetVal: &ret},
			&specs.Drop{},
		}
		//
		for j, step := range steps {
			eid := uint32(len(trace.Entries) + 1)
			trace.Entries = append(trace.Entries, specs.EventTableEntry{
				Eid: eid, Fid: 1, Iid: uint16(len(trace.Entries)), Sp: sp, StepInfo: step})
			// const pushes and drop pops
			switch j {
			case 0:
				sp--
			case 2:
				sp++
			}
		}
		//
		if flag != 0 {
			trace.PublicInputs = append(trace.PublicInputs, ret)
		}
	}
	//
	return trace
}

func newCircuit() *zkwasm.Circuit {
	builders := []etable.OpcodeConfigBuilder{op.ConstConfigBuilder{}, op.DropConfigBuilder{},
		input.NewConfigBuilder(0)}
	//
	return zkwasm.NewCircuit(zkwasm.Params{MaxSteps: 16, Parallelism: 1}, builders)
}

func TestInput_Valid(t *testing.T) {
	for _, flags := range [][]uint64{{1}, {0}, {7}, {1, 0, 7}, {0, 0}} {
		c := newCircuit()
		asg, err := c.Assign(read(flags...))
		//
		require.NoError(t, err)
		assert.Empty(t, c.Check(asg), "%v", flags)
	}
}

func TestInput_FlagMismatch(t *testing.T) {
	var (
		c      = newCircuit()
		common = c.EventTable().Common()
	)
	//
	asg, err := c.Assign(read(1))
	require.NoError(t, err)
	// Clear the public bit of the input step (the first bit cell allocated)
	require.NoError(t, asg.AssignAdvice(common.SharedBits, etable.StepSize+etable.BitMax, field.Uint64(0)))
	//
	var handles []string
	//
	for _, f := range c.Check(asg) {
		if g, ok := f.(*circuit.GateFailure); ok {
			handles = append(handles, g.Handle)
		}
	}
	//
	assert.Contains(t, handles, "input is public")
}

func TestInput_Signature(t *testing.T) {
	var (
		cs    = circuit.NewConstraintSystem()
		table = etable.Configure(cs, 1, []etable.OpcodeConfigBuilder{input.NewConfigBuilder(0)})
		asg   = circuit.NewAssignment(cs, table.Height())
		ret   = uint64(1)
		bad   = &specs.CallHost{Plugin: specs.HostInput, Args: []uint64{1}, RetVal: &ret}
	)
	//
	entry := &specs.EventTableEntryWithMemoryInfo{Entry: specs.EventTableEntry{Eid: 1, StepInfo: bad},
		MemoryRWEntries: make([]specs.MemoryRWEntry, 2)}
	assign := func() { _ = table.Configs()[0].Assign(etable.NewContext(asg, 0), &etable.StepStatus{}, entry) }
	// i64 argument
	bad.Signature = specs.Signature{Params: []specs.VarType{i64}, ReturnType: &i64}
	assert.Panics(t, assign)
	// void return
	bad.Signature = specs.Signature{Params: []specs.VarType{i32}}
	assert.Panics(t, assign)
}

func TestInput_IsHostPublicInput(t *testing.T) {
	var (
		cs     = circuit.NewConstraintSystem()
		table  = etable.Configure(cs, 1, []etable.OpcodeConfigBuilder{input.NewConfigBuilder(3)})
		config = table.Configs()[0]
		public = specs.EventTableEntry{StepInfo: &specs.CallHost{Args: []uint64{1}}}
		hidden = specs.EventTableEntry{StepInfo: &specs.CallHost{Args: []uint64{0}}}
	)
	//
	assert.Equal(t, specs.ForeignClass(3), config.OpcodeClass())
	assert.True(t, config.IsHostPublicInput(&public))
	assert.False(t, config.IsHostPublicInput(&hidden))
	assert.Equal(t, uint32(1), config.MemoryWritingOps(&public))
}
