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
package etable

import (
	"testing"

	"github.com/consensys/go-zkwasm/pkg/circuit"
	"github.com/consensys/go-zkwasm/pkg/specs"
	"github.com/consensys/go-zkwasm/pkg/util/field"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nopConfig is an opcode configuration with no cells of its own, which accepts
// every default behaviour.
type nopConfig struct {
	BaseConfig
	class specs.OpcodeClassPlain
}

func (p *nopConfig) Configure(*circuit.ConstraintSystem, *CommonConfig, *CellAllocator, circuit.Expr) OpcodeConfig {
	return p
}

func (p *nopConfig) Opcode(*CommonConfig) circuit.Expr {
	zero := circuit.Const(0)
	return EncodeOpcode(p.class, zero, zero, zero)
}

func (p *nopConfig) OpcodeClass() specs.OpcodeClassPlain { return p.class }

func (p *nopConfig) Assign(*Context, *StepStatus, *specs.EventTableEntryWithMemoryInfo) error {
	return nil
}

func nopBuilders(classes ...specs.OpcodeClass) []OpcodeConfigBuilder {
	var builders []OpcodeConfigBuilder
	//
	for _, c := range classes {
		builders = append(builders, &nopConfig{class: specs.PlainClass(c)})
	}
	//
	return builders
}

func dropTrace(t *testing.T, n int) []specs.EventTableEntryWithMemoryInfo {
	entries := make([]specs.EventTableEntry, n)
	//
	for i := range entries {
		entries[i] = specs.EventTableEntry{Eid: uint32(i + 1), Fid: 1, Iid: uint16(i), Sp: 100,
			StepInfo: &specs.Drop{}}
	}
	//
	trace, err := specs.WithMemoryInfo(entries, nil)
	require.NoError(t, err)
	//
	return trace
}

func assignTable(t *testing.T, capacity uint, builders []OpcodeConfigBuilder,
	trace []specs.EventTableEntryWithMemoryInfo) (*circuit.ConstraintSystem, *circuit.Assignment, *EventTable) {
	cs := circuit.NewConstraintSystem()
	table := Configure(cs, capacity, builders)
	asg := circuit.NewAssignment(cs, table.Height())
	//
	require.NoError(t, table.Assign(asg, trace, 2))
	//
	for _, key := range specs.InstructionTableLookups(trace) {
		asg.AddToTable(InstructionTableKey, field.Uint256(key))
	}
	//
	return cs, asg, table
}

func TestEventTable_Valid(t *testing.T) {
	for _, n := range []int{1, 3, 8} {
		cs, asg, _ := assignTable(t, 8, nopBuilders(specs.ConstClass, specs.DropClass), dropTrace(t, n))
		assert.Empty(t, circuit.Check(cs, asg), "trace of %d steps", n)
	}
}

func TestEventTable_FallThrough(t *testing.T) {
	cs, asg, table := assignTable(t, 4, nopBuilders(specs.DropClass), dropTrace(t, 3))
	// Skip an instruction on the second step.
	require.NoError(t, asg.AssignAdvice(table.Common().State, StepSize+StateIid, field.Uint64(2)))
	//
	assert.Contains(t, failedHandles(circuit.Check(cs, asg)), "state transition")
}

func TestEventTable_ExecutionId(t *testing.T) {
	cs, asg, table := assignTable(t, 4, nopBuilders(specs.DropClass), dropTrace(t, 2))
	require.NoError(t, asg.AssignAdvice(table.Common().State, StateEid, field.Uint64(2)))
	//
	handles := failedHandles(circuit.Check(cs, asg))
	assert.Contains(t, handles, "first step")
	assert.Contains(t, handles, "state transition")
}

func TestEventTable_TwoOpcodeBits(t *testing.T) {
	cs, asg, table := assignTable(t, 4, nopBuilders(specs.DropClass, specs.ConstClass), dropTrace(t, 2))
	// Enable the const configuration as well as the drop configuration.
	require.NoError(t, asg.AssignAdvice(table.Common().OpcodeBits, 1, field.One()))
	//
	assert.Contains(t, failedHandles(circuit.Check(cs, asg)), "opcode dispatch")
}

func TestEventTable_UnusedOpcodeBit(t *testing.T) {
	cs, asg, table := assignTable(t, 4, nopBuilders(specs.DropClass), dropTrace(t, 2))
	// Move the final step onto a dispatch bit without a configuration.
	require.NoError(t, asg.AssignAdvice(table.Common().OpcodeBits, StepSize, field.Zero()))
	require.NoError(t, asg.AssignAdvice(table.Common().OpcodeBits, 2*StepSize-1, field.One()))
	//
	assert.Equal(t, []string{"opcode dispatch"}, failedHandles(circuit.Check(cs, asg)))
}

func TestEventTable_PaddingStep(t *testing.T) {
	cs, asg, table := assignTable(t, 2, nopBuilders(specs.DropClass), dropTrace(t, 2))
	state := table.Common().State
	// Claim a memory write which never happens.
	require.NoError(t, asg.AssignAdvice(state, StateRestMops, field.One()))
	require.NoError(t, asg.AssignAdvice(state, StepSize+StateRestMops, field.One()))
	require.Equal(t, []string{"last step"}, failedHandles(circuit.Check(cs, asg)))
	// Hide the final step by continuing execution into the padding step.
	padding := 2 * StepSize
	//
	for rot, val := range map[int]uint64{StateEid: 3, StateFid: 1, StateIid: 2, StateSp: 100, StateRestMops: 1} {
		require.NoError(t, asg.AssignAdvice(state, padding+rot, field.Uint64(val)))
	}
	//
	require.NoError(t, asg.AssignAdvice(table.Common().SharedBits, padding+BitEnable, field.One()))
	//
	assert.Equal(t, []string{"padding step"}, failedHandles(circuit.Check(cs, asg)))
}

func TestEventTable_NoOpcodeBit(t *testing.T) {
	cs, asg, table := assignTable(t, 4, nopBuilders(specs.DropClass), dropTrace(t, 2))
	require.NoError(t, asg.AssignAdvice(table.Common().OpcodeBits, 0, field.Zero()))
	//
	assert.Contains(t, failedHandles(circuit.Check(cs, asg)), "opcode dispatch")
}

func TestEventTable_WrongOpcode(t *testing.T) {
	cs, asg, table := assignTable(t, 4, nopBuilders(specs.DropClass, specs.ConstClass), dropTrace(t, 2))
	// Claim the const configuration executed the first (drop) step.
	require.NoError(t, asg.AssignAdvice(table.Common().OpcodeBits, 0, field.Zero()))
	require.NoError(t, asg.AssignAdvice(table.Common().OpcodeBits, 1, field.One()))
	//
	assert.Contains(t, failedHandles(circuit.Check(cs, asg)), "lookup binding")
}

func TestEventTable_Configure(t *testing.T) {
	cs := circuit.NewConstraintSystem()
	table := Configure(cs, 4, nopBuilders(specs.DropClass, specs.ConstClass))
	//
	config, ok := table.Config(specs.PlainClass(specs.ConstClass))
	require.True(t, ok)
	assert.Equal(t, specs.PlainClass(specs.ConstClass), config.OpcodeClass())
	//
	_, ok = table.Config(specs.PlainClass(specs.LoadClass))
	assert.False(t, ok)
	assert.Equal(t, uint(5*StepSize), table.Height())
	assert.Len(t, table.Usage(), 2)
}

func TestEventTable_DuplicateClass(t *testing.T) {
	assert.Panics(t, func() {
		Configure(circuit.NewConstraintSystem(), 4, nopBuilders(specs.DropClass, specs.DropClass))
	})
}

func TestEventTable_TooManyOpcodes(t *testing.T) {
	var classes []specs.OpcodeClass
	//
	for i := range MaxOpcodes + 1 {
		classes = append(classes, specs.ForeignPluginStart+specs.OpcodeClass(i))
	}
	//
	assert.Panics(t, func() {
		Configure(circuit.NewConstraintSystem(), 4, nopBuilders(classes...))
	})
}

func TestEventTable_AssignErrors(t *testing.T) {
	cs := circuit.NewConstraintSystem()
	table := Configure(cs, 2, nopBuilders(specs.ConstClass))
	asg := circuit.NewAssignment(cs, table.Height())
	//
	assert.ErrorIs(t, table.Assign(asg, nil, 1), ErrEmptyTrace)
	assert.ErrorIs(t, table.Assign(asg, dropTrace(t, 1), 1), ErrUnsupportedOpcode)
	assert.Error(t, table.Assign(asg, dropTrace(t, 3), 1))
}

func TestEventTable_Parallelism(t *testing.T) {
	trace := dropTrace(t, 7)
	_, parallel, _ := assignTable(t, 8, nopBuilders(specs.DropClass), trace)
	// Assigning sequentially produces the same witness.
	cs := circuit.NewConstraintSystem()
	table := Configure(cs, 8, nopBuilders(specs.DropClass))
	sequential := circuit.NewAssignment(cs, table.Height())
	require.NoError(t, table.Assign(sequential, trace, 1))
	//
	for _, col := range cs.Columns() {
		for row := range int(table.Height()) {
			l, err := parallel.Get(col, row)
			require.NoError(t, err)
			r, err := sequential.Get(col, row)
			require.NoError(t, err)
			assert.Equal(t, l, r, "%s[%d]", col.Name, row)
		}
	}
}
