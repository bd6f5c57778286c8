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
	"fmt"

	"github.com/consensys/go-zkwasm/pkg/circuit"
	"github.com/consensys/go-zkwasm/pkg/specs"
	"github.com/consensys/go-zkwasm/pkg/util/field"
)

// CommonConfig holds the columns shared by all opcode configurations of the
// event table, and provides access to the per-step state cells.
type CommonConfig struct {
	// StepSel is set on the first row of every step within capacity.
	StepSel circuit.Column
	// FirstSel is set on the first row of the table only.
	FirstSel circuit.Column
	// RangeSel is set on the rows of the state column holding common range
	// cells.
	RangeSel circuit.Column
	// OpcodeBits holds one dispatch bit per opcode configuration.
	OpcodeBits circuit.Column
	// SharedBits holds the enable bit, followed by bit cells.
	SharedBits circuit.Column
	// State holds the execution state, followed by common range cells.
	State circuit.Column
	// Aux holds the lookup slots, the u64 value cells and unlimited cells.
	Aux circuit.Column
	// U4Shared holds the nibbles of each u64 cell.
	U4Shared [U4Columns]circuit.Column
}

func newCommonConfig(cs *circuit.ConstraintSystem) *CommonConfig {
	var common = &CommonConfig{
		StepSel:    cs.FixedColumn("step_sel"),
		FirstSel:   cs.FixedColumn("first_sel"),
		RangeSel:   cs.FixedColumn("range_sel"),
		OpcodeBits: cs.AdviceColumn("opcode_bits"),
		SharedBits: cs.AdviceColumn("shared_bits"),
		State:      cs.AdviceColumn("state"),
		Aux:        cs.AdviceColumn("aux"),
	}
	//
	for i := range U4Columns {
		common.U4Shared[i] = cs.AdviceColumn(fmt.Sprintf("u4_shared_%d", i))
	}
	//
	return common
}

// configure the gates and range checks which hold irrespective of which
// opcode is active.
func (p *CommonConfig) configure(cs *circuit.ConstraintSystem) {
	var (
		bits    = p.SharedBits.Query(0)
		opbits  = p.OpcodeBits.Query(0)
		stepSel = p.StepSel.Query(0)
	)
	//
	cs.CreateGate("shared bits", circuit.Product(bits, circuit.Sub(circuit.Const(1), bits)))
	cs.CreateGate("opcode bits", circuit.Product(opbits, circuit.Sub(circuit.Const(1), opbits)))
	cs.RangeCheck("common range", circuit.Product(p.RangeSel.Query(0), p.State.Query(0)), CommonRangeBits)
	// u64 cells
	compositions := make([]circuit.Expr, U4Columns)
	//
	for i := range U4Columns {
		cs.RangeCheck(fmt.Sprintf("u4 range %d", i), p.U4Shared[i].Query(0), 4)
		//
		nibbles := make([]circuit.Expr, StepSize)
		for j := range StepSize {
			nibbles[j] = circuit.ShiftLeft(p.U4Shared[i].Query(j), uint(4*j))
		}
		//
		compositions[i] = circuit.Product(stepSel, circuit.Sub(p.Aux.Query(AuxU64Start+i), circuit.Sum(nibbles...)))
	}
	//
	cs.CreateGate("u64 composition", compositions...)
}

// Enable returns an expression which is 1 on steps holding an executed
// instruction, and 0 otherwise.
func (p *CommonConfig) Enable() circuit.Expr { return p.SharedBits.Query(BitEnable) }

// NextEnable is Enable on the following step.
func (p *CommonConfig) NextEnable() circuit.Expr { return p.SharedBits.Query(BitEnable + StepSize) }

// OpcodeBit returns the dispatch bit of the i-th opcode configuration.
func (p *CommonConfig) OpcodeBit(i int) circuit.Expr { return p.OpcodeBits.Query(i) }

// Eid returns the execution id of the current step.
func (p *CommonConfig) Eid() circuit.Expr { return p.State.Query(StateEid) }

// Moid returns the module instance id of the current step.
func (p *CommonConfig) Moid() circuit.Expr { return p.State.Query(StateMoid) }

// Fid returns the function id of the current step.
func (p *CommonConfig) Fid() circuit.Expr { return p.State.Query(StateFid) }

// Iid returns the instruction id of the current step.
func (p *CommonConfig) Iid() circuit.Expr { return p.State.Query(StateIid) }

// Sp returns the stack pointer of the current step.
func (p *CommonConfig) Sp() circuit.Expr { return p.State.Query(StateSp) }

// LastJumpEid returns the execution id of the last call made to enter the
// current frame.
func (p *CommonConfig) LastJumpEid() circuit.Expr { return p.State.Query(StateLastJumpEid) }

// InputIndex returns the number of public inputs consumed before the current
// step.
func (p *CommonConfig) InputIndex() circuit.Expr { return p.State.Query(StateInputIndex) }

// RestMops returns the number of memory writes performed by the current and
// all subsequent steps.
func (p *CommonConfig) RestMops() circuit.Expr { return p.State.Query(StateRestMops) }

// RestJops returns the number of jumps performed by the current and all
// subsequent steps.
func (p *CommonConfig) RestJops() circuit.Expr { return p.State.Query(StateRestJops) }

// Next returns a state cell on the following step.
func (p *CommonConfig) Next(rot int) circuit.Expr { return p.State.Query(rot + StepSize) }

// ITableLookup returns the instruction table lookup slot.
func (p *CommonConfig) ITableLookup() circuit.Expr { return p.Aux.Query(AuxITableLookup) }

// JTableLookup returns the jump table lookup slot.
func (p *CommonConfig) JTableLookup() circuit.Expr { return p.Aux.Query(AuxJTableLookup) }

// MTableLookup returns the i-th memory table lookup slot.
func (p *CommonConfig) MTableLookup(i int) circuit.Expr { return p.Aux.Query(AuxMTableLookupStart + i) }

// assign the common cells of the current step.
func (p *CommonConfig) assign(ctx *Context, index int, status *StepStatus) error {
	var (
		entry = &status.Current.Entry
		state = [StateMax]uint64{
			StateEid:         uint64(entry.Eid),
			StateMoid:        uint64(entry.Moid),
			StateFid:         uint64(entry.Fid),
			StateIid:         uint64(entry.Iid),
			StateSp:          uint64(entry.Sp),
			StateLastJumpEid: uint64(entry.LastJumpEid),
			StateInputIndex:  status.InputIndex,
			StateRestMops:    status.RestMops,
			StateRestJops:    status.RestJops,
		}
	)
	//
	if err := ctx.assign("enable", p.SharedBits, BitEnable, field.One()); err != nil {
		return err
	} else if err := ctx.assign("opcode bit", p.OpcodeBits, index, field.One()); err != nil {
		return err
	}
	//
	for rot, val := range state {
		if err := ctx.assign("state", p.State, rot, field.Uint64(val)); err != nil {
			return err
		}
	}
	//
	return ctx.assign("itable lookup", p.Aux, AuxITableLookup, field.Uint256(entry.Inst().Encode()))
}

// assignFixed assigns the selector columns for a table of the given capacity.
func (p *CommonConfig) assignFixed(asg *circuit.Assignment, capacity uint) error {
	if err := asg.AssignFixed(p.FirstSel, 0, field.One()); err != nil {
		return err
	}
	//
	for step := range int(capacity) {
		offset := step * StepSize
		//
		if err := asg.AssignFixed(p.StepSel, offset, field.One()); err != nil {
			return err
		}
		//
		for rot := StateMax; rot < StepSize; rot++ {
			if err := asg.AssignFixed(p.RangeSel, offset+rot, field.One()); err != nil {
				return err
			}
		}
	}
	//
	return nil
}

// StepStatus provides an opcode configuration with the context of the step
// being assigned.
type StepStatus struct {
	// Current is the entry being assigned.
	Current *specs.EventTableEntryWithMemoryInfo
	// Next is the following entry, or nil on the last step.
	Next *specs.EventTableEntryWithMemoryInfo
	// InputIndex is the number of public inputs consumed before this step.
	InputIndex uint64
	// RestMops is the number of memory writes performed from this step onwards.
	RestMops uint64
	// RestJops is the number of jumps performed from this step onwards.
	RestJops uint64
}
