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
package specs

import "fmt"

// StepInfo describes the dynamic behaviour of one executed instruction: which
// instruction family it belongs to, the operands it consumed and the values it
// produced.  The set of step kinds is closed.
type StepInfo interface {
	// Kind returns a short textual name for this step kind.
	Kind() string
	// Class identifies the opcode configuration responsible for this step.
	Class() OpcodeClassPlain
	// Opcode returns the static instruction executed by this step.
	Opcode() Opcode
	// MemoryEvents returns the memory accesses made by this step, in the order
	// in which they occur, given the execution id and stack pointer of the
	// step.
	MemoryEvents(eid uint32, sp uint32) []MemoryTableEntry
	//
	isStepInfo()
}

// BinOp identifies a binary arithmetic operator.
type BinOp uint8

const (
	// Add is wrapping addition
	Add BinOp = iota
	// Sub is wrapping subtraction
	Sub
	// Mul is wrapping multiplication
	Mul
	// DivU is unsigned division
	DivU
	// RemU is unsigned remainder
	RemU
)

var binOpNames = []string{"add", "sub", "mul", "div_u", "rem_u"}

func (op BinOp) String() string {
	if int(op) < len(binOpNames) {
		return binOpNames[op]
	}
	//
	return fmt.Sprintf("binop(%d)", uint8(op))
}

// RelOp identifies a relational operator.
type RelOp uint8

const (
	// Eq is equality
	Eq RelOp = iota
	// Ne is disequality
	Ne
	// LtU is unsigned less-than
	LtU
	// GtU is unsigned greater-than
	GtU
	// LeU is unsigned less-than-or-equal
	LeU
	// GeU is unsigned greater-than-or-equal
	GeU
)

var relOpNames = []string{"eq", "ne", "lt_u", "gt_u", "le_u", "ge_u"}

func (op RelOp) String() string {
	if int(op) < len(relOpNames) {
		return relOpNames[op]
	}
	//
	return fmt.Sprintf("relop(%d)", uint8(op))
}

func stackRead(eid uint32, offset uint32, vtype VarType, value uint64) MemoryTableEntry {
	return MemoryTableEntry{eid, offset, Stack, Read, vtype, value}
}

func stackWrite(eid uint32, offset uint32, vtype VarType, value uint64) MemoryTableEntry {
	return MemoryTableEntry{eid, offset, Stack, Write, vtype, value}
}

// ============================================================================
// Bin
// ============================================================================

// Bin pops two operands and pushes the result of a binary operator.
type Bin struct {
	Op    BinOp
	Vtype VarType
	Left  uint64
	Right uint64
	Value uint64
}

// Kind implementation for StepInfo interface.
func (p *Bin) Kind() string { return "bin" }

// Class implementation for StepInfo interface.
func (p *Bin) Class() OpcodeClassPlain { return PlainClass(BinClass) }

// Opcode implementation for StepInfo interface.
func (p *Bin) Opcode() Opcode {
	return Opcode{Class: p.Class(), Arg0: uint16(p.Op), Arg1: uint16(p.Vtype)}
}

// MemoryEvents implementation for StepInfo interface.
func (p *Bin) MemoryEvents(eid uint32, sp uint32) []MemoryTableEntry {
	return []MemoryTableEntry{
		stackRead(eid, sp+1, p.Vtype, p.Right),
		stackRead(eid, sp+2, p.Vtype, p.Left),
		stackWrite(eid, sp+2, p.Vtype, p.Value),
	}
}

func (p *Bin) isStepInfo() {}

// ============================================================================
// Rel
// ============================================================================

// Rel pops two operands and pushes the (i32) result of comparing them.
type Rel struct {
	Op    RelOp
	Vtype VarType
	Left  uint64
	Right uint64
	Value bool
}

// Kind implementation for StepInfo interface.
func (p *Rel) Kind() string { return "rel" }

// Class implementation for StepInfo interface.
func (p *Rel) Class() OpcodeClassPlain { return PlainClass(RelClass) }

// Opcode implementation for StepInfo interface.
func (p *Rel) Opcode() Opcode {
	return Opcode{Class: p.Class(), Arg0: uint16(p.Op), Arg1: uint16(p.Vtype)}
}

// MemoryEvents implementation for StepInfo interface.
func (p *Rel) MemoryEvents(eid uint32, sp uint32) []MemoryTableEntry {
	var res uint64
	//
	if p.Value {
		res = 1
	}
	//
	return []MemoryTableEntry{
		stackRead(eid, sp+1, p.Vtype, p.Right),
		stackRead(eid, sp+2, p.Vtype, p.Left),
		stackWrite(eid, sp+2, I32, res),
	}
}

func (p *Rel) isStepInfo() {}

// ============================================================================
// Const
// ============================================================================

// Const pushes a constant.
type Const struct {
	Vtype VarType
	Value uint64
}

// Kind implementation for StepInfo interface.
func (p *Const) Kind() string { return "const" }

// Class implementation for StepInfo interface.
func (p *Const) Class() OpcodeClassPlain { return PlainClass(ConstClass) }

// Opcode implementation for StepInfo interface.
func (p *Const) Opcode() Opcode {
	return Opcode{Class: p.Class(), Arg0: uint16(p.Vtype), Value: p.Value}
}

// MemoryEvents implementation for StepInfo interface.
func (p *Const) MemoryEvents(eid uint32, sp uint32) []MemoryTableEntry {
	return []MemoryTableEntry{stackWrite(eid, sp, p.Vtype, p.Value)}
}

func (p *Const) isStepInfo() {}

// ============================================================================
// Drop
// ============================================================================

// Drop discards the top of stack.
type Drop struct{}

// Kind implementation for StepInfo interface.
func (p *Drop) Kind() string { return "drop" }

// Class implementation for StepInfo interface.
func (p *Drop) Class() OpcodeClassPlain { return PlainClass(DropClass) }

// Opcode implementation for StepInfo interface.
func (p *Drop) Opcode() Opcode { return Opcode{Class: p.Class()} }

// MemoryEvents implementation for StepInfo interface.
func (p *Drop) MemoryEvents(uint32, uint32) []MemoryTableEntry { return nil }

func (p *Drop) isStepInfo() {}

// ============================================================================
// Locals
// ============================================================================

// LocalGet pushes the value of the local at the given depth below the stack
// pointer.
type LocalGet struct {
	Vtype VarType
	Depth uint32
	Value uint64
}

// Kind implementation for StepInfo interface.
func (p *LocalGet) Kind() string { return "local_get" }

// Class implementation for StepInfo interface.
func (p *LocalGet) Class() OpcodeClassPlain { return PlainClass(LocalGetClass) }

// Opcode implementation for StepInfo interface.
func (p *LocalGet) Opcode() Opcode {
	return Opcode{Class: p.Class(), Arg0: uint16(p.Vtype), Value: uint64(p.Depth)}
}

// MemoryEvents implementation for StepInfo interface.
func (p *LocalGet) MemoryEvents(eid uint32, sp uint32) []MemoryTableEntry {
	return []MemoryTableEntry{
		stackRead(eid, sp+p.Depth, p.Vtype, p.Value),
		stackWrite(eid, sp, p.Vtype, p.Value),
	}
}

func (p *LocalGet) isStepInfo() {}

// LocalSet pops the top of stack into the local at the given depth.
type LocalSet struct {
	Vtype VarType
	Depth uint32
	Value uint64
}

// Kind implementation for StepInfo interface.
func (p *LocalSet) Kind() string { return "local_set" }

// Class implementation for StepInfo interface.
func (p *LocalSet) Class() OpcodeClassPlain { return PlainClass(LocalSetClass) }

// Opcode implementation for StepInfo interface.
func (p *LocalSet) Opcode() Opcode {
	return Opcode{Class: p.Class(), Arg0: uint16(p.Vtype), Value: uint64(p.Depth)}
}

// MemoryEvents implementation for StepInfo interface.
func (p *LocalSet) MemoryEvents(eid uint32, sp uint32) []MemoryTableEntry {
	return []MemoryTableEntry{
		stackRead(eid, sp+1, p.Vtype, p.Value),
		stackWrite(eid, sp+1+p.Depth, p.Vtype, p.Value),
	}
}

func (p *LocalSet) isStepInfo() {}

// LocalTee copies the top of stack into the local at the given depth.
type LocalTee struct {
	Vtype VarType
	Depth uint32
	Value uint64
}

// Kind implementation for StepInfo interface.
func (p *LocalTee) Kind() string { return "local_tee" }

// Class implementation for StepInfo interface.
func (p *LocalTee) Class() OpcodeClassPlain { return PlainClass(LocalTeeClass) }

// Opcode implementation for StepInfo interface.
func (p *LocalTee) Opcode() Opcode {
	return Opcode{Class: p.Class(), Arg0: uint16(p.Vtype), Value: uint64(p.Depth)}
}

// MemoryEvents implementation for StepInfo interface.
func (p *LocalTee) MemoryEvents(eid uint32, sp uint32) []MemoryTableEntry {
	return []MemoryTableEntry{
		stackRead(eid, sp+1, p.Vtype, p.Value),
		stackWrite(eid, sp+p.Depth, p.Vtype, p.Value),
	}
}

func (p *LocalTee) isStepInfo() {}

// ============================================================================
// Control Flow
// ============================================================================

// BrIf pops a condition and, if it is non-zero, branches to DstPc whilst
// dropping Drop values from beneath the (at most one) kept value.
type BrIf struct {
	Condition  uint64
	DstPc      uint16
	Drop       uint16
	Keep       []VarType
	KeepValues []uint64
}

// Kind implementation for StepInfo interface.
func (p *BrIf) Kind() string { return "br_if" }

// Class implementation for StepInfo interface.
func (p *BrIf) Class() OpcodeClassPlain { return PlainClass(BrIfClass) }

// Taken checks whether the branch is taken.
func (p *BrIf) Taken() bool { return p.Condition != 0 }

// Opcode implementation for StepInfo interface.
func (p *BrIf) Opcode() Opcode {
	return Opcode{Class: p.Class(), Arg0: p.Drop, Arg1: keepArg(p.Keep), Value: uint64(p.DstPc)}
}

// MemoryEvents implementation for StepInfo interface.
func (p *BrIf) MemoryEvents(eid uint32, sp uint32) []MemoryTableEntry {
	var events = []MemoryTableEntry{stackRead(eid, sp+1, I32, p.Condition)}
	//
	if p.Taken() && len(p.Keep) > 0 {
		events = append(events,
			stackRead(eid, sp+2, p.Keep[0], p.KeepValues[0]),
			stackWrite(eid, sp+2+uint32(p.Drop), p.Keep[0], p.KeepValues[0]))
	}
	//
	return events
}

func (p *BrIf) isStepInfo() {}

// Return leaves the current function, dropping Drop values from beneath the (at
// most one) kept value, and resumes the caller.
type Return struct {
	Drop       uint16
	Keep       []VarType
	KeepValues []uint64
	// Caller state restored by this return.
	ReturnLastJumpEid uint32
	ReturnFid         uint16
	ReturnIid         uint16
}

// Kind implementation for StepInfo interface.
func (p *Return) Kind() string { return "return" }

// Class implementation for StepInfo interface.
func (p *Return) Class() OpcodeClassPlain { return PlainClass(ReturnClass) }

// Opcode implementation for StepInfo interface.
func (p *Return) Opcode() Opcode {
	var vtype uint64
	//
	if len(p.Keep) > 0 {
		vtype = uint64(p.Keep[0])
	}
	//
	return Opcode{Class: p.Class(), Arg0: p.Drop, Arg1: keepArg(p.Keep), Value: vtype}
}

// MemoryEvents implementation for StepInfo interface.
func (p *Return) MemoryEvents(eid uint32, sp uint32) []MemoryTableEntry {
	if len(p.Keep) == 0 {
		return nil
	}
	//
	return []MemoryTableEntry{
		stackRead(eid, sp+1, p.Keep[0], p.KeepValues[0]),
		stackWrite(eid, sp+1+uint32(p.Drop), p.Keep[0], p.KeepValues[0]),
	}
}

func (p *Return) isStepInfo() {}

func keepArg(keep []VarType) uint16 {
	return uint16(len(keep))
}

// ============================================================================
// Load
// ============================================================================

// Load reads Size bytes (little endian, zero extended) of linear memory at the
// effective address RawAddress+Offset.  The access must lie within a single
// 8-byte block, whose full value is BlockValue.
type Load struct {
	Vtype      VarType
	Size       uint8
	Offset     uint32
	RawAddress uint32
	Value      uint64
	BlockValue uint64
}

// Kind implementation for StepInfo interface.
func (p *Load) Kind() string { return "load" }

// Class implementation for StepInfo interface.
func (p *Load) Class() OpcodeClassPlain { return PlainClass(LoadClass) }

// EffectiveAddress returns the byte address being read.
func (p *Load) EffectiveAddress() uint64 {
	return uint64(p.RawAddress) + uint64(p.Offset)
}

// Block returns the index of the 8-byte block being read.
func (p *Load) Block() uint32 {
	return uint32(p.EffectiveAddress() / 8)
}

// InnerOffset returns the offset of the first byte being read within its block.
func (p *Load) InnerOffset() uint8 {
	return uint8(p.EffectiveAddress() % 8)
}

// Opcode implementation for StepInfo interface.
func (p *Load) Opcode() Opcode {
	return Opcode{Class: p.Class(), Arg0: uint16(p.Size), Arg1: uint16(p.Vtype), Value: uint64(p.Offset)}
}

// MemoryEvents implementation for StepInfo interface.
func (p *Load) MemoryEvents(eid uint32, sp uint32) []MemoryTableEntry {
	return []MemoryTableEntry{
		stackRead(eid, sp+1, I32, uint64(p.RawAddress)),
		{eid, p.Block(), Heap, Read, I64, p.BlockValue},
		stackWrite(eid, sp+1, p.Vtype, p.Value),
	}
}

func (p *Load) isStepInfo() {}

// ============================================================================
// Host calls
// ============================================================================

// CallHost invokes a host function provided by a plugin.
type CallHost struct {
	Plugin      HostPlugin
	PluginIndex uint
	Function    string
	Signature   Signature
	Args        []uint64
	RetVal      *uint64
}

// Kind implementation for StepInfo interface.
func (p *CallHost) Kind() string { return "call_host" }

// Class implementation for StepInfo interface.
func (p *CallHost) Class() OpcodeClassPlain { return ForeignClass(p.PluginIndex) }

// Opcode implementation for StepInfo interface.
func (p *CallHost) Opcode() Opcode {
	return Opcode{Class: p.Class()}
}

// MemoryEvents implementation for StepInfo interface.
func (p *CallHost) MemoryEvents(eid uint32, sp uint32) []MemoryTableEntry {
	var (
		events []MemoryTableEntry
		nargs  = uint32(len(p.Args))
	)
	// Arguments are popped from the top of stack
	for i, arg := range p.Args {
		events = append(events, stackRead(eid, sp+nargs-uint32(i), p.Signature.Params[i], arg))
	}
	//
	if p.RetVal != nil && p.Signature.ReturnType != nil {
		events = append(events, stackWrite(eid, sp+nargs, *p.Signature.ReturnType, *p.RetVal))
	}
	//
	return events
}

func (p *CallHost) isStepInfo() {}
