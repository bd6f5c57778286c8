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
	"github.com/consensys/go-zkwasm/pkg/circuit"
	"github.com/consensys/go-zkwasm/pkg/specs"
)

// Identifiers of the external tables the event table looks up into.
const (
	MemoryTableKey      circuit.TableId = 1
	JumpTableKey        circuit.TableId = 2
	InstructionTableKey circuit.TableId = 3
)

// EncodeOpcode constructs the expression of an encoded opcode, following the
// layout of specs.Opcode.
func EncodeOpcode(class specs.OpcodeClassPlain, arg0, arg1, value circuit.Expr) circuit.Expr {
	return circuit.Sum(
		circuit.ShiftLeft(circuit.Const(uint64(class)), specs.OpcodeClassShift),
		circuit.ShiftLeft(arg0, specs.OpcodeArg0Shift),
		circuit.ShiftLeft(arg1, specs.OpcodeArg1Shift),
		circuit.ShiftLeft(value, specs.OpcodeValueShift),
	)
}

// EncodeInstruction constructs the expression of an instruction table key,
// following the layout of specs.InstructionTableEntry.
func EncodeInstruction(moid, fid, iid, opcode circuit.Expr) circuit.Expr {
	return circuit.Sum(
		circuit.ShiftLeft(moid, specs.InstructionMoidShift),
		circuit.ShiftLeft(fid, specs.InstructionFidShift),
		circuit.ShiftLeft(iid, specs.InstructionIidShift),
		opcode,
	)
}

// EncodeMemoryLookup constructs the expression of a memory table lookup key,
// following the layout of specs.EncodeMemoryLookup.
func EncodeMemoryLookup(startEid, endEid, ltype, offset, isI32, value circuit.Expr) circuit.Expr {
	return circuit.Sum(
		circuit.ShiftLeft(startEid, specs.MemoryStartEidShift),
		circuit.ShiftLeft(endEid, specs.MemoryEndEidShift),
		circuit.ShiftLeft(ltype, specs.MemoryLtypeShift),
		circuit.ShiftLeft(offset, specs.MemoryOffsetShift),
		circuit.ShiftLeft(isI32, specs.MemoryIsI32Shift),
		circuit.ShiftLeft(value, specs.MemoryValueShift),
	)
}

// EncodeJump constructs the expression of a jump table key, following the
// layout of specs.JumpTableEntry.
func EncodeJump(eid, lastJumpEid, fid, iid circuit.Expr) circuit.Expr {
	return circuit.Sum(
		circuit.ShiftLeft(eid, specs.JumpEidShift),
		circuit.ShiftLeft(lastJumpEid, specs.JumpLastJumpEidShift),
		circuit.ShiftLeft(fid, specs.JumpFidShift),
		circuit.ShiftLeft(iid, specs.JumpIidShift),
	)
}

// LocationType returns the constant expression for a memory location type.
func LocationType(ltype specs.LocationType) circuit.Expr {
	return circuit.Const(uint64(ltype))
}

// VarType returns the expression of a value type, given an expression which is
// 1 for i32 and 0 for i64.
func VarType(isI32 circuit.Expr) circuit.Expr {
	return circuit.Sub(circuit.Const(uint64(specs.I64)), isI32)
}
