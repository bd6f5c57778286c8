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

// StepSize is the number of rows occupied by one step (i.e. one executed
// instruction) of the event table.  It coincides with the number of nibbles in
// a 64bit value, since each u64 cell spreads its nibbles over one step.
const StepSize = 16

// U4Columns is the number of dedicated nibble columns, and hence the number of
// u64 cells available to each opcode.
const U4Columns = 5

// MaxOpcodes is the maximum number of opcode configurations which can be
// compiled into one event table.  Each occupies one rotation of the opcode
// bits column.
const MaxOpcodes = StepSize

// CommonRangeBits is the bitwidth of common range cells.
const CommonRangeBits = 16

// Rotations of the shared bits column.  Bit cells are allocated from BitMax
// onwards.
const (
	// BitEnable is set on every step holding an executed instruction.
	BitEnable = iota
	BitMax
)

// Rotations of the state column.  Common range cells are allocated from
// StateMax onwards.
const (
	StateEid = iota
	StateMoid
	StateFid
	StateIid
	StateSp
	StateLastJumpEid
	StateInputIndex
	StateRestMops
	StateRestJops
	StateMax
)

// MTableLookupSlots is the number of memory table lookups available to each
// opcode.
const MTableLookupSlots = 3

// Rotations of the aux column.  Unlimited cells are allocated from
// AuxSharedStart onwards.
const (
	AuxITableLookup      = 0
	AuxJTableLookup      = 1
	AuxMTableLookupStart = 2
	AuxU64Start          = AuxMTableLookupStart + MTableLookupSlots
	AuxSharedStart       = AuxU64Start + U4Columns
)
