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

// VarType identifies the WASM value type of a stack or memory value.
type VarType uint8

const (
	// I32 is a 32bit integer
	I32 VarType = iota + 1
	// I64 is a 64bit integer
	I64
)

// IsI32 checks whether this is the 32bit integer type.
func (v VarType) IsI32() bool {
	return v == I32
}

// Bits returns the bitwidth of this value type.
func (v VarType) Bits() uint {
	if v == I32 {
		return 32
	}
	//
	return 64
}

func (v VarType) String() string {
	switch v {
	case I32:
		return "i32"
	case I64:
		return "i64"
	default:
		return fmt.Sprintf("vtype(%d)", uint8(v))
	}
}

// ParseVarType parses a value type from its textual representation.
func ParseVarType(s string) (VarType, error) {
	switch s {
	case "i32":
		return I32, nil
	case "i64":
		return I64, nil
	}
	//
	return 0, fmt.Errorf("unknown value type \"%s\"", s)
}

// LocationType identifies the kind of memory accessed by an instruction.
type LocationType uint8

const (
	// Stack identifies the operand stack (including locals).
	Stack LocationType = iota + 1
	// Heap identifies linear memory, addressed in 8-byte blocks.
	Heap
	// Global identifies global variables.
	Global
)

func (l LocationType) String() string {
	switch l {
	case Stack:
		return "stack"
	case Heap:
		return "heap"
	case Global:
		return "global"
	default:
		return fmt.Sprintf("ltype(%d)", uint8(l))
	}
}

// AccessType distinguishes reads from writes in the memory table.
type AccessType uint8

const (
	// Read access to a memory location.
	Read AccessType = iota + 1
	// Write access to a memory location.
	Write
	// Init is the initial value of a memory location (e.g. a data segment).
	Init
)

func (a AccessType) String() string {
	switch a {
	case Read:
		return "read"
	case Write:
		return "write"
	case Init:
		return "init"
	default:
		return fmt.Sprintf("atype(%d)", uint8(a))
	}
}

// IsWrite checks whether this access defines the value of its location (i.e.
// is a write or an initialisation).
func (a AccessType) IsWrite() bool {
	return a == Write || a == Init
}
