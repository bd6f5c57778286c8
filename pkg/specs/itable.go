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

import (
	"fmt"

	"github.com/holiman/uint256"
)

// OpcodeClass is a coarse category tag distinguishing instruction families.
type OpcodeClass uint16

const (
	// LocalGetClass reads a local onto the stack
	LocalGetClass OpcodeClass = iota + 1
	// ConstClass pushes a constant
	ConstClass
	// DropClass discards the top of stack
	DropClass
	// ReturnClass returns from the current function
	ReturnClass
	// BinClass covers binary arithmetic operators
	BinClass
	// BrIfClass is a conditional branch
	BrIfClass
	// LocalSetClass pops the top of stack into a local
	LocalSetClass
	// LocalTeeClass copies the top of stack into a local
	LocalTeeClass
	// LoadClass reads linear memory
	LoadClass
	// RelClass covers relational (comparison) operators
	RelClass
	// ForeignPluginStart is the first class reserved for host plugins.  Plugin
	// i is identified by ForeignPluginStart + i.
	ForeignPluginStart OpcodeClass = 64
)

var opcodeClassNames = map[OpcodeClass]string{
	LocalGetClass: "local_get",
	ConstClass:    "const",
	DropClass:     "drop",
	ReturnClass:   "return",
	BinClass:      "bin",
	BrIfClass:     "br_if",
	LocalSetClass: "local_set",
	LocalTeeClass: "local_tee",
	LoadClass:     "load",
	RelClass:      "rel",
}

func (c OpcodeClass) String() string {
	if name, ok := opcodeClassNames[c]; ok {
		return name
	} else if c >= ForeignPluginStart {
		return fmt.Sprintf("foreign#%d", c-ForeignPluginStart)
	}
	//
	return fmt.Sprintf("class(%d)", uint16(c))
}

// OpcodeClassPlain identifies a configured opcode uniquely.  For built-in
// instruction families this coincides with the OpcodeClass, whilst for host
// plugins it incorporates the plugin index.
type OpcodeClassPlain uint16

// PlainClass computes the plain class of a built-in opcode class.
func PlainClass(c OpcodeClass) OpcodeClassPlain {
	return OpcodeClassPlain(c)
}

// ForeignClass computes the plain class of the host plugin with the given index.
func ForeignClass(index uint) OpcodeClassPlain {
	return OpcodeClassPlain(uint(ForeignPluginStart) + index)
}

func (c OpcodeClassPlain) String() string {
	return OpcodeClass(c).String()
}

// Layout of an encoded opcode.  The class occupies the most significant bits,
// followed by two 16bit arguments and a 64bit immediate value.
const (
	OpcodeValueShift = 0
	OpcodeArg1Shift  = 64
	OpcodeArg0Shift  = 80
	OpcodeClassShift = 96
	// OpcodeBits is the total width of an encoded opcode.
	OpcodeBits = 112
)

// Opcode is the static part of an instruction: its class plus any immediate
// arguments.
type Opcode struct {
	Class OpcodeClassPlain
	Arg0  uint16
	Arg1  uint16
	Value uint64
}

// Encode this opcode as a single integer.
func (p Opcode) Encode() *uint256.Int {
	var (
		res = uint256.NewInt(uint64(p.Class))
		tmp = new(uint256.Int)
	)
	//
	res.Lsh(res, OpcodeClassShift)
	res.Or(res, tmp.Lsh(uint256.NewInt(uint64(p.Arg0)), OpcodeArg0Shift))
	res.Or(res, tmp.Lsh(uint256.NewInt(uint64(p.Arg1)), OpcodeArg1Shift))
	res.Or(res, uint256.NewInt(p.Value))
	//
	return res
}

// Layout of an encoded instruction table entry.
const (
	InstructionIidShift  = OpcodeBits
	InstructionFidShift  = InstructionIidShift + 16
	InstructionMoidShift = InstructionFidShift + 16
)

// InstructionTableEntry identifies one instruction of the program by module,
// function and instruction index.
type InstructionTableEntry struct {
	Moid   uint16
	Fid    uint16
	Iid    uint16
	Opcode Opcode
}

// Encode this instruction as a single integer, as used for instruction table
// lookups.
func (p InstructionTableEntry) Encode() *uint256.Int {
	var (
		res = p.Opcode.Encode()
		tmp = new(uint256.Int)
	)
	//
	res.Or(res, tmp.Lsh(uint256.NewInt(uint64(p.Iid)), InstructionIidShift))
	res.Or(res, tmp.Lsh(uint256.NewInt(uint64(p.Fid)), InstructionFidShift))
	res.Or(res, tmp.Lsh(uint256.NewInt(uint64(p.Moid)), InstructionMoidShift))
	//
	return res
}
