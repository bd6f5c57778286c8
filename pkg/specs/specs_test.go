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
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpcode_Encode(t *testing.T) {
	op := Opcode{Class: PlainClass(ConstClass), Arg0: uint16(I64), Arg1: 0, Value: 42}
	expected := new(uint256.Int).Lsh(uint256.NewInt(uint64(ConstClass)), OpcodeClassShift)
	expected.Or(expected, new(uint256.Int).Lsh(uint256.NewInt(uint64(I64)), OpcodeArg0Shift))
	expected.Or(expected, uint256.NewInt(42))
	//
	assert.Equal(t, expected, op.Encode())
	assert.Less(t, op.Encode().BitLen(), OpcodeBits+1)
}

func TestForeignClass(t *testing.T) {
	assert.Equal(t, OpcodeClassPlain(64), ForeignClass(0))
	assert.Equal(t, OpcodeClassPlain(66), ForeignClass(2))
	assert.Equal(t, "foreign#2", ForeignClass(2).String())
	assert.Equal(t, "br_if", PlainClass(BrIfClass).String())
}

func TestEncodeMemoryLookup_FieldsDisjoint(t *testing.T) {
	key := EncodeMemoryLookup(3, 9, Stack, 101, true, 0xffff_ffff_ffff_ffff)
	// Unpack each field
	get := func(shift uint, bits uint) uint64 {
		tmp := new(uint256.Int).Rsh(key, shift)
		mask := new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), bits), uint256.NewInt(1))
		//
		return tmp.And(tmp, mask).Uint64()
	}
	//
	assert.Equal(t, uint64(0xffff_ffff_ffff_ffff), get(MemoryValueShift, 64))
	assert.Equal(t, uint64(1), get(MemoryIsI32Shift, 1))
	assert.Equal(t, uint64(101), get(MemoryOffsetShift, 32))
	assert.Equal(t, uint64(Stack), get(MemoryLtypeShift, 8))
	assert.Equal(t, uint64(9), get(MemoryEndEidShift, 32))
	assert.Equal(t, uint64(3), get(MemoryStartEidShift, 32))
}

func TestWithMemoryInfo(t *testing.T) {
	ret := uint64(42)
	i64 := I64
	entries := []EventTableEntry{
		{Eid: 1, Sp: 100, StepInfo: &Const{I32, 5}},
		{Eid: 2, Sp: 99, StepInfo: &CallHost{
			Plugin: HostInput, Signature: Signature{[]VarType{I32}, &i64}, Args: []uint64{5}, RetVal: &ret}},
		{Eid: 3, Sp: 99, StepInfo: &Drop{}},
	}
	//
	info, err := WithMemoryInfo(entries, nil)
	require.NoError(t, err)
	require.Len(t, info, 3)
	// Const write at slot 100, overwritten at eid 2
	assert.Equal(t, MemoryRWEntry{MemoryTableEntry{1, 100, Stack, Write, I32, 5}, 1, 2}, info[0].MemoryRWEntries[0])
	// Host read of slot 100 written at eid 1, live until eid 2
	assert.Equal(t, MemoryRWEntry{MemoryTableEntry{2, 100, Stack, Read, I32, 5}, 1, 2}, info[1].MemoryRWEntries[0])
	// Host write of slot 100, never overwritten
	assert.Equal(t, MemoryRWEntry{MemoryTableEntry{2, 100, Stack, Write, I64, 42}, 2, 4}, info[1].MemoryRWEntries[1])
	assert.Empty(t, info[2].MemoryRWEntries)
	// Every read matches a live range in the memory table
	keys := MemoryTableLookups(info, nil)
	assert.Contains(t, keys, info[1].MemoryRWEntries[0].Encode())
}

func TestWithMemoryInfo_Uninitialised(t *testing.T) {
	entries := []EventTableEntry{{Eid: 1, Sp: 100, StepInfo: &LocalGet{I32, 2, 0}}}
	//
	_, err := WithMemoryInfo(entries, nil)
	assert.Error(t, err)
	// Initialising the local makes it readable
	init := []MemoryTableEntry{{0, 102, Stack, Init, I32, 0}}
	info, err := WithMemoryInfo(entries, init)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), info[0].MemoryRWEntries[0].StartEid)
	assert.Contains(t, MemoryTableLookups(info, init), info[0].MemoryRWEntries[0].Encode())
}

func TestLoad_Addressing(t *testing.T) {
	load := Load{Vtype: I32, Size: 2, Offset: 3, RawAddress: 18}
	assert.Equal(t, uint64(21), load.EffectiveAddress())
	assert.Equal(t, uint32(2), load.Block())
	assert.Equal(t, uint8(5), load.InnerOffset())
}

func TestReadTrace(t *testing.T) {
	data := []byte(`{
		"entries": [
			{"eid": 1, "sp": 100, "step": {"kind": "const", "vtype": "i32", "value": 5}},
			{"eid": 2, "sp": 99, "iid": 1, "step": {"kind": "call_host", "params": ["i32"], "return_type": "i64",
				"args": [5], "ret_val": 42}},
			{"eid": 3, "sp": 99, "iid": 2, "step": {"kind": "bin", "op": "add", "vtype": "i64", "left": 1, "right": 2,
				"value": 3}}
		],
		"memory_init": [{"ltype": "heap", "offset": 1, "vtype": "i64", "value": 7}],
		"public_inputs": [42]
	}`)
	//
	trace, err := ReadTrace(data)
	require.NoError(t, err)
	require.Len(t, trace.Entries, 3)
	assert.Equal(t, &Const{I32, 5}, trace.Entries[0].StepInfo)
	//
	host, ok := trace.Entries[1].StepInfo.(*CallHost)
	require.True(t, ok)
	assert.Equal(t, []uint64{5}, host.Args)
	assert.Equal(t, uint64(42), *host.RetVal)
	assert.Equal(t, I64, *host.Signature.ReturnType)
	//
	assert.Equal(t, &Bin{Add, I64, 1, 2, 3}, trace.Entries[2].StepInfo)
	assert.Equal(t, []MemoryTableEntry{{0, 1, Heap, Init, I64, 7}}, trace.MemoryInit)
	assert.Equal(t, []uint64{42}, trace.PublicInputs)
}

func TestReadTrace_UnknownKind(t *testing.T) {
	_, err := ReadTrace([]byte(`{"entries": [{"eid": 1, "step": {"kind": "select"}}]}`))
	assert.ErrorIs(t, err, ErrUnknownStepKind)
}
