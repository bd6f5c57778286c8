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

import "github.com/holiman/uint256"

// MemoryTableEntry records one access to one memory location.
type MemoryTableEntry struct {
	// Execution id of the accessing instruction (zero for initialisation).
	Eid uint32
	// Offset of the location.  For the stack this is the slot index, for the
	// heap it is the index of an 8-byte block.
	Offset uint32
	Ltype  LocationType
	Atype  AccessType
	Vtype  VarType
	Value  uint64
}

// MemoryRWEntry is a memory access together with the range of execution ids
// over which the value it accesses is live.  For a read, StartEid identifies
// the write (or initialisation) which defined the value and EndEid the next
// write (if any) to the same location.  For a write, StartEid is the write
// itself.
type MemoryRWEntry struct {
	Entry    MemoryTableEntry
	StartEid uint32
	EndEid   uint32
}

// Layout of an encoded memory table lookup.
const (
	MemoryValueShift    = 0
	MemoryIsI32Shift    = 64
	MemoryOffsetShift   = 65
	MemoryLtypeShift    = 97
	MemoryEndEidShift   = 105
	MemoryStartEidShift = 137
)

// EncodeMemoryLookup encodes a live memory value (i.e. a value together with the
// range of execution ids over which it holds) as a single integer.  This is the
// key used for memory table lookups.
func EncodeMemoryLookup(startEid, endEid uint32, ltype LocationType, offset uint32, isI32 bool,
	value uint64) *uint256.Int {
	var (
		res = uint256.NewInt(value)
		tmp = new(uint256.Int)
	)
	//
	if isI32 {
		res.Or(res, tmp.Lsh(uint256.NewInt(1), MemoryIsI32Shift))
	}
	//
	res.Or(res, tmp.Lsh(uint256.NewInt(uint64(offset)), MemoryOffsetShift))
	res.Or(res, tmp.Lsh(uint256.NewInt(uint64(ltype)), MemoryLtypeShift))
	res.Or(res, tmp.Lsh(uint256.NewInt(uint64(endEid)), MemoryEndEidShift))
	res.Or(res, tmp.Lsh(uint256.NewInt(uint64(startEid)), MemoryStartEidShift))
	//
	return res
}

// Encode this entry as a memory table lookup key.
func (p MemoryRWEntry) Encode() *uint256.Int {
	return EncodeMemoryLookup(p.StartEid, p.EndEid, p.Entry.Ltype, p.Entry.Offset, p.Entry.Vtype.IsI32(),
		p.Entry.Value)
}
