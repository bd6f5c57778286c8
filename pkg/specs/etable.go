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
	"sort"

	"github.com/holiman/uint256"
)

// EventTableEntry is the trace of one executed instruction.
type EventTableEntry struct {
	// Execution id of this instruction (starting from one).
	Eid uint32
	// Module, function and instruction identifying the executed instruction.
	Moid uint16
	Fid  uint16
	Iid  uint16
	// Stack pointer before execution.  This is the next free slot, hence values
	// are popped from Sp+1.
	Sp uint32
	// Execution id of the call which opened the current frame.
	LastJumpEid uint32
	// Dynamic details of the instruction.
	StepInfo StepInfo
}

// Inst returns the instruction table entry for this instruction.
func (p *EventTableEntry) Inst() InstructionTableEntry {
	return InstructionTableEntry{p.Moid, p.Fid, p.Iid, p.StepInfo.Opcode()}
}

// EventTableEntryWithMemoryInfo is an event table entry together with the live
// ranges of the memory values it accesses.
type EventTableEntryWithMemoryInfo struct {
	Entry           EventTableEntry
	MemoryRWEntries []MemoryRWEntry
}

type location struct {
	ltype  LocationType
	offset uint32
}

// WithMemoryInfo computes the live range of every memory access made by a
// sequence of event table entries.  Initial memory contents (e.g. data
// segments) are given separately and considered written at execution id 0.
// Values which are never overwritten remain live until one past the last
// execution id.  An error is returned if an entry reads a location which has
// never been written or initialised.
func WithMemoryInfo(entries []EventTableEntry, init []MemoryTableEntry) ([]EventTableEntryWithMemoryInfo, error) {
	var (
		writes = make(map[location][]uint32)
		events = make([][]MemoryTableEntry, len(entries))
		end    = uint32(1)
		result = make([]EventTableEntryWithMemoryInfo, len(entries))
	)
	//
	for _, e := range init {
		loc := location{e.Ltype, e.Offset}
		writes[loc] = append(writes[loc], 0)
	}
	// Collect write eids for every location (in increasing order)
	for i, entry := range entries {
		events[i] = entry.StepInfo.MemoryEvents(entry.Eid, entry.Sp)
		end = max(end, entry.Eid+1)
		//
		for _, e := range events[i] {
			if e.Atype.IsWrite() {
				loc := location{e.Ltype, e.Offset}
				writes[loc] = append(writes[loc], e.Eid)
			}
		}
	}
	//
	for i, entry := range entries {
		rws := make([]MemoryRWEntry, len(events[i]))
		//
		for j, e := range events[i] {
			eids := writes[location{e.Ltype, e.Offset}]
			//
			if e.Atype.IsWrite() {
				// Next write strictly after this one
				k := sort.Search(len(eids), func(n int) bool { return eids[n] > e.Eid })
				rws[j] = MemoryRWEntry{e, e.Eid, endOf(eids, k, end)}
			} else {
				// First write at or after this read
				k := sort.Search(len(eids), func(n int) bool { return eids[n] >= e.Eid })
				if k == 0 {
					return nil, fmt.Errorf("eid %d reads uninitialised %s location %d", e.Eid, e.Ltype, e.Offset)
				}
				//
				rws[j] = MemoryRWEntry{e, eids[k-1], endOf(eids, k, end)}
			}
		}
		//
		result[i] = EventTableEntryWithMemoryInfo{entry, rws}
	}
	//
	return result, nil
}

func endOf(eids []uint32, k int, end uint32) uint32 {
	if k < len(eids) {
		return eids[k]
	}
	//
	return end
}

// MemoryTableLookups determines the contents of the memory table implied by a
// given trace: one key for every live range opened by a write or an
// initialisation.
func MemoryTableLookups(entries []EventTableEntryWithMemoryInfo, init []MemoryTableEntry) []*uint256.Int {
	var (
		keys  []*uint256.Int
		first = make(map[location]uint32)
		end   = uint32(1)
	)
	//
	for _, entry := range entries {
		end = max(end, entry.Entry.Eid+1)
		//
		for _, rw := range entry.MemoryRWEntries {
			loc := location{rw.Entry.Ltype, rw.Entry.Offset}
			//
			if rw.Entry.Atype.IsWrite() {
				keys = append(keys, rw.Encode())
				//
				if _, ok := first[loc]; !ok {
					first[loc] = rw.Entry.Eid
				}
			}
		}
	}
	// Initial values remain live until the first write
	for _, e := range init {
		loc := location{e.Ltype, e.Offset}
		endEid, ok := first[loc]
		//
		if !ok {
			endEid = end
		}
		//
		keys = append(keys, EncodeMemoryLookup(0, endEid, e.Ltype, e.Offset, e.Vtype.IsI32(), e.Value))
	}
	//
	return keys
}

// InstructionTableLookups determines the (deduplicated) instruction table keys
// executed by a given trace.
func InstructionTableLookups(entries []EventTableEntryWithMemoryInfo) []*uint256.Int {
	var (
		keys []*uint256.Int
		seen = make(map[uint256.Int]bool)
	)
	//
	for _, entry := range entries {
		key := entry.Entry.Inst().Encode()
		//
		if !seen[*key] {
			seen[*key] = true
			keys = append(keys, key)
		}
	}
	//
	return keys
}
