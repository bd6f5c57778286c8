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
	"math"

	"github.com/consensys/go-zkwasm/pkg/circuit"
	"github.com/consensys/go-zkwasm/pkg/specs"
)

// MemoryTableLookupReadCell proves that a given value was live at a memory
// location when read at the current execution id.
type MemoryTableLookupReadCell struct {
	startEid  Cell
	endEid    Cell
	startDiff CommonRangeCell
	endDiff   CommonRangeCell
	encode    MemoryTableLookupCell
}

// Assign the cells of this read, given the current execution id and the
// corresponding entry of the memory trace.
func (p MemoryTableLookupReadCell) Assign(ctx *Context, eid uint32, entry specs.MemoryRWEntry) error {
	if entry.Entry.Atype != specs.Read {
		return fmt.Errorf("expected memory read at eid %d, found %s", eid, entry.Entry.Atype)
	} else if entry.StartEid >= eid || eid > entry.EndEid {
		return fmt.Errorf("memory read at eid %d outside live range [%d..%d)", eid, entry.StartEid, entry.EndEid)
	}
	//
	startDiff, err := commonRange(eid - entry.StartEid - 1)
	if err != nil {
		return err
	}
	//
	endDiff, err := commonRange(entry.EndEid - eid)
	if err != nil {
		return err
	}
	//
	return AssignAll(
		func() error { return p.startEid.AssignUint64(ctx, uint64(entry.StartEid)) },
		func() error { return p.endEid.AssignUint64(ctx, uint64(entry.EndEid)) },
		func() error { return p.startDiff.Assign(ctx, startDiff) },
		func() error { return p.endDiff.Assign(ctx, endDiff) },
		func() error { return p.encode.Assign(ctx, entry.Encode()) },
	)
}

// Expr returns the encoded lookup key.
func (p MemoryTableLookupReadCell) Expr() circuit.Expr {
	return p.encode.Expr()
}

// MemoryTableLookupWriteCell proves that a given value is written to a memory
// location at the current execution id.
type MemoryTableLookupWriteCell struct {
	endEid  Cell
	endDiff CommonRangeCell
	encode  MemoryTableLookupCell
}

// Assign the cells of this write, given the current execution id and the
// corresponding entry of the memory trace.
func (p MemoryTableLookupWriteCell) Assign(ctx *Context, eid uint32, entry specs.MemoryRWEntry) error {
	if !entry.Entry.Atype.IsWrite() {
		return fmt.Errorf("expected memory write at eid %d, found %s", eid, entry.Entry.Atype)
	} else if entry.StartEid != eid || eid >= entry.EndEid {
		return fmt.Errorf("memory write at eid %d has invalid live range [%d..%d)", eid, entry.StartEid,
			entry.EndEid)
	}
	//
	endDiff, err := commonRange(entry.EndEid - eid - 1)
	if err != nil {
		return err
	}
	//
	return AssignAll(
		func() error { return p.endEid.AssignUint64(ctx, uint64(entry.EndEid)) },
		func() error { return p.endDiff.Assign(ctx, endDiff) },
		func() error { return p.encode.Assign(ctx, entry.Encode()) },
	)
}

// Expr returns the encoded lookup key.
func (p MemoryTableLookupWriteCell) Expr() circuit.Expr {
	return p.encode.Expr()
}

func commonRange(val uint32) (uint16, error) {
	if val > math.MaxUint16 {
		return 0, fmt.Errorf("execution id distance %d exceeds common range", val)
	}
	//
	return uint16(val), nil
}

// AssignAll runs each assignment in turn, stopping at the first error.
func AssignAll(fns ...func() error) error {
	for _, fn := range fns {
		if err := fn(); err != nil {
			return err
		}
	}
	//
	return nil
}
