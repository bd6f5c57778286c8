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
	"github.com/consensys/go-zkwasm/pkg/util"
)

// OpcodeConfig is the contract every opcode configuration fulfils.  Besides its
// own gates (registered when configured), a configuration describes how the
// execution state changes across a step of its kind, and which external
// lookups the step performs.  Optional methods return an empty option to
// accept the default behaviour; these defaults are provided by embedding
// BaseConfig.
type OpcodeConfig interface {
	// Opcode returns the expression of the encoded opcode executed by this
	// step, as it appears in the instruction table.
	Opcode(common *CommonConfig) circuit.Expr
	// OpcodeClass identifies the instruction family this configuration
	// handles.
	OpcodeClass() specs.OpcodeClassPlain
	// Assign the witness of this configuration for a given entry.
	Assign(ctx *Context, status *StepStatus, entry *specs.EventTableEntryWithMemoryInfo) error
	// SpDiff is the change in stack pointer (default 0).
	SpDiff() util.Option[circuit.Expr]
	// Jops is the number of jumps made (default 0).
	Jops() util.Option[circuit.Expr]
	// Mops is the number of memory writes made (default 0).
	Mops() util.Option[circuit.Expr]
	// InputIndexIncrease is the number of public inputs consumed (default 0).
	InputIndexIncrease() util.Option[circuit.Expr]
	// NextLastJumpEid overrides the last jump eid of the next step (default
	// unchanged).
	NextLastJumpEid(common *CommonConfig) util.Option[circuit.Expr]
	// NextMoid overrides the module instance id of the next step (default
	// unchanged).
	NextMoid(common *CommonConfig) util.Option[circuit.Expr]
	// NextFid overrides the function id of the next step (default unchanged).
	NextFid(common *CommonConfig) util.Option[circuit.Expr]
	// NextIid overrides the instruction id of the next step (default iid+1).
	NextIid(common *CommonConfig) util.Option[circuit.Expr]
	// MTableLookup returns the expression of the i-th memory table lookup, if
	// this step performs one.
	MTableLookup(item int) util.Option[circuit.Expr]
	// JTableLookup returns the expression of the jump table lookup, if this
	// step performs one.
	JTableLookup() util.Option[circuit.Expr]
	// ITableLookup overrides the instruction table lookup (default derived
	// from the current moid, fid, iid and opcode).
	ITableLookup(common *CommonConfig) util.Option[circuit.Expr]
	// MemoryWritingOps counts the memory writes of a given entry.  This must
	// agree with Mops.
	MemoryWritingOps(entry *specs.EventTableEntry) uint32
	// JumpOps counts the jumps of a given entry.  This must agree with Jops.
	JumpOps(entry *specs.EventTableEntry) uint32
	// IsHostPublicInput determines whether a given entry consumes a public
	// input.  This must agree with InputIndexIncrease.
	IsHostPublicInput(entry *specs.EventTableEntry) bool
}

// OpcodeConfigBuilder constructs an opcode configuration.  A builder receives
// its own allocator, along with the enable expression which is non-zero only on
// steps of its kind.  Builders register their gates via a ConstraintBuilder
// finalized against enable.
type OpcodeConfigBuilder interface {
	Configure(cs *circuit.ConstraintSystem, common *CommonConfig, allocator *CellAllocator,
		enable circuit.Expr) OpcodeConfig
}

// BaseConfig provides the default behaviour of every optional method of
// OpcodeConfig.
type BaseConfig struct{}

// SpDiff implementation for OpcodeConfig interface.
func (BaseConfig) SpDiff() util.Option[circuit.Expr] { return util.None[circuit.Expr]() }

// Jops implementation for OpcodeConfig interface.
func (BaseConfig) Jops() util.Option[circuit.Expr] { return util.None[circuit.Expr]() }

// Mops implementation for OpcodeConfig interface.
func (BaseConfig) Mops() util.Option[circuit.Expr] { return util.None[circuit.Expr]() }

// InputIndexIncrease implementation for OpcodeConfig interface.
func (BaseConfig) InputIndexIncrease() util.Option[circuit.Expr] { return util.None[circuit.Expr]() }

// NextLastJumpEid implementation for OpcodeConfig interface.
func (BaseConfig) NextLastJumpEid(*CommonConfig) util.Option[circuit.Expr] {
	return util.None[circuit.Expr]()
}

// NextMoid implementation for OpcodeConfig interface.
func (BaseConfig) NextMoid(*CommonConfig) util.Option[circuit.Expr] { return util.None[circuit.Expr]() }

// NextFid implementation for OpcodeConfig interface.
func (BaseConfig) NextFid(*CommonConfig) util.Option[circuit.Expr] { return util.None[circuit.Expr]() }

// NextIid implementation for OpcodeConfig interface.  By default, execution
// falls through to the following instruction.
func (BaseConfig) NextIid(common *CommonConfig) util.Option[circuit.Expr] {
	return util.Some(circuit.Sum(common.Iid(), circuit.Const(1)))
}

// MTableLookup implementation for OpcodeConfig interface.
func (BaseConfig) MTableLookup(int) util.Option[circuit.Expr] { return util.None[circuit.Expr]() }

// JTableLookup implementation for OpcodeConfig interface.
func (BaseConfig) JTableLookup() util.Option[circuit.Expr] { return util.None[circuit.Expr]() }

// ITableLookup implementation for OpcodeConfig interface.
func (BaseConfig) ITableLookup(*CommonConfig) util.Option[circuit.Expr] {
	return util.None[circuit.Expr]()
}

// MemoryWritingOps implementation for OpcodeConfig interface.
func (BaseConfig) MemoryWritingOps(*specs.EventTableEntry) uint32 { return 0 }

// JumpOps implementation for OpcodeConfig interface.
func (BaseConfig) JumpOps(*specs.EventTableEntry) uint32 { return 0 }

// IsHostPublicInput implementation for OpcodeConfig interface.
func (BaseConfig) IsHostPublicInput(*specs.EventTableEntry) bool { return false }

// Expect extracts the step info of a given kind from an entry.  A mismatch
// indicates the trace was routed to the wrong configuration, or was produced
// for a different circuit, and is fatal.
func Expect[T specs.StepInfo](entry *specs.EventTableEntryWithMemoryInfo) T {
	step, ok := entry.Entry.StepInfo.(T)
	//
	if !ok {
		panic(fmt.Sprintf("unexpected %s step (eid %d)", entry.Entry.StepInfo.Kind(), entry.Entry.Eid))
	}
	//
	return step
}

// ExpectAccesses returns the memory accesses of an entry, which must number
// exactly n.
func ExpectAccesses(entry *specs.EventTableEntryWithMemoryInfo, n int) []specs.MemoryRWEntry {
	if len(entry.MemoryRWEntries) != n {
		panic(fmt.Sprintf("%s step (eid %d) has %d memory accesses, expected %d", entry.Entry.StepInfo.Kind(),
			entry.Entry.Eid, len(entry.MemoryRWEntries), n))
	}
	//
	return entry.MemoryRWEntries
}
