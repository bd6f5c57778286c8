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
	"errors"
	"fmt"

	"github.com/consensys/go-zkwasm/pkg/circuit"
	"github.com/consensys/go-zkwasm/pkg/specs"
	"github.com/consensys/go-zkwasm/pkg/util"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrEmptyTrace is returned when assigning a trace without any steps.
var ErrEmptyTrace = errors.New("empty execution trace")

// ErrUnsupportedOpcode is returned when a trace contains a step whose opcode
// class was not compiled into the event table.
var ErrUnsupportedOpcode = errors.New("unsupported opcode class")

// EventTable is the configured event table: the common columns together with
// one configuration per supported opcode class.
type EventTable struct {
	common   *CommonConfig
	configs  []OpcodeConfig
	usage    []Usage
	index    map[specs.OpcodeClassPlain]int
	capacity uint
}

// Configure the event table for a given number of steps, with one opcode
// configuration per builder.  Builders are assigned dispatch bits in the order
// given.
func Configure(cs *circuit.ConstraintSystem, capacity uint, builders []OpcodeConfigBuilder) *EventTable {
	if len(builders) > MaxOpcodes {
		panic(fmt.Sprintf("too many opcode configurations (%d > %d)", len(builders), MaxOpcodes))
	}
	//
	cs.DeclareTable(MemoryTableKey, "mtable")
	cs.DeclareTable(JumpTableKey, "jtable")
	cs.DeclareTable(InstructionTableKey, "itable")
	//
	var (
		common = newCommonConfig(cs)
		base   = NewCellAllocator(common)
		table  = &EventTable{common: common, index: make(map[specs.OpcodeClassPlain]int), capacity: capacity}
	)
	//
	common.configure(cs)
	//
	for i, builder := range builders {
		var (
			allocator = base.Clone()
			enable    = circuit.Product(common.StepSel.Query(0), common.OpcodeBit(i))
			config    = builder.Configure(cs, common, allocator, enable)
			class     = config.OpcodeClass()
		)
		//
		if _, ok := table.index[class]; ok {
			panic(fmt.Sprintf("duplicate configuration for opcode class %s", class))
		}
		//
		log.Debugf("configured %s opcode (%s)", class, allocator.Usage())
		//
		table.index[class] = i
		table.configs = append(table.configs, config)
		table.usage = append(table.usage, allocator.Usage())
	}
	//
	table.configureDispatch(cs)
	table.configureTransitions(cs)
	table.configureLookups(cs)
	//
	return table
}

// Common returns the columns shared by all opcode configurations.
func (p *EventTable) Common() *CommonConfig { return p.common }

// Configs returns the opcode configurations, in dispatch order.
func (p *EventTable) Configs() []OpcodeConfig { return p.configs }

// Usage returns the cells allocated by each opcode configuration, in dispatch
// order.
func (p *EventTable) Usage() []Usage { return p.usage }

// Capacity returns the maximum number of steps this table can hold.
func (p *EventTable) Capacity() uint { return p.capacity }

// Height returns the number of rows required by this table.  This includes one
// padding step beyond capacity, such that the final step can refer to its
// successor.
func (p *EventTable) Height() uint { return (p.capacity + 1) * StepSize }

// Config returns the configuration responsible for a given opcode class.
func (p *EventTable) Config(class specs.OpcodeClassPlain) (OpcodeConfig, bool) {
	if i, ok := p.index[class]; ok {
		return p.configs[i], true
	}
	//
	return nil, false
}

// Exactly one dispatch bit is set on each enabled step, none on disabled
// steps, and never a bit without a configuration.  Once disabled, all
// subsequent steps are disabled, including the padding step.
func (p *EventTable) configureDispatch(cs *circuit.ConstraintSystem) {
	var (
		common   = p.common
		stepSel  = common.StepSel.Query(0)
		firstSel = common.FirstSel.Query(0)
		one      = circuit.Const(1)
		bits     = make([]circuit.Expr, len(p.configs))
		dispatch []circuit.Expr
	)
	//
	for i := range p.configs {
		bits[i] = common.OpcodeBit(i)
	}
	//
	dispatch = append(dispatch, circuit.Product(stepSel, circuit.Sub(circuit.Sum(bits...), common.Enable())))
	//
	for i := len(p.configs); i < StepSize; i++ {
		dispatch = append(dispatch, circuit.Product(stepSel, common.OpcodeBit(i)))
	}
	//
	cs.CreateGate("opcode dispatch", dispatch...)
	cs.CreateGate("enable continuity",
		circuit.Product(stepSel, circuit.Sub(one, common.Enable()), common.NextEnable()))
	// The step following the last selected step is padding.
	cs.CreateGate("padding step",
		circuit.Product(stepSel, circuit.Sub(one, common.StepSel.Query(StepSize)), common.NextEnable()))
	cs.CreateGate("first step",
		circuit.Product(firstSel, circuit.Sub(common.Enable(), one)),
		circuit.Product(firstSel, circuit.Sub(common.Eid(), one)),
		circuit.Product(firstSel, common.InputIndex()))
}

func (p *EventTable) configureTransitions(cs *circuit.ConstraintSystem) {
	var (
		common = p.common
		one    = circuit.Const(1)
		guard  = circuit.Product(common.StepSel.Query(0), common.Enable(), common.NextEnable())
		last   = circuit.Product(common.StepSel.Query(0), common.Enable(), circuit.Sub(one, common.NextEnable()))
		zero   = func() circuit.Expr { return circuit.Const(0) }
	)
	// Value of the active configuration's override, or the given default.
	override := func(fn func(OpcodeConfig) util.Option[circuit.Expr], def func() circuit.Expr) circuit.Expr {
		terms := make([]circuit.Expr, len(p.configs))
		//
		for i, config := range p.configs {
			terms[i] = circuit.Product(common.OpcodeBit(i), fn(config).UnwrapOr(def()))
		}
		//
		return circuit.Sum(terms...)
	}
	//
	var (
		mops = override(OpcodeConfig.Mops, zero)
		jops = override(OpcodeConfig.Jops, zero)
		// next state computed from the current one
		next = []struct {
			rot  int
			expr circuit.Expr
		}{
			{StateEid, circuit.Sum(common.Eid(), one)},
			{StateMoid, override(func(c OpcodeConfig) util.Option[circuit.Expr] { return c.NextMoid(common) },
				common.Moid)},
			{StateFid, override(func(c OpcodeConfig) util.Option[circuit.Expr] { return c.NextFid(common) },
				common.Fid)},
			{StateIid, override(func(c OpcodeConfig) util.Option[circuit.Expr] { return c.NextIid(common) },
				common.Iid)},
			{StateSp, circuit.Sum(common.Sp(), override(OpcodeConfig.SpDiff, zero))},
			{StateLastJumpEid, override(func(c OpcodeConfig) util.Option[circuit.Expr] {
				return c.NextLastJumpEid(common)
			}, common.LastJumpEid)},
			{StateInputIndex, circuit.Sum(common.InputIndex(), override(OpcodeConfig.InputIndexIncrease, zero))},
			{StateRestMops, circuit.Sub(common.RestMops(), mops)},
			{StateRestJops, circuit.Sub(common.RestJops(), jops)},
		}
		constraints = make([]circuit.Expr, len(next))
	)
	//
	for i, n := range next {
		constraints[i] = circuit.Product(guard, circuit.Sub(common.Next(n.rot), n.expr))
	}
	//
	cs.CreateGate("state transition", constraints...)
	cs.CreateGate("last step",
		circuit.Product(last, circuit.Sub(common.RestMops(), mops)),
		circuit.Product(last, circuit.Sub(common.RestJops(), jops)))
}

func (p *EventTable) configureLookups(cs *circuit.ConstraintSystem) {
	var (
		common   = p.common
		stepSel  = common.StepSel.Query(0)
		bindings []circuit.Expr
	)
	// instruction table
	for i, config := range p.configs {
		def := EncodeInstruction(common.Moid(), common.Fid(), common.Iid(), config.Opcode(common))
		expr := config.ITableLookup(common).UnwrapOr(def)
		bindings = append(bindings, p.bind(i, common.Aux, AuxITableLookup, expr)...)
	}
	//
	cs.Lookup("itable lookup", InstructionTableKey, circuit.Product(stepSel, common.Enable(), common.ITableLookup()))
	// memory table
	for slot := range MTableLookupSlots {
		var selectors []circuit.Expr
		//
		for i, config := range p.configs {
			if lookup := config.MTableLookup(slot); lookup.HasValue() {
				selectors = append(selectors, common.OpcodeBit(i))
				bindings = append(bindings, p.bind(i, common.Aux, AuxMTableLookupStart+slot, lookup.Unwrap())...)
			}
		}
		//
		if len(selectors) > 0 {
			cs.Lookup(fmt.Sprintf("mtable lookup %d", slot), MemoryTableKey,
				circuit.Product(stepSel, circuit.Sum(selectors...), common.MTableLookup(slot)))
		}
	}
	// jump table
	var selectors []circuit.Expr
	//
	for i, config := range p.configs {
		if lookup := config.JTableLookup(); lookup.HasValue() {
			selectors = append(selectors, common.OpcodeBit(i))
			bindings = append(bindings, p.bind(i, common.Aux, AuxJTableLookup, lookup.Unwrap())...)
		}
	}
	//
	if len(selectors) > 0 {
		cs.Lookup("jtable lookup", JumpTableKey,
			circuit.Product(stepSel, circuit.Sum(selectors...), common.JTableLookup()))
	}
	//
	if len(bindings) > 0 {
		cs.CreateGate("lookup binding", bindings...)
	}
}

// bind a lookup slot to the expression declared by the i-th configuration.
// Nothing is required when the expression reads the slot itself.
func (p *EventTable) bind(i int, col circuit.Column, rot int, expr circuit.Expr) []circuit.Expr {
	if access, ok := expr.(*circuit.ColumnAccess); ok && access.Column.Index == col.Index && access.Rotation == rot {
		return nil
	}
	//
	enable := circuit.Product(p.common.StepSel.Query(0), p.common.OpcodeBit(i))
	//
	return []circuit.Expr{circuit.Product(enable, circuit.Sub(col.Query(rot), expr))}
}

// Assign the witness of the event table for a given trace, using up to
// parallelism goroutines.  The first error encountered aborts the whole pass.
func (p *EventTable) Assign(asg *circuit.Assignment, entries []specs.EventTableEntryWithMemoryInfo,
	parallelism uint) error {
	var stats = util.NewPerfStats()
	//
	if len(entries) == 0 {
		return ErrEmptyTrace
	} else if uint(len(entries)) > p.capacity {
		return fmt.Errorf("trace of %d steps exceeds capacity of %d steps", len(entries), p.capacity)
	} else if asg.Height() < p.Height() {
		return fmt.Errorf("assignment height %d below required height %d", asg.Height(), p.Height())
	}
	//
	if err := p.common.assignFixed(asg, p.capacity); err != nil {
		return err
	}
	//
	statuses, err := p.prepare(entries)
	if err != nil {
		return err
	}
	//
	var (
		group errgroup.Group
		n     = len(statuses)
		batch = (n + int(max(parallelism, 1)) - 1) / int(max(parallelism, 1))
	)
	//
	group.SetLimit(int(max(parallelism, 1)))
	//
	for start := 0; start < n; start += batch {
		end := min(start+batch, n)
		//
		group.Go(func() error {
			for i := start; i < end; i++ {
				if err := p.assignStep(asg, i, &statuses[i]); err != nil {
					return err
				}
			}
			//
			return nil
		})
	}
	//
	if err := group.Wait(); err != nil {
		return err
	}
	//
	stats.Log(fmt.Sprintf("Assigning %d/%d event table steps", n, p.capacity))
	//
	return nil
}

// prepare the status of every step.  This is a sequential pass since the
// public input cursor and the remaining memory/jump operations depend upon all
// preceding steps.
func (p *EventTable) prepare(entries []specs.EventTableEntryWithMemoryInfo) ([]StepStatus, error) {
	var (
		statuses   = make([]StepStatus, len(entries))
		configs    = make([]OpcodeConfig, len(entries))
		mops, jops uint64
		input      uint64
	)
	//
	for i := range entries {
		entry := &entries[i].Entry
		//
		config, ok := p.Config(entry.StepInfo.Class())
		if !ok {
			return nil, fmt.Errorf("step %d (eid %d): %w %s", i, entry.Eid, ErrUnsupportedOpcode,
				entry.StepInfo.Class())
		}
		//
		configs[i] = config
		mops += uint64(config.MemoryWritingOps(entry))
		jops += uint64(config.JumpOps(entry))
	}
	//
	for i := range entries {
		entry := &entries[i].Entry
		statuses[i] = StepStatus{Current: &entries[i], InputIndex: input, RestMops: mops, RestJops: jops}
		//
		if i+1 < len(entries) {
			statuses[i].Next = &entries[i+1]
		}
		//
		if configs[i].IsHostPublicInput(entry) {
			input++
		}
		//
		mops -= uint64(configs[i].MemoryWritingOps(entry))
		jops -= uint64(configs[i].JumpOps(entry))
	}
	//
	return statuses, nil
}

func (p *EventTable) assignStep(asg *circuit.Assignment, step int, status *StepStatus) error {
	var (
		ctx   = NewContext(asg, step)
		entry = status.Current
		index = p.index[entry.Entry.StepInfo.Class()]
	)
	//
	if err := p.common.assign(ctx, index, status); err != nil {
		return fmt.Errorf("step %d (eid %d): %w", step, entry.Entry.Eid, err)
	} else if err := p.configs[index].Assign(ctx, status, entry); err != nil {
		return fmt.Errorf("step %d (eid %d, %s): %w", step, entry.Entry.Eid, entry.Entry.StepInfo.Kind(), err)
	}
	//
	return nil
}
