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
package zkwasm

import (
	"fmt"

	"github.com/consensys/go-zkwasm/pkg/circuit"
	"github.com/consensys/go-zkwasm/pkg/etable"
	"github.com/consensys/go-zkwasm/pkg/foreign/input"
	"github.com/consensys/go-zkwasm/pkg/specs"
	"github.com/consensys/go-zkwasm/pkg/util"
	"github.com/consensys/go-zkwasm/pkg/util/field"
	"github.com/holiman/uint256"
	log "github.com/sirupsen/logrus"
)

// Circuit is a configured event table circuit.
type Circuit struct {
	params Params
	cs     *circuit.ConstraintSystem
	table  *etable.EventTable
}

// NewCircuit configures a circuit with the given opcode configurations.
func NewCircuit(params Params, builders []etable.OpcodeConfigBuilder) *Circuit {
	var (
		stats = util.NewPerfStats()
		cs    = circuit.NewConstraintSystem()
		table = etable.Configure(cs, params.MaxSteps, builders)
	)
	//
	stats.Log("Configuring circuit")
	log.Debugf("circuit has %d columns, %d gates, %d range checks and %d lookups (max degree %d)",
		len(cs.Columns()), len(cs.Gates()), len(cs.RangeChecks()), len(cs.Lookups()), cs.MaxDegree())
	//
	return &Circuit{params, cs, table}
}

// ConstraintSystem returns the constraints of this circuit.
func (p *Circuit) ConstraintSystem() *circuit.ConstraintSystem { return p.cs }

// EventTable returns the event table of this circuit.
func (p *Circuit) EventTable() *etable.EventTable { return p.table }

// Params returns the parameters of this circuit.
func (p *Circuit) Params() Params { return p.params }

// Assign computes the witness of this circuit for a given trace, including
// the contents of the external tables it looks up into.
func (p *Circuit) Assign(trace *specs.Trace) (*circuit.Assignment, error) {
	entries, err := specs.WithMemoryInfo(trace.Entries, trace.MemoryInit)
	if err != nil {
		return nil, err
	}
	//
	asg := circuit.NewAssignment(p.cs, p.table.Height())
	//
	if err := p.table.Assign(asg, entries, p.params.Parallelism); err != nil {
		return nil, fmt.Errorf("event table: %w", err)
	}
	//
	jumps := make([]*uint256.Int, len(trace.JumpTable))
	for i, j := range trace.JumpTable {
		jumps[i] = j.Encode()
	}
	//
	asg.SetTable(etable.MemoryTableKey, elements(specs.MemoryTableLookups(entries, trace.MemoryInit)))
	asg.SetTable(etable.InstructionTableKey, elements(specs.InstructionTableLookups(entries)))
	asg.SetTable(etable.JumpTableKey, elements(jumps))
	asg.SetTable(input.TableKey, input.Table(trace.PublicInputs))
	//
	return asg, nil
}

// Check whether every constraint of this circuit holds for a given witness.
func (p *Circuit) Check(asg *circuit.Assignment) []circuit.Failure {
	var stats = util.NewPerfStats()
	//
	failures := circuit.Check(p.cs, asg)
	stats.Log("Checking constraints")
	//
	return failures
}

func elements(keys []*uint256.Int) []field.Element {
	var elems = make([]field.Element, len(keys))
	//
	for i, k := range keys {
		elems[i] = field.Uint256(k)
	}
	//
	return elems
}
