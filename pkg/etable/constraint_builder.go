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
	"github.com/consensys/go-zkwasm/pkg/circuit"
)

// ConstraintBuilder accumulates the gates and lookups of a single opcode
// configuration, such that they can be guarded by the opcode's enable
// expression when registered.
type ConstraintBuilder struct {
	gates   []circuit.Gate
	lookups []circuit.Lookup
}

// NewConstraintBuilder constructs an empty builder.
func NewConstraintBuilder() *ConstraintBuilder {
	return &ConstraintBuilder{}
}

// Push one or more constraints under a given name.
func (p *ConstraintBuilder) Push(name string, constraints ...circuit.Expr) {
	p.gates = append(p.gates, circuit.Gate{Handle: name, Constraints: constraints})
}

// Lookup registers a lookup into an external table.
func (p *ConstraintBuilder) Lookup(table circuit.TableId, name string, expr circuit.Expr) {
	p.lookups = append(p.lookups, circuit.Lookup{Handle: name, Table: table, Expr: expr})
}

// Finalize registers everything accumulated so far with a constraint system,
// multiplying every constraint and lookup expression by enable.
func (p *ConstraintBuilder) Finalize(cs *circuit.ConstraintSystem, enable circuit.Expr) {
	for _, gate := range p.gates {
		constraints := make([]circuit.Expr, len(gate.Constraints))
		//
		for i, c := range gate.Constraints {
			constraints[i] = circuit.Product(enable, c)
		}
		//
		cs.CreateGate(gate.Handle, constraints...)
	}
	//
	for _, lookup := range p.lookups {
		cs.Lookup(lookup.Handle, lookup.Table, circuit.Product(enable, lookup.Expr))
	}
	//
	p.gates = nil
	p.lookups = nil
}
