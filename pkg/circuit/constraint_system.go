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
package circuit

import (
	"fmt"
	"slices"
)

// TableId identifies an externally maintained lookup table (e.g. the memory
// table or the public input table).
type TableId uint

// Gate is a named set of expressions, each of which must vanish on every row of
// an assignment for which it is well-defined.  Gates are typically guarded by a
// selector expression which is folded into each constraint.
type Gate struct {
	// Handle identifies this gate in reports.
	Handle string
	// Constraints which must all evaluate to zero.
	Constraints []Expr
}

// RangeCheck restricts all values of a given expression to be within the range
// [0..2^n) for some bitwidth n.
type RangeCheck struct {
	// Handle identifies this check in reports.
	Handle string
	// Expression whose values are being constrained.
	Expr Expr
	// The number of bits permitted.  For example, with a bitwidth of 4, the
	// maximum permitted value is 15.
	Bitwidth uint
}

// Lookup requires that the value of a given expression on every row is a member
// of a given table.  Since every table contains zero, a lookup whose expression
// is multiplied by a disabled selector is trivially satisfied.
type Lookup struct {
	// Handle identifies this lookup in reports.
	Handle string
	// Table being looked up into.
	Table TableId
	// Expression being looked up.
	Expr Expr
}

// ConstraintSystem records the columns of a circuit along with the gates, range
// checks and lookups registered against them.  A constraint system is built
// once, sequentially, and is immutable thereafter.
type ConstraintSystem struct {
	columns []Column
	gates   []Gate
	ranges  []RangeCheck
	lookups []Lookup
	tables  map[TableId]string
}

// NewConstraintSystem constructs an empty constraint system.
func NewConstraintSystem() *ConstraintSystem {
	return &ConstraintSystem{tables: make(map[TableId]string)}
}

// AdviceColumn allocates a fresh advice column with the given name.
func (p *ConstraintSystem) AdviceColumn(name string) Column {
	return p.newColumn(name, ADVICE)
}

// FixedColumn allocates a fresh fixed column with the given name.
func (p *ConstraintSystem) FixedColumn(name string) Column {
	return p.newColumn(name, FIXED)
}

func (p *ConstraintSystem) newColumn(name string, kind ColumnKind) Column {
	if _, ok := p.Column(name); ok {
		panic(fmt.Sprintf("duplicate column \"%s\"", name))
	}
	//
	col := Column{uint(len(p.columns)), kind, name}
	p.columns = append(p.columns, col)
	//
	return col
}

// DeclareTable associates a name with a given table identifier.  Declaring the
// same identifier twice with different names is an error.
func (p *ConstraintSystem) DeclareTable(id TableId, name string) {
	if n, ok := p.tables[id]; ok && n != name {
		panic(fmt.Sprintf("table %d already declared as \"%s\"", id, n))
	}
	//
	p.tables[id] = name
}

// TableName returns the name of a declared table.
func (p *ConstraintSystem) TableName(id TableId) string {
	if n, ok := p.tables[id]; ok {
		return n
	}
	//
	return fmt.Sprintf("table#%d", id)
}

// CreateGate registers one or more expressions which must vanish on every row.
func (p *ConstraintSystem) CreateGate(handle string, constraints ...Expr) {
	if len(constraints) == 0 {
		panic(fmt.Sprintf("gate \"%s\" has no constraints", handle))
	}
	//
	p.gates = append(p.gates, Gate{handle, constraints})
}

// RangeCheck registers a range constraint on a given expression.
func (p *ConstraintSystem) RangeCheck(handle string, expr Expr, bitwidth uint) {
	p.ranges = append(p.ranges, RangeCheck{handle, expr, bitwidth})
}

// Lookup registers a lookup of a given expression into a given table.
func (p *ConstraintSystem) Lookup(handle string, table TableId, expr Expr) {
	if _, ok := p.tables[table]; !ok {
		panic(fmt.Sprintf("lookup \"%s\" into undeclared table %d", handle, table))
	}
	//
	p.lookups = append(p.lookups, Lookup{handle, table, expr})
}

// Column returns the column with the given name (if it exists).
func (p *ConstraintSystem) Column(name string) (Column, bool) {
	for _, col := range p.columns {
		if col.Name == name {
			return col, true
		}
	}
	//
	return Column{}, false
}

// Columns returns all columns of this constraint system.
func (p *ConstraintSystem) Columns() []Column {
	return slices.Clone(p.columns)
}

// Gates returns all gates of this constraint system.
func (p *ConstraintSystem) Gates() []Gate {
	return slices.Clone(p.gates)
}

// RangeChecks returns all range checks of this constraint system.
func (p *ConstraintSystem) RangeChecks() []RangeCheck {
	return slices.Clone(p.ranges)
}

// Lookups returns all lookups of this constraint system.
func (p *ConstraintSystem) Lookups() []Lookup {
	return slices.Clone(p.lookups)
}

// MaxDegree returns the largest degree of any gate constraint or lookup
// expression.
func (p *ConstraintSystem) MaxDegree() uint {
	var degree uint
	//
	for _, gate := range p.gates {
		for _, c := range gate.Constraints {
			degree = max(degree, c.Degree())
		}
	}
	//
	for _, lookup := range p.lookups {
		degree = max(degree, lookup.Expr.Degree())
	}
	//
	return degree
}
