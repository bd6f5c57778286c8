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

	"github.com/consensys/go-zkwasm/pkg/util/field"
)

// Assignment holds concrete values for every column of a constraint system over
// a fixed number of rows, along with the contents of any external lookup
// tables.  Cell storage is allocated up front, hence writes to disjoint rows can
// safely proceed concurrently.  Table contents must be set before checking.
type Assignment struct {
	height  uint
	columns []Column
	data    [][]field.Element
	tables  map[TableId]map[field.Element]struct{}
}

// NewAssignment constructs an all-zero assignment of the given height for the
// columns of a given constraint system.
func NewAssignment(cs *ConstraintSystem, height uint) *Assignment {
	var (
		columns = cs.Columns()
		data    = make([][]field.Element, len(columns))
	)
	//
	for i := range data {
		data[i] = make([]field.Element, height)
	}
	//
	return &Assignment{height, columns, data, make(map[TableId]map[field.Element]struct{})}
}

// Height returns the number of rows in this assignment.
func (p *Assignment) Height() uint {
	return p.height
}

// AssignAdvice writes a value into an advice column on a given row.
func (p *Assignment) AssignAdvice(col Column, row int, val field.Element) error {
	return p.assign(col, ADVICE, row, val)
}

// AssignFixed writes a value into a fixed column on a given row.
func (p *Assignment) AssignFixed(col Column, row int, val field.Element) error {
	return p.assign(col, FIXED, row, val)
}

func (p *Assignment) assign(col Column, kind ColumnKind, row int, val field.Element) error {
	if col.Index >= uint(len(p.columns)) || p.columns[col.Index] != col {
		return fmt.Errorf("unknown column %s", col.Name)
	} else if col.Kind != kind {
		return fmt.Errorf("cannot assign %s column %s as %s", col.Kind, col.Name, kind)
	} else if row < 0 || row >= int(p.height) {
		return fmt.Errorf("column %s access out-of-bounds (row %d of %d)", col.Name, row, p.height)
	}
	//
	p.data[col.Index][row] = val
	//
	return nil
}

// Get reads the value of a given column on a given row.
func (p *Assignment) Get(col Column, row int) (field.Element, error) {
	if col.Index >= uint(len(p.columns)) {
		return field.Zero(), fmt.Errorf("unknown column %s", col.Name)
	} else if row < 0 || row >= int(p.height) {
		return field.Zero(), fmt.Errorf("column %s access out-of-bounds (row %d of %d)", col.Name, row, p.height)
	}
	//
	return p.data[col.Index][row], nil
}

// SetTable sets the contents of an external lookup table.  The zero element is
// always included.
func (p *Assignment) SetTable(id TableId, values []field.Element) {
	table := make(map[field.Element]struct{}, len(values)+1)
	table[field.Zero()] = struct{}{}
	//
	for _, v := range values {
		table[v] = struct{}{}
	}
	//
	p.tables[id] = table
}

// AddToTable extends the contents of an external lookup table.
func (p *Assignment) AddToTable(id TableId, values ...field.Element) {
	table, ok := p.tables[id]
	if !ok {
		p.SetTable(id, values)
		return
	}
	//
	for _, v := range values {
		table[v] = struct{}{}
	}
}

// TableContains checks whether a given value is a member of a given table.  A
// table which has never been set contains only zero.
func (p *Assignment) TableContains(id TableId, val field.Element) bool {
	if table, ok := p.tables[id]; ok {
		_, found := table[val]
		return found
	}
	//
	return val.IsZero()
}
