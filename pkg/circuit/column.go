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

import "fmt"

// ColumnKind distinguishes columns whose values are supplied by the prover
// (advice) from those fixed as part of the circuit itself.
type ColumnKind uint8

const (
	// ADVICE columns hold witness values supplied per execution trace.
	ADVICE ColumnKind = iota
	// FIXED columns hold values determined by the circuit shape alone (e.g.
	// selectors).
	FIXED
)

func (k ColumnKind) String() string {
	switch k {
	case ADVICE:
		return "advice"
	case FIXED:
		return "fixed"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// Column is an opaque handle to a circuit-wide bank of cells shared across all
// rows.  Columns are created by a constraint system and identified by their
// index within it.
type Column struct {
	// Index of this column within its enclosing constraint system.
	Index uint
	// Kind of this column
	Kind ColumnKind
	// Name of this column, used only for reporting.
	Name string
}

// Query returns an expression reading this column at the given rotation
// relative to the current row.
func (c Column) Query(rot int) Expr {
	return &ColumnAccess{c, rot}
}

func (c Column) String() string {
	return c.Name
}
