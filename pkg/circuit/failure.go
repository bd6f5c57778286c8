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

// Failure provides structural information about a constraint which does not
// hold on a given assignment.
type Failure interface {
	fmt.Stringer
	// Message provides a suitable error message
	Message() string
}

// GateFailure provides structural information about a failing gate.
type GateFailure struct {
	// Handle of the failing gate
	Handle string
	// Index of the failing constraint within the gate
	Index uint
	// Row on which the constraint failed
	Row uint
	// Constraint expression
	Constraint Expr
}

// Message provides a suitable error message
func (p *GateFailure) Message() string {
	return fmt.Sprintf("gate \"%s\" (constraint %d) does not hold (row %d)", p.Handle, p.Index, p.Row)
}

func (p *GateFailure) String() string {
	return p.Message()
}

// RangeFailure provides structural information about a failing range check.
type RangeFailure struct {
	// Handle of the failing range check
	Handle string
	// Row on which the check failed
	Row uint
	// Value which was out-of-range
	Value field.Element
	// Permitted bitwidth
	Bitwidth uint
}

// Message provides a suitable error message
func (p *RangeFailure) Message() string {
	return fmt.Sprintf("range check \"%s\" (u%d) does not hold (row %d, value %s)", p.Handle, p.Bitwidth,
		p.Row, p.Value.String())
}

func (p *RangeFailure) String() string {
	return p.Message()
}

// LookupFailure provides structural information about a failing lookup.
type LookupFailure struct {
	// Handle of the failing lookup
	Handle string
	// Table being looked up into
	Table string
	// Row on which the lookup failed
	Row uint
	// Value which was missing from the table
	Value field.Element
}

// Message provides a suitable error message
func (p *LookupFailure) Message() string {
	return fmt.Sprintf("lookup \"%s\" into %s does not hold (row %d, value %s)", p.Handle, p.Table, p.Row,
		p.Value.String())
}

func (p *LookupFailure) String() string {
	return p.Message()
}

// InternalFailure is a generic mechanism for reporting failures, particularly
// as arising from evaluation of a given expression.
type InternalFailure struct {
	// Handle of the failing constraint
	Handle string
	// Row on which the constraint failed
	Row uint
	// Error message
	Error string
}

// Message provides a suitable error message
func (p *InternalFailure) Message() string {
	return fmt.Sprintf("%s (row %d): %s", p.Handle, p.Row, p.Error)
}

func (p *InternalFailure) String() string {
	return p.Message()
}
