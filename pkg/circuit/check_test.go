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
	"testing"

	"github.com/consensys/go-zkwasm/pkg/util/field"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTable TableId = 7

func newTestSystem() (*ConstraintSystem, Column, Column) {
	cs := NewConstraintSystem()
	a := cs.AdviceColumn("A")
	b := cs.AdviceColumn("B")
	//
	return cs, a, b
}

func assignColumn(t *testing.T, asg *Assignment, col Column, values ...uint64) {
	for i, v := range values {
		require.NoError(t, asg.AssignAdvice(col, i, field.Uint64(v)))
	}
}

func TestCheck_GateHolds(t *testing.T) {
	cs, a, b := newTestSystem()
	// B(k) == A(k) + A(k+1)
	cs.CreateGate("sum", Sub(b.Query(0), Sum(a.Query(0), a.Query(1))))
	//
	asg := NewAssignment(cs, 4)
	assignColumn(t, asg, a, 1, 2, 3, 4)
	assignColumn(t, asg, b, 3, 5, 7, 100)
	// Last row is undefined for the gate, hence ignored.
	assert.Empty(t, Check(cs, asg))
}

func TestCheck_GateFails(t *testing.T) {
	cs, a, b := newTestSystem()
	cs.CreateGate("eq", Sub(a.Query(0), b.Query(0)))
	//
	asg := NewAssignment(cs, 3)
	assignColumn(t, asg, a, 1, 2, 3)
	assignColumn(t, asg, b, 1, 2, 4)
	//
	failures := Check(cs, asg)
	require.Len(t, failures, 1)
	//
	f, ok := failures[0].(*GateFailure)
	require.True(t, ok)
	assert.Equal(t, "eq", f.Handle)
	assert.Equal(t, uint(2), f.Row)
}

func TestCheck_RangeCheck(t *testing.T) {
	tests := []struct {
		name   string
		values []uint64
		fails  bool
	}{
		{"in range", []uint64{0, 7, 15}, false},
		{"out of range", []uint64{0, 16, 3}, true},
	}
	//
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs, a, _ := newTestSystem()
			cs.RangeCheck("u4", a.Query(0), 4)
			//
			asg := NewAssignment(cs, uint(len(tt.values)))
			assignColumn(t, asg, a, tt.values...)
			//
			assert.Equal(t, tt.fails, len(Check(cs, asg)) != 0)
		})
	}
}

func TestCheck_LookupIncludesZero(t *testing.T) {
	cs, a, b := newTestSystem()
	cs.DeclareTable(testTable, "test")
	cs.Lookup("lookup", testTable, Product(a.Query(0), b.Query(0)))
	//
	asg := NewAssignment(cs, 3)
	assignColumn(t, asg, a, 1, 0, 1)
	assignColumn(t, asg, b, 5, 99, 6)
	// Table never set, so only zero present
	assert.Len(t, Check(cs, asg), 1)
	//
	asg.SetTable(testTable, []field.Element{field.Uint64(5), field.Uint64(6)})
	assert.Empty(t, Check(cs, asg))
	// Selected value missing
	require.NoError(t, asg.AssignAdvice(b, 2, field.Uint64(7)))
	//
	failures := Check(cs, asg)
	require.Len(t, failures, 1)
	assert.Equal(t, uint(2), failures[0].(*LookupFailure).Row)
}

func TestAssignment_OutOfBounds(t *testing.T) {
	cs, a, _ := newTestSystem()
	sel := cs.FixedColumn("SEL")
	asg := NewAssignment(cs, 2)
	//
	assert.Error(t, asg.AssignAdvice(a, 2, field.One()))
	assert.Error(t, asg.AssignAdvice(a, -1, field.One()))
	assert.Error(t, asg.AssignAdvice(sel, 0, field.One()))
	assert.NoError(t, asg.AssignFixed(sel, 1, field.One()))
}

func TestExpr_Simplification(t *testing.T) {
	cs, a, b := newTestSystem()
	_ = cs
	//
	assert.Equal(t, "A", Sum(Const(0), a.Query(0)).String())
	assert.Equal(t, "0", Product(Const(0), a.Query(0)).String())
	assert.Equal(t, "(* A (shift B 16))", Product(Const(1), a.Query(0), b.Query(16)).String())
	assert.Equal(t, uint(2), Product(a.Query(0), Sum(b.Query(0), Const(3)), Const(4)).Degree())
}

func TestExpr_Eval(t *testing.T) {
	cs, a, b := newTestSystem()
	asg := NewAssignment(cs, 2)
	assignColumn(t, asg, a, 3, 4)
	assignColumn(t, asg, b, 10, 20)
	// (A(0) * B(1)) - 2^4
	e := Sub(Product(a.Query(0), b.Query(1)), TwoPowN(4))
	val, err := e.EvalAt(0, asg)
	require.NoError(t, err)
	assert.Equal(t, field.Uint64(44), val)
	// Row one reads out of bounds
	_, err = e.EvalAt(1, asg)
	assert.Error(t, err)
}
