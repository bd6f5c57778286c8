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
package op

import (
	"github.com/consensys/go-zkwasm/pkg/circuit"
	"github.com/consensys/go-zkwasm/pkg/etable"
	"github.com/consensys/go-zkwasm/pkg/util"
)

// lookupCell is implemented by the memory read and write cells.
type lookupCell interface {
	Expr() circuit.Expr
}

// lookupSlot returns the expression of the i-th memory lookup of an opcode.
func lookupSlot(item int, cells ...lookupCell) util.Option[circuit.Expr] {
	if item < len(cells) {
		return util.Some(cells[item].Expr())
	}
	//
	return util.None[circuit.Expr]()
}

// i32Only constrains a u64 cell to 32 bits whenever isI32 is set.
func i32Only(isI32 etable.BitCell, value etable.U64Cell) circuit.Expr {
	return circuit.Product(isI32.Expr(), value.HighNibblesZero(8))
}

// oneHot constrains a set of bit cells such that exactly one is set.
func oneHot(bits ...etable.BitCell) circuit.Expr {
	var terms = make([]circuit.Expr, len(bits))
	//
	for i, b := range bits {
		terms[i] = b.Expr()
	}
	//
	return circuit.Sub(circuit.Sum(terms...), circuit.Const(1))
}

// selector returns the index of the set bit from a one-hot set of bits.
func selector(bits ...etable.BitCell) circuit.Expr {
	var terms = make([]circuit.Expr, len(bits))
	//
	for i, b := range bits {
		terms[i] = circuit.Scale(b.Expr(), uint64(i))
	}
	//
	return circuit.Sum(terms...)
}

// modulus returns 2^32 for i32 values, and 2^64 otherwise.
func modulus(isI32 etable.BitCell) circuit.Expr {
	return circuit.Sum(
		circuit.ShiftLeft(isI32.Expr(), 32),
		circuit.ShiftLeft(circuit.Sub(circuit.Const(1), isI32.Expr()), 64))
}
