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
package input

import (
	"github.com/consensys/go-zkwasm/pkg/circuit"
	"github.com/consensys/go-zkwasm/pkg/util/field"
	"github.com/holiman/uint256"
)

// TableKey identifies the public input table.
const TableKey circuit.TableId = 16

// IndexShift is the position of the input index within an encoded public
// input.
const IndexShift = 64

// Encode a public input together with its position in the input sequence.
func Encode(index uint64, value uint64) *uint256.Int {
	var res = uint256.NewInt(index)
	//
	res.Lsh(res, IndexShift)
	//
	return res.Or(res, uint256.NewInt(value))
}

// EncodeExpr constructs the expression of an encoded public input.
func EncodeExpr(index circuit.Expr, value circuit.Expr) circuit.Expr {
	return circuit.Sum(circuit.ShiftLeft(index, IndexShift), value)
}

// Table returns the contents of the public input table for a given sequence of
// public inputs.
func Table(inputs []uint64) []field.Element {
	var table = make([]field.Element, len(inputs))
	//
	for i, v := range inputs {
		table[i] = field.Uint256(Encode(uint64(i), v))
	}
	//
	return table
}
