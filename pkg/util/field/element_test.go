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
package field

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

func TestElement_Constructors(t *testing.T) {
	zero, one := Zero(), One()
	assert.True(t, zero.IsZero())
	assert.True(t, one.IsOne())
	assert.Equal(t, One(), Bool(true))
	assert.Equal(t, Zero(), Bool(false))
	assert.Equal(t, Uint64(1<<40), TwoPowN(40))
	assert.Equal(t, Uint64(12345), BigInt(big.NewInt(12345)))
	assert.Panics(t, func() { BigInt(big.NewInt(-1)) })
}

func TestElement_Uint256(t *testing.T) {
	var (
		lo  = uint256.NewInt(0xdeadbeef)
		hi  = new(uint256.Int).Lsh(uint256.NewInt(3), 128)
		sum = new(uint256.Int).Or(hi, lo)
	)
	//
	assert.Equal(t, Uint64(0xdeadbeef), Uint256(lo))
	// (3 * 2^128) + 0xdeadbeef
	expected := TwoPowN(128)
	three := Uint64(3)
	expected.Mul(&expected, &three)
	low := Uint64(0xdeadbeef)
	expected.Add(&expected, &low)
	//
	assert.Equal(t, expected, Uint256(sum))
}

func TestElement_ToUint64(t *testing.T) {
	v, ok := ToUint64(Uint64(1<<63 + 5))
	assert.True(t, ok)
	assert.Equal(t, uint64(1<<63+5), v)
	//
	_, ok = ToUint64(TwoPowN(64))
	assert.False(t, ok)
	// -1 is the largest element
	var minus Element
	one := One()
	minus.Neg(&one)
	_, ok = ToUint64(minus)
	assert.False(t, ok)
}
