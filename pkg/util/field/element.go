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

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/holiman/uint256"
)

// Element is an element of the BLS12-377 scalar field over which all circuit
// cells and expressions are defined.
type Element = fr.Element

// Zero constructs a field element representing 0
func Zero() Element {
	var element Element
	//
	return element
}

// One constructs a field element representing 1
func One() Element {
	return fr.One()
}

// Uint64 construct a field element from a given uint64
func Uint64(val uint64) Element {
	return fr.NewElement(val)
}

// Bool constructs either 0 or 1 depending upon the given flag.
func Bool(val bool) Element {
	if val {
		return fr.One()
	}
	//
	return Zero()
}

// BigInt construct a field element from a given big.Int, reducing it modulo the
// field order.  Negative values are not supported.
func BigInt(val *big.Int) Element {
	var element Element
	// Handle negative values
	if val.Sign() < 0 {
		panic("negative value encountered")
	}
	//
	element.SetBigInt(val)
	//
	return element
}

// Uint256 constructs a field element from an arbitrary-precision (256bit)
// integer, reducing it modulo the field order.
func Uint256(val *uint256.Int) Element {
	var (
		element Element
		bytes   = val.Bytes32()
	)
	//
	element.SetBytes(bytes[:])
	//
	return element
}

// TwoPowN constructs a field element representing 2^n
func TwoPowN(n uint) Element {
	var (
		element Element
		val     = new(big.Int).Lsh(big.NewInt(1), n)
	)
	//
	element.SetBigInt(val)
	//
	return element
}

// ToUint64 attempts to convert a field element into a uint64, returning false
// if its value does not fit.
func ToUint64(val Element) (uint64, bool) {
	if !val.IsUint64() {
		return 0, false
	}
	//
	return val.Uint64(), true
}
