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
package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOption(t *testing.T) {
	some, none := Some(3), None[int]()
	//
	assert.True(t, some.HasValue())
	assert.False(t, some.IsEmpty())
	assert.Equal(t, 3, some.Unwrap())
	assert.Equal(t, 3, some.UnwrapOr(7))
	assert.True(t, none.IsEmpty())
	assert.Equal(t, 7, none.UnwrapOr(7))
	assert.Panics(t, func() { none.Unwrap() })
}

func TestBounds(t *testing.T) {
	assert.Equal(t, NewBounds(0, 16), RotationBounds(16))
	assert.Equal(t, NewBounds(2, 0), RotationBounds(-2))
	assert.Equal(t, NoBounds, RotationBounds(0))
	//
	window := NewBounds(1, 3).Join(NewBounds(2, 0))
	assert.Equal(t, NewBounds(2, 3), window)
	// rows on which the window fits
	start, end := window.Rows(32)
	assert.Equal(t, 2, start)
	assert.Equal(t, 29, end)
	start, end = window.Rows(5)
	assert.Equal(t, start, end)
}
