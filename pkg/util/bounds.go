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

// NoBounds is the window of an expression which reads only the current row.
var NoBounds = Bounds{}

// Bounds is the window of rows reached by an expression relative to the row on
// which it is evaluated.  For example, a gate reading the next step's state
// reaches StepSize rows ahead, and so cannot hold on the final step of an
// assignment.
type Bounds struct {
	// Before is the number of rows read above the current row.
	Before uint
	// After is the number of rows read below the current row.
	After uint
}

// NewBounds constructs a window reaching before rows up and after rows down.
func NewBounds(before uint, after uint) Bounds {
	return Bounds{before, after}
}

// RotationBounds returns the window of a single cell at the given rotation.
func RotationBounds(rot int) Bounds {
	if rot < 0 {
		return Bounds{Before: uint(-rot)}
	}
	//
	return Bounds{After: uint(rot)}
}

// Join returns the smallest window covering both windows.
func (b Bounds) Join(o Bounds) Bounds {
	return Bounds{max(b.Before, o.Before), max(b.After, o.After)}
}

// Rows returns the half-open range of rows of an assignment with the given
// height on which every cell in this window exists.  The range is empty when
// the window does not fit.
func (b Bounds) Rows(height uint) (int, int) {
	if b.Before+b.After >= height {
		return 0, 0
	}
	//
	return int(b.Before), int(height - b.After)
}

// Bounded is implemented by anything which reads cells at fixed rotations.
type Bounded interface {
	Bounds() Bounds
}

// JoinBounds returns the window covering every item.
func JoinBounds[E Bounded](items []E) Bounds {
	window := NoBounds
	//
	for _, e := range items {
		window = window.Join(e.Bounds())
	}
	//
	return window
}
