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
package specs

import "fmt"

// HostPlugin identifies the host (foreign) plugin serving a host call.
type HostPlugin uint8

const (
	// HostInput reads public or private inputs supplied to the guest.
	HostInput HostPlugin = iota
	// Context reads and writes the execution context.
	Context
	// Require asserts a condition.
	Require
)

func (p HostPlugin) String() string {
	switch p {
	case HostInput:
		return "host_input"
	case Context:
		return "context"
	case Require:
		return "require"
	default:
		return fmt.Sprintf("plugin(%d)", uint8(p))
	}
}

// Signature is the type of a host function.
type Signature struct {
	Params     []VarType
	ReturnType *VarType
}
