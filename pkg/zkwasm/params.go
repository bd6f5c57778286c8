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
package zkwasm

import (
	"runtime"

	"github.com/consensys/go-zkwasm/pkg/etable"
	"github.com/consensys/go-zkwasm/pkg/etable/op"
	"github.com/consensys/go-zkwasm/pkg/foreign/input"
)

// Params determines the shape of a circuit, and how its witness is computed.
type Params struct {
	// MaxSteps is the maximum number of instructions a trace may execute.
	MaxSteps uint
	// Parallelism bounds the number of goroutines used for witness assignment.
	Parallelism uint
}

// DefaultParams returns the parameters used when none are specified.
func DefaultParams() Params {
	return Params{MaxSteps: 1 << 12, Parallelism: uint(runtime.NumCPU())}
}

// DefaultOpcodes returns the opcode configurations of the event table.  The
// order of this list determines the dispatch bit of each configuration, and
// hence the shape of the circuit.
func DefaultOpcodes() []etable.OpcodeConfigBuilder {
	return []etable.OpcodeConfigBuilder{
		op.BinConfigBuilder{},
		op.BrIfConfigBuilder{},
		op.ConstConfigBuilder{},
		op.DropConfigBuilder{},
		op.LoadConfigBuilder{},
		op.LocalGetConfigBuilder{},
		op.LocalSetConfigBuilder{},
		op.LocalTeeConfigBuilder{},
		op.RelConfigBuilder{},
		op.ReturnConfigBuilder{},
		input.NewConfigBuilder(0),
	}
}
