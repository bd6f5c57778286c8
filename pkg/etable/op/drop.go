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
	"github.com/consensys/go-zkwasm/pkg/specs"
	"github.com/consensys/go-zkwasm/pkg/util"
)

// DropConfigBuilder configures the drop instruction, which discards the top of
// stack without reading it.
type DropConfigBuilder struct{}

// DropConfig is the configuration of the drop instruction.
type DropConfig struct {
	etable.BaseConfig
}

// Configure implementation for etable.OpcodeConfigBuilder interface.
func (DropConfigBuilder) Configure(*circuit.ConstraintSystem, *etable.CommonConfig, *etable.CellAllocator,
	circuit.Expr) etable.OpcodeConfig {
	return &DropConfig{}
}

// Opcode implementation for etable.OpcodeConfig interface.
func (p *DropConfig) Opcode(*etable.CommonConfig) circuit.Expr {
	zero := circuit.Const(0)
	return etable.EncodeOpcode(p.OpcodeClass(), zero, zero, zero)
}

// OpcodeClass implementation for etable.OpcodeConfig interface.
func (p *DropConfig) OpcodeClass() specs.OpcodeClassPlain {
	return specs.PlainClass(specs.DropClass)
}

// Assign implementation for etable.OpcodeConfig interface.
func (p *DropConfig) Assign(_ *etable.Context, _ *etable.StepStatus,
	entry *specs.EventTableEntryWithMemoryInfo) error {
	etable.Expect[*specs.Drop](entry)
	etable.ExpectAccesses(entry, 0)
	//
	return nil
}

// SpDiff implementation for etable.OpcodeConfig interface.
func (p *DropConfig) SpDiff() util.Option[circuit.Expr] {
	return util.Some(circuit.Const(1))
}
