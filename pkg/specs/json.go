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

import (
	"errors"
	"fmt"

	"github.com/segmentio/encoding/json"
)

// ErrUnknownStepKind is returned when decoding a step whose kind is not
// recognised.
var ErrUnknownStepKind = errors.New("unknown step kind")

// Trace is a complete execution trace, as produced by the interpreter, together
// with the external data against which it is checked.
type Trace struct {
	Entries      []EventTableEntry
	MemoryInit   []MemoryTableEntry
	PublicInputs []uint64
	JumpTable    []JumpTableEntry
}

type jsonTrace struct {
	Entries      []jsonEntry      `json:"entries"`
	MemoryInit   []jsonMemoryInit `json:"memory_init"`
	PublicInputs []uint64         `json:"public_inputs"`
	JumpTable    []jsonJump       `json:"jump_table"`
}

type jsonEntry struct {
	Eid         uint32   `json:"eid"`
	Moid        uint16   `json:"moid"`
	Fid         uint16   `json:"fid"`
	Iid         uint16   `json:"iid"`
	Sp          uint32   `json:"sp"`
	LastJumpEid uint32   `json:"last_jump_eid"`
	Step        jsonStep `json:"step"`
}

type jsonMemoryInit struct {
	Ltype  string `json:"ltype"`
	Offset uint32 `json:"offset"`
	Vtype  string `json:"vtype"`
	Value  uint64 `json:"value"`
}

type jsonJump struct {
	Eid         uint32 `json:"eid"`
	LastJumpEid uint32 `json:"last_jump_eid"`
	Fid         uint16 `json:"fid"`
	Iid         uint16 `json:"iid"`
}

// Flattened representation of every step kind.
type jsonStep struct {
	Kind              string   `json:"kind"`
	Op                string   `json:"op"`
	Vtype             string   `json:"vtype"`
	Value             uint64   `json:"value"`
	Left              uint64   `json:"left"`
	Right             uint64   `json:"right"`
	Depth             uint32   `json:"depth"`
	Condition         uint64   `json:"condition"`
	DstPc             uint16   `json:"dst_pc"`
	Drop              uint16   `json:"drop"`
	Keep              []string `json:"keep"`
	KeepValues        []uint64 `json:"keep_values"`
	ReturnLastJumpEid uint32   `json:"return_last_jump_eid"`
	ReturnFid         uint16   `json:"return_fid"`
	ReturnIid         uint16   `json:"return_iid"`
	Size              uint8    `json:"size"`
	Offset            uint32   `json:"offset"`
	RawAddress        uint32   `json:"raw_address"`
	BlockValue        uint64   `json:"block_value"`
	PluginIndex       uint     `json:"plugin_index"`
	Function          string   `json:"function"`
	Params            []string `json:"params"`
	ReturnType        string   `json:"return_type"`
	Args              []uint64 `json:"args"`
	RetVal            *uint64  `json:"ret_val"`
}

// ReadTrace parses a trace expressed in JSON notation.
func ReadTrace(data []byte) (*Trace, error) {
	var (
		raw   jsonTrace
		trace Trace
	)
	//
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	//
	for i, e := range raw.Entries {
		step, err := e.Step.decode()
		if err != nil {
			return nil, fmt.Errorf("entry %d (eid %d): %w", i, e.Eid, err)
		}
		//
		trace.Entries = append(trace.Entries, EventTableEntry{
			Eid: e.Eid, Moid: e.Moid, Fid: e.Fid, Iid: e.Iid, Sp: e.Sp, LastJumpEid: e.LastJumpEid, StepInfo: step,
		})
	}
	//
	for i, m := range raw.MemoryInit {
		ltype, err := parseLocationType(m.Ltype)
		if err != nil {
			return nil, fmt.Errorf("memory init %d: %w", i, err)
		}
		//
		vtype, err := ParseVarType(m.Vtype)
		if err != nil {
			return nil, fmt.Errorf("memory init %d: %w", i, err)
		}
		//
		trace.MemoryInit = append(trace.MemoryInit, MemoryTableEntry{0, m.Offset, ltype, Init, vtype, m.Value})
	}
	//
	for _, j := range raw.JumpTable {
		trace.JumpTable = append(trace.JumpTable, JumpTableEntry(j))
	}
	//
	trace.PublicInputs = raw.PublicInputs
	//
	return &trace, nil
}

func (p *jsonStep) decode() (StepInfo, error) {
	var (
		vtype VarType
		err   error
	)
	//
	if p.Vtype != "" {
		if vtype, err = ParseVarType(p.Vtype); err != nil {
			return nil, err
		}
	}
	//
	switch p.Kind {
	case "bin":
		op, err := parseOp(p.Op, binOpNames)
		return &Bin{BinOp(op), vtype, p.Left, p.Right, p.Value}, err
	case "rel":
		op, err := parseOp(p.Op, relOpNames)
		return &Rel{RelOp(op), vtype, p.Left, p.Right, p.Value != 0}, err
	case "const":
		return &Const{vtype, p.Value}, nil
	case "drop":
		return &Drop{}, nil
	case "local_get":
		return &LocalGet{vtype, p.Depth, p.Value}, nil
	case "local_set":
		return &LocalSet{vtype, p.Depth, p.Value}, nil
	case "local_tee":
		return &LocalTee{vtype, p.Depth, p.Value}, nil
	case "br_if":
		keep, err := parseVarTypes(p.Keep)
		return &BrIf{p.Condition, p.DstPc, p.Drop, keep, p.KeepValues}, err
	case "return":
		keep, err := parseVarTypes(p.Keep)
		return &Return{p.Drop, keep, p.KeepValues, p.ReturnLastJumpEid, p.ReturnFid, p.ReturnIid}, err
	case "load":
		return &Load{vtype, p.Size, p.Offset, p.RawAddress, p.Value, p.BlockValue}, nil
	case "call_host":
		return p.decodeCallHost()
	}
	//
	return nil, fmt.Errorf("%w \"%s\"", ErrUnknownStepKind, p.Kind)
}

func (p *jsonStep) decodeCallHost() (StepInfo, error) {
	params, err := parseVarTypes(p.Params)
	if err != nil {
		return nil, err
	}
	//
	sig := Signature{Params: params}
	//
	if p.ReturnType != "" {
		ret, err := ParseVarType(p.ReturnType)
		if err != nil {
			return nil, err
		}
		//
		sig.ReturnType = &ret
	}
	//
	return &CallHost{HostInput, p.PluginIndex, p.Function, sig, p.Args, p.RetVal}, nil
}

func parseOp(name string, names []string) (uint8, error) {
	for i, n := range names {
		if n == name {
			return uint8(i), nil
		}
	}
	//
	return 0, fmt.Errorf("unknown operator \"%s\"", name)
}

func parseVarTypes(names []string) ([]VarType, error) {
	var types []VarType
	//
	for _, n := range names {
		t, err := ParseVarType(n)
		if err != nil {
			return nil, err
		}
		//
		types = append(types, t)
	}
	//
	return types, nil
}

func parseLocationType(name string) (LocationType, error) {
	switch name {
	case "stack":
		return Stack, nil
	case "heap":
		return Heap, nil
	case "global":
		return Global, nil
	}
	//
	return 0, fmt.Errorf("unknown location type \"%s\"", name)
}
