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

import "github.com/holiman/uint256"

// JumpTableEntry records one call frame.  A return executed within this frame
// restores the caller's last jump eid, function and instruction.
type JumpTableEntry struct {
	// Execution id of the call which opened this frame.
	Eid uint32
	// Last jump eid of the caller.
	LastJumpEid uint32
	// Function to return into.
	Fid uint16
	// Instruction to return to.
	Iid uint16
}

// Layout of an encoded jump table entry.
const (
	JumpIidShift         = 0
	JumpFidShift         = 32
	JumpLastJumpEidShift = 64
	JumpEidShift         = 96
)

// Encode this entry as a jump table lookup key.
func (p JumpTableEntry) Encode() *uint256.Int {
	var (
		res = uint256.NewInt(uint64(p.Iid))
		tmp = new(uint256.Int)
	)
	//
	res.Or(res, tmp.Lsh(uint256.NewInt(uint64(p.Fid)), JumpFidShift))
	res.Or(res, tmp.Lsh(uint256.NewInt(uint64(p.LastJumpEid)), JumpLastJumpEidShift))
	res.Or(res, tmp.Lsh(uint256.NewInt(uint64(p.Eid)), JumpEidShift))
	//
	return res
}
