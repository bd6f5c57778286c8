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
package termio

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTablePrinter_Print(t *testing.T) {
	var (
		buf bytes.Buffer
		tbl = NewTablePrinter(2, 2)
	)
	//
	tbl.SetRow(0, "opcode", "bits")
	tbl.SetRow(1, "const", "10")
	tbl.SetEscape(1, 1, NewAnsiEscape().FgColour(Yellow))
	tbl.AnsiEscapes(false)
	//
	require.NoError(t, tbl.Print(&buf))
	assert.Equal(t, " opcode | bits |\n const  |   10 |\n", buf.String())
	assert.Equal(t, uint(16), tbl.Width())
}

func TestTablePrinter_Escapes(t *testing.T) {
	var (
		buf bytes.Buffer
		tbl = NewTablePrinter(1, 1)
	)
	//
	tbl.SetRow(0, "x")
	tbl.SetEscape(0, 0, NewAnsiEscape().Bold())
	//
	require.NoError(t, tbl.Print(&buf))
	assert.Equal(t, "\033[1m x\033[0m |\n", buf.String())
}

func TestTablePrinter_Truncate(t *testing.T) {
	var (
		buf bytes.Buffer
		tbl = NewTablePrinter(1, 1)
	)
	//
	tbl.SetRow(0, "local_get")
	tbl.SetMaxWidth(0, 5)
	//
	require.NoError(t, tbl.Print(&buf))
	assert.Equal(t, " loc.. |\n", buf.String())
	assert.Panics(t, func() { tbl.SetRow(0, "a", "b") })
}

func TestAnsiEscape(t *testing.T) {
	assert.Equal(t, "", NewAnsiEscape().Build())
	assert.Equal(t, "\033[0m", ResetAnsiEscape().Build())
	assert.Equal(t, "\033[1;31;44m", NewAnsiEscape().Bold().FgColour(Red).BgColour(Blue).Build())
}
