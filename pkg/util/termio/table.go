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
	"fmt"
	"io"
	"strings"
)

// TablePrinter is useful for printing tables to the terminal.  Cells are
// right-aligned, except for the first column.
type TablePrinter struct {
	widths        []uint
	rows          [][]string
	escapes       [][]AnsiEscape
	enableEscapes bool
}

// NewTablePrinter constructs a new table with a given number of columns and
// rows.
func NewTablePrinter(width uint, height uint) *TablePrinter {
	rows := make([][]string, height)
	escapes := make([][]AnsiEscape, height)
	//
	for i := range rows {
		rows[i] = make([]string, width)
		escapes[i] = make([]AnsiEscape, width)
	}
	//
	return &TablePrinter{make([]uint, width), rows, escapes, true}
}

// Get the contents of a given cell in this table
func (p *TablePrinter) Get(col uint, row uint) string {
	return p.rows[row][col]
}

// Height returns the number of rows in this table.
func (p *TablePrinter) Height() uint {
	return uint(len(p.rows))
}

// Width returns the number of characters needed to print a row of this table.
func (p *TablePrinter) Width() uint {
	var width uint
	//
	for _, w := range p.widths {
		width += w + 3
	}
	//
	return width
}

// ColumnWidth returns the width of a given column.
func (p *TablePrinter) ColumnWidth(col uint) uint {
	return p.widths[col]
}

// SetRow sets the contents of an entire row in this table
func (p *TablePrinter) SetRow(row uint, vals ...string) {
	if len(vals) != len(p.widths) {
		panic(fmt.Sprintf("incorrect number of columns (%d vs %d)", len(vals), len(p.widths)))
	}
	//
	for i, v := range vals {
		p.widths[i] = max(p.widths[i], uint(len(v)))
	}
	//
	p.rows[row] = vals
}

// SetEscape sets the escape to use when printing a given cell.
func (p *TablePrinter) SetEscape(col uint, row uint, escape AnsiEscape) {
	p.escapes[row][col] = escape
}

// AnsiEscapes enables or disables the use of ANSI escapes (e.g. for showing
// colour).  Disabling escapes is useful when output is not a terminal.
func (p *TablePrinter) AnsiEscapes(enable bool) {
	p.enableEscapes = enable
}

// SetMaxWidth puts an upper bound on the width of a column.  Longer contents
// are truncated when printed.
func (p *TablePrinter) SetMaxWidth(col uint, width uint) {
	p.widths[col] = min(p.widths[col], max(width, 3))
}

// Print the table to a given writer.
func (p *TablePrinter) Print(out io.Writer) error {
	for i, row := range p.rows {
		var line strings.Builder
		//
		for j, cell := range row {
			var (
				width  = int(p.widths[j])
				escape = p.escapes[i][j].Build()
			)
			//
			if len(cell) > width {
				cell = cell[:width-2] + ".."
			}
			//
			if p.enableEscapes && escape != "" {
				line.WriteString(escape)
			}
			//
			if j == 0 {
				fmt.Fprintf(&line, " %-*s", width, cell)
			} else {
				fmt.Fprintf(&line, " %*s", width, cell)
			}
			//
			if p.enableEscapes && escape != "" {
				line.WriteString(ResetAnsiEscape().Build())
			}
			//
			line.WriteString(" |")
		}
		//
		if _, err := fmt.Fprintln(out, line.String()); err != nil {
			return err
		}
	}
	//
	return nil
}
