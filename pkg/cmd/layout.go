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
package cmd

import (
	"fmt"
	"os"

	"github.com/consensys/go-zkwasm/pkg/etable"
	"github.com/consensys/go-zkwasm/pkg/util/termio"
	"github.com/consensys/go-zkwasm/pkg/zkwasm"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var layoutCmd = &cobra.Command{
	Use:   "layout [flags]",
	Short: "Print the cell allocation of every opcode.",
	Long: `Print how many cells of each region every opcode configuration
	allocates within a step, along with the capacity of each region.
	Regions which are fully allocated are highlighted.`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			c     = zkwasm.NewCircuit(getParams(cmd), zkwasm.DefaultOpcodes())
			table = c.EventTable()
			cs    = c.ConstraintSystem()
			fd    = int(os.Stdout.Fd())
			width = getUint(cmd, "textwidth")
			tty   = term.IsTerminal(fd)
		)
		// Use the terminal width, when printing to a terminal.
		if tty {
			if w, _, err := term.GetSize(fd); err == nil {
				width = uint(w)
			}
		}
		//
		tbl := layoutTable(table)
		tbl.AnsiEscapes(tty)
		// Shrink the opcode column until the table fits (if possible)
		if w := tbl.Width(); w > width {
			opcodes := tbl.ColumnWidth(0)
			tbl.SetMaxWidth(0, opcodes-min(opcodes, w-width))
		}
		//
		if err := tbl.Print(os.Stdout); err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		fmt.Printf("\n%d steps (%d rows), %d columns, %d gates, %d range checks, %d lookups, max degree %d\n",
			table.Capacity(), table.Height(), len(cs.Columns()), len(cs.Gates()), len(cs.RangeChecks()),
			len(cs.Lookups()), cs.MaxDegree())
	},
}

// Construct a table summarising the allocation of every opcode, where the
// first two rows give the titles and the capacity of each region.
func layoutTable(table *etable.EventTable) *termio.TablePrinter {
	var (
		configs = table.Configs()
		tbl     = termio.NewTablePrinter(7, uint(len(configs))+2)
		title   = termio.NewAnsiEscape().Bold()
		full    = termio.NewAnsiEscape().FgColour(termio.Yellow)
		caps    = usageCells(etable.Capacity())
	)
	//
	tbl.SetRow(0, "opcode", "bits", "common", "unlimited", "u64", "mtable", "jtable")
	tbl.SetRow(1, append([]string{"(capacity)"}, caps...)...)
	//
	for col := uint(0); col < 7; col++ {
		tbl.SetEscape(col, 0, title)
	}
	//
	for i, config := range configs {
		var (
			row   = uint(i) + 2
			cells = usageCells(table.Usage()[i])
		)
		//
		tbl.SetRow(row, append([]string{config.OpcodeClass().String()}, cells...)...)
		//
		for j, cell := range cells {
			if cell == caps[j] {
				tbl.SetEscape(uint(j)+1, row, full)
			}
		}
	}
	//
	return tbl
}

func usageCells(usage etable.Usage) []string {
	return []string{
		fmt.Sprint(usage.Bits),
		fmt.Sprint(usage.CommonRange),
		fmt.Sprint(usage.Unlimited),
		fmt.Sprint(usage.U64),
		fmt.Sprint(usage.MemoryLookup),
		fmt.Sprint(usage.JumpLookup),
	}
}

func init() {
	rootCmd.AddCommand(layoutCmd)
	layoutCmd.Flags().Uint("textwidth", 130, "maximum text width when not printing to a terminal")
}
