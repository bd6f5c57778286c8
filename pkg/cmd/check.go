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

	"github.com/consensys/go-zkwasm/pkg/circuit"
	"github.com/consensys/go-zkwasm/pkg/zkwasm"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] trace_file",
	Short: "Check a given trace against the event table circuit.",
	Long: `Check a given trace against the event table circuit.
	The trace is assigned into the circuit configured with the default
	opcodes, after which every gate, range check and lookup is checked.
	Traces are given as JSON files.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		var (
			params = getParams(cmd)
			report = getFlag(cmd, "report")
			trace  = readTraceFile(args[0])
		)
		//
		log.Infof("checking %d steps (capacity %d, parallelism %d)", len(trace.Entries), params.MaxSteps,
			params.Parallelism)
		//
		c := zkwasm.NewCircuit(params, zkwasm.DefaultOpcodes())
		//
		asg, err := c.Assign(trace)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		//
		failures := c.Check(asg)
		if len(failures) == 0 {
			return
		}
		//
		reportFailures(failures, report)
		os.Exit(1)
	},
}

// Print failures, or only the first unless a full report is requested.
func reportFailures(failures []circuit.Failure, report bool) {
	for i, f := range failures {
		if i > 0 && !report {
			fmt.Printf("(%d more failures)\n", len(failures)-1)
			return
		}
		//
		fmt.Println(f.Message())
	}
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().Bool("report", false, "report every failing constraint")
	checkCmd.Flags().Uint("parallelism", 0, "number of goroutines used for assignment (0 for all cores)")
}
