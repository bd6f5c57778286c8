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
	"path"

	"github.com/consensys/go-zkwasm/pkg/specs"
	"github.com/consensys/go-zkwasm/pkg/zkwasm"
	"github.com/spf13/cobra"
)

// Get an expected flag, or panic if an error arises.
func getFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// Get an expected unsigned integer, or panic if an error arises.
func getUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// Determine circuit parameters from the command line, falling back to the
// defaults for anything not given.
func getParams(cmd *cobra.Command) zkwasm.Params {
	params := zkwasm.DefaultParams()
	//
	if steps := getUint(cmd, "max-steps"); steps != 0 {
		params.MaxSteps = steps
	}
	//
	if cmd.Flags().Lookup("parallelism") != nil {
		if n := getUint(cmd, "parallelism"); n != 0 {
			params.Parallelism = n
		}
	}
	//
	return params
}

// Parse a trace file using a parser based on the extension of the filename.
func readTraceFile(filename string) *specs.Trace {
	bytes, err := os.ReadFile(filename)
	if err == nil {
		// Check file extension
		ext := path.Ext(filename)
		//
		switch ext {
		case ".json":
			trace, err := specs.ReadTrace(bytes)
			if err == nil {
				return trace
			}
			//
			fmt.Printf("%s: %s\n", filename, err)
			os.Exit(2)
		default:
			err = fmt.Errorf("unknown trace file format: %s", ext)
		}
	}
	// Handle error
	fmt.Println(err)
	os.Exit(2)
	// unreachable
	return nil
}
