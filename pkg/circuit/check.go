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
package circuit

import (
	"runtime"
	"time"

	"github.com/consensys/go-zkwasm/pkg/util/field"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Check whether every gate, range check and lookup of a given constraint system
// holds on a given assignment.  At most one failure is reported per constraint
// (the first failing row).  Constraints are checked concurrently, but the
// returned failures are ordered deterministically (gates, then range checks,
// then lookups, each in registration order).
func Check(cs *ConstraintSystem, asg *Assignment) []Failure {
	var (
		start    = time.Now()
		gates    = cs.Gates()
		ranges   = cs.RangeChecks()
		lookups  = cs.Lookups()
		results  = make([]Failure, len(gates)+len(ranges)+len(lookups))
		group    errgroup.Group
		failures []Failure
	)
	//
	group.SetLimit(runtime.NumCPU())
	//
	for i, gate := range gates {
		group.Go(func() error {
			results[i] = checkGate(gate, asg)
			return nil
		})
	}
	//
	for i, rc := range ranges {
		group.Go(func() error {
			results[len(gates)+i] = checkRange(rc, asg)
			return nil
		})
	}
	//
	for i, lookup := range lookups {
		group.Go(func() error {
			results[len(gates)+len(ranges)+i] = checkLookup(lookup, cs.TableName(lookup.Table), asg)
			return nil
		})
	}
	// Nothing here returns an error.
	_ = group.Wait()
	//
	for _, f := range results {
		if f != nil {
			failures = append(failures, f)
		}
	}
	//
	log.Debugf("checked %d gates, %d range checks and %d lookups over %d rows in %s (%d failures)",
		len(gates), len(ranges), len(lookups), asg.Height(), time.Since(start), len(failures))
	//
	return failures
}

func checkGate(gate Gate, asg *Assignment) Failure {
	for i, c := range gate.Constraints {
		start, end := c.Bounds().Rows(asg.Height())
		//
		for k := start; k < end; k++ {
			val, err := c.EvalAt(k, asg)
			//
			if err != nil {
				return &InternalFailure{gate.Handle, uint(k), err.Error()}
			} else if !val.IsZero() {
				return &GateFailure{gate.Handle, uint(i), uint(k), c}
			}
		}
	}
	//
	return nil
}

func checkRange(rc RangeCheck, asg *Assignment) Failure {
	var (
		bound      = field.TwoPowN(rc.Bitwidth)
		start, end = rc.Expr.Bounds().Rows(asg.Height())
	)
	//
	for k := start; k < end; k++ {
		val, err := rc.Expr.EvalAt(k, asg)
		//
		if err != nil {
			return &InternalFailure{rc.Handle, uint(k), err.Error()}
		} else if val.Cmp(&bound) >= 0 {
			return &RangeFailure{rc.Handle, uint(k), val, rc.Bitwidth}
		}
	}
	//
	return nil
}

func checkLookup(lookup Lookup, table string, asg *Assignment) Failure {
	start, end := lookup.Expr.Bounds().Rows(asg.Height())
	//
	for k := start; k < end; k++ {
		val, err := lookup.Expr.EvalAt(k, asg)
		//
		if err != nil {
			return &InternalFailure{lookup.Handle, uint(k), err.Error()}
		} else if !asg.TableContains(lookup.Table, val) {
			return &LookupFailure{lookup.Handle, table, uint(k), val}
		}
	}
	//
	return nil
}
