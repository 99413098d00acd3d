// This file is part of littleman.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vm

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/syntox32/littleman/errs"
)

// Run drives the machine to completion: fetch, decode and execute
// instructions until HLT runs, the input is exhausted past EOF on an INP with
// no further input, or a fault occurs. It is the batch executor of
// SPEC_FULL.md §4.1.
//
// A bare runtime panic escaping the decode/execute step (for example, a slice
// index that somehow eludes the explicit range checks below) is recovered
// and reported as an ExecuteError rather than crashing the caller, mirroring
// the teacher's Run() convention.
func (mc *Machine) Run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errs.Wrap(errs.ExecuteError, "panic",
				errors.Wrapf(fmt.Errorf("%v", r), "vm: panic at pc=%d", mc.PC),
				"recovered from a runtime panic")
		}
	}()

	for mc.Running {
		if ferr := mc.step(); ferr != nil {
			return ferr
		}
	}
	return nil
}

// step fetches, decodes and executes exactly one instruction, advancing PC
// before execution (so a BRA/BRZ/BRP overwrites the advanced value).
func (mc *Machine) step() *errs.Error {
	if mc.PC < 0 || mc.PC >= len(mc.Memory) {
		return errs.Newf(errs.ExecuteError, "pc_out_of_range", "program counter %d out of range [0,%d)", mc.PC, len(mc.Memory))
	}
	word := mc.Memory[mc.PC]
	mc.PC++

	d, derr := mc.decode(word)
	if derr != nil {
		return derr
	}

	mc.insCount++
	if err := mc.execOne(d); err != nil {
		if ferr, ok := err.(*errs.Error); ok {
			return ferr
		}
		return errs.Wrap(errs.ExecuteError, "execution_failed", err, "executing instruction")
	}
	return nil
}
