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

import "github.com/syntox32/littleman/errs"

// StepResult classifies the outcome of a single Stepper.Next call.
type StepResult int

const (
	// StepOK means an instruction executed with no observable side effect
	// worth surfacing (anything other than output or input).
	StepOK StepResult = iota
	// StepInputRequired means the stepped instruction was INP; no value has
	// been read yet. The caller must call SupplyInput before the next Next.
	StepInputRequired
	// StepOutputProduced means the stepped instruction was OUT; the value
	// produced is appended to Machine.Output.
	StepOutputProduced
	// StepHalted means the stepped instruction was HLT; Machine.Running is
	// now false.
	StepHalted
	// StepError means decode or execution faulted; Machine.Running is left
	// true so the caller may inspect state before giving up.
	StepError
)

// snapshot is a deep-enough copy of Machine state to restore exactly what
// Rollback needs: the accumulator, program counter, memory contents, output
// log length and instruction count.
type snapshot struct {
	ac       int
	pc       int
	memory   []int
	outLen   int
	insCount int64
}

// Stepper wraps a Machine with a single-step API and a bounded rollback
// history, for interactive callers such as a debugger front-end. It shares
// Machine's decode/execute step logic with the batch Run executor.
//
// INP is special-cased: Next stops short of reading a value and returns
// StepInputRequired, leaving PC parked on the INP word. The caller must then
// call SupplyInput before the next Next call, per the suspend/resume
// contract of SPEC_FULL.md §4.1/§5 (the batch Run executor has no such
// pause; it reads from the configured InputReader immediately).
type Stepper struct {
	mc      *Machine
	history []snapshot
	cap     int

	pending     bool
	pendingSnap snapshot
}

// DefaultHistoryCap bounds the number of snapshots a Stepper retains for
// Rollback, so long-running interactive sessions do not grow memory
// unboundedly.
const DefaultHistoryCap = 1000

// NewStepper wraps mc in a Stepper with the default rollback history depth.
func NewStepper(mc *Machine) *Stepper {
	return &Stepper{mc: mc, cap: DefaultHistoryCap}
}

// Machine returns the wrapped Machine, for callers that want to inspect
// AC/PC/Memory/Output directly between steps.
func (st *Stepper) Machine() *Machine { return st.mc }

func (st *Stepper) snapshot() snapshot {
	mem := make([]int, len(st.mc.Memory))
	copy(mem, st.mc.Memory)
	return snapshot{
		ac:       st.mc.AC,
		pc:       st.mc.PC,
		memory:   mem,
		outLen:   len(st.mc.Output),
		insCount: st.mc.insCount,
	}
}

func (st *Stepper) pushHistory(s snapshot) {
	st.history = append(st.history, s)
	if len(st.history) > st.cap {
		st.history = st.history[1:]
	}
}

// Next executes exactly one instruction and reports what kind of step it
// was. A snapshot of pre-step state is recorded so Rollback can undo it.
//
// If the stepped instruction is INP, Next does not call ReadInt: it returns
// StepInputRequired and leaves the machine exactly as it was before the
// step, with the request pending. The caller must resolve it with
// SupplyInput before calling Next again.
func (st *Stepper) Next() (StepResult, error) {
	if !st.mc.Running {
		return StepHalted, nil
	}
	if st.pending {
		return StepError, errs.New(errs.ExecuteError, "input_pending", "SupplyInput must be called to resolve the pending INP before stepping again")
	}
	if st.mc.PC < 0 || st.mc.PC >= len(st.mc.Memory) {
		return StepError, errs.Newf(errs.ExecuteError, "pc_out_of_range", "program counter %d out of range [0,%d)", st.mc.PC, len(st.mc.Memory))
	}

	pre := st.snapshot()
	word := st.mc.Memory[st.mc.PC]

	d, derr := st.mc.decode(word)
	if derr != nil {
		return StepError, derr
	}

	if d.op == OpIO && d.arg == ioInp {
		st.pending = true
		st.pendingSnap = pre
		return StepInputRequired, nil
	}

	st.mc.PC++
	st.mc.insCount++
	if err := st.mc.execOne(d); err != nil {
		st.mc.PC = pre.pc
		st.mc.insCount = pre.insCount
		if ferr, ok := err.(*errs.Error); ok {
			return StepError, ferr
		}
		return StepError, errs.Wrap(errs.ExecuteError, "execution_failed", err, "executing instruction")
	}
	st.pushHistory(pre)

	switch d.op {
	case OpHLT:
		return StepHalted, nil
	case OpIO:
		if d.arg == ioOut {
			return StepOutputProduced, nil
		}
	}
	return StepOK, nil
}

// SupplyInput resolves the INP request raised by the previous Next call: it
// writes v into the accumulator, advances PC past the INP word, and records
// the step in the rollback history. It is an error to call SupplyInput when
// no request is pending.
func (st *Stepper) SupplyInput(v int) error {
	if !st.pending {
		return errs.New(errs.ExecuteError, "no_pending_input", "SupplyInput called with no pending INP request")
	}
	pre := st.pendingSnap
	st.mc.AC = v
	st.mc.PC = pre.pc + 1
	st.mc.insCount = pre.insCount + 1
	st.pushHistory(pre)
	st.pending = false
	return nil
}

// Rollback undoes the most recent n steps (n is clamped to the available
// history depth). It returns the number of steps actually undone. A pending
// INP request, if any, is discarded: the rolled-back state never performed
// that step.
func (st *Stepper) Rollback(n int) int {
	st.pending = false
	if n > len(st.history) {
		n = len(st.history)
	}
	for i := 0; i < n; i++ {
		last := st.history[len(st.history)-1]
		st.history = st.history[:len(st.history)-1]
		st.mc.AC = last.ac
		st.mc.PC = last.pc
		copy(st.mc.Memory, last.memory)
		st.mc.Output = st.mc.Output[:last.outLen]
		st.mc.insCount = last.insCount
		st.mc.Running = true
	}
	return n
}

// Reset reloads the machine's original program and clears rollback history
// and any pending INP request.
func (st *Stepper) Reset() {
	st.mc.loadProgram(st.mc.program)
	st.history = nil
	st.pending = false
}
