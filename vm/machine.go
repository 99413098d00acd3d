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
	"io"
	"strconv"

	"github.com/syntox32/littleman/errs"
)

// Opcodes recognised by the decoder. See doc.go for the full table.
const (
	OpHLT = 0
	OpADD = 1
	OpSUB = 2
	OpSTA = 3
	OpLDA = 5
	OpBRA = 6
	OpBRZ = 7
	OpBRP = 8
	// OpIO is the shared high digit for INP/OUT; they are distinguished by
	// the low digit (ioInp, ioOut) rather than by operand address.
	OpIO = 9

	ioInp = 1
	ioOut = 2
)

// DefaultMemSize is the mailbox count (M) used when no MemSize option is
// given.
const DefaultMemSize = 100

// InputReader supplies integers to the machine's INP instruction. ReadInt
// returns io.EOF once no further input is available.
type InputReader interface {
	ReadInt() (int, error)
}

// fixedInput always returns the same value, modelling the "test
// configuration supplies a fixed integer for all INP requests" contract of
// SPEC_FULL.md §6.
type fixedInput int

func (f fixedInput) ReadInt() (int, error) { return int(f), nil }

// FixedInput returns an InputReader that yields v for every request.
func FixedInput(v int) InputReader { return fixedInput(v) }

// sliceInput serves values from a fixed slice in order, then io.EOF.
type sliceInput struct {
	values []int
	pos    int
}

func (s *sliceInput) ReadInt() (int, error) {
	if s.pos >= len(s.values) {
		return 0, io.EOF
	}
	v := s.values[s.pos]
	s.pos++
	return v, nil
}

// SliceInput returns an InputReader that serves values in order and then
// io.EOF.
func SliceInput(values ...int) InputReader {
	return &sliceInput{values: values}
}

// noInput always reports end of input; it is the zero-value InputReader used
// when the caller never configures one.
type noInput struct{}

func (noInput) ReadInt() (int, error) { return 0, io.EOF }

// Option configures a Machine at construction time.
type Option func(*Machine) error

// MemSize sets the mailbox count M. It must be positive.
func MemSize(m int) Option {
	return func(mc *Machine) error {
		if m <= 0 {
			return errs.Newf(errs.ExecuteError, "invalid_mem_size", "mem size must be positive, got %d", m)
		}
		mc.memSize = m
		return nil
	}
}

// Input sets the InputReader used to service INP instructions.
func Input(r InputReader) Option {
	return func(mc *Machine) error { mc.input = r; return nil }
}

// Tee mirrors every OUT value, as it is produced, to w (in addition to
// appending it to Output). A nil w disables teeing.
func Tee(w io.Writer) Option {
	return func(mc *Machine) error { mc.tee = w; return nil }
}

// Machine is a Little Man Computer instance: an accumulator, a program
// counter, M mailboxes of memory, and an append-only output sequence.
type Machine struct {
	AC      int
	PC      int
	Memory  []int
	Running bool
	Output  []string

	memSize  int
	input    InputReader
	tee      io.Writer
	program  []int // the image Memory was initialised from, for Reset/Stepper
	insCount int64
}

// New creates a Machine loaded with program. Memory is sized to
// max(len(program), M) and zero-filled beyond len(program).
func New(program []int, opts ...Option) (*Machine, error) {
	mc := &Machine{memSize: DefaultMemSize, input: noInput{}}
	for _, opt := range opts {
		if err := opt(mc); err != nil {
			return nil, err
		}
	}
	mc.loadProgram(program)
	return mc, nil
}

func (mc *Machine) loadProgram(program []int) {
	size := mc.memSize
	if len(program) > size {
		size = len(program)
	}
	mc.program = append([]int(nil), program...)
	mc.Memory = make([]int, size)
	copy(mc.Memory, program)
	mc.AC = 0
	mc.PC = 0
	mc.Running = true
	mc.Output = nil
}

// MemSize returns the configured mailbox count M.
func (mc *Machine) MemSize() int { return mc.memSize }

// InstructionCount returns the number of instructions executed so far in the
// current run.
func (mc *Machine) InstructionCount() int64 { return mc.insCount }

// decoded is the result of decoding one instruction word.
type decoded struct {
	op  int
	arg int
}

// decode splits word into an opcode and operand per the M-ary positional
// encoding of SPEC_FULL.md §3, and validates the operand's range for
// operations that index memory or branch.
func (mc *Machine) decode(word int) (decoded, *errs.Error) {
	m := mc.memSize
	hi := word / m
	lo := word % m

	switch hi {
	case OpADD, OpSUB, OpSTA, OpLDA:
		if lo < 0 || lo >= m {
			return decoded{}, errs.Newf(errs.ExecuteError, "index_out_of_range",
				"operand %d out of range for instruction word %d", lo, word)
		}
		return decoded{op: hi, arg: lo}, nil
	case OpBRA, OpBRZ, OpBRP:
		if lo < 0 || lo >= m {
			return decoded{}, errs.Newf(errs.ExecuteError, "branch_out_of_range",
				"branch target %d out of range for instruction word %d", lo, word)
		}
		return decoded{op: hi, arg: lo}, nil
	}
	switch word {
	case OpHLT:
		return decoded{op: OpHLT}, nil
	case OpIO*m + ioInp:
		return decoded{op: OpIO, arg: ioInp}, nil
	case OpIO*m + ioOut:
		return decoded{op: OpIO, arg: ioOut}, nil
	}
	return decoded{}, errs.Newf(errs.ExecuteError, "unknown_instruction", "unknown instruction word %d", word)
}

func (mc *Machine) emit(v int) error {
	s := strconv.Itoa(v)
	mc.Output = append(mc.Output, s)
	if mc.tee != nil {
		if _, err := io.WriteString(mc.tee, s+"\n"); err != nil {
			return errs.Wrap(errs.ExecuteError, "tee_write_failed", err, "writing OUT value to tee writer")
		}
	}
	return nil
}

// execOne applies one decoded instruction and advances PC (for branches) or
// leaves it at the post-fetch value set by the caller.
func (mc *Machine) execOne(d decoded) error {
	switch d.op {
	case OpHLT:
		mc.Running = false
	case OpADD:
		mc.AC += mc.Memory[d.arg]
	case OpSUB:
		mc.AC -= mc.Memory[d.arg]
	case OpSTA:
		mc.Memory[d.arg] = mc.AC
	case OpLDA:
		mc.AC = mc.Memory[d.arg]
	case OpBRA:
		mc.PC = d.arg
	case OpBRZ:
		if mc.AC == 0 {
			mc.PC = d.arg
		}
	case OpBRP:
		if mc.AC > 0 {
			mc.PC = d.arg
		}
	case OpIO:
		switch d.arg {
		case ioInp:
			v, err := mc.input.ReadInt()
			if err != nil {
				return errs.Wrap(errs.ExecuteError, "input_exhausted", err, "INP requested but no input remains")
			}
			mc.AC = v
		case ioOut:
			return mc.emit(mc.AC)
		}
	}
	return nil
}
