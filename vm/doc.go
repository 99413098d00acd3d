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

// Package vm implements the Little Man Computer: a decimal accumulator
// machine over a fixed array of M mailboxes (M defaults to 100).
//
// An instruction word is a non-negative integer. word/M is the opcode,
// word%M is the operand address:
//
//	opcode	mnemonic	meaning
//	1	ADD		add memory[operand] to the accumulator
//	2	SUB		subtract memory[operand] from the accumulator
//	3	STA		store the accumulator at memory[operand]
//	5	LDA		load memory[operand] into the accumulator
//	6	BRA		jump to operand
//	7	BRZ		jump to operand iff accumulator == 0
//	8	BRP		jump to operand iff accumulator > 0
//	9*M+1	INP		read an integer from the input channel
//	9*M+2	OUT		write the accumulator to the output channel
//	0	HLT		stop
//
// Machine carries two execution modes that share the same decode/dispatch
// logic: Run drives the machine to completion in one call (the batch
// executor), while Stepper exposes a single-step API with rollback for
// interactive callers such as a debugger. Neither mode depends on a
// terminal: Machine reads from an InputReader and writes decimal strings to
// an in-memory Output slice (optionally teed to an io.Writer).
package vm
