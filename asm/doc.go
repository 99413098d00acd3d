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

// Package asm assembles Little Man Computer source text into a vector of
// instruction words.
//
// Source is line-oriented: one mnemonic, an optional decimal operand, and an
// optional "#"-introduced comment per line.
//
//	mnemonic	operand	encoding
//	ADD		yes	1*M + operand
//	SUB		yes	2*M + operand
//	STA		yes	3*M + operand
//	LDA		yes	5*M + operand
//	BRA		yes	6*M + operand
//	BRZ		yes	7*M + operand
//	BRP		yes	8*M + operand
//	INP		no	9*M + 1
//	OUT		no	9*M + 2
//	HLT		no	0
//	MEM		yes	operand, verbatim
//
// Mnemonics are case-insensitive. MEM's operand may exceed M; it is a literal
// data word rather than an address, and no range check is applied to it at
// parse time. The OneBased option subtracts 1 from every other operand,
// for humans who number assembly lines from 1; the script compiler never
// sets it, since its own linker already emits zero-based addresses.
package asm
