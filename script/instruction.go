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

package script

import (
	"strconv"
	"strings"
)

// refKind distinguishes which symbolic reference, if any, an Instruction
// still carries. Exactly one of {refNone, refMemory, refJump} applies at any
// time.
type refKind int

const (
	refNone refKind = iota
	refMemory
	refJump
)

// asmItem is either an *Instruction or a JumpFlag; the raw statement output
// is a mixed sequence of both until coalesceLabels folds the flags away.
type asmItem interface {
	isAsmItem()
}

// Instruction is one assembler-level operation. Before linking it carries
// exactly one of a resolved Address, a symbolic memory reference, or a
// symbolic jump reference; after linking, only Address is meaningful.
type Instruction struct {
	Mnemonic string
	Address  int
	Alias    string
	Labels   []string

	ref     refKind
	refName string
}

func (*Instruction) isAsmItem() {}

// NewInstruction builds an unresolved, operand-less instruction for the
// given mnemonic.
func NewInstruction(mnemonic string) *Instruction {
	return &Instruction{Mnemonic: mnemonic}
}

// WithMemoryRef marks the instruction as needing the resolved line of the
// named memory slot before it can be rendered.
func (i *Instruction) WithMemoryRef(name string) *Instruction {
	i.ref, i.refName = refMemory, name
	return i
}

// WithJumpRef marks the instruction as needing the resolved index of the
// instruction carrying the named jump label.
func (i *Instruction) WithJumpRef(name string) *Instruction {
	i.ref, i.refName = refJump, name
	return i
}

// WithAddress gives the instruction a resolved address directly (used for
// MEM slots, whose operand is a literal value rather than an address).
func (i *Instruction) WithAddress(adr int) *Instruction {
	i.Address, i.ref = adr, refNone
	return i
}

// WithAlias names the MEM slot this instruction represents, so other
// instructions may refer to it by name.
func (i *Instruction) WithAlias(alias string) *Instruction {
	i.Alias = alias
	return i
}

// HasMemoryRef reports whether the instruction still needs memory binding.
func (i *Instruction) HasMemoryRef() bool { return i.ref == refMemory }

// HasJumpRef reports whether the instruction still needs jump binding.
func (i *Instruction) HasJumpRef() bool { return i.ref == refJump }

// Resolved reports whether the instruction carries a concrete address.
func (i *Instruction) Resolved() bool { return i.ref == refNone }

// SetAddress resolves a symbolic reference to a concrete address.
func (i *Instruction) SetAddress(adr int) {
	i.Address, i.ref = adr, refNone
}

// AddLabel attaches a coalesced jump label to this instruction.
func (i *Instruction) AddLabel(name string) {
	i.Labels = append(i.Labels, name)
}

// noOperandMnemonics takes no operand in assembler text.
var noOperandMnemonics = map[string]bool{"INP": true, "OUT": true, "HLT": true}

// Asm renders the instruction as one line of LMC assembler text. The
// instruction must be Resolved.
func (i *Instruction) Asm() string {
	if noOperandMnemonics[i.Mnemonic] {
		return i.Mnemonic
	}
	var sb strings.Builder
	sb.WriteString(i.Mnemonic)
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(i.Address))
	return sb.String()
}

// JumpFlag is a label attached in instruction position. coalesceLabels
// absorbs it into the next real instruction's Labels before linking.
type JumpFlag struct {
	Name string
}

func (JumpFlag) isAsmItem() {}
