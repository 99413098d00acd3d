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

package asm

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/syntox32/littleman/errs"
	"github.com/syntox32/littleman/vm"
)

// Option configures Assemble.
type Option func(*config)

type config struct {
	memSize  int
	oneBased bool
}

// MemSize sets the mailbox count M used to compute opcode*M+operand. It
// defaults to vm.DefaultMemSize.
func MemSize(m int) Option {
	return func(c *config) { c.memSize = m }
}

// OneBased subtracts 1 from every operand-taking mnemonic's operand except
// MEM, for hand-written assembly that numbers mailboxes from 1. The script
// compiler never sets this: its linker already emits zero-based addresses.
func OneBased() Option {
	return func(c *config) { c.oneBased = true }
}

// operand-taking mnemonics, encoded as opcode*M + (operand - delta).
var operandOpcodes = map[string]int{
	"ADD": vm.OpADD,
	"SUB": vm.OpSUB,
	"STA": vm.OpSTA,
	"LDA": vm.OpLDA,
	"BRA": vm.OpBRA,
	"BRZ": vm.OpBRZ,
	"BRP": vm.OpBRP,
}

// Assemble translates LMC assembly source into a vector of instruction
// words, per the grammar in doc.go.
func Assemble(source string, opts ...Option) ([]int, error) {
	cfg := &config{memSize: vm.DefaultMemSize}
	for _, opt := range opts {
		opt(cfg)
	}

	var out []int
	sc := bufio.NewScanner(strings.NewReader(source))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		word, skip, err := cfg.parseLine(sc.Text(), lineNo)
		if err != nil {
			return nil, err
		}
		if skip {
			continue
		}
		out = append(out, word)
	}
	if err := sc.Err(); err != nil {
		return nil, errs.Wrap(errs.ParseError, "scan_failed", err, "reading assembly source")
	}
	return out, nil
}

// parseLine assembles one source line into a word. skip is true for blank or
// comment-only lines.
func (c *config) parseLine(line string, lineNo int) (word int, skip bool, err error) {
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return 0, true, nil
	}
	fields := strings.Fields(strings.ToUpper(line))

	switch len(fields) {
	case 1:
		switch fields[0] {
		case "INP":
			return vm.OpIO*c.memSize + 1, false, nil
		case "OUT":
			return vm.OpIO*c.memSize + 2, false, nil
		case "HLT":
			return vm.OpHLT, false, nil
		case "MEM":
			return 0, false, errs.Newf(errs.ParseError, "missing_operand", "line %d: MEM requires an operand", lineNo)
		default:
			if _, ok := operandOpcodes[fields[0]]; ok {
				return 0, false, errs.Newf(errs.ParseError, "missing_operand", "line %d: %s requires an operand", lineNo, fields[0])
			}
			return 0, false, errs.Newf(errs.ParseError, "unknown", "line %d: unknown mnemonic %q", lineNo, fields[0])
		}
	case 2:
		mnemonic, operandTok := fields[0], fields[1]
		operand, perr := strconv.Atoi(operandTok)
		if perr != nil {
			return 0, false, errs.Wrap(errs.ParseError, "invalid_operand", perr, "line "+strconv.Itoa(lineNo)+": operand must be an integer")
		}
		if mnemonic == "MEM" {
			return operand, false, nil
		}
		if opcode, ok := operandOpcodes[mnemonic]; ok {
			delta := 0
			if c.oneBased {
				delta = 1
			}
			return opcode*c.memSize + (operand - delta), false, nil
		}
		if mnemonic == "INP" || mnemonic == "OUT" || mnemonic == "HLT" {
			return 0, false, errs.Newf(errs.ParseError, "invalid_line", "line %d: %s takes no operand", lineNo, mnemonic)
		}
		return 0, false, errs.Newf(errs.ParseError, "unknown", "line %d: unknown mnemonic %q", lineNo, mnemonic)
	default:
		return 0, false, errs.Newf(errs.ParseError, "invalid_line", "line %d: malformed line %q", lineNo, line)
	}
}
