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

// Package script compiles the small high-level scripting dialect into LMC
// assembler text: a tokenizer, a recursive statement grouper, a
// shunting-yard expression solver, and a two-pass symbolic linker that
// resolves named memory slots and named jump targets to concrete addresses.
package script

import (
	"strconv"
	"strings"

	"github.com/syntox32/littleman/errs"
)

// Compiler drives tokenizing, statement grouping, per-statement code
// generation and symbolic linking. Its memory table and name generators are
// per-instance, so independent compiles never collide.
type Compiler struct {
	mem *Memory
}

// NewCompiler returns a Compiler ready to compile one program.
func NewCompiler() *Compiler {
	return &Compiler{mem: NewMemory()}
}

// Compile translates script source into LMC assembler text (§4.2 grammar),
// ready to be passed to asm.Assemble with no further options: the linker's
// addresses are always zero-based.
func Compile(source string) (string, error) {
	return NewCompiler().Compile(source)
}

// Compile translates source using c's memory table.
func (c *Compiler) Compile(source string) (string, error) {
	tokens, err := Tokenize(source)
	if err != nil {
		return "", err
	}
	statements := GroupStatements(tokens)

	var body []asmItem
	for _, st := range statements {
		items, err := c.compileStatement(st)
		if err != nil {
			return "", err
		}
		body = append(body, items...)
	}

	return c.link(body)
}

// compileStatement dispatches on a shape predicate over the statement's
// tokens, per §4.6.
func (c *Compiler) compileStatement(st *Statement) ([]asmItem, error) {
	switch {
	case len(st.Tokens) == 0:
		return nil, nil
	case isAssignment(st.Tokens):
		return c.compileAssignment(st.Tokens)
	case isConditional(st.Tokens):
		return c.compileConditional(st)
	case isCall(st.Tokens):
		return c.compileCall(st.Tokens)
	case st.Tokens[0].Kind == While:
		return nil, errs.New(errs.ParseError, "unrecognised_statement", "while is recognised but has no emission path")
	default:
		return nil, errs.New(errs.ParseError, "unrecognised_statement", "statement does not match any known shape")
	}
}

func isAssignment(tokens []Token) bool {
	return len(tokens) >= 3 && tokens[0].Kind == Identifier && tokens[1].Kind == Equals
}

func isConditional(tokens []Token) bool {
	return len(tokens) >= 3 && tokens[0].Kind == Conditional && tokens[1].Kind == LParen
}

func isCall(tokens []Token) bool {
	return len(tokens) == 4 && tokens[0].Kind == Function &&
		tokens[1].Kind == LParen && tokens[2].Kind == Identifier && tokens[3].Kind == RParen
}

// compileAssignment implements §4.6's three assignment shapes.
func (c *Compiler) compileAssignment(tokens []Token) ([]asmItem, error) {
	lhs := tokens[0].Lexeme
	rhs := tokens[2:]

	switch {
	case len(rhs) == 1 && isDigits(rhs[0].Lexeme) && !c.mem.HasReference(lhs):
		v, err := strconv.Atoi(rhs[0].Lexeme)
		if err != nil {
			return nil, errs.Wrap(errs.ParseError, "expression", err, "literal is not an integer")
		}
		c.mem.AddReference(lhs, v)
		return nil, nil

	case len(rhs) == 1 && rhs[0].Kind == Identifier && !isDigits(rhs[0].Lexeme):
		rhsName := rhs[0].Lexeme
		if !c.mem.HasReference(rhsName) {
			return nil, errs.Newf(errs.ParseError, "unresolved_identifier", "identifier %q has no value", rhsName)
		}
		if !c.mem.HasReference(lhs) {
			c.mem.AddReference(lhs, 0)
		}
		return []asmItem{
			NewInstruction("LDA").WithMemoryRef(rhsName),
			NewInstruction("STA").WithMemoryRef(lhs),
		}, nil

	default:
		temp := c.mem.GenTempName()
		c.mem.AddReference(temp, 0)

		exprAsm, err := genRuntimeExpr(rhs, c.mem, temp)
		if err != nil {
			return nil, err
		}

		if !c.mem.HasReference(lhs) {
			c.mem.AddReference(lhs, 0)
		}

		items := make([]asmItem, 0, len(exprAsm)+2)
		for _, in := range exprAsm {
			items = append(items, in)
		}
		items = append(items,
			NewInstruction("LDA").WithMemoryRef(temp),
			NewInstruction("STA").WithMemoryRef(lhs),
		)
		return items, nil
	}
}

// compileConditional implements §4.6's conditional shape. The guard is
// either the identifier itself (when it is a single bare identifier, so the
// branch is taken dynamically from its current value) or folded to a
// constant at compile time otherwise, matching the source's treatment of
// compound guard expressions.
func (c *Compiler) compileConditional(st *Statement) ([]asmItem, error) {
	tokens := st.Tokens
	if len(tokens) < 3 || tokens[len(tokens)-1].Kind != RParen {
		return nil, errs.New(errs.ParseError, "unrecognised_statement", "malformed if condition")
	}
	guard := tokens[2 : len(tokens)-1]
	if len(guard) == 0 {
		return nil, errs.New(errs.ParseError, "unrecognised_statement", "empty if condition")
	}

	var guardName string
	if len(guard) == 1 && guard[0].Kind == Identifier && !isDigits(guard[0].Lexeme) {
		guardName = guard[0].Lexeme
		if !c.mem.HasReference(guardName) {
			return nil, errs.Newf(errs.ParseError, "unresolved_identifier", "identifier %q has no value", guardName)
		}
	} else {
		val, err := evalConstant(guard, c.mem.Values())
		if err != nil {
			return nil, err
		}
		guardName = c.mem.GenTempName()
		c.mem.AddReference(guardName, val)
	}

	jumpName := c.mem.GenJumpName()
	items := []asmItem{
		NewInstruction("LDA").WithMemoryRef(guardName),
		NewInstruction("BRZ").WithJumpRef(jumpName),
	}
	for _, child := range st.Children {
		childItems, err := c.compileStatement(child)
		if err != nil {
			return nil, err
		}
		items = append(items, childItems...)
	}
	items = append(items, JumpFlag{Name: jumpName})
	return items, nil
}

// compileCall implements §4.6's print/read call shapes.
func (c *Compiler) compileCall(tokens []Token) ([]asmItem, error) {
	fn := tokens[0].Lexeme
	varName := tokens[2].Lexeme
	literal := isDigits(varName)

	switch fn {
	case "print":
		if literal {
			v, err := strconv.Atoi(varName)
			if err != nil {
				return nil, errs.Wrap(errs.ParseError, "expression", err, "literal is not an integer")
			}
			temp := c.mem.GenTempName()
			c.mem.AddReference(temp, v)
			return []asmItem{
				NewInstruction("LDA").WithMemoryRef(temp),
				NewInstruction("OUT"),
			}, nil
		}
		if !c.mem.HasReference(varName) {
			return nil, errs.Newf(errs.ParseError, "unresolved_identifier", "identifier %q has no value", varName)
		}
		return []asmItem{
			NewInstruction("LDA").WithMemoryRef(varName),
			NewInstruction("OUT"),
		}, nil

	case "read":
		if literal {
			return nil, errs.New(errs.ParseError, "invalid_read_target", "read() target must be an identifier")
		}
		if !c.mem.HasReference(varName) {
			return nil, errs.Newf(errs.ParseError, "read_undeclared", "read() target %q is not declared", varName)
		}
		temp := c.mem.GenTempName()
		c.mem.AddReference(temp, 0)
		return []asmItem{
			NewInstruction("INP"),
			NewInstruction("STA").WithMemoryRef(temp),
			NewInstruction("LDA").WithMemoryRef(temp),
			NewInstruction("STA").WithMemoryRef(varName),
		}, nil

	default:
		return nil, errs.Newf(errs.ParseError, "unsupported_function", "%q is not callable here", fn)
	}
}

// link assembles the final instruction list per §4.7: a BRA over the data
// prelude, the prelude's MEM slots, the concatenated statement fragments,
// and a final HLT — then coalesces labels, binds memory references and
// binds jump references, in that order.
func (c *Compiler) link(body []asmItem) (string, error) {
	all := c.mem.GenPrelude()
	all = append(all, body...)
	all = append(all, NewInstruction("HLT"))

	resolved, err := coalesceLabels(all)
	if err != nil {
		return "", err
	}
	if err := c.mem.BindMemoryRefs(resolved); err != nil {
		return "", err
	}
	if err := bindJumpRefs(resolved); err != nil {
		return "", err
	}

	lines := make([]string, 0, len(resolved))
	for _, instr := range resolved {
		lines = append(lines, instr.Asm())
	}
	return strings.Join(lines, "\n"), nil
}

// coalesceLabels walks the raw item list once, attaching each JumpFlag as a
// label of the instruction immediately following it (consecutive flags all
// accumulate on the same instruction) and dropping the flags from the
// output. A JumpFlag with nothing after it is an internal invariant
// failure: the linker itself only ever emits one immediately before a real
// instruction.
func coalesceLabels(items []asmItem) ([]*Instruction, error) {
	var out []*Instruction
	var pending []string

	for _, it := range items {
		switch v := it.(type) {
		case JumpFlag:
			pending = append(pending, v.Name)
		case *Instruction:
			for _, name := range pending {
				v.AddLabel(name)
			}
			pending = nil
			out = append(out, v)
		}
	}
	if len(pending) > 0 {
		return nil, errs.New(errs.AssemblerError, "jumpflag_left_after_coalesce", "a JumpFlag was not followed by any instruction")
	}
	return out, nil
}

// bindJumpRefs resolves every instruction's symbolic jump reference to the
// index of the instruction carrying that label.
func bindJumpRefs(instrs []*Instruction) error {
	index := make(map[string]int)
	for i, instr := range instrs {
		for _, label := range instr.Labels {
			index[label] = i
		}
	}
	for _, instr := range instrs {
		if !instr.HasJumpRef() {
			continue
		}
		idx, ok := index[instr.refName]
		if !ok {
			return errs.Newf(errs.ParseError, "unresolved_jump", "no label named %q", instr.refName)
		}
		instr.SetAddress(idx)
	}
	return nil
}
