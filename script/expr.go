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

	"github.com/syntox32/littleman/errs"
)

func precedence(t Token) int {
	switch t.Kind {
	case Add, Sub:
		return 1
	case Mul, Div:
		return 2
	}
	return 0
}

// shuntingYard converts an infix token list to RPN. In substitute mode,
// non-numeric identifiers are looked up in values and replaced by their
// integer value (constant fold); otherwise they are preserved as symbolic
// references for runtime emission.
func shuntingYard(tokens []Token, values map[string]int, substitute bool) ([]Token, error) {
	var output []Token
	var ops []Token

	for _, t := range tokens {
		switch {
		case t.Kind == Function:
			ops = append(ops, t)

		case t.Kind == Identifier && isDigits(t.Lexeme):
			output = append(output, t)

		case t.Kind == Identifier:
			if substitute {
				v, ok := values[t.Lexeme]
				if !ok {
					return nil, errs.Newf(errs.ParseError, "unresolved_identifier", "identifier %q has no value", t.Lexeme)
				}
				output = append(output, Token{Lexeme: strconv.Itoa(v), Kind: Identifier})
			} else {
				output = append(output, t)
			}

		case t.Kind == Seperator:
			for len(ops) > 0 && ops[len(ops)-1].Kind != LParen {
				output = append(output, ops[len(ops)-1])
				ops = ops[:len(ops)-1]
			}

		case isOperator(t):
			for len(ops) > 0 && precedence(t) <= precedence(ops[len(ops)-1]) {
				output = append(output, ops[len(ops)-1])
				ops = ops[:len(ops)-1]
			}
			ops = append(ops, t)

		case t.Kind == LParen:
			ops = append(ops, t)

		case t.Kind == RParen:
			for len(ops) > 0 && ops[len(ops)-1].Kind != LParen {
				output = append(output, ops[len(ops)-1])
				ops = ops[:len(ops)-1]
			}
			if len(ops) == 0 {
				return nil, errs.New(errs.ParseError, "unbalanced_parens", "unmatched closing parenthesis")
			}
			ops = ops[:len(ops)-1] // discard the LParen
			if len(ops) > 0 && ops[len(ops)-1].Kind == Function {
				output = append(output, ops[len(ops)-1])
				ops = ops[:len(ops)-1]
			}

		default:
			return nil, errs.Newf(errs.ParseError, "expression", "unexpected token %q in expression", t.Lexeme)
		}
	}

	for len(ops) > 0 {
		if ops[len(ops)-1].Kind == LParen {
			return nil, errs.New(errs.ParseError, "unbalanced_parens", "unmatched opening parenthesis")
		}
		output = append(output, ops[len(ops)-1])
		ops = ops[:len(ops)-1]
	}
	return output, nil
}

// evalConstant folds tokens to an integer, given the bound values of any
// identifiers it references.
func evalConstant(tokens []Token, values map[string]int) (int, error) {
	rpn, err := shuntingYard(tokens, values, true)
	if err != nil {
		return 0, err
	}
	return evalRPN(rpn)
}

// evalRPN reduces an RPN token stream to a single integer using a value
// stack. Division truncates toward zero, matching Go's native integer
// division.
func evalRPN(rpn []Token) (int, error) {
	var stack []int
	for _, t := range rpn {
		if t.Kind == Identifier {
			v, err := strconv.Atoi(t.Lexeme)
			if err != nil {
				return 0, errs.Wrap(errs.ParseError, "expression", err, "expected an integer literal after substitution")
			}
			stack = append(stack, v)
			continue
		}
		if len(stack) < 2 {
			return 0, errs.New(errs.ParseError, "expression", "operator with insufficient operands")
		}
		right, left := stack[len(stack)-1], stack[len(stack)-2]
		stack = stack[:len(stack)-2]

		var res int
		switch t.Kind {
		case Add:
			res = left + right
		case Sub:
			res = left - right
		case Mul:
			res = left * right
		case Div:
			if right == 0 {
				return 0, errs.New(errs.ParseError, "division_by_zero", "division by zero in constant expression")
			}
			res = left / right
		default:
			return 0, errs.New(errs.ParseError, "expression", "unexpected token kind in RPN stream")
		}
		stack = append(stack, res)
	}
	if len(stack) != 1 {
		return 0, errs.New(errs.ParseError, "expression", "expression did not reduce to a single value")
	}
	return stack[0], nil
}

// genRuntimeExpr lowers tokens into instructions that leave the expression's
// value in the memory slot named resultVar. Each binary operator pops two
// operand names, emits LDA l; {ADD,SUB} r; STA temp against a single
// destination temp allocated for the whole expression, and pushes temp's
// name back. "*" and "/" are rejected: they are tokenised and
// shunting-yarded but never lowered to instructions.
func genRuntimeExpr(tokens []Token, mem *Memory, resultVar string) ([]*Instruction, error) {
	rpn, err := shuntingYard(tokens, nil, false)
	if err != nil {
		return nil, err
	}

	temp := mem.GenTempName()
	mem.AddReference(temp, 0)

	nameFor := func(t Token) string {
		if isDigits(t.Lexeme) {
			n := mem.GenTempName()
			v, _ := strconv.Atoi(t.Lexeme)
			mem.AddReference(n, v)
			return n
		}
		return t.Lexeme
	}

	var asm []*Instruction
	var stack []string

	for _, t := range rpn {
		switch {
		case t.Kind == Identifier:
			stack = append(stack, nameFor(t))

		case t.Kind == Add || t.Kind == Sub:
			if len(stack) < 2 {
				return nil, errs.New(errs.ParseError, "expression", "operator with insufficient operands")
			}
			right, left := stack[len(stack)-1], stack[len(stack)-2]
			stack = stack[:len(stack)-2]

			op := "ADD"
			if t.Kind == Sub {
				op = "SUB"
			}
			asm = append(asm,
				NewInstruction("LDA").WithMemoryRef(left),
				NewInstruction(op).WithMemoryRef(right),
				NewInstruction("STA").WithMemoryRef(temp),
			)
			stack = append(stack, temp)

		case t.Kind == Mul || t.Kind == Div:
			return nil, errs.Newf(errs.ParseError, "unsupported_operator", "%q is not supported in a runtime expression", t.Lexeme)

		default:
			return nil, errs.New(errs.ParseError, "expression", "unexpected token kind in RPN stream")
		}
	}
	if len(stack) != 1 {
		return nil, errs.New(errs.ParseError, "expression", "expression did not reduce to a single value")
	}

	asm = append(asm,
		NewInstruction("LDA").WithMemoryRef(stack[0]),
		NewInstruction("STA").WithMemoryRef(resultVar),
	)
	return asm, nil
}
