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

import "strings"

// Tokenize turns script source into a flat token stream. Comments start
// with "#" and run to end of line; whitespace separates identifiers without
// being preserved; the symbol set produces single-character tokens; reserved
// identifiers become keyword tokens and everything else (including
// digit-only lexemes) becomes an Identifier.
func Tokenize(source string) ([]Token, error) {
	r := newStringReader(source)
	var tokens []Token
	var buf strings.Builder

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		lex := buf.String()
		buf.Reset()
		if kind, ok := keywords[lex]; ok {
			tokens = append(tokens, Token{Lexeme: lex, Kind: kind})
			return
		}
		tokens = append(tokens, Token{Lexeme: lex, Kind: Identifier})
	}

	for !r.atEnd() {
		c, _ := r.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			flush()
			r.skipWhitespace()
		case c == '#':
			r.readUntil('\n')
		default:
			if kind, ok := symbols[c]; ok {
				flush()
				ch, _ := r.next()
				tokens = append(tokens, Token{Lexeme: string(ch), Kind: kind})
				continue
			}
			ch, _ := r.next()
			buf.WriteByte(ch)
		}
	}
	flush()

	return applyUnaryFixup(tokens), nil
}

// applyUnaryFixup implements the sole mechanism for negative/signed literals:
// after an "=" a leading "+"/"-" gets a synthetic Identifier("0") inserted
// before it, and any two operator tokens left adjacent after that get a "0"
// inserted between them. The special pair "-+" collapses to "-" first, since
// that is the one sign combination the source chooses to treat as
// cancelling rather than stacking.
func applyUnaryFixup(tokens []Token) []Token {
	collapsed := make([]Token, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		if tokens[i].Kind == Sub && i+1 < len(tokens) && tokens[i+1].Kind == Add {
			collapsed = append(collapsed, tokens[i])
			i++
			continue
		}
		collapsed = append(collapsed, tokens[i])
	}

	out := make([]Token, 0, len(collapsed)+4)
	for _, t := range collapsed {
		if isOperator(t) && len(out) > 0 {
			prev := out[len(out)-1]
			if prev.Kind == Equals || isOperator(prev) {
				out = append(out, Token{Lexeme: "0", Kind: Identifier})
			}
		}
		out = append(out, t)
	}
	return out
}
