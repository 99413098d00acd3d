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

// stringReader is a position-tracked byte cursor over script source, used by
// the tokenizer. Unlike a bufio.Reader it supports peeking without
// consuming and reading runs up to a delimiter.
type stringReader struct {
	s   string
	idx int
}

func newStringReader(s string) *stringReader { return &stringReader{s: s} }

// next returns the byte at the cursor and advances it. ok is false at end of
// input.
func (r *stringReader) next() (byte, bool) {
	if r.idx >= len(r.s) {
		return 0, false
	}
	c := r.s[r.idx]
	r.idx++
	return c, true
}

// peek returns the byte at the cursor without advancing it.
func (r *stringReader) peek() (byte, bool) {
	if r.idx >= len(r.s) {
		return 0, false
	}
	return r.s[r.idx], true
}

// readUntil consumes bytes up to and including c, and returns them. If c is
// never found it returns everything up to the end of input.
func (r *stringReader) readUntil(c byte) string {
	var sb strings.Builder
	for r.idx < len(r.s) {
		ch := r.s[r.idx]
		r.idx++
		sb.WriteByte(ch)
		if ch == c {
			break
		}
	}
	return sb.String()
}

// skipWhitespace advances the cursor past spaces, tabs and newlines.
func (r *stringReader) skipWhitespace() {
	for r.idx < len(r.s) {
		switch r.s[r.idx] {
		case ' ', '\t', '\r', '\n':
			r.idx++
		default:
			return
		}
	}
}

func (r *stringReader) pos() int    { return r.idx }
func (r *stringReader) length() int { return len(r.s) }
func (r *stringReader) atEnd() bool { return r.idx >= len(r.s) }
