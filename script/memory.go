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
	"fmt"

	"github.com/syntox32/littleman/errs"
)

type memEntry struct {
	value int
	line  int // -1 until the data prelude is materialised
}

// Memory is the ordered name -> (value, resolved line) table. Insertion
// order fixes the layout order of the data prelude. The three monotonic
// name-generator counters (temp_N, mem_N, jump_N) live here as per-Compiler
// fields rather than package globals, so independent compiles never collide
// and tests can run in isolation.
type Memory struct {
	order []string
	table map[string]*memEntry

	tempCount int
	nameCount int
	jumpCount int
}

// NewMemory returns an empty memory table.
func NewMemory() *Memory {
	return &Memory{table: make(map[string]*memEntry)}
}

// HasReference reports whether name has a slot.
func (m *Memory) HasReference(name string) bool {
	_, ok := m.table[name]
	return ok
}

// GetValue returns the compile-time value bound to name, if any.
func (m *Memory) GetValue(name string) (int, bool) {
	e, ok := m.table[name]
	if !ok {
		return 0, false
	}
	return e.value, true
}

// Values returns a snapshot of every slot's current value, for use as the
// substitution table in a constant fold.
func (m *Memory) Values() map[string]int {
	out := make(map[string]int, len(m.table))
	for name, e := range m.table {
		out[name] = e.value
	}
	return out
}

// AddReference creates or overwrites the slot named name with value,
// preserving its original insertion position if it already existed.
func (m *Memory) AddReference(name string, value int) {
	if _, ok := m.table[name]; !ok {
		m.order = append(m.order, name)
	}
	m.table[name] = &memEntry{value: value, line: -1}
}

// GenTempName returns the next temp_N name and advances its counter.
func (m *Memory) GenTempName() string {
	name := fmt.Sprintf("temp_%d", m.tempCount)
	m.tempCount++
	return name
}

// GenName returns the next mem_N name and advances its counter.
func (m *Memory) GenName() string {
	name := fmt.Sprintf("mem_%d", m.nameCount)
	m.nameCount++
	return name
}

// GenJumpName returns the next jump_N name and advances its counter.
func (m *Memory) GenJumpName() string {
	name := fmt.Sprintf("jump_%d", m.jumpCount)
	m.jumpCount++
	return name
}

// GenPrelude returns the data prelude: a BRA jumping over the slots, one MEM
// per slot in insertion order (aliased to its name), and the JumpFlag the
// BRA targets. Each slot's resolved line is fixed to idx+1, since the
// prelude is always placed first and the leading BRA occupies index 0.
func (m *Memory) GenPrelude() []asmItem {
	jumpName := m.GenJumpName()
	items := []asmItem{NewInstruction("BRA").WithJumpRef(jumpName)}

	for idx, name := range m.order {
		e := m.table[name]
		items = append(items, NewInstruction("MEM").WithAddress(e.value).WithAlias(name))
		e.line = idx + 1
	}

	items = append(items, JumpFlag{Name: jumpName})
	return items
}

// BindMemoryRefs resolves every instruction's symbolic memory reference to
// its slot's bound line, in place.
func (m *Memory) BindMemoryRefs(instrs []*Instruction) error {
	for _, instr := range instrs {
		if !instr.HasMemoryRef() {
			continue
		}
		e, ok := m.table[instr.refName]
		if !ok {
			return errs.Newf(errs.ParseError, "unresolved_memory", "no memory slot named %q", instr.refName)
		}
		if e.line == -1 {
			return errs.Newf(errs.AssemblerError, "unbound_memory", "slot %q was never assigned a line", instr.refName)
		}
		instr.SetAddress(e.line)
	}
	return nil
}
