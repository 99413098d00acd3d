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

// lmc loads a .man or .script source file, assembles or compiles it as
// appropriate, and runs it on the LMC virtual machine.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/syntox32/littleman/asm"
	"github.com/syntox32/littleman/errs"
	"github.com/syntox32/littleman/internal/errwriter"
	"github.com/syntox32/littleman/script"
	"github.com/syntox32/littleman/vm"
)

var debug bool

func atExit(err error) {
	if err == nil {
		return
	}
	if !debug {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "%+v\n", err)
	os.Exit(1)
}

// load reads name and returns a vector of instruction words, dispatching
// purely by file extension per SPEC_FULL.md §4.8.
func load(name string, memSize int, oneBased bool) ([]int, error) {
	src, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "reading source file")
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".man":
		opts := []asm.Option{asm.MemSize(memSize)}
		if oneBased {
			opts = append(opts, asm.OneBased())
		}
		return asm.Assemble(string(src), opts...)
	case ".script":
		text, err := script.Compile(string(src))
		if err != nil {
			return nil, err
		}
		return asm.Assemble(text, asm.MemSize(memSize))
	default:
		return nil, errs.Newf(errs.ExtensionError, "unrecognised_extension", "%q is neither .man nor .script", name)
	}
}

// runStepping drives the stepping API instead of the batch executor,
// printing one line per step. It is a flat trace, not the interactive
// debugger excluded by the Non-goals. Each StepInputRequired is resolved
// with the fixed -input value via SupplyInput, exercising the suspend/resume
// contract rather than letting the Stepper read input on its own.
func runStepping(mc *vm.Machine, inputVal int, out io.Writer) error {
	st := vm.NewStepper(mc)
	for {
		result, err := st.Next()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "pc=%d ac=%d\n", mc.PC, mc.AC)
		switch result {
		case vm.StepInputRequired:
			if err := st.SupplyInput(inputVal); err != nil {
				return err
			}
			fmt.Fprintf(out, "supplied %d\n", inputVal)
		case vm.StepOutputProduced:
			fmt.Fprintln(out, mc.Output[len(mc.Output)-1])
		case vm.StepHalted:
			return nil
		}
	}
}

func run() error {
	memSize := flag.Int("mem", vm.DefaultMemSize, "mailbox count M")
	oneBased := flag.Bool("one-based", false, "operands in .man source are numbered from 1 (no effect on .script)")
	inputVal := flag.Int("input", 0, "fixed value supplied for every INP")
	step := flag.Bool("step", false, "drive the stepping API, printing one line per step")
	flag.BoolVar(&debug, "debug", false, "report errors with their full cause chain")
	flag.Parse()

	if flag.NArg() != 1 {
		return errs.New(errs.ExtensionError, "missing_source", "usage: lmc [flags] <source-file>")
	}

	program, err := load(flag.Arg(0), *memSize, *oneBased)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(os.Stdout)
	stdout := errwriter.New(bw)
	defer bw.Flush()

	mc, err := vm.New(program, vm.MemSize(*memSize), vm.Input(vm.FixedInput(*inputVal)))
	if err != nil {
		return err
	}

	if *step {
		return runStepping(mc, *inputVal, stdout)
	}

	if err := mc.Run(); err != nil {
		return err
	}
	for _, line := range mc.Output {
		if _, err := io.WriteString(stdout, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	atExit(run())
}
