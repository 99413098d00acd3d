package vm_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/syntox32/littleman/errs"
	"github.com/syntox32/littleman/vm"
)

// word builds an instruction word for mem size m, opcode op, operand arg.
func word(m, op, arg int) int { return op*m + arg }

func TestRun_addSubHalt(t *testing.T) {
	m := 10
	program := []int{
		word(m, vm.OpLDA, 5), // LDA 5
		word(m, vm.OpADD, 6), // ADD 6
		word(m, vm.OpSUB, 7), // SUB 7
		word(m, vm.OpSTA, 8), // STA 8
		word(m, vm.OpHLT, 0), // HLT
		3, 4, 1, 0, 0,
	}
	mc, err := vm.New(program, vm.MemSize(m))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := mc.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if mc.AC != 6 {
		t.Errorf("AC = %d, want 6", mc.AC)
	}
	if mc.Memory[8] != 6 {
		t.Errorf("memory[8] = %d, want 6", mc.Memory[8])
	}
	if mc.Running {
		t.Error("machine still running after HLT")
	}
}

func TestRun_branching(t *testing.T) {
	m := 100
	// AC starts at 0; BRZ 4 should be taken straight to HLT, skipping the
	// INP/OUT in between.
	program := []int{
		word(m, vm.OpBRZ, 4),
		word(m, vm.OpIO, 1), // INP
		word(m, vm.OpIO, 2), // OUT
		word(m, vm.OpBRA, 0),
		word(m, vm.OpHLT, 0),
	}
	mc, err := vm.New(program, vm.MemSize(m))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := mc.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(mc.Output) != 0 {
		t.Errorf("expected no output, got %v", mc.Output)
	}
}

// TestRun_brp covers scenario 3 of SPEC_FULL.md §8: BRP skip-on-positive,
// table-driven over its two data-word variants (jump taken vs. fall-through).
func TestRun_brp(t *testing.T) {
	m := 10
	tests := []struct {
		name     string
		dataWord int
		want     string
	}{
		{"positive data word takes the branch", 1, "1"},
		{"zero data word falls through", 0, "5"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			program := []int{
				word(m, vm.OpLDA, 5), // 0: LDA 5
				word(m, vm.OpBRP, 3), // 1: BRP 3
				word(m, vm.OpLDA, 6), // 2: LDA 6
				word(m, vm.OpIO, 2),  // 3: OUT
				word(m, vm.OpHLT, 0), // 4: HLT
				tc.dataWord,          // 5: MEM <dataWord>
				5,                    // 6: MEM 5
			}
			mc, err := vm.New(program, vm.MemSize(m))
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if err := mc.Run(); err != nil {
				t.Fatalf("Run: %v", err)
			}
			if len(mc.Output) != 1 || mc.Output[0] != tc.want {
				t.Errorf("Output = %v, want [%s]", mc.Output, tc.want)
			}
		})
	}
}

func TestRun_inputOutput(t *testing.T) {
	m := 100
	program := []int{
		word(m, vm.OpIO, 1), // INP
		word(m, vm.OpIO, 2), // OUT
		word(m, vm.OpHLT, 0),
	}
	mc, err := vm.New(program, vm.MemSize(m), vm.Input(vm.FixedInput(42)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := mc.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(mc.Output) != 1 || mc.Output[0] != "42" {
		t.Errorf("Output = %v, want [42]", mc.Output)
	}
}

func TestRun_tee(t *testing.T) {
	m := 100
	program := []int{
		word(m, vm.OpIO, 1),
		word(m, vm.OpIO, 2),
		word(m, vm.OpHLT, 0),
	}
	var buf bytes.Buffer
	mc, err := vm.New(program, vm.MemSize(m), vm.Input(vm.FixedInput(7)), vm.Tee(&buf))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := mc.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if buf.String() != "7\n" {
		t.Errorf("tee output = %q, want %q", buf.String(), "7\n")
	}
}

func TestRun_inputExhausted(t *testing.T) {
	m := 100
	program := []int{
		word(m, vm.OpIO, 1),
		word(m, vm.OpHLT, 0),
	}
	mc, err := vm.New(program, vm.MemSize(m), vm.Input(vm.SliceInput()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = mc.Run()
	if !errs.Is(err, errs.ExecuteError) {
		t.Fatalf("Run error = %v, want ExecuteError", err)
	}
}

func TestRun_pcOutOfRange(t *testing.T) {
	m := 10
	mc, err := vm.New([]int{word(m, vm.OpHLT, 0)}, vm.MemSize(m))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mc.PC = 50
	err = mc.Run()
	if !errs.Is(err, errs.ExecuteError) {
		t.Fatalf("Run error = %v, want ExecuteError", err)
	}
}

func TestRun_unknownInstruction(t *testing.T) {
	m := 10
	program := []int{word(m, 4, 0)} // opcode 4 is not defined in the LMC table
	mc, err := vm.New(program, vm.MemSize(m))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = mc.Run()
	if !errs.Is(err, errs.ExecuteError) {
		t.Fatalf("Run error = %v, want ExecuteError", err)
	}
}

func TestStepper_rollback(t *testing.T) {
	m := 100
	program := []int{
		word(m, vm.OpLDA, 3),
		word(m, vm.OpADD, 4),
		word(m, vm.OpHLT, 0),
		5, 6,
	}
	mc, err := vm.New(program, vm.MemSize(m))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	st := vm.NewStepper(mc)

	if res, err := st.Next(); err != nil || res != vm.StepOK {
		t.Fatalf("step 1: res=%v err=%v", res, err)
	}
	if mc.AC != 5 {
		t.Fatalf("AC after LDA = %d, want 5", mc.AC)
	}
	if res, err := st.Next(); err != nil || res != vm.StepOK {
		t.Fatalf("step 2: res=%v err=%v", res, err)
	}
	if mc.AC != 11 {
		t.Fatalf("AC after ADD = %d, want 11", mc.AC)
	}

	if undone := st.Rollback(1); undone != 1 {
		t.Fatalf("Rollback = %d, want 1", undone)
	}
	if mc.AC != 5 {
		t.Fatalf("AC after rollback = %d, want 5", mc.AC)
	}

	if res, err := st.Next(); err != nil || res != vm.StepOK {
		t.Fatalf("step 2 replay: res=%v err=%v", res, err)
	}
	if res, err := st.Next(); err != nil || res != vm.StepHalted {
		t.Fatalf("step 3: res=%v err=%v", res, err)
	}
	if mc.Running {
		t.Error("machine still running after HLT")
	}
}

// spyInput counts ReadInt calls, so tests can assert the Stepper never reads
// input on its own before SupplyInput is called.
type spyInput struct {
	calls int
}

func (s *spyInput) ReadInt() (int, error) {
	s.calls++
	return 0, nil
}

func TestStepper_inputOutputSignals(t *testing.T) {
	m := 100
	program := []int{
		word(m, vm.OpIO, 1),
		word(m, vm.OpIO, 2),
		word(m, vm.OpHLT, 0),
	}
	mc, err := vm.New(program, vm.MemSize(m))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	st := vm.NewStepper(mc)

	if res, _ := st.Next(); res != vm.StepInputRequired {
		t.Errorf("res = %v, want StepInputRequired", res)
	}
	if err := st.SupplyInput(9); err != nil {
		t.Fatalf("SupplyInput: %v", err)
	}
	if mc.AC != 9 {
		t.Fatalf("AC after SupplyInput = %d, want 9", mc.AC)
	}
	if res, _ := st.Next(); res != vm.StepOutputProduced {
		t.Errorf("res = %v, want StepOutputProduced", res)
	}
	if len(mc.Output) != 1 || mc.Output[0] != "9" {
		t.Errorf("Output = %v, want [9]", mc.Output)
	}
	if res, _ := st.Next(); res != vm.StepHalted {
		t.Errorf("res = %v, want StepHalted", res)
	}
}

// TestStepper_doesNotReadInputBeforeSupply proves Next stops short of
// reading: a Stepper driven with a counting InputReader must leave it
// untouched until SupplyInput is called.
func TestStepper_doesNotReadInputBeforeSupply(t *testing.T) {
	m := 100
	program := []int{
		word(m, vm.OpIO, 1),
		word(m, vm.OpHLT, 0),
	}
	spy := &spyInput{}
	mc, err := vm.New(program, vm.MemSize(m), vm.Input(spy))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	st := vm.NewStepper(mc)

	if res, _ := st.Next(); res != vm.StepInputRequired {
		t.Fatalf("res = %v, want StepInputRequired", res)
	}
	if spy.calls != 0 {
		t.Fatalf("ReadInt called %d times before SupplyInput, want 0", spy.calls)
	}
	if _, err := st.Next(); err == nil {
		t.Fatal("expected Next to reject a second call while input is pending")
	}
	if spy.calls != 0 {
		t.Fatalf("ReadInt called %d times after rejected Next, want 0", spy.calls)
	}

	if err := st.SupplyInput(5); err != nil {
		t.Fatalf("SupplyInput: %v", err)
	}
	if spy.calls != 0 {
		t.Fatalf("SupplyInput must not call ReadInt; calls = %d", spy.calls)
	}
	if mc.AC != 5 {
		t.Fatalf("AC = %d, want 5", mc.AC)
	}

	if err := st.SupplyInput(7); err == nil {
		t.Fatal("expected SupplyInput to reject a call with nothing pending")
	}

	if res, err := st.Next(); err != nil || res != vm.StepHalted {
		t.Fatalf("final step: res=%v err=%v", res, err)
	}
}

func TestFixedInput_neverExhausts(t *testing.T) {
	r := vm.FixedInput(3)
	for i := 0; i < 5; i++ {
		v, err := r.ReadInt()
		if err != nil || v != 3 {
			t.Fatalf("ReadInt() = %d, %v, want 3, nil", v, err)
		}
	}
}

func TestSliceInput_exhausts(t *testing.T) {
	r := vm.SliceInput(1, 2)
	for _, want := range []int{1, 2} {
		v, err := r.ReadInt()
		if err != nil || v != want {
			t.Fatalf("ReadInt() = %d, %v, want %d, nil", v, err, want)
		}
	}
	if _, err := r.ReadInt(); err != io.EOF {
		t.Fatalf("ReadInt() err = %v, want io.EOF", err)
	}
}
