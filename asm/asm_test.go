package asm_test

import (
	"strconv"
	"testing"

	"github.com/syntox32/littleman/asm"
	"github.com/syntox32/littleman/errs"
)

func TestAssemble_inpOutEcho(t *testing.T) {
	words, err := asm.Assemble("INP\nOUT\nHLT\n")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	want := []int{901, 902, 0}
	if !equal(words, want) {
		t.Fatalf("words = %v, want %v", words, want)
	}
}

func TestAssemble_braOverData(t *testing.T) {
	words, err := asm.Assemble("BRA 2\nMEM 33333\nLDA 1\nOUT\nHLT\n")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	want := []int{602, 33333, 501, 902, 0}
	if !equal(words, want) {
		t.Fatalf("words = %v, want %v", words, want)
	}
}

// TestAssemble_brpSkipOnPositive covers scenario 3 of SPEC_FULL.md §8 at the
// assembler layer: BRP's word encoding over both data-word variants.
func TestAssemble_brpSkipOnPositive(t *testing.T) {
	tests := []struct {
		name     string
		dataWord int
		want     []int
	}{
		{"positive data word", 1, []int{505, 803, 506, 902, 0, 1, 5}},
		{"zero data word", 0, []int{505, 803, 506, 902, 0, 0, 5}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src := "LDA 5\nBRP 3\nLDA 6\nOUT\nHLT\nMEM " + strconv.Itoa(tc.dataWord) + "\nMEM 5\n"
			words, err := asm.Assemble(src)
			if err != nil {
				t.Fatalf("Assemble: %v", err)
			}
			if !equal(words, tc.want) {
				t.Fatalf("words = %v, want %v", words, tc.want)
			}
		})
	}
}

func TestAssemble_addAndSub(t *testing.T) {
	src := "MEM 10\nMEM 5\nLDA 1\nADD 2\nOUT\nLDA 1\nSUB 2\nOUT\nHLT\n"
	words, err := asm.Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	want := []int{10, 5, 501, 102, 902, 501, 202, 902, 0}
	if !equal(words, want) {
		t.Fatalf("words = %v, want %v", words, want)
	}
}

func TestAssemble_commentsAndBlankLines(t *testing.T) {
	src := "# a full comment line\n\nINP  # read a value\nOUT\nHLT\n"
	words, err := asm.Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	want := []int{901, 902, 0}
	if !equal(words, want) {
		t.Fatalf("words = %v, want %v", words, want)
	}
}

func TestAssemble_caseInsensitive(t *testing.T) {
	words, err := asm.Assemble("inp\nout\nhlt\n")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	want := []int{901, 902, 0}
	if !equal(words, want) {
		t.Fatalf("words = %v, want %v", words, want)
	}
}

func TestAssemble_oneBased(t *testing.T) {
	// 1-based LDA 2 / STA 3 addresses mailbox 1 / 2 in zero-based terms.
	words, err := asm.Assemble("LDA 2\nSTA 3\nHLT\n", asm.OneBased())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	want := []int{501, 302, 0}
	if !equal(words, want) {
		t.Fatalf("words = %v, want %v", words, want)
	}
}

func TestAssemble_unknownMnemonic(t *testing.T) {
	_, err := asm.Assemble("INP\nOUTTTT\nHLT\n")
	if !errs.Is(err, errs.ParseError) {
		t.Fatalf("err = %v, want ParseError", err)
	}
}

func TestAssemble_missingOperand(t *testing.T) {
	_, err := asm.Assemble("LDA\nHLT\n")
	if !errs.Is(err, errs.ParseError) {
		t.Fatalf("err = %v, want ParseError", err)
	}
}

func TestAssemble_memWithoutRangeCheck(t *testing.T) {
	words, err := asm.Assemble("MEM 999999\nHLT\n")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if words[0] != 999999 {
		t.Fatalf("words[0] = %d, want 999999", words[0])
	}
}

func TestAssemble_malformedLine(t *testing.T) {
	_, err := asm.Assemble("LDA 1 2\nHLT\n")
	if !errs.Is(err, errs.ParseError) {
		t.Fatalf("err = %v, want ParseError", err)
	}
}

func equal(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
