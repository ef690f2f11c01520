package assembler_test

import (
	"testing"

	"github.com/zeramorphic/armul/assembler"
	"github.com/zeramorphic/armul/hardware/cpu"
	"github.com/zeramorphic/armul/hardware/memory"
	"github.com/zeramorphic/armul/hardware/registers"
)

func mustAssemble(t *testing.T, src string) *assembler.Program {
	t.Helper()
	prog, diags := assembler.Assemble(src)
	if diags != nil {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	return prog
}

func TestAssembleDataProcessingImmediate(t *testing.T) {
	prog := mustAssemble(t, "mov r0, #5\nadd r1, r0, #3\n")
	if len(prog.Words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(prog.Words))
	}
	if prog.Words[0] == 0 || prog.Words[4] == 0 {
		t.Fatalf("expected nonzero encoded words, got %#08x %#08x", prog.Words[0], prog.Words[4])
	}
}

func TestAssembleForwardBranchReference(t *testing.T) {
	src := "b target\nmov r0, #1\ntarget:\nmov r1, #2\n"
	prog := mustAssemble(t, src)
	// b at address 0 targets address 8; offset = 8 - 0 - 8 = 0.
	if prog.Words[0] != 0xEA000000 {
		t.Errorf("forward branch word = %#08x, want %#08x", prog.Words[0], 0xEA000000)
	}
}

func TestAssembleBackwardBranchReference(t *testing.T) {
	src := "loop:\nsub r0, r0, #1\nb loop\n"
	prog := mustAssemble(t, src)
	// b at address 4 targets address 0; offset = 0 - 4 - 8 = -12 -> -3 words.
	offsetWords := int32(-3)
	want := uint32(0xEA000000) | uint32(offsetWords)&0x00FFFFFF
	if prog.Words[4] != want {
		t.Errorf("backward branch word = %#08x, want %#08x", prog.Words[4], want)
	}
}

func TestAssembleEquConstant(t *testing.T) {
	src := "COUNT equ 10\nmov r0, #COUNT\n"
	prog := mustAssemble(t, src)
	if prog.Symbols["count"] != 10 {
		t.Errorf("expected count=10 in symbol table, got %v", prog.Symbols["count"])
	}
	if prog.Words[0] == 0 {
		t.Errorf("expected mov to encode using the equ constant")
	}
}

func TestAssembleEquForwardReferenceFails(t *testing.T) {
	src := "mov r0, #COUNT\nCOUNT equ 10\n"
	_, diags := assembler.Assemble(src)
	if diags == nil {
		t.Fatalf("expected a diagnostic for a forward-referenced equ constant")
	}
}

func TestAssembleDwEmitsOneWordPerField(t *testing.T) {
	src := "table:\ndw 1, 2, 3\n"
	prog := mustAssemble(t, src)
	if prog.Words[0] != 1 || prog.Words[4] != 2 || prog.Words[8] != 3 {
		t.Errorf("dw words = %v, want 1,2,3", []uint32{prog.Words[0], prog.Words[4], prog.Words[8]})
	}
}

func TestAssembleRejectsUnencodableImmediate(t *testing.T) {
	// 0x101 cannot be expressed as an 8-bit value rotated by an even amount.
	_, diags := assembler.Assemble("mov r0, #0x101\n")
	if diags == nil {
		t.Fatalf("expected a diagnostic for an unencodable immediate")
	}
}

func TestAssembleAdrPseudoOp(t *testing.T) {
	src := "here:\nadr r0, here\n"
	prog := mustAssemble(t, src)
	// pc of the adr instruction is 0+8=8; target is 0; distance 8, SUB.
	if prog.Words[0] == 0 {
		t.Fatalf("expected adr to encode as a nonzero sub")
	}
}

func TestAssembleTestDirectiveComments(t *testing.T) {
	src := "swi #2 ;! halts 2\n;! output hello\n;! r0 5\n"
	prog := mustAssemble(t, src)
	if len(prog.Expectations) != 3 {
		t.Fatalf("expected 3 expectations, got %d: %+v", len(prog.Expectations), prog.Expectations)
	}
	if prog.Expectations[0].Kind != assembler.ExpectHalts || prog.Expectations[0].Halts != 2 {
		t.Errorf("halts expectation wrong: %+v", prog.Expectations[0])
	}
	if prog.Expectations[1].Kind != assembler.ExpectOutput || prog.Expectations[1].Output != "hello" {
		t.Errorf("output expectation wrong: %+v", prog.Expectations[1])
	}
	if prog.Expectations[2].Kind != assembler.ExpectRegister || prog.Expectations[2].Reg != "r0" || prog.Expectations[2].Value != 5 {
		t.Errorf("register expectation wrong: %+v", prog.Expectations[2])
	}
}

func TestAssembleDuplicateLabelReported(t *testing.T) {
	_, diags := assembler.Assemble("a:\nmov r0, #1\na:\nmov r0, #2\n")
	if diags == nil {
		t.Fatalf("expected a diagnostic for a duplicate label")
	}
}

func TestAssembleCaseInsensitiveMnemonicsAndRegisters(t *testing.T) {
	prog := mustAssemble(t, "MOV R0, #1\nmov r1, #2\n")
	if len(prog.Words) != 2 {
		t.Fatalf("expected both lines to assemble")
	}
}

// TestAssembleDivisionRoutine assembles the classic repeated-subtraction
// division program and runs it to completion on the executor, checking
// that the assembler's encodings agree with the decoder's expectations.
func TestAssembleDivisionRoutine(t *testing.T) {
	src := `
loop:
    cmp r4, r5
    blt done
    sub r4, r4, r5
    add r3, r3, #1
    b loop
done:
    mov r0, #'3'
    swi #0
    mov r0, #'7'
    swi #0
    mov r0, #'/'
    swi #0
    mov r0, #'6'
    swi #0
    mov r0, #'='
    swi #0
    mov r0, r3
    swi #4
    mov r0, #'r'
    swi #0
    mov r0, r4
    swi #4
    swi #2
`
	prog := mustAssemble(t, src)

	mem := memory.NewMemory()
	for addr, word := range prog.Words {
		mem.WriteWord(addr, word)
	}
	c := cpu.NewCPU(mem)
	c.Regs.Set(registers.R4, 37)
	c.Regs.Set(registers.R5, 6)

	halted := false
	for i := 0; i < 200 && !halted; i++ {
		res := c.Step()
		if res.Fault != nil {
			t.Fatalf("step %d faulted at pc %#x: %v", i, res.Address, res.Fault)
		}
		halted = res.Halted
	}
	if !halted {
		t.Fatalf("program did not halt within the step budget")
	}
	if got := c.Output(); got != "37/6=6r1" {
		t.Errorf("output = %q, want %q", got, "37/6=6r1")
	}
}
