package cpu

import (
	"testing"

	"github.com/zeramorphic/armul/hardware/execution"
	"github.com/zeramorphic/armul/hardware/memory"
	"github.com/zeramorphic/armul/hardware/registers"
)

const (
	opAND = 0x0
	opSUB = 0x2
	opADD = 0x4
	opCMP = 0xA
	opMOV = 0xD
)

const (
	condEQ = 0x0
	condLT = 0xB
)

func newTestCPU() *CPU {
	return NewCPU(memory.NewMemory())
}

func (c *CPU) load(words ...uint32) {
	for i, w := range words {
		c.Mem.WriteWord(uint32(i*4), w)
	}
}

// Scenario 1: a conditional branch taken off a flag set purely through
// msr cpsr_flg must skip over an instruction that would otherwise fault,
// and a program ending in swi 2 must retire as Halted.
func TestScenarioConditionsChaining(t *testing.T) {
	c := newTestCPU()
	c.load(
		encMSRImm(condAL, false, true, 1, 0x01), // msr cpsr_flg, #0x40000000 (Z)
		encBranch(condEQ, false, 0),              // beq +0, skips the SWI100 below if Z is set
		encSWI(condAL, 100),                      // must never execute
		encSWI(condAL, 2),                        // halt
	)

	var last execution.Result
	for i := 0; i < 3; i++ {
		res := c.Step()
		if res.Fault != nil {
			t.Fatalf("step %d faulted: %v", i, res.Fault)
		}
		last = res
	}
	if !c.Regs.Z() {
		t.Fatalf("Z flag should be set after msr cpsr_flg")
	}
	if last.Address != 12 {
		t.Fatalf("expected the third retired step to be the halt at address 12, got address %#x", last.Address)
	}
	if !last.Halted {
		t.Fatalf("program should halt on swi 2, never reaching swi 100")
	}
}

// Scenario 2: stmia r0!, {} transfers one word (R15) and advances r0 by
// 0x40; a subsequent ldmia from the same original address reads it back and
// advances by 0x40 again.
func TestScenarioEmptyRegisterListBlockTransfer(t *testing.T) {
	c := newTestCPU()
	base := uint32(0x1000)

	c.load(
		encBlockTransfer(condAL, false, true, false, true, false, 0, 0), // stmia r0!, {}
		encBlockTransfer(condAL, false, true, false, true, true, 0, 0),  // ldmia r0!, {}
	)
	c.Regs.Set(registers.R0, base)

	res := c.Step()
	if res.Fault != nil {
		t.Fatalf("stmia faulted: %v", res.Fault)
	}
	if c.Regs.Get(registers.R0) != base+0x40 {
		t.Errorf("r0 after empty stmia = %#x, want %#x", c.Regs.Get(registers.R0), base+0x40)
	}
	stored := c.Mem.ReadWord(base)

	c.Regs.Set(registers.R0, base)
	res = c.Step()
	if res.Fault != nil {
		t.Fatalf("ldmia faulted: %v", res.Fault)
	}
	if c.Regs.Get(registers.R0) != base+0x40 {
		t.Errorf("r0 after empty ldmia = %#x, want %#x", c.Regs.Get(registers.R0), base+0x40)
	}
	if c.Regs.Get(registers.PC) != stored {
		t.Errorf("ldmia with empty list should load the stored word into PC")
	}
}

// Scenario 3: stmfd r0!, {r0, r1} with the base register first in the list
// must store the *original* r0 value at the lower address, not the
// post-writeback value.
func TestScenarioStoreBaseInRegisterList(t *testing.T) {
	c := newTestCPU()
	origR0 := uint32(0x2000)
	c.load(encBlockTransfer(condAL, true, false, false, true, false, 0, 0b11)) // stmfd r0!, {r0,r1}
	c.Regs.Set(registers.R0, origR0)
	c.Regs.Set(registers.R1, 0xCAFEBABE)

	res := c.Step()
	if res.Fault != nil {
		t.Fatalf("stmfd faulted: %v", res.Fault)
	}

	lower := c.Mem.ReadWord(origR0 - 8)
	upper := c.Mem.ReadWord(origR0 - 4)
	if lower != origR0 {
		t.Errorf("word at lower address = %#x, want original r0 %#x", lower, origR0)
	}
	if upper != 0xCAFEBABE {
		t.Errorf("word at upper address = %#x, want r1 0xCAFEBABE", upper)
	}
	if c.Regs.Get(registers.R0) != origR0-8 {
		t.Errorf("r0 after writeback = %#x, want %#x", c.Regs.Get(registers.R0), origR0-8)
	}
}

// Scenario 4: a stored halfword reads back zero-extended via ldrh, and
// sign-extended via ldrsh.
func TestScenarioHalfwordSignExtension(t *testing.T) {
	c := newTestCPU()
	memAddr := uint32(0x100)
	c.load(
		encHalfwordImm(condAL, true, true, false, false, 2, 0, 0b01, 0), // strh r0, [r2]
		encHalfwordImm(condAL, true, true, false, true, 2, 1, 0b01, 0),  // ldrh r1, [r2]
		encHalfwordImm(condAL, true, true, false, true, 3, 1, 0b11, 0),  // ldrsh r1, [r3]
	)
	c.Regs.Set(registers.R0, 0xABCDFEDC)
	c.Regs.Set(registers.R2, memAddr)
	c.Regs.Set(registers.R3, 0xFF00)
	c.Mem.WriteHalfword(0xFF00, 0xFF00)

	if res := c.Step(); res.Fault != nil {
		t.Fatalf("strh faulted: %v", res.Fault)
	}
	if res := c.Step(); res.Fault != nil {
		t.Fatalf("ldrh faulted: %v", res.Fault)
	}
	if c.Regs.Get(registers.R1) != 0x0000FEDC {
		t.Errorf("ldrh result = %#x, want 0x0000FEDC", c.Regs.Get(registers.R1))
	}
	if res := c.Step(); res.Fault != nil {
		t.Fatalf("ldrsh faulted: %v", res.Fault)
	}
	if c.Regs.Get(registers.R1) != 0xFFFFFF00 {
		t.Errorf("ldrsh result = %#x, want 0xFFFFFF00", c.Regs.Get(registers.R1))
	}
}

// Scenario 5: the classic 37/6 division-by-repeated-subtraction routine
// must print "37/6=6r1" and halt via swi 2.
func TestScenarioDivisionRoutine(t *testing.T) {
	c := newTestCPU()
	c.load(
		encDPReg(condAL, opCMP, true, 4, 0, 5),      // 0:  cmp r4, r5
		encBranch(condLT, false, 8),                 // 4:  blt done (+8 -> 20)
		encDPReg(condAL, opSUB, false, 4, 4, 5),     // 8:  sub r4, r4, r5
		encDPImm(condAL, opADD, false, 3, 3, 0, 1),  // 12: add r3, r3, #1
		encBranch(condAL, false, -24),               // 16: b loop
		encDPImm(condAL, opMOV, false, 0, 0, 0, '3'), // 20: done
		encSWI(condAL, 0),
		encDPImm(condAL, opMOV, false, 0, 0, 0, '7'),
		encSWI(condAL, 0),
		encDPImm(condAL, opMOV, false, 0, 0, 0, '/'),
		encSWI(condAL, 0),
		encDPImm(condAL, opMOV, false, 0, 0, 0, '6'),
		encSWI(condAL, 0),
		encDPImm(condAL, opMOV, false, 0, 0, 0, '='),
		encSWI(condAL, 0),
		encDPReg(condAL, opMOV, false, 0, 0, 3), // mov r0, r3 (quotient)
		encSWI(condAL, 4),
		encDPImm(condAL, opMOV, false, 0, 0, 0, 'r'),
		encSWI(condAL, 0),
		encDPReg(condAL, opMOV, false, 0, 0, 4), // mov r0, r4 (remainder)
		encSWI(condAL, 4),
		encSWI(condAL, 2), // halt
	)
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

// Scenario 6: swi 0 appends a raw byte to output, swi 4 appends a signed
// decimal rendering of r0.
func TestScenarioSWITerminal(t *testing.T) {
	c := newTestCPU()
	c.load(
		encDPImm(condAL, opMOV, false, 0, 0, 0, 'A'),
		encSWI(condAL, 0),
		encDPImm(condAL, opMOV, false, 0, 0, 0, 123),
		encSWI(condAL, 4),
	)
	for i := 0; i < 4; i++ {
		if res := c.Step(); res.Fault != nil {
			t.Fatalf("step %d faulted: %v", i, res.Fault)
		}
	}
	if got := c.Output(); got != "A123" {
		t.Errorf("output = %q, want %q", got, "A123")
	}
}
