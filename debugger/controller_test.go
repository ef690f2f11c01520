package debugger_test

import (
	"testing"

	"github.com/zeramorphic/armul/debugger"
	"github.com/zeramorphic/armul/hardware/registers"
)

func mustLoad(t *testing.T, ctl *debugger.Controller, src string) {
	t.Helper()
	res := ctl.LoadProgram(debugger.LoadProgramRequest{Contents: src})
	if !res.OK {
		t.Fatalf("unexpected diagnostics: %v", res.Diagnostics)
	}
}

func TestControllerDivisionRoutine(t *testing.T) {
	ctl := debugger.NewController()
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
	// The command surface has no direct register-set command, so the
	// division operands are loaded by a small bootstrap prologue rather
	// than poked in directly.
	boot := "mov r4, #37\nmov r5, #6\n" + src
	mustLoad(t, ctl, boot)

	ctl.StepTimes(200)
	info := ctl.ProcessorInfo()
	if info.State != "Stopped" {
		t.Fatalf("expected Stopped after halt, got %s (err=%q)", info.State, info.Err)
	}
	if info.Output != "37/6=6r1" {
		t.Errorf("output = %q, want %q", info.Output, "37/6=6r1")
	}
}

func TestControllerStepTimesZeroIsNoOp(t *testing.T) {
	ctl := debugger.NewController()
	mustLoad(t, ctl, "mov r0, #5\n")

	before := ctl.Registers()
	ctl.StepTimes(0)
	after := ctl.Registers()
	if before != after {
		t.Errorf("step_times(0) mutated registers: before=%v after=%v", before, after)
	}
	if info := ctl.ProcessorInfo(); info.Steps != 0 {
		t.Errorf("step_times(0) should not advance the step counter, got %d", info.Steps)
	}
}

func TestControllerHardResetZeroesEverything(t *testing.T) {
	ctl := debugger.NewController()
	mustLoad(t, ctl, "mov r0, #5\nmov r1, #6\n")
	ctl.StepTimes(2)

	ctl.Reset(true)

	regs := ctl.Registers()
	for i, v := range regs {
		if v != 0 {
			t.Errorf("register %d = %#x after hard reset, want 0", i, v)
		}
	}
	if info := ctl.ProcessorInfo(); info.State != "Running" {
		t.Errorf("state after hard reset = %s, want Running", info.State)
	}
	if li := ctl.LineAt(0); li.Value != 0 {
		t.Errorf("memory at 0 after hard reset = %#x, want 0", li.Value)
	}
}

func TestControllerSoftResetPreservesMemoryAndRegisters(t *testing.T) {
	ctl := debugger.NewController()
	mustLoad(t, ctl, "mov r0, #5\nmov r0, #6\n")
	ctl.StepTimes(1)

	regsBefore := ctl.Registers()

	ctl.Reset(false)

	regsAfter := ctl.Registers()
	if got := regsAfter[registers.PC]; got != 0 {
		t.Errorf("PC after soft reset = %#x, want 0", got)
	}
	regsAfter[registers.PC] = regsBefore[registers.PC] // PC is the only register soft reset changes
	if regsBefore != regsAfter {
		t.Errorf("soft reset should preserve general registers: before=%v after=%v", regsBefore, regsAfter)
	}
	if info := ctl.ProcessorInfo(); info.State != "Running" {
		t.Errorf("state after soft reset = %s, want Running", info.State)
	}
	if li := ctl.LineAt(0); li.Value == 0 {
		t.Errorf("memory should survive a soft reset")
	}
}

func TestControllerBreakpointOneShotSuppression(t *testing.T) {
	ctl := debugger.NewController()
	mustLoad(t, ctl, "mov r0, #1\nmov r0, #2\nmov r0, #3\nswi #2\n")

	ctl.Breakpoint(4, true)

	ctl.StepTimes(10)
	info := ctl.ProcessorInfo()
	if info.State != "Stopped" {
		t.Fatalf("expected Stopped at breakpoint, got %s", info.State)
	}
	if info.Steps != 1 {
		t.Fatalf("expected exactly 1 retired instruction before the breakpoint, got %d", info.Steps)
	}

	ctl.HitBreakpoint()
	ctl.StepTimes(10)
	info = ctl.ProcessorInfo()
	if info.State != "Stopped" {
		t.Fatalf("expected Stopped again (halted on swi #2), got %s", info.State)
	}
	if info.Steps != 4 {
		t.Fatalf("expected all 4 instructions retired after acknowledging the breakpoint, got %d", info.Steps)
	}
}

func TestControllerLineAtResolvesSymbol(t *testing.T) {
	ctl := debugger.NewController()
	mustLoad(t, ctl, "start:\nmov r0, #1\nb start\n")

	li := ctl.LineAt(4)
	if li.Instr == nil {
		t.Fatalf("expected a decoded instruction at address 4")
	}
	if li.Instr.OpcodePrefix != "B" {
		t.Errorf("opcode prefix = %q, want B", li.Instr.OpcodePrefix)
	}

	name, offset, ok := ctl.SymbolFor(0)
	if !ok || name != "start" || offset != 0 {
		t.Errorf("SymbolFor(0) = (%q, %d, %v), want (start, 0, true)", name, offset, ok)
	}
}

func TestControllerLoadProgramDiagnosticsRejectBadSource(t *testing.T) {
	ctl := debugger.NewController()
	res := ctl.LoadProgram(debugger.LoadProgramRequest{Contents: "mov r0, #0x101\n"})
	if res.OK {
		t.Fatalf("expected unencodable immediate to be rejected")
	}
	if len(res.Diagnostics) == 0 {
		t.Fatalf("expected at least one diagnostic")
	}
}
