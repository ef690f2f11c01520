// Package debugger implements the Controller that owns the processor
// instance and exposes the host command surface: load_program, reset,
// step_times, the query commands, and breakpoint control. It serializes
// every mutating command behind a single exclusive lock.
package debugger

import (
	"fmt"
	"os"
	"sync"

	"github.com/zeramorphic/armul/assembler"
	"github.com/zeramorphic/armul/disassembly"
	"github.com/zeramorphic/armul/hardware/cpu"
	"github.com/zeramorphic/armul/hardware/execution"
	"github.com/zeramorphic/armul/hardware/memory"
	"github.com/zeramorphic/armul/hardware/registers"
	"github.com/zeramorphic/armul/logger"
	"github.com/zeramorphic/armul/symbols"
)

// Controller owns the single CPU instance and its program-level context
// (symbol table, loaded file name). Every exported method takes the same
// mutex, so host commands arriving from different goroutines serialize in
// arrival order.
type Controller struct {
	mu sync.Mutex

	cpu     *cpu.CPU
	symbols *symbols.Table
	program *assembler.Program

	file string

	state RunState
	fault string

	steps  uint64
	cycles execution.Cycles

	previousPC  uint32
	currentCond uint8

	breaks *breakpoints
}

// NewController returns a Controller with a fresh, zeroed processor and no
// loaded program.
func NewController() *Controller {
	return &Controller{
		cpu:     cpu.NewCPU(memory.NewMemory()),
		symbols: symbols.NewTable(),
		state:   StateRunning,
		breaks:  newBreakpoints(),
	}
}

// LoadProgramRequest mirrors the command surface's tagged load_program
// input: either a file path or inline source text.
type LoadProgramRequest struct {
	Path     string
	Contents string
	HasPath  bool
}

// LoadResult mirrors the command surface's Ok / Err[diagnostics] output.
type LoadResult struct {
	OK          bool
	Diagnostics []assembler.Diagnostic
}

// LoadProgram assembles req's source, and on success replaces the current
// program and memory image, then performs the PC/run-state part of a soft
// reset (general registers are left untouched, matching soft reset's
// "memory and general registers preserved" rule applied to the freshly
// written memory). On failure the current program is left exactly as it
// was, with the full diagnostic list returned.
func (c *Controller) LoadProgram(req LoadProgramRequest) LoadResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	source := req.Contents
	if req.HasPath {
		data, err := os.ReadFile(req.Path)
		if err != nil {
			return LoadResult{Diagnostics: []assembler.Diagnostic{{Line: 0, Message: err.Error()}}}
		}
		source = string(data)
	}

	prog, diags := assembler.Assemble(source)
	if diags != nil {
		return LoadResult{Diagnostics: diags}
	}

	c.program = prog
	c.file = req.Path

	c.cpu.Mem.Clear()
	for addr, word := range prog.Words {
		c.cpu.Mem.WriteWord(addr, word)
	}
	c.symbols.Load(prog.Symbols)

	c.cpu.Regs.Set(registers.PC, 0)
	c.cpu.ClearOutput()
	c.steps = 0
	c.cycles = execution.Cycles{}
	c.previousPC = 0
	c.currentCond = 0
	c.state = StateRunning
	c.fault = ""

	logger.Logf(logger.Allow, "debugger", "loaded program, %d words, %d symbols", len(prog.Words), len(prog.Symbols))
	return LoadResult{OK: true}
}

// Reset implements the hard/soft reset command. Hard reset clears memory,
// every register including CPSR/SPSR, breakpoints, and run progress. Soft
// reset sets PC to zero and run state to Running, preserving memory and
// general registers.
func (c *Controller) Reset(hard bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if hard {
		c.cpu.Mem.Clear()
		c.cpu.Regs.Clear()
		c.breaks.clear()
		c.program = nil
		c.file = ""
	} else {
		c.cpu.Regs.Set(registers.PC, 0)
	}

	c.cpu.ClearOutput()
	c.steps = 0
	c.cycles = execution.Cycles{}
	c.previousPC = 0
	c.currentCond = 0
	c.state = StateRunning
	c.fault = ""

	logger.Log(logger.Allow, "debugger", resetLabel(hard))
}

func resetLabel(hard bool) string {
	if hard {
		return "hard reset"
	}
	return "soft reset"
}

// StepTimes executes at most n instructions, stopping early on halt, fault,
// breakpoint, or (if a future SWI number ever requests it) a pending input
// wait. It returns the new terminal-input echo if an instruction consumed
// the pending input buffer during this call, or nil otherwise; no SWI
// number this module recognizes consumes input, so today this is always
// nil, but the return shape is part of the command contract.
func (c *Controller) StepTimes(n uint32) *string {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := uint32(0); i < n && c.state == StateRunning; i++ {
		pc := c.cpu.PC()

		if c.breaks.shouldStop(pc) {
			c.state = StateStopped
			break
		}

		c.previousPC = pc
		res := c.cpu.Step()
		c.currentCond = res.Cond
		c.cycles.Add(res.Cycles)

		c.breaks.passed(pc)

		if res.Fault != nil {
			c.state = StateError
			c.fault = res.Fault.Error()
			break
		}
		if res.Retired {
			c.steps++
		}
		if res.Halted {
			c.state = StateStopped
			break
		}
	}

	return nil
}

// ProcessorInfo mirrors the processor_info query's response shape.
type ProcessorInfo struct {
	File           string
	State          string
	Err            string
	PreviousPC     uint32
	CurrentCond    uint8
	Steps          uint64
	NonSeqCycles   int
	SeqCycles      int
	InternalCycles int
	Output         string
}

// EstimatedMicros reports the UI's estimated processor time, using a
// (2*nonseq + seq + internal) / 100 cycle-to-microsecond ratio.
func (pi ProcessorInfo) EstimatedMicros() int {
	return (2*pi.NonSeqCycles + pi.SeqCycles + pi.InternalCycles) / 100
}

// ProcessorInfo returns a snapshot of the processor's run-level state.
func (c *Controller) ProcessorInfo() ProcessorInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	return ProcessorInfo{
		File:           c.file,
		State:          c.state.String(),
		Err:            c.fault,
		PreviousPC:     c.previousPC,
		CurrentCond:    c.currentCond,
		Steps:          c.steps,
		NonSeqCycles:   c.cycles.NonSeq,
		SeqCycles:      c.cycles.Seq,
		InternalCycles: c.cycles.Internal,
		Output:         c.cpu.Output(),
	}
}

// Registers returns the flat 37-slot physical register view, in the layout
// order registers.CPSRIndex and friends are defined against.
func (c *Controller) Registers() [registers.NumPhysical]uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out [registers.NumPhysical]uint32
	for i := 0; i < registers.NumPhysical; i++ {
		out[i] = c.cpu.Regs.GetPhysicalFlat(i)
	}
	return out
}

// LineInfo mirrors the line_at query's response shape.
type LineInfo struct {
	Value   uint32
	Instr   *disassembly.PrettyInstr
	Comment string
}

// LineAt returns the raw word at addr plus its disassembly (if it decodes)
// and a symbol-derived comment (if addr falls within a labelled range).
func (c *Controller) LineAt(addr uint32) LineInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lineAtLocked(addr)
}

func (c *Controller) lineAtLocked(addr uint32) LineInfo {
	v := c.cpu.Mem.ReadWord(addr)

	info := LineInfo{Value: v}
	if pretty, ok := disassembly.Disassemble(v, addr); ok {
		info.Instr = &pretty
	}
	if name, offset, ok := c.symbols.SymbolFor(addr); ok {
		if offset == 0 {
			info.Comment = name
		} else {
			info.Comment = fmt.Sprintf("%s+%#x", name, offset)
		}
	}
	return info
}

// DisassembleRange is the batch form of LineAt, used by the CLI to render a
// scrolling disassembly window without one round trip per line.
func (c *Controller) DisassembleRange(start uint32, count int) []LineInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]LineInfo, count)
	addr := start
	for i := 0; i < count; i++ {
		out[i] = c.lineAtLocked(addr)
		addr += 4
	}
	return out
}

// SymbolFor resolves addr to its tightest enclosing label and offset.
func (c *Controller) SymbolFor(addr uint32) (name string, offset uint32, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.symbols.SymbolFor(addr)
}

// SetUserInput replaces the pending SWI-input buffer.
func (c *Controller) SetUserInput(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cpu.SetInput(s)
}

// Output returns the accumulated SWI terminal output.
func (c *Controller) Output() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cpu.Output()
}

// ClearOutput empties the SWI terminal output buffer.
func (c *Controller) ClearOutput() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cpu.ClearOutput()
}

// Breakpoint toggles a breakpoint at addr.
func (c *Controller) Breakpoint(addr uint32, set bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if set {
		c.breaks.add(addr)
	} else {
		c.breaks.remove(addr)
	}
}

// HitBreakpoint acknowledges the breakpoint that most recently stopped
// execution, arming its one-shot suppression and resuming run state so the
// next StepTimes call proceeds past it instead of re-stopping immediately.
// It is a no-op if the processor is not currently stopped at a set
// breakpoint.
func (c *Controller) HitBreakpoint() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateStopped {
		return
	}
	pc := c.cpu.PC()
	if !c.breaks.set[pc] {
		return
	}
	c.breaks.acknowledge(pc)
	c.state = StateRunning
}

// Program returns the currently loaded program, or nil if none is loaded.
func (c *Controller) Program() *assembler.Program {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.program
}
