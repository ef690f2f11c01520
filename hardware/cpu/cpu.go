// Package cpu implements the ARM v4T decoder and execution engine: the
// barrel shifter, flag updates, every instruction class, and the
// software-interrupt terminal I/O boundary.
package cpu

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zeramorphic/armul/hardware/execution"
	"github.com/zeramorphic/armul/hardware/instructions"
	"github.com/zeramorphic/armul/hardware/memory"
	"github.com/zeramorphic/armul/hardware/registers"
)

// CPU couples a register file and a memory image and executes one ARM v4T
// instruction at a time. It has no notion of breakpoints or run state; the
// debugger Controller checks breakpoints before calling Step and owns the
// run-state transition that a Step's returned Result implies.
type CPU struct {
	Regs *registers.File
	Mem  *memory.Memory

	// output is the SWI terminal output buffer.
	output strings.Builder

	// input is the pending user-input buffer consumed by input-requesting
	// SWIs. None of the SWI numbers defined in this module consumes it, but the
	// field is part of the Controller-visible SWI boundary for future
	// numbers and is exercised by set_user_input.
	input string
}

// NewCPU returns a CPU with a fresh, zeroed register file over mem.
func NewCPU(mem *memory.Memory) *CPU {
	return &CPU{Regs: registers.NewFile(), Mem: mem}
}

// PC returns the value of R15 as currently stored (i.e. before the +4
// prefetch advance that Step applies internally). This is what the
// Controller checks breakpoints against.
func (c *CPU) PC() uint32 {
	return c.Regs.Get(registers.PC)
}

// Output returns the accumulated SWI terminal output.
func (c *CPU) Output() string {
	return c.output.String()
}

// ClearOutput empties the SWI terminal output buffer.
func (c *CPU) ClearOutput() {
	c.output.Reset()
}

// SetInput replaces the pending input buffer.
func (c *CPU) SetInput(s string) {
	c.input = s
}

// Step executes exactly one instruction fetched from the current PC,
// following the pipeline described in the decoder's contract:
//  1. snapshot pc, decode the condition field
//  2. fetch the 32-bit word at pc
//  3. advance R15 by 4 before executing
//  4. evaluate the condition code; a failed condition is charged one
//     Internal cycle and returns without executing or retiring
//  5. decode and dispatch to a class handler
//
// The caller (the debugger Controller) is responsible for the breakpoint
// check that must happen between steps 2 and 5, using PC() beforehand.
func (c *CPU) Step() execution.Result {
	pc := c.PC()
	res := execution.Result{Address: pc}

	word := c.Mem.ReadWord(pc)
	res.InstructionWord = word

	in := decode(word)
	res.Cond = uint8(in.cond)

	c.Regs.Set(registers.PC, pc+4)

	if !in.valid {
		res.Fault = fmt.Errorf("%w: %#08x", ErrUndefinedInstruction, word)
		return res
	}

	defn := instructions.Definitions[in.mn]
	res.Defn = &defn

	if !c.Regs.Test(in.cond) {
		res.Cycles.Internal++
		res.ConditionMet = false
		return res
	}
	res.ConditionMet = true

	if err := c.dispatch(in, &res); err != nil {
		res.Fault = err
		return res
	}
	res.Retired = true
	return res
}

func (c *CPU) dispatch(in instr, res *execution.Result) error {
	switch in.class {
	case instructions.DataProcessing:
		return c.executeDataProcessing(in, res)
	case instructions.Multiply:
		return c.executeMultiply(in, res)
	case instructions.MultiplyLong:
		return c.executeMultiplyLong(in, res)
	case instructions.Branch:
		return c.executeBranch(in, res)
	case instructions.BranchExchange:
		return c.executeBranchExchange(in, res)
	case instructions.SingleTransfer:
		return c.executeSingleTransfer(in, res)
	case instructions.HalfwordTransfer:
		return c.executeHalfwordTransfer(in, res)
	case instructions.BlockTransfer:
		return c.executeBlockTransfer(in, res)
	case instructions.Swap:
		return c.executeSwap(in, res)
	case instructions.PSRTransfer:
		return c.executePSRTransfer(in, res)
	case instructions.SoftwareInterrupt:
		return c.executeSWI(in, res)
	default:
		return fmt.Errorf("%w: %#08x", ErrUndefinedInstruction, in.raw)
	}
}

// pipelineFlush charges the two standard prefetch-refill cycles (one
// NonSeq, one Seq) that every successful PC-modifying instruction incurs in
// addition to its own base cost.
func (c *CPU) pipelineFlush(res *execution.Result) {
	res.Cycles.NonSeq++
	res.Cycles.Seq++
}

// evalOperand2 evaluates a data-processing/PSR-transfer operand2, returning
// its value and the barrel shifter's carry-out. pcExtra is added to a
// register-form operand if it happens to be R15 (4 for the ordinary +8
// read, 8 for the +12 reads demanded by a register-specified shift amount).
func (c *CPU) evalOperand2(op shiftedOperand, pcExtra uint32) (uint32, bool) {
	if op.isImmediate {
		if op.immRotate == 0 {
			return op.immediate, c.Regs.C()
		}
		return op.immediate, op.immediate&0x80000000 != 0
	}

	rm := c.Regs.GetPCOffset(op.rm, pcExtra)

	var amount uint32
	if op.shiftIsReg {
		amount = c.Regs.Get(op.shiftAmountRm) & 0xff
	} else {
		amount = op.shiftAmount
	}
	return shift(rm, op.shiftType, amount, c.Regs.C())
}

// formatDecimal renders a signed decimal string, used by the SWI "write
// decimal" number.
func formatDecimal(v uint32) string {
	return strconv.FormatInt(int64(int32(v)), 10)
}
