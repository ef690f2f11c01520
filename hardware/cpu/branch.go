package cpu

import (
	"fmt"

	"github.com/zeramorphic/armul/hardware/execution"
	"github.com/zeramorphic/armul/hardware/registers"
)

// executeBranch implements B/BL. The offset is relative to the instruction
// address + 8, matching the ordinary R15-read convention; the physical PC
// register already holds address+4 at this point (Step's prefetch advance),
// so the target is computed from that plus 4.
func (c *CPU) executeBranch(in instr, res *execution.Result) error {
	if in.link {
		c.Regs.Set(registers.LR, c.Regs.Get(registers.PC))
	}
	target := c.Regs.Get(registers.PC) + 4 + uint32(in.offset)
	c.Regs.Set(registers.PC, target)

	res.BranchTaken = true
	res.Cycles.Seq++
	c.pipelineFlush(res)
	return nil
}

// executeBranchExchange implements BX: branch to Rm, switching to Thumb
// state if bit 0 is set. Thumb state is out of scope for execution (per
// the module's non-goals); attempting to enter it is reported as a fault
// rather than silently emulated as ARM.
func (c *CPU) executeBranchExchange(in instr, res *execution.Result) error {
	target := c.Regs.Get(in.bxRm)
	res.Cycles.Seq++
	if target&1 != 0 {
		return fmt.Errorf("%w: BX into Thumb state is unsupported", ErrUndefinedInstruction)
	}
	c.Regs.Set(registers.PC, target&^3)
	res.BranchTaken = true
	c.pipelineFlush(res)
	return nil
}
