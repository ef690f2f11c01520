package cpu

import (
	"fmt"

	"github.com/zeramorphic/armul/hardware/execution"
	"github.com/zeramorphic/armul/hardware/registers"
)

const psrFlagsMask = 0xF0000000

// executePSRTransfer implements MRS and MSR, including the flags-only (c,
// x, s fields cleared) mask form and the rule that a non-privileged MSR to
// CPSR (i.e. from USR mode) is silently narrowed to the flags even when the
// encoding asked for a full write.
func (c *CPU) executePSRTransfer(in instr, res *execution.Result) error {
	res.Cycles.Seq++

	if !in.isMSR {
		var v uint32
		if in.toSPSR {
			spsr, ok := c.Regs.SPSR()
			if !ok {
				return fmt.Errorf("%w", ErrNoSPSR)
			}
			v = spsr
		} else {
			v = c.Regs.CPSR()
		}
		c.Regs.Set(in.rd, v)
		return nil
	}

	var src uint32
	if in.msrSrc.isImmediate {
		src = in.msrSrc.immediate
	} else {
		src = c.Regs.Get(in.msrSrc.rm)
	}

	if in.toSPSR {
		spsr, ok := c.Regs.SPSR()
		if !ok {
			return fmt.Errorf("%w", ErrNoSPSR)
		}
		if in.flagsOnly {
			spsr = spsr&^psrFlagsMask | src&psrFlagsMask
		} else {
			spsr = src
		}
		c.Regs.SetSPSR(spsr)
		return nil
	}

	mode, _ := c.Regs.Mode()
	privileged := mode != registers.ModeUsr

	cpsr := c.Regs.CPSR()
	if in.flagsOnly || !privileged {
		cpsr = cpsr&^psrFlagsMask | src&psrFlagsMask
	} else {
		cpsr = src
	}
	c.Regs.SetCPSR(cpsr)

	if _, ok := c.Regs.Mode(); !ok {
		return fmt.Errorf("%w: %#07b", ErrUnrecognizedMode, cpsr&0x1f)
	}
	return nil
}
