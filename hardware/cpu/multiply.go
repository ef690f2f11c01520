package cpu

import (
	"github.com/zeramorphic/armul/hardware/execution"
)

// mulCycles implements the classic ARM early-termination heuristic: the
// multiplier operand (Rs) costs one Internal cycle per non-trivial byte,
// scanned from the top, where a byte is "trivial" if it is all zero (for a
// value assumed non-negative going in) or, once a non-zero byte has been
// seen, the scan stops.
func mulCycles(rs uint32) int {
	for shift := 24; shift > 0; shift -= 8 {
		if rs>>shift != 0 {
			return shift/8 + 1
		}
	}
	return 1
}

// executeMultiply implements MUL/MLA.
func (c *CPU) executeMultiply(in instr, res *execution.Result) error {
	rm := c.Regs.Get(in.rm)
	rs := c.Regs.Get(in.rs)
	result := rm * rs
	if in.accumulate {
		result += c.Regs.Get(in.rn)
	}
	c.Regs.Set(in.rd, result)

	if in.setFlags {
		c.Regs.SetNZ(result)
		// C and V are left unchanged, per the ARM v4 multiply flag rule.
	}

	res.Cycles.Seq++
	res.Cycles.Internal += mulCycles(rs)
	if in.accumulate {
		res.Cycles.Internal++
	}
	return nil
}

// executeMultiplyLong implements UMULL/UMLAL/SMULL/SMLAL with a 64-bit
// accumulate split across RdHi (in.rd) and RdLo (in.rn).
func (c *CPU) executeMultiplyLong(in instr, res *execution.Result) error {
	var product uint64
	if in.unsignedOp {
		product = uint64(c.Regs.Get(in.rm)) * uint64(c.Regs.Get(in.rs))
	} else {
		product = uint64(int64(int32(c.Regs.Get(in.rm))) * int64(int32(c.Regs.Get(in.rs))))
	}

	if in.accumulate {
		acc := uint64(c.Regs.Get(in.rd))<<32 | uint64(c.Regs.Get(in.rn))
		product += acc
	}

	lo := uint32(product)
	hi := uint32(product >> 32)
	c.Regs.Set(in.rn, lo)
	c.Regs.Set(in.rd, hi)

	if in.setFlags {
		c.Regs.SetN(hi&0x80000000 != 0)
		c.Regs.SetZ(lo == 0 && hi == 0)
	}

	res.Cycles.Seq++
	res.Cycles.Internal += mulCycles(c.Regs.Get(in.rs)) + 1
	if in.accumulate {
		res.Cycles.Internal++
	}
	return nil
}
