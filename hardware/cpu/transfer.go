package cpu

import (
	"github.com/zeramorphic/armul/hardware/execution"
	"github.com/zeramorphic/armul/hardware/registers"
)

func (c *CPU) transferOffset(op shiftedOperand) uint32 {
	if op.isImmediate {
		return op.immediate
	}
	rm := c.Regs.Get(op.rm)
	v, _ := shift(rm, op.shiftType, op.shiftAmount, c.Regs.C())
	return v
}

// executeSingleTransfer implements LDR/STR/LDRB/STRB, including pre/post
// indexing, writeback, and the store-before-writeback / writeback-before-load
// ordering that base==source/dest transfers are pinned to.
func (c *CPU) executeSingleTransfer(in instr, res *execution.Result) error {
	base := c.Regs.GetPCOffset(in.rn, 4)
	offset := c.transferOffset(in.xferOp2)

	var effective uint32
	if in.up {
		effective = base + offset
	} else {
		effective = base - offset
	}

	addr := base
	if in.preIndex {
		addr = effective
	}

	if in.load {
		if in.writeBack {
			c.Regs.Set(in.rn, effective)
		}

		var loaded uint32
		if in.byteXfer {
			loaded = uint32(c.Mem.ReadByte(addr))
		} else {
			loaded = c.Mem.ReadWord(addr)
		}
		c.Regs.Set(in.rd, loaded)

		if in.rd == registers.PC {
			res.Cycles.Seq += 2
			res.Cycles.NonSeq += 2
			res.Cycles.Internal++
			c.pipelineFlush(res)
		} else {
			res.Cycles.Seq++
			res.Cycles.NonSeq++
			res.Cycles.Internal++
		}
	} else {
		value := c.Regs.GetPCOffset(in.rd, 8)
		if in.byteXfer {
			c.Mem.WriteByte(addr, uint8(value))
		} else {
			c.Mem.WriteWord(addr, value)
		}
		if in.writeBack {
			c.Regs.Set(in.rn, effective)
		}
		res.Cycles.NonSeq += 2
	}

	return nil
}

// executeHalfwordTransfer implements LDRH/STRH/LDRSB/LDRSH, sharing the
// addressing and writeback-ordering rules of executeSingleTransfer but using
// the halfword-capable memory accessors, including rotate-on-unaligned-load.
func (c *CPU) executeHalfwordTransfer(in instr, res *execution.Result) error {
	base := c.Regs.GetPCOffset(in.rn, 4)
	offset := c.transferOffset(in.xferOp2)

	var effective uint32
	if in.up {
		effective = base + offset
	} else {
		effective = base - offset
	}

	addr := base
	if in.preIndex {
		addr = effective
	}

	if in.load {
		if in.writeBack {
			c.Regs.Set(in.rn, effective)
		}

		var loaded uint32
		switch {
		case in.signed && in.halfword:
			loaded = c.Mem.ReadSignedHalfword(addr)
		case in.signed:
			loaded = c.Mem.ReadSignedByte(addr)
		default:
			loaded = uint32(c.Mem.ReadHalfwordRotated(addr))
		}
		c.Regs.Set(in.rd, loaded)

		if in.rd == registers.PC {
			res.Cycles.Seq += 2
			res.Cycles.NonSeq += 2
			res.Cycles.Internal++
			c.pipelineFlush(res)
		} else {
			res.Cycles.Seq++
			res.Cycles.NonSeq++
			res.Cycles.Internal++
		}
	} else {
		value := c.Regs.GetPCOffset(in.rd, 8)
		c.Mem.WriteHalfword(addr, uint16(value))
		if in.writeBack {
			c.Regs.Set(in.rn, effective)
		}
		res.Cycles.NonSeq += 2
	}

	return nil
}
