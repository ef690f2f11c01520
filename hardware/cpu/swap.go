package cpu

import "github.com/zeramorphic/armul/hardware/execution"

// executeSwap implements SWP/SWPB: an atomic read-modify-write of a single
// memory location, with the same misaligned-word rotation as a plain load.
func (c *CPU) executeSwap(in instr, res *execution.Result) error {
	addr := c.Regs.Get(in.rn)
	rmVal := c.Regs.Get(in.rm)

	if in.swapByte {
		old := c.Mem.ReadByte(addr)
		c.Mem.WriteByte(addr, uint8(rmVal))
		c.Regs.Set(in.rd, uint32(old))
	} else {
		old := c.Mem.ReadWord(addr)
		c.Mem.WriteWord(addr, rmVal)
		c.Regs.Set(in.rd, old)
	}

	res.Cycles.Seq++
	res.Cycles.NonSeq++
	res.Cycles.Internal++
	return nil
}
