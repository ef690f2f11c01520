package cpu

import (
	"math/bits"

	"github.com/zeramorphic/armul/hardware/execution"
	"github.com/zeramorphic/armul/hardware/registers"
)

// executeBlockTransfer implements LDM/STM across all four addressing modes,
// the force-user-bank (^) suffix, the empty-register-list special case (PC
// only, base steps by 0x40), and the base-in-register-list ordering rule: an
// STM storing its own base register stores the original value if the base
// is the lowest-numbered register in the list, otherwise the writeback
// value; an LDM loading its own base register always takes the loaded
// value, suppressing the separate writeback step.
func (c *CPU) executeBlockTransfer(in instr, res *execution.Result) error {
	regList := in.regList
	numRegs := bits.OnesCount16(regList)
	emptyList := numRegs == 0

	stepRegs := numRegs
	if emptyList {
		stepRegs = 16
	}

	base := c.Regs.Get(in.rn)

	var startAddr uint32
	if in.up {
		if in.preIndex {
			startAddr = base + 4
		} else {
			startAddr = base
		}
	} else {
		if in.preIndex {
			startAddr = base - uint32(stepRegs)*4
		} else {
			startAddr = base - uint32(stepRegs)*4 + 4
		}
	}

	restoreCPSR := in.forceUser && in.load && regList&0x8000 != 0
	userBank := in.forceUser && !restoreCPSR

	var newBase uint32
	if in.up {
		newBase = base + uint32(stepRegs)*4
	} else {
		newBase = base - uint32(stepRegs)*4
	}
	lowestInList := registers.Register(bits.TrailingZeros16(regList))

	addr := startAddr
	transferred := 0

	if emptyList {
		if in.load {
			c.Regs.Set(registers.PC, c.Mem.ReadWord(addr))
			res.BranchTaken = true
		} else {
			c.Mem.WriteWord(addr, c.Regs.GetPCOffset(registers.PC, 8))
		}
		transferred = 1
	} else {
		for i := 0; i < 16; i++ {
			if regList&(1<<uint(i)) == 0 {
				continue
			}
			r := registers.Register(i)
			if in.load {
				v := c.Mem.ReadWord(addr)
				if userBank {
					c.Regs.SetUser(r, v)
				} else {
					c.Regs.Set(r, v)
				}
				if r == registers.PC {
					res.BranchTaken = true
				}
			} else {
				var v uint32
				switch {
				case userBank:
					v = c.Regs.GetUser(r)
				case r == in.rn && r != lowestInList:
					v = newBase
				default:
					v = c.Regs.GetPCOffset(r, 8)
				}
				c.Mem.WriteWord(addr, v)
			}
			addr += 4
			transferred++
		}
	}

	if restoreCPSR {
		if spsr, ok := c.Regs.SPSR(); ok {
			c.Regs.SetCPSR(spsr)
		}
	}

	rnInList := !emptyList && regList&(1<<uint(in.rn)) != 0
	if in.writeBack && !(in.load && rnInList) {
		c.Regs.Set(in.rn, newBase)
	}

	if in.load {
		res.Cycles.Seq += transferred
		res.Cycles.NonSeq++
		res.Cycles.Internal++
		if regList&0x8000 != 0 || emptyList {
			c.pipelineFlush(res)
		}
	} else {
		res.Cycles.NonSeq += transferred
	}

	return nil
}
