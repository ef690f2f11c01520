package cpu

import (
	"fmt"

	"github.com/zeramorphic/armul/hardware/execution"
	"github.com/zeramorphic/armul/hardware/registers"
)

// Recognized SWI comment fields. These are the only numbers this module
// gives meaning to; anything else raised from USR/SYS mode faults.
const (
	swiWriteByte    = 0
	swiHalt         = 2
	swiWriteDecimal = 4
)

// executeSWI implements the terminal-I/O and halt SWI numbers. An
// unrecognized number raised from USR or SYS mode is a fault; raised from
// any other mode it is treated as a no-op, matching a supervisor
// that has already taken the exception and simply has nothing registered
// for that number.
func (c *CPU) executeSWI(in instr, res *execution.Result) error {
	res.Cycles.Seq++
	res.Cycles.NonSeq++

	switch in.comment {
	case swiWriteByte:
		c.output.WriteByte(byte(c.Regs.Get(registers.R0)))
	case swiHalt:
		res.Halted = true
	case swiWriteDecimal:
		c.output.WriteString(formatDecimal(c.Regs.Get(registers.R0)))
	default:
		mode, _ := c.Regs.Mode()
		if mode == registers.ModeUsr || mode == registers.ModeSys {
			return fmt.Errorf("%w: SWI %d", ErrUnknownSWI, in.comment)
		}
	}
	return nil
}
