package cpu

import (
	"fmt"

	"github.com/zeramorphic/armul/hardware/execution"
	"github.com/zeramorphic/armul/hardware/instructions"
	"github.com/zeramorphic/armul/hardware/registers"
)

func isCompareMnemonic(mn instructions.Mnemonic) bool {
	switch mn {
	case instructions.TST, instructions.TEQ, instructions.CMP, instructions.CMN:
		return true
	default:
		return false
	}
}

func isLogicalMnemonic(mn instructions.Mnemonic) bool {
	switch mn {
	case instructions.AND, instructions.EOR, instructions.TST, instructions.TEQ,
		instructions.ORR, instructions.MOV, instructions.BIC, instructions.MVN:
		return true
	default:
		return false
	}
}

// executeDataProcessing implements every AND/EOR/SUB/RSB/ADD/ADC/SBC/RSC/
// TST/TEQ/CMP/CMN/ORR/MOV/BIC/MVN form, including the PC-as-destination
// CPSR-restore path and the register-specified-shift PC-offset/cycle rule.
func (c *CPU) executeDataProcessing(in instr, res *execution.Result) error {
	pcExtra := uint32(4)
	if in.op2.shiftIsReg {
		pcExtra = 8
		res.Cycles.Internal++
	}

	rnVal := c.Regs.GetPCOffset(in.rn, pcExtra)
	op2Val, shifterCarry := c.evalOperand2(in.op2, pcExtra)

	var result uint32
	carry, overflow := c.Regs.C(), c.Regs.V()

	switch in.mn {
	case instructions.AND, instructions.TST:
		result = rnVal & op2Val
		carry = shifterCarry
	case instructions.EOR, instructions.TEQ:
		result = rnVal ^ op2Val
		carry = shifterCarry
	case instructions.ORR:
		result = rnVal | op2Val
		carry = shifterCarry
	case instructions.MOV:
		result = op2Val
		carry = shifterCarry
	case instructions.BIC:
		result = rnVal &^ op2Val
		carry = shifterCarry
	case instructions.MVN:
		result = ^op2Val
		carry = shifterCarry
	case instructions.ADD, instructions.CMN:
		result, carry, overflow = addWithCarry(rnVal, op2Val, false)
	case instructions.ADC:
		result, carry, overflow = addWithCarry(rnVal, op2Val, c.Regs.C())
	case instructions.SUB, instructions.CMP:
		result, carry, overflow = subWithCarry(rnVal, op2Val, true)
	case instructions.RSB:
		result, carry, overflow = subWithCarry(op2Val, rnVal, true)
	case instructions.SBC:
		result, carry, overflow = subWithCarry(rnVal, op2Val, c.Regs.C())
	case instructions.RSC:
		result, carry, overflow = subWithCarry(op2Val, rnVal, c.Regs.C())
	default:
		return fmt.Errorf("%w: unhandled data processing mnemonic %s", ErrUndefinedInstruction, in.mn)
	}

	if in.setFlags {
		if in.rd == registers.PC {
			spsr, ok := c.Regs.SPSR()
			if !ok {
				return fmt.Errorf("%w", ErrNoSPSR)
			}
			c.Regs.SetCPSR(spsr)
		} else {
			c.Regs.SetNZ(result)
			c.Regs.SetC(carry)
			if !isLogicalMnemonic(in.mn) {
				c.Regs.SetV(overflow)
			}
		}
	}

	if !isCompareMnemonic(in.mn) {
		c.Regs.Set(in.rd, result)
		if in.rd == registers.PC {
			c.pipelineFlush(res)
		}
	}

	res.Cycles.Seq++
	return nil
}
