package cpu

import (
	"github.com/zeramorphic/armul/hardware/instructions"
	"github.com/zeramorphic/armul/hardware/registers"
)

// shiftedOperand is the decoded form of a data-processing / single-transfer
// operand2 or offset: either an 8-bit immediate rotated right by an even
// amount, or a register optionally run through the barrel shifter.
type shiftedOperand struct {
	isImmediate bool

	// immediate form
	immediate uint32 // already rotated; used directly as the operand value
	immRotate uint32 // rotate amount in bits, for disassembly

	// register form
	rm            registers.Register
	shiftType     instructions.ShiftType
	shiftIsReg    bool               // shift amount comes from a register
	shiftAmount   uint32             // immediate shift amount (shiftIsReg == false)
	shiftAmountRm registers.Register // register holding the shift amount (shiftIsReg == true)
}

// instr is the fully decoded form of one 32-bit ARM word.
type instr struct {
	raw   uint32
	cond  registers.Cond
	class instructions.Class
	mn    instructions.Mnemonic

	// data processing / PSR-transfer-as-DP-shape fields
	opcode   uint8
	setFlags bool
	rn, rd   registers.Register
	op2      shiftedOperand

	// multiply
	rm, rs     registers.Register
	accumulate bool
	long       bool
	unsignedOp bool

	// branch
	link   bool
	offset int32

	// branch exchange
	bxRm registers.Register

	// single / halfword transfer
	load      bool
	byteXfer  bool
	preIndex  bool
	up        bool
	writeBack bool
	halfword  bool
	signed    bool
	xferOp2   shiftedOperand // reused for immediate12/shifted-register offset

	// block transfer
	regList   uint16
	forceUser bool

	// swap
	swapByte bool

	// psr transfer
	toSPSR    bool
	isMSR     bool
	flagsOnly bool
	msrSrc    shiftedOperand

	// software interrupt
	comment uint32

	// undefined / raw
	valid bool
}
