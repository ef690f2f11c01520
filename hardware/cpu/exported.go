package cpu

import (
	"github.com/zeramorphic/armul/hardware/instructions"
	"github.com/zeramorphic/armul/hardware/registers"
)

// Operand2 is the exported mirror of shiftedOperand, used by the
// disassembly package to render an operand's shift/immediate form without
// duplicating the decoder's bit-field logic.
type Operand2 struct {
	IsImmediate bool
	Immediate   uint32
	ImmRotate   uint32

	Rm            registers.Register
	ShiftType     instructions.ShiftType
	ShiftIsReg    bool
	ShiftAmount   uint32
	ShiftAmountRm registers.Register
}

func (op shiftedOperand) export() Operand2 {
	return Operand2{
		IsImmediate:   op.isImmediate,
		Immediate:     op.immediate,
		ImmRotate:     op.immRotate,
		Rm:            op.rm,
		ShiftType:     op.shiftType,
		ShiftIsReg:    op.shiftIsReg,
		ShiftAmount:   op.shiftAmount,
		ShiftAmountRm: op.shiftAmountRm,
	}
}

// Instr is the exported, read-only view of a decoded ARM word. The
// disassembly package uses it to render a PrettyInstr; hardware/cpu keeps
// the lower-case instr as its own internal execution representation so
// Decode never has to be kept consistent with dispatch by hand in two
// places — it is always the same decode, just copied out.
type Instr struct {
	Raw   uint32
	Cond  registers.Cond
	Class instructions.Class
	Mn    instructions.Mnemonic
	Valid bool

	Opcode   uint8
	SetFlags bool
	Rn, Rd   registers.Register
	Op2      Operand2

	Rm, Rs     registers.Register
	Accumulate bool
	UnsignedOp bool

	Link   bool
	Offset int32

	BxRm registers.Register

	Load      bool
	ByteXfer  bool
	PreIndex  bool
	Up        bool
	WriteBack bool
	Halfword  bool
	Signed    bool
	XferOp2   Operand2

	RegList   uint16
	ForceUser bool

	SwapByte bool

	ToSPSR    bool
	IsMSR     bool
	FlagsOnly bool
	MsrSrc    Operand2

	Comment uint32
}

func (in instr) export() Instr {
	return Instr{
		Raw:        in.raw,
		Cond:       in.cond,
		Class:      in.class,
		Mn:         in.mn,
		Valid:      in.valid,
		Opcode:     in.opcode,
		SetFlags:   in.setFlags,
		Rn:         in.rn,
		Rd:         in.rd,
		Op2:        in.op2.export(),
		Rm:         in.rm,
		Rs:         in.rs,
		Accumulate: in.accumulate,
		UnsignedOp: in.unsignedOp,
		Link:       in.link,
		Offset:     in.offset,
		BxRm:       in.bxRm,
		Load:       in.load,
		ByteXfer:   in.byteXfer,
		PreIndex:   in.preIndex,
		Up:         in.up,
		WriteBack:  in.writeBack,
		Halfword:   in.halfword,
		Signed:     in.signed,
		XferOp2:    in.xferOp2.export(),
		RegList:    in.regList,
		ForceUser:  in.forceUser,
		SwapByte:   in.swapByte,
		ToSPSR:     in.toSPSR,
		IsMSR:      in.isMSR,
		FlagsOnly:  in.flagsOnly,
		MsrSrc:     in.msrSrc.export(),
		Comment:    in.comment,
	}
}

// Decode decodes a raw 32-bit ARM word into its exported instruction view,
// for use by the disassembly package. It performs exactly the same decode
// Step uses internally.
func Decode(word uint32) Instr {
	return decode(word).export()
}
