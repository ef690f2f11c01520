package cpu

import (
	"github.com/zeramorphic/armul/hardware/instructions"
	"github.com/zeramorphic/armul/hardware/registers"
)

// decode turns a raw 32-bit ARM word into its instr representation. It
// returns valid=false if the bit pattern matches none of the recognized ARM
// v4T encodings.
func decode(word uint32) instr {
	in := instr{raw: word, cond: registers.Cond(word >> 28 & 0xf)}

	switch {
	case word&0x0FFFFFF0 == 0x012FFF10:
		in.class = instructions.BranchExchange
		in.mn = instructions.BX
		in.bxRm = registers.Register(word & 0xf)
		in.valid = true

	case word&0x0E000000 == 0x0A000000:
		in.class = instructions.Branch
		in.link = word&0x01000000 != 0
		if in.link {
			in.mn = instructions.BL
		} else {
			in.mn = instructions.B
		}
		off := int32(word&0x00FFFFFF) << 2
		off = off << 6 >> 6 // sign-extend from 26 bits
		in.offset = off
		in.valid = true

	case word&0x0FC000F0 == 0x00000090:
		in.class = instructions.Multiply
		in.accumulate = word&0x00200000 != 0
		in.setFlags = word&0x00100000 != 0
		in.rd = registers.Register(word >> 16 & 0xf)
		in.rn = registers.Register(word >> 12 & 0xf)
		in.rs = registers.Register(word >> 8 & 0xf)
		in.rm = registers.Register(word & 0xf)
		if in.accumulate {
			in.mn = instructions.MLA
		} else {
			in.mn = instructions.MUL
		}
		in.valid = true

	case word&0x0F8000F0 == 0x00800090:
		in.class = instructions.MultiplyLong
		in.unsignedOp = word&0x00400000 == 0
		in.accumulate = word&0x00200000 != 0
		in.setFlags = word&0x00100000 != 0
		in.rd = registers.Register(word >> 16 & 0xf) // RdHi
		in.rn = registers.Register(word >> 12 & 0xf)  // RdLo
		in.rs = registers.Register(word >> 8 & 0xf)
		in.rm = registers.Register(word & 0xf)
		switch {
		case in.unsignedOp && in.accumulate:
			in.mn = instructions.UMLAL
		case in.unsignedOp:
			in.mn = instructions.UMULL
		case in.accumulate:
			in.mn = instructions.SMLAL
		default:
			in.mn = instructions.SMULL
		}
		in.valid = true

	case word&0x0FB00FF0 == 0x01000090:
		in.class = instructions.Swap
		in.swapByte = word&0x00400000 != 0
		in.rn = registers.Register(word >> 16 & 0xf)
		in.rd = registers.Register(word >> 12 & 0xf)
		in.rm = registers.Register(word & 0xf)
		if in.swapByte {
			in.mn = instructions.SWPB
		} else {
			in.mn = instructions.SWP
		}
		in.valid = true

	case word&0x0FBF0FFF == 0x010F0000:
		in.class = instructions.PSRTransfer
		in.mn = instructions.MRS
		in.toSPSR = word&0x00400000 != 0
		in.rd = registers.Register(word >> 12 & 0xf)
		in.valid = true

	case isMSRPattern(word):
		in.class = instructions.PSRTransfer
		in.mn = instructions.MSR
		in.isMSR = true
		in.toSPSR = word&0x00400000 != 0
		mask := word >> 16 & 0xf
		in.flagsOnly = mask&0x8 != 0 && mask&0x7 == 0
		if word&0x02000000 != 0 {
			in.msrSrc.isImmediate = true
			rot := word >> 8 & 0xf * 2
			imm := word & 0xff
			in.msrSrc.immediate = rotr32(imm, rot)
			in.msrSrc.immRotate = rot
		} else {
			in.msrSrc.rm = registers.Register(word & 0xf)
		}
		in.valid = true

	case word&0x0F000000 == 0x0F000000:
		in.class = instructions.SoftwareInterrupt
		in.mn = instructions.SWI
		in.comment = word & 0x00FFFFFF
		in.valid = true

	case word&0x0E000010 == 0x06000010:
		in.class = instructions.Undefined
		in.valid = false

	case word&0x0E000000 == 0x00000000 && word&0x00000090 == 0x00000090:
		in = decodeHalfwordTransfer(in, word)
		in.valid = true

	case word&0x0C000000 == 0x00000000:
		in = decodeDataProcessing(in, word)
		in.valid = true

	case word&0x0C000000 == 0x04000000:
		in = decodeSingleTransfer(in, word)
		in.valid = true

	case word&0x0E000000 == 0x08000000:
		in = decodeBlockTransfer(in, word)
		in.valid = true

	default:
		in.class = instructions.Undefined
		in.valid = false
	}

	return in
}

func decodeDataProcessing(in instr, word uint32) instr {
	in.class = instructions.DataProcessing
	opcode := word >> 21 & 0xf
	in.opcode = uint8(opcode)
	in.setFlags = word&0x00100000 != 0
	in.rn = registers.Register(word >> 16 & 0xf)
	in.rd = registers.Register(word >> 12 & 0xf)
	in.mn = dpMnemonics[opcode]
	in.op2 = decodeOperand2(word)

	// A compare-class opcode (TST/TEQ/CMP/CMN) with S clear is really the
	// PSR-transfer encoding, but that is already intercepted above by the
	// MRS/MSR bit-pattern checks, which take priority since they match a
	// narrower mask.
	return in
}

var dpMnemonics = map[uint32]instructions.Mnemonic{
	0x0: instructions.AND, 0x1: instructions.EOR, 0x2: instructions.SUB, 0x3: instructions.RSB,
	0x4: instructions.ADD, 0x5: instructions.ADC, 0x6: instructions.SBC, 0x7: instructions.RSC,
	0x8: instructions.TST, 0x9: instructions.TEQ, 0xa: instructions.CMP, 0xb: instructions.CMN,
	0xc: instructions.ORR, 0xd: instructions.MOV, 0xe: instructions.BIC, 0xf: instructions.MVN,
}

func decodeOperand2(word uint32) shiftedOperand {
	var op shiftedOperand
	if word&0x02000000 != 0 {
		op.isImmediate = true
		rot := word >> 8 & 0xf * 2
		imm := word & 0xff
		op.immediate = rotr32(imm, rot)
		op.immRotate = rot
		return op
	}
	op.rm = registers.Register(word & 0xf)
	op.shiftType = instructions.ShiftType(word >> 5 & 0x3)
	if word&0x10 != 0 {
		op.shiftIsReg = true
		op.shiftAmountRm = registers.Register(word >> 8 & 0xf)
	} else {
		amt := word >> 7 & 0x1f
		if amt == 0 {
			switch op.shiftType {
			case instructions.ROR:
				op.shiftType = instructions.RRX
			case instructions.LSR, instructions.ASR:
				amt = 32
			}
		}
		op.shiftAmount = amt
	}
	return op
}

func decodeSingleTransfer(in instr, word uint32) instr {
	in.class = instructions.SingleTransfer
	in.preIndex = word&0x01000000 != 0
	in.up = word&0x00800000 != 0
	in.byteXfer = word&0x00400000 != 0
	in.writeBack = word&0x00200000 != 0 || !in.preIndex
	in.load = word&0x00100000 != 0
	in.rn = registers.Register(word >> 16 & 0xf)
	in.rd = registers.Register(word >> 12 & 0xf)

	if word&0x02000000 == 0 {
		in.xferOp2.isImmediate = true
		in.xferOp2.immediate = word & 0xfff
	} else {
		in.xferOp2.rm = registers.Register(word & 0xf)
		in.xferOp2.shiftType = instructions.ShiftType(word >> 5 & 0x3)
		amt := word >> 7 & 0x1f
		if amt == 0 {
			switch in.xferOp2.shiftType {
			case instructions.ROR:
				in.xferOp2.shiftType = instructions.RRX
			case instructions.LSR, instructions.ASR:
				amt = 32
			}
		}
		in.xferOp2.shiftAmount = amt
	}

	switch {
	case in.load && in.byteXfer:
		in.mn = instructions.LDRB
	case in.load:
		in.mn = instructions.LDR
	case in.byteXfer:
		in.mn = instructions.STRB
	default:
		in.mn = instructions.STR
	}
	return in
}

func decodeHalfwordTransfer(in instr, word uint32) instr {
	in.class = instructions.HalfwordTransfer
	in.preIndex = word&0x01000000 != 0
	in.up = word&0x00800000 != 0
	in.writeBack = word&0x00200000 != 0 || !in.preIndex
	in.load = word&0x00100000 != 0
	in.rn = registers.Register(word >> 16 & 0xf)
	in.rd = registers.Register(word >> 12 & 0xf)

	sh := word >> 5 & 0x3
	in.halfword = sh == 0x1 || sh == 0x3
	in.signed = sh == 0x2 || sh == 0x3

	if word&0x00400000 != 0 {
		in.xferOp2.isImmediate = true
		in.xferOp2.immediate = (word>>8&0xf)<<4 | word&0xf
	} else {
		in.xferOp2.rm = registers.Register(word & 0xf)
	}

	switch {
	case in.load && in.signed && in.halfword:
		in.mn = instructions.LDRSH
	case in.load && in.signed:
		in.mn = instructions.LDRSB
	case in.load:
		in.mn = instructions.LDRH
	default:
		in.mn = instructions.STRH
	}
	return in
}

func decodeBlockTransfer(in instr, word uint32) instr {
	in.class = instructions.BlockTransfer
	in.preIndex = word&0x01000000 != 0
	in.up = word&0x00800000 != 0
	in.forceUser = word&0x00400000 != 0
	in.writeBack = word&0x00200000 != 0
	in.load = word&0x00100000 != 0
	in.rn = registers.Register(word >> 16 & 0xf)
	in.regList = uint16(word & 0xffff)
	if in.load {
		in.mn = instructions.LDM
	} else {
		in.mn = instructions.STM
	}
	return in
}

// isMSRPattern matches the MSR encoding: bits27-26=00, bits24-23=10, bit21=1
// (MSR, vs 0 for MRS), bit20=0, bits15-12=1111 SBO, and (for the
// register-source form, bit25=0) bits11-4 SBZ. Bit25 itself is the I
// (immediate-operand) flag and bit22 is R (destination is SPSR); neither is
// fixed, since both forms and both destinations are valid MSR encodings.
func isMSRPattern(word uint32) bool {
	if word&0x0C000000 != 0 { // bits27-26 must be 00
		return false
	}
	if word&0x01800000 != 0x01000000 { // bits24-23 must be 10
		return false
	}
	if word&0x00200000 == 0 { // bit21 must be 1 for MSR
		return false
	}
	if word&0x00100000 != 0 { // bit20 must be 0
		return false
	}
	if word&0x0000F000 != 0x0000F000 { // bits15-12 SBO
		return false
	}
	if word&0x02000000 == 0 && word&0x00000FF0 != 0 { // register-source form: bits11-4 SBZ
		return false
	}
	return true
}

func rotr32(v, n uint32) uint32 {
	n &= 31
	if n == 0 {
		return v
	}
	return v>>n | v<<(32-n)
}
