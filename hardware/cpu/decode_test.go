package cpu

import (
	"testing"

	"github.com/zeramorphic/armul/hardware/instructions"
)

func TestDecodeMSRImmediateAndRegisterForms(t *testing.T) {
	imm := decode(encMSRImm(condAL, false, true, 0, 0xFF))
	if !imm.valid || imm.mn != instructions.MSR || !imm.isMSR || !imm.flagsOnly {
		t.Fatalf("immediate MSR decoded wrong: %+v", imm)
	}

	regWord := condAL<<28 | 0b10<<23 | 1<<21 | 0xF<<12 | uint32(7) // bit25=0 => register form, Rm=r7
	reg := decode(regWord)
	if !reg.valid || reg.mn != instructions.MSR || !reg.isMSR {
		t.Fatalf("register MSR decoded wrong: %+v", reg)
	}
	if reg.msrSrc.rm != 7 {
		t.Fatalf("register MSR should read Rm=7, got %v", reg.msrSrc.rm)
	}
}

func TestDecodeDoesNotConfuseHalfwordTransferWithDataProcessing(t *testing.T) {
	word := encHalfwordImm(condAL, true, true, false, true, 1, 2, 0b01, 4)
	in := decode(word)
	if in.class != instructions.HalfwordTransfer {
		t.Fatalf("expected HalfwordTransfer, got class %v (word %#08x)", in.class, word)
	}
}

func TestDecodeBranchSignExtendsNegativeOffset(t *testing.T) {
	in := decode(encBranch(condAL, false, -24))
	if in.offset != -24 {
		t.Errorf("offset = %d, want -24", in.offset)
	}
}

func TestDecodeUndefinedSpaceIsInvalid(t *testing.T) {
	word := uint32(condAL<<28 | 0b011<<25 | 1<<4)
	in := decode(word)
	if in.valid {
		t.Errorf("undefined-space encoding %#08x decoded as valid", word)
	}
}

// An immediate-encoded LSR/ASR with a zero shift-amount field means #32, not
// a pass-through of the amount==0 no-op rule (that rule only applies to a
// runtime-zero register-specified shift amount).
func TestDecodeImmediateShiftZeroMeansThirtyTwoForLSRAndASR(t *testing.T) {
	lsr := decode(encDPRegShift(condAL, opMOV, false, 0, 0, uint32(instructions.LSR), 0, 1))
	if !lsr.valid {
		t.Fatalf("decode failed")
	}
	if lsr.op2.shiftType != instructions.LSR || lsr.op2.shiftAmount != 32 {
		t.Errorf("LSR #0 decoded as shiftType=%v amount=%d, want LSR amount=32", lsr.op2.shiftType, lsr.op2.shiftAmount)
	}

	asr := decode(encDPRegShift(condAL, opMOV, false, 0, 0, uint32(instructions.ASR), 0, 1))
	if asr.op2.shiftType != instructions.ASR || asr.op2.shiftAmount != 32 {
		t.Errorf("ASR #0 decoded as shiftType=%v amount=%d, want ASR amount=32", asr.op2.shiftType, asr.op2.shiftAmount)
	}

	// ROR #0 is still the pre-existing RRX special case, unaffected by this fix.
	ror := decode(encDPRegShift(condAL, opMOV, false, 0, 0, uint32(instructions.ROR), 0, 1))
	if ror.op2.shiftType != instructions.RRX {
		t.Errorf("ROR #0 decoded as shiftType=%v, want RRX", ror.op2.shiftType)
	}
}

func TestDecodeSingleTransferImmediateShiftZeroMeansThirtyTwo(t *testing.T) {
	word := uint32(condAL<<28 | 0b01<<26 | 1<<25 | 1<<24 | 1<<23 | 1<<20 | 0<<16 | 0<<12 | uint32(instructions.LSR)<<5 | 1)
	in := decode(word)
	if in.class != instructions.SingleTransfer {
		t.Fatalf("expected SingleTransfer, got %v", in.class)
	}
	if in.xferOp2.shiftType != instructions.LSR || in.xferOp2.shiftAmount != 32 {
		t.Errorf("LSR #0 transfer offset decoded as shiftType=%v amount=%d, want LSR amount=32", in.xferOp2.shiftType, in.xferOp2.shiftAmount)
	}
}

func TestDecodeDistinguishesMultiplyFromMultiplyLongAndSwap(t *testing.T) {
	mul := decode(encMultiply(condAL, true, false, 2, 3, 1, 0))
	if mul.class != instructions.Multiply || mul.mn != instructions.MLA {
		t.Fatalf("expected Multiply/MLA, got class %v mn %v", mul.class, mul.mn)
	}

	long := decode(encMultiplyLong(condAL, true, false, false, 3, 2, 1, 0))
	if long.class != instructions.MultiplyLong || long.mn != instructions.UMULL {
		t.Fatalf("expected MultiplyLong/UMULL, got class %v mn %v", long.class, long.mn)
	}

	swp := decode(encSwap(condAL, true, 0, 2, 1))
	if swp.class != instructions.Swap {
		t.Fatalf("expected Swap, got class %v", swp.class)
	}
	if !swp.swapByte {
		t.Errorf("expected swapByte set for swpb")
	}
}
