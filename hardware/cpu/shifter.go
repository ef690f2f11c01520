package cpu

import "github.com/zeramorphic/armul/hardware/instructions"

// shift applies one barrel-shifter operation, returning the shifted value
// and the carry-out it produces. carryIn is CPSR.C, needed for RRX and for
// the "amount == 0" pass-through rules.
//
// Every edge case here (shift amounts of exactly 0, exactly 32, and greater
// than 32, for each of the four shift types, plus RRX) is pinned by the ARM
// v4 barrel shifter contract.
func shift(value uint32, shiftType instructions.ShiftType, amount uint32, carryIn bool) (result uint32, carryOut bool) {
	if shiftType == instructions.RRX {
		carryOut = value&1 != 0
		result = value>>1 | boolBit(carryIn)<<31
		return
	}

	if amount == 0 {
		return value, carryIn
	}

	switch shiftType {
	case instructions.LSL:
		switch {
		case amount < 32:
			result = value << amount
			carryOut = value&(1<<(32-amount)) != 0
		case amount == 32:
			result = 0
			carryOut = value&1 != 0
		default:
			result = 0
			carryOut = false
		}

	case instructions.LSR:
		switch {
		case amount < 32:
			result = value >> amount
			carryOut = value&(1<<(amount-1)) != 0
		case amount == 32:
			result = 0
			carryOut = value&0x80000000 != 0
		default:
			result = 0
			carryOut = false
		}

	case instructions.ASR:
		signed := int32(value)
		if amount >= 32 {
			if signed < 0 {
				result = 0xFFFFFFFF
				carryOut = true
			} else {
				result = 0
				carryOut = false
			}
		} else {
			result = uint32(signed >> amount)
			carryOut = value&(1<<(amount-1)) != 0
		}

	case instructions.ROR:
		n := (amount-1)%32 + 1
		if n == 32 {
			result = value
			carryOut = value&0x80000000 != 0
		} else {
			result = value>>n | value<<(32-n)
			carryOut = value&(1<<(n-1)) != 0
		}
	}
	return
}

func boolBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
