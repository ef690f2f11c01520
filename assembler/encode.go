package assembler

import (
	"fmt"
	"strings"

	"github.com/zeramorphic/armul/hardware/instructions"
	"github.com/zeramorphic/armul/hardware/registers"
)

var dpOpcodes = map[string]uint32{
	"AND": 0x0, "EOR": 0x1, "SUB": 0x2, "RSB": 0x3,
	"ADD": 0x4, "ADC": 0x5, "SBC": 0x6, "RSC": 0x7,
	"TST": 0x8, "TEQ": 0x9, "CMP": 0xA, "CMN": 0xB,
	"ORR": 0xC, "MOV": 0xD, "BIC": 0xE, "MVN": 0xF,
}

func b2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// encodeOperand2 lowers an operand2 to its 12-bit field plus the I-flag bit
// (0x02000000), mirroring decodeOperand2 in the opposite direction.
func encodeOperand2(op operand2, symbols map[string]uint32) (uint32, error) {
	if op.isImmediate {
		v, err := evalExpr(op.immExpr, symbols)
		if err != nil {
			return 0, err
		}
		r4, imm8, ok := encodeImmediate8r4(v)
		if !ok {
			return 0, fmt.Errorf("value %#x cannot be expressed as an 8-bit immediate rotated by an even amount", v)
		}
		return 0x02000000 | r4<<8 | imm8, nil
	}
	if !op.hasShift {
		return uint32(op.rm), nil
	}
	if op.shiftType == instructions.RRX {
		return uint32(instructions.ROR)<<5 | uint32(op.rm), nil
	}
	if op.shiftIsReg {
		return uint32(op.shiftAmtReg)<<8 | uint32(op.shiftType)<<5 | 1<<4 | uint32(op.rm), nil
	}
	amt, err := evalExpr(op.shiftAmtExpr, symbols)
	if err != nil {
		return 0, err
	}
	if amt > 31 {
		return 0, fmt.Errorf("immediate shift amount %d out of range 0..31", amt)
	}
	return amt<<7 | uint32(op.shiftType)<<5 | uint32(op.rm), nil
}

func encodeDataProcessing(pm parsedMnemonic, argsRaw string, symbols map[string]uint32) (uint32, error) {
	opcode := dpOpcodes[pm.base]
	fields := splitOperands(argsRaw)

	var rd, rn registers.Register
	var op2Fields []string

	switch pm.base {
	case "CMP", "CMN", "TST", "TEQ":
		if len(fields) < 2 {
			return 0, fmt.Errorf("%s requires Rn and an operand", pm.base)
		}
		r, ok := parseRegister(fields[0])
		if !ok {
			return 0, fmt.Errorf("expected register, got %q", fields[0])
		}
		rn = r
		op2Fields = fields[1:]
	case "MOV", "MVN":
		if len(fields) < 1 {
			return 0, fmt.Errorf("%s requires a destination register", pm.base)
		}
		r, ok := parseRegister(fields[0])
		if !ok {
			return 0, fmt.Errorf("expected register, got %q", fields[0])
		}
		rd = r
		op2Fields = fields[1:]
	default:
		if len(fields) < 3 {
			return 0, fmt.Errorf("%s requires Rd, Rn, and an operand", pm.base)
		}
		rdr, ok := parseRegister(fields[0])
		if !ok {
			return 0, fmt.Errorf("expected register, got %q", fields[0])
		}
		rnr, ok := parseRegister(fields[1])
		if !ok {
			return 0, fmt.Errorf("expected register, got %q", fields[1])
		}
		rd, rn = rdr, rnr
		op2Fields = fields[2:]
	}

	op2, err := parseOperand2(op2Fields)
	if err != nil {
		return 0, err
	}
	bits, err := encodeOperand2(op2, symbols)
	if err != nil {
		return 0, err
	}

	setFlags := pm.setFlags
	switch pm.base {
	case "TST", "TEQ", "CMP", "CMN":
		// a compare with S clear would land in the PSR-transfer space
		setFlags = true
	}
	word := uint32(pm.cond)<<28 | opcode<<21 | b2u(setFlags)<<20 | uint32(rn)<<16 | uint32(rd)<<12 | bits
	return word, nil
}

func encodeMultiply(pm parsedMnemonic, argsRaw string) (uint32, error) {
	fields := splitOperands(argsRaw)
	accumulate := pm.base == "MLA"
	want := 3
	if accumulate {
		want = 4
	}
	if len(fields) != want {
		return 0, fmt.Errorf("%s requires %d operands", pm.base, want)
	}
	regs := make([]registers.Register, len(fields))
	for i, f := range fields {
		r, ok := parseRegister(f)
		if !ok {
			return 0, fmt.Errorf("expected register, got %q", f)
		}
		regs[i] = r
	}
	rd, rm, rs := regs[0], regs[1], regs[2]
	var rn registers.Register
	if accumulate {
		rn = regs[3]
	}
	word := uint32(pm.cond)<<28 | b2u(accumulate)<<21 | b2u(pm.setFlags)<<20 |
		uint32(rd)<<16 | uint32(rn)<<12 | uint32(rs)<<8 | 0x9<<4 | uint32(rm)
	return word, nil
}

func encodeMultiplyLong(pm parsedMnemonic, argsRaw string) (uint32, error) {
	fields := splitOperands(argsRaw)
	if len(fields) != 4 {
		return 0, fmt.Errorf("%s requires RdLo, RdHi, Rm, Rs", pm.base)
	}
	regs := make([]registers.Register, 4)
	for i, f := range fields {
		r, ok := parseRegister(f)
		if !ok {
			return 0, fmt.Errorf("expected register, got %q", f)
		}
		regs[i] = r
	}
	rdLo, rdHi, rm, rs := regs[0], regs[1], regs[2], regs[3]
	signed := pm.base == "SMULL" || pm.base == "SMLAL"
	accumulate := pm.base == "UMLAL" || pm.base == "SMLAL"
	word := uint32(pm.cond)<<28 | 1<<23 | b2u(signed)<<22 | b2u(accumulate)<<21 | b2u(pm.setFlags)<<20 |
		uint32(rdHi)<<16 | uint32(rdLo)<<12 | uint32(rs)<<8 | 0x9<<4 | uint32(rm)
	return word, nil
}

func encodeBranch(pm parsedMnemonic, argsRaw string, addr uint32, symbols map[string]uint32) (uint32, error) {
	target, err := evalExpr(strings.TrimSpace(argsRaw), symbols)
	if err != nil {
		return 0, err
	}
	offset := int64(target) - int64(addr) - 8
	if offset%4 != 0 {
		return 0, fmt.Errorf("branch target %#x is not word-aligned relative to %#x", target, addr)
	}
	link := pm.base == "BL"
	word := uint32(pm.cond)<<28 | 0b101<<25 | b2u(link)<<24 | uint32(offset>>2)&0x00FFFFFF
	return word, nil
}

func encodeBranchExchange(pm parsedMnemonic, argsRaw string) (uint32, error) {
	r, ok := parseRegister(strings.TrimSpace(argsRaw))
	if !ok {
		return 0, fmt.Errorf("bx requires a register operand, got %q", argsRaw)
	}
	return uint32(pm.cond)<<28 | 0x012FFF10 | uint32(r), nil
}

func encodeSingleTransfer(pm parsedMnemonic, argsRaw string, symbols map[string]uint32) (uint32, error) {
	fields := splitOperands(argsRaw)
	if len(fields) < 2 {
		return 0, fmt.Errorf("%s requires Rd and an addressing operand", pm.base)
	}
	rd, ok := parseRegister(fields[0])
	if !ok {
		return 0, fmt.Errorf("expected register, got %q", fields[0])
	}
	addr, err := parseAddress(fields[1:])
	if err != nil {
		return 0, err
	}

	load := pm.base == "LDR" || pm.base == "LDRB"
	byteXfer := pm.base == "LDRB" || pm.base == "STRB"

	var iBit, op2 uint32
	if addr.isImmediate {
		var v uint32
		if addr.immExpr != "" {
			v, err = evalExpr(addr.immExpr, symbols)
			if err != nil {
				return 0, err
			}
		}
		if v > 0xFFF {
			return 0, fmt.Errorf("offset %#x exceeds the 12-bit immediate range", v)
		}
		op2 = v
	} else {
		iBit = 0x02000000
		shiftBits := uint32(0)
		if addr.hasShift {
			if addr.shiftType == instructions.RRX {
				shiftBits = uint32(instructions.ROR) << 5
			} else {
				amt, err := evalExpr(addr.shiftExpr, symbols)
				if err != nil {
					return 0, err
				}
				shiftBits = amt<<7 | uint32(addr.shiftType)<<5
			}
		}
		op2 = shiftBits | uint32(addr.rm)
	}

	w := addr.writeBack && addr.preIndex
	word := uint32(pm.cond)<<28 | 0b01<<26 | iBit | b2u(addr.preIndex)<<24 | b2u(addr.up)<<23 |
		b2u(byteXfer)<<22 | b2u(w)<<21 | b2u(load)<<20 | uint32(addr.rn)<<16 | uint32(rd)<<12 | op2
	return word, nil
}

func encodeHalfwordTransfer(pm parsedMnemonic, argsRaw string, symbols map[string]uint32) (uint32, error) {
	fields := splitOperands(argsRaw)
	if len(fields) < 2 {
		return 0, fmt.Errorf("%s requires Rd and an addressing operand", pm.base)
	}
	rd, ok := parseRegister(fields[0])
	if !ok {
		return 0, fmt.Errorf("expected register, got %q", fields[0])
	}
	addr, err := parseAddress(fields[1:])
	if err != nil {
		return 0, err
	}

	load := pm.base != "STRH"
	var sh uint32
	switch pm.base {
	case "LDRH", "STRH":
		sh = 0b01
	case "LDRSB":
		sh = 0b10
	case "LDRSH":
		sh = 0b11
	}

	var hi, lo, rm uint32
	var immFlag uint32
	if addr.isImmediate {
		immFlag = 0x00400000
		var v uint32
		if addr.immExpr != "" {
			v, err = evalExpr(addr.immExpr, symbols)
			if err != nil {
				return 0, err
			}
		}
		if v > 0xFF {
			return 0, fmt.Errorf("halfword offset %#x exceeds the 8-bit immediate range", v)
		}
		hi, lo = v>>4&0xf, v&0xf
	} else {
		rm = uint32(addr.rm)
	}

	w := addr.writeBack && addr.preIndex
	word := uint32(pm.cond)<<28 | b2u(addr.preIndex)<<24 | b2u(addr.up)<<23 | immFlag | b2u(w)<<21 |
		b2u(load)<<20 | uint32(addr.rn)<<16 | uint32(rd)<<12 | hi<<8 | 1<<7 | sh<<5 | 1<<4 | (lo | rm)
	return word, nil
}

func encodeBlockTransfer(pm parsedMnemonic, argsRaw string) (uint32, error) {
	fields := splitOperands(argsRaw)
	if len(fields) != 2 {
		return 0, fmt.Errorf("%s requires a base register and a register list", pm.base)
	}
	base := strings.TrimSpace(fields[0])
	forceUser := strings.HasSuffix(base, "^")
	writeBack := strings.HasSuffix(strings.TrimSuffix(base, "^"), "!")
	base = strings.TrimSuffix(strings.TrimSuffix(base, "^"), "!")
	rn, ok := parseRegister(base)
	if !ok {
		return 0, fmt.Errorf("expected base register, got %q", fields[0])
	}

	listField := strings.TrimSpace(fields[1])
	if strings.HasSuffix(listField, "^") {
		forceUser = true
		listField = strings.TrimSpace(strings.TrimSuffix(listField, "^"))
	}
	regList, err := parseRegList(listField)
	if err != nil {
		return 0, err
	}

	load := pm.base == "LDM"
	var mode instructions.BlockTransferMode
	switch pm.blockMode {
	case "IA":
		mode = instructions.IA
	case "IB":
		mode = instructions.IB
	case "DA":
		mode = instructions.DA
	case "DB":
		mode = instructions.DB
	default:
		var ok bool
		if load {
			mode, ok = instructions.StackAliasForLoad(pm.blockMode)
		} else {
			mode, ok = instructions.StackAliasForStore(pm.blockMode)
		}
		if !ok {
			return 0, fmt.Errorf("unknown block transfer addressing mode %q", pm.blockMode)
		}
	}

	word := uint32(pm.cond)<<28 | 0b100<<25 | b2u(mode.PreIndexed())<<24 | b2u(mode.Up())<<23 |
		b2u(forceUser)<<22 | b2u(writeBack)<<21 | b2u(load)<<20 | uint32(rn)<<16 | uint32(regList)
	return word, nil
}

func encodeSwap(pm parsedMnemonic, argsRaw string) (uint32, error) {
	fields := splitOperands(argsRaw)
	if len(fields) != 3 {
		return 0, fmt.Errorf("%s requires Rd, Rm, [Rn]", pm.base)
	}
	rd, ok := parseRegister(fields[0])
	if !ok {
		return 0, fmt.Errorf("expected register, got %q", fields[0])
	}
	rm, ok := parseRegister(fields[1])
	if !ok {
		return 0, fmt.Errorf("expected register, got %q", fields[1])
	}
	addr, err := parseAddress(fields[2:])
	if err != nil {
		return 0, err
	}
	byteSwap := pm.base == "SWPB"
	word := uint32(pm.cond)<<28 | 1<<24 | b2u(byteSwap)<<22 | uint32(addr.rn)<<16 | uint32(rd)<<12 | 0x9<<4 | uint32(rm)
	return word, nil
}

var psrMaskFull = uint32(0b1111)
var psrMaskFlags = uint32(0b1000)

func encodePSRTransfer(pm parsedMnemonic, argsRaw string, symbols map[string]uint32) (uint32, error) {
	fields := splitOperands(argsRaw)
	if pm.base == "MRS" {
		if len(fields) != 2 {
			return 0, fmt.Errorf("mrs requires Rd, psr")
		}
		rd, ok := parseRegister(fields[0])
		if !ok {
			return 0, fmt.Errorf("expected register, got %q", fields[0])
		}
		toSPSR, _, err := parsePSRName(fields[1])
		if err != nil {
			return 0, err
		}
		return uint32(pm.cond)<<28 | 1<<24 | b2u(toSPSR)<<22 | uint32(rd)<<12, nil
	}

	if len(fields) != 2 {
		return 0, fmt.Errorf("msr requires psr, source")
	}
	toSPSR, flagsOnly, err := parsePSRName(fields[0])
	if err != nil {
		return 0, err
	}
	mask := psrMaskFull
	if flagsOnly {
		mask = psrMaskFlags
	}
	src := strings.TrimSpace(fields[1])
	var iBit, srcBits uint32
	if strings.HasPrefix(src, "#") {
		v, err := evalExpr(src[1:], symbols)
		if err != nil {
			return 0, err
		}
		r4, imm8, ok := encodeImmediate8r4(v)
		if !ok {
			return 0, fmt.Errorf("value %#x cannot be expressed as an 8-bit immediate rotated by an even amount", v)
		}
		iBit = 0x02000000
		srcBits = r4<<8 | imm8
	} else {
		r, ok := parseRegister(src)
		if !ok {
			return 0, fmt.Errorf("expected register or #immediate, got %q", src)
		}
		srcBits = uint32(r)
	}
	word := uint32(pm.cond)<<28 | iBit | 0b10<<23 | b2u(toSPSR)<<22 | 1<<21 | mask<<16 | 0xF<<12 | srcBits
	return word, nil
}

func parsePSRName(s string) (toSPSR bool, flagsOnly bool, err error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cpsr":
		return false, false, nil
	case "cpsr_flg":
		return false, true, nil
	case "spsr":
		return true, false, nil
	case "spsr_flg":
		return true, true, nil
	default:
		return false, false, fmt.Errorf("unknown psr name %q", s)
	}
}

func encodeSWI(pm parsedMnemonic, argsRaw string, symbols map[string]uint32) (uint32, error) {
	s := strings.TrimSpace(argsRaw)
	s = strings.TrimPrefix(s, "#")
	v, err := evalExpr(s, symbols)
	if err != nil {
		return 0, err
	}
	if v > 0x00FFFFFF {
		return 0, fmt.Errorf("swi comment %#x exceeds 24 bits", v)
	}
	return uint32(pm.cond)<<28 | 0xF<<24 | v, nil
}

// encodeADR expands `adr{cond} Rd, expr` into a single add/sub of the PC,
// matching the +8 PC-read convention a real add/sub would see at this
// address.
func encodeADR(pm parsedMnemonic, argsRaw string, addr uint32, symbols map[string]uint32) (uint32, error) {
	fields := splitOperands(argsRaw)
	if len(fields) != 2 {
		return 0, fmt.Errorf("adr requires Rd, expr")
	}
	rd, ok := parseRegister(fields[0])
	if !ok {
		return 0, fmt.Errorf("expected register, got %q", fields[0])
	}
	target, err := evalExpr(fields[1], symbols)
	if err != nil {
		return 0, err
	}
	pcValue := addr + 8
	var opcode uint32
	var diff uint32
	if target >= pcValue {
		opcode = dpOpcodes["ADD"]
		diff = target - pcValue
	} else {
		opcode = dpOpcodes["SUB"]
		diff = pcValue - target
	}
	r4, imm8, ok := encodeImmediate8r4(diff)
	if !ok {
		return 0, fmt.Errorf("adr distance %#x from pc is not expressible as a rotated 8-bit immediate", diff)
	}
	bits := 0x02000000 | r4<<8 | imm8
	word := uint32(pm.cond)<<28 | opcode<<21 | uint32(registers.PC)<<16 | uint32(rd)<<12 | bits
	return word, nil
}
