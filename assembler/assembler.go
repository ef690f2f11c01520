package assembler

import (
	"fmt"
	"strings"
)

// Assemble runs the two-pass assembler over source: the first pass walks
// every line to fix label addresses (every recognized line emits either
// nothing, one word, or, for `dw`, one word per field), and the second
// pass evaluates expressions and encodes instructions now that every label
// is known. Forward references to labels resolve because pass one settles
// all addresses before pass two evaluates anything; `equ` constants must
// still be defined textually before their first use, since pass one does
// not evaluate expressions.
func Assemble(source string) (*Program, []Diagnostic) {
	rawLines := strings.Split(source, "\n")
	lines := make([]line, len(rawLines))
	for i, raw := range rawLines {
		lines[i] = parseLine(raw, i+1)
	}

	symbols := map[string]uint32{}
	var diags []Diagnostic

	addr := uint32(0)
	for _, l := range lines {
		if l.label != "" && !strings.EqualFold(l.op, "EQU") {
			key := strings.ToLower(l.label)
			if _, exists := symbols[key]; exists {
				diags = append(diags, Diagnostic{Line: l.number, Message: fmt.Sprintf("duplicate label %q", l.label)})
			} else {
				symbols[key] = addr
			}
		}
		if !l.hasOp {
			continue
		}
		size, err := lineSize(l)
		if err != nil {
			diags = append(diags, Diagnostic{Line: l.number, Message: err.Error()})
			continue
		}
		addr += size
	}

	// A pass-one error leaves later addresses unreliable (a skipped size
	// throws off every subsequent label), so pass two would only produce
	// confusing secondary diagnostics built on bad addresses. Report the
	// pass-one errors alone rather than compounding them.
	if len(diags) > 0 {
		return nil, diags
	}

	prog := &Program{Words: map[uint32]uint32{}, Symbols: map[string]uint32{}}
	for k, v := range symbols {
		prog.Symbols[k] = v
	}

	addr = 0
	for _, l := range lines {
		if l.directive != "" {
			exp, err := parseExpectation(l.directive)
			if err != nil {
				diags = append(diags, Diagnostic{Line: l.number, Message: err.Error()})
			} else {
				prog.Expectations = append(prog.Expectations, exp)
			}
		}
		if !l.hasOp {
			continue
		}

		if strings.EqualFold(l.op, "EQU") {
			v, err := evalExpr(l.argsRaw, symbols)
			if err != nil {
				diags = append(diags, Diagnostic{Line: l.number, Message: err.Error()})
				continue
			}
			symbols[strings.ToLower(l.label)] = v
			prog.Symbols[strings.ToLower(l.label)] = v
			continue
		}

		if strings.EqualFold(l.op, "DW") {
			for _, f := range splitOperands(l.argsRaw) {
				v, err := evalExpr(trimHash(f), symbols)
				if err != nil {
					diags = append(diags, Diagnostic{Line: l.number, Message: err.Error()})
					addr += 4
					continue
				}
				prog.Words[addr] = v
				prog.Lines = append(prog.Lines, SourceLine{Address: addr, Line: l.number, Raw: l.raw})
				addr += 4
			}
			continue
		}

		word, err := encodeLine(l, addr, symbols)
		if err != nil {
			diags = append(diags, Diagnostic{Line: l.number, Message: err.Error()})
			addr += 4
			continue
		}
		prog.Words[addr] = word
		prog.Lines = append(prog.Lines, SourceLine{Address: addr, Line: l.number, Raw: l.raw})
		addr += 4
	}

	if len(diags) > 0 {
		return nil, diags
	}
	return prog, nil
}

// trimHash strips a leading `#` from a dw field; dw accepts both bare
// expressions and `#`-prefixed ones for symmetry with immediate operands.
func trimHash(s string) string {
	s = strings.TrimSpace(s)
	return strings.TrimPrefix(s, "#")
}

// lineSize reports how many bytes a line emits, used by pass one to fix
// label addresses without needing to evaluate any expression.
func lineSize(l line) (uint32, error) {
	if strings.EqualFold(l.op, "EQU") {
		return 0, nil
	}
	if strings.EqualFold(l.op, "DW") {
		fields := splitOperands(l.argsRaw)
		if len(fields) == 0 {
			return 0, fmt.Errorf("dw requires at least one value")
		}
		return uint32(len(fields)) * 4, nil
	}
	if _, ok := parseMnemonic(l.op); !ok {
		return 0, fmt.Errorf("unrecognized mnemonic %q", l.op)
	}
	return 4, nil
}

// encodeLine dispatches a non-equ, non-dw instruction line to its
// class-specific encoder.
func encodeLine(l line, addr uint32, symbols map[string]uint32) (uint32, error) {
	pm, ok := parseMnemonic(l.op)
	if !ok {
		return 0, fmt.Errorf("unrecognized mnemonic %q", l.op)
	}

	switch pm.base {
	case "AND", "EOR", "SUB", "RSB", "ADD", "ADC", "SBC", "RSC",
		"TST", "TEQ", "CMP", "CMN", "ORR", "MOV", "BIC", "MVN":
		return encodeDataProcessing(pm, l.argsRaw, symbols)
	case "MUL", "MLA":
		return encodeMultiply(pm, l.argsRaw)
	case "UMULL", "UMLAL", "SMULL", "SMLAL":
		return encodeMultiplyLong(pm, l.argsRaw)
	case "B", "BL":
		return encodeBranch(pm, l.argsRaw, addr, symbols)
	case "BX":
		return encodeBranchExchange(pm, l.argsRaw)
	case "LDR", "STR", "LDRB", "STRB":
		return encodeSingleTransfer(pm, l.argsRaw, symbols)
	case "LDRH", "STRH", "LDRSB", "LDRSH":
		return encodeHalfwordTransfer(pm, l.argsRaw, symbols)
	case "LDM", "STM":
		return encodeBlockTransfer(pm, l.argsRaw)
	case "SWP", "SWPB":
		return encodeSwap(pm, l.argsRaw)
	case "MRS", "MSR":
		return encodePSRTransfer(pm, l.argsRaw, symbols)
	case "SWI":
		return encodeSWI(pm, l.argsRaw, symbols)
	case "ADR":
		return encodeADR(pm, l.argsRaw, addr, symbols)
	default:
		return 0, fmt.Errorf("unhandled mnemonic %q", pm.base)
	}
}
