package assembler

import (
	"strings"

	"github.com/zeramorphic/armul/hardware/instructions"
	"github.com/zeramorphic/armul/hardware/registers"
)

// parsedMnemonic is the decomposition of an opcode token into its base
// mnemonic plus whatever condition/flags/addressing suffix the base's
// grammar allows.
type parsedMnemonic struct {
	base      string
	cond      registers.Cond
	setFlags  bool
	blockMode string // for LDM/STM: "IA"/"IB"/"DA"/"DB"/"FA"/"EA"/"FD"/"ED"
	forceUser bool   // not set by parseMnemonic; encodeBlockTransfer reads a trailing ^ from the LDM/STM operands
}

// mnemonicClass says which suffix grammar a base mnemonic follows.
type mnemonicClass int

const (
	classCondS    mnemonicClass = iota // [cond][S]
	classCondOnly                      // [cond]
	classBlock                         // [cond]<addrmode>
	classNone                          // no suffix at all (pseudo-ops)
)

// mnemonicBases lists every recognized base mnemonic, each one ahead of any
// shorter mnemonic it begins with, so that e.g. "LDRB" is tried before "LDR"
// and "BX" before "B".
var mnemonicBases = []struct {
	name  string
	class mnemonicClass
}{
	{"UMULL", classCondS}, {"UMLAL", classCondS}, {"SMULL", classCondS}, {"SMLAL", classCondS},
	{"LDRSB", classCondOnly}, {"LDRSH", classCondOnly},
	{"LDRB", classCondOnly}, {"STRB", classCondOnly}, {"LDRH", classCondOnly}, {"STRH", classCondOnly},
	{"SWPB", classCondOnly},
	{"MUL", classCondS}, {"MLA", classCondS},
	{"AND", classCondS}, {"EOR", classCondS}, {"SUB", classCondS}, {"RSB", classCondS},
	{"ADD", classCondS}, {"ADC", classCondS}, {"SBC", classCondS}, {"RSC", classCondS},
	{"TST", classCondS}, {"TEQ", classCondS}, {"CMP", classCondS}, {"CMN", classCondS},
	{"ORR", classCondS}, {"MOV", classCondS}, {"BIC", classCondS}, {"MVN", classCondS},
	{"BX", classCondOnly}, {"BL", classCondOnly},
	{"LDR", classCondOnly}, {"STR", classCondOnly},
	{"LDM", classBlock}, {"STM", classBlock},
	{"SWP", classCondOnly},
	{"MRS", classCondOnly}, {"MSR", classCondOnly},
	{"SWI", classCondOnly},
	{"B", classCondOnly},
	{"ADR", classCondOnly},
}

var blockAddrModes = map[string]bool{
	"IA": true, "IB": true, "DA": true, "DB": true,
	"FA": true, "EA": true, "FD": true, "ED": true,
}

// parseMnemonic decomposes an opcode token (case-insensitive) into its base
// and suffixes. An LDM/STM `^` belongs to the operands, not the token.
func parseMnemonic(token string) (parsedMnemonic, bool) {
	upper := strings.ToUpper(token)
	for _, cand := range mnemonicBases {
		if !strings.HasPrefix(upper, cand.name) {
			continue
		}
		rem := upper[len(cand.name):]
		pm := parsedMnemonic{base: cand.name, cond: registers.CondAL}
		switch cand.class {
		case classNone:
			if rem != "" {
				continue
			}
			return pm, true
		case classCondOnly:
			if cond, rest, ok := stripCond(rem); ok {
				pm.cond = cond
				rest2 := rest
				if rest2 != "" {
					continue
				}
			} else if rem != "" {
				continue
			}
			return pm, true
		case classCondS:
			rest := rem
			if cond, r2, ok := stripCond(rest); ok {
				pm.cond = cond
				rest = r2
			}
			if rest == "S" {
				pm.setFlags = true
				rest = ""
			}
			if rest != "" {
				continue
			}
			return pm, true
		case classBlock:
			rest := rem
			if cond, r2, ok := stripCond(rest); ok {
				pm.cond = cond
				rest = r2
			}
			if !blockAddrModes[rest] {
				continue
			}
			pm.blockMode = rest
			return pm, true
		}
	}
	return parsedMnemonic{}, false
}

// stripCond removes a recognized two-letter condition suffix from the
// front of rem, if present.
func stripCond(rem string) (registers.Cond, string, bool) {
	if len(rem) < 2 {
		return 0, rem, false
	}
	if c, ok := registers.CondFromName(rem[:2]); ok {
		return c, rem[2:], true
	}
	return 0, rem, false
}

// definitionFor maps a parsed base mnemonic back to its static
// instructions.Definition.
func definitionFor(base string) (instructions.Definition, bool) {
	d, ok := instructions.Definitions[instructions.Mnemonic(base)]
	return d, ok
}
