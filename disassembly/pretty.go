// Package disassembly renders a decoded ARM word into the PrettyInstr
// payload the command surface's line_at returns: an opcode split into its
// mnemonic prefix, condition, and suffix, plus an ordered list of tagged
// arguments. It decodes through hardware/cpu.Decode rather than keeping a
// second copy of the bit-field logic, so disassembly can never drift from
// what Step actually executes.
package disassembly

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/zeramorphic/armul/hardware/cpu"
	"github.com/zeramorphic/armul/hardware/instructions"
	"github.com/zeramorphic/armul/hardware/registers"
)

// ArgKind tags which of the five argument shapes a PrettyInstr.Args entry
// holds.
type ArgKind int

const (
	ArgRegister ArgKind = iota
	ArgPsr
	ArgShift
	ArgConstant
	ArgRegisterSet
)

// ConstantStyle hints how a Constant argument's value should be rendered.
type ConstantStyle int

const (
	StyleUnknown ConstantStyle = iota
	StyleAddress
	StyleUnsignedDecimal
)

// ShiftAmount is the amount operand of a Shift argument: either a literal
// count or a register holding one.
type ShiftAmount struct {
	IsRegister bool
	Constant   uint32
	Register   registers.Register
}

func (a ShiftAmount) String() string {
	if a.IsRegister {
		return registerName(a.Register)
	}
	return fmt.Sprintf("#%d", a.Constant)
}

// Arg is one tagged argument of a PrettyInstr. Only the fields relevant to
// Kind are meaningful; the rest are zero.
type Arg struct {
	Kind ArgKind

	// ArgRegister
	Register  registers.Register
	Negative  bool
	WriteBack bool

	// ArgPsr
	PsrName  string
	FlagOnly bool

	// ArgShift
	ShiftType   instructions.ShiftType
	ShiftAmount ShiftAmount

	// ArgConstant
	ConstValue uint32
	ConstStyle ConstantStyle

	// ArgRegisterSet
	RegisterSet uint16
	Caret       bool
}

func regArg(r registers.Register) Arg {
	return Arg{Kind: ArgRegister, Register: r}
}

func baseArg(r registers.Register, negative, writeBack bool) Arg {
	return Arg{Kind: ArgRegister, Register: r, Negative: negative, WriteBack: writeBack}
}

func constArg(v uint32, style ConstantStyle) Arg {
	return Arg{Kind: ArgConstant, ConstValue: v, ConstStyle: style}
}

// PrettyInstr is the disassembly payload of one decoded instruction.
type PrettyInstr struct {
	OpcodePrefix string
	Cond         string
	OpcodeSuffix string
	Args         []Arg
}

// Disassemble decodes the word fetched from addr and renders it. The second
// return value is false if word does not decode to a recognized
// instruction, in which case line_at reports no instr field.
func Disassemble(word, addr uint32) (PrettyInstr, bool) {
	in := cpu.Decode(word)
	if !in.Valid {
		return PrettyInstr{}, false
	}
	return build(in, addr), true
}

func build(in cpu.Instr, addr uint32) PrettyInstr {
	p := PrettyInstr{
		OpcodePrefix: string(in.Mn),
		Cond:         in.Cond.String(),
	}

	switch in.Class {
	case instructions.DataProcessing:
		p.OpcodeSuffix, p.Args = buildDataProcessing(in)
	case instructions.Multiply:
		p.OpcodeSuffix = setFlagsSuffix(in.SetFlags)
		p.Args = buildMultiply(in)
	case instructions.MultiplyLong:
		p.OpcodeSuffix = setFlagsSuffix(in.SetFlags)
		p.Args = buildMultiplyLong(in)
	case instructions.Branch:
		p.Args = []Arg{constArg(addr+8+uint32(in.Offset), StyleAddress)}
	case instructions.BranchExchange:
		p.Args = []Arg{regArg(in.BxRm)}
	case instructions.SingleTransfer:
		p.Args = buildTransfer(in.Rn, in.Rd, in.Up, in.PreIndex, in.WriteBack, in.XferOp2)
	case instructions.HalfwordTransfer:
		p.Args = buildTransfer(in.Rn, in.Rd, in.Up, in.PreIndex, in.WriteBack, in.XferOp2)
	case instructions.BlockTransfer:
		p.OpcodeSuffix = blockTransferMode(in).String()
		p.Args = buildBlockTransfer(in)
	case instructions.Swap:
		p.Args = []Arg{regArg(in.Rd), regArg(in.Rm), baseArg(in.Rn, false, false)}
	case instructions.PSRTransfer:
		p.Args = buildPSRTransfer(in)
	case instructions.SoftwareInterrupt:
		p.Args = []Arg{constArg(in.Comment, StyleUnsignedDecimal)}
	case instructions.RawWord:
		p.OpcodePrefix = "DW"
		p.Args = []Arg{constArg(in.Raw, StyleUnknown)}
	}

	return p
}

func setFlagsSuffix(set bool) string {
	if set {
		return "S"
	}
	return ""
}

var compareOps = map[instructions.Mnemonic]bool{
	instructions.TST: true, instructions.TEQ: true, instructions.CMP: true, instructions.CMN: true,
}

var moveOnlyOps = map[instructions.Mnemonic]bool{
	instructions.MOV: true, instructions.MVN: true,
}

func buildDataProcessing(in cpu.Instr) (string, []Arg) {
	suffix := ""
	if in.SetFlags && !compareOps[in.Mn] {
		suffix = "S"
	}

	var args []Arg
	if !compareOps[in.Mn] {
		args = append(args, regArg(in.Rd))
	}
	if !moveOnlyOps[in.Mn] {
		args = append(args, regArg(in.Rn))
	}
	args = append(args, operand2Args(in.Op2)...)
	return suffix, args
}

func operand2Args(op cpu.Operand2) []Arg {
	if op.IsImmediate {
		return []Arg{constArg(op.Immediate, StyleUnknown)}
	}

	args := []Arg{regArg(op.Rm)}
	if op.ShiftType == instructions.LSL && !op.ShiftIsReg && op.ShiftAmount == 0 {
		return args
	}

	amt := ShiftAmount{}
	if op.ShiftIsReg {
		amt.IsRegister = true
		amt.Register = op.ShiftAmountRm
	} else {
		amt.Constant = op.ShiftAmount
	}
	args = append(args, Arg{Kind: ArgShift, ShiftType: op.ShiftType, ShiftAmount: amt})
	return args
}

func buildMultiply(in cpu.Instr) []Arg {
	args := []Arg{regArg(in.Rd), regArg(in.Rm), regArg(in.Rs)}
	if in.Accumulate {
		args = append(args, regArg(in.Rn))
	}
	return args
}

func buildMultiplyLong(in cpu.Instr) []Arg {
	// in.Rn holds RdLo, in.Rd holds RdHi, matching the decoder's field
	// assignment for the long multiply forms.
	return []Arg{regArg(in.Rn), regArg(in.Rd), regArg(in.Rm), regArg(in.Rs)}
}

// buildTransfer renders the single/halfword-transfer destination register
// plus its addressing-mode operand: a base register (carrying the
// negative/write-back decoration) and, if present, an immediate or
// shifted-register offset.
func buildTransfer(rn, rd registers.Register, up, preIndex, writeBack bool, op cpu.Operand2) []Arg {
	args := []Arg{regArg(rd), baseArg(rn, !up, writeBack && !preIndex)}

	switch {
	case op.IsImmediate && op.Immediate == 0:
		// plain [Rn] with no offset
	case op.IsImmediate:
		args = append(args, constArg(op.Immediate, StyleUnknown))
	default:
		args = append(args, baseArg(op.Rm, !up, false))
		if op.ShiftAmount != 0 {
			args = append(args, Arg{
				Kind:        ArgShift,
				ShiftType:   op.ShiftType,
				ShiftAmount: ShiftAmount{Constant: op.ShiftAmount},
			})
		}
	}
	return args
}

func blockTransferMode(in cpu.Instr) instructions.BlockTransferMode {
	switch {
	case in.PreIndex && in.Up:
		return instructions.IB
	case in.PreIndex && !in.Up:
		return instructions.DB
	case !in.PreIndex && in.Up:
		return instructions.IA
	default:
		return instructions.DA
	}
}

func buildBlockTransfer(in cpu.Instr) []Arg {
	return []Arg{
		baseArg(in.Rn, false, in.WriteBack),
		{Kind: ArgRegisterSet, RegisterSet: in.RegList, Caret: in.ForceUser},
	}
}

func buildPSRTransfer(in cpu.Instr) []Arg {
	name := "CPSR"
	if in.ToSPSR {
		name = "SPSR"
	}
	psrArg := Arg{Kind: ArgPsr, PsrName: name, FlagOnly: in.FlagsOnly}

	if !in.IsMSR {
		return []Arg{psrArg, regArg(in.Rd)}
	}

	var src Arg
	if in.MsrSrc.IsImmediate {
		src = constArg(in.MsrSrc.Immediate, StyleUnknown)
	} else {
		src = regArg(in.MsrSrc.Rm)
	}
	return []Arg{psrArg, src}
}

func registerName(r registers.Register) string {
	switch r {
	case registers.SP:
		return "SP"
	case registers.LR:
		return "LR"
	case registers.PC:
		return "PC"
	default:
		return fmt.Sprintf("R%d", uint8(r))
	}
}

// String renders a human-readable assembly-like line, used by the CLI. It
// is a best-effort rendering for display only; the tagged Args above are
// the actual command-surface contract.
func (p PrettyInstr) String() string {
	var b strings.Builder
	b.WriteString(p.OpcodePrefix)
	if p.Cond != "" && p.Cond != "AL" {
		b.WriteString(p.Cond)
	}
	b.WriteString(p.OpcodeSuffix)

	parts := make([]string, 0, len(p.Args))
	for i := 0; i < len(p.Args); i++ {
		a := p.Args[i]
		switch a.Kind {
		case ArgRegister:
			s := registerName(a.Register)
			if a.Negative {
				s = "-" + s
			}
			parts = append(parts, "["+s+"]"+writeBackSuffix(a.WriteBack))
		case ArgPsr:
			s := a.PsrName
			if a.FlagOnly {
				s += "_flg"
			}
			parts = append(parts, s)
		case ArgShift:
			parts = append(parts, a.ShiftType.String()+" "+a.ShiftAmount.String())
		case ArgConstant:
			parts = append(parts, formatConstant(a))
		case ArgRegisterSet:
			parts = append(parts, formatRegisterSet(a))
		}
	}
	if len(parts) > 0 {
		b.WriteString(" ")
		b.WriteString(strings.Join(parts, ", "))
	}
	return b.String()
}

func writeBackSuffix(wb bool) string {
	if wb {
		return "!"
	}
	return ""
}

func formatConstant(a Arg) string {
	switch a.ConstStyle {
	case StyleAddress:
		return fmt.Sprintf("#%#08x", a.ConstValue)
	case StyleUnsignedDecimal:
		return fmt.Sprintf("#%d", a.ConstValue)
	default:
		return fmt.Sprintf("#%#x", a.ConstValue)
	}
}

func formatRegisterSet(a Arg) string {
	var names []string
	for i := 0; i < 16; i++ {
		if a.RegisterSet&(1<<uint(i)) != 0 {
			names = append(names, registerName(registers.Register(i)))
		}
	}
	s := "{" + strings.Join(names, ", ") + "}"
	if a.Caret {
		s += "^"
	}
	return s
}

// NumSetRegisters reports how many registers a RegisterSet argument names.
func NumSetRegisters(a Arg) int {
	return bits.OnesCount16(a.RegisterSet)
}
