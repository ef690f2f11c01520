// Package assembler implements the two-pass ARM v4T assembler: a hand
// lexer over a line-oriented syntax, a symbol table that resolves forward
// references in a second pass, and a per-mnemonic encoder that mirrors the
// decoder's bit layouts in the opposite direction.
package assembler

import "fmt"

// Diagnostic is one assembly error, tied to the source line it came from.
type Diagnostic struct {
	Line    int
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d: %s", d.Line, d.Message)
}

// Expectation is a parsed `;!` test-runner directive comment.
type Expectation struct {
	Kind   ExpectationKind
	Halts  uint32            // ExpectHalts
	Output string            // ExpectOutput
	Reg    string            // ExpectRegister: register name, e.g. "r3"
	Value  uint32            // ExpectRegister: expected value
}

type ExpectationKind int

const (
	ExpectHalts ExpectationKind = iota
	ExpectOutput
	ExpectRegister
)

// SourceLine maps one emitted word's address back to the source line that
// produced it, for line_at's disassembly annotation.
type SourceLine struct {
	Address uint32
	Line    int
	Raw     string
}

// Program is the result of a successful assembly: a sparse memory image,
// the resolved symbol table, and a line map used for the debugger's
// line_at lookups and comment pass-through.
type Program struct {
	Words        map[uint32]uint32
	Symbols      map[string]uint32
	Lines        []SourceLine
	Expectations []Expectation
	EntryPoint   uint32
}
