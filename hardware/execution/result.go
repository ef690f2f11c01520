// Package execution describes the outcome of decoding and executing a
// single ARM instruction: which definition it matched, how many cycles of
// each kind it consumed, and whether it actually retired.
package execution

import "github.com/zeramorphic/armul/hardware/instructions"

// Cycles is the three-counter cycle-accounting model named in the ARM
// timing budget: a NonSeq (non-sequential memory cycle), a Seq (sequential
// memory cycle) or an Internal (no memory access) cycle are charged for
// every sub-step of an instruction's execution.
type Cycles struct {
	NonSeq   int
	Seq      int
	Internal int
}

// Add accumulates another Cycles value into this one.
func (c *Cycles) Add(other Cycles) {
	c.NonSeq += other.NonSeq
	c.Seq += other.Seq
	c.Internal += other.Internal
}

// Total is the raw cycle count, (2*NonSeq + Seq + Internal), the ratio the
// estimated-time calculation is built from.
func (c Cycles) Total() int {
	return 2*c.NonSeq + c.Seq + c.Internal
}

// Result captures everything about one decode-execute step, whether or not
// it actually retired (a failed condition check still produces a Result,
// with Retired false).
type Result struct {
	// Address is the address the instruction was fetched from.
	Address uint32

	// InstructionWord is the raw 32-bit fetched word.
	InstructionWord uint32

	// Defn is the matched mnemonic definition, or nil if the word did not
	// decode to a recognized instruction.
	Defn *instructions.Definition

	// Cond is the 4-bit condition field of the instruction.
	Cond uint8

	// ConditionMet reports whether the condition passed; if false the
	// instruction did not retire.
	ConditionMet bool

	// Retired reports whether the instruction actually executed (condition
	// passed).
	Retired bool

	// Cycles is the cycle cost actually charged for this step, including any
	// pipeline-flush surcharge.
	Cycles Cycles

	// BranchTaken is meaningful only for branch-class instructions.
	BranchTaken bool

	// Halted reports whether this step requested a clean stop (the
	// terminal SWI number), distinct from Fault's error-stop.
	Halted bool

	// Fault is set if this step transitioned run state to Error.
	Fault error
}
