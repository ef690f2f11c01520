package debugger

// breakpoints is the Controller's address-set breakpoint model: a plain set
// of word addresses plus the one-shot suppression needed so that resuming
// past an acknowledged breakpoint doesn't immediately re-stop on the very
// instruction the host just inspected.
type breakpoints struct {
	set map[uint32]bool

	suppressed bool
	suppressPC uint32
}

func newBreakpoints() *breakpoints {
	return &breakpoints{set: map[uint32]bool{}}
}

func (b *breakpoints) add(addr uint32) {
	b.set[addr] = true
}

func (b *breakpoints) remove(addr uint32) {
	delete(b.set, addr)
	if b.suppressed && b.suppressPC == addr {
		b.suppressed = false
	}
}

func (b *breakpoints) clear() {
	b.set = map[uint32]bool{}
	b.suppressed = false
}

// shouldStop reports whether execution should stop before fetching the
// instruction at pc: pc must be a set breakpoint and not the single
// suppressed occurrence left by a prior hit that the host has acknowledged.
func (b *breakpoints) shouldStop(pc uint32) bool {
	if !b.set[pc] {
		return false
	}
	return !(b.suppressed && b.suppressPC == pc)
}

// acknowledge arms one-shot suppression for pc, letting the next step past
// pc proceed without immediately re-stopping.
func (b *breakpoints) acknowledge(pc uint32) {
	b.suppressed = true
	b.suppressPC = pc
}

// passed clears the one-shot suppression once execution has actually
// stepped past the suppressed address, re-arming the breakpoint for any
// later visit to the same pc (e.g. a loop).
func (b *breakpoints) passed(pc uint32) {
	if b.suppressed && b.suppressPC == pc {
		b.suppressed = false
	}
}
