// Package registers implements the ARM7TDMI's 37 physical registers, their
// mode-banked routing from the 16 logical registers R0-R15, and the CPSR/SPSR
// status register bits.
package registers

// Register names one of the 16 logical registers visible to an instruction.
type Register uint8

const (
	R0 Register = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
)

// SP and LR are the conventional names for R13 and R14.
const (
	SP = R13
	LR = R14
	PC = R15
)

// physical indexes the 37-slot physical register file. The layout doubles
// as the flat index order returned by the Controller's registers() query:
// 0..15 current-mode R0..R15, 16..22 FIQ R8..R14, 23..24 IRQ R13..R14,
// 25..26 SVC R13..R14, 27..28 ABT R13..R14, 29..30 UND R13..R14, 31 CPSR,
// 32..36 SPSR_fiq/irq/svc/abt/und. CPSR is pinned at index 31.
type physical uint8

const (
	physR0 physical = iota
	physR1
	physR2
	physR3
	physR4
	physR5
	physR6
	physR7
	physR8
	physR9
	physR10
	physR11
	physR12
	physR13
	physR14
	physR15
	physR8Fiq
	physR9Fiq
	physR10Fiq
	physR11Fiq
	physR12Fiq
	physR13Fiq
	physR14Fiq
	physR13Irq
	physR14Irq
	physR13Svc
	physR14Svc
	physR13Abt
	physR14Abt
	physR13Und
	physR14Und
	physCPSR
	physSPSRFiq
	physSPSRIrq
	physSPSRSvc
	physSPSRAbt
	physSPSRUnd
	numPhysical
)

// CPSRIndex is the fixed flat-register-array index of CPSR, per the
// protocol contract.
const CPSRIndex = int(physCPSR)

// physicalFor routes a logical register and mode to its physical slot.
func physicalFor(r Register, m Mode) physical {
	switch r {
	case R8, R9, R10, R11, R12:
		if m == ModeFiq {
			return physical(physR8Fiq) + physical(r-R8)
		}
		return physical(physR0) + physical(r)
	case R13, R14:
		if !m.hasOwnBank13_14() {
			return physical(physR0) + physical(r)
		}
		switch m {
		case ModeFiq:
			return physR13Fiq + physical(r-R13)
		case ModeIrq:
			return physR13Irq + physical(r-R13)
		case ModeSvc:
			return physR13Svc + physical(r-R13)
		case ModeAbt:
			return physR13Abt + physical(r-R13)
		case ModeUnd:
			return physR13Und + physical(r-R13)
		}
		return physical(physR0) + physical(r)
	default:
		return physical(physR0) + physical(r)
	}
}

func spsrPhysicalFor(m Mode) (physical, bool) {
	switch m {
	case ModeFiq:
		return physSPSRFiq, true
	case ModeIrq:
		return physSPSRIrq, true
	case ModeSvc:
		return physSPSRSvc, true
	case ModeAbt:
		return physSPSRAbt, true
	case ModeUnd:
		return physSPSRUnd, true
	default:
		return 0, false
	}
}

// File is the 37-slot physical register file plus the routing needed to
// read and write it through the logical R0-R15 view.
type File struct {
	slots [numPhysical]uint32
}

// NewFile returns a freshly constructed register file. Every general
// register and SPSR starts zeroed, but CPSR starts as SVC mode with IRQ
// disabled (0b10010011), matching the boot default a real core powers up
// into; this is distinct from a hard reset, which explicitly zeroes CPSR
// along with everything else.
func NewFile() *File {
	f := &File{}
	f.slots[physCPSR] = uint32(ModeSvc) | 1<<bitI
	return f
}

// Clear zeroes every physical register, including CPSR and every SPSR.
func (f *File) Clear() {
	for i := range f.slots {
		f.slots[i] = 0
	}
}

// Mode returns the processor mode named by CPSR's low 5 bits, or false if
// the bit pattern does not name a recognized mode.
func (f *File) Mode() (Mode, bool) {
	return modeFromBits(f.slots[physCPSR])
}

// modeOrUsr returns the current mode, defaulting to USR if the mode bits are
// unrecognized, matching the register-routing fallback used elsewhere in the
// architecture when looking up a bank.
func (f *File) modeOrUsr() Mode {
	m, ok := f.Mode()
	if !ok {
		return ModeUsr
	}
	return m
}

// Get returns the value of logical register r as seen in the current mode.
func (f *File) Get(r Register) uint32 {
	return f.slots[physicalFor(r, f.modeOrUsr())]
}

// GetPCOffset returns Get(r), plus offset if r is R15. Used to implement the
// "R15 reads return pc+8 (or pc+12 for a register-specified shift operand)"
// rule without special-casing every caller.
func (f *File) GetPCOffset(r Register, offset uint32) uint32 {
	v := f.Get(r)
	if r == R15 {
		v += offset
	}
	return v
}

// Set writes logical register r in the current mode.
func (f *File) Set(r Register, v uint32) {
	f.slots[physicalFor(r, f.modeOrUsr())] = v
}

// GetUser returns the value of logical register r as seen in USR/SYS mode,
// regardless of the current mode. Used by block transfer's force-user-bank
// form.
func (f *File) GetUser(r Register) uint32 {
	return f.slots[physicalFor(r, ModeUsr)]
}

// SetUser writes logical register r in the USR/SYS bank, regardless of the
// current mode. Used by block transfer's force-user-bank form.
func (f *File) SetUser(r Register, v uint32) {
	f.slots[physicalFor(r, ModeUsr)] = v
}

// GetPhysicalFlat returns the value at flat index i (0..36), matching the
// Controller's registers() query order: indexes 0..15 read R0..R15 as seen
// in the current mode, the rest read the physical slot directly.
func (f *File) GetPhysicalFlat(i int) uint32 {
	if i < 16 {
		return f.Get(Register(i))
	}
	return f.slots[i]
}

// NumPhysical is the number of flat register slots (always 37).
const NumPhysical = int(numPhysical)

// CPSR returns the raw CPSR value.
func (f *File) CPSR() uint32 {
	return f.slots[physCPSR]
}

// SetCPSR overwrites the raw CPSR value.
func (f *File) SetCPSR(v uint32) {
	f.slots[physCPSR] = v
}

// SPSR returns the SPSR of the current mode and whether one exists (it does
// not in USR/SYS).
func (f *File) SPSR() (uint32, bool) {
	p, ok := spsrPhysicalFor(f.modeOrUsr())
	if !ok {
		return 0, false
	}
	return f.slots[p], true
}

// SetSPSR overwrites the SPSR of the current mode. It is a no-op (returning
// false) in USR/SYS, which have no SPSR.
func (f *File) SetSPSR(v uint32) bool {
	p, ok := spsrPhysicalFor(f.modeOrUsr())
	if !ok {
		return false
	}
	f.slots[p] = v
	return true
}

const (
	bitN = 31
	bitZ = 30
	bitC = 29
	bitV = 28
	bitI = 7
	bitF = 6
	bitT = 5
)

func bit(v uint32, n uint) bool { return v&(1<<n) != 0 }

func setBit(v *uint32, n uint, set bool) {
	if set {
		*v |= 1 << n
	} else {
		*v &^= 1 << n
	}
}

func (f *File) N() bool { return bit(f.slots[physCPSR], bitN) }
func (f *File) Z() bool { return bit(f.slots[physCPSR], bitZ) }
func (f *File) C() bool { return bit(f.slots[physCPSR], bitC) }
func (f *File) V() bool { return bit(f.slots[physCPSR], bitV) }
func (f *File) I() bool { return bit(f.slots[physCPSR], bitI) }
func (f *File) T() bool { return bit(f.slots[physCPSR], bitT) }

func (f *File) SetN(v bool) { setBit(&f.slots[physCPSR], bitN, v) }
func (f *File) SetZ(v bool) { setBit(&f.slots[physCPSR], bitZ, v) }
func (f *File) SetC(v bool) { setBit(&f.slots[physCPSR], bitC, v) }
func (f *File) SetV(v bool) { setBit(&f.slots[physCPSR], bitV, v) }

// SetNZ sets N and Z from a 32-bit result, as every S-setting instruction
// does.
func (f *File) SetNZ(result uint32) {
	f.SetN(result&0x80000000 != 0)
	f.SetZ(result == 0)
}
