package instructions

// ShiftType is the barrel shifter operation encoded in a shifted-register
// operand.
type ShiftType int

const (
	LSL ShiftType = iota
	LSR
	ASR
	ROR
	RRX
)

func (s ShiftType) String() string {
	switch s {
	case LSL:
		return "LSL"
	case LSR:
		return "LSR"
	case ASR:
		return "ASR"
	case ROR:
		return "ROR"
	case RRX:
		return "RRX"
	default:
		return "??"
	}
}

// BlockTransferMode is the addressing mode of an LDM/STM, decoded from bits
// 24 (pre/post) and 23 (up/down), with the stack-alias spellings resolved by
// the assembler/disassembler against whether the instruction is a load or a
// store.
type BlockTransferMode int

const (
	IA BlockTransferMode = iota // post-increment
	IB                          // pre-increment
	DA                          // post-decrement
	DB                          // pre-decrement
)

func (m BlockTransferMode) String() string {
	switch m {
	case IA:
		return "IA"
	case IB:
		return "IB"
	case DA:
		return "DA"
	case DB:
		return "DB"
	default:
		return "??"
	}
}

// PreIndexed and Up report the (pre/post, up/down) pair encoded by the mode,
// matching the ARM v4 P and U bits.
func (m BlockTransferMode) PreIndexed() bool {
	return m == IB || m == DB
}

func (m BlockTransferMode) Up() bool {
	return m == IA || m == IB
}

// StackAliasForLoad and StackAliasForStore resolve the FA/EA/FD/ED stack
// aliases to the underlying IA/IB/DA/DB mode, per the ARM v4 convention:
// FA=DA (load) / IB (store); FD=IA (load) / DB (store); EA=DB (load) / IA
// (store); ED=IB (load) / DA (store).
func StackAliasForLoad(alias string) (BlockTransferMode, bool) {
	switch alias {
	case "FA":
		return DA, true
	case "FD":
		return IA, true
	case "EA":
		return DB, true
	case "ED":
		return IB, true
	default:
		return 0, false
	}
}

func StackAliasForStore(alias string) (BlockTransferMode, bool) {
	switch alias {
	case "FA":
		return IB, true
	case "FD":
		return DB, true
	case "EA":
		return IA, true
	case "ED":
		return DA, true
	default:
		return 0, false
	}
}
