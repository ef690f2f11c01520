package cpu

import "errors"

// Sentinel errors identifying the runtime faults named in the error
// taxonomy. Each is wrapped with contextual detail via fmt.Errorf and
// compared with errors.Is.
var (
	ErrUndefinedInstruction = errors.New("undefined instruction")
	ErrUnknownSWI           = errors.New("SWI")
	ErrUnrecognizedMode     = errors.New("unrecognized CPSR mode")
	ErrNoSPSR               = errors.New("no SPSR in current mode")
)
