package assembler

import (
	"fmt"
	"strconv"
	"strings"
)

// parseExpectation parses the body of a `;!` test-runner directive comment:
// `halts N`, `output <text>`, or `rN V`.
func parseExpectation(text string) (Expectation, error) {
	text = strings.TrimSpace(text)
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Expectation{}, fmt.Errorf("empty test directive")
	}
	switch strings.ToLower(fields[0]) {
	case "halts":
		if len(fields) != 2 {
			return Expectation{}, fmt.Errorf("halts directive takes exactly one number")
		}
		v, err := strconv.ParseUint(fields[1], 0, 32)
		if err != nil {
			return Expectation{}, fmt.Errorf("invalid halts number %q: %w", fields[1], err)
		}
		return Expectation{Kind: ExpectHalts, Halts: uint32(v)}, nil
	case "output":
		rest := strings.TrimSpace(text[len("output"):])
		return Expectation{Kind: ExpectOutput, Output: rest}, nil
	default:
		name := strings.ToLower(fields[0])
		if len(name) < 2 || name[0] != 'r' {
			return Expectation{}, fmt.Errorf("unrecognized test directive %q", fields[0])
		}
		if _, ok := parseRegister(name); !ok {
			return Expectation{}, fmt.Errorf("unrecognized test directive %q", fields[0])
		}
		if len(fields) != 2 {
			return Expectation{}, fmt.Errorf("register directive takes exactly one value")
		}
		v, err := strconv.ParseUint(fields[1], 0, 32)
		if err != nil {
			return Expectation{}, fmt.Errorf("invalid register value %q: %w", fields[1], err)
		}
		return Expectation{Kind: ExpectRegister, Reg: name, Value: uint32(v)}, nil
	}
}
