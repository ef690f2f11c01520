package modalflag

import (
	"io"
	"strings"
)

// helpWriter buffers the flag package's default help output so it can be
// reformatted before being written to the caller's chosen Output.
type helpWriter struct {
	buffer []byte
}

// Clear empties the buffer.
func (hw *helpWriter) Clear() {
	hw.buffer = []byte{}
}

func (hw *helpWriter) Help(output io.Writer, additionalHelp string) {
	s := string(hw.buffer)
	helpLines := strings.Split(s, "\n")

	// no flag information: nothing useful to say
	if s == "Usage:\n" {
		output.Write([]byte("No help available\n"))
		return
	}

	output.Write([]byte(helpLines[0]))
	output.Write([]byte("\n"))

	if len(helpLines) > 1 {
		output.Write([]byte(strings.Join(helpLines[1:], "\n")))
	}

	if additionalHelp != "" {
		output.Write([]byte("\n"))
		output.Write([]byte(additionalHelp))
		output.Write([]byte("\n"))
	}
}

// Write buffers all output; implements io.Writer.
func (hw *helpWriter) Write(p []byte) (n int, err error) {
	hw.buffer = append(hw.buffer, p...)
	return len(p), nil
}
