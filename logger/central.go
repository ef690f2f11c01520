// Package logger provides a single central log shared by the core, the
// debugger, and the REPL front-end. It exists so that a long-running
// stepping loop can leave a trail (faults, breakpoint hits, loaded
// programs) without every caller having to carry an *os.File or io.Writer
// of its own around.
package logger

import (
	"io"
)

// only allowing one central log for the whole process; there's no need for
// more than one debugger session at a time.
var central *logger

// maxCentral bounds how many entries the central log keeps. A program that
// spins (the division-routine scenario loops dozens of times before it
// halts) must not grow the log without bound.
const maxCentral = 256

func init() {
	central = newLogger(maxCentral)
}

// Log adds an entry to the central log, subject to perm allowing it.
func Log(perm Permission, tag, detail string) {
	if perm == Allow || perm.AllowLogging() {
		central.log(tag, detail)
	}
}

// Logf adds a formatted entry to the central log, subject to perm allowing
// it.
func Logf(perm Permission, tag, detail string, args ...interface{}) {
	if perm == Allow || perm.AllowLogging() {
		central.logf(tag, detail, args...)
	}
}

// Clear removes every entry from the central log.
func Clear() {
	central.clear()
}

// Write the full contents of the central log to output.
func Write(output io.Writer) {
	central.write(output)
}

// WriteRecent writes only the entries added since the last call to
// WriteRecent.
func WriteRecent(output io.Writer) {
	central.writeRecent(output)
}

// Tail writes the last number entries to output.
func Tail(output io.Writer, number int) {
	central.tail(output, number)
}

// SetEcho arranges for every future log entry to also be written to output
// as it is recorded; the armul CLI's -echo flag routes this to os.Stderr so
// a running session can be logged alongside its REPL output.
func SetEcho(output io.Writer, writeRecent bool) {
	central.setEcho(output, writeRecent)
}

// BorrowLog gives f exclusive access to the central log's entries for the
// duration of the call.
func BorrowLog(f func([]Entry)) {
	central.borrowLog(f)
}
