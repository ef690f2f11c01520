package modalflag

import (
	"flag"
	"io"
	"time"
)

// Modes is a thin wrapper around flag.FlagSet that formats its own help
// output and distinguishes "help was printed" from "a flag was genuinely
// invalid" in its Parse() return value. cmd/armul uses one Modes value for
// its top-level flags (-file, -speed, -echo, -nosymbols); the REPL's own
// per-line command dispatch handles everything past that point itself, so
// Modes has no notion of sub-commands.
type Modes struct {
	// Output is where help messages are printed. It must be set (typically
	// to os.Stdout) before Parse() is called; Parse() panics if help is
	// requested while it is nil.
	Output io.Writer

	parsed bool
	flags  *flag.FlagSet
	args   []string

	additionalHelp string
}

// AdditionalHelp supplies extensive help text shown in addition to the
// flag-by-flag help.
func (md *Modes) AdditionalHelp(help string) {
	md.additionalHelp = help
}

// Parsed reports whether Parse() has been called since the last NewArgs().
func (md *Modes) Parsed() bool {
	return md.parsed
}

// NewArgs supplies the argument list to parse (the command line, typically).
func (md *Modes) NewArgs(args []string) {
	md.args = args
	md.flags = flag.NewFlagSet("", flag.ContinueOnError)
	md.parsed = false
}

// ParseResult is returned from Parse().
type ParseResult int

const (
	// ParseContinue means processing should carry on normally.
	ParseContinue ParseResult = iota

	// ParseHelp means a help message was requested and has already been
	// printed.
	ParseHelp

	// ParseError means an error occurred; it is returned as Parse()'s
	// second value.
	ParseError
)

// Parse the argument list supplied to NewArgs(), returning a ParseResult.
//
//	r, err := md.Parse()
//	switch r {
//	case modalflag.ParseHelp:
//		return
//	case modalflag.ParseError:
//		printError(err)
//		return
//	}
//
// Help messages are written to Output automatically — it must be set (to
// os.Stdout, most commonly) before a help flag can be handled.
func (md *Modes) Parse() (ParseResult, error) {
	md.parsed = true

	hw := &helpWriter{}
	md.flags.SetOutput(hw)

	err := md.flags.Parse(md.args)
	if err != nil {
		if err == flag.ErrHelp {
			hw.Help(md.Output, md.additionalHelp)
			hw.Clear()
			return ParseHelp, nil
		}
		return ParseError, err
	}

	return ParseContinue, nil
}

// RemainingArgs are the arguments left over after Parse() has consumed flags.
func (md *Modes) RemainingArgs() []string {
	return md.flags.Args()
}

// GetArg returns the numbered remaining argument.
func (md *Modes) GetArg(i int) string {
	return md.flags.Arg(i)
}

// AddBool flag for the next call to Parse().
func (md *Modes) AddBool(name string, value bool, usage string) *bool {
	return md.flags.Bool(name, value, usage)
}

// AddDuration flag for the next call to Parse().
func (md *Modes) AddDuration(name string, value time.Duration, usage string) *time.Duration {
	return md.flags.Duration(name, value, usage)
}

// AddFloat64 flag for the next call to Parse().
func (md *Modes) AddFloat64(name string, value float64, usage string) *float64 {
	return md.flags.Float64(name, value, usage)
}

// AddInt flag for the next call to Parse().
func (md *Modes) AddInt(name string, value int, usage string) *int {
	return md.flags.Int(name, value, usage)
}

// AddInt64 flag for the next call to Parse().
func (md *Modes) AddInt64(name string, value int64, usage string) *int64 {
	return md.flags.Int64(name, value, usage)
}

// AddString flag for the next call to Parse().
func (md *Modes) AddString(name string, value string, usage string) *string {
	return md.flags.String(name, value, usage)
}

// AddUint flag for the next call to Parse().
func (md *Modes) AddUint(name string, value uint, usage string) *uint {
	return md.flags.Uint(name, value, usage)
}

// AddUint64 flag for the next call to Parse().
func (md *Modes) AddUint64(name string, value uint64, usage string) *uint64 {
	return md.flags.Uint64(name, value, usage)
}

// Visit calls fn, in lexicographical order, for every flag that was
// explicitly set.
func (md *Modes) Visit(fn func(flag string)) {
	md.flags.Visit(func(f *flag.Flag) {
		fn(f.Name)
	})
}
