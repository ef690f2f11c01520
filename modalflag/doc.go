// Package modalflag is a thin wrapper around the standard library's flag
// package. It formats its own help output and distinguishes "help was
// requested" from "a flag was genuinely invalid" in Parse()'s return value
// — used here by cmd/armul for its top-level flags (-file, -speed, -echo,
// -nosymbols).
//
// It is used as a drop-in replacement for flag, with one difference: where
// flag.FlagSet.Parse() takes the argument slice directly, modalflag.Modes
// first takes NewArgs() with the slice and then Parse() with no arguments:
//
//	md := Modes{Output: os.Stdout}
//	md.NewArgs(os.Args[1:])
//	_, _ = md.Parse()
//
// Non-flag arguments, once Parse() has been called, are available via
// RemainingArgs() or GetArg():
//
//	switch len(md.RemainingArgs()) {
//	case 0:
//		return fmt.Errorf("argument required")
//	case 1:
//		Process(md.GetArg(0))
//	default:
//		return fmt.Errorf("too many arguments")
//	}
//
// Flags are added the same way as with the flag package, except the
// functions hang off the Modes value:
//
//	verbose := md.AddBool("verbose", false, "print additional log messages")
//
// Each Add* function returns a pointer to a variable holding the flag's
// default value until Parse() runs, after which it holds whatever the user
// supplied:
//
//	if *verbose {
//		fmt.Println(additionalLogMessage)
//	}
package modalflag
