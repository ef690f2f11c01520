// Package test bundles the small set of helpers the rest of this module's
// test files share: a way to compare captured writer output against an
// expected string, and a generic equality check that avoids the boilerplate
// of writing out the same "if got != want" pattern for every
// value assertion in hardware/registers and hardware/memory.
//
// Equate() compares like-typed values. Some integer types (uint16, uint32)
// can be compared against a plain int for convenience, since a literal
// number in test source is always typed int; see Equate() for the exact
// rules.
//
// CompareWriter implements io.Writer and should be used to capture output
// from the logger and modalflag's help output for exact-string comparison via
// its Compare() method.
package test
