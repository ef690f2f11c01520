package test

import (
	"testing"
)

// Equate tests equality between value and expectedValue. Both must
// generally be of the same type, but a uint16 or uint32 value may be
// compared against a plain int, since a literal number in test source is
// always typed int; this saves the assertions in hardware/registers and
// hardware/memory from having to cast the expected side explicitly.
//
// This is not a comprehensive comparison function. Add a case here as
// new value types show up in assertions, rather than reaching for the
// reflect package preemptively.
func Equate(t *testing.T, value, expectedValue interface{}) {
	t.Helper()

	switch v := value.(type) {
	default:
		t.Fatalf("unhandled type for Equate() function (%T))", v)

	case nil:
		if expectedValue != nil {
			t.Errorf("equation of type %T failed (%v  - wanted nil)", v, v)
		}

	case int64:
		switch ev := expectedValue.(type) {
		case int64:
			if v != ev {
				t.Errorf("equation of type %T failed (%d  - wanted %d)", v, v, ev)
			}
		default:
			t.Fatalf("values for Equate() are not the same type (%T and %T)", v, expectedValue)
		}

	case uint64:
		switch ev := expectedValue.(type) {
		case uint64:
			if v != ev {
				t.Errorf("equation of type %T failed (%d  - wanted %d)", v, v, ev)
			}
		default:
			t.Fatalf("values for Equate() are not the same type (%T and %T)", v, expectedValue)
		}

	case int:
		switch ev := expectedValue.(type) {
		case int:
			if v != ev {
				t.Errorf("equation of type %T failed (%d  - wanted %d)", v, v, ev)
			}
		default:
			t.Fatalf("values for Equate() are not the same type (%T and %T)", v, expectedValue)
		}

	case uint16:
		switch ev := expectedValue.(type) {
		case int:
			if v != uint16(ev) {
				t.Errorf("equation of type %T failed (%#04x - wanted %#04x)", v, v, ev)
			}
		case uint16:
			if v != ev {
				t.Errorf("equation of type %T failed (%#04x - wanted %#04x)", v, v, ev)
			}
		default:
			t.Fatalf("values for Equate() are not the same compatible (%T and %T)", v, ev)
		}

	case uint32:
		switch ev := expectedValue.(type) {
		case int:
			if v != uint32(ev) {
				t.Errorf("equation of type %T failed (%#08x - wanted %#08x)", v, v, ev)
			}
		case uint32:
			if v != ev {
				t.Errorf("equation of type %T failed (%#08x - wanted %#08x)", v, v, ev)
			}
		default:
			t.Fatalf("values for Equate() are not the same compatible (%T and %T)", v, ev)
		}

	case string:
		switch ev := expectedValue.(type) {
		case string:
			if v != ev {
				t.Errorf("equation of type %T failed (%s  - wanted %s)", v, v, ev)
			}
		default:
			t.Fatalf("values for Equate() are not the same type (%T and %T)", v, expectedValue)
		}

	case bool:
		switch ev := expectedValue.(type) {
		case bool:
			if v != ev {
				t.Errorf("equation of type %T failed (%v  - wanted %v)", v, v, ev)
			}
		default:
			t.Fatalf("values for Equate() are not the same type (%T and %T)", v, expectedValue)
		}
	}
}
