package assembler

import "testing"

func TestEvalExprPrecedence(t *testing.T) {
	cases := []struct {
		expr string
		want uint32
	}{
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"1 lsl 4", 16},
		{"0x10 lsr 2", 4},
		{"0b1100 and 0b1010", 0b1000},
		{"0b1100 or 0b0011", 0b1111},
		{"0b1100 xor 0b1010", 0b0110},
		{"not 0", 0xFFFFFFFF},
		{"10 - 3 - 2", 5},
		{"'A'", 65},
	}
	for _, c := range cases {
		got, err := evalExpr(c.expr, nil)
		if err != nil {
			t.Errorf("evalExpr(%q) error: %v", c.expr, err)
			continue
		}
		if got != c.want {
			t.Errorf("evalExpr(%q) = %#x, want %#x", c.expr, got, c.want)
		}
	}
}

func TestEvalExprResolvesSymbol(t *testing.T) {
	symbols := map[string]uint32{"base": 0x1000}
	got, err := evalExpr("base + 4", symbols)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0x1004 {
		t.Errorf("got %#x, want 0x1004", got)
	}
}

func TestEvalExprUndefinedSymbolErrors(t *testing.T) {
	if _, err := evalExpr("missing", nil); err == nil {
		t.Fatalf("expected an error for an undefined symbol")
	}
}

func TestEncodeImmediate8r4RoundTrips(t *testing.T) {
	cases := []uint32{0, 0xFF, 0xFF000000, 0x000000F0, 0x0000FF00}
	for _, v := range cases {
		r4, imm8, ok := encodeImmediate8r4(v)
		if !ok {
			t.Errorf("expected %#x to be encodable", v)
			continue
		}
		got := rotr32FromTest(imm8, r4*2)
		if got != v {
			t.Errorf("round trip for %#x failed: got %#x", v, got)
		}
	}
}

func TestEncodeImmediate8r4RejectsUnencodable(t *testing.T) {
	if _, _, ok := encodeImmediate8r4(0x101); ok {
		t.Errorf("0x101 should not be encodable as a rotated 8-bit immediate")
	}
}

func rotr32FromTest(v, n uint32) uint32 {
	n &= 31
	if n == 0 {
		return v
	}
	return v>>n | v<<(32-n)
}
