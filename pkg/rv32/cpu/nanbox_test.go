package cpu

import "testing"

func TestBoxUnboxF32RoundTrip(t *testing.T) {
	v := uint32(0x3f800000) // 1.0f
	for _, w := range []FPWidth{FP32, FP64, FP128} {
		boxed := BoxF32(v, w)
		got, ok := UnboxF32(boxed, w)
		if !ok || got != v {
			t.Fatalf("width %d: got %#x ok=%v, want %#x", w, got, ok, v)
		}
	}
}

func TestUnboxF32DetectsMisboxedValue(t *testing.T) {
	// A 64-bit register whose upper 32 bits aren't all ones is not a
	// validly NaN-boxed 32-bit value.
	stored := F128{Lo: 0x0000000012345678}
	got, ok := UnboxF32(stored, FP64)
	if ok {
		t.Fatalf("expected box check to fail")
	}
	if got != CanonicalQNaN32 {
		t.Fatalf("got %#x, want canonical QNaN %#x", got, CanonicalQNaN32)
	}
}

func TestBoxUnboxF64RoundTrip(t *testing.T) {
	v := uint64(0x3ff0000000000000) // 1.0
	boxed := BoxF64(v, FP128)
	got, ok := UnboxF64(boxed, FP128)
	if !ok || got != v {
		t.Fatalf("got %#x ok=%v, want %#x", got, ok, v)
	}
}

func TestUnboxF64DetectsMisboxedValue(t *testing.T) {
	stored := F128{Lo: 0x3ff0000000000000, Hi: 0}
	got, ok := UnboxF64(stored, FP128)
	if ok {
		t.Fatalf("expected box check to fail")
	}
	if got != CanonicalQNaN64 {
		t.Fatalf("got %#x, want canonical QNaN %#x", got, CanonicalQNaN64)
	}
}

func TestBoxF128IsIdentity(t *testing.T) {
	lo, hi := BoxF128(0x1122334455667788, 0x99aabbccddeeff00).Lo, uint64(0)
	hi = BoxF128(0x1122334455667788, 0x99aabbccddeeff00).Hi
	if lo != 0x1122334455667788 || hi != 0x99aabbccddeeff00 {
		t.Fatalf("got lo=%#x hi=%#x", lo, hi)
	}
}
