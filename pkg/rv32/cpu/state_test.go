package cpu

import "testing"

func TestX0AlwaysReadsZero(t *testing.T) {
	s := New(Config{})
	s.SetX(0, 0xdeadbeef)
	if got := s.X(0); got != 0 {
		t.Fatalf("x0 = %#x, want 0", got)
	}
}

func TestSetXThenX(t *testing.T) {
	s := New(Config{})
	s.SetX(5, 123)
	if got := s.X(5); got != 123 {
		t.Fatalf("x5 = %d, want 123", got)
	}
}

func TestFCSRRoundTrip(t *testing.T) {
	s := New(Config{FPWidth: FP64})
	s.SetFCSR(0b100_11111) // frm=100 (RMM), all five flags set
	if s.RM() != RMM {
		t.Fatalf("rm = %v, want RMM", s.RM())
	}
	if s.Flags() != 0x1f {
		t.Fatalf("flags = %#x, want 0x1f", s.Flags())
	}
	if s.FCSR() != 0b100_11111 {
		t.Fatalf("fcsr = %#08b, want %#08b", s.FCSR(), 0b100_11111)
	}
}

func TestAccrueFlagsOrsIn(t *testing.T) {
	s := New(Config{FPWidth: FP32})
	s.SetFlags(FlagNX)
	s.AccrueFlags(FlagOF)
	if s.Flags() != FlagNX|FlagOF {
		t.Fatalf("flags = %#x, want %#x", s.Flags(), FlagNX|FlagOF)
	}
}

func TestResolveRMDynamic(t *testing.T) {
	s := New(Config{FPWidth: FP32})
	s.SetRM(RTZ)
	rm, ok := s.ResolveRM(RMDyn)
	if !ok || rm != RTZ {
		t.Fatalf("got rm=%v ok=%v, want RTZ/true", rm, ok)
	}
}

func TestResolveRMRejectsReserved(t *testing.T) {
	s := New(Config{FPWidth: FP32})
	if _, ok := s.ResolveRM(rmReserved5); ok {
		t.Fatalf("expected reserved rounding mode to be rejected")
	}
}

func TestFRawRoundTrip(t *testing.T) {
	s := New(Config{FPWidth: FP128})
	v := F128{Lo: 1, Hi: 2}
	s.SetFRaw(3, v)
	if got := s.FRaw(3); got != v {
		t.Fatalf("got %+v, want %+v", got, v)
	}
}
