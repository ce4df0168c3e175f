package softfloat

import (
	"math"
	"testing"

	"github.com/bassosimone/rv32core/pkg/rv32/cpu"
)

func raw32(f float32) Raw { return Raw{Lo: uint64(math.Float32bits(f))} }
func raw64(f float64) Raw { return Raw{Lo: math.Float64bits(f)} }
func toF32(r Raw) float32 { return math.Float32frombits(uint32(r.Lo)) }
func toF64(r Raw) float64 { return math.Float64frombits(r.Lo) }

func TestAddExact(t *testing.T) {
	got, flags := Add(32, cpu.RNE, raw32(1.0), raw32(2.0))
	if toF32(got) != 3.0 || flags != 0 {
		t.Fatalf("got %v flags=%v, want 3.0/0", toF32(got), flags)
	}
}

func TestAddSetsInexact(t *testing.T) {
	// 1.0 has a ulp of 2^-23; adding a quarter-ulp forces rounding.
	got, flags := Add(32, cpu.RNE, raw32(1.0), raw32(float32(math.Pow(2, -25))))
	if toF32(got) != 1.0 {
		t.Fatalf("got %v, want 1.0", toF32(got))
	}
	if flags&cpu.FlagNX == 0 {
		t.Fatalf("expected NX flag, got %v", flags)
	}
}

func TestAddOppositeSignedInfinitiesIsInvalid(t *testing.T) {
	posInf := raw32(float32(math.Inf(1)))
	negInf := raw32(float32(math.Inf(-1)))
	got, flags := Add(32, cpu.RNE, posInf, negInf)
	if !IsNaN(32, got) || flags&cpu.FlagNV == 0 {
		t.Fatalf("got %+v flags=%v, want NaN/NV", got, flags)
	}
}

func TestSubComputesDifference(t *testing.T) {
	got, _ := Sub(32, cpu.RNE, raw32(5.0), raw32(2.0))
	if toF32(got) != 3.0 {
		t.Fatalf("got %v, want 3.0", toF32(got))
	}
}

func TestMulZeroTimesInfIsInvalid(t *testing.T) {
	got, flags := Mul(32, cpu.RNE, raw32(0.0), raw32(float32(math.Inf(1))))
	if !IsNaN(32, got) || flags&cpu.FlagNV == 0 {
		t.Fatalf("got %+v flags=%v", got, flags)
	}
}

func TestDivByZeroProducesInfAndDZ(t *testing.T) {
	got, flags := Div(32, cpu.RNE, raw32(1.0), raw32(0.0))
	if !math.IsInf(float64(toF32(got)), 1) {
		t.Fatalf("got %v, want +Inf", toF32(got))
	}
	if flags != cpu.FlagDZ {
		t.Fatalf("flags = %v, want DZ only", flags)
	}
}

func TestDivZeroByZeroIsInvalid(t *testing.T) {
	got, flags := Div(32, cpu.RNE, raw32(0.0), raw32(0.0))
	if !IsNaN(32, got) || flags&cpu.FlagNV == 0 {
		t.Fatalf("got %+v flags=%v", got, flags)
	}
}

func TestSqrtOfFour(t *testing.T) {
	got, flags := Sqrt(64, cpu.RNE, raw64(4.0), false)
	if toF64(got) != 2.0 || flags != 0 {
		t.Fatalf("got %v flags=%v", toF64(got), flags)
	}
}

func TestSqrtOfNegativeIsInvalid(t *testing.T) {
	got, flags := Sqrt(32, cpu.RNE, raw32(-4.0), false)
	if !IsNaN(32, got) || flags&cpu.FlagNV == 0 {
		t.Fatalf("got %+v flags=%v", got, flags)
	}
}

func TestFmaSingleRounding(t *testing.T) {
	got, flags := Fma(32, cpu.RNE, raw32(2.0), raw32(3.0), raw32(1.0), false, false)
	if toF32(got) != 7.0 || flags != 0 {
		t.Fatalf("got %v flags=%v, want 7.0/0", toF32(got), flags)
	}
}

func TestFmaMsubNegatesC(t *testing.T) {
	// FMSUB: (a*b)-c == (2*3)-1 == 5
	got, _ := Fma(32, cpu.RNE, raw32(2.0), raw32(3.0), raw32(1.0), false, true)
	if toF32(got) != 5.0 {
		t.Fatalf("got %v, want 5.0", toF32(got))
	}
}

func TestFmaNmaddNegatesProductAndC(t *testing.T) {
	// FNMADD: -(a*b)-c == -(2*3)-1 == -7
	got, _ := Fma(32, cpu.RNE, raw32(2.0), raw32(3.0), raw32(1.0), true, true)
	if toF32(got) != -7.0 {
		t.Fatalf("got %v, want -7.0", toF32(got))
	}
}

func TestMinMaxPreferNumberOverNaN(t *testing.T) {
	nan := raw32(float32(math.NaN()))
	one := raw32(1.0)
	if got, _ := Min(32, nan, one); toF32(got) != 1.0 {
		t.Fatalf("Min: got %v, want 1.0", toF32(got))
	}
	if got, _ := Max(32, one, nan); toF32(got) != 1.0 {
		t.Fatalf("Max: got %v, want 1.0", toF32(got))
	}
}

func TestMinMaxBothNaNReturnsCanonical(t *testing.T) {
	nan := raw32(float32(math.NaN()))
	got, _ := Min(32, nan, nan)
	if got != CanonicalQNaN(32) {
		t.Fatalf("got %+v, want canonical QNaN", got)
	}
}

func TestMinDistinguishesSignedZero(t *testing.T) {
	posZero := raw32(0.0)
	negZero := raw32(float32(math.Copysign(0, -1)))
	got, _ := Min(32, posZero, negZero)
	if got != negZero {
		t.Fatalf("got %+v, want -0", got)
	}
}

func TestCompareEQLTLE(t *testing.T) {
	a, b := raw32(1.0), raw32(2.0)
	if eq, _ := Compare(32, 'E', a, b); eq {
		t.Fatalf("1.0 == 2.0 should be false")
	}
	if lt, _ := Compare(32, 'L', a, b); !lt {
		t.Fatalf("1.0 < 2.0 should be true")
	}
	if le, _ := Compare(32, 'l', a, a); !le {
		t.Fatalf("1.0 <= 1.0 should be true")
	}
}

func TestCompareSignalingNaNAlwaysInvalid(t *testing.T) {
	snan := Raw{Lo: 0x7f800001} // exponent all-ones, quiet bit clear: signaling
	one := raw32(1.0)
	if _, flags := Compare(32, 'E', snan, one); flags&cpu.FlagNV == 0 {
		t.Fatalf("expected NV even for FEQ with an sNaN operand")
	}
}

func TestCompareQuietNaNOnlyInvalidForOrdering(t *testing.T) {
	qnan := CanonicalQNaN(32)
	one := raw32(1.0)
	if _, flags := Compare(32, 'E', qnan, one); flags&cpu.FlagNV != 0 {
		t.Fatalf("FEQ with a quiet NaN must not set NV")
	}
	if _, flags := Compare(32, 'L', qnan, one); flags&cpu.FlagNV == 0 {
		t.Fatalf("FLT with a quiet NaN must set NV")
	}
}

func TestClassifyCoversAllTenClasses(t *testing.T) {
	cases := []struct {
		v    Raw
		want uint16
	}{
		{raw32(float32(math.Inf(-1))), ClassNegInf},
		{raw32(-1.0), ClassNegNormal},
		{raw32(float32(math.Copysign(0, -1))), ClassNegZero},
		{raw32(0.0), ClassPosZero},
		{raw32(1.0), ClassPosNormal},
		{raw32(float32(math.Inf(1))), ClassPosInf},
		{CanonicalQNaN(32), ClassQuietNaN},
		{Raw{Lo: 0x7f800001}, ClassSignalingNaN},
	}
	for _, c := range cases {
		if got := Classify(32, c.v); got != c.want {
			t.Fatalf("Classify(%+v) = %#x, want %#x", c.v, got, c.want)
		}
	}
}

func TestClassifySubnormal(t *testing.T) {
	// Smallest positive subnormal float32: bits == 1.
	if got := Classify(32, Raw{Lo: 1}); got != ClassPosSubnormal {
		t.Fatalf("got %#x, want ClassPosSubnormal", got)
	}
}

func TestSignInjectCopiesOthersSign(t *testing.T) {
	pos, neg := raw32(3.0), raw32(float32(math.Copysign(5, -1)))
	if got := SignInject(32, 'J', pos, neg); toF32(got) != -3.0 {
		t.Fatalf("FSGNJ: got %v, want -3.0", toF32(got))
	}
	if got := SignInject(32, 'N', pos, neg); toF32(got) != 3.0 {
		t.Fatalf("FSGNJN: got %v, want 3.0", toF32(got))
	}
}

func TestSignInjectXorMatchingSignsGivesPositive(t *testing.T) {
	negA, negB := raw32(-3.0), raw32(-5.0)
	if got := SignInject(32, 'X', negA, negB); toF32(got) != 3.0 {
		t.Fatalf("FSGNJX: got %v, want 3.0", toF32(got))
	}
}
