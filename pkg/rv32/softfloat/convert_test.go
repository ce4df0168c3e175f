package softfloat

import (
	"math"
	"testing"

	"github.com/bassosimone/rv32core/pkg/rv32/cpu"
)

func TestToInt32Exact(t *testing.T) {
	got, flags := ToInt32(32, cpu.RNE, raw32(42.0))
	if got != 42 || flags != 0 {
		t.Fatalf("got %d flags=%v, want 42/0", got, flags)
	}
}

func TestToInt32RoundsToNearestEven(t *testing.T) {
	got, flags := ToInt32(32, cpu.RNE, raw32(2.5))
	if got != 2 || flags&cpu.FlagNX == 0 {
		t.Fatalf("got %d flags=%v, want 2/NX", got, flags)
	}
	got, _ = ToInt32(32, cpu.RNE, raw32(3.5))
	if got != 4 {
		t.Fatalf("got %d, want 4 (ties to even)", got)
	}
}

func TestToInt32NaNSaturatesToMaxWithNV(t *testing.T) {
	got, flags := ToInt32(32, cpu.RNE, raw32(float32(math.NaN())))
	if got != int32Max || flags != cpu.FlagNV {
		t.Fatalf("got %d flags=%v, want INT32_MAX/NV", got, flags)
	}
}

func TestToInt32OverflowSaturates(t *testing.T) {
	got, flags := ToInt32(32, cpu.RNE, raw32(1e30))
	if got != int32Max || flags&cpu.FlagNV == 0 {
		t.Fatalf("got %d flags=%v, want INT32_MAX/NV", got, flags)
	}
	got, flags = ToInt32(32, cpu.RNE, raw32(-1e30))
	if got != int32Min || flags&cpu.FlagNV == 0 {
		t.Fatalf("got %d flags=%v, want INT32_MIN/NV", got, flags)
	}
}

func TestToUint32NegativeIsInvalid(t *testing.T) {
	got, flags := ToUint32(32, cpu.RNE, raw32(-1.0))
	if got != 0 || flags != cpu.FlagNV {
		t.Fatalf("got %d flags=%v, want 0/NV", got, flags)
	}
}

func TestToUint32SmallNegativeRoundsToZero(t *testing.T) {
	got, flags := ToUint32(32, cpu.RTZ, raw32(-0.4))
	if got != 0 || flags != cpu.FlagNX {
		t.Fatalf("got %d flags=%v, want 0/NX", got, flags)
	}
}

func TestFromInt32RoundTrip(t *testing.T) {
	got, flags := FromInt32(32, cpu.RNE, -123)
	if toF32(got) != -123.0 || flags != 0 {
		t.Fatalf("got %v flags=%v, want -123/0", toF32(got), flags)
	}
}

func TestFromUint32LargeValueRounds(t *testing.T) {
	// 2^24+1 isn't exactly representable in a 24-bit float32 mantissa.
	got, flags := FromUint32(32, cpu.RNE, (1<<24)+1)
	if flags&cpu.FlagNX == 0 {
		t.Fatalf("expected NX, got flags=%v", flags)
	}
	if toF32(got) != float32(1<<24) && toF32(got) != float32(1<<24)+2 {
		t.Fatalf("got %v, want rounding to an even neighbor of 2^24", toF32(got))
	}
}

func TestConvertWidthWidenIsExact(t *testing.T) {
	got, flags := ConvertWidth(64, 32, cpu.RNE, raw32(1.5))
	if toF64(got) != 1.5 || flags != 0 {
		t.Fatalf("got %v flags=%v, want 1.5/0", toF64(got), flags)
	}
}

func TestConvertWidthNarrowSignalingNaN(t *testing.T) {
	snan := Raw{Hi: 0, Lo: 0x7ff0000000000001} // float64 signaling NaN
	got, flags := ConvertWidth(32, 64, cpu.RNE, snan)
	if got != CanonicalQNaN(32) || flags != cpu.FlagNV {
		t.Fatalf("got %+v flags=%v, want canonical QNaN/NV", got, flags)
	}
}

func TestConvertWidthPreservesInfinity(t *testing.T) {
	got, flags := ConvertWidth(32, 64, cpu.RNE, raw64(math.Inf(-1)))
	if !math.IsInf(float64(toF32(got)), -1) || flags != 0 {
		t.Fatalf("got %v flags=%v, want -Inf/0", toF32(got), flags)
	}
}
