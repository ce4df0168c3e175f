package softfloat

import (
	"math/big"

	"github.com/bassosimone/rv32core/pkg/rv32/cpu"
)

const (
	int32Min = -(1 << 31)
	int32Max = 1<<31 - 1
)

// ToInt32 implements FCVT.W.{S,D,Q}: converts the FP value to a
// signed 32-bit integer, rounding per rm and clamping out-of-range
// results to INT32_MIN/INT32_MAX with NV set (NaN converts to
// INT32_MAX with NV set, per the RISC-V F chapter's invalid-conversion
// rule).
func ToInt32(width int, rm cpu.RoundingMode, a Raw) (int32, cpu.ExceptionFlags) {
	d := decode(width, a)
	if d.kind == kQNaN || d.kind == kSNaN {
		return int32Max, cpu.FlagNV
	}
	if d.kind == kInf {
		if d.sign {
			return int32Min, cpu.FlagNV
		}
		return int32Max, cpu.FlagNV
	}
	if d.kind == kZero {
		return 0, 0
	}
	rounded, acc := roundToIntBig(d, rm)
	if rounded.Cmp(big.NewInt(int32Min)) < 0 {
		return int32Min, cpu.FlagNV
	}
	if rounded.Cmp(big.NewInt(int32Max)) > 0 {
		return int32Max, cpu.FlagNV
	}
	var flags cpu.ExceptionFlags
	if !acc {
		flags |= cpu.FlagNX
	}
	return int32(rounded.Int64()), flags
}

// ToUint32 implements FCVT.WU.{S,D,Q}.
func ToUint32(width int, rm cpu.RoundingMode, a Raw) (uint32, cpu.ExceptionFlags) {
	d := decode(width, a)
	if d.kind == kQNaN || d.kind == kSNaN {
		return 0xffffffff, cpu.FlagNV
	}
	if d.kind == kInf {
		if d.sign {
			return 0, cpu.FlagNV
		}
		return 0xffffffff, cpu.FlagNV
	}
	if d.kind == kZero {
		return 0, 0
	}
	if d.sign {
		// Negative non-zero values are out of range for an unsigned result,
		// except for values that round to exactly zero.
		rounded, _ := roundToIntBig(d, rm)
		if rounded.Sign() == 0 {
			return 0, cpu.FlagNX
		}
		return 0, cpu.FlagNV
	}
	rounded, acc := roundToIntBig(d, rm)
	if rounded.Cmp(big.NewInt(0xffffffff)) > 0 {
		return 0xffffffff, cpu.FlagNV
	}
	var flags cpu.ExceptionFlags
	if !acc {
		flags |= cpu.FlagNX
	}
	return uint32(rounded.Uint64()), flags
}

// roundToIntBig rounds |d| to an integer per rm, returning a signed
// big.Int (sign applied) and whether the rounding was exact.
func roundToIntBig(d decoded, rm cpu.RoundingMode) (*big.Int, bool) {
	mag := magOrZero(d)
	intPart, frac := new(big.Float), new(big.Float)
	i, _ := mag.Int(nil)
	intPart.SetInt(i)
	frac.Sub(mag, intPart)
	exact := frac.Sign() == 0
	if !exact {
		half := new(big.Float).SetFloat64(0.5)
		cmp := frac.Cmp(half)
		switch rm {
		case cpu.RTZ:
			// truncate: i already holds it
		case cpu.RDN:
			if !d.sign {
				// toward -inf for positive means truncate (already floor)
			} else {
				i.Add(i, big.NewInt(1))
			}
		case cpu.RUP:
			if !d.sign {
				i.Add(i, big.NewInt(1))
			}
		case cpu.RMM:
			if cmp >= 0 {
				i.Add(i, big.NewInt(1))
			}
		default: // RNE
			if cmp > 0 {
				i.Add(i, big.NewInt(1))
			} else if cmp == 0 {
				if i.Bit(0) == 1 {
					i.Add(i, big.NewInt(1))
				}
			}
		}
	}
	if d.sign {
		i.Neg(i)
	}
	return i, exact
}

// FromInt32 implements FCVT.{S,D,Q}.W: signed int32 -> FP width.
func FromInt32(width int, rm cpu.RoundingMode, v int32) (Raw, cpu.ExceptionFlags) {
	sign := v < 0
	mag := new(big.Float).SetPrec(96)
	if sign {
		mag.SetUint64(uint64(-int64(v)))
	} else {
		mag.SetInt64(int64(v))
	}
	if mag.Sign() == 0 {
		return zeroRaw(width, false), 0
	}
	return roundAndEncode(width, rm, sign, mag)
}

// FromUint32 implements FCVT.{S,D,Q}.WU: unsigned int32 -> FP width.
func FromUint32(width int, rm cpu.RoundingMode, v uint32) (Raw, cpu.ExceptionFlags) {
	mag := new(big.Float).SetPrec(96).SetUint64(uint64(v))
	if mag.Sign() == 0 {
		return zeroRaw(width, false), 0
	}
	return roundAndEncode(width, rm, false, mag)
}

// ConvertWidth implements FCVT.{S,D,Q}.{S,D,Q}: a value at srcWidth
// converted (widened exactly, or narrowed with rounding) to dstWidth.
func ConvertWidth(dstWidth, srcWidth int, rm cpu.RoundingMode, a Raw) (Raw, cpu.ExceptionFlags) {
	d := decode(srcWidth, a)
	switch d.kind {
	case kQNaN:
		return CanonicalQNaN(dstWidth), 0
	case kSNaN:
		return CanonicalQNaN(dstWidth), cpu.FlagNV
	case kInf:
		return infRaw(dstWidth, d.sign), 0
	case kZero:
		return zeroRaw(dstWidth, d.sign), 0
	default:
		return roundAndEncode(dstWidth, rm, d.sign, d.mag)
	}
}
