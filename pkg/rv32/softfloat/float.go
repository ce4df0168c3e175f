// Package softfloat implements width-generic IEEE-754 binary
// floating-point arithmetic (binary32/binary64/binary128) entirely in
// software so results are identical on every host. It is built on
// math/big.Float: its explicit Prec and RoundingMode give
// single-rounding, arbitrary-precision arithmetic that maps directly
// onto the five RISC-V rounding modes, which no hardware float type
// can do. See DESIGN.md for why this is the one package built on the
// standard library instead of a third-party one.
package softfloat

import (
	"math/big"

	"github.com/bassosimone/rv32core/pkg/rv32/cpu"
)

// Raw is the bit pattern of one FP value at its own width; it reuses
// cpu.F128's two-word slab so callers can pass NaN-unboxed register
// contents directly.
type Raw = cpu.F128

// Class is the IEEE-754 classification of a value, returned as the
// ten mutually exclusive bit positions of the F/D/Q CLASSIFY
// instruction.
const (
	ClassNegInf        = 1 << 0
	ClassNegNormal     = 1 << 1
	ClassNegSubnormal  = 1 << 2
	ClassNegZero       = 1 << 3
	ClassPosZero       = 1 << 4
	ClassPosSubnormal  = 1 << 5
	ClassPosNormal     = 1 << 6
	ClassPosInf        = 1 << 7
	ClassSignalingNaN  = 1 << 8
	ClassQuietNaN      = 1 << 9
)

func expBits(width int) int {
	switch width {
	case 32:
		return 8
	case 64:
		return 11
	default:
		return 15
	}
}

func fracBits(width int) int {
	switch width {
	case 32:
		return 23
	case 64:
		return 52
	default:
		return 112
	}
}

func bias(width int) int {
	return 1<<(uint(expBits(width))-1) - 1
}

func allOnesExp(width int) uint64 {
	return 1<<uint(expBits(width)) - 1
}

// kind classifies a decoded operand for arithmetic dispatch.
type kind int

const (
	kZero kind = iota
	kSubnormal
	kNormal
	kInf
	kQNaN
	kSNaN
)

// decoded is a sign/magnitude decomposition of one FP value. mag is
// the exact magnitude (always >= 0) for kZero/kSubnormal/kNormal; it
// is nil otherwise.
type decoded struct {
	width int
	sign  bool
	kind  kind
	mag   *big.Float // exact value, unsigned
}

func rawToUint(width int, r Raw) *big.Int {
	v := new(big.Int).SetUint64(r.Lo)
	if width > 64 {
		hi := new(big.Int).SetUint64(r.Hi)
		hi.Lsh(hi, 64)
		v.Or(v, hi)
	}
	mask := new(big.Int).Lsh(big.NewInt(1), uint(width))
	mask.Sub(mask, big.NewInt(1))
	return v.And(v, mask)
}

func uintToRaw(width int, v *big.Int) Raw {
	mask64 := new(big.Int).SetUint64(^uint64(0))
	lo := new(big.Int).And(v, mask64)
	var raw Raw
	raw.Lo = lo.Uint64()
	if width > 64 {
		hi := new(big.Int).Rsh(v, 64)
		hi.And(hi, mask64)
		raw.Hi = hi.Uint64()
	}
	return raw
}

func decode(width int, r Raw) decoded {
	bits := rawToUint(width, r)
	fb := uint(fracBits(width))
	eb := uint(expBits(width))
	fracMask := new(big.Int).Lsh(big.NewInt(1), fb)
	fracMask.Sub(fracMask, big.NewInt(1))
	frac := new(big.Int).And(bits, fracMask)
	expField := new(big.Int).Rsh(bits, fb)
	expMask := new(big.Int).Lsh(big.NewInt(1), eb)
	expMask.Sub(expMask, big.NewInt(1))
	expField.And(expField, expMask)
	sign := bits.Bit(int(fb+eb)) == 1

	d := decoded{width: width, sign: sign}
	expU := expField.Uint64()

	switch {
	case expU == allOnesExp(width):
		if frac.Sign() == 0 {
			d.kind = kInf
		} else {
			quiet := frac.Bit(int(fb) - 1) == 1
			if quiet {
				d.kind = kQNaN
			} else {
				d.kind = kSNaN
			}
		}
	case expU == 0:
		if frac.Sign() == 0 {
			d.kind = kZero
		} else {
			d.kind = kSubnormal
			exp2 := 1 - bias(width) - int(fb)
			m := new(big.Float).SetPrec(uint(width) + 64)
			m.SetInt(frac)
			m.SetMantExp(m, exp2)
			d.mag = m
		}
	default:
		d.kind = kNormal
		sig := new(big.Int).Lsh(big.NewInt(1), fb)
		sig.Or(sig, frac)
		exp2 := int(expU) - bias(width) - int(fb)
		m := new(big.Float).SetPrec(uint(width) + 64)
		m.SetInt(sig)
		m.SetMantExp(m, exp2)
		d.mag = m
	}
	return d
}

func bigRM(rm cpu.RoundingMode) big.RoundingMode {
	switch rm {
	case cpu.RTZ:
		return big.ToZero
	case cpu.RDN:
		return big.ToNegativeInf
	case cpu.RUP:
		return big.ToPositiveInf
	case cpu.RMM:
		return big.ToNearestAway
	default:
		return big.ToNearestEven
	}
}

func zeroRaw(width int, sign bool) Raw {
	if !sign {
		return Raw{}
	}
	v := new(big.Int).Lsh(big.NewInt(1), uint(fracBits(width)+expBits(width)))
	return uintToRaw(width, v)
}

func infRaw(width int, sign bool) Raw {
	v := new(big.Int).SetUint64(allOnesExp(width))
	v.Lsh(v, uint(fracBits(width)))
	if sign {
		signBit := new(big.Int).Lsh(big.NewInt(1), uint(fracBits(width)+expBits(width)))
		v.Or(v, signBit)
	}
	return uintToRaw(width, v)
}

// CanonicalQNaN returns the canonical quiet NaN bit pattern at width.
func CanonicalQNaN(width int) Raw {
	switch width {
	case 32:
		return Raw{Lo: uint64(cpu.CanonicalQNaN32)}
	case 64:
		return Raw{Lo: cpu.CanonicalQNaN64}
	default:
		return Raw{Lo: cpu.CanonicalQNaN128Lo, Hi: cpu.CanonicalQNaN128Hi}
	}
}

func maxFiniteRaw(width int, sign bool) Raw {
	v := new(big.Int).SetUint64(allOnesExp(width) - 1)
	v.Lsh(v, uint(fracBits(width)))
	fracMask := new(big.Int).Lsh(big.NewInt(1), uint(fracBits(width)))
	fracMask.Sub(fracMask, big.NewInt(1))
	v.Or(v, fracMask)
	if sign {
		signBit := new(big.Int).Lsh(big.NewInt(1), uint(fracBits(width)+expBits(width)))
		v.Or(v, signBit)
	}
	return uintToRaw(width, v)
}

// roundAndEncode rounds the exact, non-negative magnitude mag to
// width using rounding mode rm and applies sign, producing the final
// bit pattern plus the OF/UF/NX flags the rounding itself produced.
// mag==nil encodes an exact zero.
func roundAndEncode(width int, rm cpu.RoundingMode, sign bool, mag *big.Float) (Raw, cpu.ExceptionFlags) {
	if mag == nil || mag.Sign() == 0 {
		return zeroRaw(width, sign), 0
	}
	fb := fracBits(width)
	minNormalExp := 1 - bias(width)
	maxNormalExp := (1<<uint(expBits(width)) - 2) - bias(width)

	var mant big.Float
	mant.SetPrec(uint(width) + 64)
	e := mag.MantExp(&mant) // mag = mant * 2^e, 0.5<=mant<1
	normExp := e - 1        // unbiased exponent of the leading bit

	if normExp > maxNormalExp {
		return overflowRaw(width, rm, sign)
	}

	effPrec := fb + 1
	if normExp < minNormalExp {
		effPrec = fb + 1 - (minNormalExp - normExp)
		if effPrec < 0 {
			effPrec = 0
		}
	}

	var flags cpu.ExceptionFlags
	var mInt *big.Int
	if effPrec == 0 {
		// Rounds in the gap below the smallest subnormal.
		mInt = big.NewInt(0)
		flags |= cpu.FlagNX | cpu.FlagUF
		switch rm {
		case cpu.RUP:
			if !sign {
				mInt = big.NewInt(1)
			}
		case cpu.RDN:
			if sign {
				mInt = big.NewInt(1)
			}
		case cpu.RMM, cpu.RNE:
			// Only when normExp is one below the smallest subnormal's
			// exponent is the magnitude at least half of it: above half
			// rounds up, an exact half rounds up under RMM and to zero
			// (even) under RNE. Anything smaller rounds to zero.
			if normExp == minNormalExp-fb-1 && (rm == cpu.RMM || mant.Cmp(big.NewFloat(0.5)) != 0) {
				mInt = big.NewInt(1)
			}
		}
	} else {
		z := new(big.Float).SetPrec(uint(effPrec)).SetMode(bigRM(rm))
		z.Set(mag)
		if z.Acc() != big.Exact {
			flags |= cpu.FlagNX
		}
		// Scale so the result's ulp becomes 1: for a subnormal the ulp is
		// fixed at 2^(minNormalExp-fb), not 2^(normExp-fb).
		k := fb - max(normExp, minNormalExp)
		var shifted big.Float
		shifted.SetPrec(uint(width) + 64)
		ze := z.MantExp(&shifted)
		shifted.SetMantExp(&shifted, ze+k)
		mInt, _ = shifted.Int(nil)
		if normExp >= minNormalExp && mInt.BitLen() > fb+1 {
			// Rounding carried into the next binade.
			mInt.Rsh(mInt, 1)
			normExp++
			if normExp > maxNormalExp {
				return overflowRaw(width, rm, sign)
			}
		}
		if normExp < minNormalExp && mInt.Sign() != 0 {
			flags |= cpu.FlagUF
		}
	}

	var bits *big.Int
	if mInt.Sign() == 0 {
		bits = big.NewInt(0)
	} else if normExp >= minNormalExp {
		expField := big.NewInt(int64(normExp + bias(width)))
		fracMask := new(big.Int).Lsh(big.NewInt(1), uint(fb))
		fracMask.Sub(fracMask, big.NewInt(1))
		frac := new(big.Int).And(mInt, fracMask)
		bits = new(big.Int).Lsh(expField, uint(fb))
		bits.Or(bits, frac)
	} else {
		bits = mInt // subnormal: exponent field is 0, frac is mInt directly
	}
	if sign {
		signBit := new(big.Int).Lsh(big.NewInt(1), uint(fb+expBits(width)))
		bits.Or(bits, signBit)
	}
	return uintToRaw(width, bits), flags
}

func overflowRaw(width int, rm cpu.RoundingMode, sign bool) (Raw, cpu.ExceptionFlags) {
	flags := cpu.FlagOF | cpu.FlagNX
	switch rm {
	case cpu.RTZ:
		return maxFiniteRaw(width, sign), flags
	case cpu.RDN:
		if !sign {
			return maxFiniteRaw(width, sign), flags
		}
		return infRaw(width, sign), flags
	case cpu.RUP:
		if sign {
			return maxFiniteRaw(width, sign), flags
		}
		return infRaw(width, sign), flags
	default: // RNE, RMM
		return infRaw(width, sign), flags
	}
}

// IsNaN reports whether bits at width is any kind of NaN.
func IsNaN(width int, r Raw) bool {
	d := decode(width, r)
	return d.kind == kQNaN || d.kind == kSNaN
}

// IsSignalingNaN reports whether bits at width is a signaling NaN.
func IsSignalingNaN(width int, r Raw) bool {
	return decode(width, r).kind == kSNaN
}

func nanResult(width int, operands ...decoded) (Raw, cpu.ExceptionFlags) {
	var flags cpu.ExceptionFlags
	for _, d := range operands {
		if d.kind == kSNaN {
			flags |= cpu.FlagNV
		}
	}
	return CanonicalQNaN(width), flags
}
