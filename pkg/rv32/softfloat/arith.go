package softfloat

import (
	"math/big"

	"github.com/bassosimone/rv32core/pkg/rv32/cpu"
)

// Add computes a+b with the given rounding mode.
func Add(width int, rm cpu.RoundingMode, a, b Raw) (Raw, cpu.ExceptionFlags) {
	da, db := decode(width, a), decode(width, b)
	if da.kind == kQNaN || da.kind == kSNaN || db.kind == kQNaN || db.kind == kSNaN {
		return nanResult(width, da, db)
	}
	if da.kind == kInf && db.kind == kInf {
		if da.sign != db.sign {
			return nanResult(width, decoded{kind: kSNaN})
		}
		return infRaw(width, da.sign), 0
	}
	if da.kind == kInf {
		return infRaw(width, da.sign), 0
	}
	if db.kind == kInf {
		return infRaw(width, db.sign), 0
	}
	av, bv := magOrZero(da), magOrZero(db)
	signedA := signedValue(av, da.sign)
	signedB := signedValue(bv, db.sign)
	sum := new(big.Float).SetPrec(uint(width)*2 + 128)
	sum.Add(signedA, signedB)
	if sum.Sign() == 0 {
		// x + (-x): +0 except when rounding toward -inf.
		sign := rm == cpu.RDN
		return zeroRaw(width, sign), 0
	}
	sign := sum.Sign() < 0
	mag := new(big.Float).Abs(sum)
	return roundAndEncode(width, rm, sign, mag)
}

// Sub computes a-b.
func Sub(width int, rm cpu.RoundingMode, a, b Raw) (Raw, cpu.ExceptionFlags) {
	return Add(width, rm, a, negate(width, b))
}

// Mul computes a*b.
func Mul(width int, rm cpu.RoundingMode, a, b Raw) (Raw, cpu.ExceptionFlags) {
	da, db := decode(width, a), decode(width, b)
	if da.kind == kQNaN || da.kind == kSNaN || db.kind == kQNaN || db.kind == kSNaN {
		return nanResult(width, da, db)
	}
	resultSign := da.sign != db.sign
	if (da.kind == kInf && db.kind == kZero) || (da.kind == kZero && db.kind == kInf) {
		return nanResult(width, decoded{kind: kSNaN})
	}
	if da.kind == kInf || db.kind == kInf {
		return infRaw(width, resultSign), 0
	}
	if da.kind == kZero || db.kind == kZero {
		return zeroRaw(width, resultSign), 0
	}
	prod := new(big.Float).SetPrec(uint(width)*2 + 128)
	prod.Mul(da.mag, db.mag)
	return roundAndEncode(width, rm, resultSign, prod)
}

// Div computes a/b.
func Div(width int, rm cpu.RoundingMode, a, b Raw) (Raw, cpu.ExceptionFlags) {
	da, db := decode(width, a), decode(width, b)
	if da.kind == kQNaN || da.kind == kSNaN || db.kind == kQNaN || db.kind == kSNaN {
		return nanResult(width, da, db)
	}
	resultSign := da.sign != db.sign
	if da.kind == kInf && db.kind == kInf {
		return nanResult(width, decoded{kind: kSNaN})
	}
	if da.kind == kZero && db.kind == kZero {
		return nanResult(width, decoded{kind: kSNaN})
	}
	if db.kind == kZero {
		if da.kind == kZero {
			return nanResult(width, decoded{kind: kSNaN})
		}
		return infRaw(width, resultSign), cpu.FlagDZ
	}
	if da.kind == kInf {
		return infRaw(width, resultSign), 0
	}
	if da.kind == kZero || db.kind == kInf {
		return zeroRaw(width, resultSign), 0
	}
	q := new(big.Float).SetPrec(uint(width)*2 + 128)
	q.Quo(da.mag, db.mag)
	return roundAndEncode(width, rm, resultSign, q)
}

// Sqrt computes sqrt(a). mode selects fast (up to 2 ULP) vs accurate
// (correctly rounded); the caller has already consulted
// Environment.SqrtMode and rejected SqrtIllegal as an illegal
// instruction before calling this.
func Sqrt(width int, rm cpu.RoundingMode, a Raw, fast bool) (Raw, cpu.ExceptionFlags) {
	da := decode(width, a)
	if da.kind == kQNaN || da.kind == kSNaN {
		return nanResult(width, da)
	}
	if da.sign && da.kind != kZero {
		return nanResult(width, decoded{kind: kSNaN})
	}
	if da.kind == kZero {
		return zeroRaw(width, da.sign), 0
	}
	if da.kind == kInf {
		return infRaw(width, false), 0
	}
	prec := uint(width)*2 + 128
	if fast {
		prec = uint(width) + 16 // deliberately coarser; may be off by up to ~2 ULP
	}
	root := new(big.Float).SetPrec(prec)
	root.Sqrt(da.mag)
	return roundAndEncode(width, rm, false, root)
}

// Fma computes (a*b)+c with a single rounding. The mulNeg/addNeg
// flags implement FMSUB/FNMADD/FNMSUB by negating a and c
// respectively before the fused computation.
func Fma(width int, rm cpu.RoundingMode, a, b, c Raw, mulNeg, addNeg bool) (Raw, cpu.ExceptionFlags) {
	if mulNeg {
		a = negate(width, a)
	}
	if addNeg {
		c = negate(width, c)
	}
	da, db, dc := decode(width, a), decode(width, b), decode(width, c)
	if da.kind == kQNaN || da.kind == kSNaN || db.kind == kQNaN || db.kind == kSNaN ||
		dc.kind == kQNaN || dc.kind == kSNaN {
		return nanResult(width, da, db, dc)
	}
	mulSign := da.sign != db.sign
	if (da.kind == kInf && db.kind == kZero) || (da.kind == kZero && db.kind == kInf) {
		return nanResult(width, decoded{kind: kSNaN})
	}
	mulIsInf := da.kind == kInf || db.kind == kInf
	mulIsZero := da.kind == kZero || db.kind == kZero
	if mulIsInf && dc.kind == kInf && mulSign != dc.sign {
		return nanResult(width, decoded{kind: kSNaN})
	}
	if mulIsInf {
		return infRaw(width, mulSign), 0
	}
	if dc.kind == kInf {
		return infRaw(width, dc.sign), 0
	}
	var product *big.Float
	if mulIsZero {
		product = new(big.Float).SetPrec(uint(width)*2 + 128)
	} else {
		product = new(big.Float).SetPrec(uint(width)*2 + 128)
		product.Mul(da.mag, db.mag)
		if mulSign {
			product.Neg(product)
		}
	}
	cv := signedValue(magOrZero(dc), dc.sign)
	sum := new(big.Float).SetPrec(uint(width)*2 + 256)
	sum.Add(product, cv)
	if sum.Sign() == 0 {
		sign := rm == cpu.RDN
		return zeroRaw(width, sign), 0
	}
	sign := sum.Sign() < 0
	mag := new(big.Float).Abs(sum)
	return roundAndEncode(width, rm, sign, mag)
}

// Min returns the IEEE-754-2019 minimum of a and b.
func Min(width int, a, b Raw) (Raw, cpu.ExceptionFlags) {
	return minMax(width, a, b, true)
}

// Max returns the IEEE-754-2019 maximum of a and b.
func Max(width int, a, b Raw) (Raw, cpu.ExceptionFlags) {
	return minMax(width, a, b, false)
}

func minMax(width int, a, b Raw, wantMin bool) (Raw, cpu.ExceptionFlags) {
	da, db := decode(width, a), decode(width, b)
	var flags cpu.ExceptionFlags
	if da.kind == kSNaN || db.kind == kSNaN {
		flags |= cpu.FlagNV
	}
	aIsNaN := da.kind == kQNaN || da.kind == kSNaN
	bIsNaN := db.kind == kQNaN || db.kind == kSNaN
	switch {
	case aIsNaN && bIsNaN:
		return CanonicalQNaN(width), flags
	case aIsNaN:
		return b, flags
	case bIsNaN:
		return a, flags
	}
	less := compareLess(da, db)
	if wantMin {
		if less {
			return a, flags
		}
		return b, flags
	}
	if less {
		return b, flags
	}
	return a, flags
}

// compareLess reports a<b treating -0<+0, for non-NaN decoded values.
func compareLess(da, db decoded) bool {
	av, bv := signedValue(magOrZero(da), da.sign), signedValue(magOrZero(db), db.sign)
	if da.kind == kInf {
		av = infBig(da.sign)
	}
	if db.kind == kInf {
		bv = infBig(db.sign)
	}
	if da.kind == kZero && db.kind == kZero {
		return da.sign && !db.sign
	}
	return av.Cmp(bv) < 0
}

func infBig(sign bool) *big.Float {
	f := new(big.Float).SetInf(sign)
	return f
}

// Compare implements FEQ/FLT/FLE. op selects which. LT/LE signal (set
// NV) on any NaN operand; EQ signals only on a signaling NaN.
func Compare(width int, op byte, a, b Raw) (bool, cpu.ExceptionFlags) {
	da, db := decode(width, a), decode(width, b)
	aIsNaN := da.kind == kQNaN || da.kind == kSNaN
	bIsNaN := db.kind == kQNaN || db.kind == kSNaN
	var flags cpu.ExceptionFlags
	if da.kind == kSNaN || db.kind == kSNaN {
		flags |= cpu.FlagNV
	} else if op != 'E' && (aIsNaN || bIsNaN) {
		flags |= cpu.FlagNV
	}
	if aIsNaN || bIsNaN {
		return false, flags
	}
	switch op {
	case 'E':
		eq := !compareLess(da, db) && !compareLess(db, da)
		return eq, flags
	case 'L':
		return compareLess(da, db), flags
	default: // 'l' == LE
		return !compareLess(db, da), flags
	}
}

// Classify implements the CLASSIFY instruction.
func Classify(width int, a Raw) uint16 {
	d := decode(width, a)
	switch d.kind {
	case kQNaN:
		return ClassQuietNaN
	case kSNaN:
		return ClassSignalingNaN
	case kInf:
		if d.sign {
			return ClassNegInf
		}
		return ClassPosInf
	case kZero:
		if d.sign {
			return ClassNegZero
		}
		return ClassPosZero
	case kSubnormal:
		if d.sign {
			return ClassNegSubnormal
		}
		return ClassPosSubnormal
	default:
		if d.sign {
			return ClassNegNormal
		}
		return ClassPosNormal
	}
}

// SignInject implements SGNJ/SGNJN/SGNJX. op is 'J', 'N' or 'X'.
func SignInject(width int, op byte, a, b Raw) Raw {
	bitsA := rawToUint(width, a)
	signBitPos := uint(fracBits(width) + expBits(width))
	signBit := new(big.Int).Lsh(big.NewInt(1), signBitPos)
	rest := new(big.Int).AndNot(bitsA, signBit)
	bBitsHasSign := rawToUint(width, b).Bit(int(signBitPos)) == 1
	var wantSign bool
	switch op {
	case 'J':
		wantSign = bBitsHasSign
	case 'N':
		wantSign = !bBitsHasSign
	default: // 'X'
		aHasSign := bitsA.Bit(int(signBitPos)) == 1
		wantSign = aHasSign != bBitsHasSign
	}
	if wantSign {
		rest.Or(rest, signBit)
	}
	return uintToRaw(width, rest)
}

func negate(width int, a Raw) Raw {
	bitsA := rawToUint(width, a)
	signBit := new(big.Int).Lsh(big.NewInt(1), uint(fracBits(width)+expBits(width)))
	return uintToRaw(width, new(big.Int).Xor(bitsA, signBit))
}

func magOrZero(d decoded) *big.Float {
	if d.mag != nil {
		return d.mag
	}
	return new(big.Float)
}

func signedValue(mag *big.Float, sign bool) *big.Float {
	v := new(big.Float).SetPrec(mag.Prec() + 8).Set(mag)
	if sign {
		v.Neg(v)
	}
	return v
}
