package cpu

// NaN boxing: a value of width w stored in a
// register file of width W > w has its upper W-w bits set to all
// ones. A read that expects width w but finds the upper bits are not
// all ones yields the canonical quiet NaN of width w instead of the
// raw (mis-boxed) bits.

// CanonicalQNaN32 is 0x7fc00000, the canonical quiet NaN for binary32.
const CanonicalQNaN32 uint32 = 0x7fc00000

// CanonicalQNaN64 is the canonical quiet NaN for binary64.
const CanonicalQNaN64 uint64 = 0x7ff8000000000000

// CanonicalQNaN128Hi/Lo together form the canonical quiet NaN for
// binary128: sign 0, exponent all ones (15 bits), quiet bit set,
// remaining fraction bits zero.
const (
	CanonicalQNaN128Hi uint64 = 0x7fff800000000000
	CanonicalQNaN128Lo uint64 = 0
)

// BoxF32 NaN-boxes a 32-bit value into an F128 slab sized for the
// given register width W (32, 64 or 128).
func BoxF32(v uint32, regWidth FPWidth) F128 {
	switch regWidth {
	case FP32:
		return F128{Lo: uint64(v)}
	case FP64:
		return F128{Lo: uint64(v) | 0xffffffff00000000}
	case FP128:
		return F128{Lo: uint64(v) | 0xffffffff00000000, Hi: ^uint64(0)}
	default:
		return F128{}
	}
}

// BoxF64 NaN-boxes a 64-bit value into an F128 slab sized for the
// given register width W (64 or 128; undefined if W==32).
func BoxF64(v uint64, regWidth FPWidth) F128 {
	switch regWidth {
	case FP64:
		return F128{Lo: v}
	case FP128:
		return F128{Lo: v, Hi: ^uint64(0)}
	default:
		return F128{Lo: v}
	}
}

// BoxF128 stores a full 128-bit value (no boxing needed, W must be 128).
func BoxF128(lo, hi uint64) F128 {
	return F128{Lo: lo, Hi: hi}
}

// UnboxF32 reads a 32-bit value out of a register of width regWidth,
// applying the NaN-box check. ok is false if the box check failed, in
// which case v is the canonical quiet NaN of width 32.
func UnboxF32(stored F128, regWidth FPWidth) (v uint32, ok bool) {
	switch regWidth {
	case FP32:
		return uint32(stored.Lo), true
	case FP64:
		if stored.Lo>>32 != 0xffffffff {
			return CanonicalQNaN32, false
		}
		return uint32(stored.Lo), true
	case FP128:
		if stored.Hi != ^uint64(0) || stored.Lo>>32 != 0xffffffff {
			return CanonicalQNaN32, false
		}
		return uint32(stored.Lo), true
	default:
		return CanonicalQNaN32, false
	}
}

// UnboxF64 reads a 64-bit value out of a register of width regWidth.
func UnboxF64(stored F128, regWidth FPWidth) (v uint64, ok bool) {
	switch regWidth {
	case FP64:
		return stored.Lo, true
	case FP128:
		if stored.Hi != ^uint64(0) {
			return CanonicalQNaN64, false
		}
		return stored.Lo, true
	default:
		return CanonicalQNaN64, false
	}
}

// UnboxF128 reads the full 128-bit value (always valid, no boxing at
// the top width).
func UnboxF128(stored F128) (lo, hi uint64) {
	return stored.Lo, stored.Hi
}
