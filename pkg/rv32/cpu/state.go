// Package cpu holds the mutable CPU state: the integer register
// file, the program counter, the (optional)
// floating-point register file and FCSR, and the static configuration
// (FP width, C-extension availability) a State was built with.
//
// None of this package touches the Environment: it is pure data plus
// the small set of invariant-preserving accessors (x0 reads as zero,
// FCSR upper bits always zero, NaN-boxing on narrow FP reads/writes).
// PC is stored as given; the step driver traps a misaligned PC at the
// next fetch.
package cpu

import "fmt"

// FPWidth is the configured floating-point register width. None means
// no F/D/Q extension is present at all.
type FPWidth int

const (
	FPNone FPWidth = 0
	FP32   FPWidth = 32
	FP64   FPWidth = 64
	FP128  FPWidth = 128
)

// Rounding modes. RMDyn (111b) in an instruction's rm field means "use
// FCSR.frm". FCSR.frm may hold any 3-bit value; if it holds RMDyn or
// one of the two reserved encodings, ResolveRM reports it as illegal.
type RoundingMode uint8

const (
	RNE RoundingMode = iota
	RTZ
	RDN
	RUP
	RMM
	rmReserved5
	rmReserved6
	RMDyn
)

// Exception flags accrued into FCSR, in their FCSR bit order (NV is
// bit 4, down to NX at bit 0) per the RISC-V Zicsr/F chapter.
type ExceptionFlags uint8

const (
	FlagNX ExceptionFlags = 1 << 0
	FlagUF ExceptionFlags = 1 << 1
	FlagOF ExceptionFlags = 1 << 2
	FlagDZ ExceptionFlags = 1 << 3
	FlagNV ExceptionFlags = 1 << 4
)

// Config is the immutable configuration a State is created with.
type Config struct {
	FPWidth FPWidth
}

// F128 is a 128-bit wide slab used to store any configured FP
// register width uniformly; Hi is unused when FPWidth is 32 or 64.
type F128 struct {
	Lo uint64
	Hi uint64
}

// State is one hart's architectural state. It is not goroutine-safe;
// a single goroutine should drive one State via the step driver.
type State struct {
	Config Config

	x  [32]uint32 // integer registers; x[0] is always read as zero
	PC uint32

	f    [32]F128 // floating point registers, present iff Config.FPWidth != FPNone
	fcsr ExceptionFlags
	frm  RoundingMode
}

// New creates a zeroed State for the given configuration.
func New(cfg Config) *State {
	return &State{Config: cfg}
}

// X reads integer register i. x0 always reads as zero.
func (s *State) X(i uint32) uint32 {
	if i == 0 {
		return 0
	}
	return s.x[i&31]
}

// SetX writes integer register i. Writes to x0 are silently dropped,
// per the base ISA's x0-hardwired-zero rule.
func (s *State) SetX(i uint32, v uint32) {
	if i == 0 {
		return
	}
	s.x[i&31] = v
}

// SetPC sets the program counter. Callers are responsible for the
// misaligned-fetch check at the next fetch: a branch or jump that
// sets an odd-aligned-for-C-disabled target does not trap
// immediately.
func (s *State) SetPC(pc uint32) {
	s.PC = pc
}

// FCSR returns the full 8-bit FCSR value (5 flag bits + 3 rm bits).
// The upper 24 bits of the architectural FCSR are always zero, per
// this accessor returns only the meaningful byte.
func (s *State) FCSR() uint8 {
	return uint8(s.frm)<<5 | uint8(s.fcsr&0x1f)
}

// SetFCSR sets the full 8-bit FCSR value. Bits above bit 7 of the
// input are ignored; frm is taken from bits 7:5.
func (s *State) SetFCSR(v uint8) {
	s.fcsr = ExceptionFlags(v & 0x1f)
	s.frm = RoundingMode((v >> 5) & 0x7)
}

// Flags returns the accrued exception flags (fflags, CSR 0x001).
func (s *State) Flags() ExceptionFlags {
	return s.fcsr
}

// SetFlags replaces the accrued exception flags.
func (s *State) SetFlags(f ExceptionFlags) {
	s.fcsr = f & 0x1f
}

// AccrueFlags ORs additional exception flags into FCSR, as every FP
// arithmetic instruction does with the mask it produces.
func (s *State) AccrueFlags(f ExceptionFlags) {
	s.fcsr |= f & 0x1f
}

// RM returns the current rounding mode (frm, CSR 0x002).
func (s *State) RM() RoundingMode {
	return s.frm
}

// SetRM replaces the rounding mode with the low 3 bits of rm. Any
// value is stored, including RMDyn and the two reserved encodings;
// ResolveRM rejects those when an instruction selects the dynamic mode.
func (s *State) SetRM(rm RoundingMode) {
	s.frm = rm & 0x7
}

// ResolveRM resolves an instruction's 3-bit rm field against FCSR.frm
// when the field is RMDyn, and reports whether the result is a legal
// rounding mode to execute with.
func (s *State) ResolveRM(instrRM RoundingMode) (RoundingMode, bool) {
	rm := instrRM
	if rm == RMDyn {
		rm = s.frm
	}
	switch rm {
	case RNE, RTZ, RDN, RUP, RMM:
		return rm, true
	default:
		return rm, false
	}
}

// FRaw returns the raw F128 slab stored in FP register i, without any
// NaN-boxing interpretation. i is masked to 0..31.
func (s *State) FRaw(i uint32) F128 {
	return s.f[i&31]
}

// SetFRaw stores a raw F128 slab into FP register i verbatim (used for
// FP-to-FP moves and loads of the full configured width).
func (s *State) SetFRaw(i uint32, v F128) {
	s.f[i&31] = v
}

func (s *State) String() string {
	return fmt.Sprintf("{PC:%#08x x:%+v fcsr:%#02x}", s.PC, s.x, s.FCSR())
}
