// Package env defines the contract between the RV32GCQ core and its
// embedder: memory, reservations, CSRs, extension gating, cost
// accounting, sqrt-mode selection and trap delivery.
//
// See the documentation of the cpu, isa and exec packages for how the
// core consumes this contract. Everything in this package is pure
// data: the core never assumes anything about how an Environment is
// implemented, only what it promises to do.
package env

import "fmt"

// Extension identifies an optional instruction-set extension whose
// availability the embedder gates on a per-step basis.
type Extension int

const (
	ExtM Extension = iota
	ExtA
	ExtF
	ExtD
	ExtQ
	ExtC
)

func (e Extension) String() string {
	switch e {
	case ExtM:
		return "M"
	case ExtA:
		return "A"
	case ExtF:
		return "F"
	case ExtD:
		return "D"
	case ExtQ:
		return "Q"
	case ExtC:
		return "C"
	default:
		return "unknown"
	}
}

// CSRMode tells the environment whether a Zicsr instruction is reading,
// writing, or both, so it can raise illegal instruction on violation
// (e.g. a write-only CSR being read).
type CSRMode int

const (
	// CSRReadWrite is the common case: both the read and the write side
	// of the CSR instruction are observable.
	CSRReadWrite CSRMode = iota
	// CSRReadOnly is used when rd==0 is impossible to distinguish from a
	// real read, but the source operand is zero so no write occurs
	// (CSRRS/CSRRC/CSRRSI/CSRRCI with a zero source).
	CSRReadOnly
	// CSRWriteOnly is used for CSRRW/CSRRWI when rd==0: the destination
	// register is never read, so the environment need not compute a
	// side-effect-free read.
	CSRWriteOnly
)

// SqrtMode is the embedder's per-call choice of SQRT implementation.
type SqrtMode int

const (
	SqrtFast SqrtMode = iota
	SqrtAccurate
	SqrtIllegal
)

// CostCategory buckets an instruction for the embedder's cost model.
// The core never interprets these values; it only passes them to
// Charge at the points the step driver requires.
type CostCategory int

const (
	CostFetch CostCategory = iota
	CostALU
	CostBranch
	CostJump
	CostLoad
	CostStore
	CostSystem
	CostMulDiv
	CostAtomic
	CostCSR
	CostFPArith
	CostFPLoadStore
	CostFPConvert
	CostFPFma
	CostFPSqrt
	CostFPMisc
)

// TrapCause enumerates the kinds of trap the core can detect or
// forward.
type TrapCause int

const (
	CauseIllegalInstruction TrapCause = iota
	CauseMisalignedFetch
	CauseMisalignedLoad
	CauseMisalignedStore
	CauseEnvCall
	CauseEnvBreak
	CauseMemoryFault
	CauseCSRFault
	CauseBudgetExhausted
)

func (c TrapCause) String() string {
	switch c {
	case CauseIllegalInstruction:
		return "illegal-instruction"
	case CauseMisalignedFetch:
		return "misaligned-fetch"
	case CauseMisalignedLoad:
		return "misaligned-load"
	case CauseMisalignedStore:
		return "misaligned-store"
	case CauseEnvCall:
		return "env-call"
	case CauseEnvBreak:
		return "env-break"
	case CauseMemoryFault:
		return "memory-fault"
	case CauseCSRFault:
		return "csr-fault"
	case CauseBudgetExhausted:
		return "budget-exhausted"
	default:
		return "unknown-trap"
	}
}

// TrapError carries a trap cause plus embedder-defined auxiliary
// information (the faulting address, the CSR index, and so on). It
// implements error so execution units can return it directly; the
// step driver is the only place that additionally forwards it to
// Environment.Trap.
type TrapError struct {
	Cause TrapCause
	Info  uint32
}

func (e *TrapError) Error() string {
	return fmt.Sprintf("rv32: trap %s (info=%#x)", e.Cause, e.Info)
}

// NewTrap builds a *TrapError. It exists so call sites read like
// "return env.NewTrap(...)" rather than repeating the struct literal.
func NewTrap(cause TrapCause, info uint32) *TrapError {
	return &TrapError{Cause: cause, Info: info}
}

// Environment is the embedder-provided contract the core executes
// against. A single Environment instance backs exactly one CPU and
// must not be shared concurrently with another step in progress.
type Environment interface {
	// ReadWord reads the aligned 4-byte word at addr. Used for
	// instruction fetch (one call for each 16-bit half fetched) and for
	// data loads.
	ReadWord(addr uint32) (uint32, *TrapError)

	// WriteWord writes the bytes selected by mask (bit i set means byte
	// i of the word is written) of the word at addr. Must invalidate
	// any reservation whose address overlaps addr.
	WriteWord(addr uint32, value uint32, mask uint32) *TrapError

	// LoadReservedWord performs the LR.W load and marks addr as
	// reserved.
	LoadReservedWord(addr uint32) (uint32, *TrapError)

	// StoreReservedWord performs the SC.W store. It returns true on
	// success (reservation was still valid) or false on failure; either
	// outcome clears the reservation. A non-nil *TrapError indicates an
	// environment fault unrelated to reservation state (e.g. the
	// address itself is invalid).
	StoreReservedWord(addr uint32, value uint32) (bool, *TrapError)

	// IsExtensionEnabled gates M/A/F/D/Q/C on a per-step basis.
	IsExtensionEnabled(ext Extension) bool

	// ReadCSR/WriteCSR delegate every CSR except the three core-owned
	// FP CSRs (0x001 fflags, 0x002 frm, 0x003 fcsr).
	ReadCSR(index uint16, mode CSRMode) (uint32, *TrapError)
	WriteCSR(index uint16, value uint32, mode CSRMode) *TrapError

	// Charge is called twice per step: with CostFetch before fetch, then
	// with the instruction's own category before execution. A non-nil
	// *TrapError signals budget exhaustion.
	Charge(category CostCategory) *TrapError

	// SqrtMode chooses fast vs. accurate vs. illegal square root for
	// the given FP width (32/64/128), per call.
	SqrtMode(width int) SqrtMode

	// Trap notifies the embedder that the core detected (or is
	// forwarding) a trap condition. It is called exactly once per
	// failed step, after every core-side mutation for that step has
	// been discarded.
	Trap(cause TrapCause, info uint32)
}
