// Package isa contains the closed-set Instruction representation and
// the decoder (32-bit and compressed 16-bit). Decoding is pure: it
// never touches CPU state other than the fetch address implied by the
// caller, and it never talks to the Environment except through the
// enabled-extensions set the step driver supplies.
package isa

import "github.com/bassosimone/rv32core/pkg/rv32/cpu"

// Op identifies one member of the closed instruction-variant set. FP
// operations carry their width (32/64/128) in the Instruction's Width
// field rather than being triplicated per op.
type Op int

const (
	OpIllegal Op = iota

	// RV32I base.
	OpLUI
	OpAUIPC
	OpJAL
	OpJALR
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU
	OpLB
	OpLH
	OpLW
	OpLBU
	OpLHU
	OpSB
	OpSH
	OpSW
	OpADDI
	OpSLTI
	OpSLTIU
	OpXORI
	OpORI
	OpANDI
	OpSLLI
	OpSRLI
	OpSRAI
	OpADD
	OpSUB
	OpSLL
	OpSLT
	OpSLTU
	OpXOR
	OpSRL
	OpSRA
	OpOR
	OpAND
	OpFENCE
	OpFENCEI
	OpECALL
	OpEBREAK

	// M extension.
	OpMUL
	OpMULH
	OpMULHSU
	OpMULHU
	OpDIV
	OpDIVU
	OpREM
	OpREMU

	// A extension.
	OpLR
	OpSC
	OpAMOSWAP
	OpAMOADD
	OpAMOAND
	OpAMOOR
	OpAMOXOR
	OpAMOMIN
	OpAMOMAX
	OpAMOMINU
	OpAMOMAXU

	// Zicsr.
	OpCSRRW
	OpCSRRS
	OpCSRRC
	OpCSRRWI
	OpCSRRSI
	OpCSRRCI

	// F/D/Q arithmetic. Width selects which of the three the operands
	// and result belong to.
	OpFADD
	OpFSUB
	OpFMUL
	OpFDIV
	OpFSQRT
	OpFMIN
	OpFMAX
	OpFMADD
	OpFMSUB
	OpFNMADD
	OpFNMSUB
	OpFEQ
	OpFLT
	OpFLE
	OpFCLASS
	OpFSGNJ
	OpFSGNJN
	OpFSGNJX
	OpFCVTWF  // FCVT.W.{S,D,Q}: Width -> signed 32-bit int
	OpFCVTWUF // FCVT.WU.{S,D,Q}: Width -> unsigned 32-bit int
	OpFCVTFW  // FCVT.{S,D,Q}.W: signed 32-bit int -> Width
	OpFCVTFWU // FCVT.{S,D,Q}.WU: unsigned 32-bit int -> Width
	OpFCVTFF  // FCVT.{S,D,Q}.{S,D,Q}: Width2 -> Width
	OpFMVXF   // FMV.X.W: bit-move Width (32 only) -> integer register
	OpFMVFX   // FMV.W.X: bit-move integer register -> Width (32 only)
	OpFL      // FLW/FLD/FLQ
	OpFS      // FSW/FSD/FSQ
)

// Instruction is the decoded, typed representation of one fetched
// instruction. Fields not meaningful for a given Op are left zero.
type Instruction struct {
	Op     Op
	Length int // 2 (compressed) or 4

	Rd, Rs1, Rs2, Rs3 uint32
	Imm               int32 // sign-extended where the encoding calls for it
	Csr               uint16

	// FP-only fields.
	Rm     cpu.RoundingMode
	Width  int // 32, 64 or 128 for FP ops
	Width2 int // source width for OpFCVTFF

	// AMO/LR/SC ordering bits; observed but inert in a single-hart core.
	Aq, Rl bool

	// FENCE predecessor/successor sets; inert (single-hart no-op).
	Pred, Succ uint8
}

// IsIllegal reports whether this Instruction represents the decoder's
// "illegal instruction" outcome.
func (in Instruction) IsIllegal() bool {
	return in.Op == OpIllegal
}
