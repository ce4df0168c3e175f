// Package exec implements the instruction semantics of every decoded
// Instruction against a cpu.State and an env.Environment. Each
// function here is one execution unit: it reads operands out of
// State, calls into Environment for anything outside the
// architectural register file, and returns the instruction's next PC
// or a trap.
package exec

import (
	"github.com/bassosimone/rv32core/pkg/rv32/cpu"
	"github.com/bassosimone/rv32core/pkg/rv32/env"
	"github.com/bassosimone/rv32core/pkg/rv32/isa"
)

// loadWidth/storeWidth in bytes, keyed by Op, for the sub-word memory
// helpers below.
func loadWidthOf(op isa.Op) (width uint32, signed bool) {
	switch op {
	case isa.OpLB:
		return 1, true
	case isa.OpLH:
		return 2, true
	case isa.OpLW:
		return 4, false
	case isa.OpLBU:
		return 1, false
	case isa.OpLHU:
		return 2, false
	default:
		return 0, false
	}
}

func storeWidthOf(op isa.Op) uint32 {
	switch op {
	case isa.OpSB:
		return 1
	case isa.OpSH:
		return 2
	default:
		return 4
	}
}

// loadValue reads a width-byte value at addr out of e, splicing it
// out of the single aligned word that contains it. An access that
// straddles two aligned words is rejected as misaligned: the
// Environment contract only offers whole-word access.
func loadValue(e env.Environment, addr uint32, width uint32) (uint32, *env.TrapError) {
	off := addr & 3
	if off+width > 4 {
		return 0, env.NewTrap(env.CauseMisalignedLoad, addr)
	}
	word, terr := e.ReadWord(addr &^ 3)
	if terr != nil {
		return 0, terr
	}
	shift := off * 8
	var mask uint32 = 0xffffffff
	if width < 4 {
		mask = 1<<(width*8) - 1
	}
	return (word >> shift) & mask, nil
}

func storeValue(e env.Environment, addr uint32, value uint32, width uint32) *env.TrapError {
	off := addr & 3
	if off+width > 4 {
		return env.NewTrap(env.CauseMisalignedStore, addr)
	}
	shift := off * 8
	var byteMask uint32
	switch width {
	case 1:
		byteMask = 0b0001
	case 2:
		byteMask = 0b0011
	default:
		byteMask = 0b1111
	}
	return e.WriteWord(addr&^3, value<<shift, byteMask<<off)
}

// Integer executes one RV32I (plus Zifence FENCE/FENCE.I and the
// ECALL/EBREAK system calls) instruction. pc is the address the
// instruction was fetched from; the returned uint32 is the address
// the step driver should fetch next on success.
func Integer(s *cpu.State, e env.Environment, pc uint32, in isa.Instruction) (uint32, *env.TrapError) {
	next := pc + uint32(in.Length)

	switch in.Op {
	case isa.OpLUI:
		s.SetX(in.Rd, uint32(in.Imm))
		return next, nil
	case isa.OpAUIPC:
		s.SetX(in.Rd, pc+uint32(in.Imm))
		return next, nil

	case isa.OpJAL:
		s.SetX(in.Rd, next)
		return pc + uint32(in.Imm), nil
	case isa.OpJALR:
		target := (s.X(in.Rs1) + uint32(in.Imm)) &^ 1
		s.SetX(in.Rd, next)
		return target, nil

	case isa.OpBEQ, isa.OpBNE, isa.OpBLT, isa.OpBGE, isa.OpBLTU, isa.OpBGEU:
		if branchTaken(in.Op, s.X(in.Rs1), s.X(in.Rs2)) {
			return pc + uint32(in.Imm), nil
		}
		return next, nil

	case isa.OpLB, isa.OpLH, isa.OpLW, isa.OpLBU, isa.OpLHU:
		width, signed := loadWidthOf(in.Op)
		addr := s.X(in.Rs1) + uint32(in.Imm)
		v, terr := loadValue(e, addr, width)
		if terr != nil {
			return 0, terr
		}
		if signed {
			v = uint32(signExtendByteWidth(v, width))
		}
		s.SetX(in.Rd, v)
		return next, nil

	case isa.OpSB, isa.OpSH, isa.OpSW:
		width := storeWidthOf(in.Op)
		addr := s.X(in.Rs1) + uint32(in.Imm)
		if terr := storeValue(e, addr, s.X(in.Rs2), width); terr != nil {
			return 0, terr
		}
		return next, nil

	case isa.OpADDI:
		s.SetX(in.Rd, s.X(in.Rs1)+uint32(in.Imm))
		return next, nil
	case isa.OpSLTI:
		s.SetX(in.Rd, boolToWord(int32(s.X(in.Rs1)) < in.Imm))
		return next, nil
	case isa.OpSLTIU:
		s.SetX(in.Rd, boolToWord(s.X(in.Rs1) < uint32(in.Imm)))
		return next, nil
	case isa.OpXORI:
		s.SetX(in.Rd, s.X(in.Rs1)^uint32(in.Imm))
		return next, nil
	case isa.OpORI:
		s.SetX(in.Rd, s.X(in.Rs1)|uint32(in.Imm))
		return next, nil
	case isa.OpANDI:
		s.SetX(in.Rd, s.X(in.Rs1)&uint32(in.Imm))
		return next, nil
	case isa.OpSLLI:
		s.SetX(in.Rd, s.X(in.Rs1)<<uint(in.Imm&31))
		return next, nil
	case isa.OpSRLI:
		s.SetX(in.Rd, s.X(in.Rs1)>>uint(in.Imm&31))
		return next, nil
	case isa.OpSRAI:
		s.SetX(in.Rd, uint32(int32(s.X(in.Rs1))>>uint(in.Imm&31)))
		return next, nil

	case isa.OpADD:
		s.SetX(in.Rd, s.X(in.Rs1)+s.X(in.Rs2))
		return next, nil
	case isa.OpSUB:
		s.SetX(in.Rd, s.X(in.Rs1)-s.X(in.Rs2))
		return next, nil
	case isa.OpSLL:
		s.SetX(in.Rd, s.X(in.Rs1)<<(s.X(in.Rs2)&31))
		return next, nil
	case isa.OpSLT:
		s.SetX(in.Rd, boolToWord(int32(s.X(in.Rs1)) < int32(s.X(in.Rs2))))
		return next, nil
	case isa.OpSLTU:
		s.SetX(in.Rd, boolToWord(s.X(in.Rs1) < s.X(in.Rs2)))
		return next, nil
	case isa.OpXOR:
		s.SetX(in.Rd, s.X(in.Rs1)^s.X(in.Rs2))
		return next, nil
	case isa.OpSRL:
		s.SetX(in.Rd, s.X(in.Rs1)>>(s.X(in.Rs2)&31))
		return next, nil
	case isa.OpSRA:
		s.SetX(in.Rd, uint32(int32(s.X(in.Rs1))>>(s.X(in.Rs2)&31)))
		return next, nil
	case isa.OpOR:
		s.SetX(in.Rd, s.X(in.Rs1)|s.X(in.Rs2))
		return next, nil
	case isa.OpAND:
		s.SetX(in.Rd, s.X(in.Rs1)&s.X(in.Rs2))
		return next, nil

	case isa.OpFENCE, isa.OpFENCEI:
		// Single-hart core: ordering and instruction-stream
		// synchronization are no-ops.
		return next, nil

	case isa.OpECALL:
		return 0, env.NewTrap(env.CauseEnvCall, 0)
	case isa.OpEBREAK:
		return 0, env.NewTrap(env.CauseEnvBreak, 0)

	default:
		return 0, env.NewTrap(env.CauseIllegalInstruction, 0)
	}
}

func branchTaken(op isa.Op, a, b uint32) bool {
	switch op {
	case isa.OpBEQ:
		return a == b
	case isa.OpBNE:
		return a != b
	case isa.OpBLT:
		return int32(a) < int32(b)
	case isa.OpBGE:
		return int32(a) >= int32(b)
	case isa.OpBLTU:
		return a < b
	default: // OpBGEU
		return a >= b
	}
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func signExtendByteWidth(v uint32, width uint32) int32 {
	bits := width * 8
	shift := 32 - bits
	return int32(v<<shift) >> shift
}
