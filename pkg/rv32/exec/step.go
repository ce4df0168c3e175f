package exec

import (
	"github.com/bassosimone/rv32core/pkg/rv32/cpu"
	"github.com/bassosimone/rv32core/pkg/rv32/env"
	"github.com/bassosimone/rv32core/pkg/rv32/isa"
)

func fetchHalf(e env.Environment, addr uint32) (uint16, *env.TrapError) {
	word, terr := e.ReadWord(addr &^ 3)
	if terr != nil {
		return 0, terr
	}
	if addr&2 == 0 {
		return uint16(word), nil
	}
	return uint16(word >> 16), nil
}

// Step fetches, decodes and executes exactly one instruction from
// s.PC against e. On success s is left advanced to the next
// instruction. On failure every mutation the step made is discarded,
// e.Trap is called exactly once with the failing cause, and the
// returned error describes it.
func Step(s *cpu.State, e env.Environment) *env.TrapError {
	snapshot := *s

	fail := func(terr *env.TrapError) *env.TrapError {
		*s = snapshot
		e.Trap(terr.Cause, terr.Info)
		return terr
	}

	if terr := e.Charge(env.CostFetch); terr != nil {
		return fail(terr)
	}

	pc := s.PC
	cEnabled := e.IsExtensionEnabled(env.ExtC)
	minAlign := uint32(3)
	if cEnabled {
		minAlign = 1
	}
	if pc&minAlign != 0 {
		return fail(env.NewTrap(env.CauseMisalignedFetch, pc))
	}

	firstHalf, terr := fetchHalf(e, pc)
	if terr != nil {
		return fail(terr)
	}

	ext := isa.Extensions{
		M: e.IsExtensionEnabled(env.ExtM),
		A: e.IsExtensionEnabled(env.ExtA),
		F: e.IsExtensionEnabled(env.ExtF),
		D: e.IsExtensionEnabled(env.ExtD),
		Q: e.IsExtensionEnabled(env.ExtQ),
		C: cEnabled,
	}

	var in isa.Instruction
	if firstHalf&0b11 == 0b11 {
		secondHalf, terr := fetchHalf(e, pc+2)
		if terr != nil {
			return fail(terr)
		}
		word := uint32(firstHalf) | uint32(secondHalf)<<16
		in = isa.Decode(word, ext)
	} else if !cEnabled {
		return fail(env.NewTrap(env.CauseIllegalInstruction, uint32(firstHalf)))
	} else {
		in = isa.DecodeCompressed(firstHalf, ext)
	}

	if in.IsIllegal() {
		return fail(env.NewTrap(env.CauseIllegalInstruction, 0))
	}

	if terr := e.Charge(costCategoryFor(in.Op)); terr != nil {
		return fail(terr)
	}

	nextPC, terr := dispatch(s, e, pc, in)
	if terr != nil {
		return fail(terr)
	}
	s.SetPC(nextPC)
	return nil
}

func dispatch(s *cpu.State, e env.Environment, pc uint32, in isa.Instruction) (uint32, *env.TrapError) {
	switch {
	case in.Op < isa.OpMUL:
		return Integer(s, e, pc, in)
	case in.Op <= isa.OpREMU:
		return MulDiv(s, in, pc)
	case in.Op <= isa.OpAMOMAXU:
		return Atomic(s, e, pc, in)
	case in.Op <= isa.OpCSRRCI:
		return CSR(s, e, pc, in)
	default:
		return FP(s, e, pc, in)
	}
}

func costCategoryFor(op isa.Op) env.CostCategory {
	switch {
	case op <= isa.OpEBREAK:
		switch op {
		case isa.OpBEQ, isa.OpBNE, isa.OpBLT, isa.OpBGE, isa.OpBLTU, isa.OpBGEU:
			return env.CostBranch
		case isa.OpJAL, isa.OpJALR:
			return env.CostJump
		case isa.OpLB, isa.OpLH, isa.OpLW, isa.OpLBU, isa.OpLHU:
			return env.CostLoad
		case isa.OpSB, isa.OpSH, isa.OpSW:
			return env.CostStore
		case isa.OpFENCE, isa.OpFENCEI, isa.OpECALL, isa.OpEBREAK:
			return env.CostSystem
		default:
			return env.CostALU
		}
	case op <= isa.OpREMU:
		return env.CostMulDiv
	case op <= isa.OpAMOMAXU:
		return env.CostAtomic
	case op <= isa.OpCSRRCI:
		return env.CostCSR
	case op == isa.OpFL || op == isa.OpFS:
		return env.CostFPLoadStore
	case op == isa.OpFMADD || op == isa.OpFMSUB || op == isa.OpFNMADD || op == isa.OpFNMSUB:
		return env.CostFPFma
	case op == isa.OpFSQRT:
		return env.CostFPSqrt
	case op == isa.OpFCVTWF || op == isa.OpFCVTWUF || op == isa.OpFCVTFW ||
		op == isa.OpFCVTFWU || op == isa.OpFCVTFF:
		return env.CostFPConvert
	case op == isa.OpFCLASS || op == isa.OpFSGNJ || op == isa.OpFSGNJN ||
		op == isa.OpFSGNJX || op == isa.OpFMVXF || op == isa.OpFMVFX:
		return env.CostFPMisc
	default:
		return env.CostFPArith
	}
}
