package exec

import (
	"github.com/bassosimone/rv32core/pkg/rv32/cpu"
	"github.com/bassosimone/rv32core/pkg/rv32/env"
	"github.com/bassosimone/rv32core/pkg/rv32/isa"
)

// Atomic executes one A-extension instruction (LR.W/SC.W/AMO*.W). aq
// and rl are observed but otherwise inert in a single-hart core.
func Atomic(s *cpu.State, e env.Environment, pc uint32, in isa.Instruction) (uint32, *env.TrapError) {
	next := pc + uint32(in.Length)
	addr := s.X(in.Rs1)
	if addr&3 != 0 {
		return 0, env.NewTrap(env.CauseMisalignedLoad, addr)
	}

	switch in.Op {
	case isa.OpLR:
		v, terr := e.LoadReservedWord(addr)
		if terr != nil {
			return 0, terr
		}
		s.SetX(in.Rd, v)
		return next, nil

	case isa.OpSC:
		ok, terr := e.StoreReservedWord(addr, s.X(in.Rs2))
		if terr != nil {
			return 0, terr
		}
		if ok {
			s.SetX(in.Rd, 0)
		} else {
			s.SetX(in.Rd, 1)
		}
		return next, nil

	default:
		old, terr := e.ReadWord(addr)
		if terr != nil {
			return 0, terr
		}
		rhs := s.X(in.Rs2)
		result, ok := amoCombine(in.Op, old, rhs)
		if !ok {
			return 0, env.NewTrap(env.CauseIllegalInstruction, 0)
		}
		if terr := e.WriteWord(addr, result, 0b1111); terr != nil {
			return 0, terr
		}
		s.SetX(in.Rd, old)
		return next, nil
	}
}

func amoCombine(op isa.Op, old, rhs uint32) (uint32, bool) {
	switch op {
	case isa.OpAMOSWAP:
		return rhs, true
	case isa.OpAMOADD:
		return old + rhs, true
	case isa.OpAMOAND:
		return old & rhs, true
	case isa.OpAMOOR:
		return old | rhs, true
	case isa.OpAMOXOR:
		return old ^ rhs, true
	case isa.OpAMOMIN:
		if int32(old) < int32(rhs) {
			return old, true
		}
		return rhs, true
	case isa.OpAMOMAX:
		if int32(old) > int32(rhs) {
			return old, true
		}
		return rhs, true
	case isa.OpAMOMINU:
		if old < rhs {
			return old, true
		}
		return rhs, true
	case isa.OpAMOMAXU:
		if old > rhs {
			return old, true
		}
		return rhs, true
	default:
		return 0, false
	}
}
