package exec

import (
	"github.com/bassosimone/rv32core/pkg/rv32/cpu"
	"github.com/bassosimone/rv32core/pkg/rv32/env"
	"github.com/bassosimone/rv32core/pkg/rv32/isa"
)

// MulDiv executes one M-extension instruction. The caller has already
// confirmed the M extension is enabled for this step.
func MulDiv(s *cpu.State, in isa.Instruction, pc uint32) (uint32, *env.TrapError) {
	next := pc + uint32(in.Length)
	a, b := s.X(in.Rs1), s.X(in.Rs2)

	switch in.Op {
	case isa.OpMUL:
		s.SetX(in.Rd, a*b)
	case isa.OpMULH:
		prod := int64(int32(a)) * int64(int32(b))
		s.SetX(in.Rd, uint32(prod>>32))
	case isa.OpMULHSU:
		prod := int64(int32(a)) * int64(int64(uint64(b)))
		s.SetX(in.Rd, uint32(prod>>32))
	case isa.OpMULHU:
		prod := uint64(a) * uint64(b)
		s.SetX(in.Rd, uint32(prod>>32))

	case isa.OpDIV:
		ia, ib := int32(a), int32(b)
		switch {
		case ib == 0:
			s.SetX(in.Rd, 0xffffffff)
		case ia == int32(-1<<31) && ib == -1:
			s.SetX(in.Rd, uint32(ia))
		default:
			s.SetX(in.Rd, uint32(ia/ib))
		}
	case isa.OpDIVU:
		if b == 0 {
			s.SetX(in.Rd, 0xffffffff)
		} else {
			s.SetX(in.Rd, a/b)
		}
	case isa.OpREM:
		ia, ib := int32(a), int32(b)
		switch {
		case ib == 0:
			s.SetX(in.Rd, a)
		case ia == int32(-1<<31) && ib == -1:
			s.SetX(in.Rd, 0)
		default:
			s.SetX(in.Rd, uint32(ia%ib))
		}
	case isa.OpREMU:
		if b == 0 {
			s.SetX(in.Rd, a)
		} else {
			s.SetX(in.Rd, a%b)
		}

	default:
		return 0, env.NewTrap(env.CauseIllegalInstruction, 0)
	}
	return next, nil
}
