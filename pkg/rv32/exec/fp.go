package exec

import (
	"github.com/bassosimone/rv32core/pkg/rv32/cpu"
	"github.com/bassosimone/rv32core/pkg/rv32/env"
	"github.com/bassosimone/rv32core/pkg/rv32/isa"
	"github.com/bassosimone/rv32core/pkg/rv32/softfloat"
)

func readF(s *cpu.State, reg uint32, width int) softfloat.Raw {
	stored := s.FRaw(reg)
	switch width {
	case 32:
		v, _ := cpu.UnboxF32(stored, s.Config.FPWidth)
		return softfloat.Raw{Lo: uint64(v)}
	case 64:
		v, _ := cpu.UnboxF64(stored, s.Config.FPWidth)
		return softfloat.Raw{Lo: v}
	default:
		lo, hi := cpu.UnboxF128(stored)
		return softfloat.Raw{Lo: lo, Hi: hi}
	}
}

func writeF(s *cpu.State, reg uint32, width int, raw softfloat.Raw) {
	switch width {
	case 32:
		s.SetFRaw(reg, cpu.BoxF32(uint32(raw.Lo), s.Config.FPWidth))
	case 64:
		s.SetFRaw(reg, cpu.BoxF64(raw.Lo, s.Config.FPWidth))
	default:
		s.SetFRaw(reg, cpu.BoxF128(raw.Lo, raw.Hi))
	}
}

// fpLoadWord/fpStoreWord move a width-bit value between memory and a
// softfloat.Raw, one aligned 32-bit Environment access at a time.
func fpLoadWord(e env.Environment, addr uint32, width int) (softfloat.Raw, *env.TrapError) {
	if addr&3 != 0 {
		return softfloat.Raw{}, env.NewTrap(env.CauseMisalignedLoad, addr)
	}
	w0, terr := e.ReadWord(addr)
	if terr != nil {
		return softfloat.Raw{}, terr
	}
	if width == 32 {
		return softfloat.Raw{Lo: uint64(w0)}, nil
	}
	w1, terr := e.ReadWord(addr + 4)
	if terr != nil {
		return softfloat.Raw{}, terr
	}
	lo := uint64(w0) | uint64(w1)<<32
	if width == 64 {
		return softfloat.Raw{Lo: lo}, nil
	}
	w2, terr := e.ReadWord(addr + 8)
	if terr != nil {
		return softfloat.Raw{}, terr
	}
	w3, terr := e.ReadWord(addr + 12)
	if terr != nil {
		return softfloat.Raw{}, terr
	}
	return softfloat.Raw{Lo: lo, Hi: uint64(w2) | uint64(w3)<<32}, nil
}

func fpStoreWord(e env.Environment, addr uint32, width int, v softfloat.Raw) *env.TrapError {
	if addr&3 != 0 {
		return env.NewTrap(env.CauseMisalignedStore, addr)
	}
	if terr := e.WriteWord(addr, uint32(v.Lo), 0b1111); terr != nil {
		return terr
	}
	if width == 32 {
		return nil
	}
	if terr := e.WriteWord(addr+4, uint32(v.Lo>>32), 0b1111); terr != nil {
		return terr
	}
	if width == 64 {
		return nil
	}
	if terr := e.WriteWord(addr+8, uint32(v.Hi), 0b1111); terr != nil {
		return terr
	}
	return e.WriteWord(addr+12, uint32(v.Hi>>32), 0b1111)
}

// FP executes one F/D/Q instruction (arithmetic, conversion, compare,
// classify, sign-inject, bit-move or load/store). The caller has
// already confirmed the instruction's width is enabled for this step.
func FP(s *cpu.State, e env.Environment, pc uint32, in isa.Instruction) (uint32, *env.TrapError) {
	next := pc + uint32(in.Length)
	w := in.Width

	switch in.Op {
	case isa.OpFL:
		addr := s.X(in.Rs1) + uint32(in.Imm)
		v, terr := fpLoadWord(e, addr, w)
		if terr != nil {
			return 0, terr
		}
		writeF(s, in.Rd, w, v)
		return next, nil

	case isa.OpFS:
		addr := s.X(in.Rs1) + uint32(in.Imm)
		v := readF(s, in.Rs2, w)
		if terr := fpStoreWord(e, addr, w, v); terr != nil {
			return 0, terr
		}
		return next, nil

	case isa.OpFMVXF:
		s.SetX(in.Rd, uint32(s.FRaw(in.Rs1).Lo))
		return next, nil

	case isa.OpFMVFX:
		s.SetFRaw(in.Rd, cpu.BoxF32(s.X(in.Rs1), s.Config.FPWidth))
		return next, nil

	case isa.OpFCLASS:
		a := readF(s, in.Rs1, w)
		s.SetX(in.Rd, uint32(softfloat.Classify(w, a)))
		return next, nil

	case isa.OpFSGNJ, isa.OpFSGNJN, isa.OpFSGNJX:
		a, b := readF(s, in.Rs1, w), readF(s, in.Rs2, w)
		op := byte('J')
		if in.Op == isa.OpFSGNJN {
			op = 'N'
		} else if in.Op == isa.OpFSGNJX {
			op = 'X'
		}
		writeF(s, in.Rd, w, softfloat.SignInject(w, op, a, b))
		return next, nil

	case isa.OpFMIN, isa.OpFMAX:
		a, b := readF(s, in.Rs1, w), readF(s, in.Rs2, w)
		var result softfloat.Raw
		var flags cpu.ExceptionFlags
		if in.Op == isa.OpFMIN {
			result, flags = softfloat.Min(w, a, b)
		} else {
			result, flags = softfloat.Max(w, a, b)
		}
		s.AccrueFlags(flags)
		writeF(s, in.Rd, w, result)
		return next, nil

	case isa.OpFEQ, isa.OpFLT, isa.OpFLE:
		a, b := readF(s, in.Rs1, w), readF(s, in.Rs2, w)
		op := byte('E')
		if in.Op == isa.OpFLT {
			op = 'L'
		} else if in.Op == isa.OpFLE {
			op = 'l'
		}
		result, flags := softfloat.Compare(w, op, a, b)
		s.AccrueFlags(flags)
		s.SetX(in.Rd, boolToWord(result))
		return next, nil

	case isa.OpFCVTWF, isa.OpFCVTWUF:
		rm, ok := s.ResolveRM(in.Rm)
		if !ok {
			return 0, env.NewTrap(env.CauseIllegalInstruction, 0)
		}
		a := readF(s, in.Rs1, w)
		var result uint32
		var flags cpu.ExceptionFlags
		if in.Op == isa.OpFCVTWF {
			v, f := softfloat.ToInt32(w, rm, a)
			result, flags = uint32(v), f
		} else {
			result, flags = softfloat.ToUint32(w, rm, a)
		}
		s.AccrueFlags(flags)
		s.SetX(in.Rd, result)
		return next, nil

	case isa.OpFCVTFW, isa.OpFCVTFWU:
		rm, ok := s.ResolveRM(in.Rm)
		if !ok {
			return 0, env.NewTrap(env.CauseIllegalInstruction, 0)
		}
		var result softfloat.Raw
		var flags cpu.ExceptionFlags
		if in.Op == isa.OpFCVTFW {
			result, flags = softfloat.FromInt32(w, rm, int32(s.X(in.Rs1)))
		} else {
			result, flags = softfloat.FromUint32(w, rm, s.X(in.Rs1))
		}
		s.AccrueFlags(flags)
		writeF(s, in.Rd, w, result)
		return next, nil

	case isa.OpFCVTFF:
		rm, ok := s.ResolveRM(in.Rm)
		if !ok {
			return 0, env.NewTrap(env.CauseIllegalInstruction, 0)
		}
		a := readF(s, in.Rs1, in.Width2)
		result, flags := softfloat.ConvertWidth(w, in.Width2, rm, a)
		s.AccrueFlags(flags)
		writeF(s, in.Rd, w, result)
		return next, nil

	case isa.OpFSQRT:
		rm, ok := s.ResolveRM(in.Rm)
		if !ok {
			return 0, env.NewTrap(env.CauseIllegalInstruction, 0)
		}
		mode := e.SqrtMode(w)
		if mode == env.SqrtIllegal {
			return 0, env.NewTrap(env.CauseIllegalInstruction, 0)
		}
		a := readF(s, in.Rs1, w)
		result, flags := softfloat.Sqrt(w, rm, a, mode == env.SqrtFast)
		s.AccrueFlags(flags)
		writeF(s, in.Rd, w, result)
		return next, nil

	case isa.OpFADD, isa.OpFSUB, isa.OpFMUL, isa.OpFDIV:
		rm, ok := s.ResolveRM(in.Rm)
		if !ok {
			return 0, env.NewTrap(env.CauseIllegalInstruction, 0)
		}
		a, b := readF(s, in.Rs1, w), readF(s, in.Rs2, w)
		var result softfloat.Raw
		var flags cpu.ExceptionFlags
		switch in.Op {
		case isa.OpFADD:
			result, flags = softfloat.Add(w, rm, a, b)
		case isa.OpFSUB:
			result, flags = softfloat.Sub(w, rm, a, b)
		case isa.OpFMUL:
			result, flags = softfloat.Mul(w, rm, a, b)
		default:
			result, flags = softfloat.Div(w, rm, a, b)
		}
		s.AccrueFlags(flags)
		writeF(s, in.Rd, w, result)
		return next, nil

	case isa.OpFMADD, isa.OpFMSUB, isa.OpFNMADD, isa.OpFNMSUB:
		rm, ok := s.ResolveRM(in.Rm)
		if !ok {
			return 0, env.NewTrap(env.CauseIllegalInstruction, 0)
		}
		a, b, c := readF(s, in.Rs1, w), readF(s, in.Rs2, w), readF(s, in.Rs3, w)
		mulNeg := in.Op == isa.OpFNMADD || in.Op == isa.OpFNMSUB
		addNeg := in.Op == isa.OpFMSUB || in.Op == isa.OpFNMADD
		result, flags := softfloat.Fma(w, rm, a, b, c, mulNeg, addNeg)
		s.AccrueFlags(flags)
		writeF(s, in.Rd, w, result)
		return next, nil

	default:
		return 0, env.NewTrap(env.CauseIllegalInstruction, 0)
	}
}
