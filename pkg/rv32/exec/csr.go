package exec

import (
	"github.com/bassosimone/rv32core/pkg/rv32/cpu"
	"github.com/bassosimone/rv32core/pkg/rv32/env"
	"github.com/bassosimone/rv32core/pkg/rv32/isa"
)

// Core-owned CSR addresses: the FP status/control registers live in
// cpu.State directly rather than being delegated to the Environment.
const (
	csrFflags = 0x001
	csrFrm    = 0x002
	csrFcsr   = 0x003
)

// CSR executes one Zicsr instruction. Per the base ISA: CSRRW/CSRRWI
// skip the read (and its side effects) when rd==x0; CSRRS/CSRRC and
// their immediate forms skip the write when the source operand is
// zero, but always perform the read.
func CSR(s *cpu.State, e env.Environment, pc uint32, in isa.Instruction) (uint32, *env.TrapError) {
	next := pc + uint32(in.Length)

	var operand uint32
	switch in.Op {
	case isa.OpCSRRWI, isa.OpCSRRSI, isa.OpCSRRCI:
		operand = uint32(in.Imm)
	default:
		operand = s.X(in.Rs1)
	}

	switch in.Op {
	case isa.OpCSRRW, isa.OpCSRRWI:
		skipRead := in.Rd == 0
		mode := env.CSRReadWrite
		if skipRead {
			mode = env.CSRWriteOnly
		}
		var old uint32
		if !skipRead {
			v, terr := readCSR(s, e, in.Csr, mode)
			if terr != nil {
				return 0, terr
			}
			old = v
		}
		if terr := writeCSR(s, e, in.Csr, operand, mode); terr != nil {
			return 0, terr
		}
		if !skipRead {
			s.SetX(in.Rd, old)
		}
		return next, nil

	case isa.OpCSRRS, isa.OpCSRRSI, isa.OpCSRRC, isa.OpCSRRCI:
		skipWrite := operand == 0
		mode := env.CSRReadWrite
		if skipWrite {
			mode = env.CSRReadOnly
		}
		old, terr := readCSR(s, e, in.Csr, mode)
		if terr != nil {
			return 0, terr
		}
		s.SetX(in.Rd, old)
		if !skipWrite {
			var newVal uint32
			if in.Op == isa.OpCSRRS || in.Op == isa.OpCSRRSI {
				newVal = old | operand
			} else {
				newVal = old &^ operand
			}
			if terr := writeCSR(s, e, in.Csr, newVal, mode); terr != nil {
				return 0, terr
			}
		}
		return next, nil

	default:
		return 0, env.NewTrap(env.CauseIllegalInstruction, 0)
	}
}

func readCSR(s *cpu.State, e env.Environment, idx uint16, mode env.CSRMode) (uint32, *env.TrapError) {
	if v, ok := coreCSRRead(s, idx); ok {
		return v, nil
	}
	return e.ReadCSR(idx, mode)
}

func writeCSR(s *cpu.State, e env.Environment, idx uint16, v uint32, mode env.CSRMode) *env.TrapError {
	if coreCSRWrite(s, idx, v) {
		return nil
	}
	return e.WriteCSR(idx, v, mode)
}

func coreCSRRead(s *cpu.State, idx uint16) (uint32, bool) {
	if s.Config.FPWidth == cpu.FPNone {
		return 0, false
	}
	switch idx {
	case csrFflags:
		return uint32(s.Flags()), true
	case csrFrm:
		return uint32(s.RM()), true
	case csrFcsr:
		return uint32(s.FCSR()), true
	default:
		return 0, false
	}
}

func coreCSRWrite(s *cpu.State, idx uint16, v uint32) bool {
	if s.Config.FPWidth == cpu.FPNone {
		return false
	}
	switch idx {
	case csrFflags:
		s.SetFlags(cpu.ExceptionFlags(v))
		return true
	case csrFrm:
		s.SetRM(cpu.RoundingMode(v))
		return true
	case csrFcsr:
		s.SetFCSR(uint8(v))
		return true
	default:
		return false
	}
}
