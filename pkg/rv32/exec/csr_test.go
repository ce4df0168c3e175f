package exec_test

import (
	"testing"

	"github.com/bassosimone/rv32core/pkg/rv32/cpu"
	"github.com/bassosimone/rv32core/pkg/rv32/env"
	"github.com/bassosimone/rv32core/pkg/rv32/exec"
	"github.com/bassosimone/rv32core/pkg/rv32/isa"
	"github.com/bassosimone/rv32core/pkg/rv32/refenv"
)

func TestCSRRWISkipsReadWhenRdIsZero(t *testing.T) {
	s := cpu.New(cpu.Config{FPWidth: cpu.FP64})
	in := isa.Instruction{Op: isa.OpCSRRWI, Length: 4, Rd: 0, Imm: int32(cpu.RTZ), Csr: 0x002}
	if _, terr := exec.CSR(s, refenv.New(16), 0, in); terr != nil {
		t.Fatalf("unexpected trap: %v", terr)
	}
	if s.RM() != cpu.RTZ {
		t.Fatalf("rm = %v, want RTZ", s.RM())
	}
}

func TestCSRRWReadsOldThenWrites(t *testing.T) {
	s := cpu.New(cpu.Config{FPWidth: cpu.FP64})
	s.SetFlags(0x05)
	s.SetX(1, 0x1f)
	in := isa.Instruction{Op: isa.OpCSRRW, Length: 4, Rd: 5, Rs1: 1, Csr: 0x001}
	if _, terr := exec.CSR(s, refenv.New(16), 0, in); terr != nil {
		t.Fatalf("unexpected trap: %v", terr)
	}
	if s.X(5) != 0x05 {
		t.Fatalf("x5 = %#x, want old flags 0x05", s.X(5))
	}
	if s.Flags() != 0x1f {
		t.Fatalf("flags = %#x, want 0x1f", s.Flags())
	}
}

func TestCSRRSSkipsWriteWhenOperandIsZero(t *testing.T) {
	s := cpu.New(cpu.Config{FPWidth: cpu.FP64})
	s.SetFCSR(0b010_00001)
	in := isa.Instruction{Op: isa.OpCSRRS, Length: 4, Rd: 5, Rs1: 0, Csr: 0x003}
	if _, terr := exec.CSR(s, refenv.New(16), 0, in); terr != nil {
		t.Fatalf("unexpected trap: %v", terr)
	}
	if s.X(5) != 0b010_00001 {
		t.Fatalf("x5 = %#08b, want %#08b", s.X(5), 0b010_00001)
	}
	if s.FCSR() != 0b010_00001 {
		t.Fatalf("fcsr changed to %#08b, want unchanged %#08b", s.FCSR(), 0b010_00001)
	}
}

func TestCSRDelegatesNonCoreIndexToEnvironment(t *testing.T) {
	s := cpu.New(cpu.Config{FPWidth: cpu.FP64})
	e := refenv.New(16)
	e.CSRs[0x100] = 7
	s.SetX(1, 50)
	in := isa.Instruction{Op: isa.OpCSRRW, Length: 4, Rd: 5, Rs1: 1, Csr: 0x100}
	if _, terr := exec.CSR(s, e, 0, in); terr != nil {
		t.Fatalf("unexpected trap: %v", terr)
	}
	if s.X(5) != 7 {
		t.Fatalf("x5 = %d, want 7 (old value)", s.X(5))
	}
	if e.CSRs[0x100] != 50 {
		t.Fatalf("e.CSRs[0x100] = %d, want 50", e.CSRs[0x100])
	}
}

func TestCSRUnknownIndexTraps(t *testing.T) {
	s := cpu.New(cpu.Config{FPWidth: cpu.FP64})
	e := refenv.New(16)
	in := isa.Instruction{Op: isa.OpCSRRS, Length: 4, Rd: 5, Rs1: 0, Csr: 0x999}
	_, terr := exec.CSR(s, e, 0, in)
	if terr == nil || terr.Cause != env.CauseCSRFault {
		t.Fatalf("got %v, want CauseCSRFault", terr)
	}
}
