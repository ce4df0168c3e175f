package exec_test

import (
	"testing"

	"github.com/bassosimone/rv32core/pkg/rv32/cpu"
	"github.com/bassosimone/rv32core/pkg/rv32/env"
	"github.com/bassosimone/rv32core/pkg/rv32/exec"
	"github.com/bassosimone/rv32core/pkg/rv32/isa"
	"github.com/bassosimone/rv32core/pkg/rv32/refenv"
)

func TestAtomicLRSCSucceedsWithoutInterveningWrite(t *testing.T) {
	s := cpu.New(cpu.Config{})
	e := refenv.New(16)
	e.Mem[0] = 123
	s.SetX(1, 0)
	lr := isa.Instruction{Op: isa.OpLR, Length: 4, Rd: 2, Rs1: 1}
	if _, terr := exec.Atomic(s, e, 0, lr); terr != nil {
		t.Fatalf("LR trapped: %v", terr)
	}
	if s.X(2) != 123 {
		t.Fatalf("x2 = %d, want 123", s.X(2))
	}
	s.SetX(3, 456)
	sc := isa.Instruction{Op: isa.OpSC, Length: 4, Rd: 4, Rs1: 1, Rs2: 3}
	if _, terr := exec.Atomic(s, e, 0, sc); terr != nil {
		t.Fatalf("SC trapped: %v", terr)
	}
	if s.X(4) != 0 {
		t.Fatalf("SC result = %d, want 0 (success)", s.X(4))
	}
	if e.Mem[0] != 456 {
		t.Fatalf("mem[0] = %d, want 456", e.Mem[0])
	}
}

func TestAtomicSCFailsWithoutReservation(t *testing.T) {
	s := cpu.New(cpu.Config{})
	e := refenv.New(16)
	s.SetX(1, 0)
	s.SetX(2, 99)
	sc := isa.Instruction{Op: isa.OpSC, Length: 4, Rd: 3, Rs1: 1, Rs2: 2}
	if _, terr := exec.Atomic(s, e, 0, sc); terr != nil {
		t.Fatalf("SC trapped: %v", terr)
	}
	if s.X(3) != 1 {
		t.Fatalf("SC result = %d, want 1 (failure)", s.X(3))
	}
}

func TestAtomicSCFailsAfterInterveningWrite(t *testing.T) {
	s := cpu.New(cpu.Config{})
	e := refenv.New(16)
	s.SetX(1, 0)
	lr := isa.Instruction{Op: isa.OpLR, Length: 4, Rd: 2, Rs1: 1}
	exec.Atomic(s, e, 0, lr)
	if terr := e.WriteWord(0, 0xff, 0b1111); terr != nil {
		t.Fatalf("unexpected write trap: %v", terr)
	}
	sc := isa.Instruction{Op: isa.OpSC, Length: 4, Rd: 3, Rs1: 1, Rs2: 77}
	exec.Atomic(s, e, 0, sc)
	if s.X(3) != 1 {
		t.Fatalf("SC after intervening write = %d, want 1 (failure)", s.X(3))
	}
}

func TestAtomicAMOADD(t *testing.T) {
	s := cpu.New(cpu.Config{})
	e := refenv.New(16)
	e.Mem[0] = 10
	s.SetX(1, 0)
	s.SetX(2, 5)
	in := isa.Instruction{Op: isa.OpAMOADD, Length: 4, Rd: 3, Rs1: 1, Rs2: 2}
	if _, terr := exec.Atomic(s, e, 0, in); terr != nil {
		t.Fatalf("AMOADD trapped: %v", terr)
	}
	if s.X(3) != 10 {
		t.Fatalf("rd (old value) = %d, want 10", s.X(3))
	}
	if e.Mem[0] != 15 {
		t.Fatalf("mem[0] = %d, want 15", e.Mem[0])
	}
}

func TestAtomicMisalignedAddressTraps(t *testing.T) {
	s := cpu.New(cpu.Config{})
	e := refenv.New(16)
	s.SetX(1, 1)
	in := isa.Instruction{Op: isa.OpLR, Length: 4, Rd: 2, Rs1: 1}
	_, terr := exec.Atomic(s, e, 0, in)
	if terr == nil || terr.Cause != env.CauseMisalignedLoad {
		t.Fatalf("got %v, want CauseMisalignedLoad", terr)
	}
}
