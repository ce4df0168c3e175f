package exec_test

import (
	"math"
	"testing"

	"github.com/bassosimone/rv32core/pkg/rv32/cpu"
	"github.com/bassosimone/rv32core/pkg/rv32/env"
	"github.com/bassosimone/rv32core/pkg/rv32/exec"
	"github.com/bassosimone/rv32core/pkg/rv32/isa"
	"github.com/bassosimone/rv32core/pkg/rv32/refenv"
)

func newFPState(width cpu.FPWidth) *cpu.State {
	return cpu.New(cpu.Config{FPWidth: width})
}

func setF32(s *cpu.State, reg uint32, f float32) {
	s.SetFRaw(reg, cpu.BoxF32(math.Float32bits(f), s.Config.FPWidth))
}

func getF32(s *cpu.State, reg uint32) float32 {
	v, _ := cpu.UnboxF32(s.FRaw(reg), s.Config.FPWidth)
	return math.Float32frombits(v)
}

func TestFPAddSingle(t *testing.T) {
	s := newFPState(cpu.FP32)
	setF32(s, 1, 1.0)
	setF32(s, 2, float32(math.Pow(2, -24)))
	in := isa.Instruction{Op: isa.OpFADD, Length: 4, Rd: 3, Rs1: 1, Rs2: 2, Rm: cpu.RNE, Width: 32}
	next, terr := exec.FP(s, refenv.New(16), 0x1000, in)
	if terr != nil {
		t.Fatalf("unexpected trap: %v", terr)
	}
	if next != 0x1004 {
		t.Fatalf("next = %#x, want 0x1004", next)
	}
	if getF32(s, 3) != 1.0 {
		t.Fatalf("x3 = %v, want 1.0", getF32(s, 3))
	}
	if s.Flags()&cpu.FlagNX == 0 {
		t.Fatalf("expected NX flag set")
	}
}

func TestFPDivByZeroSetsDZ(t *testing.T) {
	s := newFPState(cpu.FP32)
	setF32(s, 1, 1.0)
	setF32(s, 2, 0.0)
	in := isa.Instruction{Op: isa.OpFDIV, Length: 4, Rd: 3, Rs1: 1, Rs2: 2, Rm: cpu.RNE, Width: 32}
	if _, terr := exec.FP(s, refenv.New(16), 0, in); terr != nil {
		t.Fatalf("unexpected trap: %v", terr)
	}
	if !math.IsInf(float64(getF32(s, 3)), 1) {
		t.Fatalf("x3 = %v, want +Inf", getF32(s, 3))
	}
	if s.Flags()&cpu.FlagDZ == 0 {
		t.Fatalf("expected DZ flag set")
	}
}

func TestFPLoadStoreRoundTrip(t *testing.T) {
	s := newFPState(cpu.FP64)
	e := refenv.New(16)
	s.SetX(1, 0)
	setF32(s, 2, 3.5)
	// Actually exercise a 64-bit store/load using FMV-free path via FSD/FLD width 64.
	store := isa.Instruction{Op: isa.OpFS, Length: 4, Rs1: 1, Rs2: 2, Imm: 0, Width: 64}
	if _, terr := exec.FP(s, e, 0, store); terr != nil {
		t.Fatalf("store trapped: %v", terr)
	}
	load := isa.Instruction{Op: isa.OpFL, Length: 4, Rd: 3, Rs1: 1, Imm: 0, Width: 64}
	if _, terr := exec.FP(s, e, 0, load); terr != nil {
		t.Fatalf("load trapped: %v", terr)
	}
	if s.FRaw(3) != s.FRaw(2) {
		t.Fatalf("round-tripped register mismatch: %+v != %+v", s.FRaw(3), s.FRaw(2))
	}
}

func TestFPClassify(t *testing.T) {
	s := newFPState(cpu.FP32)
	setF32(s, 1, float32(math.Inf(-1)))
	in := isa.Instruction{Op: isa.OpFCLASS, Length: 4, Rd: 2, Rs1: 1, Width: 32}
	if _, terr := exec.FP(s, refenv.New(16), 0, in); terr != nil {
		t.Fatalf("unexpected trap: %v", terr)
	}
	if s.X(2) != 1<<0 { // ClassNegInf
		t.Fatalf("fclass = %#x, want 0x1", s.X(2))
	}
}

func TestFPSignInject(t *testing.T) {
	s := newFPState(cpu.FP32)
	setF32(s, 1, 2.0)
	setF32(s, 2, -1.0)
	in := isa.Instruction{Op: isa.OpFSGNJ, Length: 4, Rd: 3, Rs1: 1, Rs2: 2, Width: 32}
	if _, terr := exec.FP(s, refenv.New(16), 0, in); terr != nil {
		t.Fatalf("unexpected trap: %v", terr)
	}
	if getF32(s, 3) != -2.0 {
		t.Fatalf("x3 = %v, want -2.0", getF32(s, 3))
	}
}

func TestFPMinMaxWithNaN(t *testing.T) {
	s := newFPState(cpu.FP32)
	setF32(s, 1, float32(math.NaN()))
	setF32(s, 2, 5.0)
	in := isa.Instruction{Op: isa.OpFMIN, Length: 4, Rd: 3, Rs1: 1, Rs2: 2, Width: 32}
	if _, terr := exec.FP(s, refenv.New(16), 0, in); terr != nil {
		t.Fatalf("unexpected trap: %v", terr)
	}
	if getF32(s, 3) != 5.0 {
		t.Fatalf("x3 = %v, want 5.0 (NaN operand ignored)", getF32(s, 3))
	}
}

func TestFPCompareLTSignalsOnQuietNaN(t *testing.T) {
	s := newFPState(cpu.FP32)
	setF32(s, 1, float32(math.NaN()))
	setF32(s, 2, 1.0)
	in := isa.Instruction{Op: isa.OpFLT, Length: 4, Rd: 3, Rs1: 1, Rs2: 2, Width: 32}
	if _, terr := exec.FP(s, refenv.New(16), 0, in); terr != nil {
		t.Fatalf("unexpected trap: %v", terr)
	}
	if s.X(3) != 0 {
		t.Fatalf("x3 = %d, want 0 (NaN compares false)", s.X(3))
	}
	if s.Flags()&cpu.FlagNV == 0 {
		t.Fatalf("expected NV flag set for FLT with a NaN operand")
	}
}

func TestFPConvertWToFAndBack(t *testing.T) {
	s := newFPState(cpu.FP32)
	s.SetX(1, 0xffffffd6) // -42
	toF := isa.Instruction{Op: isa.OpFCVTFW, Length: 4, Rd: 2, Rs1: 1, Rm: cpu.RNE, Width: 32}
	if _, terr := exec.FP(s, refenv.New(16), 0, toF); terr != nil {
		t.Fatalf("unexpected trap: %v", terr)
	}
	if getF32(s, 2) != -42.0 {
		t.Fatalf("f2 = %v, want -42.0", getF32(s, 2))
	}
	toW := isa.Instruction{Op: isa.OpFCVTWF, Length: 4, Rd: 3, Rs1: 2, Rm: cpu.RNE, Width: 32}
	if _, terr := exec.FP(s, refenv.New(16), 0, toW); terr != nil {
		t.Fatalf("unexpected trap: %v", terr)
	}
	if int32(s.X(3)) != -42 {
		t.Fatalf("x3 = %d, want -42", int32(s.X(3)))
	}
}

func TestFPFusedMultiplyAdd(t *testing.T) {
	s := newFPState(cpu.FP32)
	setF32(s, 1, 2.0)
	setF32(s, 2, 3.0)
	setF32(s, 3, 1.0)
	in := isa.Instruction{Op: isa.OpFMADD, Length: 4, Rd: 4, Rs1: 1, Rs2: 2, Rs3: 3, Rm: cpu.RNE, Width: 32}
	if _, terr := exec.FP(s, refenv.New(16), 0, in); terr != nil {
		t.Fatalf("unexpected trap: %v", terr)
	}
	if getF32(s, 4) != 7.0 {
		t.Fatalf("x4 = %v, want 7.0 (2*3+1)", getF32(s, 4))
	}
}

func TestFPSqrtAccurateAndIllegalMode(t *testing.T) {
	s := newFPState(cpu.FP32)
	setF32(s, 1, 4.0)
	e := refenv.New(16)
	e.Sqrt = env.SqrtAccurate
	in := isa.Instruction{Op: isa.OpFSQRT, Length: 4, Rd: 2, Rs1: 1, Rm: cpu.RNE, Width: 32}
	if _, terr := exec.FP(s, e, 0, in); terr != nil {
		t.Fatalf("unexpected trap: %v", terr)
	}
	if getF32(s, 2) != 2.0 {
		t.Fatalf("x2 = %v, want 2.0", getF32(s, 2))
	}
	e.Sqrt = env.SqrtIllegal
	_, terr := exec.FP(s, e, 0, in)
	if terr == nil || terr.Cause != env.CauseIllegalInstruction {
		t.Fatalf("got %v, want CauseIllegalInstruction", terr)
	}
}

func TestFPMoveXWPreservesBits(t *testing.T) {
	s := newFPState(cpu.FP32)
	s.SetX(1, 0x3f800000) // 1.0f
	toF := isa.Instruction{Op: isa.OpFMVFX, Length: 4, Rd: 2, Rs1: 1, Width: 32}
	if _, terr := exec.FP(s, refenv.New(16), 0, toF); terr != nil {
		t.Fatalf("unexpected trap: %v", terr)
	}
	toX := isa.Instruction{Op: isa.OpFMVXF, Length: 4, Rd: 3, Rs1: 2, Width: 32}
	if _, terr := exec.FP(s, refenv.New(16), 0, toX); terr != nil {
		t.Fatalf("unexpected trap: %v", terr)
	}
	if s.X(3) != 0x3f800000 {
		t.Fatalf("x3 = %#x, want 0x3f800000", s.X(3))
	}
}

func TestFPReservedRoundingModeTraps(t *testing.T) {
	s := newFPState(cpu.FP32)
	setF32(s, 1, 1.0)
	setF32(s, 2, 2.0)
	in := isa.Instruction{Op: isa.OpFADD, Length: 4, Rd: 3, Rs1: 1, Rs2: 2, Rm: 0b101, Width: 32}
	_, terr := exec.FP(s, refenv.New(16), 0, in)
	if terr == nil || terr.Cause != env.CauseIllegalInstruction {
		t.Fatalf("got %v, want CauseIllegalInstruction for reserved rm", terr)
	}
}
