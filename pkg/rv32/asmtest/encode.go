// Package asmtest packs RV32 instruction words for tests, the same
// way the teacher's pkg/asm packs RiSC-32 words out of opcode/register/
// immediate fields — except here there is no assembler pipeline behind
// it, just direct field encoders test cases call to build fixture
// words.
package asmtest

// Base opcode values (bits 6:2 of a 32-bit instruction), mirroring
// pkg/rv32/isa/decode.go's unexported bo* constants.
const (
	BoLoad    = 0x00
	BoLoadFP  = 0x01
	BoMiscMem = 0x03
	BoOpImm   = 0x04
	BoAUIPC   = 0x05
	BoStore   = 0x08
	BoStoreFP = 0x09
	BoAMO     = 0x0b
	BoOp      = 0x0c
	BoLUI     = 0x0d
	BoMadd    = 0x10
	BoMsub    = 0x11
	BoNmsub   = 0x12
	BoNmadd   = 0x13
	BoOpFP    = 0x14
	BoBranch  = 0x18
	BoJALR    = 0x19
	BoJAL     = 0x1b
	BoSystem  = 0x1c
)

func base(op uint32) uint32 {
	return (op << 2) | 0b11
}

// RType packs an R-type (register-register ALU) instruction.
func RType(op, funct3, funct7, rd, rs1, rs2 uint32) uint32 {
	return base(op) | rd<<7 | funct3<<12 | rs1<<15 | rs2<<20 | funct7<<25
}

// IType packs an I-type instruction (OP-IMM, LOAD, JALR).
func IType(op, funct3, rd, rs1 uint32, imm int32) uint32 {
	return base(op) | rd<<7 | funct3<<12 | rs1<<15 | (uint32(imm)&0xfff)<<20
}

// ShiftIType packs an OP-IMM shift (SLLI/SRLI/SRAI), whose top 7 bits
// carry funct7 instead of the raw immediate.
func ShiftIType(funct3, funct7, rd, rs1, shamt uint32) uint32 {
	return base(BoOpImm) | rd<<7 | funct3<<12 | rs1<<15 | (shamt&0x1f)<<20 | funct7<<25
}

// SType packs an S-type (STORE) instruction.
func SType(op, funct3, rs1, rs2 uint32, imm int32) uint32 {
	u := uint32(imm) & 0xfff
	return base(op) | (u&0x1f)<<7 | funct3<<12 | rs1<<15 | rs2<<20 | (u>>5)<<25
}

// BType packs a B-type (branch) instruction. imm must be even.
func BType(funct3, rs1, rs2 uint32, imm int32) uint32 {
	u := uint32(imm)
	bit11 := (u >> 11) & 1
	bit12 := (u >> 12) & 1
	bits4_1 := (u >> 1) & 0xf
	bits10_5 := (u >> 5) & 0x3f
	return base(BoBranch) | bit11<<7 | bits4_1<<8 | funct3<<12 | rs1<<15 | rs2<<20 | bits10_5<<25 | bit12<<31
}

// UType packs a U-type instruction (LUI/AUIPC). imm is the full
// 32-bit value with its low 12 bits already zero.
func UType(op, rd uint32, imm int32) uint32 {
	return base(op) | rd<<7 | (uint32(imm) &^ 0xfff)
}

// JType packs a J-type instruction (JAL). imm must be even.
func JType(rd uint32, imm int32) uint32 {
	u := uint32(imm)
	bit20 := (u >> 20) & 1
	bits10_1 := (u >> 1) & 0x3ff
	bit11 := (u >> 11) & 1
	bits19_12 := (u >> 12) & 0xff
	return base(BoJAL) | rd<<7 | bits19_12<<12 | bit11<<20 | bits10_1<<21 | bit20<<31
}

// AMOType packs an AMO (A-extension) instruction.
func AMOType(funct5 uint32, aq, rl bool, rd, rs1, rs2 uint32) uint32 {
	funct7 := funct5<<2 | b2u(aq)<<1 | b2u(rl)
	return base(BoAMO) | rd<<7 | 0b010<<12 | rs1<<15 | rs2<<20 | funct7<<25
}

// CSRType packs a register-operand Zicsr instruction.
func CSRType(funct3, rd, rs1 uint32, csr uint16) uint32 {
	return base(BoSystem) | rd<<7 | funct3<<12 | rs1<<15 | uint32(csr)<<20
}

// CSRIType packs an immediate-operand Zicsr instruction.
func CSRIType(funct3, rd, uimm uint32, csr uint16) uint32 {
	return base(BoSystem) | rd<<7 | funct3<<12 | (uimm&0x1f)<<15 | uint32(csr)<<20
}

// FPRType packs an OP-FP instruction: funct5 is the operation
// selector (funct7>>2), fmt is the 2-bit width selector (00=S,
// 01=D, 11=Q).
func FPRType(funct5, fmt, rm, rd, rs1, rs2 uint32) uint32 {
	funct7 := funct5<<2 | fmt
	return base(BoOpFP) | rd<<7 | rm<<12 | rs1<<15 | rs2<<20 | funct7<<25
}

// FPR4Type packs a fused multiply-add instruction (MADD/MSUB/NMSUB/
// NMADD major opcode selects the variant).
func FPR4Type(op, fmt, rm, rd, rs1, rs2, rs3 uint32) uint32 {
	return base(op) | rd<<7 | rm<<12 | rs1<<15 | rs2<<20 | fmt<<25 | rs3<<27
}

// FPLType packs FLW/FLD/FLQ (funct3 selects width).
func FPLType(funct3, rd, rs1 uint32, imm int32) uint32 {
	return base(BoLoadFP) | rd<<7 | funct3<<12 | rs1<<15 | (uint32(imm)&0xfff)<<20
}

// FPSType packs FSW/FSD/FSQ.
func FPSType(funct3, rs1, rs2 uint32, imm int32) uint32 {
	u := uint32(imm) & 0xfff
	return base(BoStoreFP) | (u&0x1f)<<7 | funct3<<12 | rs1<<15 | rs2<<20 | (u>>5)<<25
}

func b2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// Compressed (16-bit) quadrant helpers, grounded on the field layouts
// pkg/rv32/isa/compressed.go decodes.

// CR packs a CR-format compressed instruction (quadrant 2, register
// forms like C.MV/C.ADD/C.JR/C.JALR).
func CR(op2 uint16, funct4 uint16, rd, rs2 uint16) uint16 {
	return op2 | rd<<7 | rs2<<2 | funct4<<12
}

// CI packs a CI-format compressed instruction (C.ADDI, C.LI, C.LUI,
// C.LWSP, ...). imm6 is the raw 6-bit field split as bit5:bits4-0.
func CI(op2 uint16, funct3 uint16, rd uint16, imm6 uint16) uint16 {
	bit5 := (imm6 >> 5) & 1
	bits4_0 := imm6 & 0x1f
	return op2 | bits4_0<<2 | rd<<7 | bit5<<12 | funct3<<13
}

// CIW packs a CIW-format compressed instruction (C.ADDI4SPN).
func CIW(funct3 uint16, rdPrime uint16, imm8 uint16) uint16 {
	return 0b00 | (rdPrime&0x7)<<2 | imm8<<5 | funct3<<13
}

// CB packs a CB-format branch (C.BEQZ/C.BNEZ). imm8 is the raw 8-bit
// field exactly as compressed.go's decodeCB extracts it (bits 7:5 at
// instruction bits 12:10, bits 4:0 at instruction bits 6:2).
func CB(funct3 uint16, rs1Prime uint16, imm8 uint16) uint16 {
	bottom := (imm8 & 0x1f) << 2
	top := (imm8 & 0xe0) << 5
	return 0b01 | bottom | (rs1Prime&0x7)<<7 | top | funct3<<13
}

// CA packs a CA-format register-register instruction (C.SUB/C.XOR/
// C.OR/C.AND). aluOp is the 2-bit selector at instruction bits 6:5.
func CA(rdPrime, rs2Prime, aluOp uint16) uint16 {
	return 0b01 | (rs2Prime&0x7)<<2 | (aluOp&0b11)<<5 | (rdPrime&0x7)<<7 | 0b11<<10 | 0b100<<13
}

// CJ packs a CJ-format jump (C.J/C.JAL). raw11 is the raw 11-bit
// field exactly as compressed.go's decodeCJ extracts it (instruction
// bits 12:2, before decodeCJExpand's bit shuffle).
func CJ(funct3 uint16, raw11 uint16) uint16 {
	return 0b01 | (raw11&0x7ff)<<2 | funct3<<13
}

// CSS packs a CSS-format stack-relative store (C.SWSP/C.FSDSP/
// C.FSWSP). imm6 is the raw 6-bit field exactly as decodeCSS extracts
// it (instruction bits 12:7), before the per-op scale-and-mask step.
func CSS(funct3 uint16, rs2 uint16, imm6 uint16) uint16 {
	return 0b10 | (rs2&0x1f)<<2 | (imm6&0x3f)<<7 | funct3<<13
}
