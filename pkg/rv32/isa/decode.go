package isa

import "github.com/bassosimone/rv32core/pkg/rv32/cpu"

// Extensions reports, for the instruction about to be decoded, which
// optional extensions the environment currently allows. The step
// driver fills this in from Environment.IsExtensionEnabled before
// calling Decode, keeping the decoder itself pure.
type Extensions struct {
	M, A, F, D, Q, C bool
}

// baseOpcode values from RISC-V's opcode map (bits 6:2 of a 32-bit
// instruction), grounded on the funct7|funct3|opcode>>2 keying used by
// other_examples/759cba5a_LMMilewski-riscv-emu__decode.go.go.
const (
	boLoad    = 0x00
	boLoadFP  = 0x01
	boMiscMem = 0x03
	boOpImm   = 0x04
	boAUIPC   = 0x05
	boStore   = 0x08
	boStoreFP = 0x09
	boAMO     = 0x0b
	boOp      = 0x0c
	boLUI     = 0x0d
	boMadd    = 0x10
	boMsub    = 0x11
	boNmsub   = 0x12
	boNmadd   = 0x13
	boOpFP    = 0x14
	boBranch  = 0x18
	boJALR    = 0x19
	boJAL     = 0x1b
	boSystem  = 0x1c
)

func signExtend(v uint32, bits int) int32 {
	shift := 32 - bits
	return int32(v<<uint(shift)) >> uint(shift)
}

// fpWidthFromFmt maps the 2-bit "fmt" field of an OP-FP/*MADD
// instruction to a register width. fmt==01 (D) is only
// legal with width>=64 configured; fmt==11 (Q) only with width==128;
// this function only decodes the bit pattern, leaving legality checks
// to Decode/execution.
func fpWidthFromFmt(fmt uint32) (width int, ok bool) {
	switch fmt {
	case 0b00:
		return 32, true
	case 0b01:
		return 64, true
	case 0b11:
		return 128, true
	default:
		return 0, false // 0b10 (H, half precision) is Zhf, an explicit non-goal
	}
}

// Decode decodes a 32-bit (non-compressed) instruction word. ext
// reports which optional extensions are enabled for this step.
func Decode(word uint32, ext Extensions) Instruction {
	op := (word >> 2) & 0x1f
	rd := (word >> 7) & 0x1f
	funct3 := (word >> 12) & 0x7
	rs1 := (word >> 15) & 0x1f
	rs2 := (word >> 20) & 0x1f
	funct7 := (word >> 25) & 0x7f

	illegal := Instruction{Op: OpIllegal, Length: 4}

	switch op {
	case boLUI:
		return Instruction{Op: OpLUI, Length: 4, Rd: rd, Imm: int32(word & 0xfffff000)}
	case boAUIPC:
		return Instruction{Op: OpAUIPC, Length: 4, Rd: rd, Imm: int32(word & 0xfffff000)}
	case boJAL:
		imm := (word>>11)&0x100000 | word&0xff000 | (word>>9)&0x800 | (word>>20)&0x7fe
		return Instruction{Op: OpJAL, Length: 4, Rd: rd, Imm: signExtend(imm, 21)}
	case boJALR:
		if funct3 != 0 {
			return illegal
		}
		imm := signExtend(word>>20, 12)
		return Instruction{Op: OpJALR, Length: 4, Rd: rd, Rs1: rs1, Imm: imm}
	case boBranch:
		imm := (word>>19)&0x1000 | (word<<4)&0x800 | (word>>20)&0x7e0 | (word>>7)&0x1e
		se := signExtend(imm, 13)
		branchOp := [...]Op{OpBEQ, OpBNE, OpIllegal, OpIllegal, OpBLT, OpBGE, OpBLTU, OpBGEU}[funct3]
		if branchOp == OpIllegal {
			return illegal
		}
		return Instruction{Op: branchOp, Length: 4, Rs1: rs1, Rs2: rs2, Imm: se}
	case boLoad:
		loadOp, ok := map[uint32]Op{0: OpLB, 1: OpLH, 2: OpLW, 4: OpLBU, 5: OpLHU}[funct3]
		if !ok {
			return illegal
		}
		return Instruction{Op: loadOp, Length: 4, Rd: rd, Rs1: rs1, Imm: signExtend(word>>20, 12)}
	case boStore:
		storeOp, ok := map[uint32]Op{0: OpSB, 1: OpSH, 2: OpSW}[funct3]
		if !ok {
			return illegal
		}
		imm := (word>>20)&0xfe0 | (word>>7)&0x1f
		return Instruction{Op: storeOp, Length: 4, Rs1: rs1, Rs2: rs2, Imm: signExtend(imm, 12)}
	case boOpImm:
		imm12 := signExtend(word>>20, 12)
		shamt := rs2 // bits [24:20]
		switch funct3 {
		case 0b000:
			return Instruction{Op: OpADDI, Length: 4, Rd: rd, Rs1: rs1, Imm: imm12}
		case 0b010:
			return Instruction{Op: OpSLTI, Length: 4, Rd: rd, Rs1: rs1, Imm: imm12}
		case 0b011:
			return Instruction{Op: OpSLTIU, Length: 4, Rd: rd, Rs1: rs1, Imm: imm12}
		case 0b100:
			return Instruction{Op: OpXORI, Length: 4, Rd: rd, Rs1: rs1, Imm: imm12}
		case 0b110:
			return Instruction{Op: OpORI, Length: 4, Rd: rd, Rs1: rs1, Imm: imm12}
		case 0b111:
			return Instruction{Op: OpANDI, Length: 4, Rd: rd, Rs1: rs1, Imm: imm12}
		case 0b001:
			if funct7 != 0 {
				return illegal
			}
			return Instruction{Op: OpSLLI, Length: 4, Rd: rd, Rs1: rs1, Imm: int32(shamt)}
		case 0b101:
			switch funct7 {
			case 0b0000000:
				return Instruction{Op: OpSRLI, Length: 4, Rd: rd, Rs1: rs1, Imm: int32(shamt)}
			case 0b0100000:
				return Instruction{Op: OpSRAI, Length: 4, Rd: rd, Rs1: rs1, Imm: int32(shamt)}
			default:
				return illegal
			}
		}
		return illegal
	case boOp:
		key := funct7<<3 | funct3
		switch {
		case funct7 == 0b0000001:
			if !ext.M {
				return illegal
			}
			mulOp, ok := map[uint32]Op{0: OpMUL, 1: OpMULH, 2: OpMULHSU, 3: OpMULHU,
				4: OpDIV, 5: OpDIVU, 6: OpREM, 7: OpREMU}[funct3]
			if !ok {
				return illegal
			}
			return Instruction{Op: mulOp, Length: 4, Rd: rd, Rs1: rs1, Rs2: rs2}
		default:
			rOp, ok := map[uint32]Op{
				0b0000000<<3 | 0: OpADD, 0b0100000<<3 | 0: OpSUB,
				0b0000000<<3 | 1: OpSLL,
				0b0000000<<3 | 2: OpSLT,
				0b0000000<<3 | 3: OpSLTU,
				0b0000000<<3 | 4: OpXOR,
				0b0000000<<3 | 5: OpSRL, 0b0100000<<3 | 5: OpSRA,
				0b0000000<<3 | 6: OpOR,
				0b0000000<<3 | 7: OpAND,
			}[key]
			if !ok {
				return illegal
			}
			return Instruction{Op: rOp, Length: 4, Rd: rd, Rs1: rs1, Rs2: rs2}
		}
	case boMiscMem:
		switch funct3 {
		case 0b000:
			pred := uint8((word >> 24) & 0xf)
			succ := uint8((word >> 20) & 0xf)
			return Instruction{Op: OpFENCE, Length: 4, Pred: pred, Succ: succ}
		case 0b001:
			return Instruction{Op: OpFENCEI, Length: 4}
		default:
			return illegal
		}
	case boSystem:
		switch funct3 {
		case 0b000:
			switch word >> 20 {
			case 0:
				return Instruction{Op: OpECALL, Length: 4}
			case 1:
				return Instruction{Op: OpEBREAK, Length: 4}
			default:
				return illegal
			}
		case 0b001:
			return Instruction{Op: OpCSRRW, Length: 4, Rd: rd, Rs1: rs1, Csr: uint16(word >> 20)}
		case 0b010:
			return Instruction{Op: OpCSRRS, Length: 4, Rd: rd, Rs1: rs1, Csr: uint16(word >> 20)}
		case 0b011:
			return Instruction{Op: OpCSRRC, Length: 4, Rd: rd, Rs1: rs1, Csr: uint16(word >> 20)}
		case 0b101:
			return Instruction{Op: OpCSRRWI, Length: 4, Rd: rd, Imm: int32(rs1), Csr: uint16(word >> 20)}
		case 0b110:
			return Instruction{Op: OpCSRRSI, Length: 4, Rd: rd, Imm: int32(rs1), Csr: uint16(word >> 20)}
		case 0b111:
			return Instruction{Op: OpCSRRCI, Length: 4, Rd: rd, Imm: int32(rs1), Csr: uint16(word >> 20)}
		default:
			return illegal
		}
	case boAMO:
		if !ext.A || funct3 != 0b010 { // only .W (32-bit) AMOs are in scope
			return illegal
		}
		aq := (funct7 & 0b10) != 0
		rl := (funct7 & 0b01) != 0
		amoOp, ok := map[uint32]Op{
			0b00010: OpLR, 0b00011: OpSC, 0b00001: OpAMOSWAP, 0b00000: OpAMOADD,
			0b01100: OpAMOAND, 0b01000: OpAMOOR, 0b00100: OpAMOXOR,
			0b10000: OpAMOMIN, 0b10100: OpAMOMAX, 0b11000: OpAMOMINU, 0b11100: OpAMOMAXU,
		}[funct7>>2]
		if !ok {
			return illegal
		}
		if amoOp == OpLR && rs2 != 0 {
			return illegal
		}
		return Instruction{Op: amoOp, Length: 4, Rd: rd, Rs1: rs1, Rs2: rs2, Aq: aq, Rl: rl}
	case boLoadFP, boStoreFP:
		width := 0
		for _, w := range []int{32, 64, 128} {
			if funct3 == widthToLoadFunct3(w) {
				width = w
			}
		}
		if !fpExtensionEnabled(width, ext) {
			return illegal
		}
		if op == boLoadFP {
			return Instruction{Op: OpFL, Length: 4, Rd: rd, Rs1: rs1, Imm: signExtend(word>>20, 12), Width: width}
		}
		imm := (word>>20)&0xfe0 | (word>>7)&0x1f
		return Instruction{Op: OpFS, Length: 4, Rs1: rs1, Rs2: rs2, Imm: signExtend(imm, 12), Width: width}
	case boMadd, boMsub, boNmadd, boNmsub:
		width, ok := fpWidthFromFmt(funct7 & 0b11)
		if !ok || !fpExtensionEnabled(width, ext) {
			return illegal
		}
		rs3 := (word >> 27) & 0x1f
		rm := cpu.RoundingMode(funct3)
		fmaOp := map[uint32]Op{boMadd: OpFMADD, boMsub: OpFMSUB, boNmsub: OpFNMSUB, boNmadd: OpFNMADD}[op]
		return Instruction{Op: fmaOp, Length: 4, Rd: rd, Rs1: rs1, Rs2: rs2, Rs3: rs3, Rm: rm, Width: width}
	case boOpFP:
		return decodeOpFP(word, rd, funct3, rs1, rs2, funct7, ext)
	default:
		return illegal
	}
}

func widthToLoadFunct3(width int) uint32 {
	switch width {
	case 32:
		return 0b010
	case 64:
		return 0b011
	case 128:
		return 0b100
	default:
		return 0xff
	}
}

func fpExtensionEnabled(width int, ext Extensions) bool {
	switch width {
	case 32:
		return ext.F
	case 64:
		return ext.F && ext.D
	case 128:
		return ext.F && ext.D && ext.Q
	default:
		return false
	}
}

// decodeOpFP decodes the OP-FP major opcode: arithmetic, sqrt, min/max,
// compare, classify, sign-inject, conversions and FMV.
func decodeOpFP(word, rd, funct3, rs1, rs2, funct7 uint32, ext Extensions) Instruction {
	illegal := Instruction{Op: OpIllegal, Length: 4}
	rm := cpu.RoundingMode(funct3)
	fmtBits := funct7 & 0b11
	width, ok := fpWidthFromFmt(fmtBits)
	if !ok || !fpExtensionEnabled(width, ext) {
		return illegal
	}
	switch funct7 >> 2 {
	case 0b00000:
		return Instruction{Op: OpFADD, Length: 4, Rd: rd, Rs1: rs1, Rs2: rs2, Rm: rm, Width: width}
	case 0b00001:
		return Instruction{Op: OpFSUB, Length: 4, Rd: rd, Rs1: rs1, Rs2: rs2, Rm: rm, Width: width}
	case 0b00010:
		return Instruction{Op: OpFMUL, Length: 4, Rd: rd, Rs1: rs1, Rs2: rs2, Rm: rm, Width: width}
	case 0b00011:
		return Instruction{Op: OpFDIV, Length: 4, Rd: rd, Rs1: rs1, Rs2: rs2, Rm: rm, Width: width}
	case 0b01011:
		if rs2 != 0 {
			return illegal
		}
		return Instruction{Op: OpFSQRT, Length: 4, Rd: rd, Rs1: rs1, Rm: rm, Width: width}
	case 0b00100:
		switch funct3 {
		case 0b000:
			return Instruction{Op: OpFSGNJ, Length: 4, Rd: rd, Rs1: rs1, Rs2: rs2, Width: width}
		case 0b001:
			return Instruction{Op: OpFSGNJN, Length: 4, Rd: rd, Rs1: rs1, Rs2: rs2, Width: width}
		case 0b010:
			return Instruction{Op: OpFSGNJX, Length: 4, Rd: rd, Rs1: rs1, Rs2: rs2, Width: width}
		default:
			return illegal
		}
	case 0b00101:
		switch funct3 {
		case 0b000:
			return Instruction{Op: OpFMIN, Length: 4, Rd: rd, Rs1: rs1, Rs2: rs2, Width: width}
		case 0b001:
			return Instruction{Op: OpFMAX, Length: 4, Rd: rd, Rs1: rs1, Rs2: rs2, Width: width}
		default:
			return illegal
		}
	case 0b10100:
		switch funct3 {
		case 0b010:
			return Instruction{Op: OpFEQ, Length: 4, Rd: rd, Rs1: rs1, Rs2: rs2, Width: width}
		case 0b001:
			return Instruction{Op: OpFLT, Length: 4, Rd: rd, Rs1: rs1, Rs2: rs2, Width: width}
		case 0b000:
			return Instruction{Op: OpFLE, Length: 4, Rd: rd, Rs1: rs1, Rs2: rs2, Width: width}
		default:
			return illegal
		}
	case 0b11100:
		if funct3 == 0b001 {
			return Instruction{Op: OpFCLASS, Length: 4, Rd: rd, Rs1: rs1, Width: width}
		}
		if funct3 == 0b000 && width == 32 {
			return Instruction{Op: OpFMVXF, Length: 4, Rd: rd, Rs1: rs1, Width: width}
		}
		return illegal
	case 0b11110:
		if funct3 == 0b000 && width == 32 {
			return Instruction{Op: OpFMVFX, Length: 4, Rd: rd, Rs1: rs1, Width: width}
		}
		return illegal
	case 0b11000:
		switch rs2 {
		case 0:
			return Instruction{Op: OpFCVTWF, Length: 4, Rd: rd, Rs1: rs1, Rm: rm, Width: width}
		case 1:
			return Instruction{Op: OpFCVTWUF, Length: 4, Rd: rd, Rs1: rs1, Rm: rm, Width: width}
		default:
			return illegal
		}
	case 0b11010:
		switch rs2 {
		case 0:
			return Instruction{Op: OpFCVTFW, Length: 4, Rd: rd, Rs1: rs1, Rm: rm, Width: width}
		case 1:
			return Instruction{Op: OpFCVTFWU, Length: 4, Rd: rd, Rs1: rs1, Rm: rm, Width: width}
		default:
			return illegal
		}
	case 0b01000:
		srcWidth, srcOK := fpWidthFromFmt(rs2 & 0b11)
		if !srcOK || srcWidth == width || !fpExtensionEnabled(srcWidth, ext) {
			return illegal
		}
		return Instruction{Op: OpFCVTFF, Length: 4, Rd: rd, Rs1: rs1, Rm: rm, Width: width, Width2: srcWidth}
	default:
		return illegal
	}
}
