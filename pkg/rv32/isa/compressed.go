package isa

// Compressed (C-extension) decoding and expansion into the same
// Instruction variants the 32-bit decoder produces.
// The bit-shuffle patterns for each immediate-field shape (CI, CSS,
// CIW, CL, CS, CB, CJ) are grounded on
// other_examples/d2f191f4_LMMilewski-riscv-emu__rvc.go.go.

const rvcRegOffset = 8 // maps a 3-bit compressed register field to x8..x15

func cRegOffset(field uint16) uint32 {
	return uint32(field) + rvcRegOffset
}

func decodeCR(in uint16) (rdRs1, rs2 uint32) {
	return uint32(in>>7) & 0x1f, uint32(in>>2) & 0x1f
}

func decodeCI(in uint16) (imm uint32, rd uint32) {
	imm = uint32(in>>7&0x20 | in>>2&0x1f)
	rd = uint32(in>>7) & 0x1f
	return
}

func decodeCSS(in uint16) (imm uint32, rs2 uint32) {
	return uint32(in>>7) & 0x3f, uint32(in>>2) & 0x1f
}

func decodeCIW(in uint16) (imm uint32, rd uint32) {
	return uint32(in>>5) & 0xff, cRegOffset(in >> 2 & 0x7)
}

func decodeCL(in uint16) (imm uint32, rs1, rd uint32) {
	imm = uint32(in>>8&0x1c | in>>5&0x3)
	rs1 = cRegOffset(in >> 7 & 0x7)
	rd = cRegOffset(in >> 2 & 0x7)
	return
}

func decodeCS(in uint16) (imm uint32, rs1, rs2 uint32) {
	imm = uint32(in>>8&0x1c | in>>5&0x3)
	rs1 = cRegOffset(in >> 7 & 0x7)
	rs2 = cRegOffset(in >> 2 & 0x7)
	return
}

func decodeCB(in uint16) (imm uint32, rs1 uint32) {
	return uint32(in>>5&0xe0 | in>>2&0x1f), cRegOffset(in >> 7 & 0x7)
}

func decodeShiftCB(in uint16) (shamt uint32, rd uint32) {
	return uint32(in&0x1000>>7 | in>>2&0x1f), cRegOffset(in >> 7 & 0x7)
}

func decodeCJ(in uint16) uint32 {
	return uint32(in>>2) & 0x7ff
}

// DecodeCompressed decodes a 16-bit instruction and expands it to the
// equivalent 32-bit semantics. It returns the illegal instruction
// result if the encoding is reserved, uses an unallocated register
// form, or needs an extension (F/D) that ext does not enable.
func DecodeCompressed(in uint16, ext Extensions) Instruction {
	illegal := Instruction{Op: OpIllegal, Length: 2}
	if in == 0 {
		return illegal // all-zero is always illegal
	}
	quadrant := in & 0x3
	funct3 := in >> 13 & 0x7

	switch quadrant {
	case 0b00:
		switch funct3 {
		case 0b000: // C.ADDI4SPN
			nzuimm, rd := decodeCIW(in)
			if nzuimm == 0 {
				return illegal // reserved: RES nzuimm=0
			}
			imm := nzuimm&0xc0>>2 | nzuimm&0x3c<<4 | nzuimm&0x2<<1 | nzuimm&0x1<<3
			return Instruction{Op: OpADDI, Length: 2, Rd: rd, Rs1: 2, Imm: int32(imm)}
		case 0b001: // C.FLD (D)
			if !ext.D {
				return illegal
			}
			imm, rs1, rd := decodeCL(in)
			imm = (imm<<6 | imm<<1) & 0xf8
			return Instruction{Op: OpFL, Length: 2, Rd: rd, Rs1: rs1, Imm: int32(imm), Width: 64}
		case 0b010: // C.LW
			imm, rs1, rd := decodeCL(in)
			imm = (imm<<5 | imm) & 0x3e << 1
			return Instruction{Op: OpLW, Length: 2, Rd: rd, Rs1: rs1, Imm: int32(imm)}
		case 0b011: // C.FLW (F)
			if !ext.F {
				return illegal
			}
			imm, rs1, rd := decodeCL(in)
			imm = (imm<<5 | imm) & 0x3e << 1
			return Instruction{Op: OpFL, Length: 2, Rd: rd, Rs1: rs1, Imm: int32(imm), Width: 32}
		case 0b101: // C.FSD (D)
			if !ext.D {
				return illegal
			}
			imm, rs1, rs2 := decodeCS(in)
			imm = (imm<<6 | imm<<1) & 0xf8
			return Instruction{Op: OpFS, Length: 2, Rs1: rs1, Rs2: rs2, Imm: int32(imm), Width: 64}
		case 0b110: // C.SW
			imm, rs1, rs2 := decodeCS(in)
			imm = (imm<<5 | imm) << 1 & 0x7c
			return Instruction{Op: OpSW, Length: 2, Rs1: rs1, Rs2: rs2, Imm: int32(imm)}
		case 0b111: // C.FSW (F)
			if !ext.F {
				return illegal
			}
			imm, rs1, rs2 := decodeCS(in)
			imm = (imm<<5 | imm) << 1 & 0x7c
			return Instruction{Op: OpFS, Length: 2, Rs1: rs1, Rs2: rs2, Imm: int32(imm), Width: 32}
		default: // 0b100 reserved
			return illegal
		}
	case 0b01:
		switch funct3 {
		case 0b000: // C.NOP / C.ADDI (rd==0 is a HINT/NOP, still legal)
			imm, rd := decodeCI(in)
			return Instruction{Op: OpADDI, Length: 2, Rd: rd, Rs1: rd, Imm: signExtend(imm, 6)}
		case 0b001: // C.JAL (RV32 only)
			imm := decodeCJExpand(decodeCJ(in))
			return Instruction{Op: OpJAL, Length: 2, Rd: 1, Imm: imm}
		case 0b010: // C.LI
			imm, rd := decodeCI(in)
			return Instruction{Op: OpADDI, Length: 2, Rd: rd, Rs1: 0, Imm: signExtend(imm, 6)}
		case 0b011:
			imm, rd := decodeCI(in)
			if rd == 2 { // C.ADDI16SP
				if imm == 0 {
					return illegal
				}
				shuffled := imm&0x20<<4 | imm&0x10 | imm&0x8<<3 | imm&0x6<<6 | imm&0x1<<5
				return Instruction{Op: OpADDI, Length: 2, Rd: 2, Rs1: 2, Imm: signExtend(shuffled, 10)}
			}
			if imm == 0 { // C.LUI reserved: nzimm==0
				return illegal
			}
			return Instruction{Op: OpLUI, Length: 2, Rd: rd, Imm: signExtend(imm<<12, 18)}
		case 0b100:
			switch in >> 10 & 0x3 {
			case 0b00: // C.SRLI
				shamt, rd := decodeShiftCB(in)
				if shamt == 0 || shamt&0x20 != 0 { // shamt==0 and, on RV32, shamt[5]=1 are reserved
					return illegal
				}
				return Instruction{Op: OpSRLI, Length: 2, Rd: rd, Rs1: rd, Imm: int32(shamt)}
			case 0b01: // C.SRAI
				shamt, rd := decodeShiftCB(in)
				if shamt == 0 || shamt&0x20 != 0 {
					return illegal
				}
				return Instruction{Op: OpSRAI, Length: 2, Rd: rd, Rs1: rd, Imm: int32(shamt)}
			case 0b10: // C.ANDI
				imm, rd := decodeShiftCB(in)
				return Instruction{Op: OpANDI, Length: 2, Rd: rd, Rs1: rd, Imm: signExtend(imm, 6)}
			default: // 0b11: register-register forms
				_, rd, rs2 := decodeCS(in)
				switch in >> 5 & 0x3 {
				case 0b00:
					return Instruction{Op: OpSUB, Length: 2, Rd: rd, Rs1: rd, Rs2: rs2}
				case 0b01:
					return Instruction{Op: OpXOR, Length: 2, Rd: rd, Rs1: rd, Rs2: rs2}
				case 0b10:
					return Instruction{Op: OpOR, Length: 2, Rd: rd, Rs1: rd, Rs2: rs2}
				default:
					return Instruction{Op: OpAND, Length: 2, Rd: rd, Rs1: rd, Rs2: rs2}
				}
			}
		case 0b101: // C.J
			imm := decodeCJExpand(decodeCJ(in))
			return Instruction{Op: OpJAL, Length: 2, Rd: 0, Imm: imm}
		case 0b110: // C.BEQZ
			imm, rs1 := decodeCB(in)
			se := signExtend(imm&0x80<<1|imm&0x60>>2|imm&0x18<<3|imm&0x6|imm&0x1<<5, 9)
			return Instruction{Op: OpBEQ, Length: 2, Rs1: rs1, Rs2: 0, Imm: se}
		default: // 0b111: C.BNEZ
			imm, rs1 := decodeCB(in)
			se := signExtend(imm&0x80<<1|imm&0x60>>2|imm&0x18<<3|imm&0x6|imm&0x1<<5, 9)
			return Instruction{Op: OpBNE, Length: 2, Rs1: rs1, Rs2: 0, Imm: se}
		}
	case 0b10:
		switch funct3 {
		case 0b000: // C.SLLI
			imm, rd := decodeCI(in)
			if in&0x1000 != 0 { // shamt[5]=1 is reserved on RV32
				return illegal
			}
			return Instruction{Op: OpSLLI, Length: 2, Rd: rd, Rs1: rd, Imm: int32(imm)}
		case 0b001: // C.FLDSP (D)
			if !ext.D {
				return illegal
			}
			imm, rd := decodeCI(in)
			if rd == 0 {
				return illegal
			}
			imm = (imm<<6 | imm) & 0x1f8
			return Instruction{Op: OpFL, Length: 2, Rd: rd, Rs1: 2, Imm: int32(imm), Width: 64}
		case 0b010: // C.LWSP
			imm, rd := decodeCI(in)
			if rd == 0 {
				return illegal
			}
			imm = (imm<<6 | imm) & 0xfc
			return Instruction{Op: OpLW, Length: 2, Rd: rd, Rs1: 2, Imm: int32(imm)}
		case 0b011: // C.FLWSP (F)
			if !ext.F {
				return illegal
			}
			imm, rd := decodeCI(in)
			imm = (imm<<6 | imm) & 0xfc
			return Instruction{Op: OpFL, Length: 2, Rd: rd, Rs1: 2, Imm: int32(imm), Width: 32}
		case 0b100:
			rdRs1, rs2 := decodeCR(in)
			bit12 := in&0x1000 != 0
			switch {
			case !bit12 && rs2 == 0: // C.JR
				if rdRs1 == 0 {
					return illegal
				}
				return Instruction{Op: OpJALR, Length: 2, Rd: 0, Rs1: rdRs1, Imm: 0}
			case !bit12: // C.MV
				return Instruction{Op: OpADD, Length: 2, Rd: rdRs1, Rs1: 0, Rs2: rs2}
			case bit12 && rdRs1 == 0 && rs2 == 0: // C.EBREAK
				return Instruction{Op: OpEBREAK, Length: 2}
			case bit12 && rs2 == 0: // C.JALR
				return Instruction{Op: OpJALR, Length: 2, Rd: 1, Rs1: rdRs1, Imm: 0}
			default: // C.ADD
				return Instruction{Op: OpADD, Length: 2, Rd: rdRs1, Rs1: rdRs1, Rs2: rs2}
			}
		case 0b101: // C.FSDSP (D)
			if !ext.D {
				return illegal
			}
			imm, rs2 := decodeCSS(in)
			imm = (imm<<6 | imm) & 0x1f8
			return Instruction{Op: OpFS, Length: 2, Rs1: 2, Rs2: rs2, Imm: int32(imm), Width: 64}
		case 0b110: // C.SWSP
			imm, rs2 := decodeCSS(in)
			imm = (imm<<6 | imm) & 0xfc
			return Instruction{Op: OpSW, Length: 2, Rs1: 2, Rs2: rs2, Imm: int32(imm)}
		default: // C.FSWSP (F)
			if !ext.F {
				return illegal
			}
			imm, rs2 := decodeCSS(in)
			imm = (imm<<6 | imm) & 0xfc
			return Instruction{Op: OpFS, Length: 2, Rs1: 2, Rs2: rs2, Imm: int32(imm), Width: 32}
		}
	default: // quadrant 0b11 means this is not a compressed instruction
		return illegal
	}
	return illegal
}

// decodeCJExpand applies the C.J/C.JAL bit shuffle (offset bits
// 11|4|9:8|10|6|7|3:1|5, per the RISC-V C extension encoding) and
// sign-extends to a full 32-bit immediate.
func decodeCJExpand(imm uint32) int32 {
	shuffled := imm&0x200>>5 | imm&0x40<<4 | imm&0x5a0<<1 | imm&0x10<<3 | imm&0xe | imm&0x1<<5
	return signExtend(shuffled, 12)
}
