package cpu

import (
	"fmt"
)

// Op is a decoded operation.
type Op int

//go:generate go tool stringer -linecomment -type=Op
const (
	OP_HALT        = Op(0)  // halt
	OP_CLS         = Op(1)  // cls
	OP_RET         = Op(2)  // ret
	OP_JP          = Op(3)  // jp
	OP_CALL        = Op(4)  // call
	OP_SE_IMM      = Op(5)  // se
	OP_SNE_IMM     = Op(6)  // sne
	OP_SE_REG      = Op(7)  // se
	OP_LD_IMM      = Op(8)  // ld
	OP_ADD_IMM     = Op(9)  // add
	OP_LD_REG      = Op(10) // ld
	OP_OR          = Op(11) // or
	OP_AND         = Op(12) // and
	OP_XOR         = Op(13) // xor
	OP_ADD_REG     = Op(14) // add
	OP_SUB         = Op(15) // sub
	OP_SHR         = Op(16) // shr
	OP_SUBN        = Op(17) // subn
	OP_SHL         = Op(18) // shl
	OP_SNE_REG     = Op(19) // sne
	OP_LD_I        = Op(20) // ld
	OP_JP_V0       = Op(21) // jp
	OP_RND         = Op(22) // rnd
	OP_DRW         = Op(23) // drw
	OP_ADD_I       = Op(24) // add
	OP_LD_F        = Op(25) // ld
	OP_LD_B        = Op(26) // ld
	OP_LD_MEM_REGS = Op(27) // ld
	OP_LD_REGS_MEM = Op(28) // ld
)

// OP_COUNT is the number of defined operations.
const OP_COUNT = int(OP_LD_REGS_MEM) + 1

// Code is a single 16-bit instruction word.
type Code uint16

// Group returns bits 15-12, the instruction family.
func (code Code) Group() uint8 {
	return uint8((code >> 12) & 0xf)
}

// X returns bits 11-8, a register index.
func (code Code) X() uint8 {
	return uint8((code >> 8) & 0xf)
}

// Y returns bits 7-4, a register index.
func (code Code) Y() uint8 {
	return uint8((code >> 4) & 0xf)
}

// D returns bits 3-0, the sub-opcode discriminator.
// For DRW it is the sprite height.
func (code Code) D() uint8 {
	return uint8(code & 0xf)
}

// Imm8 returns bits 7-0.
func (code Code) Imm8() uint8 {
	return uint8(code & 0xff)
}

// Addr returns bits 11-0.
func (code Code) Addr() uint16 {
	return uint16(code & 0xfff)
}

// Op resolves the instruction word to an operation.
// Exact matches are tested before the group wildcards.
func (code Code) Op() (op Op, err error) {
	d := code.D()

	switch code.Group() {
	case 0x0:
		switch code {
		case 0x0000:
			return OP_HALT, nil
		case 0x00e0:
			return OP_CLS, nil
		case 0x00ee:
			return OP_RET, nil
		}
	case 0x1:
		return OP_JP, nil
	case 0x2:
		return OP_CALL, nil
	case 0x3:
		return OP_SE_IMM, nil
	case 0x4:
		return OP_SNE_IMM, nil
	case 0x5:
		if d == 0 {
			return OP_SE_REG, nil
		}
	case 0x6:
		return OP_LD_IMM, nil
	case 0x7:
		return OP_ADD_IMM, nil
	case 0x8:
		switch d {
		case 0x0:
			return OP_LD_REG, nil
		case 0x1:
			return OP_OR, nil
		case 0x2:
			return OP_AND, nil
		case 0x3:
			return OP_XOR, nil
		case 0x4:
			return OP_ADD_REG, nil
		case 0x5:
			return OP_SUB, nil
		case 0x6:
			return OP_SHR, nil
		case 0x7:
			return OP_SUBN, nil
		case 0xe:
			return OP_SHL, nil
		}
	case 0x9:
		if d == 0 {
			return OP_SNE_REG, nil
		}
	case 0xa:
		return OP_LD_I, nil
	case 0xb:
		return OP_JP_V0, nil
	case 0xc:
		return OP_RND, nil
	case 0xd:
		return OP_DRW, nil
	case 0xf:
		switch code.Imm8() {
		case 0x1e:
			return OP_ADD_I, nil
		case 0x29:
			return OP_LD_F, nil
		case 0x33:
			return OP_LD_B, nil
		case 0x55:
			return OP_LD_MEM_REGS, nil
		case 0x65:
			return OP_LD_REGS_MEM, nil
		}
	}

	err = ErrOpcodeUnimplemented
	return
}

// MakeCode encodes an operation. Operands that the operation does not use
// are ignored.
func MakeCode(op Op, x, y, n uint8, imm uint16) Code {
	xy := (uint16(x&0xf) << 8) | (uint16(y&0xf) << 4)
	nn := imm & 0xff
	nnn := imm & 0xfff

	var word uint16
	switch op {
	case OP_HALT:
		word = 0x0000
	case OP_CLS:
		word = 0x00e0
	case OP_RET:
		word = 0x00ee
	case OP_JP:
		word = 0x1000 | nnn
	case OP_CALL:
		word = 0x2000 | nnn
	case OP_SE_IMM:
		word = 0x3000 | (uint16(x&0xf) << 8) | nn
	case OP_SNE_IMM:
		word = 0x4000 | (uint16(x&0xf) << 8) | nn
	case OP_SE_REG:
		word = 0x5000 | xy
	case OP_LD_IMM:
		word = 0x6000 | (uint16(x&0xf) << 8) | nn
	case OP_ADD_IMM:
		word = 0x7000 | (uint16(x&0xf) << 8) | nn
	case OP_LD_REG:
		word = 0x8000 | xy
	case OP_OR:
		word = 0x8001 | xy
	case OP_AND:
		word = 0x8002 | xy
	case OP_XOR:
		word = 0x8003 | xy
	case OP_ADD_REG:
		word = 0x8004 | xy
	case OP_SUB:
		word = 0x8005 | xy
	case OP_SHR:
		word = 0x8006 | xy
	case OP_SUBN:
		word = 0x8007 | xy
	case OP_SHL:
		word = 0x800e | xy
	case OP_SNE_REG:
		word = 0x9000 | xy
	case OP_LD_I:
		word = 0xa000 | nnn
	case OP_JP_V0:
		word = 0xb000 | nnn
	case OP_RND:
		word = 0xc000 | (uint16(x&0xf) << 8) | nn
	case OP_DRW:
		word = 0xd000 | xy | uint16(n&0xf)
	case OP_ADD_I:
		word = 0xf01e | (uint16(x&0xf) << 8)
	case OP_LD_F:
		word = 0xf029 | (uint16(x&0xf) << 8)
	case OP_LD_B:
		word = 0xf033 | (uint16(x&0xf) << 8)
	case OP_LD_MEM_REGS:
		word = 0xf055 | (uint16(x&0xf) << 8)
	case OP_LD_REGS_MEM:
		word = 0xf065 | (uint16(x&0xf) << 8)
	default:
		panic(fmt.Sprintf("cpu: unknown op %d", int(op)))
	}

	return Code(word)
}

// String returns the assembly language representation of this instruction.
func (code Code) String() (out string) {
	op, err := code.Op()
	if err != nil {
		return fmt.Sprintf(".word 0x%04x", uint16(code))
	}

	x, y := code.X(), code.Y()

	switch op {
	case OP_HALT, OP_CLS, OP_RET:
		out = op.String()
	case OP_JP, OP_CALL:
		out = fmt.Sprintf("%v 0x%03x", op, code.Addr())
	case OP_SE_IMM, OP_SNE_IMM, OP_LD_IMM, OP_ADD_IMM, OP_RND:
		out = fmt.Sprintf("%v v%x, 0x%02x", op, x, code.Imm8())
	case OP_SE_REG, OP_SNE_REG, OP_LD_REG, OP_OR, OP_AND, OP_XOR,
		OP_ADD_REG, OP_SUB, OP_SHR, OP_SUBN, OP_SHL:
		out = fmt.Sprintf("%v v%x, v%x", op, x, y)
	case OP_LD_I:
		out = fmt.Sprintf("%v i, 0x%03x", op, code.Addr())
	case OP_JP_V0:
		out = fmt.Sprintf("%v v0, 0x%03x", op, code.Addr())
	case OP_DRW:
		out = fmt.Sprintf("%v v%x, v%x, %d", op, x, y, code.D())
	case OP_ADD_I:
		out = fmt.Sprintf("%v i, v%x", op, x)
	case OP_LD_F:
		out = fmt.Sprintf("%v f, v%x", op, x)
	case OP_LD_B:
		out = fmt.Sprintf("%v b, v%x", op, x)
	case OP_LD_MEM_REGS:
		out = fmt.Sprintf("%v [i], v%x", op, x)
	case OP_LD_REGS_MEM:
		out = fmt.Sprintf("%v v%x, [i]", op, x)
	}

	return
}
