package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"math/rand/v2"
)

const (
	MEMORY_SIZE = 4096  // Bytes of addressable memory.
	FONT_BASE   = 0x050 // Address of the hexadecimal font glyphs.
	REG_COUNT   = 16    // Number of general purpose registers.
	REG_FLAG    = 0xf   // Register overwritten by carry, borrow and shift-out.
)

var _cpu_defines = map[string]string{
	"MEMORY_SIZE": fmt.Sprintf("0x%x", MEMORY_SIZE),
	"FONT_BASE":   fmt.Sprintf("0x%x", FONT_BASE),
	"STACK_LIMIT": fmt.Sprintf("%v", STACK_LIMIT),
}

// RandomSource supplies the random bits for the rnd instruction.
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	Uint32() uint32
}

// Display is the framebuffer the drawing instructions operate on.
type Display interface {
	Draw(x, y int, sprite []byte) (collision bool)
	Clear()
}

type globalRandom struct{}

func (globalRandom) Uint32() uint32 { return rand.Uint32() }

// Cpu is the CHIP-8 interpreter state.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Display Display      // Optional, required by cls and drw.
	Random  RandomSource // Optional, defaults to the math/rand/v2 global source.

	Pc       uint16             // Program counter.
	I        uint16             // Index register.
	Register [REG_COUNT]uint8   // v0 - vf.
	Stack    Stack              // Return address stack.
	Memory   [MEMORY_SIZE]uint8 // Program and data memory.

	Ticks int // Instructions executed since the last reset.
}

// NewCpu creates a CPU with all state zeroed.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{}

	return
}

// Defines for the cpu.
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset clears the registers, the stack, and the statistics counters.
// Memory is left untouched; that is the loader's business.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Register[:])
	cpu.Stack.Reset()
	cpu.Pc = 0
	cpu.I = 0
	cpu.Ticks = 0
}

// Load copies data into memory at addr.
func (cpu *Cpu) Load(addr uint16, data []byte) (err error) {
	mem, err := cpu.memory(addr, len(data))
	if err != nil {
		return
	}

	copy(mem, data)

	return
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("   pc: %03X\n", cpu.Pc)
	text += fmt.Sprintf("    i: %03X\n", cpu.I)
	for n, val := range cpu.Register {
		text += fmt.Sprintf("   v%X: %02X\n", n, val)
	}
	val, ok := cpu.Stack.Peek()
	if ok {
		text += fmt.Sprintf("stack: %03X (%d)\n", val, cpu.Stack.Sp)
	} else {
		text += "stack: --- (0)\n"
	}

	return
}

// memory returns the n bytes of memory at addr, or ErrMemoryRange if any
// of them is out of range.
func (cpu *Cpu) memory(addr uint16, n int) (mem []uint8, err error) {
	end := int(addr) + n
	if end > MEMORY_SIZE {
		err = ErrMemoryRange
		return
	}

	mem = cpu.Memory[addr:end]
	return
}

// Fetch reads the big-endian instruction word at the program counter.
func (cpu *Cpu) Fetch() (code Code, err error) {
	mem, err := cpu.memory(cpu.Pc, 2)
	if err != nil {
		return
	}

	code = Code(uint16(mem[0])<<8 | uint16(mem[1]))
	return
}

// Tick executes a single instruction cycle.
func (cpu *Cpu) Tick() (err error) {
	code, err := cpu.Fetch()
	if err != nil {
		return
	}

	err = cpu.Execute(code)

	return
}

// skipIf advances past the next instruction when cond holds.
func (cpu *Cpu) skipIf(cond bool) {
	if cond {
		cpu.Pc += 2
	}
}

// flag sets vf to 1 if set, 0 otherwise.
func (cpu *Cpu) flag(set bool) {
	if set {
		cpu.Register[REG_FLAG] = 1
	} else {
		cpu.Register[REG_FLAG] = 0
	}
}

// Execute executes a single decoded instruction.
// The program counter is advanced past the instruction before it runs.
func (cpu *Cpu) Execute(code Code) (err error) {
	defer func() {
		if err != nil && err != ErrHalt {
			err = errors.Join(ErrOpcode(code), err)
		}
	}()

	if cpu.Verbose {
		log.Printf("%03x: %v", cpu.Pc, code)
	}

	cpu.Pc += 2

	op, err := code.Op()
	if err != nil {
		return
	}

	reg := &cpu.Register
	x, y := code.X(), code.Y()
	vx, vy := reg[x], reg[y]

	switch op {
	case OP_HALT:
		return ErrHalt
	case OP_CLS:
		if cpu.Display == nil {
			return ErrDisplayMissing
		}
		cpu.Display.Clear()
	case OP_RET:
		addr, ok := cpu.Stack.Pop()
		if !ok {
			return ErrStackEmpty
		}
		cpu.Pc = addr
	case OP_JP:
		cpu.Pc = code.Addr()
	case OP_CALL:
		if !cpu.Stack.Push(cpu.Pc) {
			return ErrStackFull
		}
		cpu.Pc = code.Addr()
	case OP_SE_IMM:
		cpu.skipIf(vx == code.Imm8())
	case OP_SNE_IMM:
		cpu.skipIf(vx != code.Imm8())
	case OP_SE_REG:
		cpu.skipIf(vx == vy)
	case OP_LD_IMM:
		reg[x] = code.Imm8()
	case OP_ADD_IMM:
		reg[x] = vx + code.Imm8()
	case OP_LD_REG:
		reg[x] = vy
	case OP_OR:
		reg[x] = vx | vy
	case OP_AND:
		reg[x] = vx & vy
	case OP_XOR:
		reg[x] = vx ^ vy
	case OP_ADD_REG:
		sum := uint16(vx) + uint16(vy)
		reg[x] = uint8(sum)
		cpu.flag(sum > 0xff)
	case OP_SUB:
		// vf is set when a borrow occurs.
		reg[x] = vx - vy
		cpu.flag(vy > vx)
	case OP_SHR:
		reg[x] = vy >> 1
		reg[REG_FLAG] = vy & 1
	case OP_SUBN:
		// vf is cleared when a borrow occurs.
		reg[x] = vy - vx
		cpu.flag(vx <= vy)
	case OP_SHL:
		reg[x] = vy << 1
		reg[REG_FLAG] = vy >> 7
	case OP_SNE_REG:
		cpu.skipIf(vx != vy)
	case OP_LD_I:
		cpu.I = code.Addr()
	case OP_JP_V0:
		cpu.Pc = uint16(reg[0]) + code.Addr()
	case OP_RND:
		random := cpu.Random
		if random == nil {
			random = globalRandom{}
		}
		reg[x] = uint8(random.Uint32()) & code.Imm8()
	case OP_DRW:
		if cpu.Display == nil {
			return ErrDisplayMissing
		}
		var sprite []uint8
		sprite, err = cpu.memory(cpu.I, int(code.D()))
		if err != nil {
			return
		}
		cpu.flag(cpu.Display.Draw(int(vx), int(vy), sprite))
	case OP_ADD_I:
		cpu.I += uint16(vx)
	case OP_LD_F:
		cpu.I = FONT_BASE + 5*uint16(vx&0xf)
	case OP_LD_B:
		var mem []uint8
		mem, err = cpu.memory(cpu.I, 3)
		if err != nil {
			return
		}
		mem[0] = vx / 100
		mem[1] = (vx / 10) % 10
		mem[2] = vx % 10
	case OP_LD_MEM_REGS:
		var mem []uint8
		mem, err = cpu.memory(cpu.I, int(x)+1)
		if err != nil {
			return
		}
		copy(mem, reg[:x+1])
	case OP_LD_REGS_MEM:
		var mem []uint8
		mem, err = cpu.memory(cpu.I, int(x)+1)
		if err != nil {
			return
		}
		copy(reg[:x+1], mem)
	default:
		return ErrOpcodeUnimplemented
	}

	cpu.Ticks++

	return
}
