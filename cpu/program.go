package cpu

import (
	"iter"
)

// Opcode is a line of assembled source with the bytes it produced.
type Opcode struct {
	LineNo    int      // Source line number.
	Addr      uint16   // Memory address of the first byte.
	Words     []string // Source words, mnemonic first.
	Bytes     []byte   // Generated bytes.
	LinkLabel string   // Label to patch into the low 12 bits, if any.
}

// Program is the output of the assembler.
type Program struct {
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
	Index int // Byte offset of the address into the opcode.
}

// Debug finds the source line that generated the byte at addr.
// The returned Opcode is nil if no line did.
func (prog *Program) Debug(addr uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if addr >= op.Addr && int(addr) < int(op.Addr)+len(op.Bytes) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(addr - op.Addr),
			}
			break
		}
	}

	return
}

// Span returns the lowest address used and one past the highest.
func (prog *Program) Span() (low, high int) {
	low = MEMORY_SIZE
	for _, op := range prog.Opcodes {
		if len(op.Bytes) == 0 {
			continue
		}
		low = min(low, int(op.Addr))
		high = max(high, int(op.Addr)+len(op.Bytes))
	}
	if high == 0 {
		low = 0
	}

	return
}

// Binary returns the memory image starting at base. Bytes assembled below
// base are dropped; gaps are zero filled.
func (prog *Program) Binary(base uint16) (bin []byte) {
	_, high := prog.Span()
	if high <= int(base) {
		return
	}

	bin = make([]byte, high-int(base))
	for addr, value := range prog.Bytes() {
		if addr < base {
			continue
		}
		bin[addr-base] = value
	}

	return
}

// Bytes iterates over every assembled byte and its address.
func (prog *Program) Bytes() iter.Seq2[uint16, byte] {
	return func(yield func(addr uint16, value byte) bool) {
		for _, op := range prog.Opcodes {
			for n, value := range op.Bytes {
				if !yield(op.Addr+uint16(n), value) {
					return
				}
			}
		}
	}
}
