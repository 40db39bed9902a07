package io

import (
	"fmt"
	"io"
	"iter"
	"maps"

	"github.com/ezrec/chip8/cpu"
)

// Rom is a binary program image and the address it loads at.
type Rom struct {
	Base uint16 // Load address.
	Data []byte // Image bytes.
}

// ReadRom reads a program image to be loaded at base. The image may fill
// memory from base to the end, and no further.
func ReadRom(r io.Reader, base uint16) (rom *Rom, err error) {
	if int(base) >= cpu.MEMORY_SIZE {
		err = ErrRomTooLarge
		return
	}

	limit := int64(cpu.MEMORY_SIZE - int(base))

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return
	}

	if int64(len(data)) > limit {
		err = ErrRomTooLarge
		return
	}

	rom = &Rom{
		Base: base,
		Data: data,
	}

	return
}

// Defines returns an iter of defines describing the image.
func (rom *Rom) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"ROM_BASE": fmt.Sprintf("0x%x", rom.Base),
		"ROM_SIZE": fmt.Sprintf("%v", len(rom.Data)),
	})
}

// End returns one past the last address of the image.
func (rom *Rom) End() int {
	return int(rom.Base) + len(rom.Data)
}
