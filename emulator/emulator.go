// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"math/rand/v2"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/display"
	"github.com/ezrec/chip8/internal"
	"github.com/ezrec/chip8/io"
)

const (
	LOAD_BASE        = 0x200 // Conventional program load address.
	CYCLES_PER_FRAME = 10    // Default instructions per presented frame.
)

var _emulator_defines = map[string]string{
	"LOAD_BASE": fmt.Sprintf("0x%x", LOAD_BASE),
}

// Emulator state. CPU + display + the program listing.
type Emulator struct {
	Verbose  bool             // If set, enables verbose logging.
	*cpu.Cpu                  // Reference to the CPU simulation.
	Display  *display.Display // Framebuffer attached to the CPU.
	Program  *cpu.Program     // Listing of the loaded program, if assembled.
}

// NewEmulator creates a new emulator with a display and a seeded random
// source attached.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(),
		Display: display.NewDisplay(),
		Program: &cpu.Program{},
	}

	emu.Cpu.Display = emu.Display
	emu.Cpu.Random = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.Concat2(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
		emu.Display.Defines(),
	)
}

// Load resets the machine and loads a binary image at base.
// Memory is cleared and the font is installed at FONT_BASE before the image
// is copied, so an image overlapping the font replaces it.
func (emu *Emulator) Load(image []byte, base uint16) (err error) {
	if int(base)+len(image) > cpu.MEMORY_SIZE {
		err = ErrImageTooLarge
		return
	}

	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()
	clear(emu.Cpu.Memory[:])

	err = emu.Cpu.Load(cpu.FONT_BASE, display.Font[:])
	if err != nil {
		return
	}

	err = emu.Cpu.Load(base, image)
	if err != nil {
		return
	}

	emu.Cpu.Pc = base
	emu.Display.Clear()
	emu.Program = &cpu.Program{}

	if emu.Verbose {
		log.Printf("emulator: loaded %d bytes at 0x%03x", len(image), base)
	}

	return
}

// LoadProgram loads an assembled program at base, keeping its listing for
// source line lookups. Every assembled byte must lie at or above base.
func (emu *Emulator) LoadProgram(prog *cpu.Program, base uint16) (err error) {
	low, high := prog.Span()
	if high > low && low < int(base) {
		err = fmt.Errorf("0x%03x: %w", low, ErrBelowBase)
		return
	}

	err = emu.Load(prog.Binary(base), base)
	if err != nil {
		return
	}

	emu.Program = prog

	return
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	return emu.lineAt(emu.Cpu.Pc)
}

func (emu *Emulator) lineAt(addr uint16) int {
	dbg := emu.Program.Debug(addr)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single instruction. A halt is reported as done.
func (emu *Emulator) Tick() (done bool, err error) {
	emu.Cpu.Verbose = emu.Verbose

	pc := emu.Cpu.Pc
	defer func() {
		if err != nil {
			err = &ErrRuntime{Pc: pc, LineNo: emu.lineAt(pc), Err: err}
		}
	}()

	err = emu.Cpu.Tick()
	if errors.Is(err, cpu.ErrHalt) {
		err = nil
		done = true
		return
	}

	return
}

// Run ticks until the machine halts, fails, the context is done, or limit
// instructions have executed. A limit of zero or less is unlimited.
func (emu *Emulator) Run(ctx context.Context, limit int) (steps int, err error) {
	for limit <= 0 || steps < limit {
		err = ctx.Err()
		if err != nil {
			return
		}

		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}

		steps++
	}

	err = ErrStepLimit

	return
}

// RunFrame executes up to cycles instructions, then presents the display to
// sink if it changed.
func (emu *Emulator) RunFrame(cycles int, sink io.Sink) (done bool, err error) {
	for range cycles {
		done, err = emu.Tick()
		if err != nil {
			return
		}
		if done {
			break
		}
	}

	if sink == nil || !emu.Display.Dirty {
		return
	}

	err = sink.Present(emu.Display.RenderBuffer())
	emu.Display.Dirty = false

	return
}

// Disassemble iterates over the instruction words from low up to high.
func (emu *Emulator) Disassemble(low, high int) iter.Seq2[uint16, cpu.Code] {
	return func(yield func(addr uint16, code cpu.Code) bool) {
		for addr := low; addr+1 < min(high, cpu.MEMORY_SIZE); addr += 2 {
			mem := emu.Cpu.Memory[addr : addr+2]
			if !yield(uint16(addr), cpu.Code(uint16(mem[0])<<8|uint16(mem[1]))) {
				return
			}
		}
	}
}
