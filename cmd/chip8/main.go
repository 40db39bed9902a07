// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/emulator"
	"github.com/ezrec/chip8/io"
)

func main() {
	var compile string
	var base uint
	var limit int
	var cycles int
	var output string
	var disassemble bool
	var snapshot string
	var verbose bool

	flag.StringVar(&compile, "c", "", ".asm file to assemble")
	flag.UintVar(&base, "b", emulator.LOAD_BASE, "Load address")
	flag.IntVar(&limit, "n", 0, "Instruction limit, 0 for none")
	flag.IntVar(&cycles, "cycles", emulator.CYCLES_PER_FRAME, "Instructions per frame")
	flag.StringVar(&output, "o", "window", "Output: term, window or none")
	flag.BoolVar(&disassemble, "d", false, "Disassemble the image, do not execute")
	flag.StringVar(&snapshot, "s", "", "Save the final screen as a .png")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if base >= cpu.MEMORY_SIZE {
		log.Fatalf("%v: load address 0x%x out of range", os.Args[0], base)
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose

	var end int
	if len(compile) != 0 {
		if flag.NArg() != 0 {
			log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
		}

		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm := &cpu.Assembler{Verbose: verbose}
		for key, value := range emu.Defines() {
			asm.Predefine(key, value)
		}
		prog, err := asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}

		err = emu.LoadProgram(prog, uint16(base))
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		_, end = prog.Span()
	} else {
		if flag.NArg() != 1 {
			log.Fatalf("%v: expected a single ROM file, or -c", os.Args[0])
		}
		romfile := flag.Arg(0)

		inf, err := os.Open(romfile)
		if err != nil {
			log.Fatalf("%v: %v", romfile, err)
		}
		defer inf.Close()

		rom, err := io.ReadRom(inf, uint16(base))
		if err != nil {
			log.Fatalf("%v: %v", romfile, err)
		}

		err = emu.Load(rom.Data, rom.Base)
		if err != nil {
			log.Fatalf("%v: %v", romfile, err)
		}
		end = rom.End()
	}

	if disassemble {
		for addr, code := range emu.Disassemble(int(base), end) {
			fmt.Printf("%03x: %04x  %v\n", addr, uint16(code), code)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	step := func(sink io.Sink) io.StepFunc {
		return func() (done bool, err error) {
			if err = ctx.Err(); err != nil {
				return
			}
			done, err = emu.RunFrame(cycles, sink)
			if limit > 0 && emu.Cpu.Ticks >= limit {
				done = true
			}
			return
		}
	}

	var err error
	switch output {
	case "none":
		_, err = emu.Run(ctx, limit)
		if err == emulator.ErrStepLimit {
			err = nil
		}
	case "term":
		terminal := io.NewTerminal(os.Stdout)
		next := step(terminal)
		ticker := time.NewTicker(time.Second / io.WINDOW_TPS)
		defer ticker.Stop()
		for done := false; !done && err == nil; done, err = next() {
			<-ticker.C
		}
	case "window":
		var win *io.Window
		win, err = io.NewWindow("CHIP-8", io.WINDOW_SCALE, nil)
		if err != nil {
			break
		}
		win.Step = step(win)
		err = win.Run()
	default:
		log.Fatalf("%v: unknown output '%v'", os.Args[0], output)
	}

	if err != nil && err != context.Canceled {
		log.Fatal(err)
	}

	if verbose {
		log.Printf("%d instructions\n%v", emu.Cpu.Ticks, emu.Cpu)
	}

	if len(snapshot) != 0 {
		snap := &io.Snapshot{Scale: io.WINDOW_SCALE}
		err = snap.Present(emu.Display.RenderBuffer())
		if err != nil {
			log.Fatalf("%v: %v", snapshot, err)
		}

		ouf, err := os.Create(snapshot)
		if err != nil {
			log.Fatalf("%v: %v", snapshot, err)
		}
		defer ouf.Close()

		err = snap.WritePNG(ouf)
		if err != nil {
			log.Fatalf("%v: %v", snapshot, err)
		}
	}
}
