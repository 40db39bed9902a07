// Package cpu implements the CHIP-8 interpreter and its assembler.
//
// The interpreter has sixteen 8-bit registers (v0-vf, with vf doubling as
// the carry/borrow/shift-out flag), a 16-bit index register I, a program
// counter, 4KiB of memory, and a sixteen entry return stack. Each Tick
// fetches a big-endian instruction word at the program counter, advances the
// program counter by two, and executes it.
//
// The assembler accepts the conventional CHIP-8 mnemonics, with labels,
// equates, data directives, and compile-time expression evaluation.
package cpu
