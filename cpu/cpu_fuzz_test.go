package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func FuzzCpu(f *testing.F) {
	for group := range 0x10 {
		f.Add(uint16(group<<12), uint8(0), uint16(0x200), uint8(0))
		f.Add(uint16(group<<12|0x0fff), uint8(0xff), uint16(0xffe), uint8(STACK_LIMIT))
		f.Add(uint16(group<<12|0x0123), uint8(0x80), uint16(0x300), uint8(1))
	}
	f.Add(uint16(0x00ee), uint8(0), uint16(0), uint8(0))
	f.Add(uint16(0x00e0), uint8(0), uint16(0), uint8(0))

	f.Fuzz(func(t *testing.T, opcode uint16, fill uint8, index uint16, depth uint8) {
		assert := assert.New(t)

		code := Code(opcode)

		cpu := loadCodes(0x200, code)
		cpu.Display = &fakeDisplay{}
		cpu.Random = fixedRandom(0x5a5a5a5a)
		cpu.I = index
		for n := range cpu.Register {
			cpu.Register[n] = fill + uint8(n)
		}
		for n := range min(int(depth), STACK_LIMIT) {
			cpu.Stack.Push(uint16(0x400 + 2*n))
		}
		sp := cpu.Stack.Sp

		_, decode_err := code.Op()

		err := cpu.Tick()

		assert.LessOrEqual(cpu.Stack.Sp, STACK_LIMIT)
		assert.GreaterOrEqual(cpu.Stack.Sp, 0)
		assert.LessOrEqual(cpu.Stack.Sp-sp, 1)
		assert.LessOrEqual(sp-cpu.Stack.Sp, 1)

		if decode_err != nil {
			assert.ErrorIs(err, ErrOpcodeUnimplemented)
			assert.Equal(uint16(0x202), cpu.Pc)
			return
		}

		switch {
		case err == nil:
			assert.Equal(1, cpu.Ticks)
		case err == ErrHalt:
			assert.Equal(Code(0), code)
			assert.Equal(uint16(0x202), cpu.Pc)
		default:
			assert.True(errors.Is(err, ErrOpcode(code)), "%v", err)
			assert.False(errors.Is(err, ErrOpcode(code^0x8000)), "%v", err)
			assert.True(errors.Is(err, ErrStackFull) ||
				errors.Is(err, ErrStackEmpty) ||
				errors.Is(err, ErrMemoryRange), "%v", err)
			assert.Equal(0, cpu.Ticks)
		}
	})
}
