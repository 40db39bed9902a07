package cpu

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func assemble(t *testing.T, program ...string) (prog *Program) {
	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	if err != nil {
		t.Fatal(err)
	}

	return
}

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Opcodes))
	assert.Equal("0", asm.Equate["LINENO"])
	assert.Nil(prog.Binary(0))
}

func TestAssemblerCallAdd(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"        call twice   ; 0x000",
		"        call twice   ; 0x002",
		"        halt",
		"        .org 0x100",
		"twice:  add v0, v1",
		"        add v0, v1",
		"        ret",
	)

	expected := []Opcode{
		{1, 0x000, []string{"call", "twice"}, []byte{0x21, 0x00}, "twice"},
		{2, 0x002, []string{"call", "twice"}, []byte{0x21, 0x00}, "twice"},
		{3, 0x004, []string{"halt"}, []byte{0x00, 0x00}, ""},
		{5, 0x100, []string{"add", "v0", "v1"}, []byte{0x80, 0x14}, ""},
		{6, 0x102, []string{"add", "v0", "v1"}, []byte{0x80, 0x14}, ""},
		{7, 0x104, []string{"ret"}, []byte{0x00, 0xee}, ""},
	}
	assert.Equal(expected, prog.Opcodes)

	bin := prog.Binary(0)
	assert.Equal(0x106, len(bin))
	assert.Equal([]byte{0x21, 0x00, 0x21, 0x00, 0x00, 0x00}, bin[:6])
	assert.Equal([]byte{0x80, 0x14, 0x80, 0x14, 0x00, 0xee}, bin[0x100:])
}

func TestAssemblerRoundTrip(t *testing.T) {
	assert := assert.New(t)

	var seen [OP_COUNT]bool
	for op := range Op(OP_COUNT) {
		code := MakeCode(op, 0x3, 0xc, 0x7, 0x2a5)
		if op == OP_JP_V0 {
			code = MakeCode(op, 0, 0, 0, 0x2a5)
		}

		decoded, err := code.Op()
		assert.NoError(err, "%v", op)
		assert.Equal(op, decoded, "%v", code)
		seen[decoded] = true

		text := code.String()
		prog := assemble(t, text)
		assert.Equal(1, len(prog.Opcodes), text)
		assert.Equal([]byte{uint8(code >> 8), uint8(code)}, prog.Opcodes[0].Bytes, text)
	}

	for op, ok := range seen {
		assert.True(ok, "%v", Op(op))
	}
}

func TestAssemblerForms(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		line string
		code Code
	}){
		{"ld v3, 0x42", 0x6342},
		{"LD VA, VB", 0x8ab0},
		{"ld i, 0x123", 0xa123},
		{"ld f, v9", 0xf929},
		{"ld b, v9", 0xf933},
		{"ld [i], v5", 0xf555},
		{"ld v5, [i]", 0xf565},
		{"se v1, 7", 0x3107},
		{"se v1, v2", 0x5120},
		{"sne v1, 7", 0x4107},
		{"sne v1, v2", 0x9120},
		{"add v1, -1", 0x71ff},
		{"add v1, v2", 0x8124},
		{"add i, v2", 0xf21e},
		{"jp 0x345", 0x1345},
		{"jp v0, 0x345", 0xb345},
		{"shr v4", 0x8446},
		{"shl v4, v5", 0x845e},
		{"rnd v2, 0b1111", 0xc20f},
		{"drw v1, v2, 15", 0xd12f},
		{"cls", 0x00e0},
	}

	for _, entry := range table {
		prog := assemble(t, entry.line)
		assert.Equal(1, len(prog.Opcodes), entry.line)
		if len(prog.Opcodes) == 1 {
			assert.Equal([]byte{uint8(entry.code >> 8), uint8(entry.code)}, prog.Opcodes[0].Bytes, entry.line)
		}
	}
}

func TestAssemblerData(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		".org 0x200",
		"start: ld i, sprite",
		"       drw v0, v1, 3",
		"       jp start",
		"sprite:",
		"       .byte 0xf0, 0x90, $(0xf0 >> 4)",
		"       .word 0x1234",
	)

	bin := prog.Binary(0x200)
	assert.Equal([]byte{
		0xa2, 0x06,
		0xd0, 0x13,
		0x12, 0x00,
		0xf0, 0x90, 0x0f,
		0x12, 0x34,
	}, bin)

	low, high := prog.Span()
	assert.Equal(0x200, low)
	assert.Equal(0x20b, high)

	// Everything above the base.
	assert.Equal(bin[2:], prog.Binary(0x202))
	assert.Nil(prog.Binary(0x300))
}

func TestAssemblerEquate(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("FONT_BASE", "0x50")

	program := []string{
		".equ COUNT 10",
		".equ REG v7",
		"    ld REG, COUNT",
		"    ld i, FONT_BASE",
		"    ld i, $(FONT_BASE + 5 * COUNT)",
		"    ld v0, $(LINENO)",
		"here:",
		"    jp $(here)",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal([]byte{
		0x67, 0x0a,
		0xa0, 0x50,
		0xa0, 0x82,
		0x60, 0x06,
		0x10, 0x08,
	}, prog.Binary(0))

	// Predefines survive re-parsing; equates do not.
	prog, err = asm.Parse(strings.NewReader("ld i, FONT_BASE"))
	assert.NoError(err)
	assert.Equal([]byte{0xa0, 0x50}, prog.Binary(0))
	_, ok := asm.Equate["COUNT"]
	assert.False(ok)
}

func TestAssemblerDebug(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"; comment line",
		".org 0x200",
		"ld v0, 1",
		"",
		".byte 1, 2, 3",
		"cls",
	)

	dbg := prog.Debug(0x200)
	assert.NotNil(dbg.Opcode)
	assert.Equal(3, dbg.LineNo)
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(0x204)
	assert.NotNil(dbg.Opcode)
	assert.Equal(5, dbg.LineNo)
	assert.Equal(2, dbg.Index)

	dbg = prog.Debug(0x205)
	assert.Equal(6, dbg.LineNo)

	dbg = prog.Debug(0x100)
	assert.Nil(dbg.Opcode)
}

func TestAssemblerErrors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name    string
		program []string
		lineno  int
		err     error
	}){
		{"instruction", []string{"nop"}, 1, ErrInstructionInvalid},
		{"label_missing", []string{"cls", "jp nowhere"}, 2, ErrLabelMissing("nowhere")},
		{"label_dup", []string{"a: cls", "a: cls"}, 2, ErrLabelDuplicate},
		{"equ_syntax", []string{".equ A"}, 1, ErrEquateSyntax},
		{"equ_dup", []string{".equ A 1", ".equ A 2"}, 2, ErrEquateDuplicate},
		{"org_syntax", []string{".org"}, 1, ErrOrgSyntax},
		{"org_range", []string{".org 0x1001"}, 1, ErrValueRange},
		{"byte_range", []string{".byte 256"}, 1, ErrValueRange},
		{"byte_missing", []string{".byte"}, 1, ErrOpcodeValueMissing},
		{"imm_range", []string{"ld v0, 0x100"}, 1, ErrValueRange},
		{"addr_range", []string{"jp 0x1000"}, 1, ErrValueRange},
		{"nibble_range", []string{"drw v0, v1, 16"}, 1, ErrValueRange},
		{"extra", []string{"ret v0"}, 1, ErrOpcodeExtraArgs},
		{"missing", []string{"jp"}, 1, ErrOpcodeValueMissing},
		{"operand", []string{"ld v0, i"}, 1, ErrOperandInvalid},
		{"jp_v1", []string{"jp v1, 0x200"}, 1, ErrOperandInvalid},
		{"number", []string{"ld v0, 0xzz"}, 1, ErrParseNumber("0xzz")},
		{"full", []string{".org 0xfff", "cls"}, 2, ErrMemoryRange},
	}

	for _, entry := range table {
		asm := &Assembler{}
		_, err := asm.Parse(strings.NewReader(strings.Join(entry.program, "\n")))
		assert.ErrorIs(err, entry.err, entry.name)

		var syntax *ErrSyntax
		if assert.True(errors.As(err, &syntax), entry.name) {
			assert.Equal(entry.lineno, syntax.LineNo, entry.name)
		}
	}
}

func TestAssemblerExpressionError(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, err := asm.Parse(strings.NewReader("ld v0, $(1 +)"))
	assert.Error(err)

	_, err = asm.Parse(strings.NewReader("ld v0, $('a')"))
	assert.ErrorIs(err, ErrParseExpression("'a'"))
}
