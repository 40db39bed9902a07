package cpu

import (
	"errors"

	"github.com/ezrec/chip8/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrHalt           = errors.New(f("halt"))
	ErrStackEmpty     = errors.New(f("stack underflow"))
	ErrStackFull      = errors.New(f("stack overflow"))
	ErrMemoryRange    = errors.New(f("memory access out of range"))
	ErrDisplayMissing = errors.New(f("no display attached"))

	// Instruction decode errors
	ErrOpcodeUnimplemented = errors.New(f("unimplemented opcode"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrOrgSyntax          = errors.New(f(".org syntax"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrOperandInvalid     = errors.New(f("operand invalid"))
	ErrValueRange         = errors.New(f("value out of range"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
)

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

// ErrOpcode identifies the instruction word that failed.
type ErrOpcode Code

func (eo ErrOpcode) Error() string {
	return f("opcode 0x%04x (%v)", uint16(eo), Code(eo).String())
}

func (eo ErrOpcode) Is(err error) bool {
	code, ok := err.(ErrOpcode)
	return ok && code == eo
}

// ErrSyntax locates an assembler error in the source text.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
