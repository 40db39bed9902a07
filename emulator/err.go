package emulator

import (
	"errors"

	"github.com/ezrec/chip8/translate"
)

var f = translate.From

var (
	ErrImageTooLarge = errors.New(f("image does not fit in memory"))
	ErrStepLimit     = errors.New(f("step limit reached"))
	ErrBelowBase     = errors.New(f("program assembled below the load address"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Pc     uint16 // Address of the failing instruction.
	LineNo int    // Source line, if the program was assembled.
	Err    error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo == 0 {
		return f("0x%03x %v", err.Pc, err.Err)
	}
	return f("line %d (0x%03x) %v", err.LineNo, err.Pc, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
