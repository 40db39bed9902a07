package io

import (
	"errors"

	"github.com/ezrec/chip8/translate"
)

var f = translate.From

var (
	ErrRomTooLarge       = errors.New(f("rom too large"))
	ErrFrameSize         = errors.New(f("frame size mismatch"))
	ErrWindowUnsupported = errors.New(f("window output not supported in this build"))
	ErrWindowStepMissing = errors.New(f("window step function missing"))
)
