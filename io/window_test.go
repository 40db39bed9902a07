//go:build !headless

package io

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/chip8/display"
)

func TestWindow_Present(t *testing.T) {
	assert := assert.New(t)

	win, err := NewWindow("test", 0, nil)
	assert.NoError(err)
	assert.Equal(WINDOW_SCALE, win.Scale)

	disp := display.NewDisplay()
	disp.Draw(1, 0, []byte{0x80})

	err = win.Present(disp.RenderBuffer())
	assert.NoError(err)
	assert.Equal([]byte{0x00, 0x00, 0x00, 0xff}, win.pixels[0:4])
	assert.Equal([]byte{0xff, 0x00, 0x00, 0xff}, win.pixels[4:8])

	err = win.Present(nil)
	assert.ErrorIs(err, ErrFrameSize)

	err = win.Run()
	assert.ErrorIs(err, ErrWindowStepMissing)
}
