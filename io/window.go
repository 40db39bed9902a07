//go:build !headless

package io

import (
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/ezrec/chip8/display"
)

const (
	WINDOW_SCALE = 10 // Default window pixels per CHIP-8 pixel.
	WINDOW_TPS   = 60 // Step function calls per second.
)

// Window presents frames in a desktop window. The step function is called
// once per ebiten tick; Escape or a finished machine closes the window.
type Window struct {
	Title string
	Scale int
	Step  StepFunc

	mutex  sync.Mutex
	pixels []byte
	image  *ebiten.Image
}

var _ Sink = (*Window)(nil)
var _ ebiten.Game = (*Window)(nil)

// NewWindow creates a window sink. It is not shown until Run is called.
func NewWindow(title string, scale int, step StepFunc) (win *Window, err error) {
	if scale <= 0 {
		scale = WINDOW_SCALE
	}

	win = &Window{
		Title:  title,
		Scale:  scale,
		Step:   step,
		pixels: make([]byte, 4*display.WIDTH*display.HEIGHT),
	}

	return
}

// Present converts a frame to RGBA for the next Draw.
func (win *Window) Present(frame []uint32) (err error) {
	if len(frame) != display.WIDTH*display.HEIGHT {
		err = ErrFrameSize
		return
	}

	win.mutex.Lock()
	defer win.mutex.Unlock()

	for n, rgb := range frame {
		win.pixels[4*n+0] = uint8(rgb >> 16)
		win.pixels[4*n+1] = uint8(rgb >> 8)
		win.pixels[4*n+2] = uint8(rgb)
		win.pixels[4*n+3] = 0xff
	}

	return
}

// Update advances the machine by one step.
func (win *Window) Update() (err error) {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}

	done, err := win.Step()
	if err != nil {
		return
	}

	if done {
		return ebiten.Termination
	}

	return
}

func (win *Window) Draw(screen *ebiten.Image) {
	if win.image == nil {
		win.image = ebiten.NewImage(display.WIDTH, display.HEIGHT)
	}

	win.mutex.Lock()
	win.image.WritePixels(win.pixels)
	win.mutex.Unlock()

	screen.DrawImage(win.image, nil)
}

func (win *Window) Layout(_, _ int) (int, int) {
	return display.WIDTH, display.HEIGHT
}

// Run opens the window and blocks until it is closed.
func (win *Window) Run() (err error) {
	if win.Step == nil {
		err = ErrWindowStepMissing
		return
	}

	ebiten.SetWindowSize(display.WIDTH*win.Scale, display.HEIGHT*win.Scale)
	ebiten.SetWindowTitle(win.Title)
	ebiten.SetWindowResizable(true)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetTPS(WINDOW_TPS)

	err = ebiten.RunGame(win)

	return
}
