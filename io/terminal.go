package io

import (
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/ezrec/chip8/display"
)

const (
	CURSOR_HOME  = "\x1b[H"
	CLEAR_SCREEN = "\x1b[2J"
)

// Terminal renders frames as text, two pixel rows per line, using the
// Unicode half block characters.
type Terminal struct {
	Output     io.Writer // Destination of the rendered text.
	Background uint32    // Pixels of this colour are unlit.
	Columns    int       // Maximum columns to draw; 0 for no limit.

	tty     bool
	started bool
}

var _ Sink = (*Terminal)(nil)

// NewTerminal creates a terminal sink writing to w. If w is a terminal,
// frames are redrawn in place and clipped to its width.
func NewTerminal(w io.Writer) (tm *Terminal) {
	tm = &Terminal{
		Output:     w,
		Background: display.COLOR_BLACK,
	}

	file, ok := w.(*os.File)
	if !ok {
		return
	}

	fd := int(file.Fd())
	if !term.IsTerminal(fd) {
		return
	}

	tm.tty = true
	width, _, err := term.GetSize(fd)
	if err == nil && width > 0 {
		tm.Columns = width
	}

	return
}

// IsTerminal returns true if the output is an interactive terminal.
func (tm *Terminal) IsTerminal() bool {
	return tm.tty
}

// Render returns the text form of a frame.
func (tm *Terminal) Render(frame []uint32) (text string, err error) {
	if len(frame) != display.WIDTH*display.HEIGHT {
		err = ErrFrameSize
		return
	}

	columns := display.WIDTH
	if tm.Columns > 0 {
		columns = min(columns, tm.Columns)
	}

	lit := func(x, y int) bool {
		return frame[y*display.WIDTH+x] != tm.Background
	}

	var sb strings.Builder
	for y := 0; y < display.HEIGHT; y += 2 {
		for x := range columns {
			top, bottom := lit(x, y), lit(x, y+1)
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteRune(' ')
			}
		}
		sb.WriteRune('\n')
	}

	text = sb.String()
	return
}

// Present draws a frame. On a terminal the screen is cleared once, and
// later frames overwrite the previous one.
func (tm *Terminal) Present(frame []uint32) (err error) {
	text, err := tm.Render(frame)
	if err != nil {
		return
	}

	if tm.tty {
		prefix := CURSOR_HOME
		if !tm.started {
			prefix = CLEAR_SCREEN + CURSOR_HOME
			tm.started = true
		}
		text = prefix + text
	}

	_, err = io.WriteString(tm.Output, text)
	return
}
