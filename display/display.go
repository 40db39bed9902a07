package display

import (
	"fmt"
	"iter"
	"maps"
	"strings"
)

const (
	WIDTH  = 64 // Screen width in pixels.
	HEIGHT = 32 // Screen height in pixels.

	COLOR_BLACK = uint32(0x000000)
	COLOR_RED   = uint32(0xff0000)
)

var _display_defines = map[string]string{
	"SCREEN_WIDTH":  fmt.Sprintf("%v", WIDTH),
	"SCREEN_HEIGHT": fmt.Sprintf("%v", HEIGHT),
}

// Display is the CHIP-8 framebuffer.
type Display struct {
	Grid  [HEIGHT][WIDTH]uint8 // Pixel grid, row-major, each cell 0 or 1.
	Dirty bool                 // Set on any change, cleared by the presenter.

	Foreground uint32 // Packed 0x00RRGGBB for lit pixels.
	Background uint32 // Packed 0x00RRGGBB for unlit pixels.
}

// NewDisplay creates a blank display with red-on-black colours.
func NewDisplay() (disp *Display) {
	disp = &Display{
		Foreground: COLOR_RED,
		Background: COLOR_BLACK,
		Dirty:      true,
	}

	return
}

// Defines for the display.
func (disp *Display) Defines() iter.Seq2[string, string] {
	return maps.All(_display_defines)
}

// Draw XORs a sprite onto the grid at (x, y), wrapping at the edges.
// Each sprite byte is one row, most significant bit leftmost.
// Returns true if any lit pixel was turned off.
func (disp *Display) Draw(x, y int, sprite []byte) (collision bool) {
	for j, row := range sprite {
		py := (y + j) % HEIGHT
		for i := range 8 {
			if row&(0x80>>i) == 0 {
				continue
			}
			px := (x + i) % WIDTH
			cell := &disp.Grid[py][px]
			if *cell == 1 {
				collision = true
			}
			*cell ^= 1
		}
	}

	disp.Dirty = true

	return
}

// Clear turns off every pixel.
func (disp *Display) Clear() {
	clear(disp.Grid[:])
	disp.Dirty = true
}

// Pixel returns true if the pixel at (x, y) is lit. Coordinates wrap.
func (disp *Display) Pixel(x, y int) bool {
	return disp.Grid[y%HEIGHT][x%WIDTH] != 0
}

// RenderBuffer converts the grid to packed RGB, row-major.
// It does not clear Dirty.
func (disp *Display) RenderBuffer() (buffer []uint32) {
	buffer = make([]uint32, 0, WIDTH*HEIGHT)
	for _, row := range disp.Grid {
		for _, cell := range row {
			if cell == 0 {
				buffer = append(buffer, disp.Background)
			} else {
				buffer = append(buffer, disp.Foreground)
			}
		}
	}

	return
}

// String returns the grid as text, '#' for lit and '.' for unlit pixels.
func (disp *Display) String() string {
	var sb strings.Builder
	sb.Grow((WIDTH + 1) * HEIGHT)
	for _, row := range disp.Grid {
		for _, cell := range row {
			if cell == 0 {
				sb.WriteByte('.')
			} else {
				sb.WriteByte('#')
			}
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}
