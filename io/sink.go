// Package io provides the presentation side of the CHIP-8 emulator: frame
// sinks for terminals, windows and tests, plus the binary ROM loader.
package io

// Sink receives rendered frames. A frame is WIDTH x HEIGHT row-major
// packed 0x00RRGGBB pixels, as produced by display.RenderBuffer.
type Sink interface {
	// Present shows a frame. The sink must not retain the slice.
	Present(frame []uint32) error
}

// StepFunc advances the machine by one frame.
type StepFunc func() (done bool, err error)
