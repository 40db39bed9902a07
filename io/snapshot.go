package io

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/draw"

	"github.com/ezrec/chip8/display"
)

// Snapshot keeps the most recent frame as an image, for saving as PNG.
type Snapshot struct {
	Scale int         // Output pixels per CHIP-8 pixel; 0 or 1 for none.
	Image *image.RGBA // Last presented frame, unscaled.
}

var _ Sink = (*Snapshot)(nil)

func (snap *Snapshot) Present(frame []uint32) (err error) {
	if len(frame) != display.WIDTH*display.HEIGHT {
		err = ErrFrameSize
		return
	}

	if snap.Image == nil {
		snap.Image = image.NewRGBA(image.Rect(0, 0, display.WIDTH, display.HEIGHT))
	}

	for n, rgb := range frame {
		snap.Image.SetRGBA(n%display.WIDTH, n/display.WIDTH, color.RGBA{
			R: uint8(rgb >> 16),
			G: uint8(rgb >> 8),
			B: uint8(rgb),
			A: 0xff,
		})
	}

	return
}

// Scaled returns the last frame enlarged by Scale, or nil if there is none.
func (snap *Snapshot) Scaled() (img *image.RGBA) {
	if snap.Image == nil {
		return
	}

	scale := max(snap.Scale, 1)
	img = image.NewRGBA(image.Rect(0, 0, display.WIDTH*scale, display.HEIGHT*scale))
	draw.NearestNeighbor.Scale(img, img.Bounds(), snap.Image, snap.Image.Bounds(), draw.Src, nil)

	return
}

// WritePNG encodes the scaled last frame. A blank frame is written if none
// was presented.
func (snap *Snapshot) WritePNG(w io.Writer) (err error) {
	if snap.Image == nil {
		err = snap.Present(make([]uint32, display.WIDTH*display.HEIGHT))
		if err != nil {
			return
		}
	}

	err = png.Encode(w, snap.Scaled())

	return
}
