// Package display implements the 64x32 monochrome framebuffer of the
// CHIP-8 machine.
//
// Sprites are blitted with XOR and wrap around both edges of the screen.
// The only artifact handed to presentation code is the packed 0x00RRGGBB
// buffer returned by RenderBuffer.
package display
