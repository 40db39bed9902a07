//go:build headless

package io

const (
	WINDOW_SCALE = 10
	WINDOW_TPS   = 60
)

// Window is unavailable in headless builds.
type Window struct {
	Title string
	Scale int
	Step  StepFunc
}

var _ Sink = (*Window)(nil)

// NewWindow always fails with ErrWindowUnsupported.
func NewWindow(title string, scale int, step StepFunc) (win *Window, err error) {
	err = ErrWindowUnsupported
	return
}

func (win *Window) Present(frame []uint32) error {
	return ErrWindowUnsupported
}

func (win *Window) Run() error {
	return ErrWindowUnsupported
}
