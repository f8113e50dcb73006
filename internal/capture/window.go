package capture

import (
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"live-contours/internal/core"
	"live-contours/internal/matconv"
)

// Window shows frames in an OpenCV highgui window and polls its keyboard
type Window struct {
	window *gocv.Window
	name   string
}

// NewWindow opens a named window
func NewWindow(name string) *Window {
	return &Window{window: gocv.NewWindow(name), name: name}
}

// Show displays buf
func (w *Window) Show(buf *core.PixelBuffer) error {
	mat, err := matconv.ToMat(buf)
	if err != nil {
		return fmt.Errorf("window %s: %w", w.name, err)
	}
	defer mat.Close()

	w.window.IMShow(mat)
	return nil
}

// PollKey waits up to timeout for a key press. highgui treats 0 as "wait forever"
// so the wait is at least one millisecond.
func (w *Window) PollKey(timeout time.Duration) (int, bool) {
	ms := int(timeout / time.Millisecond)
	if ms < 1 {
		ms = 1
	}
	key := w.window.WaitKey(ms)
	return key, key >= 0
}

// Close destroys the window
func (w *Window) Close() error {
	return w.window.Close()
}
