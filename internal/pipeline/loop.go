package pipeline

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"live-contours/internal/core"
	"live-contours/internal/metrics"
)

// Camera is the frame source of a capture session
type Camera interface {
	// QueryFrame grabs the next frame. False means the stream has ended.
	QueryFrame() bool
	// GrayFrame converts the last grabbed frame to grayscale into dst, resizing dst if needed
	GrayFrame(dst *core.PixelBuffer) error
}

// Display shows processed frames and reports key presses
type Display interface {
	Show(buf *core.PixelBuffer) error
	// PollKey waits up to timeout for a key press
	PollKey(timeout time.Duration) (key int, pressed bool)
}

// Displays fans frames out to several displays
type Displays []Display

func (ds Displays) Show(buf *core.PixelBuffer) error {
	for _, d := range ds {
		if err := d.Show(buf); err != nil {
			return err
		}
	}
	return nil
}

// PollKey polls each display in turn and returns the first key pressed
func (ds Displays) PollKey(timeout time.Duration) (int, bool) {
	for _, d := range ds {
		if key, pressed := d.PollKey(timeout); pressed {
			return key, true
		}
	}
	return -1, false
}

// StopReason tells why Run returned
type StopReason int

const (
	StopError StopReason = iota
	StopKeyPressed
	StopEndOfStream
	StopCanceled
)

func (r StopReason) String() string {
	switch r {
	case StopKeyPressed:
		return "key_pressed"
	case StopEndOfStream:
		return "end_of_stream"
	case StopCanceled:
		return "canceled"
	default:
		return "error"
	}
}

// Options tunes the capture loop
type Options struct {
	WaitKey       time.Duration // bounded wait for a key press per frame
	StatsInterval int           // log stats every N frames; <= 0 logs only the summary
}

// Loop drives capture -> grayscale -> filter chain -> display until a key is
// pressed, the stream ends or the context is canceled.
type Loop struct {
	camera    Camera
	display   Display
	chain     *Chain
	opts      Options
	logger    logrus.FieldLogger
	stats     *metrics.Stats
	evaluator *metrics.Evaluator
}

func NewLoop(camera Camera, display Display, chain *Chain, opts Options, logger logrus.FieldLogger) *Loop {
	return &Loop{
		camera:    camera,
		display:   display,
		chain:     chain,
		opts:      opts,
		logger:    logger,
		stats:     metrics.NewStats(),
		evaluator: metrics.NewEvaluator(),
	}
}

// Stats returns the loop's statistics
func (l *Loop) Stats() *metrics.Stats {
	return l.stats
}

// Run processes frames until a stop condition. End of stream and key presses are
// normal terminations and return a nil error. The chain's buffers are released on
// every return path.
func (l *Loop) Run(ctx context.Context) (reason StopReason, err error) {
	gray := &core.PixelBuffer{}
	defer func() {
		l.chain.Release()
		fields := l.stats.Fields()
		fields["reason"] = reason.String()
		l.logger.WithFields(logrus.Fields(fields)).Info("Capture loop finished")
	}()

	l.logger.WithField("wait_key", l.opts.WaitKey.String()).Info("Capture loop started")

	for {
		if ctx.Err() != nil {
			return StopCanceled, nil
		}

		var ok bool
		_ = l.stats.Time("capture", func() error {
			ok = l.camera.QueryFrame()
			return nil
		})
		if !ok {
			l.logger.Info("End of stream")
			return StopEndOfStream, nil
		}

		if err := l.stats.Time("grayscale", func() error { return l.camera.GrayFrame(gray) }); err != nil {
			return StopError, fmt.Errorf("convert frame to grayscale: %w", err)
		}

		out, err := l.chain.Run(gray, l.stats)
		if err != nil {
			return StopError, fmt.Errorf("process frame %d: %w", l.stats.Frames(), err)
		}

		if err := l.stats.Time("show", func() error { return l.display.Show(out) }); err != nil {
			return StopError, fmt.Errorf("show frame: %w", err)
		}

		l.stats.FrameDone()
		l.logPeriodic(gray, out)

		if key, pressed := l.display.PollKey(l.opts.WaitKey); pressed {
			l.logger.WithField("key", key).Info("Key pressed, stopping")
			return StopKeyPressed, nil
		}
	}
}

func (l *Loop) logPeriodic(gray, out *core.PixelBuffer) {
	if l.opts.StatsInterval <= 0 || l.stats.Frames()%l.opts.StatsInterval != 0 {
		return
	}

	fields := logrus.Fields(l.stats.Fields())
	fields["width"] = gray.Width()
	fields["height"] = gray.Height()
	for name, value := range l.evaluator.CalculateAll(gray, out) {
		// JSON output cannot carry +Inf PSNR
		if math.IsInf(value, 0) || math.IsNaN(value) {
			continue
		}
		fields[name] = value
	}
	l.logger.WithFields(fields).Debug("Capture loop stats")
}
