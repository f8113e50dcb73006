package main

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"live-contours/internal/capture"
	"live-contours/internal/config"
	"live-contours/internal/core"
	"live-contours/internal/pipeline"
)

type fakeSession struct {
	frames int
	closed int
}

func (s *fakeSession) QueryFrame() bool {
	if s.frames == 0 {
		return false
	}
	s.frames--
	return true
}

func (s *fakeSession) GrayFrame(dst *core.PixelBuffer) error {
	if err := dst.Reset(4, 3); err != nil {
		return err
	}
	dst.Fill(60)
	return nil
}

func (s *fakeSession) FPS() float64 { return 25 }
func (s *fakeSession) Source() string { return "fake" }

func (s *fakeSession) Close() error {
	s.closed++
	return nil
}

type fakeWindow struct {
	shown   int
	keyAt   int // frame number whose poll reports a key; 0 never
	closed  int
	created bool
}

func (w *fakeWindow) Show(*core.PixelBuffer) error {
	w.shown++
	return nil
}

func (w *fakeWindow) PollKey(time.Duration) (int, bool) {
	if w.keyAt > 0 && w.shown == w.keyAt {
		return 'q', true
	}
	return -1, false
}

func (w *fakeWindow) Close() error {
	w.closed++
	return nil
}

func fakeDevices(sess *fakeSession, openErr error, win, rec *fakeWindow) devices {
	return devices{
		open: func(config.CameraConfig, logrus.FieldLogger) (session, error) {
			if openErr != nil {
				return nil, openErr
			}
			return sess, nil
		},
		newWindow: func(string) closingDisplay {
			win.created = true
			return win
		},
		newRecorder: func(_, _ string, fps float64, _ logrus.FieldLogger) closingDisplay {
			rec.created = true
			return rec
		},
	}
}

func newTestChain(t *testing.T) *pipeline.Chain {
	t.Helper()
	logger, _ := test.NewNullLogger()
	chain, err := pipeline.NewChain(config.Default().Pipeline.Steps, logger)
	require.NoError(t, err)
	return chain
}

func TestRunCapture_CameraUnavailable(t *testing.T) {
	logger, hook := test.NewNullLogger()
	chain := newTestChain(t)
	win, rec := &fakeWindow{}, &fakeWindow{}
	openErr := fmt.Errorf("%w: device 0", capture.ErrCameraUnavailable)

	code := runCapture(context.Background(), logger, config.Default(), chain, fakeDevices(nil, openErr, win, rec))

	assert.Equal(t, exitCameraUnavailable, code)
	assert.Equal(t, -1, code)
	assert.False(t, win.created, "no display is built without a camera")
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)

	// The loop never ran, so the chain still owns its buffers.
	src, err := core.NewPixelBuffer(3, 3)
	require.NoError(t, err)
	_, err = chain.Run(src, nil)
	assert.NoError(t, err)
}

func TestRunCapture_OtherOpenError(t *testing.T) {
	logger, _ := test.NewNullLogger()
	code := runCapture(context.Background(), logger, config.Default(), newTestChain(t),
		fakeDevices(nil, errors.New("boom"), &fakeWindow{}, &fakeWindow{}))
	assert.Equal(t, exitFailure, code)
}

func TestRunCapture_ReleasesOnEveryStop(t *testing.T) {
	tests := []struct {
		name    string
		frames  int
		keyAt   int
		wantLog string
	}{
		{"end of stream", 3, 0, "end_of_stream"},
		{"key pressed", 10, 2, "key_pressed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, hook := test.NewNullLogger()
			sess := &fakeSession{frames: tt.frames}
			win, rec := &fakeWindow{keyAt: tt.keyAt}, &fakeWindow{}
			cfg := config.Default()
			cfg.Record.Path = "out.avi"
			chain := newTestChain(t)

			code := runCapture(context.Background(), logger, cfg, chain, fakeDevices(sess, nil, win, rec))

			assert.Equal(t, exitOK, code)
			assert.Equal(t, 1, sess.closed)
			assert.Equal(t, 1, win.closed)
			assert.Equal(t, 1, rec.closed)
			assert.Equal(t, win.shown, rec.shown)

			entry := hook.LastEntry()
			require.NotNil(t, entry)
			assert.Equal(t, tt.wantLog, entry.Data["reason"])
			assert.Equal(t, "fake", entry.Data["source"])

			_, err := chain.Run(&core.PixelBuffer{}, nil)
			assert.Error(t, err, "chain buffers are released")
		})
	}
}

func TestRunCapture_HeadlessCanceled(t *testing.T) {
	logger, _ := test.NewNullLogger()
	sess := &fakeSession{frames: 100}
	win := &fakeWindow{}
	cfg := config.Default()
	cfg.Window.Headless = true

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	code := runCapture(ctx, logger, cfg, newTestChain(t), fakeDevices(sess, nil, win, &fakeWindow{}))
	assert.Equal(t, exitOK, code)
	assert.False(t, win.created)
	assert.Equal(t, 1, sess.closed)
	assert.Equal(t, 100, sess.frames)
}

func TestApplyOverrides(t *testing.T) {
	cfg := config.Default()
	applyOverrides(cfg, -1, "", false, "")
	assert.Equal(t, config.Default(), cfg)

	applyOverrides(cfg, 2, "clip.mp4", true, "out.avi")
	assert.Equal(t, 2, cfg.Camera.Index)
	assert.True(t, cfg.UsesFile())
	assert.True(t, cfg.Window.Headless)
	assert.Equal(t, "out.avi", cfg.Record.Path)
}

func TestInitLogger(t *testing.T) {
	debug := initLogger(true, "error")
	assert.Equal(t, logrus.DebugLevel, debug.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, debug.Formatter)

	warn := initLogger(false, "warn")
	assert.Equal(t, logrus.WarnLevel, warn.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, warn.Formatter)

	assert.Equal(t, logrus.InfoLevel, initLogger(false, "loud").GetLevel())
}
