// Camera and video file capture backed by OpenCV
package capture

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"live-contours/internal/config"
	"live-contours/internal/core"
	"live-contours/internal/matconv"
)

// ErrCameraUnavailable is returned by Open when the device or file cannot be opened
var ErrCameraUnavailable = errors.New("camera unavailable")

// Session owns an open capture device and the mats frames are decoded into.
// It must be closed with Close once the capture loop is done.
type Session struct {
	capture *gocv.VideoCapture
	frame   gocv.Mat
	gray    gocv.Mat
	source  string
	logger  logrus.FieldLogger
	closed  bool
}

// Open opens the camera at cfg.Index, or the video file cfg.Source when set
func Open(cfg config.CameraConfig, logger logrus.FieldLogger) (*Session, error) {
	var device interface{} = cfg.Index
	source := fmt.Sprintf("device %d", cfg.Index)
	if cfg.UsesFile() {
		device = cfg.Source
		source = cfg.Source
	}

	logger.WithField("source", source).Debug("Opening capture")

	vc, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCameraUnavailable, source, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w: %s", ErrCameraUnavailable, source)
	}

	s := &Session{
		capture: vc,
		frame:   gocv.NewMat(),
		gray:    gocv.NewMat(),
		source:  source,
		logger:  logger.WithField("source", source),
	}

	s.logger.WithFields(logrus.Fields{
		"width":  int(vc.Get(gocv.VideoCaptureFrameWidth)),
		"height": int(vc.Get(gocv.VideoCaptureFrameHeight)),
		"fps":    vc.Get(gocv.VideoCaptureFPS),
	}).Info("Capture opened")

	return s, nil
}

// QueryFrame grabs and decodes the next frame. A failed read or an empty
// frame means the stream has ended.
func (s *Session) QueryFrame() bool {
	if s.closed {
		return false
	}
	if ok := s.capture.Read(&s.frame); !ok {
		return false
	}
	return !s.frame.Empty()
}

// GrayFrame converts the last grabbed frame to grayscale and copies it into dst
func (s *Session) GrayFrame(dst *core.PixelBuffer) error {
	if s.frame.Empty() {
		return fmt.Errorf("no frame grabbed")
	}
	if err := matconv.ToGray(s.frame, &s.gray); err != nil {
		return err
	}
	return matconv.FromMat(dst, s.gray)
}

// FPS reports the frame rate announced by the source, 0 when unknown
func (s *Session) FPS() float64 {
	return s.capture.Get(gocv.VideoCaptureFPS)
}

// Source describes the opened device or file
func (s *Session) Source() string {
	return s.source
}

// Close releases the frame mats and the capture device. It is safe to call twice.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	s.frame.Close()
	s.gray.Close()
	if err := s.capture.Close(); err != nil {
		return fmt.Errorf("release capture: %w", err)
	}

	s.logger.Debug("Capture released")
	return nil
}
