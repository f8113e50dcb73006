package capture

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"live-contours/internal/core"
	"live-contours/internal/matconv"
)

// DefaultRecordFPS is used when neither the config nor the source give a frame rate
const DefaultRecordFPS = 30.0

// Recorder writes every shown frame to a video file. The writer is opened on
// the first frame, whose size fixes the size of the whole recording.
type Recorder struct {
	path   string
	codec  string
	fps    float64
	writer *gocv.VideoWriter
	color  gocv.Mat
	width  int
	height int
	frames int
	logger logrus.FieldLogger
}

// NewRecorder prepares a recorder; fps <= 0 falls back to DefaultRecordFPS
func NewRecorder(path, codec string, fps float64, logger logrus.FieldLogger) *Recorder {
	if fps <= 0 {
		fps = DefaultRecordFPS
	}
	return &Recorder{
		path:   path,
		codec:  codec,
		fps:    fps,
		color:  gocv.NewMat(),
		logger: logger.WithField("path", path),
	}
}

// Show appends buf to the recording
func (r *Recorder) Show(buf *core.PixelBuffer) error {
	if r.writer == nil {
		writer, err := gocv.VideoWriterFile(r.path, r.codec, r.fps, buf.Width(), buf.Height(), true)
		if err != nil {
			return fmt.Errorf("open video writer %s: %w", r.path, err)
		}
		r.writer = writer
		r.width, r.height = buf.Width(), buf.Height()
		r.logger.WithFields(logrus.Fields{
			"codec":  r.codec,
			"fps":    r.fps,
			"width":  r.width,
			"height": r.height,
		}).Info("Recording started")
	}

	if buf.Width() != r.width || buf.Height() != r.height {
		return fmt.Errorf("frame size changed from %dx%d to %dx%d during recording",
			r.width, r.height, buf.Width(), buf.Height())
	}

	mat, err := matconv.ToMat(buf)
	if err != nil {
		return err
	}
	defer mat.Close()

	if err := gocv.CvtColor(mat, &r.color, gocv.ColorGrayToBGR); err != nil {
		return fmt.Errorf("convert frame %d: %w", r.frames, err)
	}
	if err := r.writer.Write(r.color); err != nil {
		return fmt.Errorf("write frame %d: %w", r.frames, err)
	}
	r.frames++
	return nil
}

// PollKey never reports a key; a recorder has no keyboard
func (r *Recorder) PollKey(time.Duration) (int, bool) {
	return -1, false
}

// Close flushes and closes the file
func (r *Recorder) Close() error {
	r.color.Close()
	if r.writer == nil {
		return nil
	}

	r.logger.WithField("frames", r.frames).Info("Recording finished")
	err := r.writer.Close()
	r.writer = nil
	return err
}
