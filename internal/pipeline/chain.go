// Sequential filter chain over grayscale frames
package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"live-contours/internal/algorithms"
	"live-contours/internal/config"
	"live-contours/internal/core"
	"live-contours/internal/metrics"
)

// ErrEmptyChain is returned when no processing step is configured
var ErrEmptyChain = errors.New("pipeline has no processing steps")

// ProcessingStep represents one configured filter
type ProcessingStep struct {
	Algorithm  string
	WindowSize int
	Border     algorithms.Border
	filter     algorithms.Filter
}

// Chain applies its steps in order. It owns one output buffer per step; the buffers
// are sized on the first frame and reused until Release.
type Chain struct {
	steps   []ProcessingStep
	outputs []*core.PixelBuffer
	logger  logrus.FieldLogger
}

// NewChain validates steps against the filter registry and builds the chain.
// An unknown algorithm or unsupported window size is rejected here, before any frame is read.
func NewChain(steps []config.StepConfig, logger logrus.FieldLogger) (*Chain, error) {
	if len(steps) == 0 {
		return nil, ErrEmptyChain
	}

	c := &Chain{
		steps:   make([]ProcessingStep, 0, len(steps)),
		outputs: make([]*core.PixelBuffer, 0, len(steps)),
		logger:  logger,
	}

	for i, sc := range steps {
		border, err := algorithms.ParseBorder(sc.Border)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, sc.Algorithm, err)
		}

		filter, ok := algorithms.New(sc.Algorithm, border)
		if !ok {
			return nil, fmt.Errorf("step %d: unknown algorithm: %s", i, sc.Algorithm)
		}

		if err := filter.Validate(sc.WindowSize); err != nil {
			logger.WithFields(logrus.Fields{
				"step":        i,
				"algorithm":   sc.Algorithm,
				"window_size": sc.WindowSize,
			}).Warn("Rejected filter parameters")
			return nil, fmt.Errorf("step %d (%s): %w", i, sc.Algorithm, err)
		}

		c.steps = append(c.steps, ProcessingStep{
			Algorithm:  sc.Algorithm,
			WindowSize: sc.WindowSize,
			Border:     border,
			filter:     filter,
		})
		c.outputs = append(c.outputs, &core.PixelBuffer{})

		logger.WithFields(logrus.Fields{
			"step":        i,
			"algorithm":   sc.Algorithm,
			"window_size": sc.WindowSize,
			"border":      border.String(),
		}).Debug("Processing step added")
	}

	return c, nil
}

// Steps returns a copy of the configured steps
func (c *Chain) Steps() []ProcessingStep {
	return append([]ProcessingStep(nil), c.steps...)
}

// Run feeds src through every step and returns the last step's output buffer.
// The returned buffer is owned by the chain and overwritten by the next Run.
// When stats is non-nil each step's duration is recorded under its algorithm name.
func (c *Chain) Run(src *core.PixelBuffer, stats *metrics.Stats) (*core.PixelBuffer, error) {
	if c.outputs == nil {
		return nil, fmt.Errorf("chain already released")
	}

	in := src
	for i, step := range c.steps {
		out := c.outputs[i]
		if !out.SameSize(in) {
			if err := out.Reset(in.Width(), in.Height()); err != nil {
				return nil, fmt.Errorf("allocate %s output: %w", step.Algorithm, err)
			}
			c.logger.WithFields(logrus.Fields{
				"algorithm": step.Algorithm,
				"width":     in.Width(),
				"height":    in.Height(),
			}).Debug("Allocated step buffer")
		}

		start := time.Now()
		if err := step.filter.Apply(in, out, step.WindowSize); err != nil {
			c.logger.WithError(err).WithField("algorithm", step.Algorithm).Warn("Filter rejected call")
			return nil, fmt.Errorf("%s: %w", step.Algorithm, err)
		}
		if stats != nil {
			stats.Observe(step.Algorithm, time.Since(start))
		}

		in = out
	}

	return in, nil
}

// Release drops the step buffers; the chain cannot be run afterwards
func (c *Chain) Release() {
	c.outputs = nil
}
