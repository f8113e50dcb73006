package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// CameraConfig selects the frame source.
// Source, when set, names a video file read instead of the device at Index.
type CameraConfig struct {
	Index  int    `yaml:"index"`  // capture device index (0 = default camera)
	Source string `yaml:"source"` // optional video file path
}

// WindowConfig describes the on-screen display.
type WindowConfig struct {
	Name      string `yaml:"name"`        // window title
	WaitKeyMs int    `yaml:"wait_key_ms"` // bounded wait for a key press per frame
	Headless  bool   `yaml:"headless"`    // no window, no key polling
}

// StepConfig is one filter in the processing chain.
type StepConfig struct {
	Algorithm  string `yaml:"algorithm"`   // registered filter name (median, sobel)
	WindowSize int    `yaml:"window_size"` // neighborhood side length
	Border     string `yaml:"border"`      // clip (default) or replicate
}

// PipelineConfig lists the filters applied to every grayscale frame, in order.
type PipelineConfig struct {
	Steps []StepConfig `yaml:"steps"`
}

// RecordConfig enables writing the displayed frames to a video file.
type RecordConfig struct {
	Path  string  `yaml:"path"`  // empty = recording disabled
	Codec string  `yaml:"codec"` // FourCC, e.g. MJPG
	FPS   float64 `yaml:"fps"`   // 0 = use the source frame rate
}

// StatsConfig controls periodic statistics logging.
type StatsConfig struct {
	IntervalFrames int `yaml:"interval_frames"` // log stats every N frames (0 = default 100, <0 = summary only)
}

// LogConfig controls the logger.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Config aggregates all application configuration.
type Config struct {
	Camera   CameraConfig   `yaml:"camera"`
	Window   WindowConfig   `yaml:"window"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Record   RecordConfig   `yaml:"record"`
	Stats    StatsConfig    `yaml:"stats"`
	Log      LogConfig      `yaml:"log"`
}

// Default returns the configuration used when no file is given:
// camera 0, window "Contours", median(3) then sobel(3), 30 ms key wait.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a YAML file and returns the configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration, fills defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Window.Name == "" {
		c.Window.Name = "Contours"
	}
	if c.Window.WaitKeyMs <= 0 {
		c.Window.WaitKeyMs = 30
	}
	if len(c.Pipeline.Steps) == 0 {
		c.Pipeline.Steps = []StepConfig{
			{Algorithm: "median", WindowSize: 3, Border: "clip"},
			{Algorithm: "sobel", WindowSize: 3, Border: "clip"},
		}
	}
	for i := range c.Pipeline.Steps {
		if c.Pipeline.Steps[i].Border == "" {
			c.Pipeline.Steps[i].Border = "clip"
		}
	}
	if c.Record.Codec == "" {
		c.Record.Codec = "MJPG"
	}
	if c.Stats.IntervalFrames == 0 {
		c.Stats.IntervalFrames = 100
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks values that have no sensible default. Filter window sizes are
// checked against the filter registry when the chain is built.
func (c *Config) Validate() error {
	if c.Camera.Index < 0 {
		return fmt.Errorf("camera.index must be >= 0, got %d", c.Camera.Index)
	}
	for i, step := range c.Pipeline.Steps {
		if strings.TrimSpace(step.Algorithm) == "" {
			return fmt.Errorf("pipeline.steps[%d].algorithm is required", i)
		}
	}
	if len(c.Record.Codec) != 4 {
		return fmt.Errorf("record.codec must be a 4 character FourCC, got %q", c.Record.Codec)
	}
	if c.Record.FPS < 0 {
		return fmt.Errorf("record.fps must be >= 0, got %.2f", c.Record.FPS)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	return nil
}

// WaitKey returns the bounded per-frame key wait.
func (c *Config) WaitKey() time.Duration {
	return time.Duration(c.Window.WaitKeyMs) * time.Millisecond
}

// UsesFile reports whether frames come from a video file rather than a device.
func (c CameraConfig) UsesFile() bool {
	return c.Source != ""
}

// UsesFile reports whether the camera section names a video file.
func (c *Config) UsesFile() bool {
	return c.Camera.UsesFile()
}
