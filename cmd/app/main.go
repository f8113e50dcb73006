// Live Contours - webcam edge detection
// Grayscale conversion, median denoising and Sobel edges on a live video stream.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/sirupsen/logrus"

	"live-contours/internal/algorithms"
	"live-contours/internal/capture"
	"live-contours/internal/config"
	imageio "live-contours/internal/io"
	"live-contours/internal/metrics"
	"live-contours/internal/pipeline"
)

const (
	AppName    = "Live Contours"
	AppVersion = "1.0.0"
)

const (
	exitOK                = 0
	exitFailure           = 1
	exitCameraUnavailable = -1
)

func main() {
	os.Exit(run())
}

func run() int {
	// Parse command line flags
	debugMode := flag.Bool("debug", false, "Enable debug mode with verbose logging")
	cfgPath := flag.String("config", "", "path to a YAML config file (optional)")
	cameraIndex := flag.Int("camera", -1, "override the camera device index")
	source := flag.String("source", "", "read frames from a video file instead of a camera")
	headless := flag.Bool("headless", false, "run without a window (no key polling)")
	recordPath := flag.String("record", "", "write the processed stream to this video file")
	imagePath := flag.String("image", "", "process a single image file and exit")
	outPath := flag.String("out", "contours.png", "output path for -image")
	listAlgorithms := flag.Bool("algorithms", false, "list available filters and exit")
	flag.Parse()

	if *listAlgorithms {
		printAlgorithms()
		return exitOK
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		return exitFailure
	}
	applyOverrides(cfg, *cameraIndex, *source, *headless, *recordPath)

	logger := initLogger(*debugMode, cfg.Log.Level)
	logger.WithFields(logrus.Fields{
		"version":    AppVersion,
		"debug_mode": *debugMode,
		"config":     *cfgPath,
	}).Info("Starting " + AppName)

	chain, err := pipeline.NewChain(cfg.Pipeline.Steps, logger)
	if err != nil {
		logger.WithError(err).Error("Invalid processing pipeline")
		return exitFailure
	}
	defer chain.Release()

	if *imagePath != "" {
		return runImage(logger, chain, *imagePath, *outPath)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return runCapture(ctx, logger, cfg, chain, openCVDevices())
}

// session is an open frame source as the capture loop sees it
type session interface {
	pipeline.Camera
	FPS() float64
	Source() string
	Close() error
}

type closingDisplay interface {
	pipeline.Display
	Close() error
}

// devices opens the capture source and builds the displays
type devices struct {
	open        func(cfg config.CameraConfig, logger logrus.FieldLogger) (session, error)
	newWindow   func(name string) closingDisplay
	newRecorder func(path, codec string, fps float64, logger logrus.FieldLogger) closingDisplay
}

func openCVDevices() devices {
	return devices{
		open: func(cfg config.CameraConfig, logger logrus.FieldLogger) (session, error) {
			s, err := capture.Open(cfg, logger)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
		newWindow: func(name string) closingDisplay {
			return capture.NewWindow(name)
		},
		newRecorder: func(path, codec string, fps float64, logger logrus.FieldLogger) closingDisplay {
			return capture.NewRecorder(path, codec, fps, logger)
		},
	}
}

// runCapture opens the capture session and displays, runs the loop and releases
// everything before returning the exit code.
func runCapture(ctx context.Context, logger logrus.FieldLogger, cfg *config.Config, chain *pipeline.Chain, dev devices) int {
	src, err := dev.open(cfg.Camera, logger)
	if err != nil {
		logger.WithError(err).Error("Camera could not be opened")
		if errors.Is(err, capture.ErrCameraUnavailable) {
			return exitCameraUnavailable
		}
		return exitFailure
	}
	defer func() {
		if err := src.Close(); err != nil {
			logger.WithError(err).Warn("Closing capture failed")
		}
	}()

	var displays pipeline.Displays
	if !cfg.Window.Headless {
		window := dev.newWindow(cfg.Window.Name)
		defer window.Close()
		displays = append(displays, window)
	}
	if cfg.Record.Path != "" {
		fps := cfg.Record.FPS
		if fps <= 0 {
			fps = src.FPS()
		}
		recorder := dev.newRecorder(cfg.Record.Path, cfg.Record.Codec, fps, logger)
		defer func() {
			if err := recorder.Close(); err != nil {
				logger.WithError(err).Warn("Closing recording failed")
			}
		}()
		displays = append(displays, recorder)
	}

	loop := pipeline.NewLoop(src, displays, chain, pipeline.Options{
		WaitKey:       cfg.WaitKey(),
		StatsInterval: cfg.Stats.IntervalFrames,
	}, logger)

	reason, err := loop.Run(ctx)
	runLog := logger.WithFields(logrus.Fields{
		"source": src.Source(),
		"reason": reason.String(),
	})
	if err != nil {
		runLog.WithError(err).Error("Capture loop failed")
		return exitFailure
	}

	runLog.Info("Application shutting down gracefully")
	return exitOK
}

// runImage runs the chain once over a still image
func runImage(logger logrus.FieldLogger, chain *pipeline.Chain, inPath, outPath string) int {
	loader := imageio.NewImageLoader(logger)

	gray, err := loader.LoadGray(inPath)
	if err != nil {
		logger.WithError(err).Error("Loading image failed")
		return exitFailure
	}

	stats := metrics.NewStats()
	out, err := chain.Run(gray, stats)
	if err != nil {
		logger.WithError(err).Error("Processing image failed")
		return exitFailure
	}

	if err := loader.SaveGray(out, outPath); err != nil {
		logger.WithError(err).Error("Saving image failed")
		return exitFailure
	}

	fields := logrus.Fields(stats.Fields())
	for name, value := range metrics.NewEvaluator().CalculateAll(gray, out) {
		if !math.IsInf(value, 0) && !math.IsNaN(value) {
			fields[name] = value
		}
	}
	logger.WithFields(fields).Info("Image processed")
	return exitOK
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// applyOverrides mutates cfg with CLI flags. Zero values mean "use config".
func applyOverrides(cfg *config.Config, cameraIndex int, source string, headless bool, recordPath string) {
	if cameraIndex >= 0 {
		cfg.Camera.Index = cameraIndex
	}
	if source != "" {
		cfg.Camera.Source = source
	}
	if headless {
		cfg.Window.Headless = true
	}
	if recordPath != "" {
		cfg.Record.Path = recordPath
	}
}

// initLogger initializes the logger with appropriate level
func initLogger(debugMode bool, level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logger.Debug("Debug logging enabled")
		return logger
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
	})

	return logger
}

func printAlgorithms() {
	all := algorithms.GetAllAlgorithms()
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		filter := all[name]
		fmt.Printf("%s - %s: %s\n", name, filter.GetName(), filter.GetDescription())
		for _, p := range filter.GetParameterInfo() {
			fmt.Printf("    %-12s %-5s default=%v  %s\n", p.Name, p.Type, p.Default, p.Description)
		}
	}
}
