package runtimeinit

import (
	"fmt"
	"image"
	"os"

	"go.uber.org/zap"

	"pypestream-rpa/src/config"
	"pypestream-rpa/src/logutil"
	"pypestream-rpa/src/ocr"
	"pypestream-rpa/src/screenshot"
)

type Options struct {
	LoadOptions config.LoadOptions
	// Verbose forces debug-level logging regardless of config.
	Verbose bool
}

// Runtime is everything a run needs before the browser opens.
type Runtime struct {
	Config *config.Config
	Logger *zap.Logger
	Engine *ocr.Tesseract
}

func Bootstrap(opts Options) (*Runtime, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.Verbose {
		cfg.Logger.Level = "debug"
	}

	for _, dir := range []string{cfg.WorkDir, cfg.LogsDir(), cfg.ScreenshotsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	logger, err := logutil.Setup(cfg.Logger, cfg.LogsDir())
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	logger.Info("Configuration loaded",
		zap.String("work_dir", cfg.WorkDir),
		zap.Duration("poll_interval", cfg.Timing.PollInterval),
		zap.Int("chat_idle_cycles", cfg.Timing.ChatIdleCycles),
		zap.Duration("key_delay", cfg.Input.KeyDelay))

	if err := logDisplay(logger, screenshot.GetDisplayBounds); err != nil {
		logutil.Sync(logger)
		return nil, err
	}

	engine, err := ocr.NewTesseract(ocr.TesseractOptions{
		Language:       cfg.OCR.Language,
		TessdataPrefix: cfg.OCR.TessdataPrefix,
	})
	if err != nil {
		logutil.Sync(logger)
		return nil, fmt.Errorf("OCR engine unavailable: %w", err)
	}
	logger.Info("OCR engine ready", zap.String("tesseract", engine.Version()), zap.String("language", cfg.OCR.Language))

	return &Runtime{Config: cfg, Logger: logger, Engine: engine}, nil
}

// logDisplay reports the display the agent reads and clicks on. Click
// coordinates are only meaningful when one is attached.
func logDisplay(logger *zap.Logger, bounds func() (image.Rectangle, error)) error {
	r, err := bounds()
	if err != nil {
		logger.Error("No display to drive", zap.Error(err))
		return fmt.Errorf("display unavailable: %w", err)
	}
	logger.Info("Primary display",
		zap.Int("x", r.Min.X),
		zap.Int("y", r.Min.Y),
		zap.Int("width", r.Dx()),
		zap.Int("height", r.Dy()))
	return nil
}

// Close releases the OCR engine and flushes the logger.
func (r *Runtime) Close() {
	if r.Engine != nil {
		_ = r.Engine.Close()
	}
	logutil.Sync(r.Logger)
}
