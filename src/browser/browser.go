// Package browser starts the visible browser window the agent drives.
// Only the launch and the initial navigation go through the DevTools
// protocol; everything after that is done from pixels.
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const defaultLaunchTimeout = 30 * time.Second

// Options configures the browser process.
type Options struct {
	// ExecPath selects the Chrome/Chromium binary. Empty lets chromedp search
	// the usual install locations.
	ExecPath      string
	LaunchTimeout time.Duration
	WindowWidth   int
	WindowHeight  int
}

// Launcher starts one browser window and keeps it alive until Close.
type Launcher struct {
	opts   Options
	logger *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewLauncher returns a Launcher with the given options.
func NewLauncher(opts Options, logger *zap.Logger) *Launcher {
	if opts.LaunchTimeout <= 0 {
		opts.LaunchTimeout = defaultLaunchTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Launcher{opts: opts, logger: logger.Named("browser")}
}

// Launch opens a new non-headless window on url. The window lives until ctx
// is cancelled or Close is called.
func (l *Launcher) Launch(ctx context.Context, url string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		return fmt.Errorf("browser already launched")
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, l.allocatorOptions()...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	cancel := func() {
		browserCancel()
		allocCancel()
	}

	// The first Run owns the browser process, so it must not use a context
	// that gets cancelled when the navigation finishes.
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	navCtx, navCancel := context.WithTimeout(browserCtx, l.opts.LaunchTimeout)
	defer navCancel()
	if err := chromedp.Run(navCtx, chromedp.Navigate(url)); err != nil {
		cancel()
		return fmt.Errorf("failed to open %s: %w", url, err)
	}

	l.cancel = cancel
	l.logger.Info("Browser window opened", zap.String("url", url))
	return nil
}

// Close shuts the browser down. Safe to call more than once.
func (l *Launcher) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

func (l *Launcher) allocatorOptions() []chromedp.ExecAllocatorOption {
	var opts []chromedp.ExecAllocatorOption
	for _, opt := range chromedp.DefaultExecAllocatorOptions[:] {
		opts = append(opts, opt)
	}
	opts = append(opts,
		chromedp.Flag("headless", false),
		chromedp.Flag("hide-scrollbars", false),
		chromedp.Flag("new-window", true),
		chromedp.Flag("start-maximized", true),
	)
	if l.opts.WindowWidth > 0 && l.opts.WindowHeight > 0 {
		opts = append(opts, chromedp.WindowSize(l.opts.WindowWidth, l.opts.WindowHeight))
	}
	if l.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(l.opts.ExecPath))
	}
	return opts
}
