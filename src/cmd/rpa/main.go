package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pypestream-rpa/src/agent"
	"pypestream-rpa/src/browser"
	"pypestream-rpa/src/config"
	"pypestream-rpa/src/hotkey"
	"pypestream-rpa/src/input"
	"pypestream-rpa/src/ocr"
	"pypestream-rpa/src/report"
	"pypestream-rpa/src/runtimeinit"
	"pypestream-rpa/src/screenshot"
	"pypestream-rpa/src/singleinstance"
)

type cliOptions struct {
	previewURL  string
	workDir     string
	configFile  string
	browserPath string
	verbose     bool
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(os.Args, runAgent)
}

func runWithArgs(args []string, runFn func(context.Context, cliOptions) error) error {
	if len(args) == 0 {
		args = []string{"rpa"}
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts, runFn)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions, runFn func(context.Context, cliOptions) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "rpa <preview-url>",
		Short:         "Drive a Pypestream preview through intake and chat using on-screen text",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := validatePreviewURL(args[0])
			if err != nil {
				return err
			}
			opts.previewURL = u
			return runFn(cmd.Context(), *opts)
		},
	}

	cmd.Flags().StringVar(&opts.workDir, "work-dir", "", "Directory for logs, screenshots and reports (default: current directory)")
	cmd.Flags().StringVar(&opts.configFile, "config", "", "Path to a YAML config file")
	cmd.Flags().StringVar(&opts.browserPath, "browser-path", "", "Chrome/Chromium executable to launch")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Debug-level logging")

	return cmd
}

func validatePreviewURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid preview URL %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid preview URL %q: expected an http(s) address", raw)
	}
	return u.String(), nil
}

func runAgent(parent context.Context, opts cliOptions) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stopSignals := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	rt, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions: config.LoadOptions{
			ConfigFile:          opts.configFile,
			WorkDirOverride:     opts.workDir,
			BrowserPathOverride: opts.browserPath,
		},
		Verbose: opts.verbose,
	})
	if err != nil {
		return err
	}
	defer rt.Close()
	cfg, logger := rt.Config, rt.Logger

	lock, err := singleinstance.Acquire(ctx, cfg.Lock.PortStart, cfg.Lock.PortEnd)
	if err != nil {
		logger.Error("Cannot start run", zap.Error(err))
		return err
	}
	defer lock.Close()
	logger.Debug("Single-instance lock held", zap.Int("port", lock.Port()))

	runCtx, abort := context.WithCancel(ctx)
	defer abort()
	if stop, err := hotkey.Listen(cfg.AbortHotkey, abort, logger); err != nil {
		logger.Warn("Abort hotkey unavailable; use Ctrl+C in this terminal", zap.Error(err))
	} else {
		defer stop()
	}

	launcher := browser.NewLauncher(browser.Options{
		ExecPath:      cfg.Browser.ExecPath,
		LaunchTimeout: cfg.Browser.LaunchTimeout,
		WindowWidth:   cfg.Browser.WindowWidth,
		WindowHeight:  cfg.Browser.WindowHeight,
	}, logger)
	defer launcher.Close()

	display := screenshot.Display{}
	rep := report.New(opts.previewURL)
	a := agent.New(agent.Options{
		PreviewURL:     opts.previewURL,
		ScreenshotsDir: cfg.ScreenshotsDir(),
		PollInterval:   cfg.Timing.PollInterval,
		ChatIdleCycles: cfg.Timing.ChatIdleCycles,
	}, agent.Deps{
		Finder:   ocr.NewFinder(display, rt.Engine, logger),
		Screen:   display,
		Input:    input.NewRobot(cfg.Input.KeyDelay),
		Launcher: launcher,
		Logger:   logger,
		Report:   rep,
	})

	runErr := a.Execute(runCtx)
	rep.Finish(outcome(runErr), runErr)
	if path, err := rep.Write(cfg.LogsDir()); err != nil {
		logger.Warn("Run report not written", zap.Error(err))
	} else {
		logger.Info("Run report written", zap.String("path", path))
	}

	if runErr != nil {
		logger.Error("Run failed", zap.Error(runErr))
	}
	return runErr
}

func outcome(err error) report.Status {
	switch {
	case err == nil:
		return report.StatusPassed
	case errors.Is(err, context.Canceled):
		return report.StatusAborted
	default:
		return report.StatusFailed
	}
}
