// Package agent drives the Pypestream preview from screen pixels: it waits
// for known text to appear, clicks it, types canned values and sleeps.
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pypestream-rpa/src/input"
	"pypestream-rpa/src/ocr"
	"pypestream-rpa/src/report"
	"pypestream-rpa/src/screenshot"
)

// ErrEntryNotFound aborts a run when the entry button never shows up.
var ErrEntryNotFound = errors.New("engage button not found")

// Finder locates text on the current screen.
type Finder interface {
	Find(targets []string) (*ocr.Match, error)
}

// Launcher opens the browser on the preview URL.
type Launcher interface {
	Launch(ctx context.Context, url string) error
}

// Clock is the agent's only synchronization primitive.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// RealClock sleeps on the wall clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Options holds per-run settings.
type Options struct {
	PreviewURL     string
	ScreenshotsDir string
	PollInterval   time.Duration
	ChatIdleCycles int
}

// Deps are the agent's collaborators. Clock, Logger and Report may be nil.
type Deps struct {
	Finder   Finder
	Screen   ocr.Screen
	Input    input.Driver
	Launcher Launcher
	Clock    Clock
	Logger   *zap.Logger
	Report   *report.Run
}

// Agent runs the hardcoded intake and chat script once.
type Agent struct {
	opts     Options
	finder   Finder
	screen   ocr.Screen
	input    input.Driver
	launcher Launcher
	clock    Clock
	logger   *zap.Logger
	report   *report.Run
}

// New builds an Agent. Zero option values fall back to 1s polling and a
// 15-cycle chat idle threshold.
func New(opts Options, deps Deps) *Agent {
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if opts.ChatIdleCycles <= 0 {
		opts.ChatIdleCycles = 15
	}
	if deps.Clock == nil {
		deps.Clock = RealClock{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Agent{
		opts:     opts,
		finder:   deps.Finder,
		screen:   deps.Screen,
		input:    deps.Input,
		launcher: deps.Launcher,
		clock:    deps.Clock,
		logger:   deps.Logger.Named("agent"),
		report:   deps.Report,
	}
}

// Execute runs the whole script: launch, entry gate, intake, review,
// progress check and chat loop. Only a missing entry button, a failed
// launch or a cancelled ctx end it early.
func (a *Agent) Execute(ctx context.Context) error {
	a.logger.Info("Launching browser", zap.String("url", a.opts.PreviewURL))
	if err := a.launcher.Launch(ctx, a.opts.PreviewURL); err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}
	if err := a.clock.Sleep(ctx, launchWait); err != nil {
		return err
	}

	a.logger.Info("Attempting to click Engage with us")
	if !a.AttemptClick(ctx, EngageTargets, "Engage with us button", engageTimeout) {
		if err := ctx.Err(); err != nil {
			return err
		}
		a.logger.Error("Engage button not found. Aborting.")
		return ErrEntryNotFound
	}
	if err := a.clock.Sleep(ctx, afterEngageWait); err != nil {
		return err
	}

	a.HandleStructuredIntake(ctx)
	a.HandleReviewScreen(ctx)
	if err := a.clock.Sleep(ctx, afterReviewWait); err != nil {
		return err
	}

	a.CheckProgress(ctx)
	a.HandleChatMode(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}

	a.logger.Info("Run completed")
	return nil
}

// WaitForText polls the screen until one of targets shows up or timeout
// elapses. It always looks at least once, even for tiny timeouts. The
// error is non-nil only when ctx ends.
func (a *Agent) WaitForText(ctx context.Context, targets []string, timeout time.Duration) (*ocr.Match, error) {
	deadline := a.clock.Now().Add(timeout)
	for {
		if m := a.lookup(targets); m != nil {
			return m, nil
		}
		if err := a.clock.Sleep(ctx, a.opts.PollInterval); err != nil {
			return nil, err
		}
		if !a.clock.Now().Before(deadline) {
			return nil, nil
		}
	}
}

// AttemptClick waits for targets and clicks the match. A miss is logged
// and leaves a diagnostic screenshot; it never retries further.
func (a *Agent) AttemptClick(ctx context.Context, targets []string, description string, timeout time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	a.logger.Info("Looking for element", zap.String("element", description))

	m, err := a.WaitForText(ctx, targets, timeout)
	if err != nil {
		return false
	}
	if m == nil {
		a.logger.Warn("Unable to find element", zap.String("element", description))
		path := a.saveScreenshot("missing_" + description)
		a.record(report.Step{Name: description, Status: report.StatusMissed, Screenshot: path})
		return false
	}

	a.click(m, 0, 0)
	a.logger.Info("Clicked element",
		zap.String("element", description),
		zap.String("text", m.Text),
		zap.Float64("confidence", m.Confidence))
	a.record(report.Step{Name: description, Status: report.StatusPassed, Text: m.Text, Confidence: m.Confidence})
	a.pause(ctx, afterClickWait)
	return true
}

// FillField looks for a label once, clicks to its right and types value.
func (a *Agent) FillField(ctx context.Context, labels []string, value, description string) bool {
	if ctx.Err() != nil {
		return false
	}
	m := a.lookup(labels)
	if m == nil {
		a.logger.Warn("Field label not found", zap.String("field", description))
		a.record(report.Step{Name: description, Status: report.StatusMissed, Detail: "label not found"})
		return false
	}

	a.click(m, fieldOffsetX, 0)
	a.pause(ctx, beforeTypeWait)
	a.input.Type(value)
	a.logger.Info("Entered field", zap.String("field", description))
	a.record(report.Step{Name: description, Status: report.StatusPassed, Text: m.Text, Confidence: m.Confidence})
	return true
}

// ProceedNext clicks whichever next/continue/proceed button is visible.
func (a *Agent) ProceedNext(ctx context.Context) bool {
	return a.AttemptClick(ctx, NextTargets, "next/proceed button", nextTimeout)
}

// CheckProgress samples the change score a few times and saves a
// screenshot when the UI looks frozen. The first sample is only a baseline.
func (a *Agent) CheckProgress(ctx context.Context) {
	haveBaseline := false
	for i := 0; i < progressPolls; i++ {
		if ctx.Err() != nil {
			return
		}
		score, err := a.changeScore(ctx)
		if err != nil {
			a.logger.Warn("Change score unavailable", zap.Error(err))
		} else {
			a.logger.Debug("Screen change score", zap.Float64("score", score))
			if haveBaseline && score < staticScreenScore {
				a.logger.Warn("Screen not changing; capturing diagnostics", zap.Float64("score", score))
				path := a.saveScreenshot("no_progress")
				a.record(report.Step{Name: "progress check", Status: report.StatusMissed, Detail: fmt.Sprintf("score %.4f", score), Screenshot: path})
			}
			haveBaseline = true
		}
		a.pause(ctx, progressPollWait)
	}
}

func (a *Agent) changeScore(ctx context.Context) (float64, error) {
	if a.screen == nil {
		return 0, errors.New("no screen to sample")
	}
	first, err := a.screen.Capture()
	if err != nil {
		return 0, err
	}
	if err := a.clock.Sleep(ctx, changeSampleGap); err != nil {
		return 0, err
	}
	second, err := a.screen.Capture()
	if err != nil {
		return 0, err
	}
	return screenshot.ChangeScore(first, second)
}

// lookup does one OCR pass. Capture and OCR failures count as "not found".
func (a *Agent) lookup(targets []string) *ocr.Match {
	m, err := a.finder.Find(targets)
	if err != nil {
		a.logger.Warn("Screen lookup failed", zap.Strings("targets", targets), zap.Error(err))
		return nil
	}
	return m
}

func (a *Agent) click(m *ocr.Match, dx, dy int) {
	x, y := m.Bounds.Offset(dx, dy)
	a.input.Click(x, y)
}

// pause sleeps and ignores cancellation; callers check ctx where it matters.
func (a *Agent) pause(ctx context.Context, d time.Duration) {
	_ = a.clock.Sleep(ctx, d)
}

func (a *Agent) saveScreenshot(name string) string {
	if a.screen == nil || a.opts.ScreenshotsDir == "" {
		return ""
	}
	img, err := a.screen.Capture()
	if err != nil {
		a.logger.Warn("Diagnostic capture failed", zap.String("name", name), zap.Error(err))
		return ""
	}
	path, err := screenshot.Save(a.opts.ScreenshotsDir, name, img)
	if err != nil {
		a.logger.Warn("Diagnostic screenshot not saved", zap.String("name", name), zap.Error(err))
		return ""
	}
	a.logger.Info("Saved screenshot", zap.String("path", path))
	return path
}

func (a *Agent) record(step report.Step) {
	if a.report == nil {
		return
	}
	step.Time = a.clock.Now()
	a.report.Add(step)
}
