package ocr

import (
	"fmt"
	"image"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// Bounds is a bounding box in screen pixel coordinates.
type Bounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Center returns the center point of the bounds.
func (b Bounds) Center() (int, int) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// Offset returns the center point shifted by dx, dy pixels.
func (b Bounds) Offset(dx, dy int) (int, int) {
	x, y := b.Center()
	return x + dx, y + dy
}

// Fragment is a single piece of text detected by the OCR engine.
type Fragment struct {
	Text       string
	Bounds     Bounds
	Confidence float64
}

// Match is the result of a successful text search on one screen capture.
type Match struct {
	Text       string  `json:"text"`
	Bounds     Bounds  `json:"bounds"`
	Confidence float64 `json:"confidence"`
}

// Engine extracts text fragments from an image.
type Engine interface {
	Recognize(img image.Image) ([]Fragment, error)
}

// Screen provides a fresh capture of the display.
type Screen interface {
	Capture() (image.Image, error)
}

// Normalize lowercases s, drops everything but letters, numerals and
// whitespace, and collapses whitespace runs to a single space.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r):
			pendingSpace = true
		}
	}
	return b.String()
}

// Matches reports whether target, once normalized, is contained in the
// normalized fragment text. Empty targets never match.
func Matches(fragment, target string) bool {
	t := Normalize(target)
	if t == "" {
		return false
	}
	return strings.Contains(Normalize(fragment), t)
}

// BestMatch returns the highest-confidence fragment matching any of the
// targets, or nil when none does. Ties keep the earliest fragment.
func BestMatch(fragments []Fragment, targets []string) *Match {
	normTargets := make([]string, 0, len(targets))
	for _, t := range targets {
		if n := Normalize(t); n != "" {
			normTargets = append(normTargets, n)
		}
	}
	if len(normTargets) == 0 {
		return nil
	}

	var best *Match
	for _, f := range fragments {
		if strings.TrimSpace(f.Text) == "" {
			continue
		}
		norm := Normalize(f.Text)
		for _, t := range normTargets {
			if !strings.Contains(norm, t) {
				continue
			}
			if best == nil || f.Confidence > best.Confidence {
				best = &Match{Text: f.Text, Bounds: f.Bounds, Confidence: f.Confidence}
			}
			break
		}
	}
	return best
}

// Finder captures the screen and searches it for text.
type Finder struct {
	screen Screen
	engine Engine
	logger *zap.Logger
}

// NewFinder wires a screen source to an OCR engine.
func NewFinder(screen Screen, engine Engine, logger *zap.Logger) *Finder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Finder{screen: screen, engine: engine, logger: logger.Named("finder")}
}

// Find captures the screen once and returns the best match for targets.
func (f *Finder) Find(targets []string) (*Match, error) {
	img, err := f.screen.Capture()
	if err != nil {
		return nil, fmt.Errorf("failed to capture screen: %w", err)
	}
	fragments, err := f.engine.Recognize(img)
	if err != nil {
		return nil, fmt.Errorf("ocr failed: %w", err)
	}
	m := BestMatch(fragments, targets)
	if m != nil {
		f.logger.Debug("text located",
			zap.Strings("targets", targets),
			zap.String("text", m.Text),
			zap.Float64("confidence", m.Confidence),
			zap.Int("x", m.Bounds.X),
			zap.Int("y", m.Bounds.Y))
	} else {
		f.logger.Debug("text not on screen", zap.Strings("targets", targets), zap.Int("fragments", len(fragments)))
	}
	return m, nil
}
