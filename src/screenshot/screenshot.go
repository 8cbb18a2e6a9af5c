package screenshot

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kbinani/screenshot"
)

// Display captures the primary display. It satisfies ocr.Screen.
type Display struct{}

// Capture returns a fresh capture of the primary display.
func (Display) Capture() (image.Image, error) {
	return Capture()
}

// Capture captures the primary display (display 0)
func Capture() (*image.RGBA, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return nil, fmt.Errorf("no active displays found")
	}
	img, err := screenshot.CaptureDisplay(0)
	if err != nil {
		return nil, fmt.Errorf("failed to capture display: %w", err)
	}
	return img, nil
}

// GetDisplayBounds returns the bounds of the primary display
func GetDisplayBounds() (image.Rectangle, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return image.Rectangle{}, fmt.Errorf("no active displays found")
	}
	return screenshot.GetDisplayBounds(0), nil
}

// Save writes img as <dir>/<name>_<timestamp>.png and returns the path.
// Captures taken within the same second get a numeric suffix.
func Save(dir, name string, img image.Image) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create screenshot dir: %w", err)
	}
	base := fmt.Sprintf("%s_%s", sanitizeName(name), time.Now().Format("20060102_150405"))

	path, f, err := createUnique(dir, base)
	if err != nil {
		return "", err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

func createUnique(dir, base string) (string, *os.File, error) {
	for i := 0; ; i++ {
		fileName := base + ".png"
		if i > 0 {
			fileName = fmt.Sprintf("%s_%d.png", base, i)
		}
		path := filepath.Join(dir, fileName)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return path, f, nil
		}
		if !os.IsExist(err) {
			return "", nil, fmt.Errorf("failed to create %s: %w", path, err)
		}
	}
}

// sanitizeName keeps names like "missing_Engage with us button" usable as
// file names on every platform.
func sanitizeName(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(name))
	if mapped == "" {
		return "screenshot"
	}
	return mapped
}
