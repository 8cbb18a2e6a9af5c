package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

// TesseractOptions configures the Tesseract engine.
type TesseractOptions struct {
	Language       string
	TessdataPrefix string
}

// Tesseract is an Engine backed by a long-lived gosseract client.
// It is not safe for concurrent use.
type Tesseract struct {
	client *gosseract.Client
}

// NewTesseract opens a Tesseract client with the given language data.
func NewTesseract(opts TesseractOptions) (*Tesseract, error) {
	client := gosseract.NewClient()
	if opts.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(opts.TessdataPrefix); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set tessdata prefix: %w", err)
		}
	}
	lang := opts.Language
	if lang == "" {
		lang = "eng"
	}
	if err := client.SetLanguage(lang); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language %q: %w", lang, err)
	}
	return &Tesseract{client: client}, nil
}

// Version returns the linked Tesseract version.
func (t *Tesseract) Version() string {
	return t.client.Version()
}

// Recognize runs word-level OCR on img.
func (t *Tesseract) Recognize(img image.Image) ([]Fragment, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	if err := t.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to load image into tesseract: %w", err)
	}
	boxes, err := t.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("failed to read bounding boxes: %w", err)
	}

	// Box coordinates are relative to the image; shift them back to screen space.
	origin := img.Bounds().Min
	fragments := make([]Fragment, 0, len(boxes))
	for _, b := range boxes {
		fragments = append(fragments, Fragment{
			Text: b.Word,
			Bounds: Bounds{
				X:      b.Box.Min.X + origin.X,
				Y:      b.Box.Min.Y + origin.Y,
				Width:  b.Box.Dx(),
				Height: b.Box.Dy(),
			},
			Confidence: b.Confidence,
		})
	}
	return fragments, nil
}

// Close releases the Tesseract client.
func (t *Tesseract) Close() error {
	return t.client.Close()
}
