package ocr

import (
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ZIP:", "zip"},
		{"zip", "zip"},
		{"Policy #", "policy"},
		{"  Engage   with\tus! ", "engage with us"},
		{"test.user@example.com", "testuserexamplecom"},
		{"01/02/2025", "01022025"},
		{"Area (m²)", "area m²"},
		{"½ Bath", "½ bath"},
		{"", ""},
		{"?!", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestProperty_Normalize_Idempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := rapid.String().Draw(rt, "s")
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once))
	})
}

func TestProperty_Normalize_CaseAndPunctuationInsensitive(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		word := rapid.StringMatching(`[a-z0-9]{1,12}`).Draw(rt, "word")
		punct := rapid.StringMatching(`[:;,.!?#()\-]{0,3}`).Draw(rt, "punct")
		assert.Equal(t, Normalize(word), Normalize(strings.ToUpper(word)+punct))
	})
}

func TestMatches(t *testing.T) {
	assert.True(t, Matches("ZIP:", "zip"))
	assert.True(t, Matches("Engage", "engage"))
	assert.True(t, Matches("Proceed to Next Section", "next"))
	assert.False(t, Matches("Next", "Proceed"))
	assert.False(t, Matches("anything", ""))
	assert.False(t, Matches("anything", "  ...  "))
}

func TestProperty_Matches_SubstringOfNormalized(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		fragment := rapid.String().Draw(rt, "fragment")
		target := rapid.String().Draw(rt, "target")
		nt := Normalize(target)
		want := nt != "" && strings.Contains(Normalize(fragment), nt)
		assert.Equal(t, want, Matches(fragment, target))
	})
}

func TestBestMatchPicksHighestConfidence(t *testing.T) {
	fragments := []Fragment{
		{Text: "Next", Bounds: Bounds{X: 1, Y: 1, Width: 10, Height: 10}, Confidence: 71},
		{Text: "Continue", Bounds: Bounds{X: 2, Y: 2, Width: 10, Height: 10}, Confidence: 93.5},
		{Text: "Proceed", Bounds: Bounds{X: 3, Y: 3, Width: 10, Height: 10}, Confidence: 88},
		{Text: "Cancel", Bounds: Bounds{X: 4, Y: 4, Width: 10, Height: 10}, Confidence: 99},
	}
	m := BestMatch(fragments, []string{"Next", "Continue", "Proceed"})
	require.NotNil(t, m)
	assert.Equal(t, "Continue", m.Text)
	assert.Equal(t, 93.5, m.Confidence)
	assert.Equal(t, Bounds{X: 2, Y: 2, Width: 10, Height: 10}, m.Bounds)
}

func TestBestMatchNoMatch(t *testing.T) {
	fragments := []Fragment{{Text: "Hello", Confidence: 90}, {Text: "   ", Confidence: 99}}
	assert.Nil(t, BestMatch(fragments, []string{"Engage"}))
	assert.Nil(t, BestMatch(fragments, []string{""}))
	assert.Nil(t, BestMatch(nil, []string{"Engage"}))
}

func TestBestMatchTieKeepsFirst(t *testing.T) {
	fragments := []Fragment{
		{Text: "Yes", Bounds: Bounds{X: 10}, Confidence: 80},
		{Text: "Yes", Bounds: Bounds{X: 20}, Confidence: 80},
	}
	m := BestMatch(fragments, []string{"yes"})
	require.NotNil(t, m)
	assert.Equal(t, 10, m.Bounds.X)
}

func TestProperty_BestMatch_MaxConfidence(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 20).Draw(rt, "n")
		fragments := make([]Fragment, n)
		maxConf := -1.0
		for i := range fragments {
			conf := rapid.Float64Range(0, 100).Draw(rt, "conf")
			text := rapid.SampledFrom([]string{"Yes", "No", "Next", "Other"}).Draw(rt, "text")
			fragments[i] = Fragment{Text: text, Confidence: conf}
			if text != "Other" && conf > maxConf {
				maxConf = conf
			}
		}
		m := BestMatch(fragments, []string{"Yes", "No", "Next"})
		if maxConf < 0 {
			assert.Nil(t, m)
			return
		}
		require.NotNil(t, m)
		assert.Equal(t, maxConf, m.Confidence)
		assert.NotEqual(t, "Other", m.Text)
	})
}

func TestBoundsCenterAndOffset(t *testing.T) {
	b := Bounds{X: 100, Y: 50, Width: 41, Height: 20}
	x, y := b.Center()
	assert.Equal(t, 120, x)
	assert.Equal(t, 60, y)
	x, y = b.Offset(120, -5)
	assert.Equal(t, 240, x)
	assert.Equal(t, 55, y)
}

type stubScreen struct {
	err error
}

func (s stubScreen) Capture() (image.Image, error) {
	if s.err != nil {
		return nil, s.err
	}
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

type stubEngine struct {
	fragments []Fragment
	err       error
}

func (e stubEngine) Recognize(image.Image) ([]Fragment, error) {
	return e.fragments, e.err
}

func TestFinderFind(t *testing.T) {
	f := NewFinder(stubScreen{}, stubEngine{fragments: []Fragment{
		{Text: "Engage", Bounds: Bounds{X: 5, Y: 5, Width: 10, Height: 4}, Confidence: 91},
	}}, nil)

	m, err := f.Find([]string{"Engage with us", "Engage"})
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "Engage", m.Text)

	m, err = f.Find([]string{"Proceed"})
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestFinderFindErrors(t *testing.T) {
	boom := errors.New("boom")

	_, err := NewFinder(stubScreen{err: boom}, stubEngine{}, nil).Find([]string{"x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "capture")

	_, err = NewFinder(stubScreen{}, stubEngine{err: boom}, nil).Find([]string{"x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "ocr")
}

func TestTesseractRecognize(t *testing.T) {
	// Requires libtesseract and eng traineddata.
	engine, err := NewTesseract(TesseractOptions{Language: "eng"})
	if err != nil {
		t.Logf("Tesseract unavailable (expected without language data): %v", err)
		return
	}
	defer engine.Close()
	t.Logf("Tesseract version: %s", engine.Version())

	_, err = engine.Recognize(image.NewRGBA(image.Rect(0, 0, 32, 32)))
	if err != nil {
		t.Logf("Recognize on blank image failed: %v", err)
	}
}
