// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"

	"warden/internal/classifier"
)

// TextClassifierStub is a function-backed classifier.TextClassifier.
type TextClassifierStub struct {
	mu         sync.Mutex
	calls      int
	ClassifyFn func(ctx context.Context, text string) (map[string]bool, error)
}

// Classify calls ClassifyFn, or reports nothing flagged when it is nil.
func (s *TextClassifierStub) Classify(ctx context.Context, text string) (map[string]bool, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.ClassifyFn == nil {
		return map[string]bool{}, nil
	}
	return s.ClassifyFn(ctx, text)
}

// Calls returns how many times Classify ran.
func (s *TextClassifierStub) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// ImageClassifierStub is a function-backed classifier.ImageClassifier.
type ImageClassifierStub struct {
	mu         sync.Mutex
	calls      int
	ClassifyFn func(ctx context.Context, image []byte) (classifier.SafeSearch, error)
}

// Classify calls ClassifyFn, or rates everything very unlikely when it is nil.
func (s *ImageClassifierStub) Classify(ctx context.Context, image []byte) (classifier.SafeSearch, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.ClassifyFn == nil {
		return classifier.SafeSearch{
			Adult:    classifier.LikelihoodVeryUnlikely,
			Violence: classifier.LikelihoodVeryUnlikely,
			Racy:     classifier.LikelihoodVeryUnlikely,
			Medical:  classifier.LikelihoodVeryUnlikely,
			Spoof:    classifier.LikelihoodVeryUnlikely,
		}, nil
	}
	return s.ClassifyFn(ctx, image)
}

// Calls returns how many times Classify ran.
func (s *ImageClassifierStub) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// TinyPNG returns an in-memory PNG byte slice with the requested dimensions.
func TinyPNG(t interface {
	Helper()
	Fatalf(string, ...any)
}, w, h int) []byte {
	t.Helper()
	return ColoredPNG(t, w, h, color.RGBA{A: 255})
}

// ColoredPNG returns a solid PNG so different fixtures hash differently.
func ColoredPNG(t interface {
	Helper()
	Fatalf(string, ...any)
}, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
