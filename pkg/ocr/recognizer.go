// Package ocr is the text-recognition boundary: the Recognizer contract, a
// single-shot asynchronous call around it and the image preprocessing the
// Tesseract passes share.
package ocr

import (
	"context"

	"riftscan/pkg/cardid"
	"riftscan/pkg/vision"
)

// Recognizer returns the text lines found in an image. A failed recognition
// is reported as an error; callers treat it like an empty result.
type Recognizer interface {
	Recognize(ctx context.Context, img vision.Image) ([]cardid.TextLine, error)
}

// RecognizerFunc adapts a function to Recognizer.
type RecognizerFunc func(ctx context.Context, img vision.Image) ([]cardid.TextLine, error)

func (f RecognizerFunc) Recognize(ctx context.Context, img vision.Image) ([]cardid.TextLine, error) {
	return f(ctx, img)
}

// Future is a recognition running in the background. It completes exactly
// once, with lines or with an error.
type Future struct {
	done  chan struct{}
	lines []cardid.TextLine
	err   error
}

// RecognizeAsync starts r on img and returns immediately.
func RecognizeAsync(ctx context.Context, r Recognizer, img vision.Image) *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		lines, err := r.Recognize(ctx, img)
		if err != nil {
			f.err = err
			return
		}
		f.lines = lines
	}()
	return f
}

// Done is closed once the result is available.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the recognition completes or ctx ends. Every call after
// completion returns the same result.
func (f *Future) Wait(ctx context.Context) ([]cardid.TextLine, error) {
	select {
	case <-f.done:
		return f.lines, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
