// Package tesseract implements ocr.Recognizer on top of Tesseract via gosseract.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log"

	"riftscan/pkg/cardid"
	"riftscan/pkg/ocr"
	"riftscan/pkg/vision"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// IdentifierChars covers set codes, collector numbers and the marks that
// let noise lines be recognised and discarded.
const IdentifierChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz*/-:.()© "

// Recognizer runs the identifier passes. A new gosseract client is created
// per pass, so a Recognizer is safe for concurrent use.
type Recognizer struct {
	Language  string
	Whitelist string
	Verbose   bool
}

func New(language string) *Recognizer {
	if language == "" {
		language = "eng"
	}
	return &Recognizer{Language: language, Whitelist: IdentifierChars}
}

// Recognize returns every text line found by every pass, with boxes in the
// coordinates of img.
func (r *Recognizer) Recognize(ctx context.Context, img vision.Image) ([]cardid.TextLine, error) {
	if img.Empty() {
		return nil, ocr.ErrEmptyImage
	}
	base, factor := ocr.PrepareBase(img.Image())

	var out []cardid.TextLine
	var lastErr error
	okPasses := 0
	for _, p := range passes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lines, err := r.runPass(p, base, factor)
		if err != nil {
			log.Printf("OCR pass %s failed: %v", p.name, err)
			lastErr = err
			continue
		}
		okPasses++
		if r.Verbose {
			for _, l := range lines {
				log.Printf("OCR pass %s line=%q box=%v", p.name, ocr.Snippet(l.Text, 80), l.Box)
			}
		}
		out = append(out, lines...)
	}
	if okPasses == 0 && lastErr != nil {
		return nil, fmt.Errorf("all ocr passes failed: %w", lastErr)
	}
	return out, nil
}

func (r *Recognizer) runPass(p pass, base *image.NRGBA, factor float64) ([]cardid.TextLine, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, p.prepare(base), imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(r.Language); err != nil {
		return nil, fmt.Errorf("set language: %w", err)
	}
	if r.Whitelist != "" {
		if err := client.SetWhitelist(r.Whitelist); err != nil {
			return nil, fmt.Errorf("set whitelist: %w", err)
		}
	}
	// collector numbers are not dictionary words
	_ = client.SetVariable("load_system_dawg", "false")
	_ = client.SetVariable("load_freq_dawg", "false")
	if err := client.SetPageSegMode(p.psm); err != nil {
		return nil, fmt.Errorf("set psm: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("bounding boxes: %w", err)
	}

	lines := make([]cardid.TextLine, 0, len(boxes))
	for _, b := range boxes {
		text := ocr.NormalizeLine(b.Word)
		if text == "" {
			continue
		}
		box := ocr.UnscaleRect(b.Box, factor)
		lines = append(lines, cardid.TextLine{Text: text, Box: &box})
	}
	return lines, nil
}
