package ocr

import (
	"image"
	"strings"
	"unicode/utf8"
)

// Snippet returns a shortened version of text for logging. The result is at
// most max bytes plus the ellipsis and never splits a UTF-8 sequence.
func Snippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max < 0 {
		max = 0
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}

// NormalizeLine collapses internal whitespace and trims the ends.
func NormalizeLine(t string) string {
	return strings.Join(strings.Fields(t), " ")
}

// UnscaleRect maps a rectangle found on an image resized by factor back to
// the original image's coordinates.
func UnscaleRect(r image.Rectangle, factor float64) image.Rectangle {
	if factor <= 0 || factor == 1 {
		return r
	}
	return image.Rect(
		int(float64(r.Min.X)/factor),
		int(float64(r.Min.Y)/factor),
		int(float64(r.Max.X)/factor+0.5),
		int(float64(r.Max.Y)/factor+0.5),
	)
}
