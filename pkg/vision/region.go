package vision

import (
	"image"

	"github.com/disintegration/imaging"
)

// Region is a rectangle expressed as fractions of an image's width and height.
type Region struct {
	X, Y, W, H float64
}

var (
	// IdentifierRegion is the bottom-left strip where the set code and
	// collector number are printed.
	IdentifierRegion = Region{X: 0, Y: 0.75, W: 0.4, H: 0.25}
	// ArtworkRegion avoids the title bar, rules text and copyright line.
	ArtworkRegion = Region{X: 0.2, Y: 0.1, W: 0.6, H: 0.4}
)

// Bounds resolves the region against a width x height image. ok is false
// when the clamped rectangle would be empty.
func (r Region) Bounds(width, height int) (rect image.Rectangle, ok bool) {
	x := int(r.X * float64(width))
	y := int(r.Y * float64(height))
	w := int(r.W * float64(width))
	h := int(r.H * float64(height))
	x = max(x, 0)
	y = max(y, 0)
	w = min(w, width-x)
	h = min(h, height-y)
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(x, y, x+w, y+h), true
}

// Crop returns the part of im covered by r. A degenerate region yields im
// unchanged.
func Crop(im Image, r Region) Image {
	rect, ok := r.Bounds(im.Width(), im.Height())
	if !ok {
		return im
	}
	return wrap(imaging.Crop(im.px, rect.Add(im.px.Rect.Min)))
}
