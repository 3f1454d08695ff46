// Package vision holds the image side of card identification: fixed-layout
// cropping, colour histograms, edge structure and catalog similarity matching.
package vision

import (
	"image"

	"github.com/disintegration/imaging"
)

// Image is an immutable RGB pixel grid. Alpha is ignored. Every constructor
// and transform returns a fresh buffer so an Image never aliases its source.
type Image struct {
	px *image.NRGBA
}

// FromImage copies src into a new Image.
func FromImage(src image.Image) Image {
	if src == nil {
		return Image{}
	}
	return Image{px: imaging.Clone(src)}
}

// wrap adopts a buffer freshly produced by imaging without copying it again.
func wrap(px *image.NRGBA) Image {
	return Image{px: px}
}

func (im Image) Width() int {
	if im.px == nil {
		return 0
	}
	return im.px.Rect.Dx()
}

func (im Image) Height() int {
	if im.px == nil {
		return 0
	}
	return im.px.Rect.Dy()
}

// Empty reports whether the image has no pixels.
func (im Image) Empty() bool {
	return im.Width() <= 0 || im.Height() <= 0
}

// RGB returns the colour at (x, y) relative to the top-left corner.
func (im Image) RGB(x, y int) (r, g, b uint8) {
	i := im.px.PixOffset(im.px.Rect.Min.X+x, im.px.Rect.Min.Y+y)
	p := im.px.Pix[i : i+3 : i+3]
	return p[0], p[1], p[2]
}

// Image returns a copy of the pixels as a standard library image.
func (im Image) Image() *image.NRGBA {
	if im.px == nil {
		return image.NewNRGBA(image.Rect(0, 0, 0, 0))
	}
	return imaging.Clone(im.px)
}

// Scale resizes to w x h with bilinear filtering.
func Scale(im Image, w, h int) Image {
	if im.Empty() || w <= 0 || h <= 0 {
		return im
	}
	return wrap(imaging.Resize(im.px, w, h, imaging.Linear))
}
