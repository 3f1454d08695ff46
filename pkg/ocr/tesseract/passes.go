package tesseract

import (
	"image"

	"riftscan/pkg/ocr"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// pass is one preprocessing + page segmentation combination. All passes
// share geometry with the base image so their boxes map back the same way.
type pass struct {
	name    string
	psm     gosseract.PageSegMode
	prepare func(*image.NRGBA) *image.NRGBA
}

var passes = []pass{
	{
		name:    "base",
		psm:     gosseract.PSM_SPARSE_TEXT,
		prepare: func(img *image.NRGBA) *image.NRGBA { return img },
	},
	{
		// light text on dark frames (foil and full-art variants)
		name:    "inverted",
		psm:     gosseract.PSM_SPARSE_TEXT,
		prepare: func(img *image.NRGBA) *image.NRGBA { return imaging.Invert(img) },
	},
	{
		name: "adaptive",
		psm:  gosseract.PSM_SINGLE_BLOCK,
		prepare: func(img *image.NRGBA) *image.NRGBA {
			return ocr.Dilate(ocr.AdaptiveThreshold(img, 15, 7), 1)
		},
	},
}
