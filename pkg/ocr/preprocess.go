package ocr

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// MinTextHeight is the height short crops are upscaled to before recognition.
// The identifier strip is a quarter of a phone photo and the glyphs are tiny.
const MinTextHeight = 300

// PrepareBase converts src to a sharpened, contrast-boosted grayscale image,
// upscaling it when it is shorter than MinTextHeight. factor is the scale
// applied, for mapping boxes back to src.
func PrepareBase(src image.Image) (out *image.NRGBA, factor float64) {
	gray := imaging.Grayscale(src)
	gray = imaging.AdjustContrast(gray, 15)
	gray = imaging.Sharpen(gray, 0.7)
	factor = 1
	w, h := gray.Bounds().Dx(), gray.Bounds().Dy()
	if h > 0 && h < MinTextHeight {
		gray = imaging.Resize(gray, 0, MinTextHeight, imaging.Lanczos)
		factor = float64(gray.Bounds().Dx()) / float64(w)
	}
	return gray, factor
}

// luma returns one brightness byte per pixel, row-major.
func luma(img image.Image) ([]uint8, int, int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bb, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			out[y*w+x] = uint8((r + g + bb) / 3 >> 8)
		}
	}
	return out, w, h
}

func fromMask(dark []bool, w, h int) *image.NRGBA {
	out := imaging.New(w, h, color.NRGBA{255, 255, 255, 255})
	for i, d := range dark {
		if d {
			out.Set(i%w, i/w, color.NRGBA{0, 0, 0, 255})
		}
	}
	return out
}

// Binarize maps pixels at or below threshold to black, the rest to white.
func Binarize(img image.Image, threshold uint8) *image.NRGBA {
	lum, w, h := luma(img)
	dark := make([]bool, len(lum))
	for i, v := range lum {
		dark[i] = v <= threshold
	}
	return fromMask(dark, w, h)
}

// AdaptiveThreshold marks a pixel black when it is darker than the mean of
// its window minus bias. window is forced odd and at least 3.
func AdaptiveThreshold(img image.Image, window, bias int) *image.NRGBA {
	if window < 3 {
		window = 3
	}
	if window%2 == 0 {
		window++
	}
	lum, w, h := luma(img)
	// integral image with a zero first row and column
	iw := w + 1
	sum := make([]int, iw*(h+1))
	for y := 0; y < h; y++ {
		row := 0
		for x := 0; x < w; x++ {
			row += int(lum[y*w+x])
			sum[(y+1)*iw+x+1] = sum[y*iw+x+1] + row
		}
	}
	half := window / 2
	dark := make([]bool, len(lum))
	for y := 0; y < h; y++ {
		y0, y1 := max(y-half, 0), min(y+half+1, h)
		for x := 0; x < w; x++ {
			x0, x1 := max(x-half, 0), min(x+half+1, w)
			total := sum[y1*iw+x1] - sum[y0*iw+x1] - sum[y1*iw+x0] + sum[y0*iw+x0]
			mean := total / ((x1 - x0) * (y1 - y0))
			dark[y*w+x] = int(lum[y*w+x]) < max(mean-bias, 0)
		}
	}
	return fromMask(dark, w, h)
}

// Dilate grows black regions by radius pixels using a 4-neighbourhood.
func Dilate(img *image.NRGBA, radius int) *image.NRGBA {
	if radius <= 0 {
		return img
	}
	lum, w, h := luma(img)
	dark := make([]bool, len(lum))
	for i, v := range lum {
		dark[i] = v == 0
	}
	for r := 0; r < radius; r++ {
		next := make([]bool, len(dark))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				i := y*w + x
				next[i] = dark[i] ||
					(x > 0 && dark[i-1]) || (x < w-1 && dark[i+1]) ||
					(y > 0 && dark[i-w]) || (y < h-1 && dark[i+w])
			}
		}
		dark = next
	}
	return fromMask(dark, w, h)
}
