package vision

// HistogramBins is 4 buckets per channel over R, G and B.
const HistogramBins = 64

// Histogram holds normalized colour frequencies; bins sum to 1 for any
// non-empty image.
type Histogram [HistogramBins]float64

func bucket(v uint8) int {
	return min(int(v)/64, 3)
}

// ComputeHistogram bins every pixel of im at index r*16 + g*4 + b.
func ComputeHistogram(im Image) Histogram {
	var h Histogram
	w, ht := im.Width(), im.Height()
	if w <= 0 || ht <= 0 {
		return h
	}
	for y := 0; y < ht; y++ {
		for x := 0; x < w; x++ {
			r, g, b := im.RGB(x, y)
			h[bucket(r)*16+bucket(g)*4+bucket(b)]++
		}
	}
	n := float64(w * ht)
	for i := range h {
		h[i] /= n
	}
	return h
}

// CompareHistograms returns the histogram intersection of a and b.
func CompareHistograms(a, b Histogram) float64 {
	var sum float64
	for i := range a {
		sum += min(a[i], b[i])
	}
	return sum
}
