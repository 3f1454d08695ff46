package vision

const (
	// EdgeThreshold is the RGB distance above which a neighbour marks an edge.
	EdgeThreshold = 30
	// EdgeStride is the sampling step in both directions.
	EdgeStride = 4
)

func isEdge(im Image, x, y int) bool {
	if x == 0 || y == 0 || x >= im.Width()-1 || y >= im.Height()-1 {
		return false
	}
	cr, cg, cb := im.RGB(x, y)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nr, ng, nb := im.RGB(x+dx, y+dy)
			dr := int(cr) - int(nr)
			dg := int(cg) - int(ng)
			db := int(cb) - int(nb)
			// compared squared to skip the sqrt
			if dr*dr+dg*dg+db*db > EdgeThreshold*EdgeThreshold {
				return true
			}
		}
	}
	return false
}

// CompareEdges returns the fraction of sampled pixels whose edge
// classification agrees between a and b. Images of different size score 0.
func CompareEdges(a, b Image) float64 {
	if a.Width() != b.Width() || a.Height() != b.Height() {
		return 0
	}
	var agree, total int
	for x := 0; x < a.Width(); x += EdgeStride {
		for y := 0; y < a.Height(); y += EdgeStride {
			if isEdge(a, x, y) == isEdge(b, x, y) {
				agree++
			}
			total++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(agree) / float64(total)
}
