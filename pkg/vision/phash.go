package vision

import (
	"fmt"
	"strconv"

	"github.com/corona10/goimagehash"
)

// DuplicateDistance is the largest Hamming distance at which two capture
// hashes are treated as the same photo.
const DuplicateDistance = 4

// PerceptualHash returns the 64-bit perception hash of im as 16 hex digits.
func PerceptualHash(im Image) (string, error) {
	if im.Empty() {
		return "", fmt.Errorf("phash: empty image")
	}
	h, err := goimagehash.PerceptionHash(im.px)
	if err != nil {
		return "", fmt.Errorf("phash: %w", err)
	}
	return fmt.Sprintf("%016x", h.GetHash()), nil
}

// HashDistance is the Hamming distance between two hashes produced by
// PerceptualHash.
func HashDistance(a, b string) (int, error) {
	ha, err := parseHash(a)
	if err != nil {
		return 0, err
	}
	hb, err := parseHash(b)
	if err != nil {
		return 0, err
	}
	return ha.Distance(hb)
}

func parseHash(s string) (*goimagehash.ImageHash, error) {
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return nil, fmt.Errorf("phash %q: %w", s, err)
	}
	return goimagehash.NewImageHash(v, goimagehash.PHash), nil
}
