package cardid

import (
	"regexp"
	"sort"
)

// Shape says how a pattern's letters become a set code.
type Shape int

const (
	// ShapeFullSet captures the whole three-letter set code.
	ShapeFullSet Shape = iota
	// ShapePartialSet captures only the trailing letters of the set code.
	ShapePartialSet
	// ShapeNumberOnly captures no letters; the default set is used.
	ShapeNumberOnly
)

// Pattern is one row of the candidate table. Lower Priority is more reliable.
type Pattern struct {
	Priority   int
	Name       string
	Shape      Shape
	Confidence float64
	re         *regexp.Regexp
}

// NewPattern compiles expr. For letter shapes the first group is the letters
// and the second the number; for ShapeNumberOnly the first group is the number.
func NewPattern(priority int, name string, shape Shape, confidence float64, expr string) Pattern {
	return Pattern{Priority: priority, Name: name, Shape: shape, Confidence: confidence, re: regexp.MustCompile(expr)}
}

// Patterns is a candidate table ordered by priority.
type Patterns []Pattern

// DefaultPatterns is the cascade used for printed identifiers like
// "OGN 083/298". Input lines are upper-cased before matching.
func DefaultPatterns() Patterns {
	return Patterns{
		NewPattern(0, "set-number-total", ShapeFullSet, 1.0, `\b([A-Z]{3})[\s-]*(\d+)\*?\s*/\s*\d+`),
		NewPattern(1, "set-number", ShapeFullSet, 0.8, `\b([A-Z]{3})[\s-]*(\d+)\b`),
		NewPattern(2, "partial-number-total", ShapePartialSet, 0.6, `\b([A-Z]{1,2})[\s-]*(\d+)\*?\s*/\s*\d+`),
		NewPattern(3, "partial-number", ShapePartialSet, 0.4, `\b([A-Z]{1,2})[\s-]*(\d+)\b`),
		NewPattern(4, "number-total", ShapeNumberOnly, 0.2, `(\d+)\*?\s*/\s*\d+`),
	}
}

// Sorted returns a copy ordered by ascending priority.
func (ps Patterns) Sorted() Patterns {
	out := append(Patterns(nil), ps...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}

// extract returns the set code and raw number for the first occurrence in
// line that this pattern can turn into an identifier.
func (p Pattern) extract(line string, sets []Set, defaultSet string) (set, number string, ok bool) {
	for _, m := range p.re.FindAllStringSubmatch(line, -1) {
		switch p.Shape {
		case ShapeFullSet:
			return m[1], m[2], true
		case ShapePartialSet:
			if code, found := reconstructSet(m[1], sets); found {
				return code, m[2], true
			}
		case ShapeNumberOnly:
			if defaultSet == "" {
				return "", "", false
			}
			return defaultSet, m[1], true
		}
	}
	return "", "", false
}
