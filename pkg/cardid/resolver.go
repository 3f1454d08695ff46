package cardid

import (
	"image"
	"strings"
)

// SignatureCutoff is the fraction of image width past which a line is treated
// as artist credit rather than identifier text.
const SignatureCutoff = 0.6

// NoiseMarkers flag lines that are never identifiers. Matched case-insensitively.
var NoiseMarkers = []string{"©", "(C)", "ARTIST", "ILLUS", "STUDIO", "RIOT GAMES"}

// TextLine is one recognized line. Box is in source pixels and may be nil.
type TextLine struct {
	Text string           `json:"text"`
	Box  *image.Rectangle `json:"box,omitempty"`
}

// Candidate is a resolved identifier together with what produced it.
type Candidate struct {
	Identifier
	Pattern    string  `json:"pattern"`
	Confidence float64 `json:"confidence"`
	Line       int     `json:"line"`
}

// Resolver picks the most reliable identifier out of a set of text lines.
type Resolver struct {
	Patterns   Patterns
	Sets       []Set
	DefaultSet string
	Markers    []string
	Cutoff     float64
}

func NewResolver() *Resolver {
	return &Resolver{
		Patterns:   DefaultPatterns(),
		Sets:       KnownSets,
		DefaultSet: DefaultSetCode,
		Markers:    NoiseMarkers,
		Cutoff:     SignatureCutoff,
	}
}

// Resolve returns the highest-confidence identifier in lines. imageWidth is
// the width of the image the line boxes refer to; <= 0 disables the position
// filter.
func (r *Resolver) Resolve(lines []TextLine, imageWidth int) (Identifier, bool) {
	c, ok := r.Best(lines, imageWidth)
	return c.Identifier, ok
}

// Best is Resolve with the winning pattern and confidence attached.
func (r *Resolver) Best(lines []TextLine, imageWidth int) (Candidate, bool) {
	return r.resolve(lines, imageWidth, true)
}

func (r *Resolver) resolve(lines []TextLine, imageWidth int, shortCircuit bool) (Candidate, bool) {
	patterns := r.Patterns.Sorted()
	if len(patterns) == 0 {
		return Candidate{}, false
	}
	top := patterns[0].Confidence
	for _, p := range patterns[1:] {
		top = max(top, p.Confidence)
	}

	var best Candidate
	found := false
	for i, line := range lines {
		if r.skip(line, imageWidth) {
			continue
		}
		text := strings.ToUpper(strings.TrimSpace(line.Text))
		for _, p := range patterns {
			set, number, ok := p.extract(text, r.Sets, r.DefaultSet)
			if !ok {
				continue
			}
			if !found || p.Confidence > best.Confidence {
				id := Identifier{SetCode: set, Number: padNumber(number)}
				if strings.Contains(text, "*") {
					id.Suffix = "s"
				}
				best = Candidate{Identifier: id, Pattern: p.Name, Confidence: p.Confidence, Line: i}
				found = true
			}
			break
		}
		if shortCircuit && found && best.Confidence >= top {
			break
		}
	}
	return best, found
}

// skip drops signature-area lines and known non-identifier text.
func (r *Resolver) skip(line TextLine, imageWidth int) bool {
	if line.Box != nil && imageWidth > 0 && float64(line.Box.Min.X) > r.Cutoff*float64(imageWidth) {
		return true
	}
	upper := strings.ToUpper(line.Text)
	for _, m := range r.Markers {
		if strings.Contains(upper, strings.ToUpper(m)) {
			return true
		}
	}
	return false
}
