package vision

import (
	"context"
	"log"
	"runtime"

	"golang.org/x/sync/errgroup"
)

const (
	// CanonicalSize is the side of the square both images are scaled to.
	CanonicalSize   = 150
	HistogramWeight = 0.6
	EdgeWeight      = 0.4
)

// Reference is one catalog image. Load is called at most once per match pass.
type Reference struct {
	ID   string
	Load func() (Image, error)
}

// MatchResult is the best catalog entry for a capture.
type MatchResult struct {
	EntryID    string  `json:"entry_id"`
	Similarity float64 `json:"similarity"`
}

// Matcher scores a capture against catalog references.
type Matcher struct {
	// Workers bounds concurrent reference loads; <= 0 means NumCPU.
	Workers int
}

func NewMatcher(workers int) *Matcher {
	return &Matcher{Workers: workers}
}

func (m *Matcher) workers() int {
	if m == nil || m.Workers <= 0 {
		return runtime.NumCPU()
	}
	return m.Workers
}

// Prepare crops the artwork and scales it to the canonical size.
func Prepare(im Image) Image {
	return Scale(Crop(im, ArtworkRegion), CanonicalSize, CanonicalSize)
}

// Similarity scores two prepared images.
func Similarity(a, b Image) float64 {
	return score(ComputeHistogram(a), a, b)
}

func score(probeHist Histogram, probe, cand Image) float64 {
	s := HistogramWeight*CompareHistograms(probeHist, ComputeHistogram(cand)) +
		EdgeWeight*CompareEdges(probe, cand)
	return min(max(s, 0), 1)
}

// FindBestMatch returns the reference most similar to captured. References
// that fail to load are skipped. ok is false when refs is empty, nothing
// could be loaded, or ctx ends before the scan completes. Equal scores keep
// the earlier reference.
func (m *Matcher) FindBestMatch(ctx context.Context, captured Image, refs []Reference) (MatchResult, bool) {
	if len(refs) == 0 {
		return MatchResult{}, false
	}
	probe := Prepare(captured)
	probeHist := ComputeHistogram(probe)

	scores := make([]float64, len(refs))
	loaded := make([]bool, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers())
	for i := range refs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := refs[i].Load()
			if err != nil {
				log.Printf("WARN catalog entry %s unreadable: %v", refs[i].ID, err)
				return nil
			}
			scores[i] = score(probeHist, probe, Prepare(img))
			loaded[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return MatchResult{}, false
	}

	best := -1
	for i := range refs {
		if !loaded[i] {
			continue
		}
		if best < 0 || scores[i] > scores[best] {
			best = i
		}
	}
	if best < 0 {
		return MatchResult{}, false
	}
	return MatchResult{EntryID: refs[best].ID, Similarity: scores[best]}, true
}
