package vision

import (
	"context"
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/disintegration/imaging"
)

var (
	white = color.NRGBA{255, 255, 255, 255}
	black = color.NRGBA{0, 0, 0, 255}
)

func solid(w, h int, c color.NRGBA) Image {
	return FromImage(imaging.New(w, h, c))
}

func checker(w, h, cell int) Image {
	img := imaging.New(w, h, white)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.Set(x, y, black)
			}
		}
	}
	return FromImage(img)
}

func gradient(w, h int) Image {
	img := imaging.New(w, h, white)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{uint8(x * 255 / w), uint8(y * 255 / h), 90, 255})
		}
	}
	return FromImage(img)
}

func TestCropNeverExceedsSource(t *testing.T) {
	src := solid(120, 90, white)
	regions := []Region{
		IdentifierRegion,
		ArtworkRegion,
		{X: 0, Y: 0, W: 1, H: 1},
		{X: 0.5, Y: 0.5, W: 1, H: 1},
		{X: 0.9, Y: 0.9, W: 0.5, H: 0.5},
		{X: -0.5, Y: -0.5, W: 2, H: 2},
		{X: 0, Y: 0, W: 0, H: 0},
		{X: 1.5, Y: 0, W: 0.2, H: 0.2},
		{X: 0.2, Y: 0.2, W: -0.1, H: 0.3},
	}
	for _, r := range regions {
		out := Crop(src, r)
		if out.Width() > src.Width() || out.Height() > src.Height() {
			t.Fatalf("crop %+v produced %dx%d from %dx%d", r, out.Width(), out.Height(), src.Width(), src.Height())
		}
		if out.Empty() {
			t.Fatalf("crop %+v produced an empty image", r)
		}
	}
}

func TestCropPresets(t *testing.T) {
	src := solid(200, 400, white)
	id := Crop(src, IdentifierRegion)
	if id.Width() != 80 || id.Height() != 100 {
		t.Fatalf("identifier region expected 80x100 got %dx%d", id.Width(), id.Height())
	}
	art := Crop(src, ArtworkRegion)
	if art.Width() != 120 || art.Height() != 160 {
		t.Fatalf("artwork region expected 120x160 got %dx%d", art.Width(), art.Height())
	}
}

func TestCropTakesBottomLeft(t *testing.T) {
	img := imaging.New(100, 100, white)
	img.Set(0, 99, black)
	out := Crop(FromImage(img), IdentifierRegion)
	r, g, b := out.RGB(0, out.Height()-1)
	if r != 0 || g != 0 || b != 0 {
		t.Fatalf("expected bottom-left pixel to be black got %d,%d,%d", r, g, b)
	}
}

func TestCropDegenerateReturnsOriginal(t *testing.T) {
	src := solid(3, 3, white)
	out := Crop(src, Region{X: 0.9, Y: 0.9, W: 0.05, H: 0.05})
	if out.Width() != 3 || out.Height() != 3 {
		t.Fatalf("expected original 3x3 got %dx%d", out.Width(), out.Height())
	}
	empty := Crop(Image{}, ArtworkRegion)
	if !empty.Empty() {
		t.Fatalf("expected empty image back")
	}
}

func TestImageCopyDoesNotAlias(t *testing.T) {
	src := solid(4, 4, white)
	px := src.Image()
	px.Set(1, 1, black)
	if r, _, _ := src.RGB(1, 1); r != 255 {
		t.Fatalf("mutating the exported copy changed the image")
	}
}

func TestHistogramSumsToOne(t *testing.T) {
	for _, im := range []Image{solid(1, 1, black), checker(37, 23, 3), gradient(64, 48)} {
		h := ComputeHistogram(im)
		var sum float64
		for _, v := range h {
			sum += v
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Fatalf("histogram sum expected 1 got %f", sum)
		}
	}
	if h := ComputeHistogram(Image{}); h != (Histogram{}) {
		t.Fatalf("empty image should give an empty histogram")
	}
}

func TestHistogramBinIndex(t *testing.T) {
	cases := []struct {
		c   color.NRGBA
		bin int
	}{
		{black, 0},
		{white, 63},
		{color.NRGBA{100, 200, 30, 255}, 1*16 + 3*4 + 0},
		{color.NRGBA{63, 64, 192, 255}, 0*16 + 1*4 + 3},
	}
	for _, tc := range cases {
		h := ComputeHistogram(solid(2, 2, tc.c))
		if h[tc.bin] != 1 {
			t.Fatalf("colour %v expected all mass in bin %d got %v", tc.c, tc.bin, h)
		}
	}
}

func TestCompareHistograms(t *testing.T) {
	h := ComputeHistogram(gradient(50, 50))
	if got := CompareHistograms(h, h); math.Abs(got-1) > 1e-9 {
		t.Fatalf("identity expected 1 got %f", got)
	}
	a := ComputeHistogram(solid(5, 5, black))
	b := ComputeHistogram(solid(5, 5, white))
	if got := CompareHistograms(a, b); got != 0 {
		t.Fatalf("disjoint expected 0 got %f", got)
	}
	half := ComputeHistogram(checker(10, 10, 1))
	if got := CompareHistograms(a, half); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("half overlap expected 0.5 got %f", got)
	}
}

func TestIsEdge(t *testing.T) {
	flat := solid(10, 10, white)
	if isEdge(flat, 5, 5) {
		t.Fatalf("flat image has no edges")
	}
	board := checker(10, 10, 2)
	if !isEdge(board, 2, 2) {
		t.Fatalf("checker corner should be an edge")
	}
	if isEdge(board, 0, 5) || isEdge(board, 9, 5) || isEdge(board, 5, 0) || isEdge(board, 5, 9) {
		t.Fatalf("border pixels are never edges")
	}
	faint := imaging.New(3, 3, color.NRGBA{100, 100, 100, 255})
	faint.Set(0, 0, color.NRGBA{117, 117, 117, 255}) // distance ~29.4
	if isEdge(FromImage(faint), 1, 1) {
		t.Fatalf("distance below threshold should not be an edge")
	}
}

func TestCompareEdges(t *testing.T) {
	im := checker(40, 40, 3)
	if got := CompareEdges(im, im); got != 1 {
		t.Fatalf("self match expected 1 got %f", got)
	}
	if got := CompareEdges(im, checker(40, 41, 3)); got != 0 {
		t.Fatalf("size mismatch expected 0 got %f", got)
	}
	got := CompareEdges(im, solid(40, 40, white))
	if got <= 0 || got >= 1 {
		t.Fatalf("checker vs flat expected partial agreement got %f", got)
	}
}

func refOf(id string, im Image) Reference {
	return Reference{ID: id, Load: func() (Image, error) { return im, nil }}
}

func TestFindBestMatchEmptyCatalog(t *testing.T) {
	if _, ok := NewMatcher(2).FindBestMatch(context.Background(), gradient(60, 80), nil); ok {
		t.Fatalf("empty catalog should yield no match")
	}
}

func TestFindBestMatchExactEntry(t *testing.T) {
	captured := gradient(120, 160)
	refs := []Reference{
		refOf("OGN-001", solid(120, 160, color.NRGBA{200, 20, 20, 255})),
		refOf("OGN-002", checker(120, 160, 4)),
		refOf("OGN-003", captured),
		refOf("OGN-004", gradient(160, 120)),
	}
	res, ok := NewMatcher(3).FindBestMatch(context.Background(), captured, refs)
	if !ok {
		t.Fatalf("expected a match")
	}
	if res.EntryID != "OGN-003" {
		t.Fatalf("expected OGN-003 got %+v", res)
	}
	if math.Abs(res.Similarity-1) > 1e-9 {
		t.Fatalf("exact match similarity expected 1 got %f", res.Similarity)
	}
}

func TestFindBestMatchTieKeepsFirst(t *testing.T) {
	im := checker(80, 80, 5)
	refs := []Reference{refOf("first", im), refOf("second", im)}
	for i := 0; i < 5; i++ {
		res, ok := NewMatcher(2).FindBestMatch(context.Background(), im, refs)
		if !ok || res.EntryID != "first" {
			t.Fatalf("tie expected first got %+v ok=%v", res, ok)
		}
	}
}

func TestFindBestMatchSkipsUnreadable(t *testing.T) {
	bad := Reference{ID: "broken", Load: func() (Image, error) { return Image{}, errors.New("decode failed") }}
	res, ok := NewMatcher(1).FindBestMatch(context.Background(), gradient(30, 30), []Reference{bad, refOf("ok", solid(30, 30, black))})
	if !ok || res.EntryID != "ok" {
		t.Fatalf("expected the readable entry got %+v ok=%v", res, ok)
	}
	if _, ok := NewMatcher(1).FindBestMatch(context.Background(), gradient(30, 30), []Reference{bad}); ok {
		t.Fatalf("all entries unreadable should yield no match")
	}
}

func TestFindBestMatchParallelEqualsSerial(t *testing.T) {
	captured := checker(90, 120, 6)
	var refs []Reference
	for i := 1; i <= 12; i++ {
		refs = append(refs, refOf(string(rune('a'+i)), checker(90, 120, i)))
	}
	serial, ok1 := NewMatcher(1).FindBestMatch(context.Background(), captured, refs)
	parallel, ok2 := NewMatcher(8).FindBestMatch(context.Background(), captured, refs)
	if !ok1 || !ok2 || serial != parallel {
		t.Fatalf("serial %+v and parallel %+v disagree", serial, parallel)
	}
}

func TestFindBestMatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, ok := NewMatcher(1).FindBestMatch(ctx, gradient(30, 30), []Reference{refOf("a", gradient(30, 30))}); ok {
		t.Fatalf("cancelled scan should yield no match")
	}
}

func TestPerceptualHash(t *testing.T) {
	a := FromImage(imaging.New(64, 64, color.NRGBA{200, 10, 10, 255}))
	b := FromImage(imaging.New(64, 64, color.NRGBA{200, 10, 10, 255}))
	ha, err := PerceptualHash(a)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if len(ha) != 16 {
		t.Fatalf("expected 16 hex digits got %q", ha)
	}
	hb, _ := PerceptualHash(b)
	d, err := HashDistance(ha, hb)
	if err != nil || d != 0 {
		t.Fatalf("identical images distance=%d err=%v", d, err)
	}
	if _, err := PerceptualHash(Image{}); err == nil {
		t.Fatalf("expected error for empty image")
	}
	if _, err := HashDistance("zz", ha); err == nil {
		t.Fatalf("expected parse error")
	}
}
