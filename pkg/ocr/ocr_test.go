package ocr

import (
	"context"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"riftscan/pkg/cardid"
	"riftscan/pkg/vision"

	"github.com/disintegration/imaging"
)

func TestFutureDeliversOnce(t *testing.T) {
	calls := 0
	rec := RecognizerFunc(func(ctx context.Context, img vision.Image) ([]cardid.TextLine, error) {
		calls++
		return []cardid.TextLine{{Text: "OGN 083/298"}}, nil
	})
	f := RecognizeAsync(context.Background(), rec, vision.Image{})
	for i := 0; i < 3; i++ {
		lines, err := f.Wait(context.Background())
		if err != nil || len(lines) != 1 || lines[0].Text != "OGN 083/298" {
			t.Fatalf("wait %d got lines=%v err=%v", i, lines, err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one recognizer call got %d", calls)
	}
}

func TestFutureFailureHasNoLines(t *testing.T) {
	boom := errors.New("engine crashed")
	rec := RecognizerFunc(func(ctx context.Context, img vision.Image) ([]cardid.TextLine, error) {
		return []cardid.TextLine{{Text: "partial"}}, boom
	})
	lines, err := RecognizeAsync(context.Background(), rec, vision.Image{}).Wait(context.Background())
	if !errors.Is(err, boom) || lines != nil {
		t.Fatalf("expected failure without lines got %v %v", lines, err)
	}
}

func TestFutureWaitHonoursContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	rec := RecognizerFunc(func(ctx context.Context, img vision.Image) ([]cardid.TextLine, error) {
		<-release
		return nil, nil
	})
	f := RecognizeAsync(context.Background(), rec, vision.Image{})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := f.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded got %v", err)
	}
	select {
	case <-f.Done():
		t.Fatalf("future should still be pending")
	default:
	}
}

func TestPrepareBaseUpscalesShortCrops(t *testing.T) {
	src := imaging.New(200, 50, color.NRGBA{200, 200, 200, 255})
	out, factor := PrepareBase(src)
	if out.Bounds().Dy() != MinTextHeight {
		t.Fatalf("expected height %d got %d", MinTextHeight, out.Bounds().Dy())
	}
	if factor < 5.9 || factor > 6.1 {
		t.Fatalf("expected factor ~6 got %f", factor)
	}
	tall := imaging.New(100, 400, color.NRGBA{10, 10, 10, 255})
	if _, f := PrepareBase(tall); f != 1 {
		t.Fatalf("tall images should not be rescaled, factor %f", f)
	}
}

func TestBinarize(t *testing.T) {
	img := imaging.New(2, 1, color.NRGBA{255, 255, 255, 255})
	img.Set(0, 0, color.NRGBA{100, 100, 100, 255})
	out := Binarize(img, 128)
	if out.NRGBAAt(0, 0).R != 0 || out.NRGBAAt(1, 0).R != 255 {
		t.Fatalf("unexpected binarization %v %v", out.NRGBAAt(0, 0), out.NRGBAAt(1, 0))
	}
}

func TestAdaptiveThresholdFindsDarkStroke(t *testing.T) {
	img := imaging.New(21, 21, color.NRGBA{220, 220, 220, 255})
	for y := 0; y < 21; y++ {
		img.Set(10, y, color.NRGBA{30, 30, 30, 255})
	}
	out := AdaptiveThreshold(img, 15, 7)
	if out.NRGBAAt(10, 10).R != 0 {
		t.Fatalf("stroke should be black")
	}
	if out.NRGBAAt(2, 10).R != 255 {
		t.Fatalf("background should be white")
	}
}

func TestDilate(t *testing.T) {
	img := imaging.New(5, 5, color.NRGBA{255, 255, 255, 255})
	img.Set(2, 2, color.NRGBA{0, 0, 0, 255})
	out := Dilate(img, 1)
	for _, p := range []image.Point{{2, 2}, {1, 2}, {3, 2}, {2, 1}, {2, 3}} {
		if out.NRGBAAt(p.X, p.Y).R != 0 {
			t.Fatalf("expected %v black", p)
		}
	}
	if out.NRGBAAt(1, 1).R != 255 {
		t.Fatalf("diagonal should stay white")
	}
}

func TestUnscaleRect(t *testing.T) {
	got := UnscaleRect(image.Rect(60, 30, 120, 90), 3)
	if got != image.Rect(20, 10, 40, 30) {
		t.Fatalf("unexpected rect %v", got)
	}
	r := image.Rect(1, 2, 3, 4)
	if UnscaleRect(r, 1) != r {
		t.Fatalf("factor 1 should be identity")
	}
}

func TestNormalizeLine(t *testing.T) {
	if got := NormalizeLine("  OGN \t 083/298\n"); got != "OGN 083/298" {
		t.Fatalf("got %q", got)
	}
}

func TestSnippet(t *testing.T) {
	long := "A" + strings.Repeat("卡", 100)
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short", "OGN", 5, "OGN"},
		{"ascii", "OGN-083", 3, "OGN…"},
		{"three byte unaligned", long, 240, "A" + strings.Repeat("卡", 79) + "…"},
		{"three byte aligned", long, 241, "A" + strings.Repeat("卡", 80) + "…"},
		{"inside first rune", "卡卡", 2, "…"},
		{"two byte", "éé", 3, "é…"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Snippet(tc.in, tc.max)
			if got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
			if !utf8.ValidString(got) {
				t.Fatalf("snippet is not valid UTF-8: %q", got)
			}
		})
	}
}
