package catalog

import (
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
)

// newTestLibrary writes small card images into <tmp>/<lang>_cards.
func newTestLibrary(t *testing.T, files map[string][]string) *Library {
	t.Helper()
	root := t.TempDir()
	for lang, names := range files {
		dir := filepath.Join(root, lang+DirSuffix)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		for i, name := range names {
			p := filepath.Join(dir, name)
			if !IsImageFile(name) {
				if err := os.WriteFile(p, []byte("notes"), 0o644); err != nil {
					t.Fatalf("write: %v", err)
				}
				continue
			}
			img := imaging.New(30, 40, color.NRGBA{uint8(40 * i), 80, 120, 255})
			if err := imaging.Save(img, p); err != nil {
				t.Fatalf("save %s: %v", name, err)
			}
		}
	}
	lib, err := OpenLibrary(root)
	if err != nil {
		t.Fatalf("open library: %v", err)
	}
	return lib
}

func TestLibraryLanguages(t *testing.T) {
	lib := newTestLibrary(t, map[string][]string{
		"english": {"OGN-001.png"},
		"chinese": {"OGN-001.jpg"},
	})
	langs := lib.Languages()
	if len(langs) != 2 || langs[0] != "chinese" || langs[1] != "english" {
		t.Fatalf("unexpected languages %v", langs)
	}
	if _, err := lib.Language("klingon"); !errors.Is(err, ErrUnknownLanguage) {
		t.Fatalf("expected ErrUnknownLanguage got %v", err)
	}
	if _, err := lib.Language(" English "); err != nil {
		t.Fatalf("language lookup should ignore case and space: %v", err)
	}
}

func TestEntriesSkipsNonImages(t *testing.T) {
	lib := newTestLibrary(t, map[string][]string{"english": {"OGN-002.png", "readme.txt", "OGN-001.JPG"}})
	d, _ := lib.Language("english")
	entries, err := d.Entries()
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != "OGN-001" || entries[1].ID != "OGN-002" {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	lib := newTestLibrary(t, map[string][]string{"english": {"OGN-083.png", "ogn-299s.jpg"}})
	d, _ := lib.Language("english")
	for _, id := range []string{"OGN-083", "ogn-083", "OGN-083.png", "OGN-299s", "OGN-299S.JPG"} {
		if _, err := d.Lookup(id); err != nil {
			t.Fatalf("lookup %s: %v", id, err)
		}
	}
	if _, err := d.Lookup("OGN-084"); !errors.Is(err, ErrCardNotFound) {
		t.Fatalf("expected ErrCardNotFound got %v", err)
	}
}

func TestReferencesLoadLazily(t *testing.T) {
	lib := newTestLibrary(t, map[string][]string{"chinese": {"OGN-001.png", "OGN-002.png"}})
	d, _ := lib.Language("chinese")
	refs, err := d.References()
	if err != nil || len(refs) != 2 {
		t.Fatalf("references: %v %d", err, len(refs))
	}
	img, err := refs[1].Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if img.Width() != 30 || img.Height() != 40 {
		t.Fatalf("unexpected size %dx%d", img.Width(), img.Height())
	}
	if err := os.Remove(filepath.Join(d.Path, "OGN-001.png")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := refs[0].Load(); err == nil {
		t.Fatalf("expected load error after removal")
	}
}

func TestMissingDirectory(t *testing.T) {
	d := NewDir("english", filepath.Join(t.TempDir(), "nope"))
	if _, err := d.Entries(); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}

func TestInvalidateRefreshesListing(t *testing.T) {
	lib := newTestLibrary(t, map[string][]string{"english": {"OGN-001.png"}})
	d, _ := lib.Language("english")
	if _, err := d.Entries(); err != nil {
		t.Fatalf("entries: %v", err)
	}
	if err := imaging.Save(imaging.New(5, 5, color.NRGBA{1, 2, 3, 255}), filepath.Join(d.Path, "OGN-002.png")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if es, _ := d.Entries(); len(es) != 1 {
		t.Fatalf("listing should be cached, got %d", len(es))
	}
	d.Invalidate()
	if es, _ := d.Entries(); len(es) != 2 {
		t.Fatalf("expected 2 entries after invalidate got %d", len(es))
	}
}

func TestWatchPicksUpNewCards(t *testing.T) {
	lib := newTestLibrary(t, map[string][]string{"english": {"OGN-001.png"}})
	d, _ := lib.Language("english")
	if _, err := d.Entries(); err != nil {
		t.Fatalf("entries: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- lib.Watch(ctx) }()
	defer func() {
		cancel()
		<-done
	}()
	time.Sleep(100 * time.Millisecond)

	if err := imaging.Save(imaging.New(5, 5, color.NRGBA{1, 2, 3, 255}), filepath.Join(d.Path, "OGN-002.png")); err != nil {
		t.Fatalf("save: %v", err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if es, _ := d.Entries(); len(es) == 2 {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("watcher did not refresh the listing")
}
