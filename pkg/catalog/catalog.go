// Package catalog reads reference card images from per-language directories
// laid out as <root>/<language>_cards/<ID>.<ext>.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"riftscan/pkg/vision"

	"github.com/disintegration/imaging"
)

// DirSuffix marks a language directory under the catalog root.
const DirSuffix = "_cards"

// IsImageFile reports whether name has a supported image extension.
func IsImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

// Stem strips a supported image extension from name.
func Stem(name string) string {
	if IsImageFile(name) {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}

// Entry is one card image. ID is the file name without extension.
type Entry struct {
	ID   string `json:"id"`
	File string `json:"file"`
	Path string `json:"-"`
}

// Load decodes the image, applying EXIF orientation.
func (e Entry) Load() (vision.Image, error) {
	img, err := imaging.Open(e.Path, imaging.AutoOrientation(true))
	if err != nil {
		return vision.Image{}, fmt.Errorf("open %s: %w", e.File, err)
	}
	return vision.FromImage(img), nil
}

// Dir is the catalog of one language. The listing is cached until Invalidate.
type Dir struct {
	Language string
	Path     string

	mu      sync.RWMutex
	entries []Entry
	loaded  bool
}

func NewDir(language, path string) *Dir {
	return &Dir{Language: language, Path: path}
}

// Entries lists the card images sorted by file name.
func (d *Dir) Entries() ([]Entry, error) {
	d.mu.RLock()
	if d.loaded {
		out := d.entries
		d.mu.RUnlock()
		return out, nil
	}
	d.mu.RUnlock()

	des, err := os.ReadDir(d.Path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", d.Language, err)
	}
	var entries []Entry
	for _, de := range des {
		if de.IsDir() || !IsImageFile(de.Name()) {
			continue
		}
		entries = append(entries, Entry{ID: Stem(de.Name()), File: de.Name(), Path: filepath.Join(d.Path, de.Name())})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].File < entries[j].File })

	d.mu.Lock()
	d.entries = entries
	d.loaded = true
	d.mu.Unlock()
	return entries, nil
}

// Invalidate drops the cached listing.
func (d *Dir) Invalidate() {
	d.mu.Lock()
	d.entries = nil
	d.loaded = false
	d.mu.Unlock()
}

// Lookup finds the entry whose name matches id case-insensitively. id may
// carry an image extension.
func (d *Dir) Lookup(id string) (Entry, error) {
	entries, err := d.Entries()
	if err != nil {
		return Entry{}, err
	}
	want := Stem(strings.TrimSpace(id))
	for _, e := range entries {
		if strings.EqualFold(e.ID, want) {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %s/%s", ErrCardNotFound, d.Language, id)
}

// References adapts the listing for vision.Matcher. Images load lazily.
func (d *Dir) References() ([]vision.Reference, error) {
	entries, err := d.Entries()
	if err != nil {
		return nil, err
	}
	refs := make([]vision.Reference, len(entries))
	for i, e := range entries {
		refs[i] = vision.Reference{ID: e.ID, Load: e.Load}
	}
	return refs, nil
}

// Library is the set of language directories under a catalog root.
type Library struct {
	Root string

	mu   sync.RWMutex
	dirs map[string]*Dir
}

// OpenLibrary scans root for <language>_cards directories.
func OpenLibrary(root string) (*Library, error) {
	l := &Library{Root: root, dirs: map[string]*Dir{}}
	if err := l.Rescan(); err != nil {
		return nil, err
	}
	return l, nil
}

// Rescan picks up language directories added since the library was opened.
func (l *Library) Rescan() error {
	des, err := os.ReadDir(l.Root)
	if err != nil {
		return fmt.Errorf("read catalog root: %w", err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, de := range des {
		if !de.IsDir() || !strings.HasSuffix(de.Name(), DirSuffix) {
			continue
		}
		lang := strings.ToLower(strings.TrimSuffix(de.Name(), DirSuffix))
		if lang == "" {
			continue
		}
		if _, ok := l.dirs[lang]; !ok {
			l.dirs[lang] = NewDir(lang, filepath.Join(l.Root, de.Name()))
		}
	}
	return nil
}

// Languages returns the available languages sorted.
func (l *Library) Languages() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, 0, len(l.dirs))
	for lang := range l.dirs {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// Language returns the directory for lang.
func (l *Library) Language(lang string) (*Dir, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	d, ok := l.dirs[strings.ToLower(strings.TrimSpace(lang))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, lang)
	}
	return d, nil
}

func (l *Library) all() []*Dir {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*Dir, 0, len(l.dirs))
	for _, d := range l.dirs {
		out = append(out, d)
	}
	return out
}
