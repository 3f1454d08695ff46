package catalog

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settle is how long a directory must be quiet before its listing is dropped.
const settle = 300 * time.Millisecond

// Watch invalidates cached listings when card files are added, removed or
// renamed, and picks up new language directories. It blocks until ctx ends.
func (l *Library) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(l.Root); err != nil {
		return err
	}
	l.watchDirs(w)
	log.Printf("Watching catalog %s (languages=%v)", l.Root, l.Languages())

	root := filepath.Clean(l.Root)
	pending := map[string]time.Time{}
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			dir := filepath.Clean(filepath.Dir(ev.Name))
			if dir == root {
				if err := l.Rescan(); err != nil {
					log.Printf("WARN catalog rescan: %v", err)
				}
				l.watchDirs(w)
				continue
			}
			if !IsImageFile(ev.Name) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				pending[dir] = time.Now()
			}
		case <-ticker.C:
			now := time.Now()
			for dir, t := range pending {
				if now.Sub(t) > settle {
					l.invalidatePath(dir)
					delete(pending, dir)
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch error: %v", err)
		}
	}
}

func (l *Library) watchDirs(w *fsnotify.Watcher) {
	for _, d := range l.all() {
		if err := w.Add(d.Path); err != nil {
			log.Printf("WARN watch %s: %v", d.Path, err)
		}
	}
}

func (l *Library) invalidatePath(path string) {
	for _, d := range l.all() {
		if filepath.Clean(d.Path) == path {
			d.Invalidate()
			log.Printf("catalog %s changed, listing refreshed", d.Language)
		}
	}
}
