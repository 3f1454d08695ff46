package main

import (
	"context"
	"flag"
	"io"
	"log"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fsnotify/fsnotify"
	"gorm.io/gorm"

	"riftscan/models"
	"riftscan/pkg/catalog"
	"riftscan/pkg/identify"
	"riftscan/pkg/vision"
	"riftscan/process/toolenv"
)

var (
	db      *gorm.DB
	svc     *identify.Service
	verbose bool
)

var extMime = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// maxStoredBytes is the size captures are shrunk to when moved.
const maxStoredBytes = 2_000_000

// preloadState caches the user's scans so each file costs no lookup query.
type preloadState struct {
	scansByFile map[string]*models.Scan
	mu          sync.RWMutex
}

func newPreloadState() *preloadState {
	return &preloadState{scansByFile: make(map[string]*models.Scan, 1024)}
}

func (ps *preloadState) getScan(name string) (*models.Scan, bool) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	s, ok := ps.scansByFile[name]
	return s, ok
}

func (ps *preloadState) putScan(s *models.Scan) {
	ps.mu.Lock()
	ps.scansByFile[s.FileName] = s
	ps.mu.Unlock()
}

// findDuplicate returns a resolved scan whose capture hash is within
// vision.DuplicateDistance of phash.
func (ps *preloadState) findDuplicate(phash string) (*models.Scan, bool) {
	if phash == "" {
		return nil, false
	}
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	var best *models.Scan
	bestDist := vision.DuplicateDistance + 1
	for _, s := range ps.scansByFile {
		if !s.Resolved() || s.PHash == "" {
			continue
		}
		d, err := vision.HashDistance(phash, s.PHash)
		if err != nil || d >= bestDist {
			continue
		}
		best, bestDist = s, d
	}
	return best, best != nil
}

type scanner struct {
	dir          string
	processedDir string
	user         models.User
	ps           *preloadState
	dryRun       bool
	dedupe       bool
}

// Main: identifies a directory of card photos, records a Scan per file and
// moves recorded files into the user's upload folder. Optional watch mode.
func main() {
	toolenv.LoadDotEnv()
	sf := toolenv.DefaultServiceFlags()
	dirFlag := flag.String("dir", "captures", "directory to scan for card photos")
	username := flag.String("user", "admin", "user the scans are recorded for")
	dryRun := flag.Bool("dry-run", false, "identify and print results; no DB writes, no moves")
	watch := flag.Bool("watch", false, "Watch directory for new files")
	workers := flag.Int("workers", 0, "Worker pool size (default NumCPU)")
	dedupe := flag.Bool("dedupe", true, "reuse the result of a near-identical earlier capture")
	sf.Register(flag.CommandLine)
	flag.Parse()
	verbose = sf.Verbose

	var err error
	svc, err = toolenv.NewService(sf)
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := &scanner{
		dir:          *dirFlag,
		processedDir: filepath.Join(toolenv.Getenv("UPLOAD_BASE", "uploads"), *username),
		ps:           newPreloadState(),
		dryRun:       *dryRun,
		dedupe:       *dedupe,
	}
	if *dryRun {
		log.Printf("Dry-run: scanning %s (no DB interaction)", *dirFlag)
	} else {
		db = toolenv.MustDB()
		s.user = resolveUser(*username)
		s.preload()
		log.Printf("Preloaded: scans=%d", len(s.ps.scansByFile))
	}

	n := effectiveWorkers(*workers)
	files := listImageFiles(*dirFlag)
	log.Printf("Scanning %d files (workers=%d)", len(files), n)
	s.run(ctx, feed(files), n)

	if *watch {
		if err := s.watch(ctx, n); err != nil {
			log.Fatalf("watch failed: %v", err)
		}
	}
}

func effectiveWorkers(w int) int {
	if w <= 0 {
		return runtime.NumCPU()
	}
	return w
}

func logV(format string, args ...any) {
	if verbose {
		log.Printf(format, args...)
	}
}

func resolveUser(username string) models.User {
	var u models.User
	if err := db.Where("username = ?", username).First(&u).Error; err != nil {
		log.Fatalf("user %q not found: %v", username, err)
	}
	return u
}

func (s *scanner) preload() {
	var scans []models.Scan
	if err := db.Where("user_id = ?", s.user.ID).Find(&scans).Error; err != nil {
		log.Printf("WARN preload scans: %v", err)
		return
	}
	for i := range scans {
		s.ps.putScan(&scans[i])
	}
}

func listImageFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !isSupportedExt(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out
}

func isSupportedExt(name string) bool {
	// editors and sync tools drop hidden temp files next to the photos
	if strings.HasPrefix(name, ".") {
		return false
	}
	return catalog.IsImageFile(name)
}

func mimeFromExt(name string) string {
	return extMime[strings.ToLower(filepath.Ext(name))]
}

func feed(names []string) <-chan string {
	ch := make(chan string, len(names))
	for _, n := range names {
		ch <- n
	}
	close(ch)
	return ch
}

// run processes names with a fixed pool until the channel closes.
func (s *scanner) run(ctx context.Context, names <-chan string, workers int) {
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range names {
				if ctx.Err() != nil {
					continue
				}
				s.processSingleFile(ctx, name)
			}
		}()
	}
	wg.Wait()
}

func (s *scanner) watch(ctx context.Context, workers int) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(s.dir); err != nil {
		return err
	}
	log.Printf("Watching %s (debounced) ...", s.dir)

	fileCh := make(chan string, 256)
	go func() {
		defer close(fileCh)
		pending := map[string]time.Time{}
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&fsnotify.Create == fsnotify.Create {
					name := filepath.Base(ev.Name)
					if !isSupportedExt(name) {
						continue
					}
					pending[name] = time.Now()
				}
			case <-ticker.C:
				now := time.Now()
				for name, t := range pending {
					if now.Sub(t) > 300*time.Millisecond { // stable
						fileCh <- name
						delete(pending, name)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Printf("watch error: %v", err)
			}
		}
	}()
	s.run(ctx, fileCh, workers)
	return nil
}

func (s *scanner) processSingleFile(ctx context.Context, name string) {
	filePath := filepath.Join(s.dir, name)
	existing, exists := s.ps.getScan(name)
	if exists && existing.Resolved() {
		logV("SKIP already identified %s (%s)", name, existing.Identifier)
		return
	}

	img, err := imaging.Open(filePath, imaging.AutoOrientation(true))
	if err != nil {
		log.Printf("WARN open %s: %v", name, err)
		return
	}
	capture := vision.FromImage(img)
	scan := models.Scan{
		UserID:      s.user.ID,
		FileName:    name,
		StorePath:   filepath.ToSlash(filepath.Join(s.user.Username, name)),
		ContentType: mimeFromExt(name),
	}
	if exists {
		scan.ID = existing.ID
		scan.CreatedAt = existing.CreatedAt
	}
	if h, err := vision.PerceptualHash(capture); err == nil {
		scan.PHash = h
	}

	if dup, ok := s.findDuplicate(scan.PHash); ok {
		copyResult(&scan, dup)
		logV("DUP %s matches scan %d (%s)", name, dup.ID, dup.Identifier)
	} else {
		res, err := svc.Identify(ctx, capture, "")
		if ctx.Err() != nil {
			return
		}
		res.Apply(&scan, err)
		if err != nil {
			logV("identify %s: %v", name, err)
		}
	}

	if s.dryRun {
		log.Printf("DRY %s method=%s id=%s card=%s", name, scan.Method, scan.Identifier, scan.CardFile)
		return
	}
	if exists {
		err = db.Save(&scan).Error
	} else {
		err = db.Create(&scan).Error
	}
	if err != nil {
		log.Printf("ERROR record scan %s: %v", name, err)
		return
	}
	s.ps.putScan(&scan)
	if scan.Resolved() {
		log.Printf("NEW scan id=%d file=%s method=%s card=%s", scan.ID, name, scan.Method, scan.Identifier)
	} else {
		log.Printf("FAIL scan id=%d file=%s reason=%s", scan.ID, name, scan.FailedReason)
	}
	if err := moveToProcessed(filePath, filepath.Join(s.processedDir, name)); err != nil {
		log.Printf("WARN failed to move processed file %s: %v", name, err)
	} else {
		logV("moved processed %s to %s", name, s.processedDir)
	}
}

func (s *scanner) findDuplicate(phash string) (*models.Scan, bool) {
	if !s.dedupe {
		return nil, false
	}
	return s.ps.findDuplicate(phash)
}

func copyResult(dst *models.Scan, src *models.Scan) {
	dst.Method = src.Method
	dst.Identifier = src.Identifier
	dst.TextIdentifier = src.TextIdentifier
	dst.Language = src.Language
	dst.MatchedEntry = src.MatchedEntry
	dst.Similarity = src.Similarity
	dst.CardFile = src.CardFile
	dst.FailedReason = ""
}

// moveToProcessed moves src to dst, shrinking images above maxStoredBytes.
// It attempts an atomic rename and falls back to copy+remove.
func moveToProcessed(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	fi, err := os.Stat(src)
	if err != nil {
		return err
	}
	if fi.Size() <= maxStoredBytes {
		if err := os.Rename(src, dst); err == nil {
			return nil
		}
		return copyRemove(src, dst)
	}
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		if err := os.Rename(src, dst); err == nil {
			return nil
		}
		return copyRemove(src, dst)
	}
	// encoded size scales roughly with area
	scale := math.Sqrt(float64(maxStoredBytes) / float64(fi.Size()))
	scale = math.Min(math.Max(scale, 0.1), 0.95)
	w := img.Bounds().Dx()
	newW := int(math.Max(1, math.Round(float64(w)*scale)))
	resized := imaging.Resize(img, newW, 0, imaging.Lanczos)
	if err := imaging.Save(resized, dst); err != nil {
		if err := os.Rename(src, dst); err == nil {
			return nil
		}
		return copyRemove(src, dst)
	}
	return os.Remove(src)
}

func copyRemove(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
