// Package rescan retries identification for scans that ended without a card,
// typically after the catalog gained images or the recognizer improved.
package rescan

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"

	"riftscan/models"
	"riftscan/pkg/identify"
	"riftscan/pkg/vision"

	"github.com/disintegration/imaging"
	"gorm.io/gorm"
)

type Options struct {
	// UploadBase is the directory Scan.StorePath is relative to.
	UploadBase string
	Username   string
	Limit      int
	DryRun     bool
	Out        io.Writer
}

// Stats counts what a run did.
type Stats struct {
	Checked  int
	Resolved int
	Missing  int
}

// Run re-identifies unresolved scans. In dry-run mode it prints the outcome
// without saving.
func Run(ctx context.Context, db *gorm.DB, svc *identify.Service, opt Options) (Stats, error) {
	var st Stats
	q := db.Model(&models.Scan{}).Where("method = ? AND store_path <> ''", string(identify.MethodNone))
	if opt.Username != "" {
		var user models.User
		if err := db.Where("username = ?", opt.Username).First(&user).Error; err != nil {
			return st, fmt.Errorf("user %q: %w", opt.Username, err)
		}
		q = q.Where("user_id = ?", user.ID)
	}
	if opt.Limit > 0 {
		q = q.Limit(opt.Limit)
	}
	var scans []models.Scan
	if err := q.Order("id").Find(&scans).Error; err != nil {
		return st, fmt.Errorf("query scans: %w", err)
	}

	for i := range scans {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		scan := &scans[i]
		st.Checked++
		path := filepath.Join(opt.UploadBase, filepath.FromSlash(scan.StorePath))
		img, err := imaging.Open(path, imaging.AutoOrientation(true))
		if err != nil {
			log.Printf("WARN scan %d: %v", scan.ID, err)
			st.Missing++
			continue
		}
		res, err := svc.Identify(ctx, vision.FromImage(img), scan.Language)
		if ctx.Err() != nil {
			return st, ctx.Err()
		}
		if err != nil {
			log.Printf("scan %d still unresolved: %v", scan.ID, err)
			continue
		}
		if opt.DryRun {
			fmt.Fprintf(opt.Out, "DRY: would update scan id=%d file=%s method=%s card=%s\n", scan.ID, scan.FileName, res.Method, res.Identifier)
			st.Resolved++
			continue
		}
		res.Apply(scan, nil)
		if err := db.Save(scan).Error; err != nil {
			log.Printf("failed update scan %d: %v", scan.ID, err)
			continue
		}
		st.Resolved++
		fmt.Fprintf(opt.Out, "updated scan id=%d file=%s method=%s card=%s\n", scan.ID, scan.FileName, res.Method, res.Identifier)
	}
	return st, nil
}
