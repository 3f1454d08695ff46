package rescan

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"riftscan/models"
	"riftscan/pkg/catalog"
	"riftscan/pkg/identify"

	"github.com/disintegration/imaging"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Requires DB_DSN_TEST=1 and DB_DSN pointing at a disposable database.
func TestRunResolvesStoredCaptures(t *testing.T) {
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	db, err := gorm.Open(postgres.Open(os.Getenv("DB_DSN")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Role{}, &models.User{}, &models.Scan{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	root := t.TempDir()
	green := color.NRGBA{20, 200, 20, 255}
	for _, lang := range []string{"chinese", "english"} {
		dir := filepath.Join(root, "catalog", lang+catalog.DirSuffix)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := imaging.Save(imaging.New(120, 168, green), filepath.Join(dir, "OGN-002.png")); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	lib, err := catalog.OpenLibrary(filepath.Join(root, "catalog"))
	if err != nil {
		t.Fatalf("library: %v", err)
	}
	svc := identify.NewService(nil, lib, "chinese", "english")

	username := fmt.Sprintf("rescan%d", time.Now().UnixNano())
	user := models.User{Username: username, HashedPassword: []byte("x")}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	uploads := filepath.Join(root, "uploads")
	if err := os.MkdirAll(filepath.Join(uploads, username), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := imaging.Save(imaging.New(120, 168, green), filepath.Join(uploads, username, "c.png")); err != nil {
		t.Fatalf("save capture: %v", err)
	}
	scan := models.Scan{UserID: user.ID, FileName: "c.png", StorePath: username + "/c.png", Method: "none", FailedReason: "catalog empty"}
	if err := db.Create(&scan).Error; err != nil {
		t.Fatalf("create scan: %v", err)
	}

	var out bytes.Buffer
	st, err := Run(context.Background(), db, svc, Options{UploadBase: uploads, Username: username, Out: &out})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if st.Checked != 1 || st.Resolved != 1 {
		t.Fatalf("unexpected stats %+v", st)
	}
	var got models.Scan
	if err := db.First(&got, scan.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Method != "visual" || got.CardFile != "OGN-002.png" || got.FailedReason != "" {
		t.Fatalf("scan not updated: %+v", got)
	}
}
