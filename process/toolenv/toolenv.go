// Package toolenv is the environment the batch tools share: .env loading,
// the Postgres handle and an identification service built from flags.
package toolenv

import (
	"errors"
	"flag"
	"io/fs"
	"log"
	"os"

	"riftscan/pkg/catalog"
	"riftscan/pkg/identify"
	"riftscan/pkg/ocr/tesseract"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// LoadDotEnv reads ./.env without overriding variables already set.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("WARN .env: %v", err)
	}
}

func Getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func MustDB() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN must be set in environment to run this tool")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	return gdb
}

// ServiceFlags mirror the server's catalog and recognizer settings.
type ServiceFlags struct {
	CatalogDir    string
	SourceLang    string
	TargetLang    string
	TesseractLang string
	Workers       int
	Verbose       bool
}

// DefaultServiceFlags reads the same variables as the server.
func DefaultServiceFlags() ServiceFlags {
	return ServiceFlags{
		CatalogDir:    Getenv("CATALOG_DIR", "catalog"),
		SourceLang:    Getenv("SOURCE_LANG", "chinese"),
		TargetLang:    Getenv("TARGET_LANG", "english"),
		TesseractLang: Getenv("TESSERACT_LANG", "eng"),
	}
}

// Register binds the flags on fs with the current values as defaults.
func (f *ServiceFlags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.CatalogDir, "catalog", f.CatalogDir, "catalog root holding <language>_cards directories")
	fs.StringVar(&f.SourceLang, "source", f.SourceLang, "catalog language captures are matched against")
	fs.StringVar(&f.TargetLang, "target", f.TargetLang, "catalog language results resolve into")
	fs.StringVar(&f.TesseractLang, "ocr-lang", f.TesseractLang, "tesseract language")
	fs.IntVar(&f.Workers, "match-workers", f.Workers, "concurrent catalog loads per match (default NumCPU)")
	fs.BoolVar(&f.Verbose, "verbose", f.Verbose, "verbose logging")
}

func NewService(f ServiceFlags) (*identify.Service, error) {
	lib, err := catalog.OpenLibrary(f.CatalogDir)
	if err != nil {
		return nil, err
	}
	rec := tesseract.New(f.TesseractLang)
	rec.Verbose = f.Verbose
	svc := identify.NewService(rec, lib, f.SourceLang, f.TargetLang)
	svc.Matcher.Workers = f.Workers
	svc.Verbose = f.Verbose
	return svc, nil
}
