package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"riftscan/pkg/catalog"
	"riftscan/pkg/identify"
	"riftscan/pkg/ocr/tesseract"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	jwtSecret []byte
	svc       *identify.Service
)

func main() {
	// .env never overrides variables already set in the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("WARN .env: %v", err)
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-insecure-secret-change"
	}
	jwtSecret = []byte(secret)
	cfg := loadConfig()

	// `riftscan migrate` runs AutoMigrate and seeding then exits.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		initDB()
		fmt.Println("migration and seeding completed")
		return
	}

	initDB()
	if err := initService(cfg); err != nil {
		log.Fatalf("catalog: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		if err := svc.Library.Watch(ctx); err != nil {
			log.Printf("WARN catalog watch stopped: %v", err)
		}
	}()

	r := gin.Default()
	setupRoutes(r)
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatal(err)
	}
}

func initService(cfg config) error {
	lib, err := catalog.OpenLibrary(cfg.CatalogDir)
	if err != nil {
		return err
	}
	if _, err := lib.Language(cfg.SourceLang); err != nil {
		log.Printf("WARN source catalog: %v", err)
	}
	rec := tesseract.New(cfg.TesseractLang)
	rec.Verbose = cfg.Verbose
	svc = identify.NewService(rec, lib, cfg.SourceLang, cfg.TargetLang)
	svc.Matcher.Workers = cfg.MatchWorkers
	svc.Verbose = cfg.Verbose
	log.Printf("catalog %s languages=%v source=%s target=%s", cfg.CatalogDir, lib.Languages(), cfg.SourceLang, cfg.TargetLang)
	return nil
}
