package main

import (
	"os"
	"strconv"
	"strings"
)

type config struct {
	Addr          string
	CatalogDir    string
	SourceLang    string
	TargetLang    string
	TesseractLang string
	MatchWorkers  int
	Verbose       bool
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "":
		return def
	case "false", "0", "no":
		return false
	}
	return true
}

func loadConfig() config {
	workers, _ := strconv.Atoi(os.Getenv("MATCH_WORKERS"))
	return config{
		Addr:          getenv("ADDR", ":8081"),
		CatalogDir:    getenv("CATALOG_DIR", "catalog"),
		SourceLang:    strings.ToLower(getenv("SOURCE_LANG", "chinese")),
		TargetLang:    strings.ToLower(getenv("TARGET_LANG", "english")),
		TesseractLang: getenv("TESSERACT_LANG", "eng"),
		MatchWorkers:  workers,
		Verbose:       envBool("VERBOSE", false),
	}
}

// uploadBaseDir is where captures are stored, one folder per user.
func uploadBaseDir() string {
	return getenv("UPLOAD_BASE", "uploads")
}
