package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"riftscan/process/rescan"
	"riftscan/process/toolenv"
)

func main() {
	toolenv.LoadDotEnv()
	sf := toolenv.DefaultServiceFlags()
	username := flag.String("username", "", "only rescan this user's scans")
	limit := flag.Int("limit", 0, "maximum scans to retry (0 = all)")
	dry := flag.Bool("dry-run", true, "dry-run: don't write to DB")
	sf.Register(flag.CommandLine)
	flag.Parse()

	if os.Getenv("DB_DSN") == "" {
		fmt.Fprintln(os.Stderr, "DB_DSN not set; export and retry")
		os.Exit(2)
	}
	svc, err := toolenv.NewService(sf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "catalog: %v\n", err)
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	st, err := rescan.Run(ctx, toolenv.MustDB(), svc, rescan.Options{
		UploadBase: toolenv.Getenv("UPLOAD_BASE", "uploads"),
		Username:   *username,
		Limit:      *limit,
		DryRun:     *dry,
		Out:        os.Stdout,
	})
	fmt.Printf("checked=%d resolved=%d missing=%d\n", st.Checked, st.Resolved, st.Missing)
	if err != nil {
		fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
		os.Exit(1)
	}
}
