package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"riftscan/pkg/ocr"
	"riftscan/pkg/vision"
	"riftscan/process/toolenv"

	"github.com/disintegration/imaging"
)

func main() {
	toolenv.LoadDotEnv()
	sf := toolenv.DefaultServiceFlags()
	f := flag.String("file", "", "card photo to identify")
	lang := flag.String("lang", "", "target language (default -target)")
	sf.Register(flag.CommandLine)
	flag.Parse()
	if *f == "" {
		log.Fatalf("-file required")
	}
	svc, err := toolenv.NewService(sf)
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}
	img, err := imaging.Open(*f, imaging.AutoOrientation(true))
	if err != nil {
		log.Fatalf("open: %v", err)
	}
	capture := vision.FromImage(img)
	ctx := context.Background()

	region := vision.Crop(capture, vision.IdentifierRegion)
	lines, err := svc.Recognizer.Recognize(ctx, region)
	if err != nil {
		fmt.Printf("recognizer error: %v\n", err)
	}
	fmt.Printf("region %dx%d, %d lines\n", region.Width(), region.Height(), len(lines))
	for _, l := range lines {
		box := "-"
		if l.Box != nil {
			box = l.Box.String()
		}
		fmt.Printf("  %-24q box=%s\n", ocr.Snippet(l.Text, 40), box)
	}
	if c, ok := svc.Resolver.Best(lines, region.Width()); ok {
		fmt.Printf("best candidate %s pattern=%s conf=%.1f line=%d\n", c.Identifier, c.Pattern, c.Confidence, c.Line)
	} else {
		fmt.Println("no identifier candidate")
	}

	res, err := svc.Identify(ctx, capture, *lang)
	fmt.Printf("method=%s identifier=%s", res.Method, res.Identifier)
	if res.Match != nil {
		fmt.Printf(" match=%s similarity=%.4f", res.Match.EntryID, res.Match.Similarity)
	}
	if res.Card != nil {
		fmt.Printf(" card=%s", res.Card.Path)
	}
	fmt.Println()
	if err != nil {
		fmt.Printf("error: %v\n", err)
	}
}
