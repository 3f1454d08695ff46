package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"

	"riftscan/pkg/ocr"
	"riftscan/pkg/vision"

	"github.com/disintegration/imaging"
)

// Writes the images the recognizer passes see for one photo, so thresholds
// can be tuned by eye.
func main() {
	in := flag.String("file", "", "card photo")
	outDir := flag.String("out", os.TempDir(), "directory for the dumped images")
	window := flag.Int("window", 15, "adaptive threshold window")
	bias := flag.Int("bias", 7, "adaptive threshold bias")
	flag.Parse()
	if *in == "" {
		log.Fatalf("-file required")
	}
	img, err := imaging.Open(*in, imaging.AutoOrientation(true))
	if err != nil {
		log.Fatalf("open: %v", err)
	}
	region := vision.Crop(vision.FromImage(img), vision.IdentifierRegion)
	base, factor := ocr.PrepareBase(region.Image())

	stem := strings.TrimSuffix(filepath.Base(*in), filepath.Ext(*in))
	outputs := map[string]image.Image{
		"region":   region.Image(),
		"base":     base,
		"inverted": imaging.Invert(base),
		"adaptive": ocr.Dilate(ocr.AdaptiveThreshold(base, *window, *bias), 1),
		"artwork":  vision.Prepare(vision.FromImage(img)).Image(),
	}
	for name, im := range outputs {
		p := filepath.Join(*outDir, fmt.Sprintf("%s.%s.png", stem, name))
		if err := imaging.Save(im, p); err != nil {
			log.Fatalf("save %s: %v", p, err)
		}
		fmt.Println(p)
	}
	fmt.Printf("upscale factor=%.2f\n", factor)
}
