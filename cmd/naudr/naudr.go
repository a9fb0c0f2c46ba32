package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"unicode/utf8"

	"github.com/wbrown/glyphtrace"
	"github.com/wbrown/glyphtrace/heatmap"
)

func main() {
	seedFile := flag.String("seed", "",
		"Path to a seed written as digits, '-' for stdin")
	imageFile := flag.String("image", "",
		"Path to an image of a glyph (png, jpeg, gif, tiff)")
	useOpenCV := flag.Bool("opencv", false,
		"Load -image through OpenCV instead of the pure Go path")
	bankFile := flag.String("bank", "",
		"Path to a seed bank computed by compute_seeds")
	glyph := flag.String("rune", "",
		"Rune to extract from -bank")
	configFile := flag.String("config", "",
		"Path to a YAML configuration file")
	size := flag.Int("size", 0,
		"Seed size, overrides the configured resolution (0 infers it for -seed)")
	outputDir := flag.String("output", ".",
		"Directory for the output files")
	reductions := flag.Bool("reductions", false,
		"Also write every erosion round")
	heatmaps := flag.Bool("heatmaps", false,
		"Also write PNG heat maps")
	verbose := flag.Bool("v", false,
		"Log extraction details")
	flag.Parse()

	sources := 0
	for _, s := range []string{*seedFile, *imageFile, *bankFile} {
		if s != "" {
			sources++
		}
	}
	if sources != 1 {
		fmt.Println("Exactly one of -seed, -image or -bank is required")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *verbose {
		glyphtrace.SetLogger(slog.New(slog.NewTextHandler(os.Stderr,
			&slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg := glyphtrace.DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = glyphtrace.LoadConfig(*configFile); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *size > 0 {
		cfg.Resolution = *size
	}

	seed, err := loadSeed(*seedFile, *imageFile, *bankFile, *glyph, *size, *useOpenCV, cfg)
	if err != nil {
		log.Fatalf("Failed to load seed: %v", err)
	}
	log.Printf("Seed of size %d with %d ink cells", seed.Size, seed.Count())

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	e := glyphtrace.Extract(seed, cfg)
	log.Printf("%d reductions, %d curves, %d straight strokes",
		len(e.Reductions), e.Curves(), e.DominantCurves())

	if err := e.WriteFiles(*outputDir, *reductions); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}
	if *heatmaps {
		written, err := heatmap.SaveExtraction(e, *outputDir)
		if err != nil {
			log.Fatalf("Failed to write heat maps: %v", err)
		}
		log.Printf("Wrote %d heat maps", len(written))
	}
	log.Printf("Output written to %s", *outputDir)
}

func loadSeed(seedFile, imageFile, bankFile, glyph string, size int, useOpenCV bool,
	cfg glyphtrace.Config) (glyphtrace.Vmatrix[uint32], error) {
	switch {
	case seedFile != "":
		var r io.Reader = os.Stdin
		if seedFile != "-" {
			f, err := os.Open(seedFile)
			if err != nil {
				return glyphtrace.Vmatrix[uint32]{}, err
			}
			defer f.Close()
			r = f
		}
		return glyphtrace.ParseSeed(r, size)

	case imageFile != "":
		if useOpenCV {
			return loadSeedOpenCV(imageFile, cfg.Resolution)
		}
		return glyphtrace.LoadSeedImage(imageFile, cfg.Resolution, cfg.BinarizeThreshold)

	default:
		bank, err := glyphtrace.LoadSeedBankFile(bankFile)
		if err != nil {
			return glyphtrace.Vmatrix[uint32]{}, err
		}
		r, n := utf8.DecodeRuneInString(glyph)
		if n == 0 || n != len(glyph) {
			return glyphtrace.Vmatrix[uint32]{}, fmt.Errorf("-rune needs a single character, got %q", glyph)
		}
		seed, ok := bank.Seed(r)
		if !ok {
			return glyphtrace.Vmatrix[uint32]{}, fmt.Errorf("rune %q is not in %s", r, bankFile)
		}
		return seed, nil
	}
}
