package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/wbrown/glyphtrace"
)

// seedRunes returns the runes rendered when -runes is not given: digits and
// the ASCII letters.
func seedRunes() []rune {
	var runes []rune
	for r := '0'; r <= '9'; r++ {
		runes = append(runes, r)
	}
	for r := 'A'; r <= 'Z'; r++ {
		runes = append(runes, r, r+('a'-'A'))
	}
	return runes
}

func main() {
	inputFont := flag.String("font", "", "Path to the input font file (required)")
	outputFile := flag.String("output", "", "Path to save the seed bank (required)")
	size := flag.Int("size", 64, "Seed size in cells")
	runeList := flag.String("runes", "", "Runes to render (default: digits and ASCII letters)")
	flag.Parse()

	if *inputFont == "" || *outputFile == "" {
		fmt.Println("Both -font and -output flags are required")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if *size < 3 {
		log.Fatalf("Seed size must be at least 3, got %d", *size)
	}

	runes := seedRunes()
	if *runeList != "" {
		runes = []rune(*runeList)
	}

	log.Printf("Computing seeds for font: %s", *inputFont)

	ttf, err := glyphtrace.LoadFont(*inputFont)
	if err != nil {
		log.Fatalf("Failed to load font: %v", err)
	}

	bank := glyphtrace.ComputeSeedBank(ttf, filepath.Base(*inputFont), *size, runes)

	empty := 0
	for _, r := range bank.Runes() {
		if seed, ok := bank.Seed(r); ok && seed.Count() == 0 {
			empty++
		}
	}
	log.Printf("Computed %d seeds of %dx%d (%d without ink)", len(bank.Seeds), *size, *size, empty)

	if err := bank.SaveFile(*outputFile); err != nil {
		log.Fatalf("Failed to save seed bank: %v", err)
	}

	fileInfo, err := os.Stat(*outputFile)
	if err == nil {
		log.Printf("Saved seed bank to %s (%.2f KB)", *outputFile, float64(fileInfo.Size())/1024)
	}

	baseName := strings.TrimSuffix(filepath.Base(*inputFont), filepath.Ext(*inputFont))
	suggestedName := strings.ToLower(strings.ReplaceAll(baseName, " ", "_")) + ".seeds"
	log.Printf("Suggested bank filename: %s", suggestedName)
}
