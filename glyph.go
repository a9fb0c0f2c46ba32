package glyphtrace

import (
	"fmt"
	"image"
	"os"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

// glyphAlphaThreshold is the coverage above which a rendered pixel counts as
// ink. A low value keeps thin strokes and anti-aliased edges connected.
const glyphAlphaThreshold = 64

// glyphFill is the share of the seed height used for the font size, leaving
// a margin so outlines never touch the grid border.
const glyphFill = 0.75

// ParseFont parses TrueType font data.
func ParseFont(data []byte) (*truetype.Font, error) {
	f, err := freetype.ParseFont(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return f, nil
}

// LoadFont loads a TrueType font from file.
func LoadFont(path string) (*truetype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font: %w", err)
	}
	return ParseFont(data)
}

// RenderGlyphSeed renders r into a size x size binary seed, horizontally
// centered and placed on a baseline derived from the font metrics.
func RenderGlyphSeed(ttf *truetype.Font, r rune, size int) Vmatrix[uint32] {
	points := float64(size) * glyphFill

	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    points,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	defer face.Close()

	img := image.NewAlpha(image.Rect(0, 0, size, size))

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(ttf)
	ctx.SetFontSize(points)
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img)
	ctx.SetSrc(image.White)
	ctx.SetHinting(font.HintingFull)

	metrics := face.Metrics()
	ascent := metrics.Ascent.Round()
	descent := metrics.Descent.Round()
	baselineY := (size + ascent - descent) / 2

	originX := 0
	if advance, ok := face.GlyphAdvance(r); ok {
		originX = (size - advance.Round()) / 2
	}

	if _, err := ctx.DrawString(string(r), freetype.Pt(originX, baselineY)); err != nil {
		Logger().Warn("glyph not rendered", "rune", string(r), "error", err)
	}

	seed := InitializeVmatrix[uint32](size, 0)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if img.AlphaAt(x, y).A > glyphAlphaThreshold {
				seed.Data[y*size+x] = 1
			}
		}
	}
	return seed
}
