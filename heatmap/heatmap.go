// Package heatmap renders glyphtrace grids as PNG heat maps. Accumulation
// maps show stroke depth, curve grids show the order in which cells were
// walked.
package heatmap

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wbrown/glyphtrace"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// DefaultColors is the number of palette steps used when Options.Colors is
// not set.
const DefaultColors = 16

// Options controls how a grid is drawn.
type Options struct {
	Title  string
	Colors int
	// Side is the width and height of the saved image.
	Side vg.Length
}

func (o Options) withDefaults() Options {
	if o.Colors <= 0 {
		o.Colors = DefaultColors
	}
	if o.Side <= 0 {
		o.Side = 6 * vg.Inch
	}
	return o
}

// Grid adapts a Vmatrix to plotter.GridXYZ. Row 0 of the grid is drawn at the
// top of the image.
type Grid struct {
	m glyphtrace.Vmatrix[uint32]
}

// NewGrid wraps m. It panics if the buffer does not hold Size*Size cells.
func NewGrid(m glyphtrace.Vmatrix[uint32]) Grid {
	if m.Size*m.Size != len(m.Data) {
		panic(fmt.Sprintf("heatmap: grid of size %d holds %d cells", m.Size, len(m.Data)))
	}
	return Grid{m: m}
}

func (g Grid) Dims() (c, r int) { return g.m.Size, g.m.Size }

func (g Grid) Z(c, r int) float64 {
	row := g.m.Size - 1 - r
	return float64(g.m.Data[row*g.m.Size+c])
}

func (g Grid) X(c int) float64 { return float64(c) }
func (g Grid) Y(r int) float64 { return float64(r) }

// Range returns the smallest and largest cell values.
func (g Grid) Range() (lo, hi float64) {
	if len(g.m.Data) == 0 {
		return 0, 0
	}
	lo, hi = float64(g.m.Data[0]), float64(g.m.Data[0])
	for _, v := range g.m.Data[1:] {
		f := float64(v)
		if f < lo {
			lo = f
		}
		if f > hi {
			hi = f
		}
	}
	return lo, hi
}

// Plot builds a plot of m without saving it.
func Plot(m glyphtrace.Vmatrix[uint32], opts Options) *plot.Plot {
	opts = opts.withDefaults()
	grid := NewGrid(m)

	p := plot.New()
	p.Title.Text = opts.Title
	p.HideAxes()

	hm := plotter.NewHeatMap(grid, palette.Heat(opts.Colors, 1))
	// A flat grid still needs a non-empty range to pick colors from.
	lo, hi := grid.Range()
	if hi == lo {
		hi = lo + 1
	}
	hm.Min, hm.Max = lo, hi
	p.Add(hm)

	return p
}

// Save writes a PNG heat map of m to path, creating its directory if needed.
func Save(m glyphtrace.Vmatrix[uint32], path string, opts Options) error {
	if m.Size == 0 {
		return fmt.Errorf("heatmap: empty grid")
	}
	opts = opts.withDefaults()
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := Plot(m, opts).Save(opts.Side, opts.Side, path); err != nil {
		return fmt.Errorf("failed to save heat map %s: %w", path, err)
	}
	glyphtrace.Logger().Debug("heat map saved", "path", path, "size", m.Size)
	return nil
}

// SaveExtraction writes the accumulation, thickness and curve maps of e into
// dir and returns the paths written.
func SaveExtraction(e *glyphtrace.Extraction, dir string) ([]string, error) {
	maps := []struct {
		name  string
		title string
		grid  glyphtrace.Vmatrix[uint32]
	}{
		{"accumulations.png", "Accumulations", e.Accumulated},
		{"thickness.png", "Thickness", e.Thickness},
		{"curves.png", "Curves", e.Outline},
		{"points.png", "Points", e.Points},
	}

	var written []string
	for _, entry := range maps {
		path := filepath.Join(dir, entry.name)
		if err := Save(entry.grid, path, Options{Title: entry.title}); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}
