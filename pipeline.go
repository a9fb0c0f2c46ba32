package glyphtrace

import (
	"fmt"
	"os"
	"path/filepath"
)

// Extraction holds every intermediate grid produced from one seed.
type Extraction struct {
	Seed Vmatrix[uint32]

	// Accumulated is the sum of every erosion round.
	Accumulated Vmatrix[uint32]
	Reductions  []Vmatrix[uint32]

	// Horizontal and Vertical hold the long straight runs of the eroded
	// seed, that is of the nonzero cells of Accumulated. Dominant is their
	// union and Curved what remains of those cells without them.
	Horizontal Vmatrix[uint32]
	Vertical   Vmatrix[uint32]
	Dominant   Vmatrix[uint32]
	Curved     Vmatrix[uint32]

	// Outline holds the curves drawn on Curved, and Points the same curves
	// with their farthest points marked.
	Outline Vmatrix[uint32]
	Points  Vmatrix[uint32]

	// Thickness is the bloat map of the seed.
	Thickness Vmatrix[uint32]

	CurveData    *GlobalCurveData
	DominantData *GlobalCurveData
}

// Curves returns how many curves were found on the curved part of the seed.
func (e *Extraction) Curves() int {
	return e.CurveData.CurveCount()
}

// DominantCurves returns how many straight strokes were numbered.
func (e *Extraction) DominantCurves() int {
	return e.DominantData.CurveCount()
}

// Extract erodes seed into a heat map and traces the curves the heat map
// holds once its straight runs are taken out. The thickness map comes from
// the seed itself.
//
// Extract panics if the seed buffer does not hold Size*Size cells.
func Extract(seed Vmatrix[uint32], cfg Config) *Extraction {
	size := seed.Size
	if size*size != len(seed.Data) {
		panic(fmt.Sprintf("glyphtrace: seed of size %d holds %d cells", size, len(seed.Data)))
	}

	e := &Extraction{Seed: seed}
	e.Accumulated, e.Reductions = AccumulateWithSnapshots(seed, cfg.MaxReductions)

	e.Horizontal = RecurrentTrace(e.Accumulated, cfg.MinimumRun)
	verticalT := RecurrentTrace(e.Accumulated.TransposedCopy(), cfg.MinimumRun)
	e.Vertical = verticalT.TransposedCopy()
	e.Dominant = e.Horizontal.Union(e.Vertical)
	e.Curved = e.Accumulated.Exclusive(e.Dominant)

	e.CurveData = NewGlobalCurveData(size)
	e.CurveData.MaxChecksFactor = cfg.MaxChecksFactor
	e.Outline = GetCurves(e.CurveData, e.Curved)
	e.Points = MarkCurvePoints(e.CurveData, e.Outline, false)

	// Straight runs get their own numbering. The vertical pass runs in the
	// transposed frame so it can skip cells the horizontal pass claimed.
	e.DominantData = NewGlobalCurveData(size)
	numberRuns(e.DominantData, e.Horizontal)
	e.DominantData.TransposeInternal()
	numberRuns(e.DominantData, verticalT)
	e.DominantData.TransposeInternal()

	e.Thickness = WriteBloats(seed)

	Logger().Info("extraction finished",
		"size", size,
		"reductions", len(e.Reductions),
		"curves", e.Curves(),
		"dominant", e.DominantCurves())
	return e
}

// WriteFiles dumps the main grids of the extraction into dir as text:
// accumulations.txt, curves.txt and points.txt, plus reduction#N.txt for
// every erosion round when withReductions is set.
func (e *Extraction) WriteFiles(dir string, withReductions bool) error {
	files := []struct {
		name string
		grid Vmatrix[uint32]
	}{
		{"accumulations.txt", e.Accumulated},
		{"curves.txt", e.Outline},
		{"points.txt", e.Points},
	}
	if withReductions {
		for i, r := range e.Reductions {
			files = append(files, struct {
				name string
				grid Vmatrix[uint32]
			}{fmt.Sprintf("reduction#%d.txt", i+1), r})
		}
	}

	for _, f := range files {
		if err := writeGridFile(filepath.Join(dir, f.name), f.grid); err != nil {
			return err
		}
	}
	return nil
}

func writeGridFile(path string, grid Vmatrix[uint32]) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := grid.WriteTo(f); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
