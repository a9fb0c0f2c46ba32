package glyphtrace

// DefaultMaxReductions bounds the number of erosion rounds in Accumulate.
const DefaultMaxReductions = 10

// Accumulate shows the cells around which most of the data accumulates.
//
// Cells that are not completely surrounded by data are trimmed round after
// round, so the shape is preserved while it thins out, until any stroke is
// one cell wide and disappears. Summing every round gives a heat map where
// thick regions hold high counts.
func Accumulate(input Vmatrix[uint32], maxIterations int) Vmatrix[uint32] {
	acc, _ := AccumulateWithSnapshots(input, maxIterations)
	return acc
}

// AccumulateWithSnapshots works like Accumulate and also returns every
// intermediate reduction in order.
func AccumulateWithSnapshots(input Vmatrix[uint32], maxIterations int) (Vmatrix[uint32], []Vmatrix[uint32]) {
	working := input
	var reductions []Vmatrix[uint32]

	// Only maxIterations bounds the rounds. Once no two survivors are
	// adjacent the remaining rounds come out empty and add nothing to the sum.
	for round := 1; round < maxIterations; round++ {
		next, adjacent := ErodeOnce(working)
		reductions = append(reductions, next)
		working = next

		Logger().Debug("erosion round",
			"round", round,
			"cells", next.Count(),
			"adjacent", adjacent)
	}

	return accumulateReductions(input.Size, reductions), reductions
}

// ErodeOnce removes every entry that is not surrounded by data. The boolean
// result reports whether two surviving cells were found next to each other
// in a row.
func ErodeOnce(input Vmatrix[uint32]) (Vmatrix[uint32], bool) {
	result := InitializeVmatrix[uint32](input.Size, 0)
	setBoundRowsToZero(&result)
	twoInARow := processCorners(input, &result)
	return result, twoInARow
}

// setBoundRowsToZero clears the first and last rows. Entries there cannot be
// completely surrounded by data.
func setBoundRowsToZero(m *Vmatrix[uint32]) {
	size := m.Size
	last := size * size
	for i := 0; i < size; i++ {
		m.Data[i] = 0
		m.Data[last-1-i] = 0
	}
}

// processCorners marks in output every inner cell of input whose 3x3
// neighbourhood holds data.
func processCorners(input Vmatrix[uint32], output *Vmatrix[uint32]) bool {
	rowSize := input.Size
	if rowSize < 3 {
		return false
	}

	data := input.Data
	twoInARow := false
	previousActive := false

	lastPointer := rowSize*rowSize - rowSize
	for current := rowSize + 1; current < lastPointer; current++ {
		col := current % rowSize
		if col == 0 || col == rowSize-1 {
			previousActive = false
			continue
		}

		up, down := current-rowSize, current+rowSize
		surrounded := data[current] > 0 && data[current-1] > 0 && data[current+1] > 0 &&
			data[up] > 0 && data[up-1] > 0 && data[up+1] > 0 &&
			data[down] > 0 && data[down-1] > 0 && data[down+1] > 0

		if !surrounded {
			previousActive = false
			continue
		}

		output.Data[current] = 1
		if previousActive {
			twoInARow = true
		}
		previousActive = true
	}

	return twoInARow
}

// accumulateReductions sums all reductions cell by cell.
func accumulateReductions(size int, reductions []Vmatrix[uint32]) Vmatrix[uint32] {
	result := InitializeVmatrix[uint32](size, 0)
	for _, r := range reductions {
		for i, v := range r.Data {
			result.Data[i] += v
		}
	}
	return result
}
