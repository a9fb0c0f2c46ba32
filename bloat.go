package glyphtrace

// WriteBloats builds a thickness map of input. Each filled, non-border cell
// holds the largest level whose square ring (of radius level-1) around the
// cell is entirely filled.
func WriteBloats(input Vmatrix[uint32]) Vmatrix[uint32] {
	rowSize := input.Size
	result := InitializeVmatrix[uint32](rowSize, 0)

	maximumBloat := uint32(rowSize / 2)
	increased := true
	for level := uint32(1); level < maximumBloat && increased; level++ {
		increased = false
		for i, v := range input.Data {
			if input.TestBorderIndex(i) {
				continue
			}
			if v == 1 && result.Data[i] != level && ringFilledAt(input, level, i) {
				result.Data[i] = level
				increased = true
			}
		}
	}

	return result
}

// ringFilledAt walks the square ring of radius level-1 around index,
// starting straight below it and going round counterclockwise, and reports
// whether every cell on it holds data.
func ringFilledAt(m Vmatrix[uint32], level uint32, index int) bool {
	halfStep := int(level) - 1
	fullStep := halfStep * 2
	rowSize := m.Size

	legs := []struct {
		direction Direction
		steps     int
	}{
		{Sin, halfStep},
		{Cos, halfStep},
		{NSin, fullStep},
		{NCos, fullStep},
		{Sin, fullStep},
		{Cos, halfStep},
	}

	current := index
	for leg, l := range legs {
		for s := 0; s < l.steps; s++ {
			current = Step(current, rowSize, l.direction, 0)
			if m.TestBorderIndex(current) {
				return false
			}
			// The first leg only reaches the ring; its cells are inside it.
			if leg > 0 && m.Data[current] < 1 {
				return false
			}
		}
	}
	return m.Data[current] >= 1
}
