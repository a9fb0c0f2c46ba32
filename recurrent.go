package glyphtrace

// RecurrentTrace preserves only the entries that belong to a run of at least
// minimumRun consecutive nonzero cells within a row. Marked cells hold 1.
//
// Run on a transposed copy it finds vertical runs instead.
func RecurrentTrace(input Vmatrix[uint32], minimumRun int) Vmatrix[uint32] {
	result := InitializeVmatrix[uint32](input.Size, 0)
	if input.Size == 0 {
		return result
	}

	anchor := 0
	count := 0
	found := false

	for i, v := range input.Data {
		if i%input.Size == 0 {
			count = 0
			found = false
		}
		if v == 0 {
			count = 0
			found = false
			continue
		}

		if count == 0 {
			anchor = i
		}
		count++

		if found {
			result.Data[i] = 1
			continue
		}
		if count >= minimumRun {
			found = true
			for j := anchor; j <= i; j++ {
				result.Data[j] = 1
			}
		}
	}

	return result
}

// numberRuns gives every straight run of runs its own curve number in gd,
// with positions counted along the row. Cells numbered by an earlier pass
// keep their number without splitting the run.
func numberRuns(gd *GlobalCurveData, runs Vmatrix[uint32]) {
	closeRun := func() {
		if gd.GlobalOrderdCardin > 0 {
			gd.GlobalOutputNumber++
		}
		gd.GlobalOrderdCardin = 0
	}

	gd.GlobalOrderdCardin = 0
	for i, v := range runs.Data {
		if i%gd.RowSize == 0 || v == 0 {
			closeRun()
		}
		if v == 0 || gd.CurvesGlobalOutput.Data[i] != 0 {
			continue
		}
		gd.GlobalOrderdCardin++
		gd.CurvesGlobalOutput.Data[i] = uint32(gd.GlobalOutputNumber)
		gd.CurvesGlobalOrderd.Data[i] = uint32(gd.GlobalOrderdCardin)
	}
	closeRun()
}
