package glyphtrace

import "fmt"

// DefaultMaxChecksFactor bounds the walk of a single curve to
// len(grid)*factor steps. If some curve is ignored the value can be raised,
// at the cost of much longer walks on malformed input.
const DefaultMaxChecksFactor = 8

// Values written to curve grids.
const (
	curveHollow   uint32 = 1 // filled cell that is not part of an outline
	curveOutline  uint32 = 2 // outline cell
	curveFarthest uint32 = 3 // farthest outline point from the curve start
)

// GlobalCurveData is the state shared by every curve found in one
// extraction pass. It is owned by that pass and must not be shared between
// concurrent passes.
type GlobalCurveData struct {
	// RowSize is shared by every grid in the pass.
	RowSize int

	// CurvesGlobalOutput holds, per cell, the number of the curve it belongs to.
	CurvesGlobalOutput Vmatrix[uint32]
	// CurvesGlobalOrderd holds, per cell, its position within its curve.
	CurvesGlobalOrderd Vmatrix[uint32]

	// GlobalOutputNumber is the number given to the next curve.
	GlobalOutputNumber int
	// GlobalOrderdCardin is the position given to the next point of the
	// current curve.
	GlobalOrderdCardin int

	// MaxChecksFactor overrides DefaultMaxChecksFactor when positive.
	MaxChecksFactor int
}

// NewGlobalCurveData sets the initial values for a pass over grids of the
// given size.
func NewGlobalCurveData(size int) *GlobalCurveData {
	return &GlobalCurveData{
		RowSize:            size,
		CurvesGlobalOutput: InitializeVmatrix[uint32](size, 0),
		CurvesGlobalOrderd: InitializeVmatrix[uint32](size, 0),
		GlobalOutputNumber: 1,
		GlobalOrderdCardin: 0,
	}
}

// TransposeInternal transposes both internal grids, so a pass can run
// against data that was itself transposed.
func (gd *GlobalCurveData) TransposeInternal() {
	gd.CurvesGlobalOutput.Transpose()
	gd.CurvesGlobalOrderd.Transpose()
}

// CurveCount returns how many curves have been numbered so far.
func (gd *GlobalCurveData) CurveCount() int {
	return gd.GlobalOutputNumber - 1
}

func (gd *GlobalCurveData) maxChecks(length int) int {
	factor := gd.MaxChecksFactor
	if factor <= 0 {
		factor = DefaultMaxChecksFactor
	}
	return length * factor
}

// GetCurves draws the outline of every closed curve in input. The result
// holds 2 on outline cells and 1 on filled cells inside an outline.
func GetCurves(gd *GlobalCurveData, input Vmatrix[uint32]) Vmatrix[uint32] {
	result := InitializeVmatrix[uint32](gd.RowSize, 0)

	curves := 0
	for i, v := range input.Data {
		if v == 1 && result.Data[i] == 0 {
			result.Data[i] = curveOutline
			DrawCurveOn(input, &result, gd.RowSize, i, gd.maxChecks(input.Len()))
			hollowSet(curveOutline, curveHollow, gd.RowSize, input, &result)
			curves++
		}
	}

	Logger().Debug("curves drawn", "count", curves, "outline", result.Count())
	return result
}

// hollowSet marks the cells following an anchor within a row span of data,
// so points already inside a drawn curve are not used to start a new one.
func hollowSet(anchorValue, hollowValue uint32, rowSize int, input Vmatrix[uint32], result *Vmatrix[uint32]) {
	anchorEnabled := false

	for i := range result.Data {
		if i%rowSize == 0 {
			anchorEnabled = false
		}
		if anchorEnabled && input.Data[i] != 0 && result.Data[i] != anchorValue {
			result.Data[i] = hollowValue
		}
		if anchorEnabled && input.Data[i] == 0 {
			anchorEnabled = false
		}
		if result.Data[i] == anchorValue {
			anchorEnabled = true
		}
	}
}

// DrawCurveOn follows the outline that starts at start, painting every cell
// it reaches with 2. At each cell it tries, in order, to keep going in the
// current direction, to go 45 degrees towards the next direction, and to
// turn to the next direction. When all three fail the direction rotates.
// The walk ends when it comes back to start or when a full rotation leaves
// it in place. It also ends when it stands again on a cell facing the same
// way as before: from there it would repeat a loop that misses start.
//
// DrawCurveOn panics when maxChecks steps are not enough to finish.
func DrawCurveOn(input Vmatrix[uint32], output *Vmatrix[uint32], rowSize, start, maxChecks int) {
	current := start
	direction := Cos
	checks := 0
	cardinalChanges := 0
	lastInLoop := -1
	// One entry per cell and direction.
	seen := make([]bool, input.Len()*4)

	for input.TestIndex(current) {
		if cardinalChanges >= 4 && lastInLoop == current {
			return
		}
		if checks >= maxChecks {
			panic(fmt.Sprintf("glyphtrace: curve walk gave up before checking all values "+
				"(max checks %d, starting index %d)", maxChecks, start))
		}
		state := current*4 + int(direction)
		if seen[state] {
			Logger().Debug("curve walk closed away from its start", "start", start, "index", current)
			return
		}
		seen[state] = true
		lastInLoop = current

		next := paintIfNaturalDirection(current, rowSize, direction, 0, input, output)
		if next == current {
			next = paintIfNaturalDirection(current, rowSize, direction, -1, input, output)
		}
		if next == current {
			next = paintIfNaturalDirection(current, rowSize, direction.Derivative(), 0, input, output)
		}
		if next != current {
			current = next
			cardinalChanges = 0
			checks++
			if current == start {
				return
			}
			continue
		}

		direction = direction.Derivative()
		cardinalChanges++
		checks++
	}
}

// paintIfNaturalDirection moves one step towards direction if that cell
// holds data and is not marked as hollow. The reached cell is painted as
// outline. It returns the new index, or fromIndex if the step was not taken.
func paintIfNaturalDirection(fromIndex, rowSize int, direction Direction, offset int, input Vmatrix[uint32], output *Vmatrix[uint32]) int {
	target := Step(fromIndex, rowSize, direction, offset)
	if !input.TestIndex(target) || wrapsRow(fromIndex, target, rowSize) {
		return fromIndex
	}
	if input.Data[target] == 1 && output.Data[target] != curveHollow {
		output.Data[target] = curveOutline
		return target
	}
	return fromIndex
}

// MarkCurvePoints numbers the outlines drawn by GetCurves. Every outline
// cell reached from a curve start gets the curve number in
// gd.CurvesGlobalOutput and its visit position in gd.CurvesGlobalOrderd.
// The outline point farthest from the start is marked 3 in the result.
//
// A curve that never leaves its starting row is a straight run rather than
// a loop; unless dominant is set, its cells are demoted to 1.
func MarkCurvePoints(gd *GlobalCurveData, outline Vmatrix[uint32], dominant bool) Vmatrix[uint32] {
	result := outline.NormalCopy()

	for i, v := range outline.Data {
		if v != curveOutline || gd.CurvesGlobalOutput.Data[i] != 0 {
			continue
		}
		findCurveOn(gd, &result, i, dominant)
		gd.GlobalOutputNumber++
	}

	Logger().Debug("curve points marked", "curves", gd.CurveCount(), "dominant", dominant)
	return result
}

// findCurveOn walks the outline cells reachable from start that are not yet
// numbered, using the same move order as DrawCurveOn, and commits the
// farthest point reached as the closing point of the curve.
func findCurveOn(gd *GlobalCurveData, result *Vmatrix[uint32], start int, dominant bool) {
	rowSize := gd.RowSize
	number := uint32(gd.GlobalOutputNumber)
	gd.GlobalOrderdCardin = 0

	visit := func(index int) {
		gd.GlobalOrderdCardin++
		gd.CurvesGlobalOutput.Data[index] = number
		gd.CurvesGlobalOrderd.Data[index] = uint32(gd.GlobalOrderdCardin)
	}
	open := func(index int) bool {
		return result.TestIndex(index) &&
			result.Data[index] >= curveOutline &&
			gd.CurvesGlobalOutput.Data[index] == 0
	}

	visit(start)
	current := start
	farthest := start
	bestDistance := 0.0

	direction := Cos
	cardinalChanges := 0
	maxChecks := gd.maxChecks(result.Len())

	for checks := 0; cardinalChanges < 4; checks++ {
		if checks >= maxChecks {
			panic(fmt.Sprintf("glyphtrace: curve numbering gave up (max checks %d, starting index %d)",
				maxChecks, start))
		}

		next := -1
		for _, c := range []int{
			Step(current, rowSize, direction, 0),
			Step(current, rowSize, direction, -1),
			Step(current, rowSize, direction.Derivative(), 0),
		} {
			if open(c) && !wrapsRow(current, c, rowSize) {
				next = c
				break
			}
		}

		if next < 0 {
			direction = direction.Derivative()
			cardinalChanges++
			continue
		}

		visit(next)
		current = next
		cardinalChanges = 0
		if d := IndexDistance(start, current, rowSize); d > bestDistance {
			bestDistance = d
			farthest = current
		}
	}

	if RowDistance(start, farthest, rowSize) == 0 && !dominant {
		lo, hi := start, farthest
		if lo > hi {
			lo, hi = hi, lo
		}
		for j := lo; j <= hi; j++ {
			result.Data[j] = curveHollow
		}
		return
	}
	result.Data[farthest] = curveFarthest
}

// wrapsRow reports whether moving from one index to another crossed the
// left or right edge of the grid.
func wrapsRow(from, to, rowSize int) bool {
	dx := to%rowSize - from%rowSize
	return dx > 1 || dx < -1
}
