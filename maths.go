package glyphtrace

import "math"

// IndexDistance returns the euclidean distance between the cells at two
// indexes of a grid with the given row size.
func IndexDistance(from, to, rowSize int) float64 {
	dx := float64(to%rowSize - from%rowSize)
	dy := float64(to/rowSize - from/rowSize)
	return math.Sqrt(dx*dx + dy*dy)
}

// RowDistance returns how many rows apart two indexes are.
func RowDistance(from, to, rowSize int) int {
	d := to/rowSize - from/rowSize
	if d < 0 {
		return -d
	}
	return d
}

// Midpoint returns the index of the cell halfway between from and to,
// rounding towards the origin.
func Midpoint(from, to, rowSize int) int {
	x := (from%rowSize + to%rowSize) / 2
	y := (from/rowSize + to/rowSize) / 2
	return y*rowSize + x
}

// CloseEnough reports whether testValue lies strictly within byMargin of
// closeTo. Equal values are always close enough.
//
// Let testValue be 0.1 and closeTo 0: with byMargin 0.1 the result is false.
func CloseEnough(testValue, closeTo, byMargin float64) bool {
	if testValue == closeTo {
		return true
	}
	margin := math.Abs(byMargin)
	return closeTo-margin < testValue && testValue < closeTo+margin
}
