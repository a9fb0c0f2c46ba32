package glyphtrace

import "fmt"

// Direction represents the directions on a plane as the trigonometric
// function that walks them. The order follows the derivative of the
// functions, so (cos)' = -sin, (-sin)' = -cos and so on.
//
// In a row-major grid Cos moves east (index+1), NSin north (index+row),
// NCos west (index-1) and Sin south (index-row).
type Direction uint8

const (
	Cos Direction = iota
	NSin
	NCos
	Sin
)

var (
	derivatives     = [4]Direction{Cos: NSin, NSin: NCos, NCos: Sin, Sin: Cos}
	antiderivatives = [4]Direction{Cos: Sin, NSin: Cos, NCos: NSin, Sin: NCos}
	directionNames  = [4]string{Cos: "COS", NSin: "NSIN", NCos: "NCOS", Sin: "SIN"}
)

// Valid reports whether d is one of the four directions.
func (d Direction) Valid() bool {
	return d <= Sin
}

func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
	return directionNames[d]
}

// Derivative returns the direction rotated a quarter turn forward.
func (d Direction) Derivative() Direction {
	d.mustBeValid()
	return derivatives[d]
}

// Antiderivative returns the direction rotated a quarter turn backward. It
// is the inverse of Derivative.
func (d Direction) Antiderivative() Direction {
	d.mustBeValid()
	return antiderivatives[d]
}

func (d Direction) mustBeValid() {
	if !d.Valid() {
		panic(fmt.Sprintf("glyphtrace: invalid direction %d", uint8(d)))
	}
}

// move returns the index delta for a single cardinal step.
func (d Direction) move(rowSize int) int {
	switch d {
	case Cos:
		return 1
	case NCos:
		return -1
	case NSin:
		return rowSize
	case Sin:
		return -rowSize
	}
	panic(fmt.Sprintf("glyphtrace: invalid direction %d", uint8(d)))
}

// Step returns the index reached by moving one cell from index towards d.
// A negative offset45 additionally moves towards d.Derivative() and a
// positive one towards d.Antiderivative(), which yields the diagonal moves.
//
// No bounds checking is done. The caller must validate the result before
// using it to read a grid.
func Step(index, rowSize int, d Direction, offset45 int) int {
	result := index + d.move(rowSize)

	switch {
	case offset45 < 0:
		result += d.Derivative().move(rowSize)
	case offset45 > 0:
		result += d.Antiderivative().move(rowSize)
	}

	return result
}
