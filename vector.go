package glyphtrace

import (
	"fmt"
	"math"
)

// Vector2 is a plain integer pair used for trace displacements and average
// offsets.
type Vector2 struct {
	X, Y int64
}

// Add returns v + o.
func (v Vector2) Add(o Vector2) Vector2 {
	return Vector2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vector2) Sub(o Vector2) Vector2 {
	return Vector2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Div divides both components by n, rounding towards negative infinity.
func (v Vector2) Div(n int64) Vector2 {
	return Vector2{X: floorDiv(v.X, n), Y: floorDiv(v.Y, n)}
}

// Equals reports whether both components match.
func (v Vector2) Equals(o Vector2) bool {
	return v == o
}

// IsZero reports whether v is the zero vector.
func (v Vector2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Norm returns the euclidean length of v.
func (v Vector2) Norm() float64 {
	return math.Hypot(float64(v.X), float64(v.Y))
}

func (v Vector2) String() string {
	return fmt.Sprintf("(%d,%d)", v.X, v.Y)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// CoordinatesFrom decodes a cell index into (column, row) coordinates.
func CoordinatesFrom(index, resolution int64) Vector2 {
	return Vector2{X: index % resolution, Y: index / resolution}
}

// IndexFrom encodes (column, row) coordinates back into a cell index.
func IndexFrom(v Vector2, resolution int64) int64 {
	return v.Y*resolution + v.X
}

// CosBetween returns the cosine similarity of two vectors.
//
// A zero vector has no direction: two zero vectors are treated as fully
// similar (1.0), while a zero vector against a nonzero one returns -2.0,
// a value outside the cosine range that fails every similarity threshold.
func CosBetween(a, b Vector2) float64 {
	if a.IsZero() || b.IsZero() {
		if a.IsZero() && b.IsZero() {
			return 1.0
		}
		return -2.0
	}
	dot := float64(a.X*b.X + a.Y*b.Y)
	return dot / (a.Norm() * b.Norm())
}
