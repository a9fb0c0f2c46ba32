package imageutil

import (
	"math"
)

// CreateBarImage draws a black filled rectangle spanning [x0,x1) x [y0,y1)
// on white paper.
func CreateBarImage(width, height, x0, y0, x1, y1 int) *GrayImage {
	img := NewGrayImage(width, height)
	for y := max(0, y0); y < min(height, y1); y++ {
		for x := max(0, x0); x < min(width, x1); x++ {
			img.SetGrayValue(x, y, 0)
		}
	}
	return img
}

// CreateRingImage draws a black ring of the given thickness centered on the
// image, like a handwritten "o".
func CreateRingImage(size, radius, thickness int) *GrayImage {
	img := NewGrayImage(size, size)
	c := float64(size-1) / 2
	outer := float64(radius)
	inner := float64(radius - thickness)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := math.Hypot(float64(x)-c, float64(y)-c)
			if d <= outer && d > inner {
				img.SetGrayValue(x, y, 0)
			}
		}
	}
	return img
}

// CalculateMSEGray calculates the Mean Squared Error between two grayscale images.
func CalculateMSEGray(img1, img2 *GrayImage) float64 {
	if img1.Width() != img2.Width() || img1.Height() != img2.Height() {
		return math.MaxFloat64
	}

	width, height := img1.Width(), img1.Height()
	var sumSq float64
	count := float64(width * height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			d := float64(img1.GrayAt(x, y).Y) - float64(img2.GrayAt(x, y).Y)
			sumSq += d * d
		}
	}

	return sumSq / count
}

// CalculateJaccardIndex calculates the Jaccard similarity between two
// binary cell grids. Returns a value between 0 (no overlap) and 1 (perfect
// overlap).
func CalculateJaccardIndex(cells1, cells2 []uint32) float64 {
	if len(cells1) != len(cells2) {
		return 0
	}

	var intersection, union int
	for i := range cells1 {
		a, b := cells1[i] != 0, cells2[i] != 0
		if a && b {
			intersection++
		}
		if a || b {
			union++
		}
	}

	if union == 0 {
		return 1.0 // Both empty
	}
	return float64(intersection) / float64(union)
}
