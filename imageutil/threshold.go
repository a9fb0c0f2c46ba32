package imageutil

// OtsuThreshold picks the gray level that best separates ink from paper by
// maximizing the between-class variance of the histogram.
func OtsuThreshold(img *GrayImage) uint8 {
	var histogram [256]int
	total := 0
	for y := 0; y < img.Height(); y++ {
		for x := 0; x < img.Width(); x++ {
			histogram[img.GetGray(x, y)]++
			total++
		}
	}
	if total == 0 {
		return 128
	}

	var sum float64
	for level, count := range histogram {
		sum += float64(level * count)
	}

	var sumBackground float64
	weightBackground := 0
	best := 0.0
	threshold := 0
	for level, count := range histogram {
		weightBackground += count
		if weightBackground == 0 {
			continue
		}
		weightForeground := total - weightBackground
		if weightForeground == 0 {
			break
		}
		sumBackground += float64(level * count)

		meanBackground := sumBackground / float64(weightBackground)
		meanForeground := (sum - sumBackground) / float64(weightForeground)
		diff := meanBackground - meanForeground
		between := float64(weightBackground) * float64(weightForeground) * diff * diff
		if between > best {
			best = between
			threshold = level
		}
	}
	// Pixels at or below the chosen level are the dark class.
	return uint8(threshold + 1)
}

// Binarize returns the image as row-major cells: 1 for ink (gray below
// threshold), 0 for paper. A zero threshold is replaced by OtsuThreshold.
func Binarize(img *GrayImage, threshold uint8) []uint32 {
	if threshold == 0 {
		threshold = OtsuThreshold(img)
	}
	width, height := img.Width(), img.Height()
	cells := make([]uint32, 0, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if img.GetGray(x, y) < threshold {
				cells = append(cells, 1)
			} else {
				cells = append(cells, 0)
			}
		}
	}
	return cells
}

// CellsToGray renders row-major binary cells back into an image, ink black.
func CellsToGray(cells []uint32, width int) *GrayImage {
	if width <= 0 {
		return NewGrayImage(0, 0)
	}
	height := (len(cells) + width - 1) / width
	img := NewGrayImage(width, height)
	for i, v := range cells {
		if v != 0 {
			img.SetGrayValue(i%width, i/width, 0)
		}
	}
	return img
}
