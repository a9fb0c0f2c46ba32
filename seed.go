package glyphtrace

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/wbrown/glyphtrace/imageutil"
)

// ParseSeed reads a seed grid written as digits, one cell per digit. Any
// other character is ignored, so rows may be split by newlines or spaces.
// A size of zero infers the row size from the number of cells.
func ParseSeed(r io.Reader, size int) (Vmatrix[uint32], error) {
	var cells []uint32
	br := bufio.NewReader(r)
	for {
		c, err := br.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Vmatrix[uint32]{}, fmt.Errorf("failed to read seed: %w", err)
		}
		if c >= '0' && c <= '9' {
			cells = append(cells, uint32(c-'0'))
		}
	}

	if size == 0 {
		size = int(math.Sqrt(float64(len(cells))))
	}
	return BuildVmatrix(size, cells)
}

// SeedFromGray turns a gray image into a size x size binary seed. The image
// is fitted into the square, lightly blurred and thresholded; a zero
// threshold is chosen per image.
func SeedFromGray(img *imageutil.GrayImage, size int, threshold uint8) Vmatrix[uint32] {
	square := imageutil.FitSquare(img, size, imageutil.InterpolationArea)
	square = imageutil.GaussianBlurGray(square)
	return Vmatrix[uint32]{Size: size, Data: imageutil.Binarize(square, threshold)}
}

// LoadSeedImage loads an image file and converts it with SeedFromGray.
func LoadSeedImage(path string, size int, threshold uint8) (Vmatrix[uint32], error) {
	img, err := imageutil.LoadGray(path)
	if err != nil {
		return Vmatrix[uint32]{}, err
	}
	return SeedFromGray(img, size, threshold), nil
}

// SeedImage renders a binary grid as an image, ink black.
func SeedImage(seed Vmatrix[uint32]) *imageutil.GrayImage {
	return imageutil.CellsToGray(seed.Data, seed.Size)
}
