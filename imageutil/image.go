// Package imageutil turns raster images of handwriting into the square
// binary grids used as extraction seeds. It is pure Go so the core module
// builds without OpenCV.
package imageutil

import (
	"image"
	"image/color"
)

// GrayImage wraps image.Gray, the single working format of the package.
type GrayImage struct {
	*image.Gray
}

// NewGrayImage creates a white GrayImage with the specified dimensions.
func NewGrayImage(width, height int) *GrayImage {
	img := &GrayImage{
		Gray: image.NewGray(image.Rect(0, 0, width, height)),
	}
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

// GrayImageFromImage converts any image.Image to GrayImage using BT.601
// luminance. Transparent pixels count as paper.
func GrayImageFromImage(img image.Image) *GrayImage {
	if g, ok := img.(*image.Gray); ok {
		clone := &GrayImage{Gray: image.NewGray(image.Rect(0, 0, g.Bounds().Dx(), g.Bounds().Dy()))}
		for y := 0; y < clone.Height(); y++ {
			copy(clone.Pix[y*clone.Stride:(y+1)*clone.Stride],
				g.Pix[g.PixOffset(g.Bounds().Min.X, g.Bounds().Min.Y+y):])
		}
		return clone
	}

	bounds := img.Bounds()
	gray := NewGrayImage(bounds.Dx(), bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.SetGrayValue(x-bounds.Min.X, y-bounds.Min.Y, Luminance(img.At(x, y)))
		}
	}
	return gray
}

// Width returns the image width.
func (img *GrayImage) Width() int {
	return img.Bounds().Dx()
}

// Height returns the image height.
func (img *GrayImage) Height() int {
	return img.Bounds().Dy()
}

// GetGray returns the grayscale value at (x, y).
func (img *GrayImage) GetGray(x, y int) uint8 {
	return img.GrayAt(x, y).Y
}

// SetGrayValue sets the grayscale value at (x, y).
func (img *GrayImage) SetGrayValue(x, y int, v uint8) {
	img.Gray.SetGray(x, y, color.Gray{Y: v})
}

// Clone creates a deep copy of the image.
func (img *GrayImage) Clone() *GrayImage {
	clone := &GrayImage{Gray: image.NewGray(image.Rect(0, 0, img.Width(), img.Height()))}
	copy(clone.Pix, img.Pix)
	return clone
}
