package imageutil

import (
	"image"

	"golang.org/x/image/draw"
)

// Interpolation specifies the interpolation method for resizing.
type Interpolation int

const (
	// InterpolationArea uses Catmull-Rom, the best choice when shrinking a
	// scan down to a seed.
	InterpolationArea Interpolation = iota

	// InterpolationLinear uses bilinear interpolation.
	InterpolationLinear

	// InterpolationNearest keeps hard stroke edges. Use it when the source is
	// already binary.
	InterpolationNearest
)

func (interp Interpolation) scaler() draw.Scaler {
	switch interp {
	case InterpolationLinear:
		return draw.BiLinear
	case InterpolationNearest:
		return draw.NearestNeighbor
	default:
		return draw.CatmullRom
	}
}

// ResizeGray resizes a grayscale image to the specified dimensions.
func ResizeGray(img *GrayImage, width, height int, interp Interpolation) *GrayImage {
	dst := NewGrayImage(width, height)
	interp.scaler().Scale(dst.Gray, dst.Bounds(), img.Gray, img.Bounds(), draw.Src, nil)
	return dst
}

// FitSquare scales img into a size x size square, keeping its aspect ratio
// and centering it on white paper.
func FitSquare(img *GrayImage, size int, interp Interpolation) *GrayImage {
	dst := NewGrayImage(size, size)
	w, h := img.Width(), img.Height()
	if w == 0 || h == 0 || size <= 0 {
		return dst
	}

	fw, fh := size, size
	if w > h {
		fh = max(1, h*size/w)
	} else if h > w {
		fw = max(1, w*size/h)
	}
	x0 := (size - fw) / 2
	y0 := (size - fh) / 2

	interp.scaler().Scale(dst.Gray, image.Rect(x0, y0, x0+fw, y0+fh), img.Gray, img.Bounds(), draw.Src, nil)
	return dst
}
