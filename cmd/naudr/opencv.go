package main

import (
	"fmt"
	"image"

	"github.com/wbrown/glyphtrace"
	"gocv.io/x/gocv"
)

// loadSeedOpenCV builds a size x size seed with OpenCV: Otsu thresholding on
// the full image, then an area resize that keeps the aspect ratio and
// centers the strokes.
func loadSeedOpenCV(path string, size int) (glyphtrace.Vmatrix[uint32], error) {
	img := gocv.IMRead(path, gocv.IMReadGrayScale)
	if img.Empty() {
		return glyphtrace.Vmatrix[uint32]{}, fmt.Errorf("could not read image from %s", path)
	}
	defer img.Close()

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(img, &blurred, image.Point{X: 3, Y: 3}, 0, 0, gocv.BorderDefault)

	// Ink becomes 255.
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(blurred, &mask, 0, 255, gocv.ThresholdBinaryInv|gocv.ThresholdOtsu)

	w, h := mask.Cols(), mask.Rows()
	fw, fh := size, size
	if w > h {
		fh = max(1, h*size/w)
	} else {
		fw = max(1, w*size/h)
	}

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(mask, &resized, image.Point{X: fw, Y: fh}, 0, 0, gocv.InterpolationArea)

	seed := glyphtrace.InitializeVmatrix[uint32](size, 0)
	ox, oy := (size-fw)/2, (size-fh)/2
	for y := 0; y < fh; y++ {
		for x := 0; x < fw; x++ {
			if resized.GetUCharAt(y, x) > 127 {
				seed.Data[(y+oy)*size+x+ox] = 1
			}
		}
	}
	return seed, nil
}
