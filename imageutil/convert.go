package imageutil

import "image/color"

// Luminance converts a color to gray using the BT.601 weights
// Y = 0.299*R + 0.587*G + 0.114*B, compositing it over white paper first.
func Luminance(c color.Color) uint8 {
	r, g, b, a := c.RGBA()
	// Premultiplied components: add the paper showing through.
	paper := 0xffff - a
	r, g, b = r+paper, g+paper, b+paper

	lum := (299*int(r>>8) + 587*int(g>>8) + 114*int(b>>8) + 500) / 1000
	if lum > 255 {
		lum = 255
	}
	return uint8(lum)
}

// Invert swaps ink and paper, for scans of light strokes on a dark
// background.
func Invert(img *GrayImage) *GrayImage {
	out := img.Clone()
	for i, v := range out.Pix {
		out.Pix[i] = 255 - v
	}
	return out
}
