package imageutil

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"io"
	"os"

	_ "golang.org/x/image/tiff" // Register TIFF decoder
)

// LoadGray loads an image from the specified path as grayscale.
// Supports PNG, JPEG, GIF, and TIFF formats.
func LoadGray(path string) (*GrayImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	return DecodeGray(f)
}

// DecodeGray decodes an image stream as grayscale.
func DecodeGray(r io.Reader) (*GrayImage, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return GrayImageFromImage(img), nil
}

// SavePNG saves an image as PNG to the specified path.
func SavePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return f.Close()
}

// SaveGrayImage saves a grayscale image as PNG.
func SaveGrayImage(img *GrayImage, path string) error {
	return SavePNG(img.Gray, path)
}
