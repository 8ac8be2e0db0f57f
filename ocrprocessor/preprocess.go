package ocrprocessor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
)

// Image preprocessing errors.
var (
	ErrEmptyImage   = errors.New("ocrprocessor: empty image data")
	ErrInvalidImage = errors.New("ocrprocessor: invalid image data")
)

// DefaultMaxImageDim caps the longer image side sent to a recognizer.
const DefaultMaxImageDim = 2000

// DecodeImage decodes PNG, JPEG, GIF, BMP or TIFF data.
func DecodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return img, nil
}

// FitImage scales img down so neither side exceeds maxDim, keeping the aspect
// ratio. Images already within bounds, or a non-positive maxDim, return img.
func FitImage(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return img
	}

	scale := float64(maxDim) / float64(max(w, h))
	nw := max(1, int(float64(w)*scale))
	nh := max(1, int(float64(h)*scale))

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// PrepareImage returns data unchanged when it fits within maxDim, otherwise
// the downscaled image re-encoded as PNG.
func PrepareImage(data []byte, maxDim int) ([]byte, error) {
	img, err := DecodeImage(data)
	if err != nil {
		return nil, err
	}
	fitted := FitImage(img, maxDim)
	if fitted == img {
		return data, nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, fitted); err != nil {
		return nil, fmt.Errorf("ocrprocessor: failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
