package ocrprocessor

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeImage(t *testing.T) {
	img, err := DecodeImage(encodePNG(t, 10, 5))
	if err != nil {
		t.Fatalf("DecodeImage() error = %v", err)
	}
	if img.Bounds().Dx() != 10 || img.Bounds().Dy() != 5 {
		t.Errorf("bounds = %v", img.Bounds())
	}

	if _, err := DecodeImage(nil); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("nil data error = %v, want ErrEmptyImage", err)
	}
	if _, err := DecodeImage([]byte("not an image")); !errors.Is(err, ErrInvalidImage) {
		t.Errorf("garbage error = %v, want ErrInvalidImage", err)
	}
}

func TestFitImage(t *testing.T) {
	tests := []struct {
		name         string
		w, h, maxDim int
		wantW, wantH int
	}{
		{"within bounds", 100, 50, 200, 100, 50},
		{"wide", 400, 100, 200, 200, 50},
		{"tall", 100, 400, 200, 50, 200},
		{"disabled", 400, 400, 0, 400, 400},
		{"thin", 1000, 1, 100, 100, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewRGBA(image.Rect(0, 0, tt.w, tt.h))
			got := FitImage(img, tt.maxDim).Bounds()
			if got.Dx() != tt.wantW || got.Dy() != tt.wantH {
				t.Errorf("FitImage(%dx%d, %d) = %dx%d, want %dx%d",
					tt.w, tt.h, tt.maxDim, got.Dx(), got.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestPrepareImage(t *testing.T) {
	small := encodePNG(t, 20, 10)
	out, err := PrepareImage(small, 100)
	if err != nil {
		t.Fatalf("PrepareImage() error = %v", err)
	}
	if !bytes.Equal(out, small) {
		t.Error("image within bounds should be returned unchanged")
	}

	out, err = PrepareImage(encodePNG(t, 300, 150), 100)
	if err != nil {
		t.Fatalf("PrepareImage() error = %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("result is not PNG: %v", err)
	}
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 50 {
		t.Errorf("scaled bounds = %v, want 100x50", img.Bounds())
	}
}
