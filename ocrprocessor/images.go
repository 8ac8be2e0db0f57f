package ocrprocessor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"pdfsummarizer/logging"
)

// DefaultPdfImagesPath is the poppler-utils image extractor.
const DefaultPdfImagesPath = "pdfimages"

// PopplerImageSource extracts the images of one page with pdfimages -png.
type PopplerImageSource struct {
	path   string
	run    CommandRunner
	logger *logging.Logger
}

// NewPopplerImageSource creates an image source. An empty path uses
// DefaultPdfImagesPath; a nil runner uses ExecRunner.
func NewPopplerImageSource(path string, run CommandRunner, logger *logging.Logger) *PopplerImageSource {
	if path == "" {
		path = DefaultPdfImagesPath
	}
	if run == nil {
		run = ExecRunner
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &PopplerImageSource{path: path, run: run, logger: logger.Named("pdfimages")}
}

// PageImages returns the encoded images on the 0-based page, in the order
// pdfimages wrote them. A page without images returns nil, nil.
func (s *PopplerImageSource) PageImages(ctx context.Context, pdfPath string, page int) ([][]byte, error) {
	dir, err := os.MkdirTemp("", "pdfimages-*")
	if err != nil {
		return nil, fmt.Errorf("ocrprocessor: failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	// pdfimages numbers pages from 1.
	n := strconv.Itoa(page + 1)
	if _, err := s.run(ctx, nil, s.path, "-f", n, "-l", n, "-png", pdfPath, filepath.Join(dir, "img")); err != nil {
		return nil, fmt.Errorf("ocrprocessor: pdfimages failed on page %d: %w", page+1, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ocrprocessor: failed to list extracted images: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	images := make([][]byte, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			s.logger.Warn("skipping unreadable image", zap.String("image", name), zap.Error(err))
			continue
		}
		images = append(images, data)
	}
	if len(images) == 0 {
		return nil, nil
	}
	return images, nil
}
