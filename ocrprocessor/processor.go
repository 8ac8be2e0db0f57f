package ocrprocessor

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"pdfsummarizer/logging"
	"pdfsummarizer/pdfprocessor"
)

// ErrProcessorNotConfigured indicates the processor is missing a collaborator.
var ErrProcessorNotConfigured = errors.New("ocrprocessor: processor not properly configured")

// Recognizer turns one encoded image into text. Implementations return
// ErrNoTextFound for images without text.
type Recognizer interface {
	Name() string
	Recognize(ctx context.Context, image []byte) (string, error)
}

// ImageSource returns the encoded images on a 0-based page of a PDF.
type ImageSource interface {
	PageImages(ctx context.Context, pdfPath string, page int) ([][]byte, error)
}

// ProcessorConfig holds configuration for the OCR processor.
type ProcessorConfig struct {
	// MaxImageDim is the longest side passed to the recognizer; 0 disables scaling.
	MaxImageDim int
}

// DefaultProcessorConfig returns the default configuration.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{MaxImageDim: DefaultMaxImageDim}
}

// Processor runs OCR over the selected pages of a document. It implements
// pdfprocessor.ImageTextExtractor.
//
// Thread-Safety:
//   - Processor is safe for concurrent use if its recognizer and source are.
type Processor struct {
	source     ImageSource
	recognizer Recognizer
	config     ProcessorConfig
	pageCount  func(path string) (int, error)
	logger     *logging.Logger
}

// NewProcessor creates an OCR processor.
//
// Example:
//
//	ocr := NewProcessor(
//	    NewPopplerImageSource("", nil, logger),
//	    NewTesseractRecognizer("", "eng", nil, logger),
//	    DefaultProcessorConfig(), logger)
//	text, err := ocr.ExtractImageText(ctx, "/path/to/scan.pdf", pdfprocessor.SelectPages(0, 1))
func NewProcessor(source ImageSource, recognizer Recognizer, config ProcessorConfig, logger *logging.Logger) *Processor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Processor{
		source:     source,
		recognizer: recognizer,
		config:     config,
		pageCount:  pdfprocessor.PageCount,
		logger:     logger.Named("ocr"),
	}
}

// ExtractImageText returns OCR text keyed by 0-based page index for the pages
// in sel. Out-of-range pages are dropped with a warning, pages without images
// are skipped, and failures on a single image are logged and skipped. Only
// non-blank text is returned. Errors opening the document or running the
// image extractor are returned as *pdfprocessor.ExtractionError.
func (p *Processor) ExtractImageText(ctx context.Context, path string, sel pdfprocessor.PageSelector) (map[int]string, error) {
	out := make(map[int]string)
	if sel.None() {
		return out, nil
	}
	if p.source == nil || p.recognizer == nil {
		return nil, ErrProcessorNotConfigured
	}

	log := p.logger.With(zap.String("file", path), zap.String("engine", p.recognizer.Name()))

	numPages, err := p.pageCount(path)
	if err != nil {
		return nil, err
	}

	pages, dropped := sel.Resolve(numPages)
	if len(dropped) > 0 {
		log.Warn("OCR pages out of range, ignoring", zap.Ints("pages", dropped), zap.Int("page_count", numPages))
	}

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, &pdfprocessor.ExtractionError{Path: path, Op: "ocr", Err: err}
		}

		images, err := p.source.PageImages(ctx, path, page)
		if err != nil {
			return nil, &pdfprocessor.ExtractionError{Path: path, Op: "ocr", Err: err}
		}
		if len(images) == 0 {
			log.Debug("no images on page", zap.Int("page", page+1))
			continue
		}

		if text := p.recognizePage(ctx, log, page, images); text != "" {
			out[page] = text
		}
	}

	log.Info("OCR finished", zap.Int("pages_requested", len(pages)), zap.Int("pages_with_text", len(out)))
	return out, nil
}

func (p *Processor) recognizePage(ctx context.Context, log *logging.Logger, page int, images [][]byte) string {
	texts := make([]string, 0, len(images))
	for i, data := range images {
		ilog := log.With(zap.Int("page", page+1), zap.Int("image", i+1))

		prepared, err := PrepareImage(data, p.config.MaxImageDim)
		if err != nil {
			ilog.Warn("skipping undecodable image", zap.Error(err))
			continue
		}

		text, err := p.recognizer.Recognize(ctx, prepared)
		switch {
		case errors.Is(err, ErrNoTextFound):
			continue
		case err != nil:
			ilog.Warn("OCR failed for image", zap.Error(err))
			continue
		}
		texts = append(texts, text)
	}
	return JoinTexts(texts)
}
