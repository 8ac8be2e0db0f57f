package ocrprocessor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pdfsummarizer/logging"
)

// Tesseract defaults.
const (
	DefaultTesseractPath = "tesseract"
	DefaultLanguage      = "eng"
)

// TesseractRecognizer runs the local tesseract binary, feeding the image on
// stdin and reading text from stdout.
type TesseractRecognizer struct {
	path   string
	lang   string
	run    CommandRunner
	logger *logging.Logger
}

// NewTesseractRecognizer creates a recognizer. Empty path and lang take
// their defaults; a nil runner uses ExecRunner.
func NewTesseractRecognizer(path, lang string, run CommandRunner, logger *logging.Logger) *TesseractRecognizer {
	if path == "" {
		path = DefaultTesseractPath
	}
	if lang == "" {
		lang = DefaultLanguage
	}
	if run == nil {
		run = ExecRunner
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &TesseractRecognizer{path: path, lang: lang, run: run, logger: logger.Named("tesseract")}
}

// Name identifies the engine in logs.
func (t *TesseractRecognizer) Name() string { return "tesseract" }

// Recognize returns the text tesseract finds in image, or ErrNoTextFound.
func (t *TesseractRecognizer) Recognize(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("ocrprocessor: image data is empty")
	}

	out, err := t.run(ctx, image, t.path, "stdin", "stdout", "-l", t.lang)
	if err != nil {
		return "", fmt.Errorf("ocrprocessor: tesseract failed: %w", err)
	}

	text := CleanText(string(out))
	t.logger.Debug("image recognized", zap.String("lang", t.lang), zap.Int("text_len", len(text)))
	if text == "" {
		return "", ErrNoTextFound
	}
	return text, nil
}
