package pdfprocessor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"pdfsummarizer/logging"
)

// ErrEmptyPath is returned when an empty file path is provided.
var ErrEmptyPath = errors.New("empty PDF path provided")

// ExtractionError reports a failure to read a document. It is distinct from
// summarization failures, which are carried in results.
type ExtractionError struct {
	Path string
	Op   string // "open", "read", "ocr"
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("error extracting %s from %s: %v", e.Op, e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// IsExtractionError checks if err is an ExtractionError and returns it if so.
func IsExtractionError(err error) (*ExtractionError, bool) {
	var extErr *ExtractionError
	if errors.As(err, &extErr) {
		return extErr, true
	}
	return nil, false
}

// Extractor reads per-page text from PDF files with ledongthuc/pdf.
type Extractor struct {
	logger *logging.Logger
}

// NewExtractor creates an Extractor. A nil logger discards output.
func NewExtractor(logger *logging.Logger) *Extractor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Extractor{logger: logger.Named("extractor")}
}

// ExtractPages returns the trimmed text of every page in order. Pages without
// text, or whose content stream cannot be decoded, yield "". Failures to open
// or parse the file, including panics inside the PDF library, are returned as
// *ExtractionError.
//
// Example:
//
//	pages, err := NewExtractor(logger).ExtractPages("/path/to/document.pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
func (e *Extractor) ExtractPages(path string) (pages []string, err error) {
	if path == "" {
		return nil, &ExtractionError{Path: path, Op: "text", Err: ErrEmptyPath}
	}

	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = &ExtractionError{Path: path, Op: "text", Err: fmt.Errorf("pdf reader panic: %v", r)}
		}
	}()

	f, r, openErr := pdf.Open(path)
	if openErr != nil {
		return nil, &ExtractionError{Path: path, Op: "text", Err: openErr}
	}
	defer f.Close()

	total := r.NumPage()
	pages = make([]string, 0, total)

	// ledongthuc/pdf pages are 1-indexed.
	for pageNum := 1; pageNum <= total; pageNum++ {
		pages = append(pages, e.extractPage(r, pageNum))
	}

	e.logger.Debug("extracted pages", zap.String("file", path), zap.Int("pages", total))
	return pages, nil
}

func (e *Extractor) extractPage(r *pdf.Reader, pageNum int) string {
	p := r.Page(pageNum)
	if p.V.IsNull() {
		return ""
	}

	text, err := p.GetPlainText(nil)
	if err != nil {
		e.logger.Warn("page text unreadable", zap.Int("page", pageNum), zap.Error(err))
		return ""
	}
	return strings.TrimSpace(text)
}

// PageCount returns the number of pages in the PDF at path.
func PageCount(path string) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ExtractionError{Path: path, Op: "page count", Err: fmt.Errorf("pdf reader panic: %v", r)}
		}
	}()

	f, r, openErr := pdf.Open(path)
	if openErr != nil {
		return 0, &ExtractionError{Path: path, Op: "page count", Err: openErr}
	}
	defer f.Close()
	return r.NumPage(), nil
}
