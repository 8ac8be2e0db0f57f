package pdfprocessor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"pdfsummarizer/logging"
)

// ErrProcessorNotConfigured is returned when the processor is missing required collaborators.
var ErrProcessorNotConfigured = errors.New("processor not properly configured")

// PageExtractor returns per-page text for a document. *Extractor implements it.
type PageExtractor interface {
	ExtractPages(path string) ([]string, error)
}

// ImageTextExtractor returns OCR text per 0-based page index for the selected pages.
type ImageTextExtractor interface {
	ExtractImageText(ctx context.Context, path string, pages PageSelector) (map[int]string, error)
}

// DocumentStatus is the outcome of processing one document.
type DocumentStatus string

const (
	StatusSummarized DocumentStatus = "summarized"
	StatusFailed     DocumentStatus = "failed"
	StatusSkipped    DocumentStatus = "skipped"
)

// DocumentOptions are the per-run choices applied to every document.
type DocumentOptions struct {
	Instruction string
	OCRPages    PageSelector
}

// DocumentResult describes what happened to one document.
type DocumentResult struct {
	Path     string
	Name     string
	Status   DocumentStatus
	Summary  *SummaryResult // nil unless summarization ran
	Err      error          // extraction failure, if any
	Pages    int
	OCRPages int // pages that contributed OCR text
	Duration time.Duration
}

// FailureKind returns the failure kind, "extraction" for read errors, or "".
func (d *DocumentResult) FailureKind() string {
	switch {
	case d.Err != nil:
		return "extraction"
	case d.Summary != nil && d.Summary.Failure != nil:
		return string(d.Summary.Failure.Kind)
	default:
		return ""
	}
}

// Message returns a one-line description of a failed or skipped document.
func (d *DocumentResult) Message() string {
	switch {
	case d.Err != nil:
		return d.Err.Error()
	case d.Status == StatusSkipped:
		return "No text extracted. Skipping summarization."
	case d.Summary != nil:
		return d.Summary.String()
	default:
		return ""
	}
}

// BatchHooks receive batch events synchronously. Any hook may be nil.
type BatchHooks struct {
	OnStart    func(index, total int, path string)
	OnProgress func(path string, p Progress)
	OnDocument func(index, total int, doc *DocumentResult)
}

// BatchResult collects the outcome of ProcessFolder.
type BatchResult struct {
	Folder     string
	Documents  []*DocumentResult
	Summarized int
	Failed     int
	Skipped    int
	Canceled   bool
}

// Processor runs extract, OCR, merge and summarize for documents.
type Processor struct {
	extractor  PageExtractor
	ocr        ImageTextExtractor
	summarizer *Summarizer
	logger     *logging.Logger
}

// NewProcessor wires the pipeline. ocr may be nil to disable OCR entirely.
//
// Example:
//
//	client := NewClient(ClientConfig{APIKey: key}, logger)
//	summarizer := NewSummarizer(DefaultSummarizerConfig(), client, logger)
//	processor := NewProcessor(NewExtractor(logger), nil, summarizer, logger)
//	doc := processor.Process(ctx, "/path/to/document.pdf", DocumentOptions{Instruction: "Summarize"}, nil)
func NewProcessor(extractor PageExtractor, ocr ImageTextExtractor, summarizer *Summarizer, logger *logging.Logger) *Processor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Processor{
		extractor:  extractor,
		ocr:        ocr,
		summarizer: summarizer,
		logger:     logger.Named("processor"),
	}
}

// Process summarizes one document. It never returns nil; every failure is in the result.
func (p *Processor) Process(ctx context.Context, path string, opts DocumentOptions, progress ProgressFunc) *DocumentResult {
	start := time.Now()
	doc := &DocumentResult{Path: path, Name: filepath.Base(path)}
	defer func() { doc.Duration = time.Since(start) }()

	if p.extractor == nil || p.summarizer == nil {
		doc.Status = StatusFailed
		doc.Err = ErrProcessorNotConfigured
		return doc
	}

	log := p.logger.With(zap.String("file", doc.Name))

	pages, err := p.extractor.ExtractPages(path)
	if err != nil {
		log.Error("text extraction failed", zap.Error(err))
		doc.Status = StatusFailed
		doc.Err = err
		return doc
	}
	doc.Pages = len(pages)

	var ocrText map[int]string
	if p.ocr != nil && !opts.OCRPages.None() {
		ocrText, err = p.ocr.ExtractImageText(ctx, path, opts.OCRPages)
		if err != nil {
			log.Error("image text extraction failed", zap.Error(err))
			doc.Status = StatusFailed
			doc.Err = err
			return doc
		}
		for _, text := range ocrText {
			if strings.TrimSpace(text) != "" {
				doc.OCRPages++
			}
		}
	}

	if !HasText(pages, ocrText) {
		log.Warn("no text extracted, skipping summarization", zap.Int("pages", len(pages)))
		doc.Status = StatusSkipped
		return doc
	}

	merged := MergePages(pages, ocrText)
	instruction := opts.Instruction
	if strings.TrimSpace(instruction) == "" {
		instruction = DefaultInstruction
	}

	doc.Summary = p.summarizer.Summarize(ctx, merged, instruction, progress)
	if doc.Summary.OK() {
		doc.Status = StatusSummarized
		log.Info("document summarized",
			zap.Int("chunks", doc.Summary.ChunkCount),
			zap.Int("requests", doc.Summary.Requests),
			zap.String("skip_reason", string(doc.Summary.SkipReason)))
	} else {
		doc.Status = StatusFailed
		log.Warn("summarization failed",
			zap.String("kind", string(doc.Summary.Failure.Kind)),
			zap.String("category", doc.Summary.Failure.Kind.Category()),
			zap.String("detail", doc.Summary.Failure.Message))
	}
	return doc
}

// ListPDFs returns the regular *.pdf files (any case) directly inside folder, sorted by name.
func ListPDFs(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("could not read PDF folder: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			files = append(files, filepath.Join(folder, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// ProcessFolder processes every PDF in folder sequentially. A failed document
// never stops the batch; cancellation of ctx stops before the next document.
// The returned error is non-nil only when the folder cannot be listed.
func (p *Processor) ProcessFolder(ctx context.Context, folder string, opts DocumentOptions, hooks BatchHooks) (*BatchResult, error) {
	files, err := ListPDFs(folder)
	if err != nil {
		return nil, err
	}

	batch := &BatchResult{Folder: folder, Documents: make([]*DocumentResult, 0, len(files))}
	total := len(files)
	p.logger.Info("batch started", zap.String("folder", folder), zap.Int("files", total), zap.String("ocr_pages", opts.OCRPages.String()))

	for i, path := range files {
		if ctx.Err() != nil {
			batch.Canceled = true
			p.logger.Warn("batch canceled", zap.Int("remaining", total-i))
			break
		}

		if hooks.OnStart != nil {
			hooks.OnStart(i+1, total, path)
		}

		var progress ProgressFunc
		if hooks.OnProgress != nil {
			docPath := path
			progress = func(pr Progress) { hooks.OnProgress(docPath, pr) }
		}

		doc := p.Process(ctx, path, opts, progress)
		batch.Documents = append(batch.Documents, doc)
		switch doc.Status {
		case StatusSummarized:
			batch.Summarized++
		case StatusSkipped:
			batch.Skipped++
		default:
			batch.Failed++
		}

		if hooks.OnDocument != nil {
			hooks.OnDocument(i+1, total, doc)
		}
	}

	p.logger.Info("batch finished",
		zap.Int("summarized", batch.Summarized),
		zap.Int("failed", batch.Failed),
		zap.Int("skipped", batch.Skipped))
	return batch, nil
}
