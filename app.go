package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pdfsummarizer/core"
	"pdfsummarizer/db"
	"pdfsummarizer/export"
	"pdfsummarizer/logging"
	"pdfsummarizer/ocrprocessor"
	"pdfsummarizer/pdfprocessor"
)

// app carries what every command needs.
type app struct {
	cfg      *core.Config
	logger   *logging.Logger
	settings core.Settings
	out      io.Writer
	errOut   io.Writer
}

// runOptions are the resolved choices for one run or summarize invocation.
type runOptions struct {
	Instruction string
	OCRPages    pdfprocessor.PageSelector
	OCRLanguage string
	OutDir      string
	Format      string
	Save        bool
}

// runFlags mirrors the command-line flags before they are merged with settings.
type runFlags struct {
	instruction string
	ocr         bool
	noOCR       bool
	ocrAll      bool
	ocrPages    string
	ocrLang     string
	out         string
	format      string
	noSave      bool
}

// resolveOptions merges flags over saved settings. Flags win when set.
func resolveOptions(f runFlags, s core.Settings, engine string) (runOptions, error) {
	opts := runOptions{
		Instruction: firstNonBlank(f.instruction, s.Instruction, core.DefaultInstruction),
		OCRLanguage: firstNonBlank(f.ocrLang, s.OCRLanguage, core.DefaultOCRLanguage),
		OutDir:      firstNonBlank(f.out, s.DefaultSaveLocation),
		Format:      strings.ToLower(firstNonBlank(f.format, s.OutputFormat, core.DefaultOutputFormat)),
		Save:        !f.noSave,
		OCRPages:    pdfprocessor.NoPages(),
	}
	if !export.ValidFormat(opts.Format) {
		return opts, core.ErrInvalidValue("--format", opts.Format, "must be one of txt, md, html")
	}

	enabled := (s.OCREnabled || f.ocr || f.ocrAll || f.ocrPages != "") && !f.noOCR
	if !enabled || engine == core.OCREngineNone {
		return opts, nil
	}

	if f.ocrAll || (s.OCRAllPages && f.ocrPages == "") {
		opts.OCRPages = pdfprocessor.AllPages()
		return opts, nil
	}

	pages, err := core.ParsePageList(firstNonBlank(f.ocrPages, s.OCRPages, core.DefaultOCRPages))
	if err != nil {
		return opts, err
	}
	opts.OCRPages = pdfprocessor.SelectPages(pages...)
	return opts, nil
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// newProcessor wires extractor, OCR engine, client and summarizer.
func (a *app) newProcessor(opts runOptions) (*pdfprocessor.Processor, error) {
	client := pdfprocessor.NewClient(pdfprocessor.ClientConfig{
		APIKey:     a.cfg.DeepSeekAPIKey,
		BaseURL:    a.cfg.BaseLLMURL,
		Model:      a.cfg.Model,
		Timeout:    a.cfg.AITimeout,
		HTTPClient: core.GetHTTPClient(a.cfg.AITimeout),
	}, a.logger)
	a.logger.Debug("summary client ready", zap.String("model", client.Model()), zap.String("base_url", a.cfg.BaseLLMURL))

	summarizer := pdfprocessor.NewSummarizer(pdfprocessor.SummarizerConfig{
		MaxCharsPerChunk:        a.cfg.MaxCharsPerChunk,
		MaxCombinedSummaryChars: a.cfg.MaxCombinedSummaryChars,
		ChunkDelay:              a.cfg.ChunkDelay,
	}, client, a.logger)

	var ocr pdfprocessor.ImageTextExtractor
	if !opts.OCRPages.None() {
		recognizer, err := a.newRecognizer(opts.OCRLanguage)
		if err != nil {
			return nil, err
		}
		ocr = ocrprocessor.NewProcessor(
			ocrprocessor.NewPopplerImageSource(a.cfg.PdfImagesPath, nil, a.logger),
			recognizer,
			ocrprocessor.ProcessorConfig{MaxImageDim: a.cfg.OCRMaxImageDim},
			a.logger)
	}

	return pdfprocessor.NewProcessor(pdfprocessor.NewExtractor(a.logger), ocr, summarizer, a.logger), nil
}

func (a *app) newRecognizer(lang string) (ocrprocessor.Recognizer, error) {
	switch a.cfg.OCREngine {
	case core.OCREngineVision:
		cfg := ocrprocessor.DefaultVisionConfig()
		if hint := visionLanguageHint(lang); hint != "" {
			cfg.LanguageHints = []string{hint}
		}
		a.logger.Info("using Google Vision OCR", zap.String("key", ocrprocessor.MaskAPIKey(a.cfg.GoogleVisionKey)))
		return ocrprocessor.NewVisionRecognizer(a.cfg.GoogleVisionKey, core.GetHTTPClient(cfg.Timeout), a.logger, cfg)
	default:
		return ocrprocessor.NewTesseractRecognizer(a.cfg.TesseractPath, lang, nil, a.logger), nil
	}
}

// visionLanguageHint maps common tesseract codes to BCP-47 for Vision.
func visionLanguageHint(lang string) string {
	switch lang {
	case "eng":
		return "en"
	case "deu":
		return "de"
	case "fra":
		return "fr"
	case "spa":
		return "es"
	case "ita":
		return "it"
	case "por":
		return "pt"
	case "nld":
		return "nl"
	}
	if len(lang) == 2 {
		return lang
	}
	return ""
}

// openHistory opens the history database. Failure is logged and history is
// disabled for this run.
func (a *app) openHistory() (*db.Database, *db.Repository) {
	database, err := db.Open(a.cfg.HistoryDB)
	if err != nil {
		a.logger.Warn("summary history disabled", zap.String("path", a.cfg.HistoryDB), zap.Error(err))
		return nil, nil
	}
	return database, db.NewRepository(database)
}

// batchRecorder saves and records each finished document.
type batchRecorder struct {
	app     *app
	repo    *db.Repository
	runID   string
	opts    runOptions
	outDir  string
	printer *printer
}

func (r *batchRecorder) record(ctx context.Context, doc *pdfprocessor.DocumentResult) {
	var outputPath string
	if r.opts.Save && doc.Status == pdfprocessor.StatusSummarized {
		path, err := export.WriteSummary(r.outDir, doc.Name, doc.Summary.Text, r.opts.Format, time.Now())
		if err != nil {
			r.app.logger.Error("failed to save summary", zap.String("file", doc.Name), zap.Error(err))
			r.printer.warn("Could not save summary for %s: %v", doc.Name, err)
		} else {
			outputPath = path
			r.printer.saved(path)
		}
	}

	if r.repo == nil {
		return
	}
	rec := db.SummaryRecord{
		RunID:       r.runID,
		FilePath:    doc.Path,
		FileName:    doc.Name,
		Status:      string(doc.Status),
		FailureKind: doc.FailureKind(),
		OCRPages:    doc.OCRPages,
		OutputPath:  outputPath,
		Duration:    doc.Duration,
	}
	if doc.Status != pdfprocessor.StatusSummarized {
		rec.Message = doc.Message()
	}
	if s := doc.Summary; s != nil {
		rec.ChunkCount = s.ChunkCount
		rec.RequestCount = s.Requests
		rec.SkipReason = string(s.SkipReason)
		if s.OK() {
			rec.Summary = s.Text
		}
	}
	// History writes must not be lost to a canceled run.
	if _, err := r.repo.Insert(context.WithoutCancel(ctx), rec); err != nil {
		r.app.logger.Warn("failed to record history", zap.String("file", doc.Name), zap.Error(err))
	}
}

// runBatch summarizes every PDF in folder.
func (a *app) runBatch(ctx context.Context, folder string, opts runOptions) (*pdfprocessor.BatchResult, error) {
	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		return nil, core.ErrInvalidValue("folder", folder, "is not a readable directory")
	}

	processor, err := a.newProcessor(opts)
	if err != nil {
		return nil, err
	}

	database, repo := a.openHistory()
	if database != nil {
		defer database.Close()
	}

	p := newPrinter(a.out)
	rec := &batchRecorder{
		app:     a,
		repo:    repo,
		runID:   uuid.New().String(),
		opts:    opts,
		outDir:  firstNonBlank(opts.OutDir, folder),
		printer: p,
	}
	a.logger.Info("run started", zap.String("run_id", rec.runID), zap.String("folder", folder))
	if !a.cfg.HasAPIKey() {
		p.warn("DEEPSEEK_API_KEY is not set; every document will fail with missing_credential.")
	}

	batch, err := processor.ProcessFolder(ctx, folder, pdfprocessor.DocumentOptions{
		Instruction: opts.Instruction,
		OCRPages:    opts.OCRPages,
	}, pdfprocessor.BatchHooks{
		OnStart:    p.start,
		OnProgress: p.progress,
		OnDocument: func(index, total int, doc *pdfprocessor.DocumentResult) {
			p.document(doc)
			rec.record(ctx, doc)
		},
	})
	if err != nil {
		return nil, err
	}

	p.totals(batch)
	return batch, nil
}

// summarizeOne summarizes a single file and prints the summary.
func (a *app) summarizeOne(ctx context.Context, path string, opts runOptions) (*pdfprocessor.DocumentResult, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	processor, err := a.newProcessor(opts)
	if err != nil {
		return nil, err
	}

	database, repo := a.openHistory()
	if database != nil {
		defer database.Close()
	}

	p := newPrinter(a.errOut)
	doc := processor.Process(ctx, path, pdfprocessor.DocumentOptions{
		Instruction: opts.Instruction,
		OCRPages:    opts.OCRPages,
	}, func(pr pdfprocessor.Progress) { p.progress(path, pr) })

	if doc.Status == pdfprocessor.StatusSummarized {
		fmt.Fprintln(a.out, doc.Summary.Text)
	}
	p.document(doc)

	rec := &batchRecorder{app: a, repo: repo, runID: uuid.New().String(), opts: opts, outDir: opts.OutDir, printer: p}
	if opts.OutDir == "" {
		rec.opts.Save = false
	}
	rec.record(ctx, doc)
	return doc, nil
}

// rememberRun stores the folder and choices of a successful run.
func (a *app) rememberRun(folder string, opts runOptions) {
	a.settings.LastFolder = folder
	a.settings.AddRecentFolder(folder)
	a.settings.Instruction = opts.Instruction
	a.settings.OCREnabled = !opts.OCRPages.None()
	a.settings.OCRAllPages = opts.OCRPages.All()
	if pages := opts.OCRPages.Pages(); len(pages) > 0 {
		a.settings.OCRPages = opts.OCRPages.String()
	}
	a.settings.OCRLanguage = opts.OCRLanguage
	a.settings.OutputFormat = opts.Format
	if opts.OutDir != "" {
		a.settings.DefaultSaveLocation = opts.OutDir
	}
	if err := core.SaveSettings(a.cfg.SettingsFile, a.settings); err != nil {
		a.logger.Warn("failed to save settings", zap.String("path", a.cfg.SettingsFile), zap.Error(err))
	}
}
