package main

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fatih/color"

	"pdfsummarizer/pdfprocessor"
)

// printer writes run progress for humans. Colors are dropped automatically
// when the output is not a terminal.
type printer struct {
	w io.Writer

	ok   *color.Color
	fail *color.Color
	skip *color.Color
	dim  *color.Color
	bold *color.Color
}

func newPrinter(w io.Writer) *printer {
	return &printer{
		w:    w,
		ok:   color.New(color.FgGreen),
		fail: color.New(color.FgRed),
		skip: color.New(color.FgYellow),
		dim:  color.New(color.Faint),
		bold: color.New(color.Bold),
	}
}

func (p *printer) start(index, total int, path string) {
	p.bold.Fprintf(p.w, "[%d/%d] %s\n", index, total, filepath.Base(path))
}

func (p *printer) progress(_ string, pr pdfprocessor.Progress) {
	switch pr.Stage {
	case pdfprocessor.StageChunk, pdfprocessor.StageSynthesis:
		p.dim.Fprintf(p.w, "  %s\n", pr.Message)
	}
}

func (p *printer) document(doc *pdfprocessor.DocumentResult) {
	switch doc.Status {
	case pdfprocessor.StatusSummarized:
		msg := "summarized"
		if doc.Summary.Degraded() {
			msg = fmt.Sprintf("summarized (synthesis skipped: %s)", doc.Summary.SkipReason)
		}
		p.ok.Fprintf(p.w, "  %s in %s\n", msg, doc.Duration.Round(10*time.Millisecond))
	case pdfprocessor.StatusSkipped:
		p.skip.Fprintf(p.w, "  skipped: %s\n", doc.Message())
	default:
		p.fail.Fprintf(p.w, "  failed: %s\n", doc.Message())
	}
}

func (p *printer) saved(path string) {
	p.dim.Fprintf(p.w, "  saved to %s\n", path)
}

func (p *printer) warn(format string, args ...interface{}) {
	p.skip.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) totals(b *pdfprocessor.BatchResult) {
	fmt.Fprintln(p.w)
	if b.Canceled {
		p.skip.Fprintln(p.w, "Run canceled before all files were processed.")
	}
	if len(b.Documents) == 0 {
		p.skip.Fprintf(p.w, "No PDF files found in %s\n", b.Folder)
		return
	}
	p.bold.Fprintf(p.w, "Done: ")
	p.ok.Fprintf(p.w, "%d summarized", b.Summarized)
	fmt.Fprint(p.w, ", ")
	p.fail.Fprintf(p.w, "%d errors", b.Failed)
	fmt.Fprint(p.w, ", ")
	p.skip.Fprintf(p.w, "%d skipped\n", b.Skipped)
}
