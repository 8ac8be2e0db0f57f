// Package export writes summaries to disk as text, markdown or HTML.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Output formats.
const (
	FormatText     = "txt"
	FormatMarkdown = "md"
	FormatHTML     = "html"
)

// Timestamp layouts for the file name and the header.
const (
	fileTimeLayout   = "20060102_150405"
	headerTimeLayout = "2006-01-02 15:04:05"
)

// ErrUnsupportedFormat is returned for formats other than txt, md and html.
var ErrUnsupportedFormat = errors.New("export: unsupported output format")

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// ValidFormat reports whether format is one WriteSummary accepts.
func ValidFormat(format string) bool {
	switch strings.ToLower(format) {
	case FormatText, FormatMarkdown, FormatHTML:
		return true
	}
	return false
}

// FileName returns "<safe name>_summary_<YYYYMMDD_HHMMSS>.<format>". The
// .pdf extension is dropped and only letters, digits, spaces, '_' and '-'
// are kept from the base name.
func FileName(pdfName, format string, now time.Time) string {
	base := strings.TrimSuffix(filepath.Base(pdfName), filepath.Ext(pdfName))
	safe := strings.TrimSpace(sanitize(base))
	if safe == "" {
		safe = "document"
	}
	return fmt.Sprintf("%s_summary_%s.%s", safe, now.Format(fileTimeLayout), strings.ToLower(format))
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Render returns the file contents for summary in format.
func Render(pdfName, summary, format string, now time.Time) ([]byte, error) {
	name := filepath.Base(pdfName)
	stamp := now.Format(headerTimeLayout)

	switch strings.ToLower(format) {
	case FormatText:
		return []byte(fmt.Sprintf("Summary for: %s\nGenerated on: %s\n\n%s\n", name, stamp, summary)), nil

	case FormatMarkdown:
		return []byte(fmt.Sprintf("# Summary for: %s\n\n_Generated on: %s_\n\n%s\n", name, stamp, summary)), nil

	case FormatHTML:
		var body bytes.Buffer
		if err := markdown.Convert([]byte(summary), &body); err != nil {
			return nil, fmt.Errorf("export: failed to render markdown: %w", err)
		}
		title := html.EscapeString("Summary for: " + name)
		var out bytes.Buffer
		fmt.Fprintf(&out, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n", title)
		fmt.Fprintf(&out, "<h1>%s</h1>\n<p><em>Generated on: %s</em></p>\n", title, stamp)
		out.Write(body.Bytes())
		out.WriteString("</body>\n</html>\n")
		return out.Bytes(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// WriteSummary writes summary for pdfName into dir, creating dir if needed,
// and returns the path written.
//
// Example:
//
//	path, err := export.WriteSummary("/out", "report.pdf", text, export.FormatText, time.Now())
//	// /out/report_summary_20260301_120000.txt
func WriteSummary(dir, pdfName, summary, format string, now time.Time) (string, error) {
	data, err := Render(pdfName, summary, format, now)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("export: failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, FileName(pdfName, format, now))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("export: failed to write summary: %w", err)
	}
	return path, nil
}
