package pdfprocessor

import (
	"strings"
)

// MergePages joins page text and OCR text into one document blob.
//
// Each page becomes
//
//	--- Page N ---
//	<text>
//
// followed, when ocr has non-blank text for that 0-based index, by
//
//	[Image Text Extracted via OCR on Page N]
//	<ocr text>
//
// with a blank line between pages. The result is trimmed.
func MergePages(pages []string, ocr map[int]string) string {
	var b strings.Builder
	for i, text := range pages {
		b.WriteString(PageMarker(i))
		b.WriteString("\n")
		b.WriteString(text)
		b.WriteString("\n")

		if ocrText := strings.TrimSpace(ocr[i]); ocrText != "" {
			b.WriteString("\n")
			b.WriteString(OCRMarker(i))
			b.WriteString("\n")
			b.WriteString(ocrText)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

// HasText reports whether merged contains anything besides page markers.
func HasText(pages []string, ocr map[int]string) bool {
	for i, text := range pages {
		if strings.TrimSpace(text) != "" || strings.TrimSpace(ocr[i]) != "" {
			return true
		}
	}
	return false
}
