// Package pdfprocessor turns PDF files into LLM summaries.
//
// The pipeline extracts page text (extractor.go), merges it with OCR text
// (merge.go), splits the result into chunks (chunker.go) and summarizes them
// through a chat-completion endpoint (client.go, summarizer.go).
// processor.go drives it per document and per folder.
package pdfprocessor

import (
	"fmt"
	"unicode/utf8"
)

// PageMarkerPrefix starts every page header produced by MergePages.
// The chunker prefers cutting just before it.
const PageMarkerPrefix = "--- Page"

// pageBoundary is what the chunker searches for: a page header at line start.
const pageBoundary = "\n" + PageMarkerPrefix

// PageMarker returns the header line for the 0-based page index.
//
// Example:
//
//	PageMarker(0) // "--- Page 1 ---"
func PageMarker(pageIndex int) string {
	return fmt.Sprintf("%s %d ---", PageMarkerPrefix, pageIndex+1)
}

// OCRMarker returns the line introducing OCR text for the 0-based page index.
func OCRMarker(pageIndex int) string {
	return fmt.Sprintf("[Image Text Extracted via OCR on Page %d]", pageIndex+1)
}

// TruncateText shortens text to at most maxLen bytes without splitting a
// UTF-8 sequence, appending "..." when it had to cut.
//
// Example:
//
//	TruncateText("Hello, world!", 8) // "Hello..."
//	TruncateText("Hi", 10)           // "Hi"
func TruncateText(text string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if len(text) <= maxLen {
		return text
	}
	if maxLen < 4 {
		return text[:runeBoundary(text, maxLen)]
	}
	return text[:runeBoundary(text, maxLen-3)] + "..."
}

// runeBoundary moves i left until text[:i] ends on a complete rune.
func runeBoundary(text string, i int) int {
	if i >= len(text) {
		return len(text)
	}
	for i > 0 && !utf8.RuneStart(text[i]) {
		i--
	}
	return i
}
