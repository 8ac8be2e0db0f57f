package pdfprocessor

import (
	"strings"
)

// DefaultMaxCharsPerChunk is the chunk budget used when none is configured.
const DefaultMaxCharsPerChunk = 15000

// sentenceEnds are searched together; the latest match in the window wins.
var sentenceEnds = []string{". ", "! ", "? ", ".\n", "!\n", "?\n"}

// Chunker splits document text into chunks no longer than a byte budget,
// preferring page, paragraph and sentence boundaries in that order.
//
// Thread-Safety:
//   - Chunker is safe for concurrent use (stateless)
type Chunker struct {
	maxChars int
}

// NewChunker creates a Chunker with the given budget in bytes.
// A non-positive budget selects DefaultMaxCharsPerChunk.
func NewChunker(maxChars int) *Chunker {
	if maxChars <= 0 {
		maxChars = DefaultMaxCharsPerChunk
	}
	return &Chunker{maxChars: maxChars}
}

// MaxChars returns the chunk budget.
func (c *Chunker) MaxChars() int {
	return c.maxChars
}

// SplitIntoChunks divides text into trimmed, non-empty chunks in document order.
// Empty input returns no chunks. It never fails and always terminates: every
// iteration advances the cursor by at least one byte, and by the full window
// when no boundary is found.
//
// Example:
//
//	chunks := NewChunker(15000).SplitIntoChunks(merged)
func (c *Chunker) SplitIntoChunks(text string) []string {
	chunks := make([]string, 0)
	if text == "" {
		return chunks
	}

	if len(text) <= c.maxChars {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			chunks = append(chunks, trimmed)
		}
		return chunks
	}

	cursor := 0
	for cursor < len(text) {
		end := cursor + c.maxChars
		if end >= len(text) {
			chunks = appendChunk(chunks, text[cursor:])
			break
		}

		// Keep the hard cut on a rune boundary but always advance.
		end = runeBoundary(text, end)
		if end <= cursor {
			end = cursor + 1
		}

		cut := c.findCut(text, cursor, end)
		if cut <= cursor {
			cut = end
		}

		chunks = appendChunk(chunks, text[cursor:cut])
		cursor = cut
	}

	return chunks
}

// findCut returns the preferred cut point in text[cursor:end], or end.
func (c *Chunker) findCut(text string, cursor, end int) int {
	window := text[cursor:end]

	// Page marker: cut before the newline so the next chunk opens with the header.
	if idx := strings.LastIndex(window, pageBoundary); idx > 0 {
		return cursor + idx
	}

	if idx := strings.LastIndex(window, "\n\n"); idx >= 0 {
		return cursor + idx + 2
	}

	best := -1
	for _, sep := range sentenceEnds {
		if idx := strings.LastIndex(window, sep); idx > best {
			best = idx
		}
	}
	if best >= 0 {
		return cursor + best + 1
	}

	return end
}

func appendChunk(chunks []string, raw string) []string {
	if trimmed := strings.TrimSpace(raw); trimmed != "" {
		return append(chunks, trimmed)
	}
	return chunks
}
