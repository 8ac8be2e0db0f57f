package pdfprocessor

import "testing"

func TestPageMarker(t *testing.T) {
	if got := PageMarker(0); got != "--- Page 1 ---" {
		t.Errorf("PageMarker(0) = %q", got)
	}
	if got := OCRMarker(4); got != "[Image Text Extracted via OCR on Page 5]" {
		t.Errorf("OCRMarker(4) = %q", got)
	}
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		maxLen int
		want   string
	}{
		{"shorter than limit", "Hi", 10, "Hi"},
		{"exact length", "Hello", 5, "Hello"},
		{"with ellipsis", "Hello, world!", 8, "Hello..."},
		{"tiny limit", "Hello", 3, "Hel"},
		{"zero limit", "Hello", 0, ""},
		{"multibyte not split", "héllo wörld", 5, "h..."},
		{"empty", "", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateText(tt.text, tt.maxLen); got != tt.want {
				t.Errorf("TruncateText(%q, %d) = %q, want %q", tt.text, tt.maxLen, got, tt.want)
			}
		})
	}
}

func BenchmarkTruncateText(b *testing.B) {
	text := "The quick brown fox jumps over the lazy dog. "
	for i := 0; i < b.N; i++ {
		TruncateText(text, 20)
	}
}
