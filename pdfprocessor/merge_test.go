package pdfprocessor

import "testing"

func TestMergePages(t *testing.T) {
	tests := []struct {
		name  string
		pages []string
		ocr   map[int]string
		want  string
	}{
		{
			name:  "no pages",
			pages: nil,
			want:  "",
		},
		{
			name:  "text only",
			pages: []string{"Intro text.", "Body text."},
			want:  "--- Page 1 ---\nIntro text.\n\n--- Page 2 ---\nBody text.",
		},
		{
			name:  "ocr on second page",
			pages: []string{"Intro text.", "Chart below."},
			ocr:   map[int]string{1: "Revenue 2023\n"},
			want: "--- Page 1 ---\nIntro text.\n\n" +
				"--- Page 2 ---\nChart below.\n\n[Image Text Extracted via OCR on Page 2]\nRevenue 2023",
		},
		{
			name:  "blank ocr ignored",
			pages: []string{"Only page."},
			ocr:   map[int]string{0: "  \n"},
			want:  "--- Page 1 ---\nOnly page.",
		},
		{
			name:  "ocr for missing page ignored",
			pages: []string{"Only page."},
			ocr:   map[int]string{3: "ghost"},
			want:  "--- Page 1 ---\nOnly page.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MergePages(tt.pages, tt.ocr); got != tt.want {
				t.Errorf("MergePages() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestHasText(t *testing.T) {
	if HasText([]string{"", "  "}, nil) {
		t.Error("HasText() = true for blank pages")
	}
	if !HasText([]string{"", ""}, map[int]string{1: "scanned"}) {
		t.Error("HasText() = false with OCR text")
	}
	if !HasText([]string{"text"}, nil) {
		t.Error("HasText() = false with page text")
	}
}
