package pdfprocessor

import (
	"sort"
	"strconv"
)

// PageSelector chooses which pages get OCR: every page, an explicit list of
// 0-based indices, or none. The zero value selects no pages.
type PageSelector struct {
	all   bool
	pages []int
}

// AllPages selects every page of the document.
func AllPages() PageSelector {
	return PageSelector{all: true}
}

// NoPages selects nothing.
func NoPages() PageSelector {
	return PageSelector{}
}

// SelectPages selects the given 0-based indices. An empty list selects nothing.
func SelectPages(pages ...int) PageSelector {
	if len(pages) == 0 {
		return NoPages()
	}
	cp := append([]int(nil), pages...)
	sort.Ints(cp)
	return PageSelector{pages: cp}
}

// All reports whether every page is selected.
func (s PageSelector) All() bool {
	return s.all
}

// None reports whether no page is selected.
func (s PageSelector) None() bool {
	return !s.all && len(s.pages) == 0
}

// Pages returns the explicit indices, or nil for AllPages.
func (s PageSelector) Pages() []int {
	return append([]int(nil), s.pages...)
}

// Resolve returns the unique in-range indices for a document with numPages
// pages, and the requested indices that were out of range.
func (s PageSelector) Resolve(numPages int) (selected, dropped []int) {
	if s.all {
		selected = make([]int, 0, numPages)
		for i := 0; i < numPages; i++ {
			selected = append(selected, i)
		}
		return selected, nil
	}

	seen := make(map[int]bool, len(s.pages))
	for _, p := range s.pages {
		if seen[p] {
			continue
		}
		seen[p] = true
		if p >= 0 && p < numPages {
			selected = append(selected, p)
		} else {
			dropped = append(dropped, p)
		}
	}
	return selected, dropped
}

// String describes the selection for logs.
func (s PageSelector) String() string {
	switch {
	case s.all:
		return "all"
	case len(s.pages) == 0:
		return "none"
	default:
		return formatPages(s.pages)
	}
}

func formatPages(pages []int) string {
	out := make([]byte, 0, len(pages)*3)
	for i, p := range pages {
		if i > 0 {
			out = append(out, ',')
		}
		out = strconv.AppendInt(out, int64(p), 10)
	}
	return string(out)
}
