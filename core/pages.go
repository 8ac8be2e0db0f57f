package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// MaxOCRPageIndex is the largest page index ParsePageList accepts.
const MaxOCRPageIndex = 50000

// ParsePageList parses a comma-separated list of 0-based page indices and
// inclusive ranges, e.g. "0,1,5-8". The result is sorted and free of duplicates.
// An empty or blank string yields an empty list.
func ParsePageList(s string) ([]int, error) {
	seen := make(map[int]struct{})
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if start, end, isRange := strings.Cut(part, "-"); isRange && strings.TrimSpace(start) != "" {
			lo, err := parsePageIndex(start, part)
			if err != nil {
				return nil, err
			}
			hi, err := parsePageIndex(end, part)
			if err != nil {
				return nil, err
			}
			if lo > hi {
				return nil, invalidPages(s, fmt.Sprintf("range %q starts after it ends", part))
			}
			for p := lo; p <= hi; p++ {
				seen[p] = struct{}{}
			}
			continue
		}

		p, err := parsePageIndex(part, part)
		if err != nil {
			return nil, err
		}
		seen[p] = struct{}{}
	}

	pages := make([]int, 0, len(seen))
	for p := range seen {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages, nil
}

func parsePageIndex(raw, part string) (int, error) {
	raw = strings.TrimSpace(raw)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidPages(part, fmt.Sprintf("%q is not a page number", raw))
	}
	if n < 0 {
		return 0, invalidPages(part, "page numbers must not be negative")
	}
	if n > MaxOCRPageIndex {
		return 0, invalidPages(part, fmt.Sprintf("page %d is above the limit of %d", n, MaxOCRPageIndex))
	}
	return n, nil
}

func invalidPages(value, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidPages,
		Message: fmt.Sprintf("Invalid OCR page list '%s': %s", value, reason),
		Action:  "Use 0-based page numbers and ranges, e.g. 0,1,5-8",
	}
}
