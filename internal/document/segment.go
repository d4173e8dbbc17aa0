// Package document splits review input into addressable paragraph regions.
package document

import "strings"

// Region is a maximal run of non-blank lines. Line numbers are 0-indexed and
// EndLine is inclusive.
type Region struct {
	Index     int    `json:"index"`
	Text      string `json:"text"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// Segment splits text into paragraph regions in document order. Whitespace-only
// lines separate regions and never belong to one. Empty input yields no regions.
func Segment(text string) []Region {
	if text == "" {
		return nil
	}

	lines := strings.Split(text, "\n")
	var regions []Region
	var pending []string
	start := 0

	flush := func(end int) {
		if len(pending) == 0 {
			return
		}
		regions = append(regions, Region{
			Index:     len(regions),
			Text:      strings.Join(pending, "\n"),
			StartLine: start,
			EndLine:   end,
		})
		pending = pending[:0]
	}

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			flush(i - 1)
			continue
		}
		if len(pending) == 0 {
			start = i
		}
		pending = append(pending, line)
	}
	flush(len(lines) - 1)

	return regions
}

// Lookup returns the region with the given index, or false if idx is out of
// range.
func Lookup(regions []Region, idx int) (Region, bool) {
	if idx < 0 || idx >= len(regions) {
		return Region{}, false
	}
	return regions[idx], true
}
