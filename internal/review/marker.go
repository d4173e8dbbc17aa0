package review

import (
	"regexp"
	"strconv"
	"strings"
)

// markerPrefix terminates a comment body, whether or not a well-formed marker
// follows it.
const markerPrefix = "[PARAGRAPH"

// markerRe matches a paragraph marker such as "[PARAGRAPH 3]".
var markerRe = regexp.MustCompile(`\[PARAGRAPH\s*(\d+)\]`)

// Marker is one paragraph-tagged critique extracted from model output.
type Marker struct {
	Paragraph int
	Text      string
}

// ParseMarkers extracts every "[PARAGRAPH <n>] <text>" segment from raw. A
// body runs to the next "[PARAGRAPH" or the end of the text and is trimmed.
// Text outside markers, empty bodies and unparseable numbers are dropped;
// output with no markers yields an empty slice, not an error.
func ParseMarkers(raw string) []Marker {
	locs := markerRe.FindAllStringSubmatchIndex(raw, -1)
	if len(locs) == 0 {
		return nil
	}

	markers := make([]Marker, 0, len(locs))
	for _, loc := range locs {
		n, err := strconv.Atoi(raw[loc[2]:loc[3]])
		if err != nil {
			continue
		}

		body := raw[loc[1]:]
		if next := strings.Index(body, markerPrefix); next >= 0 {
			body = body[:next]
		}
		body = strings.TrimSpace(body)
		if body == "" {
			continue
		}

		markers = append(markers, Marker{Paragraph: n, Text: body})
	}
	return markers
}
