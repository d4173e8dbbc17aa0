package synth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// errNoFindings marks a response that parsed but carried nothing usable.
var errNoFindings = errors.New("synth: response contains no findings")

// finding is one element of the model's JSON answer.
type finding struct {
	Content              string   `json:"content"`
	Category             string   `json:"category"`
	Priority             string   `json:"priority"`
	ContributingPersonas []string `json:"contributing_personas"`
	LineRanges           [][]int  `json:"line_ranges"`
	GroupIndex           *int     `json:"group_index"`
}

// ranges returns the well-formed [start, end] pairs of f, 1-based as written.
func (f finding) ranges() [][2]int {
	var out [][2]int
	for _, r := range f.LineRanges {
		if len(r) != 2 {
			continue
		}
		start, end := r[0], r[1]
		if end < start {
			start, end = end, start
		}
		out = append(out, [2]int{start, end})
	}
	return out
}

// parseFindings decodes raw model output into findings. It accepts a bare JSON
// array or an object with a "findings" array, optionally wrapped in a
// markdown code fence or surrounded by prose. Findings with blank content are
// dropped and an answer left with none is an error.
func parseFindings(raw string) ([]finding, error) {
	text := stripFence(strings.TrimSpace(raw))
	if text == "" {
		return nil, errors.New("synth: empty response")
	}

	var findings []finding
	switch text[0] {
	case '[':
		if err := json.Unmarshal([]byte(text), &findings); err != nil {
			return nil, fmt.Errorf("synth: decode findings: %w", err)
		}
	case '{':
		var wrapped struct {
			Findings []finding `json:"findings"`
		}
		if err := json.Unmarshal([]byte(text), &wrapped); err != nil {
			return nil, fmt.Errorf("synth: decode findings: %w", err)
		}
		findings = wrapped.Findings
	default:
		start, end := strings.Index(text, "["), strings.LastIndex(text, "]")
		if start < 0 || end <= start {
			return nil, errors.New("synth: response is not JSON")
		}
		if err := json.Unmarshal([]byte(text[start:end+1]), &findings); err != nil {
			return nil, fmt.Errorf("synth: decode findings: %w", err)
		}
	}

	kept := findings[:0]
	for _, f := range findings {
		f.Content = strings.TrimSpace(f.Content)
		if f.Content == "" {
			continue
		}
		kept = append(kept, f)
	}
	if len(kept) == 0 {
		return nil, errNoFindings
	}
	return kept, nil
}

// stripFence removes a surrounding ``` or ```json fence.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
