package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMarkers(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []Marker
	}{
		{
			name: "no markers",
			raw:  "This document is fine.",
			want: nil,
		},
		{
			name: "single marker",
			raw:  "[PARAGRAPH 0] Opening is vague.",
			want: []Marker{{Paragraph: 0, Text: "Opening is vague."}},
		},
		{
			name: "multiple markers with preamble",
			raw:  "Here are my notes:\n[PARAGRAPH 0] Too long.\n[PARAGRAPH 2]   Define the acronym.  \n",
			want: []Marker{
				{Paragraph: 0, Text: "Too long."},
				{Paragraph: 2, Text: "Define the acronym."},
			},
		},
		{
			name: "no space before number",
			raw:  "[PARAGRAPH3] Tight spacing.",
			want: []Marker{{Paragraph: 3, Text: "Tight spacing."}},
		},
		{
			name: "empty body dropped",
			raw:  "[PARAGRAPH 1]   [PARAGRAPH 2] Kept.",
			want: []Marker{{Paragraph: 2, Text: "Kept."}},
		},
		{
			name: "body stops at malformed marker",
			raw:  "[PARAGRAPH 1] First. [PARAGRAPH x] junk",
			want: []Marker{{Paragraph: 1, Text: "First."}},
		},
		{
			name: "multi-line body",
			raw:  "[PARAGRAPH 4] Line one.\nLine two.",
			want: []Marker{{Paragraph: 4, Text: "Line one.\nLine two."}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseMarkers(tt.raw))
		})
	}
}

func TestParseMarkers_OverflowNumberDropped(t *testing.T) {
	got := ParseMarkers("[PARAGRAPH 99999999999999999999999] huge [PARAGRAPH 1] ok")
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Paragraph)
}

func TestIsFailureContent(t *testing.T) {
	assert.True(t, IsFailureContent(FailureMarker+" timeout"))
	assert.False(t, IsFailureContent("All good"))
	assert.True(t, Comment{Content: FailureMarker}.IsFailure())
}
