package synth

import (
	"testing"

	"github.com/dusk-indust/critics/internal/review"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(id string, start, end int) review.Comment {
	return review.Comment{
		ID:          id,
		PersonaID:   "p-" + id,
		PersonaName: "P " + id,
		Content:     "comment " + id,
		Anchor:      review.Anchor{StartLine: start, EndLine: end},
	}
}

func TestGroup_Empty(t *testing.T) {
	assert.Empty(t, Group(nil))
}

func TestGroup_MergesWithinTolerance(t *testing.T) {
	groups := Group([]review.Comment{at("c", 10, 10), at("a", 0, 1), at("b", 2, 3)})
	require.Len(t, groups, 2)

	assert.Equal(t, 0, groups[0].StartLine)
	assert.Equal(t, 3, groups[0].EndLine)
	require.Len(t, groups[0].Comments, 2)
	assert.Equal(t, "a", groups[0].Comments[0].ID)
	assert.Equal(t, "b", groups[0].Comments[1].ID)

	assert.Equal(t, 10, groups[1].StartLine)
	assert.Equal(t, 10, groups[1].EndLine)
}

func TestGroup_ToleranceBoundary(t *testing.T) {
	// A gap of exactly two lines merges; three does not.
	assert.Len(t, Group([]review.Comment{at("a", 0, 0), at("b", 2, 2)}), 1)
	assert.Len(t, Group([]review.Comment{at("a", 0, 0), at("b", 3, 3)}), 2)
}

func TestGroup_ContainedRangeKeepsEnd(t *testing.T) {
	groups := Group([]review.Comment{at("a", 0, 9), at("b", 2, 3)})
	require.Len(t, groups, 1)
	assert.Equal(t, 9, groups[0].EndLine)
}

func TestGroup_StableForEqualAnchors(t *testing.T) {
	groups := Group([]review.Comment{at("x", 4, 4), at("y", 4, 4), at("z", 4, 4)})
	require.Len(t, groups, 1)
	ids := []string{groups[0].Comments[0].ID, groups[0].Comments[1].ID, groups[0].Comments[2].ID}
	assert.Equal(t, []string{"x", "y", "z"}, ids)
}

func TestGroup_PartitionsInput(t *testing.T) {
	in := []review.Comment{
		at("a", 30, 31), at("b", 0, 0), at("c", 5, 8), at("d", 9, 9),
		at("e", 20, 20), at("f", 1, 2), at("g", 22, 25),
	}
	groups := Group(in)

	seen := map[string]int{}
	for i, g := range groups {
		for _, c := range g.Comments {
			seen[c.ID]++
			assert.GreaterOrEqual(t, c.Anchor.StartLine, g.StartLine)
			assert.LessOrEqual(t, c.Anchor.EndLine, g.EndLine)
		}
		if i > 0 {
			assert.Greater(t, g.StartLine, groups[i-1].EndLine+adjacency)
		}
	}
	assert.Len(t, seen, len(in))
	for id, n := range seen {
		assert.Equal(t, 1, n, id)
	}
}
