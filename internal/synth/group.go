package synth

import (
	"slices"

	"github.com/dusk-indust/critics/internal/review"
)

// adjacency is how many lines may separate two ranges that still merge.
const adjacency = 2

// CommentGroup is a run of comments whose anchors overlap or nearly touch.
type CommentGroup struct {
	StartLine int
	EndLine   int
	Comments  []review.Comment
}

// Group clusters comments by location. Comments are stable-sorted by
// (start, end) and a comment joins the current group when it starts no more
// than two lines after the group's end. Every input comment lands in exactly
// one group; the returned groups are in line order.
func Group(comments []review.Comment) []CommentGroup {
	if len(comments) == 0 {
		return nil
	}

	sorted := slices.Clone(comments)
	slices.SortStableFunc(sorted, func(a, b review.Comment) int {
		if a.Anchor.StartLine != b.Anchor.StartLine {
			return a.Anchor.StartLine - b.Anchor.StartLine
		}
		return a.Anchor.EndLine - b.Anchor.EndLine
	})

	groups := []CommentGroup{newGroup(sorted[0])}
	for _, c := range sorted[1:] {
		cur := &groups[len(groups)-1]
		if c.Anchor.StartLine <= cur.EndLine+adjacency {
			cur.EndLine = max(cur.EndLine, c.Anchor.EndLine)
			cur.Comments = append(cur.Comments, c)
			continue
		}
		groups = append(groups, newGroup(c))
	}
	return groups
}

func newGroup(c review.Comment) CommentGroup {
	return CommentGroup{
		StartLine: c.Anchor.StartLine,
		EndLine:   c.Anchor.EndLine,
		Comments:  []review.Comment{c},
	}
}
