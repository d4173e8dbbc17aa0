package synth

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/critics/internal/persona"
	"github.com/dusk-indust/critics/internal/review"
)

// maxStatementRunes bounds each persona statement in a composite summary.
const maxStatementRunes = 160

// Keyword bands for priority inference, checked in order.
var (
	criticalKeywords = []string{
		"critical", "vulnerab", "exploit", "injection", "data loss",
		"breach", "leak", "unsafe", "insecure",
	}
	highKeywords = []string{
		"incorrect", "wrong", "broken", "contradict", "misleading",
		"missing", "error", "fails", "must",
	}
	lowKeywords = []string{
		"minor", "nitpick", "typo", "consider", "optional", "small",
		"nice to have", "slightly",
	}
)

// categoryOrder decides a group's category from the personas present in it.
var categoryOrder = []struct {
	personaID string
	category  Category
}{
	{persona.IDSecurityAuditor, CategorySecurity},
	{persona.IDTechnicalCritic, CategoryTechnical},
	{persona.IDAccessibilityAdvocate, CategoryAccessibility},
	{persona.IDCasualReader, CategoryClarity},
}

// fallback builds exactly one MetaComment per group without calling the
// generator. Content, category and priority depend only on the group.
func (e *Engine) fallback(groups []CommentGroup) []MetaComment {
	metas := make([]MetaComment, 0, len(groups))
	for _, g := range groups {
		sources := make([]Source, 0, len(g.Comments))
		for _, c := range g.Comments {
			sources = append(sources, sourceOf(c))
		}
		metas = append(metas, MetaComment{
			ID:        e.newID(),
			Content:   summarize(g),
			Anchor:    review.Anchor{StartLine: g.StartLine, EndLine: g.EndLine},
			Sources:   sources,
			Category:  inferCategory(g),
			Priority:  inferPriority(g),
			CreatedAt: e.now(),
		})
	}
	return metas
}

type statement struct {
	name string
	text string
}

// statements merges each persona's comments in the group, in order of first
// appearance.
func statements(g CommentGroup) []statement {
	var out []statement
	index := make(map[string]int)
	for _, c := range g.Comments {
		if i, ok := index[c.PersonaID]; ok {
			out[i].text += " " + c.Content
			continue
		}
		index[c.PersonaID] = len(out)
		out = append(out, statement{name: c.PersonaName, text: c.Content})
	}
	return out
}

func summarize(g CommentGroup) string {
	st := statements(g)
	if len(st) == 1 {
		return st[0].text
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d reviewers flagged this section:", len(st))
	for i, s := range st {
		fmt.Fprintf(&b, " %d) %s: %s", i+1, s.name, truncate(s.text, maxStatementRunes))
	}
	return b.String()
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n-3])) + "..."
}

func inferPriority(g CommentGroup) Priority {
	var b strings.Builder
	for _, c := range g.Comments {
		b.WriteString(strings.ToLower(c.Content))
		b.WriteByte('\n')
	}
	text := b.String()

	switch {
	case containsAny(text, criticalKeywords):
		return PriorityCritical
	case containsAny(text, highKeywords):
		return PriorityHigh
	case containsAny(text, lowKeywords):
		return PriorityLow
	default:
		return PriorityMedium
	}
}

func inferCategory(g CommentGroup) Category {
	present := make(map[string]bool, len(g.Comments))
	for _, c := range g.Comments {
		present[c.PersonaID] = true
	}
	for _, rule := range categoryOrder {
		if present[rule.personaID] {
			return rule.category
		}
	}
	return CategoryStructure
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
