// Package export renders a stored review as JSON, an annotated markdown
// report, or a Mermaid diagram.
package export

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dusk-indust/critics/internal/review"
	"github.com/dusk-indust/critics/internal/store"
	"github.com/dusk-indust/critics/internal/synth"
)

// Formats accepted by Render.
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatMermaid  = "mermaid"
)

// ReviewExport is the top-level export structure.
type ReviewExport struct {
	ExportedAt   string              `json:"exportedAt"`
	Document     DocumentExport      `json:"document"`
	Review       ReviewSummary       `json:"review"`
	Comments     []review.Comment    `json:"comments"`
	MetaComments []synth.MetaComment `json:"metaComments"`
}

// DocumentExport describes the reviewed document.
type DocumentExport struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	VersionTag string `json:"versionTag"`
	Content    string `json:"content"`
}

// ReviewSummary describes the review run.
type ReviewSummary struct {
	ID          string   `json:"id"`
	Status      string   `json:"status"`
	PersonaIDs  []string `json:"personaIds"`
	CreatedAt   string   `json:"createdAt"`
	CompletedAt string   `json:"completedAt,omitempty"`
	Failures    int      `json:"failures"`
}

// ExportReview gathers a review, its document, comments and stored findings.
// Findings are included only if the review has been synthesized.
func ExportReview(ctx context.Context, st store.Store, reviewID string) (*ReviewExport, error) {
	rec, err := st.GetReview(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	doc, err := st.GetDocument(ctx, rec.DocumentID)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	comments, err := st.Comments(ctx, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("get comments: %w", err)
	}
	metas, err := st.MetaComments(ctx, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("get findings: %w", err)
	}

	exp := &ReviewExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Document: DocumentExport{
			ID:         doc.ID,
			Title:      doc.Title,
			VersionTag: doc.VersionTag,
			Content:    doc.Content,
		},
		Review: ReviewSummary{
			ID:         rec.ID,
			Status:     string(rec.Status),
			PersonaIDs: slices.Clone(rec.PersonaIDs),
			CreatedAt:  rec.CreatedAt.Format(time.RFC3339),
		},
		Comments:     comments,
		MetaComments: metas,
	}
	if rec.CompletedAt != nil {
		exp.Review.CompletedAt = rec.CompletedAt.Format(time.RFC3339)
	}
	for _, c := range comments {
		if c.IsFailure() {
			exp.Review.Failures++
		}
	}
	if exp.Comments == nil {
		exp.Comments = []review.Comment{}
	}
	if exp.MetaComments == nil {
		exp.MetaComments = []synth.MetaComment{}
	}
	return exp, nil
}

// Markdown renders the export as a report: findings by priority, then the
// document with each persona comment quoted under the paragraph it targets.
func Markdown(exp *ReviewExport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Review: %s\n\n", exp.Document.Title)
	fmt.Fprintf(&sb, "- Review: `%s` (%s)\n", exp.Review.ID, exp.Review.Status)
	fmt.Fprintf(&sb, "- Version: `%s`\n", exp.Document.VersionTag)
	fmt.Fprintf(&sb, "- Comments: %d", len(exp.Comments))
	if exp.Review.Failures > 0 {
		fmt.Fprintf(&sb, " (%d persona failure(s))", exp.Review.Failures)
	}
	sb.WriteString("\n")

	if len(exp.MetaComments) > 0 {
		sb.WriteString("\n## Findings\n\n")
		metas := slices.Clone(exp.MetaComments)
		slices.SortStableFunc(metas, func(a, b synth.MetaComment) int {
			return priorityRank(a.Priority) - priorityRank(b.Priority)
		})
		for _, m := range metas {
			fmt.Fprintf(&sb, "- **%s** _%s_ (lines %d-%d): %s\n",
				strings.ToUpper(string(m.Priority)), m.Category,
				m.Anchor.StartLine+1, m.Anchor.EndLine+1, oneLine(m.Content))
		}
	}

	sb.WriteString("\n## Annotated document\n\n")
	byEnd := make(map[int][]review.Comment)
	var failures []review.Comment
	for _, c := range exp.Comments {
		if c.IsFailure() {
			failures = append(failures, c)
			continue
		}
		byEnd[c.Anchor.EndLine] = append(byEnd[c.Anchor.EndLine], c)
	}
	for i, line := range strings.Split(exp.Document.Content, "\n") {
		sb.WriteString(line)
		sb.WriteString("\n")
		for _, c := range byEnd[i] {
			fmt.Fprintf(&sb, "\n> **%s:** %s\n\n", c.PersonaName, oneLine(c.Content))
		}
	}

	if len(failures) > 0 {
		sb.WriteString("\n## Failed personas\n\n")
		for _, c := range failures {
			fmt.Fprintf(&sb, "- %s: %s\n", c.PersonaName, oneLine(c.Content))
		}
	}
	return sb.String()
}

func priorityRank(p synth.Priority) int {
	switch p {
	case synth.PriorityCritical:
		return 0
	case synth.PriorityHigh:
		return 1
	case synth.PriorityMedium:
		return 2
	default:
		return 3
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
