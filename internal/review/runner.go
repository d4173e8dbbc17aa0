package review

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dusk-indust/critics/internal/document"
	"github.com/dusk-indust/critics/internal/llm"
	"github.com/dusk-indust/critics/internal/persona"
)

// DefaultMaxTokens caps the output of one persona review.
const DefaultMaxTokens = 1024

// Job is the shared, read-only input of every persona review in a run.
type Job struct {
	DocumentID string
	VersionTag string
	Content    string
	Regions    []document.Region
	Model      string
	MaxTokens  int
}

// Runner executes one persona's review against a generator.
type Runner struct {
	gen   llm.Generator
	now   func() time.Time
	newID func() string
}

// NewRunner creates a Runner that sends its requests to gen.
func NewRunner(gen llm.Generator) *Runner {
	return &Runner{
		gen:   gen,
		now:   func() time.Time { return time.Now().UTC() },
		newID: NewID,
	}
}

// Run reviews job.Content as p and returns the anchored comments in the
// order the model wrote them. It never fails: a generation error becomes a
// single synthetic comment anchored at {0,0}, and markers naming a paragraph
// outside job.Regions are dropped.
func (r *Runner) Run(ctx context.Context, p persona.Persona, job Job) []Comment {
	maxTokens := job.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	out, err := llm.Collect(ctx, r.gen, llm.Request{
		System:    p.Instructions,
		Prompt:    buildPrompt(job.Content, len(job.Regions)),
		Model:     job.Model,
		MaxTokens: maxTokens,
	})
	if err != nil {
		log.Printf("WARNING: review by persona %q failed: %v", p.ID, err)
		return []Comment{r.newComment(p, job, fmt.Sprintf("%s: %v", FailureMarker, err), Anchor{})}
	}

	markers := ParseMarkers(out)
	comments := make([]Comment, 0, len(markers))
	for _, m := range markers {
		region, ok := document.Lookup(job.Regions, m.Paragraph)
		if !ok {
			continue
		}
		comments = append(comments, r.newComment(p, job, m.Text, Anchor{
			StartLine: region.StartLine,
			EndLine:   region.EndLine,
		}))
	}
	return comments
}

func (r *Runner) newComment(p persona.Persona, job Job, content string, anchor Anchor) Comment {
	return Comment{
		ID:           r.newID(),
		PersonaID:    p.ID,
		PersonaName:  p.Name,
		PersonaColor: p.Color,
		DocumentID:   job.DocumentID,
		VersionTag:   job.VersionTag,
		Content:      content,
		Anchor:       anchor,
		CreatedAt:    r.now(),
	}
}
