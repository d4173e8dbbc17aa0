package synth

import (
	"context"
	"log"
	"time"

	"github.com/dusk-indust/critics/internal/llm"
	"github.com/dusk-indust/critics/internal/review"
)

// DefaultMaxTokens caps the synthesis response.
const DefaultMaxTokens = 2048

// Engine turns a review's comments into MetaComments. When the generator is
// nil, fails, or answers with something unusable, the deterministic fallback
// is used instead; Synthesize never returns an error.
type Engine struct {
	gen       llm.Generator
	model     string
	maxTokens int
	now       func() time.Time
	newID     func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithModel sets the model used for synthesis.
func WithModel(model string) Option {
	return func(e *Engine) {
		e.model = model
	}
}

// WithMaxTokens sets the synthesis output cap.
func WithMaxTokens(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxTokens = n
		}
	}
}

// NewEngine creates an Engine. A nil gen always takes the fallback path.
func NewEngine(gen llm.Generator, opts ...Option) *Engine {
	e := &Engine{
		gen:       gen,
		maxTokens: DefaultMaxTokens,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     review.NewID,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Synthesize groups comments by location and condenses them into findings.
// Synthetic failure comments are ignored. No comments yields no findings.
func (e *Engine) Synthesize(ctx context.Context, comments []review.Comment) []MetaComment {
	kept := make([]review.Comment, 0, len(comments))
	for _, c := range comments {
		if !c.IsFailure() {
			kept = append(kept, c)
		}
	}

	groups := Group(kept)
	if len(groups) == 0 {
		return nil
	}
	if e.gen == nil {
		return e.fallback(groups)
	}

	raw, err := llm.Collect(ctx, e.gen, llm.Request{
		Prompt:    buildPrompt(groups),
		Model:     e.model,
		MaxTokens: e.maxTokens,
	})
	if err != nil {
		log.Printf("WARNING: synthesis call failed, using fallback: %v", err)
		return e.fallback(groups)
	}

	findings, err := parseFindings(raw)
	if err != nil {
		log.Printf("WARNING: synthesis response unusable, using fallback: %v", err)
		return e.fallback(groups)
	}

	metas := make([]MetaComment, 0, len(findings))
	for _, f := range findings {
		metas = append(metas, e.fromFinding(f, groups))
	}
	return metas
}

func (e *Engine) fromFinding(f finding, groups []CommentGroup) MetaComment {
	anchor, scope := resolve(f, groups)
	return MetaComment{
		ID:        e.newID(),
		Content:   f.Content,
		Anchor:    anchor,
		Sources:   matchSources(f.ContributingPersonas, scope),
		Category:  ParseCategory(f.Category),
		Priority:  ParsePriority(f.Priority),
		CreatedAt: e.now(),
	}
}

// resolve picks a finding's anchor and the groups its sources come from.
// Explicit line ranges win over the group index; a finding with neither is
// document-level and anchored at {0,0}.
func resolve(f finding, groups []CommentGroup) (review.Anchor, []CommentGroup) {
	if rs := f.ranges(); len(rs) > 0 {
		start, end := rs[0][0], rs[0][1]
		for _, r := range rs[1:] {
			start = min(start, r[0])
			end = max(end, r[1])
		}
		anchor := review.Anchor{StartLine: max(start-1, 0), EndLine: max(end-1, 0)}

		var scope []CommentGroup
		for _, g := range groups {
			if g.StartLine <= anchor.EndLine && g.EndLine >= anchor.StartLine {
				scope = append(scope, g)
			}
		}
		if len(scope) == 0 {
			scope = groups
		}
		return anchor, scope
	}

	if f.GroupIndex != nil && *f.GroupIndex >= 0 && *f.GroupIndex < len(groups) {
		g := groups[*f.GroupIndex]
		return review.Anchor{StartLine: g.StartLine, EndLine: g.EndLine}, []CommentGroup{g}
	}
	return review.Anchor{}, groups
}

// matchSources returns the comments in scope written by one of the named
// personas, or every comment in scope when no name matches.
func matchSources(names []string, scope []CommentGroup) []Source {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	var matched, all []Source
	for _, g := range scope {
		for _, c := range g.Comments {
			s := sourceOf(c)
			all = append(all, s)
			if wanted[c.PersonaName] || wanted[c.PersonaID] {
				matched = append(matched, s)
			}
		}
	}
	if len(matched) == 0 {
		return all
	}
	return matched
}
