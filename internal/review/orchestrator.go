package review

import (
	"context"
	"errors"
	"strings"

	"github.com/dusk-indust/critics/internal/document"
	"github.com/dusk-indust/critics/internal/llm"
	"github.com/dusk-indust/critics/internal/persona"
	"golang.org/x/sync/errgroup"
)

// ErrEmptyDocument is returned when a review is requested for blank content.
var ErrEmptyDocument = errors.New("review: document content is empty")

// Request describes one review run.
type Request struct {
	DocumentID string
	VersionTag string
	Content    string

	// PersonaIDs selects and orders the reviewing personas. Empty means the
	// whole catalog; unknown IDs are ignored.
	PersonaIDs []string

	// Model is passed through to the generator; empty uses its default.
	Model string
}

// Orchestrator fans a review out to one Runner per persona and streams the
// results back in completion order.
type Orchestrator struct {
	catalog   *persona.Catalog
	runner    *Runner
	maxTokens int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMaxTokens sets the per-persona output cap.
func WithMaxTokens(n int) Option {
	return func(o *Orchestrator) {
		o.maxTokens = n
	}
}

// WithRunner replaces the default Runner.
func WithRunner(r *Runner) Option {
	return func(o *Orchestrator) {
		o.runner = r
	}
}

// NewOrchestrator creates an Orchestrator over catalog that generates with gen.
func NewOrchestrator(catalog *persona.Catalog, gen llm.Generator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		catalog:   catalog,
		runner:    NewRunner(gen),
		maxTokens: DefaultMaxTokens,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Catalog returns the persona catalog the orchestrator resolves against.
func (o *Orchestrator) Catalog() *persona.Catalog {
	return o.catalog
}

type personaResult struct {
	persona  persona.Persona
	comments []Comment
}

// Review starts a review run and returns its event stream. The stream emits,
// in order: one queued status per persona, one running status per persona
// once every runner is dispatched, then for each persona in completion order
// its completed status followed by its comments, and finally exactly one
// EventDone. The channel is closed after EventDone.
//
// Runners are detached from ctx cancellation: once dispatched they finish and
// their results are discarded if nobody is listening. Cancelling ctx stops
// event delivery and closes the channel early, so a consumer that stops
// reading must cancel ctx.
func (o *Orchestrator) Review(ctx context.Context, req Request) (<-chan Event, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, ErrEmptyDocument
	}

	personas := o.catalog.Resolve(req.PersonaIDs)
	job := Job{
		DocumentID: req.DocumentID,
		VersionTag: req.VersionTag,
		Content:    req.Content,
		Regions:    document.Segment(req.Content),
		Model:      req.Model,
		MaxTokens:  o.maxTokens,
	}

	out := make(chan Event)
	go o.run(ctx, personas, job, out)
	return out, nil
}

func (o *Orchestrator) run(ctx context.Context, personas []persona.Persona, job Job, out chan<- Event) {
	defer close(out)

	emit := func(ev Event) bool {
		select {
		case out <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for _, p := range personas {
		if !emit(statusEvent(p, StatusQueued)) {
			return
		}
	}

	// Buffered to the batch size so runners never block on delivery.
	results := make(chan personaResult, len(personas))
	runCtx := context.WithoutCancel(ctx)

	var g errgroup.Group
	for _, p := range personas {
		g.Go(func() error {
			results <- personaResult{persona: p, comments: o.runner.Run(runCtx, p, job)}
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(results)
	}()

	for _, p := range personas {
		if !emit(statusEvent(p, StatusRunning)) {
			return
		}
	}

	total := 0
	for {
		var res personaResult
		var ok bool
		select {
		case res, ok = <-results:
		case <-ctx.Done():
			return
		}
		if !ok {
			break
		}
		if !emit(statusEvent(res.persona, StatusCompleted)) {
			return
		}
		for _, c := range res.comments {
			if !emit(commentEvent(c)) {
				return
			}
			total++
		}
	}

	emit(Event{Type: EventDone, TotalComments: total})
}

// Collect drains a review stream and returns every comment it carried along
// with the Done event's total.
func Collect(events <-chan Event) ([]Comment, int) {
	var comments []Comment
	total := 0
	for ev := range events {
		switch ev.Type {
		case EventComment:
			if ev.Comment != nil {
				comments = append(comments, *ev.Comment)
			}
		case EventDone:
			total = ev.TotalComments
		}
	}
	return comments, total
}
