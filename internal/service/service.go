// Package service ties the review engine to persistence. It is the single
// entry point used by the HTTP server, the CLI and the MCP tools.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/dusk-indust/critics/internal/document"
	"github.com/dusk-indust/critics/internal/persona"
	"github.com/dusk-indust/critics/internal/review"
	"github.com/dusk-indust/critics/internal/store"
	"github.com/dusk-indust/critics/internal/synth"
)

// Service runs reviews and synthesis against a Store.
type Service struct {
	store  store.Store
	orch   *review.Orchestrator
	engine *synth.Engine
	now    func() time.Time
	newID  func() string
}

// New creates a Service.
func New(st store.Store, orch *review.Orchestrator, engine *synth.Engine) *Service {
	return &Service{
		store:  st,
		orch:   orch,
		engine: engine,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  review.NewID,
	}
}

// Store returns the underlying store.
func (s *Service) Store() store.Store {
	return s.store
}

// Catalog returns the persona catalog reviews resolve against.
func (s *Service) Catalog() *persona.Catalog {
	return s.orch.Catalog()
}

// NewDocument describes a document to create. Title is derived from the
// content or Filename when empty.
type NewDocument struct {
	Title    string
	Filename string
	Content  string
}

// CreateDocument stores a new document. Blank content is rejected with
// review.ErrEmptyDocument.
func (s *Service) CreateDocument(ctx context.Context, in NewDocument) (store.Document, error) {
	if strings.TrimSpace(in.Content) == "" {
		return store.Document{}, review.ErrEmptyDocument
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = document.Title(in.Content, in.Filename)
	}

	doc := store.Document{
		ID:         s.newID(),
		Title:      title,
		Content:    in.Content,
		VersionTag: VersionTag(in.Content),
		CreatedAt:  s.now(),
	}
	if err := s.store.CreateDocument(ctx, doc); err != nil {
		return store.Document{}, fmt.Errorf("service: create document: %w", err)
	}
	return doc, nil
}

// VersionTag returns a short content hash identifying one revision of a
// document.
func VersionTag(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:6])
}

// ReviewOptions selects personas and the model for a review run.
type ReviewOptions struct {
	PersonaIDs []string
	Model      string
}

// StartReview records a new review of documentID and starts it. The returned
// stream is the orchestrator's event stream: every comment is persisted
// before it is forwarded and the Done event carries the review ID. The
// review is marked completed once Done is seen and failed if the stream ends
// without it. Cancel ctx to abandon the stream.
func (s *Service) StartReview(ctx context.Context, documentID string, opts ReviewOptions) (store.Review, <-chan review.Event, error) {
	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return store.Review{}, nil, err
	}

	resolved := s.Catalog().Resolve(opts.PersonaIDs)
	ids := make([]string, 0, len(resolved))
	for _, p := range resolved {
		ids = append(ids, p.ID)
	}

	rec := store.Review{
		ID:         s.newID(),
		DocumentID: doc.ID,
		PersonaIDs: ids,
		Status:     store.ReviewPending,
		CreatedAt:  s.now(),
	}
	if err := s.store.CreateReview(ctx, rec); err != nil {
		return store.Review{}, nil, fmt.Errorf("service: create review: %w", err)
	}

	in, err := s.orch.Review(ctx, review.Request{
		DocumentID: doc.ID,
		VersionTag: doc.VersionTag,
		Content:    doc.Content,
		PersonaIDs: opts.PersonaIDs,
		Model:      opts.Model,
	})
	if err != nil {
		s.setStatus(context.WithoutCancel(ctx), rec.ID, store.ReviewFailed)
		return store.Review{}, nil, err
	}

	s.setStatus(ctx, rec.ID, store.ReviewRunning)
	rec.Status = store.ReviewRunning

	out := make(chan review.Event)
	go s.persist(ctx, rec.ID, in, out)
	return rec, out, nil
}

func (s *Service) persist(ctx context.Context, reviewID string, in <-chan review.Event, out chan<- review.Event) {
	defer close(out)

	// Persistence outlives a departed consumer.
	storeCtx := context.WithoutCancel(ctx)
	done := false

	for ev := range in {
		switch ev.Type {
		case review.EventComment:
			if ev.Comment != nil {
				if err := s.store.AddComment(storeCtx, reviewID, *ev.Comment); err != nil {
					log.Printf("WARNING: review %s: persist comment: %v", reviewID, err)
				}
			}
		case review.EventDone:
			ev.ReviewID = reviewID
			done = true
			s.setStatus(storeCtx, reviewID, store.ReviewCompleted)
		}

		select {
		case out <- ev:
		case <-ctx.Done():
		}
	}

	if !done {
		s.setStatus(storeCtx, reviewID, store.ReviewFailed)
	}
}

func (s *Service) setStatus(ctx context.Context, reviewID string, status store.ReviewStatus) {
	if err := s.store.SetReviewStatus(ctx, reviewID, status, s.now()); err != nil {
		log.Printf("WARNING: review %s: set status %s: %v", reviewID, status, err)
	}
}

// RunReview runs a review to completion and returns the stored record with
// every comment it produced. onEvent, when non-nil, sees each event first.
func (s *Service) RunReview(ctx context.Context, documentID string, opts ReviewOptions, onEvent func(review.Event)) (store.Review, []review.Comment, error) {
	rec, events, err := s.StartReview(ctx, documentID, opts)
	if err != nil {
		return store.Review{}, nil, err
	}

	var comments []review.Comment
	for ev := range events {
		if onEvent != nil {
			onEvent(ev)
		}
		if ev.Type == review.EventComment && ev.Comment != nil {
			comments = append(comments, *ev.Comment)
		}
	}
	if err := ctx.Err(); err != nil {
		return store.Review{}, nil, fmt.Errorf("service: review %s interrupted: %w", rec.ID, err)
	}

	rec, err = s.store.GetReview(ctx, rec.ID)
	if err != nil {
		return store.Review{}, nil, err
	}
	return rec, comments, nil
}

// Synthesize returns the findings for a review. Stored findings are returned
// as-is unless force is set; otherwise the review's comments are synthesized
// and the result stored.
func (s *Service) Synthesize(ctx context.Context, reviewID string, force bool) ([]synth.MetaComment, error) {
	if !force {
		cached, err := s.store.MetaComments(ctx, reviewID)
		if err != nil {
			return nil, err
		}
		if len(cached) > 0 {
			return cached, nil
		}
	}

	comments, err := s.store.Comments(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	metas := s.engine.Synthesize(ctx, comments)
	if metas == nil {
		metas = []synth.MetaComment{}
	}
	if err := s.store.SaveMetaComments(ctx, reviewID, metas); err != nil {
		return nil, fmt.Errorf("service: save findings: %w", err)
	}
	return metas, nil
}
