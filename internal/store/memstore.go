package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dusk-indust/critics/internal/review"
	"github.com/dusk-indust/critics/internal/synth"
)

// Compile-time check.
var _ Store = (*MemStore)(nil)

// MemStore is a concurrency-safe in-memory Store. Maps are keyed by ID with
// separate slices keeping insertion order.
type MemStore struct {
	mu       sync.RWMutex
	docs     map[string]Document
	docOrder []string
	reviews  map[string]*Review
	revOrder []string
	comments map[string][]review.Comment
	metas    map[string][]synth.MetaComment
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		docs:     make(map[string]Document),
		reviews:  make(map[string]*Review),
		comments: make(map[string][]review.Comment),
		metas:    make(map[string][]synth.MetaComment),
	}
}

func (s *MemStore) CreateDocument(_ context.Context, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.docs[doc.ID]; exists {
		return fmt.Errorf("document %q: %w", doc.ID, ErrExists)
	}
	s.docs[doc.ID] = doc
	s.docOrder = append(s.docOrder, doc.ID)
	return nil
}

func (s *MemStore) GetDocument(_ context.Context, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return Document{}, fmt.Errorf("document %q: %w", id, ErrNotFound)
	}
	return doc, nil
}

func (s *MemStore) ListDocuments(_ context.Context) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Document, 0, len(s.docOrder))
	for _, id := range s.docOrder {
		out = append(out, s.docs[id])
	}
	return out, nil
}

func (s *MemStore) CreateReview(_ context.Context, r Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[r.DocumentID]; !ok {
		return fmt.Errorf("document %q: %w", r.DocumentID, ErrNotFound)
	}
	if _, exists := s.reviews[r.ID]; exists {
		return fmt.Errorf("review %q: %w", r.ID, ErrExists)
	}
	s.reviews[r.ID] = copyReview(&r)
	s.revOrder = append(s.revOrder, r.ID)
	return nil
}

func (s *MemStore) GetReview(_ context.Context, id string) (Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reviews[id]
	if !ok {
		return Review{}, fmt.Errorf("review %q: %w", id, ErrNotFound)
	}
	return *copyReview(r), nil
}

func (s *MemStore) ListReviews(_ context.Context, documentID string) ([]Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Review
	for _, id := range s.revOrder {
		r := s.reviews[id]
		if documentID != "" && r.DocumentID != documentID {
			continue
		}
		out = append(out, *copyReview(r))
	}
	return out, nil
}

func (s *MemStore) SetReviewStatus(_ context.Context, id string, status ReviewStatus, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reviews[id]
	if !ok {
		return fmt.Errorf("review %q: %w", id, ErrNotFound)
	}
	r.Status = status
	if status.Terminal() {
		r.CompletedAt = &at
	}
	return nil
}

func (s *MemStore) AddComment(_ context.Context, reviewID string, c review.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reviews[reviewID]; !ok {
		return fmt.Errorf("review %q: %w", reviewID, ErrNotFound)
	}
	s.comments[reviewID] = append(s.comments[reviewID], c)
	return nil
}

func (s *MemStore) Comments(_ context.Context, reviewID string) ([]review.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.reviews[reviewID]; !ok {
		return nil, fmt.Errorf("review %q: %w", reviewID, ErrNotFound)
	}
	return slices.Clone(s.comments[reviewID]), nil
}

func (s *MemStore) SaveMetaComments(_ context.Context, reviewID string, metas []synth.MetaComment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reviews[reviewID]; !ok {
		return fmt.Errorf("review %q: %w", reviewID, ErrNotFound)
	}
	cp := make([]synth.MetaComment, len(metas))
	for i, m := range metas {
		m.Sources = slices.Clone(m.Sources)
		cp[i] = m
	}
	s.metas[reviewID] = cp
	return nil
}

func (s *MemStore) MetaComments(_ context.Context, reviewID string) ([]synth.MetaComment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.reviews[reviewID]; !ok {
		return nil, fmt.Errorf("review %q: %w", reviewID, ErrNotFound)
	}
	stored := s.metas[reviewID]
	out := make([]synth.MetaComment, len(stored))
	for i, m := range stored {
		m.Sources = slices.Clone(m.Sources)
		out[i] = m
	}
	return out, nil
}

func (s *MemStore) Ping(context.Context) error { return nil }

func (s *MemStore) Close() error { return nil }

// copyReview returns a copy sharing no mutable state with r.
func copyReview(r *Review) *Review {
	cp := *r
	cp.PersonaIDs = slices.Clone(r.PersonaIDs)
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}
