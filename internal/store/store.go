// Package store persists documents, review runs, their comments and the
// synthesized findings derived from them.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/dusk-indust/critics/internal/review"
	"github.com/dusk-indust/critics/internal/synth"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// ErrExists is returned when creating a record whose ID is already taken.
var ErrExists = errors.New("store: already exists")

// Document is a stored piece of text submitted for review.
type Document struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	VersionTag string    `json:"version_tag"`
	CreatedAt  time.Time `json:"created_at"`
}

// ReviewStatus is the lifecycle state of a review run.
type ReviewStatus string

const (
	ReviewPending   ReviewStatus = "pending"
	ReviewRunning   ReviewStatus = "running"
	ReviewCompleted ReviewStatus = "completed"
	ReviewFailed    ReviewStatus = "failed"
)

// Review records one review run of a document.
type Review struct {
	ID          string       `json:"id"`
	DocumentID  string       `json:"document_id"`
	PersonaIDs  []string     `json:"persona_ids"`
	Status      ReviewStatus `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

// Store is the persistence boundary used by the service layer. Lists are
// returned in insertion order.
type Store interface {
	CreateDocument(ctx context.Context, doc Document) error
	GetDocument(ctx context.Context, id string) (Document, error)
	ListDocuments(ctx context.Context) ([]Document, error)

	CreateReview(ctx context.Context, r Review) error
	GetReview(ctx context.Context, id string) (Review, error)
	ListReviews(ctx context.Context, documentID string) ([]Review, error)
	// SetReviewStatus moves a review to status. Terminal statuses stamp
	// CompletedAt with at.
	SetReviewStatus(ctx context.Context, id string, status ReviewStatus, at time.Time) error

	AddComment(ctx context.Context, reviewID string, c review.Comment) error
	Comments(ctx context.Context, reviewID string) ([]review.Comment, error)

	// SaveMetaComments replaces the findings stored for a review.
	SaveMetaComments(ctx context.Context, reviewID string, metas []synth.MetaComment) error
	MetaComments(ctx context.Context, reviewID string) ([]synth.MetaComment, error)

	Ping(ctx context.Context) error
	Close() error
}

// Terminal reports whether s is a final review state.
func (s ReviewStatus) Terminal() bool {
	return s == ReviewCompleted || s == ReviewFailed
}
