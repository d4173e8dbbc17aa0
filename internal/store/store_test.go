package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dusk-indust/critics/internal/review"
	"github.com/dusk-indust/critics/internal/synth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// forEachStore runs fn against every Store implementation.
func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Helper()

	t.Run("mem", func(t *testing.T) {
		fn(t, NewMemStore())
	})
	t.Run("sqlite", func(t *testing.T) {
		s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "critics.db"))
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		fn(t, s)
	})
}

var t0 = time.Date(2026, 3, 4, 5, 6, 7, 8000, time.UTC)

func seedReview(t *testing.T, s Store) (Document, Review) {
	t.Helper()
	ctx := context.Background()

	doc := Document{ID: "doc-1", Title: "Plan", Content: "# Plan\n\nBody.", VersionTag: "v1", CreatedAt: t0}
	require.NoError(t, s.CreateDocument(ctx, doc))

	r := Review{ID: "rev-1", DocumentID: doc.ID, PersonaIDs: []string{"a", "b"}, Status: ReviewPending, CreatedAt: t0}
	require.NoError(t, s.CreateReview(ctx, r))
	return doc, r
}

func TestStore_Documents(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		doc, _ := seedReview(t, s)

		got, err := s.GetDocument(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, doc, got)

		require.NoError(t, s.CreateDocument(ctx, Document{ID: "doc-2", Title: "Second", Content: "x", CreatedAt: t0}))
		docs, err := s.ListDocuments(ctx)
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "doc-1", docs[0].ID)
		assert.Equal(t, "doc-2", docs[1].ID)

		assert.ErrorIs(t, s.CreateDocument(ctx, doc), ErrExists)

		_, err = s.GetDocument(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStore_Reviews(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		_, r := seedReview(t, s)

		got, err := s.GetReview(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, r, got)

		require.NoError(t, s.SetReviewStatus(ctx, r.ID, ReviewRunning, t0.Add(time.Second)))
		got, err = s.GetReview(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, ReviewRunning, got.Status)
		assert.Nil(t, got.CompletedAt)

		done := t0.Add(time.Minute)
		require.NoError(t, s.SetReviewStatus(ctx, r.ID, ReviewCompleted, done))
		got, err = s.GetReview(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, ReviewCompleted, got.Status)
		require.NotNil(t, got.CompletedAt)
		assert.True(t, done.Equal(*got.CompletedAt))

		assert.ErrorIs(t, s.SetReviewStatus(ctx, "missing", ReviewFailed, done), ErrNotFound)
		assert.ErrorIs(t, s.CreateReview(ctx, Review{ID: "rev-x", DocumentID: "missing", CreatedAt: t0}), ErrNotFound)
		assert.ErrorIs(t, s.CreateReview(ctx, r), ErrExists)

		require.NoError(t, s.CreateDocument(ctx, Document{ID: "doc-2", Title: "t", Content: "c", CreatedAt: t0}))
		require.NoError(t, s.CreateReview(ctx, Review{ID: "rev-2", DocumentID: "doc-2", Status: ReviewPending, CreatedAt: t0}))

		all, err := s.ListReviews(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 2)

		forDoc, err := s.ListReviews(ctx, "doc-2")
		require.NoError(t, err)
		require.Len(t, forDoc, 1)
		assert.Equal(t, "rev-2", forDoc[0].ID)
	})
}

func TestStore_Comments(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		doc, r := seedReview(t, s)

		in := []review.Comment{
			{ID: "c1", PersonaID: "a", PersonaName: "A", PersonaColor: "#111", DocumentID: doc.ID, VersionTag: "v1",
				Content: "first", Anchor: review.Anchor{StartLine: 2, EndLine: 2}, CreatedAt: t0},
			{ID: "c2", PersonaID: "b", PersonaName: "B", DocumentID: doc.ID,
				Content: review.FailureMarker + ": boom", CreatedAt: t0},
		}
		for _, c := range in {
			require.NoError(t, s.AddComment(ctx, r.ID, c))
		}

		got, err := s.Comments(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, in, got)

		assert.ErrorIs(t, s.AddComment(ctx, "missing", in[0]), ErrNotFound)
		_, err = s.Comments(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStore_MetaComments(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		_, r := seedReview(t, s)

		empty, err := s.MetaComments(ctx, r.ID)
		require.NoError(t, err)
		assert.Empty(t, empty)

		first := []synth.MetaComment{{
			ID:        "m1",
			Content:   "Tighten the intro.",
			Anchor:    review.Anchor{StartLine: 0, EndLine: 3},
			Sources:   []synth.Source{{PersonaID: "a", PersonaName: "A", PersonaColor: "#111", OriginalContent: "first"}},
			Category:  synth.CategoryClarity,
			Priority:  synth.PriorityHigh,
			CreatedAt: t0,
		}}
		require.NoError(t, s.SaveMetaComments(ctx, r.ID, first))

		got, err := s.MetaComments(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, first, got)

		second := []synth.MetaComment{
			{ID: "m2", Content: "x", Sources: []synth.Source{}, Category: synth.CategoryStyle, Priority: synth.PriorityLow, CreatedAt: t0},
			{ID: "m3", Content: "y", Sources: []synth.Source{}, Category: synth.CategorySecurity, Priority: synth.PriorityCritical, CreatedAt: t0},
		}
		require.NoError(t, s.SaveMetaComments(ctx, r.ID, second))

		got, err = s.MetaComments(ctx, r.ID)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "m2", got[0].ID)
		assert.Equal(t, "m3", got[1].ID)

		assert.ErrorIs(t, s.SaveMetaComments(ctx, "missing", first), ErrNotFound)
	})
}

func TestStore_ConcurrentComments(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		_, r := seedReview(t, s)

		var wg sync.WaitGroup
		for i := range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c := review.Comment{ID: review.NewID(), PersonaID: "p", PersonaName: "P", Content: "n", CreatedAt: t0}
				c.Anchor.StartLine = i
				assert.NoError(t, s.AddComment(ctx, r.ID, c))
			}()
		}
		wg.Wait()

		got, err := s.Comments(ctx, r.ID)
		require.NoError(t, err)
		assert.Len(t, got, 20)
	})
}

func TestStore_Ping(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		assert.NoError(t, s.Ping(context.Background()))
	})
}

func TestSQLiteStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "critics.db")

	s, err := NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	seedReview(t, s)
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	docs, err := s.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "doc-1", docs[0].ID)

	var mode string
	require.NoError(t, s.db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}
