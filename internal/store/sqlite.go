package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dusk-indust/critics/internal/review"
	"github.com/dusk-indust/critics/internal/synth"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time check.
var _ Store = (*SQLiteStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    seq         INTEGER PRIMARY KEY AUTOINCREMENT,
    id          TEXT NOT NULL UNIQUE,
    title       TEXT NOT NULL,
    content     TEXT NOT NULL,
    version_tag TEXT NOT NULL DEFAULT '',
    created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS reviews (
    seq          INTEGER PRIMARY KEY AUTOINCREMENT,
    id           TEXT NOT NULL UNIQUE,
    document_id  TEXT NOT NULL REFERENCES documents(id),
    persona_ids  TEXT NOT NULL DEFAULT '[]',
    status       TEXT NOT NULL,
    created_at   TEXT NOT NULL,
    completed_at TEXT
);

CREATE TABLE IF NOT EXISTS comments (
    seq           INTEGER PRIMARY KEY AUTOINCREMENT,
    id            TEXT NOT NULL,
    review_id     TEXT NOT NULL REFERENCES reviews(id),
    persona_id    TEXT NOT NULL,
    persona_name  TEXT NOT NULL,
    persona_color TEXT NOT NULL DEFAULT '',
    document_id   TEXT NOT NULL,
    version_tag   TEXT NOT NULL DEFAULT '',
    content       TEXT NOT NULL,
    start_line    INTEGER NOT NULL,
    end_line      INTEGER NOT NULL,
    created_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS comments_review ON comments(review_id);

CREATE TABLE IF NOT EXISTS meta_comments (
    seq        INTEGER PRIMARY KEY AUTOINCREMENT,
    id         TEXT NOT NULL,
    review_id  TEXT NOT NULL REFERENCES reviews(id),
    content    TEXT NOT NULL,
    start_line INTEGER NOT NULL,
    end_line   INTEGER NOT NULL,
    sources    TEXT NOT NULL DEFAULT '[]',
    category   TEXT NOT NULL,
    priority   TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS meta_comments_review ON meta_comments(review_id);
`

// SQLiteStore implements Store on a local SQLite database in WAL mode.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath, enables WAL mode
// and a busy timeout, and creates the schema if it does not exist.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	// SQLite has a single writer; one connection keeps PRAGMAs consistent.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: %s: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) CreateDocument(ctx context.Context, doc Document) error {
	const q = `INSERT INTO documents (id, title, content, version_tag, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q, doc.ID, doc.Title, doc.Content, doc.VersionTag, formatTime(doc.CreatedAt))
	if isUniqueViolation(err) {
		return fmt.Errorf("document %q: %w", doc.ID, ErrExists)
	}
	if err != nil {
		return fmt.Errorf("store: create document %q: %w", doc.ID, err)
	}
	return nil
}

func (s *SQLiteStore) GetDocument(ctx context.Context, id string) (Document, error) {
	const q = `SELECT id, title, content, version_tag, created_at FROM documents WHERE id = ?`
	doc, err := scanDocument(s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, fmt.Errorf("document %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return Document{}, fmt.Errorf("store: get document %q: %w", id, err)
	}
	return doc, nil
}

func (s *SQLiteStore) ListDocuments(ctx context.Context) ([]Document, error) {
	const q = `SELECT id, title, content, version_tag, created_at FROM documents ORDER BY seq`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("store: list documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *SQLiteStore) CreateReview(ctx context.Context, r Review) error {
	if _, err := s.GetDocument(ctx, r.DocumentID); err != nil {
		return err
	}

	ids, err := json.Marshal(nonNil(r.PersonaIDs))
	if err != nil {
		return fmt.Errorf("store: encode persona ids: %w", err)
	}

	const q = `INSERT INTO reviews (id, document_id, persona_ids, status, created_at, completed_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, q, r.ID, r.DocumentID, string(ids), string(r.Status),
		formatTime(r.CreatedAt), formatTimePtr(r.CompletedAt))
	if isUniqueViolation(err) {
		return fmt.Errorf("review %q: %w", r.ID, ErrExists)
	}
	if err != nil {
		return fmt.Errorf("store: create review %q: %w", r.ID, err)
	}
	return nil
}

func (s *SQLiteStore) GetReview(ctx context.Context, id string) (Review, error) {
	const q = `SELECT id, document_id, persona_ids, status, created_at, completed_at FROM reviews WHERE id = ?`
	r, err := scanReview(s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Review{}, fmt.Errorf("review %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return Review{}, fmt.Errorf("store: get review %q: %w", id, err)
	}
	return r, nil
}

func (s *SQLiteStore) ListReviews(ctx context.Context, documentID string) ([]Review, error) {
	q := `SELECT id, document_id, persona_ids, status, created_at, completed_at FROM reviews`
	var args []any
	if documentID != "" {
		q += ` WHERE document_id = ?`
		args = append(args, documentID)
	}
	q += ` ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list reviews: %w", err)
	}
	defer rows.Close()

	var out []Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan review: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SetReviewStatus(ctx context.Context, id string, status ReviewStatus, at time.Time) error {
	var completed any
	if status.Terminal() {
		completed = formatTime(at)
	}

	const q = `UPDATE reviews SET status = ?, completed_at = COALESCE(?, completed_at) WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, string(status), completed, id)
	if err != nil {
		return fmt.Errorf("store: set review %q status: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("review %q: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) AddComment(ctx context.Context, reviewID string, c review.Comment) error {
	if err := s.reviewExists(ctx, reviewID); err != nil {
		return err
	}

	const q = `
		INSERT INTO comments (id, review_id, persona_id, persona_name, persona_color,
			document_id, version_tag, content, start_line, end_line, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q, c.ID, reviewID, c.PersonaID, c.PersonaName, c.PersonaColor,
		c.DocumentID, c.VersionTag, c.Content, c.Anchor.StartLine, c.Anchor.EndLine, formatTime(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("store: add comment to review %q: %w", reviewID, err)
	}
	return nil
}

func (s *SQLiteStore) Comments(ctx context.Context, reviewID string) ([]review.Comment, error) {
	if err := s.reviewExists(ctx, reviewID); err != nil {
		return nil, err
	}

	const q = `
		SELECT id, persona_id, persona_name, persona_color, document_id, version_tag,
			content, start_line, end_line, created_at
		FROM comments WHERE review_id = ? ORDER BY seq`
	rows, err := s.db.QueryContext(ctx, q, reviewID)
	if err != nil {
		return nil, fmt.Errorf("store: list comments for review %q: %w", reviewID, err)
	}
	defer rows.Close()

	var out []review.Comment
	for rows.Next() {
		var c review.Comment
		var created string
		if err := rows.Scan(&c.ID, &c.PersonaID, &c.PersonaName, &c.PersonaColor, &c.DocumentID,
			&c.VersionTag, &c.Content, &c.Anchor.StartLine, &c.Anchor.EndLine, &created); err != nil {
			return nil, fmt.Errorf("store: scan comment: %w", err)
		}
		if c.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SaveMetaComments(ctx context.Context, reviewID string, metas []synth.MetaComment) error {
	if err := s.reviewExists(ctx, reviewID); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx for meta comments: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, `DELETE FROM meta_comments WHERE review_id = ?`, reviewID); err != nil {
		return fmt.Errorf("store: clear meta comments for review %q: %w", reviewID, err)
	}

	const q = `
		INSERT INTO meta_comments (id, review_id, content, start_line, end_line, sources, category, priority, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return fmt.Errorf("store: prepare meta comment insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range metas {
		sources, err := json.Marshal(nonNil(m.Sources))
		if err != nil {
			return fmt.Errorf("store: encode sources of %q: %w", m.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, m.ID, reviewID, m.Content, m.Anchor.StartLine, m.Anchor.EndLine,
			string(sources), string(m.Category), string(m.Priority), formatTime(m.CreatedAt)); err != nil {
			return fmt.Errorf("store: insert meta comment %q: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit meta comments: %w", err)
	}
	return nil
}

func (s *SQLiteStore) MetaComments(ctx context.Context, reviewID string) ([]synth.MetaComment, error) {
	if err := s.reviewExists(ctx, reviewID); err != nil {
		return nil, err
	}

	const q = `
		SELECT id, content, start_line, end_line, sources, category, priority, created_at
		FROM meta_comments WHERE review_id = ? ORDER BY seq`
	rows, err := s.db.QueryContext(ctx, q, reviewID)
	if err != nil {
		return nil, fmt.Errorf("store: list meta comments for review %q: %w", reviewID, err)
	}
	defer rows.Close()

	out := []synth.MetaComment{}
	for rows.Next() {
		var m synth.MetaComment
		var sources, category, priority, created string
		if err := rows.Scan(&m.ID, &m.Content, &m.Anchor.StartLine, &m.Anchor.EndLine,
			&sources, &category, &priority, &created); err != nil {
			return nil, fmt.Errorf("store: scan meta comment: %w", err)
		}
		if err := json.Unmarshal([]byte(sources), &m.Sources); err != nil {
			return nil, fmt.Errorf("store: decode sources of %q: %w", m.ID, err)
		}
		m.Category = synth.Category(category)
		m.Priority = synth.Priority(priority)
		if m.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) reviewExists(ctx context.Context, id string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM reviews WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("review %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("store: look up review %q: %w", id, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (Document, error) {
	var doc Document
	var created string
	if err := row.Scan(&doc.ID, &doc.Title, &doc.Content, &doc.VersionTag, &created); err != nil {
		return Document{}, err
	}
	var err error
	doc.CreatedAt, err = parseTime(created)
	return doc, err
}

func scanReview(row scanner) (Review, error) {
	var r Review
	var ids, status, created string
	var completed sql.NullString
	if err := row.Scan(&r.ID, &r.DocumentID, &ids, &status, &created, &completed); err != nil {
		return Review{}, err
	}
	if err := json.Unmarshal([]byte(ids), &r.PersonaIDs); err != nil {
		return Review{}, fmt.Errorf("decode persona ids: %w", err)
	}
	r.Status = ReviewStatus(status)

	var err error
	if r.CreatedAt, err = parseTime(created); err != nil {
		return Review{}, err
	}
	if completed.Valid {
		t, err := parseTime(completed.String)
		if err != nil {
			return Review{}, err
		}
		r.CompletedAt = &t
	}
	return r, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("store: parse time %q: %w", s, err)
	}
	return t, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
