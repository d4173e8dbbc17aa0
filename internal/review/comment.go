// Package review runs independent persona reviews of a document concurrently
// and streams their progress and anchored comments to the caller.
package review

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// FailureMarker prefixes the content of synthetic comments that stand in for
// a persona whose generation call failed.
const FailureMarker = "[REVIEW FAILED]"

// Anchor binds a comment to an inclusive, 0-indexed line range.
type Anchor struct {
	StartLine int `json:"start_line"`
	EndLine   int `json:"end_line"`
}

// Comment is one persona critique anchored to a paragraph.
type Comment struct {
	ID           string    `json:"id"`
	PersonaID    string    `json:"persona_id"`
	PersonaName  string    `json:"persona_name"`
	PersonaColor string    `json:"persona_color"`
	DocumentID   string    `json:"document_id"`
	VersionTag   string    `json:"version_tag"`
	Content      string    `json:"content"`
	Anchor       Anchor    `json:"anchor"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsFailure reports whether c is a synthetic failure comment.
func (c Comment) IsFailure() bool {
	return IsFailureContent(c.Content)
}

// IsFailureContent reports whether content carries the failure marker.
func IsFailureContent(content string) bool {
	return strings.HasPrefix(content, FailureMarker)
}

// NewID returns a fresh random identifier for comments and reviews.
func NewID() string {
	return uuid.NewString()
}
