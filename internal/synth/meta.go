// Package synth groups persona comments by location and condenses them into a
// short list of prioritized cross-persona findings.
package synth

import (
	"time"

	"github.com/dusk-indust/critics/internal/review"
)

// Category is the closed set of finding themes.
type Category string

const (
	CategoryStructure     Category = "structure"
	CategoryClarity       Category = "clarity"
	CategoryTechnical     Category = "technical"
	CategorySecurity      Category = "security"
	CategoryAccessibility Category = "accessibility"
	CategoryStyle         Category = "style"
)

// ParseCategory maps s onto the closed set, defaulting to CategoryClarity.
func ParseCategory(s string) Category {
	switch c := Category(s); c {
	case CategoryStructure, CategoryClarity, CategoryTechnical,
		CategorySecurity, CategoryAccessibility, CategoryStyle:
		return c
	default:
		return CategoryClarity
	}
}

// Priority is the closed set of finding severities.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// ParsePriority maps s onto the closed set, defaulting to PriorityMedium.
func ParsePriority(s string) Priority {
	switch p := Priority(s); p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return p
	default:
		return PriorityMedium
	}
}

// Source attributes a finding to one original persona comment.
type Source struct {
	PersonaID       string `json:"persona_id"`
	PersonaName     string `json:"persona_name"`
	PersonaColor    string `json:"persona_color"`
	OriginalContent string `json:"original_content"`
}

// MetaComment is one synthesized finding.
type MetaComment struct {
	ID        string        `json:"id"`
	Content   string        `json:"content"`
	Anchor    review.Anchor `json:"anchor"`
	Sources   []Source      `json:"sources"`
	Category  Category      `json:"category"`
	Priority  Priority      `json:"priority"`
	CreatedAt time.Time     `json:"created_at"`
}

func sourceOf(c review.Comment) Source {
	return Source{
		PersonaID:       c.PersonaID,
		PersonaName:     c.PersonaName,
		PersonaColor:    c.PersonaColor,
		OriginalContent: c.Content,
	}
}
