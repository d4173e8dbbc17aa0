package review

import (
	"encoding/json"
	"fmt"

	"github.com/dusk-indust/critics/internal/persona"
)

// EventType tags the variant carried by an Event.
type EventType string

const (
	EventPersonaStatus EventType = "persona_status"
	EventComment       EventType = "comment"
	EventDone          EventType = "done"
)

// Status is the lifecycle state of one persona within a review run.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
)

// Event is one unit of the ordered stream produced by Orchestrator.Review.
// Which fields are meaningful depends on Type:
//   - EventPersonaStatus: PersonaID, PersonaName, PersonaColor, Status
//   - EventComment: Comment
//   - EventDone: TotalComments, and ReviewID when the caller persisted the run
type Event struct {
	Type          EventType
	PersonaID     string
	PersonaName   string
	PersonaColor  string
	Status        Status
	Comment       *Comment
	TotalComments int
	ReviewID      string
}

// wireEvent is the JSON frame shape: {type: ..., ...fields}.
type wireEvent struct {
	Type          EventType `json:"type"`
	PersonaID     string    `json:"persona_id,omitempty"`
	PersonaName   string    `json:"persona_name,omitempty"`
	PersonaColor  string    `json:"persona_color,omitempty"`
	Status        Status    `json:"status,omitempty"`
	Comment       *Comment  `json:"comment,omitempty"`
	TotalComments *int      `json:"total_comments,omitempty"`
	ReviewID      string    `json:"review_id,omitempty"`
}

// MarshalJSON encodes only the fields of the event's variant.
func (e Event) MarshalJSON() ([]byte, error) {
	w := wireEvent{Type: e.Type}
	switch e.Type {
	case EventPersonaStatus:
		w.PersonaID = e.PersonaID
		w.PersonaName = e.PersonaName
		w.PersonaColor = e.PersonaColor
		w.Status = e.Status
	case EventComment:
		w.Comment = e.Comment
	case EventDone:
		total := e.TotalComments
		w.TotalComments = &total
		w.ReviewID = e.ReviewID
	default:
		return nil, fmt.Errorf("review: unknown event type %q", e.Type)
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes a frame produced by MarshalJSON.
func (e *Event) UnmarshalJSON(data []byte) error {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*e = Event{
		Type:         w.Type,
		PersonaID:    w.PersonaID,
		PersonaName:  w.PersonaName,
		PersonaColor: w.PersonaColor,
		Status:       w.Status,
		Comment:      w.Comment,
		ReviewID:     w.ReviewID,
	}
	if w.TotalComments != nil {
		e.TotalComments = *w.TotalComments
	}
	return nil
}

func statusEvent(p persona.Persona, s Status) Event {
	return Event{
		Type:         EventPersonaStatus,
		PersonaID:    p.ID,
		PersonaName:  p.Name,
		PersonaColor: p.Color,
		Status:       s,
	}
}

func commentEvent(c Comment) Event {
	return Event{Type: EventComment, Comment: &c}
}

// FormatEvent renders an event as a human-readable status line.
func FormatEvent(ev Event) string {
	switch ev.Type {
	case EventPersonaStatus:
		switch ev.Status {
		case StatusQueued:
			return fmt.Sprintf("  ○ %s (queued)", ev.PersonaName)
		case StatusRunning:
			return fmt.Sprintf("  ● %s...", ev.PersonaName)
		case StatusCompleted:
			return fmt.Sprintf("  ✓ %s complete", ev.PersonaName)
		}
		return fmt.Sprintf("  ? %s (unknown status)", ev.PersonaName)
	case EventComment:
		c := ev.Comment
		if c == nil {
			return "  - (empty comment)"
		}
		if c.IsFailure() {
			return fmt.Sprintf("  ✗ %s: %s", c.PersonaName, c.Content)
		}
		return fmt.Sprintf("  [%s] lines %d-%d: %s", c.PersonaName, c.Anchor.StartLine+1, c.Anchor.EndLine+1, c.Content)
	case EventDone:
		return fmt.Sprintf("Done: %d comment(s)", ev.TotalComments)
	default:
		return fmt.Sprintf("  ? unknown event %q", ev.Type)
	}
}
