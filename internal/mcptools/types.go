package mcptools

// --- MCP Tool Types for the critics server mode (critics mcp) ---
// Times are RFC 3339 strings so every output schema stays flat.

// ListPersonasInput is the input for the list_personas MCP tool.
type ListPersonasInput struct{}

// PersonaSummary is a brief overview of one reviewer persona.
type PersonaSummary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tone        string   `json:"tone"`
	FocusTags   []string `json:"focusTags"`
	Color       string   `json:"color"`
}

// ListPersonasOutput is the result of the list_personas MCP tool.
type ListPersonasOutput struct {
	Personas []PersonaSummary `json:"personas"`
}

// ReviewDocumentInput is the input for the review_document MCP tool.
type ReviewDocumentInput struct {
	DocumentID string   `json:"documentId,omitempty" jsonschema:"ID of a stored document to review; ignored when content is set"`
	Content    string   `json:"content,omitempty" jsonschema:"markdown text to store and review"`
	Title      string   `json:"title,omitempty" jsonschema:"title for new content (default: first heading)"`
	PersonaIDs []string `json:"personaIds,omitempty" jsonschema:"personas to run, in order (default: all)"`
	Model      string   `json:"model,omitempty" jsonschema:"model override for the persona calls"`
	Synthesize bool     `json:"synthesize,omitempty" jsonschema:"also synthesize the comments into findings"`
}

// CommentView is one anchored persona comment. Lines are 1-based.
type CommentView struct {
	ID        string `json:"id"`
	PersonaID string `json:"personaId"`
	Persona   string `json:"persona"`
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
	Content   string `json:"content"`
	Failed    bool   `json:"failed,omitempty"`
}

// FindingView is one synthesized finding. Lines are 1-based; document-level
// findings report line 1.
type FindingView struct {
	ID        string   `json:"id"`
	Content   string   `json:"content"`
	Category  string   `json:"category"`
	Priority  string   `json:"priority"`
	StartLine int      `json:"startLine"`
	EndLine   int      `json:"endLine"`
	Personas  []string `json:"personas"`
}

// ReviewDocumentOutput is the result of the review_document MCP tool.
type ReviewDocumentOutput struct {
	ReviewID   string        `json:"reviewId"`
	DocumentID string        `json:"documentId"`
	Status     string        `json:"status"`
	Comments   []CommentView `json:"comments"`
	Findings   []FindingView `json:"findings,omitempty"`
}

// SynthesizeReviewInput is the input for the synthesize_review MCP tool.
type SynthesizeReviewInput struct {
	ReviewID string `json:"reviewId" jsonschema:"ID of a completed review"`
	Force    bool   `json:"force,omitempty" jsonschema:"discard stored findings and synthesize again"`
}

// SynthesizeReviewOutput is the result of the synthesize_review MCP tool.
type SynthesizeReviewOutput struct {
	ReviewID string        `json:"reviewId"`
	Findings []FindingView `json:"findings"`
}

// GetReviewInput is the input for the get_review MCP tool.
type GetReviewInput struct {
	ReviewID string `json:"reviewId" jsonschema:"review ID"`
}

// GetReviewOutput is the result of the get_review MCP tool.
type GetReviewOutput struct {
	ReviewID    string        `json:"reviewId"`
	DocumentID  string        `json:"documentId"`
	Status      string        `json:"status"`
	PersonaIDs  []string      `json:"personaIds"`
	CreatedAt   string        `json:"createdAt"`
	CompletedAt string        `json:"completedAt,omitempty"`
	Comments    []CommentView `json:"comments"`
}
