package mcptools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dusk-indust/critics/internal/review"
	"github.com/dusk-indust/critics/internal/service"
	"github.com/dusk-indust/critics/internal/store"
	"github.com/dusk-indust/critics/internal/synth"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ReviewService handles MCP tool calls. It wraps a service.Service so the
// tools share storage with the CLI and the HTTP server.
type ReviewService struct {
	svc *service.Service
}

// NewReviewService creates a ReviewService over svc.
func NewReviewService(svc *service.Service) *ReviewService {
	return &ReviewService{svc: svc}
}

// ListPersonas returns the persona catalog in order.
func (s *ReviewService) ListPersonas(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListPersonasInput,
) (*mcp.CallToolResult, ListPersonasOutput, error) {
	list := s.svc.Catalog().List()
	out := ListPersonasOutput{Personas: make([]PersonaSummary, 0, len(list))}
	for _, p := range list {
		out.Personas = append(out.Personas, PersonaSummary{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Tone:        string(p.Tone),
			FocusTags:   append([]string{}, p.FocusTags...),
			Color:       p.Color,
		})
	}
	return nil, out, nil
}

// ReviewDocument runs a full review, storing the content first when given,
// and returns every comment. With Synthesize set the findings are included.
func (s *ReviewService) ReviewDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReviewDocumentInput,
) (*mcp.CallToolResult, ReviewDocumentOutput, error) {
	docID := input.DocumentID
	if strings.TrimSpace(input.Content) != "" {
		doc, err := s.svc.CreateDocument(ctx, service.NewDocument{Title: input.Title, Content: input.Content})
		if err != nil {
			return nil, ReviewDocumentOutput{}, err
		}
		docID = doc.ID
	}
	if docID == "" {
		return nil, ReviewDocumentOutput{}, errors.New("either documentId or content is required")
	}

	rec, comments, err := s.svc.RunReview(ctx, docID, service.ReviewOptions{
		PersonaIDs: input.PersonaIDs,
		Model:      input.Model,
	}, nil)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ReviewDocumentOutput{}, fmt.Errorf("document %q not found", docID)
		}
		return nil, ReviewDocumentOutput{}, err
	}

	out := ReviewDocumentOutput{
		ReviewID:   rec.ID,
		DocumentID: docID,
		Status:     string(rec.Status),
		Comments:   commentViews(comments),
	}
	if input.Synthesize {
		metas, err := s.svc.Synthesize(ctx, rec.ID, false)
		if err != nil {
			return nil, out, err
		}
		out.Findings = findingViews(metas)
	}
	return nil, out, nil
}

// SynthesizeReview condenses a stored review into findings.
func (s *ReviewService) SynthesizeReview(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SynthesizeReviewInput,
) (*mcp.CallToolResult, SynthesizeReviewOutput, error) {
	if input.ReviewID == "" {
		return nil, SynthesizeReviewOutput{}, errors.New("reviewId is required")
	}
	metas, err := s.svc.Synthesize(ctx, input.ReviewID, input.Force)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, SynthesizeReviewOutput{}, fmt.Errorf("review %q not found", input.ReviewID)
		}
		return nil, SynthesizeReviewOutput{}, err
	}
	return nil, SynthesizeReviewOutput{ReviewID: input.ReviewID, Findings: findingViews(metas)}, nil
}

// GetReview returns a stored review and its comments.
func (s *ReviewService) GetReview(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetReviewInput,
) (*mcp.CallToolResult, GetReviewOutput, error) {
	st := s.svc.Store()
	rec, err := st.GetReview(ctx, input.ReviewID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, GetReviewOutput{}, fmt.Errorf("review %q not found", input.ReviewID)
		}
		return nil, GetReviewOutput{}, err
	}
	comments, err := st.Comments(ctx, rec.ID)
	if err != nil {
		return nil, GetReviewOutput{}, err
	}

	out := GetReviewOutput{
		ReviewID:   rec.ID,
		DocumentID: rec.DocumentID,
		Status:     string(rec.Status),
		PersonaIDs: append([]string{}, rec.PersonaIDs...),
		CreatedAt:  rec.CreatedAt.Format(time.RFC3339),
		Comments:   commentViews(comments),
	}
	if rec.CompletedAt != nil {
		out.CompletedAt = rec.CompletedAt.Format(time.RFC3339)
	}
	return nil, out, nil
}

func commentViews(comments []review.Comment) []CommentView {
	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, CommentView{
			ID:        c.ID,
			PersonaID: c.PersonaID,
			Persona:   c.PersonaName,
			StartLine: c.Anchor.StartLine + 1,
			EndLine:   c.Anchor.EndLine + 1,
			Content:   c.Content,
			Failed:    c.IsFailure(),
		})
	}
	return views
}

func findingViews(metas []synth.MetaComment) []FindingView {
	views := make([]FindingView, 0, len(metas))
	for _, m := range metas {
		v := FindingView{
			ID:        m.ID,
			Content:   m.Content,
			Category:  string(m.Category),
			Priority:  string(m.Priority),
			StartLine: m.Anchor.StartLine + 1,
			EndLine:   m.Anchor.EndLine + 1,
			Personas:  make([]string, 0, len(m.Sources)),
		}
		for _, src := range m.Sources {
			v.Personas = append(v.Personas, src.PersonaName)
		}
		views = append(views, v)
	}
	return views
}
