package mcptools

import (
	"context"
	"encoding/json"
	"sort"
	"testing"

	"github.com/dusk-indust/critics/internal/llm"
	"github.com/dusk-indust/critics/internal/persona"
	"github.com/dusk-indust/critics/internal/review"
	"github.com/dusk-indust/critics/internal/service"
	"github.com/dusk-indust/critics/internal/store"
	"github.com/dusk-indust/critics/internal/synth"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const planDoc = "# Launch Plan\n\nWe ship Friday.\n\nRollback is manual."

// newTestReviewService builds a ReviewService on an in-memory store with two
// personas that both comment on the second paragraph region.
func newTestReviewService(t *testing.T) *ReviewService {
	t.Helper()

	catalog, err := persona.NewCatalog([]persona.Persona{
		{ID: persona.IDTechnicalCritic, Name: "Technical Critic", Instructions: "tech", Tone: persona.ToneTechnical},
		{ID: persona.IDCasualReader, Name: "Casual Reader", Instructions: "casual"},
	})
	require.NoError(t, err)

	gen := llm.GeneratorFunc(func(context.Context, llm.Request) (string, error) {
		return "[PARAGRAPH 1] Which Friday is this?", nil
	})
	svc := service.New(
		store.NewMemStore(),
		review.NewOrchestrator(catalog, gen),
		synth.NewEngine(nil),
	)
	return NewReviewService(svc)
}

// setupServerClient wires an MCP server and client together using in-memory
// transports.
func setupServerClient(t *testing.T) *mcp.ClientSession {
	t.Helper()

	server := NewMCPServer(newTestReviewService(t))
	st, ct := mcp.NewInMemoryTransports()
	ctx := context.Background()

	_, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)
	session, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		session.Close()
	})
	return session
}

func decodeStructured[T any](t *testing.T, result *mcp.CallToolResult) T {
	t.Helper()
	require.NotNil(t, result.StructuredContent)
	raw, err := json.Marshal(result.StructuredContent)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestMCPListTools(t *testing.T) {
	session := setupServerClient(t)

	result, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	names := make([]string, len(result.Tools))
	for i, tool := range result.Tools {
		names[i] = tool.Name
	}
	sort.Strings(names)

	assert.Equal(t, []string{"get_review", "list_personas", "review_document", "synthesize_review"}, names)
}

func TestListPersonas(t *testing.T) {
	svc := newTestReviewService(t)

	_, out, err := svc.ListPersonas(context.Background(), nil, ListPersonasInput{})
	require.NoError(t, err)
	require.Len(t, out.Personas, 2)
	assert.Equal(t, persona.IDTechnicalCritic, out.Personas[0].ID)
	assert.Equal(t, string(persona.ToneTechnical), out.Personas[0].Tone)
	assert.Equal(t, persona.IDCasualReader, out.Personas[1].ID)
}

func TestReviewDocument_Content(t *testing.T) {
	svc := newTestReviewService(t)
	ctx := context.Background()

	_, out, err := svc.ReviewDocument(ctx, nil, ReviewDocumentInput{Content: planDoc, Synthesize: true})
	require.NoError(t, err)

	assert.NotEmpty(t, out.ReviewID)
	assert.NotEmpty(t, out.DocumentID)
	assert.Equal(t, string(store.ReviewCompleted), out.Status)
	require.Len(t, out.Comments, 2)
	for _, c := range out.Comments {
		assert.Equal(t, 3, c.StartLine)
		assert.Equal(t, 3, c.EndLine)
		assert.False(t, c.Failed)
	}

	require.Len(t, out.Findings, 1)
	assert.Equal(t, 3, out.Findings[0].StartLine)
	assert.ElementsMatch(t, []string{"Technical Critic", "Casual Reader"}, out.Findings[0].Personas)
}

func TestReviewDocument_StoredDocumentAndSubset(t *testing.T) {
	svc := newTestReviewService(t)
	ctx := context.Background()

	doc, err := svc.svc.CreateDocument(ctx, service.NewDocument{Content: planDoc})
	require.NoError(t, err)

	_, out, err := svc.ReviewDocument(ctx, nil, ReviewDocumentInput{
		DocumentID: doc.ID,
		PersonaIDs: []string{persona.IDCasualReader},
	})
	require.NoError(t, err)
	assert.Equal(t, doc.ID, out.DocumentID)
	require.Len(t, out.Comments, 1)
	assert.Equal(t, "Casual Reader", out.Comments[0].Persona)
	assert.Empty(t, out.Findings)
}

func TestReviewDocument_Errors(t *testing.T) {
	svc := newTestReviewService(t)
	ctx := context.Background()

	_, _, err := svc.ReviewDocument(ctx, nil, ReviewDocumentInput{})
	assert.Error(t, err)

	_, _, err = svc.ReviewDocument(ctx, nil, ReviewDocumentInput{DocumentID: "missing"})
	assert.ErrorContains(t, err, "not found")
}

func TestSynthesizeAndGetReview(t *testing.T) {
	svc := newTestReviewService(t)
	ctx := context.Background()

	_, reviewed, err := svc.ReviewDocument(ctx, nil, ReviewDocumentInput{Content: planDoc})
	require.NoError(t, err)

	_, synthOut, err := svc.SynthesizeReview(ctx, nil, SynthesizeReviewInput{ReviewID: reviewed.ReviewID})
	require.NoError(t, err)
	assert.Equal(t, reviewed.ReviewID, synthOut.ReviewID)
	require.Len(t, synthOut.Findings, 1)
	assert.Equal(t, string(synth.CategoryTechnical), synthOut.Findings[0].Category)

	_, got, err := svc.GetReview(ctx, nil, GetReviewInput{ReviewID: reviewed.ReviewID})
	require.NoError(t, err)
	assert.Equal(t, string(store.ReviewCompleted), got.Status)
	assert.NotEmpty(t, got.CompletedAt)
	assert.Len(t, got.Comments, 2)

	_, _, err = svc.SynthesizeReview(ctx, nil, SynthesizeReviewInput{ReviewID: "missing"})
	assert.ErrorContains(t, err, "not found")
	_, _, err = svc.SynthesizeReview(ctx, nil, SynthesizeReviewInput{})
	assert.Error(t, err)
	_, _, err = svc.GetReview(ctx, nil, GetReviewInput{ReviewID: "missing"})
	assert.ErrorContains(t, err, "not found")
}

func TestMCPReviewDocument(t *testing.T) {
	session := setupServerClient(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "review_document",
		Arguments: ReviewDocumentInput{Content: planDoc},
	})
	require.NoError(t, err)
	require.False(t, result.IsError, "review_document should not return an error")

	out := decodeStructured[ReviewDocumentOutput](t, result)
	assert.Equal(t, string(store.ReviewCompleted), out.Status)
	assert.Len(t, out.Comments, 2)
}

func TestMCPReviewDocument_ToolError(t *testing.T) {
	session := setupServerClient(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "review_document",
		Arguments: ReviewDocumentInput{DocumentID: "missing"},
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
