package synth

import (
	"context"
	"errors"
	"testing"

	"github.com/dusk-indust/critics/internal/llm"
	"github.com/dusk-indust/critics/internal/persona"
	"github.com/dusk-indust/critics/internal/review"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reviewComments() []review.Comment {
	return []review.Comment{
		by(persona.IDDevilsAdvocate, "Devil's Advocate", "Unsupported claim.", 0, 1),
		by(persona.IDTechnicalCritic, "Technical Critic", "Latency figure is wrong.", 2, 3),
		by(persona.IDCasualReader, "Casual Reader", "Lost me.", 10, 10),
		by(persona.IDSecurityAuditor, "Security Auditor", review.FailureMarker+": boom", 0, 0),
	}
}

func staticGen(out string, err error) llm.Generator {
	return llm.GeneratorFunc(func(context.Context, llm.Request) (string, error) {
		return out, err
	})
}

func TestSynthesize_Empty(t *testing.T) {
	e := NewEngine(staticGen("", errors.New("must not be called")))
	assert.Empty(t, e.Synthesize(context.Background(), nil))

	onlyFailures := []review.Comment{by("a", "A", review.FailureMarker+": x", 0, 0)}
	assert.Empty(t, e.Synthesize(context.Background(), onlyFailures))
}

func TestSynthesize_PromptListsGroups(t *testing.T) {
	var got llm.Request
	gen := llm.GeneratorFunc(func(_ context.Context, req llm.Request) (string, error) {
		got = req
		return `[{"content":"ok","group_index":0}]`, nil
	})
	NewEngine(gen, WithModel("synth-model"), WithMaxTokens(512)).Synthesize(context.Background(), reviewComments())

	assert.Equal(t, "synth-model", got.Model)
	assert.Equal(t, 512, got.MaxTokens)
	assert.Contains(t, got.Prompt, "--- GROUP 0 (lines 1-4) ---")
	assert.Contains(t, got.Prompt, "--- GROUP 1 (lines 11-11) ---")
	assert.Contains(t, got.Prompt, "[Technical Critic]: Latency figure is wrong.")
	assert.NotContains(t, got.Prompt, review.FailureMarker)
}

func TestSynthesize_LineRanges(t *testing.T) {
	out := "```json\n" + `[{
		"content": "Back the numbers with sources.",
		"category": "technical",
		"priority": "high",
		"contributing_personas": ["Technical Critic"],
		"line_ranges": [[3, 4], [1, 2]]
	}]` + "\n```"

	metas := NewEngine(staticGen(out, nil)).Synthesize(context.Background(), reviewComments())
	require.Len(t, metas, 1)

	m := metas[0]
	assert.Equal(t, "Back the numbers with sources.", m.Content)
	assert.Equal(t, review.Anchor{StartLine: 0, EndLine: 3}, m.Anchor)
	assert.Equal(t, CategoryTechnical, m.Category)
	assert.Equal(t, PriorityHigh, m.Priority)
	require.Len(t, m.Sources, 1)
	assert.Equal(t, persona.IDTechnicalCritic, m.Sources[0].PersonaID)
	assert.Equal(t, "Latency figure is wrong.", m.Sources[0].OriginalContent)
	assert.NotEmpty(t, m.ID)
	assert.False(t, m.CreatedAt.IsZero())
}

func TestSynthesize_GroupIndexAndDefaults(t *testing.T) {
	out := `{"findings":[
		{"content":"Reader gets lost.","category":"vibes","priority":"urgent","contributing_personas":["Nobody"],"group_index":1},
		{"content":"Overall fine.","group_index":-1}
	]}`

	metas := NewEngine(staticGen(out, nil)).Synthesize(context.Background(), reviewComments())
	require.Len(t, metas, 2)

	assert.Equal(t, review.Anchor{StartLine: 10, EndLine: 10}, metas[0].Anchor)
	assert.Equal(t, CategoryClarity, metas[0].Category)
	assert.Equal(t, PriorityMedium, metas[0].Priority)
	require.Len(t, metas[0].Sources, 1, "no name matched, so every comment of the group")
	assert.Equal(t, "Lost me.", metas[0].Sources[0].OriginalContent)

	assert.Equal(t, review.Anchor{}, metas[1].Anchor)
	assert.Len(t, metas[1].Sources, 3)
}

func TestSynthesize_FallbackOnFailure(t *testing.T) {
	tests := []struct {
		name string
		gen  llm.Generator
	}{
		{"nil generator", nil},
		{"call error", staticGen("", errors.New("overloaded"))},
		{"garbage", staticGen("Sure! Here are my thoughts.", nil)},
		{"zero findings", staticGen("[]", nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metas := NewEngine(tt.gen).Synthesize(context.Background(), reviewComments())
			require.Len(t, metas, 2)
			assert.Equal(t, review.Anchor{StartLine: 0, EndLine: 3}, metas[0].Anchor)
			assert.Equal(t, "2 reviewers flagged this section: 1) Devil's Advocate: Unsupported claim. 2) Technical Critic: Latency figure is wrong.", metas[0].Content)
			assert.Equal(t, CategoryTechnical, metas[0].Category)
			assert.Equal(t, PriorityHigh, metas[0].Priority)
			assert.Equal(t, "Lost me.", metas[1].Content)
			assert.Equal(t, CategoryClarity, metas[1].Category)
		})
	}
}
