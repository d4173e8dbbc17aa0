package review

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dusk-indust/critics/internal/document"
	"github.com/dusk-indust/critics/internal/llm"
	"github.com/dusk-indust/critics/internal/persona"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = "# Title\n\nFirst paragraph.\nStill first.\n\nSecond paragraph."

func testPersona() persona.Persona {
	return persona.Persona{
		ID:           "devils-advocate",
		Name:         "Devil's Advocate",
		Instructions: "Challenge everything.",
		Color:        "#ef4444",
	}
}

func testJob() Job {
	return Job{
		DocumentID: "doc-1",
		VersionTag: "v1",
		Content:    sampleDoc,
		Regions:    document.Segment(sampleDoc),
	}
}

func fixedRunner(gen llm.Generator) *Runner {
	r := NewRunner(gen)
	n := 0
	r.newID = func() string {
		n++
		return "c" + strings.Repeat("x", n)
	}
	r.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return r
}

func TestRunner_Run_AnchorsMarkers(t *testing.T) {
	var got llm.Request
	gen := llm.GeneratorFunc(func(_ context.Context, req llm.Request) (string, error) {
		got = req
		return "[PARAGRAPH 1] Split this.\n[PARAGRAPH 2] Weak ending.", nil
	})

	comments := fixedRunner(gen).Run(context.Background(), testPersona(), testJob())
	require.Len(t, comments, 2)

	assert.Equal(t, "Challenge everything.", got.System)
	assert.Contains(t, got.Prompt, "[PARAGRAPH X]")
	assert.Contains(t, got.Prompt, sampleDoc)
	assert.Equal(t, DefaultMaxTokens, got.MaxTokens)

	assert.Equal(t, "Split this.", comments[0].Content)
	assert.Equal(t, Anchor{StartLine: 2, EndLine: 3}, comments[0].Anchor)
	assert.Equal(t, Anchor{StartLine: 5, EndLine: 5}, comments[1].Anchor)

	c := comments[0]
	assert.Equal(t, "devils-advocate", c.PersonaID)
	assert.Equal(t, "Devil's Advocate", c.PersonaName)
	assert.Equal(t, "#ef4444", c.PersonaColor)
	assert.Equal(t, "doc-1", c.DocumentID)
	assert.Equal(t, "v1", c.VersionTag)
	assert.NotEqual(t, comments[0].ID, comments[1].ID)
}

func TestRunner_Run_DropsOutOfRange(t *testing.T) {
	gen := llm.GeneratorFunc(func(context.Context, llm.Request) (string, error) {
		return "[PARAGRAPH 7] Nowhere.\n[PARAGRAPH 0] Title is fine.", nil
	})

	comments := NewRunner(gen).Run(context.Background(), testPersona(), testJob())
	require.Len(t, comments, 1)
	assert.Equal(t, "Title is fine.", comments[0].Content)
}

func TestRunner_Run_NoMarkers(t *testing.T) {
	gen := llm.GeneratorFunc(func(context.Context, llm.Request) (string, error) {
		return "Looks good to me.", nil
	})

	comments := NewRunner(gen).Run(context.Background(), testPersona(), testJob())
	assert.Empty(t, comments)
}

func TestRunner_Run_FailureBecomesComment(t *testing.T) {
	gen := llm.GeneratorFunc(func(context.Context, llm.Request) (string, error) {
		return "", errors.New("rate limited")
	})

	comments := NewRunner(gen).Run(context.Background(), testPersona(), testJob())
	require.Len(t, comments, 1)
	assert.True(t, comments[0].IsFailure())
	assert.Contains(t, comments[0].Content, "rate limited")
	assert.Equal(t, Anchor{}, comments[0].Anchor)
	assert.Equal(t, "devils-advocate", comments[0].PersonaID)
}

func TestRunner_Run_PassesModelAndTokens(t *testing.T) {
	var got llm.Request
	gen := llm.GeneratorFunc(func(_ context.Context, req llm.Request) (string, error) {
		got = req
		return "", nil
	})

	job := testJob()
	job.Model = "m-1"
	job.MaxTokens = 256
	NewRunner(gen).Run(context.Background(), testPersona(), job)

	assert.Equal(t, "m-1", got.Model)
	assert.Equal(t, 256, got.MaxTokens)
}
