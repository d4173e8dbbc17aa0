// Package llm is the client side of the external text-generation capability
// used by persona reviews and meta-synthesis.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// Request is a single generation call.
type Request struct {
	// System frames the model's behavior (persona instructions).
	System string
	// Prompt is the user turn.
	Prompt string
	// Model identifies the model; providers fall back to their default when empty.
	Model string
	// MaxTokens caps the output size; providers apply a default when <= 0.
	MaxTokens int
}

// Generator produces text for a request as one block.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Chunk is one incremental fragment of a streamed generation. A Chunk with
// Err set is the last value sent on the channel.
type Chunk struct {
	Text string
	Err  error
}

// Streamer is implemented by generators that can deliver output
// incrementally. The channel is closed when generation ends.
type Streamer interface {
	Stream(ctx context.Context, req Request) (<-chan Chunk, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Collect runs req against g and returns the full output text. Generators
// that implement Streamer are streamed and their fragments concatenated;
// any fragment error fails the whole call and the partial text is discarded.
func Collect(ctx context.Context, g Generator, req Request) (string, error) {
	s, ok := g.(Streamer)
	if !ok {
		return g.Generate(ctx, req)
	}

	ch, err := s.Stream(ctx, req)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for chunk := range ch {
		if chunk.Err != nil {
			// Drain so the producer can exit.
			for range ch {
			}
			return "", chunk.Err
		}
		sb.WriteString(chunk.Text)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("llm: stream interrupted: %w", err)
	}
	return sb.String(), nil
}
