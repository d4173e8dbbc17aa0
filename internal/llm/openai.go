package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Compile-time interface checks.
var (
	_ Generator = (*OpenAIClient)(nil)
	_ Streamer  = (*OpenAIClient)(nil)
)

// DefaultOpenAIURL is the base URL for OpenAI-compatible chat completions.
const DefaultOpenAIURL = "https://api.openai.com/v1"

// OpenAIClient talks to any OpenAI-compatible /chat/completions endpoint.
type OpenAIClient struct {
	http         *http.Client
	apiKey       string
	baseURL      string
	defaultModel string
}

// NewOpenAIClient creates a chat-completions client.
func NewOpenAIClient(apiKey string, opts ...ClientOption) *OpenAIClient {
	o := applyOptions(DefaultOpenAIURL, "gpt-4o-mini", opts)
	return &OpenAIClient{
		http:         o.http,
		apiKey:       strings.TrimSpace(apiKey),
		baseURL:      o.baseURL,
		defaultModel: o.defaultModel,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
	Stream    bool          `json:"stream,omitempty"`
}

type completionsResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// FirstContent returns the text of the first choice, or "".
func (c completionsResponse) FirstContent() string {
	if len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].Message.Content
}

type chatStreamEvent struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// FirstDelta returns the content delta of the first choice, or "".
func (e chatStreamEvent) FirstDelta() string {
	if len(e.Choices) == 0 {
		return ""
	}
	return e.Choices[0].Delta.Content
}

// Generate sends one chat completion request.
func (c *OpenAIClient) Generate(ctx context.Context, req Request) (string, error) {
	resp, err := c.post(ctx, req, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var parsed completionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("llm: decode response: %w", err)
	}

	content := parsed.FirstContent()
	if content == "" {
		return "", errors.New("llm: empty completion")
	}
	return content, nil
}

// Stream sends a streaming chat completion request and delivers content
// deltas as they arrive. The stream must end with the "[DONE]" sentinel;
// a body that stops before it ends the channel with an error Chunk.
func (c *OpenAIClient) Stream(ctx context.Context, req Request) (<-chan Chunk, error) {
	resp, err := c.post(ctx, req, true)
	if err != nil {
		return nil, err
	}

	frames := readFrames(ctx, resp.Body)
	out := make(chan Chunk)

	go func() {
		defer close(out)

		send := func(ch Chunk) bool {
			select {
			case out <- ch:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for frame := range frames {
			if frame.Err != nil {
				send(Chunk{Err: fmt.Errorf("llm: read stream: %w", frame.Err)})
				return
			}
			if frame.Data == "" {
				continue
			}
			if frame.Data == "[DONE]" {
				drain(frames)
				return
			}

			var ev chatStreamEvent
			if err := json.Unmarshal([]byte(frame.Data), &ev); err != nil {
				send(Chunk{Err: fmt.Errorf("llm: decode stream event: %w", err)})
				drain(frames)
				return
			}
			if ev.Error != nil {
				send(Chunk{Err: &APIError{Status: http.StatusOK, Type: ev.Error.Type, Message: ev.Error.Message}})
				drain(frames)
				return
			}
			if text := ev.FirstDelta(); text != "" {
				if !send(Chunk{Text: text}) {
					drain(frames)
					return
				}
			}
		}
		if ctx.Err() == nil {
			send(Chunk{Err: ErrTruncatedStream})
		}
	}()

	return out, nil
}

// post performs the chat completions call and checks the HTTP status. On
// success the caller owns resp.Body.
func (c *OpenAIClient) post(ctx context.Context, req Request, stream bool) (*http.Response, error) {
	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	var messages []chatMessage
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	body, err := json.Marshal(chatRequest{
		Model:     model,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
		Stream:    stream,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("llm: create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	if stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("llm: chat completions: %w", err)
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(resp.Body)
		return nil, &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}
	return resp, nil
}
