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
	"time"
)

// Compile-time interface checks.
var (
	_ Generator = (*AnthropicClient)(nil)
	_ Streamer  = (*AnthropicClient)(nil)
)

const (
	// DefaultAnthropicURL is the public Messages API base URL.
	DefaultAnthropicURL = "https://api.anthropic.com"

	anthropicVersion = "2023-06-01"
	defaultMaxTokens = 1024
)

// AnthropicClient talks to the Anthropic Messages API.
type AnthropicClient struct {
	http         *http.Client
	apiKey       string
	baseURL      string
	defaultModel string
}

// ClientOption configures an HTTP-backed generator.
type ClientOption func(*clientOptions)

type clientOptions struct {
	http         *http.Client
	baseURL      string
	defaultModel string
}

// WithTimeout sets the HTTP client timeout. The default is no timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(o *clientOptions) {
		o.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying *http.Client entirely.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(o *clientOptions) {
		o.http = hc
	}
}

// WithBaseURL points the client at a different API host.
func WithBaseURL(u string) ClientOption {
	return func(o *clientOptions) {
		if u != "" {
			o.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithDefaultModel sets the model used when a Request leaves Model empty.
func WithDefaultModel(m string) ClientOption {
	return func(o *clientOptions) {
		o.defaultModel = m
	}
}

func applyOptions(baseURL, model string, opts []ClientOption) clientOptions {
	o := clientOptions{
		http:         &http.Client{},
		baseURL:      baseURL,
		defaultModel: model,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewAnthropicClient creates a Messages API client.
func NewAnthropicClient(apiKey string, opts ...ClientOption) *AnthropicClient {
	o := applyOptions(DefaultAnthropicURL, "claude-3-5-haiku-20241022", opts)
	return &AnthropicClient{
		http:         o.http,
		apiKey:       strings.TrimSpace(apiKey),
		baseURL:      o.baseURL,
		defaultModel: o.defaultModel,
	}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
	Stream    bool               `json:"stream,omitempty"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type anthropicError struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

type anthropicStreamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate sends a non-streaming Messages request and returns the
// concatenated text blocks.
func (c *AnthropicClient) Generate(ctx context.Context, req Request) (string, error) {
	resp, err := c.post(ctx, req, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var parsed anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("llm: decode response: %w", err)
	}

	var sb strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}

// Stream sends a streaming Messages request and delivers text deltas as they
// arrive. Errors reported mid-stream end the channel with an error Chunk, as
// does a body that stops before message_stop.
func (c *AnthropicClient) Stream(ctx context.Context, req Request) (<-chan Chunk, error) {
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
			var ev anthropicStreamEvent
			if err := json.Unmarshal([]byte(frame.Data), &ev); err != nil {
				send(Chunk{Err: fmt.Errorf("llm: decode stream event: %w", err)})
				drain(frames)
				return
			}

			switch ev.Type {
			case "content_block_delta":
				if ev.Delta.Type == "text_delta" && ev.Delta.Text != "" {
					if !send(Chunk{Text: ev.Delta.Text}) {
						drain(frames)
						return
					}
				}
			case "error":
				apiErr := &APIError{Status: http.StatusOK}
				if ev.Error != nil {
					apiErr.Type = ev.Error.Type
					apiErr.Message = ev.Error.Message
				}
				send(Chunk{Err: apiErr})
				drain(frames)
				return
			case "message_stop":
				drain(frames)
				return
			}
		}
		if ctx.Err() == nil {
			send(Chunk{Err: ErrTruncatedStream})
		}
	}()

	return out, nil
}

// post performs the Messages call and checks the HTTP status. On success the
// caller owns resp.Body.
func (c *AnthropicClient) post(ctx context.Context, req Request, stream bool) (*http.Response, error) {
	model := req.Model
	if model == "" {
		model = c.defaultModel
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	body, err := json.Marshal(anthropicRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    req.System,
		Messages:  []anthropicMessage{{Role: "user", Content: req.Prompt}},
		Stream:    stream,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("llm: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)
	if stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("llm: messages: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		var decoded anthropicError
		if json.Unmarshal(raw, &decoded) == nil && decoded.Error.Message != "" {
			apiErr.Type = decoded.Error.Type
			apiErr.Message = decoded.Error.Message
		}
		return nil, apiErr
	}

	return resp, nil
}

func drain[T any](ch <-chan T) {
	for range ch {
	}
}

// ErrTruncatedStream is reported when a streaming response ends without the
// provider's end-of-message marker.
var ErrTruncatedStream = errors.New("llm: stream ended before completion")

// APIError is an error reported by a generation provider.
type APIError struct {
	Status  int
	Type    string
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("llm: HTTP %d: %s: %s", e.Status, e.Type, e.Message)
	}
	return fmt.Sprintf("llm: HTTP %d: %s", e.Status, e.Message)
}
