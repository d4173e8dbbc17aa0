package llm

import "fmt"

// Provider names accepted by New.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// New builds the generator for a provider name. An empty provider selects
// Anthropic.
func New(provider, apiKey string, opts ...ClientOption) (Generator, error) {
	switch provider {
	case "", ProviderAnthropic:
		return NewAnthropicClient(apiKey, opts...), nil
	case ProviderOpenAI:
		return NewOpenAIClient(apiKey, opts...), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", provider)
	}
}
