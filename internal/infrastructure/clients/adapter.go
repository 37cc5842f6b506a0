package clients

import (
	"context"
	"io"
	"net/http"
	"time"

	"saham-assistant/internal/domain/entities"
	"saham-assistant/internal/infrastructure/logger"
)

// AIMessage is one chat turn on the wire.
type AIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatOptions overrides the provider's sampling defaults per request.
type ChatOptions struct {
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
}

// AIResponse is the normalized chat result, independent of backend kind.
type AIResponse struct {
	Content        string `json:"content"`
	Model          string `json:"model"`
	TokensUsed     *int   `json:"tokens_used,omitempty"`
	ResponseTimeMs int64  `json:"response_time_ms"`
}

// AIAdapter speaks one backend kind's wire protocol. The API key arrives
// already unsealed; adapters for unauthenticated backends ignore it.
type AIAdapter interface {
	// Chat performs a blocking completion and normalizes the response.
	Chat(ctx context.Context, provider *entities.AIProvider, apiKey string, messages []AIMessage, opts *ChatOptions) (*AIResponse, error)

	// ChatStream opens a streaming completion and returns the raw response
	// body for the caller to relay; the adapter never decodes the stream.
	ChatStream(ctx context.Context, provider *entities.AIProvider, apiKey string, messages []AIMessage, opts *ChatOptions) (io.ReadCloser, error)
}

// AdapterFactory maps provider kinds to adapters. The mapping is closed:
// kinds outside entities.SupportedProviderKinds fail with a ConfigurationError.
type AdapterFactory struct {
	adapters map[entities.ProviderKind]AIAdapter
}

// NewAdapterFactory builds the adapter set. timeout bounds blocking chat
// calls; streams are bounded by caller cancellation instead.
func NewAdapterFactory(httpClient HTTPClient, timeout time.Duration, log logger.Logger) *AdapterFactory {
	// Streams must not carry an overall client timeout or long completions
	// would be cut mid-response; ctx cancellation still applies.
	streamClient := &http.Client{}

	return &AdapterFactory{
		adapters: map[entities.ProviderKind]AIAdapter{
			entities.ProviderKindOpenAI: &openAIAdapter{
				httpClient:   httpClient,
				streamClient: streamClient,
				timeout:      timeout,
				logger:       log,
			},
			entities.ProviderKindPollinations: &pollinationsAdapter{
				httpClient:   httpClient,
				streamClient: streamClient,
				timeout:      timeout,
				logger:       log,
			},
		},
	}
}

// AdapterFor returns the adapter for the kind.
func (f *AdapterFactory) AdapterFor(kind entities.ProviderKind) (AIAdapter, error) {
	adapter, ok := f.adapters[kind]
	if !ok {
		return nil, entities.NewConfigurationError("unsupported provider type: %s", kind)
	}
	return adapter, nil
}

// resolveTemperature prefers the per-request override over the provider default.
func resolveTemperature(provider *entities.AIProvider, opts *ChatOptions) float64 {
	if opts != nil && opts.Temperature != nil {
		return *opts.Temperature
	}
	return provider.Temperature
}

// resolveMaxTokens prefers the per-request override over the provider default.
func resolveMaxTokens(provider *entities.AIProvider, opts *ChatOptions) int {
	if opts != nil && opts.MaxTokens != nil {
		return *opts.MaxTokens
	}
	return provider.MaxTokens
}

// elapsedMs returns the wall-clock duration in milliseconds, rounding
// sub-millisecond calls up so callers can rely on a positive value.
func elapsedMs(start time.Time) int64 {
	ms := time.Since(start).Milliseconds()
	if ms < 1 {
		ms = 1
	}
	return ms
}
