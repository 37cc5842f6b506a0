package clients

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"saham-assistant/internal/domain/entities"
	"saham-assistant/internal/infrastructure/logger"
)

// openAIAdapter speaks the OpenAI-compatible chat-completions protocol.
type openAIAdapter struct {
	httpClient   HTTPClient
	streamClient *http.Client
	timeout      time.Duration
	logger       logger.Logger
}

// chatCompletionBody is the request envelope for /chat/completions.
type chatCompletionBody struct {
	Model       string      `json:"model"`
	Messages    []AIMessage `json:"messages"`
	Temperature float64     `json:"temperature"`
	MaxTokens   int         `json:"max_tokens"`
	Stream      bool        `json:"stream"`
}

// chatCompletionEnvelope is the response envelope for /chat/completions.
type chatCompletionEnvelope struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

func (a *openAIAdapter) Chat(ctx context.Context, provider *entities.AIProvider, apiKey string, messages []AIMessage, opts *ChatOptions) (*AIResponse, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	url := completionsURL(provider.BaseURL)
	body := chatCompletionBody{
		Model:       provider.ModelName,
		Messages:    messages,
		Temperature: resolveTemperature(provider, opts),
		MaxTokens:   resolveMaxTokens(provider, opts),
		Stream:      false,
	}

	resp, err := a.httpClient.Post(ctx, url, body, bearerHeaders(apiKey))
	if err != nil {
		return nil, transportError(provider, a.timeout, err)
	}

	if !resp.IsSuccess() {
		return nil, &entities.UpstreamError{
			Provider:   provider.Name,
			StatusCode: resp.StatusCode,
			Message:    resp.Status,
		}
	}

	var envelope chatCompletionEnvelope
	if err := resp.UnmarshalJSON(&envelope); err != nil {
		return nil, &entities.UpstreamError{
			Provider: provider.Name,
			Message:  fmt.Sprintf("malformed response body: %v", err),
		}
	}

	content := ""
	if len(envelope.Choices) > 0 {
		content = envelope.Choices[0].Message.Content
	}

	model := envelope.Model
	if model == "" {
		model = provider.ModelName
	}

	var tokensUsed *int
	if envelope.Usage != nil {
		tokens := envelope.Usage.TotalTokens
		tokensUsed = &tokens
	}

	return &AIResponse{
		Content:        content,
		Model:          model,
		TokensUsed:     tokensUsed,
		ResponseTimeMs: elapsedMs(start),
	}, nil
}

func (a *openAIAdapter) ChatStream(ctx context.Context, provider *entities.AIProvider, apiKey string, messages []AIMessage, opts *ChatOptions) (io.ReadCloser, error) {
	body := chatCompletionBody{
		Model:       provider.ModelName,
		Messages:    messages,
		Temperature: resolveTemperature(provider, opts),
		MaxTokens:   resolveMaxTokens(provider, opts),
		Stream:      true,
	}

	return openStream(ctx, a.streamClient, provider, completionsURL(provider.BaseURL), body, bearerHeaders(apiKey))
}

// completionsURL joins the provider base URL with the chat-completions path.
func completionsURL(baseURL string) string {
	return fmt.Sprintf("%s/chat/completions", strings.TrimRight(baseURL, "/"))
}

// bearerHeaders builds the auth headers, empty keys producing none.
func bearerHeaders(apiKey string) map[string]string {
	headers := map[string]string{}
	if apiKey != "" {
		headers["Authorization"] = fmt.Sprintf("Bearer %s", apiKey)
	}
	return headers
}

// transportError maps a transport failure to the domain taxonomy.
func transportError(provider *entities.AIProvider, timeout time.Duration, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &entities.TimeoutError{Provider: provider.Name, Timeout: timeout}
	}
	return &entities.UpstreamError{Provider: provider.Name, Message: err.Error()}
}
