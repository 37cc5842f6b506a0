package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"saham-assistant/internal/domain/entities"
	"saham-assistant/internal/infrastructure/logger"
)

// pollinationsAdapter speaks the Pollinations text API, an unauthenticated
// OpenAI-flavored endpoint mounted at {base}/openai.
type pollinationsAdapter struct {
	httpClient   HTTPClient
	streamClient *http.Client
	timeout      time.Duration
	logger       logger.Logger
}

// pollinationsBody is the request envelope; Pollinations takes no sampling
// parameters beyond the model.
type pollinationsBody struct {
	Model    string      `json:"model"`
	Messages []AIMessage `json:"messages"`
	Stream   bool        `json:"stream"`
}

func (a *pollinationsAdapter) Chat(ctx context.Context, provider *entities.AIProvider, _ string, messages []AIMessage, _ *ChatOptions) (*AIResponse, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	body := pollinationsBody{
		Model:    provider.ModelName,
		Messages: messages,
		Stream:   false,
	}

	resp, err := a.httpClient.Post(ctx, pollinationsURL(provider.BaseURL), body, nil)
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

	var tokensUsed *int
	if envelope.Usage != nil {
		tokens := envelope.Usage.TotalTokens
		tokensUsed = &tokens
	}

	// Pollinations does not echo the model; report the configured one.
	return &AIResponse{
		Content:        content,
		Model:          provider.ModelName,
		TokensUsed:     tokensUsed,
		ResponseTimeMs: elapsedMs(start),
	}, nil
}

func (a *pollinationsAdapter) ChatStream(ctx context.Context, provider *entities.AIProvider, _ string, messages []AIMessage, _ *ChatOptions) (io.ReadCloser, error) {
	body := pollinationsBody{
		Model:    provider.ModelName,
		Messages: messages,
		Stream:   true,
	}

	return openStream(ctx, a.streamClient, provider, pollinationsURL(provider.BaseURL), body, nil)
}

// pollinationsURL joins the provider base URL with the text endpoint path.
func pollinationsURL(baseURL string) string {
	return fmt.Sprintf("%s/openai", strings.TrimRight(baseURL, "/"))
}

// openStream issues a streaming POST and hands back the raw body. Non-2xx
// responses are drained into an UpstreamError.
func openStream(ctx context.Context, client *http.Client, provider *entities.AIProvider, url string, body interface{}, headers map[string]string) (io.ReadCloser, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &entities.UpstreamError{Provider: provider.Name, Message: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &entities.UpstreamError{
			Provider:   provider.Name,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(detail)),
		}
	}

	return resp.Body, nil
}
