package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"saham-assistant/internal/domain/entities"
	"saham-assistant/internal/infrastructure/clients"
	"saham-assistant/internal/infrastructure/config"
)

// stubProviderRepo serves a fixed provider list and counts reads.
type stubProviderRepo struct {
	active      []*entities.AIProvider
	err         error
	activeCalls int
}

func (r *stubProviderRepo) Create(ctx context.Context, provider *entities.AIProvider) error {
	return r.err
}

func (r *stubProviderRepo) GetByID(ctx context.Context, id int64) (*entities.AIProvider, error) {
	for _, provider := range r.active {
		if provider.ID == id {
			return provider, nil
		}
	}
	return nil, entities.ErrProviderNotFound
}

func (r *stubProviderRepo) List(ctx context.Context) ([]*entities.AIProvider, error) {
	return r.active, r.err
}

func (r *stubProviderRepo) ListActive(ctx context.Context) ([]*entities.AIProvider, error) {
	r.activeCalls++
	if r.err != nil {
		return nil, r.err
	}
	return r.active, nil
}

func (r *stubProviderRepo) Update(ctx context.Context, provider *entities.AIProvider) error {
	return r.err
}

func (r *stubProviderRepo) Delete(ctx context.Context, id int64) error { return r.err }

// scriptedHTTPClient returns queued responses and counts calls.
type scriptedHTTPClient struct {
	responses []*clients.HTTPResponse
	errs      []error
	calls     int
}

func (c *scriptedHTTPClient) Post(ctx context.Context, url string, body interface{}, headers map[string]string) (*clients.HTTPResponse, error) {
	idx := c.calls
	c.calls++
	if idx >= len(c.responses) {
		idx = len(c.responses) - 1
	}
	if c.errs != nil && c.errs[idx] != nil {
		return nil, c.errs[idx]
	}
	return c.responses[idx], nil
}

func (c *scriptedHTTPClient) Get(ctx context.Context, url string, headers map[string]string) (*clients.HTTPResponse, error) {
	return c.Post(ctx, url, nil, headers)
}

func okChatResponse() *clients.HTTPResponse {
	body := []byte(`{"model":"gpt-4o-mini","choices":[{"message":{"content":"BBRI adalah bank dengan fundamental kuat"}}],"usage":{"total_tokens":120}}`)
	return &clients.HTTPResponse{StatusCode: 200, Status: "200 OK", Body: body}
}

func errChatResponse(status int) *clients.HTTPResponse {
	return &clients.HTTPResponse{StatusCode: status, Status: "upstream error", Body: []byte(`{}`)}
}

func testProvider(id int64, priority int) *entities.AIProvider {
	return &entities.AIProvider{
		ID:          id,
		Name:        "openai-main",
		Kind:        entities.ProviderKindOpenAI,
		BaseURL:     "https://api.openai.com/v1",
		ModelName:   "gpt-4o-mini",
		IsActive:    true,
		Priority:    priority,
		MaxTokens:   2048,
		Temperature: 0.7,
	}
}

func newTestAIService(repo *stubProviderRepo, httpClient clients.HTTPClient, clock Clock) AIService {
	cfg := &config.AIConfig{
		ProviderCacheTTL: 5 * time.Minute,
		RequestTimeout:   5 * time.Second,
		MaxRetries:       2,
		RetryBackoff:     time.Millisecond,
	}
	adapterFactory := clients.NewAdapterFactory(httpClient, cfg.RequestTimeout, &MockLogger{})
	return NewAIServiceWithClock(repo, adapterFactory, nil, cfg, &MockLogger{}, clock)
}

func TestAIService_ActiveProvider(t *testing.T) {
	t.Run("fails fast when no provider is active", func(t *testing.T) {
		repo := &stubProviderRepo{}
		service := newTestAIService(repo, &scriptedHTTPClient{}, &fakeClock{now: time.Now()})

		_, err := service.ActiveProvider(context.Background())

		assert.Error(t, err)
		assert.True(t, entities.IsConfigurationError(err))
	})

	t.Run("picks lowest priority value first", func(t *testing.T) {
		primary := testProvider(2, 5)
		secondary := testProvider(1, 50)
		repo := &stubProviderRepo{active: []*entities.AIProvider{secondary, primary}}
		service := newTestAIService(repo, &scriptedHTTPClient{}, &fakeClock{now: time.Now()})

		provider, err := service.ActiveProvider(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, int64(2), provider.ID)
	})

	t.Run("breaks priority ties by lowest ID", func(t *testing.T) {
		a := testProvider(7, 10)
		b := testProvider(3, 10)
		repo := &stubProviderRepo{active: []*entities.AIProvider{a, b}}
		service := newTestAIService(repo, &scriptedHTTPClient{}, &fakeClock{now: time.Now()})

		provider, err := service.ActiveProvider(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, int64(3), provider.ID)
	})
}

func TestAIService_ProviderCache(t *testing.T) {
	t.Run("serves from cache within the TTL", func(t *testing.T) {
		repo := &stubProviderRepo{active: []*entities.AIProvider{testProvider(1, 10)}}
		clock := &fakeClock{now: time.Now()}
		service := newTestAIService(repo, &scriptedHTTPClient{}, clock)

		_, _ = service.ActiveProvider(context.Background())
		_, _ = service.ActiveProvider(context.Background())
		assert.Equal(t, 1, repo.activeCalls)

		clock.Advance(4 * time.Minute)
		_, _ = service.ActiveProvider(context.Background())
		assert.Equal(t, 1, repo.activeCalls)
	})

	t.Run("re-reads after the TTL elapses", func(t *testing.T) {
		repo := &stubProviderRepo{active: []*entities.AIProvider{testProvider(1, 10)}}
		clock := &fakeClock{now: time.Now()}
		service := newTestAIService(repo, &scriptedHTTPClient{}, clock)

		_, _ = service.ActiveProvider(context.Background())
		clock.Advance(5*time.Minute + time.Second)
		_, _ = service.ActiveProvider(context.Background())

		assert.Equal(t, 2, repo.activeCalls)
	})

	t.Run("serves the stale entry when a refresh fails", func(t *testing.T) {
		repo := &stubProviderRepo{active: []*entities.AIProvider{testProvider(1, 10)}}
		clock := &fakeClock{now: time.Now()}
		service := newTestAIService(repo, &scriptedHTTPClient{}, clock)

		_, _ = service.ActiveProvider(context.Background())

		repo.err = errors.New("connection refused")
		clock.Advance(6 * time.Minute)

		provider, err := service.ActiveProvider(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, int64(1), provider.ID)
	})

	t.Run("invalidation forces an immediate re-read", func(t *testing.T) {
		repo := &stubProviderRepo{active: []*entities.AIProvider{testProvider(1, 10)}}
		clock := &fakeClock{now: time.Now()}
		service := newTestAIService(repo, &scriptedHTTPClient{}, clock)

		_, _ = service.ActiveProvider(context.Background())
		service.InvalidateProviderCache()
		_, _ = service.ActiveProvider(context.Background())

		assert.Equal(t, 2, repo.activeCalls)
	})
}

func TestAIService_ChatRetry(t *testing.T) {
	messages := []clients.AIMessage{{Role: "user", Content: "Analisa BBRI"}}

	t.Run("retries 5xx responses with backoff", func(t *testing.T) {
		httpClient := &scriptedHTTPClient{
			responses: []*clients.HTTPResponse{
				errChatResponse(500),
				errChatResponse(502),
				okChatResponse(),
			},
		}
		repo := &stubProviderRepo{active: []*entities.AIProvider{testProvider(1, 10)}}
		service := newTestAIService(repo, httpClient, &fakeClock{now: time.Now()})

		response, err := service.Chat(context.Background(), messages, nil)

		assert.NoError(t, err)
		assert.Equal(t, 3, httpClient.calls)
		assert.Equal(t, "BBRI adalah bank dengan fundamental kuat", response.Content)
		assert.Equal(t, 120, *response.TokensUsed)
		assert.Greater(t, response.ResponseTimeMs, int64(0))
	})

	t.Run("never retries 4xx responses", func(t *testing.T) {
		httpClient := &scriptedHTTPClient{
			responses: []*clients.HTTPResponse{errChatResponse(401)},
		}
		repo := &stubProviderRepo{active: []*entities.AIProvider{testProvider(1, 10)}}
		service := newTestAIService(repo, httpClient, &fakeClock{now: time.Now()})

		_, err := service.Chat(context.Background(), messages, nil)

		assert.Error(t, err)
		assert.Equal(t, 1, httpClient.calls)
		assert.True(t, entities.IsUpstreamError(err))

		var ue *entities.UpstreamError
		assert.True(t, errors.As(err, &ue))
		assert.False(t, ue.Transient())
	})

	t.Run("gives up after exhausting retries", func(t *testing.T) {
		httpClient := &scriptedHTTPClient{
			responses: []*clients.HTTPResponse{errChatResponse(503)},
		}
		repo := &stubProviderRepo{active: []*entities.AIProvider{testProvider(1, 10)}}
		service := newTestAIService(repo, httpClient, &fakeClock{now: time.Now()})

		_, err := service.Chat(context.Background(), messages, nil)

		assert.Error(t, err)
		assert.Equal(t, 3, httpClient.calls)
		assert.True(t, entities.IsUpstreamError(err))
	})

	t.Run("propagates configuration errors without retrying", func(t *testing.T) {
		httpClient := &scriptedHTTPClient{}
		repo := &stubProviderRepo{}
		service := newTestAIService(repo, httpClient, &fakeClock{now: time.Now()})

		_, err := service.Chat(context.Background(), messages, nil)

		assert.True(t, entities.IsConfigurationError(err))
		assert.Equal(t, 0, httpClient.calls)
	})
}
