package services

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saham-assistant/internal/application/dto"
	"saham-assistant/internal/domain/entities"
	"saham-assistant/internal/infrastructure/clients"
)

// stubAIService counts cache invalidations.
type stubAIService struct {
	invalidations int
	chatErr       error
}

func (s *stubAIService) Chat(ctx context.Context, messages []clients.AIMessage, opts *clients.ChatOptions) (*clients.AIResponse, error) {
	if s.chatErr != nil {
		return nil, s.chatErr
	}
	return &clients.AIResponse{Content: "ok", Model: "stub", ResponseTimeMs: 1}, nil
}

func (s *stubAIService) ChatStream(ctx context.Context, messages []clients.AIMessage, opts *clients.ChatOptions) (io.ReadCloser, *entities.AIProvider, error) {
	return nil, nil, nil
}

func (s *stubAIService) ActiveProvider(ctx context.Context) (*entities.AIProvider, error) {
	return nil, nil
}

func (s *stubAIService) TestProvider(ctx context.Context, provider *entities.AIProvider) (*clients.AIResponse, error) {
	if s.chatErr != nil {
		return nil, s.chatErr
	}
	return &clients.AIResponse{Content: "pong", Model: provider.ModelName, ResponseTimeMs: 5}, nil
}

func (s *stubAIService) InvalidateProviderCache() { s.invalidations++ }

func TestProviderService_CreateProvider(t *testing.T) {
	t.Run("rejects unsupported kinds at save time", func(t *testing.T) {
		repo := &stubProviderRepo{}
		ai := &stubAIService{}
		service := NewProviderService(repo, ai, nil, &MockLogger{})

		_, err := service.CreateProvider(context.Background(), &dto.CreateProviderRequest{
			Name:      "gemini-main",
			Kind:      "gemini",
			BaseURL:   "https://example.com",
			ModelName: "gemini-pro",
		})

		require.Error(t, err)
		assert.True(t, entities.IsConfigurationError(err))
		assert.Equal(t, 0, ai.invalidations)
	})

	t.Run("accepts supported kinds case-insensitively and busts the cache", func(t *testing.T) {
		repo := &stubProviderRepo{}
		ai := &stubAIService{}
		service := NewProviderService(repo, ai, nil, &MockLogger{})

		provider, err := service.CreateProvider(context.Background(), &dto.CreateProviderRequest{
			Name:      "openai-main",
			Kind:      "OpenAI",
			BaseURL:   "https://api.openai.com/v1/",
			ModelName: "gpt-4o-mini",
		})

		require.NoError(t, err)
		assert.Equal(t, entities.ProviderKindOpenAI, provider.Kind)
		assert.Equal(t, "https://api.openai.com/v1", provider.BaseURL)
		assert.Equal(t, 100, provider.Priority)
		assert.Equal(t, 2048, provider.MaxTokens)
		assert.Equal(t, 1, ai.invalidations)
	})

	t.Run("refuses to store an API key without a cipher", func(t *testing.T) {
		repo := &stubProviderRepo{}
		service := NewProviderService(repo, &stubAIService{}, nil, &MockLogger{})

		_, err := service.CreateProvider(context.Background(), &dto.CreateProviderRequest{
			Name:      "openai-main",
			Kind:      "openai",
			BaseURL:   "https://api.openai.com/v1",
			APIKey:    "sk-secret",
			ModelName: "gpt-4o-mini",
		})

		require.Error(t, err)
		assert.True(t, entities.IsConfigurationError(err))
	})
}

func TestProviderService_UpdateProvider(t *testing.T) {
	t.Run("rejects a kind change to an unsupported value", func(t *testing.T) {
		repo := &stubProviderRepo{active: []*entities.AIProvider{testProvider(1, 10)}}
		service := NewProviderService(repo, &stubAIService{}, nil, &MockLogger{})

		kind := "mistral"
		_, err := service.UpdateProvider(context.Background(), 1, &dto.UpdateProviderRequest{Kind: &kind})

		require.Error(t, err)
		assert.True(t, entities.IsConfigurationError(err))
	})

	t.Run("partial updates leave other fields intact", func(t *testing.T) {
		repo := &stubProviderRepo{active: []*entities.AIProvider{testProvider(1, 10)}}
		ai := &stubAIService{}
		service := NewProviderService(repo, ai, nil, &MockLogger{})

		priority := 7
		provider, err := service.UpdateProvider(context.Background(), 1, &dto.UpdateProviderRequest{Priority: &priority})

		require.NoError(t, err)
		assert.Equal(t, 7, provider.Priority)
		assert.Equal(t, "gpt-4o-mini", provider.ModelName)
		assert.Equal(t, 1, ai.invalidations)
	})
}

func TestProviderService_ActivateProvider(t *testing.T) {
	t.Run("deactivates every other provider", func(t *testing.T) {
		first := testProvider(1, 10)
		second := testProvider(2, 20)
		second.IsActive = false
		repo := &stubProviderRepo{active: []*entities.AIProvider{first, second}}
		ai := &stubAIService{}
		service := NewProviderService(repo, ai, nil, &MockLogger{})

		activated, err := service.ActivateProvider(context.Background(), 2)

		require.NoError(t, err)
		assert.True(t, activated.IsActive)
		assert.Equal(t, int64(2), activated.ID)
		assert.False(t, first.IsActive)
		assert.Equal(t, 1, ai.invalidations)
	})
}

func TestProviderService_TestProvider(t *testing.T) {
	t.Run("reports a healthy provider", func(t *testing.T) {
		repo := &stubProviderRepo{active: []*entities.AIProvider{testProvider(1, 10)}}
		service := NewProviderService(repo, &stubAIService{}, nil, &MockLogger{})

		result := service.TestProvider(context.Background(), 1)

		assert.True(t, result.Healthy)
		assert.Equal(t, "gpt-4o-mini", result.Model)
	})

	t.Run("reports an unknown provider as unhealthy", func(t *testing.T) {
		repo := &stubProviderRepo{}
		service := NewProviderService(repo, &stubAIService{}, nil, &MockLogger{})

		result := service.TestProvider(context.Background(), 99)

		assert.False(t, result.Healthy)
		assert.NotEmpty(t, result.Error)
	})
}
