package services

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"saham-assistant/internal/domain/entities"
	"saham-assistant/internal/domain/repositories"
	"saham-assistant/internal/infrastructure/clients"
	"saham-assistant/internal/infrastructure/config"
	"saham-assistant/internal/infrastructure/crypto"
	"saham-assistant/internal/infrastructure/logger"
)

// Clock abstracts time for the provider cache so expiry is testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// AIService is the gateway in front of the configured AI backends. It picks
// the active provider, dispatches through the matching adapter, and retries
// transient failures on blocking calls.
type AIService interface {
	// Chat performs a blocking completion against the active provider.
	Chat(ctx context.Context, messages []clients.AIMessage, opts *clients.ChatOptions) (*clients.AIResponse, error)

	// ChatStream opens a streaming completion against the active provider and
	// returns the raw upstream body for relaying. Streams are never retried.
	ChatStream(ctx context.Context, messages []clients.AIMessage, opts *clients.ChatOptions) (io.ReadCloser, *entities.AIProvider, error)

	// ActiveProvider returns the provider the gateway would dispatch to.
	ActiveProvider(ctx context.Context) (*entities.AIProvider, error)

	// TestProvider runs a one-shot completion against a specific provider,
	// bypassing the active-provider selection.
	TestProvider(ctx context.Context, provider *entities.AIProvider) (*clients.AIResponse, error)

	// InvalidateProviderCache drops the cached active provider so the next
	// call re-reads the database.
	InvalidateProviderCache()
}

type aiServiceImpl struct {
	providerRepo   repositories.ProviderRepository
	adapterFactory *clients.AdapterFactory
	cipher         *crypto.SecretCipher
	clock          Clock
	cacheTTL       time.Duration
	maxRetries     int
	retryBackoff   time.Duration
	logger         logger.Logger

	mu       sync.Mutex
	cached   *entities.AIProvider
	cachedAt time.Time
}

// NewAIService creates the gateway service with the system clock.
func NewAIService(providerRepo repositories.ProviderRepository, adapterFactory *clients.AdapterFactory, cipher *crypto.SecretCipher, cfg *config.AIConfig, log logger.Logger) AIService {
	return NewAIServiceWithClock(providerRepo, adapterFactory, cipher, cfg, log, systemClock{})
}

// NewAIServiceWithClock creates the gateway service with an injected clock.
func NewAIServiceWithClock(providerRepo repositories.ProviderRepository, adapterFactory *clients.AdapterFactory, cipher *crypto.SecretCipher, cfg *config.AIConfig, log logger.Logger, clock Clock) AIService {
	return &aiServiceImpl{
		providerRepo:   providerRepo,
		adapterFactory: adapterFactory,
		cipher:         cipher,
		clock:          clock,
		cacheTTL:       cfg.ProviderCacheTTL,
		maxRetries:     cfg.MaxRetries,
		retryBackoff:   cfg.RetryBackoff,
		logger:         log,
	}
}

// ActiveProvider returns the cached active provider, re-reading the database
// when the cache is older than the TTL. Only one goroutine refreshes at a
// time; the others wait and reuse its result.
func (s *aiServiceImpl) ActiveProvider(ctx context.Context) (*entities.AIProvider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if s.cached != nil && now.Sub(s.cachedAt) < s.cacheTTL {
		return s.cached, nil
	}

	providers, err := s.providerRepo.ListActive(ctx)
	if err != nil {
		// Keep serving the stale entry rather than failing every chat while
		// the database is down.
		if s.cached != nil {
			s.logger.WithField("error", err.Error()).Warn("provider refresh failed, serving stale entry")
			return s.cached, nil
		}
		return nil, err
	}

	if len(providers) == 0 {
		s.cached = nil
		return nil, entities.NewConfigurationError("no active AI provider configured")
	}

	if len(providers) > 1 {
		sort.SliceStable(providers, func(i, j int) bool {
			if providers[i].Priority != providers[j].Priority {
				return providers[i].Priority < providers[j].Priority
			}
			return providers[i].ID < providers[j].ID
		})
		s.logger.WithFields(map[string]interface{}{
			"active_count": len(providers),
			"selected":     providers[0].Name,
		}).Warn("multiple active providers, picking by priority")
	}

	s.cached = providers[0]
	s.cachedAt = now
	return s.cached, nil
}

// InvalidateProviderCache drops the cached provider. Admin writes call this
// so configuration changes take effect immediately instead of after the TTL.
func (s *aiServiceImpl) InvalidateProviderCache() {
	s.mu.Lock()
	s.cached = nil
	s.cachedAt = time.Time{}
	s.mu.Unlock()
}

func (s *aiServiceImpl) Chat(ctx context.Context, messages []clients.AIMessage, opts *clients.ChatOptions) (*clients.AIResponse, error) {
	provider, err := s.ActiveProvider(ctx)
	if err != nil {
		return nil, err
	}
	return s.chatWithRetry(ctx, provider, messages, opts)
}

func (s *aiServiceImpl) TestProvider(ctx context.Context, provider *entities.AIProvider) (*clients.AIResponse, error) {
	adapter, err := s.adapterFactory.AdapterFor(provider.Kind)
	if err != nil {
		return nil, err
	}

	apiKey, err := s.unsealKey(provider)
	if err != nil {
		return nil, err
	}

	messages := []clients.AIMessage{
		{Role: "user", Content: "ping"},
	}
	maxTokens := 16
	return adapter.Chat(ctx, provider, apiKey, messages, &clients.ChatOptions{MaxTokens: &maxTokens})
}

func (s *aiServiceImpl) ChatStream(ctx context.Context, messages []clients.AIMessage, opts *clients.ChatOptions) (io.ReadCloser, *entities.AIProvider, error) {
	provider, err := s.ActiveProvider(ctx)
	if err != nil {
		return nil, nil, err
	}

	adapter, err := s.adapterFactory.AdapterFor(provider.Kind)
	if err != nil {
		return nil, nil, err
	}

	apiKey, err := s.unsealKey(provider)
	if err != nil {
		return nil, nil, err
	}

	stream, err := adapter.ChatStream(ctx, provider, apiKey, messages, opts)
	if err != nil {
		return nil, nil, err
	}
	return stream, provider, nil
}

// chatWithRetry retries timeouts and transient upstream failures with
// exponential backoff. Configuration errors and 4xx responses fail fast.
func (s *aiServiceImpl) chatWithRetry(ctx context.Context, provider *entities.AIProvider, messages []clients.AIMessage, opts *clients.ChatOptions) (*clients.AIResponse, error) {
	adapter, err := s.adapterFactory.AdapterFor(provider.Kind)
	if err != nil {
		return nil, err
	}

	apiKey, err := s.unsealKey(provider)
	if err != nil {
		return nil, err
	}

	var lastErr error
	backoff := s.retryBackoff

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			s.logger.WithFields(map[string]interface{}{
				"provider": provider.Name,
				"attempt":  attempt,
			}).Warn("retrying chat completion")
		}

		response, err := adapter.Chat(ctx, provider, apiKey, messages, opts)
		if err == nil {
			return response, nil
		}
		lastErr = err

		if !retryable(err) {
			return nil, err
		}
	}

	return nil, lastErr
}

// retryable reports whether the failure is worth another attempt.
func retryable(err error) bool {
	if entities.IsTimeoutError(err) {
		return true
	}
	var ue *entities.UpstreamError
	if errors.As(err, &ue) {
		return ue.Transient()
	}
	return false
}

func (s *aiServiceImpl) unsealKey(provider *entities.AIProvider) (string, error) {
	if provider.APIKeyEncrypted == nil || *provider.APIKeyEncrypted == "" {
		return "", nil
	}
	if s.cipher == nil {
		return "", entities.NewConfigurationError("provider %s has a sealed key but no secret key is configured", provider.Name)
	}
	apiKey, err := s.cipher.Open(*provider.APIKeyEncrypted)
	if err != nil {
		return "", entities.NewConfigurationError("failed to unseal API key for %s: %v", provider.Name, err)
	}
	return apiKey, nil
}
