package services

import (
	"context"
	"strings"

	"saham-assistant/internal/application/dto"
	"saham-assistant/internal/domain/entities"
	"saham-assistant/internal/domain/repositories"
	"saham-assistant/internal/infrastructure/crypto"
	"saham-assistant/internal/infrastructure/logger"
)

// ProviderService is the admin surface for AI provider configuration.
// Every write invalidates the gateway's provider cache so changes apply
// immediately.
type ProviderService interface {
	CreateProvider(ctx context.Context, req *dto.CreateProviderRequest) (*entities.AIProvider, error)
	UpdateProvider(ctx context.Context, id int64, req *dto.UpdateProviderRequest) (*entities.AIProvider, error)
	DeleteProvider(ctx context.Context, id int64) error
	GetProvider(ctx context.Context, id int64) (*entities.AIProvider, error)
	ListProviders(ctx context.Context) ([]*entities.AIProvider, error)

	// ActivateProvider marks one provider active and deactivates the rest.
	ActivateProvider(ctx context.Context, id int64) (*entities.AIProvider, error)

	// TestProvider runs a one-shot completion against the provider.
	TestProvider(ctx context.Context, id int64) *dto.ProviderTestResponse
}

type providerServiceImpl struct {
	providerRepo repositories.ProviderRepository
	aiService    AIService
	cipher       *crypto.SecretCipher
	logger       logger.Logger
}

// NewProviderService creates the provider admin service.
func NewProviderService(providerRepo repositories.ProviderRepository, aiService AIService, cipher *crypto.SecretCipher, log logger.Logger) ProviderService {
	return &providerServiceImpl{
		providerRepo: providerRepo,
		aiService:    aiService,
		cipher:       cipher,
		logger:       log,
	}
}

func (s *providerServiceImpl) CreateProvider(ctx context.Context, req *dto.CreateProviderRequest) (*entities.AIProvider, error) {
	kind := entities.ProviderKind(strings.ToLower(req.Kind))
	// Reject unknown kinds at save time rather than at first chat.
	if !kind.Valid() {
		return nil, entities.NewConfigurationError("unsupported provider type: %s", req.Kind)
	}

	provider := &entities.AIProvider{
		Name:              req.Name,
		DisplayName:       req.DisplayName,
		Kind:              kind,
		BaseURL:           strings.TrimRight(req.BaseURL, "/"),
		ModelName:         req.ModelName,
		IsActive:          req.IsActive,
		Priority:          100,
		MaxTokens:         2048,
		Temperature:       0.7,
		SupportsStreaming: req.SupportsStreaming,
	}
	if req.Priority != nil {
		provider.Priority = *req.Priority
	}
	if req.MaxTokens != nil {
		provider.MaxTokens = *req.MaxTokens
	}
	if req.Temperature != nil {
		provider.Temperature = *req.Temperature
	}

	if req.APIKey != "" {
		sealed, err := s.sealKey(req.APIKey)
		if err != nil {
			return nil, err
		}
		provider.APIKeyEncrypted = &sealed
	}

	if err := s.providerRepo.Create(ctx, provider); err != nil {
		return nil, err
	}
	s.aiService.InvalidateProviderCache()

	s.logger.WithFields(map[string]interface{}{
		"provider": provider.Name,
		"kind":     provider.Kind,
	}).Info("provider created")
	return provider, nil
}

func (s *providerServiceImpl) UpdateProvider(ctx context.Context, id int64, req *dto.UpdateProviderRequest) (*entities.AIProvider, error) {
	provider, err := s.providerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Kind != nil {
		kind := entities.ProviderKind(strings.ToLower(*req.Kind))
		if !kind.Valid() {
			return nil, entities.NewConfigurationError("unsupported provider type: %s", *req.Kind)
		}
		provider.Kind = kind
	}
	if req.DisplayName != nil {
		provider.DisplayName = *req.DisplayName
	}
	if req.BaseURL != nil {
		provider.BaseURL = strings.TrimRight(*req.BaseURL, "/")
	}
	if req.ModelName != nil {
		provider.ModelName = *req.ModelName
	}
	if req.IsActive != nil {
		provider.IsActive = *req.IsActive
	}
	if req.Priority != nil {
		provider.Priority = *req.Priority
	}
	if req.MaxTokens != nil {
		provider.MaxTokens = *req.MaxTokens
	}
	if req.Temperature != nil {
		provider.Temperature = *req.Temperature
	}
	if req.SupportsStreaming != nil {
		provider.SupportsStreaming = *req.SupportsStreaming
	}
	if req.APIKey != nil {
		if *req.APIKey == "" {
			provider.APIKeyEncrypted = nil
		} else {
			sealed, err := s.sealKey(*req.APIKey)
			if err != nil {
				return nil, err
			}
			provider.APIKeyEncrypted = &sealed
		}
	}

	if err := s.providerRepo.Update(ctx, provider); err != nil {
		return nil, err
	}
	s.aiService.InvalidateProviderCache()
	return provider, nil
}

func (s *providerServiceImpl) DeleteProvider(ctx context.Context, id int64) error {
	if err := s.providerRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.aiService.InvalidateProviderCache()
	return nil
}

func (s *providerServiceImpl) GetProvider(ctx context.Context, id int64) (*entities.AIProvider, error) {
	return s.providerRepo.GetByID(ctx, id)
}

func (s *providerServiceImpl) ListProviders(ctx context.Context) ([]*entities.AIProvider, error) {
	return s.providerRepo.List(ctx)
}

func (s *providerServiceImpl) ActivateProvider(ctx context.Context, id int64) (*entities.AIProvider, error) {
	target, err := s.providerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	providers, err := s.providerRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, provider := range providers {
		shouldBeActive := provider.ID == id
		if provider.IsActive == shouldBeActive {
			continue
		}
		provider.IsActive = shouldBeActive
		if err := s.providerRepo.Update(ctx, provider); err != nil {
			return nil, err
		}
		if shouldBeActive {
			target = provider
		}
	}

	s.aiService.InvalidateProviderCache()
	s.logger.WithField("provider", target.Name).Info("provider activated")
	return target, nil
}

func (s *providerServiceImpl) TestProvider(ctx context.Context, id int64) *dto.ProviderTestResponse {
	provider, err := s.providerRepo.GetByID(ctx, id)
	if err != nil {
		return &dto.ProviderTestResponse{Healthy: false, Error: err.Error()}
	}

	response, err := s.aiService.TestProvider(ctx, provider)
	if err != nil {
		return &dto.ProviderTestResponse{Healthy: false, Error: err.Error()}
	}
	return &dto.ProviderTestResponse{
		Healthy:        true,
		Model:          response.Model,
		ResponseTimeMs: response.ResponseTimeMs,
	}
}

func (s *providerServiceImpl) sealKey(apiKey string) (string, error) {
	if s.cipher == nil {
		return "", entities.NewConfigurationError("cannot store an API key: no secret key configured")
	}
	return s.cipher.Seal(apiKey)
}
