package repositories

import (
	"context"

	"saham-assistant/internal/domain/entities"
)

// ProviderRepository persists AI provider configurations.
type ProviderRepository interface {
	// Create creates a provider.
	Create(ctx context.Context, provider *entities.AIProvider) error

	// GetByID returns the provider with the given ID.
	GetByID(ctx context.Context, id int64) (*entities.AIProvider, error)

	// List returns all providers ordered by priority.
	List(ctx context.Context) ([]*entities.AIProvider, error)

	// ListActive returns the providers with the active flag set.
	ListActive(ctx context.Context) ([]*entities.AIProvider, error)

	// Update saves the provider.
	Update(ctx context.Context, provider *entities.AIProvider) error

	// Delete removes the provider.
	Delete(ctx context.Context, id int64) error
}
