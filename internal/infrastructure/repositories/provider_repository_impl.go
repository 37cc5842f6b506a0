package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"saham-assistant/internal/domain/entities"
	"saham-assistant/internal/domain/repositories"
	"saham-assistant/internal/infrastructure/redis"
)

type providerRepositoryImpl struct {
	db    *gorm.DB
	cache *redis.CacheService
}

// NewProviderRepository creates an AI provider repository.
func NewProviderRepository(db *gorm.DB, cache *redis.CacheService) repositories.ProviderRepository {
	return &providerRepositoryImpl{db: db, cache: cache}
}

func (r *providerRepositoryImpl) Create(ctx context.Context, provider *entities.AIProvider) error {
	if err := r.db.WithContext(ctx).Create(provider).Error; err != nil {
		return err
	}
	r.invalidateCache(ctx)
	return nil
}

func (r *providerRepositoryImpl) GetByID(ctx context.Context, id int64) (*entities.AIProvider, error) {
	var provider entities.AIProvider
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&provider).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrProviderNotFound
		}
		return nil, err
	}
	return &provider, nil
}

func (r *providerRepositoryImpl) List(ctx context.Context) ([]*entities.AIProvider, error) {
	var providers []*entities.AIProvider
	err := r.db.WithContext(ctx).Order("priority ASC, id ASC").Find(&providers).Error
	if err != nil {
		return nil, err
	}
	return providers, nil
}

func (r *providerRepositoryImpl) ListActive(ctx context.Context) ([]*entities.AIProvider, error) {
	if r.cache != nil {
		var cached []*entities.AIProvider
		if err := r.cache.Get(ctx, cacheKeyActiveProviders, &cached); err == nil {
			return cached, nil
		}
	}

	var providers []*entities.AIProvider
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("priority ASC, id ASC").
		Find(&providers).Error
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		r.cache.Set(ctx, cacheKeyActiveProviders, providers, 5*time.Minute)
	}
	return providers, nil
}

func (r *providerRepositoryImpl) Update(ctx context.Context, provider *entities.AIProvider) error {
	if err := r.db.WithContext(ctx).Save(provider).Error; err != nil {
		return err
	}
	r.invalidateCache(ctx)
	return nil
}

func (r *providerRepositoryImpl) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&entities.AIProvider{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrProviderNotFound
	}
	r.invalidateCache(ctx)
	return nil
}

func (r *providerRepositoryImpl) invalidateCache(ctx context.Context) {
	if r.cache != nil {
		r.cache.Delete(ctx, cacheKeyActiveProviders)
	}
}
