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

type glossaryRepositoryImpl struct {
	db    *gorm.DB
	cache *redis.CacheService
}

// NewGlossaryRepository creates a glossary term repository.
func NewGlossaryRepository(db *gorm.DB, cache *redis.CacheService) repositories.GlossaryRepository {
	return &glossaryRepositoryImpl{db: db, cache: cache}
}

func (r *glossaryRepositoryImpl) ListAll(ctx context.Context) ([]*entities.GlossaryTerm, error) {
	if r.cache != nil {
		var cached []*entities.GlossaryTerm
		if err := r.cache.Get(ctx, cacheKeyGlossaryTerms, &cached); err == nil {
			return cached, nil
		}
	}

	var terms []*entities.GlossaryTerm
	err := r.db.WithContext(ctx).Order("term ASC").Find(&terms).Error
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		r.cache.Set(ctx, cacheKeyGlossaryTerms, terms, time.Hour)
	}
	return terms, nil
}

func (r *glossaryRepositoryImpl) ListByCategory(ctx context.Context, category string) ([]*entities.GlossaryTerm, error) {
	var terms []*entities.GlossaryTerm
	err := r.db.WithContext(ctx).
		Where("category = ?", category).
		Order("term ASC").
		Find(&terms).Error
	if err != nil {
		return nil, err
	}
	return terms, nil
}

func (r *glossaryRepositoryImpl) GetByID(ctx context.Context, id int64) (*entities.GlossaryTerm, error) {
	var term entities.GlossaryTerm
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&term).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrTermNotFound
		}
		return nil, err
	}
	return &term, nil
}

func (r *glossaryRepositoryImpl) Create(ctx context.Context, term *entities.GlossaryTerm) error {
	if err := r.db.WithContext(ctx).Create(term).Error; err != nil {
		return err
	}
	r.invalidateCache(ctx)
	return nil
}

func (r *glossaryRepositoryImpl) Update(ctx context.Context, term *entities.GlossaryTerm) error {
	if err := r.db.WithContext(ctx).Save(term).Error; err != nil {
		return err
	}
	r.invalidateCache(ctx)
	return nil
}

func (r *glossaryRepositoryImpl) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&entities.GlossaryTerm{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrTermNotFound
	}
	r.invalidateCache(ctx)
	return nil
}

func (r *glossaryRepositoryImpl) invalidateCache(ctx context.Context) {
	if r.cache != nil {
		r.cache.Delete(ctx, cacheKeyGlossaryTerms)
	}
}
