package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"saham-assistant/internal/domain/entities"
	"saham-assistant/internal/domain/repositories"
	"saham-assistant/internal/infrastructure/redis"
)

type briefingRepositoryImpl struct {
	db    *gorm.DB
	cache *redis.CacheService
}

// NewBriefingRepository creates a morning briefing repository.
func NewBriefingRepository(db *gorm.DB, cache *redis.CacheService) repositories.BriefingRepository {
	return &briefingRepositoryImpl{db: db, cache: cache}
}

func (r *briefingRepositoryImpl) GetByDate(ctx context.Context, date string) (*entities.MorningBriefing, error) {
	if r.cache != nil {
		var cached entities.MorningBriefing
		if err := r.cache.Get(ctx, cacheKeyBriefing(date), &cached); err == nil {
			return &cached, nil
		}
	}

	var briefing entities.MorningBriefing
	err := r.db.WithContext(ctx).Where("date = ?", date).First(&briefing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrBriefingNotFound
		}
		return nil, err
	}

	if r.cache != nil {
		r.cache.Set(ctx, cacheKeyBriefing(date), &briefing, time.Hour)
	}
	return &briefing, nil
}

func (r *briefingRepositoryImpl) Upsert(ctx context.Context, briefing *entities.MorningBriefing) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		UpdateAll: true,
	}).Create(briefing).Error
	if err != nil {
		return err
	}
	if r.cache != nil {
		r.cache.Delete(ctx, cacheKeyBriefing(briefing.Date))
	}
	return nil
}
