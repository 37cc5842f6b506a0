package repositories

import (
	"context"

	"gorm.io/gorm"

	"saham-assistant/internal/domain/entities"
	"saham-assistant/internal/domain/repositories"
)

type watchlistRepositoryImpl struct {
	db *gorm.DB
}

// NewWatchlistRepository creates a watchlist repository.
func NewWatchlistRepository(db *gorm.DB) repositories.WatchlistRepository {
	return &watchlistRepositoryImpl{db: db}
}

func (r *watchlistRepositoryImpl) ListByUser(ctx context.Context, userID string) ([]*entities.WatchlistItem, error) {
	var items []*entities.WatchlistItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *watchlistRepositoryImpl) Exists(ctx context.Context, userID, stockCode string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.WatchlistItem{}).
		Where("user_id = ? AND stock_code = ?", userID, stockCode).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *watchlistRepositoryImpl) Add(ctx context.Context, item *entities.WatchlistItem) error {
	exists, err := r.Exists(ctx, item.UserID, item.StockCode)
	if err != nil {
		return err
	}
	if exists {
		return entities.ErrAlreadyInWatchlist
	}
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *watchlistRepositoryImpl) Remove(ctx context.Context, userID, stockCode string) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND stock_code = ?", userID, stockCode).
		Delete(&entities.WatchlistItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrStockNotFound
	}
	return nil
}
