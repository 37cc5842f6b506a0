package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"saham-assistant/internal/domain/entities"
	"saham-assistant/internal/domain/repositories"
	"saham-assistant/internal/infrastructure/redis"
)

type stockRepositoryImpl struct {
	db    *gorm.DB
	cache *redis.CacheService
}

// NewStockRepository creates a stock fundamentals repository.
func NewStockRepository(db *gorm.DB, cache *redis.CacheService) repositories.StockRepository {
	return &stockRepositoryImpl{db: db, cache: cache}
}

func (r *stockRepositoryImpl) GetByCode(ctx context.Context, stockCode string) (*entities.StockFundamental, error) {
	if r.cache != nil {
		var cached entities.StockFundamental
		if err := r.cache.Get(ctx, cacheKeyStock(stockCode), &cached); err == nil {
			return &cached, nil
		}
	}

	var stock entities.StockFundamental
	err := r.db.WithContext(ctx).Where("stock_code = ?", stockCode).First(&stock).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrStockNotFound
		}
		return nil, err
	}

	if r.cache != nil {
		r.cache.Set(ctx, cacheKeyStock(stockCode), &stock, 10*time.Minute)
	}
	return &stock, nil
}

func (r *stockRepositoryImpl) Upsert(ctx context.Context, stock *entities.StockFundamental) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stock_code"}},
		UpdateAll: true,
	}).Create(stock).Error
	if err != nil {
		return err
	}
	if r.cache != nil {
		r.cache.Delete(ctx, cacheKeyStock(stock.StockCode))
	}
	return nil
}

func (r *stockRepositoryImpl) Search(ctx context.Context, keyword string, limit int) ([]*entities.StockFundamental, error) {
	if limit <= 0 {
		limit = 10
	}
	pattern := fmt.Sprintf("%%%s%%", keyword)

	var stocks []*entities.StockFundamental
	err := r.db.WithContext(ctx).
		Where("stock_code ILIKE ? OR stock_name ILIKE ?", pattern, pattern).
		Order("stock_code ASC").
		Limit(limit).
		Find(&stocks).Error
	if err != nil {
		return nil, err
	}
	return stocks, nil
}

func (r *stockRepositoryImpl) ListBySector(ctx context.Context, sector string) ([]*entities.StockFundamental, error) {
	var stocks []*entities.StockFundamental
	err := r.db.WithContext(ctx).
		Where("sector = ?", sector).
		Order("stock_code ASC").
		Find(&stocks).Error
	if err != nil {
		return nil, err
	}
	return stocks, nil
}
