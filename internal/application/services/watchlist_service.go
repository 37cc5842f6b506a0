package services

import (
	"context"
	"strings"

	"saham-assistant/internal/domain/entities"
	"saham-assistant/internal/domain/repositories"
	"saham-assistant/internal/infrastructure/logger"
)

// WatchlistService manages the user's tracked stocks.
type WatchlistService interface {
	// GetWatchlist returns the user's items with current stock data attached
	// where available.
	GetWatchlist(ctx context.Context, userID string) ([]*entities.WatchlistItem, error)

	// AddStock validates the code against the stock service and adds it.
	AddStock(ctx context.Context, userID, stockCode string) (*entities.WatchlistItem, error)

	// RemoveStock removes the code from the user's watchlist.
	RemoveStock(ctx context.Context, userID, stockCode string) error
}

type watchlistServiceImpl struct {
	watchlistRepo repositories.WatchlistRepository
	stockService  StockService
	logger        logger.Logger
}

// NewWatchlistService creates the watchlist service.
func NewWatchlistService(watchlistRepo repositories.WatchlistRepository, stockService StockService, log logger.Logger) WatchlistService {
	return &watchlistServiceImpl{
		watchlistRepo: watchlistRepo,
		stockService:  stockService,
		logger:        log,
	}
}

func (s *watchlistServiceImpl) GetWatchlist(ctx context.Context, userID string) ([]*entities.WatchlistItem, error) {
	items, err := s.watchlistRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		stock, err := s.stockService.GetStock(ctx, item.StockCode)
		if err != nil {
			// Items without live data still render; the client shows the code.
			s.logger.WithFields(map[string]interface{}{
				"stock_code": item.StockCode,
				"error":      err.Error(),
			}).Warn("failed to load watchlist stock data")
			continue
		}
		item.Stock = stock
	}
	return items, nil
}

func (s *watchlistServiceImpl) AddStock(ctx context.Context, userID, stockCode string) (*entities.WatchlistItem, error) {
	code := strings.ToUpper(strings.TrimSpace(stockCode))

	// Reject codes the market-data upstream does not know.
	stock, err := s.stockService.GetStock(ctx, code)
	if err != nil {
		return nil, err
	}

	item := &entities.WatchlistItem{
		UserID:    userID,
		StockCode: stock.StockCode,
	}
	if err := s.watchlistRepo.Add(ctx, item); err != nil {
		return nil, err
	}
	item.Stock = stock
	return item, nil
}

func (s *watchlistServiceImpl) RemoveStock(ctx context.Context, userID, stockCode string) error {
	code := strings.ToUpper(strings.TrimSpace(stockCode))
	return s.watchlistRepo.Remove(ctx, userID, code)
}
