package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"saham-assistant/internal/domain/entities"
	"saham-assistant/internal/domain/repositories"
	"saham-assistant/internal/infrastructure/clients"
	"saham-assistant/internal/infrastructure/config"
	"saham-assistant/internal/infrastructure/logger"
)

// StockService serves IDX stock fundamentals, refreshing stale rows from the
// market-data upstream on demand.
type StockService interface {
	// GetStock returns the stock, fetching from upstream when the stored row
	// is missing or older than the freshness window.
	GetStock(ctx context.Context, stockCode string) (*entities.StockFundamental, error)

	// SearchStocks matches code or name against stored rows.
	SearchStocks(ctx context.Context, keyword string, limit int) ([]*entities.StockFundamental, error)

	// ListBySector returns the stored stocks of one sector.
	ListBySector(ctx context.Context, sector string) ([]*entities.StockFundamental, error)
}

type stockServiceImpl struct {
	stockRepo   repositories.StockRepository
	quoteClient clients.QuoteClient
	maxAge      time.Duration
	logger      logger.Logger
}

// NewStockService creates the stock service.
func NewStockService(stockRepo repositories.StockRepository, quoteClient clients.QuoteClient, cfg *config.StocksConfig, log logger.Logger) StockService {
	return &stockServiceImpl{
		stockRepo:   stockRepo,
		quoteClient: quoteClient,
		maxAge:      cfg.CacheMaxAge,
		logger:      log,
	}
}

func (s *stockServiceImpl) GetStock(ctx context.Context, stockCode string) (*entities.StockFundamental, error) {
	code := strings.ToUpper(strings.TrimSpace(stockCode))
	if code == "" {
		return nil, entities.ErrStockNotFound
	}

	stored, err := s.stockRepo.GetByCode(ctx, code)
	if err == nil && stored.IsFresh(time.Now(), s.maxAge) {
		return stored, nil
	}
	if err != nil && !errors.Is(err, entities.ErrStockNotFound) {
		return nil, err
	}

	fetched, fetchErr := s.quoteClient.GetQuote(ctx, code)
	if fetchErr != nil {
		// A stale stored row still beats no data when upstream is down.
		if stored != nil {
			s.logger.WithFields(map[string]interface{}{
				"stock_code": code,
				"error":      fetchErr.Error(),
			}).Warn("quote refresh failed, serving stale row")
			return stored, nil
		}
		return nil, fetchErr
	}

	// Sector data never comes from the quote endpoint; keep what we have.
	if stored != nil {
		fetched.Sector = stored.Sector
		fetched.Subsector = stored.Subsector
		if fetched.ROE == nil {
			fetched.ROE = stored.ROE
		}
		if fetched.DER == nil {
			fetched.DER = stored.DER
		}
	}
	fetched.UpdatedAt = time.Now()

	if err := s.stockRepo.Upsert(ctx, fetched); err != nil {
		s.logger.WithFields(map[string]interface{}{
			"stock_code": code,
			"error":      err.Error(),
		}).Error("failed to store refreshed stock")
	}
	return fetched, nil
}

func (s *stockServiceImpl) SearchStocks(ctx context.Context, keyword string, limit int) ([]*entities.StockFundamental, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, nil
	}
	return s.stockRepo.Search(ctx, keyword, limit)
}

func (s *stockServiceImpl) ListBySector(ctx context.Context, sector string) ([]*entities.StockFundamental, error) {
	return s.stockRepo.ListBySector(ctx, sector)
}
