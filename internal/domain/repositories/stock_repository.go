package repositories

import (
	"context"

	"saham-assistant/internal/domain/entities"
)

// StockRepository persists stock fundamentals.
type StockRepository interface {
	// GetByCode returns the stock with the given IDX code.
	GetByCode(ctx context.Context, code string) (*entities.StockFundamental, error)

	// Upsert inserts or replaces the stock row keyed by stock code.
	Upsert(ctx context.Context, stock *entities.StockFundamental) error

	// Search returns stocks whose code or name contains the keyword.
	Search(ctx context.Context, keyword string, limit int) ([]*entities.StockFundamental, error)

	// ListBySector returns a sector's stocks ordered by market cap descending.
	ListBySector(ctx context.Context, sector string) ([]*entities.StockFundamental, error)
}

// WatchlistRepository persists per-user watchlists.
type WatchlistRepository interface {
	// ListByUser returns a user's watchlist, newest first, with fundamentals joined.
	ListByUser(ctx context.Context, userID string) ([]*entities.WatchlistItem, error)

	// Exists reports whether the stock is already on the user's watchlist.
	Exists(ctx context.Context, userID, stockCode string) (bool, error)

	// Add appends a stock to the user's watchlist.
	Add(ctx context.Context, item *entities.WatchlistItem) error

	// Remove deletes a stock from the user's watchlist.
	Remove(ctx context.Context, userID, stockCode string) error
}

// BriefingRepository persists morning briefings.
type BriefingRepository interface {
	// GetByDate returns the briefing for the given YYYY-MM-DD date.
	GetByDate(ctx context.Context, date string) (*entities.MorningBriefing, error)

	// Upsert inserts or replaces the briefing keyed by date.
	Upsert(ctx context.Context, briefing *entities.MorningBriefing) error
}
