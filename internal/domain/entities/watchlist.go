package entities

import "time"

// WatchlistItem pins one stock to a user's watchlist.
type WatchlistItem struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    string    `json:"user_id" gorm:"not null;size:36;index:idx_watchlist_user_stock,unique"`
	StockCode string    `json:"stock_code" gorm:"not null;size:10;index:idx_watchlist_user_stock,unique"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;autoCreateTime"`

	// Joined fundamentals, populated by the repository, never persisted here.
	Stock *StockFundamental `json:"stock,omitempty" gorm:"-"`
}

// TableName maps the entity to its table.
func (WatchlistItem) TableName() string {
	return "watchlists"
}
