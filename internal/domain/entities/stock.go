package entities

import "time"

// StockFundamental is one IDX-listed stock with its latest quote and
// fundamental ratios, refreshed lazily from the market-data upstream.
type StockFundamental struct {
	StockCode     string    `json:"stock_code" gorm:"primaryKey;size:10"`
	StockName     string    `json:"stock_name" gorm:"not null;size:200"`
	Price         float64   `json:"price" gorm:"not null;default:0"`
	ChangePercent float64   `json:"change_percent" gorm:"not null;default:0"`
	Volume        int64     `json:"volume" gorm:"not null;default:0"`
	MarketCap     *float64  `json:"market_cap,omitempty"`
	PER           *float64  `json:"per,omitempty" gorm:"column:per"`
	PBV           *float64  `json:"pbv,omitempty" gorm:"column:pbv"`
	ROE           *float64  `json:"roe,omitempty" gorm:"column:roe"`
	DER           *float64  `json:"der,omitempty" gorm:"column:der"`
	DividendYield *float64  `json:"dividend_yield,omitempty"`
	Sector        *string   `json:"sector,omitempty" gorm:"size:100;index"`
	Subsector     *string   `json:"subsector,omitempty" gorm:"size:100"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"not null;autoUpdateTime"`
}

// TableName maps the entity to its table.
func (StockFundamental) TableName() string {
	return "stock_fundamentals"
}

// IsFresh reports whether the row was refreshed within maxAge of now.
func (s *StockFundamental) IsFresh(now time.Time, maxAge time.Duration) bool {
	return now.Sub(s.UpdatedAt) < maxAge
}
