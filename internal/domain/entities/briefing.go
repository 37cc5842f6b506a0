package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// IndexQuote is one market index or macro figure with its daily change.
type IndexQuote struct {
	Value  float64 `json:"value"`
	Change float64 `json:"change"`
}

// GlobalMarkets is the overnight snapshot of the major overseas indices.
type GlobalMarkets struct {
	Dow    IndexQuote `json:"dow"`
	SP500  IndexQuote `json:"sp500"`
	Nikkei IndexQuote `json:"nikkei"`
}

// MacroData is the macro backdrop relevant to IDX trading.
type MacroData struct {
	USDIDR IndexQuote `json:"usd_idr"`
	Gold   IndexQuote `json:"gold"`
	Oil    IndexQuote `json:"oil"`
}

// NewsItem is one headline shown in the briefing.
type NewsItem struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source string `json:"source"`
}

// NewsList is stored as a jsonb column.
type NewsList []NewsItem

// Value implements driver.Valuer.
func (n NewsList) Value() (driver.Value, error) {
	return json.Marshal(n)
}

// Scan implements sql.Scanner.
func (n *NewsList) Scan(value interface{}) error {
	return scanJSON(value, n)
}

// Value implements driver.Valuer.
func (g GlobalMarkets) Value() (driver.Value, error) {
	return json.Marshal(g)
}

// Scan implements sql.Scanner.
func (g *GlobalMarkets) Scan(value interface{}) error {
	return scanJSON(value, g)
}

// Value implements driver.Valuer.
func (m MacroData) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *MacroData) Scan(value interface{}) error {
	return scanJSON(value, m)
}

func scanJSON(value interface{}, dest interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	case nil:
		return nil
	default:
		return fmt.Errorf("unsupported jsonb source type %T", value)
	}
}

// MorningBriefing is the pre-market summary generated once per trading day.
type MorningBriefing struct {
	ID            int64         `json:"id" gorm:"primaryKey;autoIncrement"`
	Date          string        `json:"date" gorm:"not null;size:10;uniqueIndex"` // YYYY-MM-DD
	GlobalMarkets GlobalMarkets `json:"global_markets" gorm:"type:jsonb"`
	MacroData     MacroData     `json:"macro_data" gorm:"type:jsonb"`
	AISentiment   string        `json:"ai_sentiment" gorm:"type:text"`
	TopNews       NewsList      `json:"top_news" gorm:"type:jsonb"`
	CreatedAt     time.Time     `json:"created_at" gorm:"not null;autoCreateTime"`
}

// TableName maps the entity to its table.
func (MorningBriefing) TableName() string {
	return "morning_briefings"
}
