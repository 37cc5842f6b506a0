package dto

// AddWatchlistRequest is the body of POST /api/v1/watchlist.
type AddWatchlistRequest struct {
	StockCode string `json:"stock_code" binding:"required"`
}

// GenerateBriefingRequest is the admin body for (re)generating a briefing.
type GenerateBriefingRequest struct {
	Date string `json:"date"`
}
