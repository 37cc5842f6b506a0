package clients

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"saham-assistant/internal/domain/entities"
	"saham-assistant/internal/infrastructure/logger"
)

// QuoteClient fetches live quote and fundamental data for a stock.
type QuoteClient interface {
	// GetQuote returns the latest quote for an IDX ticker code.
	GetQuote(ctx context.Context, stockCode string) (*entities.StockFundamental, error)
}

// yahooQuoteClient reads the Yahoo Finance v7 quote endpoint. IDX tickers are
// suffixed with .JK unless the caller already passed a qualified symbol.
type yahooQuoteClient struct {
	httpClient HTTPClient
	baseURL    string
	logger     logger.Logger
}

// NewYahooQuoteClient creates a Yahoo Finance quote client.
func NewYahooQuoteClient(httpClient HTTPClient, baseURL string, log logger.Logger) QuoteClient {
	return &yahooQuoteClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     log,
	}
}

// yahooQuote is the subset of quote fields the assistant uses.
type yahooQuote struct {
	Symbol                     string   `json:"symbol"`
	LongName                   string   `json:"longName"`
	ShortName                  string   `json:"shortName"`
	RegularMarketPrice         float64  `json:"regularMarketPrice"`
	RegularMarketPreviousClose float64  `json:"regularMarketPreviousClose"`
	RegularMarketVolume        int64    `json:"regularMarketVolume"`
	MarketCap                  *float64 `json:"marketCap"`
	TrailingPE                 *float64 `json:"trailingPE"`
	PriceToBook                *float64 `json:"priceToBook"`
	DividendYield              *float64 `json:"dividendYield"`
}

// yahooQuoteEnvelope is the v7 response envelope.
type yahooQuoteEnvelope struct {
	QuoteResponse struct {
		Result []yahooQuote `json:"result"`
	} `json:"quoteResponse"`
}

func (c *yahooQuoteClient) GetQuote(ctx context.Context, stockCode string) (*entities.StockFundamental, error) {
	symbol := strings.ToUpper(stockCode)
	if !strings.Contains(symbol, ".") {
		symbol += ".JK"
	}

	endpoint := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", c.baseURL, url.QueryEscape(symbol))

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	resp, err := c.httpClient.Get(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote for %s: %w", symbol, err)
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("quote upstream returned status %d for %s", resp.StatusCode, symbol)
	}

	var envelope yahooQuoteEnvelope
	if err := resp.UnmarshalJSON(&envelope); err != nil {
		return nil, fmt.Errorf("failed to parse quote response for %s: %w", symbol, err)
	}

	if len(envelope.QuoteResponse.Result) == 0 {
		return nil, entities.ErrStockNotFound
	}

	quote := envelope.QuoteResponse.Result[0]

	name := quote.LongName
	if name == "" {
		name = quote.ShortName
	}
	if name == "" {
		name = strings.ToUpper(stockCode)
	}

	changePercent := 0.0
	if quote.RegularMarketPreviousClose != 0 {
		changePercent = (quote.RegularMarketPrice - quote.RegularMarketPreviousClose) / quote.RegularMarketPreviousClose * 100
	}

	stock := &entities.StockFundamental{
		StockCode:     strings.ToUpper(strings.TrimSuffix(symbol, ".JK")),
		StockName:     name,
		Price:         quote.RegularMarketPrice,
		ChangePercent: changePercent,
		Volume:        quote.RegularMarketVolume,
		MarketCap:     quote.MarketCap,
		PER:           quote.TrailingPE,
		PBV:           quote.PriceToBook,
	}

	if quote.DividendYield != nil {
		yield := *quote.DividendYield * 100
		stock.DividendYield = &yield
	}

	return stock, nil
}
