package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saham-assistant/internal/domain/entities"
)

func TestYahooQuoteClient_GetQuote(t *testing.T) {
	t.Run("suffixes IDX codes and maps quote fields", func(t *testing.T) {
		var gotSymbols string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v7/finance/quote", r.URL.Path)
			gotSymbols = r.URL.Query().Get("symbols")

			_, _ = w.Write([]byte(`{"quoteResponse":{"result":[{
				"symbol":"BBRI.JK",
				"longName":"PT Bank Rakyat Indonesia (Persero) Tbk",
				"regularMarketPrice":5200,
				"regularMarketPreviousClose":5000,
				"regularMarketVolume":123456789,
				"trailingPE":12.5,
				"priceToBook":2.1,
				"dividendYield":0.045
			}]}}`))
		}))
		defer server.Close()

		client := NewYahooQuoteClient(NewHTTPClient(5*time.Second), server.URL, noopLogger{})
		stock, err := client.GetQuote(context.Background(), "bbri")

		require.NoError(t, err)
		assert.Equal(t, "BBRI.JK", gotSymbols)
		assert.Equal(t, "BBRI", stock.StockCode)
		assert.Equal(t, "PT Bank Rakyat Indonesia (Persero) Tbk", stock.StockName)
		assert.Equal(t, 5200.0, stock.Price)
		assert.InDelta(t, 4.0, stock.ChangePercent, 0.001)
		assert.Equal(t, int64(123456789), stock.Volume)
		require.NotNil(t, stock.PER)
		assert.Equal(t, 12.5, *stock.PER)
		require.NotNil(t, stock.DividendYield)
		assert.InDelta(t, 4.5, *stock.DividendYield, 0.001)
	})

	t.Run("unknown codes return stock not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"quoteResponse":{"result":[]}}`))
		}))
		defer server.Close()

		client := NewYahooQuoteClient(NewHTTPClient(5*time.Second), server.URL, noopLogger{})
		_, err := client.GetQuote(context.Background(), "ZZZZ")

		assert.ErrorIs(t, err, entities.ErrStockNotFound)
	})

	t.Run("qualified symbols are passed through", func(t *testing.T) {
		var gotSymbols string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotSymbols = r.URL.Query().Get("symbols")
			_, _ = w.Write([]byte(`{"quoteResponse":{"result":[{"symbol":"^JKSE","shortName":"IDX Composite","regularMarketPrice":7234}]}}`))
		}))
		defer server.Close()

		client := NewYahooQuoteClient(NewHTTPClient(5*time.Second), server.URL, noopLogger{})
		stock, err := client.GetQuote(context.Background(), "IDX.COMPOSITE")

		require.NoError(t, err)
		assert.Equal(t, "IDX.COMPOSITE", gotSymbols)
		assert.Equal(t, "IDX Composite", stock.StockName)
	})

	t.Run("upstream failures propagate as errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := NewYahooQuoteClient(NewHTTPClient(5*time.Second), server.URL, noopLogger{})
		_, err := client.GetQuote(context.Background(), "BBRI")

		assert.Error(t, err)
	})
}
