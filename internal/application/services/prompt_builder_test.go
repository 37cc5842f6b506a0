package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"saham-assistant/internal/domain/entities"
)

func TestBuildSystemPrompt(t *testing.T) {
	t.Run("newbie prompt explains jargon", func(t *testing.T) {
		prompt := BuildSystemPrompt(PromptContext{UserLevel: entities.UserLevelNewbie})

		assert.Contains(t, prompt, "Mode Pemula")
		assert.Contains(t, prompt, "Level: newbie")
		assert.Contains(t, prompt, "Ini bukan rekomendasi investasi")
	})

	t.Run("intermediate and advanced modes differ", func(t *testing.T) {
		intermediate := BuildSystemPrompt(PromptContext{UserLevel: entities.UserLevelIntermediate})
		advanced := BuildSystemPrompt(PromptContext{UserLevel: entities.UserLevelAdvanced})

		assert.Contains(t, intermediate, "Mode Menengah")
		assert.Contains(t, advanced, "Mode Mahir")
		assert.NotContains(t, advanced, "Mode Pemula")
	})

	t.Run("trading style appears when set", func(t *testing.T) {
		style := "swing"
		prompt := BuildSystemPrompt(PromptContext{UserLevel: entities.UserLevelIntermediate, TradingStyle: &style})

		assert.Contains(t, prompt, "Style: swing")
	})

	t.Run("stock context is embedded verbatim", func(t *testing.T) {
		prompt := BuildSystemPrompt(PromptContext{
			UserLevel:    entities.UserLevelAdvanced,
			StockContext: "Stock: BBRI - Bank Rakyat Indonesia",
		})

		assert.Contains(t, prompt, "Context Data Terkini")
		assert.Contains(t, prompt, "Stock: BBRI - Bank Rakyat Indonesia")
	})
}

func TestBuildStockContext(t *testing.T) {
	t.Run("renders available fundamentals", func(t *testing.T) {
		per := 12.5
		sector := "Banking"
		stock := &entities.StockFundamental{
			StockCode:     "BBRI",
			StockName:     "Bank Rakyat Indonesia",
			Price:         5200,
			ChangePercent: 1.25,
			PER:           &per,
			Sector:        &sector,
		}

		context := BuildStockContext(stock)

		assert.Contains(t, context, "Stock: BBRI - Bank Rakyat Indonesia")
		assert.Contains(t, context, "Sektor: Banking")
		assert.Contains(t, context, "Perubahan: +1.25%")
		assert.Contains(t, context, "PER: 12.50")
		assert.Contains(t, context, "PBV: N/A")
	})

	t.Run("negative change carries its sign", func(t *testing.T) {
		stock := &entities.StockFundamental{StockCode: "GOTO", StockName: "GoTo", Price: 60, ChangePercent: -3.1}

		context := BuildStockContext(stock)

		assert.Contains(t, context, "Perubahan: -3.10%")
		assert.False(t, strings.Contains(context, "+-"))
	})

	t.Run("nil stock yields empty context", func(t *testing.T) {
		assert.Empty(t, BuildStockContext(nil))
	})
}
