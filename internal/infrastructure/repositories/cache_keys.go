package repositories

import "fmt"

// Cache key layout. Every key carries a version segment so a schema change can
// invalidate old entries by bumping the version.
const (
	cacheKeyActiveProviders = "saham:v1:providers:active"
	cacheKeyGlossaryTerms   = "saham:v1:glossary:terms"
)

func cacheKeyStock(stockCode string) string {
	return fmt.Sprintf("saham:v1:stock:%s", stockCode)
}

func cacheKeyBriefing(date string) string {
	return fmt.Sprintf("saham:v1:briefing:%s", date)
}
