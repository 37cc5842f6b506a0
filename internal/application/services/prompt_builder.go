package services

import (
	"fmt"
	"strings"

	"saham-assistant/internal/domain/entities"
)

// PromptContext carries the profile attributes that shape the system prompt.
type PromptContext struct {
	UserLevel    entities.UserLevel
	TradingStyle *string
	StockContext string
}

// BuildSystemPrompt composes the Indonesian system prompt from the user's
// level, trading style and optional stock data context.
func BuildSystemPrompt(context PromptContext) string {
	var b strings.Builder

	b.WriteString(`Kamu adalah asisten analisis saham Indonesia yang cerdas dan berpengalaman.

**Karaktermu:**
- Ramah dan mudah dimengerti
- Berbahasa Indonesia santai tapi profesional
- Selalu kasih alasan ("kenapa") bukan cuma fakta
- Gunakan analogi sederhana untuk konsep rumit
- Fokus pada analisa fundamental dan teknikal

**User Info:**
`)
	fmt.Fprintf(&b, "- Level: %s\n", context.UserLevel)
	if context.TradingStyle != nil && *context.TradingStyle != "" {
		fmt.Fprintf(&b, "- Style: %s\n", *context.TradingStyle)
	}

	switch context.UserLevel {
	case entities.UserLevelNewbie:
		b.WriteString(`
**Mode Pemula:**
- Jelaskan istilah teknis (PER, PBV, ROE) dengan analogi ELI5
- Hindari jargon tanpa penjelasan
- Berikan contoh konkret
- Gunakan bahasa yang sangat sederhana
`)
	case entities.UserLevelIntermediate:
		b.WriteString(`
**Mode Menengah:**
- Boleh gunakan istilah teknis tapi tetap jelaskan jika perlu
- Fokus pada analisa yang lebih mendalam
- Berikan perbandingan dengan saham sejenis
`)
	default:
		b.WriteString(`
**Mode Mahir:**
- Gunakan analisa teknis dan fundamental yang mendalam
- Diskusi tentang strategi trading yang kompleks
- Asumsi user sudah paham istilah dasar
`)
	}

	if context.StockContext != "" {
		b.WriteString("\n**Context Data Terkini:**\n")
		b.WriteString(context.StockContext)
		b.WriteString("\n")
	}

	b.WriteString(`
**PENTING:**
- Selalu akhiri dengan disclaimer: "Ini bukan rekomendasi investasi, lakukan riset sendiri."
- Jika ditanya rekomendasi beli/jual, kasih analisa tapi user yang putuskan
- Jangan prediksi harga pasti, fokus ke analisa fundamental & teknikal
- Gunakan bahasa Indonesia yang natural dan enak dibaca
- Jika tidak yakin atau data tidak cukup, katakan dengan jujur

**Format Response:**
- Gunakan paragraf yang jelas, tidak terlalu panjang
- Gunakan bullet points untuk poin-poin penting
- Bold untuk highlight istilah atau angka penting
- Berikan kesimpulan di akhir
`)

	return b.String()
}

// BuildStockContext renders the fundamentals block embedded in the system
// prompt when the chat is about a specific stock.
func BuildStockContext(stock *entities.StockFundamental) string {
	if stock == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Stock: %s - %s\n", stock.StockCode, stock.StockName)
	fmt.Fprintf(&b, "Sektor: %s\n", strOrNA(stock.Sector))
	fmt.Fprintf(&b, "Harga: Rp %.0f\n", stock.Price)
	fmt.Fprintf(&b, "Perubahan: %s%%\n", signedPercent(stock.ChangePercent))
	if stock.MarketCap != nil {
		fmt.Fprintf(&b, "Market Cap: Rp %.2f M\n", *stock.MarketCap/1_000_000_000)
	} else {
		b.WriteString("Market Cap: N/A\n")
	}
	fmt.Fprintf(&b, "PER: %s\n", floatOrNA(stock.PER))
	fmt.Fprintf(&b, "PBV: %s\n", floatOrNA(stock.PBV))
	fmt.Fprintf(&b, "ROE: %s%%\n", floatOrNA(stock.ROE))
	fmt.Fprintf(&b, "DER: %s\n", floatOrNA(stock.DER))
	fmt.Fprintf(&b, "Dividend Yield: %s%%\n", floatOrNA(stock.DividendYield))
	return b.String()
}

func signedPercent(v float64) string {
	if v > 0 {
		return fmt.Sprintf("+%.2f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

func floatOrNA(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *v)
}

func strOrNA(v *string) string {
	if v == nil || *v == "" {
		return "N/A"
	}
	return *v
}
