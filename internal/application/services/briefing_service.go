package services

import (
	"context"
	"fmt"
	"time"

	"saham-assistant/internal/application/dto"
	"saham-assistant/internal/domain/entities"
	"saham-assistant/internal/domain/repositories"
	"saham-assistant/internal/infrastructure/clients"
	"saham-assistant/internal/infrastructure/config"
	"saham-assistant/internal/infrastructure/logger"
)

// fallbackSentiment is used when the AI provider cannot produce a sentiment.
const fallbackSentiment = `**Sentimen Hari Ini: Netral**

Data sentimen otomatis belum tersedia. Pantau pergerakan pasar global dan rilis data ekonomi hari ini sebelum mengambil keputusan.`

// BriefingService produces and serves the pre-market morning briefing.
type BriefingService interface {
	// GetTodaysBriefing returns today's briefing if one was generated.
	GetTodaysBriefing(ctx context.Context) (*entities.MorningBriefing, error)

	// GetBriefing returns the briefing of a specific day (YYYY-MM-DD).
	GetBriefing(ctx context.Context, date string) (*entities.MorningBriefing, error)

	// GenerateBriefing builds and stores the briefing of the given day,
	// replacing an existing one. An empty date means today.
	GenerateBriefing(ctx context.Context, req *dto.GenerateBriefingRequest) (*entities.MorningBriefing, error)
}

type briefingServiceImpl struct {
	briefingRepo repositories.BriefingRepository
	aiService    AIService
	newsClient   clients.NewsClient
	newsURL      string
	logger       logger.Logger
}

// NewBriefingService creates the briefing service. newsClient may be nil
// when no news source is configured.
func NewBriefingService(briefingRepo repositories.BriefingRepository, aiService AIService, newsClient clients.NewsClient, cfg *config.BriefingConfig, log logger.Logger) BriefingService {
	return &briefingServiceImpl{
		briefingRepo: briefingRepo,
		aiService:    aiService,
		newsClient:   newsClient,
		newsURL:      cfg.NewsURL,
		logger:       log,
	}
}

func (s *briefingServiceImpl) GetTodaysBriefing(ctx context.Context) (*entities.MorningBriefing, error) {
	return s.briefingRepo.GetByDate(ctx, time.Now().Format("2006-01-02"))
}

func (s *briefingServiceImpl) GetBriefing(ctx context.Context, date string) (*entities.MorningBriefing, error) {
	return s.briefingRepo.GetByDate(ctx, date)
}

func (s *briefingServiceImpl) GenerateBriefing(ctx context.Context, req *dto.GenerateBriefingRequest) (*entities.MorningBriefing, error) {
	date := time.Now().Format("2006-01-02")
	if req != nil && req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid briefing date %q: %w", req.Date, err)
		}
		date = parsed.Format("2006-01-02")
	}

	briefing := &entities.MorningBriefing{
		Date:          date,
		GlobalMarkets: snapshotGlobalMarkets(),
		MacroData:     snapshotMacroData(),
		TopNews:       defaultTopNews(),
	}

	briefing.AISentiment = s.generateSentiment(ctx, briefing)

	if err := s.briefingRepo.Upsert(ctx, briefing); err != nil {
		return nil, fmt.Errorf("failed to save morning briefing: %w", err)
	}
	return briefing, nil
}

// generateSentiment asks the active provider for a sentiment paragraph,
// giving it news context when a source is configured. Any failure degrades
// to the canned fallback so briefing generation never depends on the AI.
func (s *briefingServiceImpl) generateSentiment(ctx context.Context, briefing *entities.MorningBriefing) string {
	prompt := fmt.Sprintf(`Kamu adalah analis pasar saham Indonesia. Buat ringkasan sentimen pasar pagi ini dalam bahasa Indonesia (maksimal 150 kata) berdasarkan data berikut.

Dow: %.0f (%.2f%%), S&P 500: %.0f (%.2f%%), Nikkei: %.0f (%.2f%%)
USD/IDR: %.0f (%.2f%%), Emas: %.0f (%.2f%%), Minyak: %.0f (%.2f%%)`,
		briefing.GlobalMarkets.Dow.Value, briefing.GlobalMarkets.Dow.Change,
		briefing.GlobalMarkets.SP500.Value, briefing.GlobalMarkets.SP500.Change,
		briefing.GlobalMarkets.Nikkei.Value, briefing.GlobalMarkets.Nikkei.Change,
		briefing.MacroData.USDIDR.Value, briefing.MacroData.USDIDR.Change,
		briefing.MacroData.Gold.Value, briefing.MacroData.Gold.Change,
		briefing.MacroData.Oil.Value, briefing.MacroData.Oil.Change)

	if s.newsClient != nil && s.newsURL != "" {
		markdown, err := s.newsClient.FetchMarkdown(ctx, s.newsURL)
		if err != nil {
			s.logger.WithField("error", err.Error()).Warn("news context unavailable for briefing")
		} else if markdown != "" {
			prompt += "\n\nBerita pasar terbaru:\n" + markdown
		}
	}

	messages := []clients.AIMessage{
		{Role: string(entities.RoleUser), Content: prompt},
	}
	response, err := s.aiService.Chat(ctx, messages, nil)
	if err != nil {
		s.logger.WithField("error", err.Error()).Warn("sentiment generation failed, using fallback")
		return fallbackSentiment
	}
	return response.Content
}

// Static snapshots stand in until a market-data feed for indices is wired.
// TODO: replace with live index quotes once the upstream contract is settled.
func snapshotGlobalMarkets() entities.GlobalMarkets {
	return entities.GlobalMarkets{
		Dow:    entities.IndexQuote{Value: 42000, Change: 0.5},
		SP500:  entities.IndexQuote{Value: 5800, Change: 0.3},
		Nikkei: entities.IndexQuote{Value: 38000, Change: -0.2},
	}
}

func snapshotMacroData() entities.MacroData {
	return entities.MacroData{
		USDIDR: entities.IndexQuote{Value: 15850, Change: 0.15},
		Gold:   entities.IndexQuote{Value: 2050, Change: 0.8},
		Oil:    entities.IndexQuote{Value: 78, Change: -1.2},
	}
}

func defaultTopNews() entities.NewsList {
	return entities.NewsList{
		{Title: "IHSG Ditutup Menguat 0.5% di 7,234", URL: "#", Source: "CNBC Indonesia"},
		{Title: "BI Pertahankan Suku Bunga 6%", URL: "#", Source: "Bisnis.com"},
		{Title: "Saham Bank Kompak Menghijau", URL: "#", Source: "Kontan"},
	}
}
