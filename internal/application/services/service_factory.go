package services

import (
	"saham-assistant/internal/infrastructure/clients"
	"saham-assistant/internal/infrastructure/config"
	"saham-assistant/internal/infrastructure/crypto"
	"saham-assistant/internal/infrastructure/logger"
	"saham-assistant/internal/infrastructure/repositories"
)

// ServiceFactory wires all application services over the repository factory
// and the outbound clients.
type ServiceFactory struct {
	aiService        AIService
	glossaryService  GlossaryService
	chatService      ChatService
	stockService     StockService
	watchlistService WatchlistService
	briefingService  BriefingService
	providerService  ProviderService
}

// NewServiceFactory builds the full service graph. cipher may be nil when no
// secret key is configured; newsClient may be nil when no news source is set.
func NewServiceFactory(repoFactory *repositories.RepositoryFactory, adapterFactory *clients.AdapterFactory, quoteClient clients.QuoteClient, newsClient clients.NewsClient, cipher *crypto.SecretCipher, cfg *config.Config, log logger.Logger) *ServiceFactory {
	aiService := NewAIService(repoFactory.GetProviderRepository(), adapterFactory, cipher, &cfg.AI, log)
	glossaryService := NewGlossaryService(repoFactory.GetGlossaryRepository(), &cfg.Glossary, log)
	stockService := NewStockService(repoFactory.GetStockRepository(), quoteClient, &cfg.Stocks, log)
	chatService := NewChatService(aiService, stockService, repoFactory.GetChatRepository(), repoFactory.GetProfileRepository(), log)
	watchlistService := NewWatchlistService(repoFactory.GetWatchlistRepository(), stockService, log)
	briefingService := NewBriefingService(repoFactory.GetBriefingRepository(), aiService, newsClient, &cfg.Briefing, log)
	providerService := NewProviderService(repoFactory.GetProviderRepository(), aiService, cipher, log)

	return &ServiceFactory{
		aiService:        aiService,
		glossaryService:  glossaryService,
		chatService:      chatService,
		stockService:     stockService,
		watchlistService: watchlistService,
		briefingService:  briefingService,
		providerService:  providerService,
	}
}

func (f *ServiceFactory) GetAIService() AIService               { return f.aiService }
func (f *ServiceFactory) GetGlossaryService() GlossaryService   { return f.glossaryService }
func (f *ServiceFactory) GetChatService() ChatService           { return f.chatService }
func (f *ServiceFactory) GetStockService() StockService         { return f.stockService }
func (f *ServiceFactory) GetWatchlistService() WatchlistService { return f.watchlistService }
func (f *ServiceFactory) GetBriefingService() BriefingService   { return f.briefingService }
func (f *ServiceFactory) GetProviderService() ProviderService   { return f.providerService }
