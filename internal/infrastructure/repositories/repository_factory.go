package repositories

import (
	"gorm.io/gorm"

	"saham-assistant/internal/domain/repositories"
	"saham-assistant/internal/infrastructure/redis"
)

// RepositoryFactory wires all repositories over one database handle and an
// optional cache service.
type RepositoryFactory struct {
	db    *gorm.DB
	cache *redis.CacheService

	providerRepo  repositories.ProviderRepository
	glossaryRepo  repositories.GlossaryRepository
	chatRepo      repositories.ChatRepository
	profileRepo   repositories.ProfileRepository
	stockRepo     repositories.StockRepository
	watchlistRepo repositories.WatchlistRepository
	briefingRepo  repositories.BriefingRepository
}

// NewRepositoryFactory creates a factory without caching.
func NewRepositoryFactory(db *gorm.DB) *RepositoryFactory {
	return NewRepositoryFactoryWithCache(db, nil)
}

// NewRepositoryFactoryWithCache creates a factory with read-through caching.
// A nil cache disables caching on every repository.
func NewRepositoryFactoryWithCache(db *gorm.DB, cache *redis.CacheService) *RepositoryFactory {
	return &RepositoryFactory{
		db:            db,
		cache:         cache,
		providerRepo:  NewProviderRepository(db, cache),
		glossaryRepo:  NewGlossaryRepository(db, cache),
		chatRepo:      NewChatRepository(db),
		profileRepo:   NewProfileRepository(db),
		stockRepo:     NewStockRepository(db, cache),
		watchlistRepo: NewWatchlistRepository(db),
		briefingRepo:  NewBriefingRepository(db, cache),
	}
}

func (f *RepositoryFactory) GetProviderRepository() repositories.ProviderRepository {
	return f.providerRepo
}

func (f *RepositoryFactory) GetGlossaryRepository() repositories.GlossaryRepository {
	return f.glossaryRepo
}

func (f *RepositoryFactory) GetChatRepository() repositories.ChatRepository {
	return f.chatRepo
}

func (f *RepositoryFactory) GetProfileRepository() repositories.ProfileRepository {
	return f.profileRepo
}

func (f *RepositoryFactory) GetStockRepository() repositories.StockRepository {
	return f.stockRepo
}

func (f *RepositoryFactory) GetWatchlistRepository() repositories.WatchlistRepository {
	return f.watchlistRepo
}

func (f *RepositoryFactory) GetBriefingRepository() repositories.BriefingRepository {
	return f.briefingRepo
}
