package services

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saham-assistant/internal/application/dto"
	"saham-assistant/internal/domain/entities"
)

// stubChatRepo keeps sessions and messages in memory.
type stubChatRepo struct {
	sessions map[string]*entities.ChatSession
	messages map[string][]*entities.ChatMessage
}

func newStubChatRepo() *stubChatRepo {
	return &stubChatRepo{
		sessions: make(map[string]*entities.ChatSession),
		messages: make(map[string][]*entities.ChatMessage),
	}
}

func (r *stubChatRepo) CreateSession(ctx context.Context, session *entities.ChatSession) error {
	r.sessions[session.ID] = session
	return nil
}

func (r *stubChatRepo) GetSession(ctx context.Context, id string) (*entities.ChatSession, error) {
	session, ok := r.sessions[id]
	if !ok {
		return nil, entities.ErrSessionNotFound
	}
	return session, nil
}

func (r *stubChatRepo) ListSessions(ctx context.Context, userID string) ([]*entities.ChatSession, error) {
	var result []*entities.ChatSession
	for _, session := range r.sessions {
		if session.UserID == userID {
			result = append(result, session)
		}
	}
	return result, nil
}

func (r *stubChatRepo) CreateMessages(ctx context.Context, sessionID string, messages []*entities.ChatMessage) error {
	r.messages[sessionID] = append(r.messages[sessionID], messages...)
	if session, ok := r.sessions[sessionID]; ok {
		session.MessageCount += len(messages)
	}
	return nil
}

func (r *stubChatRepo) ListMessages(ctx context.Context, sessionID string) ([]*entities.ChatMessage, error) {
	return r.messages[sessionID], nil
}

// stubProfileRepo keeps profiles in memory.
type stubProfileRepo struct {
	profiles map[string]*entities.Profile
}

func newStubProfileRepo() *stubProfileRepo {
	return &stubProfileRepo{profiles: make(map[string]*entities.Profile)}
}

func (r *stubProfileRepo) GetByID(ctx context.Context, id string) (*entities.Profile, error) {
	profile, ok := r.profiles[id]
	if !ok {
		return nil, entities.ErrProfileNotFound
	}
	return profile, nil
}

func (r *stubProfileRepo) Update(ctx context.Context, profile *entities.Profile) error {
	r.profiles[profile.ID] = profile
	return nil
}

func (r *stubProfileRepo) RecordChat(ctx context.Context, userID string) error {
	if profile, ok := r.profiles[userID]; ok {
		profile.DailyChatCount++
		now := time.Now()
		profile.LastChatAt = &now
	}
	return nil
}

func (r *stubProfileRepo) ResetDailyCount(ctx context.Context, userID string) error {
	if profile, ok := r.profiles[userID]; ok {
		profile.DailyChatCount = 0
	}
	return nil
}

// stubStockService serves one fixed stock.
type stubStockService struct {
	stock *entities.StockFundamental
}

func (s *stubStockService) GetStock(ctx context.Context, stockCode string) (*entities.StockFundamental, error) {
	if s.stock == nil {
		return nil, entities.ErrStockNotFound
	}
	return s.stock, nil
}

func (s *stubStockService) SearchStocks(ctx context.Context, keyword string, limit int) ([]*entities.StockFundamental, error) {
	return nil, nil
}

func (s *stubStockService) ListBySector(ctx context.Context, sector string) ([]*entities.StockFundamental, error) {
	return nil, nil
}

func newTestChatService(chatRepo *stubChatRepo, profileRepo *stubProfileRepo, ai *stubAIService) ChatService {
	return NewChatService(ai, &stubStockService{}, chatRepo, profileRepo, &MockLogger{})
}

func TestChatService_Chat(t *testing.T) {
	t.Run("creates a session titled after the first message", func(t *testing.T) {
		chatRepo := newStubChatRepo()
		profileRepo := newStubProfileRepo()
		service := newTestChatService(chatRepo, profileRepo, &stubAIService{})

		response, err := service.Chat(context.Background(), "user-1", &dto.ChatRequest{Message: "Analisa BBRI dong"})

		require.NoError(t, err)
		require.NotEmpty(t, response.SessionID)
		session := chatRepo.sessions[response.SessionID]
		assert.Equal(t, "Analisa BBRI dong", session.Title)
		assert.Equal(t, "user-1", session.UserID)
	})

	t.Run("persists both turns of the exchange", func(t *testing.T) {
		chatRepo := newStubChatRepo()
		profileRepo := newStubProfileRepo()
		service := newTestChatService(chatRepo, profileRepo, &stubAIService{})

		response, err := service.Chat(context.Background(), "user-1", &dto.ChatRequest{Message: "Halo"})

		require.NoError(t, err)
		stored := chatRepo.messages[response.SessionID]
		require.Len(t, stored, 2)
		assert.Equal(t, entities.RoleUser, stored[0].Role)
		assert.Equal(t, entities.RoleAssistant, stored[1].Role)
		assert.Equal(t, "ok", stored[1].Content)
	})

	t.Run("creates a default profile on first chat and counts usage", func(t *testing.T) {
		chatRepo := newStubChatRepo()
		profileRepo := newStubProfileRepo()
		service := newTestChatService(chatRepo, profileRepo, &stubAIService{})

		_, err := service.Chat(context.Background(), "fresh-user", &dto.ChatRequest{Message: "Halo"})

		require.NoError(t, err)
		profile := profileRepo.profiles["fresh-user"]
		require.NotNil(t, profile)
		assert.Equal(t, entities.UserLevelNewbie, profile.UserLevel)
		assert.Equal(t, 1, profile.DailyChatCount)
	})

	t.Run("rejects a user over the daily limit", func(t *testing.T) {
		chatRepo := newStubChatRepo()
		profileRepo := newStubProfileRepo()
		now := time.Now()
		profileRepo.profiles["user-1"] = &entities.Profile{
			ID:             "user-1",
			UserLevel:      entities.UserLevelNewbie,
			Tier:           entities.TierFree,
			ChatLimit:      20,
			DailyChatCount: 20,
			LastChatAt:     &now,
		}
		service := newTestChatService(chatRepo, profileRepo, &stubAIService{})

		_, err := service.Chat(context.Background(), "user-1", &dto.ChatRequest{Message: "Halo"})

		assert.ErrorIs(t, err, ErrDailyLimitReached)
	})

	t.Run("resets the counter on a new day", func(t *testing.T) {
		chatRepo := newStubChatRepo()
		profileRepo := newStubProfileRepo()
		yesterday := time.Now().Add(-25 * time.Hour)
		profileRepo.profiles["user-1"] = &entities.Profile{
			ID:             "user-1",
			UserLevel:      entities.UserLevelNewbie,
			Tier:           entities.TierFree,
			ChatLimit:      20,
			DailyChatCount: 20,
			LastChatAt:     &yesterday,
		}
		service := newTestChatService(chatRepo, profileRepo, &stubAIService{})

		_, err := service.Chat(context.Background(), "user-1", &dto.ChatRequest{Message: "Halo"})

		assert.NoError(t, err)
	})

	t.Run("admins bypass the daily limit", func(t *testing.T) {
		chatRepo := newStubChatRepo()
		profileRepo := newStubProfileRepo()
		now := time.Now()
		profileRepo.profiles["admin-1"] = &entities.Profile{
			ID:             "admin-1",
			UserLevel:      entities.UserLevelAdvanced,
			Tier:           entities.TierAdmin,
			ChatLimit:      20,
			DailyChatCount: 500,
			LastChatAt:     &now,
		}
		service := newTestChatService(chatRepo, profileRepo, &stubAIService{})

		_, err := service.Chat(context.Background(), "admin-1", &dto.ChatRequest{Message: "Halo"})

		assert.NoError(t, err)
	})

	t.Run("rejects continuing someone else's session", func(t *testing.T) {
		chatRepo := newStubChatRepo()
		chatRepo.sessions["sess-1"] = &entities.ChatSession{ID: "sess-1", UserID: "owner"}
		profileRepo := newStubProfileRepo()
		service := newTestChatService(chatRepo, profileRepo, &stubAIService{})

		_, err := service.Chat(context.Background(), "intruder", &dto.ChatRequest{Message: "Halo", SessionID: "sess-1"})

		assert.ErrorIs(t, err, entities.ErrSessionNotFound)
	})

	t.Run("long first messages are truncated into the title", func(t *testing.T) {
		chatRepo := newStubChatRepo()
		profileRepo := newStubProfileRepo()
		service := newTestChatService(chatRepo, profileRepo, &stubAIService{})

		long := strings.Repeat("analisa ", 20)
		response, err := service.Chat(context.Background(), "user-1", &dto.ChatRequest{Message: long})

		require.NoError(t, err)
		title := chatRepo.sessions[response.SessionID].Title
		assert.LessOrEqual(t, len(title), 63)
		assert.True(t, strings.HasSuffix(title, "..."))
	})

	t.Run("title truncation never splits a rune", func(t *testing.T) {
		chatRepo := newStubChatRepo()
		profileRepo := newStubProfileRepo()
		service := newTestChatService(chatRepo, profileRepo, &stubAIService{})

		// One ASCII byte up front puts the 60-byte cut mid-rune.
		long := "x" + strings.Repeat("日", 30)
		response, err := service.Chat(context.Background(), "user-1", &dto.ChatRequest{Message: long})

		require.NoError(t, err)
		title := chatRepo.sessions[response.SessionID].Title
		assert.True(t, utf8.ValidString(title))
		assert.True(t, strings.HasSuffix(title, "..."))
		assert.True(t, strings.HasPrefix(long, strings.TrimSuffix(title, "...")))
	})
}

func TestChatService_GetSessionMessages(t *testing.T) {
	t.Run("hides sessions of other users", func(t *testing.T) {
		chatRepo := newStubChatRepo()
		chatRepo.sessions["sess-1"] = &entities.ChatSession{ID: "sess-1", UserID: "owner"}
		service := newTestChatService(chatRepo, newStubProfileRepo(), &stubAIService{})

		_, err := service.GetSessionMessages(context.Background(), "intruder", "sess-1")

		assert.ErrorIs(t, err, entities.ErrSessionNotFound)
	})
}
