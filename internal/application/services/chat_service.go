package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"saham-assistant/internal/application/dto"
	"saham-assistant/internal/domain/entities"
	"saham-assistant/internal/domain/repositories"
	"saham-assistant/internal/infrastructure/clients"
	"saham-assistant/internal/infrastructure/logger"
)

// ErrDailyLimitReached means the user spent today's chat quota.
var ErrDailyLimitReached = errors.New("daily chat limit reached")

// Only the most recent turns are replayed to the model.
const chatHistoryWindow = 10

// ChatService orchestrates one chat exchange: quota, stock context, prompt,
// model call and persistence.
type ChatService interface {
	// Chat runs a blocking exchange and persists both turns.
	Chat(ctx context.Context, userID string, req *dto.ChatRequest) (*dto.ChatResponse, error)

	// ChatStream opens a streaming exchange. The user turn is persisted up
	// front; the relayed stream is opaque to the gateway so the assistant
	// turn is not.
	ChatStream(ctx context.Context, userID string, req *dto.ChatRequest) (io.ReadCloser, string, error)

	// ListSessions returns the user's sessions, newest first.
	ListSessions(ctx context.Context, userID string) ([]*entities.ChatSession, error)

	// GetSessionMessages returns the messages of one session owned by the user.
	GetSessionMessages(ctx context.Context, userID, sessionID string) ([]*entities.ChatMessage, error)

	// GetProfile returns the user's profile, creating a default one on first use.
	GetProfile(ctx context.Context, userID string) (*entities.Profile, error)
}

type chatServiceImpl struct {
	aiService    AIService
	stockService StockService
	chatRepo     repositories.ChatRepository
	profileRepo  repositories.ProfileRepository
	logger       logger.Logger
}

// NewChatService creates the chat orchestration service.
func NewChatService(aiService AIService, stockService StockService, chatRepo repositories.ChatRepository, profileRepo repositories.ProfileRepository, log logger.Logger) ChatService {
	return &chatServiceImpl{
		aiService:    aiService,
		stockService: stockService,
		chatRepo:     chatRepo,
		profileRepo:  profileRepo,
		logger:       log,
	}
}

func (s *chatServiceImpl) Chat(ctx context.Context, userID string, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	profile, err := s.prepareProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	session, err := s.resolveSession(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	messages, err := s.buildMessages(ctx, profile, session, req.Message)
	if err != nil {
		return nil, err
	}

	response, err := s.aiService.Chat(ctx, messages, nil)
	if err != nil {
		return nil, err
	}

	userTurn := &entities.ChatMessage{Role: entities.RoleUser, Content: req.Message}
	assistantTurn := &entities.ChatMessage{
		Role:           entities.RoleAssistant,
		Content:        response.Content,
		ModelUsed:      &response.Model,
		TokensUsed:     response.TokensUsed,
		ResponseTimeMs: &response.ResponseTimeMs,
	}
	if err := s.chatRepo.CreateMessages(ctx, session.ID, []*entities.ChatMessage{userTurn, assistantTurn}); err != nil {
		s.logger.WithField("error", err.Error()).Error("failed to persist chat messages")
	}

	if err := s.profileRepo.RecordChat(ctx, userID); err != nil {
		s.logger.WithField("error", err.Error()).Error("failed to record chat usage")
	}

	return &dto.ChatResponse{
		SessionID:      session.ID,
		Reply:          response.Content,
		Model:          response.Model,
		TokensUsed:     response.TokensUsed,
		ResponseTimeMs: response.ResponseTimeMs,
		RemainingChats: remainingAfter(profile),
	}, nil
}

func (s *chatServiceImpl) ChatStream(ctx context.Context, userID string, req *dto.ChatRequest) (io.ReadCloser, string, error) {
	profile, err := s.prepareProfile(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	session, err := s.resolveSession(ctx, userID, req)
	if err != nil {
		return nil, "", err
	}

	messages, err := s.buildMessages(ctx, profile, session, req.Message)
	if err != nil {
		return nil, "", err
	}

	stream, _, err := s.aiService.ChatStream(ctx, messages, nil)
	if err != nil {
		return nil, "", err
	}

	userTurn := &entities.ChatMessage{Role: entities.RoleUser, Content: req.Message}
	if err := s.chatRepo.CreateMessages(ctx, session.ID, []*entities.ChatMessage{userTurn}); err != nil {
		s.logger.WithField("error", err.Error()).Error("failed to persist user message")
	}
	if err := s.profileRepo.RecordChat(ctx, userID); err != nil {
		s.logger.WithField("error", err.Error()).Error("failed to record chat usage")
	}

	return stream, session.ID, nil
}

func (s *chatServiceImpl) ListSessions(ctx context.Context, userID string) ([]*entities.ChatSession, error) {
	return s.chatRepo.ListSessions(ctx, userID)
}

func (s *chatServiceImpl) GetSessionMessages(ctx context.Context, userID, sessionID string) ([]*entities.ChatMessage, error) {
	session, err := s.chatRepo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, entities.ErrSessionNotFound
	}
	return s.chatRepo.ListMessages(ctx, sessionID)
}

// GetProfile returns the profile, creating a default one for first-time
// users since account management lives in the auth provider.
func (s *chatServiceImpl) GetProfile(ctx context.Context, userID string) (*entities.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, entities.ErrProfileNotFound) {
		return nil, err
	}

	profile = &entities.Profile{
		ID:        userID,
		UserLevel: entities.UserLevelNewbie,
		Tier:      entities.TierFree,
		ChatLimit: 20,
	}
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// prepareProfile loads the profile, resets a stale daily counter and
// enforces the quota. Admins are exempt.
func (s *chatServiceImpl) prepareProfile(ctx context.Context, userID string) (*entities.Profile, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if profile.LastChatAt != nil && !sameDay(*profile.LastChatAt, time.Now()) && profile.DailyChatCount > 0 {
		if err := s.profileRepo.ResetDailyCount(ctx, userID); err != nil {
			s.logger.WithField("error", err.Error()).Warn("failed to reset daily chat count")
		} else {
			profile.DailyChatCount = 0
		}
	}

	if !profile.IsAdmin() && profile.RemainingChats() == 0 {
		return nil, ErrDailyLimitReached
	}
	return profile, nil
}

// resolveSession loads the requested session or starts a new one titled
// after the first message.
func (s *chatServiceImpl) resolveSession(ctx context.Context, userID string, req *dto.ChatRequest) (*entities.ChatSession, error) {
	if req.SessionID != "" {
		session, err := s.chatRepo.GetSession(ctx, req.SessionID)
		if err != nil {
			return nil, err
		}
		if session.UserID != userID {
			return nil, entities.ErrSessionNotFound
		}
		return session, nil
	}

	session := &entities.ChatSession{
		ID:     uuid.New().String(),
		UserID: userID,
		Title:  sessionTitle(req.Message),
	}
	if req.StockCode != "" {
		code := req.StockCode
		session.StockCode = &code
	}
	if err := s.chatRepo.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// buildMessages assembles system prompt, replayed history and the new turn.
func (s *chatServiceImpl) buildMessages(ctx context.Context, profile *entities.Profile, session *entities.ChatSession, userMessage string) ([]clients.AIMessage, error) {
	stockContext := ""
	stockCode := ""
	if session.StockCode != nil {
		stockCode = *session.StockCode
	}
	if stockCode != "" {
		stock, err := s.stockService.GetStock(ctx, stockCode)
		if err != nil {
			// A missing quote degrades the prompt, never the chat.
			s.logger.WithFields(map[string]interface{}{
				"stock_code": stockCode,
				"error":      err.Error(),
			}).Warn("stock context unavailable")
		} else {
			stockContext = BuildStockContext(stock)
		}
	}

	systemPrompt := BuildSystemPrompt(PromptContext{
		UserLevel:    profile.UserLevel,
		TradingStyle: profile.TradingStyle,
		StockContext: stockContext,
	})

	messages := []clients.AIMessage{
		{Role: string(entities.RoleSystem), Content: systemPrompt},
	}

	history, err := s.chatRepo.ListMessages(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}
	if len(history) > chatHistoryWindow {
		history = history[len(history)-chatHistoryWindow:]
	}
	for _, turn := range history {
		messages = append(messages, clients.AIMessage{Role: string(turn.Role), Content: turn.Content})
	}

	messages = append(messages, clients.AIMessage{Role: string(entities.RoleUser), Content: userMessage})
	return messages, nil
}

func remainingAfter(profile *entities.Profile) int {
	if profile.IsAdmin() {
		return profile.ChatLimit
	}
	remaining := profile.RemainingChats() - 1
	if remaining < 0 {
		return 0
	}
	return remaining
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// sessionTitle derives a session title from the first message, truncated on a
// rune boundary so multi-byte text never yields an invalid-UTF-8 title.
func sessionTitle(message string) string {
	const maxTitle = 60
	if len(message) <= maxTitle {
		return message
	}
	cut := maxTitle
	for cut > 0 && !utf8.RuneStart(message[cut]) {
		cut--
	}
	return message[:cut] + "..."
}
