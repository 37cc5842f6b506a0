package repositories

import (
	"context"

	"saham-assistant/internal/domain/entities"
)

// ChatRepository persists chat sessions and their messages.
type ChatRepository interface {
	// CreateSession creates a session.
	CreateSession(ctx context.Context, session *entities.ChatSession) error

	// GetSession returns the session with the given ID.
	GetSession(ctx context.Context, id string) (*entities.ChatSession, error)

	// ListSessions returns a user's sessions, most recently updated first.
	ListSessions(ctx context.Context, userID string) ([]*entities.ChatSession, error)

	// CreateMessages appends messages to a session in one transaction and
	// bumps the session's message count.
	CreateMessages(ctx context.Context, sessionID string, messages []*entities.ChatMessage) error

	// ListMessages returns a session's messages in chronological order.
	ListMessages(ctx context.Context, sessionID string) ([]*entities.ChatMessage, error)
}

// ProfileRepository persists user profiles.
type ProfileRepository interface {
	// GetByID returns the profile of the given user.
	GetByID(ctx context.Context, userID string) (*entities.Profile, error)

	// Update saves the profile.
	Update(ctx context.Context, profile *entities.Profile) error

	// RecordChat increments the daily chat counter and stamps the chat time.
	RecordChat(ctx context.Context, userID string) error

	// ResetDailyCount zeroes the daily chat counter.
	ResetDailyCount(ctx context.Context, userID string) error
}
