package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"saham-assistant/internal/domain/entities"
	"saham-assistant/internal/domain/repositories"
)

type chatRepositoryImpl struct {
	db *gorm.DB
}

// NewChatRepository creates a chat session and message repository.
func NewChatRepository(db *gorm.DB) repositories.ChatRepository {
	return &chatRepositoryImpl{db: db}
}

func (r *chatRepositoryImpl) CreateSession(ctx context.Context, session *entities.ChatSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *chatRepositoryImpl) GetSession(ctx context.Context, id string) (*entities.ChatSession, error) {
	var session entities.ChatSession
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *chatRepositoryImpl) ListSessions(ctx context.Context, userID string) ([]*entities.ChatSession, error) {
	var sessions []*entities.ChatSession
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// CreateMessages persists the messages of one exchange and bumps the session
// message counter in a single transaction.
func (r *chatRepositoryImpl) CreateMessages(ctx context.Context, sessionID string, messages []*entities.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, message := range messages {
			message.SessionID = sessionID
		}
		if err := tx.Create(&messages).Error; err != nil {
			return err
		}
		return tx.Model(&entities.ChatSession{}).
			Where("id = ?", sessionID).
			Updates(map[string]interface{}{
				"message_count": gorm.Expr("message_count + ?", len(messages)),
				"updated_at":    time.Now(),
			}).Error
	})
}

func (r *chatRepositoryImpl) ListMessages(ctx context.Context, sessionID string) ([]*entities.ChatMessage, error) {
	var messages []*entities.ChatMessage
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

type profileRepositoryImpl struct {
	db *gorm.DB
}

// NewProfileRepository creates a user profile repository.
func NewProfileRepository(db *gorm.DB) repositories.ProfileRepository {
	return &profileRepositoryImpl{db: db}
}

func (r *profileRepositoryImpl) GetByID(ctx context.Context, id string) (*entities.Profile, error) {
	var profile entities.Profile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepositoryImpl) Update(ctx context.Context, profile *entities.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *profileRepositoryImpl) RecordChat(ctx context.Context, userID string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&entities.Profile{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"daily_chat_count": gorm.Expr("daily_chat_count + 1"),
			"last_chat_at":     now,
		}).Error
}

func (r *profileRepositoryImpl) ResetDailyCount(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Model(&entities.Profile{}).
		Where("id = ?", userID).
		Update("daily_chat_count", 0).Error
}
