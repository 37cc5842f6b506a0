package entities

import "time"

// MessageRole is the author of one chat turn.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Valid reports whether the role is one of the known chat roles.
func (r MessageRole) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// ChatSession groups the messages of one conversation.
type ChatSession struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	UserID       string    `json:"user_id" gorm:"not null;size:36;index"`
	Title        string    `json:"title" gorm:"size:200"`
	StockCode    *string   `json:"stock_code,omitempty" gorm:"size:10"`
	MessageCount int       `json:"message_count" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"not null;autoUpdateTime"`
}

// TableName maps the entity to its table.
func (ChatSession) TableName() string {
	return "chat_sessions"
}

// ChatMessage is one persisted turn in a conversation. Model and token
// metadata are only present on assistant turns.
type ChatMessage struct {
	ID             int64       `json:"id" gorm:"primaryKey;autoIncrement"`
	SessionID      string      `json:"session_id" gorm:"not null;size:36;index"`
	Role           MessageRole `json:"role" gorm:"not null;size:20"`
	Content        string      `json:"content" gorm:"not null;type:text"`
	ModelUsed      *string     `json:"model_used,omitempty" gorm:"size:200"`
	TokensUsed     *int        `json:"tokens_used,omitempty"`
	ResponseTimeMs *int64      `json:"response_time_ms,omitempty"`
	CreatedAt      time.Time   `json:"created_at" gorm:"not null;autoCreateTime"`
}

// TableName maps the entity to its table.
func (ChatMessage) TableName() string {
	return "chat_messages"
}
