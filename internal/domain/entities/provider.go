package entities

import "time"

// ProviderKind identifies the wire protocol spoken by an upstream AI backend.
type ProviderKind string

const (
	ProviderKindOpenAI       ProviderKind = "openai"
	ProviderKindPollinations ProviderKind = "pollinations"
)

// SupportedProviderKinds lists the backend kinds the gateway can dispatch to.
func SupportedProviderKinds() []ProviderKind {
	return []ProviderKind{ProviderKindOpenAI, ProviderKindPollinations}
}

// Valid reports whether the kind is part of the closed adapter set.
func (k ProviderKind) Valid() bool {
	switch k {
	case ProviderKindOpenAI, ProviderKindPollinations:
		return true
	}
	return false
}

// AIProvider is one configured upstream AI backend.
// At most one provider should be active at a time; if several are active the
// gateway picks deterministically (lowest priority value, then lowest ID).
type AIProvider struct {
	ID                int64        `json:"id" gorm:"primaryKey;autoIncrement"`
	Name              string       `json:"name" gorm:"not null;size:100;uniqueIndex"`
	DisplayName       string       `json:"display_name" gorm:"not null;size:200"`
	Kind              ProviderKind `json:"provider_type" gorm:"column:provider_type;not null;size:50;index"`
	BaseURL           string       `json:"base_url" gorm:"not null;size:500"`
	APIKeyEncrypted   *string      `json:"-" gorm:"size:1000"` // sealed with the master key, never serialized
	ModelName         string       `json:"model_name" gorm:"not null;size:200"`
	IsActive          bool         `json:"is_active" gorm:"not null;default:false;index"`
	Priority          int          `json:"priority" gorm:"not null;default:100"` // lower = preferred
	MaxTokens         int          `json:"max_tokens" gorm:"not null;default:2048"`
	Temperature       float64      `json:"temperature" gorm:"not null;default:0.7"`
	SupportsStreaming bool         `json:"supports_streaming" gorm:"not null;default:true"`
	CreatedAt         time.Time    `json:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt         time.Time    `json:"updated_at" gorm:"not null;autoUpdateTime"`
}

// TableName maps the entity to its table.
func (AIProvider) TableName() string {
	return "ai_providers"
}

// GetDisplayName returns the display name, falling back to the unique name.
func (p *AIProvider) GetDisplayName() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Name
}
