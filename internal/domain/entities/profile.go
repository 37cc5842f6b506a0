package entities

import "time"

// UserLevel is the self-reported trading experience of a user; it drives the
// tone of the assistant's system prompt.
type UserLevel string

const (
	UserLevelNewbie       UserLevel = "newbie"
	UserLevelIntermediate UserLevel = "intermediate"
	UserLevelAdvanced     UserLevel = "advanced"
)

// SubscriptionTier gates daily chat quota and admin access.
type SubscriptionTier string

const (
	TierFree    SubscriptionTier = "free"
	TierPremium SubscriptionTier = "premium"
	TierAdmin   SubscriptionTier = "admin"
)

// Profile holds the per-user assistant settings. The row ID is the subject of
// the hosted-auth JWT; account management itself lives in the auth provider.
type Profile struct {
	ID             string           `json:"id" gorm:"primaryKey;size:36"`
	DisplayName    string           `json:"display_name" gorm:"size:200"`
	UserLevel      UserLevel        `json:"user_level" gorm:"not null;size:20;default:'newbie'"`
	TradingStyle   *string          `json:"trading_style,omitempty" gorm:"size:20"` // scalper, swing, investor
	Tier           SubscriptionTier `json:"subscription_tier" gorm:"column:subscription_tier;not null;size:20;default:'free'"`
	ChatLimit      int              `json:"chat_limit" gorm:"not null;default:20"`
	DailyChatCount int              `json:"daily_chat_count" gorm:"not null;default:0"`
	LastChatAt     *time.Time       `json:"last_chat_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt      time.Time        `json:"updated_at" gorm:"not null;autoUpdateTime"`
}

// TableName maps the entity to its table.
func (Profile) TableName() string {
	return "profiles"
}

// IsAdmin reports whether the profile may use the admin API.
func (p *Profile) IsAdmin() bool {
	return p.Tier == TierAdmin
}

// RemainingChats returns how many chats are left today, never below zero.
func (p *Profile) RemainingChats() int {
	remaining := p.ChatLimit - p.DailyChatCount
	if remaining < 0 {
		return 0
	}
	return remaining
}
