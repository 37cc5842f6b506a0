package entities

import "time"

// GlossaryTerm is one entry of the stock-market vocabulary shown to users.
// Term text is matched case-insensitively on whole words only.
type GlossaryTerm struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Term       string    `json:"term" gorm:"not null;size:200;uniqueIndex"`
	Definition string    `json:"definition" gorm:"not null;type:text"`
	Category   string    `json:"category" gorm:"not null;size:100;index"`
	CreatedAt  time.Time `json:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"not null;autoUpdateTime"`
}

// TableName maps the entity to its table.
func (GlossaryTerm) TableName() string {
	return "glossary_terms"
}
