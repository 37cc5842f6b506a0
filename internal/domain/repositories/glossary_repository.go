package repositories

import (
	"context"

	"saham-assistant/internal/domain/entities"
)

// GlossaryRepository persists glossary terms.
type GlossaryRepository interface {
	// ListAll returns every term ordered alphabetically.
	ListAll(ctx context.Context) ([]*entities.GlossaryTerm, error)

	// ListByCategory returns the terms of one category ordered alphabetically.
	ListByCategory(ctx context.Context, category string) ([]*entities.GlossaryTerm, error)

	// GetByID returns the term with the given ID.
	GetByID(ctx context.Context, id int64) (*entities.GlossaryTerm, error)

	// Create creates a term.
	Create(ctx context.Context, term *entities.GlossaryTerm) error

	// Update saves the term.
	Update(ctx context.Context, term *entities.GlossaryTerm) error

	// Delete removes the term.
	Delete(ctx context.Context, id int64) error
}
