package repository

import (
	"context"

	"github.com/Luiza-Bandeira/VarandaJK/internal/domain"
)

// CatalogRepository reads the menu from the external catalog.
type CatalogRepository interface {
	// ListCategories returns all categories ordered ascending by sort key.
	ListCategories(ctx context.Context) ([]domain.Category, error)

	// ListAvailableItems returns items flagged available.
	ListAvailableItems(ctx context.Context) ([]domain.MenuItem, error)
}

// CartRepository persists cart lines per visitor session.
type CartRepository interface {
	// Get returns the persisted lines, or a NOT_FOUND AppError when the session
	// has nothing stored.
	Get(ctx context.Context, sessionID string) ([]domain.CartLine, error)

	// Save overwrites the stored lines for the session.
	Save(ctx context.Context, sessionID string, lines []domain.CartLine) error

	// Delete removes the stored lines for the session.
	Delete(ctx context.Context, sessionID string) error
}
