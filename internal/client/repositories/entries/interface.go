package entries

import (
	"context"

	"github.com/nathanhfoster/turbo-sub002/internal/client/models"
)

// Repository describes CRUD and query operations for Entry objects.
// Implementations are typically backed by a local SQLite database.
type Repository interface {
	// GetAll returns all entries in key order.
	GetAll(ctx context.Context) ([]models.Entry, error)

	// GetByID returns an entry by its key; ok is false when it does not exist.
	GetByID(ctx context.Context, id int64) (e models.Entry, ok bool, err error)

	// Save inserts a new entry (ID == 0) or replaces an existing one and
	// returns its key.
	Save(ctx context.Context, e models.Entry) (int64, error)

	// SaveMany stores all entries in one transaction and returns their keys
	// in input order.
	SaveMany(ctx context.Context, es []models.Entry) ([]int64, error)

	// Delete removes an entry. Deleting a missing entry is not an error.
	Delete(ctx context.Context, id int64) error

	// DeleteAll removes every entry.
	DeleteAll(ctx context.Context) error

	// Search returns entries whose title or html contains term.
	Search(ctx context.Context, term string) ([]models.Entry, error)
}
