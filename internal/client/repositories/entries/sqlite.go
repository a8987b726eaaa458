package entries

import (
	"context"

	"github.com/nathanhfoster/turbo-sub002/internal/client/models"
	"github.com/nathanhfoster/turbo-sub002/internal/client/repositories/crud"
	"github.com/nathanhfoster/turbo-sub002/internal/client/store"
	"github.com/nathanhfoster/turbo-sub002/internal/client/transform"
)

// searchPaths are the indexed fields Search looks at.
var searchPaths = []string{models.FieldTitle, models.FieldHTML}

// codec stores entries in their flattened form.
type codec struct {
	p *transform.Pipeline
}

func (c codec) Encode(_ context.Context, e models.Entry) (store.Record, error) {
	return store.Record(c.p.ToExportable(e)), nil
}

func (c codec) Decode(ctx context.Context, rec store.Record) (models.Entry, error) {
	return c.p.ToDomain(ctx, transform.Flat(rec)), nil
}

// SQLiteRepository implements Repository over the entries collection.
type SQLiteRepository struct {
	*crud.Repository[models.Entry]
}

// NewSQLiteRepository returns a repository bound to the entries collection
// of s.
func NewSQLiteRepository(s crud.Store, p *transform.Pipeline) *SQLiteRepository {
	return &SQLiteRepository{
		Repository: crud.New[models.Entry](s, store.EntriesCollection, codec{p: p}),
	}
}

// Search returns entries whose title or html contains term.
func (r *SQLiteRepository) Search(ctx context.Context, term string) ([]models.Entry, error) {
	return r.Find(ctx, searchPaths, term)
}

var _ Repository = (*SQLiteRepository)(nil)
