package entries

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathanhfoster/turbo-sub002/internal/client/models"
	"github.com/nathanhfoster/turbo-sub002/internal/client/store"
	"github.com/nathanhfoster/turbo-sub002/internal/client/transform"
	"github.com/nathanhfoster/turbo-sub002/internal/logging"
)

func setupRepo(t *testing.T) (*SQLiteRepository, *store.Gateway) {
	t.Helper()
	g, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "entries.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	return NewSQLiteRepository(g, transform.New(logging.Discard())), g
}

func newEntry(title string) models.Entry {
	e := models.NewEntry(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	e.Title = title
	return e
}

func TestSave_InsertThenUpdate(t *testing.T) {
	r, g := setupRepo(t)
	ctx := context.Background()

	e := newEntry("first")
	e.Tags = models.Names("a", "b")
	e.Rating = 4
	e.IsPublic = true

	id, err := r.Save(ctx, e)
	require.NoError(t, err)
	e.ID = id

	// stored flattened
	rec, err := g.ReadOne(ctx, store.EntriesCollection, id)
	require.NoError(t, err)
	assert.Equal(t, "a,b", rec[models.FieldTags])
	assert.Equal(t, "4", rec[models.FieldRating])
	assert.Equal(t, "true", rec[models.FieldIsPublic])

	got, ok, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	if diff := cmp.Diff(e, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("entry mismatch (-want +got):\n%s", diff)
	}

	e.Title = "renamed"
	again, err := r.Save(ctx, e)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "renamed", all[0].Title)
}

func TestSave_DuplicateClientIDRejected(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	a := newEntry("a")
	_, err := r.Save(ctx, a)
	require.NoError(t, err)

	b := newEntry("b")
	b.ClientID = a.ClientID
	_, err = r.Save(ctx, b)
	require.Error(t, err)
}

func TestSaveMany_AllOrNothing(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	a, b := newEntry("a"), newEntry("b")
	c := newEntry("c")
	c.ClientID = a.ClientID

	_, err := r.SaveMany(ctx, []models.Entry{a, b, c})
	require.Error(t, err)

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDelete_ThenGetAll(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	ids, err := r.SaveMany(ctx, []models.Entry{newEntry("a"), newEntry("b")})
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, ids[0]))

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, ids[1], all[0].ID)

	_, ok, err := r.GetByID(ctx, ids[0])
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSearch_TitleAndHTML(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	beach := newEntry("Beach day")
	notes := newEntry("Notes")
	notes.HTML = "<p>back from the beach</p>"
	_, err := r.SaveMany(ctx, []models.Entry{beach, notes, newEntry("Work")})
	require.NoError(t, err)

	hits, err := r.Search(ctx, "BEACH")
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "Beach day", hits[0].Title)
	assert.Equal(t, "Notes", hits[1].Title)
}

func TestMalformedValuesSurviveStorage(t *testing.T) {
	r, g := setupRepo(t)
	ctx := context.Background()

	id, err := g.PutOne(ctx, store.EntriesCollection, store.Record{
		models.FieldClientID: "raw",
		models.FieldViews:    "lots",
		"mood":               "sunny",
	})
	require.NoError(t, err)

	e, ok, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Zero(t, e.Views)
	assert.Equal(t, "lots", e.Extra[models.FieldViews])
	assert.Equal(t, "sunny", e.Extra["mood"])

	_, err = r.Save(ctx, e)
	require.NoError(t, err)

	rec, err := g.ReadOne(ctx, store.EntriesCollection, id)
	require.NoError(t, err)
	assert.Equal(t, "lots", rec[models.FieldViews])
	assert.Equal(t, "sunny", rec["mood"])
}
