package metadata

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathanhfoster/turbo-sub002/internal/client/store"
)

func setupRepo(t *testing.T) (*SQLiteRepository, *store.Gateway) {
	t.Helper()
	g, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "meta.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	return NewSQLiteRepository(g.DB()), g
}

func TestGetSetDelete(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	_, ok, err := r.Get(ctx, "theme")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Set(ctx, "theme", "dark"))
	require.NoError(t, r.Set(ctx, "theme", "light"))

	v, ok, err := r.Get(ctx, "theme")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "light", v)

	require.NoError(t, r.Delete(ctx, "theme"))
	require.NoError(t, r.Delete(ctx, "theme"))
	_, ok, err = r.Get(ctx, "theme")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAll(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	all, err := r.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, r.Set(ctx, "b", "2"))
	require.NoError(t, r.Set(ctx, "a", ""))

	all, err = r.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "", "b": "2"}, all)
}

func TestTimes(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	_, ok, err := r.GetTime(ctx, KeyLastImportAt)
	require.NoError(t, err)
	assert.False(t, ok)

	at := time.Date(2024, 2, 29, 23, 59, 58, 123e6, time.FixedZone("CET", 3600))
	require.NoError(t, r.SetTime(ctx, KeyLastImportAt, at))

	raw, _, err := r.Get(ctx, KeyLastImportAt)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29T22:59:58.123Z", raw)

	got, ok, err := r.GetTime(ctx, KeyLastImportAt)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, at.Equal(got))

	require.NoError(t, r.Set(ctx, KeyLastExportAt, "yesterday"))
	_, _, err = r.GetTime(ctx, KeyLastExportAt)
	assert.ErrorContains(t, err, KeyLastExportAt)
}

func TestErrorsAfterClose(t *testing.T) {
	r, g := setupRepo(t)
	ctx := context.Background()
	require.NoError(t, g.Close())

	_, _, err := r.Get(ctx, "k")
	assert.ErrorContains(t, err, `metadata: get "k"`)
	assert.ErrorContains(t, r.Set(ctx, "k", "v"), `metadata: set "k"`)
	assert.ErrorContains(t, r.Delete(ctx, "k"), `metadata: delete "k"`)
	_, err = r.All(ctx)
	assert.ErrorContains(t, err, "metadata: all")
}
