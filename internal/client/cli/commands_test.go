package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathanhfoster/turbo-sub002/internal/client/config"
	"github.com/nathanhfoster/turbo-sub002/internal/client/models"
	"github.com/nathanhfoster/turbo-sub002/internal/client/repositories/entries"
	"github.com/nathanhfoster/turbo-sub002/internal/client/repositories/metadata"
	"github.com/nathanhfoster/turbo-sub002/internal/client/services"
	"github.com/nathanhfoster/turbo-sub002/internal/client/store"
	"github.com/nathanhfoster/turbo-sub002/internal/client/transform"
	"github.com/nathanhfoster/turbo-sub002/internal/common"
	"github.com/nathanhfoster/turbo-sub002/internal/debounce"
	"github.com/nathanhfoster/turbo-sub002/internal/logging"
)

type testApp struct {
	*App
	out  *bytes.Buffer
	repo entries.Repository
}

func newTestApp(t *testing.T, input string) *testApp {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DBPath = filepath.Join(dir, "diary.db")
	cfg.ExportDir = filepath.Join(dir, "exports")

	g, err := store.Open(context.Background(), cfg.DBPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })

	p := transform.New(logging.Discard())
	repo := entries.NewSQLiteRepository(g, p)
	es := services.NewEntryService(repo, metadata.NewSQLiteRepository(g.DB()),
		services.WithPipeline(p),
		services.WithVersioner(g),
		services.WithScheduler(debounce.New(time.Hour)),
	)
	require.NoError(t, es.Load(context.Background()))

	out := &bytes.Buffer{}
	a := newApp(cfg, es, strings.NewReader(input), out, logging.Discard())
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return &testApp{App: a, out: out, repo: repo}
}

func TestNew_WithTitleArgsAndBody(t *testing.T) {
	a := newTestApp(t, "first line\nsecond line\n\n")
	ctx := context.Background()

	require.NoError(t, a.New(ctx, []string{"Rainy", "day"}))
	assert.Contains(t, a.out.String(), "Created entry #1")

	e, ok := a.entries.Get(1)
	require.True(t, ok)
	assert.Equal(t, "Rainy day", e.Title)
	assert.Equal(t, "<p>first line</p><p>second line</p>", e.HTML)
}

func TestNew_PromptsForTitle(t *testing.T) {
	a := newTestApp(t, "Prompted\n\n")
	require.NoError(t, a.New(context.Background(), nil))
	e, ok := a.entries.Get(1)
	require.True(t, ok)
	assert.Equal(t, "Prompted", e.Title)
	assert.Empty(t, e.HTML)
}

func TestSetShowAndSave(t *testing.T) {
	a := newTestApp(t, "\n")
	ctx := context.Background()
	require.NoError(t, a.New(ctx, []string{"t"}))

	require.NoError(t, a.Set(ctx, []string{"1", "tags", "cats,dogs"}))
	require.NoError(t, a.Set(ctx, []string{"1", "rating", "4"}))

	a.out.Reset()
	require.NoError(t, a.Show(ctx, []string{"1"}))
	shown := a.out.String()
	assert.Contains(t, shown, "#1")
	assert.Contains(t, shown, "cats, dogs")
	assert.Contains(t, shown, "rating")

	stored, _, err := a.repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, stored.Tags, "edits wait for the debounce window")

	require.NoError(t, a.Save(ctx, nil))
	stored, _, err = a.repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.Names("cats", "dogs"), stored.Tags)
	assert.Equal(t, int64(4), stored.Rating)
}

func TestCommands_ArgumentErrors(t *testing.T) {
	a := newTestApp(t, "")
	ctx := context.Background()

	assert.ErrorIs(t, a.Show(ctx, nil), errUsage)
	assert.ErrorIs(t, a.Set(ctx, []string{"1"}), errUsage)
	assert.ErrorIs(t, a.Search(ctx, nil), errUsage)
	assert.ErrorIs(t, a.Import(ctx, nil), errUsage)
	assert.ErrorIs(t, a.List(ctx, []string{"x"}), errUsage)
	assert.ErrorIs(t, a.Show(ctx, []string{"42"}), common.ErrorNotFound)
	assert.ErrorIs(t, a.Delete(ctx, []string{"42"}), common.ErrorNotFound)
	assert.ErrorIs(t, a.Export(ctx, []string{"pdf"}), common.ErrorUnsupportedFormat)
	assert.Error(t, a.Show(ctx, []string{"abc"}))
}

func TestListSearchDelete(t *testing.T) {
	a := newTestApp(t, "\n\n\n")
	ctx := context.Background()
	require.NoError(t, a.New(ctx, []string{"Morning", "run"}))
	require.NoError(t, a.New(ctx, []string{"Evening", "read"}))

	a.out.Reset()
	require.NoError(t, a.List(ctx, nil))
	assert.Contains(t, a.out.String(), "Morning run")
	assert.Contains(t, a.out.String(), "Evening read")

	a.out.Reset()
	require.NoError(t, a.List(ctx, []string{"1"}))
	assert.Equal(t, 2, strings.Count(a.out.String(), "\n"), "header plus one row")

	a.out.Reset()
	require.NoError(t, a.Search(ctx, []string{"run"}))
	assert.Contains(t, a.out.String(), "Morning run")
	assert.NotContains(t, a.out.String(), "Evening")

	require.NoError(t, a.Delete(ctx, []string{"1"}))
	all, err := a.repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Evening read", all[0].Title)

	a.out.Reset()
	require.NoError(t, a.Search(ctx, []string{"run"}))
	assert.Contains(t, a.out.String(), "No matches")
}

func TestDelete_AsksForConfirmationWhenInteractive(t *testing.T) {
	a := newTestApp(t, "\nn\ny\n")
	a.interactive = true
	ctx := context.Background()
	require.NoError(t, a.New(ctx, []string{"keep"}))

	require.NoError(t, a.Delete(ctx, []string{"1"}))
	assert.Contains(t, a.out.String(), "Cancelled")
	_, ok := a.entries.Get(1)
	assert.True(t, ok)

	require.NoError(t, a.Delete(ctx, []string{"1"}))
	_, ok = a.entries.Get(1)
	assert.False(t, ok)
}

func TestExportThenImport(t *testing.T) {
	a := newTestApp(t, "body\n\n")
	ctx := context.Background()
	require.NoError(t, a.New(ctx, []string{"Exported"}))

	a.out.Reset()
	require.NoError(t, a.Export(ctx, nil))
	path := strings.TrimSpace(strings.TrimPrefix(a.out.String(), "Exported to"))
	assert.Equal(t, a.config.ExportDir, filepath.Dir(path))
	_, err := os.Stat(path)
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, a.Export(ctx, []string{"markdown", dir}))
	matches, err := filepath.Glob(filepath.Join(dir, "*.md"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	b := newTestApp(t, "")
	require.NoError(t, b.Import(ctx, []string{path}))
	assert.Contains(t, b.out.String(), "Imported 1 entries")
	e, ok := b.entries.Get(1)
	require.True(t, ok)
	assert.Equal(t, "Exported", e.Title)
}

func TestInfoAndReload(t *testing.T) {
	a := newTestApp(t, "")
	ctx := context.Background()

	require.NoError(t, a.Info(ctx, nil))
	info := a.out.String()
	assert.Contains(t, info, "schema version")
	assert.Contains(t, info, "never")

	a.out.Reset()
	require.NoError(t, a.Reload(ctx, nil))
	assert.Contains(t, a.out.String(), "Loaded 0 entries")
}

func TestRun_ExecutesScriptAndFlushes(t *testing.T) {
	a := newTestApp(t, "new Scripted\n\nset 1 title Changed\nexit\n")
	ctx := context.Background()

	require.NoError(t, a.Run(ctx))

	stored, ok, err := a.repo.GetByID(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Changed", stored.Title)
}
