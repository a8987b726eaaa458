package filex

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) func() {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	return func() { _ = os.Chdir(old) }
}

func TestEnsureDir_CreatesDirectoryInCWD(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	got, err := EnsureDir("exports")
	require.NoError(t, err)

	want := filepath.Join(tmp, "exports")
	require.Equal(t, want, got)

	fi, err := os.Stat(want)
	require.NoError(t, err)
	require.True(t, fi.IsDir(), "should create a directory")

	if runtime.GOOS != "windows" {
		perm := fi.Mode().Perm()
		require.Equal(t, os.FileMode(0o700), perm&0o700)
	}
}

func TestEnsureDir_Idempotent(t *testing.T) {
	tmp := t.TempDir()

	first, err := EnsureDir(filepath.Join(tmp, "a", "b"))
	require.NoError(t, err)

	second, err := EnsureDir(filepath.Join(tmp, "a", "b"))
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestEnsureDir_FailsIfFileWithSameNameExists(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	require.NoError(t, os.WriteFile("exports", []byte("x"), 0o660))

	_, err := EnsureDir("exports")
	require.Error(t, err, "should fail when a file exists with the same name")
}

func TestWriteFile_ReadJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	path, err := WriteFile(dir, "entries.json", []byte(`[{"title":"a","views":"3"}]`))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "entries.json"), path)

	v, err := ReadJSON(path)
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"title": "a", "views": "3"}}, v)

	path, err = WriteFile(dir, "entries.json", []byte(`[]`))
	require.NoError(t, err)
	v, err = ReadJSON(path)
	require.NoError(t, err)
	assert.Equal(t, []any{}, v)

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1, "temp files must not be left behind")
}

func TestWriteFile_RejectsPathInName(t *testing.T) {
	_, err := WriteFile(t.TempDir(), "../escape.json", nil)
	assert.Error(t, err)
}

func TestReadJSON_Errors(t *testing.T) {
	_, err := ReadJSON(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o600))
	_, err = ReadJSON(path)
	assert.Error(t, err)
}

func TestTimestampedName(t *testing.T) {
	at := time.Date(2024, 3, 9, 7, 5, 2, 0, time.UTC)
	assert.Equal(t, "entries-2024-03-09 07-05-02.json", TimestampedName("entries", "json", at))
	assert.Equal(t, "entries-2024-03-09 07-05-02.csv", TimestampedName("entries", ".csv", at))
}
