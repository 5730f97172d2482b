package incremental

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCache_SaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "page.md")
	require.NoError(t, os.WriteFile(src, []byte("# X\n"), 0o644))

	cachePath := filepath.Join(dir, ".cache")
	c := NewCache(cachePath)
	require.NoError(t, c.Update(src))
	c.Save()

	fresh := NewCache(cachePath)
	fresh.Load()
	require.Equal(t, c.Entries(), fresh.Entries())
}

func TestCache_LoadMissingFileIsEmpty(t *testing.T) {
	c := NewCache(filepath.Join(t.TempDir(), "absent.cache"))
	c.Load()
	require.Equal(t, 0, c.Len())
}

func TestCache_LoadCorruptFileIsEmptyNotFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".cache")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	c := NewCache(path)
	c.Load()
	require.Equal(t, 0, c.Len())
}

func TestCache_ShouldExport(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "page.md")
	require.NoError(t, os.WriteFile(src, []byte("# X\n"), 0o644))

	c := NewCache(filepath.Join(dir, ".cache"))

	// Unknown source exports.
	require.True(t, c.ShouldExport(src))

	// Just-recorded source does not.
	require.NoError(t, c.Update(src))
	require.False(t, c.ShouldExport(src))

	// Touched source exports again.
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(src, future, future))
	require.True(t, c.ShouldExport(src))

	// Missing source always exports.
	require.True(t, c.ShouldExport(filepath.Join(dir, "gone.md")))
}

func TestCache_SaveFailureDoesNotPanic(t *testing.T) {
	c := NewCache(filepath.Join(t.TempDir(), "no-such-dir", ".cache"))
	c.Save() // warning only
}

func TestCache_PersistedFormatIsFlatJSON(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "page.md")
	require.NoError(t, os.WriteFile(src, []byte("# X\n"), 0o644))

	cachePath := filepath.Join(dir, ".cache")
	c := NewCache(cachePath)
	require.NoError(t, c.Update(src))
	c.Save()

	data, err := os.ReadFile(cachePath)
	require.NoError(t, err)
	require.Contains(t, string(data), src)
	require.Contains(t, string(data), "{")
}
