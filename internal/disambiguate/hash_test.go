package disambiguate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "1", "71"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1", "71", "a.jpg"), []byte("alpha"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.jpg"), []byte("beta"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.jpg"), []byte("alpha"), 0o644))

	digests, err := HashFiles(dir)
	require.NoError(t, err)
	require.Len(t, digests, 3)

	assert.Len(t, digests["a.jpg"], 32, "hex encoded MD5")
	assert.Equal(t, digests["a.jpg"], digests["c.jpg"], "identical content hashes identically")
	assert.NotEqual(t, digests["a.jpg"], digests["b.jpg"])
}

func TestHashFilesSameNameIsConsistent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "1"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "2"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1", "a.jpg"), []byte("same"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2", "a.jpg"), []byte("same"), 0o644))

	digests, err := HashFiles(dir)
	require.NoError(t, err)
	assert.Len(t, digests, 1, "the same file downloaded into two layouts is one entry")
}

func TestHashFilesSameNameDifferentContent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "1"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "2"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1", "a.jpg"), []byte("one"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2", "a.jpg"), []byte("two"), 0o644))

	_, err := HashFiles(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "two different contents")
}

func TestHashFilesEmptyDir(t *testing.T) {
	_, err := HashFiles(t.TempDir())
	require.Error(t, err)
}
