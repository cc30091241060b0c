package datastore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingsdigitallab/zoonyper/internal/conf"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLite(&conf.SQLiteSettings{
		Enabled: true,
		Path:    filepath.Join(t.TempDir(), "zoonyper.db"),
	})
	require.NoError(t, store.Open())
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	store := NewSQLite(&conf.SQLiteSettings{})
	require.Error(t, store.Open())
}

func TestSubjectHashesRoundTrip(t *testing.T) {
	store := openTestStore(t)

	empty, err := store.GetSubjectHashes()
	require.NoError(t, err)
	assert.Empty(t, empty)

	ids := map[int64]int{71: 1, 72: 2, 73: 2}
	require.NoError(t, store.SaveSubjectHashes(ids))

	got, err := store.GetSubjectHashes()
	require.NoError(t, err)
	assert.Equal(t, ids, got)

	// re-saving with a changed mapping upserts
	ids[71] = 3
	require.NoError(t, store.SaveSubjectHashes(ids))
	got, err = store.GetSubjectHashes()
	require.NoError(t, err)
	assert.Equal(t, 3, got[71])
}

func TestLogDownload(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.LogDownload(1, 71, "https://host/a.jpg", "/tmp/a.jpg"))
	require.NoError(t, store.LogDownload(1, 71, "https://host/b.jpg", "/tmp/b.jpg"))
	require.NoError(t, store.LogDownload(2, 73, "https://host/d.jpg", "/tmp/d.jpg"))

	// logging the same URL again updates the record instead of duplicating
	require.NoError(t, store.LogDownload(1, 71, "https://host/a.jpg", "/tmp/a2.jpg"))

	total, err := store.CountDownloads(0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	workflow1, err := store.CountDownloads(1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), workflow1)
}

func TestClosedStoreErrors(t *testing.T) {
	var ds DataStore
	_, err := ds.GetSubjectHashes()
	require.Error(t, err)
	require.Error(t, ds.SaveSubjectHashes(map[int64]int{1: 1}))
	require.Error(t, ds.LogDownload(1, 1, "u", "p"))
	_, err = ds.CountDownloads(0)
	require.Error(t, err)
}
