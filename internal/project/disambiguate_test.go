package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeMedia fills a download directory with the media files the test
// project expects. c.jpg and d.jpg carry identical content, so subjects
// 72 and 73 are the same underlying media.
func writeMedia(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"a.jpg": "content-a",
		"b.jpg": "content-b",
		"c.jpg": "content-shared",
		"d.jpg": "content-shared",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestDisambiguateSubjects(t *testing.T) {
	p := testProject()
	dir := writeMedia(t)

	_, err := p.GetDisambiguatedID(71)
	require.Error(t, err, "asking before disambiguation is an error")

	require.NoError(t, p.DisambiguateSubjects(dir))
	assert.True(t, p.AreSubjectsDisambiguated())

	id71, err := p.GetDisambiguatedID(71)
	require.NoError(t, err)
	id72, err := p.GetDisambiguatedID(72)
	require.NoError(t, err)
	id73, err := p.GetDisambiguatedID(73)
	require.NoError(t, err)

	assert.Equal(t, id72, id73, "subjects with identical media share an ID")
	assert.NotEqual(t, id71, id72)
	assert.Contains(t, []int{1, 2}, id71, "IDs are dense, starting at 1")
	assert.Contains(t, []int{1, 2}, id72)

	// unknown subjects come back as zero, not an error
	id, err := p.GetDisambiguatedID(999)
	require.NoError(t, err)
	assert.Zero(t, id)

	// running again is a no-op
	require.NoError(t, p.DisambiguateSubjects(dir))
}

func TestDisambiguateSubjectsMissingFile(t *testing.T) {
	p := testProject()
	dir := writeMedia(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "d.jpg")))

	err := p.DisambiguateSubjects(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run the download first")
}

func TestDisambiguateSubjectsBadDir(t *testing.T) {
	p := testProject()

	require.Error(t, p.DisambiguateSubjects(""))
	require.Error(t, p.DisambiguateSubjects(filepath.Join(t.TempDir(), "missing")))
}

func TestDisambiguatedIDsRoundTrip(t *testing.T) {
	p := testProject()
	dir := writeMedia(t)

	assert.Nil(t, p.DisambiguatedIDs(), "empty until disambiguation has run")

	require.NoError(t, p.DisambiguateSubjects(dir))
	ids := p.DisambiguatedIDs()
	require.Len(t, ids, 3)

	// a fresh project restores the persisted mapping without re-hashing
	restored := testProject()
	restored.RestoreDisambiguatedIDs(ids)
	assert.True(t, restored.AreSubjectsDisambiguated())

	id72, err := restored.GetDisambiguatedID(72)
	require.NoError(t, err)
	assert.Equal(t, ids[72], id72)
}

func TestRestoreDisambiguatedIDsPartial(t *testing.T) {
	p := testProject()

	p.RestoreDisambiguatedIDs(map[int64]int{71: 1})
	assert.False(t, p.AreSubjectsDisambiguated(),
		"a mapping that does not cover every subject does not mark the project disambiguated")
}
