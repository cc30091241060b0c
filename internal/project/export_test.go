package project

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingsdigitallab/zoonyper/internal/export"
)

func readCSVFile(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestExportClassifications(t *testing.T) {
	p := testProject()
	path := filepath.Join(t.TempDir(), "classifications.csv")

	require.NoError(t, p.ExportClassifications(path, export.Options{FilterWorkflows: []int64{1}}))

	records := readCSVFile(t, path)
	require.Len(t, records, 4, "header plus the three workflow 1 rows")
	assert.Equal(t, "classification_id", records[0][0])
}

func TestExportAnnotationsFlattened(t *testing.T) {
	p := testProject()
	path := filepath.Join(t.TempDir(), "annotations.csv")

	require.NoError(t, p.ExportAnnotationsFlattened(path, export.Options{}))

	records := readCSVFile(t, path)
	require.Len(t, records, 5)
}

func TestExportObservable(t *testing.T) {
	p := testProject()
	dir := t.TempDir()

	require.NoError(t, p.ExportObservable(dir))

	classifications := readCSVFile(t, filepath.Join(dir, "classifications.csv"))
	assert.Equal(t, "classificationId", classifications[0][0])
	assert.NotContains(t, classifications[0], "t0", "task columns are split out")
	assert.NotContains(t, classifications[0], "T0")

	annotations := readCSVFile(t, filepath.Join(dir, "annotations-flattened.csv"))
	assert.Contains(t, annotations[0], "t0")
	require.Len(t, annotations, 5)
}
