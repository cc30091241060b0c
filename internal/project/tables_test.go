package project

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassificationsTable(t *testing.T) {
	p := testProject()

	table := p.ClassificationsTable()
	assert.Equal(t, []string{
		"classification_id", "user_name", "user_ip", "session",
		"user_logged_in", "workflow_id", "workflow_version", "created_at",
		"gold_standard", "expert", "subject_ids", "seconds",
		"T0", "T1",
	}, table.Columns)

	require.Len(t, table.Rows, 4)
	first := table.Rows[0]
	assert.Equal(t, "1", first[0])
	assert.Equal(t, "ann", first[1])
	assert.Equal(t, "true", first[4])
	assert.Equal(t, "2021-01-01", first[7])
	assert.Equal(t, "71", first[10])
	assert.Equal(t, "60", first[11])
	assert.Equal(t, "Yes", first[12])
	assert.Equal(t, "", first[13])

	last := table.Rows[3]
	assert.Equal(t, "a|b", last[13])
}

func TestClassificationsTableMetadataColumns(t *testing.T) {
	tables := testTables()
	tables.Classifications[0].Metadata = map[string]string{"viewport.width": "1920"}
	p := NewFromTables(tables, "")

	table := p.ClassificationsTable()
	i := table.ColumnIndex("viewport.width")
	require.GreaterOrEqual(t, i, 0, "metadata keys widen into columns")
	assert.Equal(t, "1920", table.Rows[0][i])
	assert.Equal(t, "", table.Rows[1][i], "rows without the key fill as empty")
}

func TestAnnotationsFlattenedTable(t *testing.T) {
	p := testProject()

	table := p.AnnotationsFlattenedTable()
	assert.Equal(t, []string{
		"classification_id", "workflow_id", "workflow_version", "subject_ids", "T0", "T1",
	}, table.Columns)
	require.Len(t, table.Rows, 4)
	assert.Equal(t, []string{"1", "1", "1.1", "71", "Yes", ""}, table.Rows[0])
	assert.Equal(t, []string{"4", "2", "2.4", "73", "Yes", "a|b"}, table.Rows[3])
}

func TestSubjectsTable(t *testing.T) {
	p := testProject()

	table := p.SubjectsTable()
	assert.Equal(t, "subject_id", table.Columns[0])
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "71", table.Rows[0][0])
	assert.Equal(t, "https://host/a.jpg;https://host/b.jpg", table.Rows[0][3])
}

func TestSubjectsTableDisambiguated(t *testing.T) {
	p := testProject()
	dir := t.TempDir()
	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg"} {
		require.NoError(t, os.WriteFile(dir+"/"+name, []byte(name), 0o644))
	}
	require.NoError(t, p.DisambiguateSubjects(dir))

	table := p.SubjectsTable()
	assert.Equal(t, "subject_id_disambiguated", table.Columns[0])
	assert.Equal(t, "subject_id", table.Columns[1])
	require.Len(t, table.Rows, 3)
	assert.NotEqual(t, "0", table.Rows[0][0])
	assert.Equal(t, "71", table.Rows[0][1])
}
