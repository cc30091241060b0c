package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testTable() *Table {
	return &Table{
		Columns: []string{"classification_id", "workflow_id", "user_name"},
		Rows: [][]string{
			{"1", "5000", "ann"},
			{"2", "5000", "ben"},
			{"3", "5001", "ann"},
		},
	}
}

func TestColumnIndex(t *testing.T) {
	table := testTable()
	assert.Equal(t, 0, table.ColumnIndex("classification_id"))
	assert.Equal(t, 2, table.ColumnIndex("user_name"))
	assert.Equal(t, -1, table.ColumnIndex("missing"))
}

func TestDropColumns(t *testing.T) {
	table := testTable().DropColumns("workflow_id", "missing")

	assert.Equal(t, []string{"classification_id", "user_name"}, table.Columns)
	assert.Equal(t, [][]string{{"1", "ann"}, {"2", "ben"}, {"3", "ann"}}, table.Rows)

	// the original is untouched
	assert.Len(t, testTable().Columns, 3)
}

func TestFilterRows(t *testing.T) {
	table := testTable().FilterRows(func(row []string) bool { return row[1] == "5000" })
	assert.Len(t, table.Rows, 2)
	assert.Equal(t, "1", table.Rows[0][0])
}

func TestSingleValueColumns(t *testing.T) {
	table := &Table{
		Columns: []string{"id", "constant", "sparse", "blank"},
		Rows: [][]string{
			{"1", "same", "only", ""},
			{"2", "same", "", ""},
		},
	}

	// a single real value surrounded by blanks still counts, while an
	// all-blank column is kept
	assert.Equal(t, map[string]string{"constant": "same", "sparse": "only"}, table.singleValueColumns())

	empty := &Table{Columns: []string{"id"}}
	assert.Nil(t, empty.singleValueColumns())
}

func TestCamelCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"classification_id", "classificationId"},
		{"user_name", "userName"},
		{"user_ip", "userIP"},
		{"subject_id_disambiguated", "subjectIdDisambiguated"},
		{"gold-standard", "goldStandard"},
		{"T0", "t0"},
		{"seconds", "seconds"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CamelCase(tt.in), "CamelCase(%q)", tt.in)
	}
}
