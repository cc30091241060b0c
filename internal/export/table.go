// Package export writes tabular query results out as CSV, with the
// column pruning and filtering conventions of the original export
// tooling.
package export

import (
	"regexp"
	"strings"
)

// Table is a simple column-ordered table of rendered string cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ColumnIndex returns the position of the named column, -1 when absent.
func (t *Table) ColumnIndex(name string) int {
	for i, column := range t.Columns {
		if column == name {
			return i
		}
	}
	return -1
}

// DropColumns returns a copy of the table without the named columns.
// Unknown names are ignored.
func (t *Table) DropColumns(names ...string) *Table {
	drop := make(map[string]struct{}, len(names))
	for _, name := range names {
		drop[name] = struct{}{}
	}

	keep := make([]int, 0, len(t.Columns))
	columns := make([]string, 0, len(t.Columns))
	for i, column := range t.Columns {
		if _, ok := drop[column]; ok {
			continue
		}
		keep = append(keep, i)
		columns = append(columns, column)
	}

	rows := make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		out := make([]string, len(keep))
		for c, i := range keep {
			if i < len(row) {
				out[c] = row[i]
			}
		}
		rows[r] = out
	}
	return &Table{Columns: columns, Rows: rows}
}

// FilterRows returns a copy of the table keeping only rows the predicate
// accepts.
func (t *Table) FilterRows(keep func(row []string) bool) *Table {
	rows := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		if keep(row) {
			rows = append(rows, row)
		}
	}
	return &Table{Columns: t.Columns, Rows: rows}
}

// singleValueColumns returns the names of columns holding exactly one
// distinct non-empty value across all rows. Blank cells are ignored, so
// a column with one real value plus blanks still counts, while a column
// that is blank throughout does not. Missing cells count as "-".
func (t *Table) singleValueColumns() map[string]string {
	if len(t.Rows) == 0 {
		return nil
	}
	out := make(map[string]string)
	for i, column := range t.Columns {
		distinct := make(map[string]struct{})
		for _, row := range t.Rows {
			value := "-"
			if i < len(row) {
				value = row[i]
			}
			if value == "" {
				continue
			}
			distinct[value] = struct{}{}
			if len(distinct) > 1 {
				break
			}
		}
		if len(distinct) == 1 {
			for value := range distinct {
				out[column] = value
			}
		}
	}
	return out
}

var wordSeparators = regexp.MustCompile(`(_|-)+`)

// CamelCase renders a snake_case or kebab-case column name in camelCase.
// The user_ip column renders as userIP by convention.
func CamelCase(s string) string {
	spaced := wordSeparators.ReplaceAllString(s, " ")
	parts := strings.Fields(spaced)
	for i, part := range parts {
		parts[i] = strings.Title(strings.ToLower(part)) //nolint:staticcheck // ASCII column names only
	}
	joined := strings.Join(parts, "")
	if joined == "" {
		return s
	}
	if joined == "UserIp" {
		joined = "UserIP"
	}
	return strings.ToLower(joined[:1]) + joined[1:]
}
