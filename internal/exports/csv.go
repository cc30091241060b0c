package exports

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kingsdigitallab/zoonyper/internal/errors"
)

// csvFile is a header-indexed view over a parsed CSV export.
type csvFile struct {
	path    string
	columns map[string]int
	rows    [][]string
}

// readCSV parses the file at path into a header-indexed table. Exports use
// quoted cells holding embedded JSON, which encoding/csv handles as long
// as per-record field counts match the header.
func readCSV(path string) (*csvFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Newf("failed to open export: %w", err).
			Component("exports").
			Category(errors.CategoryFileIO).
			FileContext(path, 0).
			Build()
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.ReuseRecord = false

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Newf("failed to parse export: %w", err).
			Component("exports").
			Category(errors.CategoryFileParsing).
			FileContext(path, 0).
			Build()
	}
	if len(records) == 0 {
		return nil, errors.Newf("export %s has no header row", path).
			Component("exports").
			Category(errors.CategoryFileParsing).
			Build()
	}

	columns := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		columns[strings.TrimSpace(name)] = i
	}

	return &csvFile{path: path, columns: columns, rows: records[1:]}, nil
}

// get returns the named cell of a row, empty string when the column is
// missing from the export.
func (c *csvFile) get(row []string, column string) string {
	i, ok := c.columns[column]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// requireColumns errors when any of the named columns is absent.
func (c *csvFile) requireColumns(names ...string) error {
	for _, name := range names {
		if _, ok := c.columns[name]; !ok {
			return errors.Newf("export %s is missing required column %q", c.path, name).
				Component("exports").
				Category(errors.CategoryFileParsing).
				Build()
		}
	}
	return nil
}

// Tolerant cell conversions. Exports are hand-me-down CSV dumps, so
// unparseable values coerce to the zero value rather than failing a
// whole load.

func parseInt64(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	// Some numeric columns arrive rendered as floats ("1234.0").
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "1", "yes":
		return true
	default:
		return false
	}
}

// dateLayouts are tried in order when interpreting export timestamps.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTime interprets an export timestamp, returning the zero time for
// empty or unparseable values.
func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// flattenJSON renders a decoded JSON value into flat key/value string
// pairs, nesting with dotted keys the way the metadata columns are
// conventionally widened.
func flattenJSON(prefix string, value any, out map[string]string) {
	switch v := value.(type) {
	case map[string]any:
		for key, inner := range v {
			next := key
			if prefix != "" {
				next = prefix + "." + key
			}
			flattenJSON(next, inner, out)
		}
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, scalarString(item))
		}
		out[prefix] = strings.Join(parts, ",")
	case nil:
		out[prefix] = ""
	default:
		out[prefix] = scalarString(v)
	}
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		// Render integral floats without the trailing ".0" JSON numbers
		// decode to.
		if s == float64(int64(s)) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", s)
	}
}

// decodeJSONColumn decodes an embedded JSON cell into a generic value.
// Empty cells decode to nil.
func decodeJSONColumn(cell string) (any, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil, nil
	}
	var value any
	if err := json.Unmarshal([]byte(cell), &value); err != nil {
		return nil, err
	}
	return value, nil
}

// parseLocations interprets the locations JSON column, an object keyed by
// the stringified position ("0", "1", ...), into an ordered URL list.
func parseLocations(cell string) ([]string, error) {
	value, err := decodeJSONColumn(cell)
	if err != nil {
		return nil, err
	}
	obj, ok := value.(map[string]any)
	if !ok {
		if value == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("locations column is not a JSON object")
	}

	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		if errA != nil || errB != nil {
			return keys[i] < keys[j]
		}
		return a < b
	})

	urls := make([]string, 0, len(keys))
	for _, key := range keys {
		urls = append(urls, scalarString(obj[key]))
	}
	return urls, nil
}
