package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/kingsdigitallab/zoonyper/internal/errors"
	"github.com/kingsdigitallab/zoonyper/internal/logging"
)

// MaxSizeObservable is the output size limit of the Observable notebook
// platform; larger exports trigger a warning.
const MaxSizeObservable = 50_000_000

// Options controls an export.
type Options struct {
	FilterWorkflows []int64  // keep only rows of these workflows
	DropColumns     []string // drop these columns before writing
}

// Write exports the table to path as CSV. Rows are filtered by workflow
// when requested, requested columns are dropped, and any column left
// holding a single distinct value is removed to save space (logged).
func Write(t *Table, path string, opts Options) error {
	logger := logging.ForService("export")
	out := t

	if len(opts.FilterWorkflows) > 0 {
		i := out.ColumnIndex("workflow_id")
		if i >= 0 {
			keep := make(map[string]struct{}, len(opts.FilterWorkflows))
			for _, id := range opts.FilterWorkflows {
				keep[strconv.FormatInt(id, 10)] = struct{}{}
			}
			out = out.FilterRows(func(row []string) bool {
				if i >= len(row) {
					return false
				}
				_, ok := keep[row[i]]
				return ok
			})
		}
	}

	if len(opts.DropColumns) > 0 {
		out = out.DropColumns(opts.DropColumns...)
	}

	for column, value := range out.singleValueColumns() {
		logger.Info("column holds a single value and will not be exported, to save space",
			"column", column,
			"value", value)
		out = out.DropColumns(column)
	}

	return writeCSV(out, path)
}

// WriteObservable exports the table with camelCase headers, for the
// Observable notebook platform, and warns when the output exceeds the
// platform's size limit.
func WriteObservable(t *Table, path string) error {
	logger := logging.ForService("export")

	renamed := &Table{Columns: make([]string, len(t.Columns)), Rows: t.Rows}
	for i, column := range t.Columns {
		renamed.Columns[i] = CamelCase(column)
	}

	if err := writeCSV(renamed, path); err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err == nil && info.Size() > MaxSizeObservable {
		logger.Warn("export exceeds the platform size limit",
			"file", filepath.Base(path),
			"size_mb", info.Size()/1000/1000,
			"limit_mb", MaxSizeObservable/1000/1000)
	}
	return nil
}

// writeCSV writes the table to path, creating parent directories.
func writeCSV(t *Table, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Newf("failed to create export directory: %w", err).
				Component("export").
				Category(errors.CategoryFileIO).
				FileContext(dir, 0).
				Build()
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Newf("failed to create export file: %w", err).
			Component("export").
			Category(errors.CategoryFileIO).
			FileContext(path, 0).
			Build()
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		return errors.Newf("failed to write export header: %w", err).
			Component("export").
			Category(errors.CategoryExport).
			Build()
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return errors.Newf("failed to write export row: %w", err).
				Component("export").
				Category(errors.CategoryExport).
				Build()
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Newf("failed to flush export: %w", err).
			Component("export").
			Category(errors.CategoryExport).
			Build()
	}
	return nil
}
