package exports

import (
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kingsdigitallab/zoonyper/internal/errors"
	"github.com/kingsdigitallab/zoonyper/internal/logging"
)

// anonymousMarker appears in the user_name column of classification events
// recorded without a login; such rows carry a session token instead.
const anonymousMarker = "not-logged-in"

// oversizeCellBytes is the cell size beyond which a loaded table triggers
// a warning, since downstream tooling chokes on multi-kilobyte cells.
const oversizeCellBytes = 10000

// Options controls how the export files are interpreted.
type Options struct {
	RedactUsers bool // obscure user names with a SHA-256 digest
	TrimPaths   bool // reduce path-valued metadata to the base file name
}

// Paths names the five export files of a project.
type Paths struct {
	Classifications string
	Subjects        string
	Workflows       string
	Comments        string
	Tags            string
}

// LoadTables loads all five export files and derives the board and
// discussion tables. Tables are immutable once returned.
func LoadTables(paths Paths, opts Options) (*Tables, error) {
	logger := logging.ForService("exports")
	logger.Info("loading all export tables")

	logger.Info("loading table", "table", "classifications", "file", filepath.Base(paths.Classifications))
	classifications, err := LoadClassifications(paths.Classifications, opts)
	if err != nil {
		return nil, err
	}

	logger.Info("loading table", "table", "subjects", "file", filepath.Base(paths.Subjects))
	subjects, err := LoadSubjects(paths.Subjects, opts)
	if err != nil {
		return nil, err
	}

	logger.Info("loading table", "table", "workflows", "file", filepath.Base(paths.Workflows))
	workflows, err := LoadWorkflows(paths.Workflows)
	if err != nil {
		return nil, err
	}

	logger.Info("loading table", "table", "comments", "file", filepath.Base(paths.Comments))
	comments, boards, discussions, err := LoadComments(paths.Comments)
	if err != nil {
		return nil, err
	}

	logger.Info("loading table", "table", "tags", "file", filepath.Base(paths.Tags))
	tags, err := LoadTags(paths.Tags, comments)
	if err != nil {
		return nil, err
	}

	tables := &Tables{
		Classifications: classifications,
		Subjects:        subjects,
		Workflows:       workflows,
		Comments:        comments,
		Tags:            tags,
		Boards:          boards,
		Discussions:     discussions,
	}
	warnOversizeCells(tables, logger)
	return tables, nil
}

// LoadClassifications loads the classifications CSV export. The embedded
// metadata and annotations JSON columns are decoded per row, per-task
// answers are widened into the Annotations map, the classification
// duration is derived from the metadata timing keys, and identifying
// columns are redacted and shortened.
func LoadClassifications(path string, opts Options) ([]Classification, error) {
	file, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if err := file.requireColumns("classification_id", "user_name", "workflow_id", "annotations"); err != nil {
		return nil, err
	}

	redactor := NewRedactor()
	rows := make([]Classification, 0, len(file.rows))

	for _, record := range file.rows {
		userName := file.get(record, "user_name")

		c := Classification{
			ID:              parseInt64(file.get(record, "classification_id")),
			UserName:        userName,
			UserIP:          file.get(record, "user_ip"),
			UserLoggedIn:    userName != "" && !strings.Contains(userName, anonymousMarker),
			WorkflowID:      parseInt64(file.get(record, "workflow_id")),
			WorkflowVersion: file.get(record, "workflow_version"),
			CreatedAt:       parseTime(file.get(record, "created_at")),
			GoldStandard:    parseBool(file.get(record, "gold_standard")),
			Expert:          parseBool(file.get(record, "expert")),
			SubjectIDs:      file.get(record, "subject_ids"),
		}

		metadata, err := decodeJSONColumn(file.get(record, "metadata"))
		if err != nil {
			return nil, errors.Newf("classification %d has invalid metadata: %w", c.ID, err).
				Component("exports").
				Category(errors.CategoryFileParsing).
				Build()
		}
		c.Metadata = make(map[string]string)
		flattenJSON("", metadata, c.Metadata)
		delete(c.Metadata, "")

		c.Seconds = timingSeconds(c.Metadata)
		c.Session = c.Metadata["session"]
		delete(c.Metadata, "session")

		annotations, err := decodeJSONColumn(file.get(record, "annotations"))
		if err != nil {
			return nil, errors.Newf("classification %d has invalid annotations: %w", c.ID, err).
				Component("exports").
				Category(errors.CategoryFileParsing).
				Build()
		}
		c.Annotations = ExtractAnnotations(annotations)

		if opts.RedactUsers {
			c.UserName = redactor.Redact(c.UserName)
		}

		rows = append(rows, c)
	}

	shortenIdentifiers(rows)
	return rows, nil
}

// timingSeconds derives the classification duration from the metadata
// started_at/finished_at pair, consuming the keys. Returns 0 when either
// end is missing or unparseable.
func timingSeconds(metadata map[string]string) int {
	started := parseTime(metadata["started_at"])
	finished := parseTime(metadata["finished_at"])
	delete(metadata, "started_at")
	delete(metadata, "finished_at")

	if started.IsZero() || finished.IsZero() || finished.Before(started) {
		return 0
	}
	return int(finished.Sub(started) / time.Second)
}

// shortenIdentifiers truncates the user name, IP and session columns to
// minimal unique prefixes across the whole table.
func shortenIdentifiers(rows []Classification) {
	names := make([]string, len(rows))
	ips := make([]string, len(rows))
	sessions := make([]string, len(rows))
	for i := range rows {
		names[i] = rows[i].UserName
		ips[i] = rows[i].UserIP
		sessions[i] = rows[i].Session
	}

	names = ShortenColumn(names)
	ips = ShortenColumn(ips)
	sessions = ShortenColumn(sessions)

	for i := range rows {
		rows[i].UserName = names[i]
		rows[i].UserIP = ips[i]
		rows[i].Session = sessions[i]
	}
}

// LoadSubjects loads the subjects CSV export. Metadata is widened into
// flat columns and the locations column becomes an ordered URL list. The
// project_id column is dropped.
func LoadSubjects(path string, opts Options) ([]Subject, error) {
	file, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if err := file.requireColumns("subject_id", "locations"); err != nil {
		return nil, err
	}

	rows := make([]Subject, 0, len(file.rows))
	for _, record := range file.rows {
		s := Subject{
			ID:               parseInt64(file.get(record, "subject_id")),
			WorkflowID:       parseInt64(file.get(record, "workflow_id")),
			SubjectSetID:     parseInt64(file.get(record, "subject_set_id")),
			CreatedAt:        parseTime(file.get(record, "created_at")),
			UpdatedAt:        parseTime(file.get(record, "updated_at")),
			RetiredAt:        parseTime(file.get(record, "retired_at")),
			RetirementReason: file.get(record, "retirement_reason"),
			SeenBefore:       parseBool(file.get(record, "seen_before")),
		}

		locations, err := parseLocations(file.get(record, "locations"))
		if err != nil {
			return nil, errors.Newf("subject %d has invalid locations: %w", s.ID, err).
				Component("exports").
				Category(errors.CategoryFileParsing).
				Build()
		}
		s.Locations = locations

		metadata, err := decodeJSONColumn(file.get(record, "metadata"))
		if err != nil {
			return nil, errors.Newf("subject %d has invalid metadata: %w", s.ID, err).
				Component("exports").
				Category(errors.CategoryFileParsing).
				Build()
		}
		s.Metadata = make(map[string]string)
		flattenJSON("", metadata, s.Metadata)
		delete(s.Metadata, "")

		if opts.TrimPaths {
			trimPathValues(s.Metadata)
		}

		rows = append(rows, s)
	}
	return rows, nil
}

// trimPathValues reduces metadata values that look like local file paths
// to their base name. URLs are left alone.
func trimPathValues(metadata map[string]string) {
	for key, value := range metadata {
		if strings.Contains(value, "://") {
			continue
		}
		if strings.ContainsAny(value, `/\`) {
			metadata[key] = filepath.Base(filepath.FromSlash(value))
		}
	}
}

// LoadWorkflows loads the workflows CSV export. Missing first_task and
// tutorial_subject_id values fill as empty strings.
func LoadWorkflows(path string) ([]Workflow, error) {
	file, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if err := file.requireColumns("workflow_id"); err != nil {
		return nil, err
	}

	rows := make([]Workflow, 0, len(file.rows))
	for _, record := range file.rows {
		rows = append(rows, Workflow{
			ID:                parseInt64(file.get(record, "workflow_id")),
			DisplayName:       file.get(record, "display_name"),
			Version:           file.get(record, "version"),
			Active:            parseBool(file.get(record, "active")),
			FirstTask:         file.get(record, "first_task"),
			TutorialSubjectID: file.get(record, "tutorial_subject_id"),
		})
	}
	return rows, nil
}

// warnOversizeCells scans the loaded tables for cells over the size
// threshold and names the offending columns, one warning per table.
func warnOversizeCells(tables *Tables, logger *slog.Logger) {
	type cell struct {
		table  string
		column string
		value  string
	}

	oversize := make(map[string]map[string]int)
	note := func(c cell) {
		if len(c.value) <= oversizeCellBytes {
			return
		}
		if oversize[c.table] == nil {
			oversize[c.table] = make(map[string]int)
		}
		oversize[c.table][c.column]++
	}

	for i := range tables.Classifications {
		c := &tables.Classifications[i]
		for key, value := range c.Metadata {
			note(cell{"classifications", "metadata." + key, value})
		}
		for task, value := range c.Annotations {
			note(cell{"classifications", task, FlattenValue(value)})
		}
	}
	for i := range tables.Subjects {
		for key, value := range tables.Subjects[i].Metadata {
			note(cell{"subjects", "metadata." + key, value})
		}
	}
	for i := range tables.Comments {
		note(cell{"comments", "body", tables.Comments[i].Body})
	}

	for table, columns := range oversize {
		names := make([]string, 0, len(columns))
		total := 0
		for column, count := range columns {
			names = append(names, column)
			total += count
		}
		sort.Strings(names)
		logger.Warn("table has cells over 10kB",
			"table", table,
			"rows", total,
			"columns", strings.Join(names, ", "))
	}
}
