package project

import (
	"sort"
	"strconv"

	"github.com/kingsdigitallab/zoonyper/internal/export"
	"github.com/kingsdigitallab/zoonyper/internal/exports"
)

// ClassificationsTable renders the classification table for export:
// fixed columns first, then the union of metadata columns and the task
// columns, both sorted.
func (p *Project) ClassificationsTable() *export.Table {
	fixed := []string{
		"classification_id", "user_name", "user_ip", "session",
		"user_logged_in", "workflow_id", "workflow_version", "created_at",
		"gold_standard", "expert", "subject_ids", "seconds",
	}

	metaSet := make(map[string]struct{})
	for i := range p.tables.Classifications {
		for key := range p.tables.Classifications[i].Metadata {
			metaSet[key] = struct{}{}
		}
	}
	metaColumns := make([]string, 0, len(metaSet))
	for key := range metaSet {
		metaColumns = append(metaColumns, key)
	}
	sort.Strings(metaColumns)

	taskColumns := p.TaskColumns()

	columns := make([]string, 0, len(fixed)+len(metaColumns)+len(taskColumns))
	columns = append(columns, fixed...)
	columns = append(columns, metaColumns...)
	columns = append(columns, taskColumns...)

	rows := make([][]string, 0, len(p.tables.Classifications))
	for i := range p.tables.Classifications {
		c := &p.tables.Classifications[i]
		row := make([]string, 0, len(columns))
		row = append(row,
			strconv.FormatInt(c.ID, 10),
			c.UserName,
			c.UserIP,
			c.Session,
			strconv.FormatBool(c.UserLoggedIn),
			strconv.FormatInt(c.WorkflowID, 10),
			c.WorkflowVersion,
			p.formatDate(c.CreatedAt),
			strconv.FormatBool(c.GoldStandard),
			strconv.FormatBool(c.Expert),
			c.SubjectIDs,
			strconv.Itoa(c.Seconds),
		)
		for _, key := range metaColumns {
			row = append(row, c.Metadata[key])
		}
		for _, task := range taskColumns {
			row = append(row, exports.FlattenValue(c.Annotations[task]))
		}
		rows = append(rows, row)
	}

	return &export.Table{Columns: columns, Rows: rows}
}

// AnnotationsFlattenedTable renders the minimal annotations table for
// export.
func (p *Project) AnnotationsFlattenedTable() *export.Table {
	taskColumns := p.TaskColumns()
	columns := append([]string{
		"classification_id", "workflow_id", "workflow_version", "subject_ids",
	}, taskColumns...)

	flat := p.AnnotationsFlattened()
	rows := make([][]string, 0, len(flat))
	for i := range flat {
		row := make([]string, 0, len(columns))
		row = append(row,
			strconv.FormatInt(flat[i].ClassificationID, 10),
			strconv.FormatInt(flat[i].WorkflowID, 10),
			flat[i].WorkflowVersion,
			flat[i].SubjectIDs,
		)
		for _, task := range taskColumns {
			row = append(row, flat[i].Tasks[task])
		}
		rows = append(rows, row)
	}
	return &export.Table{Columns: columns, Rows: rows}
}

// SubjectsTable renders the subject table for export, including the
// disambiguated ID column when disambiguation has run.
func (p *Project) SubjectsTable() *export.Table {
	columns := []string{
		"subject_id", "workflow_id", "subject_set_id", "locations",
		"created_at", "updated_at", "retired_at", "retirement_reason",
		"seen_before",
	}
	if p.AreSubjectsDisambiguated() {
		columns = append([]string{"subject_id_disambiguated"}, columns...)
	}

	rows := make([][]string, 0, len(p.tables.Subjects))
	for i := range p.tables.Subjects {
		s := &p.tables.Subjects[i]
		row := make([]string, 0, len(columns))
		if p.AreSubjectsDisambiguated() {
			row = append(row, strconv.Itoa(s.DisambiguatedID))
		}
		row = append(row,
			strconv.FormatInt(s.ID, 10),
			strconv.FormatInt(s.WorkflowID, 10),
			strconv.FormatInt(s.SubjectSetID, 10),
			joinLocations(s.Locations),
			p.formatDate(s.CreatedAt),
			p.formatDate(s.UpdatedAt),
			p.formatDate(s.RetiredAt),
			s.RetirementReason,
			strconv.FormatBool(s.SeenBefore),
		)
		rows = append(rows, row)
	}
	return &export.Table{Columns: columns, Rows: rows}
}

func joinLocations(locations []string) string {
	out := ""
	for i, url := range locations {
		if i > 0 {
			out += ";"
		}
		out += url
	}
	return out
}
