package project

import (
	"sort"

	"github.com/kingsdigitallab/zoonyper/internal/exports"
)

// FlatAnnotation is one classification stripped down to its identifying
// columns and the per-task answers rendered as flat strings.
type FlatAnnotation struct {
	ClassificationID int64
	WorkflowID       int64
	WorkflowVersion  string
	SubjectIDs       string
	Tasks            map[string]string // task key to flattened answer
}

// TaskColumns returns the sorted task keys ("T0", "T1", ...) present
// anywhere in the classification table.
func (p *Project) TaskColumns() []string {
	return memoized(p, "task_columns", func() []string {
		set := make(map[string]struct{})
		for i := range p.tables.Classifications {
			for task := range p.tables.Classifications[i].Annotations {
				if exports.TaskColumn.MatchString(task) {
					set[task] = struct{}{}
				}
			}
		}
		columns := make([]string, 0, len(set))
		for task := range set {
			columns = append(columns, task)
		}
		sort.Strings(columns)
		return columns
	})
}

// AnnotationsFlattened strips the classifications down to the minimal
// annotation table: workflow ID and version, subject IDs, and every task
// answer flattened to a pipe-joined string.
func (p *Project) AnnotationsFlattened() []FlatAnnotation {
	return memoized(p, "annotations_flattened", func() []FlatAnnotation {
		columns := p.TaskColumns()
		out := make([]FlatAnnotation, 0, len(p.tables.Classifications))
		for i := range p.tables.Classifications {
			c := &p.tables.Classifications[i]
			row := FlatAnnotation{
				ClassificationID: c.ID,
				WorkflowID:       c.WorkflowID,
				WorkflowVersion:  c.WorkflowVersion,
				SubjectIDs:       c.SubjectIDs,
				Tasks:            make(map[string]string, len(columns)),
			}
			for _, task := range columns {
				value, ok := c.Annotations[task]
				if !ok {
					row.Tasks[task] = ""
					continue
				}
				row.Tasks[task] = exports.FlattenValue(value)
			}
			out = append(out, row)
		}
		return out
	})
}
