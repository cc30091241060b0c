package project

import (
	"path/filepath"

	"github.com/kingsdigitallab/zoonyper/internal/export"
)

// ExportClassifications writes the classification table to path as CSV.
func (p *Project) ExportClassifications(path string, opts export.Options) error {
	return export.Write(p.ClassificationsTable(), path, opts)
}

// ExportAnnotationsFlattened writes the minimal annotations table to path
// as CSV.
func (p *Project) ExportAnnotationsFlattened(path string, opts export.Options) error {
	return export.Write(p.AnnotationsFlattenedTable(), path, opts)
}

// ExportSubjects writes the subject table to path as CSV.
func (p *Project) ExportSubjects(path string, opts export.Options) error {
	return export.Write(p.SubjectsTable(), path, opts)
}

// ExportObservable writes the tables into dir for the Observable notebook
// platform: camelCase headers, with the task columns split out of the
// classification table into annotations-flattened.csv.
func (p *Project) ExportObservable(dir string) error {
	classifications := p.ClassificationsTable().DropColumns(p.TaskColumns()...)
	if err := export.WriteObservable(classifications, filepath.Join(dir, "classifications.csv")); err != nil {
		return err
	}
	return export.WriteObservable(p.AnnotationsFlattenedTable(), filepath.Join(dir, "annotations-flattened.csv"))
}
