package project

import (
	"path/filepath"
	"strconv"
)

// DownloadLayout controls how downloaded media is nested inside the
// download directory.
type DownloadLayout struct {
	ByWorkflow  bool // nest under the workflow ID
	BySubjectID bool // nest under the subject ID
}

// SubjectDir returns the directory a subject's media lands in under the
// layout.
func (l DownloadLayout) SubjectDir(downloadDir string, workflowID, subjectID int64) string {
	dir := downloadDir
	if l.ByWorkflow {
		dir = filepath.Join(dir, strconv.FormatInt(workflowID, 10))
	}
	if l.BySubjectID {
		dir = filepath.Join(dir, strconv.FormatInt(subjectID, 10))
	}
	return dir
}

// SubjectPaths returns the on-disk path every subject media file is
// expected at under the download layout, in subject table order.
func (p *Project) SubjectPaths(downloadDir string, layout DownloadLayout) []string {
	var paths []string
	for i := range p.tables.Subjects {
		s := &p.tables.Subjects[i]
		dir := layout.SubjectDir(downloadDir, s.WorkflowID, s.ID)
		for _, url := range s.Locations {
			paths = append(paths, filepath.Join(dir, urlFileName(url)))
		}
	}
	return paths
}

// urlFileName returns the final path segment of a media URL.
func urlFileName(url string) string {
	for i := len(url) - 1; i >= 0; i-- {
		if url[i] == '/' {
			return url[i+1:]
		}
	}
	return url
}
