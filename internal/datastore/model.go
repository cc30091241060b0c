// Package datastore persists derived project state (disambiguation
// results and the download log) so repeated runs resume cheaply.
package datastore

import "time"

// SubjectHash records the disambiguation outcome of one subject.
type SubjectHash struct {
	SubjectID       int64  `gorm:"column:subject_id;primaryKey"`
	DisambiguatedID int    `gorm:"column:disambiguated_id;index"`
	UpdatedAt       time.Time
}

// DownloadRecord records one fetched media file.
type DownloadRecord struct {
	ID           uint   `gorm:"column:id;primaryKey;autoIncrement"`
	WorkflowID   int64  `gorm:"column:workflow_id;index"`
	SubjectID    int64  `gorm:"column:subject_id;index"`
	URL          string `gorm:"column:url;uniqueIndex"`
	FilePath     string `gorm:"column:file_path"`
	DownloadedAt time.Time
}
