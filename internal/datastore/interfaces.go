package datastore

import (
	"time"

	"gorm.io/gorm"

	"github.com/kingsdigitallab/zoonyper/internal/errors"
)

// Interface abstracts the persistence of derived project state.
type Interface interface {
	Open() error
	Close() error
	SaveSubjectHashes(ids map[int64]int) error
	GetSubjectHashes() (map[int64]int, error)
	LogDownload(workflowID, subjectID int64, url, path string) error
	CountDownloads(workflowID int64) (int64, error)
}

// DataStore implements Interface over a gorm database handle. The
// concrete stores embed it and provide Open.
type DataStore struct {
	DB *gorm.DB
}

// Close closes the underlying database connection.
func (ds *DataStore) Close() error {
	if ds.DB == nil {
		return nil
	}
	sqlDB, err := ds.DB.DB()
	if err != nil {
		return errors.Newf("failed to access database handle: %w", err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return sqlDB.Close()
}

// SaveSubjectHashes upserts the subject-to-disambiguated-ID mapping.
func (ds *DataStore) SaveSubjectHashes(ids map[int64]int) error {
	if ds.DB == nil {
		return errors.NewStd("database connection is not initialized")
	}
	now := time.Now()
	return ds.DB.Transaction(func(tx *gorm.DB) error {
		for subjectID, disambiguatedID := range ids {
			record := SubjectHash{
				SubjectID:       subjectID,
				DisambiguatedID: disambiguatedID,
				UpdatedAt:       now,
			}
			if err := tx.Save(&record).Error; err != nil {
				return errors.Newf("failed to save subject hash: %w", err).
					Component("datastore").
					Category(errors.CategoryDatabase).
					Context("subject_id", subjectID).
					Build()
			}
		}
		return nil
	})
}

// GetSubjectHashes returns the persisted subject-to-disambiguated-ID
// mapping, empty when disambiguation has never been persisted.
func (ds *DataStore) GetSubjectHashes() (map[int64]int, error) {
	if ds.DB == nil {
		return nil, errors.NewStd("database connection is not initialized")
	}
	var records []SubjectHash
	if err := ds.DB.Find(&records).Error; err != nil {
		return nil, errors.Newf("failed to load subject hashes: %w", err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	out := make(map[int64]int, len(records))
	for i := range records {
		out[records[i].SubjectID] = records[i].DisambiguatedID
	}
	return out, nil
}

// LogDownload records a fetched media file. Re-downloading the same URL
// updates the existing record.
func (ds *DataStore) LogDownload(workflowID, subjectID int64, url, path string) error {
	if ds.DB == nil {
		return errors.NewStd("database connection is not initialized")
	}
	record := DownloadRecord{
		WorkflowID:   workflowID,
		SubjectID:    subjectID,
		URL:          url,
		FilePath:     path,
		DownloadedAt: time.Now(),
	}
	err := ds.DB.Where(DownloadRecord{URL: url}).
		Assign(record).
		FirstOrCreate(&DownloadRecord{}).Error
	if err != nil {
		return errors.Newf("failed to log download: %w", err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("url", url).
			Build()
	}
	return nil
}

// CountDownloads returns how many media files have been recorded for the
// workflow; workflowID 0 counts across the project.
func (ds *DataStore) CountDownloads(workflowID int64) (int64, error) {
	if ds.DB == nil {
		return 0, errors.NewStd("database connection is not initialized")
	}
	query := ds.DB.Model(&DownloadRecord{})
	if workflowID != 0 {
		query = query.Where("workflow_id = ?", workflowID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, errors.Newf("failed to count downloads: %w", err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return count, nil
}

// performAutoMigration migrates the schema for the derived-state tables.
func performAutoMigration(db *gorm.DB) error {
	if err := db.AutoMigrate(&SubjectHash{}, &DownloadRecord{}); err != nil {
		return errors.Newf("failed to auto-migrate schema: %w", err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return nil
}
