package datastore

import (
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kingsdigitallab/zoonyper/internal/conf"
	"github.com/kingsdigitallab/zoonyper/internal/errors"
)

// SQLiteStore implements Interface over a SQLite database file.
type SQLiteStore struct {
	DataStore
	Settings *conf.SQLiteSettings
}

// NewSQLite returns a SQLite-backed store for the given settings.
func NewSQLite(settings *conf.SQLiteSettings) *SQLiteStore {
	return &SQLiteStore{Settings: settings}
}

// Open sets up the SQLite database connection and migrates the schema.
func (store *SQLiteStore) Open() error {
	if store.Settings == nil || store.Settings.Path == "" {
		return errors.NewStd("sqlite database path is not configured")
	}

	if dir := filepath.Dir(store.Settings.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Newf("failed to create database directory: %w", err).
				Component("datastore").
				Category(errors.CategoryFileIO).
				FileContext(dir, 0).
				Build()
		}
	}

	db, err := gorm.Open(sqlite.Open(store.Settings.Path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return errors.Newf("failed to open SQLite database: %w", err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			FileContext(store.Settings.Path, 0).
			Build()
	}

	sqlDB, err := db.DB()
	if err == nil {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	store.DB = db
	return performAutoMigration(db)
}
