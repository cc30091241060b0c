// Package conf defines the application settings and the viper-backed
// loading of them from config files, environment and flags.
package conf

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/kingsdigitallab/zoonyper/internal/errors"
)

// LogSettings controls optional file logging.
type LogSettings struct {
	Enabled    bool   // true to write JSON logs to a file
	Path       string // log file path
	MaxSize    int    // rotation threshold in megabytes
	MaxBackups int    // rotated files to keep
	MaxAge     int    // days to keep rotated files
}

// InputSettings locates the five export files. Either Path points at a
// directory holding all of them under their conventional names, or each
// file is named individually.
type InputSettings struct {
	Path                string // directory containing all five exports
	ClassificationsPath string // classifications CSV export
	SubjectsPath        string // subjects CSV export
	WorkflowsPath       string // workflows CSV export
	CommentsPath        string // comments JSON export
	TagsPath            string // tags JSON export
}

// LoadSettings controls how the exports are interpreted at load time.
type LoadSettings struct {
	RedactUsers bool   // obscure user names with a digest
	TrimPaths   bool   // reduce path-bearing columns to their base name
	DateLayout  string // layout dates are rendered to, Go reference time
}

// DownloadSettings controls the subject media downloader.
type DownloadSettings struct {
	Dir                 string  // download directory
	TimeoutSeconds      int     // per-request timeout
	SleepMinSeconds     int     // lower bound of the polite sleep between subjects
	SleepMaxSeconds     int     // upper bound of the polite sleep between subjects
	RequestsPerSecond   float64 // global request rate limit
	MaxRetries          int     // attempts per URL on transient failure
	OrganizeByWorkflow  bool    // nest downloads under the workflow ID
	OrganizeBySubjectID bool    // nest downloads under the subject ID
}

// SQLiteSettings controls the optional persistence of derived tables.
type SQLiteSettings struct {
	Enabled bool   // true to persist disambiguation results and download log
	Path    string // database file path
}

// OutputSettings controls exports and persistence.
type OutputSettings struct {
	Dir    string // directory CSV exports are written to
	SQLite SQLiteSettings
}

// Settings is the root of the application configuration.
type Settings struct {
	Debug bool // true to enable debug logging

	Log      LogSettings
	Input    InputSettings
	Load     LoadSettings
	Download DownloadSettings
	Output   OutputSettings
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration into a Settings struct and stores it as the
// process-wide instance returned by Setting().
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper sets defaults, config file search paths and reads the config
// file when one exists. A missing config file is not an error.
func initViper() error {
	viper.SetConfigName("zoonyper")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if configDir, err := os.UserConfigDir(); err == nil {
		viper.AddConfigPath(filepath.Join(configDir, "zoonyper"))
	}
	viper.SetEnvPrefix("zoonyper")
	viper.AutomaticEnv()

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// ValidateSettings checks settings for values that cannot work at all.
// Input paths are validated at project construction, not here, because
// several subcommands run without any input files.
func ValidateSettings(settings *Settings) error {
	d := &settings.Download
	if d.SleepMinSeconds < 0 || d.SleepMaxSeconds < d.SleepMinSeconds {
		return errors.Newf("invalid download sleep interval [%d, %d]", d.SleepMinSeconds, d.SleepMaxSeconds).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if d.RequestsPerSecond < 0 {
		return errors.Newf("invalid download rate limit %f", d.RequestsPerSecond).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if settings.Load.DateLayout == "" {
		settings.Load.DateLayout = "2006-01-02"
	}
	return nil
}

// Setting returns the process-wide settings instance, loading it on
// first use. A configuration that cannot be loaded ends the process.
func Setting() *Settings {
	settingsMutex.RLock()
	instance := settingsInstance
	settingsMutex.RUnlock()
	if instance != nil {
		return instance
	}

	instance, err := Load()
	if err != nil {
		log.Fatalf("error loading settings: %v", err)
	}
	return instance
}

// ExportPaths resolves the five export file paths from the input settings.
// When a directory path is given it must contain all five conventional
// file names.
func (in *InputSettings) ExportPaths() (classifications, subjects, workflows, comments, tags string, err error) {
	if in.Path != "" {
		classifications = filepath.Join(in.Path, "classifications.csv")
		subjects = filepath.Join(in.Path, "subjects.csv")
		workflows = filepath.Join(in.Path, "workflows.csv")
		comments = filepath.Join(in.Path, "comments.json")
		tags = filepath.Join(in.Path, "tags.json")
	} else {
		classifications = in.ClassificationsPath
		subjects = in.SubjectsPath
		workflows = in.WorkflowsPath
		comments = in.CommentsPath
		tags = in.TagsPath
	}

	for _, p := range []string{classifications, subjects, workflows, comments, tags} {
		if p == "" {
			return "", "", "", "", "", errors.NewStd(
				"either an input directory or all five export file paths must be provided")
		}
		if _, statErr := os.Stat(p); statErr != nil {
			return "", "", "", "", "", errors.Newf("export file not available: %w", statErr).
				Component("conf").
				Category(errors.CategoryNotFound).
				FileContext(p, 0).
				Build()
		}
	}
	return classifications, subjects, workflows, comments, tags, nil
}

// SaveAs writes the settings to path in YAML form.
func (s *Settings) SaveAs(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("error marshaling settings: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("error creating config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}
