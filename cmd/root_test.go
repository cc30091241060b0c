package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kingsdigitallab/zoonyper/internal/conf"
)

func testSettings() *conf.Settings {
	return &conf.Settings{
		Load: conf.LoadSettings{DateLayout: "2006-01-02"},
		Download: conf.DownloadSettings{
			Dir:               "downloads",
			TimeoutSeconds:    5,
			SleepMinSeconds:   2,
			SleepMaxSeconds:   5,
			RequestsPerSecond: 1,
			MaxRetries:        3,
		},
		Output: conf.OutputSettings{Dir: "output"},
	}
}

// execute runs the CLI against the given settings. The subcommands all
// fail on the missing input files, which happens after flag parsing and
// the pre-run hook, so the returned error is ignored here.
func execute(settings *conf.Settings, args ...string) {
	root := RootCommand(settings)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	_ = root.Execute()
}

func TestRootFlagsReachSettings(t *testing.T) {
	settings := testSettings()
	execute(settings, "load", "--debug", "--input", "exports")

	assert.True(t, settings.Debug)
	assert.Equal(t, "exports", settings.Input.Path)
}

func TestDownloadFlagsReachSettings(t *testing.T) {
	settings := testSettings()
	execute(settings, "download", "--dir", "media", "--rate", "2.5", "--retries", "7")

	assert.Equal(t, "media", settings.Download.Dir)
	assert.InDelta(t, 2.5, settings.Download.RequestsPerSecond, 0.001)
	assert.Equal(t, 7, settings.Download.MaxRetries)
}

func TestDisambiguateDirFlagReachesSettings(t *testing.T) {
	settings := testSettings()
	execute(settings, "disambiguate", "--dir", "media")

	assert.Equal(t, "media", settings.Download.Dir)
}

func TestExportOutputFlagReachesSettings(t *testing.T) {
	settings := testSettings()
	execute(settings, "export", "--output", "exports")

	assert.Equal(t, "exports", settings.Output.Dir)
}
