// Package cmd assembles the command line interface.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kingsdigitallab/zoonyper/cmd/disambiguate"
	"github.com/kingsdigitallab/zoonyper/cmd/download"
	"github.com/kingsdigitallab/zoonyper/cmd/export"
	"github.com/kingsdigitallab/zoonyper/cmd/load"
	"github.com/kingsdigitallab/zoonyper/internal/conf"
	"github.com/kingsdigitallab/zoonyper/internal/logging"
)

// RootCommand creates and returns the root command.
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "zoonyper",
		Short: "Work with Zooniverse project exports",
		Long:  "Load Zooniverse export files into queryable tables, download subject media, disambiguate subjects by file content and export flat CSV tables.",
	}

	setupFlags(rootCmd, settings)

	subcommands := []*cobra.Command{
		load.Command(settings),
		download.Command(settings),
		disambiguate.Command(settings),
		export.Command(settings),
	}

	rootCmd.AddCommand(subcommands...)

	var closeFileLog func() error

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Flags write straight into the settings struct; re-unmarshaling
		// viper here would clobber subcommand flags without a viper
		// binding.
		level := slog.LevelInfo
		if settings.Debug {
			level = slog.LevelDebug
		}
		logging.Init(level)

		if settings.Log.Enabled {
			fileLogger, closer, err := logging.NewFileLogger(settings.Log.Path, "zoonyper", level, logging.FileRotation{
				MaxSizeMB:  settings.Log.MaxSize,
				MaxBackups: settings.Log.MaxBackups,
				MaxAgeDays: settings.Log.MaxAge,
			})
			if err != nil {
				return fmt.Errorf("error opening log file: %w", err)
			}
			slog.SetDefault(fileLogger)
			closeFileLog = closer
		}
		return nil
	}

	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if closeFileLog != nil {
			return closeFileLog()
		}
		return nil
	}

	return rootCmd
}

// setupFlags defines the flags shared by every subcommand.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVarP(&settings.Input.Path, "input", "i", viper.GetString("input.path"), "Directory containing the five export files")
	rootCmd.PersistentFlags().BoolVar(&settings.Load.RedactUsers, "redact-users", viper.GetBool("load.redactusers"), "Obscure user names with a digest")
	rootCmd.PersistentFlags().BoolVar(&settings.Load.TrimPaths, "trim-paths", viper.GetBool("load.trimpaths"), "Reduce path-bearing metadata values to their base name")

	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		logging.Error("error binding debug flag", "error", err)
	}
	if err := viper.BindPFlag("input.path", rootCmd.PersistentFlags().Lookup("input")); err != nil {
		logging.Error("error binding input flag", "error", err)
	}
	if err := viper.BindPFlag("load.redactusers", rootCmd.PersistentFlags().Lookup("redact-users")); err != nil {
		logging.Error("error binding redact-users flag", "error", err)
	}
	if err := viper.BindPFlag("load.trimpaths", rootCmd.PersistentFlags().Lookup("trim-paths")); err != nil {
		logging.Error("error binding trim-paths flag", "error", err)
	}
}
