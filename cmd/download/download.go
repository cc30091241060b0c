// Package download implements the subcommand that fetches subject media.
package download

import (
	"github.com/spf13/cobra"

	"github.com/kingsdigitallab/zoonyper/internal/conf"
	"github.com/kingsdigitallab/zoonyper/internal/datastore"
	"github.com/kingsdigitallab/zoonyper/internal/downloader"
	"github.com/kingsdigitallab/zoonyper/internal/logging"
	"github.com/kingsdigitallab/zoonyper/internal/project"
)

// Command creates the download subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	var workflowID int64

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download the media files of every subject",
		Long:  "Download subject media into the download directory, skipping files that are already present. Downloads are rate limited and a randomized sleep is inserted between subjects.",
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := project.New(settings)
			if err != nil {
				return err
			}

			dl := downloader.New(&settings.Download)

			if settings.Output.SQLite.Enabled {
				store := datastore.NewSQLite(&settings.Output.SQLite)
				if err := store.Open(); err != nil {
					return err
				}
				defer func() {
					if err := store.Close(); err != nil {
						logging.Error("error closing datastore", "error", err)
					}
				}()
				dl.SetDownloadLog(store)
			}

			if workflowID != 0 {
				return dl.DownloadWorkflow(cmd.Context(), proj, workflowID)
			}
			return dl.DownloadAll(cmd.Context(), proj)
		},
	}

	setupFlags(cmd, settings)
	cmd.Flags().Int64VarP(&workflowID, "workflow", "w", 0, "Only download subjects of this workflow")

	return cmd
}

// setupFlags defines flags specific to the download command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) {
	cmd.Flags().StringVarP(&settings.Download.Dir, "dir", "o", settings.Download.Dir, "Directory downloads are written to")
	cmd.Flags().Float64Var(&settings.Download.RequestsPerSecond, "rate", settings.Download.RequestsPerSecond, "Maximum requests per second")
	cmd.Flags().IntVar(&settings.Download.MaxRetries, "retries", settings.Download.MaxRetries, "Attempts per URL on transient failure")
}
