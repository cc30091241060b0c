// Package disambiguate implements the subcommand that resolves subjects
// uploaded more than once to shared disambiguated identifiers.
package disambiguate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kingsdigitallab/zoonyper/internal/conf"
	"github.com/kingsdigitallab/zoonyper/internal/datastore"
	"github.com/kingsdigitallab/zoonyper/internal/logging"
	"github.com/kingsdigitallab/zoonyper/internal/project"
)

// Command creates the disambiguate subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disambiguate",
		Short: "Assign shared identifiers to subjects with identical media",
		Long:  "Hash every downloaded media file and assign the same disambiguated identifier to subjects whose files have identical content. Requires a completed download.",
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := project.New(settings)
			if err != nil {
				return err
			}
			return run(cmd, proj, settings)
		},
	}

	cmd.Flags().StringVarP(&settings.Download.Dir, "dir", "o", settings.Download.Dir, "Directory holding the downloaded media")

	return cmd
}

func run(cmd *cobra.Command, proj *project.Project, settings *conf.Settings) error {
	var store *datastore.SQLiteStore
	if settings.Output.SQLite.Enabled {
		store = datastore.NewSQLite(&settings.Output.SQLite)
		if err := store.Open(); err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				logging.Error("error closing datastore", "error", err)
			}
		}()

		// A prior run may already have the identifiers on record.
		ids, err := store.GetSubjectHashes()
		if err != nil {
			return err
		}
		if len(ids) > 0 {
			proj.RestoreDisambiguatedIDs(ids)
			fmt.Fprintf(cmd.OutOrStdout(), "restored %d disambiguated subjects from the datastore\n", len(ids))
			return nil
		}
	}

	if err := proj.DisambiguateSubjects(settings.Download.Dir); err != nil {
		return err
	}

	ids := proj.DisambiguatedIDs()
	fmt.Fprintf(cmd.OutOrStdout(), "disambiguated %d subjects\n", len(ids))

	if store != nil {
		if err := store.SaveSubjectHashes(ids); err != nil {
			return err
		}
	}
	return nil
}
