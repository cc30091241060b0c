// Package export implements the subcommand that writes the loaded
// tables out as flat CSV files.
package export

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kingsdigitallab/zoonyper/internal/conf"
	"github.com/kingsdigitallab/zoonyper/internal/datastore"
	"github.com/kingsdigitallab/zoonyper/internal/errors"
	"github.com/kingsdigitallab/zoonyper/internal/export"
	"github.com/kingsdigitallab/zoonyper/internal/logging"
	"github.com/kingsdigitallab/zoonyper/internal/project"
)

// Command creates the export subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	var (
		table      string
		observable bool
		workflows  []int64
		drop       []string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the project tables as CSV files",
		Long:  "Write the classifications, flattened annotations or subjects table as a CSV file. The observable form renames the columns to camel case for notebook use.",
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := project.New(settings)
			if err != nil {
				return err
			}

			if settings.Output.SQLite.Enabled {
				if err := restoreDisambiguation(proj, settings); err != nil {
					return err
				}
			}

			opts := export.Options{FilterWorkflows: workflows, DropColumns: drop}
			return run(cmd, proj, settings, table, observable, opts)
		},
	}

	cmd.Flags().StringVarP(&table, "table", "t", "classifications", "Table to export: classifications, annotations, subjects or all")
	cmd.Flags().BoolVar(&observable, "observable", false, "Rename columns to camel case for notebook use")
	cmd.Flags().Int64SliceVarP(&workflows, "workflow", "w", nil, "Only export rows of these workflows")
	cmd.Flags().StringSliceVar(&drop, "drop", nil, "Columns to leave out of the export")
	cmd.Flags().StringVarP(&settings.Output.Dir, "output", "o", settings.Output.Dir, "Directory exports are written to")

	return cmd
}

func run(cmd *cobra.Command, proj *project.Project, settings *conf.Settings, table string, observable bool, opts export.Options) error {
	if observable && table == "all" {
		if err := proj.ExportObservable(settings.Output.Dir); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote notebook tables to %s\n", settings.Output.Dir)
		return nil
	}

	tables := map[string]func() *export.Table{
		"classifications": proj.ClassificationsTable,
		"annotations":     proj.AnnotationsFlattenedTable,
		"subjects":        proj.SubjectsTable,
	}

	names := []string{table}
	if table == "all" {
		names = []string{"classifications", "annotations", "subjects"}
	}

	for _, name := range names {
		build, ok := tables[name]
		if !ok {
			return errors.Newf("unknown table %q", name).
				Component("export").
				Category(errors.CategoryValidation).
				Build()
		}

		path := filepath.Join(settings.Output.Dir, name+".csv")
		var err error
		if observable {
			t := build().DropColumns(opts.DropColumns...)
			err = export.WriteObservable(t, path)
		} else {
			err = export.Write(build(), path, opts)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	}
	return nil
}

// restoreDisambiguation pulls previously computed disambiguated subject
// identifiers out of the datastore so the subjects export carries them.
func restoreDisambiguation(proj *project.Project, settings *conf.Settings) error {
	store := datastore.NewSQLite(&settings.Output.SQLite)
	if err := store.Open(); err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error("error closing datastore", "error", err)
		}
	}()

	ids, err := store.GetSubjectHashes()
	if err != nil {
		return err
	}
	if len(ids) > 0 {
		proj.RestoreDisambiguatedIDs(ids)
	}
	return nil
}
