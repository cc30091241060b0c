// Package load implements the subcommand that reads the export files
// and prints a summary of the loaded project.
package load

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kingsdigitallab/zoonyper/internal/conf"
	"github.com/kingsdigitallab/zoonyper/internal/project"
)

// Command creates the load subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	var timelines bool

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load the export files and print a project summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := project.New(settings)
			if err != nil {
				return err
			}
			return printSummary(cmd, proj, timelines)
		},
	}

	cmd.Flags().BoolVar(&timelines, "timelines", false, "Include per-workflow classification timelines")

	return cmd
}

func printSummary(cmd *cobra.Command, proj *project.Project, timelines bool) error {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "classifications: %d\n", len(proj.Classifications()))
	fmt.Fprintf(out, "subjects:        %d\n", len(proj.Subjects()))
	fmt.Fprintf(out, "workflows:       %d\n", len(proj.Workflows()))
	fmt.Fprintf(out, "comments:        %d\n", len(proj.Comments(true)))
	fmt.Fprintf(out, "boards:          %d\n", len(proj.Boards()))
	fmt.Fprintf(out, "discussions:     %d\n", len(proj.Discussions()))
	fmt.Fprintf(out, "tags:            %d\n", len(proj.Tags()))

	participants := proj.ParticipantsCounts()
	fmt.Fprintf(out, "participants:    %d\n", participants.Total)
	for _, id := range proj.WorkflowIDs() {
		fmt.Fprintf(out, "  workflow %d: %d participants, %d subjects\n",
			id, participants.ByWorkflow[id], len(proj.WorkflowSubjects(id)))
	}

	if inactive := proj.InactiveWorkflowIDs(); len(inactive) > 0 {
		fmt.Fprintf(out, "inactive workflows: %v\n", inactive)
	}

	if timelines {
		for _, tl := range proj.WorkflowTimelines(true) {
			state := "finished"
			if tl.Active {
				state = "active"
			}
			fmt.Fprintf(out, "workflow %d: %s to %s (%s)\n",
				tl.WorkflowID, tl.StartDate, tl.EndDate, state)
		}
	}

	return nil
}
