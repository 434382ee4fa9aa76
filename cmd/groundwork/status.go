package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/groundwork-cli/groundwork/internal/adapters/command"
	"github.com/groundwork-cli/groundwork/internal/domain/state"
	"github.com/groundwork-cli/groundwork/internal/domain/step"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show per-step completion state",
	Long: `Status lists every registered step with its recorded completion
marker and, where the step has one, the result of its live probe. A
step whose probe disagrees with its marker will re-run on the next
invocation.`,
	RunE: showStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func showStatus(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	runner := command.NewRealRunner()
	registry, err := buildRegistry(runner)
	if err != nil {
		return err
	}

	store := state.NewFileStore(settings.StateDir)
	runCtx := step.NewRunContext(cmd.Context())

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PHASE\tSTEP\tMARKER\tPROBE")

	for _, group := range registry.All() {
		for _, s := range group.Steps {
			marker := "-"
			if store.Has(s.ID().String()) {
				marker = "done"
			}

			probe := "n/a"
			status, err := s.Check(runCtx)
			switch {
			case err != nil:
				probe = "error"
			case status == step.StatusSatisfied:
				probe = "satisfied"
			case status == step.StatusNeedsRun:
				probe = "needs-run"
			}

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", group.Phase.Identifier(), s.ID().String(), marker, probe)
		}
	}

	return w.Flush()
}
