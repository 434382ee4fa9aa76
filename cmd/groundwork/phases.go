package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/groundwork-cli/groundwork/internal/adapters/command"
)

var phasesCmd = &cobra.Command{
	Use:   "phases",
	Short: "List registered phases in execution order",
	RunE: func(cmd *cobra.Command, _ []string) error {
		registry, err := buildRegistry(command.NewRealRunner())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PHASE\tSTEPS")
		for _, group := range registry.All() {
			fmt.Fprintf(w, "%s\t%d\n", group.Phase.Identifier(), len(group.Steps))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(phasesCmd)
}
