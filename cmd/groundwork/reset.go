package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/groundwork-cli/groundwork/internal/domain/config"
	"github.com/groundwork-cli/groundwork/internal/domain/state"
)

var (
	resetAllFlag   bool
	resetPhaseFlag string
	resetStepFlag  string
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear completion markers so steps re-run",
	Long: `Reset removes recorded completion markers. The affected steps run
again on the next invocation, even without --force. Exactly one of
--all, --phase or --step must be given.`,
	Example: `  # Forget everything and start over
  groundwork reset --all

  # Re-run one phase next time
  groundwork reset --phase 03-desktop

  # Re-run a single step
  groundwork reset --step 00-core:apt:install-git`,
	RunE: resetMarkers,
}

func init() {
	resetCmd.Flags().BoolVar(&resetAllFlag, "all", false, "clear every completion marker")
	resetCmd.Flags().StringVar(&resetPhaseFlag, "phase", "", "clear markers for one phase")
	resetCmd.Flags().StringVar(&resetStepFlag, "step", "", "clear the marker for one step")

	rootCmd.AddCommand(resetCmd)
}

func resetMarkers(cmd *cobra.Command, _ []string) error {
	selected := 0
	for _, on := range []bool{resetAllFlag, resetPhaseFlag != "", resetStepFlag != ""} {
		if on {
			selected++
		}
	}
	if selected != 1 {
		return &config.UserError{
			Code:       config.ErrCodeConfigInvalid,
			Message:    "reset needs exactly one of --all, --phase or --step",
			Suggestion: "Run 'groundwork reset --help' for examples.",
		}
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	store := state.NewFileStore(settings.StateDir)

	keys, err := keysToReset(store)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to reset.")
		return nil
	}

	if !confirmAction(fmt.Sprintf("Clear %d completion marker(s)?", len(keys))) {
		fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
		return nil
	}

	for _, key := range keys {
		if err := store.Clear(key); err != nil {
			return fmt.Errorf("clear marker %s: %w", key, err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d marker(s).\n", len(keys))
	return nil
}

// keysToReset resolves the selection flags against recorded markers.
func keysToReset(store *state.FileStore) ([]string, error) {
	if resetStepFlag != "" {
		if !store.Has(resetStepFlag) {
			return nil, nil
		}
		return []string{resetStepFlag}, nil
	}

	markers, err := store.Markers()
	if err != nil {
		return nil, fmt.Errorf("read completion markers: %w", err)
	}

	keys := make([]string, 0, len(markers))
	for _, m := range markers {
		if resetAllFlag || strings.HasPrefix(m.Key, resetPhaseFlag+":") {
			keys = append(keys, m.Key)
		}
	}
	return keys, nil
}
