package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/groundwork-cli/groundwork/internal/domain/config"
)

var (
	// Global flags
	cfgFile  string
	stateDir string
	logFile  string
	verbose  bool
	yesFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "groundwork",
	Short: "A phased, idempotent workstation provisioner",
	Long: `Groundwork provisions a workstation in numbered phases: storage
layout, package installation, desktop and application configuration.

Every step records durable completion state, so an interrupted run can
be re-invoked and picks up exactly where it left off. Steps that are
already done report "already completed" and are skipped unless --force
is given.`,
	SilenceErrors: true, // We handle error formatting ourselves
	SilenceUsage:  true, // Don't show usage on error
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file (default: groundwork.yaml)")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "", "completion marker directory (default: $XDG_STATE_HOME/groundwork)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "append-only audit log (default: <state-dir>/groundwork.log)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&yesFlag, "yes", "y", false, "auto-confirm all prompts")

	rootCmd.AddCommand(versionCmd)
}

// loadSettings merges the settings file with global flag overrides.
func loadSettings() (config.Settings, error) {
	path := cfgFile
	if path == "" {
		path = config.DefaultFileName
	}

	settings, err := config.Load(path)
	if err != nil {
		return settings, err
	}

	if stateDir != "" {
		settings.StateDir = stateDir
	}
	if logFile != "" {
		settings.LogFile = logFile
	}
	return settings, nil
}

// formatError returns a user-friendly error message.
// With verbose=false: shows only the user message and suggestion.
// With verbose=true: also shows the underlying technical error.
func formatError(err error) string {
	var userErr *config.UserError
	if errors.As(err, &userErr) {
		msg := userErr.Message
		if userErr.Context != "" {
			msg += fmt.Sprintf(" (at %s)", userErr.Context)
		}
		if userErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", userErr.Suggestion)
		}
		if verbose && userErr.Underlying != nil {
			msg += fmt.Sprintf("\n\nTechnical details: %v", userErr.Underlying)
		}
		return msg
	}
	return err.Error()
}

// printError prints an error message to stderr with proper formatting.
func printError(err error) {
	printErrorTo(os.Stderr, err)
}

// printErrorTo prints an error message to the given writer.
func printErrorTo(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %s\n", formatError(err))
}
