package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/groundwork-cli/groundwork/internal/adapters/command"
	"github.com/groundwork-cli/groundwork/internal/adapters/logging"
	"github.com/groundwork-cli/groundwork/internal/domain/config"
	"github.com/groundwork-cli/groundwork/internal/domain/orchestrator"
	"github.com/groundwork-cli/groundwork/internal/domain/state"
	"github.com/groundwork-cli/groundwork/internal/domain/step"
	"github.com/groundwork-cli/groundwork/internal/ports"
	"github.com/groundwork-cli/groundwork/internal/privilege"
	"github.com/groundwork-cli/groundwork/internal/runlock"
)

var (
	phaseFlag          string
	forceFlag          bool
	dryRunFlag         bool
	nonInteractiveFlag bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the provisioning phases",
	Long: `Run executes all registered phases in numeric order, or a subset
selected with --phase. Steps that already completed are skipped; a
fatal failure aborts the run, and re-invoking resumes from the first
pending step.`,
	Example: `  # Run everything
  groundwork run

  # Re-run only the desktop phase, ignoring completion markers
  groundwork run --phase 03-desktop --force

  # Show what a full run would do
  groundwork run --dry-run`,
	RunE: runProvisioning,
}

func init() {
	runCmd.Flags().StringVar(&phaseFlag, "phase", "", "comma-separated phase identifiers to run (default: all)")
	runCmd.Flags().BoolVar(&forceFlag, "force", false, "run step bodies even when completion markers exist")
	runCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "report what would run without executing step bodies")
	runCmd.Flags().BoolVar(&nonInteractiveFlag, "non-interactive", false, "never prompt; steps that would prompt fail recoverably")

	rootCmd.AddCommand(runCmd)
}

func runProvisioning(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	log, closeLog := buildLogger(settings)
	defer closeLog()

	runner := command.NewRealRunner()

	registry, err := buildRegistry(runner)
	if err != nil {
		return err
	}

	// Selection errors are surfaced before anything executes.
	groups, err := registry.Select(phaseSelection(settings))
	if err != nil {
		return config.NewPhaseSelectionError(err)
	}

	store := state.NewFileStore(settings.StateDir)

	// The lock also covers dry runs: a concurrent real run could
	// invalidate every probe mid-report.
	lock, err := runlock.Acquire(settings.StateDir)
	if err != nil {
		if errors.Is(err, runlock.ErrHeld) {
			return config.NewRunLockedError(err)
		}
		return config.NewStateUnwritableError(settings.StateDir, err)
	}
	defer func() {
		_ = lock.Release()
	}()

	interactive := !nonInteractiveFlag && !settings.NonInteractive && !yesFlag
	if !dryRunFlag && interactive {
		total := 0
		for _, g := range groups {
			total += len(g.Steps)
		}
		if !confirmAction(fmt.Sprintf("Provision %d step(s) across %d phase(s)?", total, len(groups))) {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runCtx := step.NewRunContext(ctx).
		WithForce(forceFlag).
		WithDryRun(dryRunFlag).
		WithInteractive(interactive).
		WithSudoTimeout(settings.SudoTimeout.Std())

	session := privilege.NewSession(runner)
	orch := orchestrator.New(store, session, log)

	report, runErr := orch.Run(runCtx, groups)
	printSummary(log, report)

	if report.Aborted {
		return runErr
	}
	return nil
}

// phaseSelection merges the --phase flag with the settings default.
// nil means every registered phase.
func phaseSelection(settings config.Settings) []string {
	raw := phaseFlag
	if raw == "" {
		if len(settings.Phases) == 0 {
			return nil
		}
		return settings.Phases
	}

	parts := strings.Split(raw, ",")
	selection := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			selection = append(selection, trimmed)
		}
	}
	return selection
}

// buildLogger assembles the console logger with the optional file tee.
// The returned closer flushes the audit log.
func buildLogger(settings config.Settings) (ports.Logger, func()) {
	opts := []logging.ConsoleLoggerOption{
		logging.WithOutput(os.Stderr),
	}
	if verbose {
		opts = append(opts, logging.WithLevel(ports.LevelDebug))
	}

	closer := func() {}
	if settings.LogFile != "" {
		f, err := logging.OpenLogFile(settings.LogFile)
		if err != nil {
			// The audit tee is best effort; a read-only location should
			// not block provisioning.
			fmt.Fprintf(os.Stderr, "warning: audit log unavailable: %v\n", err)
		} else {
			opts = append(opts, logging.WithFile(f))
			closer = func() { _ = f.Close() }
		}
	}

	return logging.NewConsoleLogger(opts...), closer
}

// printSummary reports the run disposition through the logger so the
// audit file carries it too.
func printSummary(log ports.Logger, report *orchestrator.Report) {
	log.Section("summary")

	completed := report.Completed()
	skipped := report.Skipped()
	retryable := report.Retryable()

	log.Info(fmt.Sprintf("%d completed, %d skipped, %d left pending", completed, skipped, retryable),
		ports.F("run", report.RunID),
		ports.F("duration", report.Duration.Round(time.Millisecond)))

	if retryable > 0 {
		for _, rec := range report.Records {
			if rec.Outcome == orchestrator.OutcomeRetryable {
				log.Warn("pending: "+rec.Label, ports.F("step", rec.ID.String()), ports.F("error", rec.Err))
			}
		}
		log.Info("re-invoke 'groundwork run' to retry pending steps")
	}

	if report.Aborted {
		log.Error("run aborted", ports.F("error", report.Err))
		return
	}
	log.Success("run finished")
}
