package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/digilab/internal/engine"
	"github.com/roach88/digilab/internal/ops"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Sessions         []engine.Report `json:"sessions"`
	TotalSessions    int             `json:"total_sessions"`
	AllDeterministic bool            `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-execute the journal and verify determinism",
		Long: `Re-execute every journaled invocation and compare the output case and
content-addressed completion ID with what was recorded.

Operations run with the current configuration, so a changed limit that
alters an outcome is reported as a mismatch. Invocations without a
completion are listed as pending.

Exit codes:
  0 - All sessions are deterministic
  1 - Determinism verification failed (differences detected)
  2 - Command error (database not found, etc.)

Examples:
  digilab replay --db ./digilab.db
  digilab replay --db ./digilab.db --session 0192...
  digilab replay --db ./digilab.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := opts.formatter(cmd)

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	sessions := []string{opts.Session}
	if opts.Session == "" {
		if sessions, err = st.ListSessions(ctx); err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
	}

	eng, err := engine.New(ctx, ops.NewRegistry(opts.opsLimits()),
		engine.WithStore(st),
		engine.WithLogger(opts.logger()),
	)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start engine", err)
	}

	result := ReplayResult{
		Sessions:         make([]engine.Report, 0, len(sessions)),
		TotalSessions:    len(sessions),
		AllDeterministic: true,
	}
	for _, session := range sessions {
		report, err := eng.Verify(ctx, session)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay session %s", session), err)
		}
		out.VerboseLog("session %s: %d checked, %d mismatches", session, report.Checked, len(report.Mismatches))
		result.Sessions = append(result.Sessions, report)
		if !report.Deterministic() {
			result.AllDeterministic = false
		}
	}

	if opts.Format == "json" {
		response := CLIResponse{Status: "ok", Data: result}
		if !result.AllDeterministic {
			response.Status = "error"
			response.Error = &CLIError{
				Code:    "E_DETERMINISM",
				Message: "determinism verification failed",
			}
		}
		if err := out.Respond(response); err != nil {
			return err
		}
	} else {
		outputReplayText(cmd.OutOrStdout(), result, opts.Verbose)
	}

	if !result.AllDeterministic {
		return &ExitError{Code: ExitFailure, Message: "determinism verification failed", Reported: true}
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(w io.Writer, result ReplayResult, verbose bool) {
	if result.TotalSessions == 0 {
		fmt.Fprintln(w, "No sessions found in database.")
		return
	}

	fmt.Fprintf(w, "Replay Summary: %d session(s)\n", result.TotalSessions)
	fmt.Fprintln(w)

	for _, report := range result.Sessions {
		status := "✓"
		if !report.Deterministic() {
			status = "✗"
		}
		fmt.Fprintf(w, "%s Session: %s\n", status, report.Session)
		fmt.Fprintf(w, "  Checked: %d invocations, %d pending\n", report.Checked, len(report.Pending))
		if verbose {
			for _, id := range report.Pending {
				fmt.Fprintf(w, "  Pending: %s\n", truncateID(id))
			}
		}
		for _, m := range report.Mismatches {
			fmt.Fprintf(w, "  [%d] %s %s: recorded %s, replayed %s\n", m.Seq, m.Op, m.Field, m.Recorded, m.Replayed)
		}
		fmt.Fprintln(w)
	}

	if result.AllDeterministic {
		fmt.Fprintln(w, "✓ All sessions verified deterministic")
		return
	}
	fmt.Fprintln(w, "✗ Determinism verification failed")
}
