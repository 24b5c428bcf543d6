package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/digilab/internal/harness"
	"github.com/roach88/digilab/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <worksheet>",
		Short: "Run a worksheet and journal its steps",
		Long: `Run every step of a worksheet through the engine.

With --db the invocations and completions are written to the journal under
the worksheet's session (or --session, or a new token), so they can be
inspected with "digilab trace" and verified with "digilab replay".
Without --db the worksheet runs against an in-memory journal.

Exit codes:
  0 - every step and assertion passed
  1 - an expectation or assertion failed
  2 - command error (unreadable worksheet, database error, etc.)

Examples:
  digilab run --db ./digilab.db lessons/subtraction.yaml
  digilab run lessons/gray.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorksheet(opts, args[0], cmd)
		},
	}

	return cmd
}

func runWorksheet(opts *RunOptions, path string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	logger := opts.logger()

	ws, err := harness.LoadWorksheet(path)
	if err != nil {
		return out.Fail(ExitCommandError, "E_WORKSHEET", err.Error(), nil)
	}

	var st *store.Store
	if opts.Database != "" {
		if st, err = opts.openStore(); err != nil {
			return err
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
	}

	logger.Info("running worksheet", "name", ws.Name, "steps", len(ws.Steps), "db", opts.Database)
	result, err := harness.RunWith(cmd.Context(), ws, harness.Options{
		Limits:  opts.opsLimits(),
		Logger:  logger,
		Store:   st,
		Session: opts.Session,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("failed to run worksheet %s", ws.Name), err)
	}

	if out.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: result, Session: result.Session}
		if !result.Pass {
			resp.Status = "error"
			resp.Error = &CLIError{Code: "E_WORKSHEET_FAILED", Message: fmt.Sprintf("%d check(s) failed", len(result.Errors))}
		}
		if err := out.Respond(resp); err != nil {
			return err
		}
	} else {
		printWorksheetResult(cmd, ws, result, opts.Verbose)
	}

	if !result.Pass {
		return &ExitError{Code: ExitFailure, Message: "worksheet failed", Reported: true}
	}
	return nil
}

func printWorksheetResult(cmd *cobra.Command, ws *harness.Worksheet, result *harness.Result, verbose bool) {
	w := cmd.OutOrStdout()
	status := "✓"
	if !result.Pass {
		status = "✗"
	}
	fmt.Fprintf(w, "%s %s (session %s)\n", status, ws.Name, result.Session)

	if verbose {
		for _, ev := range result.Trace {
			if ev.Type == harness.EventCompletion {
				fmt.Fprintf(w, "  [%d] %s -> %s\n", ev.Seq, ev.Op, ev.OutputCase)
			}
		}
	}
	for _, msg := range result.Errors {
		fmt.Fprintf(w, "  %s\n", msg)
	}
}
