package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/digilab/internal/ir"
	"github.com/roach88/digilab/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Op string // optional - filter to one operation
}

// TraceEvent represents a single event in the trace timeline.
type TraceEvent struct {
	Seq        int64       `json:"seq"`
	Type       string      `json:"type"` // "invocation" or "completion"
	ID         string      `json:"id"`
	Op         string      `json:"op"`
	Args       ir.IRObject `json:"args,omitempty"`
	OutputCase string      `json:"output_case,omitempty"`
	Result     ir.IRObject `json:"result,omitempty"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Session  string       `json:"session"`
	Timeline []TraceEvent `json:"timeline"`
	Stats    TraceStats   `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	TotalEvents int            `json:"total_events"`
	Invocations int            `json:"invocations"`
	Completions int            `json:"completions"`
	Pending     int            `json:"pending"`
	Outcomes    map[string]int `json:"outcomes"`
	IsComplete  bool           `json:"is_complete"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the journal of a session",
		Long: `Show a session's invocations and completions in seq order, with counts
per output case. Without --session, list the journaled sessions.

Examples:
  digilab trace --db ./digilab.db
  digilab trace --db ./digilab.db --session 0192...
  digilab trace --db ./digilab.db --session 0192... --op convert --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Op, "op", "", "filter to one operation")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := opts.formatter(cmd)

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if opts.Session == "" {
		sessions, err := st.ListSessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
		if out.Format == "json" {
			return out.Success(map[string]any{"sessions": sessions})
		}
		if len(sessions) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No sessions found in database.")
			return nil
		}
		for _, s := range sessions {
			fmt.Fprintln(cmd.OutOrStdout(), s)
		}
		return nil
	}

	state, err := st.SessionState(ctx, opts.Session)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read session", err)
	}
	events, err := st.ReplaySession(ctx, opts.Session)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to replay session", err)
	}

	timeline := buildTimeline(events, opts.Op)
	result := TraceResult{
		Session:  opts.Session,
		Timeline: timeline,
		Stats: TraceStats{
			TotalEvents: len(timeline),
			Invocations: len(state.Invocations),
			Completions: len(state.Completions),
			Pending:     state.Pending,
			Outcomes:    state.Outcomes,
			IsComplete:  state.Complete,
		},
	}

	if out.Format == "json" {
		return out.Respond(CLIResponse{Status: "ok", Data: result, Session: result.Session})
	}
	if len(events) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No events found for session: %s\n", opts.Session)
		return nil
	}
	return outputTraceText(cmd.OutOrStdout(), result, opts.Verbose)
}

// buildTimeline converts store events to timeline events. Completions carry
// their invocation's op. With opFilter set only that op's invocations and
// their completions are kept.
func buildTimeline(events []store.Event, opFilter string) []TraceEvent {
	timeline := []TraceEvent{}
	opOf := make(map[string]string)

	for _, event := range events {
		switch event.Type {
		case store.EventInvocation:
			inv := event.Invocation
			opOf[inv.ID] = inv.Op
			if opFilter != "" && inv.Op != opFilter {
				continue
			}
			timeline = append(timeline, TraceEvent{
				Seq:  event.Seq,
				Type: store.EventInvocation.String(),
				ID:   inv.ID,
				Op:   inv.Op,
				Args: inv.Args,
			})

		case store.EventCompletion:
			comp := event.Completion
			op := opOf[comp.InvocationID]
			if opFilter != "" && op != opFilter {
				continue
			}
			timeline = append(timeline, TraceEvent{
				Seq:        event.Seq,
				Type:       store.EventCompletion.String(),
				ID:         comp.ID,
				Op:         op,
				OutputCase: comp.OutputCase,
				Result:     comp.Result,
			})
		}
	}
	return timeline
}

// outputTraceText outputs the trace result as text.
func outputTraceText(w io.Writer, result TraceResult, verbose bool) error {
	fmt.Fprintf(w, "Trace for Session: %s\n", result.Session)
	fmt.Fprintf(w, "Status: %s\n", completeStatus(result.Stats.IsComplete))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Timeline ===")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no events)")
	}
	for _, event := range result.Timeline {
		formatTimelineEvent(w, event, verbose)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Total Events: %d\n", result.Stats.TotalEvents)
	fmt.Fprintf(w, "  Invocations:  %d\n", result.Stats.Invocations)
	fmt.Fprintf(w, "  Completions:  %d\n", result.Stats.Completions)
	for _, c := range slices.Sorted(maps.Keys(result.Stats.Outcomes)) {
		fmt.Fprintf(w, "  %s: %d\n", c, result.Stats.Outcomes[c])
	}
	return nil
}

// formatTimelineEvent formats a single timeline event for text output.
func formatTimelineEvent(w io.Writer, event TraceEvent, verbose bool) {
	switch event.Type {
	case "invocation":
		fmt.Fprintf(w, "  [%d] INV  %s %s\n", event.Seq, event.Op, renderInline(event.Args))
	case "completion":
		fmt.Fprintf(w, "  [%d] COMP %s %s\n", event.Seq, event.Op, event.OutputCase)
		if verbose && len(event.Result) > 0 {
			fmt.Fprintf(w, "       Result: %s\n", renderInline(event.Result))
		}
	}
	if verbose {
		fmt.Fprintf(w, "       ID: %s\n", truncateID(event.ID))
	}
}

// truncateID truncates a long ID for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}

// completeStatus returns a human-readable completion status.
func completeStatus(isComplete bool) string {
	if isComplete {
		return "Complete"
	}
	return "Incomplete (pending events)"
}
