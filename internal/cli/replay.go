package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/retrace/internal/consolidator"
	"github.com/roach88/retrace/internal/interpreter"
	"github.com/roach88/retrace/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	TraceID  string
}

// ReplayMismatch describes one divergence between the stored operations
// and the re-interpreted ones.
type ReplayMismatch struct {
	Position string `json:"position"` // "operation N" (1-based), or "count"
	Stored   string `json:"stored"`
	Replayed string `json:"replayed"`
}

// ReplayResult holds the replay command output.
type ReplayResult struct {
	TraceID       string           `json:"trace_id"`
	Trace         string           `json:"trace"`
	Events        int              `json:"events"`
	Operations    int              `json:"operations"`
	Deterministic bool             `json:"deterministic"`
	Mismatches    []ReplayMismatch `json:"mismatches,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-interpret a stored trace and verify determinism",
		Long: `Replay a recorded trace: read its events back from the database,
consolidate them again, and verify the result matches the operations
recorded at the time. A divergence means consolidation was not
deterministic (or the recognizer set changed) and exits non-zero.

Examples:
  retrace replay --db ./retrace.db --trace 0192c5...
  retrace replay --db ./retrace.db --trace 0192c5... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.TraceID, "trace", "", "trace id to replay (required)")
	_ = cmd.MarkFlagRequired("trace")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	info, err := st.GetTrace(ctx, opts.TraceID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to look up trace", err)
	}

	events, err := st.ReplayEvents(ctx, opts.TraceID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to replay events", err)
	}

	stored, err := st.ListComposites(ctx, opts.TraceID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list operations", err)
	}

	res, err := interpreter.New(consolidator.Default()).Interpret(events)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to interpret trace", err)
	}

	result := ReplayResult{
		TraceID:    opts.TraceID,
		Trace:      info.Name,
		Events:     len(events),
		Operations: len(stored),
		Mismatches: compareRuns(stored, res),
	}
	result.Deterministic = len(result.Mismatches) == 0

	if formatter.Format == "json" {
		if err := formatter.JSON(result); err != nil {
			return err
		}
	} else {
		if result.Deterministic {
			formatter.Textf("replay of trace %s (%q) deterministic: %d event(s), %d operation(s)\n",
				result.TraceID, result.Trace, result.Events, result.Operations)
		} else {
			formatter.Textf("replay of trace %s (%q) DIVERGED:\n", result.TraceID, result.Trace)
			for _, m := range result.Mismatches {
				formatter.Textf("  %s: stored %s, replayed %s\n", m.Position, m.Stored, m.Replayed)
			}
		}
	}

	if !result.Deterministic {
		return NewExitError(ExitFailure, "replay diverged from stored operations")
	}
	return nil
}

// compareRuns matches stored operations against a fresh interpretation by
// position. Both sides are in span order already: the store reads ordered
// by seq_from, the interpreter emits in trace order.
func compareRuns(stored []store.StoredComposite, res *interpreter.Result) []ReplayMismatch {
	var mismatches []ReplayMismatch

	n := len(stored)
	if len(res.Composites) < n {
		n = len(res.Composites)
	}
	for i := 0; i < n; i++ {
		s := stored[i]
		from, to := res.Composites[i].Span()
		replayedDesc := fmt.Sprintf("%s[%d..%d]", res.Composites[i].Kind, from, to)
		storedDesc := fmt.Sprintf("%s[%d..%d]", s.Kind, s.SeqFrom, s.SeqTo)
		if storedDesc != replayedDesc {
			mismatches = append(mismatches, ReplayMismatch{
				Position: fmt.Sprintf("operation %d", i+1),
				Stored:   storedDesc,
				Replayed: replayedDesc,
			})
		}
	}
	if len(stored) != len(res.Composites) {
		mismatches = append(mismatches, ReplayMismatch{
			Position: "count",
			Stored:   fmt.Sprintf("%d", len(stored)),
			Replayed: fmt.Sprintf("%d", len(res.Composites)),
		})
	}
	return mismatches
}
