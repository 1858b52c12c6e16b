package cli

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/retrace/internal/consolidator"
	"github.com/roach88/retrace/internal/interpreter"
	"github.com/roach88/retrace/internal/op"
	"github.com/roach88/retrace/internal/store"
	"github.com/roach88/retrace/internal/trace"
)

// ConsolidateOptions holds flags for the consolidate command.
type ConsolidateOptions struct {
	*RootOptions
	Database string
}

// OperationResult is one consolidated operation in command output.
type OperationResult struct {
	ID       string   `json:"id"`
	Kind     op.Kind  `json:"kind"`
	SeqFrom  int64    `json:"seq_from"`
	SeqTo    int64    `json:"seq_to"`
	Operands []string `json:"operands"`
}

// ConsolidateResult holds the consolidate command output.
type ConsolidateResult struct {
	Trace      string            `json:"trace"`
	TraceID    string            `json:"trace_id,omitempty"`
	Events     int               `json:"events"`
	Operations []OperationResult `json:"operations"`
}

// NewConsolidateCommand creates the consolidate command.
func NewConsolidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConsolidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "consolidate <trace.yaml>",
		Short: "Consolidate a trace into composite operations",
		Long: `Load a YAML trace document, validate it, and consolidate windows of
atomic read/write events into the composite operations they form.

With --db, the trace's events and the consolidated operations are also
recorded in a SQLite database for later replay verification.

Examples:
  retrace consolidate bubble-sort.yaml
  retrace consolidate bubble-sort.yaml --db ./retrace.db
  retrace consolidate bubble-sort.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsolidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database to record the run")

	return cmd
}

func runConsolidate(opts *ConsolidateOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	doc, err := trace.Load(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load trace", err)
	}
	formatter.VerboseLog("loaded trace %q with %d events", doc.Name, len(doc.Events))

	res, err := interpreter.New(consolidator.Default()).Interpret(doc.Events)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to interpret trace", err)
	}

	result := ConsolidateResult{
		Trace:      doc.Name,
		Events:     len(doc.Events),
		Operations: make([]OperationResult, 0, len(res.Composites)),
	}
	for _, comp := range res.Composites {
		from, to := comp.Span()
		result.Operations = append(result.Operations, OperationResult{
			ID:       comp.ID,
			Kind:     comp.Kind,
			SeqFrom:  from,
			SeqTo:    to,
			Operands: operandNames(comp.Operands),
		})
	}

	if opts.Database != "" {
		traceID, err := persistRun(cmd.Context(), opts.Database, doc, res.Composites)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		result.TraceID = traceID
		formatter.VerboseLog("recorded as trace %s in %s", traceID, opts.Database)
	}

	if formatter.Format == "json" {
		return formatter.JSON(result)
	}

	formatter.Textf("trace %q: %d event(s), %d operation(s)\n",
		result.Trace, result.Events, len(result.Operations))
	for _, o := range result.Operations {
		formatter.Textf("  [%d..%d] %s (%s)\n", o.SeqFrom, o.SeqTo, o.Kind, strings.Join(o.Operands, ", "))
	}
	if result.TraceID != "" {
		formatter.Textf("recorded as trace %s\n", result.TraceID)
	}
	return nil
}

func persistRun(ctx context.Context, dbPath string, doc *trace.Document, comps []*op.Composite) (string, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return "", err
	}
	defer st.Close()

	traceID := uuid.Must(uuid.NewV7()).String()
	if err := st.WriteTrace(ctx, traceID, doc.Name); err != nil {
		return "", err
	}
	if err := st.WriteEvents(ctx, traceID, doc.Events); err != nil {
		return "", err
	}
	for _, comp := range comps {
		if err := st.WriteComposite(ctx, traceID, comp); err != nil {
			return "", err
		}
	}
	return traceID, nil
}

func operandNames(operands []op.Locator) []string {
	names := make([]string, len(operands))
	for i, l := range operands {
		names[i] = l.String()
	}
	return names
}
