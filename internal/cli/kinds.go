package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/retrace/internal/consolidator"
)

// KindsResult holds the kinds command output.
type KindsResult struct {
	Kinds  []consolidator.Registration `json:"kinds"`
	Bounds *BoundsResult               `json:"bounds,omitempty"`
}

// BoundsResult is the registered arity span.
type BoundsResult struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// NewKindsCommand creates the kinds command.
func NewKindsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the operation kinds retrace recognizes",
		Long: `List every registered composite operation kind, the number of atomic
events each consumes, and the window bounds the registry currently spans.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKinds(rootOpts, cmd)
		},
	}
}

func runKinds(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cons := consolidator.Default()
	result := KindsResult{Kinds: cons.Registrations()}
	if min, max, ok := cons.Bounds(); ok {
		result.Bounds = &BoundsResult{Min: min, Max: max}
	}

	if formatter.Format == "json" {
		return formatter.JSON(result)
	}

	if len(result.Kinds) == 0 {
		formatter.Textf("no recognizers registered\n")
		return nil
	}
	formatter.Textf("registered kinds (%d):\n", len(result.Kinds))
	for _, reg := range result.Kinds {
		formatter.Textf("  %s (arity %d)\n", reg.Kind, reg.Arity)
	}
	formatter.Textf("bounds: min=%d max=%d\n", result.Bounds.Min, result.Bounds.Max)
	return nil
}
