package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/digilab/internal/ir"
	"github.com/roach88/digilab/internal/ops"
)

// NewOpsCommand creates the ops command.
func NewOpsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "ops",
		Short:         "List registered operations",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sigs := ops.NewRegistry(rootOpts.opsLimits()).Sigs()
			out := rootOpts.formatter(cmd)
			if out.Format == "json" {
				return out.Success(sigs)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, sig := range sigs {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", sig.Name, formatArgs(sig.Args), sig.Summary)
				if rootOpts.Verbose {
					fmt.Fprintf(tw, "\t  outputs: %s\t\n", strings.Join(sig.Outputs, ", "))
				}
			}
			return tw.Flush()
		},
	}
}

func formatArgs(args []ir.NamedArg) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Name + ":" + a.Type
		if a.Optional {
			parts[i] = "[" + parts[i] + "]"
		}
	}
	return strings.Join(parts, " ")
}
