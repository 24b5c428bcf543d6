package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sugawarayuuta/sonnet"

	"github.com/roach88/digilab/internal/engine"
	"github.com/roach88/digilab/internal/harness"
)

// InvokeOptions holds flags for the invoke command.
type InvokeOptions struct {
	*RootOptions
	Args string
}

// NewInvokeCommand creates the invoke command.
func NewInvokeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InvokeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "invoke <op>",
		Short: "Invoke any operation with JSON arguments",
		Long: `Invoke a registered operation by name. Run "digilab ops" for the list.

Arguments are a JSON object. Numbers must be integers.

Example:
  digilab invoke convert --args '{"value":"255","from":"decimal","to":"hex"}'
  digilab invoke gray.table --args '{"width":3}'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return invokeOp(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Args, "args", "{}", "operation arguments as JSON")

	return cmd
}

func invokeOp(opts *InvokeOptions, op string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	var raw map[string]any
	if err := sonnet.Unmarshal([]byte(opts.Args), &raw); err != nil {
		return out.Fail(ExitCommandError, string(engine.ErrCodeInvalidArgs), fmt.Sprintf("invalid --args JSON: %v", err), nil)
	}
	args, err := harness.ConvertArgs(raw)
	if err != nil {
		return out.Fail(ExitCommandError, string(engine.ErrCodeInvalidArgs), fmt.Sprintf("invalid --args: %v", err), nil)
	}

	out.VerboseLog("invoking %s", op)
	return runOp(cmd, opts.RootOptions, op, args, nil)
}
