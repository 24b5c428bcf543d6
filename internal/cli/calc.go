package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/digilab/internal/engine"
	"github.com/roach88/digilab/internal/ir"
)

// OpPayload is the data of a JSON response for one completed operation.
type OpPayload struct {
	Op           string      `json:"op"`
	OutputCase   string      `json:"output_case"`
	Seq          int64       `json:"seq"`
	InvocationID string      `json:"invocation_id"`
	CompletionID string      `json:"completion_id"`
	Result       ir.IRObject `json:"result"`
}

// runOp invokes op and reports its completion. In text mode only the
// result fields in show are printed, all of them with --verbose.
//
// A failed calculation exits 1 with the error code from the result; a
// request the engine refuses exits 2.
func runOp(cmd *cobra.Command, opts *RootOptions, op string, args ir.IRObject, show []string) error {
	out := opts.formatter(cmd)
	ctx := cmd.Context()

	ws, err := opts.openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	comp, err := ws.engine.Invoke(ctx, op, args)
	var refused *engine.RuntimeError
	if errors.As(err, &refused) {
		return out.Fail(ExitCommandError, string(refused.Code), refused.Message, map[string]string{"op": op})
	}
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("failed to invoke %s", op), err)
	}
	out.VerboseLog("session %s seq %d", ws.engine.Session(), comp.Seq)

	payload := OpPayload{
		Op:           op,
		OutputCase:   comp.OutputCase,
		Seq:          comp.Seq,
		InvocationID: comp.InvocationID,
		CompletionID: comp.ID,
		Result:       comp.Result,
	}

	if !comp.Succeeded() {
		code, _ := comp.Result.String("code")
		message, _ := comp.Result.String("message")
		if out.Format == "json" {
			err := out.Respond(CLIResponse{
				Status:  "error",
				Data:    payload,
				Error:   &CLIError{Code: code, Message: message},
				Session: ws.engine.Session(),
			})
			if err != nil {
				return err
			}
			return &ExitError{Code: ExitFailure, Message: message, Reported: true}
		}
		return out.Fail(ExitFailure, code, message, nil)
	}

	if out.Format == "json" {
		return out.Respond(CLIResponse{Status: "ok", Data: payload, Session: ws.engine.Session()})
	}
	if opts.Verbose {
		show = nil
	}
	return out.Success(renderResult(comp.Result, show))
}

// renderResult lays out result fields one per line. Arrays of objects are
// printed one element per line below their key.
func renderResult(res ir.IRObject, show []string) string {
	keys := show
	if len(keys) == 0 {
		keys = res.SortedKeys()
	}
	width := 0
	for _, k := range keys {
		if _, ok := res[k]; ok {
			width = max(width, len(k)+1)
		}
	}

	var b strings.Builder
	for _, k := range keys {
		v, ok := res[k]
		if !ok {
			continue
		}
		if rows, ok := v.(ir.IRArray); ok && len(rows) > 0 && isObject(rows[0]) {
			fmt.Fprintf(&b, "%s\n", k+":")
			for _, row := range rows {
				fmt.Fprintf(&b, "  %s\n", renderInline(row))
			}
			continue
		}
		fmt.Fprintf(&b, "%-*s %s\n", width, k+":", renderInline(v))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderInline(v ir.IRValue) string {
	switch val := v.(type) {
	case ir.IRString:
		return string(val)
	case ir.IRInt:
		return strconv.FormatInt(int64(val), 10)
	case ir.IRBool:
		return strconv.FormatBool(bool(val))
	case ir.IRArray:
		parts := make([]string, len(val))
		for i, e := range val {
			parts[i] = renderInline(e)
		}
		return "[" + strings.Join(parts, " ") + "]"
	case ir.IRObject:
		parts := make([]string, 0, len(val))
		for _, k := range val.SortedKeys() {
			parts = append(parts, k+"="+renderInline(val[k]))
		}
		return strings.Join(parts, " ")
	}
	return fmt.Sprint(v)
}

func isObject(v ir.IRValue) bool {
	_, ok := v.(ir.IRObject)
	return ok
}

// opCommand builds a leaf command for op. build turns positional
// arguments (and any flags the caller binds) into operation arguments.
func opCommand(opts *RootOptions, use, short, op string, nargs cobra.PositionalArgs, show []string, build func(pos []string) (ir.IRObject, error)) *cobra.Command {
	return &cobra.Command{
		Use:           use,
		Short:         short,
		Args:          nargs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, pos []string) error {
			args, err := build(pos)
			if err != nil {
				return opts.formatter(cmd).Fail(ExitCommandError, string(engine.ErrCodeInvalidArgs), err.Error(), nil)
			}
			return runOp(cmd, opts, op, args, show)
		},
	}
}

// pair maps two positional arguments to a and b.
func pair(pos []string) (ir.IRObject, error) {
	return ir.IRObject{"a": ir.IRString(pos[0]), "b": ir.IRString(pos[1])}, nil
}

func single(key string) func(pos []string) (ir.IRObject, error) {
	return func(pos []string) (ir.IRObject, error) {
		return ir.IRObject{key: ir.IRString(pos[0])}, nil
	}
}

func number(key string) func(pos []string) (ir.IRObject, error) {
	return func(pos []string) (ir.IRObject, error) {
		n, err := strconv.ParseInt(pos[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not an integer", key, pos[0])
		}
		return ir.IRObject{key: ir.IRInt(n)}, nil
	}
}

func group(use, short string, subs ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{Use: use, Short: short}
	cmd.AddCommand(subs...)
	return cmd
}

func calcCommands(opts *RootOptions) []*cobra.Command {
	return []*cobra.Command{
		newConvertCommand(opts),
		newTwosCommand(opts),
		group("ones", "One's complement",
			opCommand(opts, "complement <binary>", "Invert every bit", "ones.complement",
				cobra.ExactArgs(1), []string{"value", "ones"}, single("value")),
			opCommand(opts, "add <a> <b>", "Add with end-around carry", "ones.add",
				cobra.ExactArgs(2), []string{"a", "b", "sum", "end_around_carry", "final"}, pair),
			opCommand(opts, "subtract <a> <b>", "Subtract by adding the one's complement", "ones.subtract",
				cobra.ExactArgs(2), []string{"a", "b", "sum", "end_around_carry", "final"}, pair),
		),
		group("bcd", "Binary-coded decimal",
			opCommand(opts, "encode <digits>", "Encode decimal digits as 4-bit groups", "bcd.encode",
				cobra.ExactArgs(1), []string{"digits", "formatted"}, single("digits")),
			opCommand(opts, "decode <group>...", "Decode 4-bit groups to decimal digits", "bcd.decode",
				cobra.MinimumNArgs(1), []string{"groups", "digits"}, func(pos []string) (ir.IRObject, error) {
					return ir.IRObject{"groups": ir.IRString(strings.Join(pos, " "))}, nil
				}),
			opCommand(opts, "add <a> <b>", `Add BCD numbers, e.g. "1001 0101" "1000"`, "bcd.add",
				cobra.ExactArgs(2), []string{"a", "b", "groups", "decimal", "correction_applied", "steps"}, pair),
			opCommand(opts, "subtract <a> <b>", "Subtract BCD numbers", "bcd.subtract",
				cobra.ExactArgs(2), []string{"a", "b", "groups", "decimal", "correction_applied", "steps"}, pair),
		),
		group("gray", "Gray code",
			opCommand(opts, "encode <binary>", "Binary to Gray code", "gray.encode",
				cobra.ExactArgs(1), []string{"binary", "gray"}, single("binary")),
			opCommand(opts, "decode <gray>", "Gray code to binary", "gray.decode",
				cobra.ExactArgs(1), []string{"gray", "binary"}, single("gray")),
			opCommand(opts, "table <width>", "Gray code table for a bit width", "gray.table",
				cobra.ExactArgs(1), []string{"rows"}, number("width")),
		),
		newParityCommand(opts),
		newChecksumCommand(opts),
		group("ascii", "ASCII codes",
			opCommand(opts, "char <char>", "Look up a character", "ascii.char",
				cobra.ExactArgs(1), nil, single("char")),
			opCommand(opts, "code <decimal>", "Look up a code", "ascii.code",
				cobra.ExactArgs(1), nil, number("code")),
			opCommand(opts, "text <text>", "Encode text", "ascii.text",
				cobra.ExactArgs(1), []string{"text", "codes"}, single("text")),
			opCommand(opts, "range <control|printable|all>", "List a range of codes", "ascii.range",
				cobra.ExactArgs(1), []string{"codes"}, single("range")),
		),
		group("arith", "Binary arithmetic",
			opCommand(opts, "add <a> <b>", "Add binary numbers", "arith.add",
				cobra.ExactArgs(2), []string{"a", "b", "result", "decimal", "carry"}, pair),
			opCommand(opts, "subtract <a> <b>", "Subtract binary numbers", "arith.subtract",
				cobra.ExactArgs(2), []string{"a", "b", "result", "decimal"}, pair),
			opCommand(opts, "multiply <a> <b>", "Multiply binary numbers by shift and add", "arith.multiply",
				cobra.ExactArgs(2), []string{"a", "b", "partials", "result", "decimal"}, pair),
		),
	}
}

func newConvertCommand(opts *RootOptions) *cobra.Command {
	var from, to string
	var all bool

	cmd := &cobra.Command{
		Use:   "convert <value>",
		Short: "Convert a value between bases",
		Long: `Convert a value between binary, octal, decimal and hexadecimal.

Examples:
  digilab convert 25 --to binary
  digilab convert FF --from hex --to octal
  digilab convert 777 --from octal --all`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, pos []string) error {
			args := ir.IRObject{"value": ir.IRString(pos[0]), "from": ir.IRString(from)}
			if all {
				return runOp(cmd, opts, "convert.all", args, []string{"input", "from", "outputs"})
			}
			args["to"] = ir.IRString(to)
			return runOp(cmd, opts, "convert", args, []string{"input", "output", "decimal"})
		},
	}
	cmd.Flags().StringVar(&from, "from", "decimal", "source base (binary|octal|decimal|hex)")
	cmd.Flags().StringVar(&to, "to", "binary", "target base (binary|octal|decimal|hex)")
	cmd.Flags().BoolVar(&all, "all", false, "convert to every base")
	return cmd
}

func newTwosCommand(opts *RootOptions) *cobra.Command {
	var steps bool
	cmd := opCommand(opts, "twos <minuend> <subtrahend>", "Subtract binary numbers by two's complement addition", "twos.subtract",
		cobra.ExactArgs(2),
		[]string{"width", "minuend", "subtrahend", "ones_complement", "twos_complement", "carries", "result", "overflow_carry", "steps"},
		func(pos []string) (ir.IRObject, error) {
			return ir.IRObject{
				"minuend":    ir.IRString(pos[0]),
				"subtrahend": ir.IRString(pos[1]),
				"steps":      ir.IRBool(steps),
			}, nil
		})
	cmd.Flags().BoolVar(&steps, "steps", false, "include a step-by-step walkthrough")
	return cmd
}

func newParityCommand(opts *RootOptions) *cobra.Command {
	var mode string
	withMode := func(args ir.IRObject) ir.IRObject {
		if mode != "" {
			args["mode"] = ir.IRString(mode)
		}
		return args
	}

	cmd := group("parity", "Parity bits",
		opCommand(opts, "bit <data>", "Compute the parity bit", "parity.bit",
			cobra.ExactArgs(1), []string{"data", "mode", "ones", "bit", "word"},
			func(pos []string) (ir.IRObject, error) {
				return withMode(ir.IRObject{"data": ir.IRString(pos[0])}), nil
			}),
		opCommand(opts, "check <word>", "Check a word that includes its parity bit", "parity.check",
			cobra.ExactArgs(1), []string{"data", "mode", "ones", "valid"},
			func(pos []string) (ir.IRObject, error) {
				return withMode(ir.IRObject{"data": ir.IRString(pos[0])}), nil
			}),
		opCommand(opts, "detect <original> <received>", "Compare a sent and a received word", "parity.detect",
			cobra.ExactArgs(2), []string{"mode", "original_valid", "received_valid", "error_detected", "differences"},
			func(pos []string) (ir.IRObject, error) {
				return withMode(ir.IRObject{"original": ir.IRString(pos[0]), "received": ir.IRString(pos[1])}), nil
			}),
	)
	cmd.PersistentFlags().StringVar(&mode, "mode", "", "parity mode (even|odd; default from config)")
	return cmd
}

func newChecksumCommand(opts *RootOptions) *cobra.Command {
	var verify string
	cmd := opCommand(opts, "checksum <byte>...", "8-bit one's complement checksum", "checksum8",
		cobra.MinimumNArgs(1),
		[]string{"bytes", "sum", "checksum", "verification", "valid", "received", "verified"},
		func(pos []string) (ir.IRObject, error) {
			args := ir.IRObject{"bytes": ir.Strings(pos...)}
			if verify != "" {
				args["checksum"] = ir.IRString(verify)
			}
			return args, nil
		})
	cmd.Flags().StringVar(&verify, "verify", "", "received checksum to verify")
	return cmd
}
