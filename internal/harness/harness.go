package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/digilab/internal/engine"
	"github.com/roach88/digilab/internal/ir"
	"github.com/roach88/digilab/internal/ops"
	"github.com/roach88/digilab/internal/store"
	"github.com/roach88/digilab/internal/testutil"
)

// Options configures RunWith.
type Options struct {
	// Limits bounds operands. The zero value means ops.DefaultLimits().
	Limits ops.Limits

	// Logger receives per-step records. Defaults to a discard logger.
	Logger *slog.Logger

	// Store, if set, receives the journal instead of a fresh in-memory
	// database. The clock then continues from the store's last seq and a
	// worksheet without a session runs under a new UUIDv7 token.
	Store *store.Store

	// Session overrides the worksheet's session token.
	Session string
}

// Run executes a worksheet with default limits.
func Run(ws *Worksheet) (*Result, error) {
	return RunWith(context.Background(), ws, Options{})
}

// RunWith executes a worksheet, by default against a fresh in-memory
// journal with a deterministic clock.
//
// A step whose request is refused by the engine is not journaled; it
// passes only if its expected case is the refusal code (for example
// UNKNOWN_OP). The returned error is reserved for infrastructure failures.
func RunWith(ctx context.Context, ws *Worksheet, opts Options) (*Result, error) {
	if opts.Limits == (ops.Limits{}) {
		opts.Limits = ops.DefaultLimits()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	session := ws.Session
	if opts.Session != "" {
		session = opts.Session
	}

	st := opts.Store
	engineOpts := []engine.Option{engine.WithLogger(opts.Logger)}
	if st == nil {
		var err error
		if st, err = store.Open(":memory:"); err != nil {
			return nil, fmt.Errorf("failed to create in-memory store: %w", err)
		}
		defer st.Close()
		engineOpts = append(engineOpts,
			engine.WithClock(testutil.NewDeterministicClock()),
			engine.WithSessionGenerator(testutil.NewFixedSessionGenerator(session)),
		)
	} else if session != "" {
		engineOpts = append(engineOpts, engine.WithSessionGenerator(testutil.NewFixedSessionGenerator(session)))
	}
	engineOpts = append(engineOpts, engine.WithStore(st))

	eng, err := engine.New(ctx, ops.NewRegistry(opts.Limits), engineOpts...)
	if err != nil {
		return nil, err
	}
	if opts.Store != nil {
		if err := eng.Resume(ctx, eng.Session()); err != nil {
			return nil, err
		}
	}

	result := NewResult(eng.Session())
	for i, step := range ws.Steps {
		if err := runStep(ctx, eng, i, step, result, opts.Logger); err != nil {
			return nil, err
		}
	}

	if result.Trace, err = readTrace(ctx, st, result.Session); err != nil {
		return nil, err
	}
	for _, msg := range EvaluateAssertions(ctx, result, ws.Assertions, st) {
		result.AddError(msg)
	}
	return result, nil
}

func runStep(ctx context.Context, eng *engine.Engine, i int, step Step, result *Result, logger *slog.Logger) error {
	args, err := ConvertArgs(step.Args)
	if err != nil {
		result.AddError(fmt.Sprintf("steps[%d] %s: args: %v", i, step.Invoke, err))
		return nil
	}

	comp, err := eng.Invoke(ctx, step.Invoke, args)
	var refused *engine.RuntimeError
	if errors.As(err, &refused) {
		if step.Expect == nil || step.Expect.Case != string(refused.Code) {
			result.AddError(fmt.Sprintf("steps[%d] %s: %v", i, step.Invoke, err))
		}
		logger.Info("step refused", "step", i, "op", step.Invoke, "code", refused.Code)
		return nil
	}
	if err != nil {
		return fmt.Errorf("steps[%d] %s: %w", i, step.Invoke, err)
	}

	logger.Info("step completed", "step", i, "op", step.Invoke, "case", comp.OutputCase, "seq", comp.Seq)
	if step.Expect == nil {
		return nil
	}
	if comp.OutputCase != step.Expect.Case {
		result.AddError(fmt.Sprintf("steps[%d] %s: expected case %s, got %s %s",
			i, step.Invoke, step.Expect.Case, comp.OutputCase, describe(comp.Result)))
		return nil
	}
	if step.Expect.Result != nil {
		want, err := ConvertArgs(step.Expect.Result)
		if err != nil {
			result.AddError(fmt.Sprintf("steps[%d] %s: expect.result: %v", i, step.Invoke, err))
			return nil
		}
		for _, key := range want.SortedKeys() {
			got, ok := comp.Result[key]
			if !ok {
				result.AddError(fmt.Sprintf("steps[%d] %s: result has no field %q", i, step.Invoke, key))
				continue
			}
			if !matchValue(got, want[key]) {
				result.AddError(fmt.Sprintf("steps[%d] %s: result.%s: expected %s, got %s",
					i, step.Invoke, key, describe(want[key]), describe(got)))
			}
		}
	}
	return nil
}

// readTrace turns the session's journal into trace events. Completions
// carry the op of their invocation.
func readTrace(ctx context.Context, st *store.Store, session string) ([]TraceEvent, error) {
	events, err := st.ReplaySession(ctx, session)
	if err != nil {
		return nil, err
	}
	opOf := make(map[string]string)
	trace := make([]TraceEvent, 0, len(events))
	for _, ev := range events {
		switch ev.Type {
		case store.EventInvocation:
			inv := ev.Invocation
			opOf[inv.ID] = inv.Op
			trace = append(trace, TraceEvent{Type: EventInvocation, Op: inv.Op, Args: inv.Args, Seq: inv.Seq})
		case store.EventCompletion:
			comp := ev.Completion
			trace = append(trace, TraceEvent{
				Type:       EventCompletion,
				Op:         opOf[comp.InvocationID],
				OutputCase: comp.OutputCase,
				Result:     comp.Result,
				Seq:        comp.Seq,
			})
		}
	}
	return trace, nil
}

// ConvertArgs converts decoded YAML or JSON values to an IRObject.
// Integral floats become integers; other floats and nulls are rejected.
func ConvertArgs(args map[string]any) (ir.IRObject, error) {
	obj := make(ir.IRObject, len(args))
	for key, val := range args {
		v, err := convertToIRValue(val)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		obj[key] = v
	}
	return obj, nil
}

func convertToIRValue(val any) (ir.IRValue, error) {
	switch v := val.(type) {
	case nil:
		return nil, fmt.Errorf("null values are not allowed")
	case string:
		return ir.IRString(v), nil
	case int:
		return ir.IRInt(v), nil
	case int64:
		return ir.IRInt(v), nil
	case float64:
		if v == float64(int64(v)) {
			return ir.IRInt(int64(v)), nil
		}
		return nil, fmt.Errorf("floats are not allowed: %v", v)
	case bool:
		return ir.IRBool(v), nil
	case []any:
		arr := make(ir.IRArray, len(v))
		for i, elem := range v {
			e, err := convertToIRValue(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = e
		}
		return arr, nil
	case map[string]any:
		return ConvertArgs(v)
	}
	return nil, fmt.Errorf("unsupported type %T", val)
}
