package harness

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/roach88/digilab/internal/ir"
	"github.com/roach88/digilab/internal/store"
)

// AssertionError is a failed assertion with the trace for context.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			if ev.Type == EventInvocation {
				fmt.Fprintf(&buf, "  [%d] %s %s\n", ev.Seq, ev.Op, describe(ev.Args))
			}
		}
	}
	return buf.String()
}

// EvaluateAssertions checks assertions against result's trace and the
// journal in st, returning one message per failure.
func EvaluateAssertions(ctx context.Context, result *Result, assertions []Assertion, st *store.Store) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertOutcomeCount:
			err = assertOutcomeCount(ctx, st, result, a)
		default:
			err = fmt.Errorf("assertions[%d]: unknown assertion type %q", i, a.Type)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func assertTraceContains(trace []TraceEvent, a Assertion) error {
	want, err := ConvertArgs(a.Args)
	if err != nil {
		return fmt.Errorf("trace_contains args: %w", err)
	}
	for _, ev := range trace {
		if ev.Type == EventInvocation && ev.Op == a.Op && matchValue(ev.Args, want) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("op %s with args %s", a.Op, describe(want)),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks the first occurrence of each op appears in the
// given order. Other invocations may come between them.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	positions := make(map[string]int)
	for i, ev := range trace {
		if ev.Type != EventInvocation {
			continue
		}
		if _, seen := positions[ev.Op]; !seen {
			positions[ev.Op] = i + 1
		}
	}

	for _, op := range a.Ops {
		if positions[op] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all ops present: %v", a.Ops),
				Actual:   fmt.Sprintf("missing op: %s", op),
				Trace:    trace,
			}
		}
	}
	for i := 1; i < len(a.Ops); i++ {
		prev, curr := a.Ops[i-1], a.Ops[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("ops in order: %v", a.Ops),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}
	return nil
}

func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, ev := range trace {
		if ev.Type == EventInvocation && ev.Op == a.Op {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", a.Count, a.Op),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertOutcomeCount counts completions with the given case, in the journal
// or, when an op is named, in the trace for that op.
func assertOutcomeCount(ctx context.Context, st *store.Store, result *Result, a Assertion) error {
	var count int
	if a.Op == "" {
		n, err := st.CountOutcomes(ctx, result.Session, a.Case)
		if err != nil {
			return fmt.Errorf("outcome_count: %w", err)
		}
		count = n
	} else {
		for _, ev := range result.Trace {
			if ev.Type == EventCompletion && ev.Op == a.Op && ev.OutputCase == a.Case {
				count++
			}
		}
	}
	if count != a.Count {
		what := a.Case
		if a.Op != "" {
			what = a.Op + " " + a.Case
		}
		return &AssertionError{
			Type:     AssertOutcomeCount,
			Expected: fmt.Sprintf("%d %s outcomes", a.Count, what),
			Actual:   fmt.Sprintf("%d outcomes", count),
		}
	}
	return nil
}

// matchValue reports whether actual matches expected. Objects match as
// subsets, recursively; arrays match element-wise; scalars must be equal.
func matchValue(actual, expected ir.IRValue) bool {
	switch exp := expected.(type) {
	case ir.IRObject:
		act, ok := actual.(ir.IRObject)
		if !ok {
			return false
		}
		for k, ev := range exp {
			av, ok := act[k]
			if !ok || !matchValue(av, ev) {
				return false
			}
		}
		return true
	case ir.IRArray:
		act, ok := actual.(ir.IRArray)
		if !ok || len(act) != len(exp) {
			return false
		}
		for i := range exp {
			if !matchValue(act[i], exp[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(actual, expected)
}

func describe(v ir.IRValue) string {
	b, err := ir.MarshalIRValue(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
