package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/digilab/internal/ir"
)

func sampleTrace() []TraceEvent {
	return []TraceEvent{
		{Type: EventInvocation, Op: "convert", Args: ir.IRObject{"value": ir.IRString("7"), "from": ir.IRString("octal")}, Seq: 1},
		{Type: EventCompletion, Op: "convert", OutputCase: ir.OutputSuccess, Seq: 2},
		{Type: EventInvocation, Op: "gray.encode", Args: ir.IRObject{"binary": ir.IRString("111")}, Seq: 3},
		{Type: EventCompletion, Op: "gray.encode", OutputCase: ir.OutputSuccess, Seq: 4},
		{Type: EventInvocation, Op: "convert", Args: ir.IRObject{"value": ir.IRString("9"), "from": ir.IRString("octal")}, Seq: 5},
		{Type: EventCompletion, Op: "convert", OutputCase: "InvalidSymbol", Seq: 6},
	}
}

func TestAssertTraceContains(t *testing.T) {
	trace := sampleTrace()
	assert.NoError(t, assertTraceContains(trace, Assertion{Op: "convert", Args: map[string]any{"value": "9"}}))
	assert.NoError(t, assertTraceContains(trace, Assertion{Op: "gray.encode"}))

	err := assertTraceContains(trace, Assertion{Op: "convert", Args: map[string]any{"value": "8"}})
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, AssertTraceContains, ae.Type)
	assert.Contains(t, err.Error(), "[3] gray.encode")
}

func TestAssertTraceOrder(t *testing.T) {
	trace := sampleTrace()
	assert.NoError(t, assertTraceOrder(trace, Assertion{Ops: []string{"convert", "gray.encode"}}))
	assert.ErrorContains(t, assertTraceOrder(trace, Assertion{Ops: []string{"gray.encode", "convert"}}), "should be before")
	assert.ErrorContains(t, assertTraceOrder(trace, Assertion{Ops: []string{"bcd.add"}}), "missing op: bcd.add")
}

func TestAssertTraceCount(t *testing.T) {
	trace := sampleTrace()
	assert.NoError(t, assertTraceCount(trace, Assertion{Op: "convert", Count: 2}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Op: "bcd.add", Count: 0}))
	assert.ErrorContains(t, assertTraceCount(trace, Assertion{Op: "convert", Count: 1}), "2 occurrences")
}

func TestAssertOutcomeCount_ByOp(t *testing.T) {
	result := NewResult("s")
	result.Trace = sampleTrace()
	ctx := t.Context()

	assert.NoError(t, assertOutcomeCount(ctx, nil, result, Assertion{Op: "convert", Case: "InvalidSymbol", Count: 1}))
	assert.NoError(t, assertOutcomeCount(ctx, nil, result, Assertion{Op: "gray.encode", Case: "InvalidSymbol", Count: 0}))
	assert.Error(t, assertOutcomeCount(ctx, nil, result, Assertion{Op: "convert", Case: "Success", Count: 2}))
}

func TestMatchValue(t *testing.T) {
	actual := ir.IRObject{
		"a": ir.IRString("x"),
		"n": ir.IRObject{"deep": ir.IRInt(1), "other": ir.IRBool(true)},
		"l": ir.IRArray{ir.IRObject{"k": ir.IRInt(1), "j": ir.IRInt(2)}},
	}

	assert.True(t, matchValue(actual, ir.IRObject{}))
	assert.True(t, matchValue(actual, ir.IRObject{"n": ir.IRObject{"deep": ir.IRInt(1)}}))
	assert.True(t, matchValue(actual, ir.IRObject{"l": ir.IRArray{ir.IRObject{"k": ir.IRInt(1)}}}))
	assert.False(t, matchValue(actual, ir.IRObject{"a": ir.IRString("y")}))
	assert.False(t, matchValue(actual, ir.IRObject{"l": ir.IRArray{}}))
	assert.False(t, matchValue(actual, ir.IRObject{"a": ir.IRInt(1)}))
	assert.False(t, matchValue(ir.IRString("x"), ir.IRObject{}))
}
