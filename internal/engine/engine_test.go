package engine

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/digilab/internal/bits"
	"github.com/roach88/digilab/internal/ir"
	"github.com/roach88/digilab/internal/ops"
	"github.com/roach88/digilab/internal/store"
	"github.com/roach88/digilab/internal/testutil"
)

const testSession = "session-engine-test"

func openStore(t *testing.T, path string) *store.Store {
	t.Helper()
	s, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestEngine(t *testing.T, s *store.Store, opts ...Option) *Engine {
	t.Helper()
	base := []Option{
		WithStore(s),
		WithSessionGenerator(testutil.NewFixedSessionGenerator(testSession)),
		WithLogger(slog.New(slog.DiscardHandler)),
	}
	e, err := New(t.Context(), ops.NewRegistry(ops.DefaultLimits()), append(base, opts...)...)
	require.NoError(t, err)
	return e
}

func twosArgs(a, b string) ir.IRObject {
	return ir.IRObject{"minuend": ir.IRString(a), "subtrahend": ir.IRString(b)}
}

func TestInvoke_Success(t *testing.T) {
	s := openStore(t, ":memory:")
	e := newTestEngine(t, s, WithClock(testutil.NewDeterministicClock()))
	ctx := t.Context()

	args := twosArgs("1010", "0011")
	comp, err := e.Invoke(ctx, "twos.subtract", args)
	require.NoError(t, err)

	assert.True(t, comp.Succeeded())
	assert.Equal(t, int64(2), comp.Seq)
	assert.Equal(t, ir.MustInvocationID(testSession, "twos.subtract", args, 1), comp.InvocationID)
	assert.Equal(t, ir.MustCompletionID(comp.InvocationID, ir.OutputSuccess, comp.Result, 2), comp.ID)
	res, _ := comp.Result.String("result")
	assert.Equal(t, "0111", res)

	invs, comps, err := s.ReadSession(ctx, testSession)
	require.NoError(t, err)
	require.Len(t, invs, 1)
	require.Len(t, comps, 1)
	assert.Equal(t, "twos.subtract", invs[0].Op)
	assert.Equal(t, ir.EngineVersion, invs[0].EngineVersion)
	assert.Equal(t, comp, comps[0])
}

func TestInvoke_CalculationFailureIsOutcome(t *testing.T) {
	s := openStore(t, ":memory:")
	e := newTestEngine(t, s)
	ctx := t.Context()

	comp, err := e.Invoke(ctx, "convert", ir.IRObject{
		"value": ir.IRString("102"),
		"from":  ir.IRString("binary"),
		"to":    ir.IRString("decimal"),
	})
	require.NoError(t, err)

	assert.False(t, comp.Succeeded())
	assert.Equal(t, "InvalidSymbol", comp.OutputCase)
	code, _ := comp.Result.String("code")
	assert.Equal(t, string(bits.CodeInvalidSymbol), code)
	msg, _ := comp.Result.String("message")
	assert.NotEmpty(t, msg)

	n, err := s.CountOutcomes(ctx, testSession, "InvalidSymbol")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestInvoke_RuntimeErrorsAreNotJournaled(t *testing.T) {
	s := openStore(t, ":memory:")
	e := newTestEngine(t, s)
	ctx := t.Context()

	_, err := e.Invoke(ctx, "twos.divide", nil)
	assert.True(t, IsUnknownOp(err))

	_, err = e.Invoke(ctx, "twos.subtract", ir.IRObject{"minuend": ir.IRString("1")})
	assert.True(t, IsInvalidArgs(err))
	assert.Contains(t, err.Error(), "subtrahend")

	_, err = e.Invoke(ctx, "twos.subtract", ir.IRObject{
		"minuend":    ir.IRString("1"),
		"subtrahend": ir.IRInt(1),
	})
	assert.True(t, IsInvalidArgs(err))

	_, err = e.Invoke(ctx, "convert", ir.IRObject{
		"value": ir.IRString("1"),
		"from":  ir.IRString("ternary"),
		"to":    ir.IRString("binary"),
	})
	assert.True(t, IsInvalidArgs(err))

	last, err := s.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), last)
}

func TestInvoke_WithoutStore(t *testing.T) {
	e, err := New(t.Context(), ops.NewRegistry(ops.DefaultLimits()),
		WithLogger(slog.New(slog.DiscardHandler)))
	require.NoError(t, err)
	assert.Len(t, e.Session(), 36)

	comp, err := e.Invoke(t.Context(), "gray.encode", ir.IRObject{"binary": ir.IRString("1010")})
	require.NoError(t, err)
	g, _ := comp.Result.String("gray")
	assert.Equal(t, "1111", g)
}

func TestInvoke_LimitExceeded(t *testing.T) {
	s := openStore(t, ":memory:")
	e := newTestEngine(t, s, WithMaxInvocations(2))
	ctx := t.Context()
	args := ir.IRObject{"value": ir.IRString("1")}

	for range 2 {
		_, err := e.Invoke(ctx, "ones.complement", args)
		require.NoError(t, err)
	}
	_, err := e.Invoke(ctx, "ones.complement", args)
	assert.True(t, IsLimitExceeded(err))
	assert.Equal(t, 2, e.quota.used(testSession))

	require.NoError(t, e.Resume(ctx, "another-session"))
	_, err = e.Invoke(ctx, "ones.complement", args)
	assert.NoError(t, err)
}

func TestResume_SeedsLimitFromJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	s := openStore(t, path)
	ctx := t.Context()

	first := newTestEngine(t, s)
	for range 3 {
		_, err := first.Invoke(ctx, "ones.complement", ir.IRObject{"value": ir.IRString("10")})
		require.NoError(t, err)
	}

	second := newTestEngine(t, s, WithMaxInvocations(3))
	require.NoError(t, second.Resume(ctx, testSession))
	_, err := second.Invoke(ctx, "ones.complement", ir.IRObject{"value": ir.IRString("10")})
	assert.True(t, IsLimitExceeded(err))
}

func TestNew_ClockResumesFromJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	s := openStore(t, path)
	e := newTestEngine(t, s)
	for range 2 {
		_, err := e.Invoke(ctx, "gray.decode", ir.IRObject{"gray": ir.IRString("1111")})
		require.NoError(t, err)
	}
	require.NoError(t, s.Close())

	reopened := openStore(t, path)
	e2 := newTestEngine(t, reopened)
	comp, err := e2.Invoke(ctx, "gray.decode", ir.IRObject{"gray": ir.IRString("1111")})
	require.NoError(t, err)
	assert.Equal(t, int64(6), comp.Seq)
}

func TestRuntimeError_Message(t *testing.T) {
	err := newUnknownOp("nope", "s1")
	assert.Equal(t, "UNKNOWN_OP: no operation registered under this name (op=nope)", err.Error())
	assert.False(t, IsInvalidArgs(err))

	plain := &RuntimeError{Code: ErrCodeLimitExceeded, Message: "full"}
	assert.Equal(t, "LIMIT_EXCEEDED: full", plain.Error())
}
