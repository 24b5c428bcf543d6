package engine

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/digilab/internal/ir"
	"github.com/roach88/digilab/internal/ops"
	"github.com/roach88/digilab/internal/parity"
)

func TestVerify_Deterministic(t *testing.T) {
	s := openStore(t, ":memory:")
	e := newTestEngine(t, s)
	ctx := t.Context()

	calls := []struct {
		op   string
		args ir.IRObject
	}{
		{"twos.subtract", twosArgs("0101", "0111")},
		{"bcd.add", ir.IRObject{"a": ir.IRString("1001 0101"), "b": ir.IRString("1000")}},
		{"bcd.subtract", ir.IRObject{"a": ir.IRString("0001"), "b": ir.IRString("0010")}},
		{"checksum8", ir.IRObject{"bytes": ir.Strings("10010110", "01101001")}},
	}
	for _, c := range calls {
		_, err := e.Invoke(ctx, c.op, c.args)
		require.NoError(t, err)
	}

	report, err := e.Verify(ctx, testSession)
	require.NoError(t, err)
	assert.True(t, report.Deterministic(), "%+v", report.Mismatches)
	assert.Equal(t, len(calls), report.Checked)
	assert.Empty(t, report.Pending)
}

func TestVerify_ReportsTamperedCompletion(t *testing.T) {
	s := openStore(t, ":memory:")
	e := newTestEngine(t, s)
	ctx := t.Context()

	args := ir.IRObject{"data": ir.IRString("1011")}
	inv := ir.Invocation{
		ID:            ir.MustInvocationID(testSession, "parity.bit", args, 100),
		SessionToken:  testSession,
		Op:            "parity.bit",
		Args:          args,
		Seq:           100,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}
	forged := ir.IRObject{"bit": ir.IRString("0")}
	comp := ir.Completion{
		ID:           ir.MustCompletionID(inv.ID, ir.OutputSuccess, forged, 101),
		InvocationID: inv.ID,
		OutputCase:   ir.OutputSuccess,
		Result:       forged,
		Seq:          101,
	}
	require.NoError(t, s.WriteExchange(ctx, inv, comp))

	report, err := e.Verify(ctx, testSession)
	require.NoError(t, err)
	require.Len(t, report.Mismatches, 1)
	assert.Equal(t, "completion_id", report.Mismatches[0].Field)
	assert.Equal(t, comp.ID, report.Mismatches[0].Recorded)
}

func TestVerify_ReportsCaseChangeAndPending(t *testing.T) {
	s := openStore(t, ":memory:")
	ctx := t.Context()

	strict := ops.Limits{Binary: 2, Octal: 8, Decimal: 8, Hex: 8, MinWidth: 4, Parity: parity.Even}
	recorder := newTestEngine(t, s)
	_, err := recorder.Invoke(ctx, "gray.encode", ir.IRObject{"binary": ir.IRString("1010")})
	require.NoError(t, err)

	pendingArgs := ir.IRObject{"binary": ir.IRString("1")}
	pending := ir.Invocation{
		ID:           ir.MustInvocationID(testSession, "gray.encode", pendingArgs, 50),
		SessionToken: testSession,
		Op:           "gray.encode",
		Args:         pendingArgs,
		Seq:          50,
	}
	require.NoError(t, s.WriteInvocation(ctx, pending))

	verifier, err := New(ctx, ops.NewRegistry(strict),
		WithStore(s), WithLogger(slog.New(slog.DiscardHandler)))
	require.NoError(t, err)

	report, err := verifier.Verify(ctx, testSession)
	require.NoError(t, err)
	assert.Equal(t, []string{pending.ID}, report.Pending)
	assert.Equal(t, 1, report.Checked)
	require.Len(t, report.Mismatches, 1)
	assert.Equal(t, "output_case", report.Mismatches[0].Field)
	assert.Equal(t, ir.OutputSuccess, report.Mismatches[0].Recorded)
	assert.Equal(t, "WidthExceeded", report.Mismatches[0].Replayed)
}

func TestVerify_RequiresStore(t *testing.T) {
	e, err := New(t.Context(), ops.NewRegistry(ops.DefaultLimits()),
		WithLogger(slog.New(slog.DiscardHandler)))
	require.NoError(t, err)
	_, err = e.Verify(t.Context(), "any")
	assert.Error(t, err)
}
