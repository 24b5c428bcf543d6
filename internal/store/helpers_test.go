package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/digilab/internal/ir"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testInvocation(id, session, op string, seq int64) ir.Invocation {
	return ir.Invocation{
		ID:            id,
		SessionToken:  session,
		Op:            op,
		Args:          ir.IRObject{"value": ir.IRString("1010")},
		Seq:           seq,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}
}

func testCompletion(id, invocationID, outputCase string, seq int64) ir.Completion {
	return ir.Completion{
		ID:           id,
		InvocationID: invocationID,
		OutputCase:   outputCase,
		Result:       ir.IRObject{"output": ir.IRString("1111")},
		Seq:          seq,
	}
}
