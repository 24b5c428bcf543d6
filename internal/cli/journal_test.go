package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/digilab/internal/store"
)

func TestInvokeCommand(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "invoke", "gray.encode", "--args", `{"binary":"1010"}`)
	require.NoError(t, err)
	resp := decodeOp(t, out)
	assert.Equal(t, "gray.encode", resp.Data.Op)
	assert.Equal(t, "1111", resp.Data.Result["gray"])

	out, _, err = execute(t, "invoke", "gray.table", "--args", `{"width":2}`)
	require.NoError(t, err)
	assert.Contains(t, out, "binary=10 decimal=2 gray=11")
}

func TestInvokeCommand_Refusals(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
	}{
		{"invalid json", []string{"invoke", "convert", "--args", `{"value":`}, "INVALID_ARGS"},
		{"float", []string{"invoke", "gray.table", "--args", `{"width":2.5}`}, "INVALID_ARGS"},
		{"unknown op", []string{"invoke", "twos.divide"}, "UNKNOWN_OP"},
		{"missing arg", []string{"invoke", "convert", "--args", `{"from":"hex"}`}, "INVALID_ARGS"},
		{"unknown arg", []string{"invoke", "gray.encode", "--args", `{"binary":"1","extra":true}`}, "INVALID_ARGS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, append([]string{"--format", "json"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))

			var resp CLIResponse
			require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestInvokeMissingOp(t *testing.T) {
	_, _, err := execute(t, "invoke")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestOpsCommand(t *testing.T) {
	out, _, err := execute(t, "ops")
	require.NoError(t, err)
	assert.Contains(t, out, "twos.subtract")
	assert.Contains(t, out, "[steps:bool]")

	out, _, err = execute(t, "--format", "json", "ops")
	require.NoError(t, err)
	var resp struct {
		Data []struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Len(t, resp.Data, 25)
}

// journal runs a short lesson into a fresh database and returns its path.
func journal(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "digilab.db")
	_, _, err := execute(t, "--db", db, "--session", "lesson-1", "convert", "7", "--to", "binary")
	require.NoError(t, err)
	_, _, err = execute(t, "--db", db, "--session", "lesson-1", "gray", "encode", "101")
	require.NoError(t, err)
	_, _, err = execute(t, "--db", db, "--session", "lesson-1", "gray", "decode", "12")
	require.Error(t, err)
	return db
}

func TestTraceCommand(t *testing.T) {
	db := journal(t)

	out, _, err := execute(t, "--db", db, "trace")
	require.NoError(t, err)
	assert.Equal(t, "lesson-1\n", out)

	out, _, err = execute(t, "--db", db, "--session", "lesson-1", "trace")
	require.NoError(t, err)
	assert.Contains(t, out, "Trace for Session: lesson-1")
	assert.Contains(t, out, "Status: Complete")
	assert.Contains(t, out, "[1] INV  convert from=decimal to=binary value=7")
	assert.Contains(t, out, "[4] COMP gray.encode Success")
	assert.Contains(t, out, "[6] COMP gray.decode InvalidSymbol")
	assert.Contains(t, out, "InvalidSymbol: 1")

	out, _, err = execute(t, "--db", db, "--session", "lesson-1", "--format", "json", "trace", "--op", "gray.encode")
	require.NoError(t, err)
	var resp struct {
		Data TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Timeline, 2)
	assert.Equal(t, "gray.encode", resp.Data.Timeline[1].Op)
	assert.Equal(t, 3, resp.Data.Stats.Invocations)
	assert.Equal(t, 2, resp.Data.Stats.Outcomes["Success"])
	assert.True(t, resp.Data.Stats.IsComplete)
}

func TestTraceCommand_UnknownSession(t *testing.T) {
	db := journal(t)
	out, _, err := execute(t, "--db", db, "--session", "nope", "trace")
	require.NoError(t, err)
	assert.Contains(t, out, "No events found for session: nope")
}

func TestTraceAndReplay_RequireDatabase(t *testing.T) {
	for _, name := range []string{"trace", "replay"} {
		_, _, err := execute(t, name)
		require.Error(t, err, name)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, err.Error(), "no database")
	}
}

func TestReplayCommand(t *testing.T) {
	db := journal(t)

	out, _, err := execute(t, "--db", db, "replay")
	require.NoError(t, err)
	assert.Contains(t, out, "Replay Summary: 1 session(s)")
	assert.Contains(t, out, "Checked: 3 invocations, 0 pending")
	assert.Contains(t, out, "✓ All sessions verified deterministic")
}

func TestReplayCommand_ChangedLimits(t *testing.T) {
	db := journal(t)
	cfg := writeFile(t, t.TempDir(), "digilab.cue", "limits: binary: 2\n")

	out, _, err := execute(t, "--db", db, "--config", cfg, "--session", "lesson-1", "--format", "json", "replay")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string       `json:"status"`
		Data   ReplayResult `json:"data"`
		Error  *CLIError    `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "E_DETERMINISM", resp.Error.Code)
	require.Len(t, resp.Data.Sessions, 1)
	require.NotEmpty(t, resp.Data.Sessions[0].Mismatches)
	assert.Equal(t, "gray.encode", resp.Data.Sessions[0].Mismatches[0].Op)
	assert.Equal(t, "output_case", resp.Data.Sessions[0].Mismatches[0].Field)
}

func TestReplayCommand_EmptyDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "empty.db")
	st, err := store.Open(db)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, _, err := execute(t, "--db", db, "replay")
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions found")
}
