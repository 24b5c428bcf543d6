package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/digilab/internal/ir"
)

func TestSessionState(t *testing.T) {
	s := openTestStore(t)
	ctx := t.Context()

	require.NoError(t, s.WriteExchange(ctx, testInvocation("i1", "s1", "op", 1), testCompletion("c1", "i1", ir.OutputSuccess, 2)))
	require.NoError(t, s.WriteExchange(ctx, testInvocation("i2", "s1", "op", 3), testCompletion("c2", "i2", "InvalidSymbol", 4)))

	st, err := s.SessionState(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), st.LastSeq)
	assert.Equal(t, 0, st.Pending)
	assert.True(t, st.Complete)
	assert.Equal(t, map[string]int{ir.OutputSuccess: 1, "InvalidSymbol": 1}, st.Outcomes)

	require.NoError(t, s.WriteInvocation(ctx, testInvocation("i3", "s1", "op", 5)))
	st, err = s.SessionState(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, st.Pending)
	assert.False(t, st.Complete)
	assert.Equal(t, int64(5), st.LastSeq)

	empty, err := s.SessionState(ctx, "none")
	require.NoError(t, err)
	assert.False(t, empty.Complete)
}

func TestReplaySession(t *testing.T) {
	s := openTestStore(t)
	ctx := t.Context()

	require.NoError(t, s.WriteExchange(ctx, testInvocation("i1", "s1", "op", 1), testCompletion("c1", "i1", ir.OutputSuccess, 2)))
	require.NoError(t, s.WriteExchange(ctx, testInvocation("i2", "s1", "op", 3), testCompletion("c2", "i2", ir.OutputSuccess, 4)))

	events, err := s.ReplaySession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, events, 4)

	var kinds []string
	var seqs []int64
	for _, e := range events {
		kinds = append(kinds, e.Type.String())
		seqs = append(seqs, e.Seq)
	}
	assert.Equal(t, []string{"invocation", "completion", "invocation", "completion"}, kinds)
	assert.Equal(t, []int64{1, 2, 3, 4}, seqs)
	assert.Equal(t, "i1", events[0].Invocation.ID)
	assert.Equal(t, "i2", events[3].Completion.InvocationID)
}
