package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvocationIDDeterminism(t *testing.T) {
	args := IRObject{"minuend": IRString("1101"), "subtrahend": IRString("0011")}

	id1, err := InvocationID("session-1", "twos.subtract", args, 1)
	require.NoError(t, err)
	id2, err := InvocationID("session-1", "twos.subtract", args, 1)
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	assert.Len(t, id1, 64)
}

func TestInvocationIDChangesWithInput(t *testing.T) {
	args := IRObject{"bits": IRString("1010")}

	base := MustInvocationID("s1", "gray.encode", args, 1)
	assert.NotEqual(t, base, MustInvocationID("s2", "gray.encode", args, 1))
	assert.NotEqual(t, base, MustInvocationID("s1", "gray.decode", args, 1))
	assert.NotEqual(t, base, MustInvocationID("s1", "gray.encode", args, 2))
	assert.NotEqual(t, base, MustInvocationID("s1", "gray.encode", IRObject{"bits": IRString("1011")}, 1))
}

func TestDomainSeparation(t *testing.T) {
	// Same payload hashed under both domains must differ.
	inv := hashWithDomain(DomainInvocation, []byte("{}"))
	comp := hashWithDomain(DomainCompletion, []byte("{}"))
	assert.NotEqual(t, inv, comp)
}

func TestCompletionID(t *testing.T) {
	result := IRObject{"gray": IRString("1111")}
	id := MustCompletionID("inv-1", OutputSuccess, result, 2)
	assert.Len(t, id, 64)
	assert.NotEqual(t, id, MustCompletionID("inv-1", "InvalidSymbol", result, 2))

	_, err := CompletionID("inv-1", OutputSuccess, IRObject{"x": IRNull{}}, 2)
	assert.Error(t, err)
}
