package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes keep invocation and completion hashes disjoint.
const (
	DomainInvocation = "digilab/invocation/v1"
	DomainCompletion = "digilab/completion/v1"
)

// hashWithDomain returns hex(SHA256(domain || 0x00 || data)).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// InvocationID derives the ID of an invocation from its session, operation,
// arguments and sequence number.
func InvocationID(session, op string, args IRObject, seq int64) (string, error) {
	data, err := MarshalCanonical(IRObject{
		"session_token": IRString(session),
		"op":            IRString(op),
		"args":          args,
		"seq":           IRInt(seq),
	})
	if err != nil {
		return "", fmt.Errorf("invocation id: %w", err)
	}
	return hashWithDomain(DomainInvocation, data), nil
}

// CompletionID derives the ID of a completion from the invocation it
// completes and its outcome.
func CompletionID(invocationID, outputCase string, result IRObject, seq int64) (string, error) {
	data, err := MarshalCanonical(IRObject{
		"invocation_id": IRString(invocationID),
		"output_case":   IRString(outputCase),
		"result":        result,
		"seq":           IRInt(seq),
	})
	if err != nil {
		return "", fmt.Errorf("completion id: %w", err)
	}
	return hashWithDomain(DomainCompletion, data), nil
}

// MustInvocationID is InvocationID for inputs known to be valid.
func MustInvocationID(session, op string, args IRObject, seq int64) string {
	id, err := InvocationID(session, op, args, seq)
	if err != nil {
		panic(err)
	}
	return id
}

// MustCompletionID is CompletionID for inputs known to be valid.
func MustCompletionID(invocationID, outputCase string, result IRObject, seq int64) string {
	id, err := CompletionID(invocationID, outputCase, result, seq)
	if err != nil {
		panic(err)
	}
	return id
}
