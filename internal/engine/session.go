package engine

import "github.com/google/uuid"

// SessionTokenGenerator creates tokens that group invocations into sessions.
// Implemented by UUIDv7Generator and testutil.FixedSessionGenerator.
type SessionTokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 session tokens, so
// ListSessions output reads in creation order.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
