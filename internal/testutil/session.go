package testutil

// DefaultSession is the token FixedSessionGenerator falls back to.
const DefaultSession = "test-session-default"

// FixedSessionGenerator hands out the same session token every time.
// It satisfies engine.SessionTokenGenerator.
type FixedSessionGenerator struct {
	token string
}

// NewFixedSessionGenerator returns a generator for token, or DefaultSession
// when token is empty. Worksheets usually set it:
//
//	session: "ws-twos-00000000-0000-0000-0000-000000000001"
func NewFixedSessionGenerator(token string) *FixedSessionGenerator {
	if token == "" {
		token = DefaultSession
	}
	return &FixedSessionGenerator{token: token}
}

// Generate returns the fixed token.
func (g *FixedSessionGenerator) Generate() string {
	return g.token
}
