package engine

import "fmt"

// DefaultMaxInvocations bounds the invocations one session may record.
const DefaultMaxInvocations = 10000

// quota counts invocations per session.
type quota struct {
	max    int
	counts map[string]int
}

func newQuota(max int) *quota {
	return &quota{max: max, counts: make(map[string]int)}
}

// take charges one invocation to session. A max of zero or less disables
// the limit.
func (q *quota) take(op, session string) error {
	if q.max <= 0 {
		return nil
	}
	if q.counts[session] >= q.max {
		return &RuntimeError{
			Code:    ErrCodeLimitExceeded,
			Message: fmt.Sprintf("session reached %d invocations", q.max),
			Op:      op,
			Session: session,
		}
	}
	q.counts[session]++
	return nil
}

// seed records invocations already journaled for session.
func (q *quota) seed(session string, n int) {
	q.counts[session] = n
}

func (q *quota) used(session string) int {
	return q.counts[session]
}
