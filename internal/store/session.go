package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/roach88/digilab/internal/ir"
)

// SessionState summarizes a session's journal.
type SessionState struct {
	Token       string
	Invocations []ir.Invocation
	Completions []ir.Completion
	LastSeq     int64
	Pending     int            // invocations without a completion
	Outcomes    map[string]int // completions per output case
	Complete    bool           // at least one invocation and none pending
}

// SessionState reads a session and counts its outcomes.
func (s *Store) SessionState(ctx context.Context, session string) (SessionState, error) {
	invs, comps, err := s.ReadSession(ctx, session)
	if err != nil {
		return SessionState{}, fmt.Errorf("session state: %w", err)
	}

	st := SessionState{
		Token:       session,
		Invocations: invs,
		Completions: comps,
		Outcomes:    map[string]int{},
	}
	done := make(map[string]bool, len(comps))
	for _, c := range comps {
		done[c.InvocationID] = true
		st.Outcomes[c.OutputCase]++
		st.LastSeq = max(st.LastSeq, c.Seq)
	}
	for _, inv := range invs {
		st.LastSeq = max(st.LastSeq, inv.Seq)
		if !done[inv.ID] {
			st.Pending++
		}
	}
	st.Complete = len(invs) > 0 && st.Pending == 0
	return st, nil
}

// EventType distinguishes invocations from completions in a replay stream.
type EventType int

const (
	EventInvocation EventType = iota
	EventCompletion
)

func (t EventType) String() string {
	switch t {
	case EventInvocation:
		return "invocation"
	case EventCompletion:
		return "completion"
	}
	return "unknown"
}

// Event is one record of a replay stream. Exactly one of Invocation and
// Completion is set.
type Event struct {
	Type       EventType
	Seq        int64
	ID         string
	Invocation *ir.Invocation
	Completion *ir.Completion
}

// ReplaySession merges a session's invocations and completions into one
// stream ordered by seq, then invocations before completions, then ID.
func (s *Store) ReplaySession(ctx context.Context, session string) ([]Event, error) {
	invs, comps, err := s.ReadSession(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("replay session: %w", err)
	}

	events := make([]Event, 0, len(invs)+len(comps))
	for i := range invs {
		events = append(events, Event{Type: EventInvocation, Seq: invs[i].Seq, ID: invs[i].ID, Invocation: &invs[i]})
	}
	for i := range comps {
		events = append(events, Event{Type: EventCompletion, Seq: comps[i].Seq, ID: comps[i].ID, Completion: &comps[i]})
	}
	slices.SortFunc(events, func(a, b Event) int {
		return cmp.Or(
			cmp.Compare(a.Seq, b.Seq),
			cmp.Compare(a.Type, b.Type),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return events, nil
}
