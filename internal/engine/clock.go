package engine

import "sync/atomic"

// SeqSource hands out strictly increasing sequence numbers.
// Clock and testutil.DeterministicClock implement it.
type SeqSource interface {
	Next() int64
	Current() int64
}

// Clock is a logical clock. Journal order comes from it, never from wall
// time. Safe for concurrent use.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock whose first Next is 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock that continues after start, so a reopened
// journal keeps increasing.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last sequence number handed out.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
