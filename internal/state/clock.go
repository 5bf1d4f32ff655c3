package state

import "sync/atomic"

// Clock numbers collection revisions. Each installed snapshot takes the next value.
type Clock struct {
	n atomic.Uint64
}

// Tick advances the clock and returns the new revision.
func (c *Clock) Tick() uint64 {
	return c.n.Add(1)
}

// Now returns the latest revision handed out.
func (c *Clock) Now() uint64 {
	return c.n.Load()
}
