package sequence

import "sync/atomic"

// Sequencer generates strictly monotonic sequence IDs.
// The order book stamps every resting order with one so that orders at
// the same price are served in arrival order.
type Sequencer struct {
	next atomic.Uint64
}

// New creates a sequencer starting from a given value; the first Next
// returns start+1.
func New(start uint64) *Sequencer {
	s := &Sequencer{}
	s.next.Store(start)
	return s
}

// Next returns the next sequence ID.
func (s *Sequencer) Next() uint64 {
	return s.next.Add(1)
}

// Current returns the last issued sequence.
func (s *Sequencer) Current() uint64 {
	return s.next.Load()
}
