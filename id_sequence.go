package amqp

import "sync"

// IdSequence hands out monotonically increasing identifiers starting at 1
// (0 is reserved as "no delivery tag yet" / "no channel" depending on the
// caller). It backs delivery tags and publisher-confirm sequence numbers;
// channel ids come from a separate pool. Publish on a confirm-mode channel can be called
// concurrently by an application, so the counter is guarded rather than
// left to race: two overlapping Next() calls must never hand out the same
// tag or reorder the sequence.
type IdSequence struct {
	mu   sync.Mutex
	next uint64
}

// NewIdSequence returns a sequence whose first Next() call yields 1.
func NewIdSequence() *IdSequence {
	return &IdSequence{next: 1}
}

// Next returns the next id and advances the sequence.
func (s *IdSequence) Next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	return id
}

// Reset rewinds the sequence back to 1.
func (s *IdSequence) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next = 1
}

// Peek reports the id that would be returned by the next call to Next,
// without consuming it.
func (s *IdSequence) Peek() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}
