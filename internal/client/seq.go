package client

import "sync"

// Sequencer orders refetches so a slow response never replaces a newer one.
// Take a number with Next before issuing a request and call Apply with it
// when the response arrives; only apply the result if Apply returns true.
type Sequencer struct {
	mu      sync.Mutex
	next    uint64
	applied uint64
}

func (s *Sequencer) Next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return s.next
}

func (s *Sequencer) Apply(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.applied {
		return false
	}
	s.applied = seq
	return true
}
