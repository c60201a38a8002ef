package app

import "sync"

// IntakeState is the shared derived state exposed to the rest of the
// application: the pending-order count and a refresh sequence that
// consumers (e.g. a dashboard summary) can observe to learn a mutation
// occurred. The poller recomputes the count; the dispatcher only ever
// decrements it, floored at zero.
type IntakeState struct {
	mu         sync.Mutex
	pending    int
	refreshSeq uint64
}

func NewIntakeState() *IntakeState {
	return &IntakeState{}
}

// Recount overwrites the pending count with a freshly computed value.
func (s *IntakeState) Recount(n int) {
	if n < 0 {
		n = 0
	}
	s.mu.Lock()
	s.pending = n
	s.mu.Unlock()
}

// Decrement lowers the pending count by one, never below zero.
func (s *IntakeState) Decrement() {
	s.mu.Lock()
	if s.pending > 0 {
		s.pending--
	}
	s.mu.Unlock()
}

func (s *IntakeState) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// BumpRefresh advances the refresh sequence after a successful mutation.
func (s *IntakeState) BumpRefresh() {
	s.mu.Lock()
	s.refreshSeq++
	s.mu.Unlock()
}

func (s *IntakeState) RefreshSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshSeq
}

// Reset clears the state when the active merchant context changes.
func (s *IntakeState) Reset() {
	s.mu.Lock()
	s.pending = 0
	s.refreshSeq = 0
	s.mu.Unlock()
}
