package intake

import "sync"

// Ledger is the set of order identifiers the process has already observed.
// Membership, not order status, gates what counts as "new": once an id is
// added it stays in the set until Reset, so an order whose status briefly
// leaves and re-enters the notifiable set is not announced twice.
//
// The ledger outlives any single consumer; Reset is tied to a merchant
// context change, never to a consumer's lifecycle.
type Ledger struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewLedger() *Ledger {
	return &Ledger{ids: make(map[string]struct{})}
}

// Has reports whether the identifier has been observed before.
func (l *Ledger) Has(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.ids[id]
	return ok
}

// AddAll records every identifier, including ones already present.
func (l *Ledger) AddAll(ids []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range ids {
		l.ids[id] = struct{}{}
	}
}

// Empty reports whether the ledger has seen nothing since the last reset.
func (l *Ledger) Empty() bool {
	return l.Len() == 0
}

func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.ids)
}

// Reset drops the whole set. Called exactly when the active merchant
// context changes.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ids = make(map[string]struct{})
}
