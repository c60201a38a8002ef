package intake

import (
	"sort"
	"sync"

	"foodtruck_order_notifier/internal/domain/order"
)

// Queue holds the orders currently awaiting merchant attention. Entries are
// snapshots taken at insertion time; a later fetch replaces the whole queue
// rather than patching individual entries, so a stale replacement is merely
// an extra harmless recomputation.
type Queue struct {
	mu      sync.Mutex
	entries []*order.Order
}

func NewQueue() *Queue {
	return &Queue{}
}

// Replace swaps the queue contents for the given orders, oldest pickup time
// first, so the merchant always sees the full backlog rather than a diff.
func (q *Queue) Replace(orders []*order.Order) {
	entries := snapshotAll(orders)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].PickupTime.Before(entries[j].PickupTime)
	})
	q.mu.Lock()
	q.entries = entries
	q.mu.Unlock()
}

// ReplacePromoting swaps the queue contents so that target comes first
// regardless of its pickup time, followed by the rest ordered oldest pickup
// first. Any duplicate of target in rest is dropped.
func (q *Queue) ReplacePromoting(target *order.Order, rest []*order.Order) {
	if target == nil {
		q.Replace(rest)
		return
	}
	others := make([]*order.Order, 0, len(rest))
	for _, o := range rest {
		if o.ID != target.ID {
			others = append(others, o)
		}
	}
	sorted := snapshotAll(others)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PickupTime.Before(sorted[j].PickupTime)
	})
	entries := make([]*order.Order, 0, len(sorted)+1)
	entries = append(entries, snapshot(target))
	entries = append(entries, sorted...)

	q.mu.Lock()
	q.entries = entries
	q.mu.Unlock()
}

// Remove deletes the entry with the given id and reports whether it was
// present. Removing an absent id is a no-op, which protects against user
// double-taps and overlapping poll cycles.
func (q *Queue) Remove(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, e := range q.entries {
		if e.ID == id {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the current entries in queue order.
func (q *Queue) Snapshot() []*order.Order {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*order.Order, len(q.entries))
	copy(out, q.entries)
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

func (q *Queue) Clear() {
	q.mu.Lock()
	q.entries = nil
	q.mu.Unlock()
}

// snapshot copies the order so a queue entry reflects the order as it was
// when queued, not as later fetches mutate it.
func snapshot(o *order.Order) *order.Order {
	cp := *o
	if o.Items != nil {
		cp.Items = make([]order.Item, len(o.Items))
		copy(cp.Items, o.Items)
	}
	return &cp
}

func snapshotAll(orders []*order.Order) []*order.Order {
	out := make([]*order.Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, snapshot(o))
	}
	return out
}
