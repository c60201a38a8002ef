package intake

import "foodtruck_order_notifier/internal/domain/order"

// Mode is the operating mode derived from merchant settings. It is read
// fresh each polling cycle; a mode change never retroactively alters
// already-queued entries, it only changes the filter used on the next poll.
type Mode struct {
	AutoAccept     bool
	ShowPopup      bool
	MinPrepMinutes int
}

// PollStatuses returns the status filter for the mode's read against the
// order store. Auto-accept must also track pending orders mid-payment, so
// its filter is wider than its attention predicate.
func (m Mode) PollStatuses() []order.Status {
	if m.AutoAccept {
		return []order.Status{order.StatusPending, order.StatusConfirmed}
	}
	return []order.Status{order.StatusPending}
}

// NeedsAttention reports whether an order in the given status should be
// presented to the merchant. The manual and auto-accept predicates never
// overlap: manual acts on pending, auto-accept informs about confirmed.
func (m Mode) NeedsAttention(s order.Status) bool {
	if m.AutoAccept {
		return s == order.StatusConfirmed
	}
	return s == order.StatusPending
}

// ActionKind tags what happens when a polling cycle finds new orders.
type ActionKind int

const (
	// ActionNone means nothing is announced this cycle.
	ActionNone ActionKind = iota
	// ActionToast means a passive count summary with no queue change.
	ActionToast
	// ActionPopup means the queue is rebuilt and presented for action.
	ActionPopup
)

// Action is the notification decision for one polling cycle.
type Action struct {
	Kind     ActionKind
	NewCount int
}

// Decide is the single dispatch point for new-order detection. The first
// observation after a ledger reset never announces anything, regardless of
// how many notifiable orders exist.
func (m Mode) Decide(newCount int, firstObservation bool) Action {
	if newCount == 0 || firstObservation {
		return Action{Kind: ActionNone}
	}
	if !m.ShowPopup {
		return Action{Kind: ActionToast, NewCount: newCount}
	}
	return Action{Kind: ActionPopup, NewCount: newCount}
}
