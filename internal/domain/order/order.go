package order

import "time"

// Status represents a stage in the order lifecycle.
// Corresponds to the 'status' column of the 'orders' table.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusReady     Status = "ready"
	StatusPickedUp  Status = "picked_up"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

// Terminal reports whether an order in this status can no longer progress.
func (s Status) Terminal() bool {
	return s == StatusPickedUp || s == StatusCancelled || s == StatusNoShow
}

// WalkInContact is the contact marker the point-of-sale writes on orders the
// merchant typed in at the counter. Such orders must never trigger a
// notification back to the merchant who created them. The marker is owned by
// the external data model; IsWalkIn is the only place it is compared.
const WalkInContact = "walkin@pos.local"

// Item is a single order line.
type Item struct {
	Name      string
	Quantity  int
	UnitPrice float64
}

// Order is the read model of a customer order. Orders are owned by the
// backing store; this subsystem only reads them and requests status
// transitions, it never constructs or deletes them.
type Order struct {
	ID            string
	MerchantID    string
	Status        Status
	PickupTime    time.Time
	CreatedAt     time.Time
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Total         float64
	Items         []Item
}

// IsWalkIn reports whether the order was created manually by the merchant.
func (o *Order) IsWalkIn() bool {
	return o.CustomerEmail == WalkInContact
}
