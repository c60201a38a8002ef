package order

import (
	"context"
	"time"
)

// Filter scopes a read against the order store.
type Filter struct {
	MerchantID string
	From       time.Time // inclusive
	To         time.Time // exclusive
	Statuses   []Status
}

// Patch describes a partial update of an order. Nil fields are left untouched.
type Patch struct {
	Status       *Status
	PickupTime   *time.Time
	CancelReason *string
}

// Gateway defines the operations this subsystem needs from the order store.
type Gateway interface {
	FetchOrders(ctx context.Context, f Filter) ([]*Order, error)
	GetOrder(ctx context.Context, id string) (*Order, error)
	UpdateOrder(ctx context.Context, id string, p Patch) (*Order, error)
}
