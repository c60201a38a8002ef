package app

import "foodtruck_order_notifier/internal/domain/order"

// MerchantNotifier delivers passive and actionable messages to the merchant.
// Implementations own the presentation; the services only decide what to say.
type MerchantNotifier interface {
	// Toast announces a count of new orders without requiring any action.
	Toast(count int) error
	// PromptOrders presents orders for explicit accept/decline action.
	PromptOrders(orders []*order.Order) error
	// NothingPending tells the merchant an explicit refresh found no backlog.
	NothingPending() error
}

// Chimer plays the new-order chime. Requests may be silently dropped while
// the underlying audio capability is locked or disabled.
type Chimer interface {
	Chime()
}
