// internal/infra/telegram/merchant_notifier.go
package telegram

import (
	"fmt"
	"strings"

	"foodtruck_order_notifier/internal/domain/order"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// MerchantNotifier delivers intake messages to the merchant's chat: passive
// new-order toasts, actionable per-order prompts with Accept/Decline inline
// buttons, and the nothing-pending notice.
type MerchantNotifier struct {
	client Client
	chatID int64
	logger *logrus.Entry
}

func NewMerchantNotifier(client Client, chatID int64, logger *logrus.Entry) *MerchantNotifier {
	return &MerchantNotifier{client: client, chatID: chatID, logger: logger}
}

// Toast announces new orders without asking for any action.
func (n *MerchantNotifier) Toast(count int) error {
	text := fmt.Sprintf("%d new orders received.", count)
	if count == 1 {
		text = "1 new order received."
	}
	return n.client.SendMessage(n.chatID, text, nil)
}

// PromptOrders sends one actionable message per queued order. Delivery
// failures for individual orders are logged and the rest still go out; the
// last failure is returned so callers can record it.
func (n *MerchantNotifier) PromptOrders(orders []*order.Order) error {
	var lastErr error
	for _, o := range orders {
		markup := &telebot.ReplyMarkup{}
		btnAccept := markup.Data("Accept", fmt.Sprintf("acc_%s", o.ID))
		btnDecline := markup.Data("Decline", fmt.Sprintf("dec_%s", o.ID))
		markup.Inline(markup.Row(btnAccept, btnDecline))

		err := n.client.SendMessage(n.chatID, formatOrder(o), &telebot.SendOptions{ReplyMarkup: markup})
		if err != nil {
			n.logger.WithError(err).WithField("order_id", o.ID).Error("failed to deliver order prompt")
			lastErr = err
		}
	}
	return lastErr
}

// NothingPending tells the merchant an explicit refresh found no backlog.
func (n *MerchantNotifier) NothingPending() error {
	return n.client.SendMessage(n.chatID, "No pending orders right now.", nil)
}

func formatOrder(o *order.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order %s — %s\n", o.ID, o.CustomerName)
	fmt.Fprintf(&b, "Pickup: %s\n", o.PickupTime.Format("15:04"))
	for _, item := range o.Items {
		fmt.Fprintf(&b, "  %dx %s\n", item.Quantity, item.Name)
	}
	fmt.Fprintf(&b, "Total: %.2f", o.Total)
	return b.String()
}
