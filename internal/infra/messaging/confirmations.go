package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"foodtruck_order_notifier/internal/domain/order"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const confirmationQueue = "order_confirmations"

// ConfirmationEvent is the payload the downstream confirmation sender
// (email/SMS) consumes after an order is accepted.
type ConfirmationEvent struct {
	EventID       string    `json:"event_id"`
	OrderID       string    `json:"order_id"`
	MerchantID    string    `json:"merchant_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	CustomerPhone string    `json:"customer_phone"`
	PickupTime    time.Time `json:"pickup_time"`
	Total         float64   `json:"total"`
	EmittedAt     time.Time `json:"emitted_at"`
}

// ConfirmationPublisher publishes accept confirmations to a durable queue.
type ConfirmationPublisher struct {
	client *Client
	logger *logrus.Entry
}

// NewConfirmationPublisher declares the durable queue up front so a broker
// misconfiguration surfaces at startup, not on the first accept.
func NewConfirmationPublisher(client *Client, logger *logrus.Entry) (*ConfirmationPublisher, error) {
	_, err := client.Channel().QueueDeclare(confirmationQueue, true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("declare queue %s: %w", confirmationQueue, err)
	}
	return &ConfirmationPublisher{client: client, logger: logger}, nil
}

func (p *ConfirmationPublisher) PublishConfirmation(ctx context.Context, o *order.Order) error {
	ev := ConfirmationEvent{
		EventID:       uuid.NewString(),
		OrderID:       o.ID,
		MerchantID:    o.MerchantID,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		CustomerPhone: o.CustomerPhone,
		PickupTime:    o.PickupTime,
		Total:         o.Total,
		EmittedAt:     time.Now(),
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal confirmation event: %w", err)
	}

	err = p.client.Channel().PublishWithContext(ctx, "", confirmationQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Timestamp:    ev.EmittedAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish confirmation for order %s: %w", o.ID, err)
	}
	p.logger.WithFields(logrus.Fields{"order_id": o.ID, "event_id": ev.EventID}).Debug("confirmation event published")
	return nil
}
