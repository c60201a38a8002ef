package app

import (
	"context"
	"fmt"
	"time"

	"foodtruck_order_notifier/internal/domain/intake"
	"foodtruck_order_notifier/internal/domain/order"
	"foodtruck_order_notifier/internal/infra/metrics"

	"github.com/sirupsen/logrus"
)

// DefaultCancelReason is used when the merchant declines an order without
// giving a reason.
const DefaultCancelReason = "Declined by the food truck"

const confirmationTimeout = 10 * time.Second

// ConfirmationPublisher emits a best-effort confirmation event after an
// order is accepted. Its outcome never affects the accept itself.
type ConfirmationPublisher interface {
	PublishConfirmation(ctx context.Context, o *order.Order) error
}

// DispatchService performs the merchant's accept/cancel/dismiss actions.
// Its local mutations are an optimistic convenience; the next poll cycle is
// the source of truth and reconciles any discrepancy.
type DispatchService struct {
	gateway   order.Gateway
	settings  intake.SettingsSource
	queue     *intake.Queue
	state     *IntakeState
	publisher ConfirmationPublisher
	metrics   *metrics.IntakeMetrics
	logger    *logrus.Entry
}

func NewDispatchService(
	gw order.Gateway,
	src intake.SettingsSource,
	queue *intake.Queue,
	state *IntakeState,
	publisher ConfirmationPublisher,
	m *metrics.IntakeMetrics,
	logger *logrus.Entry,
) *DispatchService {
	return &DispatchService{
		gateway:   gw,
		settings:  src,
		queue:     queue,
		state:     state,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// Accept transitions the order to confirmed, optionally pinning a concrete
// pickup time when the customer asked for "as soon as possible". On remote
// failure the queue entry is kept so the merchant can retry.
func (s *DispatchService) Accept(ctx context.Context, id string, pickupOverride *time.Time) error {
	status := order.StatusConfirmed
	updated, err := s.gateway.UpdateOrder(ctx, id, order.Patch{
		Status:     &status,
		PickupTime: pickupOverride,
	})
	if err != nil {
		s.logger.WithError(err).WithField("order_id", id).Error("accept failed, order kept in queue for retry")
		return fmt.Errorf("accept order %s: %w", id, err)
	}

	s.queue.Remove(id)
	s.state.Decrement()
	s.state.BumpRefresh()
	s.metrics.IncAccepted()
	s.metrics.SetPending(s.state.PendingCount())
	s.logger.WithField("order_id", id).Info("order accepted")

	s.dispatchConfirmation(updated)
	return nil
}

// Cancel transitions the order to cancelled with the given reason. Same
// local cleanup as Accept, no side call.
func (s *DispatchService) Cancel(ctx context.Context, id string, reason string) error {
	if reason == "" {
		reason = DefaultCancelReason
	}
	status := order.StatusCancelled
	_, err := s.gateway.UpdateOrder(ctx, id, order.Patch{
		Status:       &status,
		CancelReason: &reason,
	})
	if err != nil {
		s.logger.WithError(err).WithField("order_id", id).Error("cancel failed, order kept in queue for retry")
		return fmt.Errorf("cancel order %s: %w", id, err)
	}

	s.queue.Remove(id)
	s.state.Decrement()
	s.state.BumpRefresh()
	s.metrics.IncCancelled()
	s.metrics.SetPending(s.state.PendingCount())
	s.logger.WithFields(logrus.Fields{"order_id": id, "reason": reason}).Info("order cancelled")
	return nil
}

// Dismiss removes the order from the queue without touching the store.
// Dismissing an order that is no longer queued is a no-op.
func (s *DispatchService) Dismiss(id string) {
	if s.queue.Remove(id) {
		s.logger.WithField("order_id", id).Debug("order dismissed from queue")
	}
}

// dispatchConfirmation fires the detached confirmation side-effect. It runs
// on its own goroutine with its own timeout and swallows every failure, so
// the accept that triggered it is never blocked or rolled back.
func (s *DispatchService) dispatchConfirmation(o *order.Order) {
	if s.publisher == nil || o == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), confirmationTimeout)
		defer cancel()

		cfg, err := s.settings.MerchantSettings(ctx, o.MerchantID)
		if err != nil {
			s.logger.WithError(err).Warn("confirmation skipped, could not load merchant settings")
			return
		}
		if !cfg.SendConfirmationEmail {
			return
		}
		if err := s.publisher.PublishConfirmation(ctx, o); err != nil {
			s.logger.WithError(err).WithField("order_id", o.ID).Warn("confirmation dispatch failed")
		}
	}()
}
