package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"foodtruck_order_notifier/internal/domain/intake"
	"foodtruck_order_notifier/internal/domain/order"
	"foodtruck_order_notifier/internal/infra/metrics"

	"github.com/sirupsen/logrus"
)

const tapTimeout = 10 * time.Second

// IntakeService runs the polling cycle against the order store: it computes
// the notifiable set for the current mode, partitions it against the ledger,
// and dispatches the mode's notification action. It also serves the explicit
// merchant-triggered refreshes and the push-notification tap bridge.
type IntakeService struct {
	gateway  order.Gateway
	settings intake.SettingsSource
	ledger   *intake.Ledger
	queue    *intake.Queue
	state    *IntakeState
	notifier MerchantNotifier
	chime    Chimer
	metrics  *metrics.IntakeMetrics
	logger   *logrus.Entry

	mu         sync.Mutex
	merchantID string
}

func NewIntakeService(
	gw order.Gateway,
	src intake.SettingsSource,
	ledger *intake.Ledger,
	queue *intake.Queue,
	state *IntakeState,
	notifier MerchantNotifier,
	chime Chimer,
	m *metrics.IntakeMetrics,
	logger *logrus.Entry,
	merchantID string,
) *IntakeService {
	return &IntakeService{
		gateway:    gw,
		settings:   src,
		ledger:     ledger,
		queue:      queue,
		state:      state,
		notifier:   notifier,
		chime:      chime,
		metrics:    m,
		logger:     logger,
		merchantID: merchantID,
	}
}

// ActivateMerchant switches the active merchant context. Switching resets
// the ledger, the queue and the derived state so the next cycle starts from
// a clean first observation.
func (s *IntakeService) ActivateMerchant(merchantID string) {
	s.mu.Lock()
	changed := s.merchantID != merchantID
	s.merchantID = merchantID
	s.mu.Unlock()

	if changed {
		s.logger.WithField("merchant_id", merchantID).Info("merchant context changed, resetting intake state")
		s.ledger.Reset()
		s.queue.Clear()
		s.state.Reset()
	}
}

func (s *IntakeService) MerchantID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.merchantID
}

// PollOnce executes one polling cycle. A failed fetch is logged and skipped;
// the fixed interval is the retry policy, no backoff.
func (s *IntakeService) PollOnce(ctx context.Context) error {
	s.metrics.IncPoll()
	merchantID := s.MerchantID()

	cfg, err := s.settings.MerchantSettings(ctx, merchantID)
	if err != nil {
		s.metrics.IncPollFailure()
		s.logger.WithError(err).Warn("could not load merchant settings, retrying next cycle")
		return fmt.Errorf("load merchant settings: %w", err)
	}
	mode := cfg.Mode()

	fetched, err := s.gateway.FetchOrders(ctx, s.todayFilter(merchantID, mode.PollStatuses()))
	if err != nil {
		s.metrics.IncPollFailure()
		s.logger.WithError(err).Warn("order fetch failed, retrying next cycle")
		return fmt.Errorf("fetch orders: %w", err)
	}

	notifiable := excludeWalkIns(fetched)

	// Ledger bookkeeping must precede the notification decision. Every
	// notifiable id is recorded, known or not, so an order that briefly
	// leaves and re-enters the set is not announced again.
	firstObservation := s.ledger.Empty()
	var newOrders []*order.Order
	ids := make([]string, 0, len(notifiable))
	for _, o := range notifiable {
		if !s.ledger.Has(o.ID) {
			newOrders = append(newOrders, o)
		}
		ids = append(ids, o.ID)
	}
	s.ledger.AddAll(ids)

	if !mode.AutoAccept {
		pending := 0
		for _, o := range notifiable {
			if o.Status == order.StatusPending {
				pending++
			}
		}
		s.state.Recount(pending)
		s.metrics.SetPending(pending)
	}

	action := mode.Decide(len(newOrders), firstObservation)
	switch action.Kind {
	case intake.ActionNone:
		return nil
	case intake.ActionToast:
		s.metrics.AddNewOrders(action.NewCount)
		s.logger.WithField("new_orders", action.NewCount).Info("new orders detected, announcing passively")
		if err := s.notifier.Toast(action.NewCount); err != nil {
			s.logger.WithError(err).Warn("toast delivery failed")
		}
	case intake.ActionPopup:
		s.metrics.AddNewOrders(action.NewCount)
		attention := make([]*order.Order, 0, len(notifiable))
		for _, o := range notifiable {
			if mode.NeedsAttention(o.Status) {
				attention = append(attention, o)
			}
		}
		// The queue is rebuilt with the full backlog, not just the delta,
		// so a merchant who missed a cycle still sees every open order.
		s.queue.Replace(attention)
		s.logger.WithFields(logrus.Fields{
			"new_orders":  action.NewCount,
			"queue_depth": s.queue.Len(),
		}).Info("new orders detected, presenting queue")
		if err := s.notifier.PromptOrders(s.queue.Snapshot()); err != nil {
			s.logger.WithError(err).Warn("order prompt delivery failed")
		}
	}
	s.chime.Chime()
	return nil
}

// ShowAllPendingOrders bypasses the ledger entirely and repopulates the
// queue from a fresh fetch of today's pending orders. An empty result
// surfaces a "nothing pending" notice instead of an empty queue.
func (s *IntakeService) ShowAllPendingOrders(ctx context.Context) error {
	merchantID := s.MerchantID()
	fetched, err := s.gateway.FetchOrders(ctx, s.todayFilter(merchantID, []order.Status{order.StatusPending}))
	if err != nil {
		s.logger.WithError(err).Error("could not fetch pending orders for explicit refresh")
		return fmt.Errorf("fetch pending orders: %w", err)
	}

	pending := excludeWalkIns(fetched)
	if len(pending) == 0 {
		if err := s.notifier.NothingPending(); err != nil {
			s.logger.WithError(err).Warn("nothing-pending notice delivery failed")
		}
		return nil
	}

	s.queue.Replace(pending)
	if err := s.notifier.PromptOrders(s.queue.Snapshot()); err != nil {
		s.logger.WithError(err).Warn("order prompt delivery failed")
	}
	return nil
}

// ShowOrderByID fetches the identified order plus today's other pending
// orders and queues the target first, so a tapped notification is the first
// thing the merchant sees regardless of its pickup time or current status.
func (s *IntakeService) ShowOrderByID(ctx context.Context, id string) error {
	merchantID := s.MerchantID()
	target, err := s.gateway.GetOrder(ctx, id)
	if err != nil {
		s.logger.WithError(err).WithField("order_id", id).Error("could not fetch tapped order")
		return fmt.Errorf("fetch order %s: %w", id, err)
	}

	rest, err := s.gateway.FetchOrders(ctx, s.todayFilter(merchantID, []order.Status{order.StatusPending}))
	if err != nil {
		// The tapped order alone is still worth presenting.
		s.logger.WithError(err).Warn("could not fetch pending orders alongside tapped order")
		rest = nil
	}

	s.queue.ReplacePromoting(target, excludeWalkIns(rest))
	if err := s.notifier.PromptOrders(s.queue.Snapshot()); err != nil {
		s.logger.WithError(err).Warn("order prompt delivery failed")
	}
	return nil
}

// OnNotificationTap is the push-bridge callback slot. The bridge delivers an
// opaque order identifier; failures are logged and dropped because there is
// no caller to report them to.
func (s *IntakeService) OnNotificationTap(orderID string) {
	ctx, cancel := context.WithTimeout(context.Background(), tapTimeout)
	defer cancel()
	if err := s.ShowOrderByID(ctx, orderID); err != nil {
		s.logger.WithError(err).WithField("order_id", orderID).Warn("notification tap handling failed")
	}
}

func (s *IntakeService) todayFilter(merchantID string, statuses []order.Status) order.Filter {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return order.Filter{
		MerchantID: merchantID,
		From:       from,
		To:         from.AddDate(0, 0, 1),
		Statuses:   statuses,
	}
}

func excludeWalkIns(orders []*order.Order) []*order.Order {
	out := make([]*order.Order, 0, len(orders))
	for _, o := range orders {
		if !o.IsWalkIn() {
			out = append(out, o)
		}
	}
	return out
}
