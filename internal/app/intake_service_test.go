package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"foodtruck_order_notifier/internal/domain/intake"
	"foodtruck_order_notifier/internal/domain/order"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l.WithField("component", "test")
}

type fakeGateway struct {
	mu         sync.Mutex
	orders     []*order.Order
	fetchErr   error
	byID       map[string]*order.Order
	updateErr  error
	patches    map[string]order.Patch
	lastFilter order.Filter
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{byID: map[string]*order.Order{}, patches: map[string]order.Patch{}}
}

func (g *fakeGateway) setOrders(orders ...*order.Order) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.orders = orders
}

func (g *fakeGateway) FetchOrders(_ context.Context, f order.Filter) ([]*order.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastFilter = f
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	out := make([]*order.Order, len(g.orders))
	copy(out, g.orders)
	return out, nil
}

func (g *fakeGateway) GetOrder(_ context.Context, id string) (*order.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	o, ok := g.byID[id]
	if !ok {
		return nil, fmt.Errorf("order not found")
	}
	return o, nil
}

func (g *fakeGateway) UpdateOrder(_ context.Context, id string, p order.Patch) (*order.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.updateErr != nil {
		return nil, g.updateErr
	}
	g.patches[id] = p
	updated := &order.Order{ID: id, MerchantID: "m1"}
	if p.Status != nil {
		updated.Status = *p.Status
	}
	return updated, nil
}

type fakeNotifier struct {
	mu             sync.Mutex
	toasts         []int
	prompts        [][]*order.Order
	nothingPending int
}

func (n *fakeNotifier) Toast(count int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.toasts = append(n.toasts, count)
	return nil
}

func (n *fakeNotifier) PromptOrders(orders []*order.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.prompts = append(n.prompts, orders)
	return nil
}

func (n *fakeNotifier) NothingPending() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nothingPending++
	return nil
}

func (n *fakeNotifier) lastPromptIDs() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.prompts) == 0 {
		return nil
	}
	last := n.prompts[len(n.prompts)-1]
	ids := make([]string, 0, len(last))
	for _, o := range last {
		ids = append(ids, o.ID)
	}
	return ids
}

type fakeChimer struct {
	mu    sync.Mutex
	count int
}

func (c *fakeChimer) Chime() {
	c.mu.Lock()
	c.count++
	c.mu.Unlock()
}

func (c *fakeChimer) chimes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

type fakeSettings struct {
	settings intake.Settings
	err      error
}

func (s *fakeSettings) MerchantSettings(context.Context, string) (*intake.Settings, error) {
	if s.err != nil {
		return nil, s.err
	}
	cp := s.settings
	return &cp, nil
}

type intakeFixture struct {
	svc      *IntakeService
	gateway  *fakeGateway
	settings *fakeSettings
	notifier *fakeNotifier
	chimer   *fakeChimer
	ledger   *intake.Ledger
	queue    *intake.Queue
	state    *IntakeState
}

func newIntakeFixture(settings intake.Settings) *intakeFixture {
	f := &intakeFixture{
		gateway:  newFakeGateway(),
		settings: &fakeSettings{settings: settings},
		notifier: &fakeNotifier{},
		chimer:   &fakeChimer{},
		ledger:   intake.NewLedger(),
		queue:    intake.NewQueue(),
		state:    NewIntakeState(),
	}
	f.svc = NewIntakeService(f.gateway, f.settings, f.ledger, f.queue, f.state,
		f.notifier, f.chimer, nil, testLogger(), "m1")
	return f
}

func pendingOrder(id string, pickup time.Time) *order.Order {
	return &order.Order{ID: id, MerchantID: "m1", Status: order.StatusPending, PickupTime: pickup, CustomerEmail: "c@example.com"}
}

func TestPollOnce_FirstObservationNeverNotifies(t *testing.T) {
	f := newIntakeFixture(intake.Settings{ShowOrderPopup: true})
	now := time.Now()
	f.gateway.setOrders(pendingOrder("o1", now), pendingOrder("o2", now.Add(time.Minute)))

	require.NoError(t, f.svc.PollOnce(context.Background()))

	assert.Empty(t, f.notifier.prompts)
	assert.Empty(t, f.notifier.toasts)
	assert.Equal(t, 0, f.chimer.chimes())
	assert.True(t, f.ledger.Has("o1"))
	assert.True(t, f.ledger.Has("o2"))
	assert.Equal(t, 2, f.state.PendingCount())
}

func TestPollOnce_NewOrderPopulatesFullBacklogInPopupMode(t *testing.T) {
	f := newIntakeFixture(intake.Settings{ShowOrderPopup: true})
	base := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	f.gateway.setOrders(pendingOrder("o1", base), pendingOrder("o2", base.Add(time.Minute)))
	require.NoError(t, f.svc.PollOnce(context.Background()))

	// Second cycle sees the same two orders plus one new one with the
	// earliest pickup time.
	f.gateway.setOrders(
		pendingOrder("o1", base),
		pendingOrder("o2", base.Add(time.Minute)),
		pendingOrder("o3", base.Add(-time.Minute)),
	)
	require.NoError(t, f.svc.PollOnce(context.Background()))

	// The queue carries all three, oldest pickup first, not just the delta.
	assert.Equal(t, []string{"o3", "o1", "o2"}, f.notifier.lastPromptIDs())
	assert.Equal(t, 3, f.queue.Len())
	assert.Equal(t, 1, f.chimer.chimes())
	assert.Equal(t, 3, f.state.PendingCount())
}

func TestPollOnce_ToastModeLeavesQueueUntouched(t *testing.T) {
	f := newIntakeFixture(intake.Settings{ShowOrderPopup: false})
	now := time.Now()
	f.gateway.setOrders(pendingOrder("o1", now))
	require.NoError(t, f.svc.PollOnce(context.Background()))

	f.gateway.setOrders(pendingOrder("o1", now), pendingOrder("o2", now))
	require.NoError(t, f.svc.PollOnce(context.Background()))

	assert.Equal(t, []int{1}, f.notifier.toasts)
	assert.Empty(t, f.notifier.prompts)
	assert.Equal(t, 0, f.queue.Len())
	assert.Equal(t, 1, f.chimer.chimes())
}

func TestPollOnce_OscillatingOrderIsNotReannounced(t *testing.T) {
	f := newIntakeFixture(intake.Settings{ShowOrderPopup: true})
	now := time.Now()
	f.gateway.setOrders(pendingOrder("o1", now))
	require.NoError(t, f.svc.PollOnce(context.Background()))

	// The order leaves the notifiable set (payment retry) and comes back.
	f.gateway.setOrders()
	require.NoError(t, f.svc.PollOnce(context.Background()))
	f.gateway.setOrders(pendingOrder("o1", now))
	require.NoError(t, f.svc.PollOnce(context.Background()))

	assert.Empty(t, f.notifier.prompts)
	assert.Equal(t, 0, f.chimer.chimes())
}

func TestPollOnce_FetchFailureIsSwallowedAndRetried(t *testing.T) {
	f := newIntakeFixture(intake.Settings{ShowOrderPopup: true})
	f.gateway.fetchErr = fmt.Errorf("network down")

	err := f.svc.PollOnce(context.Background())
	require.Error(t, err)
	assert.Empty(t, f.notifier.prompts)
	assert.True(t, f.ledger.Empty())

	// Next cycle succeeds and seeds the ledger as a first observation.
	f.gateway.fetchErr = nil
	f.gateway.setOrders(pendingOrder("o1", time.Now()))
	require.NoError(t, f.svc.PollOnce(context.Background()))
	assert.True(t, f.ledger.Has("o1"))
	assert.Empty(t, f.notifier.prompts)
}

func TestPollOnce_WalkInsAreInvisible(t *testing.T) {
	f := newIntakeFixture(intake.Settings{ShowOrderPopup: true})
	now := time.Now()
	walkIn := pendingOrder("w1", now)
	walkIn.CustomerEmail = order.WalkInContact

	f.gateway.setOrders(pendingOrder("o1", now), walkIn)
	require.NoError(t, f.svc.PollOnce(context.Background()))

	assert.False(t, f.ledger.Has("w1"))
	assert.Equal(t, 1, f.state.PendingCount())

	f.gateway.setOrders(pendingOrder("o1", now), walkIn, pendingOrder("o2", now))
	require.NoError(t, f.svc.PollOnce(context.Background()))
	assert.NotContains(t, f.notifier.lastPromptIDs(), "w1")
}

func TestPollOnce_AutoAcceptNotifiesOnConfirmedOnly(t *testing.T) {
	f := newIntakeFixture(intake.Settings{AutoAcceptOrders: true, ShowOrderPopup: true})
	now := time.Now()
	confirmed := &order.Order{ID: "c1", MerchantID: "m1", Status: order.StatusConfirmed, PickupTime: now, CustomerEmail: "c@example.com"}
	f.gateway.setOrders(confirmed)
	require.NoError(t, f.svc.PollOnce(context.Background()))

	midPayment := pendingOrder("p1", now)
	f.gateway.setOrders(confirmed, midPayment)
	require.NoError(t, f.svc.PollOnce(context.Background()))

	// The pending mid-payment order is tracked in the ledger but gets no
	// attention entry in auto-accept mode.
	assert.True(t, f.ledger.Has("p1"))
	assert.Equal(t, []string{"c1"}, f.notifier.lastPromptIDs())
}

func TestShowAllPendingOrders_BypassesLedger(t *testing.T) {
	f := newIntakeFixture(intake.Settings{ShowOrderPopup: true})
	now := time.Now()
	f.gateway.setOrders(pendingOrder("o1", now))
	require.NoError(t, f.svc.PollOnce(context.Background())) // seeds ledger

	require.NoError(t, f.svc.ShowAllPendingOrders(context.Background()))

	// Already-known orders still show up: this path ignores the ledger.
	assert.Equal(t, []string{"o1"}, f.notifier.lastPromptIDs())
	assert.Equal(t, 1, f.queue.Len())
}

func TestShowAllPendingOrders_NothingPendingNotice(t *testing.T) {
	f := newIntakeFixture(intake.Settings{ShowOrderPopup: true})
	require.NoError(t, f.svc.ShowAllPendingOrders(context.Background()))
	assert.Equal(t, 1, f.notifier.nothingPending)
	assert.Equal(t, 0, f.queue.Len())
}

func TestShowOrderByID_TargetComesFirstEvenIfNotPending(t *testing.T) {
	f := newIntakeFixture(intake.Settings{ShowOrderPopup: true})
	base := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	// o5 was already accepted, so the pending fetch does not contain it.
	f.gateway.byID["o5"] = &order.Order{ID: "o5", MerchantID: "m1", Status: order.StatusConfirmed, PickupTime: base.Add(2 * time.Hour)}
	f.gateway.setOrders(pendingOrder("p1", base), pendingOrder("p2", base.Add(time.Minute)))

	require.NoError(t, f.svc.ShowOrderByID(context.Background(), "o5"))
	assert.Equal(t, []string{"o5", "p1", "p2"}, f.notifier.lastPromptIDs())
}

func TestActivateMerchant_SwitchResetsEverything(t *testing.T) {
	f := newIntakeFixture(intake.Settings{ShowOrderPopup: true})
	now := time.Now()
	f.gateway.setOrders(pendingOrder("o1", now))
	require.NoError(t, f.svc.PollOnce(context.Background()))
	require.True(t, f.ledger.Has("o1"))

	f.svc.ActivateMerchant("m2")
	assert.True(t, f.ledger.Empty())
	assert.Equal(t, 0, f.queue.Len())
	assert.Equal(t, 0, f.state.PendingCount())

	// Re-activating the same merchant keeps state intact.
	require.NoError(t, f.svc.PollOnce(context.Background()))
	require.True(t, f.ledger.Has("o1"))
	f.svc.ActivateMerchant("m2")
	assert.True(t, f.ledger.Has("o1"))
}
