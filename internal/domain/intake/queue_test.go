package intake

import (
	"testing"
	"time"

	"foodtruck_order_notifier/internal/domain/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderAt(id string, pickup time.Time) *order.Order {
	return &order.Order{ID: id, Status: order.StatusPending, PickupTime: pickup}
}

func TestQueue_ReplaceSortsOldestPickupFirst(t *testing.T) {
	base := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	q := NewQueue()
	q.Replace([]*order.Order{
		orderAt("late", base.Add(30*time.Minute)),
		orderAt("early", base),
		orderAt("mid", base.Add(10*time.Minute)),
	})

	snap := q.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "early", snap[0].ID)
	assert.Equal(t, "mid", snap[1].ID)
	assert.Equal(t, "late", snap[2].ID)
}

func TestQueue_RemoveIsIdempotent(t *testing.T) {
	base := time.Now()
	q := NewQueue()
	q.Replace([]*order.Order{orderAt("o1", base), orderAt("o2", base.Add(time.Minute))})

	assert.True(t, q.Remove("o1"))
	assert.False(t, q.Remove("o1"))
	assert.False(t, q.Remove("never-queued"))

	snap := q.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "o2", snap[0].ID)
}

func TestQueue_ReplacePromotingPutsTargetFirst(t *testing.T) {
	base := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	q := NewQueue()

	// Target has the latest pickup time but must still come first.
	target := orderAt("tapped", base.Add(time.Hour))
	q.ReplacePromoting(target, []*order.Order{
		orderAt("p2", base.Add(10*time.Minute)),
		orderAt("p1", base),
	})

	snap := q.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "tapped", snap[0].ID)
	assert.Equal(t, "p1", snap[1].ID)
	assert.Equal(t, "p2", snap[2].ID)
}

func TestQueue_ReplacePromotingDropsDuplicateTarget(t *testing.T) {
	base := time.Now()
	q := NewQueue()
	target := orderAt("o1", base)
	q.ReplacePromoting(target, []*order.Order{orderAt("o1", base), orderAt("o2", base)})
	assert.Equal(t, 2, q.Len())
}

func TestQueue_EntriesAreSnapshots(t *testing.T) {
	src := &order.Order{
		ID:         "o1",
		Status:     order.StatusPending,
		PickupTime: time.Now(),
		Items:      []order.Item{{Name: "Taco", Quantity: 2, UnitPrice: 4.5}},
	}
	q := NewQueue()
	q.Replace([]*order.Order{src})

	// Mutating the source after queueing must not affect the entry.
	src.Status = order.StatusCancelled
	src.Items[0].Quantity = 99

	snap := q.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, order.StatusPending, snap[0].Status)
	assert.Equal(t, 2, snap[0].Items[0].Quantity)
}

func TestQueue_Clear(t *testing.T) {
	q := NewQueue()
	q.Replace([]*order.Order{orderAt("o1", time.Now())})
	q.Clear()
	assert.Equal(t, 0, q.Len())
}
