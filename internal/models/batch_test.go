package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderSetPreservesInsertionOrder(t *testing.T) {
	set := NewOrderSet()
	set.Put(&OrderRef{OrderID: "b"})
	set.Put(&OrderRef{OrderID: "a"})
	set.Put(&OrderRef{OrderID: "c"})

	assert.Equal(t, []string{"b", "a", "c"}, set.IDs())

	// Replacing keeps the original position.
	set.Put(&OrderRef{OrderID: "a", Completed: true})
	assert.Equal(t, []string{"b", "a", "c"}, set.IDs())
	ref, ok := set.Get("a")
	require.True(t, ok)
	assert.True(t, ref.Completed)
}

func TestOrderSetDelete(t *testing.T) {
	set := NewOrderSet()
	set.Put(&OrderRef{OrderID: "a"})
	set.Put(&OrderRef{OrderID: "b"})

	set.Delete("a")
	assert.Equal(t, []string{"b"}, set.IDs())
	assert.False(t, set.Has("a"))

	// Deleting a non-member is a no-op.
	set.Delete("zzz")
	assert.Equal(t, 1, set.Len())
}

func TestOrderSetJSONRoundTrip(t *testing.T) {
	set := NewOrderSet()
	set.Put(&OrderRef{OrderID: "242_Sam", OrderNumber: "242", CustomerName: "Sam", ElapsedMinutes: 12})
	set.Put(&OrderRef{OrderID: "100_Alex", OrderNumber: "100", CustomerName: "Alex", Completed: true})

	data, err := json.Marshal(set)
	require.NoError(t, err)

	var decoded OrderSet
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, set.IDs(), decoded.IDs())
	ref, ok := decoded.Get("242_Sam")
	require.True(t, ok)
	assert.Equal(t, 12, ref.ElapsedMinutes)
}

func TestStateSnapshotRoundTrip(t *testing.T) {
	orders := NewOrderSet()
	orders.Put(&OrderRef{OrderID: "242_Sam", OrderNumber: "242", CustomerName: "Sam"})

	snapshot := &StateSnapshot{
		ExtractedAt: time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC),
		Leader:      "front-tablet",
		Orders: []Order{{
			ID:           "242_Sam",
			OrderNumber:  "242",
			CustomerName: "Sam",
			Items:        []Item{{Name: "Pork Belly Bao", Size: NoSize, Quantity: 2}},
		}},
		Batches: []*Batch{{
			ID:       "b1",
			Number:   1,
			Capacity: 5,
			Status:   BatchActive,
			Urgency:  UrgencyNormal,
			Orders:   orders,
		}},
	}

	data, err := json.Marshal(snapshot)
	require.NoError(t, err)

	var decoded StateSnapshot
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, snapshot.Leader, decoded.Leader)
	require.Len(t, decoded.Batches, 1)
	assert.Equal(t, []string{"242_Sam"}, decoded.Batches[0].Orders.IDs())
	require.Len(t, decoded.Orders, 1)
	assert.Equal(t, 2, decoded.Orders[0].Items[0].Quantity)
}

func TestUrgencyFor(t *testing.T) {
	assert.Equal(t, UrgencyNormal, UrgencyFor(0))
	assert.Equal(t, UrgencyNormal, UrgencyFor(9))
	assert.Equal(t, UrgencyWarning, UrgencyFor(10))
	assert.Equal(t, UrgencyWarning, UrgencyFor(14))
	assert.Equal(t, UrgencyCritical, UrgencyFor(15))
	assert.Equal(t, UrgencyCritical, UrgencyFor(40))
}

func TestOrderElapsed(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

	var ord Order
	ord.SetElapsed(now, 19)
	assert.Equal(t, 19, ord.Elapsed(now))
	assert.Equal(t, 24, ord.Elapsed(now.Add(5*time.Minute)))

	// Negative inputs clamp to zero.
	var late Order
	late.SetElapsed(now, -3)
	assert.Equal(t, 0, late.Elapsed(now))

	// Without a timestamp the last observed value is used.
	stale := Order{ElapsedMinutes: 7}
	assert.Equal(t, 7, stale.Elapsed(now))
}

func TestOrderID(t *testing.T) {
	assert.Equal(t, "242_Sam Rivera", OrderID(" 242 ", " Sam Rivera "))
}
