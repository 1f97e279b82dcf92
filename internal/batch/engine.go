package batch

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/baohaus/expeditor/internal/aggregate"
	"github.com/baohaus/expeditor/internal/models"
	"github.com/lucsky/cuid"
)

// Engine owns batch assignment. It is not safe for concurrent use; the
// consolidation loop is its only caller.
type Engine struct {
	capacity   int
	nextNumber int
	batches    []*models.Batch

	// orders retains every order the engine has seen, including ones
	// that disappeared from the live set, so completed members keep
	// contributing to their batch view until cleanup purges them.
	orders map[string]*models.Order

	onNewBatch func(*models.Batch)
	now        func() time.Time
}

type Option func(*Engine)

// WithClock replaces the engine's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithNewBatchNotifier registers a callback fired whenever assignment
// opens a new batch.
func WithNewBatchNotifier(fn func(*models.Batch)) Option {
	return func(e *Engine) { e.onNewBatch = fn }
}

func NewEngine(capacity int, opts ...Option) (*Engine, error) {
	if capacity < models.MinBatchCapacity || capacity > models.MaxBatchCapacity {
		return nil, fmt.Errorf("batch: capacity must be between %d and %d, got %d",
			models.MinBatchCapacity, models.MaxBatchCapacity, capacity)
	}
	e := &Engine{
		capacity:   capacity,
		nextNumber: 1,
		orders:     make(map[string]*models.Order),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Engine) Capacity() int {
	return e.capacity
}

// RefreshResult summarizes what one refresh pass changed.
type RefreshResult struct {
	NewlyCompleted []string
	NewBatchNums   []int
}

// Refresh reconciles batch state against the current live order set.
// Orders absent from the live set are flagged completed in place.
// Unassigned live orders are placed oldest first into the first
// non-locked batch with room; a batch reaching capacity locks and never
// reopens.
func (e *Engine) Refresh(live []*models.Order) RefreshResult {
	now := e.now()
	var res RefreshResult

	liveSet := make(map[string]bool, len(live))
	for _, o := range live {
		e.orders[o.ID] = o
		liveSet[o.ID] = true
	}

	for _, b := range e.batches {
		if b.Status == models.BatchCompleted {
			continue
		}
		for _, ref := range b.Orders.Refs() {
			if liveSet[ref.OrderID] {
				// A member back in the live set is live again, even if
				// an earlier pass saw it disappear.
				if ref.Completed {
					ref.Completed = false
					ref.CompletedAt = time.Time{}
				}
				continue
			}
			if ref.Completed {
				continue
			}
			ref.Completed = true
			ref.CompletedAt = now
			if o, ok := e.orders[ref.OrderID]; ok {
				o.Completed = true
				o.CompletedAt = now
			}
			res.NewlyCompleted = append(res.NewlyCompleted, ref.OrderID)
		}
	}

	// Oldest waits first; ties keep arrival order via stable sort.
	sorted := make([]*models.Order, len(live))
	copy(sorted, live)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Elapsed(now) > sorted[j].Elapsed(now)
	})

	for _, o := range sorted {
		if ref := e.memberRef(o.ID); ref != nil {
			ref.ElapsedMinutes = o.Elapsed(now)
			ref.ItemCount = o.ItemCount()
			continue
		}

		target := e.firstOpenBatch()
		if target == nil {
			target = e.createBatch(now)
			res.NewBatchNums = append(res.NewBatchNums, target.Number)
		}

		o.IsNew = true
		o.AddedAt = now
		target.Orders.Put(&models.OrderRef{
			OrderID:        o.ID,
			OrderNumber:    o.OrderNumber,
			CustomerName:   o.CustomerName,
			ElapsedMinutes: o.Elapsed(now),
			ItemCount:      o.ItemCount(),
			IsNew:          true,
			AddedAt:        now,
		})
		if target.Orders.Len() >= target.Capacity {
			target.Status = models.BatchLocked
		}
	}

	e.rebuildViews()
	return res
}

// memberRef finds the membership record for an order in any
// non-completed batch.
func (e *Engine) memberRef(orderID string) *models.OrderRef {
	for _, b := range e.batches {
		if b.Status == models.BatchCompleted {
			continue
		}
		if ref, ok := b.Orders.Get(orderID); ok {
			return ref
		}
	}
	return nil
}

func (e *Engine) firstOpenBatch() *models.Batch {
	for _, b := range e.batches {
		if b.Status == models.BatchActive && b.Orders.Len() < b.Capacity {
			return b
		}
	}
	return nil
}

func (e *Engine) createBatch(now time.Time) *models.Batch {
	b := &models.Batch{
		ID:        cuid.New(),
		Number:    e.nextNumber,
		Capacity:  e.capacity,
		Status:    models.BatchActive,
		Urgency:   models.UrgencyNormal,
		CreatedAt: now,
		Orders:    models.NewOrderSet(),
	}
	e.nextNumber++
	e.batches = append(e.batches, b)
	log.Printf("opened batch %d (capacity %d)", b.Number, b.Capacity)
	if e.onNewBatch != nil {
		e.onNewBatch(b)
	}
	return b
}

// rebuildViews recomputes each batch's aggregated items and urgency.
func (e *Engine) rebuildViews() {
	for _, b := range e.batches {
		if b.Status == models.BatchCompleted {
			continue
		}
		var members []*models.Order
		maxElapsed := 0
		for _, ref := range b.Orders.Refs() {
			if o, ok := e.orders[ref.OrderID]; ok {
				members = append(members, o)
			}
			if !ref.Completed && ref.ElapsedMinutes > maxElapsed {
				maxElapsed = ref.ElapsedMinutes
			}
		}
		b.Items = aggregate.Rebuild(members).Groups
		b.Urgency = models.UrgencyFor(maxElapsed)
	}
}

// UpdateMaxCapacity changes the capacity used for open and future
// batches. Out-of-range values are rejected and the old capacity keeps
// applying. An open batch already at or above the new capacity locks.
func (e *Engine) UpdateMaxCapacity(capacity int) error {
	if capacity < models.MinBatchCapacity || capacity > models.MaxBatchCapacity {
		return fmt.Errorf("batch: capacity must be between %d and %d, got %d",
			models.MinBatchCapacity, models.MaxBatchCapacity, capacity)
	}
	e.capacity = capacity
	for _, b := range e.batches {
		if b.Status != models.BatchActive {
			continue
		}
		b.Capacity = capacity
		if b.Orders.Len() >= capacity {
			b.Status = models.BatchLocked
		}
	}
	return nil
}

// MarkOrderCompleted flags one order completed without waiting for it
// to disappear from the live set.
func (e *Engine) MarkOrderCompleted(orderID string) bool {
	ref := e.memberRef(orderID)
	if ref == nil || ref.Completed {
		return false
	}
	now := e.now()
	ref.Completed = true
	ref.CompletedAt = now
	if o, ok := e.orders[orderID]; ok {
		o.Completed = true
		o.CompletedAt = now
	}
	e.rebuildViews()
	return true
}

// CompleteBatch explicitly finishes a batch and releases its orders.
func (e *Engine) CompleteBatch(number int) error {
	for _, b := range e.batches {
		if b.Number != number {
			continue
		}
		if b.Status == models.BatchCompleted {
			return nil
		}
		for _, id := range b.Orders.IDs() {
			e.forgetIfUnreferenced(id, b)
		}
		b.Orders.Clear()
		b.Items = nil
		b.Status = models.BatchCompleted
		b.Urgency = models.UrgencyNormal
		return nil
	}
	return fmt.Errorf("batch: no batch numbered %d", number)
}

// Cleanup purges completed members past the retention window, clears
// stale new-order markers, and finishes locked batches emptied by the
// purge. Batches stay in the list once finished so numbering and
// broadcast history remain stable. It returns the purged orders so
// callers can archive them.
func (e *Engine) Cleanup(retention, highlight time.Duration) []models.Order {
	now := e.now()
	var purged []models.Order

	for _, b := range e.batches {
		for _, ref := range b.Orders.Refs() {
			if ref.Completed && now.Sub(ref.CompletedAt) >= retention {
				if o, ok := e.orders[ref.OrderID]; ok {
					purged = append(purged, *o)
				}
				b.Orders.Delete(ref.OrderID)
				e.forgetIfUnreferenced(ref.OrderID, nil)
				continue
			}
			if ref.IsNew && now.Sub(ref.AddedAt) >= highlight {
				ref.IsNew = false
				if o, ok := e.orders[ref.OrderID]; ok {
					o.IsNew = false
				}
			}
		}
	}

	// A locked batch whose members are all purged is done.
	for _, b := range e.batches {
		if b.Status == models.BatchLocked && b.Orders.Len() == 0 {
			b.Status = models.BatchCompleted
			b.Items = nil
		}
	}

	if len(purged) > 0 {
		e.rebuildViews()
	}
	return purged
}

func (e *Engine) forgetIfUnreferenced(orderID string, except *models.Batch) {
	for _, b := range e.batches {
		if b == except {
			continue
		}
		if b.Orders.Has(orderID) {
			return
		}
	}
	delete(e.orders, orderID)
}

// Batches returns the engine's batches in creation order.
func (e *Engine) Batches() []*models.Batch {
	out := make([]*models.Batch, len(e.batches))
	copy(out, e.batches)
	return out
}

// Batch returns the batch with the given number.
func (e *Engine) Batch(number int) (*models.Batch, bool) {
	for _, b := range e.batches {
		if b.Number == number {
			return b, true
		}
	}
	return nil, false
}

// Reset drops all batch state.
func (e *Engine) Reset() {
	e.batches = nil
	e.orders = make(map[string]*models.Order)
	e.nextNumber = 1
}
