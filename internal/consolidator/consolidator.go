package consolidator

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/baohaus/expeditor/internal/batch"
	"github.com/baohaus/expeditor/internal/broadcast"
	"github.com/baohaus/expeditor/internal/cache"
	"github.com/baohaus/expeditor/internal/models"
	"github.com/baohaus/expeditor/internal/reconcile"
	"github.com/baohaus/expeditor/internal/source"
)

// Leadership decides whether this terminal extracts and broadcasts.
// Followers only replay broadcast snapshots.
type Leadership interface {
	IsLeader() bool
}

// StaticLeadership is leadership fixed by configuration.
type StaticLeadership bool

func (s StaticLeadership) IsLeader() bool { return bool(s) }

// Archiver receives completed orders after cleanup purges them.
type Archiver interface {
	Archive(orders []models.Order) error
}

// Consolidator runs the extraction pipeline: snapshot the source,
// reconcile each order against the cache, refresh batch assignment, and
// broadcast the consolidated state. All state mutation happens on the
// Run goroutine; the mutex only fences the read accessors and the
// manual operations against it.
type Consolidator struct {
	cfg        *models.Config
	source     source.SnapshotSource
	cache      *cache.Store
	reconciler *reconcile.Reconciler
	engine     *batch.Engine
	transport  broadcast.Transport
	leadership Leadership
	archiver   Archiver
	now        func() time.Time

	mu       sync.RWMutex
	orders   map[string]*models.Order
	orderIDs []string
	last     *models.StateSnapshot

	extracting bool
	pending    bool
	wasLeader  bool

	triggers  chan struct{}
	countMu   sync.Mutex
	lastCount int
	debounce  *time.Timer
}

type Option func(*Consolidator)

func WithArchiver(a Archiver) Option {
	return func(c *Consolidator) { c.archiver = a }
}

func WithClock(now func() time.Time) Option {
	return func(c *Consolidator) { c.now = now }
}

func New(
	cfg *models.Config,
	src source.SnapshotSource,
	store *cache.Store,
	reconciler *reconcile.Reconciler,
	engine *batch.Engine,
	transport broadcast.Transport,
	leadership Leadership,
	opts ...Option,
) *Consolidator {
	c := &Consolidator{
		cfg:        cfg,
		source:     src,
		cache:      store,
		reconciler: reconciler,
		engine:     engine,
		transport:  transport,
		leadership: leadership,
		now:        time.Now,
		orders:     make(map[string]*models.Order),
		triggers:   make(chan struct{}, 1),
		lastCount:  -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run drives extraction until the context is cancelled. Poll ticks,
// debounced count-change triggers and manual triggers all funnel into
// the same goroutine, so extraction passes never overlap.
func (c *Consolidator) Run(ctx context.Context) error {
	poll := time.NewTicker(c.cfg.PollInterval)
	defer poll.Stop()
	cleanup := time.NewTicker(c.cfg.CleanupInterval)
	defer cleanup.Stop()

	c.RunExtraction(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-poll.C:
			c.RunExtraction(ctx)
		case <-c.triggers:
			c.RunExtraction(ctx)
		case <-cleanup.C:
			c.runCleanup(ctx)
		}
	}
}

// Trigger requests an extraction pass. Requests arriving while one is
// already queued coalesce into it.
func (c *Consolidator) Trigger() {
	select {
	case c.triggers <- struct{}{}:
	default:
	}
}

// NotifyOrderCount feeds the observed live order count. A change arms a
// debounce timer; only the settled value triggers extraction.
func (c *Consolidator) NotifyOrderCount(count int) {
	c.countMu.Lock()
	defer c.countMu.Unlock()
	if count == c.lastCount {
		return
	}
	c.lastCount = count
	if c.debounce != nil {
		c.debounce.Stop()
	}
	c.debounce = time.AfterFunc(c.cfg.DebounceInterval, c.Trigger)
}

// RunExtraction performs one guarded extraction pass. A pass requested
// while one is in flight sets the pending flag and runs exactly once
// more afterwards, no matter how many requests piled up.
func (c *Consolidator) RunExtraction(ctx context.Context) {
	if !c.leadership.IsLeader() {
		c.wasLeader = false
		return
	}
	if !c.wasLeader {
		log.Printf("instance %s assuming leadership, running full extraction", c.cfg.InstanceID)
		c.wasLeader = true
	}

	if c.extracting {
		c.pending = true
		return
	}
	c.extracting = true
	defer func() { c.extracting = false }()

	for {
		c.pending = false
		if err := c.extractOnce(ctx); err != nil {
			log.Printf("extraction pass failed, keeping previous state: %v", err)
		}
		if !c.pending {
			return
		}
	}
}

func (c *Consolidator) extractOnce(ctx context.Context) error {
	snaps, err := c.source.Snapshot(ctx)
	if err != nil {
		return err
	}
	now := c.now()

	c.mu.Lock()
	seen := make(map[string]bool, len(snaps))
	for _, snap := range snaps {
		cached := c.cache.FindMatching(snap.OrderNumber, snap.CustomerName, snapshotItemCount(snap))
		ord, err := c.reconciler.Reconcile(snap, cached, now)
		if err != nil {
			log.Printf("skipping unusable snapshot (number=%q customer=%q): %v",
				snap.OrderNumber, snap.CustomerName, err)
			continue
		}
		seen[ord.ID] = true

		if existing, ok := c.orders[ord.ID]; ok {
			existing.Items = ord.Items
			existing.OrderedAt = ord.OrderedAt
			existing.ElapsedMinutes = ord.ElapsedMinutes
			// An order visible in the snapshot is live by definition,
			// even if an earlier pass flagged it completed.
			existing.Completed = false
			existing.CompletedAt = time.Time{}
		} else {
			copied := ord
			c.orders[ord.ID] = &copied
			c.orderIDs = append(c.orderIDs, ord.ID)
		}
	}

	live := make([]*models.Order, 0, len(seen))
	for _, id := range c.orderIDs {
		if seen[id] {
			live = append(live, c.orders[id])
		}
	}
	c.engine.Refresh(live)

	snapshot := c.buildSnapshotLocked(now)
	c.last = snapshot
	c.mu.Unlock()

	if err := c.transport.Publish(snapshot); err != nil {
		log.Printf("broadcasting state snapshot: %v", err)
	}
	return nil
}

func (c *Consolidator) buildSnapshotLocked(now time.Time) *models.StateSnapshot {
	snapshot := &models.StateSnapshot{
		ExtractedAt: now,
		Leader:      c.cfg.InstanceID,
		Batches:     c.engine.Batches(),
	}
	for _, id := range c.orderIDs {
		snapshot.Orders = append(snapshot.Orders, *c.orders[id])
	}
	return snapshot
}

func (c *Consolidator) runCleanup(ctx context.Context) {
	if !c.leadership.IsLeader() {
		return
	}

	c.mu.Lock()
	purged := c.engine.Cleanup(models.CompletedRetention, models.NewOrderHighlight)
	for _, ord := range purged {
		delete(c.orders, ord.ID)
	}
	if len(purged) > 0 {
		kept := c.orderIDs[:0]
		for _, id := range c.orderIDs {
			if _, ok := c.orders[id]; ok {
				kept = append(kept, id)
			}
		}
		c.orderIDs = kept
	}
	c.mu.Unlock()

	c.cache.Prune(ctx, 24*time.Hour)

	if len(purged) > 0 && c.archiver != nil {
		if err := c.archiver.Archive(purged); err != nil {
			log.Printf("archiving %d completed orders: %v", len(purged), err)
		}
	}
}

// ApplySnapshot installs a broadcast snapshot as this follower's view.
func (c *Consolidator) ApplySnapshot(snapshot *models.StateSnapshot) {
	c.mu.Lock()
	c.last = snapshot
	c.mu.Unlock()
}

// Snapshot returns the most recent consolidated state, local or
// replayed.
func (c *Consolidator) Snapshot() *models.StateSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

// CompleteOrder manually completes one order ahead of its
// disappearance from the live set.
func (c *Consolidator) CompleteOrder(orderID string) bool {
	c.mu.Lock()
	ok := c.engine.MarkOrderCompleted(orderID)
	c.mu.Unlock()
	if ok {
		c.Trigger()
	}
	return ok
}

// CompleteBatch manually finishes a whole batch.
func (c *Consolidator) CompleteBatch(number int) error {
	c.mu.Lock()
	err := c.engine.CompleteBatch(number)
	c.mu.Unlock()
	if err == nil {
		c.Trigger()
	}
	return err
}

// ClearAll drops every tracked order and batch, then queues a fresh
// extraction so the next pass rebuilds assignment from scratch.
func (c *Consolidator) ClearAll() {
	c.mu.Lock()
	c.engine.Reset()
	c.orders = make(map[string]*models.Order)
	c.orderIDs = nil
	c.mu.Unlock()
	c.Trigger()
}

// UpdateBatchCapacity adjusts the capacity for open and future batches.
func (c *Consolidator) UpdateBatchCapacity(capacity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.UpdateMaxCapacity(capacity)
}

func snapshotItemCount(snap models.OrderSnapshot) int {
	n := 0
	for _, it := range snap.Items {
		q := it.Quantity
		if q <= 0 {
			q = 1
		}
		n += q
	}
	if n == 0 {
		for _, pi := range reconcile.ParsePreviewItems(snap.PreviewText) {
			n += pi.Quantity
		}
	}
	return n
}
