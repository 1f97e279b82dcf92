package cache

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/baohaus/expeditor/internal/models"
	"github.com/baohaus/expeditor/internal/reconcile"
)

// Repository persists cached upstream orders across restarts. The store
// works without one.
type Repository interface {
	Load(ctx context.Context) ([]models.CachedOrder, error)
	Upsert(ctx context.Context, order *models.CachedOrder) error
	DeleteBefore(ctx context.Context, cutoff time.Time) error
}

// Store holds orders captured from upstream traffic for fuzzy matching
// against live snapshots. Reads come from the consolidation loop while
// ingestion happens on capture goroutines, so the store carries its own
// lock.
type Store struct {
	mu     sync.RWMutex
	keys   []string
	orders map[string]*models.CachedOrder

	repo Repository
	now  func() time.Time
}

type Option func(*Store)

func WithRepository(repo Repository) Option {
	return func(s *Store) { s.repo = repo }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		orders: make(map[string]*models.CachedOrder),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WarmUp preloads the store from its repository, oldest first so scan
// order matches capture order.
func (s *Store) WarmUp(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	orders, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("warming order cache: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range orders {
		ord := orders[i]
		s.putLocked(&ord)
	}
	log.Printf("order cache warmed with %d orders", len(s.keys))
	return nil
}

// Ingest decodes one captured upstream payload and stores it.
func (s *Store) Ingest(ctx context.Context, raw interface{}) (*models.CachedOrder, error) {
	ord, err := models.DecodeCachedOrder(raw)
	if err != nil {
		return nil, err
	}
	if err := s.Put(ctx, ord); err != nil {
		return nil, err
	}
	return ord, nil
}

// Put stores a captured order, replacing any earlier capture of the
// same order in place.
func (s *Store) Put(ctx context.Context, ord *models.CachedOrder) error {
	if key := cacheKey(ord); key == "" {
		return fmt.Errorf("cache: order has no usable key")
	}
	if ord.CachedAt.IsZero() {
		ord.CachedAt = s.now()
	}

	s.mu.Lock()
	s.putLocked(ord)
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.Upsert(ctx, ord); err != nil {
			// The in-memory copy already serves matching; persistence
			// failures must not fail the capture path.
			log.Printf("persisting cached order %s: %v", cacheKey(ord), err)
		}
	}
	return nil
}

func (s *Store) putLocked(ord *models.CachedOrder) {
	key := cacheKey(ord)
	if _, ok := s.orders[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.orders[key] = ord
}

// FindMatching resolves the cached order for a live order using the
// reconciler's match rules, scanning candidates in capture order.
func (s *Store) FindMatching(orderNumber, customerName string, itemCount int) *models.CachedOrder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	candidates := make([]*models.CachedOrder, 0, len(s.keys))
	for _, key := range s.keys {
		candidates = append(candidates, s.orders[key])
	}
	return reconcile.FindMatch(orderNumber, customerName, itemCount, candidates)
}

// Prune drops captures older than maxAge and returns how many were
// removed.
func (s *Store) Prune(ctx context.Context, maxAge time.Duration) int {
	cutoff := s.now().Add(-maxAge)

	s.mu.Lock()
	kept := s.keys[:0]
	removed := 0
	for _, key := range s.keys {
		if s.orders[key].CachedAt.Before(cutoff) {
			delete(s.orders, key)
			removed++
			continue
		}
		kept = append(kept, key)
	}
	s.keys = kept
	s.mu.Unlock()

	if removed > 0 && s.repo != nil {
		if err := s.repo.DeleteBefore(ctx, cutoff); err != nil {
			log.Printf("pruning cached orders: %v", err)
		}
	}
	return removed
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}

func cacheKey(ord *models.CachedOrder) string {
	if ord.UpstreamID != "" {
		return ord.UpstreamID
	}
	number := reconcile.NormalizeOrderNumber(ord.OrderNumber)
	if number == "" && ord.CustomerName == "" {
		return ""
	}
	return models.OrderID(number, ord.CustomerName)
}
