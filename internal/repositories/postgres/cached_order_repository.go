package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/baohaus/expeditor/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CachedOrderRepository persists captured upstream orders so a restart
// does not lose the matching corpus. Line items are stored as JSONB;
// nothing queries into them server side.
type CachedOrderRepository struct {
	pool *pgxpool.Pool
}

func NewCachedOrderRepository(pool *pgxpool.Pool) *CachedOrderRepository {
	return &CachedOrderRepository{pool: pool}
}

// EnsureSchema creates the backing table when it does not exist yet.
func (r *CachedOrderRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS cached_orders (
            cache_key     TEXT PRIMARY KEY,
            upstream_id   TEXT,
            order_number  TEXT NOT NULL,
            customer_name TEXT NOT NULL,
            items         JSONB NOT NULL DEFAULT '[]',
            cached_at     TIMESTAMPTZ NOT NULL
        )`)
	if err != nil {
		return fmt.Errorf("creating cached_orders table: %w", err)
	}
	return nil
}

func (r *CachedOrderRepository) Upsert(ctx context.Context, order *models.CachedOrder) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("encoding cached items: %w", err)
	}

	query := `
        INSERT INTO cached_orders (
            cache_key, upstream_id, order_number, customer_name, items, cached_at
        ) VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (cache_key) DO UPDATE SET
            upstream_id   = EXCLUDED.upstream_id,
            order_number  = EXCLUDED.order_number,
            customer_name = EXCLUDED.customer_name,
            items         = EXCLUDED.items,
            cached_at     = EXCLUDED.cached_at`

	_, err = r.pool.Exec(ctx, query,
		repositoryKey(order),
		order.UpstreamID,
		order.OrderNumber,
		order.CustomerName,
		items,
		order.CachedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting cached order: %w", err)
	}
	return nil
}

func (r *CachedOrderRepository) Load(ctx context.Context) ([]models.CachedOrder, error) {
	query := `
        SELECT upstream_id, order_number, customer_name, items, cached_at
        FROM cached_orders
        ORDER BY cached_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("loading cached orders: %w", err)
	}
	defer rows.Close()

	var orders []models.CachedOrder
	for rows.Next() {
		var (
			ord      models.CachedOrder
			rawItems []byte
		)
		if err := rows.Scan(&ord.UpstreamID, &ord.OrderNumber, &ord.CustomerName, &rawItems, &ord.CachedAt); err != nil {
			return nil, fmt.Errorf("scanning cached order row: %w", err)
		}
		if err := json.Unmarshal(rawItems, &ord.Items); err != nil {
			return nil, fmt.Errorf("decoding cached items: %w", err)
		}
		orders = append(orders, ord)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cached order rows: %w", err)
	}
	return orders, nil
}

func (r *CachedOrderRepository) DeleteBefore(ctx context.Context, cutoff time.Time) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cached_orders WHERE cached_at < $1`, cutoff)
	if err != nil {
		return fmt.Errorf("deleting expired cached orders: %w", err)
	}
	return nil
}

func (r *CachedOrderRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM cached_orders`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting cached orders: %w", err)
	}
	return count, nil
}

func (r *CachedOrderRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `TRUNCATE TABLE cached_orders`)
	return err
}

func repositoryKey(order *models.CachedOrder) string {
	if order.UpstreamID != "" {
		return order.UpstreamID
	}
	return models.OrderID(order.OrderNumber, order.CustomerName)
}
