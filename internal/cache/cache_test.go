package cache

import (
	"context"
	"testing"
	"time"

	"github.com/baohaus/expeditor/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Load(ctx context.Context) ([]models.CachedOrder, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CachedOrder), args.Error(1)
}

func (m *mockRepository) Upsert(ctx context.Context, order *models.CachedOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockRepository) DeleteBefore(ctx context.Context, cutoff time.Time) error {
	args := m.Called(ctx, cutoff)
	return args.Error(0)
}

func TestStorePutAndFindMatching(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &models.CachedOrder{
		OrderNumber:  "#242",
		CustomerName: "Sam Rivera",
		Items:        []models.CachedItem{{Name: "Pork Belly Bao", Quantity: 2}},
	}))
	assert.Equal(t, 1, store.Len())

	got := store.FindMatching("242", "", 0)
	require.NotNil(t, got)
	assert.Equal(t, "Sam Rivera", got.CustomerName)

	got = store.FindMatching("999", "sam rivera", 2)
	require.NotNil(t, got)

	assert.Nil(t, store.FindMatching("999", "Nobody", 1))
}

func TestStorePutReplacesInPlace(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &models.CachedOrder{OrderNumber: "1", CustomerName: "Sam"}))
	require.NoError(t, store.Put(ctx, &models.CachedOrder{
		OrderNumber:  "1",
		CustomerName: "Sam",
		Items:        []models.CachedItem{{Name: "Bao-nut", Quantity: 1}},
	}))

	assert.Equal(t, 1, store.Len())
	got := store.FindMatching("1", "", 0)
	require.NotNil(t, got)
	assert.Len(t, got.Items, 1)
}

func TestStoreRejectsKeylessOrder(t *testing.T) {
	store := NewStore()
	err := store.Put(context.Background(), &models.CachedOrder{})
	assert.Error(t, err)
}

func TestStoreIngestDecodesLoosePayload(t *testing.T) {
	store := NewStore()

	// Numbers arrive as floats and strings depending on the capture path.
	ord, err := store.Ingest(context.Background(), map[string]interface{}{
		"upstreamId":   "abc123",
		"orderNumber":  242.0,
		"customerName": "Sam Rivera",
		"items": []interface{}{
			map[string]interface{}{"name": "Pork Belly Bao", "quantity": "2", "price": 6.5},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "242", ord.OrderNumber)
	require.Len(t, ord.Items, 1)
	assert.Equal(t, 2, ord.Items[0].Quantity)
	assert.Equal(t, 6.5, ord.Items[0].Price)
}

func TestStoreWarmUpFromRepository(t *testing.T) {
	repo := new(mockRepository)
	repo.On("Load", mock.Anything).Return([]models.CachedOrder{
		{OrderNumber: "1", CustomerName: "Sam", CachedAt: time.Now()},
		{OrderNumber: "2", CustomerName: "Alex", CachedAt: time.Now()},
	}, nil)

	store := NewStore(WithRepository(repo))
	require.NoError(t, store.WarmUp(context.Background()))
	assert.Equal(t, 2, store.Len())
	repo.AssertExpectations(t)
}

func TestStorePutPersistsThroughRepository(t *testing.T) {
	repo := new(mockRepository)
	repo.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	store := NewStore(WithRepository(repo))
	require.NoError(t, store.Put(context.Background(), &models.CachedOrder{OrderNumber: "1", CustomerName: "Sam"}))
	repo.AssertExpectations(t)
}

func TestStorePrune(t *testing.T) {
	current := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	store := NewStore(WithClock(func() time.Time { return current }))
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &models.CachedOrder{OrderNumber: "old", CustomerName: "A"}))
	current = current.Add(2 * time.Hour)
	require.NoError(t, store.Put(ctx, &models.CachedOrder{OrderNumber: "fresh", CustomerName: "B"}))

	removed := store.Prune(ctx, time.Hour)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.Len())
	assert.Nil(t, store.FindMatching("old", "", 0))
	require.NotNil(t, store.FindMatching("fresh", "", 0))
}
