package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/baohaus/expeditor/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakySource struct {
	failures int
	calls    int
	snaps    []models.OrderSnapshot
}

func (f *flakySource) Snapshot(ctx context.Context) ([]models.OrderSnapshot, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("transient read failure")
	}
	return f.snaps, nil
}

func TestRetryingSourceRecovers(t *testing.T) {
	inner := &flakySource{failures: 2, snaps: []models.OrderSnapshot{{OrderNumber: "1"}}}
	src := NewRetryingSource(inner, 3, 0)

	snaps, err := src.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, snaps, 1)
	assert.Equal(t, 3, inner.calls)
}

func TestRetryingSourceGivesUp(t *testing.T) {
	inner := &flakySource{failures: 10}
	src := NewRetryingSource(inner, 3, 0)

	_, err := src.Snapshot(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 3, inner.calls)
}

func TestRetryingSourceStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inner := &flakySource{failures: 10}
	src := NewRetryingSource(inner, 3, time.Second)

	_, err := src.Snapshot(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, inner.calls)
}

func TestFileSourceDecodesLooseJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.json")
	payload := `[
		{"orderNumber": 242, "customerName": "Sam Rivera", "elapsedMinutes": "12",
		 "items": [{"name": "Pork Belly Bao", "quantity": "2"}]},
		{"orderNumber": "243", "customerName": "Alex Chen", "previewText": "1 x Bao-nut"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	snaps, err := NewFileSource(path).Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, "242", snaps[0].OrderNumber)
	assert.Equal(t, 12, snaps[0].ElapsedMinutes)
	require.Len(t, snaps[0].Items, 1)
	assert.Equal(t, 2, snaps[0].Items[0].Quantity)
	assert.Equal(t, "1 x Bao-nut", snaps[1].PreviewText)
}

func TestFileSourceMissingFile(t *testing.T) {
	_, err := NewFileSource("/nonexistent/snapshots.json").Snapshot(context.Background())
	assert.Error(t, err)
}

func TestSimulatedSourceProducesUsableSnapshots(t *testing.T) {
	src := NewSimulatedSource(7)

	snaps, err := src.Snapshot(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, snaps)

	for _, s := range snaps {
		assert.NotEmpty(t, s.OrderNumber)
		assert.NotEmpty(t, s.CustomerName)
		if len(s.Items) == 0 {
			assert.NotEmpty(t, s.PreviewText)
		}
	}
}
