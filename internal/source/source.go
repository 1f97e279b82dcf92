package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/baohaus/expeditor/internal/models"
)

// SnapshotSource produces the raw order snapshots for one extraction
// pass. A source reads whatever surface it fronts (a live order feed, a
// recorded file, a simulation) and shapes it into typed records; it
// does no classification.
type SnapshotSource interface {
	Snapshot(ctx context.Context) ([]models.OrderSnapshot, error)
}

// RetryingSource retries a flaky inner source with a linearly growing
// backoff before giving up on the pass.
type RetryingSource struct {
	inner    SnapshotSource
	attempts int
	backoff  time.Duration
}

func NewRetryingSource(inner SnapshotSource, attempts int, backoff time.Duration) *RetryingSource {
	if attempts < 1 {
		attempts = 1
	}
	return &RetryingSource{inner: inner, attempts: attempts, backoff: backoff}
}

func (r *RetryingSource) Snapshot(ctx context.Context) ([]models.OrderSnapshot, error) {
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		snaps, err := r.inner.Snapshot(ctx)
		if err == nil {
			return snaps, nil
		}
		lastErr = err
		if attempt < r.attempts {
			log.Printf("snapshot attempt %d/%d failed: %v", attempt, r.attempts, err)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * r.backoff):
			}
		}
	}
	return nil, fmt.Errorf("snapshot failed after %d attempts: %w", r.attempts, lastErr)
}

// FileSource replays order snapshots from a JSON file, mostly useful
// for one-shot extraction runs against captured data.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (f *FileSource) Snapshot(ctx context.Context) ([]models.OrderSnapshot, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot file: %w", err)
	}
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing snapshot file %s: %w", f.path, err)
	}
	return models.DecodeSnapshots(raw)
}
