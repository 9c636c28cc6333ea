package dedup

import (
	"context"
	"time"
)

// Observer is the store surface the ingest pipeline depends on. Both the
// in-memory store and the SQLite store satisfy it.
type Observer interface {
	Observe(ctx context.Context, fingerprint, detectionID string, at time.Time) (bool, error)
	Window() time.Duration
	Len(ctx context.Context) (int, error)
}

// ContextStore adapts Store to Observer. The in-memory store itself takes
// no context.
type ContextStore struct {
	*Store
}

func (c ContextStore) Observe(_ context.Context, fingerprint, detectionID string, at time.Time) (bool, error) {
	return c.Store.Observe(fingerprint, detectionID, at)
}

func (c ContextStore) Len(_ context.Context) (int, error) {
	return c.Store.Len(), nil
}
