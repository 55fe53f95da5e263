package scheduler

import (
	"context"
	"time"

	"remindd/internal/event"
)

// Store is the slice of the event store the engine consumes. The store is
// responsible for serializing concurrent writes to the same record; the
// engine only requires per-record atomicity, which Update provides via a
// compare-and-set on the version token.
type Store interface {
	ListDue(ctx context.Context, now time.Time) ([]event.Event, error)
	ListExpired(ctx context.Context, cutoff time.Time) ([]event.Event, error)
	Get(ctx context.Context, id uint64) (event.Event, error)
	Update(ctx context.Context, id, version uint64, changes map[string]any) error
}
