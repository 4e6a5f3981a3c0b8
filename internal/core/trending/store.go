package trending

import (
	"context"
	"time"
)

type Repository interface {
	// RecordSignal increments the hour bucket for (entity, kind).
	RecordSignal(context context.Context, signal *ActivitySignal) error

	// AggregateWindow sums signals per entity from `since` onward, including
	// each entity's most recent signal time and all-time attendance total.
	AggregateWindow(context context.Context, entityType EntityType, since time.Time) ([]SignalAggregate, error)

	// PreviousSnapshots returns the persisted counters for the period before
	// `period`, keyed by entity ID.
	PreviousSnapshots(context context.Context, entityType EntityType, windowHours int, period time.Time) (map[string]*Snapshot, error)

	// SaveSnapshots upserts the current period's counters.
	SaveSnapshots(context context.Context, snapshots []*Snapshot) error
}
