package ingest

import (
	"context"
)

// Store is the ephemeral keyed record store behind the progress tracker.
// Records expire on their own; Get on an expired key reports not-found.
type Store interface {
	Get(context context.Context, artistID string) (*Status, error)
	Set(context context.Context, status *Status) error
}
