package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/minhlq/setwave/internal/platform/apperr"
	"github.com/minhlq/setwave/internal/provider"
)

// Tracker enforces the progress-record lifecycle on top of a Store: stages
// only move forward, terminal records never change, and every write refreshes
// the sliding expiry.
type Tracker struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

func NewTracker(store Store, logger *slog.Logger) *Tracker {
	return &Tracker{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// SetNowForTest overrides the tracker clock. Tests only.
func (tracker *Tracker) SetNowForTest(now func() time.Time) {
	tracker.now = now
}

// Begin creates the record for a fresh ingestion run. It refuses to start
// while a non-terminal job already exists for the artist, which makes the
// record the single-writer lock for that artist's pipeline.
func (tracker *Tracker) Begin(context context.Context, artistID string, providerName provider.Name, providerArtistID string) (*Status, error) {
	existing, err := tracker.store.Get(context, artistID)
	if err != nil && !apperr.IsNotFound(err) {
		return nil, err
	}
	if existing != nil && !existing.Stage.Terminal() {
		return nil, apperr.Conflict(fmt.Sprintf("An ingestion run is already in progress for artist %s (stage %s)", artistID, existing.Stage))
	}

	now := tracker.now().UTC()
	status := &Status{
		ArtistID:         artistID,
		Provider:         providerName,
		ProviderArtistID: providerArtistID,
		Stage:            StageInitializing,
		Progress:         0,
		Message:          "Ingestion run accepted",
		StartedAt:        now,
		UpdatedAt:        now,
		ETASeconds:       estimateETA(StageInitializing, 0),
	}

	if err := tracker.store.Set(context, status); err != nil {
		return nil, err
	}

	tracker.logger.Info("ingest_job_started",
		slog.String("artist_id", artistID),
		slog.String("provider", string(providerName)),
		slog.String("provider_artist_id", providerArtistID),
	)
	return status, nil
}

// Update merges a partial mutation into the stored record, creating one with
// defaults if the record is absent. Terminal records are immutable and stage
// transitions must not regress; either violation is a Conflict.
func (tracker *Tracker) Update(context context.Context, artistID string, update Update) (*Status, error) {
	status, err := tracker.store.Get(context, artistID)
	if apperr.IsNotFound(err) {
		now := tracker.now().UTC()
		status = &Status{
			ArtistID:  artistID,
			Stage:     StageInitializing,
			StartedAt: now,
		}
	} else if err != nil {
		return nil, err
	}

	if status.Stage.Terminal() {
		return nil, apperr.Conflict(fmt.Sprintf("Import job for artist %s already reached terminal stage %s", artistID, status.Stage))
	}

	if update.Stage != nil {
		next := *update.Stage
		if !next.Valid() {
			return nil, apperr.ValidationError(fmt.Sprintf("Unknown ingestion stage %q", next))
		}
		if stageOrder[next] < stageOrder[status.Stage] {
			return nil, apperr.Conflict(fmt.Sprintf("Stage cannot regress from %s to %s", status.Stage, next))
		}
		status.Stage = next
	}
	if update.Progress != nil {
		status.Progress = clampPercent(*update.Progress)
	}
	if update.Message != nil {
		status.Message = *update.Message
	}
	if update.Error != nil {
		status.Error = *update.Error
	}
	if update.SkippedRecords != nil {
		status.SkippedRecords = *update.SkippedRecords
	}

	now := tracker.now().UTC()
	status.UpdatedAt = now
	if status.Stage.Terminal() {
		status.CompletedAt = &now
	}
	if status.Stage == StageCompleted {
		status.Progress = 100
	}
	status.ETASeconds = estimateETA(status.Stage, status.Progress)

	if err := tracker.store.Set(context, status); err != nil {
		return nil, err
	}
	return status, nil
}

// Get returns the current snapshot, or not-found when the job is unknown or
// its record has expired.
func (tracker *Tracker) Get(context context.Context, artistID string) (*Status, error) {
	return tracker.store.Get(context, artistID)
}
