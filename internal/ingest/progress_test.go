// Copyright (c) 2026 SetWave. All rights reserved.
// Author: minh.lq.dev@gmail.com

package ingest_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhlq/setwave/internal/ingest"
	"github.com/minhlq/setwave/internal/platform/apperr"
	"github.com/minhlq/setwave/internal/provider"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memoryStore is an in-memory stand-in for the Redis progress store. Keys in
// the expired set behave as if their TTL elapsed.
type memoryStore struct {
	records map[string]*ingest.Status
	expired map[string]bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		records: map[string]*ingest.Status{},
		expired: map[string]bool{},
	}
}

func (store *memoryStore) Get(_ context.Context, artistID string) (*ingest.Status, error) {
	status, ok := store.records[artistID]
	if !ok || store.expired[artistID] {
		return nil, apperr.NotFound("Import job")
	}
	clone := *status
	return &clone, nil
}

func (store *memoryStore) Set(_ context.Context, status *ingest.Status) error {
	clone := *status
	store.records[status.ArtistID] = &clone
	delete(store.expired, status.ArtistID)
	return nil
}

func stagePtr(s ingest.Stage) *ingest.Stage { return &s }

func TestTracker_BeginCreatesInitializingRecord(t *testing.T) {
	tracker := ingest.NewTracker(newMemoryStore(), testLogger())

	status, err := tracker.Begin(context.Background(), "artist-1", provider.NameTicketmaster, "tm-123")
	require.NoError(t, err)

	assert.Equal(t, ingest.StageInitializing, status.Stage)
	assert.Equal(t, 0, status.Progress)
	assert.Equal(t, "tm-123", status.ProviderArtistID)
	assert.False(t, status.StartedAt.IsZero())
	assert.Positive(t, status.ETASeconds)
}

func TestTracker_BeginRefusesSecondRunWhileActive(t *testing.T) {
	tracker := ingest.NewTracker(newMemoryStore(), testLogger())

	_, err := tracker.Begin(context.Background(), "artist-1", provider.NameTicketmaster, "tm-123")
	require.NoError(t, err)

	_, err = tracker.Begin(context.Background(), "artist-1", provider.NameSpotify, "sp-456")
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))
}

func TestTracker_BeginAllowedAfterTerminalStage(t *testing.T) {
	tracker := ingest.NewTracker(newMemoryStore(), testLogger())
	ctx := context.Background()

	_, err := tracker.Begin(ctx, "artist-1", provider.NameTicketmaster, "tm-123")
	require.NoError(t, err)

	_, err = tracker.Update(ctx, "artist-1", ingest.Update{Stage: stagePtr(ingest.StageCompleted)})
	require.NoError(t, err)

	_, err = tracker.Begin(ctx, "artist-1", provider.NameTicketmaster, "tm-123")
	assert.NoError(t, err)
}

func TestTracker_StageIsMonotonic(t *testing.T) {
	tracker := ingest.NewTracker(newMemoryStore(), testLogger())
	ctx := context.Background()

	_, err := tracker.Begin(ctx, "artist-1", provider.NameTicketmaster, "tm-123")
	require.NoError(t, err)

	_, err = tracker.Update(ctx, "artist-1", ingest.Update{Stage: stagePtr(ingest.StageImportingShows)})
	require.NoError(t, err)

	// Regressing to an earlier stage is refused.
	_, err = tracker.Update(ctx, "artist-1", ingest.Update{Stage: stagePtr(ingest.StageFetchingArtist)})
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))

	// Re-asserting the current stage is fine (progress updates do this).
	_, err = tracker.Update(ctx, "artist-1", ingest.Update{Stage: stagePtr(ingest.StageImportingShows)})
	assert.NoError(t, err)
}

func TestTracker_FailedReachableFromAnyNonTerminalStage(t *testing.T) {
	stages := []ingest.Stage{
		ingest.StageInitializing,
		ingest.StageFetchingArtist,
		ingest.StageSyncingIdentifiers,
		ingest.StageImportingSongs,
		ingest.StageImportingShows,
		ingest.StageCreatingSetlists,
	}

	for _, stage := range stages {
		t.Run(string(stage), func(t *testing.T) {
			tracker := ingest.NewTracker(newMemoryStore(), testLogger())
			ctx := context.Background()

			_, err := tracker.Begin(ctx, "artist-1", provider.NameTicketmaster, "tm-123")
			require.NoError(t, err)
			_, err = tracker.Update(ctx, "artist-1", ingest.Update{Stage: stagePtr(stage)})
			require.NoError(t, err)

			status, err := tracker.Update(ctx, "artist-1", ingest.Update{Stage: stagePtr(ingest.StageFailed)})
			require.NoError(t, err)
			assert.Equal(t, ingest.StageFailed, status.Stage)
			assert.NotNil(t, status.CompletedAt)
		})
	}
}

func TestTracker_TerminalStagesAreImmutable(t *testing.T) {
	cases := []struct {
		name     string
		terminal ingest.Stage
	}{
		{name: "completed", terminal: ingest.StageCompleted},
		{name: "failed", terminal: ingest.StageFailed},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			tracker := ingest.NewTracker(newMemoryStore(), testLogger())
			ctx := context.Background()

			_, err := tracker.Begin(ctx, "artist-1", provider.NameTicketmaster, "tm-123")
			require.NoError(t, err)
			_, err = tracker.Update(ctx, "artist-1", ingest.Update{Stage: stagePtr(testCase.terminal)})
			require.NoError(t, err)

			message := "late update"
			_, err = tracker.Update(ctx, "artist-1", ingest.Update{Message: &message})
			require.Error(t, err)
			assert.True(t, apperr.IsConflict(err))
		})
	}
}

func TestTracker_UpdateRefreshesUpdatedAt(t *testing.T) {
	store := newMemoryStore()
	tracker := ingest.NewTracker(store, testLogger())
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	current := base
	tracker.SetNowForTest(func() time.Time { return current })

	_, err := tracker.Begin(ctx, "artist-1", provider.NameTicketmaster, "tm-123")
	require.NoError(t, err)

	current = base.Add(45 * time.Second)
	progress := 40
	status, err := tracker.Update(ctx, "artist-1", ingest.Update{Progress: &progress})
	require.NoError(t, err)

	assert.Equal(t, base, status.StartedAt)
	assert.Equal(t, current, status.UpdatedAt)
	assert.Equal(t, 40, status.Progress)
}

func TestTracker_UpdateCreatesRecordWithDefaults(t *testing.T) {
	tracker := ingest.NewTracker(newMemoryStore(), testLogger())

	message := "resumed"
	status, err := tracker.Update(context.Background(), "artist-9", ingest.Update{Message: &message})
	require.NoError(t, err)

	assert.Equal(t, ingest.StageInitializing, status.Stage)
	assert.Equal(t, "resumed", status.Message)
}

func TestTracker_ExpiredRecordIsNotFound(t *testing.T) {
	store := newMemoryStore()
	tracker := ingest.NewTracker(store, testLogger())
	ctx := context.Background()

	_, err := tracker.Begin(ctx, "artist-1", provider.NameTicketmaster, "tm-123")
	require.NoError(t, err)

	store.expired["artist-1"] = true

	_, err = tracker.Get(ctx, "artist-1")
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

func TestTracker_CompletionForcesFullProgress(t *testing.T) {
	tracker := ingest.NewTracker(newMemoryStore(), testLogger())
	ctx := context.Background()

	_, err := tracker.Begin(ctx, "artist-1", provider.NameTicketmaster, "tm-123")
	require.NoError(t, err)

	status, err := tracker.Update(ctx, "artist-1", ingest.Update{Stage: stagePtr(ingest.StageCompleted)})
	require.NoError(t, err)

	assert.Equal(t, 100, status.Progress)
	assert.Equal(t, 0, status.ETASeconds)
	assert.NotNil(t, status.CompletedAt)
}
