/*
Package ingest implements the artist ingestion pipeline: identity resolution
across providers, catalog merging, and asynchronous orchestration with a
Redis-backed progress record that polling clients observe.

# Architecture

  - resolver.go     — maps a provider-native artist ID onto one canonical artist.
  - merger.go       — idempotent upserts of shows and songs by natural key.
  - progress.go     — stage-monotonic progress tracking over an ephemeral store.
  - orchestrator.go — sequences the stages in a detached goroutine.
  - http.go         — trigger and polling surface.
*/
package ingest

import (
	"time"

	"github.com/minhlq/setwave/internal/provider"
)

// Stage identifies one step of the ingestion pipeline.
type Stage string

// Pipeline stages in execution order. Failed is reachable from any
// non-terminal stage; Completed and Failed are terminal.
const (
	StageInitializing       Stage = "initializing"
	StageFetchingArtist     Stage = "fetching-artist"
	StageSyncingIdentifiers Stage = "syncing-identifiers"
	StageImportingSongs     Stage = "importing-songs"
	StageImportingShows     Stage = "importing-shows"
	StageCreatingSetlists   Stage = "creating-setlists"
	StageCompleted          Stage = "completed"
	StageFailed             Stage = "failed"
)

// stageOrder gives each stage a rank for the monotonicity guard. Failed ranks
// above every working stage so any non-terminal job can fail.
var stageOrder = map[Stage]int{
	StageInitializing:       0,
	StageFetchingArtist:     1,
	StageSyncingIdentifiers: 2,
	StageImportingSongs:     3,
	StageImportingShows:     4,
	StageCreatingSetlists:   5,
	StageCompleted:          6,
	StageFailed:             7,
}

// Valid reports whether the stage is a known pipeline stage.
func (s Stage) Valid() bool {
	_, ok := stageOrder[s]
	return ok
}

// Terminal reports whether the stage ends the job.
func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageFailed
}

// stageDurations is the fixed per-stage duration table used to estimate time
// remaining. The estimates are advisory, not measured.
var stageDurations = map[Stage]time.Duration{
	StageInitializing:       2 * time.Second,
	StageFetchingArtist:     5 * time.Second,
	StageSyncingIdentifiers: 5 * time.Second,
	StageImportingSongs:     30 * time.Second,
	StageImportingShows:     20 * time.Second,
	StageCreatingSetlists:   5 * time.Second,
}

// Status is the progress record for one ingestion job, keyed by canonical
// artist ID. It lives only in the ephemeral store and expires on its own.
type Status struct {
	ArtistID         string        `json:"artist_id"`
	Provider         provider.Name `json:"provider"`
	ProviderArtistID string        `json:"provider_artist_id"`
	Stage            Stage         `json:"stage"`
	Progress         int           `json:"progress"`
	Message          string        `json:"message"`
	Error            string        `json:"error,omitempty"`
	SkippedRecords   int           `json:"skipped_records,omitempty"`
	StartedAt        time.Time     `json:"started_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
	CompletedAt      *time.Time    `json:"completed_at,omitempty"`
	ETASeconds       int           `json:"eta_seconds"`
}

// Update is a partial status mutation merged into the stored record. Nil
// fields are left untouched.
type Update struct {
	Stage          *Stage
	Progress       *int
	Message        *string
	Error          *string
	SkippedRecords *int
}

// estimateETA sums the duration table from the current stage forward,
// discounting the current stage by its local progress percentage.
func estimateETA(stage Stage, progress int) int {
	if stage.Terminal() {
		return 0
	}

	rank := stageOrder[stage]
	var remaining time.Duration
	for s, d := range stageDurations {
		switch {
		case stageOrder[s] < rank:
			// already done
		case stageOrder[s] == rank:
			remaining += d * time.Duration(100-clampPercent(progress)) / 100
		default:
			remaining += d
		}
	}
	return int(remaining / time.Second)
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
