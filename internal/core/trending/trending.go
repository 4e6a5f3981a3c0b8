/*
Package trending derives a time-decayed popularity ranking from user activity
signals (votes, attendance, views).

# Architecture

  - store_postgres.go — signal increments, window aggregates, snapshots.
  - engine.go         — the pure scoring function.
  - cache_redis.go    — short-TTL cache of ranked output.
  - scheduler.go      — background recompute loop.

The engine is read-only with respect to signals: scores are an idempotent
projection, never authoritative state.
*/
package trending

import (
	"fmt"
	"time"
)

// EntityType scopes a ranking to one kind of catalog entity.
type EntityType string

const (
	EntityArtist EntityType = "artist"
	EntityShow   EntityType = "show"
)

// Valid reports whether the entity type can carry activity signals.
func (e EntityType) Valid() bool {
	return e == EntityArtist || e == EntityShow
}

// Signal kinds.
const (
	KindVote       = "vote"
	KindAttendance = "attendance"
	KindView       = "view"
)

// ActivitySignal is one hour-bucketed activity counter. Append/increment
// only; the bucket is the signal timestamp truncated to the hour.
type ActivitySignal struct {
	EntityID   string     `json:"entity_id"`
	EntityType EntityType `json:"entity_type"`
	Kind       string     `json:"kind"`
	Count      int64      `json:"count"`
	Bucket     time.Time  `json:"bucket"`
}

// Weights are the non-negative multipliers of the scoring formula.
type Weights struct {
	Votes     float64 `json:"votes"`
	Attendees float64 `json:"attendees"`
	Recency   float64 `json:"recency"`
}

// Valid reports whether every multiplier is non-negative. Zero weights are
// allowed; they simply remove that term from the score.
func (w Weights) Valid() bool {
	return w.Votes >= 0 && w.Attendees >= 0 && w.Recency >= 0
}

// CacheKeyPart renders the weights deterministically for cache keying.
func (w Weights) CacheKeyPart() string {
	return fmt.Sprintf("%g:%g:%g", w.Votes, w.Attendees, w.Recency)
}

// SignalAggregate is one entity's summed activity within a window, plus the
// historical attendance total used as the deterministic tie-breaker.
type SignalAggregate struct {
	EntityID        string
	Votes           int64
	Attendees       int64
	Views           int64
	LastSignalAt    time.Time
	TotalAttendance int64
}

// TrendingScoreResult is one ranked entry of the engine's output.
type TrendingScoreResult struct {
	EntityID     string    `json:"entity_id"`
	Score        float64   `json:"score"`
	Rank         int       `json:"rank"`
	WindowHours  int       `json:"window_hours"`
	WeeklyGrowth float64   `json:"weekly_growth"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// Snapshot is one persisted per-period counter set. Growth is only ever
// computed against a previously persisted snapshot, never inferred.
type Snapshot struct {
	EntityID    string     `json:"entity_id"`
	EntityType  EntityType `json:"entity_type"`
	WindowHours int        `json:"window_hours"`
	Period      time.Time  `json:"period"`
	Votes       int64      `json:"votes"`
	Attendees   int64      `json:"attendees"`
	Views       int64      `json:"views"`
	GeneratedAt time.Time  `json:"generated_at"`
}

// PeriodStart aligns a point in time to the start of its window period, so
// consecutive recomputes within one period share a snapshot row.
func PeriodStart(at time.Time, windowHours int) time.Time {
	window := time.Duration(windowHours) * time.Hour
	return at.UTC().Truncate(window)
}
