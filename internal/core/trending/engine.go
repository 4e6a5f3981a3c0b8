package trending

import (
	"sort"
	"time"
)

// ComputeScores ranks the aggregates by the weighted, time-decayed formula:
//
//	rawScore = votes*wVotes + attendees*wAttendees + recencyFactor*wRecency
//
// recencyFactor decays linearly from 1 at "now" to 0 at the window edge,
// measured from the entity's most recent signal. Ordering is deterministic:
// score descending, then total historical attendance descending, then entity
// ID ascending. Growth comes exclusively from the previous-period snapshots;
// an entity with no previous snapshot reports zero growth.
//
// The function is pure: identical inputs always produce identical output.
func ComputeScores(
	aggregates []SignalAggregate,
	previous map[string]*Snapshot,
	windowHours int,
	weights Weights,
	now time.Time,
) []TrendingScoreResult {
	window := time.Duration(windowHours) * time.Hour
	now = now.UTC()

	results := make([]TrendingScoreResult, 0, len(aggregates))
	scored := make([]scoredEntity, 0, len(aggregates))

	for _, aggregate := range aggregates {
		score := float64(aggregate.Votes)*weights.Votes +
			float64(aggregate.Attendees)*weights.Attendees +
			recencyFactor(now, aggregate.LastSignalAt, window)*weights.Recency

		scored = append(scored, scoredEntity{
			aggregate: aggregate,
			score:     score,
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.aggregate.TotalAttendance != b.aggregate.TotalAttendance {
			return a.aggregate.TotalAttendance > b.aggregate.TotalAttendance
		}
		return a.aggregate.EntityID < b.aggregate.EntityID
	})

	for rank, entry := range scored {
		results = append(results, TrendingScoreResult{
			EntityID:     entry.aggregate.EntityID,
			Score:        entry.score,
			Rank:         rank + 1,
			WindowHours:  windowHours,
			WeeklyGrowth: growth(entry.aggregate, previous[entry.aggregate.EntityID]),
			GeneratedAt:  now,
		})
	}

	return results
}

type scoredEntity struct {
	aggregate SignalAggregate
	score     float64
}

// recencyFactor decays linearly to zero at the window edge. An entity with no
// signals inside the window contributes nothing.
func recencyFactor(now, lastSignalAt time.Time, window time.Duration) float64 {
	if lastSignalAt.IsZero() {
		return 0
	}
	elapsed := now.Sub(lastSignalAt)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed >= window {
		return 0
	}
	return 1 - float64(elapsed)/float64(window)
}

// growth compares the window's total activity against the previous period's
// persisted snapshot. Absent history or a zero baseline both report zero; a
// trend is never fabricated.
func growth(current SignalAggregate, snapshot *Snapshot) float64 {
	if snapshot == nil {
		return 0
	}
	previousTotal := snapshot.Votes + snapshot.Attendees + snapshot.Views
	if previousTotal == 0 {
		return 0
	}
	currentTotal := current.Votes + current.Attendees + current.Views
	return (float64(currentTotal) - float64(previousTotal)) / float64(previousTotal)
}
