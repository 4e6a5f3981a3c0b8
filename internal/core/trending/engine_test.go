// Copyright (c) 2026 SetWave. All rights reserved.
// Author: minh.lq.dev@gmail.com

package trending_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhlq/setwave/internal/core/trending"
)

var (
	testNow     = time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	testWeights = trending.Weights{Votes: 2.0, Attendees: 1.5, Recency: 1.0}
)

func TestComputeScores_ZeroSignalsZeroScore(t *testing.T) {
	aggregates := []trending.SignalAggregate{
		{EntityID: "entity-1"}, // no signals at all
	}

	results := trending.ComputeScores(aggregates, nil, 168, testWeights, testNow)

	require.Len(t, results, 1)
	assert.Zero(t, results[0].Score)
	assert.Zero(t, results[0].WeeklyGrowth)
	assert.Equal(t, 1, results[0].Rank)
}

func TestComputeScores_WeightedSum(t *testing.T) {
	aggregates := []trending.SignalAggregate{
		{
			EntityID:     "entity-1",
			Votes:        10,
			Attendees:    4,
			LastSignalAt: testNow, // fresh signal: recency factor 1
		},
	}

	results := trending.ComputeScores(aggregates, nil, 168, testWeights, testNow)

	require.Len(t, results, 1)
	// 10*2.0 + 4*1.5 + 1*1.0
	assert.InDelta(t, 27.0, results[0].Score, 1e-9)
}

func TestComputeScores_RecencyDecaysLinearlyToWindowEdge(t *testing.T) {
	window := 168

	cases := []struct {
		name       string
		lastSignal time.Time
		wantFactor float64
	}{
		{name: "signal_now", lastSignal: testNow, wantFactor: 1.0},
		{name: "signal_half_window_ago", lastSignal: testNow.Add(-84 * time.Hour), wantFactor: 0.5},
		{name: "signal_at_window_edge", lastSignal: testNow.Add(-168 * time.Hour), wantFactor: 0.0},
		{name: "signal_past_window_edge", lastSignal: testNow.Add(-200 * time.Hour), wantFactor: 0.0},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			aggregates := []trending.SignalAggregate{
				{EntityID: "entity-1", LastSignalAt: testCase.lastSignal},
			}
			// Isolate the recency term.
			weights := trending.Weights{Recency: 1.0}

			results := trending.ComputeScores(aggregates, nil, window, weights, testNow)
			require.Len(t, results, 1)
			assert.InDelta(t, testCase.wantFactor, results[0].Score, 1e-9)
		})
	}
}

func TestComputeScores_DeterministicTieBreakWithAllZeroWeights(t *testing.T) {
	// With every weight zero, every entity scores zero and ordering falls
	// back entirely to the tie-break chain.
	aggregates := []trending.SignalAggregate{
		{EntityID: "charlie", TotalAttendance: 5},
		{EntityID: "alpha", TotalAttendance: 0},
		{EntityID: "bravo", TotalAttendance: 5},
	}

	results := trending.ComputeScores(aggregates, nil, 168, trending.Weights{}, testNow)

	require.Len(t, results, 3)
	// Attendance desc first, then entity ID asc.
	assert.Equal(t, "bravo", results[0].EntityID)
	assert.Equal(t, "charlie", results[1].EntityID)
	assert.Equal(t, "alpha", results[2].EntityID)
	for rank, result := range results {
		assert.Equal(t, rank+1, result.Rank)
		assert.Zero(t, result.Score)
	}
}

func TestComputeScores_RepeatComputationIsIdentical(t *testing.T) {
	aggregates := []trending.SignalAggregate{
		{EntityID: "entity-1", Votes: 12, Attendees: 3, LastSignalAt: testNow.Add(-3 * time.Hour), TotalAttendance: 40},
		{EntityID: "entity-2", Votes: 7, Attendees: 9, LastSignalAt: testNow.Add(-30 * time.Hour), TotalAttendance: 90},
		{EntityID: "entity-3", Views: 300, LastSignalAt: testNow.Add(-100 * time.Hour)},
	}
	previous := map[string]*trending.Snapshot{
		"entity-2": {EntityID: "entity-2", Votes: 5, Attendees: 5, Views: 10},
	}

	first := trending.ComputeScores(aggregates, previous, 168, testWeights, testNow)
	second := trending.ComputeScores(aggregates, previous, 168, testWeights, testNow)

	assert.Equal(t, first, second, "identical inputs must yield identical output")
}

func TestComputeScores_GrowthOnlyFromPersistedSnapshots(t *testing.T) {
	aggregates := []trending.SignalAggregate{
		{EntityID: "with-history", Votes: 30, LastSignalAt: testNow},
		{EntityID: "without-history", Votes: 30, LastSignalAt: testNow},
		{EntityID: "zero-baseline", Votes: 30, LastSignalAt: testNow},
	}
	previous := map[string]*trending.Snapshot{
		"with-history":  {EntityID: "with-history", Votes: 20},
		"zero-baseline": {EntityID: "zero-baseline"},
	}

	results := trending.ComputeScores(aggregates, previous, 168, testWeights, testNow)

	byID := map[string]trending.TrendingScoreResult{}
	for _, result := range results {
		byID[result.EntityID] = result
	}

	assert.InDelta(t, 0.5, byID["with-history"].WeeklyGrowth, 1e-9)
	assert.Zero(t, byID["without-history"].WeeklyGrowth, "growth must never be fabricated from absent history")
	assert.Zero(t, byID["zero-baseline"].WeeklyGrowth, "a zero baseline reports zero growth, not infinity")
}

func TestComputeScores_RanksDescendingByScore(t *testing.T) {
	aggregates := []trending.SignalAggregate{
		{EntityID: "mid", Votes: 5, LastSignalAt: testNow},
		{EntityID: "top", Votes: 50, LastSignalAt: testNow},
		{EntityID: "low", Votes: 1, LastSignalAt: testNow},
	}

	results := trending.ComputeScores(aggregates, nil, 168, testWeights, testNow)

	require.Len(t, results, 3)
	assert.Equal(t, "top", results[0].EntityID)
	assert.Equal(t, "mid", results[1].EntityID)
	assert.Equal(t, "low", results[2].EntityID)
	assert.True(t, results[0].Score > results[1].Score && results[1].Score > results[2].Score)
}
