// Copyright (c) 2026 SetWave. All rights reserved.
// Author: minh.lq.dev@gmail.com

package provider_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhlq/setwave/internal/provider"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fastLimiters returns a limiter set with near-zero intervals so tests do
// not wait on real politeness budgets.
func fastLimiters() *provider.LimiterSet {
	set := provider.NewLimiterSet()
	set.SetInterval(provider.NameTicketmaster, time.Microsecond)
	set.SetInterval(provider.NameSpotify, time.Microsecond)
	set.SetInterval(provider.NameMusicBrainz, time.Microsecond)
	return set
}

/*
TestFetcher_RetryOn429ThenSuccess verifies that a provider answering 429 three
times and then 200 still yields the data, within the attempt ceiling.
*/
func TestFetcher_RetryOn429ThenSuccess(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if calls.Add(1) <= 3 {
			writer.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"name":"Drake"}`))
	}))
	defer server.Close()

	fetcher := provider.NewFetcher(fastLimiters(), 5, testLogger())

	var payload struct {
		Name string `json:"name"`
	}
	err := fetcher.GetJSON(context.Background(), provider.NameTicketmaster, "test_op", server.URL, nil, &payload)

	require.NoError(t, err)
	assert.Equal(t, "Drake", payload.Name)
	assert.Equal(t, int32(4), calls.Load())
	assert.LessOrEqual(t, calls.Load(), int32(5))
}

/*
TestFetcher_FatalOn404 verifies that a 404 fails immediately without retry.
*/
func TestFetcher_FatalOn404(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		calls.Add(1)
		writer.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := provider.NewFetcher(fastLimiters(), 5, testLogger())

	var payload map[string]any
	err := fetcher.GetJSON(context.Background(), provider.NameSpotify, "test_op", server.URL, nil, &payload)

	require.Error(t, err)
	assert.False(t, provider.IsRetryable(err))
	assert.True(t, provider.IsNotFound(err))
	assert.Equal(t, int32(1), calls.Load(), "4xx must not be retried")
}

/*
TestFetcher_ExhaustsAttemptCeiling verifies that a persistently failing
provider stops at the configured ceiling and surfaces a retryable error.
*/
func TestFetcher_ExhaustsAttemptCeiling(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		calls.Add(1)
		writer.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	fetcher := provider.NewFetcher(fastLimiters(), 3, testLogger())
	// Skip real backoff sleeps.
	fetcher.SetSleepForTest(func(ctx context.Context, d time.Duration) error { return nil })

	var payload map[string]any
	err := fetcher.GetJSON(context.Background(), provider.NameMusicBrainz, "test_op", server.URL, nil, &payload)

	require.Error(t, err)
	assert.True(t, provider.IsRetryable(err))
	assert.Equal(t, int32(3), calls.Load())
}

/*
TestFetcher_MalformedPayloadIsFatal verifies that undecodable JSON is treated
as a non-retryable failure.
*/
func TestFetcher_MalformedPayloadIsFatal(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		calls.Add(1)
		_, _ = writer.Write([]byte(`{"broken":`))
	}))
	defer server.Close()

	fetcher := provider.NewFetcher(fastLimiters(), 5, testLogger())

	var payload map[string]any
	err := fetcher.GetJSON(context.Background(), provider.NameTicketmaster, "test_op", server.URL, nil, &payload)

	require.Error(t, err)
	assert.False(t, provider.IsRetryable(err))
	assert.Equal(t, int32(1), calls.Load())
}

/*
TestCollectPages verifies the pagination loop honors both the provider's
total and the hard page ceiling.
*/
func TestCollectPages(t *testing.T) {
	tests := []struct {
		name       string
		totalPages int
		maxPages   int
		perPage    int
		wantItems  int
		wantCalls  int
	}{
		{"provider_total_below_ceiling", 3, 5, 2, 6, 3},
		{"ceiling_below_provider_total", 20, 5, 2, 10, 5},
		{"single_page", 1, 5, 4, 4, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			fetch := func(ctx context.Context, page int) ([]int, int, error) {
				calls++
				items := make([]int, tt.perPage)
				return items, tt.totalPages, nil
			}

			items, err := provider.CollectPages(context.Background(), tt.maxPages, fetch)

			require.NoError(t, err)
			assert.Len(t, items, tt.wantItems)
			assert.Equal(t, tt.wantCalls, calls)
		})
	}
}

/*
TestCollectPages_UnknownTotalStopsOnEmptyPage covers providers that never
report a page count.
*/
func TestCollectPages_UnknownTotalStopsOnEmptyPage(t *testing.T) {
	pages := [][]int{{1, 2}, {3}, {}}
	calls := 0

	fetch := func(ctx context.Context, page int) ([]int, int, error) {
		calls++
		return pages[page-1], 0, nil
	}

	items, err := provider.CollectPages(context.Background(), 5, fetch)

	require.NoError(t, err)
	assert.Len(t, items, 3)
	assert.Equal(t, 3, calls)
}

/*
TestCollectPages_PartialResultOnError verifies that already-collected items
are returned alongside the error.
*/
func TestCollectPages_PartialResultOnError(t *testing.T) {
	fetch := func(ctx context.Context, page int) ([]int, int, error) {
		if page == 2 {
			return nil, 0, assert.AnError
		}
		return []int{1, 2}, 3, nil
	}

	items, err := provider.CollectPages(context.Background(), 5, fetch)

	require.Error(t, err)
	assert.Len(t, items, 2)
}
