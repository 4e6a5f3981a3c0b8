// Copyright (c) 2026 SetWave. All rights reserved.
// Author: minh.lq.dev@gmail.com

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"time"
)

// Fetch tuning shared by all providers.
const (
	// defaultRequestTimeout bounds a single round trip; exceeding it counts
	// as a retryable failure.
	defaultRequestTimeout = 10 * time.Second

	// backoffBase is the first retry delay; it doubles per attempt.
	backoffBase = 500 * time.Millisecond

	// backoffCap bounds the exponential growth.
	backoffCap = 8 * time.Second

	// maxResponseBytes guards against a misbehaving provider streaming an
	// unbounded body.
	maxResponseBytes = 2 << 20
)

// Fetcher is the throttled HTTP door every provider client goes through.
//
// # Guarantees
//
//   - The provider's minimum inter-request interval is honored before every
//     attempt, including retries.
//   - HTTP 429 and 5xx are retried with exponential backoff and jitter up to
//     MaxAttempts; other 4xx fail immediately as non-retryable.
//   - Every attempt carries a request timeout; a timeout is retryable.
type Fetcher struct {
	client      *http.Client
	limiters    *LimiterSet
	logger      *slog.Logger
	maxAttempts int

	// sleep is swappable for tests; defaults to time.Sleep via sleepContext.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewFetcher constructs a Fetcher with the shared limiter set.
//
// # Parameters
//   - limiters: Provider-scoped rate limiters.
//   - maxAttempts: Retry ceiling per request (attempts, not retries).
//   - logger: Structured logger for retry/backoff events.
func NewFetcher(limiters *LimiterSet, maxAttempts int, logger *slog.Logger) *Fetcher {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	return &Fetcher{
		client:      &http.Client{Timeout: defaultRequestTimeout},
		limiters:    limiters,
		logger:      logger,
		maxAttempts: maxAttempts,
		sleep:       sleepContext,
	}
}

// GetJSON performs a rate-limited GET against the provider and decodes the
// JSON response body into target.
//
// # Parameters
//   - context: Cancels both the rate-limit wait and the round trips.
//   - providerName: Which limiter and error taxonomy to apply.
//   - op: Short operation label for diagnostics.
//   - url: Fully-formed request URL.
//   - header: Extra request headers (User-Agent, Authorization); may be nil.
//   - target: Pointer to the JSON destination struct.
func (fetcher *Fetcher) GetJSON(context context.Context, providerName Name, op, url string, header http.Header, target any) error {

	var lastErr error

	for attempt := 1; attempt <= fetcher.maxAttempts; attempt++ {

		// 1. Honor the provider's politeness budget before every attempt.
		if err := fetcher.limiters.Wait(context, providerName); err != nil {
			return &Error{Provider: providerName, Op: op, Retryable: false, Cause: err}
		}

		// 2. One round trip.
		err := fetcher.doOnce(context, providerName, op, url, header, target)
		if err == nil {
			return nil
		}
		lastErr = err

		// 3. Fatal failures are surfaced immediately, no retry.
		if !IsRetryable(err) {
			return err
		}

		// 4. Backoff before the next attempt (skipped after the last one).
		if attempt == fetcher.maxAttempts {
			break
		}

		delay := backoffDelay(attempt)
		fetcher.logger.Warn("provider_retry_scheduled",
			slog.String("provider", string(providerName)),
			slog.String("op", op),
			slog.Int("attempt", attempt),
			slog.Duration("backoff", delay),
			slog.String("error", err.Error()),
		)

		if err := fetcher.sleep(context, delay); err != nil {
			return &Error{Provider: providerName, Op: op, Retryable: false, Cause: err}
		}
	}

	fetcher.logger.Error("provider_retries_exhausted",
		slog.String("provider", string(providerName)),
		slog.String("op", op),
		slog.Int("attempts", fetcher.maxAttempts),
	)

	return lastErr
}

// doOnce executes a single attempt: throttled GET, status classification,
// bounded read, JSON decode.
func (fetcher *Fetcher) doOnce(context context.Context, providerName Name, op, url string, header http.Header, target any) error {

	request, err := http.NewRequestWithContext(context, http.MethodGet, url, nil)
	if err != nil {
		return &Error{Provider: providerName, Op: op, Retryable: false, Cause: err}
	}

	request.Header.Set("Accept", "application/json")
	for key, values := range header {
		for _, value := range values {
			request.Header.Add(key, value)
		}
	}

	response, err := fetcher.client.Do(request)
	if err != nil {
		// Transport-level failure (DNS, reset, timeout): retryable.
		return &Error{Provider: providerName, Op: op, Retryable: true, Cause: err}
	}
	defer func() { _ = response.Body.Close() }()

	// Status classification per the shared error taxonomy.
	switch {
	case response.StatusCode == http.StatusOK:
		// Fall through to decode.

	case response.StatusCode == http.StatusTooManyRequests || response.StatusCode >= 500:
		_, _ = io.Copy(io.Discard, response.Body)
		return &Error{Provider: providerName, Op: op, StatusCode: response.StatusCode, Retryable: true}

	default:
		// Remaining 4xx (and any unexpected status) are fatal for this resource.
		_, _ = io.Copy(io.Discard, response.Body)
		return &Error{Provider: providerName, Op: op, StatusCode: response.StatusCode, Retryable: false}
	}

	body := io.LimitReader(response.Body, maxResponseBytes)
	if err := json.NewDecoder(body).Decode(target); err != nil {
		// A malformed payload will not improve on retry.
		return &Error{
			Provider:  providerName,
			Op:        op,
			Retryable: false,
			Cause:     fmt.Errorf("malformed payload: %w", err),
		}
	}

	return nil
}

// SetSleepForTest replaces the backoff sleep. Tests use it to skip real
// waits; production code must not call it.
func (fetcher *Fetcher) SetSleepForTest(sleep func(ctx context.Context, d time.Duration) error) {
	fetcher.sleep = sleep
}

// # Pagination

// PageFunc fetches one page (1-indexed) and reports the provider's total
// page count alongside the items.
type PageFunc[T any] func(context context.Context, page int) (items []T, totalPages int, err error)

// CollectPages iterates a paged endpoint until the provider reports no
// further pages OR the page ceiling is reached, whichever comes first.
//
// # Cost Bound
//
// The ceiling is a deliberate cost/latency bound, not a correctness
// requirement: catalogs with thousands of events are sampled, not drained.
func CollectPages[T any](context context.Context, maxPages int, fetch PageFunc[T]) ([]T, error) {
	if maxPages < 1 {
		maxPages = 1
	}

	var collected []T

	for page := 1; page <= maxPages; page++ {
		items, totalPages, err := fetch(context, page)
		if err != nil {
			return collected, err
		}

		collected = append(collected, items...)

		// Provider reports no further pages.
		if totalPages > 0 && page >= totalPages {
			break
		}

		// A provider that reports no total and returns an empty page is done.
		if totalPages == 0 && len(items) == 0 {
			break
		}
	}

	return collected, nil
}

// # Helpers

// backoffDelay computes the exponential backoff with jitter for an attempt.
func backoffDelay(attempt int) time.Duration {
	delay := backoffBase << (attempt - 1)
	if delay > backoffCap {
		delay = backoffCap
	}

	// Up to 25% jitter to avoid thundering-herd retries.
	jitter := time.Duration(rand.Int63n(int64(delay) / 4))
	return delay + jitter
}

// sleepContext sleeps for d, or returns the context error if cancelled first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
