// Copyright (c) 2026 SetWave. All rights reserved.
// Author: minh.lq.dev@gmail.com

/*
Package provider defines the shared contracts for all external catalog providers.

Each provider (ticketing, streaming, identity registry) is accessed through a
rate-limited, retrying HTTP door defined here; the per-provider subpackages
only describe endpoints and payload shapes.

Architecture:

  - Name: Enumerates the known providers; the rate limiter is keyed by it.
  - Error: A typed provider failure distinguishing retryable from fatal.
  - Fetcher: Throttled GET + JSON decode with bounded retry and backoff.
  - CollectPages: Bounded pagination loop shared by all paged endpoints.

The package is pure with respect to local state: nothing here writes to
storage, it only moves bytes.
*/
package provider

import (
	"errors"
	"fmt"
)

// # Provider Identity

// Name identifies an external data source.
type Name string

const (
	// NameTicketmaster is the ticketing/event catalog.
	NameTicketmaster Name = "ticketmaster"

	// NameSpotify is the music streaming catalog.
	NameSpotify Name = "spotify"

	// NameMusicBrainz is the canonical music-identity registry.
	NameMusicBrainz Name = "musicbrainz"
)

// # Error Taxonomy

// Error is the canonical failure type for provider I/O.
//
// # Classification
//
// Retryable errors (timeouts, HTTP 429, 5xx) are worth another attempt with
// backoff. Non-retryable errors (other 4xx, malformed payloads) are fatal for
// the resource being fetched and must be surfaced without retry.
type Error struct {
	// Provider is the data source that produced the failure.
	Provider Name
	// Op is a short operation label for diagnostics (e.g. "search_artist").
	Op string
	// StatusCode is the HTTP status, or 0 for transport-level failures.
	StatusCode int
	// Retryable reports whether another attempt may succeed.
	Retryable bool
	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s failed with HTTP %d", e.Provider, e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s failed: %v", e.Provider, e.Op, e.Cause)
}

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *Error) Unwrap() error { return e.Cause }

// IsRetryable reports whether err is a provider error worth retrying.
func IsRetryable(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Retryable
}

// IsNotFound reports whether err is a provider-side 404.
func IsNotFound(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.StatusCode == 404
}
