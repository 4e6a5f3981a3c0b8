// Copyright (c) 2026 SetWave. All rights reserved.
// Author: minh.lq.dev@gmail.com

package provider

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Minimum inter-request intervals per provider. These are politeness budgets
// dictated by each provider's terms, not tunables: MusicBrainz requires one
// request per second from anonymous clients.
const (
	ticketmasterInterval = 200 * time.Millisecond
	spotifyInterval      = 350 * time.Millisecond
	musicbrainzInterval  = 1000 * time.Millisecond
)

// LimiterSet enforces a minimum delay between successive requests to the
// same provider.
//
// # Scope
//
// Limiters are provider-scoped, not global: calls to different providers
// proceed in parallel, while calls to one provider are serialized by its
// token bucket (burst 1, so the interval is strict).
type LimiterSet struct {
	mu       sync.Mutex
	limiters map[Name]*rate.Limiter
}

// NewLimiterSet creates a LimiterSet preloaded with the known providers.
func NewLimiterSet() *LimiterSet {
	return &LimiterSet{
		limiters: map[Name]*rate.Limiter{
			NameTicketmaster: rate.NewLimiter(rate.Every(ticketmasterInterval), 1),
			NameSpotify:      rate.NewLimiter(rate.Every(spotifyInterval), 1),
			NameMusicBrainz:  rate.NewLimiter(rate.Every(musicbrainzInterval), 1),
		},
	}
}

// Wait suspends the caller until the provider's inter-request interval has
// elapsed, or returns early if the context is cancelled.
//
// # Behavior
//
// Calling before the interval elapses blocks rather than failing; a provider
// unknown to the set is admitted without delay.
func (set *LimiterSet) Wait(ctx context.Context, provider Name) error {
	set.mu.Lock()
	limiter, found := set.limiters[provider]
	set.mu.Unlock()

	if !found {
		return nil
	}

	return limiter.Wait(ctx)
}

// SetInterval overrides the interval for one provider. Used by tests to avoid
// real-time waits.
func (set *LimiterSet) SetInterval(provider Name, interval time.Duration) {
	set.mu.Lock()
	defer set.mu.Unlock()
	set.limiters[provider] = rate.NewLimiter(rate.Every(interval), 1)
}
