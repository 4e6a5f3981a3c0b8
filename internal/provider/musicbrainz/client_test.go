// Copyright (c) 2026 SetWave. All rights reserved.
// Author: minh.lq.dev@gmail.com

package musicbrainz_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhlq/setwave/internal/provider"
	"github.com/minhlq/setwave/internal/provider/musicbrainz"
)

func newTestClient(baseURL string) *musicbrainz.Client {
	limiters := provider.NewLimiterSet()
	limiters.SetInterval(provider.NameMusicBrainz, time.Microsecond)
	fetcher := provider.NewFetcher(limiters, 3, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return musicbrainz.NewClient(fetcher, baseURL)
}

func TestClient_SearchArtists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/artist", request.URL.Path)
		assert.Equal(t, `artist:"Radiohead"`, request.URL.Query().Get("query"))
		assert.Equal(t, "json", request.URL.Query().Get("fmt"))
		assert.NotEmpty(t, request.Header.Get("User-Agent"), "the registry requires an identifying user agent")

		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"artists": [
			{"id": "mbid-1", "name": "Radiohead", "sort-name": "Radiohead", "score": 100, "country": "GB"},
			{"id": "mbid-2", "name": "Radiohead Tribute Band", "score": 62}
		]}`))
	}))
	defer server.Close()

	matches, err := newTestClient(server.URL).SearchArtists(context.Background(), "Radiohead")

	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "mbid-1", matches[0].ID)
	assert.Equal(t, 100, matches[0].Score)
	assert.Equal(t, 62, matches[1].Score)
}

func TestClient_SearchArtistsTrimsBaseURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/artist", request.URL.Path)
		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"artists": []}`))
	}))
	defer server.Close()

	matches, err := newTestClient(server.URL + "/").SearchArtists(context.Background(), "anyone")

	require.NoError(t, err)
	assert.Empty(t, matches)
}
