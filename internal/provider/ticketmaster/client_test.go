// Copyright (c) 2026 SetWave. All rights reserved.
// Author: minh.lq.dev@gmail.com

package ticketmaster_test

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
	"github.com/minhlq/setwave/internal/provider/ticketmaster"
)

func newTestClient(baseURL string) *ticketmaster.Client {
	limiters := provider.NewLimiterSet()
	limiters.SetInterval(provider.NameTicketmaster, time.Microsecond)
	fetcher := provider.NewFetcher(limiters, 3, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return ticketmaster.NewClientWithBaseURL(fetcher, "test-key", baseURL)
}

func TestClient_Attraction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/attractions/K8vZ9171234.json", request.URL.Path)
		assert.Equal(t, "test-key", request.URL.Query().Get("apikey"))

		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{
			"id": "K8vZ9171234",
			"name": "Radiohead",
			"images": [{"url": "https://img.example/radiohead.jpg"}],
			"classifications": [{"genre": {"name": "Rock"}}]
		}`))
	}))
	defer server.Close()

	attraction, err := newTestClient(server.URL).Attraction(context.Background(), "K8vZ9171234")

	require.NoError(t, err)
	assert.Equal(t, "Radiohead", attraction.Name)
	assert.Equal(t, "https://img.example/radiohead.jpg", attraction.ImageURL())
	assert.Equal(t, "Rock", attraction.PrimaryGenre())
}

func TestClient_AttractionNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Attraction(context.Background(), "missing")

	require.Error(t, err)
	assert.True(t, provider.IsNotFound(err))
}

func TestClient_EventsPageTranslatesZeroIndexedPaging(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/events.json", request.URL.Path)
		// The caller asked for page 2; Discovery counts from zero.
		assert.Equal(t, "1", request.URL.Query().Get("page"))
		assert.Equal(t, "tm-1", request.URL.Query().Get("attractionId"))

		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{
			"_embedded": {"events": [
				{"id": "ev-1", "name": "Radiohead at MSG",
				 "dates": {"start": {"localDate": "2026-09-01"}, "status": {"code": "onsale"}},
				 "_embedded": {"venues": [{"name": "Madison Square Garden",
				                           "city": {"name": "New York"},
				                           "country": {"countryCode": "US"}}]}}
			]},
			"page": {"size": 50, "totalPages": 4, "totalElements": 170, "number": 1}
		}`))
	}))
	defer server.Close()

	events, totalPages, err := newTestClient(server.URL).EventsPage(context.Background(), "tm-1", 2)

	require.NoError(t, err)
	assert.Equal(t, 4, totalPages)
	require.Len(t, events, 1)
	assert.Equal(t, "ev-1", events[0].ID)
	assert.Equal(t, "onsale", events[0].Dates.Status.Code)
	assert.Equal(t, "Madison Square Garden", events[0].Embedded.Venues[0].Name)
}

func TestAttraction_EmptyClassifications(t *testing.T) {
	attraction := &ticketmaster.Attraction{}

	assert.Empty(t, attraction.ImageURL())
	assert.Empty(t, attraction.PrimaryGenre())
}
