// Copyright (c) 2026 SetWave. All rights reserved.
// Author: minh.lq.dev@gmail.com

package ingest_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhlq/setwave/internal/core/artist"
	"github.com/minhlq/setwave/internal/ingest"
	"github.com/minhlq/setwave/internal/platform/apperr"
	"github.com/minhlq/setwave/internal/provider"
	"github.com/minhlq/setwave/internal/provider/spotify"
	"github.com/minhlq/setwave/internal/provider/ticketmaster"
)

type fakeTicketing struct {
	attraction    *ticketmaster.Attraction
	attractionErr error
	events        []ticketmaster.Event
	eventsErr     error
}

func (ticketing *fakeTicketing) Attraction(_ context.Context, _ string) (*ticketmaster.Attraction, error) {
	return ticketing.attraction, ticketing.attractionErr
}

func (ticketing *fakeTicketing) EventsPage(_ context.Context, _ string, _ int) ([]ticketmaster.Event, int, error) {
	if ticketing.eventsErr != nil {
		return nil, 0, ticketing.eventsErr
	}
	return ticketing.events, 1, nil
}

type fakeStreaming struct {
	artist    *spotify.Artist
	artistErr error
	search    *spotify.Artist
	searchErr error
	tracks    []spotify.Track
	tracksErr error
}

func (streaming *fakeStreaming) Artist(_ context.Context, _ string) (*spotify.Artist, error) {
	return streaming.artist, streaming.artistErr
}

func (streaming *fakeStreaming) SearchArtist(_ context.Context, _ string) (*spotify.Artist, error) {
	return streaming.search, streaming.searchErr
}

func (streaming *fakeStreaming) TopTracks(_ context.Context, _ string) ([]spotify.Track, error) {
	return streaming.tracks, streaming.tracksErr
}

type orchestratorFixture struct {
	orchestrator *ingest.Orchestrator
	store        *memoryStore
	catalog      *memoryCatalog
	shows        *fakeShowCatalog
	songs        *fakeSongCatalog
	ticketing    *fakeTicketing
	streaming    *fakeStreaming
}

func newOrchestratorFixture() *orchestratorFixture {
	fixture := &orchestratorFixture{
		store:   newMemoryStore(),
		catalog: newMemoryCatalog(),
		shows:   newFakeShowCatalog(),
		songs:   newFakeSongCatalog(),
		ticketing: &fakeTicketing{
			attraction: &ticketmaster.Attraction{ID: "tm-1", Name: "Radiohead"},
			events: []ticketmaster.Event{
				tmEvent("tm-ev-1", "2026-10-01", "Red Rocks Amphitheatre"),
			},
		},
		streaming: &fakeStreaming{
			search: &spotify.Artist{ID: "sp-1", Name: "Radiohead"},
			tracks: []spotify.Track{{ID: "sp-tr-1", Name: "Karma Police", Popularity: 81}},
		},
	}

	tracker := ingest.NewTracker(fixture.store, testLogger())
	resolver := ingest.NewResolver(fixture.catalog, &stubRegistry{}, 90, testLogger())
	merger := ingest.NewMerger(fixture.shows, fixture.songs, testLogger())

	fixture.orchestrator = ingest.NewOrchestrator(
		tracker, resolver, merger, fixture.catalog,
		fixture.ticketing, fixture.streaming,
		5, testLogger(),
	)
	fixture.orchestrator.SetSynchronousForTest()
	return fixture
}

func TestOrchestrator_SuccessfulRunReachesCompleted(t *testing.T) {
	fixture := newOrchestratorFixture()

	accepted, err := fixture.orchestrator.Start(context.Background(), provider.NameTicketmaster, "tm-1")
	require.NoError(t, err)
	require.NotEmpty(t, accepted.ArtistID)

	status, err := fixture.orchestrator.Status(context.Background(), accepted.ArtistID)
	require.NoError(t, err)

	assert.Equal(t, ingest.StageCompleted, status.Stage)
	assert.Equal(t, 100, status.Progress)
	assert.Contains(t, status.Message, "Imported 1 songs and 1 shows")
	assert.Empty(t, status.Error)

	// Cross-provider identifier sync linked the streaming side.
	resolved := fixture.catalog.artists[accepted.ArtistID]
	require.NotNil(t, resolved)
	assert.NotNil(t, resolved.LastSyncedAt)

	identifiers, err := fixture.catalog.ListIdentifiers(context.Background(), accepted.ArtistID)
	require.NoError(t, err)
	providers := map[provider.Name]bool{}
	for _, identifier := range identifiers {
		providers[identifier.Provider] = true
	}
	assert.True(t, providers[provider.NameTicketmaster])
	assert.True(t, providers[provider.NameSpotify])
}

func TestOrchestrator_FatalTrackFetchMarksJobFailed(t *testing.T) {
	fixture := newOrchestratorFixture()
	fixture.streaming.tracksErr = &provider.Error{
		Provider:   provider.NameSpotify,
		Op:         "top_tracks",
		StatusCode: http.StatusBadGateway,
		Retryable:  true,
	}

	accepted, err := fixture.orchestrator.Start(context.Background(), provider.NameTicketmaster, "tm-1")
	require.NoError(t, err)

	status, err := fixture.orchestrator.Status(context.Background(), accepted.ArtistID)
	require.NoError(t, err)

	assert.Equal(t, ingest.StageFailed, status.Stage)
	assert.Equal(t, fixture.streaming.tracksErr.Error(), status.Error, "cause must be captured verbatim")
	assert.Contains(t, status.Message, "Ingestion failed")
}

func TestOrchestrator_RejectsSecondRunWhileActive(t *testing.T) {
	fixture := newOrchestratorFixture()

	// Seed an in-flight job for the artist the provider ID resolves to.
	existing := &artist.Artist{Name: "Radiohead"}
	require.NoError(t, fixture.catalog.CreateArtist(context.Background(), existing))
	require.NoError(t, fixture.catalog.AttachIdentifier(context.Background(), &artist.ExternalIdentifier{
		ArtistID: existing.ID, Provider: provider.NameTicketmaster, NativeID: "tm-1",
	}))
	_, err := ingest.NewTracker(fixture.store, testLogger()).
		Begin(context.Background(), existing.ID, provider.NameTicketmaster, "tm-1")
	require.NoError(t, err)

	_, err = fixture.orchestrator.Start(context.Background(), provider.NameTicketmaster, "tm-1")
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))
}

func TestOrchestrator_UnknownProviderCannotTrigger(t *testing.T) {
	fixture := newOrchestratorFixture()

	_, err := fixture.orchestrator.Start(context.Background(), provider.NameMusicBrainz, "mbid-1")
	require.Error(t, err)

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
}

func TestOrchestrator_MissingStreamingMatchSkipsSongs(t *testing.T) {
	fixture := newOrchestratorFixture()
	fixture.streaming.searchErr = &provider.Error{
		Provider:   provider.NameSpotify,
		Op:         "search_artist",
		StatusCode: http.StatusNotFound,
	}

	accepted, err := fixture.orchestrator.Start(context.Background(), provider.NameTicketmaster, "tm-1")
	require.NoError(t, err)

	status, err := fixture.orchestrator.Status(context.Background(), accepted.ArtistID)
	require.NoError(t, err)

	assert.Equal(t, ingest.StageCompleted, status.Stage)
	assert.Contains(t, status.Message, "Imported 0 songs and 1 shows")
	assert.Empty(t, fixture.songs.upserts)
}

func TestOrchestrator_ProviderArtistNotFound(t *testing.T) {
	fixture := newOrchestratorFixture()
	fixture.ticketing.attractionErr = &provider.Error{
		Provider:   provider.NameTicketmaster,
		Op:         "attraction_lookup",
		StatusCode: http.StatusNotFound,
	}

	_, err := fixture.orchestrator.Start(context.Background(), provider.NameTicketmaster, "tm-missing")
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}
