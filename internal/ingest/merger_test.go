// Copyright (c) 2026 SetWave. All rights reserved.
// Author: minh.lq.dev@gmail.com

package ingest_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhlq/setwave/internal/core/show"
	"github.com/minhlq/setwave/internal/core/song"
	"github.com/minhlq/setwave/internal/ingest"
	"github.com/minhlq/setwave/internal/platform/apperr"
	"github.com/minhlq/setwave/internal/provider/spotify"
	"github.com/minhlq/setwave/internal/provider/ticketmaster"
)

// fakeShowCatalog records upserts and setlist swaps, simulating natural-key
// conflicts for chosen provider event IDs.
type fakeShowCatalog struct {
	upserts          []*show.Show
	conflictEventIDs map[string]bool
	setlists         map[string][]string
}

func newFakeShowCatalog() *fakeShowCatalog {
	return &fakeShowCatalog{
		conflictEventIDs: map[string]bool{},
		setlists:         map[string][]string{},
	}
}

func (catalog *fakeShowCatalog) UpsertShow(_ context.Context, s *show.Show) (string, error) {
	if s.ProviderEventID != nil && catalog.conflictEventIDs[*s.ProviderEventID] {
		return "", apperr.Conflict("Show natural key maps to a different provider event")
	}
	catalog.upserts = append(catalog.upserts, s)
	return fmt.Sprintf("show-%d", len(catalog.upserts)), nil
}

func (catalog *fakeShowCatalog) ReplaceSetlist(_ context.Context, showID, _ string, songIDs []string) (*show.Setlist, error) {
	catalog.setlists[showID] = songIDs
	return &show.Setlist{ID: "setlist-" + showID, ShowID: showID}, nil
}

type fakeSongCatalog struct {
	upserts  []*song.Song
	conflict map[string]bool
	top      []*song.Song
}

func newFakeSongCatalog() *fakeSongCatalog {
	return &fakeSongCatalog{conflict: map[string]bool{}}
}

func (catalog *fakeSongCatalog) UpsertSong(_ context.Context, s *song.Song) (string, error) {
	if s.ProviderTrackID != nil && catalog.conflict[*s.ProviderTrackID] {
		return "", apperr.Conflict("Song natural key maps to a different provider track")
	}
	catalog.upserts = append(catalog.upserts, s)
	return fmt.Sprintf("song-%d", len(catalog.upserts)), nil
}

func (catalog *fakeSongCatalog) TopSongs(_ context.Context, _ string, _ int) ([]*song.Song, error) {
	return catalog.top, nil
}

func tmEvent(id, localDate, venue string) ticketmaster.Event {
	event := ticketmaster.Event{ID: id}
	event.Dates.Start.LocalDate = localDate
	event.Dates.Status.Code = "onsale"
	event.Embedded.Venues = []ticketmaster.Venue{{Name: venue}}
	return event
}

func TestMerger_ImportShowsSkipsConflictsAndContinues(t *testing.T) {
	shows := newFakeShowCatalog()
	shows.conflictEventIDs["tm-ev-2"] = true
	merger := ingest.NewMerger(shows, newFakeSongCatalog(), testLogger())

	events := []ticketmaster.Event{
		tmEvent("tm-ev-1", "2026-09-01", "Red Rocks Amphitheatre"),
		tmEvent("tm-ev-2", "2026-09-02", "Madison Square Garden"),
		tmEvent("tm-ev-3", "2026-09-03", "The Gorge"),
	}

	result, err := merger.ImportShows(context.Background(), "artist-1", events)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Skipped, "merge conflict is fatal for the record, not the pass")
	assert.Len(t, result.ShowIDs, 2)
	assert.Equal(t, show.StatusOnSale, shows.upserts[0].Status)
}

func TestMerger_ImportShowsSkipsRecordsWithoutNaturalKey(t *testing.T) {
	shows := newFakeShowCatalog()
	merger := ingest.NewMerger(shows, newFakeSongCatalog(), testLogger())

	noVenue := ticketmaster.Event{ID: "tm-ev-1"}
	noVenue.Dates.Start.LocalDate = "2026-09-01"

	noDate := ticketmaster.Event{ID: "tm-ev-2"}
	noDate.Embedded.Venues = []ticketmaster.Venue{{Name: "Somewhere"}}

	result, err := merger.ImportShows(context.Background(), "artist-1", []ticketmaster.Event{noVenue, noDate})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, 2, result.Skipped)
}

func TestMerger_ImportSongsMapsStreamingMetadata(t *testing.T) {
	songs := newFakeSongCatalog()
	merger := ingest.NewMerger(newFakeShowCatalog(), songs, testLogger())

	track := spotify.Track{ID: "sp-tr-1", Name: "Karma Police", DurationMS: 261000, Popularity: 81}
	track.Album.Name = "OK Computer"

	result, err := merger.ImportSongs(context.Background(), "artist-1", []spotify.Track{track})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Imported)
	require.Len(t, songs.upserts, 1)
	imported := songs.upserts[0]
	assert.Equal(t, "Karma Police", imported.Title)
	require.NotNil(t, imported.ProviderTrackID)
	assert.Equal(t, "sp-tr-1", *imported.ProviderTrackID)
	require.NotNil(t, imported.Album)
	assert.Equal(t, "OK Computer", *imported.Album)
}

func TestMerger_ImportSongsCountsConflicts(t *testing.T) {
	songs := newFakeSongCatalog()
	songs.conflict["sp-tr-2"] = true
	merger := ingest.NewMerger(newFakeShowCatalog(), songs, testLogger())

	tracks := []spotify.Track{
		{ID: "sp-tr-1", Name: "One"},
		{ID: "sp-tr-2", Name: "Two"},
		{ID: "sp-tr-3", Name: "Three"},
	}

	result, err := merger.ImportSongs(context.Background(), "artist-1", tracks)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Skipped)
}

func TestMerger_BuildSetlistsFromTopSongs(t *testing.T) {
	shows := newFakeShowCatalog()
	songs := newFakeSongCatalog()
	songs.top = []*song.Song{{ID: "song-a"}, {ID: "song-b"}, {ID: "song-c"}}
	merger := ingest.NewMerger(shows, songs, testLogger())

	built, err := merger.BuildSetlists(context.Background(), "artist-1", []string{"show-1", "show-2"})
	require.NoError(t, err)

	assert.Equal(t, 2, built)
	assert.Equal(t, []string{"song-a", "song-b", "song-c"}, shows.setlists["show-1"])
	assert.Equal(t, []string{"song-a", "song-b", "song-c"}, shows.setlists["show-2"])
}

func TestMerger_BuildSetlistsWithoutSongsIsNoop(t *testing.T) {
	shows := newFakeShowCatalog()
	merger := ingest.NewMerger(shows, newFakeSongCatalog(), testLogger())

	built, err := merger.BuildSetlists(context.Background(), "artist-1", []string{"show-1"})
	require.NoError(t, err)

	assert.Equal(t, 0, built)
	assert.Empty(t, shows.setlists)
}
