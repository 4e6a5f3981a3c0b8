package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/minhlq/setwave/internal/core/show"
	"github.com/minhlq/setwave/internal/core/song"
	"github.com/minhlq/setwave/internal/platform/apperr"
	"github.com/minhlq/setwave/internal/provider/spotify"
	"github.com/minhlq/setwave/internal/provider/ticketmaster"
	"github.com/minhlq/setwave/pkg/pointer"
	"github.com/minhlq/setwave/pkg/slice"
)

// predictedSetlistLength caps how many top songs seed a predicted setlist.
const predictedSetlistLength = 12

// ShowCatalog is the slice of the show service the merger needs.
type ShowCatalog interface {
	UpsertShow(context context.Context, s *show.Show) (string, error)
	ReplaceSetlist(context context.Context, showID, kind string, songIDs []string) (*show.Setlist, error)
}

// SongCatalog is the slice of the song service the merger needs.
type SongCatalog interface {
	UpsertSong(context context.Context, s *song.Song) (string, error)
	TopSongs(context context.Context, artistID string, limit int) ([]*song.Song, error)
}

// MergeResult counts what one merge pass did. Skipped records are natural-key
// conflicts: fatal for that single record, never for the pass.
type MergeResult struct {
	Imported int
	Skipped  int
	ShowIDs  []string
}

// Merger translates provider payloads into canonical catalog upserts.
//
// Idempotence comes from the natural-key upserts underneath: re-running a
// whole pass for the same artist updates records in place instead of
// duplicating them.
type Merger struct {
	shows  ShowCatalog
	songs  SongCatalog
	logger *slog.Logger
}

func NewMerger(shows ShowCatalog, songs SongCatalog, logger *slog.Logger) *Merger {
	return &Merger{
		shows:  shows,
		songs:  songs,
		logger: logger,
	}
}

// ImportShows upserts the ticketing provider's events for one artist. The
// ticketing provider is primary for scheduling fields, so its values are
// written as-is; only empty incoming fields yield to stored ones.
func (merger *Merger) ImportShows(context context.Context, artistID string, events []ticketmaster.Event) (MergeResult, error) {
	result := MergeResult{}

	for _, event := range events {
		record, ok := showFromEvent(artistID, event)
		if !ok {
			merger.logger.Warn("show_record_unusable",
				slog.String("artist_id", artistID),
				slog.String("provider_event_id", event.ID),
			)
			result.Skipped++
			continue
		}

		id, err := merger.shows.UpsertShow(context, record)
		if apperr.IsConflict(err) {
			merger.logger.Warn("show_merge_conflict_skipped",
				slog.String("artist_id", artistID),
				slog.String("provider_event_id", event.ID),
				slog.String("error", err.Error()),
			)
			result.Skipped++
			continue
		}
		if err != nil {
			return result, err
		}

		result.Imported++
		result.ShowIDs = append(result.ShowIDs, id)
	}

	return result, nil
}

// ImportSongs upserts the streaming provider's tracks for one artist. The
// streaming provider is primary for song metadata.
func (merger *Merger) ImportSongs(context context.Context, artistID string, tracks []spotify.Track) (MergeResult, error) {
	result := MergeResult{}

	for _, track := range tracks {
		record := songFromTrack(artistID, track)

		if _, err := merger.songs.UpsertSong(context, record); err != nil {
			if apperr.IsConflict(err) {
				merger.logger.Warn("song_merge_conflict_skipped",
					slog.String("artist_id", artistID),
					slog.String("provider_track_id", track.ID),
					slog.String("error", err.Error()),
				)
				result.Skipped++
				continue
			}
			return result, err
		}

		result.Imported++
	}

	return result, nil
}

// BuildSetlists attaches a predicted setlist, seeded from the artist's most
// popular songs, to every show imported in this run. Shows are skipped when
// the artist has no songs yet.
func (merger *Merger) BuildSetlists(context context.Context, artistID string, showIDs []string) (int, error) {
	top, err := merger.songs.TopSongs(context, artistID, predictedSetlistLength)
	if err != nil {
		return 0, err
	}
	if len(top) == 0 {
		return 0, nil
	}

	songIDs := slice.Map(top, func(s *song.Song) string { return s.ID })

	built := 0
	for _, showID := range showIDs {
		if _, err := merger.shows.ReplaceSetlist(context, showID, show.SetlistKindPredicted, songIDs); err != nil {
			return built, err
		}
		built++
	}

	return built, nil
}

// showFromEvent maps a ticketing event onto a canonical show. Events without
// a parseable date or a venue cannot form a natural key and are unusable.
func showFromEvent(artistID string, event ticketmaster.Event) (*show.Show, bool) {
	date, ok := parseEventDate(event)
	if !ok || len(event.Embedded.Venues) == 0 {
		return nil, false
	}

	venue := event.Embedded.Venues[0]

	record := &show.Show{
		ArtistID:  artistID,
		Date:      date,
		VenueName: venue.Name,
		City:      venue.City.Name,
		Country:   venue.Country.CountryCode,
		Status:    statusFromCode(event.Dates.Status.Code),
	}
	if event.ID != "" {
		record.ProviderEventID = pointer.To(event.ID)
	}
	return record, venue.Name != ""
}

func parseEventDate(event ticketmaster.Event) (time.Time, bool) {
	if event.Dates.Start.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, event.Dates.Start.DateTime); err == nil {
			return t.UTC(), true
		}
	}
	if event.Dates.Start.LocalDate != "" {
		if t, err := time.Parse("2006-01-02", event.Dates.Start.LocalDate); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// statusFromCode translates the ticketing provider's status codes onto the
// canonical show lifecycle.
func statusFromCode(code string) string {
	switch code {
	case "onsale":
		return show.StatusOnSale
	case "offsale":
		return show.StatusOffSale
	case "rescheduled":
		return show.StatusRescheduled
	case "cancelled", "canceled":
		return show.StatusCancelled
	default:
		return show.StatusScheduled
	}
}

func songFromTrack(artistID string, track spotify.Track) *song.Song {
	record := &song.Song{
		ArtistID:   artistID,
		Title:      track.Name,
		DurationMS: track.DurationMS,
		Popularity: track.Popularity,
	}
	if track.ID != "" {
		record.ProviderTrackID = pointer.To(track.ID)
	}
	if track.Album.Name != "" {
		record.Album = pointer.To(track.Album.Name)
	}
	return record
}
