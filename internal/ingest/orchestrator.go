package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/minhlq/setwave/internal/core/artist"
	"github.com/minhlq/setwave/internal/platform/apperr"
	"github.com/minhlq/setwave/internal/provider"
	"github.com/minhlq/setwave/internal/provider/spotify"
	"github.com/minhlq/setwave/internal/provider/ticketmaster"
	"github.com/minhlq/setwave/pkg/pointer"
)

// defaultRunTimeout bounds one detached pipeline run end to end.
const defaultRunTimeout = 10 * time.Minute

// TicketingProvider is the slice of the ticketing client the pipeline needs.
type TicketingProvider interface {
	Attraction(context context.Context, attractionID string) (*ticketmaster.Attraction, error)
	EventsPage(context context.Context, attractionID string, page int) ([]ticketmaster.Event, int, error)
}

// StreamingProvider is the slice of the streaming client the pipeline needs.
type StreamingProvider interface {
	Artist(context context.Context, artistID string) (*spotify.Artist, error)
	SearchArtist(context context.Context, name string) (*spotify.Artist, error)
	TopTracks(context context.Context, artistID string) ([]spotify.Track, error)
}

// Orchestrator sequences the ingestion stages for one artist at a time.
//
// Start resolves the canonical artist synchronously, so the caller learns the
// ID to poll, then hands the stage work to a goroutine detached from the
// request context with its own deadline. The progress record is the only
// channel back to the caller.
type Orchestrator struct {
	tracker    *Tracker
	resolver   *Resolver
	merger     *Merger
	catalog    ArtistCatalog
	ticketing  TicketingProvider
	streaming  StreamingProvider
	maxPages   int
	runTimeout time.Duration
	logger     *slog.Logger

	// runAsync is swapped out by tests to run the pipeline inline.
	runAsync func(run func())
}

func NewOrchestrator(
	tracker *Tracker,
	resolver *Resolver,
	merger *Merger,
	catalog ArtistCatalog,
	ticketing TicketingProvider,
	streaming StreamingProvider,
	maxPages int,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		tracker:    tracker,
		resolver:   resolver,
		merger:     merger,
		catalog:    catalog,
		ticketing:  ticketing,
		streaming:  streaming,
		maxPages:   maxPages,
		runTimeout: defaultRunTimeout,
		logger:     logger,
		runAsync:   func(run func()) { go run() },
	}
}

// SetSynchronousForTest makes Start run the pipeline inline. Tests only.
func (orchestrator *Orchestrator) SetSynchronousForTest() {
	orchestrator.runAsync = func(run func()) { run() }
}

// Start resolves the canonical artist for the provider-native ID, creates the
// progress record, and launches the pipeline. It refuses a second run while a
// non-terminal job exists for the same artist.
func (orchestrator *Orchestrator) Start(context context.Context, providerName provider.Name, providerArtistID string) (*Status, error) {
	hint, err := orchestrator.fetchHint(context, providerName, providerArtistID)
	if err != nil {
		return nil, translateProviderError(providerName, err)
	}

	resolved, err := orchestrator.resolver.Resolve(context, providerName, providerArtistID, hint)
	if err != nil {
		return nil, err
	}

	status, err := orchestrator.tracker.Begin(context, resolved.ID, providerName, providerArtistID)
	if err != nil {
		return nil, err
	}

	orchestrator.runAsync(func() {
		orchestrator.run(resolved, providerName, hint)
	})

	return status, nil
}

// Status returns the progress snapshot for a canonical artist ID.
func (orchestrator *Orchestrator) Status(context context.Context, artistID string) (*Status, error) {
	return orchestrator.tracker.Get(context, artistID)
}

// fetchHint pulls the provider's view of the artist so resolution has a name
// to work with. Only providers that can look up an artist by native ID can
// trigger ingestion.
func (orchestrator *Orchestrator) fetchHint(context context.Context, providerName provider.Name, providerArtistID string) (ArtistHint, error) {
	switch providerName {
	case provider.NameTicketmaster:
		attraction, err := orchestrator.ticketing.Attraction(context, providerArtistID)
		if err != nil {
			return ArtistHint{}, err
		}
		hint := ArtistHint{Name: attraction.Name}
		if imageURL := attraction.ImageURL(); imageURL != "" {
			hint.ImageURL = pointer.To(imageURL)
		}
		if genre := attraction.PrimaryGenre(); genre != "" {
			hint.Genres = []string{genre}
		}
		return hint, nil

	case provider.NameSpotify:
		spotifyArtist, err := orchestrator.streaming.Artist(context, providerArtistID)
		if err != nil {
			return ArtistHint{}, err
		}
		hint := ArtistHint{Name: spotifyArtist.Name, Genres: spotifyArtist.Genres}
		if len(spotifyArtist.Images) > 0 {
			hint.ImageURL = &spotifyArtist.Images[0].URL
		}
		return hint, nil

	default:
		return ArtistHint{}, apperr.ValidationError(fmt.Sprintf("Provider %q cannot trigger ingestion", providerName))
	}
}

// run executes the pipeline stages. It owns the job's terminal transition:
// any fatal stage error marks the job failed with the error kept verbatim.
func (orchestrator *Orchestrator) run(resolved *artist.Artist, sourceProvider provider.Name, hint ArtistHint) {
	runCtx, cancel := context.WithTimeout(context.Background(), orchestrator.runTimeout)
	defer cancel()

	logger := orchestrator.logger.With(
		slog.String("artist_id", resolved.ID),
		slog.String("provider", string(sourceProvider)),
	)

	// Stage: fetching-artist. The source payload arrived during Start; this
	// stage records that the pipeline proper has begun.
	if !orchestrator.advance(runCtx, resolved.ID, StageFetchingArtist, "Fetched artist from "+string(sourceProvider)) {
		return
	}

	// Stage: syncing-identifiers.
	if !orchestrator.advance(runCtx, resolved.ID, StageSyncingIdentifiers, "Linking provider identities") {
		return
	}
	ticketmasterID, spotifyID, err := orchestrator.syncIdentifiers(runCtx, resolved, sourceProvider)
	if err != nil {
		orchestrator.fail(runCtx, resolved.ID, logger, err)
		return
	}

	// Stage: importing-songs.
	if !orchestrator.advance(runCtx, resolved.ID, StageImportingSongs, "Importing songs") {
		return
	}
	songResult := MergeResult{}
	if spotifyID != "" {
		tracks, err := orchestrator.streaming.TopTracks(runCtx, spotifyID)
		if err != nil {
			orchestrator.fail(runCtx, resolved.ID, logger, err)
			return
		}
		songResult, err = orchestrator.merger.ImportSongs(runCtx, resolved.ID, tracks)
		if err != nil {
			orchestrator.fail(runCtx, resolved.ID, logger, err)
			return
		}
	}

	// Stage: importing-shows.
	if !orchestrator.advance(runCtx, resolved.ID, StageImportingShows, "Importing shows") {
		return
	}
	showResult := MergeResult{}
	if ticketmasterID != "" {
		events, err := provider.CollectPages(runCtx, orchestrator.maxPages, func(pageCtx context.Context, page int) ([]ticketmaster.Event, int, error) {
			return orchestrator.ticketing.EventsPage(pageCtx, ticketmasterID, page)
		})
		if err != nil {
			orchestrator.fail(runCtx, resolved.ID, logger, err)
			return
		}
		showResult, err = orchestrator.merger.ImportShows(runCtx, resolved.ID, events)
		if err != nil {
			orchestrator.fail(runCtx, resolved.ID, logger, err)
			return
		}
	}

	// Stage: creating-setlists.
	if !orchestrator.advance(runCtx, resolved.ID, StageCreatingSetlists, "Building predicted setlists") {
		return
	}
	setlists, err := orchestrator.merger.BuildSetlists(runCtx, resolved.ID, showResult.ShowIDs)
	if err != nil {
		orchestrator.fail(runCtx, resolved.ID, logger, err)
		return
	}

	if err := orchestrator.catalog.MarkSynced(runCtx, resolved.ID, time.Now().UTC()); err != nil {
		orchestrator.fail(runCtx, resolved.ID, logger, err)
		return
	}

	skipped := songResult.Skipped + showResult.Skipped
	message := fmt.Sprintf("Imported %d songs and %d shows, built %d setlists",
		songResult.Imported, showResult.Imported, setlists)
	if skipped > 0 {
		message += fmt.Sprintf(" (%d records skipped)", skipped)
	}

	stage := StageCompleted
	if _, err := orchestrator.tracker.Update(runCtx, resolved.ID, Update{
		Stage:          &stage,
		Message:        &message,
		SkippedRecords: &skipped,
	}); err != nil {
		logger.Error("ingest_completion_update_failed", slog.String("error", err.Error()))
		return
	}

	logger.Info("ingest_job_completed",
		slog.Int("songs_imported", songResult.Imported),
		slog.Int("shows_imported", showResult.Imported),
		slog.Int("setlists_built", setlists),
		slog.Int("records_skipped", skipped),
	)
}

// syncIdentifiers backfills the missing provider link by searching the other
// side by name. A no-match answer is normal and leaves the link absent.
func (orchestrator *Orchestrator) syncIdentifiers(context context.Context, resolved *artist.Artist, sourceProvider provider.Name) (ticketmasterID, spotifyID string, err error) {
	identifiers, err := orchestrator.catalog.ListIdentifiers(context, resolved.ID)
	if err != nil {
		return "", "", err
	}
	for _, identifier := range identifiers {
		switch identifier.Provider {
		case provider.NameTicketmaster:
			ticketmasterID = identifier.NativeID
		case provider.NameSpotify:
			spotifyID = identifier.NativeID
		}
	}

	if spotifyID != "" || sourceProvider == provider.NameSpotify {
		return ticketmasterID, spotifyID, nil
	}

	match, err := orchestrator.streaming.SearchArtist(context, resolved.Name)
	if provider.IsNotFound(err) {
		return ticketmasterID, "", nil
	}
	if err != nil {
		return "", "", err
	}

	if err := orchestrator.catalog.AttachIdentifier(context, &artist.ExternalIdentifier{
		ArtistID:   resolved.ID,
		Provider:   provider.NameSpotify,
		NativeID:   match.ID,
		Confidence: confidenceNameReuse,
	}); err != nil {
		return "", "", err
	}

	return ticketmasterID, match.ID, nil
}

// advance moves the job to the next stage. A false return means the update
// was refused (job gone terminal or record lost) and the run must stop.
func (orchestrator *Orchestrator) advance(context context.Context, artistID string, stage Stage, message string) bool {
	progress := 0
	if _, err := orchestrator.tracker.Update(context, artistID, Update{
		Stage:    &stage,
		Progress: &progress,
		Message:  &message,
	}); err != nil {
		orchestrator.logger.Error("ingest_stage_update_failed",
			slog.String("artist_id", artistID),
			slog.String("stage", string(stage)),
			slog.String("error", err.Error()),
		)
		return false
	}
	return true
}

// fail marks the job failed, keeping the causing error verbatim.
func (orchestrator *Orchestrator) fail(context context.Context, artistID string, logger *slog.Logger, cause error) {
	stage := StageFailed
	errMessage := cause.Error()
	message := "Ingestion failed: " + errMessage

	if _, err := orchestrator.tracker.Update(context, artistID, Update{
		Stage:   &stage,
		Message: &message,
		Error:   &errMessage,
	}); err != nil {
		logger.Error("ingest_failure_update_failed", slog.String("error", err.Error()))
	}

	logger.Error("ingest_job_failed", slog.String("error", errMessage))
}

// translateProviderError maps a provider error during the synchronous trigger
// onto the client-facing taxonomy.
func translateProviderError(providerName provider.Name, err error) error {
	if apperr.IsAppError(err) {
		return err
	}
	if provider.IsNotFound(err) {
		return apperr.NotFound("Provider artist")
	}
	if provider.IsRetryable(err) {
		return apperr.Upstream(string(providerName), err)
	}
	return apperr.Unprocessable(err.Error())
}
