package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/minhlq/setwave/internal/core/artist"
	"github.com/minhlq/setwave/internal/platform/apperr"
	"github.com/minhlq/setwave/internal/provider"
	"github.com/minhlq/setwave/internal/provider/musicbrainz"
	"github.com/minhlq/setwave/pkg/slug"
)

// Identifier confidence levels by how the link was established.
const (
	confidenceProviderExact = 1.0
	confidenceNameReuse     = 0.9
)

// ArtistCatalog is the slice of the artist service the resolver needs.
type ArtistCatalog interface {
	GetArtistByProviderID(context context.Context, providerName provider.Name, nativeID string) (*artist.Artist, error)
	FindArtistsByNameKey(context context.Context, nameKey string) ([]*artist.Artist, error)
	CreateArtist(context context.Context, a *artist.Artist) error
	UpdateArtist(context context.Context, id string, a *artist.Artist) error
	AttachIdentifier(context context.Context, identifier *artist.ExternalIdentifier) error
	ListIdentifiers(context context.Context, artistID string) ([]*artist.ExternalIdentifier, error)
	MarkSynced(context context.Context, artistID string, syncedAt time.Time) error
}

// IdentityRegistry is the canonical music-identity registry lookup.
type IdentityRegistry interface {
	SearchArtists(context context.Context, name string) ([]musicbrainz.ArtistMatch, error)
}

// ArtistHint carries the provider's view of the artist being resolved.
type ArtistHint struct {
	Name     string
	ImageURL *string
	Genres   []string
}

// Resolver maps a (provider, native ID) pair onto exactly one canonical
// artist, creating it when no existing record matches.
type Resolver struct {
	catalog  ArtistCatalog
	registry IdentityRegistry
	// minMatchScore is the registry similarity score (0-100) below which a
	// top match is treated as unresolved.
	minMatchScore int
	logger        *slog.Logger
}

func NewResolver(catalog ArtistCatalog, registry IdentityRegistry, minMatchScore int, logger *slog.Logger) *Resolver {
	return &Resolver{
		catalog:       catalog,
		registry:      registry,
		minMatchScore: minMatchScore,
		logger:        logger,
	}
}

// Resolve returns the canonical artist for a provider-native ID.
//
// Resolution order is deterministic: an exact identifier match always wins
// over any name-based match.
//
//  1. Exact (provider, native ID) identifier lookup.
//  2. Normalized-name collision against existing canonical artists, reused
//     only when the candidate has no conflicting identifier for the same
//     provider.
//  3. Create a fresh canonical artist.
//
// In cases 2 and 3 the registry is consulted for enrichment; registry failure
// is logged and never fails resolution.
func (resolver *Resolver) Resolve(context context.Context, providerName provider.Name, nativeID string, hint ArtistHint) (*artist.Artist, error) {
	// 1. Exact identifier match.
	found, err := resolver.catalog.GetArtistByProviderID(context, providerName, nativeID)
	if err == nil {
		return found, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, err
	}

	nameKey := slug.From(hint.Name)

	// 2. Normalized-name collision reuse.
	candidates, err := resolver.catalog.FindArtistsByNameKey(context, nameKey)
	if err != nil {
		return nil, err
	}
	for _, candidate := range candidates {
		identifiers, err := resolver.catalog.ListIdentifiers(context, candidate.ID)
		if err != nil {
			return nil, err
		}
		if hasConflictingIdentifier(identifiers, providerName, nativeID) {
			continue
		}

		if err := resolver.catalog.AttachIdentifier(context, &artist.ExternalIdentifier{
			ArtistID:   candidate.ID,
			Provider:   providerName,
			NativeID:   nativeID,
			Confidence: confidenceNameReuse,
		}); err != nil {
			return nil, err
		}

		resolver.logger.Info("artist_resolved_by_name_key",
			slog.String("artist_id", candidate.ID),
			slog.String("provider", string(providerName)),
			slog.String("name_key", nameKey),
		)
		resolver.enrich(context, candidate, hint)
		return candidate, nil
	}

	// 3. Create a fresh canonical artist.
	created := &artist.Artist{
		Name:     hint.Name,
		ImageURL: hint.ImageURL,
		Genres:   hint.Genres,
	}
	if mbid := resolver.registryMatch(context, hint.Name, nameKey); mbid != "" {
		created.MusicBrainzID = &mbid
	}
	if err := resolver.catalog.CreateArtist(context, created); err != nil {
		return nil, err
	}
	if err := resolver.catalog.AttachIdentifier(context, &artist.ExternalIdentifier{
		ArtistID:   created.ID,
		Provider:   providerName,
		NativeID:   nativeID,
		Confidence: confidenceProviderExact,
	}); err != nil {
		return nil, err
	}

	resolver.logger.Info("artist_created_from_provider",
		slog.String("artist_id", created.ID),
		slog.String("provider", string(providerName)),
		slog.String("native_id", nativeID),
	)
	return created, nil
}

// registryMatch returns the registry ID of the best match, or "" when the top
// candidate does not clear the acceptance rules or the registry is down.
func (resolver *Resolver) registryMatch(context context.Context, name, nameKey string) string {
	matches, err := resolver.registry.SearchArtists(context, name)
	if err != nil {
		// Enrichment-optional: the pipeline continues without a registry link.
		resolver.logger.Warn("identity_registry_unreachable",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return ""
	}
	if len(matches) == 0 {
		return ""
	}

	top := matches[0]
	if top.Score >= resolver.minMatchScore || slug.From(top.Name) == nameKey {
		return top.ID
	}
	return ""
}

// enrich backfills registry ID, image, and genres onto a reused artist
// without overwriting populated values. Failures are logged, never fatal.
func (resolver *Resolver) enrich(context context.Context, a *artist.Artist, hint ArtistHint) {
	changed := false

	if a.MusicBrainzID == nil {
		if mbid := resolver.registryMatch(context, a.Name, a.NameKey); mbid != "" {
			a.MusicBrainzID = &mbid
			changed = true
		}
	}
	if a.ImageURL == nil && hint.ImageURL != nil {
		a.ImageURL = hint.ImageURL
		changed = true
	}
	if len(a.Genres) == 0 && len(hint.Genres) > 0 {
		a.Genres = hint.Genres
		changed = true
	}

	if !changed {
		return
	}
	if err := resolver.catalog.UpdateArtist(context, a.ID, a); err != nil {
		resolver.logger.Warn("artist_enrichment_failed",
			slog.String("artist_id", a.ID),
			slog.String("error", err.Error()),
		)
	}
}

// hasConflictingIdentifier reports whether the artist already links a
// DIFFERENT native ID for the same provider.
func hasConflictingIdentifier(identifiers []*artist.ExternalIdentifier, providerName provider.Name, nativeID string) bool {
	for _, identifier := range identifiers {
		if identifier.Provider == providerName && identifier.NativeID != nativeID {
			return true
		}
	}
	return false
}
