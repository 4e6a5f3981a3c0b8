// Copyright (c) 2026 SetWave. All rights reserved.
// Author: minh.lq.dev@gmail.com

package ingest_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhlq/setwave/internal/core/artist"
	"github.com/minhlq/setwave/internal/ingest"
	"github.com/minhlq/setwave/internal/platform/apperr"
	"github.com/minhlq/setwave/internal/provider"
	"github.com/minhlq/setwave/internal/provider/musicbrainz"
	"github.com/minhlq/setwave/pkg/slug"
)

// memoryCatalog is an in-memory ArtistCatalog double.
type memoryCatalog struct {
	artists     map[string]*artist.Artist
	identifiers []*artist.ExternalIdentifier
	created     int
}

func newMemoryCatalog() *memoryCatalog {
	return &memoryCatalog{artists: map[string]*artist.Artist{}}
}

func (catalog *memoryCatalog) GetArtistByProviderID(_ context.Context, providerName provider.Name, nativeID string) (*artist.Artist, error) {
	for _, identifier := range catalog.identifiers {
		if identifier.Provider == providerName && identifier.NativeID == nativeID {
			return catalog.artists[identifier.ArtistID], nil
		}
	}
	return nil, apperr.NotFound("Artist")
}

func (catalog *memoryCatalog) FindArtistsByNameKey(_ context.Context, nameKey string) ([]*artist.Artist, error) {
	var matches []*artist.Artist
	for _, a := range catalog.artists {
		if a.NameKey == nameKey {
			matches = append(matches, a)
		}
	}
	return matches, nil
}

func (catalog *memoryCatalog) CreateArtist(_ context.Context, a *artist.Artist) error {
	catalog.created++
	a.ID = fmt.Sprintf("artist-%d", catalog.created)
	a.NameKey = slug.From(a.Name)
	catalog.artists[a.ID] = a
	return nil
}

func (catalog *memoryCatalog) UpdateArtist(_ context.Context, id string, a *artist.Artist) error {
	a.ID = id
	catalog.artists[id] = a
	return nil
}

func (catalog *memoryCatalog) AttachIdentifier(_ context.Context, identifier *artist.ExternalIdentifier) error {
	catalog.identifiers = append(catalog.identifiers, identifier)
	return nil
}

func (catalog *memoryCatalog) ListIdentifiers(_ context.Context, artistID string) ([]*artist.ExternalIdentifier, error) {
	var matches []*artist.ExternalIdentifier
	for _, identifier := range catalog.identifiers {
		if identifier.ArtistID == artistID {
			matches = append(matches, identifier)
		}
	}
	return matches, nil
}

func (catalog *memoryCatalog) MarkSynced(_ context.Context, artistID string, syncedAt time.Time) error {
	if a, ok := catalog.artists[artistID]; ok {
		a.LastSyncedAt = &syncedAt
	}
	return nil
}

// stubRegistry answers identity-registry searches from a canned list.
type stubRegistry struct {
	matches []musicbrainz.ArtistMatch
	err     error
	calls   int
}

func (registry *stubRegistry) SearchArtists(_ context.Context, _ string) ([]musicbrainz.ArtistMatch, error) {
	registry.calls++
	return registry.matches, registry.err
}

func TestResolver_ExactProviderIDMatchCreatesNothing(t *testing.T) {
	catalog := newMemoryCatalog()
	existing := &artist.Artist{Name: "Beyoncé"}
	require.NoError(t, catalog.CreateArtist(context.Background(), existing))
	require.NoError(t, catalog.AttachIdentifier(context.Background(), &artist.ExternalIdentifier{
		ArtistID: existing.ID, Provider: provider.NameTicketmaster, NativeID: "tm-1",
	}))

	resolver := ingest.NewResolver(catalog, &stubRegistry{}, 90, testLogger())

	resolved, err := resolver.Resolve(context.Background(), provider.NameTicketmaster, "tm-1", ingest.ArtistHint{Name: "Beyonce"})
	require.NoError(t, err)

	assert.Equal(t, existing.ID, resolved.ID)
	assert.Equal(t, 1, catalog.created, "repeat resolution must not create artists")
	assert.Len(t, catalog.identifiers, 1, "repeat resolution must not attach identifiers")
}

func TestResolver_NameKeyCollisionReusesCanonicalArtist(t *testing.T) {
	catalog := newMemoryCatalog()
	existing := &artist.Artist{Name: "AC/DC"}
	require.NoError(t, catalog.CreateArtist(context.Background(), existing))
	require.NoError(t, catalog.AttachIdentifier(context.Background(), &artist.ExternalIdentifier{
		ArtistID: existing.ID, Provider: provider.NameTicketmaster, NativeID: "tm-1",
	}))

	resolver := ingest.NewResolver(catalog, &stubRegistry{}, 90, testLogger())

	// Same normalized name from the other provider: reuse, don't duplicate.
	resolved, err := resolver.Resolve(context.Background(), provider.NameSpotify, "sp-9", ingest.ArtistHint{Name: "AC-DC"})
	require.NoError(t, err)

	assert.Equal(t, existing.ID, resolved.ID)
	assert.Equal(t, 1, catalog.created)
	require.Len(t, catalog.identifiers, 2)
	assert.Equal(t, provider.NameSpotify, catalog.identifiers[1].Provider)
}

func TestResolver_ConflictingIdentifierBlocksReuse(t *testing.T) {
	catalog := newMemoryCatalog()
	existing := &artist.Artist{Name: "Muse"}
	require.NoError(t, catalog.CreateArtist(context.Background(), existing))
	// The existing canonical artist is already linked to a DIFFERENT native
	// ID on the same provider, so the collision cannot be the same act.
	require.NoError(t, catalog.AttachIdentifier(context.Background(), &artist.ExternalIdentifier{
		ArtistID: existing.ID, Provider: provider.NameSpotify, NativeID: "sp-other",
	}))

	resolver := ingest.NewResolver(catalog, &stubRegistry{}, 90, testLogger())

	resolved, err := resolver.Resolve(context.Background(), provider.NameSpotify, "sp-new", ingest.ArtistHint{Name: "Muse"})
	require.NoError(t, err)

	assert.NotEqual(t, existing.ID, resolved.ID, "conflicting identifier must force a new canonical artist")
	assert.Equal(t, 2, catalog.created)
}

func TestResolver_RegistryMatchAcceptance(t *testing.T) {
	cases := []struct {
		name       string
		match      musicbrainz.ArtistMatch
		wantLinked bool
	}{
		{
			name:       "score_above_threshold_accepted",
			match:      musicbrainz.ArtistMatch{ID: "mbid-1", Name: "Radiohead Tribute", Score: 95},
			wantLinked: true,
		},
		{
			name:       "score_below_threshold_rejected",
			match:      musicbrainz.ArtistMatch{ID: "mbid-2", Name: "Radio Head Band", Score: 60},
			wantLinked: false,
		},
		{
			name:       "byte_identical_normalized_name_accepted_despite_low_score",
			match:      musicbrainz.ArtistMatch{ID: "mbid-3", Name: "Radiohead", Score: 60},
			wantLinked: true,
		},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			catalog := newMemoryCatalog()
			registry := &stubRegistry{matches: []musicbrainz.ArtistMatch{testCase.match}}
			resolver := ingest.NewResolver(catalog, registry, 90, testLogger())

			resolved, err := resolver.Resolve(context.Background(), provider.NameSpotify, "sp-1", ingest.ArtistHint{Name: "Radiohead"})
			require.NoError(t, err)

			if testCase.wantLinked {
				require.NotNil(t, resolved.MusicBrainzID)
				assert.Equal(t, testCase.match.ID, *resolved.MusicBrainzID)
			} else {
				assert.Nil(t, resolved.MusicBrainzID)
			}
		})
	}
}

func TestResolver_RegistryFailureIsNonFatal(t *testing.T) {
	catalog := newMemoryCatalog()
	registry := &stubRegistry{err: errors.New("registry unreachable")}
	resolver := ingest.NewResolver(catalog, registry, 90, testLogger())

	resolved, err := resolver.Resolve(context.Background(), provider.NameTicketmaster, "tm-1", ingest.ArtistHint{Name: "Björk"})
	require.NoError(t, err, "ingestion must not fail because enrichment failed")

	assert.Nil(t, resolved.MusicBrainzID)
	assert.Equal(t, 1, catalog.created)
	assert.Equal(t, 1, registry.calls)
}
