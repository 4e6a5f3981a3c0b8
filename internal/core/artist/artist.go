package artist

import (
	"time"

	"github.com/minhlq/setwave/internal/provider"
)

// Artist is the canonical, provider-independent representation of a musical act.
type Artist struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	NameKey       string     `json:"name_key"`
	ImageURL      *string    `json:"image_url"`
	Genres        []string   `json:"genres"`
	MusicBrainzID *string    `json:"musicbrainz_id"`
	TrendingScore float64    `json:"trending_score"`
	LastSyncedAt  *time.Time `json:"last_synced_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ExternalIdentifier links a canonical artist to one provider-native ID.
//
// Rows are never deleted, only confidence-upgraded. At most one identifier
// exists per (provider, native ID) pair and per (artist, provider) pair.
type ExternalIdentifier struct {
	ArtistID   string        `json:"artist_id"`
	Provider   provider.Name `json:"provider"`
	NativeID   string        `json:"native_id"`
	Confidence float64       `json:"confidence"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// Filter holds the parameters for a paginated artist search.
type Filter struct {
	Query  string   // Matched against name (ILIKE) and namekey
	Genres []string // Artists tagged with any of these genres
}

const (
	FieldName     = "name"
	FieldImageURL = "image_url"
)
