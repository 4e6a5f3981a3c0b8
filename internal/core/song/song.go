package song

import (
	"time"
)

// Song is a canonical track owned by one artist.
//
// Natural key: ProviderTrackID when the streaming provider supplied one,
// otherwise (ArtistID, TitleKey).
type Song struct {
	ID              string    `json:"id"`
	ArtistID        string    `json:"artist_id"`
	ProviderTrackID *string   `json:"provider_track_id"`
	Title           string    `json:"title"`
	TitleKey        string    `json:"title_key"`
	Album           *string   `json:"album"`
	DurationMS      int       `json:"duration_ms"`
	Popularity      int       `json:"popularity"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Filter holds the parameters for a paginated song listing.
type Filter struct {
	ArtistID string
	Query    string
}

const (
	FieldTitle      = "title"
	FieldPopularity = "popularity"
)
