package show

import (
	"time"
)

// Show statuses mirror the ticketing provider's event lifecycle.
const (
	StatusScheduled   = "scheduled"
	StatusOnSale      = "onsale"
	StatusOffSale     = "offsale"
	StatusRescheduled = "rescheduled"
	StatusCancelled   = "cancelled"
)

// Show is a canonical live event for one artist.
//
// Natural key: ProviderEventID when the ticketing provider supplied one,
// otherwise (ArtistID, Date, VenueKey). Two provider records that collapse to
// the same natural key are the same show.
type Show struct {
	ID              string    `json:"id"`
	ArtistID        string    `json:"artist_id"`
	ProviderEventID *string   `json:"provider_event_id"`
	Date            time.Time `json:"date"`
	VenueName       string    `json:"venue_name"`
	VenueKey        string    `json:"venue_key"`
	City            string    `json:"city"`
	Country         string    `json:"country"`
	Status          string    `json:"status"`
	TrendingScore   float64   `json:"trending_score"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Setlist is an ordered song list attached to a show. Kind "predicted" marks
// lists generated from the artist's catalog rather than observed live.
type Setlist struct {
	ID        string        `json:"id"`
	ShowID    string        `json:"show_id"`
	Kind      string        `json:"kind"`
	Songs     []SetlistSong `json:"songs"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

const SetlistKindPredicted = "predicted"

type SetlistSong struct {
	SongID   string `json:"song_id"`
	Position int    `json:"position"`
}

// Filter holds the parameters for a paginated show listing.
type Filter struct {
	ArtistID     string
	UpcomingOnly bool
}

const (
	FieldVenueName = "venue_name"
	FieldStatus    = "status"
)
