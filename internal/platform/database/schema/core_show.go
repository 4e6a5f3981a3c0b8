package schema

// CoreShowTable represents the 'core.show' table
type CoreShowTable struct {
	Table           string
	ID              string
	ArtistID        string
	ProviderEventID string
	Date            string
	VenueName       string
	VenueKey        string
	City            string
	Country         string
	Status          string
	TrendingScore   string
	CreatedAt       string
	UpdatedAt       string
}

// CoreShow is the schema definition for core.show.
// Natural key: providereventid when present, else (artistid, date, venuekey).
var CoreShow = CoreShowTable{
	Table:           "core.show",
	ID:              "id",
	ArtistID:        "artistid",
	ProviderEventID: "providereventid",
	Date:            "date",
	VenueName:       "venuename",
	VenueKey:        "venuekey",
	City:            "city",
	Country:         "country",
	Status:          "status",
	TrendingScore:   "trendingscore",
	CreatedAt:       "createdat",
	UpdatedAt:       "updatedat",
}

func (t CoreShowTable) Columns() []string {
	return []string{t.ID, t.ArtistID, t.ProviderEventID, t.Date, t.VenueName, t.VenueKey, t.City, t.Country, t.Status, t.TrendingScore, t.CreatedAt, t.UpdatedAt}
}
