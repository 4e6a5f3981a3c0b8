package schema

// CoreSongTable represents the 'core.song' table
type CoreSongTable struct {
	Table           string
	ID              string
	ArtistID        string
	ProviderTrackID string
	Title           string
	TitleKey        string
	Album           string
	DurationMS      string
	Popularity      string
	CreatedAt       string
	UpdatedAt       string
}

// CoreSong is the schema definition for core.song.
// Natural key: providertrackid when present, else (artistid, titlekey).
var CoreSong = CoreSongTable{
	Table:           "core.song",
	ID:              "id",
	ArtistID:        "artistid",
	ProviderTrackID: "providertrackid",
	Title:           "title",
	TitleKey:        "titlekey",
	Album:           "album",
	DurationMS:      "durationms",
	Popularity:      "popularity",
	CreatedAt:       "createdat",
	UpdatedAt:       "updatedat",
}

func (t CoreSongTable) Columns() []string {
	return []string{t.ID, t.ArtistID, t.ProviderTrackID, t.Title, t.TitleKey, t.Album, t.DurationMS, t.Popularity, t.CreatedAt, t.UpdatedAt}
}
