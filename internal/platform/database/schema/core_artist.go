package schema

// CoreArtistTable represents the 'core.artist' table
type CoreArtistTable struct {
	Table         string
	ID            string
	Name          string
	NameKey       string
	ImageURL      string
	Genres        string
	MusicBrainzID string
	TrendingScore string
	LastSyncedAt  string
	CreatedAt     string
	UpdatedAt     string
}

// CoreArtist is the schema definition for core.artist
var CoreArtist = CoreArtistTable{
	Table:         "core.artist",
	ID:            "id",
	Name:          "name",
	NameKey:       "namekey",
	ImageURL:      "imageurl",
	Genres:        "genres",
	MusicBrainzID: "musicbrainzid",
	TrendingScore: "trendingscore",
	LastSyncedAt:  "lastsyncedat",
	CreatedAt:     "createdat",
	UpdatedAt:     "updatedat",
}

func (t CoreArtistTable) Columns() []string {
	return []string{t.ID, t.Name, t.NameKey, t.ImageURL, t.Genres, t.MusicBrainzID, t.TrendingScore, t.LastSyncedAt, t.CreatedAt, t.UpdatedAt}
}
