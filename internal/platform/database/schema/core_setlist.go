package schema

// CoreSetlistTable represents the 'core.setlist' table
type CoreSetlistTable struct {
	Table     string
	ID        string
	ShowID    string
	Kind      string
	CreatedAt string
	UpdatedAt string
}

// CoreSetlist is the schema definition for core.setlist
var CoreSetlist = CoreSetlistTable{
	Table:     "core.setlist",
	ID:        "id",
	ShowID:    "showid",
	Kind:      "kind",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

// CoreSetlistSongTable represents the 'core.setlistsong' join table
type CoreSetlistSongTable struct {
	Table     string
	SetlistID string
	SongID    string
	Position  string
}

// CoreSetlistSong is the schema definition for core.setlistsong
var CoreSetlistSong = CoreSetlistSongTable{
	Table:     "core.setlistsong",
	SetlistID: "setlistid",
	SongID:    "songid",
	Position:  "position",
}
