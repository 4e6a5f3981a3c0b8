package song

import (
	"context"
)

type Repository interface {
	ListSongs(context context.Context, f Filter, limit, offset int) ([]*Song, int, error)
	GetSong(context context.Context, id string) (*Song, error)

	// UpsertSong creates or updates a song by its natural key and returns the
	// canonical song ID. Populated stored fields are never replaced by empty
	// incoming values.
	UpsertSong(context context.Context, s *Song) (string, error)

	// TopSongs returns the artist's songs ordered by popularity, for
	// predicted-setlist building.
	TopSongs(context context.Context, artistID string, limit int) ([]*Song, error)
}
