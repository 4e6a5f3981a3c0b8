package show

import (
	"context"
)

type Repository interface {
	ListShows(context context.Context, f Filter, limit, offset int) ([]*Show, int, error)
	GetShow(context context.Context, id string) (*Show, error)

	// UpsertShow creates or updates a show by its natural key and returns the
	// canonical show ID. Populated stored fields are never replaced by empty
	// incoming values.
	UpsertShow(context context.Context, s *Show) (string, error)

	// ReplaceSetlist atomically swaps the setlist of the given kind for a show.
	ReplaceSetlist(context context.Context, showID, kind string, songIDs []string) (*Setlist, error)
	GetSetlist(context context.Context, showID string) (*Setlist, error)

	UpdateTrendingScore(context context.Context, showID string, score float64) error
}
