package artist

import (
	"context"
	"time"

	"github.com/minhlq/setwave/internal/provider"
)

type Repository interface {
	ListArtists(context context.Context, f Filter, limit, offset int) ([]*Artist, int, error)
	GetArtist(context context.Context, id string) (*Artist, error)
	GetArtistByProviderID(context context.Context, providerName provider.Name, nativeID string) (*Artist, error)
	FindArtistsByNameKey(context context.Context, nameKey string) ([]*Artist, error)
	CreateArtist(context context.Context, a *Artist) error
	UpdateArtist(context context.Context, a *Artist) error
	AttachIdentifier(context context.Context, identifier *ExternalIdentifier) error
	ListIdentifiers(context context.Context, artistID string) ([]*ExternalIdentifier, error)
	MarkSynced(context context.Context, artistID string, syncedAt time.Time) error
	UpdateTrendingScore(context context.Context, artistID string, score float64) error
}
