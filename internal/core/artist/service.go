package artist

import (
	"context"
	"log/slog"
	"time"

	"github.com/minhlq/setwave/internal/platform/validate"
	"github.com/minhlq/setwave/internal/provider"
	"github.com/minhlq/setwave/pkg/slug"
	"github.com/minhlq/setwave/pkg/uuidv7"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (service *Service) ListArtists(context context.Context, filter Filter, limit, offset int) ([]*Artist, int, error) {
	return service.repo.ListArtists(context, filter, limit, offset)
}

func (service *Service) GetArtist(context context.Context, id string) (*Artist, error) {
	return service.repo.GetArtist(context, id)
}

func (service *Service) GetArtistByProviderID(context context.Context, providerName provider.Name, nativeID string) (*Artist, error) {
	return service.repo.GetArtistByProviderID(context, providerName, nativeID)
}

func (service *Service) FindArtistsByNameKey(context context.Context, nameKey string) ([]*Artist, error) {
	return service.repo.FindArtistsByNameKey(context, nameKey)
}

// CreateArtist mints a new canonical artist. The name key is always derived
// server-side so every caller normalizes identically.
func (service *Service) CreateArtist(context context.Context, artist *Artist) error {
	validator := &validate.Validator{}

	validator.Required(FieldName, artist.Name).MaxLen(FieldName, artist.Name, 300)
	if artist.ImageURL != nil {
		validator.URL(FieldImageURL, *artist.ImageURL)
	}

	if err := validator.Err(); err != nil {
		return err
	}

	artist.ID = uuidv7.New()
	artist.NameKey = slug.From(artist.Name)

	if err := service.repo.CreateArtist(context, artist); err != nil {
		return err
	}

	service.logger.Info("artist_created",
		slog.String("artist_id", artist.ID),
		slog.String("name", artist.Name),
		slog.String("name_key", artist.NameKey),
	)
	return nil
}

func (service *Service) UpdateArtist(context context.Context, id string, artist *Artist) error {
	artist.ID = id
	validator := &validate.Validator{}

	validator.Required(FieldName, artist.Name).MaxLen(FieldName, artist.Name, 300)
	if artist.ImageURL != nil {
		validator.URL(FieldImageURL, *artist.ImageURL)
	}

	if err := validator.Err(); err != nil {
		return err
	}

	artist.NameKey = slug.From(artist.Name)

	if err := service.repo.UpdateArtist(context, artist); err != nil {
		return err
	}

	service.logger.Info("artist_updated", slog.String("artist_id", artist.ID))
	return nil
}

// AttachIdentifier records or confidence-upgrades a provider link.
func (service *Service) AttachIdentifier(context context.Context, identifier *ExternalIdentifier) error {
	if err := service.repo.AttachIdentifier(context, identifier); err != nil {
		return err
	}

	service.logger.Info("identifier_attached",
		slog.String("artist_id", identifier.ArtistID),
		slog.String("provider", string(identifier.Provider)),
		slog.String("native_id", identifier.NativeID),
	)
	return nil
}

func (service *Service) ListIdentifiers(context context.Context, artistID string) ([]*ExternalIdentifier, error) {
	return service.repo.ListIdentifiers(context, artistID)
}

func (service *Service) MarkSynced(context context.Context, artistID string, syncedAt time.Time) error {
	return service.repo.MarkSynced(context, artistID, syncedAt)
}
