package song

import (
	"context"
	"log/slog"

	"github.com/minhlq/setwave/internal/platform/validate"
	"github.com/minhlq/setwave/pkg/slug"
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

func (service *Service) ListSongs(context context.Context, filter Filter, limit, offset int) ([]*Song, int, error) {
	return service.repo.ListSongs(context, filter, limit, offset)
}

func (service *Service) GetSong(context context.Context, id string) (*Song, error) {
	return service.repo.GetSong(context, id)
}

// UpsertSong normalizes the title key and writes through to storage.
func (service *Service) UpsertSong(context context.Context, s *Song) (string, error) {
	validator := &validate.Validator{}
	validator.Required(FieldTitle, s.Title).MaxLen(FieldTitle, s.Title, 300)
	validator.Range(FieldPopularity, s.Popularity, 0, 100)
	if err := validator.Err(); err != nil {
		return "", err
	}

	s.TitleKey = slug.From(s.Title)

	id, err := service.repo.UpsertSong(context, s)
	if err != nil {
		return "", err
	}

	service.logger.Debug("song_upserted",
		slog.String("song_id", id),
		slog.String("artist_id", s.ArtistID),
		slog.String("title_key", s.TitleKey),
	)
	return id, nil
}

func (service *Service) TopSongs(context context.Context, artistID string, limit int) ([]*Song, error) {
	return service.repo.TopSongs(context, artistID, limit)
}
