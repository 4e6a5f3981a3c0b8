package show

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

func (service *Service) ListShows(context context.Context, filter Filter, limit, offset int) ([]*Show, int, error) {
	return service.repo.ListShows(context, filter, limit, offset)
}

func (service *Service) GetShow(context context.Context, id string) (*Show, error) {
	return service.repo.GetShow(context, id)
}

// UpsertShow normalizes the venue key and writes through to storage. The
// returned ID is the canonical show, whether created or merged.
func (service *Service) UpsertShow(context context.Context, s *Show) (string, error) {
	validator := &validate.Validator{}
	validator.Required(FieldVenueName, s.VenueName).MaxLen(FieldVenueName, s.VenueName, 300)
	if s.Status != "" {
		validator.OneOf(FieldStatus, s.Status,
			StatusScheduled, StatusOnSale, StatusOffSale, StatusRescheduled, StatusCancelled)
	}
	if err := validator.Err(); err != nil {
		return "", err
	}

	s.VenueKey = slug.From(s.VenueName)

	id, err := service.repo.UpsertShow(context, s)
	if err != nil {
		return "", err
	}

	service.logger.Debug("show_upserted",
		slog.String("show_id", id),
		slog.String("artist_id", s.ArtistID),
		slog.String("venue_key", s.VenueKey),
	)
	return id, nil
}

func (service *Service) ReplaceSetlist(context context.Context, showID, kind string, songIDs []string) (*Setlist, error) {
	setlist, err := service.repo.ReplaceSetlist(context, showID, kind, songIDs)
	if err != nil {
		return nil, err
	}

	service.logger.Info("setlist_replaced",
		slog.String("show_id", showID),
		slog.String("kind", kind),
		slog.Int("song_count", len(songIDs)),
	)
	return setlist, nil
}

func (service *Service) GetSetlist(context context.Context, showID string) (*Setlist, error) {
	return service.repo.GetSetlist(context, showID)
}
