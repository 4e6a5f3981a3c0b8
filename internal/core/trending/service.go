package trending

import (
	"context"
	"log/slog"
	"time"

	"github.com/minhlq/setwave/internal/platform/validate"
)

// DefaultWindowHours is the weekly window used when a caller supplies none.
const DefaultWindowHours = 168

// Cache is the optional short-TTL result cache.
type Cache interface {
	Get(context context.Context, entityType EntityType, windowHours int, weights Weights) ([]TrendingScoreResult, error)
	Set(context context.Context, entityType EntityType, windowHours int, weights Weights, results []TrendingScoreResult) error
}

// ScoreWriter denormalizes a computed score onto the entity's own row.
type ScoreWriter interface {
	UpdateTrendingScore(context context.Context, id string, score float64) error
}

type Service struct {
	repo           Repository
	cache          Cache
	writers        map[EntityType]ScoreWriter
	defaultWeights Weights
	logger         *slog.Logger
	now            func() time.Time
}

func NewService(repo Repository, cache Cache, writers map[EntityType]ScoreWriter, defaultWeights Weights, logger *slog.Logger) *Service {
	return &Service{
		repo:           repo,
		cache:          cache,
		writers:        writers,
		defaultWeights: defaultWeights,
		logger:         logger,
		now:            time.Now,
	}
}

// SetNowForTest overrides the service clock. Tests only.
func (service *Service) SetNowForTest(now func() time.Time) {
	service.now = now
}

// DefaultWeights returns the configured weight set.
func (service *Service) DefaultWeights() Weights {
	return service.defaultWeights
}

// RecordActivity increments one signal counter. The bucket is the signal
// time truncated to the hour; a zero timestamp means "now".
func (service *Service) RecordActivity(context context.Context, signal *ActivitySignal) error {
	validator := &validate.Validator{}
	validator.Required("entity_id", signal.EntityID)
	validator.OneOf("entity_type", string(signal.EntityType), string(EntityArtist), string(EntityShow))
	validator.OneOf("kind", signal.Kind, KindVote, KindAttendance, KindView)
	validator.Custom("count", signal.Count <= 0, "Must be a positive increment")
	if err := validator.Err(); err != nil {
		return err
	}

	if signal.Bucket.IsZero() {
		signal.Bucket = service.now()
	}
	signal.Bucket = signal.Bucket.UTC().Truncate(time.Hour)

	return service.repo.RecordSignal(context, signal)
}

// ComputeScores produces the ranked list for one entity type and window,
// consulting the cache first. A fresh computation also persists the current
// period's snapshots and denormalizes scores onto entity rows.
func (service *Service) ComputeScores(context context.Context, entityType EntityType, windowHours int, weights Weights) ([]TrendingScoreResult, error) {
	validator := &validate.Validator{}
	validator.OneOf("entity_type", string(entityType), string(EntityArtist), string(EntityShow))
	validator.Custom("window", windowHours <= 0, "Window must be a positive hour count")
	validator.Custom("weights", !weights.Valid(), "Weights must be non-negative")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if service.cache != nil {
		cached, err := service.cache.Get(context, entityType, windowHours, weights)
		if err != nil {
			service.logger.Warn("trending_cache_read_failed", slog.String("error", err.Error()))
		} else if cached != nil {
			return cached, nil
		}
	}

	now := service.now().UTC()
	since := now.Add(-time.Duration(windowHours) * time.Hour)

	aggregates, err := service.repo.AggregateWindow(context, entityType, since)
	if err != nil {
		return nil, err
	}

	period := PeriodStart(now, windowHours)
	previous, err := service.repo.PreviousSnapshots(context, entityType, windowHours, period)
	if err != nil {
		return nil, err
	}

	results := ComputeScores(aggregates, previous, windowHours, weights, now)

	if err := service.persist(context, entityType, windowHours, period, aggregates, results, now); err != nil {
		// The ranking itself is still valid; persistence is bookkeeping.
		service.logger.Warn("trending_persist_failed",
			slog.String("entity_type", string(entityType)),
			slog.String("error", err.Error()),
		)
	}

	if service.cache != nil {
		if err := service.cache.Set(context, entityType, windowHours, weights, results); err != nil {
			service.logger.Warn("trending_cache_write_failed", slog.String("error", err.Error()))
		}
	}

	return results, nil
}

// persist writes the period snapshots and the denormalized per-entity scores.
func (service *Service) persist(context context.Context, entityType EntityType, windowHours int, period time.Time, aggregates []SignalAggregate, results []TrendingScoreResult, now time.Time) error {
	snapshots := make([]*Snapshot, 0, len(aggregates))
	for _, aggregate := range aggregates {
		snapshots = append(snapshots, &Snapshot{
			EntityID:    aggregate.EntityID,
			EntityType:  entityType,
			WindowHours: windowHours,
			Period:      period,
			Votes:       aggregate.Votes,
			Attendees:   aggregate.Attendees,
			Views:       aggregate.Views,
			GeneratedAt: now,
		})
	}
	if err := service.repo.SaveSnapshots(context, snapshots); err != nil {
		return err
	}

	writer := service.writers[entityType]
	if writer == nil {
		return nil
	}
	for _, result := range results {
		if err := writer.UpdateTrendingScore(context, result.EntityID, result.Score); err != nil {
			return err
		}
	}
	return nil
}
