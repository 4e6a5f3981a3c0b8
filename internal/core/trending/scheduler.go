package trending

import (
	"context"
	"log/slog"
	"math/rand"
	"time"
)

// Scheduler recomputes the weekly ranking for every entity type on a fixed
// interval with a little jitter, so multiple instances do not thunder at the
// same moment. It is independent of ingestion and safe to run alongside it.
type Scheduler struct {
	service  *Service
	interval time.Duration
	logger   *slog.Logger
}

func NewScheduler(service *Service, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		service:  service,
		interval: interval,
		logger:   logger,
	}
}

// Run blocks until the context is cancelled, recomputing once per interval.
// Call it in its own goroutine.
func (scheduler *Scheduler) Run(context context.Context) {
	timer := time.NewTimer(scheduler.nextDelay())
	defer timer.Stop()

	for {
		select {
		case <-context.Done():
			return
		case <-timer.C:
			scheduler.recompute(context)
			timer.Reset(scheduler.nextDelay())
		}
	}
}

func (scheduler *Scheduler) nextDelay() time.Duration {
	// Up to 10% jitter.
	jitter := time.Duration(rand.Int63n(int64(scheduler.interval) / 10))
	return scheduler.interval + jitter
}

func (scheduler *Scheduler) recompute(context context.Context) {
	weights := scheduler.service.DefaultWeights()

	for _, entityType := range []EntityType{EntityArtist, EntityShow} {
		started := time.Now()
		results, err := scheduler.service.ComputeScores(context, entityType, DefaultWindowHours, weights)
		if err != nil {
			scheduler.logger.Error("trending_recompute_failed",
				slog.String("entity_type", string(entityType)),
				slog.String("error", err.Error()),
			)
			continue
		}

		scheduler.logger.Info("trending_recomputed",
			slog.String("entity_type", string(entityType)),
			slog.Int("entities_ranked", len(results)),
			slog.Duration("took", time.Since(started)),
		)
	}
}
