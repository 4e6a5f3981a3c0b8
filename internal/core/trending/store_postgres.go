package trending

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minhlq/setwave/internal/platform/database/schema"
	"github.com/minhlq/setwave/internal/platform/dberr"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) RecordSignal(context context.Context, signal *ActivitySignal) error {
	t := schema.ActivitySignal
	query := fmt.Sprintf(`
		INSERT INTO %s AS x (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (%s, %s, %s) DO UPDATE SET %s = x.%s + EXCLUDED.%s
	`,
		t.Table, t.EntityID, t.EntityType, t.Kind, t.Count, t.Bucket,
		t.EntityID, t.Kind, t.Bucket,
		t.Count, t.Count, t.Count,
	)

	_, err := repository.db.Exec(context, query,
		signal.EntityID, string(signal.EntityType), signal.Kind, signal.Count,
		signal.Bucket.UTC().Truncate(time.Hour),
	)
	return dberr.Wrap(err, "record_signal")
}

func (repository *PostgresRepository) AggregateWindow(context context.Context, entityType EntityType, since time.Time) ([]SignalAggregate, error) {
	t := schema.ActivitySignal

	// The joined total ignores the window: historical attendance is the
	// all-time tie-breaker, not a windowed quantity.
	query := fmt.Sprintf(`
		SELECT
			w.%s,
			w.votes, w.attendees, w.views, w.lastsignalat,
			COALESCE(h.total, 0) AS totalattendance
		FROM (
			SELECT
				%s,
				COALESCE(SUM(%s) FILTER (WHERE %s = $3), 0) AS votes,
				COALESCE(SUM(%s) FILTER (WHERE %s = $4), 0) AS attendees,
				COALESCE(SUM(%s) FILTER (WHERE %s = $5), 0) AS views,
				MAX(%s) AS lastsignalat
			FROM %s
			WHERE %s = $1 AND %s >= $2
			GROUP BY %s
		) w
		LEFT JOIN (
			SELECT %s, SUM(%s) AS total
			FROM %s
			WHERE %s = $1 AND %s = $4
			GROUP BY %s
		) h ON h.%s = w.%s
		ORDER BY w.%s ASC
	`,
		t.EntityID,
		t.EntityID,
		t.Count, t.Kind,
		t.Count, t.Kind,
		t.Count, t.Kind,
		t.Bucket,
		t.Table,
		t.EntityType, t.Bucket,
		t.EntityID,
		t.EntityID, t.Count,
		t.Table,
		t.EntityType, t.Kind,
		t.EntityID,
		t.EntityID, t.EntityID,
		t.EntityID,
	)

	rows, err := repository.db.Query(context, query,
		string(entityType), since.UTC(), KindVote, KindAttendance, KindView)
	if err != nil {
		return nil, dberr.Wrap(err, "aggregate_window")
	}
	defer rows.Close()

	var aggregates []SignalAggregate
	for rows.Next() {
		var aggregate SignalAggregate
		if err := rows.Scan(
			&aggregate.EntityID,
			&aggregate.Votes, &aggregate.Attendees, &aggregate.Views,
			&aggregate.LastSignalAt, &aggregate.TotalAttendance,
		); err != nil {
			return nil, dberr.Wrap(err, "scan_aggregate")
		}
		aggregates = append(aggregates, aggregate)
	}

	return aggregates, nil
}

func (repository *PostgresRepository) PreviousSnapshots(context context.Context, entityType EntityType, windowHours int, period time.Time) (map[string]*Snapshot, error) {
	t := schema.ActivitySnapshot
	previousPeriod := period.Add(-time.Duration(windowHours) * time.Hour)

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s = $2 AND %s = $3
	`,
		t.EntityID, t.Votes, t.Attendees, t.Views, t.GeneratedAt,
		t.Table,
		t.EntityType, t.WindowHours, t.Period,
	)

	rows, err := repository.db.Query(context, query, string(entityType), windowHours, previousPeriod)
	if err != nil {
		return nil, dberr.Wrap(err, "previous_snapshots")
	}
	defer rows.Close()

	snapshots := map[string]*Snapshot{}
	for rows.Next() {
		snapshot := &Snapshot{
			EntityType:  entityType,
			WindowHours: windowHours,
			Period:      previousPeriod,
		}
		if err := rows.Scan(
			&snapshot.EntityID, &snapshot.Votes, &snapshot.Attendees,
			&snapshot.Views, &snapshot.GeneratedAt,
		); err != nil {
			return nil, dberr.Wrap(err, "scan_snapshot")
		}
		snapshots[snapshot.EntityID] = snapshot
	}

	return snapshots, nil
}

func (repository *PostgresRepository) SaveSnapshots(context context.Context, snapshots []*Snapshot) error {
	t := schema.ActivitySnapshot
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (%s, %s, %s) DO UPDATE SET
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s
	`,
		t.Table, t.EntityID, t.EntityType, t.WindowHours, t.Period,
		t.Votes, t.Attendees, t.Views, t.GeneratedAt,
		t.EntityID, t.WindowHours, t.Period,
		t.Votes, t.Votes,
		t.Attendees, t.Attendees,
		t.Views, t.Views,
		t.GeneratedAt, t.GeneratedAt,
	)

	for _, snapshot := range snapshots {
		_, err := repository.db.Exec(context, query,
			snapshot.EntityID, string(snapshot.EntityType), snapshot.WindowHours,
			snapshot.Period.UTC(), snapshot.Votes, snapshot.Attendees, snapshot.Views,
			snapshot.GeneratedAt.UTC(),
		)
		if err != nil {
			return dberr.Wrap(err, "save_snapshot")
		}
	}

	return nil
}
