package show

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minhlq/setwave/internal/platform/apperr"
	"github.com/minhlq/setwave/internal/platform/database/schema"
	"github.com/minhlq/setwave/internal/platform/dberr"
	"github.com/minhlq/setwave/pkg/uuidv7"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func showColumns() string {
	t := schema.CoreShow
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
		t.ID, t.ArtistID, t.ProviderEventID, t.Date, t.VenueName, t.VenueKey,
		t.City, t.Country, t.Status, t.TrendingScore, t.CreatedAt, t.UpdatedAt,
	)
}

func scanShow(row interface{ Scan(...any) error }) (*Show, error) {
	s := &Show{}
	err := row.Scan(
		&s.ID, &s.ArtistID, &s.ProviderEventID, &s.Date, &s.VenueName, &s.VenueKey,
		&s.City, &s.Country, &s.Status, &s.TrendingScore, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (repository *PostgresRepository) ListShows(context context.Context, f Filter, limit, offset int) ([]*Show, int, error) {
	t := schema.CoreShow
	query := fmt.Sprintf(`SELECT %s FROM %s`, showColumns(), t.Table)
	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s`, t.Table)

	clauses := ""
	args := []any{}

	if f.ArtistID != "" {
		args = append(args, f.ArtistID)
		clauses = fmt.Sprintf(" WHERE %s = $%d", t.ArtistID, len(args))
	}
	if f.UpcomingOnly {
		connector := " WHERE"
		if clauses != "" {
			connector = " AND"
		}
		clauses += fmt.Sprintf("%s %s >= NOW()", connector, t.Date)
	}

	query += clauses
	countQuery += clauses
	countArgs := append([]any{}, args...)

	query += fmt.Sprintf(" ORDER BY %s ASC, %s ASC LIMIT $%d OFFSET $%d",
		t.Date, t.ID, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	var total int
	if err := repository.db.QueryRow(context, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_shows")
	}

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_shows")
	}
	defer rows.Close()

	var shows []*Show
	for rows.Next() {
		s, err := scanShow(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_show")
		}
		shows = append(shows, s)
	}

	return shows, total, nil
}

func (repository *PostgresRepository) GetShow(context context.Context, id string) (*Show, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		showColumns(), schema.CoreShow.Table, schema.CoreShow.ID)

	s, err := scanShow(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "get_show")
	}
	return s, nil
}

// UpsertShow resolves the natural key in three steps:
//
//  1. Exact provider event ID match, when the incoming record carries one.
//  2. (artist, date, venue key) match. If the stored row carries a different
//     provider event ID than the incoming record, the two providers disagree
//     on an immutable natural key and the call fails with Conflict.
//  3. No match: insert a fresh row.
//
// On update, populated stored text fields survive empty incoming values.
func (repository *PostgresRepository) UpsertShow(context context.Context, s *Show) (string, error) {
	t := schema.CoreShow

	// 1. Exact provider-event match.
	if s.ProviderEventID != nil {
		query := fmt.Sprintf(`
			UPDATE %s SET
				%s = $2,
				%s = COALESCE(NULLIF($3, ''), %s),
				%s = COALESCE(NULLIF($4, ''), %s),
				%s = COALESCE(NULLIF($5, ''), %s),
				%s = COALESCE(NULLIF($6, ''), %s),
				%s = COALESCE(NULLIF($7, ''), %s),
				%s = NOW()
			WHERE %s = $1
			RETURNING %s
		`,
			t.Table,
			t.Date,
			t.VenueName, t.VenueName,
			t.VenueKey, t.VenueKey,
			t.City, t.City,
			t.Country, t.Country,
			t.Status, t.Status,
			t.UpdatedAt,
			t.ProviderEventID,
			t.ID,
		)

		var id string
		err := repository.db.QueryRow(context, query,
			*s.ProviderEventID, s.Date, s.VenueName, s.VenueKey, s.City, s.Country, s.Status,
		).Scan(&id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return "", dberr.Wrap(err, "upsert_show_by_provider_event")
		}
	}

	// 2. Natural-key match on (artist, date, venue key).
	lookup := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1 AND %s = $2 AND %s = $3`,
		t.ID, t.ProviderEventID, t.Table, t.ArtistID, t.Date, t.VenueKey)

	var existingID string
	var existingEventID *string
	err := repository.db.QueryRow(context, lookup, s.ArtistID, s.Date, s.VenueKey).Scan(&existingID, &existingEventID)
	switch {
	case err == nil:
		if existingEventID != nil && s.ProviderEventID != nil && *existingEventID != *s.ProviderEventID {
			return "", apperr.Conflict("Show natural key maps to a different provider event")
		}
		return repository.mergeShow(context, existingID, s)
	case errors.Is(err, pgx.ErrNoRows):
		// fall through to insert
	default:
		return "", dberr.Wrap(err, "lookup_show_natural_key")
	}

	// 3. Insert fresh row.
	insert := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING %s
	`,
		t.Table, t.ID, t.ArtistID, t.ProviderEventID, t.Date, t.VenueName, t.VenueKey,
		t.City, t.Country, t.Status, t.CreatedAt, t.UpdatedAt,
		t.ID,
	)

	var id string
	err = repository.db.QueryRow(context, insert,
		uuidv7.New(), s.ArtistID, s.ProviderEventID, s.Date, s.VenueName, s.VenueKey,
		s.City, s.Country, s.Status,
	).Scan(&id)
	if err != nil {
		return "", dberr.Wrap(err, "insert_show")
	}
	return id, nil
}

// mergeShow applies incoming fields onto an existing row found by natural key,
// backfilling the provider event ID when the stored row lacks one.
func (repository *PostgresRepository) mergeShow(context context.Context, id string, s *Show) (string, error) {
	t := schema.CoreShow
	query := fmt.Sprintf(`
		UPDATE %s SET
			%s = COALESCE(%s, $2),
			%s = COALESCE(NULLIF($3, ''), %s),
			%s = COALESCE(NULLIF($4, ''), %s),
			%s = COALESCE(NULLIF($5, ''), %s),
			%s = COALESCE(NULLIF($6, ''), %s),
			%s = NOW()
		WHERE %s = $1
	`,
		t.Table,
		t.ProviderEventID, t.ProviderEventID,
		t.VenueName, t.VenueName,
		t.City, t.City,
		t.Country, t.Country,
		t.Status, t.Status,
		t.UpdatedAt,
		t.ID,
	)

	_, err := repository.db.Exec(context, query,
		id, s.ProviderEventID, s.VenueName, s.City, s.Country, s.Status,
	)
	if err != nil {
		return "", dberr.Wrap(err, "merge_show")
	}
	return id, nil
}

// ReplaceSetlist swaps the ordered song list of the given kind inside one
// transaction, so a concurrent reader never observes a half-built list.
func (repository *PostgresRepository) ReplaceSetlist(context context.Context, showID, kind string, songIDs []string) (*Setlist, error) {
	tx, err := repository.db.Begin(context)
	if err != nil {
		return nil, dberr.Wrap(err, "begin_replace_setlist")
	}
	defer tx.Rollback(context)

	sl := schema.CoreSetlist
	ss := schema.CoreSetlistSong

	upsert := fmt.Sprintf(`
		INSERT INTO %s AS x (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (%s, %s) DO UPDATE SET %s = NOW()
		RETURNING %s, %s, %s
	`,
		sl.Table, sl.ID, sl.ShowID, sl.Kind, sl.CreatedAt, sl.UpdatedAt,
		sl.ShowID, sl.Kind,
		sl.UpdatedAt,
		sl.ID, sl.CreatedAt, sl.UpdatedAt,
	)

	setlist := &Setlist{ShowID: showID, Kind: kind}
	err = tx.QueryRow(context, upsert, uuidv7.New(), showID, kind).
		Scan(&setlist.ID, &setlist.CreatedAt, &setlist.UpdatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, "upsert_setlist")
	}

	remove := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, ss.Table, ss.SetlistID)
	if _, err := tx.Exec(context, remove, setlist.ID); err != nil {
		return nil, dberr.Wrap(err, "clear_setlist_songs")
	}

	insert := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, $3)`,
		ss.Table, ss.SetlistID, ss.SongID, ss.Position)
	for position, songID := range songIDs {
		if _, err := tx.Exec(context, insert, setlist.ID, songID, position+1); err != nil {
			return nil, dberr.Wrap(err, "insert_setlist_song")
		}
		setlist.Songs = append(setlist.Songs, SetlistSong{SongID: songID, Position: position + 1})
	}

	if err := tx.Commit(context); err != nil {
		return nil, dberr.Wrap(err, "commit_replace_setlist")
	}
	return setlist, nil
}

func (repository *PostgresRepository) GetSetlist(context context.Context, showID string) (*Setlist, error) {
	sl := schema.CoreSetlist
	ss := schema.CoreSetlistSong

	query := fmt.Sprintf(`SELECT %s, %s, %s, %s FROM %s WHERE %s = $1`,
		sl.ID, sl.Kind, sl.CreatedAt, sl.UpdatedAt, sl.Table, sl.ShowID)

	setlist := &Setlist{ShowID: showID}
	err := repository.db.QueryRow(context, query, showID).
		Scan(&setlist.ID, &setlist.Kind, &setlist.CreatedAt, &setlist.UpdatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, "get_setlist")
	}

	songQuery := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1 ORDER BY %s ASC`,
		ss.SongID, ss.Position, ss.Table, ss.SetlistID, ss.Position)

	rows, err := repository.db.Query(context, songQuery, setlist.ID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_setlist_songs")
	}
	defer rows.Close()

	for rows.Next() {
		var song SetlistSong
		if err := rows.Scan(&song.SongID, &song.Position); err != nil {
			return nil, dberr.Wrap(err, "scan_setlist_song")
		}
		setlist.Songs = append(setlist.Songs, song)
	}

	return setlist, nil
}

func (repository *PostgresRepository) UpdateTrendingScore(context context.Context, showID string, score float64) error {
	t := schema.CoreShow
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1`,
		t.Table, t.TrendingScore, t.UpdatedAt, t.ID)

	_, err := repository.db.Exec(context, query, showID, score)
	return dberr.Wrap(err, "update_trending_score")
}
