package song

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

func songColumns() string {
	t := schema.CoreSong
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
		t.ID, t.ArtistID, t.ProviderTrackID, t.Title, t.TitleKey, t.Album,
		t.DurationMS, t.Popularity, t.CreatedAt, t.UpdatedAt,
	)
}

func scanSong(row interface{ Scan(...any) error }) (*Song, error) {
	s := &Song{}
	err := row.Scan(
		&s.ID, &s.ArtistID, &s.ProviderTrackID, &s.Title, &s.TitleKey, &s.Album,
		&s.DurationMS, &s.Popularity, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (repository *PostgresRepository) ListSongs(context context.Context, f Filter, limit, offset int) ([]*Song, int, error) {
	t := schema.CoreSong
	query := fmt.Sprintf(`SELECT %s FROM %s`, songColumns(), t.Table)
	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s`, t.Table)

	clauses := ""
	args := []any{}

	if f.ArtistID != "" {
		args = append(args, f.ArtistID)
		clauses = fmt.Sprintf(" WHERE %s = $%d", t.ArtistID, len(args))
	}
	if f.Query != "" {
		connector := " WHERE"
		if clauses != "" {
			connector = " AND"
		}
		args = append(args, "%"+f.Query+"%")
		clauses += fmt.Sprintf("%s %s ILIKE $%d", connector, t.Title, len(args))
	}

	query += clauses
	countQuery += clauses
	countArgs := append([]any{}, args...)

	query += fmt.Sprintf(" ORDER BY %s DESC, %s ASC LIMIT $%d OFFSET $%d",
		t.Popularity, t.Title, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	var total int
	if err := repository.db.QueryRow(context, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_songs")
	}

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_songs")
	}
	defer rows.Close()

	var songs []*Song
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_song")
		}
		songs = append(songs, s)
	}

	return songs, total, nil
}

func (repository *PostgresRepository) GetSong(context context.Context, id string) (*Song, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		songColumns(), schema.CoreSong.Table, schema.CoreSong.ID)

	s, err := scanSong(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "get_song")
	}
	return s, nil
}

// UpsertSong mirrors the show flow: exact provider track ID match first, then
// (artist, title key), then insert. A stored row with a different provider
// track ID on the same title key is a natural-key conflict.
func (repository *PostgresRepository) UpsertSong(context context.Context, s *Song) (string, error) {
	t := schema.CoreSong

	// 1. Exact provider-track match.
	if s.ProviderTrackID != nil {
		query := fmt.Sprintf(`
			UPDATE %s SET
				%s = COALESCE(NULLIF($2, ''), %s),
				%s = COALESCE(NULLIF($3, ''), %s),
				%s = COALESCE(NULLIF($4, ''), %s),
				%s = CASE WHEN $5 > 0 THEN $5 ELSE %s END,
				%s = $6,
				%s = NOW()
			WHERE %s = $1
			RETURNING %s
		`,
			t.Table,
			t.Title, t.Title,
			t.TitleKey, t.TitleKey,
			t.Album, t.Album,
			t.DurationMS, t.DurationMS,
			t.Popularity,
			t.UpdatedAt,
			t.ProviderTrackID,
			t.ID,
		)

		var id string
		err := repository.db.QueryRow(context, query,
			*s.ProviderTrackID, s.Title, s.TitleKey, s.Album, s.DurationMS, s.Popularity,
		).Scan(&id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return "", dberr.Wrap(err, "upsert_song_by_provider_track")
		}
	}

	// 2. Natural-key match on (artist, title key).
	lookup := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1 AND %s = $2`,
		t.ID, t.ProviderTrackID, t.Table, t.ArtistID, t.TitleKey)

	var existingID string
	var existingTrackID *string
	err := repository.db.QueryRow(context, lookup, s.ArtistID, s.TitleKey).Scan(&existingID, &existingTrackID)
	switch {
	case err == nil:
		if existingTrackID != nil && s.ProviderTrackID != nil && *existingTrackID != *s.ProviderTrackID {
			return "", apperr.Conflict("Song natural key maps to a different provider track")
		}
		return repository.mergeSong(context, existingID, s)
	case errors.Is(err, pgx.ErrNoRows):
		// fall through to insert
	default:
		return "", dberr.Wrap(err, "lookup_song_natural_key")
	}

	// 3. Insert fresh row.
	insert := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING %s
	`,
		t.Table, t.ID, t.ArtistID, t.ProviderTrackID, t.Title, t.TitleKey, t.Album,
		t.DurationMS, t.Popularity, t.CreatedAt, t.UpdatedAt,
		t.ID,
	)

	var id string
	err = repository.db.QueryRow(context, insert,
		uuidv7.New(), s.ArtistID, s.ProviderTrackID, s.Title, s.TitleKey, s.Album,
		s.DurationMS, s.Popularity,
	).Scan(&id)
	if err != nil {
		return "", dberr.Wrap(err, "insert_song")
	}
	return id, nil
}

func (repository *PostgresRepository) mergeSong(context context.Context, id string, s *Song) (string, error) {
	t := schema.CoreSong
	query := fmt.Sprintf(`
		UPDATE %s SET
			%s = COALESCE(%s, $2),
			%s = COALESCE(NULLIF($3, ''), %s),
			%s = COALESCE(NULLIF($4, ''), %s),
			%s = CASE WHEN $5 > 0 THEN $5 ELSE %s END,
			%s = $6,
			%s = NOW()
		WHERE %s = $1
	`,
		t.Table,
		t.ProviderTrackID, t.ProviderTrackID,
		t.Title, t.Title,
		t.Album, t.Album,
		t.DurationMS, t.DurationMS,
		t.Popularity,
		t.UpdatedAt,
		t.ID,
	)

	_, err := repository.db.Exec(context, query,
		id, s.ProviderTrackID, s.Title, s.Album, s.DurationMS, s.Popularity,
	)
	if err != nil {
		return "", dberr.Wrap(err, "merge_song")
	}
	return id, nil
}

func (repository *PostgresRepository) TopSongs(context context.Context, artistID string, limit int) ([]*Song, error) {
	t := schema.CoreSong
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s DESC, %s ASC LIMIT $2`,
		songColumns(), t.Table, t.ArtistID, t.Popularity, t.Title)

	rows, err := repository.db.Query(context, query, artistID, limit)
	if err != nil {
		return nil, dberr.Wrap(err, "top_songs")
	}
	defer rows.Close()

	var songs []*Song
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_song")
		}
		songs = append(songs, s)
	}

	return songs, nil
}
