package artist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minhlq/setwave/internal/platform/database/schema"
	"github.com/minhlq/setwave/internal/platform/dberr"
	"github.com/minhlq/setwave/internal/provider"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// artistColumns is the SELECT list shared by all artist reads.
func artistColumns() string {
	t := schema.CoreArtist
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
		t.ID, t.Name, t.NameKey, t.ImageURL, t.Genres, t.MusicBrainzID,
		t.TrendingScore, t.LastSyncedAt, t.CreatedAt, t.UpdatedAt,
	)
}

func scanArtist(row interface{ Scan(...any) error }) (*Artist, error) {
	a := &Artist{}
	err := row.Scan(
		&a.ID, &a.Name, &a.NameKey, &a.ImageURL, &a.Genres, &a.MusicBrainzID,
		&a.TrendingScore, &a.LastSyncedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (repository *PostgresRepository) ListArtists(context context.Context, f Filter, limit, offset int) ([]*Artist, int, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s`, artistColumns(), schema.CoreArtist.Table)
	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s`, schema.CoreArtist.Table)

	args := []any{}
	clauses := []string{}

	if f.Query != "" {
		clauses = append(clauses, fmt.Sprintf("(%s ILIKE $%d OR %s ILIKE $%d)",
			schema.CoreArtist.Name, len(args)+1, schema.CoreArtist.NameKey, len(args)+1))
		args = append(args, "%"+f.Query+"%")
	}
	if len(f.Genres) > 0 {
		clauses = append(clauses, fmt.Sprintf("%s && $%d", schema.CoreArtist.Genres, len(args)+1))
		args = append(args, f.Genres)
	}

	if len(clauses) > 0 {
		filter := " WHERE " + strings.Join(clauses, " AND ")
		query += filter
		countQuery += filter
	}
	countArgs := append([]any{}, args...)

	query += fmt.Sprintf(" ORDER BY %s DESC, %s ASC LIMIT $%d OFFSET $%d",
		schema.CoreArtist.TrendingScore, schema.CoreArtist.Name, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	var total int
	if err := repository.db.QueryRow(context, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_artists")
	}

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_artists")
	}
	defer rows.Close()

	var artists []*Artist
	for rows.Next() {
		a, err := scanArtist(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_artist")
		}
		artists = append(artists, a)
	}

	return artists, total, nil
}

func (repository *PostgresRepository) GetArtist(context context.Context, id string) (*Artist, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		artistColumns(), schema.CoreArtist.Table, schema.CoreArtist.ID)

	a, err := scanArtist(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "get_artist")
	}
	return a, nil
}

// GetArtistByProviderID resolves a canonical artist through the identifier
// join table. This is the first, exact step of identity resolution.
func (repository *PostgresRepository) GetArtistByProviderID(context context.Context, providerName provider.Name, nativeID string) (*Artist, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s a
		JOIN %s x ON x.%s = a.%s
		WHERE x.%s = $1 AND x.%s = $2
	`,
		artistColumns(),
		schema.CoreArtist.Table,
		schema.CoreExternalIdentifier.Table, schema.CoreExternalIdentifier.ArtistID, schema.CoreArtist.ID,
		schema.CoreExternalIdentifier.Provider, schema.CoreExternalIdentifier.NativeID,
	)

	a, err := scanArtist(repository.db.QueryRow(context, query, string(providerName), nativeID))
	if err != nil {
		return nil, dberr.Wrap(err, "get_artist_by_provider_id")
	}
	return a, nil
}

// FindArtistsByNameKey returns all canonical artists sharing a normalized
// name key. Collisions are expected; callers disambiguate by provider ID.
func (repository *PostgresRepository) FindArtistsByNameKey(context context.Context, nameKey string) ([]*Artist, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s ASC`,
		artistColumns(), schema.CoreArtist.Table, schema.CoreArtist.NameKey, schema.CoreArtist.CreatedAt)

	rows, err := repository.db.Query(context, query, nameKey)
	if err != nil {
		return nil, dberr.Wrap(err, "find_artists_by_name_key")
	}
	defer rows.Close()

	var artists []*Artist
	for rows.Next() {
		a, err := scanArtist(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_artist")
		}
		artists = append(artists, a)
	}

	return artists, nil
}

func (repository *PostgresRepository) CreateArtist(context context.Context, a *Artist) error {
	t := schema.CoreArtist
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING %s, %s
	`,
		t.Table, t.ID, t.Name, t.NameKey, t.ImageURL, t.Genres, t.MusicBrainzID,
		t.CreatedAt, t.UpdatedAt,
		t.CreatedAt, t.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		a.ID, a.Name, a.NameKey, a.ImageURL, a.Genres, a.MusicBrainzID,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	return dberr.Wrap(err, "create_artist")
}

func (repository *PostgresRepository) UpdateArtist(context context.Context, a *Artist) error {
	t := schema.CoreArtist
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		t.Table, t.Name, t.NameKey, t.ImageURL, t.Genres, t.MusicBrainzID, t.UpdatedAt,
		t.ID,
		t.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		a.ID, a.Name, a.NameKey, a.ImageURL, a.Genres, a.MusicBrainzID,
	).Scan(&a.UpdatedAt)
	return dberr.Wrap(err, "update_artist")
}

// AttachIdentifier creates the provider link, or upgrades its confidence if
// it already exists. Confidence never decreases and links are never deleted.
func (repository *PostgresRepository) AttachIdentifier(context context.Context, identifier *ExternalIdentifier) error {
	t := schema.CoreExternalIdentifier
	query := fmt.Sprintf(`
		INSERT INTO %s AS x (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (%s, %s) DO UPDATE SET
			%s = GREATEST(x.%s, EXCLUDED.%s),
			%s = NOW()
	`,
		t.Table, t.ArtistID, t.Provider, t.NativeID, t.Confidence, t.CreatedAt, t.UpdatedAt,
		t.Provider, t.NativeID,
		t.Confidence, t.Confidence, t.Confidence,
		t.UpdatedAt,
	)

	_, err := repository.db.Exec(context, query,
		identifier.ArtistID, string(identifier.Provider), identifier.NativeID, identifier.Confidence,
	)
	return dberr.Wrap(err, "attach_identifier")
}

func (repository *PostgresRepository) ListIdentifiers(context context.Context, artistID string) ([]*ExternalIdentifier, error) {
	t := schema.CoreExternalIdentifier
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s ASC
	`,
		t.ArtistID, t.Provider, t.NativeID, t.Confidence, t.CreatedAt, t.UpdatedAt,
		t.Table, t.ArtistID, t.Provider,
	)

	rows, err := repository.db.Query(context, query, artistID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_identifiers")
	}
	defer rows.Close()

	var identifiers []*ExternalIdentifier
	for rows.Next() {
		identifier := &ExternalIdentifier{}
		var providerName string
		if err := rows.Scan(
			&identifier.ArtistID, &providerName, &identifier.NativeID,
			&identifier.Confidence, &identifier.CreatedAt, &identifier.UpdatedAt,
		); err != nil {
			return nil, dberr.Wrap(err, "scan_identifier")
		}
		identifier.Provider = provider.Name(providerName)
		identifiers = append(identifiers, identifier)
	}

	return identifiers, nil
}

func (repository *PostgresRepository) MarkSynced(context context.Context, artistID string, syncedAt time.Time) error {
	t := schema.CoreArtist
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1`,
		t.Table, t.LastSyncedAt, t.UpdatedAt, t.ID)

	cmd, err := repository.db.Exec(context, query, artistID, syncedAt)
	if err != nil {
		return dberr.Wrap(err, "mark_synced")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) UpdateTrendingScore(context context.Context, artistID string, score float64) error {
	t := schema.CoreArtist
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1`,
		t.Table, t.TrendingScore, t.UpdatedAt, t.ID)

	_, err := repository.db.Exec(context, query, artistID, score)
	return dberr.Wrap(err, "update_trending_score")
}
