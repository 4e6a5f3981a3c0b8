package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/minhlq/setwave/internal/platform/apperr"
	"github.com/minhlq/setwave/internal/platform/constants"
)

// RedisStore keeps progress records as JSON values with a sliding expiry.
// Every Set re-applies the TTL, so a job only expires after going untouched
// for the full window.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func jobKey(artistID string) string {
	return constants.RedisPrefixImportJob + artistID
}

func (store *RedisStore) Get(context context.Context, artistID string) (*Status, error) {
	raw, err := store.client.Get(context, jobKey(artistID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperr.NotFound("Import job")
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("ingest: read progress record: %w", err))
	}

	status := &Status{}
	if err := json.Unmarshal(raw, status); err != nil {
		return nil, apperr.Internal(fmt.Errorf("ingest: decode progress record: %w", err))
	}
	return status, nil
}

func (store *RedisStore) Set(context context.Context, status *Status) error {
	raw, err := json.Marshal(status)
	if err != nil {
		return apperr.Internal(fmt.Errorf("ingest: encode progress record: %w", err))
	}

	ttl := constants.ImportStatusActiveTTL
	if status.Stage.Terminal() {
		ttl = constants.ImportStatusTerminalTTL
	}

	if err := store.client.Set(context, jobKey(status.ArtistID), raw, ttl).Err(); err != nil {
		return apperr.Internal(fmt.Errorf("ingest: write progress record: %w", err))
	}
	return nil
}
