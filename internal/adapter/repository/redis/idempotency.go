package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/tradeledger/internal/usecase"
)

const idempotencyPrefix = "tradeledger:idempotency:"

// IdempotencyStore implements usecase.IdempotencyStore using Redis. Each key
// holds a JSON encoded usecase.IdempotentResponse.
type IdempotencyStore struct {
	client redis.UniversalClient
	prefix string
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client redis.UniversalClient) *IdempotencyStore {
	return &IdempotencyStore{
		client: client,
		prefix: idempotencyPrefix,
	}
}

// Reserve claims key with SET NX. When another request already owns the key
// the stored record is returned instead.
func (s *IdempotencyStore) Reserve(ctx context.Context, key, fingerprint string, ttl time.Duration) (*usecase.IdempotentResponse, bool, error) {
	fullKey := s.prefix + key

	pending, err := json.Marshal(usecase.IdempotentResponse{Fingerprint: fingerprint, Pending: true})
	if err != nil {
		return nil, false, err
	}

	claimed, err := s.client.SetNX(ctx, fullKey, pending, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if claimed {
		return nil, true, nil
	}

	raw, err := s.client.Get(ctx, fullKey).Bytes()
	if errors.Is(err, redis.Nil) {
		// Expired or released between SETNX and GET; try once more.
		claimed, err = s.client.SetNX(ctx, fullKey, pending, ttl).Result()
		if err != nil {
			return nil, false, err
		}
		if claimed {
			return nil, true, nil
		}
		raw, err = s.client.Get(ctx, fullKey).Bytes()
	}
	if err != nil {
		return nil, false, err
	}

	var existing usecase.IdempotentResponse
	if err := json.Unmarshal(raw, &existing); err != nil {
		return nil, false, fmt.Errorf("decode idempotency record %q: %w", key, err)
	}

	return &existing, false, nil
}

// Complete stores the final response for key.
func (s *IdempotencyStore) Complete(ctx context.Context, key string, resp usecase.IdempotentResponse, ttl time.Duration) error {
	resp.Pending = false

	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, s.prefix+key, raw, ttl).Err()
}

// Release deletes the reservation.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
