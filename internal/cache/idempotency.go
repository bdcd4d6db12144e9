// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// idempotency.go provides a Valkey-backed record of client idempotency keys.
// A key is reserved while its request runs, marked done when the request
// succeeds, and released when it fails so the client may retry.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// idempotencyKeyPrefix is the Valkey key prefix for idempotency records.
	idempotencyKeyPrefix = "idem:"

	// DefaultIdempotencyTTL is how long a reserved or completed key is kept.
	DefaultIdempotencyTTL = 60 * time.Second

	stateInProgress = "0"
	stateDone       = "1"
)

// KeyState describes what Reserve found for a key.
type KeyState int

const (
	// KeyReserved means the caller now owns the key and should run the request.
	KeyReserved KeyState = iota
	// KeyInProgress means an earlier request with the same key is still running.
	KeyInProgress
	// KeyDone means an earlier request with the same key already succeeded.
	KeyDone
)

// IdempotencyStore manages idempotency keys in Valkey.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore creates a key store backed by the given Valkey client.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl == 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Reserve atomically claims key. When the key is already known it reports
// whether the earlier request is still running or has finished.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string) (KeyState, error) {
	ok, err := s.client.SetNX(ctx, idempotencyKeyPrefix+key, stateInProgress, s.ttl).Result()
	if err != nil {
		return 0, fmt.Errorf("reserve idempotency key: %w", err)
	}
	if ok {
		return KeyReserved, nil
	}

	val, err := s.client.Get(ctx, idempotencyKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		// Expired between SETNX and GET; treat as still running.
		return KeyInProgress, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read idempotency key: %w", err)
	}
	if val == stateDone {
		return KeyDone, nil
	}
	return KeyInProgress, nil
}

// Complete marks a reserved key as done without extending its TTL. A key
// that already expired stays gone, so it can never become permanent.
func (s *IdempotencyStore) Complete(ctx context.Context, key string) error {
	err := s.client.SetArgs(ctx, idempotencyKeyPrefix+key, stateDone, redis.SetArgs{Mode: "XX", KeepTTL: true}).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("complete idempotency key: %w", err)
	}
	return nil
}

// Release forgets a key so the client can retry with it.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, idempotencyKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}
