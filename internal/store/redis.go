package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisPendingStore keeps pending changes in Redis with native
// expiry. The key TTL is the entry's own expiry plus Grace, so the
// entry is still readable shortly after the verification window closes
// and the gate can distinguish an expired code from a missing one.
type RedisPendingStore struct {
	rdb *redis.Client
}

// NewRedisPendingStore wraps an existing Redis client. The client must
// be non-nil; callers fall back to NewMemoryPendingStore when Redis is
// unavailable.
func NewRedisPendingStore(rdb *redis.Client) *RedisPendingStore {
	return &RedisPendingStore{rdb: rdb}
}

func pendingKey(tagID uint64, phone string) string {
	return fmt.Sprintf("otp:pending:%d:%s", tagID, phone)
}

// Put marshals the entry to JSON and SETs it with a TTL, replacing any
// previous entry for the same key.
func (s *RedisPendingStore) Put(ctx context.Context, tagID uint64, phone string, entry PendingChange) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal pending change: %w", err)
	}
	ttl := time.Until(entry.ExpiresAt) + Grace
	if ttl <= 0 {
		ttl = Grace
	}
	if err := s.rdb.Set(ctx, pendingKey(tagID, phone), body, ttl).Err(); err != nil {
		return fmt.Errorf("store pending change: %w", err)
	}
	return nil
}

// Get fetches and unmarshals the entry for (tagID, phone).
func (s *RedisPendingStore) Get(ctx context.Context, tagID uint64, phone string) (PendingChange, bool, error) {
	body, err := s.rdb.Get(ctx, pendingKey(tagID, phone)).Bytes()
	if errors.Is(err, redis.Nil) {
		return PendingChange{}, false, nil
	}
	if err != nil {
		return PendingChange{}, false, fmt.Errorf("load pending change: %w", err)
	}
	var entry PendingChange
	if err := json.Unmarshal(body, &entry); err != nil {
		return PendingChange{}, false, fmt.Errorf("decode pending change: %w", err)
	}
	return entry, true, nil
}

// Delete removes the entry; missing keys are ignored.
func (s *RedisPendingStore) Delete(ctx context.Context, tagID uint64, phone string) error {
	return s.rdb.Del(ctx, pendingKey(tagID, phone)).Err()
}
