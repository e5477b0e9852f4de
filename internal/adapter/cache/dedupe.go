package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupePrefix = "notify:dedupe:"

// DedupeStore remembers notification keys for a window using SETNX.
type DedupeStore struct{ rdb *redis.Client }

func NewDedupeStore(rdb *redis.Client) *DedupeStore { return &DedupeStore{rdb: rdb} }

// FirstSeen reports whether key was unseen, marking it seen for ttl.
func (s *DedupeStore) FirstSeen(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.rdb.SetNX(ctx, dedupePrefix+key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
}
