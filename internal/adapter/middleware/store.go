package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "idem:"

type recordState string

const (
	statePending recordState = "pending"
	stateDone    recordState = "done"
)

// record is what one (user, route, request id) slot holds in redis.
type record struct {
	State     recordState `json:"state"`
	Status    int         `json:"status,omitempty"`
	Body      []byte      `json:"body,omitempty"`
	BodyHash  string      `json:"body_hash"`
	RequestAt time.Time   `json:"request_at"`
	CreatedAt time.Time   `json:"created_at"`
}

func (r record) replayable() bool {
	return r.State == stateDone && r.Status != 0 && len(r.Body) > 0
}

func hashBody(b []byte) string { s := sha256.Sum256(b); return hex.EncodeToString(s[:]) }

func slotKey(method, route, userID, requestID string) string {
	return keyPrefix + strings.ToLower(method) + ":" + route + ":" + userID + ":" + requestID
}

type recordStore struct {
	rdb     *redis.Client
	lockTTL time.Duration
}

// reserve claims key for a pending request; false means someone already holds it.
func (s recordStore) reserve(ctx context.Context, key string, r record) (bool, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return false, errors.Wrap(err, "encode idempotency record")
	}
	ok, err := s.rdb.SetNX(ctx, key, payload, s.lockTTL).Result()
	return ok, errors.Wrap(err, "reserve idempotency key")
}

func (s recordStore) load(ctx context.Context, key string) (record, bool, error) {
	var r record
	v, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return r, false, nil
	}
	if err != nil {
		return r, false, errors.Wrap(err, "load idempotency key")
	}
	if err := json.Unmarshal(v, &r); err != nil {
		return r, false, errors.Wrap(err, "decode idempotency record")
	}
	return r, true, nil
}

func (s recordStore) finish(ctx context.Context, key string, r record, ttl time.Duration) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "encode idempotency record")
	}
	return errors.Wrap(s.rdb.Set(ctx, key, payload, ttl).Err(), "save idempotency key")
}

func (s recordStore) release(ctx context.Context, key string) error {
	return errors.Wrap(s.rdb.Del(ctx, key).Err(), "release idempotency key")
}
