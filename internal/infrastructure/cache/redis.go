package cache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

type options struct {
	password    string
	pingTimeout time.Duration
}

type Option func(*options)

func WithPassword(p string) Option { return func(o *options) { o.password = p } }

// WithPingTimeout bounds the connectivity check done by OpenRedis.
func WithPingTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.pingTimeout = d
		}
	}
}

// OpenRedis connects to addr/db and fails fast when the server is unreachable.
func OpenRedis(addr string, db int, opts ...Option) (*redis.Client, error) {
	o := options{pingTimeout: 5 * time.Second}
	for _, fn := range opts {
		fn(&o)
	}

	r := redis.NewClient(&redis.Options{Addr: addr, DB: db, Password: o.password})
	ctx, cancel := context.WithTimeout(context.Background(), o.pingTimeout)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		_ = r.Close()
		return nil, errors.Wrapf(err, "redis ping %s", addr)
	}
	return r, nil
}
