package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	HeaderRequestID = "Ax-Request-Id"
	HeaderRequestAt = "Ax-Request-At"
	HeaderUserID    = "Ax-User-Id"

	// ContextUserID holds the validated acting user id for downstream handlers.
	ContextUserID = "ax_user_id"
)

const (
	// pending slots expire on their own if the handler never finishes
	pendingTTL   = 60 * time.Second
	maxClockSkew = 10 * time.Minute
	storeTimeout = 2 * time.Second
)

type respRecorder struct {
	w    http.ResponseWriter
	buf  *bytes.Buffer
	code int
}

func (r *respRecorder) Header() http.Header { return r.w.Header() }
func (r *respRecorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.w.Write(b)
}
func (r *respRecorder) WriteHeader(statusCode int) { r.code = statusCode; r.w.WriteHeader(statusCode) }

func fail(c echo.Context, status int, code, msg string) error {
	return c.JSON(status, map[string]string{"error": msg, "code": code})
}

// IdempotencyMiddleware guards mutating routes. Each request carries
// Ax-Request-Id, Ax-Request-At and Ax-User-Id; the slot key is method + route
// + user + request id. A finished response is replayed for ttl, a repeat with
// a different body or while the first is running gets 409. 5xx responses are
// not stored so the client can retry.
func IdempotencyMiddleware(rdb *redis.Client, ttl time.Duration, logger zerolog.Logger) echo.MiddlewareFunc {
	logger = logger.With().Str("component", "idempotency").Logger()
	store := recordStore{rdb: rdb, lockTTL: pendingTTL}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			hdr, rej := parseHeaders(req.Header, time.Now().UTC(), maxClockSkew)
			if rej != nil {
				return fail(c, rej.status, rej.code, rej.msg)
			}
			c.Set(ContextUserID, hdr.userID)

			var body []byte
			if req.Body != nil {
				body, _ = io.ReadAll(req.Body)
			}
			req.Body = io.NopCloser(bytes.NewReader(body))
			hash := hashBody(body)

			key := slotKey(req.Method, c.Path(), hdr.userID, hdr.requestID)
			log := logger.With().Str("key", key).Logger()

			ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
			defer cancel()

			ok, err := store.reserve(ctx, key, record{
				State:     statePending,
				BodyHash:  hash,
				RequestAt: hdr.requestAt,
				CreatedAt: time.Now().UTC(),
			})
			if err != nil {
				log.Error().Err(err).Msg("idempotency store unavailable")
				return fail(c, http.StatusServiceUnavailable, "store_unavailable", "idempotency store unavailable")
			}
			if !ok {
				return answerDuplicate(ctx, c, store, key, hash, log)
			}

			rec := &respRecorder{w: c.Response().Writer, buf: &bytes.Buffer{}, code: http.StatusOK}
			c.Response().Writer = rec
			if err := next(c); err != nil {
				c.Error(err)
			}

			// the request context may already be gone
			bg, done := context.WithTimeout(context.Background(), storeTimeout)
			defer done()

			if rec.code >= http.StatusInternalServerError {
				if err := store.release(bg, key); err != nil {
					log.Warn().Err(err).Msg("release idempotency key")
				}
				return nil
			}
			err = store.finish(bg, key, record{
				State:     stateDone,
				Status:    rec.code,
				Body:      rec.buf.Bytes(),
				BodyHash:  hash,
				RequestAt: hdr.requestAt,
				CreatedAt: time.Now().UTC(),
			}, ttl)
			if err != nil {
				log.Warn().Err(err).Msg("save idempotency key")
			}
			return nil
		}
	}
}

func answerDuplicate(ctx context.Context, c echo.Context, store recordStore, key, hash string, log zerolog.Logger) error {
	cur, found, err := store.load(ctx, key)
	if err != nil {
		log.Warn().Err(err).Msg("load idempotency key")
	}
	if found && cur.BodyHash != "" && cur.BodyHash != hash {
		return fail(c, http.StatusConflict, "request_id_reused", HeaderRequestID+" reused with different body")
	}
	if found && cur.replayable() {
		return c.Blob(cur.Status, echo.MIMEApplicationJSON, cur.Body)
	}
	return fail(c, http.StatusConflict, "request_in_progress", "request is already in progress")
}
