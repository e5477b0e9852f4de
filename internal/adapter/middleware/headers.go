package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	id32 "community-lending/pkg/id"
)

// rejection is a 4xx answered before the handler runs.
type rejection struct {
	status int
	code   string
	msg    string
}

func reject(code, msg string) *rejection {
	return &rejection{status: http.StatusBadRequest, code: code, msg: msg}
}

type requestHeaders struct {
	requestID string
	requestAt time.Time
	userID    string
}

func parseHeaders(h http.Header, now time.Time, skew time.Duration) (requestHeaders, *rejection) {
	var out requestHeaders

	out.requestID = strings.TrimSpace(h.Get(HeaderRequestID))
	if out.requestID == "" {
		return out, reject("missing_request_id", "missing "+HeaderRequestID)
	}
	if !validRequestID(out.requestID) {
		return out, reject("invalid_request_id", "invalid "+HeaderRequestID+" format")
	}

	at, err := parseRequestAt(h.Get(HeaderRequestAt))
	if err != nil {
		return out, reject("invalid_request_at", err.Error())
	}
	if at.Before(now.Add(-skew)) || at.After(now.Add(skew)) {
		return out, reject("request_at_skewed", HeaderRequestAt+" too skewed")
	}
	out.requestAt = at

	out.userID = strings.TrimSpace(h.Get(HeaderUserID))
	if out.userID == "" {
		return out, reject("missing_user_id", "missing "+HeaderUserID)
	}
	if !id32.Valid(out.userID) {
		return out, reject("invalid_user_id", "invalid "+HeaderUserID)
	}
	return out, nil
}

// validRequestID accepts a lowercase RFC 4122 uuid (v1-v5) or a 32-char hex id.
func validRequestID(s string) bool {
	if id32.Valid(s) {
		return true
	}
	if len(s) != 36 || s != strings.ToLower(s) {
		return false
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	return u.Variant() == uuid.RFC4122 && u.Version() >= 1 && u.Version() <= 5
}

// parseRequestAt accepts epoch seconds, epoch milliseconds, or RFC3339 with a
// zone. Naive local timestamps are rejected.
func parseRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.Errorf("missing %s", HeaderRequestAt)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errors.Errorf("%s must be epoch (s/ms) or RFC3339 with timezone", HeaderRequestAt)
}
