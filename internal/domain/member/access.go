package member

import (
	"context"
	"errors"
	"strings"

	"community-lending/internal/domain/apperr"
)

var ErrNotAdmin = apperr.New(apperr.KindForbidden, "forbidden", "only active administrators can do this")

// RequireAdmin passes only for an active admin. Unknown ids are refused the
// same way as plain members.
func RequireAdmin(ctx context.Context, r Repository, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrNotAdmin.Withf("acting user id is required")
	}
	m, err := r.GetByUserID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return ErrNotAdmin
	}
	if err != nil {
		return apperr.Transient(err, "load acting user")
	}
	if m.Role != RoleAdmin || !m.IsActive {
		return ErrNotAdmin
	}
	return nil
}
