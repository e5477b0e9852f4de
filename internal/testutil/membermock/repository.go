package membermock

import (
	"context"

	domain "community-lending/internal/domain/member"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	GetByUserIDFn      func(ctx context.Context, userID string) (*domain.User, error)
	ListActiveAdminsFn func(ctx context.Context) ([]domain.User, error)
}

// Fixed returns a Repo serving users from memory.
func Fixed(users ...domain.User) *Repo {
	return &Repo{
		GetByUserIDFn: func(_ context.Context, userID string) (*domain.User, error) {
			for i := range users {
				if users[i].UserID == userID {
					u := users[i]
					return &u, nil
				}
			}
			return nil, domain.ErrNotFound
		},
		ListActiveAdminsFn: func(context.Context) ([]domain.User, error) {
			var out []domain.User
			for _, u := range users {
				if u.Role == domain.RoleAdmin && u.IsActive {
					out = append(out, u)
				}
			}
			return out, nil
		},
	}
}

func (m *Repo) GetByUserID(ctx context.Context, userID string) (*domain.User, error) {
	if m.GetByUserIDFn != nil {
		return m.GetByUserIDFn(ctx, userID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListActiveAdmins(ctx context.Context) ([]domain.User, error) {
	if m.ListActiveAdminsFn != nil {
		return m.ListActiveAdminsFn(ctx)
	}
	return nil, nil
}
