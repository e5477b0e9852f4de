package notificationmock

import (
	"context"
	"fmt"
	"sync"

	domain "community-lending/internal/domain/notification"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository. With no
// CreateFn set it records every notification it is given.
type Repo struct {
	CreateFn       func(ctx context.Context, n *domain.Notification) (string, error)
	ListByUserIDFn func(ctx context.Context, userID string) ([]domain.Notification, error)

	mu      sync.Mutex
	Created []domain.Notification
}

func (m *Repo) Create(ctx context.Context, n *domain.Notification) (string, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, n)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.NotificationID == "" {
		n.NotificationID = fmt.Sprintf("N%031d", len(m.Created)+1)
	}
	m.Created = append(m.Created, *n)
	return n.NotificationID, nil
}

func (m *Repo) ListByUserID(ctx context.Context, userID string) ([]domain.Notification, error) {
	if m.ListByUserIDFn != nil {
		return m.ListByUserIDFn(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Notification
	for _, n := range m.Created {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

// Snapshot returns a copy of everything recorded so far.
func (m *Repo) Snapshot() []domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Notification(nil), m.Created...)
}
