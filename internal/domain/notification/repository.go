package notification

import "context"

type Repository interface {
	// Create persists n and returns its public id.
	Create(ctx context.Context, n *Notification) (string, error)
	ListByUserID(ctx context.Context, userID string) ([]Notification, error)
}
