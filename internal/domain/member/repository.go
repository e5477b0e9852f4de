package member

import "context"

type Repository interface {
	GetByUserID(ctx context.Context, userID string) (*User, error)
	ListActiveAdmins(ctx context.Context) ([]User, error)
}
