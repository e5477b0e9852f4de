package contribution

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type LimitRepository interface {
	Create(ctx context.Context, l *Limit) error
	Save(ctx context.Context, l *Limit) error
	Delete(ctx context.Context, limitID string) error
	GetByLimitID(ctx context.Context, limitID string) (*Limit, error)
	// GetActiveByGoalID returns the most recently updated active limit.
	GetActiveByGoalID(ctx context.Context, goalID string) (*Limit, error)
	List(ctx context.Context) ([]Limit, error)
}

type Repository interface {
	Create(ctx context.Context, c *Contribution) error
	SumByUserAndGoal(ctx context.Context, userID, goalID string) (decimal.Decimal, error)
	SumByUser(ctx context.Context, userID string) (decimal.Decimal, error)
	ListByUserSince(ctx context.Context, userID string, since time.Time) ([]Contribution, error)
	Total(ctx context.Context) (decimal.Decimal, error)
}

type RewardRepository interface {
	Create(ctx context.Context, r *Reward) error
	ListActive(ctx context.Context, at time.Time) ([]Reward, error)
}
