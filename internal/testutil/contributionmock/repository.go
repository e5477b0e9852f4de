package contributionmock

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	domain "community-lending/internal/domain/contribution"
)

var (
	_ domain.LimitRepository  = (*LimitRepo)(nil)
	_ domain.Repository       = (*Repo)(nil)
	_ domain.RewardRepository = (*RewardRepo)(nil)
)

// LimitRepo is a function-backed mock that satisfies domain.LimitRepository.
type LimitRepo struct {
	CreateFn            func(ctx context.Context, l *domain.Limit) error
	SaveFn              func(ctx context.Context, l *domain.Limit) error
	DeleteFn            func(ctx context.Context, limitID string) error
	GetByLimitIDFn      func(ctx context.Context, limitID string) (*domain.Limit, error)
	GetActiveByGoalIDFn func(ctx context.Context, goalID string) (*domain.Limit, error)
	ListFn              func(ctx context.Context) ([]domain.Limit, error)
}

func (m *LimitRepo) Create(ctx context.Context, l *domain.Limit) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *LimitRepo) Save(ctx context.Context, l *domain.Limit) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *LimitRepo) Delete(ctx context.Context, limitID string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, limitID)
	}
	return nil
}

func (m *LimitRepo) GetByLimitID(ctx context.Context, limitID string) (*domain.Limit, error) {
	if m.GetByLimitIDFn != nil {
		return m.GetByLimitIDFn(ctx, limitID)
	}
	return nil, context.Canceled
}

func (m *LimitRepo) GetActiveByGoalID(ctx context.Context, goalID string) (*domain.Limit, error) {
	if m.GetActiveByGoalIDFn != nil {
		return m.GetActiveByGoalIDFn(ctx, goalID)
	}
	return nil, context.Canceled
}

func (m *LimitRepo) List(ctx context.Context) ([]domain.Limit, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, nil
}

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn           func(ctx context.Context, c *domain.Contribution) error
	SumByUserAndGoalFn func(ctx context.Context, userID, goalID string) (decimal.Decimal, error)
	SumByUserFn        func(ctx context.Context, userID string) (decimal.Decimal, error)
	ListByUserSinceFn  func(ctx context.Context, userID string, since time.Time) ([]domain.Contribution, error)
	TotalFn            func(ctx context.Context) (decimal.Decimal, error)
}

func (m *Repo) Create(ctx context.Context, c *domain.Contribution) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, c)
	}
	return nil
}

func (m *Repo) SumByUserAndGoal(ctx context.Context, userID, goalID string) (decimal.Decimal, error) {
	if m.SumByUserAndGoalFn != nil {
		return m.SumByUserAndGoalFn(ctx, userID, goalID)
	}
	return decimal.Zero, nil
}

func (m *Repo) SumByUser(ctx context.Context, userID string) (decimal.Decimal, error) {
	if m.SumByUserFn != nil {
		return m.SumByUserFn(ctx, userID)
	}
	return decimal.Zero, nil
}

func (m *Repo) ListByUserSince(ctx context.Context, userID string, since time.Time) ([]domain.Contribution, error) {
	if m.ListByUserSinceFn != nil {
		return m.ListByUserSinceFn(ctx, userID, since)
	}
	return nil, nil
}

func (m *Repo) Total(ctx context.Context) (decimal.Decimal, error) {
	if m.TotalFn != nil {
		return m.TotalFn(ctx)
	}
	return decimal.Zero, nil
}

// RewardRepo is a function-backed mock that satisfies domain.RewardRepository.
type RewardRepo struct {
	CreateFn     func(ctx context.Context, r *domain.Reward) error
	ListActiveFn func(ctx context.Context, at time.Time) ([]domain.Reward, error)
}

func (m *RewardRepo) Create(ctx context.Context, r *domain.Reward) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	return nil
}

func (m *RewardRepo) ListActive(ctx context.Context, at time.Time) ([]domain.Reward, error) {
	if m.ListActiveFn != nil {
		return m.ListActiveFn(ctx, at)
	}
	return nil, nil
}
