package contribution

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"community-lending/internal/domain/apperr"
	domain "community-lending/internal/domain/contribution"
	"community-lending/internal/domain/member"
	"community-lending/internal/domain/uow"
	"community-lending/internal/infrastructure/metrics"
	"community-lending/pkg/keylock"
	"community-lending/pkg/money"
)

type Usecase struct {
	limits        domain.LimitRepository
	contributions domain.Repository
	rewards       domain.RewardRepository
	members       member.Repository
	uow           uow.UnitOfWork
	log           zerolog.Logger
	metrics       *metrics.Metrics
	now           func() time.Time

	// serialises check-then-insert per member and goal
	locks keylock.Locker
}

func NewUsecase(limits domain.LimitRepository, contributions domain.Repository, rewards domain.RewardRepository,
	members member.Repository, log zerolog.Logger, m *metrics.Metrics) *Usecase {
	return &Usecase{
		limits:        limits,
		contributions: contributions,
		rewards:       rewards,
		members:       members,
		log:           log.With().Str("component", "contribution").Logger(),
		metrics:       m,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// WithUnitOfWork makes RecordContribution read totals and insert inside one
// transaction.
func (u *Usecase) WithUnitOfWork(w uow.UnitOfWork) *Usecase {
	u.uow = w
	return u
}

func (u *Usecase) inTx(ctx context.Context, fn func(ledger domain.Repository) error) error {
	if u.uow == nil {
		return fn(u.contributions)
	}
	return u.uow.WithinTx(ctx, func(r uow.Repos) error { return fn(r.Contributions) })
}

func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

// ValidateContribution checks amount against the goal's active limit. A goal
// without an active limit accepts any amount.
func (u *Usecase) ValidateContribution(ctx context.Context, goalID string, amount, priorTotal decimal.Decimal) (*Validation, error) {
	if err := validAmount(amount); err != nil {
		return nil, err
	}
	v := &Validation{Allowed: true, GoalID: goalID, Amount: amount, PriorTotal: priorTotal}
	l, err := u.limits.GetActiveByGoalID(ctx, goalID)
	switch {
	case errors.Is(err, domain.ErrLimitNotFound):
		u.countCheck("unrestricted")
		return v, nil
	case err != nil:
		return nil, apperr.Transient(err, "contribution: load active limit")
	}
	v.LimitID = l.LimitID
	if viol := l.Check(amount, priorTotal); viol != nil {
		v.Allowed = false
		v.Violation = viol
		u.countCheck("violation")
		return v, nil
	}
	u.countCheck("ok")
	return v, nil
}

// ValidateForUser is ValidateContribution with the member's prior total for
// the goal read from the ledger.
func (u *Usecase) ValidateForUser(ctx context.Context, userID, goalID string, amount decimal.Decimal) (*Validation, error) {
	if err := validAmount(amount); err != nil {
		return nil, err
	}
	prior, err := u.contributions.SumByUserAndGoal(ctx, userID, goalID)
	if err != nil {
		return nil, apperr.Transient(err, "contribution: sum prior contributions")
	}
	return u.ValidateContribution(ctx, goalID, amount, prior)
}

// RecordContribution validates and appends a contribution, and reports the
// active rewards whose threshold the member's lifetime total just crossed.
func (u *Usecase) RecordContribution(ctx context.Context, userID, goalID string, amount decimal.Decimal) (*Receipt, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(goalID) == "" {
		return nil, domain.ErrInvalidInput.Withf("user id and goal id are required")
	}
	if err := validAmount(amount); err != nil {
		return nil, err
	}

	unlock := u.locks.Lock(userID + ":" + goalID)
	defer unlock()

	var (
		v      *Validation
		before decimal.Decimal
		now    = u.now()
		c      = &domain.Contribution{UserID: userID, GoalID: goalID, Amount: amount, ContributedAt: now}
	)
	err := u.inTx(ctx, func(ledger domain.Repository) error {
		prior, err := ledger.SumByUserAndGoal(ctx, userID, goalID)
		if err != nil {
			return apperr.Transient(err, "contribution: sum prior contributions")
		}
		if v, err = u.ValidateContribution(ctx, goalID, amount, prior); err != nil {
			return err
		}
		if !v.Allowed {
			return domain.ErrLimitViolation.Withf("%s", v.Violation.Message)
		}
		if before, err = ledger.SumByUser(ctx, userID); err != nil {
			return apperr.Transient(err, "contribution: sum lifetime contributions")
		}
		if err := ledger.Create(ctx, c); err != nil {
			return apperr.Transient(err, "contribution: create")
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Transient(err, "contribution: record")
	}

	after := before.Add(amount)
	rec := &Receipt{
		Contribution:  *c,
		GoalTotal:     v.PriorTotal.Add(amount),
		LifetimeTotal: after,
		EarnedRewards: []domain.Reward{},
		RecordedAt:    now,
	}

	// rewards are informational; a failed lookup does not undo the contribution
	active, err := u.rewards.ListActive(ctx, now)
	if err != nil {
		u.log.Warn().Err(err).Str("user_id", userID).Msg("load active rewards")
		return rec, nil
	}
	for _, r := range active {
		if r.ActiveAt(now) && r.CrossedBy(before, after) {
			rec.EarnedRewards = append(rec.EarnedRewards, r)
		}
	}
	return rec, nil
}

func (u *Usecase) ListActiveRewards(ctx context.Context) ([]domain.Reward, error) {
	out, err := u.rewards.ListActive(ctx, u.now())
	if err != nil {
		return nil, apperr.Transient(err, "contribution: list rewards")
	}
	return out, nil
}

// CreateLimit refuses a second active limit for the same goal. Limit
// changes are reserved to active admins.
func (u *Usecase) CreateLimit(ctx context.Context, actorID string, in LimitInput) (*domain.Limit, error) {
	if err := member.RequireAdmin(ctx, u.members, actorID); err != nil {
		return nil, err
	}
	l := &domain.Limit{IsActive: true}
	apply(l, in)
	if err := l.Validate(); err != nil {
		return nil, err
	}
	if l.IsActive {
		if err := u.ensureNoOtherActive(ctx, l.GoalID, ""); err != nil {
			return nil, err
		}
	}
	if err := u.limits.Create(ctx, l); err != nil {
		return nil, apperr.Transient(err, "contribution: create limit")
	}
	return l, nil
}

// UpdateLimit replaces the limit's bounds with in.
func (u *Usecase) UpdateLimit(ctx context.Context, actorID, limitID string, in LimitInput) (*domain.Limit, error) {
	if err := member.RequireAdmin(ctx, u.members, actorID); err != nil {
		return nil, err
	}
	l, err := u.limits.GetByLimitID(ctx, limitID)
	if err != nil {
		return nil, apperr.Transient(err, "contribution: load limit")
	}
	apply(l, in)
	if err := l.Validate(); err != nil {
		return nil, err
	}
	if l.IsActive {
		if err := u.ensureNoOtherActive(ctx, l.GoalID, l.LimitID); err != nil {
			return nil, err
		}
	}
	if err := u.limits.Save(ctx, l); err != nil {
		return nil, apperr.Transient(err, "contribution: save limit")
	}
	return l, nil
}

func (u *Usecase) DeleteLimit(ctx context.Context, actorID, limitID string) error {
	if err := member.RequireAdmin(ctx, u.members, actorID); err != nil {
		return err
	}
	if err := u.limits.Delete(ctx, limitID); err != nil {
		return apperr.Transient(err, "contribution: delete limit")
	}
	u.log.Info().Str("limit_id", limitID).Str("actor_id", actorID).Msg("contribution limit deleted")
	return nil
}

func (u *Usecase) GetLimitByGoal(ctx context.Context, goalID string) (*domain.Limit, error) {
	l, err := u.limits.GetActiveByGoalID(ctx, goalID)
	if err != nil {
		return nil, apperr.Transient(err, "contribution: load active limit")
	}
	return l, nil
}

func (u *Usecase) ListLimits(ctx context.Context) ([]domain.Limit, error) {
	out, err := u.limits.List(ctx)
	if err != nil {
		return nil, apperr.Transient(err, "contribution: list limits")
	}
	return out, nil
}

func (u *Usecase) ensureNoOtherActive(ctx context.Context, goalID, selfID string) error {
	cur, err := u.limits.GetActiveByGoalID(ctx, goalID)
	switch {
	case errors.Is(err, domain.ErrLimitNotFound):
		return nil
	case err != nil:
		return apperr.Transient(err, "contribution: load active limit")
	case cur.LimitID != selfID:
		return domain.ErrLimitExists.Withf("goal %s already has active limit %s", goalID, cur.LimitID)
	}
	return nil
}

func (u *Usecase) countCheck(result string) {
	if u.metrics != nil {
		u.metrics.Contributions.WithLabelValues(result).Inc()
	}
}

func validAmount(amount decimal.Decimal) error {
	if !money.IsPositive(amount) || !money.IsCents(amount) {
		return domain.ErrInvalidAmount.Withf("contribution amount must be positive with at most 2 decimals, got %s", amount)
	}
	return nil
}

func apply(l *domain.Limit, in LimitInput) {
	l.GoalID = strings.TrimSpace(in.GoalID)
	l.FixedAmount = nullable(in.FixedAmount)
	l.MinimumAmount = nullable(in.MinimumAmount)
	l.MaximumAmount = nullable(in.MaximumAmount)
	l.MaximumTotalPerUser = nullable(in.MaximumTotalPerUser)
	if in.IsActive != nil {
		l.IsActive = *in.IsActive
	}
}

func nullable(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}
