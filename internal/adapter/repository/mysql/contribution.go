package mysql

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	contributionDomain "community-lending/internal/domain/contribution"
	"community-lending/pkg/id"
	"community-lending/pkg/money"
)

type ContributionLimitRepository struct{ db *gorm.DB }

func NewContributionLimitRepository(db *gorm.DB) *ContributionLimitRepository {
	return &ContributionLimitRepository{db: db}
}

func (r *ContributionLimitRepository) Create(ctx context.Context, l *contributionDomain.Limit) error {
	if l.LimitID == "" {
		l.LimitID = id.NewID32()
	}
	return translate(r.db.WithContext(ctx).Create(l).Error, contributionDomain.ErrLimitNotFound, "contribution_limits: create")
}

func (r *ContributionLimitRepository) Save(ctx context.Context, l *contributionDomain.Limit) error {
	return translate(r.db.WithContext(ctx).Save(l).Error, contributionDomain.ErrLimitNotFound, "contribution_limits: save")
}

// Delete soft-deletes the limit.
func (r *ContributionLimitRepository) Delete(ctx context.Context, limitID string) error {
	res := r.db.WithContext(ctx).Where("limit_id = ?", limitID).Delete(&contributionDomain.Limit{})
	if res.Error != nil {
		return translate(res.Error, contributionDomain.ErrLimitNotFound, "contribution_limits: delete")
	}
	if res.RowsAffected == 0 {
		return contributionDomain.ErrLimitNotFound
	}
	return nil
}

func (r *ContributionLimitRepository) GetByLimitID(ctx context.Context, limitID string) (*contributionDomain.Limit, error) {
	var out contributionDomain.Limit
	res := r.db.WithContext(ctx).Where("limit_id = ?", limitID).First(&out)
	if res.Error != nil {
		return nil, translate(res.Error, contributionDomain.ErrLimitNotFound, "contribution_limits: get by limit id")
	}
	return &out, nil
}

// GetActiveByGoalID breaks ties between several active limits by the most
// recent update.
func (r *ContributionLimitRepository) GetActiveByGoalID(ctx context.Context, goalID string) (*contributionDomain.Limit, error) {
	var out contributionDomain.Limit
	res := r.db.WithContext(ctx).
		Where("goal_id = ? AND is_active = ?", goalID, true).
		Order("updated_at DESC, id DESC").
		First(&out)
	if res.Error != nil {
		return nil, translate(res.Error, contributionDomain.ErrLimitNotFound, "contribution_limits: active by goal")
	}
	return &out, nil
}

func (r *ContributionLimitRepository) List(ctx context.Context) ([]contributionDomain.Limit, error) {
	var out []contributionDomain.Limit
	err := r.db.WithContext(ctx).Order("goal_id ASC, updated_at DESC, id DESC").Find(&out).Error
	return out, translate(err, contributionDomain.ErrLimitNotFound, "contribution_limits: list")
}

type ContributionRepository struct{ db *gorm.DB }

func NewContributionRepository(db *gorm.DB) *ContributionRepository {
	return &ContributionRepository{db: db}
}

func (r *ContributionRepository) Create(ctx context.Context, c *contributionDomain.Contribution) error {
	if c.ContributionID == "" {
		c.ContributionID = id.NewID32()
	}
	return translate(r.db.WithContext(ctx).Create(c).Error, contributionDomain.ErrLimitNotFound, "contributions: create")
}

func (r *ContributionRepository) sum(ctx context.Context, op string, query string, args ...any) (decimal.Decimal, error) {
	var sum decimal.Decimal
	q := r.db.WithContext(ctx).Model(&contributionDomain.Contribution{}).Select("COALESCE(SUM(amount), 0)")
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Row().Scan(&sum); err != nil {
		return decimal.Zero, translate(err, contributionDomain.ErrLimitNotFound, op)
	}
	return money.Round(sum), nil
}

func (r *ContributionRepository) SumByUserAndGoal(ctx context.Context, userID, goalID string) (decimal.Decimal, error) {
	return r.sum(ctx, "contributions: sum by user and goal", "user_id = ? AND goal_id = ?", userID, goalID)
}

func (r *ContributionRepository) SumByUser(ctx context.Context, userID string) (decimal.Decimal, error) {
	return r.sum(ctx, "contributions: sum by user", "user_id = ?", userID)
}

func (r *ContributionRepository) Total(ctx context.Context) (decimal.Decimal, error) {
	return r.sum(ctx, "contributions: total", "")
}

func (r *ContributionRepository) ListByUserSince(ctx context.Context, userID string, since time.Time) ([]contributionDomain.Contribution, error) {
	var out []contributionDomain.Contribution
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND contributed_at >= ?", userID, since.UTC()).
		Order("contributed_at ASC, id ASC").
		Find(&out).Error
	return out, translate(err, contributionDomain.ErrLimitNotFound, "contributions: list by user")
}

type RewardRepository struct{ db *gorm.DB }

func NewRewardRepository(db *gorm.DB) *RewardRepository { return &RewardRepository{db: db} }

func (r *RewardRepository) Create(ctx context.Context, rw *contributionDomain.Reward) error {
	if rw.RewardID == "" {
		rw.RewardID = id.NewID32()
	}
	return translate(r.db.WithContext(ctx).Create(rw).Error, contributionDomain.ErrLimitNotFound, "contribution_rewards: create")
}

func (r *RewardRepository) ListActive(ctx context.Context, at time.Time) ([]contributionDomain.Reward, error) {
	at = at.UTC()
	var out []contributionDomain.Reward
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND valid_from <= ? AND (valid_until IS NULL OR valid_until >= ?)", true, at, at).
		Order("threshold ASC, id ASC").
		Find(&out).Error
	return out, translate(err, contributionDomain.ErrLimitNotFound, "contribution_rewards: list active")
}
