package contribution

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"community-lending/internal/domain/apperr"
	"community-lending/pkg/money"
)

var (
	ErrLimitNotFound  = apperr.New(apperr.KindNotFound, "contribution_limit_not_found", "contribution limit not found")
	ErrLimitExists    = apperr.New(apperr.KindConflict, "contribution_limit_exists", "goal already has an active contribution limit")
	ErrLimitViolation = apperr.New(apperr.KindBusinessRule, "contribution_limit", "contribution violates the goal's limit")
	ErrInvalidLimit   = apperr.New(apperr.KindValidation, "invalid_contribution_limit", "invalid contribution limit")
	ErrInvalidAmount  = apperr.New(apperr.KindValidation, "invalid_amount", "contribution amount must be positive")
	ErrInvalidInput   = apperr.New(apperr.KindValidation, "invalid_input", "invalid input")
)

// Limit bounds contributions to one goal. When FixedAmount is set the
// minimum/maximum bounds are ignored.
type Limit struct {
	ID                  uint64              `gorm:"primaryKey;column:id" json:"-"`
	LimitID             string              `gorm:"size:32;uniqueIndex:ux_contribution_limits_limit_id" json:"limit_id"`
	GoalID              string              `gorm:"size:32;index:idx_contribution_limits_goal_active" json:"goal_id"`
	FixedAmount         decimal.NullDecimal `gorm:"type:decimal(18,2)" json:"fixed_amount"`
	MinimumAmount       decimal.NullDecimal `gorm:"type:decimal(18,2)" json:"minimum_amount"`
	MaximumAmount       decimal.NullDecimal `gorm:"type:decimal(18,2)" json:"maximum_amount"`
	MaximumTotalPerUser decimal.NullDecimal `gorm:"type:decimal(18,2)" json:"maximum_total_per_user"`
	IsActive            bool                `gorm:"not null;index:idx_contribution_limits_goal_active" json:"is_active"`
	CreatedAt           time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt           gorm.DeletedAt      `gorm:"index" json:"-"`
}

func (Limit) TableName() string { return "contribution_limits" }

type Rule string

const (
	RuleFixed     Rule = "fixed_amount"
	RuleMinimum   Rule = "minimum_amount"
	RuleMaximum   Rule = "maximum_amount"
	RuleUserTotal Rule = "maximum_total_per_user"
)

type Violation struct {
	Rule    Rule            `json:"rule"`
	Limit   decimal.Decimal `json:"limit"`
	Message string          `json:"message"`
}

// Check validates amount against l given what the user already contributed
// to the goal. A nil result means the contribution is allowed.
func (l *Limit) Check(amount, priorTotal decimal.Decimal) *Violation {
	if l.FixedAmount.Valid {
		if !amount.Equal(l.FixedAmount.Decimal) {
			return &Violation{Rule: RuleFixed, Limit: l.FixedAmount.Decimal,
				Message: fmt.Sprintf("contribution must be exactly %s", money.Format(l.FixedAmount.Decimal))}
		}
	} else {
		if l.MinimumAmount.Valid && amount.LessThan(l.MinimumAmount.Decimal) {
			return &Violation{Rule: RuleMinimum, Limit: l.MinimumAmount.Decimal,
				Message: fmt.Sprintf("contribution must be at least %s", money.Format(l.MinimumAmount.Decimal))}
		}
		if l.MaximumAmount.Valid && amount.GreaterThan(l.MaximumAmount.Decimal) {
			return &Violation{Rule: RuleMaximum, Limit: l.MaximumAmount.Decimal,
				Message: fmt.Sprintf("contribution must be at most %s", money.Format(l.MaximumAmount.Decimal))}
		}
	}
	if l.MaximumTotalPerUser.Valid && priorTotal.Add(amount).GreaterThan(l.MaximumTotalPerUser.Decimal) {
		left := l.MaximumTotalPerUser.Decimal.Sub(priorTotal)
		if left.IsNegative() {
			left = decimal.Zero
		}
		return &Violation{Rule: RuleUserTotal, Limit: l.MaximumTotalPerUser.Decimal,
			Message: fmt.Sprintf("total contributions to this goal may not exceed %s (%s left)",
				money.Format(l.MaximumTotalPerUser.Decimal), money.Format(left))}
	}
	return nil
}

// Validate rejects a limit no contribution could ever satisfy.
func (l *Limit) Validate() error {
	if strings.TrimSpace(l.GoalID) == "" {
		return ErrInvalidLimit.Withf("goal id is required")
	}
	bounds := []struct {
		name string
		v    decimal.NullDecimal
	}{
		{"fixed_amount", l.FixedAmount},
		{"minimum_amount", l.MinimumAmount},
		{"maximum_amount", l.MaximumAmount},
		{"maximum_total_per_user", l.MaximumTotalPerUser},
	}
	for _, b := range bounds {
		if b.v.Valid && (!money.IsPositive(b.v.Decimal) || !money.IsCents(b.v.Decimal)) {
			return ErrInvalidLimit.Withf("%s must be positive with at most 2 decimals, got %s", b.name, b.v.Decimal)
		}
	}
	if !l.FixedAmount.Valid && l.MinimumAmount.Valid && l.MaximumAmount.Valid &&
		l.MinimumAmount.Decimal.GreaterThan(l.MaximumAmount.Decimal) {
		return ErrInvalidLimit.Withf("minimum_amount %s is above maximum_amount %s",
			money.Format(l.MinimumAmount.Decimal), money.Format(l.MaximumAmount.Decimal))
	}
	if l.FixedAmount.Valid && l.MaximumTotalPerUser.Valid &&
		l.FixedAmount.Decimal.GreaterThan(l.MaximumTotalPerUser.Decimal) {
		return ErrInvalidLimit.Withf("fixed_amount %s is above maximum_total_per_user %s",
			money.Format(l.FixedAmount.Decimal), money.Format(l.MaximumTotalPerUser.Decimal))
	}
	return nil
}

// Reward is reference data: crossing Threshold in lifetime contributions
// while the reward is active earns RewardAmount.
type Reward struct {
	ID           uint64          `gorm:"primaryKey;column:id" json:"-"`
	RewardID     string          `gorm:"size:32;uniqueIndex:ux_contribution_rewards_reward_id" json:"reward_id"`
	Name         string          `gorm:"size:255" json:"name"`
	Description  string          `gorm:"type:text" json:"description"`
	Threshold    decimal.Decimal `gorm:"type:decimal(18,2)" json:"threshold"`
	RewardAmount decimal.Decimal `gorm:"type:decimal(18,2)" json:"reward_amount"`
	RewardType   string          `gorm:"size:32" json:"reward_type"`
	ValidFrom    time.Time       `json:"valid_from"`
	ValidUntil   *time.Time      `json:"valid_until,omitempty"`
	IsActive     bool            `gorm:"not null" json:"is_active"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Reward) TableName() string { return "contribution_rewards" }

// ActiveAt reports whether the reward's window covers at.
func (r *Reward) ActiveAt(at time.Time) bool {
	if !r.IsActive || at.Before(r.ValidFrom) {
		return false
	}
	return r.ValidUntil == nil || !at.After(*r.ValidUntil)
}

// CrossedBy reports whether moving a lifetime total from before to after
// crosses the reward threshold.
func (r *Reward) CrossedBy(before, after decimal.Decimal) bool {
	return before.LessThan(r.Threshold) && !after.LessThan(r.Threshold)
}

type Contribution struct {
	ID             uint64          `gorm:"primaryKey;column:id" json:"-"`
	ContributionID string          `gorm:"size:32;uniqueIndex:ux_contributions_contribution_id" json:"contribution_id"`
	UserID         string          `gorm:"size:32;index:idx_contributions_user_goal" json:"user_id"`
	GoalID         string          `gorm:"size:32;index:idx_contributions_user_goal" json:"goal_id"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,2)" json:"amount"`
	ContributedAt  time.Time       `gorm:"index" json:"contributed_at"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (Contribution) TableName() string { return "contributions" }
