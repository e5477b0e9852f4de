package contribution

import (
	"time"

	"github.com/shopspring/decimal"

	domain "community-lending/internal/domain/contribution"
)

// LimitInput carries a full limit definition; a nil bound is unbounded.
type LimitInput struct {
	GoalID              string           `json:"goal_id" validate:"required,max=32"`
	FixedAmount         *decimal.Decimal `json:"fixed_amount"`
	MinimumAmount       *decimal.Decimal `json:"minimum_amount"`
	MaximumAmount       *decimal.Decimal `json:"maximum_amount"`
	MaximumTotalPerUser *decimal.Decimal `json:"maximum_total_per_user"`
	IsActive            *bool            `json:"is_active"`
}

// Validation is the outcome of checking one proposed contribution.
type Validation struct {
	Allowed    bool              `json:"allowed"`
	GoalID     string            `json:"goal_id"`
	Amount     decimal.Decimal   `json:"amount"`
	PriorTotal decimal.Decimal   `json:"prior_total"`
	LimitID    string            `json:"limit_id,omitempty"`
	Violation  *domain.Violation `json:"violation,omitempty"`
}

// Receipt is returned for a recorded contribution.
type Receipt struct {
	Contribution  domain.Contribution `json:"contribution"`
	GoalTotal     decimal.Decimal     `json:"goal_total"`
	LifetimeTotal decimal.Decimal     `json:"lifetime_total"`
	EarnedRewards []domain.Reward     `json:"earned_rewards"`
	RecordedAt    time.Time           `json:"recorded_at"`
}
