package risk

import (
	"time"

	"github.com/shopspring/decimal"
)

type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// Policy holds the ceilings a tier can approve. A member's ceiling is the
// tier ceiling capped by what their contributions back:
// ColdStartCeiling + ContributionMultiplier × lifetime contributions.
type Policy struct {
	ColdStartCeiling       decimal.Decimal
	LowCeiling             decimal.Decimal
	MediumCeiling          decimal.Decimal
	ContributionMultiplier decimal.Decimal
}

func DefaultPolicy() Policy {
	return Policy{
		ColdStartCeiling:       decimal.NewFromInt(1000),
		LowCeiling:             decimal.NewFromInt(20000),
		MediumCeiling:          decimal.NewFromInt(5000),
		ContributionMultiplier: decimal.NewFromInt(3),
	}
}

// History is the snapshot of a member's record the score is computed from.
type History struct {
	DisbursedLoans     int
	TotalBorrowed      decimal.Decimal
	TotalRepayable     decimal.Decimal
	TotalRepaid        decimal.Decimal
	MissedPayments     int
	ContributionMonths int
	TotalContributions decimal.Decimal
}

// ColdStart reports a member with nothing to score on.
func (h History) ColdStart() bool {
	return h.DisbursedLoans == 0 && h.ContributionMonths == 0 && !h.TotalContributions.IsPositive()
}

type Result struct {
	UserID          string           `json:"user_id"`
	Score           int              `json:"score"`
	Tier            Tier             `json:"tier"`
	ColdStart       bool             `json:"cold_start"`
	Eligible        bool             `json:"eligible"`
	MaxAmount       decimal.Decimal  `json:"max_amount"`
	RequestedAmount *decimal.Decimal `json:"requested_amount,omitempty"`
	Purpose         string           `json:"purpose,omitempty"`
	Reason          string           `json:"reason,omitempty"`
	History         History          `json:"history"`
	AssessedAt      time.Time        `json:"assessed_at"`
}
