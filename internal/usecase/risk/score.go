package risk

import (
	"fmt"

	"github.com/shopspring/decimal"

	"community-lending/pkg/money"
)

const (
	baseScore           = 50
	repaymentWeight     = 30
	missedPenalty       = 15
	monthBonus          = 2
	maxCountedMonths    = 12
	loanBonus           = 2
	maxCountedLoans     = 5
	volumeBonus         = 1
	volumeStep          = 1000
	maxCountedSteps     = 5
	lowTierThreshold    = 70
	mediumTierThreshold = 40
)

// Score is deterministic in h: missed payments only ever lower it, while
// contribution months and the number and value of disbursed loans only ever
// raise it. Each bonus is capped so borrowing more never outweighs repaying.
func Score(h History) int {
	s := baseScore
	if h.TotalRepayable.IsPositive() {
		ratio := h.TotalRepaid.Div(h.TotalRepayable)
		if ratio.GreaterThan(decimal.NewFromInt(1)) {
			ratio = decimal.NewFromInt(1)
		}
		s += int(ratio.Mul(decimal.NewFromInt(repaymentWeight)).IntPart())
	}
	s -= missedPenalty * h.MissedPayments
	months := h.ContributionMonths
	if months > maxCountedMonths {
		months = maxCountedMonths
	}
	s += monthBonus * months
	s += loanBonus * min(h.DisbursedLoans, maxCountedLoans)
	if h.TotalBorrowed.IsPositive() {
		steps := int(h.TotalBorrowed.Div(decimal.NewFromInt(volumeStep)).IntPart())
		s += volumeBonus * min(steps, maxCountedSteps)
	}
	switch {
	case s < 0:
		return 0
	case s > 100:
		return 100
	}
	return s
}

func TierFor(score int) Tier {
	switch {
	case score >= lowTierThreshold:
		return TierLow
	case score >= mediumTierThreshold:
		return TierMedium
	}
	return TierHigh
}

// Ceiling is the largest principal p will approve for h at tier.
func (p Policy) Ceiling(h History, tier Tier) decimal.Decimal {
	var limit decimal.Decimal
	switch tier {
	case TierLow:
		limit = p.LowCeiling
	case TierMedium:
		limit = p.MediumCeiling
	default:
		return decimal.Zero
	}
	backed := p.ColdStartCeiling.Add(h.TotalContributions.Mul(p.ContributionMultiplier))
	if backed.LessThan(limit) {
		limit = backed
	}
	return money.Round(limit)
}

// Evaluate scores h and, when amount is given, decides whether it can be
// approved.
func (p Policy) Evaluate(h History, amount *decimal.Decimal) Result {
	score := Score(h)
	tier := TierFor(score)
	res := Result{
		Score:     score,
		Tier:      tier,
		ColdStart: h.ColdStart(),
		MaxAmount: p.Ceiling(h, tier),
		History:   h,
	}
	res.Eligible = tier != TierHigh
	if !res.Eligible {
		res.Reason = fmt.Sprintf("risk score %d is below the minimum of %d", score, mediumTierThreshold)
		return res
	}
	if amount != nil {
		a := *amount
		res.RequestedAmount = &a
		if a.GreaterThan(res.MaxAmount) {
			res.Eligible = false
			res.Reason = fmt.Sprintf("requested %s exceeds the approvable maximum of %s for %s risk",
				money.Format(a), money.Format(res.MaxAmount), tier)
		}
	}
	return res
}
