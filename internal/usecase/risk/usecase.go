package risk

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"community-lending/internal/domain/apperr"
	"community-lending/internal/domain/contribution"
	"community-lending/internal/domain/loan"
	"community-lending/internal/domain/member"
	"community-lending/pkg/money"
)

// contributionWindow is how far back contribution consistency is measured.
const contributionWindow = 12

type Usecase struct {
	loans         loan.Repository
	contributions contribution.Repository
	members       member.Repository
	policy        Policy
	now           func() time.Time
}

func NewUsecase(loans loan.Repository, contributions contribution.Repository, members member.Repository, p Policy) *Usecase {
	return &Usecase{
		loans:         loans,
		contributions: contributions,
		members:       members,
		policy:        p,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source, for tests.
func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

// AssessRisk scores userID and decides whether amount can be approved.
func (u *Usecase) AssessRisk(ctx context.Context, userID string, amount decimal.Decimal, purpose string) (*Result, error) {
	if !money.IsPositive(amount) || !money.IsCents(amount) {
		return nil, loan.ErrInvalidAmount.Withf("requested amount must be positive with at most 2 decimals, got %s", amount)
	}
	res, err := u.assess(ctx, userID, &amount)
	if err != nil {
		return nil, err
	}
	res.Purpose = purpose
	return res, nil
}

// GetUserRiskScore is AssessRisk without a requested amount.
func (u *Usecase) GetUserRiskScore(ctx context.Context, userID string) (*Result, error) {
	return u.assess(ctx, userID, nil)
}

func (u *Usecase) assess(ctx context.Context, userID string, amount *decimal.Decimal) (*Result, error) {
	if _, err := u.members.GetByUserID(ctx, userID); err != nil {
		return nil, apperr.Transient(err, "risk: load member")
	}
	now := u.now()
	h, err := u.History(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	res := u.policy.Evaluate(h, amount)
	res.UserID = userID
	res.AssessedAt = now
	return &res, nil
}

// History builds the snapshot the score is computed from. Every read is
// fresh; nothing is cached between assessments.
func (u *Usecase) History(ctx context.Context, userID string, now time.Time) (History, error) {
	var h History

	loans, err := u.loans.ListByBorrowerID(ctx, userID)
	if err != nil {
		return h, apperr.Transient(err, "risk: load loans")
	}
	for i := range loans {
		l := &loans[i]
		if !l.WasDisbursed() {
			continue
		}
		h.DisbursedLoans++
		h.TotalBorrowed = h.TotalBorrowed.Add(l.Principal)
		h.TotalRepayable = h.TotalRepayable.Add(l.TotalAmount)
		h.TotalRepaid = h.TotalRepaid.Add(l.PaidAmount())
		if missedDueDate(l, now) {
			h.MissedPayments++
		}
	}

	since := now.AddDate(0, -contributionWindow, 0)
	recent, err := u.contributions.ListByUserSince(ctx, userID, since)
	if err != nil {
		return h, apperr.Transient(err, "risk: load contributions")
	}
	months := make(map[string]struct{})
	for _, c := range recent {
		months[c.ContributedAt.UTC().Format("2006-01")] = struct{}{}
	}
	h.ContributionMonths = len(months)

	h.TotalContributions, err = u.contributions.SumByUser(ctx, userID)
	if err != nil {
		return h, apperr.Transient(err, "risk: sum contributions")
	}
	return h, nil
}

// missedDueDate reports a loan that is overdue now or was paid off late.
func missedDueDate(l *loan.Loan, now time.Time) bool {
	if l.IsOverdue(now) {
		return true
	}
	return l.Status == loan.StatusPaidOff && l.PaidOffAt != nil && l.DueDate != nil && l.PaidOffAt.After(*l.DueDate)
}
