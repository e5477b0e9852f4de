package risk

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"community-lending/internal/domain/apperr"
	"community-lending/internal/domain/contribution"
	"community-lending/internal/domain/loan"
	"community-lending/internal/domain/member"
	"community-lending/internal/testutil/contributionmock"
	"community-lending/internal/testutil/loanmock"
	"community-lending/internal/testutil/membermock"
)

const userID = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"

var now = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func ptrTime(t time.Time) *time.Time { return &t }

func newUsecase(loans []loan.Loan, contribs []contribution.Contribution, total string) *Usecase {
	lr := &loanmock.Repo{
		ListByBorrowerIDFn: func(context.Context, string) ([]loan.Loan, error) { return loans, nil },
	}
	cr := &contributionmock.Repo{
		ListByUserSinceFn: func(_ context.Context, _ string, since time.Time) ([]contribution.Contribution, error) {
			var out []contribution.Contribution
			for _, c := range contribs {
				if !c.ContributedAt.Before(since) {
					out = append(out, c)
				}
			}
			return out, nil
		},
		SumByUserFn: func(context.Context, string) (decimal.Decimal, error) { return d(total), nil },
	}
	mr := membermock.Fixed(member.User{UserID: userID, Role: member.RoleMember, IsActive: true})
	return NewUsecase(lr, cr, mr, DefaultPolicy()).WithClock(func() time.Time { return now })
}

func TestHistory_FromLoansAndContributions(t *testing.T) {
	due := now.AddDate(0, -2, 0)
	loans := []loan.Loan{
		// paid off late
		{Status: loan.StatusPaidOff, Principal: d("500"), TotalAmount: d("550"), RemainingAmount: d("0"),
			DueDate: ptrTime(due), PaidOffAt: ptrTime(due.Add(48 * time.Hour))},
		// paid off on time
		{Status: loan.StatusPaidOff, Principal: d("100"), TotalAmount: d("110"), RemainingAmount: d("0"),
			DueDate: ptrTime(due), PaidOffAt: ptrTime(due.Add(-time.Hour))},
		// rejected, ignored
		{Status: loan.StatusRejected, Principal: d("900"), TotalAmount: d("990"), RemainingAmount: d("990")},
	}
	contribs := []contribution.Contribution{
		{ContributedAt: now.AddDate(0, -1, 0)},
		{ContributedAt: now.AddDate(0, -1, 0).Add(time.Hour)},
		{ContributedAt: now.AddDate(0, -3, 0)},
		{ContributedAt: now.AddDate(-2, 0, 0)}, // outside the window
	}
	uc := newUsecase(loans, contribs, "300")

	h, err := uc.History(context.Background(), userID, now)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if h.DisbursedLoans != 2 || h.MissedPayments != 1 || h.ContributionMonths != 2 {
		t.Fatalf("unexpected history: %+v", h)
	}
	if !h.TotalRepaid.Equal(d("660")) || !h.TotalRepayable.Equal(d("660")) || !h.TotalBorrowed.Equal(d("600")) {
		t.Fatalf("unexpected totals: %+v", h)
	}
	if !h.TotalContributions.Equal(d("300")) {
		t.Fatalf("TotalContributions = %s", h.TotalContributions)
	}
}

func TestAssessRisk(t *testing.T) {
	uc := newUsecase(nil, nil, "0")
	ctx := context.Background()

	res, err := uc.AssessRisk(ctx, userID, d("500"), "school fees")
	if err != nil {
		t.Fatalf("AssessRisk: %v", err)
	}
	if !res.Eligible || res.UserID != userID || res.Purpose != "school fees" || !res.AssessedAt.Equal(now) {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.RequestedAmount == nil || !res.RequestedAmount.Equal(d("500")) {
		t.Fatalf("requested amount not echoed: %+v", res.RequestedAmount)
	}

	res, err = uc.AssessRisk(ctx, userID, d("5000"), "")
	if err != nil {
		t.Fatalf("AssessRisk: %v", err)
	}
	if res.Eligible {
		t.Fatalf("5000 must exceed the cold-start ceiling")
	}

	if _, err := uc.AssessRisk(ctx, userID, d("0"), ""); !errors.Is(err, loan.ErrInvalidAmount) {
		t.Fatalf("zero amount: want ErrInvalidAmount, got %v", err)
	}
	if _, err := uc.AssessRisk(ctx, userID, d("1.005"), ""); !errors.Is(err, loan.ErrInvalidAmount) {
		t.Fatalf("sub-cent amount: want ErrInvalidAmount, got %v", err)
	}
}

func TestGetUserRiskScore(t *testing.T) {
	uc := newUsecase(nil, nil, "0")

	res, err := uc.GetUserRiskScore(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetUserRiskScore: %v", err)
	}
	if res.RequestedAmount != nil || !res.ColdStart || res.Tier != TierMedium {
		t.Fatalf("unexpected result: %+v", res)
	}

	if _, err := uc.GetUserRiskScore(context.Background(), "unknown"); !errors.Is(err, member.ErrNotFound) {
		t.Fatalf("unknown member: want ErrNotFound, got %v", err)
	}
}

func TestAssessRisk_StoreFailureIsTransient(t *testing.T) {
	uc := newUsecase(nil, nil, "0")
	uc.loans = &loanmock.Repo{
		ListByBorrowerIDFn: func(context.Context, string) ([]loan.Loan, error) { return nil, errors.New("db down") },
	}
	_, err := uc.GetUserRiskScore(context.Background(), userID)
	if apperr.KindOf(err) != apperr.KindTransient {
		t.Fatalf("want transient error, got %v", err)
	}
}
