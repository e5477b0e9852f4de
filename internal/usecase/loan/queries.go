package loan

import (
	"context"

	"community-lending/internal/domain/apperr"
	"community-lending/internal/domain/loan"
	"community-lending/pkg/money"
)

func (u *Usecase) GetLoan(ctx context.Context, loanID string) (*LoanDTO, error) {
	l, err := u.Loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, apperr.Transient(err, "get loan")
	}
	return toDTO(l, u.now()), nil
}

// GetLoanDecision returns the approval or rejection recorded for a loan.
// Pending loans have none and answer not found.
func (u *Usecase) GetLoanDecision(ctx context.Context, loanID string) (*DecisionDTO, error) {
	l, err := u.Loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, apperr.Transient(err, "get loan decision: load loan")
	}
	d, err := u.Decisions.GetByLoanID(ctx, l.ID)
	if err != nil {
		return nil, apperr.Transient(err, "get loan decision")
	}
	return &DecisionDTO{
		DecisionID: d.DecisionID,
		LoanID:     l.LoanID,
		DeciderID:  d.DeciderID,
		Outcome:    string(d.Outcome),
		Reason:     d.Reason,
		DecidedAt:  d.DecidedAt,
	}, nil
}

func (u *Usecase) ListMemberLoans(ctx context.Context, userID string) ([]LoanDTO, error) {
	loans, err := u.Loans.ListByBorrowerID(ctx, userID)
	if err != nil {
		return nil, apperr.Transient(err, "list member loans")
	}
	now := u.now()
	out := make([]LoanDTO, 0, len(loans))
	for i := range loans {
		out = append(out, *toDTO(&loans[i], now))
	}
	return out, nil
}

func (u *Usecase) ListLoanPayments(ctx context.Context, loanID string) ([]PaymentDTO, error) {
	l, err := u.Loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, apperr.Transient(err, "list loan payments: load loan")
	}
	payments, err := u.Payments.ListByLoanID(ctx, l.ID)
	if err != nil {
		return nil, apperr.Transient(err, "list loan payments")
	}

	// replay the ledger so each row shows the balance it left behind
	remaining := l.TotalAmount
	out := make([]PaymentDTO, 0, len(payments))
	for _, p := range payments {
		remaining = remaining.Sub(p.Amount)
		out = append(out, PaymentDTO{
			PaymentID:       p.PaymentID,
			LoanID:          l.LoanID,
			PayerID:         p.PayerID,
			Amount:          p.Amount,
			Reference:       p.Reference,
			PaidAt:          p.PaidAt,
			Notes:           p.Notes,
			RemainingAmount: remaining,
			LoanStatus:      string(l.Status),
		})
	}
	return out, nil
}

func (u *Usecase) GetMemberAccount(ctx context.Context, userID string) (*MemberAccount, error) {
	if _, err := u.Members.GetByUserID(ctx, userID); err != nil {
		return nil, apperr.Transient(err, "member account: load member")
	}
	loans, err := u.Loans.ListByBorrowerID(ctx, userID)
	if err != nil {
		return nil, apperr.Transient(err, "member account: list loans")
	}
	contributed, err := u.Contributions.SumByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Transient(err, "member account: sum contributions")
	}

	year := u.now().Year()
	acc := &MemberAccount{UserID: userID, TotalContributions: contributed}
	for i := range loans {
		l := &loans[i]
		if l.IsOutstanding() {
			acc.OutstandingLoans++
			acc.OutstandingAmount = acc.OutstandingAmount.Add(l.RemainingAmount)
		}
		if l.TakenInYear(year) {
			acc.LoansThisYear++
		}
		if l.Status == loan.StatusPending {
			acc.HasPendingRequest = true
		}
	}
	acc.TookLoanThisYear = acc.LoansThisYear > 0
	acc.NetPoolBalance = money.Round(contributed.Sub(acc.OutstandingAmount))
	return acc, nil
}

func (u *Usecase) GetTotalAccountBalance(ctx context.Context) (*PoolBalance, error) {
	st, err := u.Loans.Stats(ctx, u.now())
	if err != nil {
		return nil, apperr.Transient(err, "pool balance: loan stats")
	}
	contributed, err := u.Contributions.Total(ctx)
	if err != nil {
		return nil, apperr.Transient(err, "pool balance: total contributions")
	}
	return &PoolBalance{
		TotalContributions: contributed,
		TotalDisbursed:     st.TotalDisbursed,
		TotalRepaid:        st.TotalRepaid,
		TotalOutstanding:   st.TotalOutstanding,
		AvailableBalance:   money.Round(contributed.Add(st.TotalRepaid).Sub(st.TotalDisbursed)),
	}, nil
}

func (u *Usecase) GetLoanStats(ctx context.Context) (*loan.Stats, error) {
	st, err := u.Loans.Stats(ctx, u.now())
	if err != nil {
		return nil, apperr.Transient(err, "loan stats")
	}
	return st, nil
}
