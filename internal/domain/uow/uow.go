package uow

import (
	"context"

	"community-lending/internal/domain/contribution"
	"community-lending/internal/domain/decision"
	"community-lending/internal/domain/loan"
)

// Repos are bound to one transaction.
type Repos struct {
	Loans         loan.Repository
	Payments      loan.PaymentRepository
	Decisions     decision.Repository
	Contributions contribution.Repository
}

type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// WithinLoanTx locks the loan row before calling fn.
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
