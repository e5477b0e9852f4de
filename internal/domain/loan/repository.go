package loan

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	// GetByLoanIDForUpdate locks the row for the rest of the transaction.
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	GetPendingLoanByBorrowerID(ctx context.Context, borrowerID string) (*Loan, error)
	GetOutstandingLoanByBorrowerID(ctx context.Context, borrowerID string) (*Loan, error)
	CountTakenInYear(ctx context.Context, borrowerID string, year int) (int64, error)
	ListByBorrowerID(ctx context.Context, borrowerID string) ([]Loan, error)
	// ListOverdue returns approved loans with a balance whose due date is before now.
	ListOverdue(ctx context.Context, now time.Time) ([]Loan, error)
	Stats(ctx context.Context, now time.Time) (*Stats, error)
	// Save persists l only if its version is unchanged since it was read and
	// bumps the version; a lost race returns ErrConcurrentUpdate.
	Save(ctx context.Context, l *Loan) error
}

type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error
	ListByLoanID(ctx context.Context, loanNumericID uint64) ([]Payment, error)
	SumByLoanID(ctx context.Context, loanNumericID uint64) (decimal.Decimal, error)
}
