package loanmock

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	domain "community-lending/internal/domain/loan"
)

var (
	_ domain.Repository        = (*Repo)(nil)
	_ domain.PaymentRepository = (*PaymentRepo)(nil)
)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset lookups return context.Canceled; unset writes and lists succeed empty.
type Repo struct {
	CreateFn                         func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn                    func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByLoanIDForUpdateFn           func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetPendingLoanByBorrowerIDFn     func(ctx context.Context, borrowerID string) (*domain.Loan, error)
	GetOutstandingLoanByBorrowerIDFn func(ctx context.Context, borrowerID string) (*domain.Loan, error)
	CountTakenInYearFn               func(ctx context.Context, borrowerID string, year int) (int64, error)
	ListByBorrowerIDFn               func(ctx context.Context, borrowerID string) ([]domain.Loan, error)
	ListOverdueFn                    func(ctx context.Context, now time.Time) ([]domain.Loan, error)
	StatsFn                          func(ctx context.Context, now time.Time) (*domain.Stats, error)
	SaveFn                           func(ctx context.Context, l *domain.Loan) error
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetPendingLoanByBorrowerID(ctx context.Context, borrowerID string) (*domain.Loan, error) {
	if m.GetPendingLoanByBorrowerIDFn != nil {
		return m.GetPendingLoanByBorrowerIDFn(ctx, borrowerID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetOutstandingLoanByBorrowerID(ctx context.Context, borrowerID string) (*domain.Loan, error) {
	if m.GetOutstandingLoanByBorrowerIDFn != nil {
		return m.GetOutstandingLoanByBorrowerIDFn(ctx, borrowerID)
	}
	return nil, context.Canceled
}

func (m *Repo) CountTakenInYear(ctx context.Context, borrowerID string, year int) (int64, error) {
	if m.CountTakenInYearFn != nil {
		return m.CountTakenInYearFn(ctx, borrowerID, year)
	}
	return 0, nil
}

func (m *Repo) ListByBorrowerID(ctx context.Context, borrowerID string) ([]domain.Loan, error) {
	if m.ListByBorrowerIDFn != nil {
		return m.ListByBorrowerIDFn(ctx, borrowerID)
	}
	return nil, nil
}

func (m *Repo) ListOverdue(ctx context.Context, now time.Time) ([]domain.Loan, error) {
	if m.ListOverdueFn != nil {
		return m.ListOverdueFn(ctx, now)
	}
	return nil, nil
}

func (m *Repo) Stats(ctx context.Context, now time.Time) (*domain.Stats, error) {
	if m.StatsFn != nil {
		return m.StatsFn(ctx, now)
	}
	return &domain.Stats{}, nil
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

// PaymentRepo is a function-backed mock that satisfies domain.PaymentRepository.
type PaymentRepo struct {
	CreateFn       func(ctx context.Context, p *domain.Payment) error
	ListByLoanIDFn func(ctx context.Context, loanNumericID uint64) ([]domain.Payment, error)
	SumByLoanIDFn  func(ctx context.Context, loanNumericID uint64) (decimal.Decimal, error)
}

func (m *PaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}

func (m *PaymentRepo) ListByLoanID(ctx context.Context, loanNumericID uint64) ([]domain.Payment, error) {
	if m.ListByLoanIDFn != nil {
		return m.ListByLoanIDFn(ctx, loanNumericID)
	}
	return nil, nil
}

func (m *PaymentRepo) SumByLoanID(ctx context.Context, loanNumericID uint64) (decimal.Decimal, error) {
	if m.SumByLoanIDFn != nil {
		return m.SumByLoanIDFn(ctx, loanNumericID)
	}
	return decimal.Zero, nil
}
