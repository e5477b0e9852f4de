package mysql

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	loanDomain "community-lending/internal/domain/loan"
	"community-lending/pkg/money"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	if l.Version == 0 {
		l.Version = 1
	}
	return translate(r.db.WithContext(ctx).Create(l).Error, loanDomain.ErrNotFound, "loans: create")
}

// Save writes every mutable column guarded by the version the caller read.
func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&loanDomain.Loan{}).
		Where("id = ? AND version = ?", l.ID, l.Version).
		Updates(map[string]any{
			"principal":        l.Principal,
			"interest_rate":    l.InterestRate,
			"total_amount":     l.TotalAmount,
			"remaining_amount": l.RemainingAmount,
			"purpose":          l.Purpose,
			"status":           l.Status,
			"due_date":         l.DueDate,
			"decided_by":       l.DecidedBy,
			"decided_at":       l.DecidedAt,
			"rejection_reason": l.RejectionReason,
			"paid_off_at":      l.PaidOffAt,
			"version":          l.Version + 1,
			"updated_at":       now,
		})
	if res.Error != nil {
		return translate(res.Error, loanDomain.ErrNotFound, "loans: save")
	}
	if res.RowsAffected == 0 {
		return loanDomain.ErrConcurrentUpdate.Withf("loan %s changed since version %d", l.LoanID, l.Version)
	}
	l.Version++
	l.UpdatedAt = now
	return nil
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	if res.Error != nil {
		return nil, translate(res.Error, loanDomain.ErrNotFound, "loans: get by loan id")
	}
	return &out, nil
}

func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("loan_id = ?", loanID).
		First(&out)
	if res.Error != nil {
		return nil, translate(res.Error, loanDomain.ErrNotFound, "loans: lock by loan id")
	}
	return &out, nil
}

func (r *LoanRepository) GetPendingLoanByBorrowerID(ctx context.Context, borrowerID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).
		Where("borrower_id = ? AND status = ?", borrowerID, loanDomain.StatusPending).
		Order("requested_at DESC, id DESC").
		First(&out)
	if res.Error != nil {
		return nil, translate(res.Error, loanDomain.ErrNotFound, "loans: pending by borrower")
	}
	return &out, nil
}

// GetOutstandingLoanByBorrowerID mirrors Loan.IsOutstanding.
func (r *LoanRepository) GetOutstandingLoanByBorrowerID(ctx context.Context, borrowerID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).
		Where("borrower_id = ? AND status = ? AND remaining_amount > 0", borrowerID, loanDomain.StatusApproved).
		Order("decided_at DESC, id DESC").
		First(&out)
	if res.Error != nil {
		return nil, translate(res.Error, loanDomain.ErrNotFound, "loans: outstanding by borrower")
	}
	return &out, nil
}

// CountTakenInYear mirrors Loan.TakenInYear.
func (r *LoanRepository) CountTakenInYear(ctx context.Context, borrowerID string, year int) (int64, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	var n int64
	err := r.db.WithContext(ctx).
		Model(&loanDomain.Loan{}).
		Where("borrower_id = ? AND status IN ? AND decided_at >= ? AND decided_at < ?",
			borrowerID, []loanDomain.Status{loanDomain.StatusApproved, loanDomain.StatusPaidOff}, start, end).
		Count(&n).Error
	return n, translate(err, loanDomain.ErrNotFound, "loans: count taken in year")
}

func (r *LoanRepository) ListByBorrowerID(ctx context.Context, borrowerID string) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	err := r.db.WithContext(ctx).
		Where("borrower_id = ?", borrowerID).
		Order("requested_at DESC, id DESC").
		Find(&out).Error
	return out, translate(err, loanDomain.ErrNotFound, "loans: list by borrower")
}

// ListOverdue mirrors Loan.IsOverdue.
func (r *LoanRepository) ListOverdue(ctx context.Context, now time.Time) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	err := r.db.WithContext(ctx).
		Where("status = ? AND remaining_amount > 0 AND due_date IS NOT NULL AND due_date < ?",
			loanDomain.StatusApproved, now.UTC()).
		Order("due_date ASC, id ASC").
		Find(&out).Error
	return out, translate(err, loanDomain.ErrNotFound, "loans: list overdue")
}

type statusTotals struct {
	Status    loanDomain.Status
	N         int64
	Principal decimal.Decimal
	Remaining decimal.Decimal
	Repaid    decimal.Decimal
}

func (r *LoanRepository) Stats(ctx context.Context, now time.Time) (*loanDomain.Stats, error) {
	var rows []statusTotals
	err := r.db.WithContext(ctx).
		Model(&loanDomain.Loan{}).
		Select("status, COUNT(*) AS n, " +
			"COALESCE(SUM(principal), 0) AS principal, " +
			"COALESCE(SUM(remaining_amount), 0) AS remaining, " +
			"COALESCE(SUM(total_amount - remaining_amount), 0) AS repaid").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err, loanDomain.ErrNotFound, "loans: stats")
	}

	st := &loanDomain.Stats{}
	for _, row := range rows {
		switch row.Status {
		case loanDomain.StatusPending:
			st.Pending = row.N
		case loanDomain.StatusRejected:
			st.Rejected = row.N
		case loanDomain.StatusApproved:
			st.Approved = row.N
			st.TotalOutstanding = st.TotalOutstanding.Add(row.Remaining)
		case loanDomain.StatusPaidOff:
			st.PaidOff = row.N
		}
		if row.Status == loanDomain.StatusApproved || row.Status == loanDomain.StatusPaidOff {
			st.TotalDisbursed = st.TotalDisbursed.Add(row.Principal)
			st.TotalRepaid = st.TotalRepaid.Add(row.Repaid)
		}
	}
	st.TotalDisbursed = money.Round(st.TotalDisbursed)
	st.TotalOutstanding = money.Round(st.TotalOutstanding)
	st.TotalRepaid = money.Round(st.TotalRepaid)

	err = r.db.WithContext(ctx).
		Model(&loanDomain.Loan{}).
		Where("status = ? AND remaining_amount > 0 AND due_date IS NOT NULL AND due_date < ?",
			loanDomain.StatusApproved, now.UTC()).
		Count(&st.Overdue).Error
	if err != nil {
		return nil, translate(err, loanDomain.ErrNotFound, "loans: count overdue")
	}
	return st, nil
}
