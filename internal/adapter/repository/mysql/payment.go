package mysql

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	loanDomain "community-lending/internal/domain/loan"
	"community-lending/pkg/id"
	"community-lending/pkg/money"
)

type PaymentRepository struct{ db *gorm.DB }

func NewPaymentRepository(db *gorm.DB) *PaymentRepository { return &PaymentRepository{db: db} }

// Create appends to the payment ledger; rows are never updated or deleted.
func (r *PaymentRepository) Create(ctx context.Context, p *loanDomain.Payment) error {
	if p.PaymentID == "" {
		p.PaymentID = id.NewID32()
	}
	return translate(r.db.WithContext(ctx).Create(p).Error, loanDomain.ErrNotFound, "loan_payments: create")
}

func (r *PaymentRepository) ListByLoanID(ctx context.Context, loanNumericID uint64) ([]loanDomain.Payment, error) {
	var out []loanDomain.Payment
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanNumericID).
		Order("paid_at ASC, id ASC").
		Find(&out).Error
	return out, translate(err, loanDomain.ErrNotFound, "loan_payments: list by loan")
}

func (r *PaymentRepository) SumByLoanID(ctx context.Context, loanNumericID uint64) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&loanDomain.Payment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("loan_id = ?", loanNumericID).
		Row().Scan(&sum)
	return money.Round(sum), translate(err, loanDomain.ErrNotFound, "loan_payments: sum by loan")
}
