package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	decisionDomain "community-lending/internal/domain/decision"
)

type DecisionRepository struct{ db *gorm.DB }

func NewDecisionRepository(db *gorm.DB) *DecisionRepository { return &DecisionRepository{db: db} }

func (r *DecisionRepository) Create(ctx context.Context, d *decisionDomain.Decision) error {
	err := r.db.WithContext(ctx).Create(d).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return decisionDomain.ErrAlreadyDecided.Withf("loan %d already has a decision", d.LoanID)
	}
	return translate(err, decisionDomain.ErrNotFound, "loan_decisions: create")
}

func (r *DecisionRepository) GetByLoanID(ctx context.Context, loanNumericID uint64) (*decisionDomain.Decision, error) {
	var out decisionDomain.Decision
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanNumericID).
		First(&out)
	if res.Error != nil {
		return nil, translate(res.Error, decisionDomain.ErrNotFound, "loan_decisions: get by loan")
	}
	return &out, nil
}
