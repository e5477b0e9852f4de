package decision

import "context"

type Repository interface {
	// Create fails with ErrAlreadyDecided when the loan already has a decision.
	Create(ctx context.Context, d *Decision) error
	GetByLoanID(ctx context.Context, loanID uint64) (*Decision, error)
}
