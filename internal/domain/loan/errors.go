package loan

import "community-lending/internal/domain/apperr"

var (
	ErrNotFound         = apperr.New(apperr.KindNotFound, "loan_not_found", "loan not found")
	ErrInvalidInput     = apperr.New(apperr.KindValidation, "invalid_input", "invalid input")
	ErrInvalidAmount    = apperr.New(apperr.KindValidation, "invalid_amount", "amount must be positive")
	ErrInvalidState     = apperr.New(apperr.KindStateConflict, "invalid_state", "operation not allowed in the loan's current state")
	ErrOutstandingLoan  = apperr.New(apperr.KindBusinessRule, "outstanding_loan", "member already has an outstanding loan")
	ErrPendingLoan      = apperr.New(apperr.KindBusinessRule, "pending_loan", "member already has a pending loan request")
	ErrAnnualLimit      = apperr.New(apperr.KindBusinessRule, "annual_limit", "member already took a loan this calendar year")
	ErrRiskRejected     = apperr.New(apperr.KindBusinessRule, "risk_rejected", "requested amount rejected by risk assessment")
	ErrOverpayment      = apperr.New(apperr.KindBusinessRule, "overpayment", "payment exceeds remaining balance")
	ErrConcurrentUpdate = apperr.New(apperr.KindConflict, "concurrent_update", "loan was modified concurrently")
	ErrNotAdmin         = apperr.New(apperr.KindForbidden, "forbidden", "only active administrators can decide loans")
	ErrInactiveMember   = apperr.New(apperr.KindBusinessRule, "inactive_member", "member account is not active")
)
