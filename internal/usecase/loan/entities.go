package loan

import (
	"time"

	"github.com/shopspring/decimal"

	"community-lending/internal/domain/loan"
)

// Policy holds the externally configured lending constants.
type Policy struct {
	Term            time.Duration
	InterestRate    decimal.Decimal // percent, e.g. 10 = 10%
	MaxLoansPerYear int
}

func DefaultPolicy() Policy {
	return Policy{
		Term:            90 * 24 * time.Hour,
		InterestRate:    decimal.NewFromInt(10),
		MaxLoansPerYear: 1,
	}
}

type RequestLoanInput struct {
	BorrowerID string          `json:"borrower_id"`
	Principal  decimal.Decimal `json:"principal"`
	Purpose    string          `json:"purpose"`
}

type PayLoanInput struct {
	LoanID  string          `json:"loan_id"`
	PayerID string          `json:"payer_id"`
	Amount  decimal.Decimal `json:"amount"`
	Notes   string          `json:"notes"`
}

type LoanDTO struct {
	LoanID          string          `json:"loan_id"`
	BorrowerID      string          `json:"borrower_id"`
	Principal       decimal.Decimal `json:"principal"`
	InterestRate    decimal.Decimal `json:"interest_rate"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	Purpose         string          `json:"purpose"`
	Status          string          `json:"status"`
	RequestedAt     time.Time       `json:"requested_at"`
	DueDate         *time.Time      `json:"due_date,omitempty"`
	DecidedBy       *string         `json:"decided_by,omitempty"`
	DecidedAt       *time.Time      `json:"decided_at,omitempty"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	PaidOffAt       *time.Time      `json:"paid_off_at,omitempty"`
	IsOverdue       bool            `json:"is_overdue"`
	DaysOverdue     int             `json:"days_overdue"`
}

func toDTO(l *loan.Loan, now time.Time) *LoanDTO {
	return &LoanDTO{
		LoanID:          l.LoanID,
		BorrowerID:      l.BorrowerID,
		Principal:       l.Principal,
		InterestRate:    l.InterestRate,
		TotalAmount:     l.TotalAmount,
		RemainingAmount: l.RemainingAmount,
		PaidAmount:      l.PaidAmount(),
		Purpose:         l.Purpose,
		Status:          string(l.Status),
		RequestedAt:     l.RequestedAt,
		DueDate:         l.DueDate,
		DecidedBy:       l.DecidedBy,
		DecidedAt:       l.DecidedAt,
		RejectionReason: l.RejectionReason,
		PaidOffAt:       l.PaidOffAt,
		IsOverdue:       l.IsOverdue(now),
		DaysOverdue:     l.DaysOverdue(now),
	}
}

type PaymentDTO struct {
	PaymentID       string          `json:"payment_id"`
	LoanID          string          `json:"loan_id"`
	PayerID         string          `json:"payer_id"`
	Amount          decimal.Decimal `json:"amount"`
	Reference       string          `json:"reference"`
	PaidAt          time.Time       `json:"paid_at"`
	Notes           string          `json:"notes,omitempty"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	LoanStatus      string          `json:"loan_status"`
}

// DecisionDTO is the audit record of a loan leaving pending.
type DecisionDTO struct {
	DecisionID string    `json:"decision_id"`
	LoanID     string    `json:"loan_id"`
	DeciderID  string    `json:"decider_id"`
	Outcome    string    `json:"outcome"`
	Reason     string    `json:"reason,omitempty"`
	DecidedAt  time.Time `json:"decided_at"`
}

// MemberAccount is the derived per-member view.
type MemberAccount struct {
	UserID             string          `json:"user_id"`
	OutstandingLoans   int             `json:"outstanding_loans"`
	OutstandingAmount  decimal.Decimal `json:"outstanding_amount"`
	LoansThisYear      int             `json:"loans_this_year"`
	TookLoanThisYear   bool            `json:"took_loan_this_year"`
	HasPendingRequest  bool            `json:"has_pending_request"`
	TotalContributions decimal.Decimal `json:"total_contributions"`
	// NetPoolBalance is what the member has put into the pool minus what
	// they still owe it.
	NetPoolBalance decimal.Decimal `json:"net_pool_balance"`
}

// PoolBalance is the pool-wide account: money in minus money out.
type PoolBalance struct {
	TotalContributions decimal.Decimal `json:"total_contributions"`
	TotalDisbursed     decimal.Decimal `json:"total_disbursed"`
	TotalRepaid        decimal.Decimal `json:"total_repaid"`
	TotalOutstanding   decimal.Decimal `json:"total_outstanding"`
	AvailableBalance   decimal.Decimal `json:"available_balance"`
}
