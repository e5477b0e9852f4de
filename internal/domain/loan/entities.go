package loan

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"community-lending/pkg/money"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusPaidOff  Status = "paid_off"
)

const DefaultRejectionReason = "Loan request was not approved"

type Loan struct {
	ID              uint64          `gorm:"primaryKey;column:id" json:"-"`
	LoanID          string          `gorm:"size:32;uniqueIndex:ux_loans_loan_id" json:"loan_id"`
	BorrowerID      string          `gorm:"size:32;index:idx_loans_borrower_status" json:"borrower_id"`
	Principal       decimal.Decimal `gorm:"type:decimal(18,2)" json:"principal"`
	InterestRate    decimal.Decimal `gorm:"type:decimal(6,2)" json:"interest_rate"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,2)" json:"total_amount"`
	RemainingAmount decimal.Decimal `gorm:"type:decimal(18,2)" json:"remaining_amount"`
	Purpose         string          `gorm:"size:255" json:"purpose"`
	Status          Status          `gorm:"type:enum('pending','approved','rejected','paid_off');default:'pending';index:idx_loans_borrower_status;index:idx_loans_status_due" json:"status"`
	RequestedAt     time.Time       `json:"requested_at"`
	DueDate         *time.Time      `gorm:"index:idx_loans_status_due" json:"due_date,omitempty"`
	DecidedBy       *string         `gorm:"size:32" json:"decided_by,omitempty"`
	DecidedAt       *time.Time      `json:"decided_at,omitempty"`
	RejectionReason string          `gorm:"type:text" json:"rejection_reason,omitempty"`
	PaidOffAt       *time.Time      `json:"paid_off_at,omitempty"`
	Version         uint64          `gorm:"not null;default:1" json:"-"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Loan) TableName() string { return "loans" }

// PaidAmount is total − remaining.
func (l *Loan) PaidAmount() decimal.Decimal { return l.TotalAmount.Sub(l.RemainingAmount) }

// IsOutstanding reports an approved loan that still has a balance. Only
// outstanding loans block a new request.
func (l *Loan) IsOutstanding() bool {
	return l.Status == StatusApproved && l.RemainingAmount.GreaterThan(decimal.Zero)
}

func (l *Loan) IsOverdue(now time.Time) bool {
	return l.IsOutstanding() && l.DueDate != nil && now.After(*l.DueDate)
}

// DaysOverdue is floor((now − due) / 24h), or 0 when the loan is not overdue.
func (l *Loan) DaysOverdue(now time.Time) int {
	if !l.IsOverdue(now) {
		return 0
	}
	return int(math.Floor(now.Sub(*l.DueDate).Hours() / 24))
}

// WasDisbursed reports whether the loan ever left Pending as Approved.
func (l *Loan) WasDisbursed() bool {
	return l.Status == StatusApproved || l.Status == StatusPaidOff
}

// TakenInYear reports whether the loan counts towards the annual cap of year.
func (l *Loan) TakenInYear(year int) bool {
	return l.WasDisbursed() && l.DecidedAt != nil && l.DecidedAt.UTC().Year() == year
}

// Approve moves a pending loan to approved and starts its term.
func (l *Loan) Approve(approverID string, at time.Time, term time.Duration) error {
	if l.Status != StatusPending {
		return ErrInvalidState.Withf("loan %s is %s, only pending loans can be approved", l.LoanID, l.Status)
	}
	at = at.UTC()
	due := at.Add(term)
	l.Status = StatusApproved
	l.DueDate = &due
	l.DecidedBy = &approverID
	l.DecidedAt = &at
	l.RemainingAmount = l.TotalAmount
	return nil
}

// Reject moves a pending loan to rejected. An empty reason is replaced by
// DefaultRejectionReason.
func (l *Loan) Reject(rejecterID, reason string, at time.Time) error {
	if l.Status != StatusPending {
		return ErrInvalidState.Withf("loan %s is %s, only pending loans can be rejected", l.LoanID, l.Status)
	}
	at = at.UTC()
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultRejectionReason
	}
	l.Status = StatusRejected
	l.DecidedBy = &rejecterID
	l.DecidedAt = &at
	l.RejectionReason = reason
	return nil
}

// ApplyPayment reduces the remaining balance by amount. A balance that reaches
// exactly zero marks the loan paid off.
func (l *Loan) ApplyPayment(amount decimal.Decimal, at time.Time) error {
	if !money.IsPositive(amount) || !money.IsCents(amount) {
		return ErrInvalidAmount.Withf("payment amount must be positive with at most 2 decimals, got %s", amount)
	}
	if !l.IsOutstanding() {
		return ErrInvalidState.Withf("loan %s is %s with remaining %s, payments need an approved loan with a balance",
			l.LoanID, l.Status, money.Format(l.RemainingAmount))
	}
	if amount.GreaterThan(l.RemainingAmount) {
		return ErrOverpayment.Withf("payment %s exceeds remaining balance %s",
			money.Format(amount), money.Format(l.RemainingAmount))
	}
	l.RemainingAmount = l.RemainingAmount.Sub(amount)
	if l.RemainingAmount.IsZero() {
		at = at.UTC()
		l.Status = StatusPaidOff
		l.PaidOffAt = &at
	}
	return nil
}

type Payment struct {
	ID        uint64          `gorm:"primaryKey;column:id" json:"-"`
	PaymentID string          `gorm:"size:32;uniqueIndex:ux_loan_payments_payment_id" json:"payment_id"`
	LoanID    uint64          `gorm:"not null;index" json:"-"`
	PayerID   string          `gorm:"size:32" json:"payer_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,2)" json:"amount"`
	Reference string          `gorm:"size:48;uniqueIndex:ux_loan_payments_reference" json:"reference"`
	PaidAt    time.Time       `json:"paid_at"`
	Notes     string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (Payment) TableName() string { return "loan_payments" }

// NewPaymentReference returns a reference of the form LP-YYYYMMDD-<32 hex>.
func NewPaymentReference(at time.Time) string {
	u := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "LP-" + at.UTC().Format("20060102") + "-" + strings.ToUpper(u)
}

// Stats is the pool-wide projection over all loans.
type Stats struct {
	Pending          int64           `json:"pending"`
	Approved         int64           `json:"approved"`
	Rejected         int64           `json:"rejected"`
	PaidOff          int64           `json:"paid_off"`
	Overdue          int64           `json:"overdue"`
	TotalDisbursed   decimal.Decimal `json:"total_disbursed"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	TotalRepaid      decimal.Decimal `json:"total_repaid"`
}
