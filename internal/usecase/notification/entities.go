package notification

import (
	"time"

	"github.com/shopspring/decimal"

	"community-lending/internal/domain/loan"
)

type EventKind string

const (
	EventLoanRequested   EventKind = "loan_requested"
	EventLoanApproved    EventKind = "loan_approved"
	EventLoanRejected    EventKind = "loan_rejected"
	EventPaymentReceived EventKind = "payment_received"
	EventLoanPaidOff     EventKind = "loan_paid_off"
	EventLoanOverdue     EventKind = "loan_overdue"
)

// Event describes something that happened to a loan. Loan is a snapshot
// taken after the change.
type Event struct {
	Kind        EventKind
	Loan        loan.Loan
	Amount      decimal.Decimal
	DaysOverdue int
	At          time.Time
}

// Result counts deliveries for one event.
type Result struct {
	Sent    int
	Skipped int
	Failed  int
}
