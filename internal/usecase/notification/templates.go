package notification

import (
	"fmt"

	domain "community-lending/internal/domain/notification"
	"community-lending/pkg/money"
)

type audience int

const (
	borrowerOnly audience = iota
	adminsOnly
	borrowerAndAdmins
)

func audienceOf(k EventKind) audience {
	switch k {
	case EventLoanRequested:
		return adminsOnly
	case EventLoanOverdue:
		return borrowerAndAdmins
	}
	return borrowerOnly
}

type message struct {
	title string
	body  string
	typ   domain.Type
}

const dateLayout = "2006-01-02"

func borrowerMessage(ev Event) message {
	l := ev.Loan
	switch ev.Kind {
	case EventLoanApproved:
		due := ""
		if l.DueDate != nil {
			due = l.DueDate.Format(dateLayout)
		}
		return message{"Loan Approved",
			fmt.Sprintf("Your loan of %s has been approved. Total repayable is %s, due on %s.",
				money.Format(l.Principal), money.Format(l.TotalAmount), due),
			domain.TypeSuccess}
	case EventLoanRejected:
		return message{"Loan Rejected",
			fmt.Sprintf("Your loan request of %s was rejected. Reason: %s",
				money.Format(l.Principal), l.RejectionReason),
			domain.TypeWarning}
	case EventPaymentReceived:
		return message{"Payment Received",
			fmt.Sprintf("We received your payment of %s. Remaining balance: %s.",
				money.Format(ev.Amount), money.Format(l.RemainingAmount)),
			domain.TypeSuccess}
	case EventLoanPaidOff:
		return message{"Loan Paid Off",
			fmt.Sprintf("Your payment of %s settled your loan of %s in full. Thank you!",
				money.Format(ev.Amount), money.Format(l.Principal)),
			domain.TypeSuccess}
	case EventLoanOverdue:
		return message{"Loan Overdue",
			fmt.Sprintf("Your loan is overdue by %d day(s). Remaining balance: %s, due on %s.",
				ev.DaysOverdue, money.Format(l.RemainingAmount), l.DueDate.Format(dateLayout)),
			domain.TypeWarning}
	}
	return message{"Loan Update", fmt.Sprintf("Your loan %s was updated.", l.LoanID), domain.TypeInfo}
}

func adminMessage(ev Event, borrowerName string) message {
	l := ev.Loan
	switch ev.Kind {
	case EventLoanRequested:
		return message{"New Loan Request",
			fmt.Sprintf("%s requested a loan of %s for %q.", borrowerName, money.Format(l.Principal), l.Purpose),
			domain.TypeInfo}
	case EventLoanOverdue:
		return message{"Overdue Loan Alert",
			fmt.Sprintf("%s's loan of %s is overdue by %d day(s). Remaining balance: %s.",
				borrowerName, money.Format(l.Principal), ev.DaysOverdue, money.Format(l.RemainingAmount)),
			domain.TypeWarning}
	}
	return message{"Loan Update", fmt.Sprintf("Loan %s of %s was updated.", l.LoanID, borrowerName), domain.TypeInfo}
}
