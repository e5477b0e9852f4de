package loan

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func pendingLoan() *Loan {
	return &Loan{
		LoanID:          "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		BorrowerID:      "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
		Principal:       dec("500"),
		InterestRate:    dec("10"),
		TotalAmount:     dec("550"),
		RemainingAmount: dec("550"),
		Status:          StatusPending,
		RequestedAt:     time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}
}

func TestApprove_SetsTermAndBalance(t *testing.T) {
	l := pendingLoan()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if err := l.Approve("cccccccccccccccccccccccccccccccc", at, 90*24*time.Hour); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if l.Status != StatusApproved {
		t.Fatalf("status = %s", l.Status)
	}
	if want := at.Add(90 * 24 * time.Hour); !l.DueDate.Equal(want) {
		t.Fatalf("due = %v, want %v", l.DueDate, want)
	}
	if !l.RemainingAmount.Equal(l.TotalAmount) || !l.PaidAmount().IsZero() {
		t.Fatalf("remaining=%s paid=%s", l.RemainingAmount, l.PaidAmount())
	}
	if l.DecidedBy == nil || *l.DecidedBy != "cccccccccccccccccccccccccccccccc" || !l.DecidedAt.Equal(at) {
		t.Fatalf("decider not stamped: %+v", l)
	}
}

func TestTransitionsOutOfPendingOnlyOnce(t *testing.T) {
	now := time.Now().UTC()

	l := pendingLoan()
	if err := l.Approve("x", now, time.Hour); err != nil {
		t.Fatalf("first approve: %v", err)
	}
	if err := l.Approve("x", now, time.Hour); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second approve: want ErrInvalidState, got %v", err)
	}
	if err := l.Reject("x", "", now); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("reject after approve: want ErrInvalidState, got %v", err)
	}

	r := pendingLoan()
	if err := r.Reject("x", "  ", now); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if r.RejectionReason != DefaultRejectionReason {
		t.Fatalf("reason = %q", r.RejectionReason)
	}
	if err := r.Approve("x", now, time.Hour); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("approve after reject: want ErrInvalidState, got %v", err)
	}
}

func TestApplyPayment(t *testing.T) {
	now := time.Now().UTC()
	l := pendingLoan()

	if err := l.ApplyPayment(dec("10"), now); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("pay pending: want ErrInvalidState, got %v", err)
	}
	_ = l.Approve("x", now, time.Hour)

	t.Run("rejects non-positive and sub-cent amounts", func(t *testing.T) {
		for _, s := range []string{"0", "-1", "1.005"} {
			if err := l.ApplyPayment(dec(s), now); !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("amount %s: want ErrInvalidAmount, got %v", s, err)
			}
		}
	})

	t.Run("overpayment leaves balance untouched", func(t *testing.T) {
		if err := l.ApplyPayment(dec("550.01"), now); !errors.Is(err, ErrOverpayment) {
			t.Fatalf("want ErrOverpayment, got %v", err)
		}
		if !l.RemainingAmount.Equal(dec("550")) {
			t.Fatalf("remaining changed to %s", l.RemainingAmount)
		}
	})

	t.Run("partial then full payment", func(t *testing.T) {
		if err := l.ApplyPayment(dec("200.10"), now); err != nil {
			t.Fatalf("partial: %v", err)
		}
		if !l.RemainingAmount.Equal(dec("349.90")) || !l.PaidAmount().Equal(dec("200.10")) {
			t.Fatalf("remaining=%s paid=%s", l.RemainingAmount, l.PaidAmount())
		}
		if err := l.ApplyPayment(dec("349.90"), now); err != nil {
			t.Fatalf("final: %v", err)
		}
		if l.Status != StatusPaidOff || l.PaidOffAt == nil || !l.RemainingAmount.IsZero() {
			t.Fatalf("not paid off: %+v", l)
		}
		if l.IsOutstanding() {
			t.Fatalf("paid off loan must not be outstanding")
		}
		if err := l.ApplyPayment(dec("1"), now); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("pay paid-off: want ErrInvalidState, got %v", err)
		}
	})
}

func TestOverdueDerivation(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	l := pendingLoan()
	_ = l.Approve("x", now.Add(-95*24*time.Hour), 90*24*time.Hour)

	if !l.IsOverdue(now) {
		t.Fatalf("loan due 5 days ago must be overdue")
	}
	if got := l.DaysOverdue(now); got != 5 {
		t.Fatalf("DaysOverdue = %d, want 5", got)
	}
	if got := l.DaysOverdue(now.Add(-time.Hour)); got != 4 {
		t.Fatalf("DaysOverdue one hour earlier = %d, want 4", got)
	}

	_ = l.ApplyPayment(l.RemainingAmount, now)
	if l.IsOverdue(now) || l.DaysOverdue(now) != 0 {
		t.Fatalf("paid off loan must not be overdue")
	}
}

func TestTakenInYear(t *testing.T) {
	at := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	l := pendingLoan()
	if l.TakenInYear(2026) {
		t.Fatalf("pending loan does not count")
	}
	_ = l.Approve("x", at, time.Hour)
	if !l.TakenInYear(2026) || l.TakenInYear(2025) {
		t.Fatalf("approved loan year mismatch")
	}
	_ = l.ApplyPayment(l.RemainingAmount, at)
	if !l.TakenInYear(2026) {
		t.Fatalf("paid off loan still counts for its year")
	}

	r := pendingLoan()
	_ = r.Reject("x", "", at)
	if r.TakenInYear(2026) {
		t.Fatalf("rejected loan does not count")
	}
}

var reReference = regexp.MustCompile(`^LP-\d{8}-[A-F0-9]{32}$`)

func TestNewPaymentReference(t *testing.T) {
	at := time.Date(2026, 10, 17, 23, 0, 0, 0, time.UTC)
	seen := map[string]struct{}{}
	for i := 0; i < 100; i++ {
		ref := NewPaymentReference(at)
		if !reReference.MatchString(ref) {
			t.Fatalf("bad reference %q", ref)
		}
		if _, dup := seen[ref]; dup {
			t.Fatalf("duplicate reference %q", ref)
		}
		seen[ref] = struct{}{}
	}
}
