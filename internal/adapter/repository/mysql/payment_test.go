package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	loanDomain "community-lending/internal/domain/loan"
)

func TestPaymentRepository_LedgerAndSum(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seed := seedPending(t, NewLoanRepository(db))
	repo := NewPaymentRepository(db)

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	for i, amt := range []string{"100.10", "49.90", "0.01"} {
		at := base.Add(time.Duration(i) * time.Hour)
		p := &loanDomain.Payment{
			LoanID:    seed.ID,
			PayerID:   seed.BorrowerID,
			Amount:    dec(amt),
			Reference: loanDomain.NewPaymentReference(at),
			PaidAt:    at,
		}
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if p.PaymentID == "" {
			t.Fatalf("payment id not assigned")
		}
	}

	list, err := repo.ListByLoanID(ctx, seed.ID)
	if err != nil {
		t.Fatalf("ListByLoanID: %v", err)
	}
	if len(list) != 3 || !list[0].Amount.Equal(dec("100.10")) || !list[2].Amount.Equal(dec("0.01")) {
		t.Fatalf("unexpected ledger order: %+v", list)
	}

	sum, err := repo.SumByLoanID(ctx, seed.ID)
	if err != nil {
		t.Fatalf("SumByLoanID: %v", err)
	}
	if !sum.Equal(dec("150.01")) {
		t.Fatalf("sum = %s, want 150.01", sum)
	}

	empty, err := repo.SumByLoanID(ctx, seed.ID+100)
	if err != nil || !empty.IsZero() {
		t.Fatalf("sum of empty ledger = %s, %v", empty, err)
	}
}

func TestPaymentRepository_DuplicateReference(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seed := seedPending(t, NewLoanRepository(db))
	repo := NewPaymentRepository(db)

	ref := loanDomain.NewPaymentReference(time.Now())
	mk := func() *loanDomain.Payment {
		return &loanDomain.Payment{LoanID: seed.ID, Amount: dec("1"), Reference: ref, PaidAt: time.Now().UTC()}
	}
	if err := repo.Create(ctx, mk()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := repo.Create(ctx, mk())
	if err == nil {
		t.Fatalf("duplicate reference must fail")
	}
	if errors.Is(err, loanDomain.ErrNotFound) {
		t.Fatalf("duplicate must not look like not-found: %v", err)
	}
}
