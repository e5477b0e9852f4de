package loanmock

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "community-lending/internal/domain/loan"
)

func TestRepo_Create(t *testing.T) {
	ctx := context.Background()
	l := &domain.Loan{LoanID: "LN-1"}

	// Uses provided func
	called := false
	wantErr := errors.New("boom")
	m := &Repo{
		CreateFn: func(gotCtx context.Context, got *domain.Loan) error {
			called = true
			if gotCtx != ctx {
				t.Fatalf("Create ctx mismatch")
			}
			if got != l {
				t.Fatalf("Create arg mismatch")
			}
			return wantErr
		},
	}
	if err := m.Create(ctx, l); !errors.Is(err, wantErr) {
		t.Fatalf("Create: want %v, got %v", wantErr, err)
	}
	if !called {
		t.Fatalf("CreateFn not called")
	}

	// Default (nil func) → no-op, nil error
	m = &Repo{}
	if err := m.Create(ctx, l); err != nil {
		t.Fatalf("Create default: want nil, got %v", err)
	}
}

func TestRepo_LookupsDefaultToCanceled(t *testing.T) {
	ctx := context.Background()
	m := &Repo{}

	lookups := map[string]func() (*domain.Loan, error){
		"GetByLoanID":                    func() (*domain.Loan, error) { return m.GetByLoanID(ctx, "x") },
		"GetByLoanIDForUpdate":           func() (*domain.Loan, error) { return m.GetByLoanIDForUpdate(ctx, "x") },
		"GetPendingLoanByBorrowerID":     func() (*domain.Loan, error) { return m.GetPendingLoanByBorrowerID(ctx, "x") },
		"GetOutstandingLoanByBorrowerID": func() (*domain.Loan, error) { return m.GetOutstandingLoanByBorrowerID(ctx, "x") },
	}
	for name, call := range lookups {
		got, err := call()
		if err != context.Canceled || got != nil {
			t.Fatalf("%s default: want (nil, context.Canceled), got (%+v, %v)", name, got, err)
		}
	}
}

func TestRepo_GetByLoanID(t *testing.T) {
	ctx := context.Background()
	want := &domain.Loan{LoanID: "LN-2"}

	m := &Repo{
		GetByLoanIDFn: func(gotCtx context.Context, loanID string) (*domain.Loan, error) {
			if loanID != "LN-2" {
				t.Fatalf("GetByLoanID loanID mismatch: got %s", loanID)
			}
			return want, nil
		},
	}
	got, err := m.GetByLoanID(ctx, "LN-2")
	if err != nil || got != want {
		t.Fatalf("GetByLoanID: got (%+v, %v)", got, err)
	}
}

func TestRepo_Defaults(t *testing.T) {
	ctx := context.Background()
	m := &Repo{}

	if n, err := m.CountTakenInYear(ctx, "x", 2026); n != 0 || err != nil {
		t.Fatalf("CountTakenInYear default: (%d, %v)", n, err)
	}
	if l, err := m.ListOverdue(ctx, time.Now()); l != nil || err != nil {
		t.Fatalf("ListOverdue default: (%v, %v)", l, err)
	}
	if st, err := m.Stats(ctx, time.Now()); st == nil || err != nil {
		t.Fatalf("Stats default: (%v, %v)", st, err)
	}
	if err := m.Save(ctx, &domain.Loan{}); err != nil {
		t.Fatalf("Save default: %v", err)
	}
}

func TestPaymentRepo(t *testing.T) {
	ctx := context.Background()
	var got *domain.Payment
	m := &PaymentRepo{CreateFn: func(_ context.Context, p *domain.Payment) error { got = p; return nil }}

	p := &domain.Payment{Reference: "LP-1"}
	if err := m.Create(ctx, p); err != nil || got != p {
		t.Fatalf("CreateFn not used")
	}
	if sum, err := (&PaymentRepo{}).SumByLoanID(ctx, 1); !sum.IsZero() || err != nil {
		t.Fatalf("SumByLoanID default: (%s, %v)", sum, err)
	}
}
