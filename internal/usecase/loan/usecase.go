package loan

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"community-lending/internal/domain/apperr"
	"community-lending/internal/domain/contribution"
	"community-lending/internal/domain/decision"
	"community-lending/internal/domain/loan"
	"community-lending/internal/domain/member"
	"community-lending/internal/domain/uow"
	"community-lending/internal/infrastructure/metrics"
	"community-lending/internal/usecase/notification"
	"community-lending/internal/usecase/risk"
	"community-lending/pkg/id"
	"community-lending/pkg/keylock"
	"community-lending/pkg/money"
)

const maxPurposeLen = 255

type RiskAssessor interface {
	AssessRisk(ctx context.Context, userID string, amount decimal.Decimal, purpose string) (*risk.Result, error)
}

type Notifier interface {
	Notify(ctx context.Context, ev notification.Event) notification.Result
}

// Deps are the collaborators of the loan lifecycle.
type Deps struct {
	Loans         loan.Repository
	Payments      loan.PaymentRepository
	Decisions     decision.Repository
	Members       member.Repository
	Contributions contribution.Repository
	UoW           uow.UnitOfWork
	Risk          RiskAssessor
	Notifier      Notifier
	Log           zerolog.Logger
	Metrics       *metrics.Metrics
}

type Usecase struct {
	Deps
	policy Policy
	now    func() time.Time

	// serialises the eligibility checks of one borrower's requests
	requests keylock.Locker
}

func NewUsecase(d Deps, p Policy) *Usecase {
	d.Log = d.Log.With().Str("component", "loan").Logger()
	return &Usecase{Deps: d, policy: p, now: func() time.Time { return time.Now().UTC() }}
}

func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

// RequestLoan creates a pending loan once the member passes every
// eligibility rule.
func (u *Usecase) RequestLoan(ctx context.Context, in RequestLoanInput) (*LoanDTO, error) {
	in.BorrowerID = strings.TrimSpace(in.BorrowerID)
	in.Purpose = strings.TrimSpace(in.Purpose)
	if len(in.BorrowerID) != 32 {
		return nil, loan.ErrInvalidInput.Withf("borrower id must be 32 characters")
	}
	if in.Purpose == "" || len(in.Purpose) > maxPurposeLen {
		return nil, loan.ErrInvalidInput.Withf("purpose is required and at most %d characters", maxPurposeLen)
	}
	if !money.IsPositive(in.Principal) || !money.IsCents(in.Principal) {
		return nil, loan.ErrInvalidAmount.Withf("principal must be positive with at most 2 decimals, got %s", in.Principal)
	}

	borrower, err := u.Members.GetByUserID(ctx, in.BorrowerID)
	if err != nil {
		return nil, apperr.Transient(err, "request loan: load member")
	}
	if !borrower.IsActive {
		return nil, loan.ErrInactiveMember
	}

	unlock := u.requests.Lock(in.BorrowerID)
	defer unlock()

	now := u.now()
	if err := u.checkEligibility(ctx, in.BorrowerID, now); err != nil {
		return nil, err
	}

	assessment, err := u.Risk.AssessRisk(ctx, in.BorrowerID, in.Principal, in.Purpose)
	if err != nil {
		return nil, apperr.Transient(err, "request loan: assess risk")
	}
	if !assessment.Eligible {
		return nil, loan.ErrRiskRejected.Withf("%s", assessment.Reason)
	}

	total := money.WithInterest(in.Principal, u.policy.InterestRate)
	l := &loan.Loan{
		LoanID:          id.NewID32(),
		BorrowerID:      in.BorrowerID,
		Principal:       in.Principal,
		InterestRate:    u.policy.InterestRate,
		TotalAmount:     total,
		RemainingAmount: total,
		Purpose:         in.Purpose,
		Status:          loan.StatusPending,
		RequestedAt:     now,
	}
	if err := u.Loans.Create(ctx, l); err != nil {
		return nil, apperr.Transient(err, "request loan: create")
	}

	u.transition(l)
	u.Log.Info().Str("loan_id", l.LoanID).Str("borrower_id", l.BorrowerID).
		Str("principal", money.Format(l.Principal)).Int("risk_score", assessment.Score).Msg("loan requested")
	u.Notifier.Notify(ctx, notification.Event{Kind: notification.EventLoanRequested, Loan: *l, At: now})
	return toDTO(l, now), nil
}

func (u *Usecase) checkEligibility(ctx context.Context, borrowerID string, now time.Time) error {
	pending, err := u.Loans.GetPendingLoanByBorrowerID(ctx, borrowerID)
	switch {
	case err == nil:
		return loan.ErrPendingLoan.Withf("member already has pending loan request %s", pending.LoanID)
	case !errors.Is(err, loan.ErrNotFound):
		return apperr.Transient(err, "request loan: pending check")
	}

	outstanding, err := u.Loans.GetOutstandingLoanByBorrowerID(ctx, borrowerID)
	switch {
	case err == nil:
		return loan.ErrOutstandingLoan.Withf("member still owes %s on loan %s",
			money.Format(outstanding.RemainingAmount), outstanding.LoanID)
	case !errors.Is(err, loan.ErrNotFound):
		return apperr.Transient(err, "request loan: outstanding check")
	}

	taken, err := u.Loans.CountTakenInYear(ctx, borrowerID, now.Year())
	if err != nil {
		return apperr.Transient(err, "request loan: annual check")
	}
	if taken >= int64(u.policy.MaxLoansPerYear) {
		return loan.ErrAnnualLimit.Withf("member already took %d loan(s) in %d, the limit is %d",
			taken, now.Year(), u.policy.MaxLoansPerYear)
	}
	return nil
}

// ApproveLoan moves a pending loan to approved and starts its term.
func (u *Usecase) ApproveLoan(ctx context.Context, loanID, approverID string) (*LoanDTO, error) {
	if err := u.requireAdmin(ctx, approverID); err != nil {
		return nil, err
	}
	var out loan.Loan
	err := u.withLoan(ctx, loanID, "approve loan", func(r uow.Repos, l *loan.Loan, now time.Time) error {
		if err := l.Approve(approverID, now, u.policy.Term); err != nil {
			return err
		}
		if err := u.recordDecision(ctx, r, l, decision.OutcomeApproved, "", now); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		out = *l
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.transition(&out)
	u.Log.Info().Str("loan_id", out.LoanID).Str("approver_id", approverID).Time("due_date", *out.DueDate).Msg("loan approved")
	now := *out.DecidedAt
	u.Notifier.Notify(ctx, notification.Event{Kind: notification.EventLoanApproved, Loan: out, At: now})
	return toDTO(&out, now), nil
}

// RejectLoan moves a pending loan to rejected. An empty reason gets the
// default text.
func (u *Usecase) RejectLoan(ctx context.Context, loanID, rejecterID, reason string) (*LoanDTO, error) {
	if err := u.requireAdmin(ctx, rejecterID); err != nil {
		return nil, err
	}
	var out loan.Loan
	err := u.withLoan(ctx, loanID, "reject loan", func(r uow.Repos, l *loan.Loan, now time.Time) error {
		if err := l.Reject(rejecterID, reason, now); err != nil {
			return err
		}
		if err := u.recordDecision(ctx, r, l, decision.OutcomeRejected, l.RejectionReason, now); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		out = *l
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.transition(&out)
	u.Log.Info().Str("loan_id", out.LoanID).Str("rejecter_id", rejecterID).Str("reason", out.RejectionReason).Msg("loan rejected")
	now := *out.DecidedAt
	u.Notifier.Notify(ctx, notification.Event{Kind: notification.EventLoanRejected, Loan: out, At: now})
	return toDTO(&out, now), nil
}

// PayLoan appends a payment and reduces the remaining balance. The payment
// that clears the balance marks the loan paid off.
func (u *Usecase) PayLoan(ctx context.Context, in PayLoanInput) (*PaymentDTO, error) {
	if strings.TrimSpace(in.PayerID) == "" {
		return nil, loan.ErrInvalidInput.Withf("payer id is required")
	}
	if !money.IsPositive(in.Amount) || !money.IsCents(in.Amount) {
		return nil, loan.ErrInvalidAmount.Withf("payment amount must be positive with at most 2 decimals, got %s", in.Amount)
	}

	var (
		out loan.Loan
		p   loan.Payment
	)
	err := u.withLoan(ctx, in.LoanID, "pay loan", func(r uow.Repos, l *loan.Loan, now time.Time) error {
		paid, err := r.Payments.SumByLoanID(ctx, l.ID)
		if err != nil {
			return err
		}
		// the ledger, not the cached balance, bounds what may still be paid
		if paid.Add(in.Amount).GreaterThan(l.TotalAmount) {
			return loan.ErrOverpayment.Withf("payment %s on top of %s already paid exceeds total %s",
				money.Format(in.Amount), money.Format(paid), money.Format(l.TotalAmount))
		}
		if err := l.ApplyPayment(in.Amount, now); err != nil {
			return err
		}
		pay := &loan.Payment{
			LoanID:    l.ID,
			PayerID:   in.PayerID,
			Amount:    in.Amount,
			Reference: loan.NewPaymentReference(now),
			PaidAt:    now,
			Notes:     strings.TrimSpace(in.Notes),
		}
		if err := r.Payments.Create(ctx, pay); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		out, p = *l, *pay
		return nil
	})
	if err != nil {
		return nil, err
	}

	if u.Metrics != nil {
		u.Metrics.Payments.Inc()
	}
	kind := notification.EventPaymentReceived
	if out.Status == loan.StatusPaidOff {
		kind = notification.EventLoanPaidOff
		u.transition(&out)
	}
	u.Log.Info().Str("loan_id", out.LoanID).Str("reference", p.Reference).Str("amount", money.Format(p.Amount)).
		Str("remaining", money.Format(out.RemainingAmount)).Str("status", string(out.Status)).Msg("loan payment recorded")
	u.Notifier.Notify(ctx, notification.Event{Kind: kind, Loan: out, Amount: p.Amount, At: p.PaidAt})

	return &PaymentDTO{
		PaymentID:       p.PaymentID,
		LoanID:          out.LoanID,
		PayerID:         p.PayerID,
		Amount:          p.Amount,
		Reference:       p.Reference,
		PaidAt:          p.PaidAt,
		Notes:           p.Notes,
		RemainingAmount: out.RemainingAmount,
		LoanStatus:      string(out.Status),
	}, nil
}

// withLoan runs fn on the locked loan inside a transaction. A save that
// lost a race is retried once on a fresh read.
func (u *Usecase) withLoan(ctx context.Context, loanID, op string, fn func(r uow.Repos, l *loan.Loan, now time.Time) error) error {
	run := func() error {
		return u.UoW.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
			return fn(r, l, u.now())
		})
	}
	err := run()
	if errors.Is(err, loan.ErrConcurrentUpdate) {
		u.Log.Warn().Str("loan_id", loanID).Str("op", op).Msg("lost update race, retrying once")
		err = run()
	}
	return apperr.Transient(err, op)
}

func (u *Usecase) recordDecision(ctx context.Context, r uow.Repos, l *loan.Loan, outcome decision.Outcome, reason string, at time.Time) error {
	return r.Decisions.Create(ctx, &decision.Decision{
		DecisionID: id.NewID32(),
		LoanID:     l.ID,
		DeciderID:  *l.DecidedBy,
		Outcome:    outcome,
		Reason:     reason,
		DecidedAt:  at,
	})
}

func (u *Usecase) requireAdmin(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return loan.ErrInvalidInput.Withf("acting user id is required")
	}
	err := member.RequireAdmin(ctx, u.Members, userID)
	if errors.Is(err, member.ErrNotAdmin) {
		return loan.ErrNotAdmin
	}
	return err
}

func (u *Usecase) transition(l *loan.Loan) {
	if u.Metrics != nil {
		u.Metrics.LoanTransitions.WithLabelValues(string(l.Status)).Inc()
	}
}
