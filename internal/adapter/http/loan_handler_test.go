package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"community-lending/internal/domain/apperr"
	"community-lending/internal/domain/decision"
	domain "community-lending/internal/domain/loan"
	"community-lending/internal/usecase/loan"
)

// stubLoans implements LoanService with function fields.
type stubLoans struct {
	RequestLoanFn func(ctx context.Context, in loan.RequestLoanInput) (*loan.LoanDTO, error)
	ApproveLoanFn func(ctx context.Context, loanID, approverID string) (*loan.LoanDTO, error)
	RejectLoanFn  func(ctx context.Context, loanID, rejecterID, reason string) (*loan.LoanDTO, error)
	PayLoanFn     func(ctx context.Context, in loan.PayLoanInput) (*loan.PaymentDTO, error)
	GetLoanFn     func(ctx context.Context, loanID string) (*loan.LoanDTO, error)
	DecisionFn    func(ctx context.Context, loanID string) (*loan.DecisionDTO, error)
	StatsFn       func(ctx context.Context) (*domain.Stats, error)
}

var errNotStubbed = errors.New("not stubbed")

func (s *stubLoans) RequestLoan(ctx context.Context, in loan.RequestLoanInput) (*loan.LoanDTO, error) {
	if s.RequestLoanFn != nil {
		return s.RequestLoanFn(ctx, in)
	}
	return nil, errNotStubbed
}
func (s *stubLoans) ApproveLoan(ctx context.Context, id, approverID string) (*loan.LoanDTO, error) {
	if s.ApproveLoanFn != nil {
		return s.ApproveLoanFn(ctx, id, approverID)
	}
	return nil, errNotStubbed
}
func (s *stubLoans) RejectLoan(ctx context.Context, id, rejecterID, reason string) (*loan.LoanDTO, error) {
	if s.RejectLoanFn != nil {
		return s.RejectLoanFn(ctx, id, rejecterID, reason)
	}
	return nil, errNotStubbed
}
func (s *stubLoans) PayLoan(ctx context.Context, in loan.PayLoanInput) (*loan.PaymentDTO, error) {
	if s.PayLoanFn != nil {
		return s.PayLoanFn(ctx, in)
	}
	return nil, errNotStubbed
}
func (s *stubLoans) GetLoan(ctx context.Context, id string) (*loan.LoanDTO, error) {
	if s.GetLoanFn != nil {
		return s.GetLoanFn(ctx, id)
	}
	return nil, errNotStubbed
}
func (s *stubLoans) GetLoanDecision(ctx context.Context, id string) (*loan.DecisionDTO, error) {
	if s.DecisionFn != nil {
		return s.DecisionFn(ctx, id)
	}
	return &loan.DecisionDTO{LoanID: id, Outcome: "approved"}, nil
}
func (s *stubLoans) ListMemberLoans(context.Context, string) ([]loan.LoanDTO, error) { return nil, nil }
func (s *stubLoans) ListLoanPayments(context.Context, string) ([]loan.PaymentDTO, error) {
	return []loan.PaymentDTO{}, nil
}
func (s *stubLoans) GetMemberAccount(_ context.Context, id string) (*loan.MemberAccount, error) {
	return &loan.MemberAccount{UserID: id}, nil
}
func (s *stubLoans) GetTotalAccountBalance(context.Context) (*loan.PoolBalance, error) {
	return &loan.PoolBalance{AvailableBalance: decimal.NewFromInt(100)}, nil
}
func (s *stubLoans) GetLoanStats(ctx context.Context) (*domain.Stats, error) {
	if s.StatsFn != nil {
		return s.StatsFn(ctx)
	}
	return &domain.Stats{}, nil
}

// -------- tests --------

func TestRequestLoan_Success(t *testing.T) {
	e := newEchoWithValidator()
	var got loan.RequestLoanInput
	h := NewLoanHandler(zerolog.Nop(), &stubLoans{
		RequestLoanFn: func(_ context.Context, in loan.RequestLoanInput) (*loan.LoanDTO, error) {
			got = in
			return &loan.LoanDTO{LoanID: loanID, BorrowerID: in.BorrowerID, Principal: in.Principal, Status: "pending"}, nil
		},
	})

	c, rec := newCtx(e, stdhttp.MethodPost, "/loans", `{"principal":"500.50","purpose":"seed stock"}`, userID)
	if err := h.RequestLoan(c); err != nil {
		t.Fatalf("RequestLoan error: %v", err)
	}
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("status = %d, want 201; body=%s", rec.Code, rec.Body.String())
	}
	if got.BorrowerID != userID || !got.Principal.Equal(decimal.RequireFromString("500.5")) || got.Purpose != "seed stock" {
		t.Fatalf("usecase input = %+v", got)
	}
	var dto loan.LoanDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if dto.LoanID != loanID || dto.Status != "pending" {
		t.Fatalf("dto = %+v", dto)
	}
}

func TestRequestLoan_RequestErrors(t *testing.T) {
	e := newEchoWithValidator()
	h := NewLoanHandler(zerolog.Nop(), &stubLoans{})

	t.Run("missing user header", func(t *testing.T) {
		c, rec := newCtx(e, stdhttp.MethodPost, "/loans", `{"principal":100,"purpose":"x"}`, "")
		_ = h.RequestLoan(c)
		if rec.Code != stdhttp.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("broken json", func(t *testing.T) {
		c, rec := newCtx(e, stdhttp.MethodPost, "/loans", `{"principal":`, userID)
		_ = h.RequestLoan(c)
		if rec.Code != stdhttp.StatusBadRequest || decodeErr(t, rec).Error != "invalid body" {
			t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
		}
	})

	t.Run("validation details", func(t *testing.T) {
		c, rec := newCtx(e, stdhttp.MethodPost, "/loans", `{"principal":10.001}`, userID)
		_ = h.RequestLoan(c)
		if rec.Code != stdhttp.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		er := decodeErr(t, rec)
		if !containsFieldMsg(er.Details, "principal", "2 decimal places") || !containsFieldMsg(er.Details, "purpose", "is required") {
			t.Fatalf("details = %+v", er.Details)
		}
	})
}

func TestErrorKindsMapToStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
		code string
	}{
		{domain.ErrInvalidAmount, stdhttp.StatusBadRequest, "invalid_amount"},
		{domain.ErrInvalidState.Withf("loan is approved"), stdhttp.StatusConflict, "invalid_state"},
		{domain.ErrConcurrentUpdate, stdhttp.StatusConflict, "concurrent_update"},
		{domain.ErrAnnualLimit, stdhttp.StatusUnprocessableEntity, "annual_limit"},
		{domain.ErrNotFound, stdhttp.StatusNotFound, "loan_not_found"},
		{domain.ErrNotAdmin, stdhttp.StatusForbidden, "forbidden"},
		{apperr.Transient(errors.New("dial tcp: refused"), "get loan"), stdhttp.StatusServiceUnavailable, "store_unavailable"},
		{errors.New("boom"), stdhttp.StatusInternalServerError, ""},
	}
	e := newEchoWithValidator()
	for _, tc := range cases {
		err := tc.err
		h := NewLoanHandler(zerolog.Nop(), &stubLoans{
			GetLoanFn: func(context.Context, string) (*loan.LoanDTO, error) { return nil, err },
		})
		c, rec := newCtx(e, stdhttp.MethodGet, "/loans/"+loanID, nil, "")
		c.SetParamNames("loan_id")
		c.SetParamValues(loanID)
		if err := h.GetLoan(c); err != nil {
			t.Fatalf("GetLoan error: %v", err)
		}
		if rec.Code != tc.want {
			t.Fatalf("%v: status = %d, want %d", tc.err, rec.Code, tc.want)
		}
		er := decodeErr(t, rec)
		if er.Code != tc.code {
			t.Fatalf("%v: code = %q, want %q", tc.err, er.Code, tc.code)
		}
		if strings.Contains(er.Error, "refused") {
			t.Fatalf("store detail leaked: %q", er.Error)
		}
	}
}

func TestDecisionHandlers_PassActingUser(t *testing.T) {
	e := newEchoWithValidator()
	admin := strings.Repeat("a", 32)
	var approvedBy, rejectedBy, reason string
	h := NewLoanHandler(zerolog.Nop(), &stubLoans{
		ApproveLoanFn: func(_ context.Context, id, who string) (*loan.LoanDTO, error) {
			approvedBy = who
			return &loan.LoanDTO{LoanID: id, Status: "approved"}, nil
		},
		RejectLoanFn: func(_ context.Context, id, who, why string) (*loan.LoanDTO, error) {
			rejectedBy, reason = who, why
			return &loan.LoanDTO{LoanID: id, Status: "rejected", RejectionReason: why}, nil
		},
	})

	c, rec := newCtx(e, stdhttp.MethodPost, "/loans/"+loanID+"/approve", nil, admin)
	c.SetParamNames("loan_id")
	c.SetParamValues(loanID)
	if err := h.ApproveLoan(c); err != nil || rec.Code != stdhttp.StatusOK {
		t.Fatalf("approve: err=%v status=%d", err, rec.Code)
	}
	if approvedBy != admin {
		t.Fatalf("approver = %q", approvedBy)
	}

	c, rec = newCtx(e, stdhttp.MethodPost, "/loans/"+loanID+"/reject", map[string]string{"reason": "incomplete"}, admin)
	c.SetParamNames("loan_id")
	c.SetParamValues(loanID)
	if err := h.RejectLoan(c); err != nil || rec.Code != stdhttp.StatusOK {
		t.Fatalf("reject: err=%v status=%d", err, rec.Code)
	}
	if rejectedBy != admin || reason != "incomplete" {
		t.Fatalf("reject got who=%q reason=%q", rejectedBy, reason)
	}

	// missing path param
	c, rec = newCtx(e, stdhttp.MethodPost, "/loans//approve", nil, admin)
	_ = h.ApproveLoan(c)
	if rec.Code != stdhttp.StatusBadRequest || decodeErr(t, rec).Error != "missing loan_id path param" {
		t.Fatalf("missing param: status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestPayLoan(t *testing.T) {
	e := newEchoWithValidator()
	var got loan.PayLoanInput
	h := NewLoanHandler(zerolog.Nop(), &stubLoans{
		PayLoanFn: func(_ context.Context, in loan.PayLoanInput) (*loan.PaymentDTO, error) {
			got = in
			if in.Amount.GreaterThan(decimal.NewFromInt(550)) {
				return nil, domain.ErrOverpayment
			}
			return &loan.PaymentDTO{LoanID: in.LoanID, Amount: in.Amount, LoanStatus: "approved"}, nil
		},
	})

	c, rec := newCtx(e, stdhttp.MethodPost, "/loans/"+loanID+"/payments", map[string]any{"amount": 200, "notes": "first"}, userID)
	c.SetParamNames("loan_id")
	c.SetParamValues(loanID)
	if err := h.PayLoan(c); err != nil || rec.Code != stdhttp.StatusCreated {
		t.Fatalf("pay: err=%v status=%d body=%s", err, rec.Code, rec.Body.String())
	}
	if got.LoanID != loanID || got.PayerID != userID || got.Notes != "first" {
		t.Fatalf("input = %+v", got)
	}

	c, rec = newCtx(e, stdhttp.MethodPost, "/loans/"+loanID+"/payments", map[string]any{"amount": 600}, userID)
	c.SetParamNames("loan_id")
	c.SetParamValues(loanID)
	_ = h.PayLoan(c)
	if rec.Code != stdhttp.StatusUnprocessableEntity || decodeErr(t, rec).Code != "overpayment" {
		t.Fatalf("overpay: status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestGetLoanDecision(t *testing.T) {
	stub := &stubLoans{DecisionFn: func(_ context.Context, id string) (*loan.DecisionDTO, error) {
		if id != loanID {
			return nil, decision.ErrNotFound
		}
		return &loan.DecisionDTO{DecisionID: "D1", LoanID: id, DeciderID: userID, Outcome: "rejected", Reason: "no"}, nil
	}}
	e := newEchoWithValidator()
	e.GET("/loans/:loan_id/decision", NewLoanHandler(zerolog.Nop(), stub).GetLoanDecision)

	rec := serve(e, stdhttp.MethodGet, "/loans/"+loanID+"/decision", nil, "")
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, body=%s", rec.Code, rec.Body.String())
	}
	var got loan.DecisionDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if got.Outcome != "rejected" || got.DeciderID != userID || got.Reason != "no" {
		t.Fatalf("decision = %+v", got)
	}

	rec = serve(e, stdhttp.MethodGet, "/loans/"+strings.Repeat("0", 32)+"/decision", nil, "")
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("undecided loan: status = %d, want 404", rec.Code)
	}
}

func TestFailuresAreLoggedOnlyWhenServerSide(t *testing.T) {
	var buf bytes.Buffer
	stub := &stubLoans{GetLoanFn: func(_ context.Context, id string) (*loan.LoanDTO, error) {
		if id == loanID {
			return nil, errors.New("disk on fire")
		}
		return nil, domain.ErrNotFound
	}}
	e := newEchoWithValidator()
	e.GET("/loans/:loan_id", NewLoanHandler(zerolog.New(&buf), stub).GetLoan)

	if rec := serve(e, stdhttp.MethodGet, "/loans/"+strings.Repeat("0", 32), nil, ""); rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if buf.Len() != 0 {
		t.Fatalf("client error was logged: %s", buf.String())
	}

	if rec := serve(e, stdhttp.MethodGet, "/loans/"+loanID, nil, ""); rec.Code != stdhttp.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v; raw=%s", err, buf.String())
	}
	if entry["level"] != "error" || entry["error"] != "disk on fire" || entry["route"] != "/loans/:loan_id" || entry["status"] != float64(500) {
		t.Fatalf("log entry = %v", entry)
	}
}
