package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	domain "community-lending/internal/domain/loan"
	"community-lending/internal/usecase/loan"
)

// LoanService is the loan lifecycle as seen by the HTTP layer.
type LoanService interface {
	RequestLoan(ctx context.Context, in loan.RequestLoanInput) (*loan.LoanDTO, error)
	ApproveLoan(ctx context.Context, loanID, approverID string) (*loan.LoanDTO, error)
	RejectLoan(ctx context.Context, loanID, rejecterID, reason string) (*loan.LoanDTO, error)
	PayLoan(ctx context.Context, in loan.PayLoanInput) (*loan.PaymentDTO, error)
	GetLoan(ctx context.Context, loanID string) (*loan.LoanDTO, error)
	GetLoanDecision(ctx context.Context, loanID string) (*loan.DecisionDTO, error)
	ListMemberLoans(ctx context.Context, userID string) ([]loan.LoanDTO, error)
	ListLoanPayments(ctx context.Context, loanID string) ([]loan.PaymentDTO, error)
	GetMemberAccount(ctx context.Context, userID string) (*loan.MemberAccount, error)
	GetTotalAccountBalance(ctx context.Context) (*loan.PoolBalance, error)
	GetLoanStats(ctx context.Context) (*domain.Stats, error)
}

type LoanHandler struct {
	responder
	uc LoanService
}

func NewLoanHandler(log zerolog.Logger, uc LoanService) *LoanHandler {
	return &LoanHandler{responder: responder{log: log}, uc: uc}
}

type requestLoanReq struct {
	Principal decimal.Decimal `json:"principal" validate:"required,money"`
	Purpose   string          `json:"purpose"   validate:"required,max=255"`
}

type rejectLoanReq struct {
	Reason string `json:"reason" validate:"max=1000"`
}

type payLoanReq struct {
	Amount decimal.Decimal `json:"amount" validate:"required,money"`
	Notes  string          `json:"notes"  validate:"max=1000"`
}

func (h *LoanHandler) RequestLoan(c echo.Context) error {
	userID, ok, err := requireUser(c)
	if !ok {
		return err
	}
	var req requestLoanReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.RequestLoan(c.Request().Context(), loan.RequestLoanInput{
		BorrowerID: userID,
		Principal:  req.Principal,
		Purpose:    req.Purpose,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	loanID, ok, err := pathID(c, "loan_id")
	if !ok {
		return err
	}
	dto, err := h.uc.GetLoan(c.Request().Context(), loanID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) ApproveLoan(c echo.Context) error {
	userID, ok, err := requireUser(c)
	if !ok {
		return err
	}
	loanID, ok, err := pathID(c, "loan_id")
	if !ok {
		return err
	}
	dto, err := h.uc.ApproveLoan(c.Request().Context(), loanID, userID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) RejectLoan(c echo.Context) error {
	userID, ok, err := requireUser(c)
	if !ok {
		return err
	}
	loanID, ok, err := pathID(c, "loan_id")
	if !ok {
		return err
	}
	var req rejectLoanReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.RejectLoan(c.Request().Context(), loanID, userID, req.Reason)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) PayLoan(c echo.Context) error {
	userID, ok, err := requireUser(c)
	if !ok {
		return err
	}
	loanID, ok, err := pathID(c, "loan_id")
	if !ok {
		return err
	}
	var req payLoanReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.PayLoan(c.Request().Context(), loan.PayLoanInput{
		LoanID:  loanID,
		PayerID: userID,
		Amount:  req.Amount,
		Notes:   req.Notes,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) ListLoanPayments(c echo.Context) error {
	loanID, ok, err := pathID(c, "loan_id")
	if !ok {
		return err
	}
	out, err := h.uc.ListLoanPayments(c.Request().Context(), loanID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LoanHandler) GetLoanDecision(c echo.Context) error {
	loanID, ok, err := pathID(c, "loan_id")
	if !ok {
		return err
	}
	out, err := h.uc.GetLoanDecision(c.Request().Context(), loanID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LoanHandler) ListMemberLoans(c echo.Context) error {
	userID, ok, err := pathID(c, "user_id")
	if !ok {
		return err
	}
	out, err := h.uc.ListMemberLoans(c.Request().Context(), userID)
	if err != nil {
		return h.fail(c, err)
	}
	if out == nil {
		out = []loan.LoanDTO{}
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LoanHandler) GetMemberAccount(c echo.Context) error {
	userID, ok, err := pathID(c, "user_id")
	if !ok {
		return err
	}
	out, err := h.uc.GetMemberAccount(c.Request().Context(), userID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LoanHandler) GetPoolBalance(c echo.Context) error {
	out, err := h.uc.GetTotalAccountBalance(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LoanHandler) GetLoanStats(c echo.Context) error {
	out, err := h.uc.GetLoanStats(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
