package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"community-lending/internal/usecase/risk"
)

type RiskService interface {
	AssessRisk(ctx context.Context, userID string, amount decimal.Decimal, purpose string) (*risk.Result, error)
	GetUserRiskScore(ctx context.Context, userID string) (*risk.Result, error)
}

type RiskHandler struct {
	responder
	uc RiskService
}

func NewRiskHandler(log zerolog.Logger, uc RiskService) *RiskHandler {
	return &RiskHandler{responder: responder{log: log}, uc: uc}
}

type assessRiskReq struct {
	UserID  string          `json:"user_id" validate:"required,hex32"`
	Amount  decimal.Decimal `json:"amount"  validate:"required,money"`
	Purpose string          `json:"purpose" validate:"max=255"`
}

func (h *RiskHandler) AssessRisk(c echo.Context) error {
	var req assessRiskReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	out, err := h.uc.AssessRisk(c.Request().Context(), req.UserID, req.Amount, req.Purpose)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *RiskHandler) GetUserRiskScore(c echo.Context) error {
	userID, ok, err := pathID(c, "user_id")
	if !ok {
		return err
	}
	out, err := h.uc.GetUserRiskScore(c.Request().Context(), userID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
