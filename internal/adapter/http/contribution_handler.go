package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	domain "community-lending/internal/domain/contribution"
	"community-lending/internal/usecase/contribution"
)

type ContributionService interface {
	ValidateForUser(ctx context.Context, userID, goalID string, amount decimal.Decimal) (*contribution.Validation, error)
	RecordContribution(ctx context.Context, userID, goalID string, amount decimal.Decimal) (*contribution.Receipt, error)
	ListActiveRewards(ctx context.Context) ([]domain.Reward, error)
	CreateLimit(ctx context.Context, actorID string, in contribution.LimitInput) (*domain.Limit, error)
	UpdateLimit(ctx context.Context, actorID, limitID string, in contribution.LimitInput) (*domain.Limit, error)
	DeleteLimit(ctx context.Context, actorID, limitID string) error
	GetLimitByGoal(ctx context.Context, goalID string) (*domain.Limit, error)
	ListLimits(ctx context.Context) ([]domain.Limit, error)
}

type ContributionHandler struct {
	responder
	uc ContributionService
}

func NewContributionHandler(log zerolog.Logger, uc ContributionService) *ContributionHandler {
	return &ContributionHandler{responder: responder{log: log}, uc: uc}
}

type contributionReq struct {
	Amount decimal.Decimal `json:"amount" validate:"required,money"`
}

func (h *ContributionHandler) ValidateContribution(c echo.Context) error {
	userID, ok, err := requireUser(c)
	if !ok {
		return err
	}
	goalID, ok, err := pathID(c, "goal_id")
	if !ok {
		return err
	}
	var req contributionReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	out, err := h.uc.ValidateForUser(c.Request().Context(), userID, goalID, req.Amount)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ContributionHandler) RecordContribution(c echo.Context) error {
	userID, ok, err := requireUser(c)
	if !ok {
		return err
	}
	goalID, ok, err := pathID(c, "goal_id")
	if !ok {
		return err
	}
	var req contributionReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	out, err := h.uc.RecordContribution(c.Request().Context(), userID, goalID, req.Amount)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *ContributionHandler) ListRewards(c echo.Context) error {
	out, err := h.uc.ListActiveRewards(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	if out == nil {
		out = []domain.Reward{}
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ContributionHandler) CreateLimit(c echo.Context) error {
	actorID, ok, err := requireUser(c)
	if !ok {
		return err
	}
	var req contribution.LimitInput
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	out, err := h.uc.CreateLimit(c.Request().Context(), actorID, req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *ContributionHandler) UpdateLimit(c echo.Context) error {
	actorID, ok, err := requireUser(c)
	if !ok {
		return err
	}
	limitID, ok, err := pathID(c, "id")
	if !ok {
		return err
	}
	var req contribution.LimitInput
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	out, err := h.uc.UpdateLimit(c.Request().Context(), actorID, limitID, req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ContributionHandler) DeleteLimit(c echo.Context) error {
	actorID, ok, err := requireUser(c)
	if !ok {
		return err
	}
	limitID, ok, err := pathID(c, "id")
	if !ok {
		return err
	}
	if err := h.uc.DeleteLimit(c.Request().Context(), actorID, limitID); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ContributionHandler) ListLimits(c echo.Context) error {
	out, err := h.uc.ListLimits(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	if out == nil {
		out = []domain.Limit{}
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ContributionHandler) GetGoalLimit(c echo.Context) error {
	goalID, ok, err := pathID(c, "goal_id")
	if !ok {
		return err
	}
	out, err := h.uc.GetLimitByGoal(c.Request().Context(), goalID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
