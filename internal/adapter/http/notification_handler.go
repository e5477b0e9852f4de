package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"community-lending/internal/domain/notification"
)

type NotificationService interface {
	ListForUser(ctx context.Context, userID string) ([]notification.Notification, error)
}

type NotificationHandler struct {
	responder
	uc NotificationService
}

func NewNotificationHandler(log zerolog.Logger, uc NotificationService) *NotificationHandler {
	return &NotificationHandler{responder: responder{log: log}, uc: uc}
}

func (h *NotificationHandler) ListMemberNotifications(c echo.Context) error {
	userID, ok, err := pathID(c, "user_id")
	if !ok {
		return err
	}
	out, err := h.uc.ListForUser(c.Request().Context(), userID)
	if err != nil {
		return h.fail(c, err)
	}
	if out == nil {
		out = []notification.Notification{}
	}
	return c.JSON(http.StatusOK, out)
}
