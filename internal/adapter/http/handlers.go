package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Check is a named dependency ping reported by /health.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

type Handler struct {
	checks  []Check
	timeout time.Duration
	log     zerolog.Logger
}

func NewHandler(log zerolog.Logger, checks ...Check) *Handler {
	return &Handler{checks: checks, timeout: 2 * time.Second, log: log}
}

// Health answers 200 while every check passes and 503 otherwise.
func (h *Handler) Health(c echo.Context) error {
	status, code := "ok", http.StatusOK
	results := make(map[string]string, len(h.checks))
	if len(h.checks) > 0 {
		ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
		defer cancel()
		for _, chk := range h.checks {
			if err := chk.Ping(ctx); err != nil {
				h.log.Warn().Err(err).Str("check", chk.Name).Msg("health check failed")
				results[chk.Name] = "unavailable"
				status, code = "degraded", http.StatusServiceUnavailable
				continue
			}
			results[chk.Name] = "ok"
		}
	}

	body := map[string]any{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	}
	if len(results) > 0 {
		body["checks"] = results
	}
	return c.JSON(code, body)
}

// Handlers groups everything Register mounts.
type Handlers struct {
	Health        *Handler
	Loans         *LoanHandler
	Risk          *RiskHandler
	Contributions *ContributionHandler
	Notifications *NotificationHandler
}

// Register mounts the API on e. Mutating routes go through idem when it is
// non-nil.
func Register(e *echo.Echo, h Handlers, idem echo.MiddlewareFunc) {
	var mw []echo.MiddlewareFunc
	if idem != nil {
		mw = append(mw, idem)
	}

	e.GET("/health", h.Health.Health)

	e.POST("/loans", h.Loans.RequestLoan, mw...)
	e.GET("/loans/stats", h.Loans.GetLoanStats)
	e.GET("/loans/:loan_id", h.Loans.GetLoan)
	e.GET("/loans/:loan_id/decision", h.Loans.GetLoanDecision)
	e.POST("/loans/:loan_id/approve", h.Loans.ApproveLoan, mw...)
	e.POST("/loans/:loan_id/reject", h.Loans.RejectLoan, mw...)
	e.POST("/loans/:loan_id/payments", h.Loans.PayLoan, mw...)
	e.GET("/loans/:loan_id/payments", h.Loans.ListLoanPayments)
	e.GET("/members/:user_id/loans", h.Loans.ListMemberLoans)
	e.GET("/members/:user_id/account", h.Loans.GetMemberAccount)
	e.GET("/members/:user_id/notifications", h.Notifications.ListMemberNotifications)
	e.GET("/pool/balance", h.Loans.GetPoolBalance)

	e.GET("/members/:user_id/risk", h.Risk.GetUserRiskScore)
	e.POST("/risk/assess", h.Risk.AssessRisk)

	e.POST("/contribution-limits", h.Contributions.CreateLimit, mw...)
	e.GET("/contribution-limits", h.Contributions.ListLimits)
	e.PUT("/contribution-limits/:id", h.Contributions.UpdateLimit, mw...)
	e.DELETE("/contribution-limits/:id", h.Contributions.DeleteLimit, mw...)
	e.GET("/goals/:goal_id/contribution-limit", h.Contributions.GetGoalLimit)
	e.POST("/goals/:goal_id/contributions/validate", h.Contributions.ValidateContribution)
	e.POST("/goals/:goal_id/contributions", h.Contributions.RecordContribution, mw...)
	e.GET("/rewards", h.Contributions.ListRewards)
}
