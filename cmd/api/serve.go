package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	httpadp "community-lending/internal/adapter/http"
	"community-lending/internal/adapter/middleware"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the overdue monitor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a)
		},
	}
}

func newEcho(a *app) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Recover(), echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(_ echo.Context, v echomw.RequestLoggerValues) error {
			ev := a.log.Info()
			if v.Error != nil {
				ev = a.log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).Str("uri", v.URI).Int("status", v.Status).Dur("latency", v.Latency).Msg("request")
			return nil
		},
	}))

	httpadp.Register(e, httpadp.Handlers{
		Health:        httpadp.NewHandler(a.log, a.healthChecks()...),
		Loans:         httpadp.NewLoanHandler(a.log, a.loans),
		Risk:          httpadp.NewRiskHandler(a.log, a.risk),
		Contributions: httpadp.NewContributionHandler(a.log, a.contributions),
		Notifications: httpadp.NewNotificationHandler(a.log, a.notifier),
	}, middleware.IdempotencyMiddleware(a.rdb, a.cfg.IdempotencyTTL(), a.log))
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(a.reg, promhttp.HandlerOpts{})))
	return e
}

// serve runs the API and the monitor until ctx is cancelled or either fails.
func serve(ctx context.Context, a *app) error {
	e := newEcho(a)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		addr := ":" + a.cfg.AppPort
		a.log.Info().Str("addr", addr).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(sctx)
	})
	g.Go(func() error {
		return a.monitor.Run(gctx)
	})

	err := g.Wait()
	a.log.Info().Err(err).Msg("shut down")
	return err
}
