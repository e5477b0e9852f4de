package overdue

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"community-lending/internal/domain/loan"
	"community-lending/internal/infrastructure/metrics"
	"community-lending/internal/usecase/notification"
)

type Notifier interface {
	Notify(ctx context.Context, ev notification.Event) notification.Result
}

// Report summarises one monitor cycle.
type Report struct {
	CheckedAt     time.Time `json:"checked_at"`
	OverdueLoans  int       `json:"overdue_loans"`
	Notifications int       `json:"notifications"`
	Failed        int       `json:"failed"`
}

// Monitor periodically alerts borrowers and admins about overdue loans.
type Monitor struct {
	loans    loan.Repository
	notifier Notifier
	log      zerolog.Logger
	metrics  *metrics.Metrics

	interval time.Duration
	retry    time.Duration
	now      func() time.Time
	after    func(time.Duration) <-chan time.Time
}

func NewMonitor(loans loan.Repository, n Notifier, log zerolog.Logger, m *metrics.Metrics, interval, retry time.Duration) *Monitor {
	return &Monitor{
		loans:    loans,
		notifier: n,
		log:      log.With().Str("component", "overdue_monitor").Logger(),
		metrics:  m,
		interval: interval,
		retry:    retry,
		now:      func() time.Time { return time.Now().UTC() },
		after:    time.After,
	}
}

func (m *Monitor) WithClock(now func() time.Time) *Monitor {
	m.now = now
	return m
}

// RunOnce performs a single cycle over a fresh snapshot of overdue loans.
func (m *Monitor) RunOnce(ctx context.Context) (rep Report, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("overdue cycle panicked: %v", r)
		}
		m.observe(rep, err)
	}()

	now := m.now()
	rep.CheckedAt = now
	loans, err := m.loans.ListOverdue(ctx, now)
	if err != nil {
		return rep, errors.Wrap(err, "list overdue loans")
	}
	rep.OverdueLoans = len(loans)

	for i := range loans {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		l := loans[i]
		days := l.DaysOverdue(now)
		res := m.notifier.Notify(ctx, notification.Event{
			Kind:        notification.EventLoanOverdue,
			Loan:        l,
			DaysOverdue: days,
			At:          now,
		})
		rep.Notifications += res.Sent
		rep.Failed += res.Failed
		m.log.Debug().Str("loan_id", l.LoanID).Int("days_overdue", days).Int("sent", res.Sent).Msg("overdue alert")
	}
	return rep, nil
}

func (m *Monitor) observe(rep Report, err error) {
	if m.metrics == nil {
		return
	}
	if err != nil {
		m.metrics.MonitorCycles.WithLabelValues("error").Inc()
		return
	}
	m.metrics.MonitorCycles.WithLabelValues("ok").Inc()
	m.metrics.OverdueLoans.Set(float64(rep.OverdueLoans))
}

// Run executes a cycle immediately and then on every interval until ctx is
// done. A failed cycle is retried after the shorter retry interval.
func (m *Monitor) Run(ctx context.Context) error {
	m.log.Info().Dur("interval", m.interval).Dur("retry", m.retry).Msg("overdue monitor started")
	for {
		wait := m.interval
		rep, err := m.RunOnce(ctx)
		switch {
		case ctx.Err() != nil:
		case err != nil:
			wait = m.retry
			m.log.Error().Err(err).Dur("retry_in", wait).Msg("overdue cycle failed")
		default:
			m.log.Info().Int("overdue", rep.OverdueLoans).Int("notifications", rep.Notifications).
				Int("failed", rep.Failed).Msg("overdue cycle finished")
		}

		select {
		case <-ctx.Done():
			m.log.Info().Msg("overdue monitor stopped")
			return nil
		case <-m.after(wait):
		}
	}
}
