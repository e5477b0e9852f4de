package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors the lending core reports to.
type Metrics struct {
	LoanTransitions *prometheus.CounterVec
	Payments        prometheus.Counter
	Notifications   *prometheus.CounterVec
	MonitorCycles   *prometheus.CounterVec
	OverdueLoans    prometheus.Gauge
	Contributions   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LoanTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lending",
			Name:      "loan_transitions_total",
			Help:      "Loan status transitions by resulting status.",
		}, []string{"status"}),
		Payments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lending",
			Name:      "loan_payments_total",
			Help:      "Accepted loan payments.",
		}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lending",
			Name:      "notifications_total",
			Help:      "Notification deliveries by event kind and result.",
		}, []string{"kind", "result"}),
		MonitorCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lending",
			Name:      "overdue_monitor_cycles_total",
			Help:      "Overdue monitor cycles by result.",
		}, []string{"result"}),
		OverdueLoans: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lending",
			Name:      "overdue_loans",
			Help:      "Overdue loans found by the last monitor cycle.",
		}),
		Contributions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lending",
			Name:      "contribution_checks_total",
			Help:      "Contribution limit checks by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.LoanTransitions, m.Payments, m.Notifications, m.MonitorCycles, m.OverdueLoans, m.Contributions)
	return m
}

// NewNop returns collectors registered nowhere, for tests and tools.
func NewNop() *Metrics { return New(prometheus.NewRegistry()) }
