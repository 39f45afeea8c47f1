package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RemoteCalls         *prometheus.CounterVec
	RemoteDuration      *prometheus.HistogramVec
	RejectedRows        *prometheus.CounterVec
	AggregationDuration prometheus.Histogram
	LeadsImported       prometheus.Counter
	DemosRecorded       prometheus.Counter
	Logins              *prometheus.CounterVec
}

// New registers the CRM collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RemoteCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "horizon_crm_remote_calls_total",
			Help: "Row store calls by table, operation and outcome",
		}, []string{"table", "op", "outcome"}),
		RemoteDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "horizon_crm_remote_call_duration_seconds",
			Help:    "Row store call latency",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"table", "op"}),
		RejectedRows: f.NewCounterVec(prometheus.CounterOpts{
			Name: "horizon_crm_rejected_rows_total",
			Help: "Rows dropped at the schema boundary",
		}, []string{"table"}),
		AggregationDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "horizon_crm_aggregation_duration_seconds",
			Help:    "Time to merge events onto the dashboard baseline",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
		LeadsImported: f.NewCounter(prometheus.CounterOpts{
			Name: "horizon_crm_leads_imported_total",
			Help: "Leads created through campaign imports",
		}),
		DemosRecorded: f.NewCounter(prometheus.CounterOpts{
			Name: "horizon_crm_demo_events_total",
			Help: "Demo events recorded on Demo Booked transitions",
		}),
		Logins: f.NewCounterVec(prometheus.CounterOpts{
			Name: "horizon_crm_logins_total",
			Help: "Password sign-in attempts by outcome",
		}, []string{"outcome"}),
	}
}

// All methods accept a nil receiver so callers can run without instrumentation.

func (m *Metrics) ObserveRemote(table, op string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.RemoteCalls.WithLabelValues(table, op, outcome).Inc()
	m.RemoteDuration.WithLabelValues(table, op).Observe(time.Since(start).Seconds())
}

func (m *Metrics) RejectRow(table string) {
	if m == nil {
		return
	}
	m.RejectedRows.WithLabelValues(table).Inc()
}

func (m *Metrics) ObserveAggregation(start time.Time) {
	if m == nil {
		return
	}
	m.AggregationDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) AddImportedLeads(n int) {
	if m == nil {
		return
	}
	m.LeadsImported.Add(float64(n))
}

func (m *Metrics) IncDemo() {
	if m == nil {
		return
	}
	m.DemosRecorded.Inc()
}

func (m *Metrics) ObserveLogin(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.Logins.WithLabelValues("failed").Inc()
		return
	}
	m.Logins.WithLabelValues("ok").Inc()
}
