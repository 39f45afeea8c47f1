package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRemoteCountsOutcomes(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRemote("leads", "insert", time.Now(), nil)
	m.ObserveRemote("leads", "insert", time.Now(), errors.New("boom"))
	m.ObserveRemote("leads", "insert", time.Now(), nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RemoteCalls.WithLabelValues("leads", "insert", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RemoteCalls.WithLabelValues("leads", "insert", "error")))
}

func TestCountersAccumulate(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.AddImportedLeads(3)
	m.IncDemo()
	m.RejectRow("clients")
	m.ObserveLogin(nil)
	m.ObserveLogin(errors.New("Invalid login credentials"))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.LeadsImported))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DemosRecorded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RejectedRows.WithLabelValues("clients")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Logins.WithLabelValues("failed")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRemote("leads", "select", time.Now(), nil)
		m.ObserveAggregation(time.Now())
		m.IncDemo()
	})
}
