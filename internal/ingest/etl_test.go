package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelcm/horizon-crm/internal/apperr"
	"github.com/angelcm/horizon-crm/internal/metrics"
	"github.com/angelcm/horizon-crm/internal/models"
	"github.com/angelcm/horizon-crm/internal/store"
)

type fakeSource struct {
	campaigns []models.CampaignRow
	leads     []models.LeadRow
	clients   []models.ClientRow
	demos     []models.DemoEventRow
	failOn    string
}

func (f *fakeSource) fail(table string) error {
	if f.failOn == table {
		return errors.New("boom")
	}
	return nil
}

func (f *fakeSource) ListCampaigns(ctx context.Context, _ string) ([]models.CampaignRow, error) {
	return f.campaigns, f.fail(models.TableCampaigns)
}
func (f *fakeSource) ListLeads(ctx context.Context, _ string) ([]models.LeadRow, error) {
	return f.leads, f.fail(models.TableLeads)
}
func (f *fakeSource) ListClients(ctx context.Context, _ string) ([]models.ClientRow, error) {
	return f.clients, f.fail(models.TableClients)
}
func (f *fakeSource) ListDemoEvents(ctx context.Context, _ string) ([]models.DemoEventRow, error) {
	return f.demos, f.fail(models.TableDemoEvents)
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func source() *fakeSource {
	return &fakeSource{
		campaigns: []models.CampaignRow{{ID: "camp-1", Name: "Spring", CreatedAt: "2025-03-01", LeadCount: 7}},
		leads: []models.LeadRow{
			{ID: "l-camp-1-0", CampaignID: "camp-1", Name: "Bob", Status: "New Lead"},
			{ID: "l-camp-1-1", CampaignID: "camp-1", Name: "Ann", Status: "Demo Booked"},
			{ID: "l-x", CampaignID: "camp-gone", Name: "Orphan"},
			{ID: "l-bad", CampaignID: "camp-1", Status: "Maybe"},
		},
		clients: []models.ClientRow{
			{ID: "c-1", Company: "Acme", CloseDate: "2025-03-10", UpfrontValue: decimal.NewFromInt(5000), Status: "active"},
			{ID: "c-2", Company: "Broken", CloseDate: "yesterday"},
		},
		demos: []models.DemoEventRow{{ID: "d-1", LeadID: "l-camp-1-1", Date: "2025-03-12T10:00:00Z"}},
	}
}

func TestLoaderValidatesAndReconciles(t *testing.T) {
	ms := store.NewMemoryStore()
	m := metrics.New(prometheus.NewRegistry())
	st, res, err := NewLoader(source(), ms, discard(), m).Run(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, Result{Campaigns: 1, Leads: 2, Clients: 1, DemoEvents: 1, Rejected: 3}, res)
	c, ok := st.Campaign("camp-1")
	require.True(t, ok)
	assert.Equal(t, 2, c.LeadCount)
	assert.Equal(t, "2025-03-12", st.DemoEvents()[0].Date)
	assert.True(t, st.Loaded())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RejectedRows.WithLabelValues(models.TableLeads)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RejectedRows.WithLabelValues(models.TableClients)))

	again, ok := ms.Get("u1")
	require.True(t, ok)
	assert.Same(t, st, again)
}

func TestLoaderFailureKeepsState(t *testing.T) {
	ms := store.NewMemoryStore()
	prev := ms.Ensure("u1")
	prev.Replace([]models.Campaign{{ID: "keep"}}, nil, nil, nil)

	src := source()
	src.failOn = models.TableClients
	_, _, err := NewLoader(src, ms, discard(), nil).Run(context.Background(), "u1")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.Remote)

	_, ok := prev.Campaign("keep")
	assert.True(t, ok)
}
