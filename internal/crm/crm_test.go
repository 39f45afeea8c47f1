package crm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelcm/horizon-crm/internal/apperr"
	"github.com/angelcm/horizon-crm/internal/clock"
	"github.com/angelcm/horizon-crm/internal/crm/crmtest"
	"github.com/angelcm/horizon-crm/internal/metrics"
	"github.com/angelcm/horizon-crm/internal/models"
	"github.com/angelcm/horizon-crm/internal/store"
)

const user = "u-1"

func newTestService(t *testing.T, repo *crmtest.Repo) (*Service, *metrics.Metrics) {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewService(repo, store.NewMemoryStore(), clock.FixedDate("2025-07-15", time.UTC), log, m)
	n := 0
	s.newID = func() string { n++; return fmt.Sprintf("id%d", n) }
	return s, m
}

const scenarioCSV = "Business Name, Contact, Cell, Street Address\n" +
	`"Acme, Inc.", "Jane Doe", "555-0101", "1 Main St"` + "\n" +
	"Beta LLC,,,\n"

func TestImportCampaignCreatesLeads(t *testing.T) {
	repo := crmtest.NewRepo()
	s, m := newTestService(t, repo)
	ctx := context.Background()

	c, err := s.ImportCampaign(ctx, user, "  July roofers ", "leads.csv", strings.NewReader(scenarioCSV))
	require.NoError(t, err)
	assert.Equal(t, "camp-id1", c.ID)
	assert.Equal(t, "July roofers", c.Name)
	assert.Equal(t, "2025-07-15", c.CreatedAt)
	assert.Equal(t, 2, c.LeadCount)

	page, err := s.ListCampaignLeads(ctx, user, c.ID, "", 1)
	require.NoError(t, err)
	require.Len(t, page.Leads, 2)
	first := page.Leads[0]
	assert.Equal(t, "l-camp-id1-0", first.ID)
	assert.Equal(t, "Jane Doe", first.Name)
	assert.Equal(t, "Acme, Inc.", first.Company)
	assert.Equal(t, "555-0101", first.Phone)
	assert.Equal(t, "1 Main St", first.Address)
	assert.Equal(t, models.StatusNewLead, first.Status)
	assert.Equal(t, models.ImportedLeadSummary, first.Summary)

	second := page.Leads[1]
	assert.Equal(t, models.PlaceholderName, second.Name)
	assert.Equal(t, "Beta LLC", second.Company)
	assert.Equal(t, models.PlaceholderPhone, second.Phone)

	assert.Len(t, repo.Leads, 2)
	assert.Equal(t, 2, repo.Campaigns[c.ID].LeadCount)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LeadsImported))
}

func TestImportedLeadsSurviveReload(t *testing.T) {
	repo := crmtest.NewRepo()
	s, _ := newTestService(t, repo)
	ctx := context.Background()

	c, err := s.ImportCampaign(ctx, user, "July roofers", "leads.csv", strings.NewReader(scenarioCSV))
	require.NoError(t, err)
	before, err := s.ListCampaignLeads(ctx, user, c.ID, "", 1)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultLeadRating, before.Leads[0].Rating)
	assert.Equal(t, models.DefaultLeadReviews, before.Leads[0].Reviews)

	_, err = s.LoadSession(ctx, user)
	require.NoError(t, err)
	after, err := s.ListCampaignLeads(ctx, user, c.ID, "", 1)
	require.NoError(t, err)
	assert.Equal(t, before.Leads, after.Leads)
}

func TestImportCampaignRollsBackWhenLeadBatchFails(t *testing.T) {
	repo := crmtest.NewRepo()
	repo.FailOn["InsertLeads"] = true
	s, _ := newTestService(t, repo)
	ctx := context.Background()

	_, err := s.ImportCampaign(ctx, user, "July", "leads.csv", strings.NewReader(scenarioCSV))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.Remote)

	assert.Equal(t, 1, repo.Called("DeleteCampaign"))
	assert.Empty(t, repo.Campaigns)
	cs, err := s.Campaigns(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, cs)
}

func TestImportCampaignValidation(t *testing.T) {
	repo := crmtest.NewRepo()
	s, _ := newTestService(t, repo)
	ctx := context.Background()

	_, err := s.ImportCampaign(ctx, user, "   ", "leads.csv", strings.NewReader(scenarioCSV))
	assert.ErrorIs(t, err, apperr.Validation)
	assert.Equal(t, "Please provide a campaign name.", apperr.MessageOf(err))

	_, err = s.ImportCampaign(ctx, user, "July", "leads.csv", nil)
	assert.ErrorIs(t, err, apperr.Validation)
	assert.Equal(t, "Please upload a CSV file.", apperr.MessageOf(err))

	_, err = s.ImportCampaign(ctx, user, "July", "leads.csv", strings.NewReader("name,company\n\"Bob,Bobs\n"))
	assert.ErrorIs(t, err, apperr.MalformedImport)
	assert.Contains(t, err.Error(), "line 2")

	assert.Zero(t, repo.Called("InsertCampaign"))
}

func TestListCampaignLeadsOrderingSearchAndPaging(t *testing.T) {
	repo := crmtest.NewRepo()
	repo.SeedCampaign(user, 120, models.StatusNewLead)
	s, _ := newTestService(t, repo)
	ctx := context.Background()

	page, err := s.ListCampaignLeads(ctx, user, "camp-1", "", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 120, page.Total)
	require.Len(t, page.Leads, PageSize)
	for i, l := range page.Leads {
		assert.Equal(t, fmt.Sprintf("l-camp-1-%d", i), l.ID)
	}

	last, err := s.ListCampaignLeads(ctx, user, "camp-1", "", 99)
	require.NoError(t, err)
	assert.Equal(t, 3, last.Page)
	assert.Len(t, last.Leads, 20)
	assert.Equal(t, "l-camp-1-100", last.Leads[0].ID)

	// "co 11" cubre Co 11 y Co 110..119
	found, err := s.ListCampaignLeads(ctx, user, "camp-1", "CO 11", 1)
	require.NoError(t, err)
	assert.Equal(t, 11, found.Total)
	assert.Equal(t, "l-camp-1-11", found.Leads[0].ID)

	none, err := s.ListCampaignLeads(ctx, user, "camp-1", "zzz", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, none.TotalPages)
	assert.Empty(t, none.Leads)

	_, err = s.ListCampaignLeads(ctx, user, "camp-x", "", 1)
	assert.ErrorIs(t, err, apperr.NotFound)
}

func TestUploadOrder(t *testing.T) {
	assert.Equal(t, 12, uploadOrder("l-camp-1-12"))
	assert.Equal(t, 1752580800000, uploadOrder("l-1752580800000"))
	assert.Equal(t, 0, uploadOrder("l-camp-1-abc"))
	assert.Equal(t, 0, uploadOrder("nodash"))
}

func TestLeadCountFollowsAddAndDelete(t *testing.T) {
	repo := crmtest.NewRepo()
	repo.SeedCampaign(user, 2, models.StatusNewLead)
	s, _ := newTestService(t, repo)
	ctx := context.Background()

	l, err := s.AddLead(ctx, user, "camp-1", LeadInput{Name: " Sam ", Company: "Sams", Phone: "555-9"})
	require.NoError(t, err)
	assert.Equal(t, "Sam", l.Name)
	assert.Equal(t, models.DefaultLeadRating, l.Rating)
	assert.Equal(t, models.DefaultLeadReviews, l.Reviews)
	assert.Equal(t, models.ManualLeadSummary, l.Summary)
	assert.Equal(t, models.StatusNewLead, l.Status)
	assert.True(t, strings.HasPrefix(l.ID, "l-"))

	c, ok := s.states.Ensure(user).Campaign("camp-1")
	require.True(t, ok)
	assert.Equal(t, 3, c.LeadCount)
	assert.Equal(t, 3, repo.Campaigns["camp-1"].LeadCount)

	require.NoError(t, s.DeleteLead(ctx, user, l.ID))
	require.NoError(t, s.DeleteLead(ctx, user, "l-camp-1-0"))
	c, _ = s.states.Ensure(user).Campaign("camp-1")
	assert.Equal(t, 1, c.LeadCount)
	assert.Equal(t, 1, repo.Campaigns["camp-1"].LeadCount)
	assert.Len(t, repo.Leads, 1)
}

func TestLeadCountSurvivesConcurrentAdds(t *testing.T) {
	repo := crmtest.NewRepo()
	repo.SeedCampaign(user, 2, models.StatusNewLead)
	s, _ := newTestService(t, repo)
	_, err := s.LoadSession(context.Background(), user)
	require.NoError(t, err)
	repo.Delay = 20 * time.Millisecond

	base := time.Date(2025, 7, 15, 9, 0, 0, 0, time.UTC)
	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ctx := clock.WithNow(context.Background(), base.Add(time.Duration(i)*time.Second))
			_, errs[i] = s.AddLead(ctx, user, "camp-1", LeadInput{Name: "Sam", Company: "Sams", Phone: "555"})
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	c, _ := s.states.Ensure(user).Campaign("camp-1")
	assert.Equal(t, 7, c.LeadCount)
	assert.Len(t, s.states.Ensure(user).CampaignLeads("camp-1"), 7)
	assert.Len(t, repo.Leads, 7)
	assert.Equal(t, 7, repo.Campaigns["camp-1"].LeadCount)
}

func TestAddLeadValidation(t *testing.T) {
	repo := crmtest.NewRepo()
	repo.SeedCampaign(user, 1, models.StatusNewLead)
	s, _ := newTestService(t, repo)
	ctx := context.Background()

	_, err := s.AddLead(ctx, user, "camp-1", LeadInput{Name: "Sam", Company: "Sams"})
	assert.ErrorIs(t, err, apperr.Validation)

	_, err = s.AddLead(ctx, user, "camp-1", LeadInput{Name: "Sam", Company: "Sams", Phone: "1", Status: "Maybe"})
	assert.ErrorIs(t, err, apperr.Validation)

	_, err = s.AddLead(ctx, user, "camp-404", LeadInput{Name: "Sam", Company: "Sams", Phone: "1"})
	assert.ErrorIs(t, err, apperr.NotFound)

	assert.Zero(t, repo.Called("InsertLeads"))
}

func TestDemoBookedRecordsOneEvent(t *testing.T) {
	repo := crmtest.NewRepo()
	repo.SeedCampaign(user, 1, models.StatusNewLead)
	s, m := newTestService(t, repo)
	ctx := context.Background()

	l, err := s.UpdateLeadStatus(ctx, user, "l-camp-1-0", models.StatusDemoBooked)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDemoBooked, l.Status)

	// ya está en Demo Booked: no se registra otro evento
	_, err = s.UpdateLeadStatus(ctx, user, "l-camp-1-0", models.StatusDemoBooked)
	require.NoError(t, err)

	events, err := s.DemoEvents(ctx, user)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "l-camp-1-0", events[0].LeadID)
	assert.Equal(t, "2025-07-15", events[0].Date)
	assert.Equal(t, "demo-id1", events[0].ID)
	assert.Len(t, repo.Demos, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DemosRecorded))
}

func TestConcurrentDemoBookedRecordsOneEvent(t *testing.T) {
	repo := crmtest.NewRepo()
	repo.SeedCampaign(user, 1, models.StatusNewLead)
	s, m := newTestService(t, repo)
	ctx := context.Background()
	_, err := s.LoadSession(ctx, user)
	require.NoError(t, err)
	repo.Delay = 20 * time.Millisecond

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.UpdateLeadStatus(ctx, user, "l-camp-1-0", models.StatusDemoBooked)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	events, err := s.DemoEvents(ctx, user)
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Len(t, repo.Demos, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DemosRecorded))
}

func TestUpdateLeadTransitionAndCampaignKept(t *testing.T) {
	repo := crmtest.NewRepo()
	repo.SeedCampaign(user, 1, models.StatusVoicemail)
	s, _ := newTestService(t, repo)
	ctx := clock.WithNow(context.Background(), time.Date(2025, 8, 2, 9, 0, 0, 0, time.UTC))

	l, err := s.UpdateLead(ctx, user, "l-camp-1-0", LeadInput{
		Name: "Lead 0", Company: "Co 0", Phone: "555", Status: models.StatusDemoBooked,
	})
	require.NoError(t, err)
	assert.Equal(t, "camp-1", l.CampaignID)
	assert.Equal(t, models.DefaultLeadRating, l.Rating)

	events, err := s.DemoEvents(ctx, user)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "2025-08-02", events[0].Date)

	_, err = s.UpdateLead(ctx, user, "l-camp-1-0", LeadInput{
		Name: "Lead 0", Company: "Co 0", Phone: "555", Status: models.StatusFollowUp,
	})
	require.NoError(t, err)
	_, err = s.UpdateLead(ctx, user, "l-camp-1-0", LeadInput{
		Name: "Lead 0", Company: "Co 0", Phone: "555", Status: models.StatusDemoBooked,
	})
	require.NoError(t, err)
	events, _ = s.DemoEvents(ctx, user)
	assert.Len(t, events, 2)
}

func TestDemoInsertFailureKeepsStatusChange(t *testing.T) {
	repo := crmtest.NewRepo()
	repo.SeedCampaign(user, 1, models.StatusNewLead)
	repo.FailOn["InsertDemoEvent"] = true
	s, _ := newTestService(t, repo)
	ctx := context.Background()

	l, err := s.UpdateLeadStatus(ctx, user, "l-camp-1-0", models.StatusDemoBooked)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDemoBooked, l.Status)
	events, _ := s.DemoEvents(ctx, user)
	assert.Empty(t, events)
}

func TestRemoteFailureLeavesStateUnchanged(t *testing.T) {
	repo := crmtest.NewRepo()
	repo.SeedCampaign(user, 1, models.StatusNewLead)
	repo.FailOn["UpdateLeadStatus"] = true
	repo.FailOn["DeleteCampaign"] = true
	s, _ := newTestService(t, repo)
	ctx := context.Background()

	_, err := s.UpdateLeadStatus(ctx, user, "l-camp-1-0", models.StatusDemoBooked)
	assert.ErrorIs(t, err, apperr.Remote)
	l, _ := s.states.Ensure(user).Lead("l-camp-1-0")
	assert.Equal(t, models.StatusNewLead, l.Status)
	assert.Zero(t, repo.Called("InsertDemoEvent"))

	err = s.DeleteCampaign(ctx, user, "camp-1")
	assert.ErrorIs(t, err, apperr.Remote)
	cs, _ := s.Campaigns(ctx, user)
	assert.Len(t, cs, 1)
}

func TestRenameAndDeleteCampaign(t *testing.T) {
	repo := crmtest.NewRepo()
	repo.SeedCampaign(user, 3, models.StatusNewLead)
	s, _ := newTestService(t, repo)
	ctx := context.Background()

	_, err := s.RenameCampaign(ctx, user, "camp-1", "  ")
	assert.ErrorIs(t, err, apperr.Validation)

	c, err := s.RenameCampaign(ctx, user, "camp-1", " Plumbers ")
	require.NoError(t, err)
	assert.Equal(t, "Plumbers", c.Name)
	assert.Equal(t, "Plumbers", repo.Campaigns["camp-1"].Name)

	require.NoError(t, s.DeleteCampaign(ctx, user, "camp-1"))
	st := s.states.Ensure(user)
	assert.Empty(t, st.Campaigns())
	assert.Empty(t, st.Leads())

	assert.ErrorIs(t, s.DeleteCampaign(ctx, user, "camp-1"), apperr.NotFound)
}

func TestClientValidation(t *testing.T) {
	repo := crmtest.NewRepo()
	s, _ := newTestService(t, repo)
	ctx := context.Background()

	_, err := s.AddClient(ctx, user, ClientInput{Name: "Jane", Company: " ", CloseDate: "2025-03-10"})
	assert.ErrorIs(t, err, apperr.Validation)
	assert.Equal(t, "Please fill out all required fields marked with *", apperr.MessageOf(err))

	_, err = s.AddClient(ctx, user, ClientInput{
		Name: "Jane", Company: "Acme", CloseDate: "2025-03-10", MonthlyValue: decimal.NewFromInt(500),
	})
	assert.ErrorIs(t, err, apperr.Validation)
	assert.Equal(t, "Please provide a First Retainer Date for active subscriptions.", apperr.MessageOf(err))

	_, err = s.AddClient(ctx, user, ClientInput{Name: "Jane", Company: "Acme", CloseDate: "10/03/2025"})
	assert.ErrorIs(t, err, apperr.Validation)

	_, err = s.AddClient(ctx, user, ClientInput{
		Name: "Jane", Company: "Acme", CloseDate: "2025-03-10", UpfrontValue: decimal.NewFromInt(-1),
	})
	assert.ErrorIs(t, err, apperr.Validation)

	assert.Zero(t, repo.Called("InsertClient"))
}

func TestClientLifecycle(t *testing.T) {
	repo := crmtest.NewRepo()
	s, _ := newTestService(t, repo)
	ctx := context.Background()

	c, err := s.AddClient(ctx, user, ClientInput{
		Name: " Jane ", Company: "Acme", CloseDate: "2025-03-10",
		UpfrontValue: decimal.NewFromInt(5000), MonthlyValue: decimal.NewFromInt(500),
		MonthlyRetainerDate: "2025-04-10",
	})
	require.NoError(t, err)
	assert.Equal(t, "c-id1", c.ID)
	assert.Equal(t, "Jane", c.Name)
	assert.Equal(t, models.ClientActive, c.Status)
	require.Contains(t, repo.Clients, c.ID)

	c, err = s.UpdateClient(ctx, user, c.ID, ClientInput{
		Name: "Jane", Company: "Acme", CloseDate: "2025-03-10",
		UpfrontValue: decimal.NewFromInt(5000), MonthlyValue: decimal.NewFromInt(500),
		MonthlyRetainerDate: "2025-04-10", Status: models.ClientInactive,
	})
	require.NoError(t, err)
	assert.Empty(t, c.MonthlyRetainerDate)
	assert.Nil(t, repo.Clients[c.ID].MonthlyRetainerDate)

	_, err = s.UpdateClient(ctx, user, "c-404", ClientInput{Name: "x", Company: "y", CloseDate: "2025-01-01"})
	assert.ErrorIs(t, err, apperr.NotFound)

	require.NoError(t, s.DeleteClient(ctx, user, c.ID))
	cs, _ := s.Clients(ctx, user)
	assert.Empty(t, cs)
	assert.Empty(t, repo.Clients)
}

func TestNavigationConsumeOnce(t *testing.T) {
	s, _ := newTestService(t, crmtest.NewRepo())
	ctx := context.Background()

	nav, err := s.Navigation(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, models.ViewDashboard, nav.View)

	_, err = s.Navigate(ctx, user, "settings", nil)
	assert.ErrorIs(t, err, apperr.Validation)

	nav, err = s.Navigate(ctx, user, models.ViewDialer, &models.NavContext{LeadID: "l-1", CampaignID: "camp-1"})
	require.NoError(t, err)
	require.NotNil(t, nav.Context)

	got, ok, err := s.ConsumeNavigation(ctx, user)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "l-1", got.LeadID)

	_, ok, err = s.ConsumeNavigation(ctx, user)
	require.NoError(t, err)
	assert.False(t, ok)

	s.Navigate(ctx, user, models.ViewConversations, &models.NavContext{LeadID: "l-2"})
	nav, _ = s.Navigate(ctx, user, models.ViewClients, nil)
	assert.Nil(t, nav.Context)
}

func TestLoadFailureSurfacesRemoteError(t *testing.T) {
	repo := crmtest.NewRepo()
	repo.FailOn["ListClients"] = true
	s, _ := newTestService(t, repo)

	_, err := s.LoadSession(context.Background(), user)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.Remote))

	_, err = s.Snapshot(context.Background(), user)
	assert.ErrorIs(t, err, apperr.Remote)
}
