package crmtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/angelcm/horizon-crm/internal/apperr"
	"github.com/angelcm/horizon-crm/internal/models"
)

// Repo is an in-memory row store. Operations named in FailOn return a
// remote failure without touching the rows. Lead writes and campaign
// updates wait Delay before taking the row lock.
type Repo struct {
	Delay time.Duration

	mu        sync.Mutex
	Campaigns map[string]models.CampaignRow
	Leads     map[string]models.LeadRow
	Clients   map[string]models.ClientRow
	Demos     []models.DemoEventRow
	FailOn    map[string]bool
	calls     []string
}

func NewRepo() *Repo {
	return &Repo{
		Campaigns: map[string]models.CampaignRow{},
		Leads:     map[string]models.LeadRow{},
		Clients:   map[string]models.ClientRow{},
		FailOn:    map[string]bool{},
	}
}

func (f *Repo) do(op string) error {
	f.calls = append(f.calls, op)
	if f.FailOn[op] {
		return apperr.New(apperr.CodeRemote, op+" failed")
	}
	return nil
}

func (f *Repo) pause() {
	if f.Delay > 0 {
		time.Sleep(f.Delay)
	}
}

func (f *Repo) ListCampaigns(_ context.Context, _ string) ([]models.CampaignRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.CampaignRow{}
	for _, r := range f.Campaigns {
		out = append(out, r)
	}
	return out, f.do("ListCampaigns")
}

func (f *Repo) ListLeads(_ context.Context, _ string) ([]models.LeadRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.LeadRow{}
	for _, r := range f.Leads {
		out = append(out, r)
	}
	return out, f.do("ListLeads")
}

func (f *Repo) ListClients(_ context.Context, _ string) ([]models.ClientRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.ClientRow{}
	for _, r := range f.Clients {
		out = append(out, r)
	}
	return out, f.do("ListClients")
}

func (f *Repo) ListDemoEvents(_ context.Context, _ string) ([]models.DemoEventRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.DemoEventRow{}, f.Demos...), f.do("ListDemoEvents")
}

func (f *Repo) InsertCampaign(_ context.Context, row models.CampaignRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.do("InsertCampaign"); err != nil {
		return err
	}
	f.Campaigns[row.ID] = row
	return nil
}

func (f *Repo) UpdateCampaign(_ context.Context, _, id string, p models.CampaignPatch) error {
	f.pause()
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.do("UpdateCampaign"); err != nil {
		return err
	}
	r := f.Campaigns[id]
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.LeadCount != nil {
		r.LeadCount = *p.LeadCount
	}
	f.Campaigns[id] = r
	return nil
}

func (f *Repo) DeleteCampaign(_ context.Context, _, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.do("DeleteCampaign"); err != nil {
		return err
	}
	delete(f.Campaigns, id)
	for k, l := range f.Leads {
		if l.CampaignID == id {
			delete(f.Leads, k)
		}
	}
	return nil
}

func (f *Repo) InsertLeads(_ context.Context, rows []models.LeadRow) error {
	f.pause()
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.do("InsertLeads"); err != nil {
		return err
	}
	for _, r := range rows {
		f.Leads[r.ID] = r
	}
	return nil
}

func (f *Repo) UpdateLead(_ context.Context, _, id string, p models.LeadPatch) error {
	f.pause()
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.do("UpdateLead"); err != nil {
		return err
	}
	r := f.Leads[id]
	r.Name, r.Company, r.Phone, r.Status = p.Name, p.Company, p.Phone, p.Status
	f.Leads[id] = r
	return nil
}

func (f *Repo) UpdateLeadStatus(_ context.Context, _, id string, p models.LeadStatusPatch) error {
	f.pause()
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.do("UpdateLeadStatus"); err != nil {
		return err
	}
	r := f.Leads[id]
	r.Status = p.Status
	f.Leads[id] = r
	return nil
}

func (f *Repo) DeleteLead(_ context.Context, _, id string) error {
	f.pause()
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.do("DeleteLead"); err != nil {
		return err
	}
	delete(f.Leads, id)
	return nil
}

func (f *Repo) InsertClient(_ context.Context, row models.ClientRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.do("InsertClient"); err != nil {
		return err
	}
	f.Clients[row.ID] = row
	return nil
}

func (f *Repo) UpdateClient(_ context.Context, _, id string, p models.ClientPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.do("UpdateClient"); err != nil {
		return err
	}
	r := f.Clients[id]
	r.Name, r.Company, r.CloseDate, r.Status = p.Name, p.Company, p.CloseDate, p.Status
	r.UpfrontValue, r.MonthlyValue, r.MonthlyRetainerDate = p.UpfrontValue, p.MonthlyValue, p.MonthlyRetainerDate
	f.Clients[id] = r
	return nil
}

func (f *Repo) DeleteClient(_ context.Context, _, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.do("DeleteClient"); err != nil {
		return err
	}
	delete(f.Clients, id)
	return nil
}

func (f *Repo) InsertDemoEvent(_ context.Context, row models.DemoEventRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.do("InsertDemoEvent"); err != nil {
		return err
	}
	f.Demos = append(f.Demos, row)
	return nil
}

func (f *Repo) Called(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == op {
			n++
		}
	}
	return n
}

// SeedCampaign stores campaign camp-1 of userID with n leads l-camp-1-<i>.
func (f *Repo) SeedCampaign(userID string, n int, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Campaigns["camp-1"] = models.CampaignRow{ID: "camp-1", UserID: userID, Name: "Roofers", CreatedAt: "2025-07-01", LeadCount: n}
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("l-camp-1-%d", i)
		f.Leads[id] = models.LeadRow{ID: id, UserID: userID, CampaignID: "camp-1",
			Name: fmt.Sprintf("Lead %d", i), Company: fmt.Sprintf("Co %d", i), Phone: "555", Status: status}
	}
}
