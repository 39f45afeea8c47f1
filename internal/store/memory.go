package store

import (
	"slices"
	"sync"

	"github.com/angelcm/horizon-crm/internal/models"
)

// MemoryStore keeps one State per signed-in user.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]*State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]*State)}
}

func (s *MemoryStore) Get(userID string) (*State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[userID]
	return st, ok
}

// Ensure returns the user's state, creating an empty one on first use.
func (s *MemoryStore) Ensure(userID string) *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[userID]
	if !ok {
		st = NewState()
		s.states[userID] = st
	}
	return st
}

func (s *MemoryStore) Drop(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, userID)
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}

// State is the in-memory mirror of one user's rows. Collections are kept
// newest first; every mutation goes through a method so campaign lead
// counts stay equal to the number of leads referencing the campaign.
type State struct {
	mu         sync.RWMutex
	loaded     bool
	campaigns  []models.Campaign
	leads      []models.Lead
	clients    []models.Client
	demoEvents []models.DemoEvent
	nav        models.Navigation
}

func NewState() *State {
	return &State{nav: models.Navigation{View: models.ViewDashboard}}
}

// Replace swaps in freshly loaded collections.
func (st *State) Replace(campaigns []models.Campaign, leads []models.Lead, clients []models.Client, demos []models.DemoEvent) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.campaigns = slices.Clone(campaigns)
	st.leads = slices.Clone(leads)
	st.clients = slices.Clone(clients)
	st.demoEvents = slices.Clone(demos)
	st.loaded = true
}

func (st *State) Loaded() bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.loaded
}

// Snapshot copies what the dashboard reads.
func (st *State) Snapshot() models.Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return models.Snapshot{
		Clients:    slices.Clone(st.clients),
		Leads:      slices.Clone(st.leads),
		DemoEvents: slices.Clone(st.demoEvents),
	}
}

// --- campaigns ---

func (st *State) Campaigns() []models.Campaign {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return slices.Clone(st.campaigns)
}

func (st *State) Campaign(id string) (models.Campaign, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	i := st.campaignIndex(id)
	if i < 0 {
		return models.Campaign{}, false
	}
	return st.campaigns[i], true
}

func (st *State) campaignIndex(id string) int {
	return slices.IndexFunc(st.campaigns, func(c models.Campaign) bool { return c.ID == id })
}

// AddCampaign stores c with its leads. c.LeadCount is recomputed from leads.
func (st *State) AddCampaign(c models.Campaign, leads []models.Lead) models.Campaign {
	st.mu.Lock()
	defer st.mu.Unlock()
	c.LeadCount = len(leads)
	st.campaigns = append([]models.Campaign{c}, st.campaigns...)
	st.leads = append(slices.Clone(leads), st.leads...)
	return c
}

func (st *State) RenameCampaign(id, name string) (models.Campaign, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	i := st.campaignIndex(id)
	if i < 0 {
		return models.Campaign{}, false
	}
	st.campaigns[i].Name = name
	return st.campaigns[i], true
}

// RemoveCampaign drops the campaign and every lead referencing it.
func (st *State) RemoveCampaign(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	i := st.campaignIndex(id)
	if i < 0 {
		return false
	}
	st.campaigns = slices.Delete(st.campaigns, i, i+1)
	st.leads = slices.DeleteFunc(st.leads, func(l models.Lead) bool { return l.CampaignID == id })
	return true
}

// --- leads ---

func (st *State) Leads() []models.Lead {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return slices.Clone(st.leads)
}

func (st *State) Lead(id string) (models.Lead, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	i := st.leadIndex(id)
	if i < 0 {
		return models.Lead{}, false
	}
	return st.leads[i], true
}

func (st *State) leadIndex(id string) int {
	return slices.IndexFunc(st.leads, func(l models.Lead) bool { return l.ID == id })
}

func (st *State) CampaignLeads(campaignID string) []models.Lead {
	st.mu.RLock()
	defer st.mu.RUnlock()
	var out []models.Lead
	for _, l := range st.leads {
		if l.CampaignID == campaignID {
			out = append(out, l)
		}
	}
	return out
}

// AddLead stores l and bumps its campaign's lead count. It returns the new count.
func (st *State) AddLead(l models.Lead) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.leads = append([]models.Lead{l}, st.leads...)
	i := st.campaignIndex(l.CampaignID)
	if i < 0 {
		return 0
	}
	st.campaigns[i].LeadCount++
	return st.campaigns[i].LeadCount
}

// UpdateLead replaces the stored lead with the same id. Campaign membership
// is kept from the stored copy. It also returns the status the lead had.
func (st *State) UpdateLead(l models.Lead) (models.Lead, string, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	i := st.leadIndex(l.ID)
	if i < 0 {
		return models.Lead{}, "", false
	}
	prev := st.leads[i].Status
	l.CampaignID = st.leads[i].CampaignID
	st.leads[i] = l
	return l, prev, true
}

// SetLeadStatus is UpdateLead for the status alone.
func (st *State) SetLeadStatus(id, status string) (models.Lead, string, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	i := st.leadIndex(id)
	if i < 0 {
		return models.Lead{}, "", false
	}
	prev := st.leads[i].Status
	st.leads[i].Status = status
	return st.leads[i], prev, true
}

// RemoveLead deletes the lead and decrements its campaign's count, never
// below zero. It returns the campaign's new count, -1 when the campaign is gone.
func (st *State) RemoveLead(id string) (models.Lead, int, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	i := st.leadIndex(id)
	if i < 0 {
		return models.Lead{}, 0, false
	}
	l := st.leads[i]
	st.leads = slices.Delete(st.leads, i, i+1)
	c := st.campaignIndex(l.CampaignID)
	if c < 0 {
		return l, -1, true
	}
	st.campaigns[c].LeadCount = max(0, st.campaigns[c].LeadCount-1)
	return l, st.campaigns[c].LeadCount, true
}

// --- clients ---

func (st *State) Clients() []models.Client {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return slices.Clone(st.clients)
}

func (st *State) Client(id string) (models.Client, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	i := st.clientIndex(id)
	if i < 0 {
		return models.Client{}, false
	}
	return st.clients[i], true
}

func (st *State) clientIndex(id string) int {
	return slices.IndexFunc(st.clients, func(c models.Client) bool { return c.ID == id })
}

func (st *State) AddClient(c models.Client) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.clients = append([]models.Client{c}, st.clients...)
}

func (st *State) UpdateClient(c models.Client) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	i := st.clientIndex(c.ID)
	if i < 0 {
		return false
	}
	st.clients[i] = c
	return true
}

func (st *State) RemoveClient(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	i := st.clientIndex(id)
	if i < 0 {
		return false
	}
	st.clients = slices.Delete(st.clients, i, i+1)
	return true
}

// --- demo events ---

func (st *State) DemoEvents() []models.DemoEvent {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return slices.Clone(st.demoEvents)
}

func (st *State) AddDemoEvent(e models.DemoEvent) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.demoEvents = append(st.demoEvents, e)
}

// --- navigation ---

func (st *State) Navigation() models.Navigation {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return copyNav(st.nav)
}

// SetNavigation moves to view. A nil or empty ctx clears any pending context.
func (st *State) SetNavigation(view string, ctx *models.NavContext) models.Navigation {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.nav.View = view
	st.nav.Context = nil
	if ctx != nil && !ctx.IsZero() {
		c := *ctx
		st.nav.Context = &c
	}
	return copyNav(st.nav)
}

// ConsumeContext hands out the pending context once and clears it.
func (st *State) ConsumeContext() (models.NavContext, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.nav.Context == nil {
		return models.NavContext{}, false
	}
	c := *st.nav.Context
	st.nav.Context = nil
	return c, true
}

func copyNav(n models.Navigation) models.Navigation {
	if n.Context != nil {
		c := *n.Context
		n.Context = &c
	}
	return n
}
